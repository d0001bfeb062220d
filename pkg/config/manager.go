package config

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/go-viper/mapstructure/v2"
	"github.com/goccy/go-yaml"
	"github.com/joho/godotenv"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"
)

// envPrefix namespaces environment variable overrides, e.g.
// ANTFORGE_MAX_AGENTS=12.
const envPrefix = "ANTFORGE_"

// Manager loads and resolves Config from defaults, an optional YAML file,
// an optional .env file, and environment variables, in that precedence
// order (later sources win), following the teacher's layered-config
// convention.
type Manager struct {
	k *koanf.Koanf
}

// NewManager builds a Manager seeded with Default().
func NewManager() (*Manager, error) {
	k := koanf.New(".")
	if err := k.Load(structs.Provider(Default(), "koanf"), nil); err != nil {
		return nil, fmt.Errorf("config: failed to load defaults: %w", err)
	}
	return &Manager{k: k}, nil
}

// LoadFile merges a YAML configuration file over the current state.
func (m *Manager) LoadFile(path string) error {
	if path == "" {
		return nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("config: failed to read %s: %w", path, err)
	}
	var raw map[string]any
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("config: failed to parse %s: %w", path, err)
	}
	if err := m.k.Load(confmap.Provider(raw, "."), nil); err != nil {
		return fmt.Errorf("config: failed to merge %s: %w", path, err)
	}
	return nil
}

// LoadEnvFile loads a .env file (if present) into the process environment
// before environment variables are read, mirroring the teacher's use of
// godotenv ahead of its config loader.
func (m *Manager) LoadEnvFile(path string) error {
	if path == "" {
		return nil
	}
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil
	}
	if err := godotenv.Load(path); err != nil {
		return fmt.Errorf("config: failed to load env file %s: %w", path, err)
	}
	return nil
}

// LoadEnv merges ANTFORGE_* environment variables over the current state.
// Environment variables are scanned by hand and merged through the same
// confmap provider LoadFile uses, rather than koanf's env provider, so the
// merge path has a single, easily audited implementation.
func (m *Manager) LoadEnv() error {
	raw := make(map[string]any)
	for _, kv := range os.Environ() {
		key, val, found := strings.Cut(kv, "=")
		if !found || !strings.HasPrefix(key, envPrefix) {
			continue
		}
		raw[envKeyToPath(key)] = val
	}
	if len(raw) == 0 {
		return nil
	}
	if err := m.k.Load(confmap.Provider(raw, "."), nil); err != nil {
		return fmt.Errorf("config: failed to load environment: %w", err)
	}
	return nil
}

// Resolve unmarshals the merged state into a validated Config.
func (m *Manager) Resolve() (*Config, error) {
	cfg := Default()
	uc := koanf.UnmarshalConf{
		Tag: "koanf",
		DecoderConfig: &mapstructure.DecoderConfig{
			DecodeHook: mapstructure.ComposeDecodeHookFunc(
				mapstructure.StringToTimeDurationHookFunc(),
			),
			Result:           cfg,
			WeaklyTypedInput: true,
		},
	}
	if err := m.k.UnmarshalWithConf("", cfg, uc); err != nil {
		return nil, fmt.Errorf("config: failed to unmarshal: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func envKeyToPath(k string) string {
	trimmed := k
	if len(trimmed) >= len(envPrefix) {
		trimmed = trimmed[len(envPrefix):]
	}
	return toLowerSnake(trimmed)
}

func toLowerSnake(s string) string {
	out := make([]byte, len(s))
	for i := 0; i < len(s); i++ {
		c := s[i]
		if c >= 'A' && c <= 'Z' {
			c = c - 'A' + 'a'
		}
		out[i] = c
	}
	return string(out)
}

// managerCtxKey is the context key a Manager is stored under.
type managerCtxKey struct{}

// ContextWithManager attaches a Manager to ctx.
func ContextWithManager(ctx context.Context, m *Manager) context.Context {
	return context.WithValue(ctx, managerCtxKey{}, m)
}

// ManagerFromContext returns the Manager attached to ctx, or nil.
func ManagerFromContext(ctx context.Context) *Manager {
	m, _ := ctx.Value(managerCtxKey{}).(*Manager)
	return m
}

// configCtxKey is the context key a resolved Config is stored under.
type configCtxKey struct{}

// ContextWithConfig attaches a resolved Config to ctx.
func ContextWithConfig(ctx context.Context, cfg *Config) context.Context {
	return context.WithValue(ctx, configCtxKey{}, cfg)
}

// FromContext returns the Config attached to ctx, or nil.
func FromContext(ctx context.Context) *Config {
	cfg, _ := ctx.Value(configCtxKey{}).(*Config)
	return cfg
}
