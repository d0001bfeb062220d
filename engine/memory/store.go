package memory

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/gofrs/flock"

	"github.com/compozy/antforge/pkg/logger"
)

// DirName is the directory synaptic memory lives under, relative to a
// run's base directory.
const DirName = ".swarm-memory"

const (
	synapsesDir   = "synapses"
	trailsDir     = "trails"
	hiveStateFile = "hive-state.md"
	depMapFile    = "dependency-map.md"
	qualityFile   = "quality-log.md"
)

// bootstrapLockTimeout bounds how long Bootstrap waits to acquire the
// cross-process directory-creation lock.
const bootstrapLockTimeout = 5 * time.Second

// Store is the synaptic memory surface: append-only markdown files under
// <base>/.swarm-memory/, all mutations serialized through one WriteQueue.
type Store struct {
	root  string
	queue *WriteQueue
	log   logger.Logger
}

// Open bootstraps <base>/.swarm-memory/ (idempotently, guarded by a file
// lock so concurrent processes racing to create it don't collide) and
// returns a ready Store.
func Open(ctx context.Context, base string, log logger.Logger) (*Store, error) {
	if log == nil {
		log = logger.FromContext(nil)
	}
	root := filepath.Join(base, DirName)
	if err := bootstrap(ctx, base, root); err != nil {
		return nil, err
	}
	return &Store{root: root, queue: NewWriteQueue(64), log: log.With("component", "memory.store")}, nil
}

func bootstrap(ctx context.Context, base, root string) error {
	if err := os.MkdirAll(base, 0o755); err != nil {
		return fmt.Errorf("memory: failed to create base dir %s: %w", base, err)
	}
	lockPath := filepath.Join(base, ".swarm-memory.lock")
	fl := flock.New(lockPath)
	lockCtx, cancel := context.WithTimeout(ctx, bootstrapLockTimeout)
	defer cancel()
	locked, err := fl.TryLockContext(lockCtx, 50*time.Millisecond)
	if err != nil {
		return fmt.Errorf("memory: failed to acquire bootstrap lock: %w", err)
	}
	if !locked {
		return fmt.Errorf("memory: timed out acquiring bootstrap lock at %s", lockPath)
	}
	defer fl.Unlock()

	for _, dir := range []string{root, filepath.Join(root, synapsesDir), filepath.Join(root, trailsDir)} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("memory: failed to create %s: %w", dir, err)
		}
	}
	return nil
}

// Close stops the write queue. Call once, after all agents have retired.
func (s *Store) Close() { s.queue.Close() }

// Root returns the .swarm-memory directory path.
func (s *Store) Root() string { return s.root }

// sanitizeFilePath turns a file path into a safe single-component file
// name, replacing '/' with '--' per SPEC_FULL.md §4.4.
func sanitizeFilePath(filePath string) string {
	return strings.ReplaceAll(filePath, "/", "--")
}

func (s *Store) synapsePath(agentID string) string {
	return filepath.Join(s.root, synapsesDir, agentID+".md")
}

func (s *Store) trailPath(filePath string) string {
	return filepath.Join(s.root, trailsDir, sanitizeFilePath(filePath)+".md")
}

// AppendSynapticEntry appends one agent iteration's record.
func (s *Store) AppendSynapticEntry(entry SynapticEntry) error {
	return s.queue.Submit(func() error {
		block := fmt.Sprintf(
			"## entry %s\n- agent: %s\n- iteration: %d\n- file: %s\n- action: %s\n- outcome: %s\n\n",
			entry.Timestamp.UTC().Format(time.RFC3339), entry.AgentID, entry.Iteration,
			entry.FilePath, escapeLine(entry.Action), escapeLine(entry.Outcome),
		)
		return appendFile(s.synapsePath(entry.AgentID), block)
	})
}

// AppendTrailMarker appends one marker to the trail file for filePath.
func (s *Store) AppendTrailMarker(filePath string, marker TrailMarker) error {
	return s.queue.Submit(func() error {
		block := fmt.Sprintf(
			"## marker %s\n- agent: %s\n- message: %s\n\n",
			marker.Timestamp.UTC().Format(time.RFC3339), marker.AgentID, escapeLine(marker.Message),
		)
		return appendFile(s.trailPath(filePath), block)
	})
}

// AppendQualityLogEntry appends one deposit's record to quality-log.md.
func (s *Store) AppendQualityLogEntry(entry QualityLogEntry) error {
	return s.queue.Submit(func() error {
		line := fmt.Sprintf(
			"- %s | %s | agent=%s | quality=%.3f | status=%s\n",
			entry.Timestamp.UTC().Format(time.RFC3339), entry.FilePath, entry.AgentID, entry.Quality, entry.Status,
		)
		return appendFile(filepath.Join(s.root, qualityFile), line)
	})
}

// WriteHiveState overwrites hive-state.md with a fresh snapshot, for the
// orchestrator's periodic snapshot timer.
func (s *Store) WriteHiveState(markdown string) error {
	return s.queue.Submit(func() error {
		return os.WriteFile(filepath.Join(s.root, hiveStateFile), []byte(markdown), 0o644)
	})
}

// WriteDependencyMap overwrites dependency-map.md, written once at
// bootstrap from the seeded task's dependency graph.
func (s *Store) WriteDependencyMap(markdown string) error {
	return s.queue.Submit(func() error {
		return os.WriteFile(filepath.Join(s.root, depMapFile), []byte(markdown), 0o644)
	})
}

// ReadHiveState returns the most recently snapshotted hive-state.md
// content, for the status command to read from a completed or in-flight
// run's memory directory. It reads straight off disk (not through the
// write queue) since the status command runs out-of-process from the
// orchestrator that writes it.
func ReadHiveState(base string) (string, error) {
	path := filepath.Join(base, DirName, hiveStateFile)
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("memory: failed to read %s: %w", path, err)
	}
	return string(data), nil
}

func appendFile(path, content string) error {
	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("memory: failed to open %s: %w", path, err)
	}
	defer f.Close()
	if _, err := f.WriteString(content); err != nil {
		return fmt.Errorf("memory: failed to write %s: %w", path, err)
	}
	return nil
}

func escapeLine(s string) string {
	return strings.ReplaceAll(strings.ReplaceAll(s, "\r", " "), "\n", " ")
}
