// Package run implements the "antforge run" command: load a task file,
// drive one orchestrated run to completion, and print the collected
// file set, following the teacher's cli/cmd/start command-struct and
// flag-registration idiom.
package run

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/goccy/go-yaml"
	"github.com/spf13/cobra"

	"github.com/compozy/antforge/engine/hive"
	"github.com/compozy/antforge/engine/llmrt"
	"github.com/compozy/antforge/engine/orchestrator"
	"github.com/compozy/antforge/engine/validator"
	"github.com/compozy/antforge/pkg/config"
	"github.com/compozy/antforge/pkg/logger"

	"github.com/compozy/antforge/engine/infra/metrics"
)

// flags holds the run command's own flag values, separate from the root
// command's global flags.
type flags struct {
	taskFile        string
	baseDir         string
	provider        string
	model           string
	apiKey          string
	apiURL          string
	validateCommand string
	jsonOutput      bool
}

// NewCommand builds the "run" subcommand.
func NewCommand() *cobra.Command {
	f := &flags{}
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run the agent pool against a task file until it converges or exhausts its iteration cap",
		Long: "Seeds the shared hive from a YAML task file, spawns the configured agent pool against an LLM provider, " +
			"and runs until global convergence reaches the configured threshold, every agent reaches its iteration cap, " +
			"or the command is interrupted.",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return execute(cmd, f)
		},
	}
	registerFlags(cmd, f)
	return cmd
}

func registerFlags(cmd *cobra.Command, f *flags) {
	cmd.Flags().StringVar(&f.taskFile, "task", "", "Path to the YAML task file (required)")
	cmd.Flags().StringVar(&f.baseDir, "base-dir", ".", "Base directory synaptic memory is written under")
	cmd.Flags().StringVar(&f.provider, "provider", "openai", "LLM provider: openai, anthropic, ollama")
	cmd.Flags().StringVar(&f.model, "model", "gpt-4o-mini", "Model name to request from the provider")
	cmd.Flags().StringVar(&f.apiKey, "api-key", "", "Provider API key (falls back to the provider's own environment variable)")
	cmd.Flags().StringVar(&f.apiURL, "api-url", "", "Override the provider's base URL")
	cmd.Flags().StringVar(
		&f.validateCommand, "validate-command", "",
		"Command that validates a submitted file's code, split on whitespace (no shell) and run with a temporary "+
			"copy of the file appended, e.g. \"go build\"; omit to accept every submission",
	)
	cmd.Flags().BoolVar(&f.jsonOutput, "json", false, "Print the run result as JSON instead of a text summary")
	_ = cmd.MarkFlagRequired("task")
}

func execute(cmd *cobra.Command, f *flags) error {
	ctx := cmd.Context()
	cfg := config.FromContext(ctx)
	if cfg == nil {
		cfg = config.Default()
	}
	log := logger.FromContext(ctx)

	task, err := loadTaskFile(f.taskFile)
	if err != nil {
		return err
	}

	model, err := llmrt.ProviderConfig{
		Provider: llmrt.ProviderName(f.provider), Model: f.model, APIKey: f.apiKey, APIURL: f.apiURL,
	}.CreateModel()
	if err != nil {
		return fmt.Errorf("run: failed to construct LLM provider %q: %w", f.provider, err)
	}
	runtime := llmrt.NewLangchainRuntime(model, llmrt.DefaultRetryConfig(), log)

	v := buildValidator(f.validateCommand, f.baseDir)
	rec := metrics.New()

	o := orchestrator.New(cfg, v, runtime, log, rec)
	result, err := o.Run(ctx, task, f.baseDir)
	if err != nil {
		return fmt.Errorf("run: orchestrator failed: %w", err)
	}
	return printResult(cmd.OutOrStdout(), result, f.jsonOutput)
}

func buildValidator(command, workDir string) validator.Validator {
	if command == "" {
		return validator.Passthrough{}
	}
	parts := strings.Fields(command)
	return validator.NewCommandValidator(parts[0], parts[1:], workDir)
}

func loadTaskFile(path string) (hive.TaskSpec, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return hive.TaskSpec{}, fmt.Errorf("run: failed to read task file %s: %w", path, err)
	}
	var task hive.TaskSpec
	if err := yaml.Unmarshal(data, &task); err != nil {
		return hive.TaskSpec{}, fmt.Errorf("run: failed to parse task file %s: %w", path, err)
	}
	if len(task.FileSlots) == 0 {
		return hive.TaskSpec{}, fmt.Errorf("run: task file %s declares no file_slots", path)
	}
	return task, nil
}

func printResult(w io.Writer, result orchestrator.Result, asJSON bool) error {
	if asJSON {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(result)
	}
	fmt.Fprintf(w, "converged: %v (global convergence %.0f%%)\n", result.Converged, result.GlobalConvergence*100)
	fmt.Fprintf(w, "agents spawned: %d\n", result.AgentsSpawned)
	for filePath, code := range result.Files {
		fmt.Fprintf(w, "\n--- %s (%d bytes) ---\n", filePath, len(code))
	}
	return nil
}
