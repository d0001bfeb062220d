// Package cli assembles antforge's command tree: a root command carrying
// global configuration/logging flags, and the run and status subcommands,
// following the teacher's cli/root.go convention of attaching a resolved
// config and logger to the command's context before any RunE executes.
package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/compozy/antforge/cli/cmd/run"
	"github.com/compozy/antforge/cli/cmd/status"
	"github.com/compozy/antforge/pkg/config"
	"github.com/compozy/antforge/pkg/logger"
)

// globalFlags are parsed on the root command and apply to every subcommand.
type globalFlags struct {
	configFile string
	envFile    string
	logLevel   string
	jsonLogs   bool
}

// RootCmd builds the antforge command tree.
func RootCmd() *cobra.Command {
	flags := &globalFlags{}
	root := &cobra.Command{
		Use:           "antforge",
		Short:         "Decentralized multi-agent pheromone coordination engine",
		Long:          "antforge runs a pool of LLM agents against a shared set of file slots, coordinating through a stigmergic pheromone environment instead of direct messages.",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return setupGlobalConfig(cmd, flags)
		},
	}
	configureRootFlags(root, flags)
	root.AddCommand(run.NewCommand())
	root.AddCommand(status.NewCommand())
	return root
}

func configureRootFlags(cmd *cobra.Command, flags *globalFlags) {
	cmd.PersistentFlags().StringVar(&flags.configFile, "config", "", "Path to a YAML configuration file")
	cmd.PersistentFlags().StringVar(&flags.envFile, "env-file", "", "Path to a .env file to load before reading ANTFORGE_* variables")
	cmd.PersistentFlags().StringVar(&flags.logLevel, "log-level", "info", "Log level: debug, info, warn, error, disabled")
	cmd.PersistentFlags().BoolVar(&flags.jsonLogs, "json-logs", false, "Emit logs as JSON")
}

// setupGlobalConfig loads the env file, config file, and environment
// variables into a Manager, resolves the Config, builds the Logger, and
// attaches both to cmd's context so every subcommand's RunE can pull them
// out via config.FromContext / logger.FromContext.
func setupGlobalConfig(cmd *cobra.Command, flags *globalFlags) error {
	mgr, err := config.NewManager()
	if err != nil {
		return fmt.Errorf("cli: failed to initialize config manager: %w", err)
	}
	if err := mgr.LoadEnvFile(flags.envFile); err != nil {
		return err
	}
	if err := mgr.LoadFile(flags.configFile); err != nil {
		return err
	}
	if err := mgr.LoadEnv(); err != nil {
		return err
	}
	cfg, err := mgr.Resolve()
	if err != nil {
		return fmt.Errorf("cli: invalid configuration: %w", err)
	}

	log := logger.NewLogger(&logger.Config{
		Level:      logger.LogLevel(flags.logLevel),
		Output:     os.Stderr,
		JSON:       flags.jsonLogs,
		TimeFormat: "15:04:05",
	})

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	ctx = config.ContextWithManager(ctx, mgr)
	ctx = config.ContextWithConfig(ctx, cfg)
	ctx = logger.ContextWithLogger(ctx, log)
	cmd.SetContext(ctx)
	return nil
}
