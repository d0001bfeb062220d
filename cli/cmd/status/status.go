// Package status implements the "antforge status" command: read the most
// recent hive-state.md snapshot from a run's memory directory and print
// it, following the teacher's cli/cmd command-struct convention.
package status

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/compozy/antforge/engine/memory"
)

type flags struct {
	baseDir string
}

// NewCommand builds the "status" subcommand.
func NewCommand() *cobra.Command {
	f := &flags{}
	cmd := &cobra.Command{
		Use:   "status",
		Short: "Print the most recent hive-state snapshot for a run",
		Long:  "Reads .swarm-memory/hive-state.md from --base-dir, written by the orchestrator's snapshot timer, and prints it as-is.",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return execute(cmd.OutOrStdout(), f.baseDir)
		},
	}
	cmd.Flags().StringVar(&f.baseDir, "base-dir", ".", "Base directory the run's synaptic memory was written under")
	return cmd
}

func execute(w io.Writer, baseDir string) error {
	state, err := memory.ReadHiveState(baseDir)
	if err != nil {
		return fmt.Errorf("status: %w", err)
	}
	fmt.Fprint(w, state)
	return nil
}
