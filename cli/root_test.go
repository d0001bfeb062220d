package cli

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/compozy/antforge/pkg/config"
	"github.com/compozy/antforge/pkg/logger"
)

func Test_RootCmd(t *testing.T) {
	t.Run("Should register the run and status subcommands", func(t *testing.T) {
		root := RootCmd()
		names := make([]string, 0)
		for _, c := range root.Commands() {
			names = append(names, c.Name())
		}
		assert.Contains(t, names, "run")
		assert.Contains(t, names, "status")
	})

	t.Run("Should attach a resolved config and logger to the command context", func(t *testing.T) {
		root := RootCmd()
		root.SetArgs([]string{"status", "--base-dir", t.TempDir()})
		root.SetContext(context.Background())
		_ = root.Execute()

		cmd, _, err := root.Find([]string{"status"})
		require.NoError(t, err)
		assert.NotNil(t, config.FromContext(cmd.Context()))
		assert.NotNil(t, logger.FromContext(cmd.Context()))
	})
}
