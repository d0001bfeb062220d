package status

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/compozy/antforge/engine/memory"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func Test_Execute(t *testing.T) {
	t.Run("Should print the hive-state snapshot written by a run", func(t *testing.T) {
		base := t.TempDir()
		stateDir := filepath.Join(base, memory.DirName)
		require.NoError(t, os.MkdirAll(stateDir, 0o755))
		require.NoError(
			t, os.WriteFile(filepath.Join(stateDir, "hive-state.md"), []byte("# hive state\n\nglobal convergence: 0.50\n"), 0o644),
		)

		var buf bytes.Buffer
		require.NoError(t, execute(&buf, base))
		assert.Contains(t, buf.String(), "global convergence: 0.50")
	})

	t.Run("Should error when no snapshot has been written yet", func(t *testing.T) {
		var buf bytes.Buffer
		assert.Error(t, execute(&buf, t.TempDir()))
	})
}
