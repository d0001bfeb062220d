package hive

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func Test_WorkRecommendation(t *testing.T) {
	t.Run("Should skip a file that is already excellent", func(t *testing.T) {
		assert.Equal(t, "SKIP – already excellent", WorkRecommendation(StatusExcellent, 0, 0))
	})

	t.Run("Should advise avoiding a file with two or more active agents even when excellent status would not otherwise apply", func(t *testing.T) {
		assert.Equal(t, "AVOID – too many agents", WorkRecommendation(StatusSolid, 5, 0))
	})

	t.Run("Should let excellent short-circuit ahead of the too-many-agents override", func(t *testing.T) {
		assert.Equal(t, "SKIP – already excellent", WorkRecommendation(StatusExcellent, 5, 0))
	})

	t.Run("Should flag a blocked file with active signals as high priority", func(t *testing.T) {
		assert.Equal(t, "HIGH PRIORITY – has interface mismatches", WorkRecommendation(StatusBlocked, 0, 2))
	})

	t.Run("Should flag an empty file as high priority", func(t *testing.T) {
		assert.Equal(t, "HIGH PRIORITY – needs initial solution", WorkRecommendation(StatusEmpty, 0, 0))
	})

	t.Run("Should rate attempted and partial files as medium priority", func(t *testing.T) {
		assert.Equal(t, "MEDIUM – needs improvement", WorkRecommendation(StatusAttempted, 0, 0))
		assert.Equal(t, "MEDIUM – needs improvement", WorkRecommendation(StatusPartial, 1, 0))
	})

	t.Run("Should rate a solid file with fewer than two agents as low priority", func(t *testing.T) {
		assert.Equal(t, "LOW – already solid", WorkRecommendation(StatusSolid, 1, 3))
	})

	t.Run("Should fall back to normal for an unrecognized combination", func(t *testing.T) {
		assert.Equal(t, "NORMAL", WorkRecommendation(StatusBlocked, 0, 0))
	})
}
