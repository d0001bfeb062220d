package core

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func Test_CorrelationIDContext(t *testing.T) {
	t.Run("Should set and get correlation id from context", func(t *testing.T) {
		ctx := context.Background()
		id := uuid.New()
		ctx = WithCorrelationID(ctx, id)
		got, err := CorrelationID(ctx)
		assert.NoError(t, err)
		assert.Equal(t, id, got)
	})
	t.Run("Should error when correlation id not present", func(t *testing.T) {
		_, err := CorrelationID(context.Background())
		assert.ErrorContains(t, err, "correlation id not found")
	})
}
