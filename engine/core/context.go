package core

import (
	"context"
	"fmt"

	"github.com/google/uuid"
)

// Context key for the run's correlation id
type CorrelationIDKey struct{}

// WithCorrelationID attaches a correlation id to the context, used to tie
// together log lines emitted across one agent iteration or orchestrator run.
func WithCorrelationID(ctx context.Context, id uuid.UUID) context.Context {
	return context.WithValue(ctx, CorrelationIDKey{}, id)
}

// CorrelationID extracts the correlation id from context.
func CorrelationID(ctx context.Context) (uuid.UUID, error) {
	id, ok := ctx.Value(CorrelationIDKey{}).(uuid.UUID)
	if !ok || id == uuid.Nil {
		return uuid.Nil, fmt.Errorf("correlation id not found in context")
	}
	return id, nil
}
