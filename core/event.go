package core

import (
	"context"
	"time"
)

// Event is the streaming unit emitted while a workflow runs. One event is
// produced per message a node folds into the shared state, correlated by run
// ID and attributed to the emitting node.
type Event struct {
	ID        string    `json:"id"`
	RunID     string    `json:"run_id"`
	Node      string    `json:"node"`
	Message   Message   `json:"message"`
	Timestamp time.Time `json:"timestamp"`
}

// NewEvent creates an event bound to a run and authored by a node.
func NewEvent(runID, node string, msg Message) Event {
	return Event{
		ID:        NewID(),
		RunID:     runID,
		Node:      node,
		Message:   msg,
		Timestamp: time.Now().UTC(),
	}
}

type runIDKey struct{}

// WithRunID stamps the run identifier onto a context so nodes and tools can
// correlate their work with the enclosing workflow run.
func WithRunID(ctx context.Context, runID string) context.Context {
	return context.WithValue(ctx, runIDKey{}, runID)
}

// RunIDFromContext extracts the run identifier, or "" when absent.
func RunIDFromContext(ctx context.Context) string {
	if v, ok := ctx.Value(runIDKey{}).(string); ok {
		return v
	}
	return ""
}
