package ai

import (
	"context"

	"github.com/zhouzirui/edu-guide/backend/internal/model/chat"
)

// Request is a single completion request.
type Request struct {
	System  string
	History []chat.Turn
	Query   string
}

// Provider performs one request/response call against a generative model.
// Implementations return raw errors; Service maps them onto Failure kinds.
type Provider interface {
	Name() string
	Complete(ctx context.Context, req Request) (string, error)
}

// trimHistory keeps the most recent limit turns.
func trimHistory(turns []chat.Turn, limit int) []chat.Turn {
	if limit <= 0 || len(turns) == 0 {
		return nil
	}
	if len(turns) > limit {
		turns = turns[len(turns)-limit:]
	}
	return turns
}
