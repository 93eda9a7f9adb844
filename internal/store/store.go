// Package store persists conversation sessions and guidance analytics.
package store

import (
	"context"
	"errors"
	"time"

	"github.com/zhouzirui/edu-guide/backend/internal/model/chat"
)

var ErrSessionNotFound = errors.New("session not found")

// Repository is the storage collaborator of the chat state machine.
type Repository interface {
	// Get returns ErrSessionNotFound for unknown or expired ids.
	Get(ctx context.Context, sessionID string) (chat.Session, error)

	// Upsert creates or replaces the session keyed by its id.
	Upsert(ctx context.Context, session chat.Session) error

	// Delete removes a session. Deleting an unknown id is not an error.
	Delete(ctx context.Context, sessionID string) error

	// RecordGuidance appends an analytics row for an answered question.
	RecordGuidance(ctx context.Context, rec chat.GuidanceRecord) error

	// CleanupExpired removes sessions idle for longer than ttl.
	CleanupExpired(ctx context.Context, ttl time.Duration) (int64, error)

	// Ping verifies the backend is reachable.
	Ping(ctx context.Context) error

	// Close releases the backend connection.
	Close() error
}
