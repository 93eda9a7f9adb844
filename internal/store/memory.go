package store

import (
	"context"
	"sync"
	"time"

	"github.com/zhouzirui/edu-guide/backend/internal/model/chat"
)

// MemoryStore keeps sessions in process memory.
type MemoryStore struct {
	mu       sync.RWMutex
	sessions map[string]chat.Session
	guidance []chat.GuidanceRecord
}

// NewMemory creates an empty in-memory repository.
func NewMemory() *MemoryStore {
	return &MemoryStore{sessions: make(map[string]chat.Session)}
}

func (s *MemoryStore) Get(_ context.Context, sessionID string) (chat.Session, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	session, ok := s.sessions[sessionID]
	if !ok {
		return chat.Session{}, ErrSessionNotFound
	}
	return session.Clone(), nil
}

func (s *MemoryStore) Upsert(_ context.Context, session chat.Session) error {
	s.mu.Lock()
	s.sessions[session.ID] = session.Clone()
	s.mu.Unlock()
	return nil
}

func (s *MemoryStore) Delete(_ context.Context, sessionID string) error {
	s.mu.Lock()
	delete(s.sessions, sessionID)
	s.mu.Unlock()
	return nil
}

func (s *MemoryStore) RecordGuidance(_ context.Context, rec chat.GuidanceRecord) error {
	s.mu.Lock()
	s.guidance = append(s.guidance, rec)
	s.mu.Unlock()
	return nil
}

// Guidance returns a copy of the recorded analytics rows.
func (s *MemoryStore) Guidance() []chat.GuidanceRecord {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]chat.GuidanceRecord(nil), s.guidance...)
}

func (s *MemoryStore) CleanupExpired(_ context.Context, ttl time.Duration) (int64, error) {
	threshold := time.Now().Add(-ttl)
	var removed int64

	s.mu.Lock()
	defer s.mu.Unlock()
	for id, session := range s.sessions {
		if session.UpdatedAt.Before(threshold) {
			delete(s.sessions, id)
			removed++
		}
	}
	return removed, nil
}

func (s *MemoryStore) Ping(context.Context) error { return nil }

func (s *MemoryStore) Close() error { return nil }
