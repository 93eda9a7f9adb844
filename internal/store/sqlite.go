package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	"github.com/zhouzirui/edu-guide/backend/internal/logger"
	"github.com/zhouzirui/edu-guide/backend/internal/model/chat"
)

// SQLiteStore implements Repository using SQLite.
type SQLiteStore struct {
	db  *sql.DB
	log *logger.Logger
}

// NewSQLite opens (and creates if needed) the database at dbPath.
func NewSQLite(dbPath string, log *logger.Logger) (*SQLiteStore, error) {
	if log == nil {
		log = logger.NewNop()
	}
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create database directory: %w", err)
	}

	dsn := dbPath + "?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	db.SetMaxOpenConns(1)
	db.SetConnMaxLifetime(5 * time.Minute)

	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	store := &SQLiteStore{db: db, log: log.With("service", "sqlite_store")}
	if err := store.initSchema(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("initialize schema: %w", err)
	}
	return store, nil
}

func (s *SQLiteStore) initSchema() error {
	query := `
	CREATE TABLE IF NOT EXISTS conversations (
		session_id TEXT PRIMARY KEY,
		stage TEXT NOT NULL,
		state_json TEXT NOT NULL,
		created_at INTEGER NOT NULL,
		updated_at INTEGER NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_conversations_updated ON conversations(updated_at);

	CREATE TABLE IF NOT EXISTS conversation_data (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		session_id TEXT NOT NULL,
		student_name TEXT NOT NULL,
		student_age INTEGER NOT NULL,
		area_of_interest TEXT NOT NULL,
		student_query TEXT NOT NULL,
		guidance_type TEXT NOT NULL,
		created_at INTEGER NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_conversation_data_session ON conversation_data(session_id);
	`
	if _, err := s.db.Exec(query); err != nil {
		return fmt.Errorf("create schema: %w", err)
	}
	return nil
}

func (s *SQLiteStore) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

func (s *SQLiteStore) Get(ctx context.Context, sessionID string) (chat.Session, error) {
	var raw string
	err := s.db.QueryRowContext(ctx, `SELECT state_json FROM conversations WHERE session_id = ?`, sessionID).Scan(&raw)
	if errors.Is(err, sql.ErrNoRows) {
		return chat.Session{}, ErrSessionNotFound
	}
	if err != nil {
		return chat.Session{}, fmt.Errorf("query conversation: %w", err)
	}

	var session chat.Session
	if err := json.Unmarshal([]byte(raw), &session); err != nil {
		return chat.Session{}, fmt.Errorf("decode conversation %s: %w", sessionID, err)
	}
	return session, nil
}

func (s *SQLiteStore) Upsert(ctx context.Context, session chat.Session) error {
	raw, err := json.Marshal(session)
	if err != nil {
		return fmt.Errorf("encode conversation: %w", err)
	}

	query := `
	INSERT INTO conversations (session_id, stage, state_json, created_at, updated_at)
	VALUES (?, ?, ?, ?, ?)
	ON CONFLICT(session_id) DO UPDATE SET
		stage = excluded.stage,
		state_json = excluded.state_json,
		updated_at = excluded.updated_at`

	return s.withRetry(ctx, "upsert conversation", func() error {
		_, err := s.db.ExecContext(ctx, query,
			session.ID, string(session.Stage), string(raw),
			session.CreatedAt.Unix(), session.UpdatedAt.Unix(),
		)
		return err
	})
}

func (s *SQLiteStore) Delete(ctx context.Context, sessionID string) error {
	return s.withRetry(ctx, "delete conversation", func() error {
		_, err := s.db.ExecContext(ctx, `DELETE FROM conversations WHERE session_id = ?`, sessionID)
		return err
	})
}

func (s *SQLiteStore) RecordGuidance(ctx context.Context, rec chat.GuidanceRecord) error {
	query := `
	INSERT INTO conversation_data (session_id, student_name, student_age, area_of_interest, student_query, guidance_type, created_at)
	VALUES (?, ?, ?, ?, ?, ?, ?)`

	return s.withRetry(ctx, "record guidance", func() error {
		_, err := s.db.ExecContext(ctx, query,
			rec.SessionID, rec.StudentName, rec.StudentAge, string(rec.AreaOfInterest),
			rec.StudentQuery, string(rec.GuidanceType), rec.CreatedAt.Unix(),
		)
		return err
	})
}

// GuidanceCount returns the number of analytics rows for a session.
func (s *SQLiteStore) GuidanceCount(ctx context.Context, sessionID string) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM conversation_data WHERE session_id = ?`, sessionID).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("count guidance: %w", err)
	}
	return n, nil
}

func (s *SQLiteStore) CleanupExpired(ctx context.Context, ttl time.Duration) (int64, error) {
	threshold := time.Now().Add(-ttl).Unix()
	var affected int64
	err := s.withRetry(ctx, "cleanup conversations", func() error {
		result, err := s.db.ExecContext(ctx, `DELETE FROM conversations WHERE updated_at < ?`, threshold)
		if err != nil {
			return err
		}
		affected, err = result.RowsAffected()
		return err
	})
	return affected, err
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

const (
	maxWriteAttempts = 3
	retryBaseDelay   = 100 * time.Millisecond
)

// withRetry retries op on SQLITE_BUSY with exponential backoff: 100ms, 200ms.
func (s *SQLiteStore) withRetry(ctx context.Context, what string, op func() error) error {
	var err error
	for i := 0; i < maxWriteAttempts; i++ {
		if err = op(); err == nil {
			return nil
		}
		if !isBusy(err) || i == maxWriteAttempts-1 {
			break
		}

		delay := retryBaseDelay * time.Duration(1<<i)
		s.log.Debug("sqlite busy, retrying", "op", what, "attempt", i+1, "delay", delay)
		select {
		case <-ctx.Done():
			return fmt.Errorf("%s: %w", what, ctx.Err())
		case <-time.After(delay):
		}
	}
	return fmt.Errorf("%s: %w", what, err)
}

func isBusy(err error) bool {
	msg := err.Error()
	return strings.Contains(msg, "database is locked") || strings.Contains(msg, "SQLITE_BUSY")
}
