package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/zhouzirui/edu-guide/backend/internal/logger"
	"github.com/zhouzirui/edu-guide/backend/internal/model/chat"
)

// guidanceListCap bounds the analytics list kept in Redis.
const guidanceListCap = 10000

// RedisStore keeps sessions as JSON values that expire after ttl of inactivity.
type RedisStore struct {
	rdb    *goredis.Client
	prefix string
	ttl    time.Duration
	log    *logger.Logger
}

// RedisOptions configures NewRedis.
type RedisOptions struct {
	Addr     string
	Password string
	DB       int
	Prefix   string
	TTL      time.Duration
}

// NewRedis connects to Redis and verifies the connection.
func NewRedis(ctx context.Context, opts RedisOptions, log *logger.Logger) (*RedisStore, error) {
	if opts.Addr == "" {
		return nil, fmt.Errorf("missing redis address")
	}

	rdb := goredis.NewClient(&goredis.Options{
		Addr:        opts.Addr,
		Password:    opts.Password,
		DB:          opts.DB,
		DialTimeout: 5 * time.Second,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := rdb.Ping(pingCtx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}

	return NewRedisWithClient(rdb, opts.Prefix, opts.TTL, log), nil
}

// NewRedisWithClient wraps an existing client.
func NewRedisWithClient(rdb *goredis.Client, prefix string, ttl time.Duration, log *logger.Logger) *RedisStore {
	if log == nil {
		log = logger.NewNop()
	}
	return &RedisStore{
		rdb:    rdb,
		prefix: prefix,
		ttl:    ttl,
		log:    log.With("service", "redis_store"),
	}
}

func (s *RedisStore) sessionKey(id string) string {
	return s.prefix + "session:" + id
}

func (s *RedisStore) guidanceKey() string {
	return s.prefix + "guidance"
}

func (s *RedisStore) Get(ctx context.Context, sessionID string) (chat.Session, error) {
	raw, err := s.rdb.Get(ctx, s.sessionKey(sessionID)).Bytes()
	if errors.Is(err, goredis.Nil) {
		return chat.Session{}, ErrSessionNotFound
	}
	if err != nil {
		return chat.Session{}, fmt.Errorf("redis get session: %w", err)
	}

	var session chat.Session
	if err := json.Unmarshal(raw, &session); err != nil {
		return chat.Session{}, fmt.Errorf("decode session %s: %w", sessionID, err)
	}
	return session, nil
}

func (s *RedisStore) Upsert(ctx context.Context, session chat.Session) error {
	raw, err := json.Marshal(session)
	if err != nil {
		return fmt.Errorf("encode session: %w", err)
	}
	if err := s.rdb.Set(ctx, s.sessionKey(session.ID), raw, s.ttl).Err(); err != nil {
		return fmt.Errorf("redis set session: %w", err)
	}
	return nil
}

func (s *RedisStore) Delete(ctx context.Context, sessionID string) error {
	if err := s.rdb.Del(ctx, s.sessionKey(sessionID)).Err(); err != nil {
		return fmt.Errorf("redis delete session: %w", err)
	}
	return nil
}

func (s *RedisStore) RecordGuidance(ctx context.Context, rec chat.GuidanceRecord) error {
	raw, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("encode guidance: %w", err)
	}

	pipe := s.rdb.TxPipeline()
	pipe.LPush(ctx, s.guidanceKey(), raw)
	pipe.LTrim(ctx, s.guidanceKey(), 0, guidanceListCap-1)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("redis record guidance: %w", err)
	}
	return nil
}

// CleanupExpired is a no-op: session keys carry their own TTL.
func (s *RedisStore) CleanupExpired(context.Context, time.Duration) (int64, error) {
	return 0, nil
}

func (s *RedisStore) Ping(ctx context.Context) error {
	return s.rdb.Ping(ctx).Err()
}

func (s *RedisStore) Close() error {
	return s.rdb.Close()
}
