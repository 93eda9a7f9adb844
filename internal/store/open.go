package store

import (
	"context"
	"fmt"
	"time"

	"github.com/zhouzirui/edu-guide/backend/internal/config"
	"github.com/zhouzirui/edu-guide/backend/internal/logger"
)

// Open builds the repository selected by cfg.Driver.
func Open(ctx context.Context, cfg config.StoreConfig, ttl time.Duration, log *logger.Logger) (Repository, error) {
	switch cfg.Driver {
	case config.StoreMemory, "":
		return NewMemory(), nil
	case config.StoreSQLite:
		repo, err := NewSQLite(cfg.SQLitePath, log)
		if err != nil {
			return nil, err
		}
		return repo, nil
	case config.StoreRedis:
		repo, err := NewRedis(ctx, RedisOptions{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
			Prefix:   cfg.RedisPrefix,
			TTL:      ttl,
		}, log)
		if err != nil {
			return nil, err
		}
		return repo, nil
	default:
		return nil, fmt.Errorf("unknown store driver %q", cfg.Driver)
	}
}
