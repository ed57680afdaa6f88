package storage

import (
	"errors"
	"fmt"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"pricetracker/internal/application/port"
	"pricetracker/internal/infrastructure/config"
	"pricetracker/internal/infrastructure/storage/postgres"
	"pricetracker/internal/infrastructure/storage/redis"
	"pricetracker/internal/infrastructure/storage/sqlite"
)

// ErrUnknownBackend marks an unrecognized storage.backend value.
var ErrUnknownBackend = errors.New("unknown storage backend")

// Open initializes the repository for the configured backend. The
// "none" backend is handled by the caller with a noop repository.
func Open(cfg *config.Config) (port.Repository, error) {
	switch cfg.Storage.Backend {
	case "sqlite":
		repo, err := sqlite.New(cfg.Storage.SQLite.Path)
		if err != nil {
			return nil, err
		}
		return repo, nil
	case "redis":
		rdb := goredis.NewClient(&goredis.Options{Addr: cfg.Storage.Redis.Addr})
		ttl := time.Duration(cfg.Storage.Redis.TTLSec) * time.Second
		return redis.New(rdb, cfg.Storage.Redis.Prefix, ttl), nil
	case "postgres":
		repo, err := postgres.New(cfg.Storage.Postgres.DSN)
		if err != nil {
			return nil, err
		}
		return repo, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownBackend, cfg.Storage.Backend)
	}
}
