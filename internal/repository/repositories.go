package repository

import (
	"context"
	"fmt"

	"github.com/deppfellow/survival-api/internal/config"
	"github.com/deppfellow/survival-api/internal/server"
)

// Repositories is a container for all repository instances.
//
// The service only has one resource, so it holds a single store; the
// container keeps the same wiring shape as the other layers.
type Repositories struct {
	Predictions RecordStore
}

// NewRepositories opens the store selected by store.backend.
//
// PostgreSQL and Redis reuse the connections the server container already
// owns; SQLite and DynamoDB are opened here and released by Close.
func NewRepositories(ctx context.Context, s *server.Server) (*Repositories, error) {
	cfg := s.Config

	var (
		store RecordStore
		err   error
	)

	switch cfg.Store.Backend {
	case config.BackendMemory:
		store = NewMemoryStore()

	case config.BackendPostgres:
		if s.DB == nil {
			return nil, fmt.Errorf("postgres backend selected but no database pool is configured")
		}
		store = NewPostgresStore(s.DB.Pool)

	case config.BackendRedis:
		if s.Redis == nil {
			return nil, fmt.Errorf("redis backend selected but no redis client is configured")
		}
		store = NewRedisStore(s.Redis, cfg.Redis.HashKey)

	case config.BackendSQLite:
		store, err = OpenSQLiteStore(cfg.SQLite.Path)
		if err != nil {
			return nil, fmt.Errorf("failed to open sqlite store: %w", err)
		}

	case config.BackendDynamoDB:
		client, err := NewDynamoDBClient(ctx, cfg.DynamoDB)
		if err != nil {
			return nil, err
		}
		store = NewDynamoDBStore(client, cfg.DynamoDB.Table)

	default:
		return nil, fmt.Errorf("unknown store backend %q", cfg.Store.Backend)
	}

	s.Logger.Info().
		Str("backend", cfg.Store.Backend).
		Dur("timeout", cfg.Store.Timeout).
		Msg("record store ready")

	return &Repositories{
		Predictions: Observe(store, cfg.Store.Backend, cfg.Store.Timeout, cfg.Observability.Logging.SlowQueryThreshold),
	}, nil
}

// Close releases the store.
func (r *Repositories) Close() error {
	return r.Predictions.Close()
}
