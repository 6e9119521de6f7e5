// Package persistence selects the record store a binary runs against.
package persistence

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/jimiryquai/training-manager/internal/config"
	"github.com/jimiryquai/training-manager/internal/domain"
	"github.com/jimiryquai/training-manager/internal/persistence/postgres"
	"github.com/jimiryquai/training-manager/internal/persistence/sqlite"
)

// Backend is an opened record store. Pool is set only for the postgres
// driver, which is the only one with an outbox to dispatch.
type Backend struct {
	Store domain.RecordStore
	Pool  *pgxpool.Pool
	close func()
}

// Close releases the underlying connections.
func (b *Backend) Close() {
	if b != nil && b.close != nil {
		b.close()
	}
}

// Open connects to the store named by cfg.StoreDriver.
func Open(ctx context.Context, cfg config.Config) (*Backend, error) {
	switch cfg.StoreDriver {
	case config.DriverPostgres:
		pool, err := pgxpool.New(ctx, cfg.PostgresURL)
		if err != nil {
			return nil, fmt.Errorf("connect to postgres: %w", err)
		}
		if cfg.ApplySchema {
			if err := postgres.ApplySchema(ctx, pool); err != nil {
				pool.Close()
				return nil, fmt.Errorf("apply schema: %w", err)
			}
		}
		return &Backend{Store: postgres.NewRepository(pool), Pool: pool, close: pool.Close}, nil
	case config.DriverSQLite:
		store, err := sqlite.Open(cfg.SQLitePath)
		if err != nil {
			return nil, err
		}
		return &Backend{Store: store, close: func() { _ = store.Close() }}, nil
	default:
		return nil, fmt.Errorf("unknown store driver %q", cfg.StoreDriver)
	}
}
