package db

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v4/pgxpool"

	"gitlab.com/swifttrack/driver-app/internal/config"
)

// Connect opens a pool against the dispatch database.
func Connect(ctx context.Context, cfg config.PostgresConfig) (*Pool, error) {
	pool, err := pgxpool.Connect(ctx, cfg.DSN())
	if err != nil {
		return nil, fmt.Errorf("connect to dispatch db: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping dispatch db: %w", err)
	}
	return NewPool(pool), nil
}
