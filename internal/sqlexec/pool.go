package sqlexec

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	perr "sqlpilot/cli/internal/errors"
	"sqlpilot/cli/internal/dsn"
	"sqlpilot/cli/internal/logging"
)

// Connect normalizes rawDSN, opens a small pool and verifies it with a ping.
func Connect(ctx context.Context, rawDSN string) (*pgxpool.Pool, error) {
	normalized, err := dsn.Parse(rawDSN)
	if err != nil {
		return nil, perr.Wrap(perr.ConfigInvalid, "database connection string", err)
	}
	cfg, err := pgxpool.ParseConfig(normalized)
	if err != nil {
		return nil, perr.Wrap(perr.ConfigInvalid, "database connection string", err)
	}
	cfg.MaxConns = 4
	cfg.MaxConnIdleTime = 5 * time.Minute

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, perr.Wrap(perr.ExecutionFailed, logging.PresentError("open pool", err), err)
	}
	pingCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if err := pool.Ping(pingCtx); err != nil {
		pool.Close()
		return nil, perr.Wrap(perr.ExecutionFailed, logging.PresentError("database unreachable", err), err)
	}
	return pool, nil
}
