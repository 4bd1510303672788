package repository

import (
	"context"
	"fmt"
	"time"

	"taskdeck/internal/config"
	"taskdeck/internal/logger"

	"github.com/jackc/pgx/v5/pgxpool"
)

// NewPool builds the shared pgx pool both postgres repositories run on.
func NewPool(ctx context.Context, cfg config.DatabaseConfig) (*pgxpool.Pool, error) {
	poolConfig, err := pgxpool.ParseConfig(cfg.URL)
	if err != nil {
		logger.Error("Repository: failed to parse database url", err)
		return nil, fmt.Errorf("parsing database url: %w", err)
	}

	poolConfig.MaxConns = int32(cfg.MaxConnections)
	if poolConfig.MaxConns <= 0 {
		poolConfig.MaxConns = 10
	}
	poolConfig.MinConns = int32(cfg.MinConnections)
	if poolConfig.MinConns <= 0 {
		poolConfig.MinConns = 2
	}
	poolConfig.MaxConnIdleTime = cfg.IdleTimeout
	if poolConfig.MaxConnIdleTime <= 0 {
		poolConfig.MaxConnIdleTime = 5 * time.Minute
	}

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		logger.Error("Repository: failed to create pool", err)
		return nil, fmt.Errorf("creating pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		logger.Error("Repository: ping failed", err)
		pool.Close()
		return nil, fmt.Errorf("pinging database: %w", err)
	}

	logger.Info("Repository: connected to PostgreSQL")
	return pool, nil
}
