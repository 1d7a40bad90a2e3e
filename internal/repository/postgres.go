package repository

import (
	"context"
	"fmt"
	"time"

	"flight_board/internal/config"

	"github.com/jackc/pgx/v5/pgxpool"
)

// NewPool opens the pool the board and ingest paths share and checks that
// the arrivals and departures tables are reachable.
func NewPool(ctx context.Context, dsn string, pc config.PoolConfig) (*pgxpool.Pool, error) {
	cfg, err := poolConfig(dsn, pc)
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(ctx, connectTimeout(pc))
	defer cancel()

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("create pg pool: %w", err)
	}

	for _, table := range []string{TableArrivals, TableDepartures} {
		if _, err := pool.Exec(ctx, "SELECT 1 FROM "+table+" LIMIT 1"); err != nil {
			pool.Close()
			return nil, fmt.Errorf("check table %s: %w", table, err)
		}
	}

	return pool, nil
}

// poolConfig applies pc over the DSN. Zero durations keep the pgx defaults.
func poolConfig(dsn string, pc config.PoolConfig) (*pgxpool.Config, error) {
	cfg, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("parse db dsn: %w", err)
	}

	if pc.MaxConns > 0 {
		cfg.MaxConns = pc.MaxConns
	}
	cfg.MinConns = min(max(pc.MinConns, 0), cfg.MaxConns)
	if pc.MaxConnIdleTime > 0 {
		cfg.MaxConnIdleTime = pc.MaxConnIdleTime
	}
	if pc.MaxConnLifetime > 0 {
		cfg.MaxConnLifetime = pc.MaxConnLifetime
	}
	cfg.ConnConfig.ConnectTimeout = connectTimeout(pc)
	cfg.HealthCheckPeriod = time.Minute

	return cfg, nil
}

func connectTimeout(pc config.PoolConfig) time.Duration {
	if pc.ConnectTimeout > 0 {
		return pc.ConnectTimeout
	}
	return 5 * time.Second
}
