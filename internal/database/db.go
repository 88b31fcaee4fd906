package database

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/bunca/bakery-service/config"
)

// DBTX is satisfied by both the pool and a transaction, so queries can run
// inside or outside of one
type DBTX interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	SendBatch(ctx context.Context, b *pgx.Batch) pgx.BatchResults
}

// DB is a DBTX that can also open transactions. *pgxpool.Pool implements it.
type DB interface {
	DBTX
	Begin(ctx context.Context) (pgx.Tx, error)
}

var (
	pool   *pgxpool.Pool
	poolMu sync.RWMutex
)

// Connect opens the shared connection pool and verifies it with a ping.
// Calling Connect while a pool is open is a no-op.
func Connect(ctx context.Context, connString string, cfg config.DatabaseConfig) error {
	poolMu.Lock()
	defer poolMu.Unlock()
	if pool != nil {
		return nil
	}

	pgCfg, err := pgxpool.ParseConfig(connString)
	if err != nil {
		return fmt.Errorf("error parsing database config: %w", err)
	}
	if cfg.MaxConnections > 0 {
		pgCfg.MaxConns = int32(cfg.MaxConnections)
	}
	if cfg.MinConnections > 0 {
		pgCfg.MinConns = int32(cfg.MinConnections)
	}
	if cfg.MaxConnLifetime > 0 {
		pgCfg.MaxConnLifetime = cfg.MaxConnLifetime
	}
	if cfg.MaxConnIdleTime > 0 {
		pgCfg.MaxConnIdleTime = cfg.MaxConnIdleTime
	}
	pgCfg.HealthCheckPeriod = time.Minute

	p, err := pgxpool.NewWithConfig(ctx, pgCfg)
	if err != nil {
		return fmt.Errorf("error creating connection pool: %w", err)
	}
	if err := p.Ping(ctx); err != nil {
		p.Close()
		return fmt.Errorf("error connecting to database: %w", err)
	}

	pool = p
	return nil
}

// Close closes the shared pool, if any
func Close() {
	poolMu.Lock()
	defer poolMu.Unlock()
	if pool != nil {
		pool.Close()
		pool = nil
	}
}

// Pool returns the shared pool, or nil before Connect
func Pool() *pgxpool.Pool {
	poolMu.RLock()
	defer poolMu.RUnlock()
	return pool
}

// stats returns pool statistics, or nil before Connect
func stats() *pgxpool.Stat {
	poolMu.RLock()
	defer poolMu.RUnlock()
	if pool == nil {
		return nil
	}
	return pool.Stat()
}
