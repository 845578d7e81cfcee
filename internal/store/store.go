// Package store executes queries against the shipment database. It owns
// the process-wide connection pool: Open is called exactly once during
// startup, the returned Store is shared by every request, and Close is
// called once during shutdown. Nothing else may open connections.
package store

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	"shiptrack-graphql/internal/config"
	"shiptrack-graphql/internal/logging"

	_ "github.com/go-sql-driver/mysql"
)

// Store wraps the shared database handle.
type Store struct {
	db *sql.DB
}

// Open establishes the database connection pool and verifies connectivity.
func Open(ctx context.Context, cfg config.DatabaseConfig, logger *logging.Logger) (*Store, error) {
	db, err := sql.Open("mysql", cfg.DSN())
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if cfg.Pool.MaxOpen > 0 {
		db.SetMaxOpenConns(cfg.Pool.MaxOpen)
	}
	if cfg.Pool.MaxIdle > 0 {
		db.SetMaxIdleConns(cfg.Pool.MaxIdle)
	}
	if cfg.Pool.MaxLifetime > 0 {
		db.SetConnMaxLifetime(cfg.Pool.MaxLifetime)
	}

	pingCtx := ctx
	if cfg.ConnectionTimeout > 0 {
		var cancel context.CancelFunc
		pingCtx, cancel = context.WithTimeout(ctx, cfg.ConnectionTimeout)
		defer cancel()
	}
	if err := db.PingContext(pingCtx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	logger.Info("database connected",
		slog.String("host", cfg.Host),
		slog.Int("max_open", cfg.Pool.MaxOpen),
	)

	return &Store{db: db}, nil
}

// NewWithDB wraps an existing handle. Used by tests with a mock driver.
func NewWithDB(db *sql.DB) *Store {
	return &Store{db: db}
}

// Close tears down the connection pool.
func (s *Store) Close() error {
	return s.db.Close()
}

// Ping verifies database connectivity for health checks.
func (s *Store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// nullableTime converts a sql.NullTime into a *time.Time.
func nullableTime(v sql.NullTime) *time.Time {
	if !v.Valid {
		return nil
	}
	t := v.Time
	return &t
}
