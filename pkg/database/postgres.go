package database

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	pgxvec "github.com/pgvector/pgvector-go/pgx"
	"go.uber.org/zap"

	"github.com/dense-analysis/pie/pkg/apperrors"
	"github.com/dense-analysis/pie/pkg/logging"
)

// Querier is the subset of pgx used by repositories.
// Both *pgxpool.Pool and pgx.Tx satisfy it.
type Querier interface {
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// DB wraps a pgxpool connection pool.
type DB struct {
	*pgxpool.Pool
}

var _ Querier = (*DB)(nil)

// Config holds database connection configuration.
type Config struct {
	URL             string
	MaxConnections  int32
	MaxConnLifetime time.Duration
	MaxConnIdleTime time.Duration
}

// NewConnection creates a new database connection pool and checks it is live.
// Every connection registers the pgvector types, so the vector extension must
// already exist (run migrations first).
// Failures wrap apperrors.ErrConnection.
func NewConnection(ctx context.Context, cfg *Config, logger *zap.Logger) (*DB, error) {
	logger = logger.Named("database")

	poolConfig, err := pgxpool.ParseConfig(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse database URL: %w: %w", apperrors.ErrConnection, err)
	}

	poolConfig.MaxConns = cfg.MaxConnections
	if poolConfig.MaxConns == 0 {
		poolConfig.MaxConns = 10
	}

	poolConfig.MaxConnLifetime = cfg.MaxConnLifetime
	if poolConfig.MaxConnLifetime == 0 {
		poolConfig.MaxConnLifetime = time.Hour
	}

	poolConfig.MaxConnIdleTime = cfg.MaxConnIdleTime
	if poolConfig.MaxConnIdleTime == 0 {
		poolConfig.MaxConnIdleTime = time.Minute * 30
	}

	poolConfig.AfterConnect = func(ctx context.Context, conn *pgx.Conn) error {
		return pgxvec.RegisterTypes(ctx, conn)
	}

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create connection pool: %w: %w", apperrors.ErrConnection, err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		logger.Error("Database ping failed",
			zap.String("dsn", logging.SanitizeConnectionString(cfg.URL)),
			zap.String("error", logging.SanitizeError(err)))
		return nil, fmt.Errorf("failed to ping database: %w: %w", apperrors.ErrConnection, err)
	}

	logger.Info("Connected to database",
		zap.String("dsn", logging.SanitizeConnectionString(cfg.URL)),
		zap.Int32("max_connections", poolConfig.MaxConns))

	return &DB{Pool: pool}, nil
}

// Close closes the connection pool.
func (db *DB) Close() {
	db.Pool.Close()
}
