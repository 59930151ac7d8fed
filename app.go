package main

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/dense-analysis/pie/pkg/config"
	"github.com/dense-analysis/pie/pkg/database"
	"github.com/dense-analysis/pie/pkg/embedding"
	"github.com/dense-analysis/pie/pkg/logging"
	"github.com/dense-analysis/pie/pkg/repositories"
)

// migrateDatabase is replaced in tests.
var migrateDatabase = database.Migrate

// openDatabase applies pending migrations and opens the connection pool.
// Migrations go first because every pooled connection registers the vector type.
// Used by commands that write.
func openDatabase(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*database.DB, error) {
	if err := migrateDatabase(cfg.Database.ConnectionString(), logger); err != nil {
		return nil, err
	}
	return connectDatabase(ctx, cfg, logger)
}

// connectDatabase opens the connection pool without touching the schema.
// Used by read-only commands; the schema is managed by `pie migrate` and `pie load`.
func connectDatabase(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*database.DB, error) {
	connString := cfg.Database.ConnectionString()
	logger.Info("Connecting to database", zap.String("dsn", logging.SanitizeConnectionString(connString)))

	return database.NewConnection(ctx, &database.Config{
		URL:            connString,
		MaxConnections: cfg.Database.MaxConnections,
	}, logger)
}

// openRepositories returns the PostgreSQL repositories, or an empty in-memory
// store when dryRun is set. The returned close function is never nil.
func openRepositories(ctx context.Context, cfg *config.Config, dryRun bool, logger *zap.Logger) (*repositories.Repositories, func(), error) {
	if dryRun {
		logger.Info("Dry run: records are kept in memory and discarded on exit")
		return repositories.NewMemoryStore().Repositories(), func() {}, nil
	}

	db, err := openDatabase(ctx, cfg, logger)
	if err != nil {
		return nil, nil, err
	}
	return repositories.NewPostgresRepositories(db), db.Close, nil
}

// newEmbedder builds the process-wide embedder from configuration.
func newEmbedder(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*embedding.TextEmbedder, error) {
	client, err := embedding.NewClient(&embedding.Config{
		Endpoint:   config.ResolveURLForDocker(cfg.Embedding.BaseURL),
		Model:      cfg.Embedding.Model,
		APIKey:     cfg.Embedding.APIKey,
		Dimensions: cfg.Embedding.Dimensions,
	}, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to create embedding client: %w", err)
	}

	splitter, err := embedding.NewPunktSplitter(cfg.Embedding.Language)
	if err != nil {
		return nil, fmt.Errorf("failed to create sentence splitter: %w", err)
	}

	embedder, err := embedding.NewTextEmbedder(ctx, client, embedding.Options{
		Dimensions:   cfg.Embedding.Dimensions,
		MaxBatchSize: cfg.Embedding.MaxBatchSize,
		Splitter:     splitter,
	}, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to create embedder: %w", err)
	}
	return embedder, nil
}
