package main

import (
	"context"
	"errors"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/dense-analysis/pie/pkg/apperrors"
	"github.com/dense-analysis/pie/pkg/config"
)

// stubMigrations replaces migrateDatabase with a counter returning err.
func stubMigrations(t *testing.T, err error) *int {
	t.Helper()
	calls := 0
	original := migrateDatabase
	migrateDatabase = func(connString string, logger *zap.Logger) error {
		calls++
		return err
	}
	t.Cleanup(func() { migrateDatabase = original })
	return &calls
}

// unreachableConfig points at a port nothing listens on.
func unreachableConfig() *config.Config {
	return &config.Config{
		Database: config.DatabaseConfig{
			Host:     "127.0.0.1",
			Port:     1,
			User:     "pie",
			Database: "pie",
			SSLMode:  "disable",
		},
	}
}

func TestConnectDatabase_DoesNotMigrate(t *testing.T) {
	calls := stubMigrations(t, nil)
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	db, err := connectDatabase(ctx, unreachableConfig(), zap.NewNop())
	if err == nil {
		db.Close()
		t.Fatal("expected connection error")
	}
	if !errors.Is(err, apperrors.ErrConnection) {
		t.Errorf("expected ErrConnection, got %v", err)
	}
	if *calls != 0 {
		t.Errorf("read-only connection ran migrations %d times", *calls)
	}
}

func TestOpenDatabase_MigratesBeforeConnecting(t *testing.T) {
	migrateErr := errors.New("migration failed")
	calls := stubMigrations(t, migrateErr)

	_, err := openDatabase(context.Background(), unreachableConfig(), zap.NewNop())
	if !errors.Is(err, migrateErr) {
		t.Errorf("expected migration error, got %v", err)
	}
	if *calls != 1 {
		t.Errorf("expected 1 migration run, got %d", *calls)
	}
}
