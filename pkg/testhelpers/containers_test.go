//go:build integration

package testhelpers

import (
	"context"
	"testing"
)

func TestTestDB_Connection(t *testing.T) {
	testDB := GetTestDB(t)

	ctx := context.Background()

	var extension string
	err := testDB.DB.QueryRow(ctx,
		"SELECT extname FROM pg_extension WHERE extname = 'vector'").
		Scan(&extension)
	if err != nil {
		t.Fatalf("vector extension not installed: %v", err)
	}
}

func TestTestDB_Tables(t *testing.T) {
	testDB := GetTestDB(t)

	ctx := context.Background()

	for _, table := range []string{"issues", "issue_comments", "issue_events"} {
		var exists bool
		err := testDB.DB.QueryRow(ctx, `
			SELECT EXISTS (
				SELECT 1 FROM information_schema.tables
				WHERE table_schema = 'public' AND table_name = $1
			)`, table).Scan(&exists)
		if err != nil {
			t.Fatalf("failed to check %s: %v", table, err)
		}
		if !exists {
			t.Errorf("expected table %s to exist", table)
		}
	}
}
