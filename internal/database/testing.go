package database

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/yourusername/options-edge/internal/config"
)

// TestDatabaseEnv names the variable that enables integration tests
const TestDatabaseEnv = "OPTIONS_EDGE_TEST_DATABASE"

// SetupTestDB connects to the integration database and bootstraps the schema.
// The test is skipped unless OPTIONS_EDGE_TEST_DATABASE is set.
func SetupTestDB(t *testing.T) *DB {
	t.Helper()
	if os.Getenv(TestDatabaseEnv) == "" {
		t.Skipf("integration test - set %s and OPTIONS_EDGE_DATABASE_* to run", TestDatabaseEnv)
	}

	cfg, err := config.LoadWithDefaults(os.Getenv(TestDatabaseEnv))
	if err != nil {
		t.Fatalf("failed to load test config: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	db, err := NewDB(ctx, &cfg.Database)
	if err != nil {
		t.Fatalf("failed to create test database connection: %v", err)
	}
	if err := db.EnsureSchema(ctx); err != nil {
		db.Close()
		t.Fatalf("failed to bootstrap test schema: %v", err)
	}

	t.Cleanup(db.Close)
	return db
}
