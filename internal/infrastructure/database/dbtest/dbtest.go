// Package dbtest opens fully migrated databases for package tests.
package dbtest

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/nerrad567/smarthome-core/internal/infrastructure/database"
	_ "github.com/nerrad567/smarthome-core/migrations" // registers the embedded schema
)

// PostgresDSNEnv names the variable that enables PostgreSQL-backed tests.
const PostgresDSNEnv = "SMARTHOME_TEST_POSTGRES_DSN"

// Open creates a temporary SQLite database with every migration applied.
// The file lives in t.TempDir() and the handle is closed on cleanup.
func Open(t testing.TB) *database.DB {
	t.Helper()

	db, err := database.Open(database.Config{
		Path:         filepath.Join(t.TempDir(), "test.db"),
		WALMode:      true,
		BusyTimeout:  5,
		QueryTimeout: 10 * time.Second,
	})
	if err != nil {
		t.Fatalf("opening test db: %v", err)
	}
	t.Cleanup(func() { db.Close() }) //nolint:errcheck // test cleanup

	if err := db.Migrate(context.Background()); err != nil {
		t.Fatalf("migrating test db: %v", err)
	}
	return db
}

// OpenPostgres connects to the database named by SMARTHOME_TEST_POSTGRES_DSN,
// resets it to an empty migrated schema, and skips the test when unset.
func OpenPostgres(t testing.TB) *database.DB {
	t.Helper()

	dsn := os.Getenv(PostgresDSNEnv)
	if dsn == "" {
		t.Skipf("%s not set", PostgresDSNEnv)
	}

	db, err := database.Open(database.Config{Driver: database.DriverPostgres, DSN: dsn, MaxOpenConns: 4})
	if err != nil {
		t.Fatalf("opening postgres: %v", err)
	}
	t.Cleanup(func() { db.Close() }) //nolint:errcheck // test cleanup

	ctx := context.Background()
	if _, err := db.ExecContext(ctx, "DROP SCHEMA public CASCADE; CREATE SCHEMA public"); err != nil {
		t.Fatalf("resetting schema: %v", err)
	}
	if err := db.Migrate(ctx); err != nil {
		t.Fatalf("migrating postgres: %v", err)
	}
	return db
}

// Exec runs a setup statement and fails the test on error.
func Exec(t testing.TB, db *database.DB, query string, args ...any) {
	t.Helper()
	if _, err := db.ExecContext(context.Background(), query, args...); err != nil {
		t.Fatalf("exec %q: %v", query, err)
	}
}

// InsertID runs an INSERT ... RETURNING id and returns the new key.
func InsertID(t testing.TB, db *database.DB, query string, args ...any) int64 {
	t.Helper()
	var id int64
	if err := db.QueryRowContext(context.Background(), query, args...).Scan(&id); err != nil {
		t.Fatalf("insert %q: %v", query, err)
	}
	return id
}
