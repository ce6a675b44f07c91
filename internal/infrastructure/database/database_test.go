package database

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"
)

// TestOpen verifies database connection establishment.
func TestOpen(t *testing.T) {
	t.Run("creates database file and directory", func(t *testing.T) {
		dbPath := filepath.Join(t.TempDir(), "subdir", "nested", "test.db")

		db, err := Open(Config{
			Path:        dbPath,
			WALMode:     true,
			BusyTimeout: 5,
		})
		if err != nil {
			t.Fatalf("Open() error = %v", err)
		}
		defer db.Close() //nolint:errcheck // Test cleanup

		if _, err := os.Stat(dbPath); os.IsNotExist(err) {
			t.Error("database file was not created")
		}
		if db.Path() != dbPath {
			t.Errorf("Path() = %v, want %v", db.Path(), dbPath)
		}
		if db.Dialect() != DriverSQLite {
			t.Errorf("Dialect() = %q, want %q (empty driver defaults to sqlite)", db.Dialect(), DriverSQLite)
		}
	})

	t.Run("rejects unknown driver", func(t *testing.T) {
		if _, err := Open(Config{Driver: "oracle"}); err == nil {
			t.Error("Open() expected error for unknown driver")
		}
	})
}

func TestOpenPostgres(t *testing.T) {
	dsn := os.Getenv("SMARTHOME_TEST_POSTGRES_DSN")
	if dsn == "" {
		t.Skip("SMARTHOME_TEST_POSTGRES_DSN not set")
	}

	db, err := Open(Config{Driver: DriverPostgres, DSN: dsn, MaxOpenConns: 4})
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	defer db.Close() //nolint:errcheck // Test cleanup

	if err := db.HealthCheck(context.Background()); err != nil {
		t.Errorf("HealthCheck() error = %v", err)
	}
	if got := db.Stats().MaxOpenConnections; got != 4 {
		t.Errorf("MaxOpenConnections = %d, want 4", got)
	}
}

// TestHealthCheck verifies the health check functionality.
func TestHealthCheck(t *testing.T) {
	db := openTestDB(t)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := db.HealthCheck(ctx); err != nil {
		t.Errorf("HealthCheck() error = %v", err)
	}
}

// TestClose verifies graceful shutdown.
func TestClose(t *testing.T) {
	db := openTestDB(t)

	if err := db.Close(); err != nil {
		t.Errorf("Close() error = %v", err)
	}

	db.DB = nil
	if err := db.Close(); err != nil {
		t.Errorf("Close() on nil DB error = %v", err)
	}

	var nilDB *DB
	if err := nilDB.Close(); err != nil {
		t.Errorf("Close() on nil wrapper error = %v", err)
	}
}

func TestExecContext(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()

	if _, err := db.ExecContext(ctx, "CREATE TABLE test_table (id INTEGER PRIMARY KEY, name TEXT NOT NULL UNIQUE)"); err != nil {
		t.Fatalf("ExecContext() CREATE error = %v", err)
	}

	result, err := db.ExecContext(ctx, "INSERT INTO test_table (name) VALUES (?)", "test")
	if err != nil {
		t.Fatalf("ExecContext() INSERT error = %v", err)
	}
	if id, _ := result.LastInsertId(); id != 1 {
		t.Errorf("LastInsertId() = %v, want 1", id)
	}

	_, err = db.ExecContext(ctx, "INSERT INTO test_table (name) VALUES (?)", "test")
	if !errors.Is(err, ErrConstraintViolation) {
		t.Fatalf("duplicate INSERT error = %v, want ErrConstraintViolation", err)
	}
	if kind := ConstraintKindOf(err); kind != ConstraintUnique {
		t.Errorf("ConstraintKindOf() = %q, want %q", kind, ConstraintUnique)
	}
}

func TestQueryContext(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()

	if _, err := db.ExecContext(ctx, "CREATE TABLE q (id INTEGER PRIMARY KEY, v TEXT)"); err != nil {
		t.Fatalf("CREATE TABLE error = %v", err)
	}
	for _, v := range []string{"a", "b", "c"} {
		if _, err := db.ExecContext(ctx, "INSERT INTO q (v) VALUES (?)", v); err != nil {
			t.Fatalf("INSERT error = %v", err)
		}
	}

	rows, err := db.QueryContext(ctx, "SELECT v FROM q WHERE v <> ? ORDER BY id", "b")
	if err != nil {
		t.Fatalf("QueryContext() error = %v", err)
	}
	var got []string
	for rows.Next() {
		var v string
		if err := rows.Scan(&v); err != nil {
			t.Fatalf("Scan() error = %v", err)
		}
		got = append(got, v)
	}
	if err := rows.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}
	if len(got) != 2 || got[0] != "a" || got[1] != "c" {
		t.Errorf("rows = %v, want [a c]", got)
	}
}

func TestWithTx(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()

	if _, err := db.ExecContext(ctx, "CREATE TABLE tx_test (id INTEGER PRIMARY KEY, value TEXT)"); err != nil {
		t.Fatalf("CREATE TABLE error = %v", err)
	}

	count := func() int {
		t.Helper()
		var n int
		if err := db.QueryRowContext(ctx, "SELECT COUNT(*) FROM tx_test").Scan(&n); err != nil {
			t.Fatalf("COUNT error = %v", err)
		}
		return n
	}

	t.Run("commits on success", func(t *testing.T) {
		err := db.WithTx(ctx, func(tx *Tx) error {
			_, err := tx.ExecContext(ctx, "INSERT INTO tx_test (value) VALUES (?)", "committed")
			return err
		})
		if err != nil {
			t.Fatalf("WithTx() error = %v", err)
		}
		if n := count(); n != 1 {
			t.Errorf("rows = %d, want 1", n)
		}
	})

	t.Run("rolls back and returns the original error", func(t *testing.T) {
		sentinel := errors.New("boom")
		err := db.WithTx(ctx, func(tx *Tx) error {
			if _, err := tx.ExecContext(ctx, "INSERT INTO tx_test (value) VALUES (?)", "lost"); err != nil {
				return err
			}
			return sentinel
		})
		if !errors.Is(err, sentinel) {
			t.Fatalf("WithTx() error = %v, want sentinel", err)
		}
		if n := count(); n != 1 {
			t.Errorf("rows = %d, want 1 after rollback", n)
		}
	})

	t.Run("rolls back and re-panics", func(t *testing.T) {
		defer func() {
			if recover() == nil {
				t.Error("expected panic to propagate")
			}
			if n := count(); n != 1 {
				t.Errorf("rows = %d, want 1 after panic rollback", n)
			}
		}()
		_ = db.WithTx(ctx, func(tx *Tx) error { //nolint:errcheck // Panics
			if _, err := tx.ExecContext(ctx, "INSERT INTO tx_test (value) VALUES (?)", "lost"); err != nil {
				return err
			}
			panic("handler bug")
		})
	})
}

// TestBeginTxRollback verifies manual transaction rollback.
func TestBeginTxRollback(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()

	if _, err := db.ExecContext(ctx, "CREATE TABLE tx_rollback_test (id INTEGER PRIMARY KEY, value TEXT)"); err != nil {
		t.Fatalf("CREATE TABLE error = %v", err)
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		t.Fatalf("BeginTx() error = %v", err)
	}
	if _, err = tx.ExecContext(ctx, "INSERT INTO tx_rollback_test (value) VALUES (?)", "rolled_back"); err != nil {
		t.Fatalf("INSERT error = %v", err)
	}
	if err = tx.Rollback(); err != nil {
		t.Fatalf("Rollback() error = %v", err)
	}

	var count int
	if err := db.QueryRowContext(ctx, "SELECT COUNT(*) FROM tx_rollback_test").Scan(&count); err != nil {
		t.Fatalf("SELECT error = %v", err)
	}
	if count != 0 {
		t.Errorf("expected 0 rows, got %d", count)
	}
}

func TestQueryTimeout(t *testing.T) {
	db := openTestDB(t)
	db.queryTimeout = time.Nanosecond

	// A recursive CTE long enough to outlive the deadline.
	err := db.QueryRowContext(context.Background(), `
		WITH RECURSIVE c(x) AS (SELECT 1 UNION ALL SELECT x + 1 FROM c WHERE x < 50000000)
		SELECT COUNT(*) FROM c`).Scan(new(int))
	if err == nil {
		t.Fatal("expected statement to be cancelled by the query timeout")
	}
}

// TestStats verifies stats are returned.
func TestStats(t *testing.T) {
	db := openTestDB(t)

	if got := db.Stats().MaxOpenConnections; got != 1 {
		t.Errorf("MaxOpenConnections = %v, want 1 (SQLite single writer)", got)
	}
}

// openTestDB creates a temporary database for testing.
func openTestDB(t *testing.T) *DB {
	t.Helper()

	db, err := Open(Config{
		Path:        filepath.Join(t.TempDir(), "test.db"),
		WALMode:     true,
		BusyTimeout: 5,
	})
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}
	t.Cleanup(func() { db.Close() }) //nolint:errcheck // Test cleanup

	return db
}
