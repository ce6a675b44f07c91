package auth

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/nerrad567/smarthome-core/internal/infrastructure/database"
	"github.com/nerrad567/smarthome-core/internal/infrastructure/database/dbtest"
)

// testDB returns a migrated temporary SQLite database.
func testDB(t *testing.T) *database.DB {
	t.Helper()
	return dbtest.Open(t)
}

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// seedTestHome inserts a home and returns its ID.
func seedTestHome(t *testing.T, db *database.DB, name string) int64 {
	t.Helper()
	return dbtest.InsertID(t, db, "INSERT INTO homes (name, address) VALUES (?, ?) RETURNING id", name, "1 Test Street")
}

// seedTestUser inserts a user with password "test-password".
func seedTestUser(t *testing.T, db *database.DB, email string, role Role) *User {
	t.Helper()

	hash, err := HashPassword("test-password")
	if err != nil {
		t.Fatalf("hashing test password: %v", err)
	}

	user := &User{Email: email, PasswordHash: hash, Role: role}
	if err := NewUserRepository(db).Create(context.Background(), user); err != nil {
		t.Fatalf("creating test user %s: %v", email, err)
	}
	return user
}
