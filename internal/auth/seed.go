package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
)

// SeedAdmin creates the configured bootstrap admin if no admin exists yet.
// With no email configured it only warns when the system has no admin, since
// POST /users/init-admin remains open until one is created.
// Returns true if an account was created.
func SeedAdmin(ctx context.Context, users UserRepository, email, password string, logger *slog.Logger) (bool, error) {
	if email == "" {
		count, err := users.CountAdmins(ctx)
		if err != nil {
			return false, fmt.Errorf("checking admin count: %w", err)
		}
		if count == 0 {
			logger.Warn("no admin account exists; POST /users/init-admin is open until one is created")
		}
		return false, nil
	}

	hash, err := HashPassword(password)
	if err != nil {
		return false, fmt.Errorf("hashing bootstrap password: %w", err)
	}

	admin := &User{Email: email, PasswordHash: hash}
	switch err := users.CreateFirstAdmin(ctx, admin); {
	case err == nil:
		logger.Warn("bootstrap admin account created",
			"email", email,
			"action_required", "rotate the bootstrap password",
		)
		return true, nil
	case errors.Is(err, ErrAdminExists):
		logger.Info("admin exists, skipping bootstrap")
		return false, nil
	default:
		return false, fmt.Errorf("creating bootstrap admin: %w", err)
	}
}
