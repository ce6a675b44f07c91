package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"
)

// Authenticator exchanges credentials for tokens and resolves tokens back to users.
// It holds no per-request state and is safe for concurrent use.
type Authenticator struct {
	users  UserRepository
	tokens *TokenIssuer
	logger *slog.Logger
}

// NewAuthenticator wires the user store and token issuer together.
func NewAuthenticator(users UserRepository, tokens *TokenIssuer, logger *slog.Logger) *Authenticator {
	return &Authenticator{users: users, tokens: tokens, logger: logger}
}

// Tokens returns the issuer used for signing.
func (a *Authenticator) Tokens() *TokenIssuer {
	return a.tokens
}

// Login verifies email and password and issues an access token.
// Unknown email and wrong password both return ErrInvalidCredentials.
func (a *Authenticator) Login(ctx context.Context, email, password string) (string, time.Time, *User, error) {
	user, err := a.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			return "", time.Time{}, nil, ErrInvalidCredentials
		}
		return "", time.Time{}, nil, fmt.Errorf("looking up user: %w", err)
	}

	ok, err := VerifyPassword(password, user.PasswordHash)
	if err != nil {
		a.logger.Warn("stored password hash unreadable", "user_id", user.ID, "error", err)
		return "", time.Time{}, nil, ErrInvalidCredentials
	}
	if !ok {
		return "", time.Time{}, nil, ErrInvalidCredentials
	}

	if NeedsRehash(user.PasswordHash) {
		a.upgradeHash(ctx, user, password)
	}

	token, expires, err := a.tokens.Issue(user.ID, user.Role)
	if err != nil {
		return "", time.Time{}, nil, err
	}
	return token, expires, user, nil
}

// upgradeHash re-hashes a legacy bcrypt password with Argon2id. Failure is
// logged only; the login itself already succeeded.
func (a *Authenticator) upgradeHash(ctx context.Context, user *User, password string) {
	hash, err := HashPassword(password)
	if err == nil {
		err = a.users.UpdatePasswordHash(ctx, user.ID, hash)
	}
	if err != nil {
		a.logger.Warn("password hash upgrade failed", "user_id", user.ID, "error", err)
		return
	}
	user.PasswordHash = hash
	a.logger.Info("password hash upgraded to argon2id", "user_id", user.ID)
}

// Authenticate decodes a bearer token and loads its user.
//
// Returns ErrUnauthenticated if the token is invalid or expired, or the
// user no longer exists. Any other lookup failure is returned wrapped.
func (a *Authenticator) Authenticate(ctx context.Context, token string) (*User, error) {
	claims, err := a.tokens.Parse(token)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrUnauthenticated, err)
	}

	id, err := claims.UserID()
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrUnauthenticated, err)
	}

	user, err := a.users.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			return nil, fmt.Errorf("%w: %w", ErrUnauthenticated, err)
		}
		return nil, fmt.Errorf("loading token subject: %w", err)
	}
	return user, nil
}

// RequireRole returns ErrForbidden unless user holds exactly role.
func RequireRole(user *User, role Role) error {
	if user == nil || user.Role != role {
		return ErrForbidden
	}
	return nil
}
