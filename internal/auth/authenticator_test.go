package auth

import (
	"context"
	"errors"
	"testing"
	"time"

	"golang.org/x/crypto/bcrypt"
)

func newTestAuthenticator(t *testing.T) (*Authenticator, *SQLUserRepository) {
	t.Helper()
	users := NewUserRepository(testDB(t))
	return NewAuthenticator(users, NewTokenIssuer(testSecret, time.Hour, "smarthome-core"), quietLogger()), users
}

func TestAuthenticator_LoginAndAuthenticate(t *testing.T) {
	authn, users := newTestAuthenticator(t)
	ctx := context.Background()

	hash, _ := HashPassword("admin123")
	admin := &User{Email: "admin@example.com", PasswordHash: hash, Role: RoleAdmin}
	if err := users.Create(ctx, admin); err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	token, expires, user, err := authn.Login(ctx, "admin@example.com", "admin123")
	if err != nil {
		t.Fatalf("Login() error = %v", err)
	}
	if user.ID != admin.ID {
		t.Errorf("Login() user = %d, want %d", user.ID, admin.ID)
	}
	if !expires.After(time.Now()) {
		t.Errorf("expires = %v, want future", expires)
	}

	got, err := authn.Authenticate(ctx, token)
	if err != nil {
		t.Fatalf("Authenticate() error = %v", err)
	}
	if got.ID != admin.ID || got.Role != RoleAdmin {
		t.Errorf("Authenticate() = %+v, want admin %d", got, admin.ID)
	}
}

func TestAuthenticator_LoginFailures(t *testing.T) {
	authn, users := newTestAuthenticator(t)
	ctx := context.Background()

	hash, _ := HashPassword("right")
	if err := users.Create(ctx, &User{Email: "u@example.com", PasswordHash: hash, Role: RoleUser}); err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	tests := []struct {
		name, email, password string
	}{
		{"wrong password", "u@example.com", "wrong"},
		{"unknown email", "nobody@example.com", "right"},
		{"empty password", "u@example.com", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, _, err := authn.Login(ctx, tt.email, tt.password)
			if !errors.Is(err, ErrInvalidCredentials) {
				t.Errorf("Login() error = %v, want ErrInvalidCredentials", err)
			}
		})
	}
}

func TestAuthenticator_UpgradesBcryptHash(t *testing.T) {
	authn, users := newTestAuthenticator(t)
	ctx := context.Background()

	legacy, _ := bcrypt.GenerateFromPassword([]byte("pass1"), bcrypt.MinCost)
	u := &User{Email: "user1@example.com", PasswordHash: string(legacy), Role: RoleUser}
	if err := users.Create(ctx, u); err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	if _, _, _, err := authn.Login(ctx, "user1@example.com", "pass1"); err != nil {
		t.Fatalf("Login() error = %v", err)
	}

	stored, _ := users.GetByID(ctx, u.ID)
	if NeedsRehash(stored.PasswordHash) {
		t.Errorf("stored hash %q was not upgraded", stored.PasswordHash[:4])
	}
	if _, _, _, err := authn.Login(ctx, "user1@example.com", "pass1"); err != nil {
		t.Errorf("Login() after upgrade error = %v", err)
	}
}

func TestAuthenticator_AuthenticateRejects(t *testing.T) {
	authn, _ := newTestAuthenticator(t)
	ctx := context.Background()

	orphan, _, _ := authn.Tokens().Issue(12345, RoleUser)
	foreign, _, _ := NewTokenIssuer("other-secret", time.Hour, "smarthome-core").Issue(1, RoleAdmin)

	for name, token := range map[string]string{
		"garbage":       "not.a.jwt",
		"empty":         "",
		"unknown user":  orphan,
		"foreign token": foreign,
	} {
		t.Run(name, func(t *testing.T) {
			if _, err := authn.Authenticate(ctx, token); !errors.Is(err, ErrUnauthenticated) {
				t.Errorf("Authenticate() error = %v, want ErrUnauthenticated", err)
			}
		})
	}
}

func TestRequireRole(t *testing.T) {
	admin := &User{ID: 1, Role: RoleAdmin}
	member := &User{ID: 2, Role: RoleUser}

	if err := RequireRole(admin, RoleAdmin); err != nil {
		t.Errorf("RequireRole(admin, admin) = %v", err)
	}
	if err := RequireRole(member, RoleAdmin); !errors.Is(err, ErrForbidden) {
		t.Errorf("RequireRole(user, admin) = %v, want ErrForbidden", err)
	}
	if err := RequireRole(nil, RoleUser); !errors.Is(err, ErrForbidden) {
		t.Errorf("RequireRole(nil) = %v, want ErrForbidden", err)
	}
}
