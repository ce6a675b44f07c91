package auth

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/nerrad567/smarthome-core/internal/infrastructure/database"
)

// UserRepository defines the interface for user account persistence.
type UserRepository interface {
	Create(ctx context.Context, user *User) error
	CreateFirstAdmin(ctx context.Context, user *User) error
	GetByID(ctx context.Context, id int64) (*User, error)
	GetByEmail(ctx context.Context, email string) (*User, error)
	List(ctx context.Context) ([]User, error)
	CountAdmins(ctx context.Context) (int, error)
	UpdatePasswordHash(ctx context.Context, id int64, passwordHash string) error
}

// SQLUserRepository implements UserRepository on either supported engine.
type SQLUserRepository struct {
	db *database.DB
}

// NewUserRepository creates a user repository backed by db.
func NewUserRepository(db *database.DB) *SQLUserRepository {
	return &SQLUserRepository{db: db}
}

const userColumns = "id, email, password_hash, role, home_id"

// Create inserts a new account and fills in user.ID.
//
// A duplicate email returns ErrEmailTaken. An unknown home_id returns a
// database.ErrConstraintViolation.
func (r *SQLUserRepository) Create(ctx context.Context, user *User) error {
	err := r.db.WithTx(ctx, func(tx *database.Tx) error {
		return tx.QueryRowContext(ctx,
			`INSERT INTO users (email, password_hash, role, home_id) VALUES (?, ?, ?, ?) RETURNING id`,
			user.Email, user.PasswordHash, string(user.Role), nullInt64(user.HomeID),
		).Scan(&user.ID)
	})
	if err != nil {
		if database.ConstraintKindOf(err) == database.ConstraintUnique {
			return ErrEmailTaken
		}
		return fmt.Errorf("creating user: %w", err)
	}
	return nil
}

// CreateFirstAdmin inserts user as an admin only if no admin exists yet.
// Returns ErrAdminExists otherwise. The check and insert are one statement
// inside one transaction; PostgreSQL additionally locks the table so two
// concurrent bootstraps cannot both succeed.
func (r *SQLUserRepository) CreateFirstAdmin(ctx context.Context, user *User) error {
	user.Role = RoleAdmin

	err := r.db.WithTx(ctx, func(tx *database.Tx) error {
		if tx.Dialect() == database.DriverPostgres {
			if _, err := tx.ExecContext(ctx, "LOCK TABLE users IN SHARE ROW EXCLUSIVE MODE"); err != nil {
				return err
			}
		}
		return tx.QueryRowContext(ctx,
			`INSERT INTO users (email, password_hash, role, home_id)
			 SELECT CAST(? AS TEXT), CAST(? AS TEXT), 'admin', CAST(? AS INTEGER)
			 WHERE NOT EXISTS (SELECT 1 FROM users WHERE role = 'admin')
			 RETURNING id`,
			user.Email, user.PasswordHash, nullInt64(user.HomeID),
		).Scan(&user.ID)
	})
	switch {
	case err == nil:
		return nil
	case errors.Is(err, sql.ErrNoRows):
		return ErrAdminExists
	case database.ConstraintKindOf(err) == database.ConstraintUnique:
		return ErrEmailTaken
	default:
		return fmt.Errorf("creating first admin: %w", err)
	}
}

// GetByID retrieves a user by ID.
func (r *SQLUserRepository) GetByID(ctx context.Context, id int64) (*User, error) {
	return scanUser(r.db.QueryRowContext(ctx, "SELECT "+userColumns+" FROM users WHERE id = ?", id))
}

// GetByEmail retrieves a user by email address.
func (r *SQLUserRepository) GetByEmail(ctx context.Context, email string) (*User, error) {
	return scanUser(r.db.QueryRowContext(ctx, "SELECT "+userColumns+" FROM users WHERE email = ?", email))
}

// List returns all users ordered by ID.
func (r *SQLUserRepository) List(ctx context.Context) ([]User, error) {
	rows, err := r.db.QueryContext(ctx, "SELECT "+userColumns+" FROM users ORDER BY id")
	if err != nil {
		return nil, fmt.Errorf("listing users: %w", err)
	}
	defer rows.Close()

	users := []User{}
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		users = append(users, *u)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating users: %w", err)
	}
	return users, nil
}

// CountAdmins returns the number of admin accounts.
func (r *SQLUserRepository) CountAdmins(ctx context.Context) (int, error) {
	var count int
	if err := r.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM users WHERE role = 'admin'").Scan(&count); err != nil {
		return 0, fmt.Errorf("counting admins: %w", err)
	}
	return count, nil
}

// UpdatePasswordHash replaces a user's stored hash.
func (r *SQLUserRepository) UpdatePasswordHash(ctx context.Context, id int64, passwordHash string) error {
	var affected int64
	err := r.db.WithTx(ctx, func(tx *database.Tx) error {
		result, err := tx.ExecContext(ctx, "UPDATE users SET password_hash = ? WHERE id = ?", passwordHash, id)
		if err != nil {
			return err
		}
		affected, err = result.RowsAffected()
		return err
	})
	if err != nil {
		return fmt.Errorf("updating password hash: %w", err)
	}
	if affected == 0 {
		return ErrUserNotFound
	}
	return nil
}

// scanner is satisfied by database.Row and database.Rows.
type scanner interface {
	Scan(dest ...any) error
}

func scanUser(s scanner) (*User, error) {
	var (
		u      User
		role   string
		homeID sql.NullInt64
	)

	if err := s.Scan(&u.ID, &u.Email, &u.PasswordHash, &role, &homeID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("scanning user: %w", err)
	}

	u.Role = Role(role)
	if homeID.Valid {
		id := homeID.Int64
		u.HomeID = &id
	}
	return &u, nil
}

func nullInt64(p *int64) sql.NullInt64 {
	if p == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: *p, Valid: true}
}
