package location

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/nerrad567/smarthome-core/internal/infrastructure/database"
)

// Repository defines the interface for home and room persistence.
type Repository interface {
	CreateHome(ctx context.Context, home *Home) error
	GetHome(ctx context.Context, id int64) (*Home, error)
	ListHomes(ctx context.Context) ([]Home, error)

	CreateRoom(ctx context.Context, room *Room) error
	GetRoom(ctx context.Context, id int64) (*Room, error)
	ListRoomsByHome(ctx context.Context, homeID int64) ([]Room, error)
}

// SQLRepository implements Repository on either supported engine.
type SQLRepository struct {
	db *database.DB
}

// NewSQLRepository creates a location repository backed by db.
func NewSQLRepository(db *database.DB) *SQLRepository {
	return &SQLRepository{db: db}
}

// CreateHome inserts a home and fills in its ID.
func (r *SQLRepository) CreateHome(ctx context.Context, home *Home) error {
	err := r.db.WithTx(ctx, func(tx *database.Tx) error {
		return tx.QueryRowContext(ctx,
			`INSERT INTO homes (name, address) VALUES (?, ?) RETURNING id`,
			home.Name, nullStr(home.Address),
		).Scan(&home.ID)
	})
	if err != nil {
		return fmt.Errorf("inserting home: %w", err)
	}
	return nil
}

// GetHome returns a single home by ID.
func (r *SQLRepository) GetHome(ctx context.Context, id int64) (*Home, error) {
	var (
		h       Home
		address sql.NullString
	)
	err := r.db.QueryRowContext(ctx, `SELECT id, name, address FROM homes WHERE id = ?`, id).
		Scan(&h.ID, &h.Name, &address)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrHomeNotFound
		}
		return nil, fmt.Errorf("scanning home: %w", err)
	}
	h.Address = strPtr(address)
	return &h, nil
}

// ListHomes returns every home ordered by ID.
func (r *SQLRepository) ListHomes(ctx context.Context) ([]Home, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT id, name, address FROM homes ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("querying homes: %w", err)
	}
	defer rows.Close()

	homes := []Home{}
	for rows.Next() {
		var (
			h       Home
			address sql.NullString
		)
		if err := rows.Scan(&h.ID, &h.Name, &address); err != nil {
			return nil, fmt.Errorf("scanning home row: %w", err)
		}
		h.Address = strPtr(address)
		homes = append(homes, h)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating home rows: %w", err)
	}
	return homes, nil
}

// CreateRoom inserts a room and fills in its ID.
// An unknown home_id surfaces as database.ErrConstraintViolation.
func (r *SQLRepository) CreateRoom(ctx context.Context, room *Room) error {
	err := r.db.WithTx(ctx, func(tx *database.Tx) error {
		return tx.QueryRowContext(ctx,
			`INSERT INTO rooms (home_id, name) VALUES (?, ?) RETURNING id`,
			room.HomeID, room.Name,
		).Scan(&room.ID)
	})
	if err != nil {
		return fmt.Errorf("inserting room: %w", err)
	}
	return nil
}

// GetRoom returns a single room by ID.
func (r *SQLRepository) GetRoom(ctx context.Context, id int64) (*Room, error) {
	var rm Room
	err := r.db.QueryRowContext(ctx, `SELECT id, home_id, name FROM rooms WHERE id = ?`, id).
		Scan(&rm.ID, &rm.HomeID, &rm.Name)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrRoomNotFound
		}
		return nil, fmt.Errorf("scanning room: %w", err)
	}
	return &rm, nil
}

// ListRoomsByHome returns the rooms of one home ordered by ID.
// An unknown home yields an empty slice.
func (r *SQLRepository) ListRoomsByHome(ctx context.Context, homeID int64) ([]Room, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT id, home_id, name FROM rooms WHERE home_id = ? ORDER BY id`, homeID)
	if err != nil {
		return nil, fmt.Errorf("querying rooms: %w", err)
	}
	defer rows.Close()

	rooms := []Room{}
	for rows.Next() {
		var rm Room
		if err := rows.Scan(&rm.ID, &rm.HomeID, &rm.Name); err != nil {
			return nil, fmt.Errorf("scanning room row: %w", err)
		}
		rooms = append(rooms, rm)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating room rows: %w", err)
	}
	return rooms, nil
}

// nullStr converts a *string to a sql.NullString for nullable columns.
func nullStr(s *string) sql.NullString {
	if s == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *s, Valid: true}
}

func strPtr(ns sql.NullString) *string {
	if !ns.Valid {
		return nil
	}
	s := ns.String
	return &s
}
