// Package audit records and reads the append-only trail of user actions.
//
// Every mutating API call appends one entry naming the acting user and a
// short description ("Created device: Lamp"). Entries are never updated
// or deleted.
package audit

import (
	"context"
	"fmt"
	"time"

	"github.com/nerrad567/smarthome-core/internal/infrastructure/database"
)

// Page size bounds for List.
const (
	DefaultLimit = 100
	MaxLimit     = 1000
)

// Log represents a single audit trail entry.
type Log struct {
	ID        int64     `json:"id"`
	UserID    int64     `json:"user_id"`
	Action    string    `json:"action"`
	Timestamp time.Time `json:"timestamp"`
}

// Filter controls which audit logs to return.
type Filter struct {
	UserID *int64 // optional: only this user's entries
	Limit  int    // default 100, max 1000
	Offset int    // pagination offset
}

// normalise clamps the page window into range.
func (f *Filter) normalise() {
	if f.Limit <= 0 {
		f.Limit = DefaultLimit
	}
	if f.Limit > MaxLimit {
		f.Limit = MaxLimit
	}
	if f.Offset < 0 {
		f.Offset = 0
	}
}

// Repository defines the interface for audit log operations.
type Repository interface {
	Create(ctx context.Context, log *Log) error
	List(ctx context.Context, filter Filter) ([]Log, error)
}

// SQLRepository stores audit logs on either supported engine.
type SQLRepository struct {
	db *database.DB
}

// NewSQLRepository creates a new audit log repository.
func NewSQLRepository(db *database.DB) *SQLRepository {
	return &SQLRepository{db: db}
}

// Create inserts a new audit log entry. ID is assigned and a zero Timestamp
// is set to the current UTC time.
func (r *SQLRepository) Create(ctx context.Context, log *Log) error {
	if log.Timestamp.IsZero() {
		log.Timestamp = time.Now().UTC().Truncate(time.Microsecond)
	} else {
		log.Timestamp = log.Timestamp.UTC()
	}

	err := r.db.WithTx(ctx, func(tx *database.Tx) error {
		return tx.QueryRowContext(ctx,
			`INSERT INTO logs (user_id, action, timestamp) VALUES (?, ?, ?) RETURNING id`,
			log.UserID, log.Action, log.Timestamp,
		).Scan(&log.ID)
	})
	if err != nil {
		return fmt.Errorf("inserting audit log: %w", err)
	}
	return nil
}

// List returns audit logs matching the filter, most recent first.
func (r *SQLRepository) List(ctx context.Context, filter Filter) ([]Log, error) {
	filter.normalise()

	query := `SELECT id, user_id, action, timestamp FROM logs`
	var args []any
	if filter.UserID != nil {
		query += ` WHERE user_id = ?`
		args = append(args, *filter.UserID)
	}
	query += ` ORDER BY timestamp DESC, id DESC LIMIT ? OFFSET ?`
	args = append(args, filter.Limit, filter.Offset)

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying audit logs: %w", err)
	}
	defer rows.Close()

	logs := []Log{}
	for rows.Next() {
		var (
			log Log
			ts  database.NullTime
		)
		if err := rows.Scan(&log.ID, &log.UserID, &log.Action, &ts); err != nil {
			return nil, fmt.Errorf("scanning audit log: %w", err)
		}
		log.Timestamp = ts.Time
		logs = append(logs, log)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating audit logs: %w", err)
	}
	return logs, nil
}
