package device

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/nerrad567/smarthome-core/internal/infrastructure/database"
)

// EventRepository appends to and reads the per-device event log.
//
// Implementations must be thread-safe and use UTC timestamps.
type EventRepository interface {
	// CreateEvent appends an event. A zero Timestamp is set to the current
	// UTC time. The home_events_summary counter advances in the same
	// transaction via the database trigger.
	CreateEvent(ctx context.Context, event *Event) error

	// GetEvent retrieves one event. Returns ErrEventNotFound if absent.
	GetEvent(ctx context.Context, id int64) (*Event, error)

	// ListEventsByDevice returns a device's events newest first.
	ListEventsByDevice(ctx context.Context, deviceID int64) ([]Event, error)
}

const eventColumns = "id, device_id, timestamp, event_type, value"

// CreateEvent inserts a new event.
func (r *SQLRepository) CreateEvent(ctx context.Context, event *Event) error {
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now().UTC().Truncate(time.Microsecond)
	} else {
		event.Timestamp = event.Timestamp.UTC()
	}

	err := r.db.WithTx(ctx, func(tx *database.Tx) error {
		return tx.QueryRowContext(ctx,
			`INSERT INTO events (device_id, timestamp, event_type, value) VALUES (?, ?, ?, ?) RETURNING id`,
			event.DeviceID, event.Timestamp, event.EventType, nullStr(event.Value),
		).Scan(&event.ID)
	})
	if err != nil {
		return fmt.Errorf("inserting event: %w", err)
	}
	return nil
}

// GetEvent retrieves an event by ID.
func (r *SQLRepository) GetEvent(ctx context.Context, id int64) (*Event, error) {
	e, err := scanEvent(r.db.QueryRowContext(ctx, "SELECT "+eventColumns+" FROM events WHERE id = ?", id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrEventNotFound
		}
		return nil, err
	}
	return e, nil
}

// ListEventsByDevice returns events for a device ordered by timestamp DESC.
func (r *SQLRepository) ListEventsByDevice(ctx context.Context, deviceID int64) ([]Event, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+eventColumns+`
		 FROM events
		 WHERE device_id = ?
		 ORDER BY timestamp DESC, id DESC`,
		deviceID,
	)
	if err != nil {
		return nil, fmt.Errorf("querying events: %w", err)
	}
	defer rows.Close()

	events := []Event{}
	for rows.Next() {
		e, err := scanEvent(rows)
		if err != nil {
			return nil, err
		}
		events = append(events, *e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating events: %w", err)
	}
	return events, nil
}

func scanEvent(sc scanner) (*Event, error) {
	var (
		e     Event
		ts    database.NullTime
		value sql.NullString
	)
	if err := sc.Scan(&e.ID, &e.DeviceID, &ts, &e.EventType, &value); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("scanning event: %w", err)
	}
	e.Timestamp = ts.Time
	e.Value = strPtr(value)
	return &e, nil
}
