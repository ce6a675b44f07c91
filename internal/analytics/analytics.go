// Package analytics reads the aggregate views and the trigger-maintained
// per-home event counter.
//
// Everything here is read-only. The aggregation itself lives in the schema
// (view_home_devices_summary, view_user_activity, view_last_device_events,
// home_events_summary); this package only queries and shapes it.
package analytics

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/nerrad567/smarthome-core/internal/infrastructure/database"
)

// HomeDevicesSummary is one row of view_home_devices_summary.
type HomeDevicesSummary struct {
	HomeID           int64  `json:"home_id"`
	HomeName         string `json:"home_name"`
	DevicesTotal     int64  `json:"devices_total"`
	LightsCount      int64  `json:"lights_count"`
	ThermostatsCount int64  `json:"thermostats_count"`
	CamerasCount     int64  `json:"cameras_count"`
}

// UserActivity is one row of view_user_activity. The timestamps are nil for
// users with no logged actions.
type UserActivity struct {
	UserID        int64      `json:"user_id"`
	UserEmail     string     `json:"user_email"`
	ActionsCount  int64      `json:"actions_count"`
	FirstActionAt *time.Time `json:"first_action_at"`
	LastActionAt  *time.Time `json:"last_action_at"`
}

// LastDeviceEvent is the newest event of one device.
type LastDeviceEvent struct {
	DeviceID   int64     `json:"device_id"`
	DeviceName string    `json:"device_name"`
	DeviceType string    `json:"device_type"`
	Timestamp  time.Time `json:"timestamp"`
	EventType  string    `json:"event_type"`
	Value      *string   `json:"value"`
}

// EventTypeStat counts one device's events of a single type.
type EventTypeStat struct {
	EventType   string `json:"event_type"`
	EventsCount int64  `json:"events_count"`
}

// HomeEventsTotal is the trigger-maintained counter for one home.
// Recorded is false when no event has ever been logged for the home.
type HomeEventsTotal struct {
	HomeID      int64 `json:"home_id"`
	EventsTotal int64 `json:"events_total"`
	Recorded    bool  `json:"-"`
}

// Reader queries the aggregate views.
type Reader struct {
	db *database.DB
}

// NewReader creates a Reader over db.
func NewReader(db *database.DB) *Reader {
	return &Reader{db: db}
}

// HomeDevicesSummary returns device counts per home, ordered by home ID.
// Homes without devices report zeros.
func (r *Reader) HomeDevicesSummary(ctx context.Context) ([]HomeDevicesSummary, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT home_id, home_name, devices_total, lights_count, thermostats_count, cameras_count
		 FROM view_home_devices_summary
		 ORDER BY home_id`)
	if err != nil {
		return nil, fmt.Errorf("querying home devices summary: %w", err)
	}
	defer rows.Close()

	out := []HomeDevicesSummary{}
	for rows.Next() {
		var s HomeDevicesSummary
		if err := rows.Scan(&s.HomeID, &s.HomeName, &s.DevicesTotal,
			&s.LightsCount, &s.ThermostatsCount, &s.CamerasCount); err != nil {
			return nil, fmt.Errorf("scanning home devices summary: %w", err)
		}
		out = append(out, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating home devices summary: %w", err)
	}
	return out, nil
}

// UserActivity returns per-user action counts and activity bounds, ordered by user ID.
func (r *Reader) UserActivity(ctx context.Context) ([]UserActivity, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT user_id, user_email, actions_count, first_action_at, last_action_at
		 FROM view_user_activity
		 ORDER BY user_id`)
	if err != nil {
		return nil, fmt.Errorf("querying user activity: %w", err)
	}
	defer rows.Close()

	out := []UserActivity{}
	for rows.Next() {
		var (
			a           UserActivity
			first, last database.NullTime
		)
		if err := rows.Scan(&a.UserID, &a.UserEmail, &a.ActionsCount, &first, &last); err != nil {
			return nil, fmt.Errorf("scanning user activity: %w", err)
		}
		a.FirstActionAt = first.Ptr()
		a.LastActionAt = last.Ptr()
		out = append(out, a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating user activity: %w", err)
	}
	return out, nil
}

// LastDeviceEvents returns the newest event of every device that has one.
func (r *Reader) LastDeviceEvents(ctx context.Context) ([]LastDeviceEvent, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT device_id, device_name, device_type, timestamp, event_type, value
		 FROM view_last_device_events
		 ORDER BY device_id`)
	if err != nil {
		return nil, fmt.Errorf("querying last device events: %w", err)
	}
	defer rows.Close()

	out := []LastDeviceEvent{}
	for rows.Next() {
		var (
			e     LastDeviceEvent
			ts    database.NullTime
			value sql.NullString
		)
		if err := rows.Scan(&e.DeviceID, &e.DeviceName, &e.DeviceType, &ts, &e.EventType, &value); err != nil {
			return nil, fmt.Errorf("scanning last device event: %w", err)
		}
		e.Timestamp = ts.Time
		if value.Valid {
			v := value.String
			e.Value = &v
		}
		out = append(out, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating last device events: %w", err)
	}
	return out, nil
}

// DeviceEventsCount counts a device's events with from <= timestamp <= to.
// An unknown device counts zero.
func (r *Reader) DeviceEventsCount(ctx context.Context, deviceID int64, from, to time.Time) (int64, error) {
	var n int64
	err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM events WHERE device_id = ? AND timestamp BETWEEN ? AND ?`,
		deviceID, from.UTC(), to.UTC(),
	).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("counting device events: %w", err)
	}
	return n, nil
}

// DeviceEventStats groups a device's events by type, most frequent first.
func (r *Reader) DeviceEventStats(ctx context.Context, deviceID int64) ([]EventTypeStat, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT event_type, COUNT(*) AS events_count
		 FROM events
		 WHERE device_id = ?
		 GROUP BY event_type
		 ORDER BY events_count DESC, event_type`,
		deviceID)
	if err != nil {
		return nil, fmt.Errorf("querying device event stats: %w", err)
	}
	defer rows.Close()

	out := []EventTypeStat{}
	for rows.Next() {
		var s EventTypeStat
		if err := rows.Scan(&s.EventType, &s.EventsCount); err != nil {
			return nil, fmt.Errorf("scanning device event stats: %w", err)
		}
		out = append(out, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating device event stats: %w", err)
	}
	return out, nil
}

// HomeEventsTotal reads the counter row for a home. A missing row is not an
// error; it reports zero with Recorded false.
func (r *Reader) HomeEventsTotal(ctx context.Context, homeID int64) (HomeEventsTotal, error) {
	out := HomeEventsTotal{HomeID: homeID}
	err := r.db.QueryRowContext(ctx,
		`SELECT events_total FROM home_events_summary WHERE home_id = ?`, homeID,
	).Scan(&out.EventsTotal)
	switch {
	case err == nil:
		out.Recorded = true
		return out, nil
	case errors.Is(err, sql.ErrNoRows):
		return out, nil
	default:
		return out, fmt.Errorf("reading home events summary: %w", err)
	}
}
