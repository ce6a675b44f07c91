package device

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/nerrad567/smarthome-core/internal/infrastructure/database"
)

// Repository defines the interface for device persistence operations.
// This abstraction allows for different implementations and enables
// handler tests without a database.
type Repository interface {
	// CreateDevice inserts a device and fills in its ID.
	// An unknown home surfaces as database.ErrConstraintViolation.
	CreateDevice(ctx context.Context, device *Device) error

	// GetDevice retrieves a device by ID.
	// Returns ErrDeviceNotFound if the device does not exist.
	GetDevice(ctx context.Context, id int64) (*Device, error)

	// ListDevicesByHome retrieves all devices in a home, ordered by ID.
	ListDevicesByHome(ctx context.Context, homeID int64) ([]Device, error)

	// UpdateDeviceStatus replaces the status and returns the updated row.
	// Returns ErrDeviceNotFound when no row was affected.
	UpdateDeviceStatus(ctx context.Context, id int64, status string) (*Device, error)
}

// SQLRepository implements Repository, SensorRepository and EventRepository
// on either supported engine.
type SQLRepository struct {
	db *database.DB
}

// NewSQLRepository creates a new repository backed by db.
func NewSQLRepository(db *database.DB) *SQLRepository {
	return &SQLRepository{db: db}
}

const deviceColumns = "id, home_id, type, name, status"

// CreateDevice inserts a new device.
func (r *SQLRepository) CreateDevice(ctx context.Context, device *Device) error {
	err := r.db.WithTx(ctx, func(tx *database.Tx) error {
		return tx.QueryRowContext(ctx,
			`INSERT INTO devices (home_id, type, name, status) VALUES (?, ?, ?, ?) RETURNING id`,
			device.HomeID, string(device.Type), device.Name, device.Status,
		).Scan(&device.ID)
	})
	if err != nil {
		return fmt.Errorf("inserting device: %w", err)
	}
	return nil
}

// GetDevice retrieves a device by its ID.
func (r *SQLRepository) GetDevice(ctx context.Context, id int64) (*Device, error) {
	return getDevice(ctx, r.db, id)
}

// ListDevicesByHome retrieves every device in a home.
func (r *SQLRepository) ListDevicesByHome(ctx context.Context, homeID int64) ([]Device, error) {
	rows, err := r.db.QueryContext(ctx,
		"SELECT "+deviceColumns+" FROM devices WHERE home_id = ? ORDER BY id", homeID)
	if err != nil {
		return nil, fmt.Errorf("querying devices: %w", err)
	}
	defer rows.Close()

	devices := []Device{}
	for rows.Next() {
		d, err := scanDevice(rows)
		if err != nil {
			return nil, err
		}
		devices = append(devices, *d)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating devices: %w", err)
	}
	return devices, nil
}

// UpdateDeviceStatus sets a device's status. The update and the re-read
// share one transaction so the returned row is the one just written.
func (r *SQLRepository) UpdateDeviceStatus(ctx context.Context, id int64, status string) (*Device, error) {
	var updated *Device
	err := r.db.WithTx(ctx, func(tx *database.Tx) error {
		result, err := tx.ExecContext(ctx, "UPDATE devices SET status = ? WHERE id = ?", status, id)
		if err != nil {
			return err
		}
		affected, err := result.RowsAffected()
		if err != nil {
			return err
		}
		if affected == 0 {
			return ErrDeviceNotFound
		}
		updated, err = getDevice(ctx, tx, id)
		return err
	})
	if err != nil {
		if errors.Is(err, ErrDeviceNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("updating device status: %w", err)
	}
	return updated, nil
}

func getDevice(ctx context.Context, q database.Querier, id int64) (*Device, error) {
	d, err := scanDevice(q.QueryRowContext(ctx, "SELECT "+deviceColumns+" FROM devices WHERE id = ?", id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrDeviceNotFound
		}
		return nil, err
	}
	return d, nil
}

// scanner is satisfied by database.Row and database.Rows.
type scanner interface {
	Scan(dest ...any) error
}

func scanDevice(s scanner) (*Device, error) {
	var (
		d   Device
		typ string
	)
	if err := s.Scan(&d.ID, &d.HomeID, &typ, &d.Name, &d.Status); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("scanning device: %w", err)
	}
	d.Type = DeviceType(typ)
	return &d, nil
}

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
