package device

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/nerrad567/smarthome-core/internal/infrastructure/database"
)

// SensorRepository stores sensors and their current readings.
type SensorRepository interface {
	CreateSensor(ctx context.Context, sensor *Sensor) error
	GetSensor(ctx context.Context, id int64) (*Sensor, error)
	ListSensorsByDevice(ctx context.Context, deviceID int64) ([]Sensor, error)

	// UpdateSensorValue overwrites the reading and returns the updated row.
	// Returns ErrSensorNotFound when no row was affected.
	UpdateSensorValue(ctx context.Context, id int64, value string) (*Sensor, error)
}

const sensorColumns = "id, device_id, type, value"

// CreateSensor inserts a sensor and fills in its ID.
func (r *SQLRepository) CreateSensor(ctx context.Context, sensor *Sensor) error {
	err := r.db.WithTx(ctx, func(tx *database.Tx) error {
		return tx.QueryRowContext(ctx,
			`INSERT INTO sensors (device_id, type, value) VALUES (?, ?, ?) RETURNING id`,
			sensor.DeviceID, string(sensor.Type), nullStr(sensor.Value),
		).Scan(&sensor.ID)
	})
	if err != nil {
		return fmt.Errorf("inserting sensor: %w", err)
	}
	return nil
}

// GetSensor retrieves a sensor by ID.
func (r *SQLRepository) GetSensor(ctx context.Context, id int64) (*Sensor, error) {
	return getSensor(ctx, r.db, id)
}

// ListSensorsByDevice returns the sensors attached to one device.
func (r *SQLRepository) ListSensorsByDevice(ctx context.Context, deviceID int64) ([]Sensor, error) {
	rows, err := r.db.QueryContext(ctx,
		"SELECT "+sensorColumns+" FROM sensors WHERE device_id = ? ORDER BY id", deviceID)
	if err != nil {
		return nil, fmt.Errorf("querying sensors: %w", err)
	}
	defer rows.Close()

	sensors := []Sensor{}
	for rows.Next() {
		s, err := scanSensor(rows)
		if err != nil {
			return nil, err
		}
		sensors = append(sensors, *s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating sensors: %w", err)
	}
	return sensors, nil
}

// UpdateSensorValue sets a sensor's current reading.
func (r *SQLRepository) UpdateSensorValue(ctx context.Context, id int64, value string) (*Sensor, error) {
	var updated *Sensor
	err := r.db.WithTx(ctx, func(tx *database.Tx) error {
		result, err := tx.ExecContext(ctx, "UPDATE sensors SET value = ? WHERE id = ?", value, id)
		if err != nil {
			return err
		}
		affected, err := result.RowsAffected()
		if err != nil {
			return err
		}
		if affected == 0 {
			return ErrSensorNotFound
		}
		updated, err = getSensor(ctx, tx, id)
		return err
	})
	if err != nil {
		if errors.Is(err, ErrSensorNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("updating sensor value: %w", err)
	}
	return updated, nil
}

func getSensor(ctx context.Context, q database.Querier, id int64) (*Sensor, error) {
	s, err := scanSensor(q.QueryRowContext(ctx, "SELECT "+sensorColumns+" FROM sensors WHERE id = ?", id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrSensorNotFound
		}
		return nil, err
	}
	return s, nil
}

func scanSensor(sc scanner) (*Sensor, error) {
	var (
		s     Sensor
		typ   string
		value sql.NullString
	)
	if err := sc.Scan(&s.ID, &s.DeviceID, &typ, &value); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("scanning sensor: %w", err)
	}
	s.Type = SensorType(typ)
	s.Value = strPtr(value)
	return &s, nil
}
