package influxdb

import "errors"

var (
	// ErrNotConnected is returned after Close.
	ErrNotConnected = errors.New("influxdb: not connected")

	// ErrConnectionFailed wraps ping and health failures from Connect.
	ErrConnectionFailed = errors.New("influxdb: connection failed")

	// ErrDisabled is returned by Connect when history writes are turned off.
	ErrDisabled = errors.New("influxdb: telemetry history disabled")
)
