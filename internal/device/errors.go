package device

import "errors"

// Domain errors for the device package.
//
// These errors can be checked using errors.Is() for error handling:
//
//	if errors.Is(err, device.ErrDeviceNotFound) {
//	    // handle not found case
//	}
var (
	// ErrDeviceNotFound is returned when a device ID does not exist.
	ErrDeviceNotFound = errors.New("device not found")

	// ErrSensorNotFound is returned when a sensor ID does not exist.
	ErrSensorNotFound = errors.New("sensor not found")

	// ErrEventNotFound is returned when an event ID does not exist.
	ErrEventNotFound = errors.New("event not found")
)
