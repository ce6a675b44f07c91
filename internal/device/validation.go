package device

import (
	"strings"

	"github.com/nerrad567/smarthome-core/internal/infrastructure/validation"
)

// Column widths from the schema.
const (
	maxNameLength      = 255
	maxStatusLength    = 64
	maxEventTypeLength = 64
	maxValueLength     = 255
)

// ValidateDevice checks a device before persistence. Status is free text;
// only its width is checked.
func ValidateDevice(d *Device) error {
	errs := validation.Errors{}
	d.Name = strings.TrimSpace(d.Name)

	errs.PositiveID("home_id", d.HomeID)
	validation.OneOf(errs, "type", d.Type, AllDeviceTypes()...)
	errs.Required("name", d.Name, maxNameLength)
	errs.MaxLen("status", d.Status, maxStatusLength)
	return errs.Err()
}

// ValidateStatus checks a replacement status. Any string that fits the
// column is accepted, including the empty string; nil means the field was
// absent from the request.
func ValidateStatus(status *string) error {
	errs := validation.Errors{}
	errs.Present("status", status, maxStatusLength)
	return errs.Err()
}

// ValidateSensor checks a sensor before persistence.
func ValidateSensor(s *Sensor) error {
	errs := validation.Errors{}
	errs.PositiveID("device_id", s.DeviceID)
	validation.OneOf(errs, "type", s.Type, AllSensorTypes()...)
	if s.Value != nil {
		errs.MaxLen("value", *s.Value, maxValueLength)
	}
	return errs.Err()
}

// ValidateSensorValue checks a replacement sensor reading. Unlike creation,
// an update must carry a value, though it may be empty.
func ValidateSensorValue(value *string) error {
	errs := validation.Errors{}
	errs.Present("value", value, maxValueLength)
	return errs.Err()
}

// ValidateEvent checks an event before it is appended.
func ValidateEvent(e *Event) error {
	errs := validation.Errors{}
	e.EventType = strings.TrimSpace(e.EventType)

	errs.PositiveID("device_id", e.DeviceID)
	errs.Required("event_type", e.EventType, maxEventTypeLength)
	if e.Value != nil {
		errs.MaxLen("value", *e.Value, maxValueLength)
	}
	return errs.Err()
}
