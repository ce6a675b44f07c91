package device

import (
	"strings"
	"testing"

	"github.com/nerrad567/smarthome-core/internal/infrastructure/validation"
)

func TestValidateDevice(t *testing.T) {
	tests := []struct {
		name    string
		device  Device
		invalid []string
	}{
		{"valid", Device{HomeID: 1, Type: TypeCamera, Name: "Door cam", Status: "idle"}, nil},
		{"everything missing", Device{}, []string{"home_id", "type", "name"}},
		{"empty status", Device{HomeID: 1, Type: TypeLight, Name: "x"}, nil},
		{"unknown type", Device{HomeID: 1, Type: "fridge", Name: "x", Status: "on"}, []string{"type"}},
		{"blank name", Device{HomeID: 1, Type: TypeLight, Name: "   ", Status: "on"}, []string{"name"}},
		{"status too long", Device{HomeID: 1, Type: TypeLight, Name: "x", Status: strings.Repeat("s", maxStatusLength+1)}, []string{"status"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := tt.device
			fields := validation.Fields(ValidateDevice(&d))
			if len(fields) != len(tt.invalid) {
				t.Fatalf("fields = %v, want errors on %v", fields, tt.invalid)
			}
			for _, f := range tt.invalid {
				if fields[f] == "" {
					t.Errorf("missing error for %q in %v", f, fields)
				}
			}
		})
	}
}

func TestValidateSensorAndEvent(t *testing.T) {
	if err := ValidateSensor(&Sensor{DeviceID: 1, Type: SensorDoor}); err != nil {
		t.Errorf("ValidateSensor(valid) = %v", err)
	}
	if f := validation.Fields(ValidateSensor(&Sensor{DeviceID: 1, Type: "humidity"})); f["type"] == "" {
		t.Errorf("ValidateSensor(bad type) fields = %v", f)
	}
	empty, on := "", "on"
	if err := ValidateSensorValue(&empty); err != nil {
		t.Errorf("ValidateSensorValue(empty) = %v", err)
	}
	if err := ValidateSensorValue(nil); err == nil {
		t.Error("ValidateSensorValue(nil) should fail")
	}
	if err := ValidateStatus(&on); err != nil {
		t.Errorf("ValidateStatus(on) = %v", err)
	}
	if err := ValidateStatus(&empty); err != nil {
		t.Errorf("ValidateStatus(empty) = %v", err)
	}
	long := strings.Repeat("x", maxStatusLength+1)
	if f := validation.Fields(ValidateStatus(&long)); f["status"] == "" {
		t.Errorf("ValidateStatus(long) fields = %v", f)
	}

	e := &Event{DeviceID: 1, EventType: " motion_detected "}
	if err := ValidateEvent(e); err != nil {
		t.Errorf("ValidateEvent(valid) = %v", err)
	}
	if e.EventType != "motion_detected" {
		t.Errorf("event type not trimmed: %q", e.EventType)
	}
	if f := validation.Fields(ValidateEvent(&Event{})); f["device_id"] == "" || f["event_type"] == "" {
		t.Errorf("ValidateEvent(empty) fields = %v", f)
	}
}
