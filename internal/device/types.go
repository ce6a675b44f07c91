package device

import "time"

// DeviceType classifies a device. The set is fixed by a schema CHECK constraint.
type DeviceType string

// Device types.
const (
	TypeLight      DeviceType = "light"
	TypeThermostat DeviceType = "thermostat"
	TypeCamera     DeviceType = "camera"
)

// AllDeviceTypes returns every valid device type.
func AllDeviceTypes() []DeviceType {
	return []DeviceType{TypeLight, TypeThermostat, TypeCamera}
}

// SensorType classifies a sensor. The set is fixed by a schema CHECK constraint.
type SensorType string

// Sensor types.
const (
	SensorMotion SensorType = "motion"
	SensorTemp   SensorType = "temp"
	SensorDoor   SensorType = "door"
)

// AllSensorTypes returns every valid sensor type.
func AllSensorTypes() []SensorType {
	return []SensorType{SensorMotion, SensorTemp, SensorDoor}
}

// Device is a controllable or monitorable appliance in a home.
type Device struct {
	ID     int64      `json:"id"`
	HomeID int64      `json:"home_id"`
	Type   DeviceType `json:"type"`
	Name   string     `json:"name"`
	Status string     `json:"status"`
}

// Sensor is a measurement point attached to a device. Value is overwritten
// in place; no history is kept for sensors.
type Sensor struct {
	ID       int64      `json:"id"`
	DeviceID int64      `json:"device_id"`
	Type     SensorType `json:"type"`
	Value    *string    `json:"value"`
}

// Event is one immutable entry in a device's log.
type Event struct {
	ID        int64     `json:"id"`
	DeviceID  int64     `json:"device_id"`
	Timestamp time.Time `json:"timestamp"`
	EventType string    `json:"event_type"`
	Value     *string   `json:"value"`
}
