package mqtt

import "fmt"

// Topic prefixes.
const (
	TopicPrefix       = "smarthome"
	TopicPrefixDevice = "smarthome/device"
	TopicPrefixSystem = "smarthome/system"
)

// Topics builds the topic names used by the core.
type Topics struct{}

// SystemStatus returns the retained online/offline topic.
//
// Example: smarthome/system/status
func (Topics) SystemStatus() string {
	return TopicPrefixSystem + "/status"
}

// DeviceStatus returns the retained status topic of a device.
//
// Example: smarthome/device/42/status
func (Topics) DeviceStatus(deviceID int64) string {
	return fmt.Sprintf("%s/%d/status", TopicPrefixDevice, deviceID)
}

// SensorValue returns the topic carrying a sensor's latest value.
//
// Example: smarthome/device/42/sensor/7/value
func (Topics) SensorValue(deviceID, sensorID int64) string {
	return fmt.Sprintf("%s/%d/sensor/%d/value", TopicPrefixDevice, deviceID, sensorID)
}

// DeviceEvent returns the topic for events of one type on a device.
//
// Example: smarthome/device/42/event/motion_detected
func (Topics) DeviceEvent(deviceID int64, eventType string) string {
	return fmt.Sprintf("%s/%d/event/%s", TopicPrefixDevice, deviceID, sanitiseLevel(eventType))
}

// sanitiseLevel keeps a free-form value from adding levels or wildcards
// to a topic.
func sanitiseLevel(s string) string {
	if s == "" {
		return "_"
	}
	b := []byte(s)
	for i, c := range b {
		switch c {
		case '/', '+', '#', 0:
			b[i] = '_'
		}
	}
	return string(b)
}
