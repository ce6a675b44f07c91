package mqtt

import "errors"

// Errors returned by the MQTT client. Compare with errors.Is.
var (
	ErrNotConnected     = errors.New("mqtt: client not connected")
	ErrConnectionFailed = errors.New("mqtt: connection failed")
	ErrPublishFailed    = errors.New("mqtt: publish failed")
	ErrInvalidQoS       = errors.New("mqtt: invalid QoS level (must be 0, 1, or 2)")
	ErrInvalidTopic     = errors.New("mqtt: topic cannot be empty")
	ErrPayloadTooLarge  = errors.New("mqtt: payload too large")
)
