package notify

import (
	"context"
	"encoding/json"
	"time"

	"github.com/nerrad567/smarthome-core/internal/device"
	"github.com/nerrad567/smarthome-core/internal/infrastructure/logging"
	"github.com/nerrad567/smarthome-core/internal/infrastructure/mqtt"
)

// Publisher is the subset of *mqtt.Client used by MQTTSink.
type Publisher interface {
	PublishRetained(topic string, payload []byte) error
	PublishEvent(topic string, payload []byte) error
}

// MQTTSink publishes device changes as JSON.
type MQTTSink struct {
	pub    Publisher
	logger *logging.Logger
	now    func() time.Time
}

// NewMQTTSink wraps pub. A nil logger discards publish failures.
func NewMQTTSink(pub Publisher, logger *logging.Logger) *MQTTSink {
	return &MQTTSink{pub: pub, logger: orNop(logger), now: time.Now}
}

type statusMessage struct {
	DeviceID  int64  `json:"device_id"`
	HomeID    int64  `json:"home_id"`
	Type      string `json:"type"`
	Status    string `json:"status"`
	Timestamp string `json:"timestamp"`
}

type sensorMessage struct {
	SensorID  int64   `json:"sensor_id"`
	DeviceID  int64   `json:"device_id"`
	Type      string  `json:"type"`
	Value     *string `json:"value"`
	Timestamp string  `json:"timestamp"`
}

type eventMessage struct {
	EventID   int64   `json:"event_id"`
	DeviceID  int64   `json:"device_id"`
	EventType string  `json:"event_type"`
	Value     *string `json:"value"`
	Timestamp string  `json:"timestamp"`
}

// DeviceStatusChanged publishes the status retained so new subscribers see
// the current value.
func (s *MQTTSink) DeviceStatusChanged(_ context.Context, d *device.Device) {
	msg := statusMessage{
		DeviceID:  d.ID,
		HomeID:    d.HomeID,
		Type:      string(d.Type),
		Status:    d.Status,
		Timestamp: s.stamp(time.Time{}),
	}
	s.publish(mqtt.Topics{}.DeviceStatus(d.ID), msg, true)
}

func (s *MQTTSink) SensorValueChanged(_ context.Context, sn *device.Sensor) {
	msg := sensorMessage{
		SensorID:  sn.ID,
		DeviceID:  sn.DeviceID,
		Type:      string(sn.Type),
		Value:     sn.Value,
		Timestamp: s.stamp(time.Time{}),
	}
	s.publish(mqtt.Topics{}.SensorValue(sn.DeviceID, sn.ID), msg, false)
}

func (s *MQTTSink) EventRecorded(_ context.Context, ev *device.Event) {
	msg := eventMessage{
		EventID:   ev.ID,
		DeviceID:  ev.DeviceID,
		EventType: ev.EventType,
		Value:     ev.Value,
		Timestamp: s.stamp(ev.Timestamp),
	}
	s.publish(mqtt.Topics{}.DeviceEvent(ev.DeviceID, ev.EventType), msg, false)
}

func (s *MQTTSink) stamp(t time.Time) string {
	if t.IsZero() {
		t = s.now()
	}
	return t.UTC().Format(time.RFC3339Nano)
}

func (s *MQTTSink) publish(topic string, msg any, retained bool) {
	payload, err := json.Marshal(msg)
	if err != nil {
		s.logger.Error("encoding mqtt notification", "topic", topic, "error", err)
		return
	}

	if retained {
		err = s.pub.PublishRetained(topic, payload)
	} else {
		err = s.pub.PublishEvent(topic, payload)
	}
	if err != nil {
		s.logger.Warn("mqtt notification not delivered", "topic", topic, "error", err)
	}
}
