package notify

import (
	"context"

	"github.com/nerrad567/smarthome-core/internal/device"
)

// HistoryWriter is the subset of *influxdb.Client used by InfluxSink.
type HistoryWriter interface {
	WriteDeviceEvent(ev *device.Event)
	WriteSensorValue(s *device.Sensor)
}

// InfluxSink records events and sensor readings as time-series points.
// Device status changes are already captured in the relational store and
// are not written.
type InfluxSink struct {
	w HistoryWriter
}

// NewInfluxSink wraps w.
func NewInfluxSink(w HistoryWriter) *InfluxSink {
	return &InfluxSink{w: w}
}

func (s *InfluxSink) DeviceStatusChanged(context.Context, *device.Device) {}

func (s *InfluxSink) SensorValueChanged(_ context.Context, sn *device.Sensor) {
	s.w.WriteSensorValue(sn)
}

func (s *InfluxSink) EventRecorded(_ context.Context, ev *device.Event) {
	s.w.WriteDeviceEvent(ev)
}
