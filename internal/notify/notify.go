package notify

import (
	"context"

	"github.com/nerrad567/smarthome-core/internal/device"
	"github.com/nerrad567/smarthome-core/internal/infrastructure/logging"
)

// Notifier receives committed device changes.
type Notifier interface {
	DeviceStatusChanged(ctx context.Context, d *device.Device)
	SensorValueChanged(ctx context.Context, s *device.Sensor)
	EventRecorded(ctx context.Context, ev *device.Event)
}

// Nop discards every notification.
type Nop struct{}

func (Nop) DeviceStatusChanged(context.Context, *device.Device) {}
func (Nop) SensorValueChanged(context.Context, *device.Sensor)  {}
func (Nop) EventRecorded(context.Context, *device.Event)        {}

// Multi forwards each notification to every sink in order.
type Multi []Notifier

func (m Multi) DeviceStatusChanged(ctx context.Context, d *device.Device) {
	for _, n := range m {
		n.DeviceStatusChanged(ctx, d)
	}
}

func (m Multi) SensorValueChanged(ctx context.Context, s *device.Sensor) {
	for _, n := range m {
		n.SensorValueChanged(ctx, s)
	}
}

func (m Multi) EventRecorded(ctx context.Context, ev *device.Event) {
	for _, n := range m {
		n.EventRecorded(ctx, ev)
	}
}

// Combine returns a Notifier over the non-nil sinks: Nop when there are
// none, the sink itself when there is one.
func Combine(sinks ...Notifier) Notifier {
	var m Multi
	for _, s := range sinks {
		if s != nil {
			m = append(m, s)
		}
	}
	switch len(m) {
	case 0:
		return Nop{}
	case 1:
		return m[0]
	default:
		return m
	}
}

func orNop(l *logging.Logger) *logging.Logger {
	if l == nil {
		return logging.Nop()
	}
	return l
}
