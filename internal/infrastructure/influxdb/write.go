package influxdb

import (
	"strconv"
	"time"

	"github.com/influxdata/influxdb-client-go/v2/api/write"

	"github.com/nerrad567/smarthome-core/internal/device"
)

// Measurement names.
const (
	MeasurementDeviceEvents = "device_events"
	MeasurementSensorValues = "sensor_values"
)

// WriteDeviceEvent records an appended event. Non-blocking.
func (c *Client) WriteDeviceEvent(ev *device.Event) {
	if ev == nil || !c.IsConnected() {
		return
	}
	c.writeAPI.WritePoint(deviceEventPoint(ev, c.site))
	c.queued.Add(1)
}

// WriteSensorValue records a sensor's new value. Non-blocking.
func (c *Client) WriteSensorValue(s *device.Sensor) {
	if s == nil || !c.IsConnected() {
		return
	}
	c.writeAPI.WritePoint(sensorValuePoint(s, c.site, time.Now().UTC()))
	c.queued.Add(1)
}

// withSite adds the site tag when one is configured.
func withSite(tags map[string]string, site string) map[string]string {
	if site != "" {
		tags["site"] = site
	}
	return tags
}

func deviceEventPoint(ev *device.Event, site string) *write.Point {
	fields := map[string]interface{}{"count": int64(1)}
	if ev.Value != nil {
		fields["value"] = *ev.Value
	}

	ts := ev.Timestamp
	if ts.IsZero() {
		ts = time.Now().UTC()
	}

	return write.NewPoint(
		MeasurementDeviceEvents,
		withSite(map[string]string{
			"device_id":  strconv.FormatInt(ev.DeviceID, 10),
			"event_type": ev.EventType,
		}, site),
		fields,
		ts,
	)
}

// sensorValuePoint stores numeric readings as a float "value" field so
// they can be aggregated; anything else goes to the string "raw" field.
// A cleared value is recorded as an empty raw string.
func sensorValuePoint(s *device.Sensor, site string, ts time.Time) *write.Point {
	fields := map[string]interface{}{}
	switch {
	case s.Value == nil:
		fields["raw"] = ""
	default:
		if f, err := strconv.ParseFloat(*s.Value, 64); err == nil {
			fields["value"] = f
		} else {
			fields["raw"] = *s.Value
		}
	}

	return write.NewPoint(
		MeasurementSensorValues,
		withSite(map[string]string{
			"device_id":   strconv.FormatInt(s.DeviceID, 10),
			"sensor_id":   strconv.FormatInt(s.ID, 10),
			"sensor_type": string(s.Type),
		}, site),
		fields,
		ts,
	)
}
