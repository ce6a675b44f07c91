// Package notify fans committed device changes out to optional sinks.
//
// Handlers call a Notifier after a device status update, a sensor value
// update or an event append has committed. The MQTT sink publishes the new
// state for live subscribers; the InfluxDB sink records history points.
// Sink failures are logged and never reach the caller.
package notify
