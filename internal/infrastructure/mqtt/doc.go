// Package mqtt publishes device change notifications to an MQTT broker.
//
// The client is optional infrastructure: the HTTP API never depends on the
// broker being reachable. It connects with auto-reconnect, registers a
// retained Last Will on the system status topic and announces itself
// online once connected.
//
// # Topics
//
//	smarthome/system/status                          retained, online/offline
//	smarthome/device/{id}/status                     retained, current status
//	smarthome/device/{device_id}/sensor/{id}/value   latest sensor reading
//	smarthome/device/{device_id}/event/{event_type}  appended events
//
// # Usage
//
//	client, err := mqtt.Connect(cfg.MQTT)
//	if err != nil {
//	    return err
//	}
//	defer client.Close()
//
//	topic := mqtt.Topics{}.DeviceStatus(42)
//	err = client.PublishRetained(topic, []byte(`{"status":"on"}`))
package mqtt
