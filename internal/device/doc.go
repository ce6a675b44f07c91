// Package device provides devices, their sensors, and the device event log.
//
// A Device belongs to a home and has a fixed type (light, thermostat, camera)
// with a free-form status string. Sensors hang off a device and carry a
// mutable current value. Events are an append-only log per device; inserting
// one also advances the per-home counter maintained by the database trigger.
//
// # Usage
//
//	repo := device.NewSQLRepository(db)
//
//	d := &device.Device{HomeID: 1, Type: device.TypeLight, Name: "Lamp", Status: "off"}
//	if err := device.ValidateDevice(d); err != nil {
//	    return err
//	}
//	if err := repo.CreateDevice(ctx, d); err != nil {
//	    return err
//	}
//
//	updated, err := repo.UpdateDeviceStatus(ctx, d.ID, "on")
//	if errors.Is(err, device.ErrDeviceNotFound) {
//	    // no such device
//	}
//
// # Thread Safety
//
// SQLRepository holds no mutable state and is safe for concurrent use.
package device
