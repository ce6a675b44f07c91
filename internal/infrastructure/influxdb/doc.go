// Package influxdb records device history in InfluxDB v2.
//
// Two measurements are written, both non-blocking and batched according to
// influxdb.batch_size and influxdb.flush_interval:
//
//	device_events  tags: site, device_id, event_type            fields: value, count
//	sensor_values  tags: site, device_id, sensor_id, sensor_type fields: value or raw
//
// The site tag is set with WithSite. The relational store remains the
// source of truth; these points exist for dashboards and long-range
// queries. Failed batches are counted in Stats and logged via WithLogger.
//
// # Usage
//
//	client, err := influxdb.Connect(ctx, cfg.InfluxDB,
//	    influxdb.WithSite(cfg.Site.ID), influxdb.WithLogger(log))
//	if err != nil {
//	    return err
//	}
//	defer client.Close()
//
//	client.WriteDeviceEvent(ev)
package influxdb
