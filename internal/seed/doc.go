// Package seed fills an empty database with a demonstration data set:
// homes with rooms, devices, sensors, a month of events, automation rules
// and an audit trail.
//
// Everything is written in one transaction, so a failed run leaves the
// database untouched. Event rows go through the normal insert path, which
// means home_events_summary is maintained by its trigger exactly as it is in
// production.
package seed
