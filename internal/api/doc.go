// Package api provides the HTTP REST API for the smart-home core.
//
// Routes are grouped by the role they require: public (login, first-admin
// bootstrap, health), any authenticated user (rooms, devices, sensors,
// events, rules, analytics) and admin only (homes, users, audit logs).
//
// Every error body has the same shape:
//
//	{"error": {"code": "...", "message": "...", "fields": {...}}, "detail": "..."}
//
// Mutating handlers append an audit log entry after the change commits.
// Device status, sensor value and event writes are also handed to a
// notify.Notifier.
//
//	server, err := api.New(deps)
//	server.Start(ctx)
//	defer server.Close()
package api
