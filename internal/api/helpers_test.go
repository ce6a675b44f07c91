package api

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/nerrad567/smarthome-core/internal/analytics"
	"github.com/nerrad567/smarthome-core/internal/audit"
	"github.com/nerrad567/smarthome-core/internal/auth"
	"github.com/nerrad567/smarthome-core/internal/automation"
	"github.com/nerrad567/smarthome-core/internal/device"
	"github.com/nerrad567/smarthome-core/internal/infrastructure/config"
	"github.com/nerrad567/smarthome-core/internal/infrastructure/database"
	"github.com/nerrad567/smarthome-core/internal/infrastructure/database/dbtest"
	"github.com/nerrad567/smarthome-core/internal/infrastructure/logging"
	"github.com/nerrad567/smarthome-core/internal/location"
)

const testSecret = "test-secret-key-at-least-32-characters-long"

// recordingNotifier captures notifications for assertions.
type recordingNotifier struct {
	mu       sync.Mutex
	statuses []device.Device
	sensors  []device.Sensor
	events   []device.Event
}

func (n *recordingNotifier) DeviceStatusChanged(_ context.Context, d *device.Device) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.statuses = append(n.statuses, *d)
}

func (n *recordingNotifier) SensorValueChanged(_ context.Context, s *device.Sensor) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.sensors = append(n.sensors, *s)
}

func (n *recordingNotifier) EventRecorded(_ context.Context, ev *device.Event) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.events = append(n.events, *ev)
}

// testEnv is a server over a migrated SQLite database with one admin and
// one regular user already signed in.
type testEnv struct {
	t          *testing.T
	srv        *Server
	handler    http.Handler
	db         *database.DB
	notifier   *recordingNotifier
	admin      *auth.User
	user       *auth.User
	adminToken string
	userToken  string
}

func newTestEnv(t *testing.T) *testEnv {
	return newTestEnvWith(t, func(*Deps) {})
}

func newTestEnvWith(t *testing.T, tweak func(*Deps)) *testEnv {
	t.Helper()

	db := dbtest.Open(t)
	logger := logging.Nop()
	users := auth.NewUserRepository(db)
	issuer := auth.NewTokenIssuer(testSecret, time.Hour, "smarthome-test")
	notifier := &recordingNotifier{}

	deps := Deps{
		Config: config.APIConfig{
			Host: "127.0.0.1",
			Port: 0,
			CORS: config.CORSConfig{Enabled: true},
		},
		Logger:    logger,
		Auth:      auth.NewAuthenticator(users, issuer, logger.Logger),
		Users:     users,
		Locations: location.NewSQLRepository(db),
		Devices:   device.NewSQLRepository(db),
		Rules:     automation.NewSQLRepository(db),
		Audit:     audit.NewSQLRepository(db),
		Analytics: analytics.NewReader(db),
		Notifier:  notifier,
		DB:        db,
		Version:   "test",
	}
	tweak(&deps)

	srv, err := New(deps)
	if err != nil {
		t.Fatalf("New() error: %v", err)
	}

	env := &testEnv{
		t:        t,
		srv:      srv,
		handler:  srv.Handler(),
		db:       db,
		notifier: notifier,
	}
	env.admin, env.adminToken = env.createUser("admin@example.com", auth.RoleAdmin)
	env.user, env.userToken = env.createUser("user@example.com", auth.RoleUser)
	return env
}

// createUser inserts an account with password "secret-pass" and issues a token.
func (e *testEnv) createUser(email string, role auth.Role) (*auth.User, string) {
	e.t.Helper()

	hash, err := auth.HashPassword("secret-pass")
	if err != nil {
		e.t.Fatalf("HashPassword: %v", err)
	}
	u := &auth.User{Email: email, PasswordHash: hash, Role: role}
	if err := e.srv.users.Create(context.Background(), u); err != nil {
		e.t.Fatalf("creating %s: %v", email, err)
	}
	token, _, err := e.srv.auth.Tokens().Issue(u.ID, role)
	if err != nil {
		e.t.Fatalf("Issue: %v", err)
	}
	return u, token
}

// do sends a JSON request. A nil body sends none; a string is sent raw.
func (e *testEnv) do(method, path, token string, body any) *httptest.ResponseRecorder {
	e.t.Helper()

	var reader *bytes.Reader
	switch b := body.(type) {
	case nil:
		reader = bytes.NewReader(nil)
	case string:
		reader = bytes.NewReader([]byte(b))
	default:
		raw, err := json.Marshal(b)
		if err != nil {
			e.t.Fatalf("marshal: %v", err)
		}
		reader = bytes.NewReader(raw)
	}

	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	e.handler.ServeHTTP(w, req)
	return w
}

// mustStatus fails unless w has the wanted status, then decodes the body into out.
func mustStatus(t *testing.T, w *httptest.ResponseRecorder, want int, out any) {
	t.Helper()
	if w.Code != want {
		t.Fatalf("status = %d, want %d; body: %s", w.Code, want, w.Body.String())
	}
	if out != nil {
		if err := json.Unmarshal(w.Body.Bytes(), out); err != nil {
			t.Fatalf("unmarshal %s: %v", w.Body.String(), err)
		}
	}
}

// errorBody decodes the uniform error shape.
func errorBody(t *testing.T, w *httptest.ResponseRecorder) errorResponse {
	t.Helper()
	var resp errorResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("unmarshal error body %q: %v", w.Body.String(), err)
	}
	return resp
}

// auditActions returns every audit action in insertion order.
func (e *testEnv) auditActions() []string {
	e.t.Helper()
	rows, err := e.db.QueryContext(context.Background(), "SELECT action FROM logs ORDER BY id")
	if err != nil {
		e.t.Fatalf("query logs: %v", err)
	}
	defer rows.Close()

	var out []string
	for rows.Next() {
		var a string
		if err := rows.Scan(&a); err != nil {
			e.t.Fatalf("scan: %v", err)
		}
		out = append(out, a)
	}
	return out
}

func (e *testEnv) seedHome(name string) int64 {
	e.t.Helper()
	return dbtest.InsertID(e.t, e.db, "INSERT INTO homes (name) VALUES (?) RETURNING id", name)
}

func (e *testEnv) seedDevice(homeID int64, typ device.DeviceType, name string) int64 {
	e.t.Helper()
	return dbtest.InsertID(e.t, e.db,
		"INSERT INTO devices (home_id, type, name, status) VALUES (?, ?, ?, 'off') RETURNING id",
		homeID, string(typ), name)
}
