package api

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/nerrad567/smarthome-core/internal/analytics"
	"github.com/nerrad567/smarthome-core/internal/audit"
	"github.com/nerrad567/smarthome-core/internal/auth"
	"github.com/nerrad567/smarthome-core/internal/automation"
	"github.com/nerrad567/smarthome-core/internal/device"
	"github.com/nerrad567/smarthome-core/internal/infrastructure/config"
	"github.com/nerrad567/smarthome-core/internal/infrastructure/logging"
	"github.com/nerrad567/smarthome-core/internal/location"
	"github.com/nerrad567/smarthome-core/internal/notify"
)

// gracefulShutdownTimeout is the maximum time to wait for in-flight requests
// to complete during shutdown.
const gracefulShutdownTimeout = 10 * time.Second

// DeviceStore covers devices, their sensors and their event log.
type DeviceStore interface {
	device.Repository
	device.SensorRepository
	device.EventRepository
}

// AnalyticsReader serves the aggregate endpoints.
type AnalyticsReader interface {
	HomeDevicesSummary(ctx context.Context) ([]analytics.HomeDevicesSummary, error)
	UserActivity(ctx context.Context) ([]analytics.UserActivity, error)
	LastDeviceEvents(ctx context.Context) ([]analytics.LastDeviceEvent, error)
	DeviceEventsCount(ctx context.Context, deviceID int64, from, to time.Time) (int64, error)
	DeviceEventStats(ctx context.Context, deviceID int64) ([]analytics.EventTypeStat, error)
	HomeEventsTotal(ctx context.Context, homeID int64) (analytics.HomeEventsTotal, error)
}

// HealthChecker is implemented by the database handle.
type HealthChecker interface {
	HealthCheck(ctx context.Context) error
}

// Deps holds the dependencies required by the API server.
type Deps struct {
	Config    config.APIConfig
	RateLimit config.RateLimitConfig
	Logger    *logging.Logger
	Auth      *auth.Authenticator
	Users     auth.UserRepository
	Locations location.Repository
	Devices   DeviceStore
	Rules     automation.Repository
	Audit     audit.Repository
	Analytics AnalyticsReader
	Notifier  notify.Notifier // optional
	DB        HealthChecker   // optional, reported by /health
	// Components are optional sinks (mqtt, influxdb) reported by /health.
	// Their failures degrade the status but keep a 200.
	Components map[string]HealthChecker
	Version    string
}

// Server is the HTTP API server.
//
// It is created with New(), serves via Handler() or Start(), and is stopped
// with Close().
type Server struct {
	cfg        config.APIConfig
	logger     *logging.Logger
	auth       *auth.Authenticator
	users      auth.UserRepository
	locations  location.Repository
	devices    DeviceStore
	rules      automation.Repository
	audit      audit.Repository
	analytics  AnalyticsReader
	notifier   notify.Notifier
	db         HealthChecker
	components map[string]HealthChecker
	limiter    *clientLimiter
	version    string
	now        func() time.Time

	server   *http.Server
	listener net.Listener
	cancel   context.CancelFunc
}

// New creates a new API server with the given dependencies.
// The server is not started until Start() is called.
func New(deps Deps) (*Server, error) {
	var missing []string
	if deps.Logger == nil {
		missing = append(missing, "logger")
	}
	if deps.Auth == nil {
		missing = append(missing, "authenticator")
	}
	if deps.Users == nil {
		missing = append(missing, "user repository")
	}
	if deps.Locations == nil {
		missing = append(missing, "location repository")
	}
	if deps.Devices == nil {
		missing = append(missing, "device store")
	}
	if deps.Rules == nil {
		missing = append(missing, "rule repository")
	}
	if deps.Audit == nil {
		missing = append(missing, "audit repository")
	}
	if deps.Analytics == nil {
		missing = append(missing, "analytics reader")
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("api: missing dependencies: %v", missing)
	}

	s := &Server{
		cfg:        deps.Config,
		logger:     deps.Logger,
		auth:       deps.Auth,
		users:      deps.Users,
		locations:  deps.Locations,
		devices:    deps.Devices,
		rules:      deps.Rules,
		audit:      deps.Audit,
		analytics:  deps.Analytics,
		notifier:   deps.Notifier,
		db:         deps.DB,
		components: deps.Components,
		version:    deps.Version,
		now:        time.Now,
	}
	if s.notifier == nil {
		s.notifier = notify.Nop{}
	}
	if deps.RateLimit.Enabled {
		s.limiter = newClientLimiter(deps.RateLimit.RequestsPerMinute, deps.RateLimit.Burst)
	}

	return s, nil
}

// Handler returns the fully wired router.
func (s *Server) Handler() http.Handler {
	return s.buildRouter()
}

// Start binds the listener synchronously, so an unusable address is
// reported to the caller, then serves in a background goroutine. The server
// can be stopped with Close().
func (s *Server) Start(ctx context.Context) error {
	addr := net.JoinHostPort(s.cfg.Host, strconv.Itoa(s.cfg.Port))
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("listening on %s: %w", addr, err)
	}

	var srvCtx context.Context
	srvCtx, s.cancel = context.WithCancel(ctx)

	if s.limiter != nil {
		go s.limiter.sweepLoop(srvCtx)
	}

	s.listener = ln
	s.server = &http.Server{
		Addr:              ln.Addr().String(),
		Handler:           s.buildRouter(),
		ReadTimeout:       time.Duration(s.cfg.Timeouts.Read) * time.Second,
		ReadHeaderTimeout: time.Duration(s.cfg.Timeouts.Read) * time.Second,
		WriteTimeout:      time.Duration(s.cfg.Timeouts.Write) * time.Second,
		IdleTimeout:       time.Duration(s.cfg.Timeouts.Idle) * time.Second,
		BaseContext:       func(_ net.Listener) context.Context { return srvCtx },
	}

	s.logger.Info("API server listening", "address", s.server.Addr)
	go func() {
		if err := s.server.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.logger.Error("API server error", "error", err)
		}
	}()

	return nil
}

// Addr returns the bound listener address, or "" before Start.
func (s *Server) Addr() string {
	if s.listener == nil {
		return ""
	}
	return s.listener.Addr().String()
}

// Close waits up to gracefulShutdownTimeout for in-flight requests, then
// closes remaining connections.
func (s *Server) Close() error {
	if s.server == nil {
		return nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), gracefulShutdownTimeout)
	defer cancel()

	s.logger.Info("API server shutting down")
	err := s.server.Shutdown(ctx)

	if s.cancel != nil {
		s.cancel()
	}

	if err != nil {
		return fmt.Errorf("shutting down API server: %w", err)
	}
	return nil
}
