package api

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// healthTimeout bounds the database ping in /health.
const healthTimeout = 2 * time.Second

// buildRouter creates the HTTP router with all routes and middleware.
func (s *Server) buildRouter() http.Handler {
	r := chi.NewRouter()

	// "/homes/" and "/homes" are the same collection.
	r.Use(middleware.StripSlashes)

	r.Use(s.requestIDMiddleware)
	r.Use(s.loggingMiddleware)
	r.Use(s.recoveryMiddleware)
	if s.cfg.CORS.Enabled {
		r.Use(s.corsMiddleware)
	}
	if s.limiter != nil {
		r.Use(s.rateLimitMiddleware)
	}
	r.Use(s.bodySizeLimitMiddleware)

	r.NotFound(func(w http.ResponseWriter, _ *http.Request) {
		writeNotFound(w, "Not Found")
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, _ *http.Request) {
		writeError(w, http.StatusMethodNotAllowed, ErrCodeBadRequest, "Method Not Allowed")
	})

	r.Get("/", s.handleRoot)
	r.Get("/health", s.handleHealth)
	r.Post("/auth/login", s.handleLogin)
	r.Post("/users/init-admin", s.handleInitAdmin)

	r.Group(func(r chi.Router) {
		r.Use(s.authMiddleware)

		r.Get("/users/me", s.handleMe)

		r.Route("/rooms", func(r chi.Router) {
			r.Post("/", s.handleCreateRoom)
			r.Get("/home/{homeID}", s.handleListRoomsByHome)
			r.Get("/{id}", s.handleGetRoom)
		})

		r.Route("/devices", func(r chi.Router) {
			r.Post("/", s.handleCreateDevice)
			r.Get("/home/{homeID}", s.handleListDevicesByHome)
			r.Get("/{id}", s.handleGetDevice)
			r.Patch("/{id}/status", s.handleUpdateDeviceStatus)
		})

		r.Route("/sensors", func(r chi.Router) {
			r.Post("/", s.handleCreateSensor)
			r.Get("/device/{deviceID}", s.handleListSensorsByDevice)
			r.Get("/{id}", s.handleGetSensor)
			r.Patch("/{id}/value", s.handleUpdateSensorValue)
		})

		r.Route("/events", func(r chi.Router) {
			r.Post("/", s.handleCreateEvent)
			r.Get("/device/{deviceID}", s.handleListEventsByDevice)
			r.Get("/{id}", s.handleGetEvent)
		})

		r.Route("/rules", func(r chi.Router) {
			r.Post("/", s.handleCreateRule)
			r.Get("/home/{homeID}", s.handleListRulesByHome)
			r.Delete("/{id}", s.handleDeleteRule)
		})

		r.Get("/homes/{id}/events-summary", s.handleHomeEventsSummary)

		r.Route("/analytics", func(r chi.Router) {
			r.Get("/devices/home-summary", s.handleHomeDevicesSummary)
			r.Get("/users/activity", s.handleUserActivity)
			r.Get("/devices/last-events", s.handleLastDeviceEvents)
			r.Get("/devices/{id}/events-count", s.handleDeviceEventsCount)
			r.Get("/devices/{id}/events-stats", s.handleDeviceEventStats)
			r.Get("/homes/{id}/events-summary", s.handleHomeEventsSummary)
		})

		// Admin only.
		r.Group(func(r chi.Router) {
			r.Use(s.requireAdmin)

			r.Post("/users", s.handleCreateUser)
			r.Get("/users", s.handleListUsers)

			r.Post("/homes", s.handleCreateHome)
			r.Get("/homes", s.handleListHomes)
			r.Get("/homes/{id}", s.handleGetHome)

			r.Get("/logs", s.handleListLogs)
			r.Get("/logs/user/{userID}", s.handleListUserLogs)
		})
	})

	return r
}

func (s *Server) handleRoot(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"message": "Smart home API is running",
		"version": s.version,
	})
}

// handleHealth reports "degraded" with 503 when the database ping fails.
// Optional components are listed individually; one being unavailable
// degrades the status but keeps 200.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	status, code := "ok", http.StatusOK
	dbStatus := "ok"

	ctx, cancel := context.WithTimeout(r.Context(), healthTimeout)
	defer cancel()

	if s.db != nil {
		if err := s.db.HealthCheck(ctx); err != nil {
			s.logger.Warn("health check: database unavailable", "error", err)
			status, code, dbStatus = "degraded", http.StatusServiceUnavailable, "unavailable"
		}
	}

	body := map[string]any{
		"status":   status,
		"database": dbStatus,
		"version":  s.version,
	}

	if len(s.components) > 0 {
		components := make(map[string]string, len(s.components))
		for name, hc := range s.components {
			components[name] = "ok"
			if err := hc.HealthCheck(ctx); err != nil {
				s.logger.Warn("health check: component unavailable", "component", name, "error", err)
				components[name] = "unavailable"
				body["status"] = "degraded"
			}
		}
		body["components"] = components
	}

	writeJSON(w, code, body)
}
