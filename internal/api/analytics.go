package api

import (
	"net/http"
	"time"
)

// Window bounds for ?days on events-count.
const (
	defaultEventsCountDays = 7
	maxEventsCountDays     = 3650
)

// Notes returned by the events-summary endpoints.
const (
	noteSummaryRecorded = "Maintained automatically by trigger trg_events_insert_summary"
	noteSummaryEmpty    = "No events yet. The counter is created by the trigger on the first event insert."
)

type analyticsResponse struct {
	Status string `json:"status"`
	Data   any    `json:"data"`
}

func (s *Server) handleHomeDevicesSummary(w http.ResponseWriter, r *http.Request) {
	rows, err := s.analytics.HomeDevicesSummary(r.Context())
	if err != nil {
		s.writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, analyticsResponse{Status: "ok", Data: rows})
}

func (s *Server) handleUserActivity(w http.ResponseWriter, r *http.Request) {
	rows, err := s.analytics.UserActivity(r.Context())
	if err != nil {
		s.writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, analyticsResponse{Status: "ok", Data: rows})
}

func (s *Server) handleLastDeviceEvents(w http.ResponseWriter, r *http.Request) {
	rows, err := s.analytics.LastDeviceEvents(r.Context())
	if err != nil {
		s.writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, analyticsResponse{Status: "ok", Data: rows})
}

// handleDeviceEventsCount counts a device's events over the last ?days
// days (default 7). Unknown devices count zero.
func (s *Server) handleDeviceEventsCount(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	days, ok := queryInt(w, r, "days", defaultEventsCountDays, 0, maxEventsCountDays)
	if !ok {
		return
	}

	to := s.now().UTC()
	from := to.AddDate(0, 0, -days)

	count, err := s.analytics.DeviceEventsCount(r.Context(), id, from, to)
	if err != nil {
		s.writeDomainError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"status":       "ok",
		"device_id":    id,
		"period_days":  days,
		"events_count": count,
		"from":         from.Format(time.RFC3339Nano),
		"to":           to.Format(time.RFC3339Nano),
	})
}

func (s *Server) handleDeviceEventStats(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	stats, err := s.analytics.DeviceEventStats(r.Context(), id)
	if err != nil {
		s.writeDomainError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"status":    "ok",
		"device_id": id,
		"stats":     stats,
	})
}

// handleHomeEventsSummary reads the trigger-maintained counter. A home with
// no events (or no row) reports zero.
func (s *Server) handleHomeEventsSummary(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	total, err := s.analytics.HomeEventsTotal(r.Context(), id)
	if err != nil {
		s.writeDomainError(w, r, err)
		return
	}

	note := noteSummaryRecorded
	if !total.Recorded {
		note = noteSummaryEmpty
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"status":       "ok",
		"home_id":      id,
		"events_total": total.EventsTotal,
		"note":         note,
	})
}
