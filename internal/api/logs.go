package api

import (
	"net/http"

	"github.com/nerrad567/smarthome-core/internal/audit"
)

// handleListLogs returns the audit trail newest first. Supports ?limit
// (default 100, max 1000) and ?offset.
func (s *Server) handleListLogs(w http.ResponseWriter, r *http.Request) {
	filter, ok := logFilter(w, r)
	if !ok {
		return
	}
	s.writeLogs(w, r, filter)
}

func (s *Server) handleListUserLogs(w http.ResponseWriter, r *http.Request) {
	userID, ok := pathID(w, r, "userID")
	if !ok {
		return
	}
	filter, ok := logFilter(w, r)
	if !ok {
		return
	}
	filter.UserID = &userID
	s.writeLogs(w, r, filter)
}

func (s *Server) writeLogs(w http.ResponseWriter, r *http.Request, filter audit.Filter) {
	logs, err := s.audit.List(r.Context(), filter)
	if err != nil {
		s.writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, logs)
}

func logFilter(w http.ResponseWriter, r *http.Request) (audit.Filter, bool) {
	limit, ok := queryInt(w, r, "limit", audit.DefaultLimit, 1, 0)
	if !ok {
		return audit.Filter{}, false
	}
	offset, ok := queryInt(w, r, "offset", 0, 0, 0)
	if !ok {
		return audit.Filter{}, false
	}
	return audit.Filter{Limit: limit, Offset: offset}, true
}
