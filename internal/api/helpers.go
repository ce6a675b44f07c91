package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/nerrad567/smarthome-core/internal/audit"
)

// decodeJSON decodes the request body into dst. A malformed or empty body
// is answered with 400 and false is returned.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) bool {
	err := json.NewDecoder(r.Body).Decode(dst)
	if err == nil {
		return true
	}

	var maxErr *http.MaxBytesError
	switch {
	case errors.As(err, &maxErr):
		writeError(w, http.StatusRequestEntityTooLarge, ErrCodeBadRequest, "request body too large")
	case errors.Is(err, io.EOF):
		writeBadRequest(w, "request body is empty")
	default:
		writeBadRequest(w, "invalid JSON body")
	}
	return false
}

// pathID parses a positive integer URL parameter. Anything else is a 422
// naming the parameter.
func pathID(w http.ResponseWriter, r *http.Request, name string) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, name), 10, 64)
	if err != nil || id <= 0 {
		writeValidation(w, map[string]string{name: "must be a positive integer"})
		return 0, false
	}
	return id, true
}

// queryInt parses an optional integer query parameter, returning def when
// absent. Values below minVal, or above a positive maxVal, are a 422.
func queryInt(w http.ResponseWriter, r *http.Request, name string, def, minVal, maxVal int) (int, bool) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return def, true
	}
	v, err := strconv.Atoi(raw)
	if err != nil || v < minVal {
		writeValidation(w, map[string]string{name: fmt.Sprintf("must be an integer >= %d", minVal)})
		return 0, false
	}
	if maxVal > 0 && v > maxVal {
		writeValidation(w, map[string]string{name: fmt.Sprintf("must be at most %d", maxVal)})
		return 0, false
	}
	return v, true
}

// recordAudit attributes action to the authenticated user. The mutation has
// already committed, so a failure here is logged and the request still
// succeeds.
func (s *Server) recordAudit(r *http.Request, action string) {
	user := userFromContext(r.Context())
	if user == nil {
		return
	}

	entry := &audit.Log{UserID: user.ID, Action: action}
	if err := s.audit.Create(r.Context(), entry); err != nil {
		s.logger.Warn("audit log write failed",
			"user_id", user.ID,
			"action", action,
			"request_id", requestIDFrom(r.Context()),
			"error", err,
		)
	}
}
