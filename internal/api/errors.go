package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/nerrad567/smarthome-core/internal/auth"
	"github.com/nerrad567/smarthome-core/internal/automation"
	"github.com/nerrad567/smarthome-core/internal/device"
	"github.com/nerrad567/smarthome-core/internal/infrastructure/database"
	"github.com/nerrad567/smarthome-core/internal/infrastructure/validation"
	"github.com/nerrad567/smarthome-core/internal/location"
)

// Error is the structured part of an error response.
type Error struct {
	Code    string            `json:"code"`
	Message string            `json:"message"`
	Fields  map[string]string `json:"fields,omitempty"`
}

// errorResponse keeps "detail" alongside the structured error so clients
// written against the plain {"detail": ...} shape keep working.
type errorResponse struct {
	Error  Error  `json:"error"`
	Detail string `json:"detail"`
}

// Error codes.
const (
	ErrCodeBadRequest          = "bad_request"
	ErrCodeValidation          = "validation_error"
	ErrCodeUnauthorized        = "unauthorised"
	ErrCodeForbidden           = "forbidden"
	ErrCodeNotFound            = "not_found"
	ErrCodeConstraintViolation = "constraint_violation"
	ErrCodeRateLimited         = "rate_limited"
	ErrCodeInternal            = "internal_error"
)

// Messages reused by handlers and tests.
const (
	msgInvalidCredentials = "Invalid credentials"
	msgNotAuthenticated   = "Could not validate credentials"
	msgAdminRequired      = "Admin privileges required"
	msgEmailRegistered    = "Email already registered"
	msgAdminExists        = "Admin already initialised"
)

// notFoundMessages maps each domain not-found sentinel to its response text.
var notFoundMessages = []struct {
	err error
	msg string
}{
	{location.ErrHomeNotFound, "Home not found"},
	{location.ErrRoomNotFound, "Room not found"},
	{device.ErrDeviceNotFound, "Device not found"},
	{device.ErrSensorNotFound, "Sensor not found"},
	{device.ErrEventNotFound, "Event not found"},
	{automation.ErrRuleNotFound, "Rule not found"},
	{auth.ErrUserNotFound, "User not found"},
}

// writeJSON writes a JSON response with the given status code and payload.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if v != nil {
		//nolint:errcheck // Best-effort write to response; connection may be closed
		json.NewEncoder(w).Encode(v)
	}
}

// writeError writes a structured error response.
func writeError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, errorResponse{
		Error:  Error{Code: code, Message: message},
		Detail: message,
	})
}

func writeBadRequest(w http.ResponseWriter, message string) {
	writeError(w, http.StatusBadRequest, ErrCodeBadRequest, message)
}

func writeUnauthorized(w http.ResponseWriter, message string) {
	w.Header().Set("WWW-Authenticate", "Bearer")
	writeError(w, http.StatusUnauthorized, ErrCodeUnauthorized, message)
}

func writeForbidden(w http.ResponseWriter, message string) {
	writeError(w, http.StatusForbidden, ErrCodeForbidden, message)
}

func writeNotFound(w http.ResponseWriter, message string) {
	writeError(w, http.StatusNotFound, ErrCodeNotFound, message)
}

func writeInternalError(w http.ResponseWriter, message string) {
	writeError(w, http.StatusInternalServerError, ErrCodeInternal, message)
}

// writeValidation reports every offending field with 422.
func writeValidation(w http.ResponseWriter, fields map[string]string) {
	writeJSON(w, http.StatusUnprocessableEntity, errorResponse{
		Error: Error{
			Code:    ErrCodeValidation,
			Message: "request validation failed",
			Fields:  fields,
		},
		Detail: "request validation failed",
	})
}

// writeDomainError maps a repository or domain error onto the taxonomy.
// Unexpected errors are logged and their message surfaced as-is.
func (s *Server) writeDomainError(w http.ResponseWriter, r *http.Request, err error) {
	if fields := validation.Fields(err); fields != nil {
		writeValidation(w, fields)
		return
	}
	if errors.Is(err, auth.ErrUnauthenticated) {
		writeUnauthorized(w, msgNotAuthenticated)
		return
	}

	for _, nf := range notFoundMessages {
		if errors.Is(err, nf.err) {
			writeNotFound(w, nf.msg)
			return
		}
	}

	switch {
	case errors.Is(err, auth.ErrEmailTaken):
		writeError(w, http.StatusBadRequest, ErrCodeConstraintViolation, msgEmailRegistered)
	case errors.Is(err, database.ErrConstraintViolation):
		writeError(w, http.StatusBadRequest, ErrCodeConstraintViolation, constraintMessage(err))
	case errors.Is(err, auth.ErrForbidden):
		writeForbidden(w, msgAdminRequired)
	default:
		s.logger.Error("request failed",
			"method", r.Method,
			"path", r.URL.Path,
			"request_id", requestIDFrom(r.Context()),
			"error", err,
		)
		writeInternalError(w, err.Error())
	}
}

func constraintMessage(err error) string {
	switch database.ConstraintKindOf(err) {
	case database.ConstraintForeignKey:
		return "referenced entity does not exist"
	case database.ConstraintUnique:
		return "duplicate value"
	case database.ConstraintCheck:
		return "value not allowed"
	case database.ConstraintNotNull:
		return "missing required value"
	default:
		return "constraint violation"
	}
}
