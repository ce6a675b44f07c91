// Package validation collects per-field input problems into one error.
//
// Domain packages build an Errors set while checking a payload and return
// Errors.Err(). The API layer unwraps *Error to report every field at once.
package validation

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"unicode/utf8"
)

// ErrInvalid matches every *Error via errors.Is.
var ErrInvalid = errors.New("validation failed")

// Error reports one message per offending field.
type Error struct {
	Fields map[string]string
}

func (e *Error) Error() string {
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+": "+e.Fields[k])
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

// Is lets errors.Is(err, ErrInvalid) match.
func (e *Error) Is(target error) bool {
	return target == ErrInvalid
}

// Errors accumulates field messages. The first message per field wins.
type Errors map[string]string

// Add records msg for field unless the field already has one.
func (e Errors) Add(field, msg string) {
	if _, ok := e[field]; !ok {
		e[field] = msg
	}
}

// Addf is Add with formatting.
func (e Errors) Addf(field, format string, args ...any) {
	e.Add(field, fmt.Sprintf(format, args...))
}

// Err returns nil when empty, otherwise an *Error holding a copy.
func (e Errors) Err() error {
	if len(e) == 0 {
		return nil
	}
	fields := make(map[string]string, len(e))
	for k, v := range e {
		fields[k] = v
	}
	return &Error{Fields: fields}
}

// Required checks that a trimmed string is non-empty and at most maxLen runes.
// A maxLen of zero skips the length check.
func (e Errors) Required(field, value string, maxLen int) {
	if strings.TrimSpace(value) == "" {
		e.Add(field, "field required")
		return
	}
	e.MaxLen(field, value, maxLen)
}

// Present checks that an optional field was supplied and fits maxLen.
// Empty strings pass.
func (e Errors) Present(field string, value *string, maxLen int) {
	if value == nil {
		e.Add(field, "field required")
		return
	}
	e.MaxLen(field, *value, maxLen)
}

// MaxLen checks value length in runes when maxLen is positive.
func (e Errors) MaxLen(field, value string, maxLen int) {
	if maxLen > 0 && utf8.RuneCountInString(value) > maxLen {
		e.Addf(field, "must be at most %d characters", maxLen)
	}
}

// PositiveID checks that a referenced key is set.
func (e Errors) PositiveID(field string, id int64) {
	if id <= 0 {
		e.Add(field, "must be a positive integer")
	}
}

// OneOf checks value against an enumerated set.
func OneOf[T ~string](e Errors, field string, value T, allowed ...T) {
	for _, a := range allowed {
		if value == a {
			return
		}
	}
	names := make([]string, len(allowed))
	for i, a := range allowed {
		names[i] = "'" + string(a) + "'"
	}
	if value == "" {
		e.Add(field, "field required")
		return
	}
	e.Addf(field, "must be one of %s", strings.Join(names, ", "))
}

// Fields extracts the per-field map from err, or nil if err is not a validation error.
func Fields(err error) map[string]string {
	var ve *Error
	if errors.As(err, &ve) {
		return ve.Fields
	}
	return nil
}
