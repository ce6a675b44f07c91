package database

import (
	"errors"
	"fmt"

	"github.com/lib/pq"
	"github.com/mattn/go-sqlite3"
)

// ErrConstraintViolation matches any error rejected by a schema constraint.
var ErrConstraintViolation = errors.New("constraint violation")

// ConstraintKind names the constraint that rejected a write.
type ConstraintKind string

// Constraint kinds reported by both supported engines.
const (
	ConstraintUnique     ConstraintKind = "unique"
	ConstraintForeignKey ConstraintKind = "foreign_key"
	ConstraintCheck      ConstraintKind = "check"
	ConstraintNotNull    ConstraintKind = "not_null"
	ConstraintOther      ConstraintKind = "other"
)

// PostgreSQL SQLSTATE codes in class 23 (integrity constraint violation).
const (
	pgUniqueViolation     = "23505"
	pgForeignKeyViolation = "23503"
	pgCheckViolation      = "23514"
	pgNotNullViolation    = "23502"
	pgIntegrityClass      = "23"
)

// ConstraintError is a driver error recognised as a constraint violation.
// errors.Is(err, ErrConstraintViolation) reports true for it.
type ConstraintError struct {
	Kind ConstraintKind
	Err  error
}

func (e *ConstraintError) Error() string {
	return fmt.Sprintf("%s constraint violation: %v", e.Kind, e.Err)
}

func (e *ConstraintError) Unwrap() error { return e.Err }

// Is makes ConstraintError match ErrConstraintViolation.
func (e *ConstraintError) Is(target error) bool {
	return target == ErrConstraintViolation
}

// Classify wraps SQLite and PostgreSQL constraint failures in *ConstraintError.
// Any other error (including nil) is returned unchanged.
func Classify(err error) error {
	if err == nil {
		return nil
	}

	var ce *ConstraintError
	if errors.As(err, &ce) {
		return err
	}

	var sqliteErr sqlite3.Error
	if errors.As(err, &sqliteErr) && sqliteErr.Code == sqlite3.ErrConstraint {
		return &ConstraintError{Kind: sqliteKind(sqliteErr.ExtendedCode), Err: err}
	}

	var pqErr *pq.Error
	if errors.As(err, &pqErr) && pqErr.Code.Class() == pgIntegrityClass {
		return &ConstraintError{Kind: postgresKind(string(pqErr.Code)), Err: err}
	}

	return err
}

// ConstraintKindOf returns the kind of constraint behind err, or "" if err
// is not a constraint violation.
func ConstraintKindOf(err error) ConstraintKind {
	var ce *ConstraintError
	if errors.As(err, &ce) {
		return ce.Kind
	}
	return ""
}

func sqliteKind(code sqlite3.ErrNoExtended) ConstraintKind {
	switch code {
	case sqlite3.ErrConstraintUnique, sqlite3.ErrConstraintPrimaryKey:
		return ConstraintUnique
	case sqlite3.ErrConstraintForeignKey:
		return ConstraintForeignKey
	case sqlite3.ErrConstraintCheck:
		return ConstraintCheck
	case sqlite3.ErrConstraintNotNull:
		return ConstraintNotNull
	default:
		return ConstraintOther
	}
}

func postgresKind(code string) ConstraintKind {
	switch code {
	case pgUniqueViolation:
		return ConstraintUnique
	case pgForeignKeyViolation:
		return ConstraintForeignKey
	case pgCheckViolation:
		return ConstraintCheck
	case pgNotNullViolation:
		return ConstraintNotNull
	default:
		return ConstraintOther
	}
}
