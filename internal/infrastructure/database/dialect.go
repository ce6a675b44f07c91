package database

import (
	"database/sql/driver"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/mattn/go-sqlite3"
)

// Rebind rewrites ? placeholders as $1, $2, ... for PostgreSQL.
// Question marks inside single-quoted literals, double-quoted identifiers
// and -- comments are left alone. Other dialects get the query unchanged.
func Rebind(dialect, query string) string {
	if dialect != DriverPostgres || !strings.Contains(query, "?") {
		return query
	}

	var (
		b       strings.Builder
		n       int
		quote   byte
		comment bool
	)
	b.Grow(len(query) + 8)

	for i := 0; i < len(query); i++ {
		c := query[i]
		switch {
		case comment:
			if c == '\n' {
				comment = false
			}
		case quote != 0:
			if c == quote {
				quote = 0
			}
		case c == '\'' || c == '"':
			quote = c
		case c == '-' && i+1 < len(query) && query[i+1] == '-':
			comment = true
		case c == '?':
			n++
			b.WriteByte('$')
			b.WriteString(strconv.Itoa(n))
			continue
		}
		b.WriteByte(c)
	}
	return b.String()
}

// NullTime scans timestamps from either engine.
//
// PostgreSQL returns time.Time. SQLite returns text for STRICT TEXT columns
// and for aggregates in views, in one of the formats go-sqlite3 writes.
type NullTime struct {
	Time  time.Time
	Valid bool
}

// Scan implements sql.Scanner.
func (nt *NullTime) Scan(value any) error {
	switch v := value.(type) {
	case nil:
		nt.Time, nt.Valid = time.Time{}, false
		return nil
	case time.Time:
		nt.Time, nt.Valid = v.UTC(), true
		return nil
	case string:
		return nt.parse(v)
	case []byte:
		return nt.parse(string(v))
	default:
		return fmt.Errorf("cannot scan %T into NullTime", value)
	}
}

// Value implements driver.Valuer.
func (nt NullTime) Value() (driver.Value, error) {
	if !nt.Valid {
		return nil, nil
	}
	return nt.Time, nil
}

// Ptr returns nil for NULL, else a pointer to the time.
func (nt NullTime) Ptr() *time.Time {
	if !nt.Valid {
		return nil
	}
	t := nt.Time
	return &t
}

func (nt *NullTime) parse(s string) error {
	s = strings.TrimSuffix(strings.TrimSpace(s), "Z")
	formats := append([]string{time.RFC3339Nano}, sqlite3.SQLiteTimestampFormats...)
	for _, layout := range formats {
		if t, err := time.ParseInLocation(layout, s, time.UTC); err == nil {
			nt.Time, nt.Valid = t.UTC(), true
			return nil
		}
	}
	return fmt.Errorf("unrecognised timestamp %q", s)
}
