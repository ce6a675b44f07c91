package database

import (
	"context"
	"fmt"
	"io/fs"
	"path"
	"slices"
	"strings"
	"time"
)

// MigrationsFS holds one sub-directory of migration files per dialect
// ("sqlite", "postgres"). The migrations package registers its embedded
// files here; a nil FS means there is nothing to apply.
var MigrationsFS fs.FS

// MigrationsDir is the directory within MigrationsFS holding the dialect
// sub-directories.
var MigrationsDir = "."

// Migration is one schema change, loaded from a pair of files named
// YYYYMMDD_HHMMSS_description.up.sql and .down.sql.
type Migration struct {
	Version string // YYYYMMDD_HHMMSS
	Name    string // description part of the filename
	UpSQL   string
	DownSQL string // empty when no .down.sql exists
}

// MigrationRecord is a row of schema_migrations.
type MigrationRecord struct {
	Version   string
	AppliedAt time.Time
}

// Migrate applies all pending migrations for the DB's dialect, oldest first.
//
// Each migration runs in its own transaction. If migration N fails,
// migrations before it stay committed, N is rolled back and nothing after
// it is attempted. Re-running Migrate continues from N.
func (db *DB) Migrate(ctx context.Context) error {
	if err := db.createMigrationsTable(ctx); err != nil {
		return fmt.Errorf("creating migrations table: %w", err)
	}

	_, pending, err := db.GetMigrationStatus(ctx)
	if err != nil {
		return err
	}

	for _, m := range pending {
		if err := db.applyMigration(ctx, m); err != nil {
			return fmt.Errorf("applying migration %s (%s): %w", m.Version, m.Name, err)
		}
	}
	return nil
}

// MigrateDown rolls back the most recently applied migration. It is a no-op
// on a database with nothing applied.
func (db *DB) MigrateDown(ctx context.Context) error {
	if err := db.createMigrationsTable(ctx); err != nil {
		return fmt.Errorf("creating migrations table: %w", err)
	}

	applied, err := db.getAppliedMigrations(ctx)
	if err != nil {
		return err
	}
	if len(applied) == 0 {
		return nil
	}
	latest := applied[len(applied)-1].Version

	migrations, err := loadMigrations(db.driver)
	if err != nil {
		return fmt.Errorf("loading migrations: %w", err)
	}
	i := slices.IndexFunc(migrations, func(m Migration) bool { return m.Version == latest })
	if i < 0 {
		return fmt.Errorf("migration %s not found in filesystem", latest)
	}
	m := migrations[i]
	if m.DownSQL == "" {
		return fmt.Errorf("migration %s has no down SQL", latest)
	}

	return db.WithTx(ctx, func(tx *Tx) error {
		if _, err := tx.ExecContext(ctx, m.DownSQL); err != nil {
			return fmt.Errorf("executing down SQL: %w", err)
		}
		if _, err := tx.ExecContext(ctx, "DELETE FROM schema_migrations WHERE version = ?", m.Version); err != nil {
			return fmt.Errorf("removing migration record: %w", err)
		}
		return nil
	})
}

// GetMigrationStatus reports which migrations are applied and which are
// still pending for this DB's dialect.
func (db *DB) GetMigrationStatus(ctx context.Context) (applied []MigrationRecord, pending []Migration, err error) {
	if err := db.createMigrationsTable(ctx); err != nil {
		return nil, nil, fmt.Errorf("creating migrations table: %w", err)
	}

	applied, err = db.getAppliedMigrations(ctx)
	if err != nil {
		return nil, nil, err
	}

	migrations, err := loadMigrations(db.driver)
	if err != nil {
		return nil, nil, fmt.Errorf("loading migrations: %w", err)
	}
	return applied, pendingMigrations(migrations, applied), nil
}

// pendingMigrations keeps the order of all.
func pendingMigrations(all []Migration, applied []MigrationRecord) []Migration {
	done := make(map[string]struct{}, len(applied))
	for _, r := range applied {
		done[r.Version] = struct{}{}
	}

	var pending []Migration
	for _, m := range all {
		if _, ok := done[m.Version]; !ok {
			pending = append(pending, m)
		}
	}
	return pending
}

func (db *DB) createMigrationsTable(ctx context.Context) error {
	_, err := db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version    TEXT PRIMARY KEY,
			applied_at TEXT NOT NULL
		)
	`)
	return err
}

func (db *DB) getAppliedMigrations(ctx context.Context) ([]MigrationRecord, error) {
	rows, err := db.QueryContext(ctx, "SELECT version, applied_at FROM schema_migrations ORDER BY version")
	if err != nil {
		return nil, fmt.Errorf("querying migrations: %w", err)
	}
	defer rows.Close()

	var records []MigrationRecord
	for rows.Next() {
		var (
			r         MigrationRecord
			appliedAt string
		)
		if err := rows.Scan(&r.Version, &appliedAt); err != nil {
			return nil, fmt.Errorf("scanning migration row: %w", err)
		}
		r.AppliedAt, _ = time.Parse(time.RFC3339, appliedAt) //nolint:errcheck // written by applyMigration
		records = append(records, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating migrations: %w", err)
	}
	return records, nil
}

func (db *DB) applyMigration(ctx context.Context, m Migration) error {
	return db.WithTx(ctx, func(tx *Tx) error {
		if _, err := tx.ExecContext(ctx, m.UpSQL); err != nil {
			return fmt.Errorf("executing SQL: %w", err)
		}
		if _, err := tx.ExecContext(ctx,
			"INSERT INTO schema_migrations (version, applied_at) VALUES (?, ?)",
			m.Version, time.Now().UTC().Format(time.RFC3339),
		); err != nil {
			return fmt.Errorf("recording migration: %w", err)
		}
		return nil
	})
}

// migrationFile is a parsed migration filename.
type migrationFile struct {
	version string
	name    string
	up      bool
}

// parseMigrationFilename splits "20260118_120000_create_users.up.sql" into
// its version, description and direction.
func parseMigrationFilename(filename string) (migrationFile, bool) {
	base, ok := strings.CutSuffix(filename, ".sql")
	if !ok {
		return migrationFile{}, false
	}

	var f migrationFile
	if b, ok := strings.CutSuffix(base, ".up"); ok {
		base, f.up = b, true
	} else if b, ok := strings.CutSuffix(base, ".down"); ok {
		base = b
	} else {
		return migrationFile{}, false
	}

	date, rest, ok := strings.Cut(base, "_")
	if !ok || date == "" {
		return migrationFile{}, false
	}
	clock, name, _ := strings.Cut(rest, "_")
	if clock == "" {
		return migrationFile{}, false
	}

	f.version = date + "_" + clock
	f.name = name
	if f.name == "" {
		f.name = f.version
	}
	return f, true
}

// loadMigrations reads the migrations for one dialect, sorted oldest first.
// A dialect without a directory has no migrations.
func loadMigrations(dialect string) ([]Migration, error) {
	if MigrationsFS == nil {
		return nil, nil
	}

	dir := path.Join(MigrationsDir, dialect)
	entries, err := fs.ReadDir(MigrationsFS, dir)
	if err != nil {
		return nil, nil //nolint:nilerr // missing dialect directory
	}

	byVersion := make(map[string]*Migration)
	hasUp := make(map[string]bool)
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		f, ok := parseMigrationFilename(entry.Name())
		if !ok {
			continue
		}

		body, err := fs.ReadFile(MigrationsFS, path.Join(dir, entry.Name()))
		if err != nil {
			return nil, fmt.Errorf("reading %s: %w", entry.Name(), err)
		}

		m := byVersion[f.version]
		if m == nil {
			m = &Migration{Version: f.version}
			byVersion[f.version] = m
		}
		if f.up {
			m.Name, m.UpSQL = f.name, string(body)
			hasUp[f.version] = true
		} else {
			m.DownSQL = string(body)
		}
	}

	migrations := make([]Migration, 0, len(byVersion))
	for _, m := range byVersion {
		if !hasUp[m.Version] {
			return nil, fmt.Errorf("migration %s has a down file but no up file", m.Version)
		}
		migrations = append(migrations, *m)
	}
	slices.SortFunc(migrations, func(a, b Migration) int { return strings.Compare(a.Version, b.Version) })
	return migrations, nil
}
