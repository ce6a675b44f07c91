package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/lib/pq"           // PostgreSQL driver
	_ "github.com/mattn/go-sqlite3" // SQLite driver

	"github.com/nerrad567/smarthome-core/internal/infrastructure/config"
)

// Database configuration constants.
const (
	// dirPermissions is the permission mode for the database directory.
	dirPermissions = 0750

	// filePermissions is the permission mode for the database file.
	filePermissions = 0600

	// msPerSecond converts seconds to milliseconds.
	msPerSecond = 1000

	// connectionTimeout is the timeout for verifying database connectivity.
	connectionTimeout = 5 * time.Second

	// connMaxIdleTime is how long idle connections are kept open.
	connMaxIdleTime = 30 * time.Minute
)

// Driver names as registered with database/sql.
const (
	DriverSQLite   = config.DriverSQLite
	DriverPostgres = config.DriverPostgres

	sqlDriverSQLite   = "sqlite3"
	sqlDriverPostgres = "postgres"
)

// DB wraps a connection pool with dialect awareness and per-statement timeouts.
//
// Queries are written with ? placeholders and rebound to $n for PostgreSQL.
type DB struct {
	*sql.DB
	driver       string
	path         string
	queryTimeout time.Duration
}

// Config contains database configuration options.
type Config struct {
	// Driver is "sqlite" (default) or "postgres".
	Driver string

	// Path is the SQLite database file. The directory is created if missing.
	Path string

	// DSN is the PostgreSQL connection string.
	DSN string

	// WALMode enables Write-Ahead Logging for SQLite.
	WALMode bool

	// BusyTimeout is the SQLite lock wait in seconds.
	BusyTimeout int

	// MaxOpenConns and MaxIdleConns size the PostgreSQL pool.
	// SQLite always uses a single connection.
	MaxOpenConns int
	MaxIdleConns int

	// QueryTimeout bounds every statement. Zero disables it.
	QueryTimeout time.Duration
}

// ConfigFrom maps the YAML database section onto Config.
func ConfigFrom(c config.DatabaseConfig) Config {
	return Config{
		Driver:       c.Driver,
		Path:         c.Path,
		DSN:          c.DSN,
		WALMode:      c.WALMode,
		BusyTimeout:  c.BusyTimeout,
		MaxOpenConns: c.MaxOpenConns,
		MaxIdleConns: c.MaxIdleConns,
		QueryTimeout: c.GetQueryTimeout(),
	}
}

// Open creates a connection pool for the configured driver and verifies it with a ping.
func Open(cfg Config) (*DB, error) {
	var (
		sqlDB *sql.DB
		err   error
	)

	switch cfg.Driver {
	case DriverSQLite, "":
		cfg.Driver = DriverSQLite
		sqlDB, err = openSQLite(cfg)
	case DriverPostgres:
		sqlDB, err = openPostgres(cfg)
	default:
		return nil, fmt.Errorf("unsupported database driver %q", cfg.Driver)
	}
	if err != nil {
		return nil, err
	}

	db := New(sqlDB, cfg.Driver, cfg.QueryTimeout)
	db.path = cfg.Path

	ctx, cancel := context.WithTimeout(context.Background(), connectionTimeout)
	defer cancel()

	if err := db.PingContext(ctx); err != nil {
		sqlDB.Close() //nolint:errcheck // Best effort cleanup on error path
		return nil, fmt.Errorf("verifying database connection: %w", err)
	}

	if cfg.Driver == DriverSQLite {
		_ = os.Chmod(cfg.Path, filePermissions) //nolint:errcheck // File may not exist until first write
	}

	return db, nil
}

// New wraps an existing pool. Used by Open and by tests that supply a mock driver.
func New(sqlDB *sql.DB, driver string, queryTimeout time.Duration) *DB {
	return &DB{
		DB:           sqlDB,
		driver:       driver,
		queryTimeout: queryTimeout,
	}
}

func openSQLite(cfg Config) (*sql.DB, error) {
	if err := os.MkdirAll(filepath.Dir(cfg.Path), dirPermissions); err != nil {
		return nil, fmt.Errorf("creating database directory: %w", err)
	}

	// See: https://github.com/mattn/go-sqlite3#connection-string
	connStr := fmt.Sprintf("file:%s?_busy_timeout=%d&_foreign_keys=on",
		cfg.Path,
		cfg.BusyTimeout*msPerSecond,
	)
	if cfg.WALMode {
		connStr += "&_journal_mode=WAL&_synchronous=NORMAL"
	}

	sqlDB, err := sql.Open(sqlDriverSQLite, connStr)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	// Single writer; concurrent requests queue on the pool.
	sqlDB.SetMaxOpenConns(1)
	sqlDB.SetMaxIdleConns(1)
	sqlDB.SetConnMaxLifetime(time.Hour)
	sqlDB.SetConnMaxIdleTime(connMaxIdleTime)

	return sqlDB, nil
}

func openPostgres(cfg Config) (*sql.DB, error) {
	sqlDB, err := sql.Open(sqlDriverPostgres, cfg.DSN)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	if cfg.MaxOpenConns > 0 {
		sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
	}
	if cfg.MaxIdleConns > 0 {
		sqlDB.SetMaxIdleConns(cfg.MaxIdleConns)
	}
	sqlDB.SetConnMaxLifetime(time.Hour)
	sqlDB.SetConnMaxIdleTime(connMaxIdleTime)

	return sqlDB, nil
}

// Close closes the pool. Safe to call on a nil wrapper.
func (db *DB) Close() error {
	if db == nil || db.DB == nil {
		return nil
	}
	if err := db.DB.Close(); err != nil {
		return fmt.Errorf("closing database: %w", err)
	}
	return nil
}

// Dialect returns "sqlite" or "postgres".
func (db *DB) Dialect() string {
	return db.driver
}

// Path returns the SQLite file path, empty for PostgreSQL.
func (db *DB) Path() string {
	return db.path
}

// HealthCheck verifies the database is accessible and functioning.
func (db *DB) HealthCheck(ctx context.Context) error {
	var result int
	if err := db.QueryRowContext(ctx, "SELECT 1").Scan(&result); err != nil {
		return fmt.Errorf("database health check failed: %w", err)
	}
	return nil
}

// Stats returns database connection pool statistics.
func (db *DB) Stats() sql.DBStats {
	return db.DB.Stats()
}

// ExecContext executes a statement that doesn't return rows.
// Constraint failures are classified, see Classify.
func (db *DB) ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error) {
	ctx, cancel := db.statementContext(ctx)
	defer cancel()

	result, err := db.DB.ExecContext(ctx, Rebind(db.driver, query), args...)
	if err != nil {
		return nil, fmt.Errorf("executing query: %w", Classify(err))
	}
	return result, nil
}

// QueryContext executes a query that returns rows.
// The statement timeout is released when the rows are closed.
func (db *DB) QueryContext(ctx context.Context, query string, args ...any) (*Rows, error) {
	ctx, cancel := db.statementContext(ctx)

	rows, err := db.DB.QueryContext(ctx, Rebind(db.driver, query), args...)
	if err != nil {
		cancel()
		return nil, fmt.Errorf("querying: %w", err)
	}
	return &Rows{Rows: rows, cancel: cancel}, nil
}

// QueryRowContext executes a query that returns at most one row.
// The statement timeout is released by Scan.
func (db *DB) QueryRowContext(ctx context.Context, query string, args ...any) *Row {
	ctx, cancel := db.statementContext(ctx)
	return &Row{row: db.DB.QueryRowContext(ctx, Rebind(db.driver, query), args...), cancel: cancel}
}

// BeginTx starts a new transaction with the given options.
// Prefer WithTx, which guarantees the transaction is finished.
func (db *DB) BeginTx(ctx context.Context, opts *sql.TxOptions) (*Tx, error) {
	tx, err := db.DB.BeginTx(ctx, opts)
	if err != nil {
		return nil, fmt.Errorf("starting transaction: %w", err)
	}
	return &Tx{tx: tx, db: db}, nil
}

// WithTx runs fn inside a transaction.
//
// The transaction commits only if fn returns nil. Any error from fn, or a
// panic, rolls it back; the error is returned unchanged and the panic is
// re-raised after rollback.
func (db *DB) WithTx(ctx context.Context, fn func(tx *Tx) error) (err error) {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}

	defer func() {
		if p := recover(); p != nil {
			_ = tx.tx.Rollback() //nolint:errcheck // Panic takes precedence
			panic(p)
		}
	}()

	if err := fn(tx); err != nil {
		_ = tx.tx.Rollback() //nolint:errcheck // Original error takes precedence
		return err
	}

	return tx.Commit()
}

func (db *DB) statementContext(ctx context.Context) (context.Context, context.CancelFunc) {
	if db.queryTimeout <= 0 {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, db.queryTimeout)
}

// Tx is a transaction bound to its DB's dialect and statement timeout.
type Tx struct {
	tx *sql.Tx
	db *DB
}

// ExecContext executes a statement inside the transaction.
func (t *Tx) ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error) {
	ctx, cancel := t.db.statementContext(ctx)
	defer cancel()

	result, err := t.tx.ExecContext(ctx, Rebind(t.db.driver, query), args...)
	if err != nil {
		return nil, fmt.Errorf("executing query: %w", Classify(err))
	}
	return result, nil
}

// QueryContext executes a query inside the transaction.
func (t *Tx) QueryContext(ctx context.Context, query string, args ...any) (*Rows, error) {
	ctx, cancel := t.db.statementContext(ctx)

	rows, err := t.tx.QueryContext(ctx, Rebind(t.db.driver, query), args...)
	if err != nil {
		cancel()
		return nil, fmt.Errorf("querying: %w", err)
	}
	return &Rows{Rows: rows, cancel: cancel}, nil
}

// QueryRowContext executes a single-row query inside the transaction.
func (t *Tx) QueryRowContext(ctx context.Context, query string, args ...any) *Row {
	ctx, cancel := t.db.statementContext(ctx)
	return &Row{row: t.tx.QueryRowContext(ctx, Rebind(t.db.driver, query), args...), cancel: cancel}
}

// Commit commits the transaction.
func (t *Tx) Commit() error {
	if err := t.tx.Commit(); err != nil {
		return fmt.Errorf("committing transaction: %w", Classify(err))
	}
	return nil
}

// Rollback aborts the transaction. Calling it after Commit returns sql.ErrTxDone.
func (t *Tx) Rollback() error {
	return t.tx.Rollback()
}

// Dialect returns the dialect of the owning DB.
func (t *Tx) Dialect() string {
	return t.db.driver
}

// Querier is satisfied by both *DB and *Tx, so repositories can run a
// statement either standalone or inside a caller's transaction.
type Querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *Row
	Dialect() string
}

// Rows wraps sql.Rows so closing it also releases the statement timeout.
type Rows struct {
	*sql.Rows
	cancel context.CancelFunc
}

// Close closes the result set.
func (r *Rows) Close() error {
	err := r.Rows.Close()
	r.cancel()
	return err
}

// Row wraps sql.Row so scanning it releases the statement timeout.
type Row struct {
	row    *sql.Row
	cancel context.CancelFunc
}

// Scan copies the row into dest. sql.ErrNoRows passes through untouched so
// callers can map it to a not-found error.
func (r *Row) Scan(dest ...any) error {
	defer r.cancel()
	err := r.row.Scan(dest...)
	if err == nil || errors.Is(err, sql.ErrNoRows) {
		return err
	}
	return Classify(err)
}
