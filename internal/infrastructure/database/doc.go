// Package database provides relational storage for the smart-home core.
//
// Two engines are supported behind one wrapper:
//   - SQLite (mattn/go-sqlite3): WAL mode, busy timeout, foreign keys on, single writer
//   - PostgreSQL (lib/pq): pooled connections sized from config
//
// Queries are written once with ? placeholders; Rebind converts them to $n
// for PostgreSQL. Every statement runs under the configured query timeout.
//
// Writes go through WithTx, which commits only when the callback succeeds
// and rolls back on error or panic. Constraint failures from either engine
// are reported as *ConstraintError, matching ErrConstraintViolation.
//
// Migrations are embedded per dialect (see the migrations package) and
// applied one transaction per file.
//
// Usage:
//
//	db, err := database.Open(database.ConfigFrom(cfg.Database))
//	if err != nil {
//	    return err
//	}
//	defer db.Close()
//
//	if err := db.Migrate(ctx); err != nil {
//	    return err
//	}
package database
