// Package sqlite implements the warehouse repository on SQLite using
// database/sql. SQLite has no bulk-load API like Postgres COPY; Replace runs
// a DELETE plus a prepared INSERT per row inside one transaction, which keeps
// performance acceptable for moderate volumes.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	sqlite "modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"

	"ecometl/internal/storage"
)

// Repository is a SQLite-backed implementation of storage.Repository.
type Repository struct {
	db *sql.DB
}

// NewRepository opens a SQLite database for cfg.DSN and returns a Repository
// plus a Close function for cleanup.
//
// DSN is passed directly to database/sql; for example:
//
//	"file:warehouse.db?cache=shared"
//	"warehouse.db"
func NewRepository(ctx context.Context, cfg storage.Config) (*Repository, func(), error) {
	if strings.TrimSpace(cfg.DSN) == "" {
		return nil, nil, fmt.Errorf("sqlite: DSN must not be empty")
	}

	db, err := sql.Open("sqlite", cfg.DSN)
	if err != nil {
		return nil, nil, fmt.Errorf("sqlite: open: %w", err)
	}

	// One connection avoids SQLITE_BUSY between writers and makes
	// ":memory:" databases behave, since each new connection would
	// otherwise see its own empty database.
	db.SetMaxOpenConns(1)

	pingCtx, cancel := context.WithTimeout(ctx, cfg.ConnectTimeout)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		db.Close()
		return nil, nil, fmt.Errorf("sqlite: ping: %w", err)
	}

	// The schema relies on cascading deletes; foreign_keys is off by
	// default in SQLite.
	if _, err := db.ExecContext(ctx, "PRAGMA foreign_keys = ON;"); err != nil {
		db.Close()
		return nil, nil, fmt.Errorf("sqlite: enable foreign keys: %w", err)
	}

	closeFn := func() { db.Close() }
	return &Repository{db: db}, closeFn, nil
}

// ApplySchema applies the warehouse DDL statement by statement.
func (r *Repository) ApplySchema(ctx context.Context) error {
	for _, stmt := range schemaStatements {
		if _, err := r.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("sqlite: apply schema: %w (statement: %s)", err, firstLine(stmt))
		}
	}
	return nil
}

// Replace deletes every row of table and inserts rows in their place, all in
// one transaction. Deletes cascade to referencing tables, which is safe
// because the loader reloads them afterwards in dependency order.
func (r *Repository) Replace(ctx context.Context, table string, columns []string, rows [][]any) (int64, error) {
	if len(columns) == 0 {
		return 0, &storage.FatalError{Table: table, Err: fmt.Errorf("sqlite: columns must not be empty")}
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, classify(table, fmt.Errorf("begin tx: %w", err))
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, "DELETE FROM "+sqlIdent(table)); err != nil {
		return 0, classify(table, fmt.Errorf("delete: %w", err))
	}

	placeholders := make([]string, len(columns))
	for i := range placeholders {
		placeholders[i] = "?"
	}
	insertSQL := fmt.Sprintf(
		"INSERT INTO %s (%s) VALUES (%s)",
		sqlIdent(table),
		strings.Join(mapIdent(columns), ", "),
		strings.Join(placeholders, ", "),
	)
	stmt, err := tx.PrepareContext(ctx, insertSQL)
	if err != nil {
		return 0, classify(table, fmt.Errorf("prepare insert: %w", err))
	}
	defer stmt.Close()

	var inserted int64
	for _, row := range rows {
		if len(row) != len(columns) {
			return 0, &storage.FatalError{
				Table: table,
				Err:   fmt.Errorf("sqlite: row length %d != columns length %d", len(row), len(columns)),
			}
		}
		if _, err := stmt.ExecContext(ctx, row...); err != nil {
			return 0, classify(table, fmt.Errorf("insert: %w", err))
		}
		inserted++
	}

	if err := tx.Commit(); err != nil {
		return 0, classify(table, fmt.Errorf("commit: %w", err))
	}
	return inserted, nil
}

// Close closes the database handle.
func (r *Repository) Close() { r.db.Close() }

// classify sorts a load failure into the retry taxonomy. SQLITE_BUSY and
// SQLITE_LOCKED mean another handle holds the file and are worth retrying;
// every other library error (constraints, type trouble, schema drift) is
// fatal. Non-library failures are treated as I/O trouble and retried.
func classify(table string, err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return err
	}
	var serr *sqlite.Error
	if errors.As(err, &serr) {
		switch serr.Code() & 0xff {
		case sqlite3.SQLITE_BUSY, sqlite3.SQLITE_LOCKED:
			return &storage.TransientError{Table: table, Err: err}
		}
		return &storage.FatalError{Table: table, Err: err}
	}
	return &storage.TransientError{Table: table, Err: err}
}

// sqlIdent quotes a single identifier for SQLite.
func sqlIdent(id string) string { return `"` + strings.ReplaceAll(id, `"`, `""`) + `"` }

func mapIdent(cols []string) []string {
	out := make([]string, len(cols))
	for i, c := range cols {
		out[i] = sqlIdent(c)
	}
	return out
}

func firstLine(s string) string {
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		return strings.TrimSpace(s[:i]) + " ..."
	}
	return s
}
