// Package mssql implements the warehouse repository on Microsoft SQL Server
// using the go-mssqldb bulk copy API. Replace runs TRUNCATE plus a bulk
// insert inside one transaction. The SQL Server schema carries no foreign
// keys: TRUNCATE TABLE refuses tables referenced by one, and referential
// integrity is already enforced upstream before the load stage.
package mssql

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	mssql "github.com/microsoft/go-mssqldb"
	"github.com/microsoft/go-mssqldb/msdsn"

	"ecometl/internal/storage"
)

// Repository is an MSSQL-backed implementation of storage.Repository.
type Repository struct {
	db        *sql.DB
	batchSize int
}

// NewRepository constructs a Repository and returns a Close function for
// cleanup. The DSN is validated before dialing to fail fast on obvious
// mistakes.
func NewRepository(ctx context.Context, cfg storage.Config) (*Repository, func(), error) {
	if _, err := msdsn.Parse(cfg.DSN); err != nil {
		return nil, nil, fmt.Errorf("mssql dsn: %w", err)
	}
	db, err := sql.Open("sqlserver", cfg.DSN)
	if err != nil {
		return nil, nil, fmt.Errorf("sql.Open: %w", err)
	}
	pingCtx, cancel := context.WithTimeout(ctx, cfg.ConnectTimeout)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		_ = db.Close()
		return nil, nil, fmt.Errorf("ping: %w", err)
	}
	closeFn := func() { _ = db.Close() }
	return &Repository{db: db, batchSize: cfg.BatchSize}, closeFn, nil
}

// ApplySchema applies the warehouse DDL statement by statement. Each
// statement runs as its own batch, which CREATE OR ALTER VIEW requires.
func (r *Repository) ApplySchema(ctx context.Context) error {
	for _, stmt := range schemaStatements {
		if _, err := r.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("mssql: apply schema: %w (statement: %s)", err, firstLine(stmt))
		}
	}
	return nil
}

// Replace truncates table and bulk-inserts rows in one transaction. Bulk
// options keep NULLs and check constraints so bad rows fail loudly instead
// of being silently defaulted.
func (r *Repository) Replace(ctx context.Context, table string, columns []string, rows [][]any) (int64, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, classify(table, fmt.Errorf("begin tx: %w", err))
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, "TRUNCATE TABLE "+msIdent(table)); err != nil {
		return 0, classify(table, fmt.Errorf("truncate: %w", err))
	}

	opts := mssql.BulkOptions{
		CheckConstraints: true,
		KeepNulls:        true,
		RowsPerBatch:     r.batchSize,
		Tablock:          true,
	}
	stmt, err := tx.PrepareContext(ctx, mssql.CopyIn(table, opts, columns...))
	if err != nil {
		return 0, classify(table, fmt.Errorf("prepare bulk: %w", err))
	}
	for i := range rows {
		if _, err := stmt.ExecContext(ctx, rows[i]...); err != nil {
			_ = stmt.Close()
			return 0, classify(table, fmt.Errorf("bulk row %d: %w", i, err))
		}
	}
	res, err := stmt.ExecContext(ctx) // flush
	if cerr := stmt.Close(); cerr != nil && err == nil {
		err = cerr
	}
	if err != nil {
		return 0, classify(table, fmt.Errorf("bulk finalize: %w", err))
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, classify(table, fmt.Errorf("rows affected: %w", err))
	}

	if err := tx.Commit(); err != nil {
		return 0, classify(table, fmt.Errorf("commit: %w", err))
	}
	return n, nil
}

// Close closes the database handle.
func (r *Repository) Close() { _ = r.db.Close() }

// transientNumbers lists server error numbers worth retrying: deadlock
// victim, lock timeout, the network-level winsock errors, and the Azure SQL
// throttling/failover set.
var transientNumbers = map[int32]bool{
	1205:  true, // deadlock victim
	1222:  true, // lock request timeout
	10053: true, // transport-level error
	10054: true, // connection reset
	10060: true, // connection timeout
	40197: true, // service error processing request
	40501: true, // service busy
	40613: true, // database unavailable
	49918: true, // cannot process request
	49919: true,
	49920: true,
}

// classify sorts a load failure into the retry taxonomy. Known transient
// server numbers are retried; every other server error (constraints, type
// conversion, schema drift) is fatal. Non-server failures are treated as
// connection trouble and retried.
func classify(table string, err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return err
	}
	var msErr mssql.Error
	if errors.As(err, &msErr) {
		if transientNumbers[msErr.Number] {
			return &storage.TransientError{Table: table, Err: err}
		}
		return &storage.FatalError{Table: table, Err: err}
	}
	return &storage.TransientError{Table: table, Err: err}
}

// msIdent safely quotes a SQL Server identifier using [brackets], escaping ].
func msIdent(id string) string { return `[` + strings.ReplaceAll(id, `]`, `]]`) + `]` }

func firstLine(s string) string {
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		return strings.TrimSpace(s[:i]) + " ..."
	}
	return s
}
