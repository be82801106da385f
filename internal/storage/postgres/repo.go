// Package postgres implements the warehouse repository on PostgreSQL using
// pgx v5. Replace runs TRUNCATE plus batched COPY inside one transaction, so
// a table holds either its previous content or exactly the new rows.
package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"ecometl/internal/storage"
)

// Repository is a PostgreSQL-backed implementation of storage.Repository.
type Repository struct {
	pool      *pgxpool.Pool
	batchSize int
}

// NewRepository opens a pool for cfg.DSN and verifies it with a ping bounded
// by cfg.ConnectTimeout. It returns a close function for cleanup.
func NewRepository(ctx context.Context, cfg storage.Config) (*Repository, func(), error) {
	pool, err := pgxpool.New(ctx, cfg.DSN)
	if err != nil {
		return nil, nil, fmt.Errorf("pgxpool: %w", err)
	}
	pingCtx, cancel := context.WithTimeout(ctx, cfg.ConnectTimeout)
	defer cancel()
	if err := pool.Ping(pingCtx); err != nil {
		pool.Close()
		return nil, nil, fmt.Errorf("ping: %w", err)
	}
	closeFn := func() { pool.Close() }
	return &Repository{pool: pool, batchSize: cfg.BatchSize}, closeFn, nil
}

// ApplySchema applies the warehouse DDL statement by statement. Every
// statement is idempotent, so re-running against an existing schema is safe.
func (r *Repository) ApplySchema(ctx context.Context) error {
	for _, stmt := range schemaStatements {
		if _, err := r.pool.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("apply schema: %w (statement: %s)", err, firstLine(stmt))
		}
	}
	return nil
}

// Replace truncates table and bulk-loads rows via COPY, all in one
// transaction. The truncate cascades: tables referencing this one are
// cleared too, which is safe because the loader reloads them afterwards in
// dependency order.
func (r *Repository) Replace(ctx context.Context, table string, columns []string, rows [][]any) (int64, error) {
	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return 0, classify(table, fmt.Errorf("acquire: %w", err))
	}
	defer conn.Release()

	tx, err := conn.Begin(ctx)
	if err != nil {
		return 0, classify(table, fmt.Errorf("begin: %w", err))
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if _, err := tx.Exec(ctx, "TRUNCATE TABLE "+pgIdent(table)+" RESTART IDENTITY CASCADE"); err != nil {
		return 0, classify(table, fmt.Errorf("truncate: %w", err))
	}

	var total int64
	for _, chunk := range storage.ChunkRows(rows, r.batchSize) {
		n, err := tx.CopyFrom(ctx, pgx.Identifier{table}, columns, pgx.CopyFromRows(chunk))
		if err != nil {
			return 0, classify(table, fmt.Errorf("copy: %w", err))
		}
		total += n
	}

	if err := tx.Commit(ctx); err != nil {
		return 0, classify(table, fmt.Errorf("commit: %w", err))
	}
	return total, nil
}

// Close releases the pool.
func (r *Repository) Close() { r.pool.Close() }

// classify sorts a load failure into the retry taxonomy. Connection-class
// SQLSTATEs (08), insufficient resources (53), serialization failures and
// deadlocks are transient; every other database error (constraints, bad
// data, schema drift) is fatal. Non-database failures are treated as
// connection trouble and retried.
func classify(table string, err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return err
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		code := pgErr.SQLState()
		switch {
		case strings.HasPrefix(code, "08"),
			strings.HasPrefix(code, "53"),
			code == "40001", // serialization_failure
			code == "40P01", // deadlock_detected
			code == "57P03": // cannot_connect_now
			return &storage.TransientError{Table: table, Err: err}
		}
		return &storage.FatalError{Table: table, Err: err}
	}
	return &storage.TransientError{Table: table, Err: err}
}

// pgIdent safely quotes a single identifier segment for Postgres.
func pgIdent(id string) string { return `"` + strings.ReplaceAll(id, `"`, `""`) + `"` }

func firstLine(s string) string {
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		return strings.TrimSpace(s[:i]) + " ..."
	}
	return s
}
