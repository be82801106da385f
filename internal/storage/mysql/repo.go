// Package mysql implements the warehouse repository on MySQL using
// go-sql-driver. The driver has no COPY-style bulk API; Replace runs a
// DELETE plus chunked multi-row INSERTs inside one transaction.
package mysql

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/go-sql-driver/mysql"

	"ecometl/internal/storage"
)

// Repository is a MySQL-backed implementation of storage.Repository.
type Repository struct {
	db        *sql.DB
	batchSize int
}

// NewRepository constructs a Repository and returns a Close function for
// cleanup. The DSN is validated before dialing to fail fast on obvious
// mistakes.
func NewRepository(ctx context.Context, cfg storage.Config) (*Repository, func(), error) {
	if _, err := mysql.ParseDSN(cfg.DSN); err != nil {
		return nil, nil, fmt.Errorf("mysql dsn: %w", err)
	}
	db, err := sql.Open("mysql", cfg.DSN)
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

// ApplySchema applies the warehouse DDL statement by statement.
func (r *Repository) ApplySchema(ctx context.Context) error {
	for _, stmt := range schemaStatements {
		if _, err := r.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("mysql: apply schema: %w (statement: %s)", err, firstLine(stmt))
		}
	}
	return nil
}

// Replace deletes every row of table and inserts rows in their place inside
// one transaction, chunking the inserts to bound statement size. InnoDB
// forbids TRUNCATE on tables referenced by a foreign key, so the delete
// relies on ON DELETE CASCADE the same way the SQLite backend does.
func (r *Repository) Replace(ctx context.Context, table string, columns []string, rows [][]any) (int64, error) {
	if len(columns) == 0 {
		return 0, &storage.FatalError{Table: table, Err: fmt.Errorf("mysql: columns must not be empty")}
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, classify(table, fmt.Errorf("begin tx: %w", err))
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, "DELETE FROM "+myIdent(table)); err != nil {
		return 0, classify(table, fmt.Errorf("delete: %w", err))
	}

	var total int64
	for _, chunk := range storage.ChunkRows(rows, r.batchSize) {
		stmt, args, err := buildInsert(table, columns, chunk)
		if err != nil {
			return 0, &storage.FatalError{Table: table, Err: err}
		}
		res, err := tx.ExecContext(ctx, stmt, args...)
		if err != nil {
			return 0, classify(table, fmt.Errorf("insert: %w", err))
		}
		n, err := res.RowsAffected()
		if err != nil {
			return 0, classify(table, fmt.Errorf("rows affected: %w", err))
		}
		total += n
	}

	if err := tx.Commit(); err != nil {
		return 0, classify(table, fmt.Errorf("commit: %w", err))
	}
	return total, nil
}

// Close closes the database handle.
func (r *Repository) Close() { _ = r.db.Close() }

// buildInsert renders a multi-row INSERT for one chunk:
//
//	INSERT INTO `t` (`a`, `b`) VALUES (?, ?), (?, ?), ...
func buildInsert(table string, columns []string, rows [][]any) (string, []any, error) {
	rowPlaceholder := "(" + strings.TrimSuffix(strings.Repeat("?, ", len(columns)), ", ") + ")"

	var sb strings.Builder
	sb.WriteString("INSERT INTO ")
	sb.WriteString(myIdent(table))
	sb.WriteString(" (")
	sb.WriteString(strings.Join(mapIdent(columns), ", "))
	sb.WriteString(") VALUES ")

	args := make([]any, 0, len(rows)*len(columns))
	for i, row := range rows {
		if len(row) != len(columns) {
			return "", nil, fmt.Errorf("mysql: row length %d != columns length %d", len(row), len(columns))
		}
		if i > 0 {
			sb.WriteString(", ")
		}
		sb.WriteString(rowPlaceholder)
		args = append(args, row...)
	}
	return sb.String(), args, nil
}

// transientNumbers lists server error numbers worth retrying: deadlocks and
// lock wait timeouts. Connection-level failures surface as driver errors,
// not *mysql.MySQLError, and fall through to the default below.
var transientNumbers = map[uint16]bool{
	1205: true, // lock wait timeout exceeded
	1213: true, // deadlock found
}

// classify sorts a load failure into the retry taxonomy.
func classify(table string, err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return err
	}
	var myErr *mysql.MySQLError
	if errors.As(err, &myErr) {
		if transientNumbers[myErr.Number] {
			return &storage.TransientError{Table: table, Err: err}
		}
		return &storage.FatalError{Table: table, Err: err}
	}
	return &storage.TransientError{Table: table, Err: err}
}

// myIdent safely quotes a MySQL identifier using backticks.
func myIdent(id string) string { return "`" + strings.ReplaceAll(id, "`", "``") + "`" }

func mapIdent(cols []string) []string {
	out := make([]string, len(cols))
	for i, c := range cols {
		out[i] = myIdent(c)
	}
	return out
}

func firstLine(s string) string {
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		return strings.TrimSpace(s[:i]) + " ..."
	}
	return s
}
