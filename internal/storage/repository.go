// Package storage contains the store-agnostic contracts of the load stage:
// the Repository interface each database backend implements, a registry the
// backends hook into at init time, and the dependency-ordered Loader that
// drives whole-table replacement with bounded retry.
package storage

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"
)

// Defaults applied by New when Config leaves the knobs zero.
const (
	DefaultBatchSize      = 1000
	DefaultConnectTimeout = 5 * time.Second
)

// Config carries everything a backend needs to open a repository.
type Config struct {
	// Kind selects the registered backend, e.g. "postgres", "sqlite", "mssql".
	Kind string

	// DSN is the backend-specific connection string.
	DSN string

	// BatchSize bounds the rows per bulk-insert chunk inside one table
	// transaction. Zero means DefaultBatchSize.
	BatchSize int

	// ConnectTimeout bounds opening and pinging the store. Zero means
	// DefaultConnectTimeout.
	ConnectTimeout time.Duration
}

// Repository is the backend contract the loader drives. Implementations are
// safe for sequential use by one loader; they are not required to support
// concurrent Replace calls.
type Repository interface {
	// ApplySchema creates the warehouse objects (tables, partitions,
	// indexes, views) idempotently.
	ApplySchema(ctx context.Context) error

	// Replace truncates table and bulk-inserts rows aligned to columns,
	// inside a single transaction: after it returns the table holds
	// exactly rows, or its previous content on error. Returns the number
	// of rows written. Failures are classified as *TransientError or
	// *FatalError.
	Replace(ctx context.Context, table string, columns []string, rows [][]any) (int64, error)

	// Close releases the underlying pool or handle.
	Close()
}

// Factory constructs a Repository for one storage kind.
type Factory func(ctx context.Context, cfg Config) (Repository, error)

var (
	regMu     sync.RWMutex
	factories = map[string]Factory{}
)

// Register makes a backend available under kind. Backends call it from
// init(); re-registering a kind replaces the previous factory, which tests
// use to plug fakes in.
func Register(kind string, fn Factory) {
	regMu.Lock()
	defer regMu.Unlock()
	factories[kind] = fn
}

// New opens a Repository for cfg.Kind. Defaults are applied here so every
// backend sees a fully populated Config.
func New(ctx context.Context, cfg Config) (Repository, error) {
	regMu.RLock()
	fn, ok := factories[cfg.Kind]
	regMu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("unsupported database.kind=%s (registered: %v)", cfg.Kind, ListKinds())
	}
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = DefaultBatchSize
	}
	if cfg.ConnectTimeout <= 0 {
		cfg.ConnectTimeout = DefaultConnectTimeout
	}
	return fn(ctx, cfg)
}

// ListKinds returns the registered storage kinds, sorted.
func ListKinds() []string {
	regMu.RLock()
	defer regMu.RUnlock()
	kinds := make([]string, 0, len(factories))
	for k := range factories {
		kinds = append(kinds, k)
	}
	sort.Strings(kinds)
	return kinds
}
