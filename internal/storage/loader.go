package storage

import (
	"context"
	"math"
	"math/rand"
	"time"

	"ecometl/internal/logging"
)

// Retry defaults and backoff bounds.
const (
	DefaultMaxRetries = 3
	DefaultBaseDelay  = 500 * time.Millisecond

	maxBackoffDelay = 30 * time.Second
	backoffJitter   = 0.20
)

// TablePlan describes one table replacement: the target table, its column
// order, and the rows aligned to that order. Plans run in slice order, so
// callers list referenced tables before the tables that reference them.
type TablePlan struct {
	Table   string
	Columns []string
	Rows    [][]any
}

// TableResult reports one completed plan.
type TableResult struct {
	Table    string
	Rows     int64
	Attempts int
	Elapsed  time.Duration
}

// LoaderConfig bounds the per-table retry loop.
type LoaderConfig struct {
	// MaxRetries is the number of re-attempts after the first try. Zero
	// means DefaultMaxRetries; negative means no retries at all.
	MaxRetries int

	// BaseDelay seeds the exponential backoff between attempts. Zero
	// means DefaultBaseDelay.
	BaseDelay time.Duration
}

// Loader replaces warehouse tables through a Repository. Each table is
// retried on transient failures with exponential backoff; fatal failures and
// cancellation stop the run immediately.
type Loader struct {
	repo       Repository
	log        *logging.Logger
	maxRetries int
	baseDelay  time.Duration

	// sleep waits between attempts; swapped by tests.
	sleep func(ctx context.Context, d time.Duration) error
}

// NewLoader builds a Loader over repo. A nil log discards output.
func NewLoader(repo Repository, cfg LoaderConfig, log *logging.Logger) *Loader {
	if log == nil {
		log = logging.NewNop()
	}
	retries := cfg.MaxRetries
	if retries == 0 {
		retries = DefaultMaxRetries
	}
	if retries < 0 {
		retries = 0
	}
	base := cfg.BaseDelay
	if base <= 0 {
		base = DefaultBaseDelay
	}
	return &Loader{
		repo:       repo,
		log:        log,
		maxRetries: retries,
		baseDelay:  base,
		sleep:      sleepCtx,
	}
}

// Load executes plans in order and stops at the first table that cannot be
// loaded. The returned results cover the tables completed before the error.
func (l *Loader) Load(ctx context.Context, plans []TablePlan) ([]TableResult, error) {
	results := make([]TableResult, 0, len(plans))
	start := time.Now()
	var total int64

	for _, p := range plans {
		res, err := l.loadTable(ctx, p)
		if err != nil {
			return results, err
		}
		results = append(results, res)
		total += res.Rows
		l.log.Info("table loaded",
			"table", res.Table,
			"rows", res.Rows,
			"attempts", res.Attempts,
			"elapsed", res.Elapsed.Truncate(time.Millisecond),
			"total_rows", total,
		)
	}

	l.log.Info("load complete",
		"tables", len(results),
		"rows", total,
		"elapsed", time.Since(start).Truncate(time.Millisecond),
	)
	return results, nil
}

func (l *Loader) loadTable(ctx context.Context, p TablePlan) (TableResult, error) {
	res := TableResult{Table: p.Table}
	start := time.Now()

	for attempt := 1; ; attempt++ {
		res.Attempts = attempt

		n, err := l.repo.Replace(ctx, p.Table, p.Columns, p.Rows)
		if err == nil {
			res.Rows = n
			res.Elapsed = time.Since(start)
			return res, nil
		}

		if !IsTransient(err) || attempt > l.maxRetries {
			res.Elapsed = time.Since(start)
			return res, err
		}

		wait := computeBackoff(l.baseDelay, attempt)
		l.log.Warn("table load failed, retrying",
			"table", p.Table,
			"attempt", attempt,
			"max_retries", l.maxRetries,
			"backoff", wait.Truncate(time.Millisecond),
			"error", err,
		)
		if err := l.sleep(ctx, wait); err != nil {
			res.Elapsed = time.Since(start)
			return res, err
		}
	}
}

// computeBackoff returns the wait before the retry following attempt
// (1-based): baseDelay doubled per attempt, capped at maxBackoffDelay, with
// +/-20% jitter so parallel jobs do not hammer the store in lockstep.
func computeBackoff(base time.Duration, attempt int) time.Duration {
	d := time.Duration(float64(base) * math.Pow(2, float64(attempt-1)))
	if d > maxBackoffDelay {
		d = maxBackoffDelay
	}
	low := float64(d) * (1 - backoffJitter)
	high := float64(d) * (1 + backoffJitter)
	return time.Duration(low + rand.Float64()*(high-low))
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
