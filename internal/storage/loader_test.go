package storage

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"
)

// scriptRepo records Replace calls and serves scripted failures per table
// before succeeding.
type scriptRepo struct {
	mu    sync.Mutex
	calls []string
	fails map[string][]error
}

func (s *scriptRepo) ApplySchema(ctx context.Context) error { return nil }

func (s *scriptRepo) Replace(ctx context.Context, table string, columns []string, rows [][]any) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls = append(s.calls, table)
	if errs := s.fails[table]; len(errs) > 0 {
		err := errs[0]
		s.fails[table] = errs[1:]
		return 0, err
	}
	return int64(len(rows)), nil
}

func (s *scriptRepo) Close() {}

// newTestLoader swaps the sleep seam for one that records requested waits and
// returns immediately.
func newTestLoader(repo Repository, cfg LoaderConfig) (*Loader, *[]time.Duration) {
	l := NewLoader(repo, cfg, nil)
	var sleeps []time.Duration
	l.sleep = func(ctx context.Context, d time.Duration) error {
		sleeps = append(sleeps, d)
		return nil
	}
	return l, &sleeps
}

func plan(table string, n int) TablePlan {
	rows := make([][]any, n)
	for i := range rows {
		rows[i] = []any{i}
	}
	return TablePlan{Table: table, Columns: []string{"id"}, Rows: rows}
}

func TestLoad_RunsPlansInOrder(t *testing.T) {
	t.Parallel()

	repo := &scriptRepo{}
	l, _ := newTestLoader(repo, LoaderConfig{})

	plans := []TablePlan{plan("customers", 3), plan("products", 2), plan("transactions", 5)}
	results, err := l.Load(context.Background(), plans)
	if err != nil {
		t.Fatalf("Load error: %v", err)
	}

	wantOrder := []string{"customers", "products", "transactions"}
	if len(repo.calls) != len(wantOrder) {
		t.Fatalf("calls = %v, want %v", repo.calls, wantOrder)
	}
	for i, table := range wantOrder {
		if repo.calls[i] != table {
			t.Fatalf("call %d = %q, want %q", i, repo.calls[i], table)
		}
	}

	if len(results) != 3 {
		t.Fatalf("results = %d, want 3", len(results))
	}
	wantRows := []int64{3, 2, 5}
	for i, res := range results {
		if res.Table != wantOrder[i] || res.Rows != wantRows[i] || res.Attempts != 1 {
			t.Errorf("result %d = %+v, want table=%s rows=%d attempts=1", i, res, wantOrder[i], wantRows[i])
		}
	}
}

func TestLoad_RetriesTransientThenSucceeds(t *testing.T) {
	t.Parallel()

	repo := &scriptRepo{
		fails: map[string][]error{
			"transactions": {
				&TransientError{Table: "transactions", Err: errors.New("connection reset")},
				&TransientError{Table: "transactions", Err: errors.New("deadlock detected")},
			},
		},
	}
	l, sleeps := newTestLoader(repo, LoaderConfig{MaxRetries: 3, BaseDelay: 10 * time.Millisecond})

	results, err := l.Load(context.Background(), []TablePlan{plan("transactions", 4)})
	if err != nil {
		t.Fatalf("Load error: %v", err)
	}
	if len(results) != 1 || results[0].Attempts != 3 || results[0].Rows != 4 {
		t.Fatalf("result = %+v, want attempts=3 rows=4", results)
	}
	if len(*sleeps) != 2 {
		t.Fatalf("sleeps = %v, want 2 waits", *sleeps)
	}
	for i, d := range *sleeps {
		if d <= 0 {
			t.Errorf("sleep %d = %v, want > 0", i, d)
		}
	}
}

func TestLoad_FatalFailsFast(t *testing.T) {
	t.Parallel()

	repo := &scriptRepo{
		fails: map[string][]error{
			"customers": {&FatalError{Table: "customers", Err: errors.New("null value in column")}},
		},
	}
	l, sleeps := newTestLoader(repo, LoaderConfig{})

	results, err := l.Load(context.Background(), []TablePlan{plan("customers", 2), plan("products", 2)})
	if err == nil {
		t.Fatalf("expected fatal error")
	}
	var fe *FatalError
	if !errors.As(err, &fe) {
		t.Fatalf("error = %T %v, want *FatalError", err, err)
	}
	if len(*sleeps) != 0 {
		t.Errorf("slept %v before a fatal error", *sleeps)
	}
	if len(results) != 0 {
		t.Errorf("results = %v, want none", results)
	}
	// products must never have been attempted.
	for _, c := range repo.calls {
		if c == "products" {
			t.Errorf("products loaded after customers failed")
		}
	}
}

func TestLoad_RetriesExhausted(t *testing.T) {
	t.Parallel()

	transient := func() error {
		return &TransientError{Table: "discounts", Err: errors.New("server closed connection")}
	}
	repo := &scriptRepo{
		fails: map[string][]error{
			"discounts": {transient(), transient(), transient(), transient(), transient()},
		},
	}
	l, sleeps := newTestLoader(repo, LoaderConfig{MaxRetries: 2, BaseDelay: time.Millisecond})

	results, err := l.Load(context.Background(), []TablePlan{plan("discounts", 1)})
	if !IsTransient(err) {
		t.Fatalf("error = %v, want transient", err)
	}
	// Initial try plus two retries.
	if got := len(repo.calls); got != 3 {
		t.Fatalf("attempts = %d, want 3", got)
	}
	if len(*sleeps) != 2 {
		t.Fatalf("sleeps = %v, want 2 waits", *sleeps)
	}
	if len(results) != 0 {
		t.Errorf("results = %v, want none", results)
	}
}

func TestLoad_KeepsResultsBeforeFailure(t *testing.T) {
	t.Parallel()

	repo := &scriptRepo{
		fails: map[string][]error{
			"products": {&FatalError{Table: "products", Err: errors.New("duplicate key")}},
		},
	}
	l, _ := newTestLoader(repo, LoaderConfig{})

	results, err := l.Load(context.Background(), []TablePlan{plan("customers", 3), plan("products", 1)})
	if err == nil {
		t.Fatalf("expected error")
	}
	if len(results) != 1 || results[0].Table != "customers" || results[0].Rows != 3 {
		t.Fatalf("results = %+v, want the completed customers load", results)
	}
}

func TestLoad_CancelledDuringBackoff(t *testing.T) {
	t.Parallel()

	repo := &scriptRepo{
		fails: map[string][]error{
			"customers": {&TransientError{Table: "customers", Err: errors.New("timeout")}},
		},
	}
	l := NewLoader(repo, LoaderConfig{MaxRetries: 5}, nil)
	l.sleep = func(ctx context.Context, d time.Duration) error {
		return context.Canceled
	}

	_, err := l.Load(context.Background(), []TablePlan{plan("customers", 1)})
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("error = %v, want context.Canceled", err)
	}
}

func TestComputeBackoff(t *testing.T) {
	t.Parallel()

	base := 500 * time.Millisecond
	for attempt := 1; attempt <= 4; attempt++ {
		ideal := base * time.Duration(int(1)<<uint(attempt-1))
		low := time.Duration(float64(ideal) * (1 - backoffJitter))
		high := time.Duration(float64(ideal) * (1 + backoffJitter))
		for i := 0; i < 50; i++ {
			got := computeBackoff(base, attempt)
			if got < low || got > high {
				t.Fatalf("attempt %d: backoff %v outside [%v, %v]", attempt, got, low, high)
			}
		}
	}

	// Deep attempts are capped before jitter.
	maxWithJitter := time.Duration(float64(maxBackoffDelay) * (1 + backoffJitter))
	for i := 0; i < 50; i++ {
		if got := computeBackoff(base, 30); got > maxWithJitter {
			t.Fatalf("capped backoff %v exceeds %v", got, maxWithJitter)
		}
	}
}

func TestIsTransient(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"transient", &TransientError{Table: "t", Err: errors.New("reset")}, true},
		{"wrapped transient", fmt.Errorf("load: %w", &TransientError{Table: "t", Err: errors.New("x")}), true},
		{"fatal", &FatalError{Table: "t", Err: errors.New("constraint")}, false},
		{"plain", errors.New("nope"), false},
		{"nil", nil, false},
		{"cancel inside transient", &TransientError{Table: "t", Err: context.Canceled}, false},
		{"deadline inside transient", &TransientError{Table: "t", Err: context.DeadlineExceeded}, false},
	}
	for _, tt := range tests {
		if got := IsTransient(tt.err); got != tt.want {
			t.Errorf("%s: IsTransient = %v, want %v", tt.name, got, tt.want)
		}
	}
}

func TestChunkRows(t *testing.T) {
	t.Parallel()

	rows := make([][]any, 5)
	for i := range rows {
		rows[i] = []any{i}
	}

	chunks := ChunkRows(rows, 2)
	if len(chunks) != 3 {
		t.Fatalf("chunks = %d, want 3", len(chunks))
	}
	if len(chunks[0]) != 2 || len(chunks[1]) != 2 || len(chunks[2]) != 1 {
		t.Fatalf("chunk sizes = %d/%d/%d, want 2/2/1", len(chunks[0]), len(chunks[1]), len(chunks[2]))
	}
	if chunks[2][0][0] != 4 {
		t.Errorf("last row = %v, want 4", chunks[2][0][0])
	}

	if got := ChunkRows(nil, 2); got != nil {
		t.Errorf("ChunkRows(nil) = %v, want nil", got)
	}
	if got := ChunkRows(rows, 0); len(got) != 1 {
		t.Errorf("zero size should fall back to one default-sized chunk, got %d", len(got))
	}
}
