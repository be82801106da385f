package mysql

import (
	"context"
	"os"
	"testing"
	"time"

	"ecometl/internal/storage"
)

// TestMySQLStorageRegistrationUsesNewRepositoryHook verifies that the "mysql"
// storage backend registered in init() uses the newRepository hook and that
// the wrappedRepo correctly propagates configuration and close behavior.
func TestMySQLStorageRegistrationUsesNewRepositoryHook(t *testing.T) {
	t.Parallel()

	ctx := context.Background()

	// Save and restore global hook.
	origNewRepository := newRepository
	defer func() { newRepository = origNewRepository }()

	var (
		gotCfg storage.Config
		closed bool
	)
	newRepository = func(ctx context.Context, cfg storage.Config) (*Repository, func(), error) {
		gotCfg = cfg
		return &Repository{}, func() { closed = true }, nil
	}

	cfg := storage.Config{
		Kind: "mysql",
		DSN:  "etl:secret@tcp(127.0.0.1:3306)/warehouse?parseTime=true",
	}
	repo, err := storage.New(ctx, cfg)
	if err != nil {
		t.Fatalf("storage.New() error = %v", err)
	}
	if gotCfg.DSN != cfg.DSN {
		t.Errorf("hook cfg.DSN = %q, want %q", gotCfg.DSN, cfg.DSN)
	}
	if gotCfg.BatchSize != storage.DefaultBatchSize {
		t.Errorf("hook cfg.BatchSize = %d, want default %d", gotCfg.BatchSize, storage.DefaultBatchSize)
	}

	repo.Close()
	if !closed {
		t.Fatalf("wrappedRepo.Close() did not invoke closeFn")
	}
}

// TestReplace_RoundTrip exercises ApplySchema and Replace against a real
// server. It only runs when TEST_MYSQL_DSN is present, e.g.:
//
//	TEST_MYSQL_DSN='etl:secret@tcp(127.0.0.1:3306)/testdb?parseTime=true' go test ./internal/storage/mysql -run RoundTrip
func TestReplace_RoundTrip(t *testing.T) {
	t.Parallel()

	dsn := os.Getenv("TEST_MYSQL_DSN")
	if dsn == "" {
		t.Skip("skipping integration test: set TEST_MYSQL_DSN to run")
	}

	ctx := context.Background()
	repo, closeFn, err := NewRepository(ctx, storage.Config{
		Kind:           "mysql",
		DSN:            dsn,
		BatchSize:      2,
		ConnectTimeout: 5 * time.Second,
	})
	if err != nil {
		t.Fatalf("NewRepository: %v", err)
	}
	defer closeFn()

	if err := repo.ApplySchema(ctx); err != nil {
		t.Fatalf("ApplySchema: %v", err)
	}
	if err := repo.ApplySchema(ctx); err != nil {
		t.Fatalf("ApplySchema rerun: %v", err)
	}

	rows := [][]any{
		{1, "Electronics"},
		{2, "Sports"},
		{3, "Home"},
	}
	n, err := repo.Replace(ctx, "product_categories", []string{"category_id", "category_name"}, rows)
	if err != nil {
		t.Fatalf("Replace: %v", err)
	}
	if n != 3 {
		t.Fatalf("Replace rows = %d, want 3", n)
	}

	n, err = repo.Replace(ctx, "product_categories", []string{"category_id", "category_name"}, rows[:1])
	if err != nil {
		t.Fatalf("Replace rerun: %v", err)
	}
	if n != 1 {
		t.Fatalf("Replace rerun rows = %d, want 1", n)
	}

	var count int
	if err := repo.db.QueryRowContext(ctx, "SELECT count(*) FROM product_categories").Scan(&count); err != nil {
		t.Fatalf("count: %v", err)
	}
	if count != 1 {
		t.Fatalf("table holds %d rows, want 1", count)
	}
}
