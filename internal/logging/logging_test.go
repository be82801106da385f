package logging

import "testing"

func TestNewModes(t *testing.T) {
	t.Parallel()

	for _, mode := range []string{"prod", "production", "dev", "", "PROD"} {
		l, err := New(mode)
		if err != nil {
			t.Fatalf("New(%q): %v", mode, err)
		}
		if l == nil {
			t.Fatalf("New(%q) returned nil logger", mode)
		}
		l.Sync()
	}
}

func TestNopLoggerIsSafe(t *testing.T) {
	t.Parallel()

	l := NewNop()
	l.Debug("debug", "k", 1)
	l.Info("info", "k", 2)
	l.Warn("warn")
	l.Error("error", "err", "boom")
	l.With("run_id", "abc").Info("child")
	l.Sync()
}
