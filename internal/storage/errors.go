package storage

import (
	"context"
	"errors"
	"fmt"
)

// TransientError marks a load failure worth retrying: connection drops,
// serialization conflicts, lock timeouts. The loader retries these with
// backoff up to its attempt limit.
type TransientError struct {
	Table string
	Err   error
}

func (e *TransientError) Error() string {
	return fmt.Sprintf("load %s: transient: %v", e.Table, e.Err)
}

func (e *TransientError) Unwrap() error { return e.Err }

// FatalError marks a load failure retrying cannot fix: constraint
// violations, malformed rows, schema drift. The loader fails fast on these.
type FatalError struct {
	Table string
	Err   error
}

func (e *FatalError) Error() string {
	return fmt.Sprintf("load %s: fatal: %v", e.Table, e.Err)
}

func (e *FatalError) Unwrap() error { return e.Err }

// IsTransient reports whether err should be retried. Context cancellation is
// never transient, whatever a backend wrapped it in.
func IsTransient(err error) bool {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}
	var te *TransientError
	return errors.As(err, &te)
}
