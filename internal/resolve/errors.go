package resolve

import "fmt"

// Rejection is one relationship row refused by the in-memory referential
// pre-check. Kind is "transaction" or "interaction", Row the position of
// the offending event in the normalized input, Ref the key that failed to
// resolve.
type Rejection struct {
	Kind  string
	Row   int
	Ref   string
	Value string
}

func (r Rejection) String() string {
	return fmt.Sprintf("%s row %d: %s=%s not resolved", r.Kind, r.Row, r.Ref, r.Value)
}

// IntegrityThresholdError aborts a run whose referential rejection rate,
// rejected/(rejected+accepted) across transactions and interactions, is
// above the configured limit.
type IntegrityThresholdError struct {
	Rejected  int
	Accepted  int
	Threshold float64
}

func (e *IntegrityThresholdError) Error() string {
	total := e.Rejected + e.Accepted
	return fmt.Sprintf("referential rejections %d of %d candidates exceed threshold %.2f",
		e.Rejected, total, e.Threshold)
}

// Rate returns the rejection rate the error was raised for.
func (e *IntegrityThresholdError) Rate() float64 {
	total := e.Rejected + e.Accepted
	if total == 0 {
		return 0
	}
	return float64(e.Rejected) / float64(total)
}
