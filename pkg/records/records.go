// Package records defines the generic row representation shared by the
// extract layer and diagnostic reports.
//
// A Record maps column names to values. A nil value means SQL NULL; empty
// strings from a source are converted to nil at the boundary so that every
// later stage can rely on a single null convention.
package records

import "fmt"

// Record is one row keyed by column name. Values are strings fresh off a
// source, or typed values after coercion. nil represents NULL.
type Record map[string]any

// Clone returns a shallow copy of the record.
func (r Record) Clone() Record {
	out := make(Record, len(r))
	for k, v := range r {
		out[k] = v
	}
	return out
}

// String returns the value for key as a string, or "" when the key is
// missing, nil, or not a string.
func (r Record) String(key string) string {
	if v, ok := r[key]; ok {
		if s, ok := v.(string); ok {
			return s
		}
	}
	return ""
}

// Has reports whether key is present with a non-nil value.
func (r Record) Has(key string) bool {
	v, ok := r[key]
	return ok && v != nil
}

// Fields renders the record as "k=v" pairs for log lines. Keys are emitted
// in the order given so call sites control the layout.
func (r Record) Fields(keys ...string) []string {
	out := make([]string, 0, len(keys))
	for _, k := range keys {
		v, ok := r[k]
		if !ok || v == nil {
			out = append(out, k+"=<nil>")
			continue
		}
		out = append(out, fmt.Sprintf("%s=%v", k, v))
	}
	return out
}

// EmptyToNil converts an empty string to nil; all other values pass through.
func EmptyToNil(s string) any {
	if s == "" {
		return nil
	}
	return s
}
