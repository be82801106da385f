package normalize

import (
	"testing"
	"time"

	"ecometl/internal/extract"
)

// eventsFrame builds a synthetic events frame; each row is
// (user id, product id, interaction type, timestamp).
func eventsFrame(rows ...[]string) *extract.Frame {
	return extract.NewFrame("events", EventsContract.Columns(), rows)
}

func TestEvents_TimestampLayouts(t *testing.T) {
	f := eventsFrame(
		[]string{"1", hexID, "Purchase", "31/12/2023 14:05"},
		[]string{"2", hexID, "View", "5/3/2023 9:07:59"},
		[]string{"3", hexID, "Click", "2023-06-01T10:00:00Z"},
	)
	out, rep := Events(f, nil)
	if len(out) != 3 || rep.Dropped != 0 {
		t.Fatalf("valid=%d dropped=%d; want 3/0", len(out), rep.Dropped)
	}

	want := []time.Time{
		time.Date(2023, 12, 31, 14, 5, 0, 0, time.UTC),
		time.Date(2023, 3, 5, 9, 7, 59, 0, time.UTC),
		time.Date(2023, 6, 1, 10, 0, 0, 0, time.UTC),
	}
	for i, w := range want {
		if !out[i].Timestamp.Equal(w) {
			t.Errorf("row %d timestamp=%v; want %v", i, out[i].Timestamp, w)
		}
	}
}

/*
TestEvents_RowDrops covers every drop path: the events source has no
kept-but-nulled fields apart from the interaction type, so a bad id or
timestamp removes the row.
*/
func TestEvents_RowDrops(t *testing.T) {
	f := eventsFrame(
		[]string{"", hexID, "View", "1/1/2023 0:00"},
		[]string{"x9", hexID, "View", "1/1/2023 0:00"},
		[]string{"3", "", "View", "1/1/2023 0:00"},
		[]string{"4", hexID, "View", "not a time"},
		[]string{"5", hexID, "View", "1/1/2023 0:00"},
	)
	out, rep := Events(f, nil)

	if len(out) != 1 || out[0].UserID != 5 {
		t.Fatalf("out=%+v; want single user 5", out)
	}
	if rep.Dropped != 4 {
		t.Fatalf("dropped=%d; want 4", rep.Dropped)
	}
	for _, reason := range []string{
		"user_id: missing",
		"user_id: not numeric",
		"product_id: missing",
		"timestamp: unparseable",
	} {
		if rep.Reasons[reason] != 1 {
			t.Errorf("reasons=%v; want %q counted once", rep.Reasons, reason)
		}
	}
	if rep.Total != rep.Valid+rep.Dropped {
		t.Fatalf("accounting broken: %+v", rep)
	}
}

func TestEvents_InteractionType(t *testing.T) {
	f := eventsFrame(
		[]string{"1", hexID, "purchase", "1/1/2023 0:00"},
		[]string{"2", hexID, "Wishlist", "1/1/2023 0:00"},
		[]string{"3", hexID, "", "1/1/2023 0:00"},
	)
	out, rep := Events(f, nil)

	if got := *out[0].InteractionType; got != "Purchase" {
		t.Errorf("type=%q; want canonical Purchase", got)
	}
	if got := *out[1].InteractionType; got != "Wishlist" {
		t.Errorf("type=%q; want passthrough Wishlist", got)
	}
	if rep.Reasons["interaction_type: outside enum"] != 1 {
		t.Errorf("reasons=%v", rep.Reasons)
	}
	if out[2].InteractionType != nil {
		t.Errorf("empty type should stay nil")
	}
}
