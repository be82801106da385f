package normalize

import (
	"strings"
	"time"

	"ecometl/internal/extract"
	"ecometl/internal/logging"
)

// EventsContract lists the columns the pipeline reads from the interaction
// events export.
var EventsContract = extract.Contract{
	Source: "events",
	Fields: []extract.Field{
		{Column: "user_id", Header: "user id", Required: true},
		{Column: "product_id", Header: "product id", Required: true},
		{Column: "interaction_type", Header: "Interaction type"},
		{Column: "timestamp", Header: "Time stamp"},
	},
}

// Event is one cleaned interaction event: a user touched a product at a
// point in time. Referential checks against the resolved customer and
// product sets happen later.
type Event struct {
	UserID          int
	ProductID       string
	InteractionType *string
	Timestamp       time.Time
}

// interactionTypes are the documented event kinds; the set is open, so
// values outside it are kept but counted.
var interactionTypes = []string{"View", "Click", "AddToCart", "Purchase"}

// Events normalizes the events frame. The row is the unit of validity here:
// a bad user id, product id, or timestamp drops it, there are no
// kept-but-nulled fields besides the interaction type.
func Events(f *extract.Frame, log *logging.Logger) ([]Event, *Report) {
	if log == nil {
		log = logging.NewNop()
	}
	rep := newReport(f.Source)
	rep.Total = f.Len()

	var (
		users  = f.Column("user_id")
		prods  = f.Column("product_id")
		kinds  = f.Column("interaction_type")
		stamps = f.Column("timestamp")
	)

	out := make([]Event, 0, f.Len())
	for i := 0; i < f.Len(); i++ {
		userText := strings.TrimSpace(users[i])
		if userText == "" {
			rep.dropRow("user_id: missing")
			continue
		}
		userID, ok := parseIntField(userText)
		if !ok {
			rep.dropRow("user_id: not numeric")
			continue
		}
		productID := strings.TrimSpace(prods[i])
		if productID == "" {
			rep.dropRow("product_id: missing")
			continue
		}
		ts, ok := parseTimestamp(stamps[i])
		if !ok {
			rep.dropRow("timestamp: unparseable")
			continue
		}

		e := Event{UserID: userID, ProductID: productID, Timestamp: ts}
		if v := strings.TrimSpace(kinds[i]); v != "" {
			canon, known := canonEnum(v, interactionTypes)
			if !known {
				rep.countField("interaction_type: outside enum")
				log.Debug("interaction type outside enum", "value", v)
			}
			e.InteractionType = &canon
		}

		out = append(out, e)
	}
	rep.Valid = len(out)

	log.Info("events normalized",
		"total", rep.Total, "valid", rep.Valid, "dropped", rep.Dropped)
	return out, rep
}
