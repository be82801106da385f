package normalize

import (
	"strings"

	"ecometl/internal/extract"
	"ecometl/internal/logging"
)

// CustomersContract lists the columns the pipeline reads from the customer
// details export. The purchase attributes ride along per customer and feed
// transaction assembly during resolution.
var CustomersContract = extract.Contract{
	Source: "customers",
	Fields: []extract.Field{
		{Column: "customer_id", Header: "Customer ID", Required: true},
		{Column: "age", Header: "Age"},
		{Column: "gender", Header: "Gender"},
		{Column: "location", Header: "Location"},
		{Column: "review_rating", Header: "Review Rating"},
		{Column: "subscription_status", Header: "Subscription Status"},
		{Column: "frequency_of_purchases", Header: "Frequency of Purchases"},
		{Column: "purchase_amount", Header: "Purchase Amount (USD)"},
		{Column: "payment_method", Header: "Payment Method"},
		{Column: "shipping_type", Header: "Shipping Type"},
		{Column: "promo_code_used", Header: "Promo Code Used"},
		{Column: "discount_applied", Header: "Discount Applied"},
	},
}

// Customer is one cleaned customers-source row: the warehouse fields plus
// the per-customer purchase attributes the source carries.
type Customer struct {
	CustomerID           int
	Age                  *int
	Gender               *string
	Location             *string
	ReviewRating         *float64
	SubscriptionStatus   *string
	FrequencyOfPurchases *string

	// Purchase attributes; not persisted on the customers table, copied
	// onto transactions during resolution.
	PurchaseAmount  *float64
	PaymentMethod   *string
	ShippingType    *string
	PromoCode       *string
	DiscountApplied *float64
}

// Documented enums. Values outside them pass through unchanged but are
// counted and logged.
var (
	genderValues       = []string{"Male", "Female", "Other"}
	subscriptionValues = []string{"Active", "Inactive"}
)

// Customers normalizes the customers frame. A missing or non-numeric
// customer id drops the row; every other bad field is nulled and counted,
// the row stays.
func Customers(f *extract.Frame, log *logging.Logger) ([]Customer, *Report) {
	if log == nil {
		log = logging.NewNop()
	}
	rep := newReport(f.Source)
	rep.Total = f.Len()

	var (
		ids     = f.Column("customer_id")
		ages    = f.Column("age")
		genders = f.Column("gender")
		locs    = f.Column("location")
		ratings = f.Column("review_rating")
		subs    = f.Column("subscription_status")
		freqs   = f.Column("frequency_of_purchases")
		amounts = f.Column("purchase_amount")
		pays    = f.Column("payment_method")
		ships   = f.Column("shipping_type")
		promos  = f.Column("promo_code_used")
		discs   = f.Column("discount_applied")
	)

	out := make([]Customer, 0, f.Len())
	for i := 0; i < f.Len(); i++ {
		idText := strings.TrimSpace(ids[i])
		if idText == "" {
			rep.dropRow("customer_id: missing")
			continue
		}
		id, ok := parseIntField(idText)
		if !ok {
			rep.dropRow("customer_id: not numeric")
			continue
		}

		c := Customer{CustomerID: id}

		if v := strings.TrimSpace(ages[i]); v != "" {
			if n, ok := parseIntField(v); ok {
				c.Age = &n
			} else {
				rep.countField("age: not numeric")
			}
		}
		if v := strings.TrimSpace(genders[i]); v != "" {
			canon, known := canonEnum(v, genderValues)
			if !known {
				rep.countField("gender: outside enum")
				log.Debug("gender outside enum", "customer_id", id, "value", v)
			}
			c.Gender = &canon
		}
		c.Location = cleanString(locs[i])
		if v := strings.TrimSpace(ratings[i]); v != "" {
			if r, ok := parseFloatField(v); ok {
				c.ReviewRating = &r
			} else {
				rep.countField("review_rating: not numeric")
			}
		}
		if v := strings.TrimSpace(subs[i]); v != "" {
			canon, known := canonEnum(v, subscriptionValues)
			if !known {
				rep.countField("subscription_status: outside enum")
				log.Debug("subscription status outside enum", "customer_id", id, "value", v)
			}
			c.SubscriptionStatus = &canon
		}
		c.FrequencyOfPurchases = cleanString(freqs[i])

		if v := strings.TrimSpace(amounts[i]); v != "" {
			switch amt, ok := parseCurrency(v); {
			case !ok:
				rep.countField("purchase_amount: not numeric")
			case amt < 0:
				rep.countField("purchase_amount: negative")
			default:
				amt = round2(amt)
				c.PurchaseAmount = &amt
			}
		}
		c.PaymentMethod = cleanString(pays[i])
		c.ShippingType = cleanString(ships[i])

		// The source writes the literal "No" for absent promo codes.
		if v := strings.TrimSpace(promos[i]); v != "" && !strings.EqualFold(v, "No") {
			c.PromoCode = &v
		}
		if v := strings.TrimSpace(discs[i]); v != "" {
			switch d, ok := parseFloatField(v); {
			case !ok:
				rep.countField("discount_applied: not numeric")
			case d < 0:
				rep.countField("discount_applied: negative")
			default:
				d = round2(d)
				c.DiscountApplied = &d
			}
		}

		out = append(out, c)
	}
	rep.Valid = len(out)

	log.Info("customers normalized",
		"total", rep.Total, "valid", rep.Valid, "dropped", rep.Dropped)
	return out, rep
}
