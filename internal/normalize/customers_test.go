package normalize

import (
	"testing"

	"ecometl/internal/extract"
)

// customersFrame builds a synthetic customers frame; each row gives values
// for the contract columns in declaration order.
func customersFrame(rows ...[]string) *extract.Frame {
	return extract.NewFrame("customers", CustomersContract.Columns(), rows)
}

/*
TestCustomers_BadAgeIsNulledNotDropped pins the field-versus-row rule: a
textual age nulls the field, keeps the row, and books exactly one
numeric-coercion reason. Total/Valid/Dropped must still add up.
*/
func TestCustomers_BadAgeIsNulledNotDropped(t *testing.T) {
	f := customersFrame(
		[]string{"1", "twenty", "Male", "Prague", "4.5", "Active", "Weekly", "$120.50", "Card", "Express", "SAVE10", "12.5"},
	)
	out, rep := Customers(f, nil)

	if len(out) != 1 || rep.Valid != 1 || rep.Dropped != 0 {
		t.Fatalf("valid=%d dropped=%d; want 1/0", rep.Valid, rep.Dropped)
	}
	c := out[0]
	if c.Age != nil {
		t.Fatalf("age=%v; want nil", *c.Age)
	}
	if got := rep.Reasons["age: not numeric"]; got != 1 {
		t.Fatalf("reason count=%d; want 1", got)
	}
	if rep.Total != rep.Valid+rep.Dropped {
		t.Fatalf("accounting broken: %+v", rep)
	}
}

func TestCustomers_DropsRowsWithoutUsableID(t *testing.T) {
	f := customersFrame(
		[]string{"", "30", "", "", "", "", "", "", "", "", "", ""},
		[]string{"abc", "30", "", "", "", "", "", "", "", "", "", ""},
		[]string{"7", "30", "", "", "", "", "", "", "", "", "", ""},
	)
	out, rep := Customers(f, nil)

	if len(out) != 1 || out[0].CustomerID != 7 {
		t.Fatalf("out=%+v; want single id 7", out)
	}
	if rep.Dropped != 2 {
		t.Fatalf("dropped=%d; want 2", rep.Dropped)
	}
	if rep.Reasons["customer_id: missing"] != 1 || rep.Reasons["customer_id: not numeric"] != 1 {
		t.Fatalf("reasons=%v", rep.Reasons)
	}
}

/*
TestCustomers_EnumsAndPromo checks enum canonicalization and the promo
convention together:
  - "male"/"ACTIVE" fold to the documented spellings,
  - out-of-enum values survive unchanged but are counted,
  - promo "No" and "" mean absent, anything else is a code.
*/
func TestCustomers_EnumsAndPromo(t *testing.T) {
	f := customersFrame(
		[]string{"1", "", "male", "", "", "ACTIVE", "", "", "", "", "No", ""},
		[]string{"2", "", "Nonbinary", "", "", "paused", "", "", "", "", "", ""},
		[]string{"3", "", "Female", "", "", "Inactive", "", "", "", "", "SAVE10", ""},
	)
	out, rep := Customers(f, nil)
	if len(out) != 3 {
		t.Fatalf("valid=%d; want 3", len(out))
	}

	if got := *out[0].Gender; got != "Male" {
		t.Errorf("gender=%q; want Male", got)
	}
	if got := *out[0].SubscriptionStatus; got != "Active" {
		t.Errorf("subscription=%q; want Active", got)
	}
	if out[0].PromoCode != nil {
		t.Errorf("promo=%v; want nil for literal No", *out[0].PromoCode)
	}

	if got := *out[1].Gender; got != "Nonbinary" {
		t.Errorf("out-of-enum gender=%q; want passthrough", got)
	}
	if rep.Reasons["gender: outside enum"] != 1 || rep.Reasons["subscription_status: outside enum"] != 1 {
		t.Errorf("reasons=%v", rep.Reasons)
	}
	if out[1].PromoCode != nil {
		t.Errorf("empty promo should be nil")
	}

	if out[2].PromoCode == nil || *out[2].PromoCode != "SAVE10" {
		t.Errorf("promo=%v; want SAVE10", out[2].PromoCode)
	}
}

func TestCustomers_MoneyParsing(t *testing.T) {
	f := customersFrame(
		[]string{"1", "", "", "", "", "", "", "$120.50", "", "", "", "12.346"},
		[]string{"2", "", "", "", "", "", "", "1,234.56", "", "", "", "Yes"},
		[]string{"3", "", "", "", "", "", "", "-5", "", "", "", "-1"},
	)
	out, rep := Customers(f, nil)

	if got := *out[0].PurchaseAmount; got != 120.50 {
		t.Errorf("amount=%v; want 120.50", got)
	}
	if got := *out[0].DiscountApplied; got != 12.35 {
		t.Errorf("discount=%v; want 12.35 after rounding", got)
	}
	if got := *out[1].PurchaseAmount; got != 1234.56 {
		t.Errorf("amount=%v; want 1234.56", got)
	}
	if out[1].DiscountApplied != nil {
		t.Errorf("discount=%v; want nil for Yes", *out[1].DiscountApplied)
	}
	if out[2].PurchaseAmount != nil || out[2].DiscountApplied != nil {
		t.Errorf("negative money kept: %+v", out[2])
	}
	if rep.Reasons["discount_applied: not numeric"] != 1 ||
		rep.Reasons["purchase_amount: negative"] != 1 ||
		rep.Reasons["discount_applied: negative"] != 1 {
		t.Errorf("reasons=%v", rep.Reasons)
	}
}
