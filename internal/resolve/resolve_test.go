package resolve

import (
	"context"
	"errors"
	"reflect"
	"testing"
	"time"

	"ecometl/internal/model"
	"ecometl/internal/normalize"
)

func sptr(s string) *string   { return &s }
func fptr(f float64) *float64 { return &f }
func iptr(i int) *int         { return &i }

func mkCustomer(id int, amount *float64, promo *string) normalize.Customer {
	return normalize.Customer{
		CustomerID:      id,
		Age:             iptr(30),
		Gender:          sptr("Female"),
		PurchaseAmount:  amount,
		PaymentMethod:   sptr("Credit Card"),
		ShippingType:    sptr("Express"),
		PromoCode:       promo,
		DiscountApplied: fptr(10),
	}
}

func mkProduct(id string, category, size, color *string, stock *int) model.Product {
	return model.Product{
		ProductID: id,
		Category:  category,
		Size:      size,
		Color:     color,
		Stock:     stock,
	}
}

var eventTime = time.Date(2023, 7, 14, 12, 30, 0, 0, time.UTC)

func mkEvent(user int, product string) normalize.Event {
	return normalize.Event{
		UserID:          user,
		ProductID:       product,
		InteractionType: sptr("Purchase"),
		Timestamp:       eventTime,
	}
}

/*
TestResolve_DanglingReferenceRejected: an event naming a customer id absent
from the resolved set must not reach the load set; it shows up in the
rejection report on both the transaction and the interaction side, and a
low rejection rate does not fail the run.
*/
func TestResolve_DanglingReferenceRejected(t *testing.T) {
	customers := []normalize.Customer{mkCustomer(1, fptr(50), nil), mkCustomer(2, fptr(60), nil)}
	products := []model.Product{mkProduct("p1", nil, nil, nil, nil)}
	events := []normalize.Event{
		mkEvent(1, "p1"),
		mkEvent(9999, "p1"),
		mkEvent(2, "p1"),
		mkEvent(1, "p1"),
	}

	res, err := New(Config{}, nil).Resolve(context.Background(), customers, products, events)
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if len(res.Transactions) != 3 || len(res.Interactions) != 3 {
		t.Fatalf("txns=%d interactions=%d; want 3/3", len(res.Transactions), len(res.Interactions))
	}
	if len(res.Rejections) != 2 {
		t.Fatalf("rejections=%v; want transaction+interaction pair", res.Rejections)
	}
	for _, rej := range res.Rejections {
		if rej.Row != 1 || rej.Ref != "customer_id" || rej.Value != "9999" {
			t.Errorf("rejection=%+v", rej)
		}
	}
	for _, txn := range res.Transactions {
		if txn.CustomerID == 9999 {
			t.Fatalf("dangling transaction loaded: %+v", txn)
		}
	}
}

// TestResolve_SharedCategoryText: two products with the same category text
// must collapse to one category row, id assigned by first appearance.
func TestResolve_SharedCategoryText(t *testing.T) {
	products := []model.Product{
		mkProduct("p1", sptr("Electronics"), nil, nil, nil),
		mkProduct("p2", sptr("Sports"), nil, nil, nil),
		mkProduct("p3", sptr("Electronics"), nil, nil, nil),
		mkProduct("p4", nil, nil, nil, nil),
		mkProduct("p5", sptr("  "), nil, nil, nil),
	}

	res, err := New(Config{}, nil).Resolve(context.Background(), nil, products, nil)
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	want := []model.ProductCategory{
		{CategoryID: 1, CategoryName: "Electronics"},
		{CategoryID: 2, CategoryName: "Sports"},
	}
	if !reflect.DeepEqual(res.Categories, want) {
		t.Fatalf("categories=%+v; want %+v", res.Categories, want)
	}
}

func TestResolve_CustomerLastWriteWins(t *testing.T) {
	customers := []normalize.Customer{
		{CustomerID: 1, Location: sptr("Prague")},
		{CustomerID: 2, Location: sptr("Brno")},
		{CustomerID: 1, Location: sptr("Ostrava")},
	}

	res, err := New(Config{}, nil).Resolve(context.Background(), customers, nil, nil)
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if len(res.Customers) != 2 {
		t.Fatalf("customers=%d; want 2", len(res.Customers))
	}
	// Slot keeps first-appearance order, value is the last write.
	if res.Customers[0].CustomerID != 1 || *res.Customers[0].Location != "Ostrava" {
		t.Fatalf("row 0=%+v; want id 1 from Ostrava", res.Customers[0])
	}
	if res.Customers[1].CustomerID != 2 {
		t.Fatalf("row 1=%+v; want id 2", res.Customers[1])
	}
}

/*
TestResolve_VariantsDistinctWithDefaults: variants are one row per distinct
(product_id, size, color); nil size/color default to "Unknown", nil stock to
0, and the first occurrence decides the stock value.
*/
func TestResolve_VariantsDistinctWithDefaults(t *testing.T) {
	products := []model.Product{
		mkProduct("p1", nil, sptr("9.5"), sptr("Black"), iptr(12)),
		mkProduct("p2", nil, nil, nil, nil),
		mkProduct("p3", nil, sptr("9.5"), sptr("Black"), iptr(7)),
	}

	res, err := New(Config{}, nil).Resolve(context.Background(), nil, products, nil)
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	want := []model.ProductVariant{
		{ProductID: "p1", Size: "9.5", Color: "Black", StockQuantity: 12},
		{ProductID: "p2", Size: "Unknown", Color: "Unknown", StockQuantity: 0},
		{ProductID: "p3", Size: "9.5", Color: "Black", StockQuantity: 7},
	}
	if !reflect.DeepEqual(res.Variants, want) {
		t.Fatalf("variants=%+v; want %+v", res.Variants, want)
	}

	// Same product appearing twice with the same size/color is one row.
	res2, err := New(Config{}, nil).Resolve(context.Background(), nil,
		[]model.Product{products[0], products[0]}, nil)
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if len(res2.Variants) != 1 {
		t.Fatalf("variants=%+v; want 1 row", res2.Variants)
	}
}

/*
TestResolve_TransactionsJoinAndSeed checks transaction assembly end to end:
ids run seed+1, seed+2 in event order, purchase attributes come from the
matching customer, and discounts exist exactly for promo-carrying
transactions with the full composite key copied over.
*/
func TestResolve_TransactionsJoinAndSeed(t *testing.T) {
	customers := []normalize.Customer{
		mkCustomer(1, fptr(120.50), sptr("SAVE10")),
		mkCustomer(2, fptr(60), nil),
	}
	products := []model.Product{mkProduct("p1", nil, nil, nil, nil)}
	events := []normalize.Event{mkEvent(1, "p1"), mkEvent(2, "p1")}

	res, err := New(Config{TransactionIDSeed: 100}, nil).Resolve(context.Background(), customers, products, events)
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}

	if len(res.Transactions) != 2 {
		t.Fatalf("txns=%d; want 2", len(res.Transactions))
	}
	first := res.Transactions[0]
	if first.TransactionID != 101 || res.Transactions[1].TransactionID != 102 {
		t.Fatalf("ids=%d,%d; want 101,102", first.TransactionID, res.Transactions[1].TransactionID)
	}
	if first.CustomerID != 1 || first.ProductID != "p1" || !first.PurchaseDate.Equal(eventTime) {
		t.Fatalf("keys=%+v", first)
	}
	if *first.PurchaseAmountUSD != 120.50 || *first.PaymentMethod != "Credit Card" ||
		*first.ShippingType != "Express" || *first.PromoCodeUsed != "SAVE10" || *first.DiscountApplied != 10 {
		t.Fatalf("joined attributes=%+v", first)
	}

	if len(res.Discounts) != 1 {
		t.Fatalf("discounts=%+v; want 1 row for the promo transaction", res.Discounts)
	}
	d := res.Discounts[0]
	if d.TransactionID != 101 || d.PromoCodeUsed != "SAVE10" || *d.DiscountApplied != 10 ||
		d.CustomerID != 1 || d.ProductID != "p1" || !d.PurchaseDate.Equal(eventTime) {
		t.Fatalf("discount=%+v", d)
	}
}

func TestResolve_ThresholdExceeded(t *testing.T) {
	customers := []normalize.Customer{mkCustomer(1, nil, nil)}
	products := []model.Product{mkProduct("p1", nil, nil, nil, nil)}
	events := []normalize.Event{
		mkEvent(1, "p1"),
		mkEvent(7777, "p1"),
		mkEvent(8888, "p1"),
		mkEvent(9999, "nope"),
	}

	res, err := New(Config{IntegrityThreshold: 0.5}, nil).Resolve(context.Background(), customers, products, events)
	var ite *IntegrityThresholdError
	if !errors.As(err, &ite) {
		t.Fatalf("err=%v; want *IntegrityThresholdError", err)
	}
	// 6 rejections against 2 accepted candidates.
	if ite.Rejected != 6 || ite.Accepted != 2 {
		t.Fatalf("error payload=%+v", ite)
	}
	if ite.Rate() != 0.75 {
		t.Fatalf("rate=%v; want 0.75", ite.Rate())
	}
	if res == nil || len(res.Rejections) != 6 {
		t.Fatalf("partial result missing: %+v", res)
	}
}

func TestResolve_NegativeThresholdMeansZeroTolerance(t *testing.T) {
	customers := []normalize.Customer{mkCustomer(1, nil, nil)}
	products := []model.Product{mkProduct("p1", nil, nil, nil, nil)}
	events := []normalize.Event{mkEvent(1, "p1"), mkEvent(2, "p1")}

	_, err := New(Config{IntegrityThreshold: -1}, nil).Resolve(context.Background(), customers, products, events)
	var ite *IntegrityThresholdError
	if !errors.As(err, &ite) {
		t.Fatalf("err=%v; want *IntegrityThresholdError at zero tolerance", err)
	}
}

// TestResolve_Deterministic: the same normalized input resolves to the same
// entity set, ids included.
func TestResolve_Deterministic(t *testing.T) {
	customers := []normalize.Customer{mkCustomer(2, fptr(5), nil), mkCustomer(1, fptr(9), sptr("X")), mkCustomer(2, fptr(6), nil)}
	products := []model.Product{
		mkProduct("b", sptr("Electronics"), sptr("M"), nil, iptr(3)),
		mkProduct("a", sptr("Sports"), nil, sptr("Red"), nil),
		mkProduct("b", sptr("Electronics"), sptr("M"), nil, iptr(4)),
	}
	events := []normalize.Event{mkEvent(1, "a"), mkEvent(2, "b"), mkEvent(3, "a")}

	run := func() *Result {
		res, err := New(Config{IntegrityThreshold: 0.5}, nil).Resolve(context.Background(), customers, products, events)
		if err != nil {
			t.Fatalf("resolve: %v", err)
		}
		return res
	}
	if a, b := run(), run(); !reflect.DeepEqual(a, b) {
		t.Fatalf("resolution not deterministic:\n%+v\n%+v", a, b)
	}
}

func TestResolve_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := New(Config{}, nil).Resolve(ctx, nil, nil, nil)
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("err=%v; want context.Canceled", err)
	}
}
