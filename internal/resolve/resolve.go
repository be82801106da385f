// Package resolve turns normalized per-source rows into the relational
// entity set: deduplicated customers and products, derived categories and
// variants, and the transaction/interaction/discount rows built from
// events. All referential checks run in memory here, before the loader
// touches the store, so a bad batch surfaces as an actionable report
// instead of a constraint error mid-copy.
package resolve

import (
	"context"
	"strconv"
	"strings"

	"github.com/zeebo/xxh3"

	"ecometl/internal/logging"
	"ecometl/internal/model"
	"ecometl/internal/normalize"
)

// DefaultIntegrityThreshold is the tolerated rejection rate when the
// config leaves it unset.
const DefaultIntegrityThreshold = 0.25

// Config tunes one resolution pass.
type Config struct {
	// IntegrityThreshold is the maximum tolerated rejected/(rejected+accepted)
	// rate across transaction and interaction candidates. Zero means
	// DefaultIntegrityThreshold; negative means any rejection fails the run.
	IntegrityThreshold float64

	// TransactionIDSeed offsets generated transaction ids: ids run
	// seed+1, seed+2, ... in event order. Zero keeps them run-local.
	TransactionIDSeed int64
}

// Result is the resolved entity set in load order, plus the rejection
// report. Slices keep first-appearance order so repeated resolution over
// the same input is byte-for-byte identical.
type Result struct {
	Customers    []model.Customer
	Products     []model.Product
	Categories   []model.ProductCategory
	Variants     []model.ProductVariant
	Transactions []model.Transaction
	Interactions []model.Interaction
	Discounts    []model.Discount

	Rejections []Rejection
}

// Resolver derives the entity set. One Resolver may be reused; it keeps no
// state between Resolve calls.
type Resolver struct {
	cfg Config
	log *logging.Logger
}

func New(cfg Config, log *logging.Logger) *Resolver {
	if log == nil {
		log = logging.NewNop()
	}
	switch {
	case cfg.IntegrityThreshold == 0:
		cfg.IntegrityThreshold = DefaultIntegrityThreshold
	case cfg.IntegrityThreshold < 0:
		cfg.IntegrityThreshold = 0
	}
	return &Resolver{cfg: cfg, log: log}
}

// Resolve builds the entity set. On IntegrityThresholdError the partially
// resolved Result is still returned for reporting; callers must treat the
// error as fatal for the run.
func (r *Resolver) Resolve(ctx context.Context, customers []normalize.Customer, products []model.Product, events []normalize.Event) (*Result, error) {
	res := &Result{}

	custByID := r.dedupCustomers(customers, res)
	prodSet := r.dedupProducts(products, res)
	if err := ctx.Err(); err != nil {
		return res, err
	}
	r.deriveCategories(res)
	r.deriveVariants(res)
	if err := ctx.Err(); err != nil {
		return res, err
	}
	r.buildRelationships(events, custByID, prodSet, res)

	rejected := len(res.Rejections)
	accepted := len(res.Transactions) + len(res.Interactions)
	r.log.Info("entities resolved",
		"customers", len(res.Customers), "products", len(res.Products),
		"categories", len(res.Categories), "variants", len(res.Variants),
		"transactions", len(res.Transactions), "interactions", len(res.Interactions),
		"discounts", len(res.Discounts), "rejections", rejected)

	if total := rejected + accepted; total > 0 {
		if rate := float64(rejected) / float64(total); rate > r.cfg.IntegrityThreshold {
			return res, &IntegrityThresholdError{
				Rejected:  rejected,
				Accepted:  accepted,
				Threshold: r.cfg.IntegrityThreshold,
			}
		}
	}
	return res, nil
}

// dedupCustomers keeps one row per customer id, last write wins, slot at
// first appearance. The returned index serves transaction attribute joins.
func (r *Resolver) dedupCustomers(in []normalize.Customer, res *Result) map[int]normalize.Customer {
	byID := make(map[int]normalize.Customer, len(in))
	slot := make(map[int]int, len(in))
	res.Customers = make([]model.Customer, 0, len(in))

	dups := 0
	for _, c := range in {
		row := model.Customer{
			CustomerID:           c.CustomerID,
			Age:                  c.Age,
			Gender:               c.Gender,
			Location:             c.Location,
			ReviewRating:         c.ReviewRating,
			SubscriptionStatus:   c.SubscriptionStatus,
			FrequencyOfPurchases: c.FrequencyOfPurchases,
		}
		if i, seen := slot[c.CustomerID]; seen {
			res.Customers[i] = row
			dups++
		} else {
			slot[c.CustomerID] = len(res.Customers)
			res.Customers = append(res.Customers, row)
		}
		byID[c.CustomerID] = c
	}
	if dups > 0 {
		r.log.Warn("duplicate customer ids collapsed", "count", dups)
	}
	return byID
}

// dedupProducts applies the same last-write-wins policy keyed by product id
// and returns the surviving id set.
func (r *Resolver) dedupProducts(in []model.Product, res *Result) map[string]struct{} {
	ids := make(map[string]struct{}, len(in))
	slot := make(map[string]int, len(in))
	res.Products = make([]model.Product, 0, len(in))

	dups := 0
	for _, p := range in {
		if i, seen := slot[p.ProductID]; seen {
			res.Products[i] = p
			dups++
		} else {
			slot[p.ProductID] = len(res.Products)
			res.Products = append(res.Products, p)
		}
		ids[p.ProductID] = struct{}{}
	}
	if dups > 0 {
		r.log.Warn("duplicate product ids collapsed", "count", dups)
	}
	return ids
}

// deriveCategories assigns surrogate ids 1..n to distinct category text in
// order of first appearance across the deduplicated catalog. Products with
// no category text contribute nothing.
func (r *Resolver) deriveCategories(res *Result) {
	seen := make(map[string]int)
	for _, p := range res.Products {
		if p.Category == nil {
			continue
		}
		name := strings.TrimSpace(*p.Category)
		if name == "" {
			continue
		}
		if _, ok := seen[name]; ok {
			continue
		}
		id := len(res.Categories) + 1
		seen[name] = id
		res.Categories = append(res.Categories, model.ProductCategory{
			CategoryID:   id,
			CategoryName: name,
		})
	}
}

// deriveVariants emits one row per distinct (product_id, size, color),
// first occurrence wins, defaults Unknown/Unknown/0. The distinct set is
// tracked by an xxh3 hash over the \x1f-joined key.
func (r *Resolver) deriveVariants(res *Result) {
	seen := make(map[uint64]struct{}, len(res.Products))
	for _, p := range res.Products {
		v := model.ProductVariant{
			ProductID: p.ProductID,
			Size:      "Unknown",
			Color:     "Unknown",
		}
		if p.Size != nil && *p.Size != "" {
			v.Size = *p.Size
		}
		if p.Color != nil && *p.Color != "" {
			v.Color = *p.Color
		}
		if p.Stock != nil {
			v.StockQuantity = *p.Stock
		}

		key := xxh3.HashString(v.ProductID + "\x1f" + v.Size + "\x1f" + v.Color)
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		res.Variants = append(res.Variants, v)
	}
}

// buildRelationships walks the events once. Every event is both a
// transaction candidate and an interaction candidate; an unresolved
// customer or product rejects the event on both sides, and the rejection
// report carries which reference broke first.
func (r *Resolver) buildRelationships(events []normalize.Event, custByID map[int]normalize.Customer, prodSet map[string]struct{}, res *Result) {
	nextID := r.cfg.TransactionIDSeed
	for i, e := range events {
		cust, custOK := custByID[e.UserID]
		_, prodOK := prodSet[e.ProductID]
		if !custOK || !prodOK {
			ref, val := "customer_id", strconv.Itoa(e.UserID)
			if custOK {
				ref, val = "product_id", e.ProductID
			}
			res.Rejections = append(res.Rejections,
				Rejection{Kind: "transaction", Row: i, Ref: ref, Value: val},
				Rejection{Kind: "interaction", Row: i, Ref: ref, Value: val},
			)
			continue
		}

		nextID++
		txn := model.Transaction{
			TransactionID:     nextID,
			CustomerID:        e.UserID,
			ProductID:         e.ProductID,
			PurchaseDate:      e.Timestamp,
			PurchaseAmountUSD: cust.PurchaseAmount,
			PaymentMethod:     cust.PaymentMethod,
			ShippingType:      cust.ShippingType,
			PromoCodeUsed:     cust.PromoCode,
			DiscountApplied:   cust.DiscountApplied,
		}
		res.Transactions = append(res.Transactions, txn)
		res.Interactions = append(res.Interactions, model.Interaction{
			UserID:          e.UserID,
			ProductID:       e.ProductID,
			InteractionType: e.InteractionType,
			Timestamp:       e.Timestamp,
		})

		if txn.PromoCodeUsed != nil {
			res.Discounts = append(res.Discounts, model.Discount{
				TransactionID:   txn.TransactionID,
				PromoCodeUsed:   *txn.PromoCodeUsed,
				DiscountApplied: txn.DiscountApplied,
				CustomerID:      txn.CustomerID,
				ProductID:       txn.ProductID,
				PurchaseDate:    txn.PurchaseDate,
			})
		}
	}
}
