// Package model defines the warehouse row types produced by entity
// resolution and consumed by the loader. Pointer fields carry SQL NULL.
package model

import "time"

// Customer is one row of the customers table.
type Customer struct {
	CustomerID           int
	Age                  *int
	Gender               *string
	Location             *string
	ReviewRating         *float64
	SubscriptionStatus   *string
	FrequencyOfPurchases *string
}

// Product is one row of the products table. Category is the denormalized
// free-text value from the catalog; the normalized product_categories table
// exists alongside it and both are kept on purpose.
type Product struct {
	ProductID          string
	ProductName        *string
	BrandName          *string
	Category           *string
	ModelNumber        *string
	Size               *string
	Color              *string
	Dimensions         *string
	ShippingWeight     *float64
	SellingPrice       *float64
	Stock              *int
	Quantity           *int
	ProductURL         *string
	ProductDescription *string
}

// ProductCategory is one row of the product_categories table. CategoryID is
// a surrogate assigned in order of first appearance across the catalog.
type ProductCategory struct {
	CategoryID   int
	CategoryName string
}

// ProductVariant is one row of the product_variants table, keyed by
// (product_id, size, color).
type ProductVariant struct {
	ProductID     string
	Size          string
	Color         string
	StockQuantity int
}

// Transaction is one row of the transactions table. The composite key is
// (transaction_id, customer_id, product_id, purchase_date); purchase_date
// also determines partition placement.
type Transaction struct {
	TransactionID     int64
	CustomerID        int
	ProductID         string
	PurchaseDate      time.Time
	PurchaseAmountUSD *float64
	PaymentMethod     *string
	ShippingType      *string
	PromoCodeUsed     *string
	DiscountApplied   *float64
}

// Interaction is one row of the interactions table. The interaction_id
// column is store-assigned and therefore absent here.
type Interaction struct {
	UserID          int
	ProductID       string
	InteractionType *string
	Timestamp       time.Time
}

// Discount is one row of the discounts table. It carries the full composite
// key of the transaction it belongs to.
type Discount struct {
	TransactionID   int64
	PromoCodeUsed   string
	DiscountApplied *float64
	CustomerID      int
	ProductID       string
	PurchaseDate    time.Time
}
