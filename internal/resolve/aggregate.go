package resolve

import (
	"sort"

	"ecometl/internal/model"
)

// TopProduct is one row of the top_selling_products view: a product that
// sold at least once, with transaction count and summed revenue.
type TopProduct struct {
	ProductID    string
	ProductName  *string
	BrandName    *string
	Category     *string
	TotalSales   int64
	TotalRevenue float64
}

// CustomerSummary is one row of the customer_sales_summary view: every
// customer, transacting or not, with demographics and spend totals.
type CustomerSummary struct {
	CustomerID         int
	Age                *int
	Gender             *string
	Location           *string
	SubscriptionStatus *string
	TotalTransactions  int64
	TotalSpent         float64
	AvgReviewRating    *float64
}

// TopSellingProducts recomputes the view over the in-memory entity set.
// Rows come back descending by TotalSales, ties ascending by ProductID so
// the output is stable. NULL purchase amounts are skipped in the sum, the
// way SQL SUM treats them.
func TopSellingProducts(products []model.Product, txns []model.Transaction) []TopProduct {
	sales := make(map[string]int64, len(products))
	revenue := make(map[string]float64, len(products))
	for _, t := range txns {
		sales[t.ProductID]++
		if t.PurchaseAmountUSD != nil {
			revenue[t.ProductID] += *t.PurchaseAmountUSD
		}
	}

	out := make([]TopProduct, 0, len(sales))
	for _, p := range products {
		n, ok := sales[p.ProductID]
		if !ok {
			continue
		}
		out = append(out, TopProduct{
			ProductID:    p.ProductID,
			ProductName:  p.ProductName,
			BrandName:    p.BrandName,
			Category:     p.Category,
			TotalSales:   n,
			TotalRevenue: revenue[p.ProductID],
		})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].TotalSales != out[j].TotalSales {
			return out[i].TotalSales > out[j].TotalSales
		}
		return out[i].ProductID < out[j].ProductID
	})
	return out
}

// CustomerSalesSummary recomputes the view over the in-memory entity set:
// a left join, so customers without transactions appear with zero totals.
// Rows come back ascending by CustomerID.
func CustomerSalesSummary(customers []model.Customer, txns []model.Transaction) []CustomerSummary {
	count := make(map[int]int64, len(customers))
	spent := make(map[int]float64, len(customers))
	for _, t := range txns {
		count[t.CustomerID]++
		if t.PurchaseAmountUSD != nil {
			spent[t.CustomerID] += *t.PurchaseAmountUSD
		}
	}

	out := make([]CustomerSummary, 0, len(customers))
	for _, c := range customers {
		out = append(out, CustomerSummary{
			CustomerID:         c.CustomerID,
			Age:                c.Age,
			Gender:             c.Gender,
			Location:           c.Location,
			SubscriptionStatus: c.SubscriptionStatus,
			TotalTransactions:  count[c.CustomerID],
			TotalSpent:         spent[c.CustomerID],
			AvgReviewRating:    c.ReviewRating,
		})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CustomerID < out[j].CustomerID })
	return out
}
