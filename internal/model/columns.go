package model

// Warehouse table names, including the aggregate views refreshed by DDL.
const (
	TableCustomers         = "customers"
	TableProducts          = "products"
	TableProductCategories = "product_categories"
	TableProductVariants   = "product_variants"
	TableTransactions      = "transactions"
	TableInteractions      = "interactions"
	TableDiscounts         = "discounts"

	ViewTopSellingProducts   = "top_selling_products"
	ViewCustomerSalesSummary = "customer_sales_summary"
)

// Column orders below are the single source of truth for bulk loads; Values
// methods must stay aligned with them.

var CustomerColumns = []string{
	"customer_id", "age", "gender", "location",
	"review_rating", "subscription_status", "frequency_of_purchases",
}

var ProductColumns = []string{
	"product_id", "product_name", "brand_name", "category", "model_number",
	"size", "color", "dimensions", "shipping_weight", "selling_price",
	"stock", "quantity", "product_url", "product_description",
}

var ProductCategoryColumns = []string{"category_id", "category_name"}

var ProductVariantColumns = []string{"product_id", "size", "color", "stock_quantity"}

var TransactionColumns = []string{
	"transaction_id", "customer_id", "product_id", "purchase_date",
	"purchase_amount_usd", "payment_method", "shipping_type",
	"promo_code_used", "discount_applied",
}

// InteractionColumns excludes interaction_id; the store assigns it.
var InteractionColumns = []string{"user_id", "product_id", "interaction_type", "timestamp"}

var DiscountColumns = []string{
	"transaction_id", "promo_code_used", "discount_applied",
	"customer_id", "product_id", "purchase_date",
}

func (c Customer) Values() []any {
	return []any{
		c.CustomerID, c.Age, c.Gender, c.Location,
		c.ReviewRating, c.SubscriptionStatus, c.FrequencyOfPurchases,
	}
}

func (p Product) Values() []any {
	return []any{
		p.ProductID, p.ProductName, p.BrandName, p.Category, p.ModelNumber,
		p.Size, p.Color, p.Dimensions, p.ShippingWeight, p.SellingPrice,
		p.Stock, p.Quantity, p.ProductURL, p.ProductDescription,
	}
}

func (c ProductCategory) Values() []any {
	return []any{c.CategoryID, c.CategoryName}
}

func (v ProductVariant) Values() []any {
	return []any{v.ProductID, v.Size, v.Color, v.StockQuantity}
}

func (t Transaction) Values() []any {
	return []any{
		t.TransactionID, t.CustomerID, t.ProductID, t.PurchaseDate,
		t.PurchaseAmountUSD, t.PaymentMethod, t.ShippingType,
		t.PromoCodeUsed, t.DiscountApplied,
	}
}

func (i Interaction) Values() []any {
	return []any{i.UserID, i.ProductID, i.InteractionType, i.Timestamp}
}

func (d Discount) Values() []any {
	return []any{
		d.TransactionID, d.PromoCodeUsed, d.DiscountApplied,
		d.CustomerID, d.ProductID, d.PurchaseDate,
	}
}
