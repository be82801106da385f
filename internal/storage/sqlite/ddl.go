package sqlite

// schemaStatements holds the warehouse DDL in creation order, the SQLite
// rendering of the reference schema. Differences from Postgres: no table
// partitioning, INTEGER PRIMARY KEY rowid aliases instead of identity
// columns, and ON DELETE CASCADE on every foreign key because SQLite has no
// cascading truncate.
var schemaStatements = []string{
	`CREATE TABLE IF NOT EXISTS product_categories (
  category_id   INTEGER PRIMARY KEY,
  category_name TEXT NOT NULL UNIQUE
)`,

	`CREATE TABLE IF NOT EXISTS customers (
  customer_id            INTEGER PRIMARY KEY,
  age                    INTEGER,
  gender                 TEXT,
  location               TEXT,
  review_rating          REAL,
  subscription_status    TEXT,
  frequency_of_purchases TEXT
)`,

	`CREATE TABLE IF NOT EXISTS products (
  product_id          TEXT PRIMARY KEY,
  product_name        TEXT,
  brand_name          TEXT,
  category            TEXT,
  model_number        TEXT,
  size                TEXT,
  color               TEXT,
  dimensions          TEXT,
  shipping_weight     REAL CHECK (shipping_weight >= 0),
  selling_price       REAL CHECK (selling_price >= 0),
  stock               INTEGER CHECK (stock >= 0),
  quantity            INTEGER CHECK (quantity >= 0),
  product_url         TEXT,
  product_description TEXT
)`,

	`CREATE TABLE IF NOT EXISTS product_variants (
  product_id     TEXT NOT NULL REFERENCES products (product_id) ON DELETE CASCADE,
  size           TEXT NOT NULL,
  color          TEXT NOT NULL,
  stock_quantity INTEGER NOT NULL DEFAULT 0 CHECK (stock_quantity >= 0),
  PRIMARY KEY (product_id, size, color)
)`,

	`CREATE TABLE IF NOT EXISTS transactions (
  transaction_id      INTEGER NOT NULL,
  customer_id         INTEGER NOT NULL REFERENCES customers (customer_id) ON DELETE CASCADE,
  product_id          TEXT NOT NULL REFERENCES products (product_id) ON DELETE CASCADE,
  purchase_date       TIMESTAMP NOT NULL,
  purchase_amount_usd REAL CHECK (purchase_amount_usd >= 0),
  payment_method      TEXT,
  shipping_type       TEXT,
  promo_code_used     TEXT,
  discount_applied    REAL,
  PRIMARY KEY (transaction_id, customer_id, product_id, purchase_date)
)`,

	`CREATE TABLE IF NOT EXISTS interactions (
  interaction_id   INTEGER PRIMARY KEY,
  user_id          INTEGER NOT NULL REFERENCES customers (customer_id) ON DELETE CASCADE,
  product_id       TEXT NOT NULL REFERENCES products (product_id) ON DELETE CASCADE,
  interaction_type TEXT,
  "timestamp"      TIMESTAMP NOT NULL
)`,

	`CREATE TABLE IF NOT EXISTS discounts (
  transaction_id   INTEGER NOT NULL,
  promo_code_used  TEXT NOT NULL,
  discount_applied REAL,
  customer_id      INTEGER NOT NULL,
  product_id       TEXT NOT NULL,
  purchase_date    TIMESTAMP NOT NULL,
  PRIMARY KEY (transaction_id, promo_code_used),
  FOREIGN KEY (transaction_id, customer_id, product_id, purchase_date)
    REFERENCES transactions (transaction_id, customer_id, product_id, purchase_date)
    ON DELETE CASCADE
)`,

	`CREATE INDEX IF NOT EXISTS idx_transactions_customer_product
  ON transactions (customer_id, product_id)`,

	`CREATE INDEX IF NOT EXISTS idx_transactions_product_date
  ON transactions (product_id, purchase_date)`,

	`CREATE INDEX IF NOT EXISTS idx_products_category ON products (category)`,

	`CREATE INDEX IF NOT EXISTS idx_customers_age_gender ON customers (age, gender)`,

	`CREATE INDEX IF NOT EXISTS idx_interactions_type ON interactions (interaction_type)`,

	`CREATE VIEW IF NOT EXISTS top_selling_products AS
SELECT p.product_id,
       p.product_name,
       p.brand_name,
       p.category,
       COUNT(t.transaction_id) AS total_sales,
       SUM(t.purchase_amount_usd) AS total_revenue
FROM products p
JOIN transactions t ON t.product_id = p.product_id
GROUP BY p.product_id, p.product_name, p.brand_name, p.category
ORDER BY total_sales DESC`,

	`CREATE VIEW IF NOT EXISTS customer_sales_summary AS
SELECT c.customer_id,
       c.age,
       c.gender,
       c.location,
       c.subscription_status,
       COUNT(t.transaction_id) AS total_transactions,
       COALESCE(SUM(t.purchase_amount_usd), 0) AS total_spent,
       AVG(c.review_rating) AS avg_review_rating
FROM customers c
LEFT JOIN transactions t ON t.customer_id = c.customer_id
GROUP BY c.customer_id, c.age, c.gender, c.location, c.subscription_status
ORDER BY c.customer_id`,
}
