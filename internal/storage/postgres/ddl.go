package postgres

// schemaStatements holds the warehouse DDL in creation order. Statements are
// idempotent (IF NOT EXISTS / OR REPLACE) and executed one at a time so a
// failure names the statement that broke.
//
// transactions is range-partitioned by purchase_date into 2023 quarters plus
// a default catch-all, and its primary key carries the full composite
// identity so discounts can reference it. products.category stays free text
// next to the normalized product_categories table; both are kept on purpose.
var schemaStatements = []string{
	`CREATE TABLE IF NOT EXISTS product_categories (
  category_id   integer PRIMARY KEY,
  category_name text NOT NULL UNIQUE
)`,

	`CREATE TABLE IF NOT EXISTS customers (
  customer_id            integer PRIMARY KEY,
  age                    integer,
  gender                 text,
  location               text,
  review_rating          numeric(3,1),
  subscription_status    text,
  frequency_of_purchases text
)`,

	`CREATE TABLE IF NOT EXISTS products (
  product_id          text PRIMARY KEY,
  product_name        text,
  brand_name          text,
  category            text,
  model_number        text,
  size                text,
  color               text,
  dimensions          text,
  shipping_weight     numeric(10,2) CHECK (shipping_weight >= 0),
  selling_price       numeric(10,2) CHECK (selling_price >= 0),
  stock               integer CHECK (stock >= 0),
  quantity            integer CHECK (quantity >= 0),
  product_url         text,
  product_description text
)`,

	`CREATE TABLE IF NOT EXISTS product_variants (
  product_id     text NOT NULL REFERENCES products (product_id),
  size           text NOT NULL,
  color          text NOT NULL,
  stock_quantity integer NOT NULL DEFAULT 0 CHECK (stock_quantity >= 0),
  PRIMARY KEY (product_id, size, color)
)`,

	`CREATE TABLE IF NOT EXISTS transactions (
  transaction_id      bigint NOT NULL,
  customer_id         integer NOT NULL REFERENCES customers (customer_id),
  product_id          text NOT NULL REFERENCES products (product_id),
  purchase_date       timestamptz NOT NULL,
  purchase_amount_usd numeric(10,2) CHECK (purchase_amount_usd >= 0),
  payment_method      text,
  shipping_type       text,
  promo_code_used     text,
  discount_applied    numeric(5,2),
  PRIMARY KEY (transaction_id, customer_id, product_id, purchase_date)
) PARTITION BY RANGE (purchase_date)`,

	`CREATE TABLE IF NOT EXISTS transactions_2023q1 PARTITION OF transactions
  FOR VALUES FROM ('2023-01-01') TO ('2023-04-01')`,

	`CREATE TABLE IF NOT EXISTS transactions_2023q2 PARTITION OF transactions
  FOR VALUES FROM ('2023-04-01') TO ('2023-07-01')`,

	`CREATE TABLE IF NOT EXISTS transactions_2023q3 PARTITION OF transactions
  FOR VALUES FROM ('2023-07-01') TO ('2023-10-01')`,

	`CREATE TABLE IF NOT EXISTS transactions_2023q4 PARTITION OF transactions
  FOR VALUES FROM ('2023-10-01') TO ('2024-01-01')`,

	`CREATE TABLE IF NOT EXISTS transactions_default PARTITION OF transactions DEFAULT`,

	`CREATE TABLE IF NOT EXISTS interactions (
  interaction_id   bigint GENERATED ALWAYS AS IDENTITY PRIMARY KEY,
  user_id          integer NOT NULL REFERENCES customers (customer_id),
  product_id       text NOT NULL REFERENCES products (product_id),
  interaction_type text,
  "timestamp"      timestamptz NOT NULL
)`,

	`CREATE TABLE IF NOT EXISTS discounts (
  transaction_id   bigint NOT NULL,
  promo_code_used  text NOT NULL,
  discount_applied numeric(5,2),
  customer_id      integer NOT NULL,
  product_id       text NOT NULL,
  purchase_date    timestamptz NOT NULL,
  PRIMARY KEY (transaction_id, promo_code_used),
  FOREIGN KEY (transaction_id, customer_id, product_id, purchase_date)
    REFERENCES transactions (transaction_id, customer_id, product_id, purchase_date)
)`,

	`CREATE INDEX IF NOT EXISTS idx_transactions_customer_product
  ON transactions (customer_id, product_id)`,

	`CREATE INDEX IF NOT EXISTS idx_transactions_product_date
  ON transactions (product_id, purchase_date)`,

	`CREATE INDEX IF NOT EXISTS idx_products_category ON products (category)`,

	`CREATE INDEX IF NOT EXISTS idx_customers_age_gender ON customers (age, gender)`,

	`CREATE INDEX IF NOT EXISTS idx_interactions_type ON interactions (interaction_type)`,

	`CREATE OR REPLACE VIEW top_selling_products AS
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

	`CREATE OR REPLACE VIEW customer_sales_summary AS
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
