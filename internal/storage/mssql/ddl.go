package mssql

// schemaStatements holds the warehouse DDL in creation order, the SQL Server
// rendering of the reference schema. Differences from Postgres: OBJECT_ID
// guards instead of IF NOT EXISTS, no table partitioning, an IDENTITY column
// on interactions, no foreign keys (TRUNCATE TABLE refuses referenced
// tables) and views without ORDER BY, which T-SQL forbids in a view body.
var schemaStatements = []string{
	`IF OBJECT_ID(N'dbo.product_categories', N'U') IS NULL
CREATE TABLE dbo.product_categories (
  category_id   int NOT NULL PRIMARY KEY,
  category_name nvarchar(255) NOT NULL UNIQUE
)`,

	`IF OBJECT_ID(N'dbo.customers', N'U') IS NULL
CREATE TABLE dbo.customers (
  customer_id            int NOT NULL PRIMARY KEY,
  age                    int,
  gender                 nvarchar(32),
  location               nvarchar(255),
  review_rating          decimal(3,1),
  subscription_status    nvarchar(32),
  frequency_of_purchases nvarchar(64)
)`,

	`IF OBJECT_ID(N'dbo.products', N'U') IS NULL
CREATE TABLE dbo.products (
  product_id          nvarchar(64) NOT NULL PRIMARY KEY,
  product_name        nvarchar(512),
  brand_name          nvarchar(255),
  category            nvarchar(255),
  model_number        nvarchar(255),
  size                nvarchar(255),
  color               nvarchar(255),
  dimensions          nvarchar(255),
  shipping_weight     decimal(10,2) CHECK (shipping_weight >= 0),
  selling_price       decimal(10,2) CHECK (selling_price >= 0),
  stock               int CHECK (stock >= 0),
  quantity            int CHECK (quantity >= 0),
  product_url         nvarchar(max),
  product_description nvarchar(max)
)`,

	`IF OBJECT_ID(N'dbo.product_variants', N'U') IS NULL
CREATE TABLE dbo.product_variants (
  product_id     nvarchar(64) NOT NULL,
  size           nvarchar(128) NOT NULL,
  color          nvarchar(128) NOT NULL,
  stock_quantity int NOT NULL DEFAULT 0 CHECK (stock_quantity >= 0),
  PRIMARY KEY (product_id, size, color)
)`,

	`IF OBJECT_ID(N'dbo.transactions', N'U') IS NULL
CREATE TABLE dbo.transactions (
  transaction_id      bigint NOT NULL,
  customer_id         int NOT NULL,
  product_id          nvarchar(64) NOT NULL,
  purchase_date       datetime2 NOT NULL,
  purchase_amount_usd decimal(10,2) CHECK (purchase_amount_usd >= 0),
  payment_method      nvarchar(64),
  shipping_type       nvarchar(64),
  promo_code_used     nvarchar(64),
  discount_applied    decimal(5,2),
  PRIMARY KEY (transaction_id, customer_id, product_id, purchase_date)
)`,

	`IF OBJECT_ID(N'dbo.interactions', N'U') IS NULL
CREATE TABLE dbo.interactions (
  interaction_id   bigint IDENTITY(1,1) PRIMARY KEY,
  user_id          int NOT NULL,
  product_id       nvarchar(64) NOT NULL,
  interaction_type nvarchar(32),
  [timestamp]      datetime2 NOT NULL
)`,

	`IF OBJECT_ID(N'dbo.discounts', N'U') IS NULL
CREATE TABLE dbo.discounts (
  transaction_id   bigint NOT NULL,
  promo_code_used  nvarchar(64) NOT NULL,
  discount_applied decimal(5,2),
  customer_id      int NOT NULL,
  product_id       nvarchar(64) NOT NULL,
  purchase_date    datetime2 NOT NULL,
  PRIMARY KEY (transaction_id, promo_code_used)
)`,

	`IF NOT EXISTS (SELECT 1 FROM sys.indexes WHERE name = N'idx_transactions_customer_product' AND object_id = OBJECT_ID(N'dbo.transactions'))
CREATE INDEX idx_transactions_customer_product ON dbo.transactions (customer_id, product_id)`,

	`IF NOT EXISTS (SELECT 1 FROM sys.indexes WHERE name = N'idx_transactions_product_date' AND object_id = OBJECT_ID(N'dbo.transactions'))
CREATE INDEX idx_transactions_product_date ON dbo.transactions (product_id, purchase_date)`,

	`IF NOT EXISTS (SELECT 1 FROM sys.indexes WHERE name = N'idx_products_category' AND object_id = OBJECT_ID(N'dbo.products'))
CREATE INDEX idx_products_category ON dbo.products (category)`,

	`IF NOT EXISTS (SELECT 1 FROM sys.indexes WHERE name = N'idx_customers_age_gender' AND object_id = OBJECT_ID(N'dbo.customers'))
CREATE INDEX idx_customers_age_gender ON dbo.customers (age, gender)`,

	`IF NOT EXISTS (SELECT 1 FROM sys.indexes WHERE name = N'idx_interactions_type' AND object_id = OBJECT_ID(N'dbo.interactions'))
CREATE INDEX idx_interactions_type ON dbo.interactions (interaction_type)`,

	`CREATE OR ALTER VIEW dbo.top_selling_products AS
SELECT p.product_id,
       p.product_name,
       p.brand_name,
       p.category,
       COUNT(t.transaction_id) AS total_sales,
       SUM(t.purchase_amount_usd) AS total_revenue
FROM dbo.products p
JOIN dbo.transactions t ON t.product_id = p.product_id
GROUP BY p.product_id, p.product_name, p.brand_name, p.category`,

	`CREATE OR ALTER VIEW dbo.customer_sales_summary AS
SELECT c.customer_id,
       c.age,
       c.gender,
       c.location,
       c.subscription_status,
       COUNT(t.transaction_id) AS total_transactions,
       COALESCE(SUM(t.purchase_amount_usd), 0) AS total_spent,
       AVG(c.review_rating) AS avg_review_rating
FROM dbo.customers c
LEFT JOIN dbo.transactions t ON t.customer_id = c.customer_id
GROUP BY c.customer_id, c.age, c.gender, c.location, c.subscription_status`,
}
