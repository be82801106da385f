package mysql

// schemaStatements holds the warehouse DDL in creation order, the MySQL
// rendering of the reference schema. MySQL has no CREATE INDEX IF NOT
// EXISTS, so every index is declared inline in its table definition, which
// CREATE TABLE IF NOT EXISTS keeps idempotent. Foreign keys carry ON DELETE
// CASCADE because InnoDB forbids TRUNCATE on referenced tables and Replace
// clears parents with DELETE.
var schemaStatements = []string{
	`CREATE TABLE IF NOT EXISTS product_categories (
  category_id   INT NOT NULL,
  category_name VARCHAR(255) NOT NULL UNIQUE,
  PRIMARY KEY (category_id)
) ENGINE=InnoDB`,

	`CREATE TABLE IF NOT EXISTS customers (
  customer_id            INT NOT NULL,
  age                    INT NULL,
  gender                 VARCHAR(64) NULL,
  location               VARCHAR(255) NULL,
  review_rating          DECIMAL(3,1) NULL,
  subscription_status    VARCHAR(64) NULL,
  frequency_of_purchases VARCHAR(64) NULL,
  PRIMARY KEY (customer_id),
  INDEX idx_customers_age_gender (age, gender)
) ENGINE=InnoDB`,

	`CREATE TABLE IF NOT EXISTS products (
  product_id          VARCHAR(64) NOT NULL,
  product_name        VARCHAR(512) NULL,
  brand_name          VARCHAR(255) NULL,
  category            VARCHAR(255) NULL,
  model_number        VARCHAR(128) NULL,
  size                VARCHAR(128) NULL,
  color               VARCHAR(128) NULL,
  dimensions          VARCHAR(255) NULL,
  shipping_weight     DECIMAL(10,2) NULL CHECK (shipping_weight >= 0),
  selling_price       DECIMAL(10,2) NULL CHECK (selling_price >= 0),
  stock               INT NULL CHECK (stock >= 0),
  quantity            INT NULL CHECK (quantity >= 0),
  product_url         TEXT NULL,
  product_description TEXT NULL,
  PRIMARY KEY (product_id),
  INDEX idx_products_category (category)
) ENGINE=InnoDB`,

	`CREATE TABLE IF NOT EXISTS product_variants (
  product_id     VARCHAR(64) NOT NULL,
  size           VARCHAR(128) NOT NULL,
  color          VARCHAR(128) NOT NULL,
  stock_quantity INT NOT NULL DEFAULT 0 CHECK (stock_quantity >= 0),
  PRIMARY KEY (product_id, size, color),
  FOREIGN KEY (product_id) REFERENCES products (product_id) ON DELETE CASCADE
) ENGINE=InnoDB`,

	`CREATE TABLE IF NOT EXISTS transactions (
  transaction_id      INT NOT NULL,
  customer_id         INT NOT NULL,
  product_id          VARCHAR(64) NOT NULL,
  purchase_date       DATETIME NOT NULL,
  purchase_amount_usd DECIMAL(10,2) NULL CHECK (purchase_amount_usd >= 0),
  payment_method      VARCHAR(64) NULL,
  shipping_type       VARCHAR(64) NULL,
  promo_code_used     VARCHAR(64) NULL,
  discount_applied    DECIMAL(10,2) NULL,
  PRIMARY KEY (transaction_id, customer_id, product_id, purchase_date),
  INDEX idx_transactions_customer_product (customer_id, product_id),
  INDEX idx_transactions_product_date (product_id, purchase_date),
  FOREIGN KEY (customer_id) REFERENCES customers (customer_id) ON DELETE CASCADE,
  FOREIGN KEY (product_id) REFERENCES products (product_id) ON DELETE CASCADE
) ENGINE=InnoDB`,

	`CREATE TABLE IF NOT EXISTS interactions (
  interaction_id   BIGINT NOT NULL AUTO_INCREMENT,
  user_id          INT NOT NULL,
  product_id       VARCHAR(64) NOT NULL,
  interaction_type VARCHAR(64) NULL,
  ` + "`timestamp`" + `      DATETIME NOT NULL,
  PRIMARY KEY (interaction_id),
  INDEX idx_interactions_type (interaction_type),
  FOREIGN KEY (user_id) REFERENCES customers (customer_id) ON DELETE CASCADE,
  FOREIGN KEY (product_id) REFERENCES products (product_id) ON DELETE CASCADE
) ENGINE=InnoDB`,

	`CREATE TABLE IF NOT EXISTS discounts (
  transaction_id   INT NOT NULL,
  promo_code_used  VARCHAR(64) NOT NULL,
  discount_applied DECIMAL(10,2) NULL,
  customer_id      INT NOT NULL,
  product_id       VARCHAR(64) NOT NULL,
  purchase_date    DATETIME NOT NULL,
  PRIMARY KEY (transaction_id, promo_code_used),
  FOREIGN KEY (transaction_id, customer_id, product_id, purchase_date)
    REFERENCES transactions (transaction_id, customer_id, product_id, purchase_date)
    ON DELETE CASCADE
) ENGINE=InnoDB`,

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
