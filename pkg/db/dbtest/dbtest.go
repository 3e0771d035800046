// Package dbtest opens in-memory SQLite databases for repository and
// service tests. The gorm model tags carry Postgres-only defaults
// (gen_random_uuid) that SQLite cannot parse, so the schema is created from
// hand-written DDL mirroring pkg/migrate/migrations.
package dbtest

import (
	"testing"

	"github.com/google/uuid"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

var schema = []string{
	`CREATE TABLE products (
  id TEXT PRIMARY KEY,
  name TEXT NOT NULL,
  description TEXT,
  image_id TEXT,
  is_active INTEGER NOT NULL DEFAULT 1,
  created_at DATETIME,
  updated_at DATETIME
)`,
	`CREATE TABLE product_variants (
  product_id TEXT NOT NULL,
  name TEXT NOT NULL,
  price NUMERIC NOT NULL,
  stock INTEGER NOT NULL DEFAULT 0 CHECK (stock >= 0),
  updated_at DATETIME,
  PRIMARY KEY (product_id, name)
)`,
	`CREATE TABLE cart_items (
  user_id TEXT NOT NULL,
  product_id TEXT NOT NULL,
  variant_name TEXT NOT NULL,
  name TEXT NOT NULL,
  qty INTEGER NOT NULL CHECK (qty >= 1),
  unit_price NUMERIC NOT NULL,
  image_id TEXT,
  created_at DATETIME,
  updated_at DATETIME,
  PRIMARY KEY (user_id, product_id, variant_name)
)`,
	`CREATE TABLE orders (
  id TEXT PRIMARY KEY,
  user_id TEXT NOT NULL,
  status TEXT NOT NULL DEFAULT 'awaiting_confirmation',
  item_count INTEGER NOT NULL,
  total NUMERIC NOT NULL,
  payment_reference TEXT NOT NULL,
  source TEXT NOT NULL,
  source_id TEXT,
  created_at DATETIME,
  updated_at DATETIME
)`,
	`CREATE UNIQUE INDEX uq_orders_payment_reference ON orders (payment_reference)`,
	`CREATE INDEX idx_orders_user_id ON orders (user_id)`,
	`CREATE TABLE order_items (
  id TEXT PRIMARY KEY DEFAULT (lower(hex(randomblob(16)))),
  order_id TEXT NOT NULL,
  product_id TEXT NOT NULL,
  name TEXT NOT NULL,
  variant_name TEXT NOT NULL,
  qty INTEGER NOT NULL,
  price NUMERIC NOT NULL,
  image_id TEXT
)`,
	`CREATE TABLE quote_requests (
  id TEXT PRIMARY KEY,
  user_id TEXT NOT NULL,
  status TEXT NOT NULL DEFAULT 'pending_review',
  items TEXT NOT NULL,
  shipping_cost NUMERIC NOT NULL DEFAULT 0,
  created_at DATETIME,
  updated_at DATETIME
)`,
	`CREATE INDEX idx_quote_requests_user_id ON quote_requests (user_id)`,
	`CREATE TABLE ledger_transactions (
  id TEXT PRIMARY KEY DEFAULT (lower(hex(randomblob(16)))),
  occurred_on DATE NOT NULL,
  description TEXT NOT NULL,
  category TEXT NOT NULL,
  type TEXT NOT NULL,
  amount NUMERIC NOT NULL,
  order_id TEXT,
  created_at DATETIME
)`,
	`CREATE TABLE notifications (
  id TEXT PRIMARY KEY DEFAULT (lower(hex(randomblob(16)))),
  recipient TEXT NOT NULL,
  recipient_id TEXT NOT NULL DEFAULT '',
  title TEXT NOT NULL,
  description TEXT NOT NULL,
  href TEXT,
  icon TEXT,
  read_at DATETIME,
  created_at DATETIME DEFAULT CURRENT_TIMESTAMP
)`,
	`CREATE INDEX idx_notifications_recipient ON notifications (recipient, recipient_id)`,
}

// Open returns a fresh in-memory database with the full schema applied. The
// prefix keeps shared-cache DSNs distinct between packages.
func Open(t *testing.T, prefix string) *gorm.DB {
	t.Helper()

	dsn := "file:" + prefix + "_" + uuid.NewString() + "?mode=memory&cache=shared"
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	for _, stmt := range schema {
		if err := db.Exec(stmt).Error; err != nil {
			t.Fatalf("create schema: %v", err)
		}
	}
	return db
}
