// Package dbtest opens in-memory SQLite databases carrying the marketplace schema.
package dbtest

import (
	"io"
	"log"
	"testing"
	"time"

	"github.com/google/uuid"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/angelmondragon/bazaar-backend/pkg/db"
)

// Schema mirrors the goose migrations with SQLite types. Enums are plain text
// and uuid/array/jsonb columns are stored as text.
var Schema = []string{
	`CREATE TABLE users (
		id TEXT PRIMARY KEY,
		email TEXT NOT NULL,
		name TEXT NOT NULL DEFAULT '',
		role TEXT NOT NULL DEFAULT 'customer',
		created_at DATETIME,
		updated_at DATETIME
	)`,
	`CREATE TABLE sellers (
		id TEXT PRIMARY KEY,
		user_id TEXT NOT NULL UNIQUE,
		shop_name TEXT NOT NULL,
		owner_name TEXT NOT NULL,
		email TEXT NOT NULL,
		phone TEXT NOT NULL,
		address TEXT,
		description TEXT,
		logo_url TEXT,
		status TEXT NOT NULL DEFAULT 'pending',
		referral_code TEXT NOT NULL UNIQUE,
		referred_by TEXT,
		decided_at DATETIME,
		created_at DATETIME,
		updated_at DATETIME
	)`,
	`CREATE TABLE seller_commissions (
		id TEXT PRIMARY KEY,
		seller_id TEXT NOT NULL,
		referred_user_id TEXT NOT NULL,
		amount NUMERIC NOT NULL,
		status TEXT NOT NULL DEFAULT 'pending',
		created_at DATETIME,
		updated_at DATETIME
	)`,
	`CREATE TABLE seller_withdrawals (
		id TEXT PRIMARY KEY,
		seller_id TEXT NOT NULL,
		amount NUMERIC NOT NULL,
		method TEXT NOT NULL,
		account_number TEXT NOT NULL,
		status TEXT NOT NULL DEFAULT 'pending',
		decided_at DATETIME,
		created_at DATETIME,
		updated_at DATETIME
	)`,
	`CREATE TABLE products (
		id TEXT PRIMARY KEY,
		seller_id TEXT NOT NULL,
		name TEXT NOT NULL,
		description TEXT,
		price NUMERIC NOT NULL,
		discount NUMERIC NOT NULL DEFAULT 0,
		stock INTEGER NOT NULL DEFAULT 0 CHECK (stock >= 0),
		delivery_charge NUMERIC NOT NULL DEFAULT 0,
		status TEXT NOT NULL DEFAULT 'active',
		tags TEXT,
		images TEXT,
		reviews TEXT,
		created_at DATETIME,
		updated_at DATETIME
	)`,
	`CREATE TABLE orders (
		id TEXT PRIMARY KEY,
		customer_id TEXT,
		customer_name TEXT NOT NULL,
		customer_email TEXT NOT NULL,
		customer_phone TEXT,
		customer_address TEXT,
		customer_is_guest BOOLEAN NOT NULL DEFAULT 0,
		subtotal NUMERIC NOT NULL,
		total_delivery_charge NUMERIC NOT NULL DEFAULT 0,
		total NUMERIC NOT NULL,
		overall_status TEXT NOT NULL DEFAULT 'pending',
		created_at DATETIME,
		updated_at DATETIME
	)`,
	`CREATE TABLE order_line_items (
		id TEXT PRIMARY KEY,
		order_id TEXT NOT NULL REFERENCES orders(id) ON DELETE CASCADE,
		product_id TEXT NOT NULL,
		seller_id TEXT NOT NULL,
		quantity INTEGER NOT NULL CHECK (quantity >= 1),
		price NUMERIC NOT NULL,
		delivery_charge NUMERIC NOT NULL DEFAULT 0,
		status TEXT NOT NULL DEFAULT 'pending',
		created_at DATETIME,
		updated_at DATETIME
	)`,
}

// Open returns a fresh in-memory database with Schema applied. A single
// connection keeps SQLite transactions from deadlocking each other.
func Open(t *testing.T) *gorm.DB {
	t.Helper()

	conn, err := gorm.Open(sqlite.Open("file:bazaar_"+uuid.NewString()+"?mode=memory&cache=shared"), &gorm.Config{
		Logger:                 gormlogger.New(log.New(io.Discard, "", 0), gormlogger.Config{LogLevel: gormlogger.Silent}),
		SkipDefaultTransaction: true,
		NowFunc:                func() time.Time { return time.Now().UTC() },
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	sqlDB, err := conn.DB()
	if err != nil {
		t.Fatalf("sql db handle: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	for _, stmt := range Schema {
		if err := conn.Exec(stmt).Error; err != nil {
			t.Fatalf("apply schema: %v", err)
		}
	}
	return conn
}

// Client wraps Open in a db.Client so services can run transactions.
func Client(t *testing.T) (*db.Client, *gorm.DB) {
	t.Helper()
	conn := Open(t)
	return db.Wrap(conn), conn
}
