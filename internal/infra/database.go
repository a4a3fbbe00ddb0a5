package infra

import (
	"fmt"

	"github.com/namnv1120/SEP490-FA25-G127-sub000/internal/model"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// NewDatabase establishes a GORM connection backed by pgx, migrates the schema
// and applies the idempotent SQL patches GORM cannot express.
func NewDatabase(dsn string) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, err
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	sqlDB.SetMaxOpenConns(25)
	sqlDB.SetMaxIdleConns(5)

	if err := RunMigrations(db); err != nil {
		return nil, err
	}
	return db, nil
}

// RunMigrations creates/updates all tables and applies schema patches.
// Also used by integration tests against a throwaway database.
func RunMigrations(db *gorm.DB) error {
	if err := db.AutoMigrate(
		&model.Supplier{},
		&model.Product{},
		&model.Inventory{},
		&model.StockTransaction{},
		&model.ProductPrice{},
		&model.Promotion{},
		&model.Account{},
		&model.AccountPermission{},
		&model.Customer{},
		&model.PurchaseOrder{},
		&model.PurchaseOrderDetail{},
		&model.Order{},
		&model.OrderDetail{},
		&model.Payment{},
		&model.Notification{},
	); err != nil {
		return fmt.Errorf("AutoMigrate: %w", err)
	}
	if err := applySchemaPatches(db); err != nil {
		return fmt.Errorf("schema patches: %w", err)
	}
	return nil
}

// applySchemaPatches runs idempotent statements that AutoMigrate cannot
// express. Each uses IF NOT EXISTS / ON CONFLICT DO NOTHING so re-running on
// an already-patched DB is safe.
func applySchemaPatches(db *gorm.DB) error {
	patches := []struct{ descr, sql string }{
		{"seed guest customer", fmt.Sprintf(`
INSERT INTO customers (id, code, name, loyalty_points, created_at, updated_at)
VALUES ('%s', 'GUEST', 'Guest', 0, NOW(), NOW())
ON CONFLICT (id) DO NOTHING`, model.GuestCustomerID)},
		// one row per (kind, day); NextOrderNumber upserts it inside the tx
		{"daily_counters", `
CREATE TABLE IF NOT EXISTS daily_counters (
    kind       varchar(32) NOT NULL,
    day        date        NOT NULL,
    last_value integer     NOT NULL,
    PRIMARY KEY (kind, day)
)`},
		// ledger reads are always "entries for product X, newest first"
		{"idx_stock_transactions_product_created", `
CREATE INDEX IF NOT EXISTS idx_stock_transactions_product_created
    ON stock_transactions (product_id, created_at DESC)`},
		// the expiry sweep only ever looks at active rows
		{"idx_promotions_active_end", `
CREATE INDEX IF NOT EXISTS idx_promotions_active_end
    ON promotions (end_date) WHERE active = true`},
		{"idx_purchase_orders_unsent", `
CREATE INDEX IF NOT EXISTS idx_purchase_orders_unsent
    ON purchase_orders (status) WHERE email_sent_at IS NULL`},
	}
	for _, p := range patches {
		if err := db.Exec(p.sql).Error; err != nil {
			return fmt.Errorf("patch %q: %w", p.descr, err)
		}
	}
	return nil
}
