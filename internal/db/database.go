package db

import (
	"fmt"
	"log"
	"os"

	"storepulse/pkg/models"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// NewDatabase creates a new database connection
func NewDatabase() (*gorm.DB, error) {
	dsn := fmt.Sprintf(
		"host=%s user=%s password=%s dbname=%s port=%s sslmode=%s TimeZone=%s",
		os.Getenv("DB_HOST"),
		os.Getenv("DB_USER"),
		os.Getenv("DB_PASSWORD"),
		os.Getenv("DB_NAME"),
		os.Getenv("DB_PORT"),
		os.Getenv("DB_SSLMODE"),
		os.Getenv("DB_TIMEZONE"),
	)

	config := &gorm.Config{
		Logger: logger.Default.LogMode(logger.Error),
	}

	db, err := gorm.Open(postgres.Open(dsn), config)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	return db, nil
}

// AutoMigrate runs database migrations using GORM
func AutoMigrate(db *gorm.DB) error {
	log.Println("Running GORM AutoMigrate...")

	if err := db.Exec(`CREATE EXTENSION IF NOT EXISTS "uuid-ossp"`).Error; err != nil {
		log.Printf("Warning: Could not create uuid-ossp extension: %v", err)
	}

	if err := db.AutoMigrate(models.GetAllModels()...); err != nil {
		return fmt.Errorf("failed to run GORM AutoMigrate: %w", err)
	}

	if err := createCustomIndexes(db); err != nil {
		log.Printf("Warning: Failed to create some custom indexes: %v", err)
	}

	log.Println("GORM AutoMigrate completed successfully")
	return nil
}

// createCustomIndexes creates indexes the reporting queries depend on
// that GORM does not derive from the model tags.
func createCustomIndexes(db *gorm.DB) error {
	indexes := []string{
		// Report scope: shop + ordered_at range scans
		`CREATE INDEX IF NOT EXISTS idx_orders_shop_ordered_at ON orders (shop_id, ordered_at) WHERE deleted_at IS NULL`,

		// Customer identity grouping on the normalized email
		`CREATE INDEX IF NOT EXISTS idx_orders_customer_email_norm ON orders (LOWER(TRIM(customer_email))) WHERE customer_email IS NOT NULL`,

		// Composite product identity grouping on order items
		`CREATE INDEX IF NOT EXISTS idx_order_items_identity ON order_items (product_id, variant_code, name) WHERE deleted_at IS NULL`,

		// Status classification filter
		`CREATE INDEX IF NOT EXISTS idx_orders_status_norm ON orders (LOWER(TRIM(status))) WHERE deleted_at IS NULL`,
	}

	for _, idx := range indexes {
		if err := db.Exec(idx).Error; err != nil {
			log.Printf("Warning: Failed to create index: %s - %v", idx, err)
		}
	}

	return nil
}

// SeedCurrencyRates inserts a default rate table when none exists, so a
// fresh install converts the common European currencies out of the box.
func SeedCurrencyRates(db *gorm.DB) error {
	var count int64
	if err := db.Model(&models.CurrencyRate{}).Count(&count).Error; err != nil {
		return fmt.Errorf("failed to check currency rates: %w", err)
	}
	if count > 0 {
		return nil
	}

	log.Println("Seeding default currency rates...")
	return db.Exec(`INSERT INTO currency_rates (id, code, rate, created_at, updated_at) VALUES
		(uuid_generate_v4(), 'EUR', 25.0, NOW(), NOW()),
		(uuid_generate_v4(), 'USD', 23.0, NOW(), NOW()),
		(uuid_generate_v4(), 'GBP', 29.0, NOW(), NOW()),
		(uuid_generate_v4(), 'PLN', 5.8, NOW(), NOW()),
		(uuid_generate_v4(), 'HUF', 0.06, NOW(), NOW())`).Error
}

// RunMigrations is the main migration function called from main.go
func RunMigrations(db *gorm.DB) error {
	log.Println("Starting database migrations...")

	if err := AutoMigrate(db); err != nil {
		return fmt.Errorf("AutoMigrate failed: %w", err)
	}

	if err := SeedCurrencyRates(db); err != nil {
		return fmt.Errorf("currency rate seeding failed: %w", err)
	}

	log.Println("All migrations completed successfully")
	return nil
}
