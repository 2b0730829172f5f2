package repo

import (
	"context"

	"storepulse/internal/analytics"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// The three product aggregates below must share one base filtered
// query: the same joins, the same order scope, the same search
// predicate. The summary defines the canonical key set the merge step
// folds revenue and repeat rows into, and that only holds while the
// filters stay identical.

// itemBaseScope joins order items to their parent order and,
// optionally, the catalog product/variant, then applies the report
// filter and the free-text search across name/code/brand fields.
func (f ReportFilter) itemBaseScope(completed StatusScope) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		db = db.
			Joins("JOIN orders ON orders.id = order_items.order_id").
			Joins("LEFT JOIN products ON products.id = order_items.product_id AND products.deleted_at IS NULL").
			Joins("LEFT JOIN product_variants ON product_variants.product_id = order_items.product_id AND product_variants.code = order_items.variant_code AND product_variants.deleted_at IS NULL").
			Where("order_items.deleted_at IS NULL").
			Scopes(f.orderScope("orders"), completed)
		if f.Search != "" {
			pattern := "%" + f.Search + "%"
			db = db.Where(
				"order_items.name ILIKE ? OR order_items.variant_code ILIKE ? OR products.name ILIKE ? OR products.brand ILIKE ? OR COALESCE(product_variants.ean, products.ean) ILIKE ?",
				pattern, pattern, pattern, pattern, pattern,
			)
		}
		return db
	}
}

const productKeyColumns = `COALESCE(order_items.product_id::text, '') AS product_id,
	order_items.variant_code,
	order_items.name`

const productKeyGroup = "COALESCE(order_items.product_id::text, ''), order_items.variant_code, order_items.name"

type productSummaryRow struct {
	ProductID       string          `gorm:"column:product_id"`
	VariantCode     string          `gorm:"column:variant_code"`
	Name            string          `gorm:"column:name"`
	Units           decimal.Decimal `gorm:"column:units"`
	Orders          int64           `gorm:"column:orders"`
	UniqueCustomers int64           `gorm:"column:unique_customers"`
	DisplayName     string          `gorm:"column:display_name"`
	Brand           string          `gorm:"column:brand"`
	EAN             string          `gorm:"column:ean"`
}

// ProductSummary computes units sold, distinct order and distinct
// customer counts per composite key, with display fields resolved by
// MAX so the first non-null value wins across duplicate rows.
func (r *AnalyticsRepository) ProductSummary(ctx context.Context, f ReportFilter, completed StatusScope) ([]analytics.ProductSummaryRow, error) {
	var rows []productSummaryRow
	err := r.db.WithContext(ctx).Table("order_items").
		Select(productKeyColumns+`,
			COALESCE(SUM(order_items.amount), 0) AS units,
			COUNT(DISTINCT orders.id) AS orders,
			COUNT(DISTINCT LOWER(TRIM(orders.customer_email))) FILTER (WHERE `+nonBlankEmail+`) AS unique_customers,
			COALESCE(MAX(COALESCE(product_variants.name, products.name)), '') AS display_name,
			COALESCE(MAX(products.brand), '') AS brand,
			COALESCE(MAX(COALESCE(product_variants.ean, products.ean)), '') AS ean`).
		Scopes(f.itemBaseScope(completed)).
		Group(productKeyGroup).
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	out := make([]analytics.ProductSummaryRow, 0, len(rows))
	for _, row := range rows {
		out = append(out, analytics.ProductSummaryRow{
			Key:             analytics.ProductKey{ProductID: row.ProductID, VariantCode: row.VariantCode, Name: row.Name},
			Units:           row.Units,
			Orders:          row.Orders,
			UniqueCustomers: row.UniqueCustomers,
			DisplayName:     row.DisplayName,
			Brand:           row.Brand,
			EAN:             row.EAN,
		})
	}
	return out, nil
}

type productRevenueRow struct {
	ProductID   string          `gorm:"column:product_id"`
	VariantCode string          `gorm:"column:variant_code"`
	Name        string          `gorm:"column:name"`
	Currency    string          `gorm:"column:currency"`
	Revenue     decimal.Decimal `gorm:"column:revenue"`
}

// ProductRevenue sums line revenue per (composite key, currency)
func (r *AnalyticsRepository) ProductRevenue(ctx context.Context, f ReportFilter, completed StatusScope) ([]analytics.ProductRevenueRow, error) {
	var rows []productRevenueRow
	err := r.db.WithContext(ctx).Table("order_items").
		Select(productKeyColumns+`,
			orders.currency,
			COALESCE(SUM(order_items.with_vat), 0) AS revenue`).
		Scopes(f.itemBaseScope(completed)).
		Group(productKeyGroup + ", orders.currency").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	out := make([]analytics.ProductRevenueRow, 0, len(rows))
	for _, row := range rows {
		out = append(out, analytics.ProductRevenueRow{
			Key:      analytics.ProductKey{ProductID: row.ProductID, VariantCode: row.VariantCode, Name: row.Name},
			Currency: row.Currency,
			Revenue:  row.Revenue,
		})
	}
	return out, nil
}

type productRepeatRow struct {
	ProductID       string `gorm:"column:product_id"`
	VariantCode     string `gorm:"column:variant_code"`
	Name            string `gorm:"column:name"`
	RepeatCustomers int64  `gorm:"column:repeat_customers"`
}

// ProductRepeat counts, per composite key, the distinct customers who
// placed more than one order containing that key.
func (r *AnalyticsRepository) ProductRepeat(ctx context.Context, f ReportFilter, completed StatusScope) ([]analytics.ProductRepeatRow, error) {
	buyers := r.db.Table("order_items").
		Select(productKeyColumns+`,
			LOWER(TRIM(orders.customer_email)) AS email,
			COUNT(DISTINCT orders.id) AS order_count`).
		Scopes(f.itemBaseScope(completed)).
		Where(nonBlankEmail).
		Group(productKeyGroup + ", LOWER(TRIM(orders.customer_email))").
		Having("COUNT(DISTINCT orders.id) > 1")

	var rows []productRepeatRow
	err := r.db.WithContext(ctx).Table("(?) AS buyers", buyers).
		Select("buyers.product_id, buyers.variant_code, buyers.name, COUNT(*) AS repeat_customers").
		Group("buyers.product_id, buyers.variant_code, buyers.name").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	out := make([]analytics.ProductRepeatRow, 0, len(rows))
	for _, row := range rows {
		out = append(out, analytics.ProductRepeatRow{
			Key:             analytics.ProductKey{ProductID: row.ProductID, VariantCode: row.VariantCode, Name: row.Name},
			RepeatCustomers: row.RepeatCustomers,
		})
	}
	return out, nil
}
