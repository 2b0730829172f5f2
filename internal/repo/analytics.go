package repo

import (
	"context"
	"time"

	"storepulse/internal/analytics"
	"storepulse/pkg/models"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// ReportFilter is the caller-selected scope shared by every report
// query: optional shop set, inclusive date range on ordered_at and an
// optional free-text search (products report only).
type ReportFilter struct {
	ShopIDs []uuid.UUID `json:"shop_ids,omitempty"`
	From    time.Time   `json:"from"`
	To      time.Time   `json:"to"`
	Search  string      `json:"search,omitempty"`
}

// orderScope applies the shop and date filters on the orders table
// under the given alias. Every repository method starts from a fresh
// query and applies this scope independently, so mutating one sub-query
// never leaks into another.
func (f ReportFilter) orderScope(alias string) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		db = db.Where(alias + ".deleted_at IS NULL")
		if len(f.ShopIDs) > 0 {
			db = db.Where(alias+".shop_id IN ?", f.ShopIDs)
		}
		return db.Where(alias+".ordered_at BETWEEN ? AND ?", f.From, f.To)
	}
}

// shopScope is the shop filter alone, without the date bound. Used for
// the historical population behind new/returning classification.
func (f ReportFilter) shopScope(alias string) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		db = db.Where(alias + ".deleted_at IS NULL")
		if len(f.ShopIDs) > 0 {
			db = db.Where(alias+".shop_id IN ?", f.ShopIDs)
		}
		return db
	}
}

const nonBlankEmail = "orders.customer_email IS NOT NULL AND TRIM(orders.customer_email) <> ''"

// AnalyticsRepository runs the read-only grouped queries behind the
// reporting engine. It never writes.
type AnalyticsRepository struct {
	db *gorm.DB
}

// NewAnalyticsRepository creates a new analytics repository
func NewAnalyticsRepository(db *gorm.DB) *AnalyticsRepository {
	return &AnalyticsRepository{db: db}
}

// StatusScope composes a status predicate into repository queries
type StatusScope = func(*gorm.DB) *gorm.DB

// CurrencyTotalRow is one currency's slice of the order totals.
// TotalMissingBase is the raw-currency sum of orders whose precomputed
// base amount is absent; the composer converts it separately so the
// authoritative base amounts are never re-derived.
type CurrencyTotalRow struct {
	Currency         string          `gorm:"column:currency"`
	Orders           int64           `gorm:"column:orders"`
	Total            decimal.Decimal `gorm:"column:total"`
	TotalBase        decimal.Decimal `gorm:"column:total_base"`
	TotalMissingBase decimal.Decimal `gorm:"column:total_missing_base"`
}

// CurrencyTotals groups completed orders in scope by transaction currency
func (r *AnalyticsRepository) CurrencyTotals(ctx context.Context, f ReportFilter, completed StatusScope) ([]CurrencyTotalRow, error) {
	var rows []CurrencyTotalRow
	err := r.db.WithContext(ctx).Table("orders").
		Select(`orders.currency,
			COUNT(*) AS orders,
			COALESCE(SUM(orders.total_with_vat), 0) AS total,
			COALESCE(SUM(orders.total_with_vat_base), 0) AS total_base,
			COALESCE(SUM(orders.total_with_vat) FILTER (WHERE orders.total_with_vat_base IS NULL), 0) AS total_missing_base`).
		Scopes(f.orderScope("orders"), completed).
		Group("orders.currency").
		Find(&rows).Error
	return rows, err
}

// DailyTotalRow is one calendar day's order aggregate, the raw material
// the period bucketer folds into day/week/month/year series.
type DailyTotalRow struct {
	Day              time.Time       `gorm:"column:day"`
	Currency         string          `gorm:"column:currency"`
	Orders           int64           `gorm:"column:orders"`
	TotalBase        decimal.Decimal `gorm:"column:total_base"`
	TotalMissingBase decimal.Decimal `gorm:"column:total_missing_base"`
}

// DailyTotals groups completed orders in scope by calendar day and
// transaction currency. Rows are bounded by days x currencies in the
// range, not by order count. The precomputed base amount is
// authoritative; the raw sum of orders missing it is surfaced per
// currency so the series builder can convert the remainder.
func (r *AnalyticsRepository) DailyTotals(ctx context.Context, f ReportFilter, completed StatusScope) ([]DailyTotalRow, error) {
	var rows []DailyTotalRow
	err := r.db.WithContext(ctx).Table("orders").
		Select(`DATE_TRUNC('day', orders.ordered_at) AS day,
			orders.currency,
			COUNT(*) AS orders,
			COALESCE(SUM(orders.total_with_vat_base), 0) AS total_base,
			COALESCE(SUM(orders.total_with_vat) FILTER (WHERE orders.total_with_vat_base IS NULL), 0) AS total_missing_base`).
		Scopes(f.orderScope("orders"), completed).
		Group("DATE_TRUNC('day', orders.ordered_at), orders.currency").
		Order("day").
		Find(&rows).Error
	return rows, err
}

// CustomerDayRow is one (calendar day, customer) pair. Distinct
// customers per week/month/year bucket cannot be derived from per-day
// distinct counts, so the series builder folds these pairs itself.
type CustomerDayRow struct {
	Day   time.Time `gorm:"column:day"`
	Email string    `gorm:"column:email"`
}

// CustomerDays returns the distinct (day, normalized email) pairs of
// completed orders in scope.
func (r *AnalyticsRepository) CustomerDays(ctx context.Context, f ReportFilter, completed StatusScope) ([]CustomerDayRow, error) {
	var rows []CustomerDayRow
	err := r.db.WithContext(ctx).Table("orders").
		Select(`DATE_TRUNC('day', orders.ordered_at) AS day,
			LOWER(TRIM(orders.customer_email)) AS email`).
		Scopes(f.orderScope("orders"), completed).
		Where(nonBlankEmail).
		Group("DATE_TRUNC('day', orders.ordered_at), LOWER(TRIM(orders.customer_email))").
		Find(&rows).Error
	return rows, err
}

// DailyUnitsRow carries units sold per calendar day
type DailyUnitsRow struct {
	Day   time.Time       `gorm:"column:day"`
	Units decimal.Decimal `gorm:"column:units"`
}

// DailyUnits sums line quantities of completed orders per calendar day
func (r *AnalyticsRepository) DailyUnits(ctx context.Context, f ReportFilter, completed StatusScope) ([]DailyUnitsRow, error) {
	var rows []DailyUnitsRow
	err := r.db.WithContext(ctx).Table("order_items").
		Select(`DATE_TRUNC('day', orders.ordered_at) AS day,
			COALESCE(SUM(order_items.amount), 0) AS units`).
		Joins("JOIN orders ON orders.id = order_items.order_id").
		Where("order_items.deleted_at IS NULL").
		Scopes(f.orderScope("orders"), completed).
		Group("DATE_TRUNC('day', orders.ordered_at)").
		Order("day").
		Find(&rows).Error
	return rows, err
}

type customerPeriodRow struct {
	Email        string          `gorm:"column:email"`
	Orders       int64           `gorm:"column:orders"`
	RevenueBase  decimal.Decimal `gorm:"column:revenue_base"`
	FirstOrderAt time.Time       `gorm:"column:first_order_at"`
}

// CustomerPeriodStats aggregates completed orders in scope per
// normalized customer email. Revenue prefers the precomputed base
// amount and falls back to the raw amount when the base is absent.
// Orders with blank email are excluded here and counted by
// OrdersWithoutEmail.
func (r *AnalyticsRepository) CustomerPeriodStats(ctx context.Context, f ReportFilter, completed StatusScope) ([]analytics.CustomerPeriodStat, error) {
	var rows []customerPeriodRow
	err := r.db.WithContext(ctx).Table("orders").
		Select(`LOWER(TRIM(orders.customer_email)) AS email,
			COUNT(*) AS orders,
			COALESCE(SUM(COALESCE(orders.total_with_vat_base, orders.total_with_vat)), 0) AS revenue_base,
			MIN(orders.ordered_at) AS first_order_at`).
		Scopes(f.orderScope("orders"), completed).
		Where(nonBlankEmail).
		Group("LOWER(TRIM(orders.customer_email))").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	out := make([]analytics.CustomerPeriodStat, 0, len(rows))
	for _, row := range rows {
		out = append(out, analytics.CustomerPeriodStat{
			Email:        row.Email,
			Orders:       row.Orders,
			RevenueBase:  row.RevenueBase,
			FirstOrderAt: row.FirstOrderAt,
		})
	}
	return out, nil
}

type customerFirstOrderRow struct {
	Email        string    `gorm:"column:email"`
	FirstOrderAt time.Time `gorm:"column:first_order_at"`
}

// CustomerFirstOrders returns each customer's earliest completed order
// over all time for the same shop filter, unbounded by the date range.
func (r *AnalyticsRepository) CustomerFirstOrders(ctx context.Context, f ReportFilter, completed StatusScope) ([]analytics.CustomerFirstOrder, error) {
	var rows []customerFirstOrderRow
	err := r.db.WithContext(ctx).Table("orders").
		Select(`LOWER(TRIM(orders.customer_email)) AS email,
			MIN(orders.ordered_at) AS first_order_at`).
		Scopes(f.shopScope("orders"), completed).
		Where(nonBlankEmail).
		Where("orders.ordered_at IS NOT NULL").
		Group("LOWER(TRIM(orders.customer_email))").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	out := make([]analytics.CustomerFirstOrder, 0, len(rows))
	for _, row := range rows {
		out = append(out, analytics.CustomerFirstOrder{Email: row.Email, FirstOrderAt: row.FirstOrderAt})
	}
	return out, nil
}

// OrdersWithoutEmail counts completed orders in scope with no usable
// customer email. Reported separately, never merged into segmentation.
func (r *AnalyticsRepository) OrdersWithoutEmail(ctx context.Context, f ReportFilter, completed StatusScope) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Table("orders").
		Scopes(f.orderScope("orders"), completed).
		Where("orders.customer_email IS NULL OR TRIM(orders.customer_email) = ''").
		Count(&count).Error
	return count, err
}

// UnitsSold sums line quantities of completed orders in scope
func (r *AnalyticsRepository) UnitsSold(ctx context.Context, f ReportFilter, completed StatusScope) (decimal.Decimal, error) {
	var units decimal.Decimal
	err := r.db.WithContext(ctx).Table("order_items").
		Select("COALESCE(SUM(order_items.amount), 0)").
		Joins("JOIN orders ON orders.id = order_items.order_id").
		Where("order_items.deleted_at IS NULL").
		Scopes(f.orderScope("orders"), completed).
		Scan(&units).Error
	return units, err
}

// CatalogCounts returns active product and variant counts for the shop
// filter, independent of the date range.
func (r *AnalyticsRepository) CatalogCounts(ctx context.Context, shopIDs []uuid.UUID) (products int64, variants int64, err error) {
	productQuery := r.db.WithContext(ctx).Model(&models.Product{}).Where("is_active = ?", true)
	if len(shopIDs) > 0 {
		productQuery = productQuery.Where("shop_id IN ?", shopIDs)
	}
	if err = productQuery.Count(&products).Error; err != nil {
		return 0, 0, err
	}

	variantQuery := r.db.WithContext(ctx).Model(&models.ProductVariant{}).
		Joins("JOIN products ON products.id = product_variants.product_id AND products.deleted_at IS NULL")
	if len(shopIDs) > 0 {
		variantQuery = variantQuery.Where("products.shop_id IN ?", shopIDs)
	}
	err = variantQuery.Count(&variants).Error
	return products, variants, err
}

// IterateOrders streams completed orders in scope to fn in fixed-size
// batches, bounding peak memory on large populations. Iteration stops
// on the first fn error or when the request context is cancelled.
func (r *AnalyticsRepository) IterateOrders(ctx context.Context, f ReportFilter, completed StatusScope, batchSize int, fn func(orders []models.Order) error) error {
	if batchSize <= 0 {
		batchSize = 500
	}
	var batch []models.Order
	return r.db.WithContext(ctx).Model(&models.Order{}).
		Scopes(f.orderScope("orders"), completed).
		FindInBatches(&batch, batchSize, func(tx *gorm.DB, _ int) error {
			return fn(batch)
		}).Error
}
