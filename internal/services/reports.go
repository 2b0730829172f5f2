package services

import (
	"context"
	"os"
	"sort"
	"strconv"
	"time"

	"storepulse/internal/analytics"
	"storepulse/internal/repo"
	"storepulse/pkg/models"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Report limits and defaults
const (
	MaxReportLimit     = 500
	DefaultReportLimit = 50
	defaultBatchSize   = 500
)

// ClampLimit forces a caller-supplied limit into [1, MaxReportLimit]
func ClampLimit(limit int) int {
	if limit < 1 {
		return DefaultReportLimit
	}
	if limit > MaxReportLimit {
		return MaxReportLimit
	}
	return limit
}

// ReportService orchestrates the aggregation engine: it fans the report
// filter out to the repository's grouped queries and merges the partial
// results. It holds no mutable state; concurrent calls are independent.
type ReportService struct {
	repo      *repo.AnalyticsRepository
	converter *analytics.Converter
	policy    *analytics.StatusPolicy
	batchSize int
}

// NewReportService creates a new report service. BATCH_SIZE tunes the
// chunked order scans used by breakdowns (default 500).
func NewReportService(analyticsRepo *repo.AnalyticsRepository, converter *analytics.Converter, policy *analytics.StatusPolicy) *ReportService {
	batchSize := defaultBatchSize
	if raw := os.Getenv("BATCH_SIZE"); raw != "" {
		if parsed, err := strconv.Atoi(raw); err == nil && parsed > 0 {
			batchSize = parsed
		}
	}
	return &ReportService{
		repo:      analyticsRepo,
		converter: converter,
		policy:    policy,
		batchSize: batchSize,
	}
}

// BaseCurrency exposes the reporting currency for response metadata
func (s *ReportService) BaseCurrency() string {
	return s.converter.BaseCurrency()
}

// completedOrders is the one status predicate shared by every query
func (s *ReportService) completedOrders() repo.StatusScope {
	return s.policy.CompletedScope("orders.status")
}

// CurrencyBreakdown is one currency's slice of the overview totals
type CurrencyBreakdown struct {
	Currency  string           `json:"currency"`
	Orders    int64            `json:"orders"`
	Total     decimal.Decimal  `json:"total"`
	TotalBase *decimal.Decimal `json:"total_base"` // nil when the currency cannot be converted
}

// OverviewResponse is the flat KPI object behind the dashboard overview
type OverviewResponse struct {
	Filter                repo.ReportFilter      `json:"filter"`
	BaseCurrency          string                 `json:"base_currency"`
	Orders                int64                  `json:"orders"`
	RevenueBase           decimal.Decimal        `json:"revenue_base"`
	AverageOrderValueBase decimal.Decimal        `json:"average_order_value_base"`
	Currencies            []CurrencyBreakdown    `json:"currencies"`
	UnitsSold             decimal.Decimal        `json:"units_sold"`
	CatalogProducts       int64                  `json:"catalog_products"`
	CatalogVariants       int64                  `json:"catalog_variants"`
	Customers             analytics.Segmentation `json:"customers"`
}

// composeCurrencyTotals folds per-currency rows into the overview's
// order count, base revenue total and sorted breakdown. Precomputed
// base amounts are authoritative; only the raw sum of orders missing
// one is converted here, and an unconvertible currency contributes
// zero for that part (its breakdown slice carries a nil base).
func composeCurrencyTotals(rows []repo.CurrencyTotalRow, conv *analytics.Converter) (int64, decimal.Decimal, []CurrencyBreakdown) {
	var orders int64
	revenueBase := decimal.Zero
	breakdowns := make([]CurrencyBreakdown, 0, len(rows))

	for _, row := range rows {
		orders += row.Orders

		currencyBase := row.TotalBase
		converted, convertible := conv.ToBase(row.TotalMissingBase, row.Currency)
		if convertible {
			currencyBase = currencyBase.Add(converted)
		}
		revenueBase = revenueBase.Add(currencyBase)

		breakdown := CurrencyBreakdown{
			Currency: row.Currency,
			Orders:   row.Orders,
			Total:    analytics.RoundMoney(row.Total),
		}
		if convertible || row.TotalMissingBase.IsZero() {
			rounded := analytics.RoundMoney(currencyBase)
			breakdown.TotalBase = &rounded
		}
		breakdowns = append(breakdowns, breakdown)
	}
	sort.Slice(breakdowns, func(i, j int) bool {
		return breakdowns[i].Currency < breakdowns[j].Currency
	})
	return orders, analytics.RoundMoney(revenueBase), breakdowns
}

// Overview computes the KPI snapshot for the dashboard overview call
func (s *ReportService) Overview(ctx context.Context, f repo.ReportFilter) (*OverviewResponse, error) {
	completed := s.completedOrders()

	currencyRows, err := s.repo.CurrencyTotals(ctx, f, completed)
	if err != nil {
		return nil, err
	}

	resp := &OverviewResponse{
		Filter:       f,
		BaseCurrency: s.converter.BaseCurrency(),
	}
	resp.Orders, resp.RevenueBase, resp.Currencies = composeCurrencyTotals(currencyRows, s.converter)

	if resp.Orders > 0 {
		resp.AverageOrderValueBase = analytics.RoundMoney(resp.RevenueBase.Div(decimal.NewFromInt(resp.Orders)))
	} else {
		resp.AverageOrderValueBase = decimal.Zero
	}

	units, err := s.repo.UnitsSold(ctx, f, completed)
	if err != nil {
		return nil, err
	}
	resp.UnitsSold = analytics.RoundQuantity(units)

	resp.CatalogProducts, resp.CatalogVariants, err = s.repo.CatalogCounts(ctx, f.ShopIDs)
	if err != nil {
		return nil, err
	}

	resp.Customers, err = s.segmentation(ctx, f, completed)
	if err != nil {
		return nil, err
	}
	return resp, nil
}

// CustomersReportResponse is the standalone segmentation payload
type CustomersReportResponse struct {
	Filter       repo.ReportFilter      `json:"filter"`
	BaseCurrency string                 `json:"base_currency"`
	Customers    analytics.Segmentation `json:"customers"`
}

// CustomersReport computes the new/returning segmentation for the period
func (s *ReportService) CustomersReport(ctx context.Context, f repo.ReportFilter) (*CustomersReportResponse, error) {
	seg, err := s.segmentation(ctx, f, s.completedOrders())
	if err != nil {
		return nil, err
	}
	return &CustomersReportResponse{
		Filter:       f,
		BaseCurrency: s.converter.BaseCurrency(),
		Customers:    seg,
	}, nil
}

func (s *ReportService) segmentation(ctx context.Context, f repo.ReportFilter, completed repo.StatusScope) (analytics.Segmentation, error) {
	current, err := s.repo.CustomerPeriodStats(ctx, f, completed)
	if err != nil {
		return analytics.Segmentation{}, err
	}
	historical, err := s.repo.CustomerFirstOrders(ctx, f, completed)
	if err != nil {
		return analytics.Segmentation{}, err
	}
	withoutEmail, err := s.repo.OrdersWithoutEmail(ctx, f, completed)
	if err != nil {
		return analytics.Segmentation{}, err
	}
	return analytics.SegmentCustomers(current, historical, withoutEmail), nil
}

// TimeSeriesPoint is one bucket of the orders report
type TimeSeriesPoint struct {
	Key         string          `json:"key"`
	Label       string          `json:"label"`
	Start       time.Time       `json:"start"`
	Orders      int64           `json:"orders"`
	RevenueBase decimal.Decimal `json:"revenue_base"`
	Customers   int64           `json:"customers"`
	Units       decimal.Decimal `json:"units"`
}

// OrdersReportResponse is the bucketed revenue/order/customer series
type OrdersReportResponse struct {
	Filter       repo.ReportFilter     `json:"filter"`
	Granularity  analytics.Granularity `json:"granularity"`
	BaseCurrency string                `json:"base_currency"`
	Points       []TimeSeriesPoint     `json:"points"`
}

// OrdersReport buckets completed orders into calendar periods. The
// store groups by calendar day; the period bucketer folds days into the
// requested granularity so ISO week semantics live in exactly one place.
func (s *ReportService) OrdersReport(ctx context.Context, f repo.ReportFilter, granularity analytics.Granularity) (*OrdersReportResponse, error) {
	completed := s.completedOrders()

	totals, err := s.repo.DailyTotals(ctx, f, completed)
	if err != nil {
		return nil, err
	}
	units, err := s.repo.DailyUnits(ctx, f, completed)
	if err != nil {
		return nil, err
	}
	customerDays, err := s.repo.CustomerDays(ctx, f, completed)
	if err != nil {
		return nil, err
	}

	type bucket struct {
		point     *TimeSeriesPoint
		customers map[string]struct{}
	}
	buckets := make(map[string]*bucket)
	get := func(day time.Time) *bucket {
		key := analytics.BucketKey(day, granularity)
		b, ok := buckets[key]
		if !ok {
			b = &bucket{
				point: &TimeSeriesPoint{
					Key:         key,
					Label:       analytics.BucketLabel(day, granularity),
					Start:       analytics.BucketStart(day, granularity),
					RevenueBase: decimal.Zero,
					Units:       decimal.Zero,
				},
				customers: make(map[string]struct{}),
			}
			buckets[key] = b
		}
		return b
	}

	for _, row := range totals {
		b := get(row.Day)
		b.point.Orders += row.Orders
		revenue := row.TotalBase
		if converted, ok := s.converter.ToBase(row.TotalMissingBase, row.Currency); ok {
			revenue = revenue.Add(converted)
		}
		b.point.RevenueBase = b.point.RevenueBase.Add(revenue)
	}
	for _, row := range units {
		b := get(row.Day)
		b.point.Units = b.point.Units.Add(row.Units)
	}
	for _, row := range customerDays {
		b := get(row.Day)
		b.customers[row.Email] = struct{}{}
	}

	points := make([]TimeSeriesPoint, 0, len(buckets))
	for _, b := range buckets {
		b.point.Customers = int64(len(b.customers))
		b.point.RevenueBase = analytics.RoundMoney(b.point.RevenueBase)
		b.point.Units = analytics.RoundQuantity(b.point.Units)
		points = append(points, *b.point)
	}
	// Buckets sort by underlying start timestamp, never by the string key
	sort.Slice(points, func(i, j int) bool {
		return points[i].Start.Before(points[j].Start)
	})

	return &OrdersReportResponse{
		Filter:       f,
		Granularity:  granularity,
		BaseCurrency: s.converter.BaseCurrency(),
		Points:       points,
	}, nil
}

// ProductsReportResponse is the ranked, paginated product performance view
type ProductsReportResponse struct {
	Filter       repo.ReportFilter               `json:"filter"`
	BaseCurrency string                          `json:"base_currency"`
	Sort         string                          `json:"sort"`
	Direction    string                          `json:"direction"`
	Limit        int                             `json:"limit"`
	Products     []*analytics.ProductPerformance `json:"products"`
}

// ProductsReport merges the summary, revenue and repeat aggregates into
// one ranked view. The merge is sequential: revenue and repeat rows
// fold into the key set seeded by the summary pass.
func (s *ReportService) ProductsReport(ctx context.Context, f repo.ReportFilter, sortField, direction string, limit int) (*ProductsReportResponse, error) {
	completed := s.completedOrders()
	sortField = analytics.ParseProductSort(sortField)
	if direction != "asc" {
		direction = "desc"
	}
	limit = ClampLimit(limit)

	summary, err := s.repo.ProductSummary(ctx, f, completed)
	if err != nil {
		return nil, err
	}
	revenue, err := s.repo.ProductRevenue(ctx, f, completed)
	if err != nil {
		return nil, err
	}
	repeat, err := s.repo.ProductRepeat(ctx, f, completed)
	if err != nil {
		return nil, err
	}

	rows := analytics.MergeProductAggregates(summary, revenue, repeat, s.converter)
	analytics.SortProducts(rows, sortField, direction)
	rows = analytics.RankAndLimit(rows, limit)

	return &ProductsReportResponse{
		Filter:       f,
		BaseCurrency: s.converter.BaseCurrency(),
		Sort:         sortField,
		Direction:    direction,
		Limit:        limit,
		Products:     rows,
	}, nil
}

// BreakdownsResponse groups orders by resolved payment/shipping labels
// and by classified status.
type BreakdownsResponse struct {
	Filter        repo.ReportFilter         `json:"filter"`
	ScannedOrders int64                     `json:"scanned_orders"`
	Payment       []analytics.BreakdownItem `json:"payment"`
	Shipping      []analytics.BreakdownItem `json:"shipping"`
	Status        []analytics.BreakdownItem `json:"status"`
}

// Breakdowns scans orders in scope in fixed-size batches and resolves
// each loosely structured payment/shipping descriptor to a label once.
// Unlike the other reports this scan is not restricted to completed
// orders; the status breakdown covers the whole population.
func (s *ReportService) Breakdowns(ctx context.Context, f repo.ReportFilter) (*BreakdownsResponse, error) {
	payment := analytics.NewBreakdownCounter()
	shipping := analytics.NewBreakdownCounter()
	status := analytics.NewBreakdownCounter()
	var scanned int64

	allStatuses := func(db *gorm.DB) *gorm.DB { return db }
	err := s.repo.IterateOrders(ctx, f, allStatuses, s.batchSize, func(orders []models.Order) error {
		for _, order := range orders {
			scanned++
			payment.Add(analytics.ParseDescriptor(order.Payment).Label(analytics.UnknownLabel))
			shipping.Add(analytics.ParseDescriptor(order.Shipping).Label(analytics.UnknownLabel))
			status.Add(s.policy.Category(order.Status))
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return &BreakdownsResponse{
		Filter:        f,
		ScannedOrders: scanned,
		Payment:       payment.Items(),
		Shipping:      shipping.Items(),
		Status:        status.Items(),
	}, nil
}
