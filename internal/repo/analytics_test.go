package repo

import (
	"context"
	"testing"
	"time"

	"storepulse/internal/analytics"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func newMockRepo(t *testing.T) (*AnalyticsRepository, sqlmock.Sqlmock) {
	t.Helper()
	sqlDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { sqlDB.Close() })

	gdb, err := gorm.Open(postgres.New(postgres.Config{
		Conn:                 sqlDB,
		PreferSimpleProtocol: true,
	}), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	require.NoError(t, err)

	return NewAnalyticsRepository(gdb), mock
}

func testFilter() ReportFilter {
	return ReportFilter{
		From: time.Date(2024, time.January, 1, 0, 0, 0, 0, time.UTC),
		To:   time.Date(2024, time.January, 31, 23, 59, 59, 0, time.UTC),
	}
}

func completedScope() StatusScope {
	policy := analytics.NewStatusPolicy([]string{"done"}, nil, nil, nil)
	return policy.CompletedScope("orders.status")
}

func TestCurrencyTotals(t *testing.T) {
	repo, mock := newMockRepo(t)

	mock.ExpectQuery(`(?s)SELECT.*COUNT\(\*\) AS orders.*FROM "orders".*GROUP BY "orders"\."currency"`).
		WillReturnRows(sqlmock.NewRows([]string{"currency", "orders", "total", "total_base", "total_missing_base"}).
			AddRow("CZK", 10, "12500.00", "12500.00", "0").
			AddRow("EUR", 2, "80.00", "1500.00", "20.00"))

	rows, err := repo.CurrencyTotals(context.Background(), testFilter(), completedScope())
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "CZK", rows[0].Currency)
	assert.EqualValues(t, 10, rows[0].Orders)
	assert.Equal(t, "12500", rows[0].Total.String())
	assert.Equal(t, "20", rows[1].TotalMissingBase.String())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCurrencyTotalsAppliesShopFilter(t *testing.T) {
	repo, mock := newMockRepo(t)

	shopID := uuid.New()
	f := testFilter()
	f.ShopIDs = []uuid.UUID{shopID}

	mock.ExpectQuery(`(?s)SELECT.*FROM "orders".*shop_id IN.*status.*IN`).
		WithArgs(shopID, f.From, f.To, "done").
		WillReturnRows(sqlmock.NewRows([]string{"currency", "orders", "total", "total_base", "total_missing_base"}))

	rows, err := repo.CurrencyTotals(context.Background(), f, completedScope())
	require.NoError(t, err)
	assert.Empty(t, rows)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCustomerPeriodStats(t *testing.T) {
	repo, mock := newMockRepo(t)

	first := time.Date(2024, time.January, 5, 10, 0, 0, 0, time.UTC)
	mock.ExpectQuery(`(?s)SELECT.*LOWER\(TRIM\(orders\.customer_email\)\) AS email.*FROM "orders".*GROUP BY LOWER`).
		WillReturnRows(sqlmock.NewRows([]string{"email", "orders", "revenue_base", "first_order_at"}).
			AddRow("a@x.com", 2, "500.00", first))

	stats, err := repo.CustomerPeriodStats(context.Background(), testFilter(), completedScope())
	require.NoError(t, err)
	require.Len(t, stats, 1)
	assert.Equal(t, "a@x.com", stats[0].Email)
	assert.EqualValues(t, 2, stats[0].Orders)
	assert.True(t, stats[0].FirstOrderAt.Equal(first))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestOrdersWithoutEmail(t *testing.T) {
	repo, mock := newMockRepo(t)

	mock.ExpectQuery(`(?s)SELECT count\(\*\) FROM "orders".*customer_email IS NULL`).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(7))

	count, err := repo.OrdersWithoutEmail(context.Background(), testFilter(), completedScope())
	require.NoError(t, err)
	assert.EqualValues(t, 7, count)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUnitsSold(t *testing.T) {
	repo, mock := newMockRepo(t)

	mock.ExpectQuery(`(?s)SELECT COALESCE\(SUM\(order_items\.amount\), 0\) FROM "order_items".*JOIN orders`).
		WillReturnRows(sqlmock.NewRows([]string{"coalesce"}).AddRow("42.500"))

	units, err := repo.UnitsSold(context.Background(), testFilter(), completedScope())
	require.NoError(t, err)
	assert.Equal(t, "42.5", units.String())
	assert.NoError(t, mock.ExpectationsWereMet())
}
