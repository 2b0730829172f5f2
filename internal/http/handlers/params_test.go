package handlers

import (
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func queryContext(t *testing.T, params url.Values) echo.Context {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest("GET", "/?"+params.Encode(), nil)
	return e.NewContext(req, httptest.NewRecorder())
}

func TestReportFilterFromQueryExplicitRange(t *testing.T) {
	c := queryContext(t, url.Values{
		"start_date": {"2024-01-01"},
		"end_date":   {"2024-01-31"},
	})

	f := reportFilterFromQuery(c)

	assert.Equal(t, time.Date(2024, time.January, 1, 0, 0, 0, 0, time.UTC), f.From)
	// end_date is inclusive, extended to the end of the day
	assert.Equal(t, 31, f.To.Day())
	assert.Equal(t, 23, f.To.Hour())
}

func TestReportFilterFromQueryDefaultsToLast30Days(t *testing.T) {
	c := queryContext(t, url.Values{
		"start_date": {"not-a-date"},
	})

	f := reportFilterFromQuery(c)

	days := f.To.Sub(f.From).Hours() / 24
	assert.InDelta(t, 30, days, 0.01)
}

func TestReportFilterFromQuerySwapsReversedRange(t *testing.T) {
	c := queryContext(t, url.Values{
		"start_date": {"2024-03-01"},
		"end_date":   {"2024-01-01"},
	})

	f := reportFilterFromQuery(c)
	assert.True(t, f.From.Before(f.To))
}

func TestReportFilterFromQueryShopIDs(t *testing.T) {
	id := uuid.New()
	c := queryContext(t, url.Values{
		"shop_ids": {id.String() + ",garbage, "},
	})

	f := reportFilterFromQuery(c)
	require.Len(t, f.ShopIDs, 1)
	assert.Equal(t, id, f.ShopIDs[0])
}

func TestReportFilterFromQueryAllInvalidShopIDs(t *testing.T) {
	c := queryContext(t, url.Values{"shop_ids": {"garbage,also-garbage"}})

	f := reportFilterFromQuery(c)
	require.Len(t, f.ShopIDs, 1)
	assert.Equal(t, uuid.Nil, f.ShopIDs[0])
}

func TestLimitFromQuery(t *testing.T) {
	assert.Equal(t, 25, limitFromQuery(queryContext(t, url.Values{"limit": {"25"}})))
	assert.Equal(t, 0, limitFromQuery(queryContext(t, url.Values{"limit": {"abc"}})))
	assert.Equal(t, 0, limitFromQuery(queryContext(t, url.Values{})))
}
