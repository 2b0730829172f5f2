package handlers

import (
	"strconv"
	"strings"
	"time"

	"storepulse/internal/repo"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

// reportFilterFromQuery builds the report scope from query parameters.
// Caller input is clamped, never rejected: unparseable dates fall back
// to the last 30 days and malformed shop IDs are skipped.
func reportFilterFromQuery(c echo.Context) repo.ReportFilter {
	now := time.Now()
	from := now.AddDate(0, 0, -30)
	to := now

	if raw := c.QueryParam("start_date"); raw != "" {
		if parsed, err := time.Parse("2006-01-02", raw); err == nil {
			from = parsed
		}
	}
	if raw := c.QueryParam("end_date"); raw != "" {
		if parsed, err := time.Parse("2006-01-02", raw); err == nil {
			// Inclusive range: extend to the end of the day
			to = parsed.AddDate(0, 0, 1).Add(-time.Nanosecond)
		}
	}
	if to.Before(from) {
		from, to = to, from
	}

	var shopIDs []uuid.UUID
	if raw := c.QueryParam("shop_ids"); raw != "" {
		for _, part := range strings.Split(raw, ",") {
			if id, err := uuid.Parse(strings.TrimSpace(part)); err == nil {
				shopIDs = append(shopIDs, id)
			}
		}
		if shopIDs == nil {
			// Structurally invalid shop filter: scope to nothing rather
			// than silently widening to every shop
			shopIDs = []uuid.UUID{uuid.Nil}
		}
	}

	return repo.ReportFilter{
		ShopIDs: shopIDs,
		From:    from,
		To:      to,
		Search:  strings.TrimSpace(c.QueryParam("q")),
	}
}

func limitFromQuery(c echo.Context) int {
	limit, err := strconv.Atoi(c.QueryParam("limit"))
	if err != nil {
		return 0
	}
	return limit
}
