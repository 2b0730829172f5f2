package analytics

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// CustomerPeriodStat is one customer's aggregate inside the selected
// period: order count, revenue (base-preferred) and first in-period order.
type CustomerPeriodStat struct {
	Email        string
	Orders       int64
	RevenueBase  decimal.Decimal
	FirstOrderAt time.Time
}

// CustomerFirstOrder is a customer's earliest order over all time,
// unbounded by the report date range.
type CustomerFirstOrder struct {
	Email        string
	FirstOrderAt time.Time
}

// Segmentation is the new/returning split for one report period
type Segmentation struct {
	UniqueCustomers      int64           `json:"unique_customers"`
	RepeatCustomers      int64           `json:"repeat_customers"` // >1 order within the period
	NewCustomers         int64           `json:"new_customers"`
	NewOrders            int64           `json:"new_orders"`
	NewRevenueBase       decimal.Decimal `json:"new_revenue_base"`
	ReturningCustomers   int64           `json:"returning_customers"`
	ReturningOrders      int64           `json:"returning_orders"`
	ReturningRevenueBase decimal.Decimal `json:"returning_revenue_base"`
	OrdersWithoutEmail   int64           `json:"orders_without_email"`
	CustomersRepeatRatio float64         `json:"customers_repeat_ratio"`
	ReturningRatio       float64         `json:"returning_ratio"`
}

// NormalizeEmail derives the customer identity from a raw email field.
// Two emails differing only in case or surrounding whitespace are the
// same customer. Returns "" for nil/blank values, which are excluded
// from segmentation and surfaced as orders_without_email.
func NormalizeEmail(email *string) string {
	if email == nil {
		return ""
	}
	return strings.ToLower(strings.TrimSpace(*email))
}

// SegmentCustomers classifies the period's customers as new or returning.
// A customer is returning when their first-ever order (historical
// population, same shop filter but no date bound) is strictly earlier
// than their first order inside the period; otherwise they are new.
func SegmentCustomers(current []CustomerPeriodStat, historical []CustomerFirstOrder, ordersWithoutEmail int64) Segmentation {
	firstEver := make(map[string]time.Time, len(historical))
	for _, h := range historical {
		if h.Email == "" {
			continue
		}
		if existing, ok := firstEver[h.Email]; !ok || h.FirstOrderAt.Before(existing) {
			firstEver[h.Email] = h.FirstOrderAt
		}
	}

	seg := Segmentation{
		NewRevenueBase:       decimal.Zero,
		ReturningRevenueBase: decimal.Zero,
		OrdersWithoutEmail:   ordersWithoutEmail,
	}

	for _, cust := range current {
		if cust.Email == "" {
			continue
		}
		seg.UniqueCustomers++
		if cust.Orders > 1 {
			seg.RepeatCustomers++
		}

		ever, known := firstEver[cust.Email]
		if known && ever.Before(cust.FirstOrderAt) {
			seg.ReturningCustomers++
			seg.ReturningOrders += cust.Orders
			seg.ReturningRevenueBase = seg.ReturningRevenueBase.Add(cust.RevenueBase)
		} else {
			seg.NewCustomers++
			seg.NewOrders += cust.Orders
			seg.NewRevenueBase = seg.NewRevenueBase.Add(cust.RevenueBase)
		}
	}

	if seg.UniqueCustomers > 0 {
		seg.CustomersRepeatRatio = RoundRatio(float64(seg.RepeatCustomers) / float64(seg.UniqueCustomers))
		seg.ReturningRatio = RoundRatio(float64(seg.ReturningCustomers) / float64(seg.UniqueCustomers))
	}
	seg.NewRevenueBase = RoundMoney(seg.NewRevenueBase)
	seg.ReturningRevenueBase = RoundMoney(seg.ReturningRevenueBase)
	return seg
}
