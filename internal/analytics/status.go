package analytics

import (
	"os"
	"strings"

	"gorm.io/gorm"
)

// Semantic status categories
const (
	StatusCompleted = "completed"
	StatusReturned  = "returned"
	StatusCancelled = "cancelled"
	StatusComplaint = "complaint"
	StatusOther     = "other"
)

// StatusPolicy is the single shared definition of which raw order
// statuses count toward revenue and performance metrics. Every component
// (KPIs, time series, product ranking, segmentation) must classify
// through the same policy so totals reconcile across views.
type StatusPolicy struct {
	completed  map[string]struct{}
	categories map[string]string // normalized raw status -> returned/cancelled/complaint

	completedList []string
	excludedList  []string
}

// NewStatusPolicy builds a policy from explicit status vocabularies.
// When the completed set is empty the policy falls back to "everything
// except the configured returned/cancelled/complaint statuses".
func NewStatusPolicy(completed, returned, cancelled, complaint []string) *StatusPolicy {
	p := &StatusPolicy{
		completed:  map[string]struct{}{},
		categories: map[string]string{},
	}
	for _, s := range completed {
		if n := normalizeStatus(s); n != "" {
			if _, seen := p.completed[n]; !seen {
				p.completed[n] = struct{}{}
				p.completedList = append(p.completedList, n)
			}
		}
	}
	for category, group := range map[string][]string{
		StatusReturned:  returned,
		StatusCancelled: cancelled,
		StatusComplaint: complaint,
	} {
		for _, s := range group {
			if n := normalizeStatus(s); n != "" {
				if _, seen := p.categories[n]; !seen {
					p.categories[n] = category
					p.excludedList = append(p.excludedList, n)
				}
			}
		}
	}
	return p
}

// NewStatusPolicyFromEnv reads the status vocabularies from
// COMPLETED_STATUSES, RETURNED_STATUSES, CANCELLED_STATUSES and
// COMPLAINT_STATUSES (comma-separated). Sensible platform defaults
// apply when the exclusion lists are unset.
func NewStatusPolicyFromEnv() *StatusPolicy {
	returned := splitStatusList(os.Getenv("RETURNED_STATUSES"))
	if returned == nil {
		returned = []string{"returned", "refunded"}
	}
	cancelled := splitStatusList(os.Getenv("CANCELLED_STATUSES"))
	if cancelled == nil {
		cancelled = []string{"cancelled", "canceled", "storno"}
	}
	complaint := splitStatusList(os.Getenv("COMPLAINT_STATUSES"))
	if complaint == nil {
		complaint = []string{"complaint"}
	}
	return NewStatusPolicy(splitStatusList(os.Getenv("COMPLETED_STATUSES")), returned, cancelled, complaint)
}

// Category maps a raw status to its semantic category. Statuses in the
// configured completed set (or outside the exclusion sets when no
// completed set is configured) classify as completed; configured
// exclusions keep their own category; anything else is other.
func (p *StatusPolicy) Category(status string) string {
	n := normalizeStatus(status)
	if category, ok := p.categories[n]; ok {
		return category
	}
	if len(p.completed) > 0 {
		if _, ok := p.completed[n]; ok {
			return StatusCompleted
		}
		return StatusOther
	}
	return StatusCompleted
}

// IsCompleted reports whether an order with the given raw status counts
// toward metrics. This predicate and CompletedScope express the same
// rule; CompletedScope is its SQL-side form.
func (p *StatusPolicy) IsCompleted(status string) bool {
	return p.Category(status) == StatusCompleted
}

// CompletedScope restricts an order- or item-scoped query to completed
// orders. The column must be qualified when the query joins tables
// (e.g. "orders.status").
func (p *StatusPolicy) CompletedScope(column string) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		if len(p.completedList) > 0 {
			return db.Where("LOWER(TRIM("+column+")) IN ?", p.completedList)
		}
		if len(p.excludedList) > 0 {
			return db.Where("LOWER(TRIM("+column+")) NOT IN ?", p.excludedList)
		}
		return db
	}
}

func normalizeStatus(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

func splitStatusList(raw string) []string {
	if strings.TrimSpace(raw) == "" {
		return nil
	}
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if n := normalizeStatus(part); n != "" {
			out = append(out, n)
		}
	}
	return out
}
