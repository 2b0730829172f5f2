package analytics

import (
	"fmt"
	"time"
)

// Granularity selects the calendar unit used for time-series buckets
type Granularity string

const (
	GranularityDay   Granularity = "day"
	GranularityWeek  Granularity = "week"
	GranularityMonth Granularity = "month"
	GranularityYear  Granularity = "year"
)

// ParseGranularity parses a caller-supplied granularity, falling back to month
func ParseGranularity(s string) Granularity {
	switch Granularity(s) {
	case GranularityDay, GranularityWeek, GranularityMonth, GranularityYear:
		return Granularity(s)
	default:
		return GranularityMonth
	}
}

// BucketKey maps a timestamp to a zero-padded, lexicographically sortable
// bucket key. Week keys use the ISO week-year, not the calendar year, so
// the last days of December can land in week 1 of the next year.
func BucketKey(t time.Time, g Granularity) string {
	switch g {
	case GranularityDay:
		return t.Format("2006-01-02")
	case GranularityWeek:
		year, week := t.ISOWeek()
		return fmt.Sprintf("%04d-W%02d", year, week)
	case GranularityYear:
		return t.Format("2006")
	default:
		return t.Format("2006-01")
	}
}

// BucketLabel returns the human-readable label for a bucket
func BucketLabel(t time.Time, g Granularity) string {
	switch g {
	case GranularityDay:
		return t.Format("2 Jan 2006")
	case GranularityWeek:
		year, week := t.ISOWeek()
		return fmt.Sprintf("Week %d %d", week, year)
	case GranularityYear:
		return t.Format("2006")
	default:
		return t.Format("January 2006")
	}
}

// BucketStart truncates a timestamp to the start of its calendar unit.
// Weeks start on Monday.
func BucketStart(t time.Time, g Granularity) time.Time {
	switch g {
	case GranularityDay:
		return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
	case GranularityWeek:
		day := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
		offset := (int(day.Weekday()) + 6) % 7 // Monday = 0
		return day.AddDate(0, 0, -offset)
	case GranularityYear:
		return time.Date(t.Year(), 1, 1, 0, 0, 0, 0, t.Location())
	default:
		return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, t.Location())
	}
}
