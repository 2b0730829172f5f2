package analytics

import (
	"sort"
	"testing"
	"time"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 12, 30, 0, 0, time.UTC)
}

func TestBucketKey(t *testing.T) {
	tests := []struct {
		name     string
		t        time.Time
		g        Granularity
		expected string
	}{
		{"day is zero padded", date(2024, time.January, 2), GranularityDay, "2024-01-02"},
		{"month is zero padded", date(2024, time.March, 15), GranularityMonth, "2024-03"},
		{"year", date(2024, time.July, 1), GranularityYear, "2024"},
		{"iso week", date(2024, time.January, 10), GranularityWeek, "2024-W02"},
		// 2023-12-31 is a Sunday in ISO week 52 of 2023
		{"december day in its iso week", date(2023, time.December, 31), GranularityWeek, "2023-W52"},
		// 2024-12-30 belongs to ISO week 1 of 2025
		{"december day in next iso year", date(2024, time.December, 30), GranularityWeek, "2025-W01"},
	}

	for _, test := range tests {
		if got := BucketKey(test.t, test.g); got != test.expected {
			t.Errorf("%s: BucketKey(%v, %s) = %q, expected %q", test.name, test.t, test.g, got, test.expected)
		}
	}
}

func TestBucketKeySameISOWeekAcrossYearBoundary(t *testing.T) {
	// 2018-12-31 (Monday) and 2019-01-01 (Tuesday) share ISO week 1 of 2019
	a := BucketKey(date(2018, time.December, 31), GranularityWeek)
	b := BucketKey(date(2019, time.January, 1), GranularityWeek)
	if a != b {
		t.Errorf("expected identical week keys across year boundary, got %q and %q", a, b)
	}
	if a != "2019-W01" {
		t.Errorf("expected 2019-W01, got %q", a)
	}
}

func TestBucketKeyStableWithinUnit(t *testing.T) {
	granularities := []Granularity{GranularityDay, GranularityWeek, GranularityMonth, GranularityYear}
	for _, g := range granularities {
		early := time.Date(2024, time.May, 15, 0, 0, 1, 0, time.UTC)
		late := time.Date(2024, time.May, 15, 23, 59, 59, 0, time.UTC)
		if BucketKey(early, g) != BucketKey(late, g) {
			t.Errorf("%s: keys differ within the same calendar unit", g)
		}
	}
}

func TestBucketStartWeekIsMonday(t *testing.T) {
	// 2024-01-07 is a Sunday; its ISO week starts Monday 2024-01-01
	start := BucketStart(date(2024, time.January, 7), GranularityWeek)
	if start.Weekday() != time.Monday {
		t.Errorf("expected Monday, got %s", start.Weekday())
	}
	if !start.Equal(time.Date(2024, time.January, 1, 0, 0, 0, 0, time.UTC)) {
		t.Errorf("expected 2024-01-01, got %v", start)
	}
}

func TestBucketKeyOrderMatchesTimestampOrder(t *testing.T) {
	// String sort of keys must coincide with temporal sort for a
	// multi-month range of days.
	var keys []string
	var starts []time.Time
	for d := 0; d < 400; d += 7 {
		ts := date(2023, time.November, 1).AddDate(0, 0, d)
		keys = append(keys, BucketKey(ts, GranularityDay))
		starts = append(starts, BucketStart(ts, GranularityDay))
	}

	sortedByKey := append([]string(nil), keys...)
	sort.Strings(sortedByKey)

	for i := range keys {
		if keys[i] != sortedByKey[i] {
			t.Fatalf("key order diverges from timestamp order at %d: %q vs %q", i, keys[i], sortedByKey[i])
		}
		if i > 0 && !starts[i-1].Before(starts[i]) {
			t.Fatalf("starts not strictly increasing at %d", i)
		}
	}
}

func TestParseGranularity(t *testing.T) {
	if g := ParseGranularity("week"); g != GranularityWeek {
		t.Errorf("expected week, got %s", g)
	}
	if g := ParseGranularity("quarterly"); g != GranularityMonth {
		t.Errorf("expected month fallback, got %s", g)
	}
	if g := ParseGranularity(""); g != GranularityMonth {
		t.Errorf("expected month fallback for empty input, got %s", g)
	}
}

func TestBucketLabel(t *testing.T) {
	ts := date(2024, time.January, 2)
	if got := BucketLabel(ts, GranularityDay); got != "2 Jan 2024" {
		t.Errorf("day label = %q", got)
	}
	if got := BucketLabel(ts, GranularityWeek); got != "Week 1 2024" {
		t.Errorf("week label = %q", got)
	}
	if got := BucketLabel(ts, GranularityMonth); got != "January 2024" {
		t.Errorf("month label = %q", got)
	}
	if got := BucketLabel(ts, GranularityYear); got != "2024" {
		t.Errorf("year label = %q", got)
	}
}
