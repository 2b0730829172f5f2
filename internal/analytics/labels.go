package analytics

import (
	"encoding/json"
	"sort"
	"strings"
)

// UnknownLabel is the fallback when no label can be extracted from a
// payment/shipping descriptor.
const UnknownLabel = "Unknown"

// descriptorKeys is the fixed priority order used when resolving a
// human label out of a structured descriptor.
var descriptorKeys = []string{"method", "label", "title", "name", "type", "carrier", "code"}

type descriptorKind int

const (
	descriptorEmpty descriptorKind = iota
	descriptorPlain
	descriptorKeyed
	descriptorList
)

// RawDescriptor is a payment or shipping field parsed once at the
// boundary. Upstream platforms deliver it as a plain string, a JSON
// object with synonymous keys, or a JSON array of either.
type RawDescriptor struct {
	kind  descriptorKind
	plain string
	keyed map[string]interface{}
	list  []interface{}
}

// ParseDescriptor classifies a raw column value into the
// Plain/Keyed/List shape. Values that fail to parse as JSON are treated
// as plain labels.
func ParseDescriptor(raw *string) RawDescriptor {
	if raw == nil {
		return RawDescriptor{}
	}
	s := strings.TrimSpace(*raw)
	if s == "" {
		return RawDescriptor{}
	}

	if strings.HasPrefix(s, "{") {
		var m map[string]interface{}
		if err := json.Unmarshal([]byte(s), &m); err == nil {
			return RawDescriptor{kind: descriptorKeyed, keyed: m}
		}
	}
	if strings.HasPrefix(s, "[") {
		var l []interface{}
		if err := json.Unmarshal([]byte(s), &l); err == nil {
			return RawDescriptor{kind: descriptorList, list: l}
		}
	}
	if strings.HasPrefix(s, `"`) {
		var p string
		if err := json.Unmarshal([]byte(s), &p); err == nil {
			s = strings.TrimSpace(p)
			if s == "" {
				return RawDescriptor{}
			}
		}
	}
	return RawDescriptor{kind: descriptorPlain, plain: s}
}

// Label resolves the descriptor to a single human-readable label using
// the fixed key priority, searching nested structures recursively.
// Returns fallback when no string can be extracted.
func (d RawDescriptor) Label(fallback string) string {
	switch d.kind {
	case descriptorPlain:
		return d.plain
	case descriptorKeyed:
		if label := labelFromValue(d.keyed); label != "" {
			return label
		}
	case descriptorList:
		if label := labelFromValue(d.list); label != "" {
			return label
		}
	}
	return fallback
}

func labelFromValue(v interface{}) string {
	switch val := v.(type) {
	case string:
		return strings.TrimSpace(val)
	case map[string]interface{}:
		// Priority keys first, then any nested structure
		for _, key := range descriptorKeys {
			if nested, ok := val[key]; ok {
				if label := labelFromValue(nested); label != "" {
					return label
				}
			}
		}
		for _, nested := range val {
			switch nested.(type) {
			case map[string]interface{}, []interface{}:
				if label := labelFromValue(nested); label != "" {
					return label
				}
			}
		}
	case []interface{}:
		for _, item := range val {
			if label := labelFromValue(item); label != "" {
				return label
			}
		}
	}
	return ""
}

// BreakdownItem is one label's slice of a breakdown
type BreakdownItem struct {
	Label string  `json:"label"`
	Count int64   `json:"count"`
	Share float64 `json:"share"`
}

// BreakdownCounter accumulates label counts across a batched order scan
type BreakdownCounter struct {
	counts map[string]int64
	total  int64
}

// NewBreakdownCounter creates an empty counter
func NewBreakdownCounter() *BreakdownCounter {
	return &BreakdownCounter{counts: make(map[string]int64)}
}

// Add records one occurrence of a label
func (b *BreakdownCounter) Add(label string) {
	if label == "" {
		label = UnknownLabel
	}
	b.counts[label]++
	b.total++
}

// Items returns the breakdown sorted by count descending (label
// ascending on ties), with shares of the scanned total.
func (b *BreakdownCounter) Items() []BreakdownItem {
	items := make([]BreakdownItem, 0, len(b.counts))
	for label, count := range b.counts {
		item := BreakdownItem{Label: label, Count: count}
		if b.total > 0 {
			item.Share = RoundRatio(float64(count) / float64(b.total))
		}
		items = append(items, item)
	}
	sortBreakdown(items)
	return items
}

func sortBreakdown(items []BreakdownItem) {
	sort.SliceStable(items, func(i, j int) bool {
		if items[i].Count != items[j].Count {
			return items[i].Count > items[j].Count
		}
		return items[i].Label < items[j].Label
	})
}
