// Package aggregate computes the revenue figures shown on the dashboard.
package aggregate

import (
	"sort"

	"github.com/samber/lo"

	"github.com/klytics/salesdash/internal/sales"
)

// DefaultAnnual is the subscription type the renewal breakdown is limited to.
const DefaultAnnual = "Annual"

// Group is one row of a group-sum table.
type Group struct {
	Key   string  `json:"key"`
	Value float64 `json:"value"`
}

// Summary holds every figure the report renders.
type Summary struct {
	Total     float64 `json:"total"`
	ByPlan    []Group `json:"byPlan"`
	ByRenewal []Group `json:"byRenewal"`
	// RenewalFallback is set when the renewal columns were absent and
	// ByRenewal holds the fixed zero table rather than grouped data.
	RenewalFallback bool `json:"renewalFallback"`
}

// Options tunes the renewal filter.
type Options struct {
	Annual string // empty = DefaultAnnual
}

// FallbackRenewal is used when the source lacks the renewal columns.
func FallbackRenewal() []Group {
	return []Group{{Key: "No", Value: 0}, {Key: "Yes", Value: 0}}
}

// Summarize derives the dashboard figures from a sales table.
func Summarize(t *sales.Table, opts Options) *Summary {
	annual := opts.Annual
	if annual == "" {
		annual = DefaultAnnual
	}

	s := &Summary{
		Total:  Total(t.Records),
		ByPlan: GroupSum(t.Records, func(r sales.Record) string { return r.Plan }),
	}

	if !t.HasRenewal {
		s.ByRenewal = FallbackRenewal()
		s.RenewalFallback = true
		return s
	}

	annualRows := lo.Filter(t.Records, func(r sales.Record, _ int) bool {
		return r.SubscriptionType == annual
	})
	s.ByRenewal = GroupSum(annualRows, func(r sales.Record) string { return r.AutoRenewal })
	return s
}

// Total sums every record's value. An empty slice sums to zero.
func Total(records []sales.Record) float64 {
	return lo.SumBy(records, func(r sales.Record) float64 { return r.TotalValue })
}

// GroupSum sums values per distinct key, sorted by key. Records with an
// empty key are left out of the grouping.
func GroupSum(records []sales.Record, key func(sales.Record) string) []Group {
	keyed := lo.Filter(records, func(r sales.Record, _ int) bool { return key(r) != "" })
	groups := lo.GroupBy(keyed, key)

	keys := lo.Keys(groups)
	sort.Strings(keys)

	out := make([]Group, 0, len(keys))
	for _, k := range keys {
		out = append(out, Group{Key: k, Value: Total(groups[k])})
	}
	return out
}

// Lookup returns the value for key and whether it is present.
func Lookup(groups []Group, key string) (float64, bool) {
	g, ok := lo.Find(groups, func(g Group) bool { return g.Key == key })
	return g.Value, ok
}
