package engine

import (
	"sort"

	"bilancio/internal/core"

	"github.com/shopspring/decimal"
)

// Uncategorized labels the breakdown bucket collecting expenses with
// no category or a category that no longer exists.
const (
	Uncategorized      = "Uncategorized"
	uncategorizedColor = "#94a3b8"
)

// BreakdownSlice is one slice of the categorical expense distribution.
type BreakdownSlice struct {
	Name  string
	Value decimal.Decimal
	Color string
}

// Breakdown computes the categorical distribution of the period's
// expenses. Known categories with spend are sorted by value descending
// (ties broken by name so the result is deterministic); a trailing
// Uncategorized slice collects nil and dangling category references.
// The values always sum to the period's total expense exactly.
func Breakdown(txs []core.Transaction, categories []core.Category, period core.Period) []BreakdownSlice {
	spent := spentByCategory(txs, period)

	known := make(map[int64]core.Category, len(categories))
	for _, c := range categories {
		if !c.IsIncome {
			known[c.ID] = c
		}
	}

	var out []BreakdownSlice
	uncategorized := decimal.Zero
	for id, total := range spent {
		if total.LessThanOrEqual(decimal.Zero) {
			continue
		}
		c, ok := known[id]
		if !ok {
			// Deleted or never-set category: fold into the shared bucket.
			uncategorized = uncategorized.Add(total)
			continue
		}
		out = append(out, BreakdownSlice{Name: c.Name, Value: total, Color: c.Color})
	}

	sort.Slice(out, func(i, j int) bool {
		if !out[i].Value.Equal(out[j].Value) {
			return out[i].Value.GreaterThan(out[j].Value)
		}
		return out[i].Name < out[j].Name
	})

	if uncategorized.GreaterThan(decimal.Zero) {
		out = append(out, BreakdownSlice{Name: Uncategorized, Value: uncategorized, Color: uncategorizedColor})
	}
	return out
}
