package engine

import (
	"bilancio/internal/core"

	"github.com/shopspring/decimal"
)

var hundred = decimal.NewFromInt(100)

// CategoryProgress is the spend-vs-limit state of one expense category
// for a single period.
type CategoryProgress struct {
	CategoryID int64
	Name       string
	Color      string
	Icon       string
	Spent      decimal.Decimal
	Limit      decimal.Decimal
	Percentage decimal.Decimal // capped at 100, zero when no limit
	Alert      Alert
}

// Progress computes the budget progress of every expense category for
// the given period. A category appears in the result only when it has
// a limit set or recorded spend; categories with neither are not
// relevant for the period. Result order follows the category registry.
func Progress(txs []core.Transaction, budgets []core.Budget, categories []core.Category, period core.Period) []CategoryProgress {
	spent := spentByCategory(txs, period)

	limits := make(map[int64]decimal.Decimal, len(budgets))
	for _, b := range budgets {
		if b.Month != period.Month || b.Year != period.Year {
			continue
		}
		limits[b.CategoryID] = b.Amount
	}

	var out []CategoryProgress
	for _, c := range categories {
		if c.IsIncome {
			continue
		}
		s := spent[c.ID]
		limit, hasLimit := limits[c.ID]
		if !hasLimit {
			limit = decimal.Zero
		}
		if s.LessThanOrEqual(decimal.Zero) && limit.LessThanOrEqual(decimal.Zero) {
			continue
		}
		out = append(out, CategoryProgress{
			CategoryID: c.ID,
			Name:       c.Name,
			Color:      c.Color,
			Icon:       c.Icon,
			Spent:      s,
			Limit:      limit,
			Percentage: percentage(s, limit),
			Alert:      Classify(s, limit),
		})
	}
	return out
}

// SpentInPeriod sums expense amounts for one category over the period.
// Used on the write path to classify with post-write totals.
func SpentInPeriod(txs []core.Transaction, categoryID int64, period core.Period) decimal.Decimal {
	total := decimal.Zero
	for _, tx := range txs {
		if tx.Type != core.Expense || tx.CategoryID != categoryID {
			continue
		}
		if !period.Contains(tx.Date) {
			continue
		}
		total = total.Add(tx.Amount)
	}
	return total
}

func percentage(spent, limit decimal.Decimal) decimal.Decimal {
	if limit.LessThanOrEqual(decimal.Zero) {
		return decimal.Zero
	}
	pct := spent.Div(limit).Mul(hundred)
	if pct.GreaterThan(hundred) {
		return hundred
	}
	return pct
}

func spentByCategory(txs []core.Transaction, period core.Period) map[int64]decimal.Decimal {
	sums := make(map[int64]decimal.Decimal)
	for _, tx := range txs {
		if tx.Type != core.Expense || !period.Contains(tx.Date) {
			continue
		}
		sums[tx.CategoryID] = sums[tx.CategoryID].Add(tx.Amount)
	}
	return sums
}
