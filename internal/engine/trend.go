package engine

import (
	"time"

	"bilancio/internal/core"

	"github.com/shopspring/decimal"
)

// trendMonths is the width of the income/expense trend window.
const trendMonths = 12

// TrendPoint is one month of the income/expense trend series.
type TrendPoint struct {
	Label   string // e.g. "Sep 2025"
	Month   int
	Year    int
	Income  decimal.Decimal
	Expense decimal.Decimal
	Balance decimal.Decimal
}

// Trend buckets the loaded transactions into the last twelve calendar
// months ending at the month containing now. The series always has
// twelve entries, oldest first; months without transactions carry
// zeroes. Chart rendering depends on this ordering.
func Trend(txs []core.Transaction, now time.Time) []TrendPoint {
	out := make([]TrendPoint, 0, trendMonths)
	for i := trendMonths - 1; i >= 0; i-- {
		start := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC).AddDate(0, -i, 0)
		period := core.PeriodOf(start)

		income := decimal.Zero
		expense := decimal.Zero
		for _, tx := range txs {
			if !period.Contains(tx.Date) {
				continue
			}
			switch tx.Type {
			case core.Income:
				income = income.Add(tx.Amount)
			case core.Expense:
				expense = expense.Add(tx.Amount)
			}
		}

		out = append(out, TrendPoint{
			Label:   start.Format("Jan 2006"),
			Month:   period.Month,
			Year:    period.Year,
			Income:  income,
			Expense: expense,
			Balance: income.Sub(expense),
		})
	}
	return out
}
