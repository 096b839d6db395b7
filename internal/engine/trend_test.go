package engine

import (
	"testing"
	"time"

	"bilancio/internal/core"
)

func TestTrendShape(t *testing.T) {
	now := time.Date(2025, 3, 15, 10, 0, 0, 0, time.UTC)
	got := Trend(nil, now)

	if len(got) != 12 {
		t.Fatalf("expected 12 entries, got %d", len(got))
	}
	if got[0].Label != "Apr 2024" {
		t.Fatalf("oldest entry = %q, want Apr 2024", got[0].Label)
	}
	if got[11].Label != "Mar 2025" {
		t.Fatalf("newest entry = %q, want Mar 2025", got[11].Label)
	}
	for i, p := range got {
		if !p.Income.IsZero() || !p.Expense.IsZero() || !p.Balance.IsZero() {
			t.Fatalf("entry %d should be all zero: %+v", i, p)
		}
	}
	// Strictly increasing month sequence across the year boundary.
	for i := 1; i < len(got); i++ {
		prev := time.Date(got[i-1].Year, time.Month(got[i-1].Month), 1, 0, 0, 0, 0, time.UTC)
		cur := time.Date(got[i].Year, time.Month(got[i].Month), 1, 0, 0, 0, 0, time.UTC)
		if !cur.After(prev) {
			t.Fatalf("series not oldest-first at index %d: %v then %v", i, prev, cur)
		}
	}
}

func TestTrendBuckets(t *testing.T) {
	now := time.Date(2025, 6, 20, 0, 0, 0, 0, time.UTC)
	txs := []core.Transaction{
		{Amount: d("1000"), Type: core.Income, Account: "salary", Date: time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)},
		{Amount: d("250.50"), Type: core.Expense, Account: "cash", Date: time.Date(2025, 6, 10, 0, 0, 0, 0, time.UTC)},
		{Amount: d("80"), Type: core.Expense, Account: "cash", Date: time.Date(2024, 12, 31, 0, 0, 0, 0, time.UTC)},
		// Older than the window: ignored.
		{Amount: d("9999"), Type: core.Expense, Account: "cash", Date: time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)},
	}

	got := Trend(txs, now)
	last := got[11]
	if !last.Income.Equal(d("1000")) || !last.Expense.Equal(d("250.50")) {
		t.Fatalf("current month bucket wrong: %+v", last)
	}
	if !last.Balance.Equal(d("749.50")) {
		t.Fatalf("balance = %s, want 749.50", last.Balance)
	}

	var december TrendPoint
	for _, p := range got {
		if p.Month == 12 && p.Year == 2024 {
			december = p
		}
	}
	if !december.Expense.Equal(d("80")) {
		t.Fatalf("december bucket wrong: %+v", december)
	}

	// balance == income - expense for every entry
	for i, p := range got {
		if !p.Balance.Equal(p.Income.Sub(p.Expense)) {
			t.Fatalf("entry %d violates balance law: %+v", i, p)
		}
	}
}
