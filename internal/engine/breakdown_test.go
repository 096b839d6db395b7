package engine

import (
	"testing"
	"time"

	"bilancio/internal/core"

	"github.com/shopspring/decimal"
)

func TestBreakdownUncategorizedLast(t *testing.T) {
	categories := []core.Category{{ID: 1, Name: "A", Color: "#f00"}}
	txs := []core.Transaction{
		expenseTx(0, "500", 3), // no category
		expenseTx(1, "300", 4),
	}

	got := Breakdown(txs, categories, june)
	if len(got) != 2 {
		t.Fatalf("expected 2 slices, got %d", len(got))
	}
	if got[0].Name != "A" || !got[0].Value.Equal(d("300")) {
		t.Fatalf("first slice = %+v", got[0])
	}
	if got[1].Name != Uncategorized || !got[1].Value.Equal(d("500")) {
		t.Fatalf("uncategorized slice = %+v", got[1])
	}
}

func TestBreakdownTotalsMatchExpenses(t *testing.T) {
	categories := []core.Category{
		{ID: 1, Name: "Groceries"},
		{ID: 2, Name: "Transport"},
	}
	txs := []core.Transaction{
		expenseTx(1, "10.01", 1),
		expenseTx(1, "0.99", 2),
		expenseTx(2, "33.33", 3),
		expenseTx(7, "5.55", 4), // dangling category reference
		expenseTx(0, "1.11", 5),
		// Income never appears in the breakdown.
		{UserID: 1, Amount: d("800"), Type: core.Income, Account: "salary", Date: time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)},
	}

	got := Breakdown(txs, categories, june)

	sum := decimal.Zero
	for _, s := range got {
		sum = sum.Add(s.Value)
	}
	expense := decimal.Zero
	for _, tx := range txs {
		if tx.Type == core.Expense && june.Contains(tx.Date) {
			expense = expense.Add(tx.Amount)
		}
	}
	if !sum.Equal(expense) {
		t.Fatalf("breakdown sums to %s, expenses sum to %s", sum, expense)
	}
}

func TestBreakdownSortedDescending(t *testing.T) {
	categories := []core.Category{
		{ID: 1, Name: "B"},
		{ID: 2, Name: "A"},
		{ID: 3, Name: "C"},
	}
	txs := []core.Transaction{
		expenseTx(1, "10", 1),
		expenseTx(2, "10", 2), // tie with B, name breaks it
		expenseTx(3, "40", 3),
	}

	got := Breakdown(txs, categories, june)
	want := []string{"C", "A", "B"}
	for i, name := range want {
		if got[i].Name != name {
			t.Fatalf("slice %d = %q, want %q (full: %+v)", i, got[i].Name, name, got)
		}
	}
}

func TestBreakdownDanglingRefIsUncategorized(t *testing.T) {
	// Category 9 was deleted between load and render: its spend must
	// fold into the uncategorized bucket, never error out.
	txs := []core.Transaction{expenseTx(9, "42", 1)}
	got := Breakdown(txs, nil, june)
	if len(got) != 1 || got[0].Name != Uncategorized || !got[0].Value.Equal(d("42")) {
		t.Fatalf("got %+v", got)
	}
}

func TestBreakdownEmpty(t *testing.T) {
	if got := Breakdown(nil, nil, june); len(got) != 0 {
		t.Fatalf("expected empty breakdown, got %+v", got)
	}
}
