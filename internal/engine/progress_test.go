package engine

import (
	"testing"
	"time"

	"bilancio/internal/core"
)

var june = core.Period{Month: 6, Year: 2025}

func expenseTx(categoryID int64, amount string, day int) core.Transaction {
	return core.Transaction{
		UserID:     1,
		Amount:     d(amount),
		Type:       core.Expense,
		CategoryID: categoryID,
		Account:    "cash",
		Date:       time.Date(2025, 6, day, 0, 0, 0, 0, time.UTC),
	}
}

func TestProgress(t *testing.T) {
	categories := []core.Category{
		{ID: 1, Name: "Groceries"},
		{ID: 2, Name: "Transport"},
		{ID: 3, Name: "Hobbies"},
		{ID: 4, Name: "Salary", IsIncome: true},
	}
	budgets := []core.Budget{
		{ID: 10, CategoryID: 1, Amount: d("5000"), Month: 6, Year: 2025},
		{ID: 11, CategoryID: 2, Amount: d("300"), Month: 6, Year: 2025},
		{ID: 12, CategoryID: 3, Amount: d("100"), Month: 5, Year: 2025}, // other period
	}
	txs := []core.Transaction{
		expenseTx(1, "4200", 5),
		expenseTx(2, "450", 8),
		expenseTx(1, "100", 2), // outside period below
		{UserID: 1, Amount: d("999"), Type: core.Income, CategoryID: 4, Account: "salary", Date: time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)},
	}
	txs[2].Date = time.Date(2025, 5, 2, 0, 0, 0, 0, time.UTC)

	got := Progress(txs, budgets, categories, june)
	if len(got) != 2 {
		t.Fatalf("expected 2 categories, got %d: %+v", len(got), got)
	}

	groceries := got[0]
	if groceries.Name != "Groceries" {
		t.Fatalf("expected registry order, got %q first", groceries.Name)
	}
	if !groceries.Spent.Equal(d("4200")) {
		t.Fatalf("groceries spent = %s", groceries.Spent)
	}
	if !groceries.Percentage.Equal(d("84")) {
		t.Fatalf("groceries percentage = %s", groceries.Percentage)
	}
	if !groceries.Alert.NearLimit || groceries.Alert.OverBudget {
		t.Fatalf("groceries alert = %+v", groceries.Alert)
	}

	transport := got[1]
	if !transport.Alert.OverBudget {
		t.Fatalf("transport should be over budget: %+v", transport)
	}
	if !transport.Percentage.Equal(d("100")) {
		t.Fatalf("percentage must cap at 100, got %s", transport.Percentage)
	}
}

func TestProgressInclusionRule(t *testing.T) {
	categories := []core.Category{
		{ID: 1, Name: "Limited"},
		{ID: 2, Name: "SpentOnly"},
		{ID: 3, Name: "Idle"},
	}
	budgets := []core.Budget{
		{ID: 10, CategoryID: 1, Amount: d("100"), Month: 6, Year: 2025},
	}
	txs := []core.Transaction{expenseTx(2, "50", 3)}

	got := Progress(txs, budgets, categories, june)
	if len(got) != 2 {
		t.Fatalf("expected limit-only and spend-only categories, got %d", len(got))
	}
	// A category with spend but no budget carries a zero limit and no
	// percentage rather than an error.
	spentOnly := got[1]
	if !spentOnly.Limit.IsZero() || !spentOnly.Percentage.IsZero() {
		t.Fatalf("spend-only category: %+v", spentOnly)
	}
	if spentOnly.Alert.NearLimit || spentOnly.Alert.OverBudget {
		t.Fatalf("no limit means no alert: %+v", spentOnly.Alert)
	}
}

func TestSpentInPeriod(t *testing.T) {
	txs := []core.Transaction{
		expenseTx(1, "10.10", 1),
		expenseTx(1, "20.20", 15),
		expenseTx(2, "99", 15),
		{UserID: 1, Amount: d("500"), Type: core.Income, CategoryID: 1, Account: "salary", Date: time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)},
	}
	got := SpentInPeriod(txs, 1, june)
	if !got.Equal(d("30.30")) {
		t.Fatalf("spent = %s, want 30.30", got)
	}
	if !SpentInPeriod(txs, 99, june).IsZero() {
		t.Fatalf("unknown category should sum to zero")
	}
}
