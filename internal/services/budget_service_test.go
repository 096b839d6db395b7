package services

import (
	"context"
	"strconv"
	"sync"
	"testing"

	"bilancio/internal/core"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBudgetUpsertCreatesThenUpdatesSameRow(t *testing.T) {
	store := newFakeStore()
	ctx := context.Background()

	cat, err := store.CreateCategory(ctx, core.Category{UserID: 1, Name: "Groceries"})
	require.NoError(t, err)

	svc := NewBudgetService(store, store)

	first, err := svc.Upsert(ctx, core.Budget{
		UserID: 1, CategoryID: cat.ID, Amount: amt("400"), Month: 6, Year: 2025,
	})
	require.NoError(t, err)

	second, err := svc.Upsert(ctx, core.Budget{
		UserID: 1, CategoryID: cat.ID, Amount: amt("550"), Month: 6, Year: 2025,
	})
	require.NoError(t, err)

	assert.Equal(t, first.ID, second.ID, "upsert must update in place, not insert")
	assert.True(t, second.Amount.Equal(amt("550")))
	assert.Len(t, store.budgets, 1)
}

func TestBudgetUpsertRejectsUnknownAndIncomeCategories(t *testing.T) {
	store := newFakeStore()
	ctx := context.Background()

	salary, err := store.CreateCategory(ctx, core.Category{UserID: 1, Name: "Salary", IsIncome: true})
	require.NoError(t, err)

	svc := NewBudgetService(store, store)

	_, err = svc.Upsert(ctx, core.Budget{UserID: 1, CategoryID: 999, Amount: amt("100"), Month: 6, Year: 2025})
	assert.True(t, IsValidation(err), "unknown category: %v", err)

	_, err = svc.Upsert(ctx, core.Budget{UserID: 1, CategoryID: salary.ID, Amount: amt("100"), Month: 6, Year: 2025})
	assert.True(t, IsValidation(err), "income category: %v", err)
}

func TestBudgetUpsertConcurrentSameKeyYieldsOneRow(t *testing.T) {
	store := newFakeStore()
	ctx := context.Background()

	cat, err := store.CreateCategory(ctx, core.Category{UserID: 1, Name: "Transport"})
	require.NoError(t, err)

	svc := NewBudgetService(store, store)

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			_, err := svc.Upsert(ctx, core.Budget{
				UserID: 1, CategoryID: cat.ID,
				Amount: amt(strconv.Itoa(100 + n)),
				Month:  6, Year: 2025,
			})
			assert.NoError(t, err)
		}(i)
	}
	wg.Wait()

	require.Len(t, store.budgets, 1, "concurrent upserts on one key must not duplicate the row")
}

func TestBudgetUpsertDistinctPeriodsAreIndependent(t *testing.T) {
	store := newFakeStore()
	ctx := context.Background()

	cat, err := store.CreateCategory(ctx, core.Category{UserID: 1, Name: "Groceries"})
	require.NoError(t, err)

	svc := NewBudgetService(store, store)

	_, err = svc.Upsert(ctx, core.Budget{UserID: 1, CategoryID: cat.ID, Amount: amt("400"), Month: 6, Year: 2025})
	require.NoError(t, err)
	_, err = svc.Upsert(ctx, core.Budget{UserID: 1, CategoryID: cat.ID, Amount: amt("400"), Month: 7, Year: 2025})
	require.NoError(t, err)

	assert.Len(t, store.budgets, 2)
}
