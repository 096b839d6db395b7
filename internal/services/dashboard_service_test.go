package services

import (
	"context"
	"testing"
	"time"

	"bilancio/internal/core"
	"bilancio/internal/engine"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newDashboard(store *fakeStore, now time.Time) *DashboardService {
	return newDashboardTTL(store, now, 5*time.Minute)
}

func newDashboardTTL(store *fakeStore, now time.Time, ttl time.Duration) *DashboardService {
	svc := NewDashboardService(store, store, store, store, ttl)
	svc.now = func() time.Time { return now }
	return svc
}

func TestDashboardOverviewAggregates(t *testing.T) {
	store := newFakeStore()
	ctx := context.Background()
	now := time.Date(2025, 6, 20, 12, 0, 0, 0, time.UTC)

	groceries, err := store.CreateCategory(ctx, core.Category{UserID: 1, Name: "Groceries", Color: "#22c55e"})
	require.NoError(t, err)
	_, err = store.CreateBudget(ctx, core.Budget{
		UserID: 1, CategoryID: groceries.ID, Amount: amt("500"), Month: 6, Year: 2025,
	})
	require.NoError(t, err)
	member, err := store.CreateFamilyMember(ctx, core.FamilyMember{UserID: 1, Name: "Ana", Relationship: "partner"})
	require.NoError(t, err)

	tx := expenseOn(1, groceries.ID, "450", time.Date(2025, 6, 5, 0, 0, 0, 0, time.UTC))
	tx.FamilyMemberID = member.ID
	tx.LinkedType = core.EntityGoal
	tx.LinkedID = 42
	_, err = store.CreateTransaction(ctx, tx)
	require.NoError(t, err)

	// Uncategorized expense in the same period.
	_, err = store.CreateTransaction(ctx, expenseOn(1, 0, "50", time.Date(2025, 6, 6, 0, 0, 0, 0, time.UTC)))
	require.NoError(t, err)

	svc := newDashboard(store, now)
	ov, err := svc.Overview(ctx, 1, core.Period{Month: 6, Year: 2025})
	require.NoError(t, err)

	require.Len(t, ov.Progress, 1)
	assert.Equal(t, "Groceries", ov.Progress[0].Name)
	assert.True(t, ov.Progress[0].Alert.NearLimit, "450 of 500 is 90%%")

	require.Len(t, ov.Trend, 12)
	assert.Equal(t, "Jun 2025", ov.Trend[11].Label)
	assert.True(t, ov.Trend[11].Expense.Equal(amt("500")))

	require.Len(t, ov.Breakdown, 2)
	assert.Equal(t, "Groceries", ov.Breakdown[0].Name)
	assert.Equal(t, engine.Uncategorized, ov.Breakdown[1].Name)

	require.Len(t, ov.Entities, 5)
	assert.Equal(t, core.EntityGoal, ov.Entities[0].Type)
	assert.Equal(t, 1, ov.Entities[0].Count)

	require.Len(t, ov.Family, 1)
	assert.Equal(t, "Ana", ov.Family[0].Name)
	assert.True(t, ov.Family[0].Total.Equal(amt("450")))
}

func TestDashboardOverviewCachesUntilInvalidated(t *testing.T) {
	store := newFakeStore()
	ctx := context.Background()
	now := time.Date(2025, 6, 20, 12, 0, 0, 0, time.UTC)
	period := core.Period{Month: 6, Year: 2025}

	_, err := store.CreateTransaction(ctx, expenseOn(1, 0, "100", time.Date(2025, 6, 5, 0, 0, 0, 0, time.UTC)))
	require.NoError(t, err)

	svc := newDashboard(store, now)
	first, err := svc.Overview(ctx, 1, period)
	require.NoError(t, err)
	require.Len(t, first.Breakdown, 1)

	// A write behind the cache is not visible until invalidation.
	_, err = store.CreateTransaction(ctx, expenseOn(1, 0, "900", time.Date(2025, 6, 6, 0, 0, 0, 0, time.UTC)))
	require.NoError(t, err)

	cached, err := svc.Overview(ctx, 1, period)
	require.NoError(t, err)
	assert.True(t, cached.Breakdown[0].Value.Equal(amt("100")))

	svc.Invalidate(1)
	fresh, err := svc.Overview(ctx, 1, period)
	require.NoError(t, err)
	assert.True(t, fresh.Breakdown[0].Value.Equal(amt("1000")))
}

func TestDashboardConfiguredTTLExpiresCache(t *testing.T) {
	store := newFakeStore()
	ctx := context.Background()
	now := time.Date(2025, 6, 20, 12, 0, 0, 0, time.UTC)
	period := core.Period{Month: 6, Year: 2025}

	_, err := store.CreateTransaction(ctx, expenseOn(1, 0, "100", time.Date(2025, 6, 5, 0, 0, 0, 0, time.UTC)))
	require.NoError(t, err)

	svc := newDashboardTTL(store, now, 20*time.Millisecond)
	first, err := svc.Overview(ctx, 1, period)
	require.NoError(t, err)
	require.Len(t, first.Breakdown, 1)

	_, err = store.CreateTransaction(ctx, expenseOn(1, 0, "900", time.Date(2025, 6, 6, 0, 0, 0, 0, time.UTC)))
	require.NoError(t, err)

	// After the TTL elapses the next read rebuilds without an explicit
	// invalidation.
	time.Sleep(40 * time.Millisecond)
	fresh, err := svc.Overview(ctx, 1, period)
	require.NoError(t, err)
	assert.True(t, fresh.Breakdown[0].Value.Equal(amt("1000")))
}

func TestDashboardAlertsListsCrossedThresholdsOnly(t *testing.T) {
	store := newFakeStore()
	ctx := context.Background()
	now := time.Date(2025, 6, 20, 12, 0, 0, 0, time.UTC)

	calm, err := store.CreateCategory(ctx, core.Category{UserID: 1, Name: "Utilities"})
	require.NoError(t, err)
	hot, err := store.CreateCategory(ctx, core.Category{UserID: 1, Name: "Dining"})
	require.NoError(t, err)

	for _, b := range []core.Budget{
		{UserID: 1, CategoryID: calm.ID, Amount: amt("1000"), Month: 6, Year: 2025},
		{UserID: 1, CategoryID: hot.ID, Amount: amt("200"), Month: 6, Year: 2025},
	} {
		_, err := store.CreateBudget(ctx, b)
		require.NoError(t, err)
	}

	day := time.Date(2025, 6, 10, 0, 0, 0, 0, time.UTC)
	_, err = store.CreateTransaction(ctx, expenseOn(1, calm.ID, "100", day))
	require.NoError(t, err)
	_, err = store.CreateTransaction(ctx, expenseOn(1, hot.ID, "250", day))
	require.NoError(t, err)

	svc := newDashboard(store, now)
	alerts, err := svc.Alerts(ctx, 1, core.Period{Month: 6, Year: 2025})
	require.NoError(t, err)

	require.Len(t, alerts, 1)
	assert.Equal(t, "Dining", alerts[0].CategoryName)
	assert.Equal(t, engine.LevelOverBudget, alerts[0].Level)
}

func TestDashboardOverviewRejectsInvalidPeriod(t *testing.T) {
	svc := newDashboard(newFakeStore(), time.Now())
	_, err := svc.Overview(context.Background(), 1, core.Period{Month: 13, Year: 2025})
	assert.True(t, IsValidation(err))
}
