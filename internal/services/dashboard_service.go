package services

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"bilancio/internal/cache"
	"bilancio/internal/core"
	"bilancio/internal/engine"

	"golang.org/x/sync/singleflight"
)

// Overview bundles every aggregate the dashboard renders for one
// period. It is an immutable snapshot: recomputed from a fresh store
// read, never patched in place.
type Overview struct {
	Period    core.Period
	Progress  []engine.CategoryProgress
	Trend     []engine.TrendPoint
	Breakdown []engine.BreakdownSlice
	Entities  []engine.EntityRollup
	Family    []engine.MemberRollup
}

// DashboardService loads snapshots from the store and runs the
// aggregation engine over them. Results are cached per (user, period)
// and concurrent recomputes for the same key are collapsed.
type DashboardService struct {
	ledger     LedgerStore
	budgets    BudgetStore
	categories CategoryStore
	family     FamilyStore

	overviews *cache.LRUCache[Overview]
	group     singleflight.Group
	now       func() time.Time
}

func NewDashboardService(ledger LedgerStore, budgets BudgetStore, categories CategoryStore, family FamilyStore, cacheTTL time.Duration) *DashboardService {
	if cacheTTL <= 0 {
		cacheTTL = 5 * time.Minute
	}
	return &DashboardService{
		ledger:     ledger,
		budgets:    budgets,
		categories: categories,
		family:     family,
		overviews:  cache.NewLRUCache[Overview](256, cacheTTL),
		now:        time.Now,
	}
}

// Overview returns the full aggregate set for one user and period.
func (s *DashboardService) Overview(ctx context.Context, userID int64, period core.Period) (Overview, error) {
	if err := period.Validate(); err != nil {
		return Overview{}, invalid(err)
	}

	key := overviewKey(userID, period)
	if ov, ok := s.overviews.Get(key); ok {
		return ov, nil
	}

	v, err, _ := s.group.Do(key, func() (interface{}, error) {
		ov, err := s.build(ctx, userID, period)
		if err != nil {
			return nil, err
		}
		s.overviews.Set(key, ov)
		return ov, nil
	})
	if err != nil {
		return Overview{}, err
	}
	return v.(Overview), nil
}

// Alerts returns the batch threshold classification feeding the
// persistent alerts banner.
func (s *DashboardService) Alerts(ctx context.Context, userID int64, period core.Period) ([]InlineAlert, error) {
	ov, err := s.Overview(ctx, userID, period)
	if err != nil {
		return nil, err
	}

	var alerts []InlineAlert
	for _, p := range ov.Progress {
		level := p.Alert.Level()
		if level == "" {
			continue
		}
		alerts = append(alerts, InlineAlert{
			CategoryID:   p.CategoryID,
			CategoryName: p.Name,
			Level:        level,
			Spent:        p.Spent,
			Limit:        p.Limit,
		})
	}
	return alerts, nil
}

// Invalidate drops every cached overview of the user. Called after
// each confirmed write; aggregates are only ever rebuilt from a fresh
// reload.
func (s *DashboardService) Invalidate(userID int64) {
	s.overviews.DeletePrefix("u" + strconv.FormatInt(userID, 10) + ":")
}

func (s *DashboardService) build(ctx context.Context, userID int64, period core.Period) (Overview, error) {
	categories, err := s.categories.ListCategories(ctx, userID)
	if err != nil {
		return Overview{}, fmt.Errorf("load categories: %w", err)
	}
	budgets, err := s.budgets.ListBudgetsForPeriod(ctx, userID, period)
	if err != nil {
		return Overview{}, fmt.Errorf("load budgets: %w", err)
	}
	members, err := s.family.ListFamilyMembers(ctx, userID)
	if err != nil {
		return Overview{}, fmt.Errorf("load family members: %w", err)
	}

	// One window covers both the trend (12 months back from now) and
	// the requested period, which is usually inside it anyway.
	now := s.now()
	from := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC).AddDate(0, -11, 0)
	if period.Start().Before(from) {
		from = period.Start()
	}
	to := core.PeriodOf(now).End().AddDate(0, 0, -1)
	if period.End().AddDate(0, 0, -1).After(to) {
		to = period.End().AddDate(0, 0, -1)
	}

	txs, err := s.ledger.ListTransactionsInRange(ctx, userID, from, to)
	if err != nil {
		return Overview{}, fmt.Errorf("load ledger window: %w", err)
	}

	return Overview{
		Period:    period,
		Progress:  engine.Progress(txs, budgets, categories, period),
		Trend:     engine.Trend(txs, now),
		Breakdown: engine.Breakdown(txs, categories, period),
		Entities:  engine.EntityRollups(txs),
		Family:    engine.FamilyRollups(txs, members),
	}, nil
}

func overviewKey(userID int64, period core.Period) string {
	return "u" + strconv.FormatInt(userID, 10) + ":" +
		strconv.Itoa(period.Year) + "-" + strconv.Itoa(period.Month)
}
