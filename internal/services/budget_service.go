package services

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"bilancio/internal/core"
	"bilancio/internal/storage"
)

// BudgetService implements the upsert-by-lookup semantics for budget
// limits. The store has no uniqueness constraint on (user, category,
// month, year); instead every upsert for the same period key runs
// under a dedicated mutex, so serialized and concurrent callers alike
// end up with exactly one row per period.
type BudgetService struct {
	store      BudgetStore
	categories CategoryStore

	mapMu sync.Mutex
	locks map[string]*sync.Mutex
}

func NewBudgetService(store BudgetStore, categories CategoryStore) *BudgetService {
	return &BudgetService{
		store:      store,
		categories: categories,
		locks:      make(map[string]*sync.Mutex),
	}
}

func (s *BudgetService) lockFor(key string) *sync.Mutex {
	s.mapMu.Lock()
	defer s.mapMu.Unlock()

	if _, exists := s.locks[key]; !exists {
		s.locks[key] = &sync.Mutex{}
	}
	return s.locks[key]
}

// Upsert sets the spending limit for one category and period. An
// existing row is updated in place (same id, last write wins); a
// missing one is inserted. Budgets only apply to expense categories.
func (s *BudgetService) Upsert(ctx context.Context, b core.Budget) (core.Budget, error) {
	if err := b.Validate(); err != nil {
		return core.Budget{}, invalid(err)
	}

	cat, err := s.categories.GetCategory(ctx, b.UserID, b.CategoryID)
	if errors.Is(err, storage.ErrNotFound) {
		return core.Budget{}, invalid(core.ErrMissingCategory)
	}
	if err != nil {
		return core.Budget{}, fmt.Errorf("load category: %w", err)
	}
	if cat.IsIncome {
		return core.Budget{}, invalid(errors.New("budget requires an expense category"))
	}

	key := fmt.Sprintf("%d:%d:%d:%d", b.UserID, b.CategoryID, b.Month, b.Year)
	lock := s.lockFor(key)
	lock.Lock()
	defer lock.Unlock()

	period := core.Period{Month: b.Month, Year: b.Year}
	existing, err := s.store.FindBudget(ctx, b.UserID, b.CategoryID, period)
	if err == nil {
		if err := s.store.UpdateBudgetAmount(ctx, existing.ID, b.Amount); err != nil {
			return core.Budget{}, fmt.Errorf("update budget: %w", err)
		}
		existing.Amount = b.Amount
		return existing, nil
	}
	if !errors.Is(err, storage.ErrNotFound) {
		return core.Budget{}, fmt.Errorf("find budget: %w", err)
	}

	created, err := s.store.CreateBudget(ctx, b)
	if err != nil {
		return core.Budget{}, fmt.Errorf("create budget: %w", err)
	}
	return created, nil
}

func (s *BudgetService) ListForPeriod(ctx context.Context, userID int64, period core.Period) ([]core.Budget, error) {
	if err := period.Validate(); err != nil {
		return nil, invalid(err)
	}
	budgets, err := s.store.ListBudgetsForPeriod(ctx, userID, period)
	if err != nil {
		return nil, fmt.Errorf("list budgets: %w", err)
	}
	return budgets, nil
}
