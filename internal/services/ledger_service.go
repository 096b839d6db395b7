package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"bilancio/internal/amqp"
	"bilancio/internal/core"
	"bilancio/internal/engine"
	applog "bilancio/internal/log"
	"bilancio/internal/storage"

	"github.com/shopspring/decimal"
)

// InlineAlert is the synchronous warning returned to the caller right
// after a committed expense crosses a budget threshold.
type InlineAlert struct {
	CategoryID   int64
	CategoryName string
	Level        string
	Spent        decimal.Decimal
	Limit        decimal.Decimal
}

// LedgerService owns the transaction write path: validate, write,
// reload the affected month from the store, classify with the
// post-write totals.
type LedgerService struct {
	store      LedgerStore
	budgets    BudgetStore
	categories CategoryStore
	publisher  AlertPublisher // optional, nil disables events
}

func NewLedgerService(store LedgerStore, budgets BudgetStore, categories CategoryStore, publisher AlertPublisher) *LedgerService {
	return &LedgerService{
		store:      store,
		budgets:    budgets,
		categories: categories,
		publisher:  publisher,
	}
}

// Record validates and persists a transaction, then runs the inline
// threshold check against the reloaded post-write totals. The alert is
// nil when no threshold is crossed. A failed write surfaces as an
// error and nothing is recomputed; a failed check after a successful
// write is logged and the transaction is still returned.
func (s *LedgerService) Record(ctx context.Context, tx core.Transaction) (core.Transaction, *InlineAlert, error) {
	if err := tx.Validate(); err != nil {
		return core.Transaction{}, nil, invalid(err)
	}

	created, err := s.store.CreateTransaction(ctx, tx)
	if err != nil {
		return core.Transaction{}, nil, fmt.Errorf("save transaction: %w", err)
	}

	alert, err := s.checkThreshold(ctx, created)
	if err != nil {
		slog.ErrorContext(ctx, "Inline threshold check failed",
			applog.FieldError, err,
			"transaction_id", created.ID,
			applog.FieldCategoryID, created.CategoryID)
		return created, nil, nil
	}

	return created, alert, nil
}

// Update replaces the full record. No inline alert: the banner is
// recomputed on the next dashboard read.
func (s *LedgerService) Update(ctx context.Context, tx core.Transaction) error {
	if err := tx.Validate(); err != nil {
		return invalid(err)
	}
	if err := s.store.UpdateTransaction(ctx, tx); err != nil {
		return fmt.Errorf("update transaction: %w", err)
	}
	return nil
}

func (s *LedgerService) Delete(ctx context.Context, userID, id int64) error {
	if err := s.store.DeleteTransaction(ctx, userID, id); err != nil {
		return fmt.Errorf("delete transaction: %w", err)
	}
	return nil
}

func (s *LedgerService) Recent(ctx context.Context, userID int64, limit int) ([]core.Transaction, error) {
	txs, err := s.store.ListRecentTransactions(ctx, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("load recent transactions: %w", err)
	}
	return txs, nil
}

// checkThreshold reloads the category's month and classifies spend
// against the period limit. Reload after write: the classification
// must see the committed total, not the pre-write one.
func (s *LedgerService) checkThreshold(ctx context.Context, tx core.Transaction) (*InlineAlert, error) {
	if tx.Type != core.Expense || tx.CategoryID == 0 {
		return nil, nil
	}

	period := core.PeriodOf(tx.Date)
	budget, err := s.budgets.FindBudget(ctx, tx.UserID, tx.CategoryID, period)
	if errors.Is(err, storage.ErrNotFound) {
		return nil, nil // no limit set, no alert possible
	}
	if err != nil {
		return nil, fmt.Errorf("find budget: %w", err)
	}

	txs, err := s.store.ListTransactionsInRange(ctx, tx.UserID, period.Start(), period.End().AddDate(0, 0, -1))
	if err != nil {
		return nil, fmt.Errorf("reload period: %w", err)
	}

	spent := engine.SpentInPeriod(txs, tx.CategoryID, period)
	level := engine.Classify(spent, budget.Amount).Level()
	if level == "" {
		return nil, nil
	}

	name := s.categoryName(ctx, tx.UserID, tx.CategoryID)
	alert := &InlineAlert{
		CategoryID:   tx.CategoryID,
		CategoryName: name,
		Level:        level,
		Spent:        spent,
		Limit:        budget.Amount,
	}

	s.publishAlert(ctx, tx.UserID, period, alert)
	return alert, nil
}

func (s *LedgerService) categoryName(ctx context.Context, userID, categoryID int64) string {
	c, err := s.categories.GetCategory(ctx, userID, categoryID)
	if err != nil {
		// Category deleted between write and check: the alert still
		// stands, only the label is missing.
		return engine.Uncategorized
	}
	return c.Name
}

func (s *LedgerService) publishAlert(ctx context.Context, userID int64, period core.Period, alert *InlineAlert) {
	if s.publisher == nil {
		return
	}
	ev := amqp.NewBudgetAlertEvent(
		userID, alert.CategoryID, alert.CategoryName, alert.Level,
		alert.Spent.String(), alert.Limit.String(), period.Month, period.Year)
	if err := s.publisher.PublishBudgetAlert(ctx, ev); err != nil {
		// The expense is committed either way; the banner recomputes
		// from storage on the next read.
		slog.ErrorContext(ctx, "Failed to publish budget alert",
			applog.FieldError, err,
			applog.FieldCategoryID, alert.CategoryID,
			applog.FieldAlertLevel, alert.Level)
	}
}
