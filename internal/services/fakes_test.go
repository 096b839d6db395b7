package services

import (
	"context"
	"sync"
	"time"

	"bilancio/internal/amqp"
	"bilancio/internal/core"
	"bilancio/internal/storage"

	"github.com/shopspring/decimal"
)

// fakeStore is an in-memory stand-in for the SQLite repository,
// implementing every store interface the services consume.
type fakeStore struct {
	mu     sync.Mutex
	nextID int64

	transactions []core.Transaction
	categories   []core.Category
	budgets      []core.Budget
	members      []core.FamilyMember
}

func newFakeStore() *fakeStore {
	return &fakeStore{nextID: 1}
}

func (f *fakeStore) id() int64 {
	id := f.nextID
	f.nextID++
	return id
}

func (f *fakeStore) CreateTransaction(_ context.Context, tx core.Transaction) (core.Transaction, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	tx.ID = f.id()
	f.transactions = append(f.transactions, tx)
	return tx, nil
}

func (f *fakeStore) UpdateTransaction(_ context.Context, tx core.Transaction) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i, existing := range f.transactions {
		if existing.ID == tx.ID && existing.UserID == tx.UserID {
			f.transactions[i] = tx
			return nil
		}
	}
	return storage.ErrNotFound
}

func (f *fakeStore) DeleteTransaction(_ context.Context, userID, id int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i, tx := range f.transactions {
		if tx.ID == id && tx.UserID == userID {
			f.transactions = append(f.transactions[:i], f.transactions[i+1:]...)
			return nil
		}
	}
	return storage.ErrNotFound
}

func (f *fakeStore) ListRecentTransactions(_ context.Context, userID int64, limit int) ([]core.Transaction, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []core.Transaction
	for i := len(f.transactions) - 1; i >= 0 && len(out) < limit; i-- {
		if f.transactions[i].UserID == userID {
			out = append(out, f.transactions[i])
		}
	}
	return out, nil
}

func (f *fakeStore) ListTransactionsInRange(_ context.Context, userID int64, from, to time.Time) ([]core.Transaction, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []core.Transaction
	for _, tx := range f.transactions {
		if tx.UserID != userID || tx.Date.Before(from) || tx.Date.After(to) {
			continue
		}
		out = append(out, tx)
	}
	return out, nil
}

func (f *fakeStore) CreateCategory(_ context.Context, c core.Category) (core.Category, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	c.ID = f.id()
	f.categories = append(f.categories, c)
	return c, nil
}

func (f *fakeStore) ListCategories(_ context.Context, userID int64) ([]core.Category, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []core.Category
	for _, c := range f.categories {
		if c.UserID == userID {
			out = append(out, c)
		}
	}
	return out, nil
}

func (f *fakeStore) GetCategory(_ context.Context, userID, id int64) (core.Category, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, c := range f.categories {
		if c.ID == id && c.UserID == userID {
			return c, nil
		}
	}
	return core.Category{}, storage.ErrNotFound
}

func (f *fakeStore) DeleteCategory(_ context.Context, userID, id int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i, c := range f.categories {
		if c.ID == id && c.UserID == userID {
			f.categories = append(f.categories[:i], f.categories[i+1:]...)
			return nil
		}
	}
	return storage.ErrNotFound
}

func (f *fakeStore) ListBudgetsForPeriod(_ context.Context, userID int64, period core.Period) ([]core.Budget, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []core.Budget
	for _, b := range f.budgets {
		if b.UserID == userID && b.Month == period.Month && b.Year == period.Year {
			out = append(out, b)
		}
	}
	return out, nil
}

func (f *fakeStore) FindBudget(_ context.Context, userID, categoryID int64, period core.Period) (core.Budget, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, b := range f.budgets {
		if b.UserID == userID && b.CategoryID == categoryID && b.Month == period.Month && b.Year == period.Year {
			return b, nil
		}
	}
	return core.Budget{}, storage.ErrNotFound
}

func (f *fakeStore) CreateBudget(_ context.Context, b core.Budget) (core.Budget, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	b.ID = f.id()
	f.budgets = append(f.budgets, b)
	return b, nil
}

func (f *fakeStore) UpdateBudgetAmount(_ context.Context, id int64, amount decimal.Decimal) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i, b := range f.budgets {
		if b.ID == id {
			f.budgets[i].Amount = amount
			return nil
		}
	}
	return storage.ErrNotFound
}

func (f *fakeStore) CreateFamilyMember(_ context.Context, m core.FamilyMember) (core.FamilyMember, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	m.ID = f.id()
	f.members = append(f.members, m)
	return m, nil
}

func (f *fakeStore) ListFamilyMembers(_ context.Context, userID int64) ([]core.FamilyMember, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []core.FamilyMember
	for _, m := range f.members {
		if m.UserID == userID {
			out = append(out, m)
		}
	}
	return out, nil
}

func (f *fakeStore) DeleteFamilyMember(_ context.Context, userID, id int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i, m := range f.members {
		if m.ID == id && m.UserID == userID {
			f.members = append(f.members[:i], f.members[i+1:]...)
			return nil
		}
	}
	return storage.ErrNotFound
}

// fakePublisher records published events instead of touching a broker.
type fakePublisher struct {
	mu     sync.Mutex
	events []*amqp.BudgetAlertEvent
	err    error
}

func (p *fakePublisher) PublishBudgetAlert(_ context.Context, ev *amqp.BudgetAlertEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.err != nil {
		return p.err
	}
	p.events = append(p.events, ev)
	return nil
}

func (p *fakePublisher) published() []*amqp.BudgetAlertEvent {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]*amqp.BudgetAlertEvent(nil), p.events...)
}

func amt(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return d
}
