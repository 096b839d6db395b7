package services

import (
	"context"
	"time"

	"bilancio/internal/amqp"
	"bilancio/internal/core"

	"github.com/shopspring/decimal"
)

// Store interfaces mirror the SQLite repository so services can be
// tested against fakes. All reads and writes are scoped by user id.

type LedgerStore interface {
	CreateTransaction(ctx context.Context, tx core.Transaction) (core.Transaction, error)
	UpdateTransaction(ctx context.Context, tx core.Transaction) error
	DeleteTransaction(ctx context.Context, userID, id int64) error
	ListRecentTransactions(ctx context.Context, userID int64, limit int) ([]core.Transaction, error)
	ListTransactionsInRange(ctx context.Context, userID int64, from, to time.Time) ([]core.Transaction, error)
}

type CategoryStore interface {
	CreateCategory(ctx context.Context, c core.Category) (core.Category, error)
	ListCategories(ctx context.Context, userID int64) ([]core.Category, error)
	GetCategory(ctx context.Context, userID, id int64) (core.Category, error)
	DeleteCategory(ctx context.Context, userID, id int64) error
}

type BudgetStore interface {
	ListBudgetsForPeriod(ctx context.Context, userID int64, period core.Period) ([]core.Budget, error)
	FindBudget(ctx context.Context, userID, categoryID int64, period core.Period) (core.Budget, error)
	CreateBudget(ctx context.Context, b core.Budget) (core.Budget, error)
	UpdateBudgetAmount(ctx context.Context, id int64, amount decimal.Decimal) error
}

type FamilyStore interface {
	CreateFamilyMember(ctx context.Context, m core.FamilyMember) (core.FamilyMember, error)
	ListFamilyMembers(ctx context.Context, userID int64) ([]core.FamilyMember, error)
	DeleteFamilyMember(ctx context.Context, userID, id int64) error
}

type NotificationStore interface {
	InsertNotification(ctx context.Context, n core.Notification) (core.Notification, error)
	ListNotifications(ctx context.Context, userID int64, limit int) ([]core.Notification, error)
	MarkNotificationRead(ctx context.Context, userID, id int64) error
	DeleteNotificationsBefore(ctx context.Context, cutoff time.Time) (int64, error)
}

// AlertPublisher pushes budget alert events to the notification queue.
type AlertPublisher interface {
	PublishBudgetAlert(ctx context.Context, ev *amqp.BudgetAlertEvent) error
}
