package worker

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"bilancio/internal/amqp"
	"bilancio/internal/core"
	applog "bilancio/internal/log"
	"bilancio/internal/services"

	"github.com/shopspring/decimal"
)

// AlertWorker consumes budget alert events and turns them into
// persisted notifications.
type AlertWorker struct {
	store     services.NotificationStore
	retention time.Duration
}

func NewAlertWorker(store services.NotificationStore, retention time.Duration) *AlertWorker {
	return &AlertWorker{store: store, retention: retention}
}

// HandleAlert processes a single budget alert event. A returned error
// requeues the delivery, so only transient failures should surface.
func (w *AlertWorker) HandleAlert(ctx context.Context, ev *amqp.BudgetAlertEvent) error {
	slog.InfoContext(ctx, "Processing budget alert",
		applog.FieldUserID, ev.UserID,
		applog.FieldCategoryID, ev.CategoryID,
		applog.FieldAlertLevel, ev.Level)

	spent, err := decimal.NewFromString(ev.Spent)
	if err != nil {
		// Malformed amounts cannot be fixed by redelivery.
		slog.ErrorContext(ctx, "Dropping alert with bad spent amount",
			"spent", ev.Spent, applog.FieldError, err)
		return nil
	}
	limit, err := decimal.NewFromString(ev.Limit)
	if err != nil {
		slog.ErrorContext(ctx, "Dropping alert with bad limit amount",
			"limit", ev.Limit, applog.FieldError, err)
		return nil
	}

	n := core.Notification{
		UserID:     ev.UserID,
		CategoryID: ev.CategoryID,
		Level:      ev.Level,
		Message:    alertMessage(ev.CategoryName, ev.Level, spent, limit),
		Spent:      spent,
		Limit:      limit,
		Month:      ev.Month,
		Year:       ev.Year,
	}

	if _, err := w.store.InsertNotification(ctx, n); err != nil {
		return fmt.Errorf("insert notification: %w", err)
	}
	return nil
}

// PruneOld deletes notifications older than the retention window.
func (w *AlertWorker) PruneOld(ctx context.Context) error {
	cutoff := time.Now().Add(-w.retention)
	removed, err := w.store.DeleteNotificationsBefore(ctx, cutoff)
	if err != nil {
		return fmt.Errorf("prune notifications: %w", err)
	}
	if removed > 0 {
		slog.InfoContext(ctx, "Pruned old notifications", "removed", removed)
	}
	return nil
}

func alertMessage(category, level string, spent, limit decimal.Decimal) string {
	if category == "" {
		category = "Uncategorized"
	}
	switch level {
	case "over_budget":
		return fmt.Sprintf("%s is over budget: spent %s of %s", category, spent.StringFixed(2), limit.StringFixed(2))
	default:
		return fmt.Sprintf("%s is close to its limit: spent %s of %s", category, spent.StringFixed(2), limit.StringFixed(2))
	}
}
