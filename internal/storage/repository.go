package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"bilancio/internal/core"

	"github.com/shopspring/decimal"
	_ "modernc.org/sqlite"
)

const dateLayout = "2006-01-02"

// ErrNotFound is returned when a lookup matches no row.
var ErrNotFound = errors.New("not found")

type SQLiteRepository struct {
	db *sql.DB
}

func NewSQLiteRepository(dbPath string) (*SQLiteRepository, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := RunMigrations(dbPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &SQLiteRepository{db: db}, nil
}

func (r *SQLiteRepository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

// Ping checks database liveness, used by the readiness probe.
func (r *SQLiteRepository) Ping(ctx context.Context) error {
	return r.db.PingContext(ctx)
}

// --- transactions ---

func (r *SQLiteRepository) CreateTransaction(ctx context.Context, tx core.Transaction) (core.Transaction, error) {
	res, err := r.db.ExecContext(ctx, `
		INSERT INTO transactions (user_id, amount, type, category_id, family_member_id, merchant, account, tx_date, linked_type, linked_id)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		tx.UserID, tx.Amount.String(), string(tx.Type),
		nullID(tx.CategoryID), nullID(tx.FamilyMemberID),
		tx.Merchant, tx.Account, tx.Date.Format(dateLayout),
		nullString(string(tx.LinkedType)), nullID(tx.LinkedID))
	if err != nil {
		return core.Transaction{}, fmt.Errorf("create transaction: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return core.Transaction{}, fmt.Errorf("transaction insert id: %w", err)
	}
	tx.ID = id

	slog.InfoContext(ctx, "Transaction saved",
		"id", tx.ID,
		"user_id", tx.UserID,
		"type", tx.Type,
		"amount", tx.Amount.String(),
		"category_id", tx.CategoryID)

	return tx, nil
}

// UpdateTransaction replaces the full record; there is no partial
// patching of individual fields.
func (r *SQLiteRepository) UpdateTransaction(ctx context.Context, tx core.Transaction) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE transactions
		SET amount = ?, type = ?, category_id = ?, family_member_id = ?, merchant = ?, account = ?, tx_date = ?, linked_type = ?, linked_id = ?, updated_at = CURRENT_TIMESTAMP
		WHERE id = ? AND user_id = ?`,
		tx.Amount.String(), string(tx.Type),
		nullID(tx.CategoryID), nullID(tx.FamilyMemberID),
		tx.Merchant, tx.Account, tx.Date.Format(dateLayout),
		nullString(string(tx.LinkedType)), nullID(tx.LinkedID),
		tx.ID, tx.UserID)
	if err != nil {
		return fmt.Errorf("update transaction: %w", err)
	}
	return requireRow(res, "transaction")
}

func (r *SQLiteRepository) DeleteTransaction(ctx context.Context, userID, id int64) error {
	res, err := r.db.ExecContext(ctx,
		`DELETE FROM transactions WHERE id = ? AND user_id = ?`, id, userID)
	if err != nil {
		return fmt.Errorf("delete transaction: %w", err)
	}
	return requireRow(res, "transaction")
}

// ListRecentTransactions returns the newest transactions first,
// bounded by limit.
func (r *SQLiteRepository) ListRecentTransactions(ctx context.Context, userID int64, limit int) ([]core.Transaction, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, user_id, amount, type, category_id, family_member_id, merchant, account, tx_date, linked_type, linked_id
		FROM transactions
		WHERE user_id = ?
		ORDER BY tx_date DESC, id DESC
		LIMIT ?`, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("list recent transactions: %w", err)
	}
	defer rows.Close()
	return scanTransactions(rows)
}

// ListTransactionsInRange returns transactions with from <= date <= to,
// oldest first. Used to load trend windows and period slices.
func (r *SQLiteRepository) ListTransactionsInRange(ctx context.Context, userID int64, from, to time.Time) ([]core.Transaction, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, user_id, amount, type, category_id, family_member_id, merchant, account, tx_date, linked_type, linked_id
		FROM transactions
		WHERE user_id = ? AND tx_date >= ? AND tx_date <= ?
		ORDER BY tx_date ASC, id ASC`,
		userID, from.Format(dateLayout), to.Format(dateLayout))
	if err != nil {
		return nil, fmt.Errorf("list transactions in range: %w", err)
	}
	defer rows.Close()
	return scanTransactions(rows)
}

func scanTransactions(rows *sql.Rows) ([]core.Transaction, error) {
	var out []core.Transaction
	for rows.Next() {
		var (
			tx         core.Transaction
			amount     string
			txType     string
			categoryID sql.NullInt64
			memberID   sql.NullInt64
			date       string
			linkedType sql.NullString
			linkedID   sql.NullInt64
		)
		if err := rows.Scan(&tx.ID, &tx.UserID, &amount, &txType, &categoryID, &memberID,
			&tx.Merchant, &tx.Account, &date, &linkedType, &linkedID); err != nil {
			return nil, fmt.Errorf("scan transaction: %w", err)
		}
		parsed, err := decimal.NewFromString(amount)
		if err != nil {
			return nil, fmt.Errorf("parse stored amount %q: %w", amount, err)
		}
		when, err := time.ParseInLocation(dateLayout, date, time.UTC)
		if err != nil {
			return nil, fmt.Errorf("parse stored date %q: %w", date, err)
		}
		tx.Amount = parsed
		tx.Type = core.TransactionType(txType)
		tx.CategoryID = categoryID.Int64
		tx.FamilyMemberID = memberID.Int64
		tx.Date = when
		tx.LinkedType = core.LinkedEntityType(linkedType.String)
		tx.LinkedID = linkedID.Int64
		out = append(out, tx)
	}
	return out, rows.Err()
}

// --- categories ---

func (r *SQLiteRepository) CreateCategory(ctx context.Context, c core.Category) (core.Category, error) {
	res, err := r.db.ExecContext(ctx, `
		INSERT INTO categories (user_id, name, is_income, color, icon)
		VALUES (?, ?, ?, ?, ?)`,
		c.UserID, c.Name, c.IsIncome, c.Color, c.Icon)
	if err != nil {
		return core.Category{}, fmt.Errorf("create category: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return core.Category{}, fmt.Errorf("category insert id: %w", err)
	}
	c.ID = id
	return c, nil
}

func (r *SQLiteRepository) ListCategories(ctx context.Context, userID int64) ([]core.Category, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, user_id, name, is_income, color, icon
		FROM categories
		WHERE user_id = ?
		ORDER BY name ASC`, userID)
	if err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	defer rows.Close()

	var out []core.Category
	for rows.Next() {
		var c core.Category
		if err := rows.Scan(&c.ID, &c.UserID, &c.Name, &c.IsIncome, &c.Color, &c.Icon); err != nil {
			return nil, fmt.Errorf("scan category: %w", err)
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

func (r *SQLiteRepository) GetCategory(ctx context.Context, userID, id int64) (core.Category, error) {
	var c core.Category
	err := r.db.QueryRowContext(ctx, `
		SELECT id, user_id, name, is_income, color, icon
		FROM categories
		WHERE id = ? AND user_id = ?`, id, userID).
		Scan(&c.ID, &c.UserID, &c.Name, &c.IsIncome, &c.Color, &c.Icon)
	if errors.Is(err, sql.ErrNoRows) {
		return core.Category{}, ErrNotFound
	}
	if err != nil {
		return core.Category{}, fmt.Errorf("get category: %w", err)
	}
	return c, nil
}

// DeleteCategory removes the category only. Transactions keep their
// dangling category_id; aggregation treats them as uncategorized.
func (r *SQLiteRepository) DeleteCategory(ctx context.Context, userID, id int64) error {
	res, err := r.db.ExecContext(ctx,
		`DELETE FROM categories WHERE id = ? AND user_id = ?`, id, userID)
	if err != nil {
		return fmt.Errorf("delete category: %w", err)
	}
	return requireRow(res, "category")
}

// --- budgets ---

func (r *SQLiteRepository) ListBudgetsForPeriod(ctx context.Context, userID int64, period core.Period) ([]core.Budget, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, user_id, category_id, amount, month, year
		FROM budgets
		WHERE user_id = ? AND month = ? AND year = ?
		ORDER BY id ASC`, userID, period.Month, period.Year)
	if err != nil {
		return nil, fmt.Errorf("list budgets: %w", err)
	}
	defer rows.Close()

	var out []core.Budget
	for rows.Next() {
		b, err := scanBudget(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, b)
	}
	return out, rows.Err()
}

// FindBudget looks up the budget row for one category and period.
// Returns ErrNotFound when no limit is set.
func (r *SQLiteRepository) FindBudget(ctx context.Context, userID, categoryID int64, period core.Period) (core.Budget, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT id, user_id, category_id, amount, month, year
		FROM budgets
		WHERE user_id = ? AND category_id = ? AND month = ? AND year = ?
		ORDER BY id ASC
		LIMIT 1`, userID, categoryID, period.Month, period.Year)

	var (
		b      core.Budget
		amount string
	)
	err := row.Scan(&b.ID, &b.UserID, &b.CategoryID, &amount, &b.Month, &b.Year)
	if errors.Is(err, sql.ErrNoRows) {
		return core.Budget{}, ErrNotFound
	}
	if err != nil {
		return core.Budget{}, fmt.Errorf("find budget: %w", err)
	}
	b.Amount, err = decimal.NewFromString(amount)
	if err != nil {
		return core.Budget{}, fmt.Errorf("parse stored amount %q: %w", amount, err)
	}
	return b, nil
}

func (r *SQLiteRepository) CreateBudget(ctx context.Context, b core.Budget) (core.Budget, error) {
	res, err := r.db.ExecContext(ctx, `
		INSERT INTO budgets (user_id, category_id, amount, month, year)
		VALUES (?, ?, ?, ?, ?)`,
		b.UserID, b.CategoryID, b.Amount.String(), b.Month, b.Year)
	if err != nil {
		return core.Budget{}, fmt.Errorf("create budget: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return core.Budget{}, fmt.Errorf("budget insert id: %w", err)
	}
	b.ID = id

	slog.InfoContext(ctx, "Budget saved",
		"id", b.ID,
		"user_id", b.UserID,
		"category_id", b.CategoryID,
		"amount", b.Amount.String(),
		"month", b.Month,
		"year", b.Year)

	return b, nil
}

// UpdateBudgetAmount changes the limit of an existing budget row in
// place, keeping its id.
func (r *SQLiteRepository) UpdateBudgetAmount(ctx context.Context, id int64, amount decimal.Decimal) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE budgets SET amount = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?`,
		amount.String(), id)
	if err != nil {
		return fmt.Errorf("update budget amount: %w", err)
	}
	return requireRow(res, "budget")
}

func scanBudget(rows *sql.Rows) (core.Budget, error) {
	var (
		b      core.Budget
		amount string
	)
	if err := rows.Scan(&b.ID, &b.UserID, &b.CategoryID, &amount, &b.Month, &b.Year); err != nil {
		return core.Budget{}, fmt.Errorf("scan budget: %w", err)
	}
	parsed, err := decimal.NewFromString(amount)
	if err != nil {
		return core.Budget{}, fmt.Errorf("parse stored amount %q: %w", amount, err)
	}
	b.Amount = parsed
	return b, nil
}

// --- family members ---

func (r *SQLiteRepository) CreateFamilyMember(ctx context.Context, m core.FamilyMember) (core.FamilyMember, error) {
	res, err := r.db.ExecContext(ctx, `
		INSERT INTO family_members (user_id, name, relationship)
		VALUES (?, ?, ?)`, m.UserID, m.Name, m.Relationship)
	if err != nil {
		return core.FamilyMember{}, fmt.Errorf("create family member: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return core.FamilyMember{}, fmt.Errorf("family member insert id: %w", err)
	}
	m.ID = id
	return m, nil
}

func (r *SQLiteRepository) ListFamilyMembers(ctx context.Context, userID int64) ([]core.FamilyMember, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, user_id, name, relationship
		FROM family_members
		WHERE user_id = ?
		ORDER BY name ASC`, userID)
	if err != nil {
		return nil, fmt.Errorf("list family members: %w", err)
	}
	defer rows.Close()

	var out []core.FamilyMember
	for rows.Next() {
		var m core.FamilyMember
		if err := rows.Scan(&m.ID, &m.UserID, &m.Name, &m.Relationship); err != nil {
			return nil, fmt.Errorf("scan family member: %w", err)
		}
		out = append(out, m)
	}
	return out, rows.Err()
}

func (r *SQLiteRepository) DeleteFamilyMember(ctx context.Context, userID, id int64) error {
	res, err := r.db.ExecContext(ctx,
		`DELETE FROM family_members WHERE id = ? AND user_id = ?`, id, userID)
	if err != nil {
		return fmt.Errorf("delete family member: %w", err)
	}
	return requireRow(res, "family member")
}

// --- notifications ---

func (r *SQLiteRepository) InsertNotification(ctx context.Context, n core.Notification) (core.Notification, error) {
	res, err := r.db.ExecContext(ctx, `
		INSERT INTO notifications (user_id, category_id, level, message, spent, limit_amount, month, year)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		n.UserID, n.CategoryID, n.Level, n.Message,
		n.Spent.String(), n.Limit.String(), n.Month, n.Year)
	if err != nil {
		return core.Notification{}, fmt.Errorf("insert notification: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return core.Notification{}, fmt.Errorf("notification insert id: %w", err)
	}
	n.ID = id
	return n, nil
}

func (r *SQLiteRepository) ListNotifications(ctx context.Context, userID int64, limit int) ([]core.Notification, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, user_id, category_id, level, message, spent, limit_amount, month, year, read, created_at
		FROM notifications
		WHERE user_id = ?
		ORDER BY created_at DESC, id DESC
		LIMIT ?`, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("list notifications: %w", err)
	}
	defer rows.Close()

	var out []core.Notification
	for rows.Next() {
		var (
			n            core.Notification
			spent, limit string
		)
		if err := rows.Scan(&n.ID, &n.UserID, &n.CategoryID, &n.Level, &n.Message,
			&spent, &limit, &n.Month, &n.Year, &n.Read, &n.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan notification: %w", err)
		}
		if n.Spent, err = decimal.NewFromString(spent); err != nil {
			return nil, fmt.Errorf("parse stored amount %q: %w", spent, err)
		}
		if n.Limit, err = decimal.NewFromString(limit); err != nil {
			return nil, fmt.Errorf("parse stored amount %q: %w", limit, err)
		}
		out = append(out, n)
	}
	return out, rows.Err()
}

func (r *SQLiteRepository) MarkNotificationRead(ctx context.Context, userID, id int64) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE notifications SET read = 1 WHERE id = ? AND user_id = ?`, id, userID)
	if err != nil {
		return fmt.Errorf("mark notification read: %w", err)
	}
	return requireRow(res, "notification")
}

// DeleteNotificationsBefore prunes old alerts; used by the worker's
// periodic cleanup.
func (r *SQLiteRepository) DeleteNotificationsBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	res, err := r.db.ExecContext(ctx,
		`DELETE FROM notifications WHERE created_at < ?`,
		cutoff.UTC().Format("2006-01-02 15:04:05"))
	if err != nil {
		return 0, fmt.Errorf("prune notifications: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("prune notifications rows: %w", err)
	}
	return n, nil
}

// --- helpers ---

func requireRow(res sql.Result, what string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("%s rows affected: %w", what, err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

func nullID(id int64) sql.NullInt64 {
	return sql.NullInt64{Int64: id, Valid: id != 0}
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
