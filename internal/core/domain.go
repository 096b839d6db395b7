package core

import (
	"errors"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

const (
	Income  TransactionType = "income"
	Expense TransactionType = "expense"
)

const (
	EntityGoal    LinkedEntityType = "goal"
	EntityTask    LinkedEntityType = "task"
	EntityProject LinkedEntityType = "project"
	EntityNote    LinkedEntityType = "note"
	EntityHabit   LinkedEntityType = "habit"
)

// LinkedEntityTypes lists all entity types a transaction can link to,
// in the order rollups report them.
var LinkedEntityTypes = []LinkedEntityType{
	EntityGoal, EntityTask, EntityProject, EntityNote, EntityHabit,
}

type (
	TransactionType  string
	LinkedEntityType string

	// Period identifies a calendar month used to scope budgets and
	// current-spend calculations.
	Period struct {
		Month int // 1-12
		Year  int
	}

	// Transaction is a single ledger entry. Amount is always positive;
	// the direction of the cash flow is carried by Type alone.
	// CategoryID, FamilyMemberID and LinkedID are 0 when unset.
	Transaction struct {
		ID             int64
		UserID         int64
		Amount         decimal.Decimal
		Type           TransactionType
		CategoryID     int64
		FamilyMemberID int64
		Merchant       string
		Account        string
		Date           time.Time
		LinkedType     LinkedEntityType
		LinkedID       int64
	}

	// Category partitions transactions into income or expense buckets.
	// IsIncome is fixed at creation. Color and icon are opaque display
	// attributes.
	Category struct {
		ID       int64
		UserID   int64
		Name     string
		IsIncome bool
		Color    string
		Icon     string
	}

	// Budget is a per-category spending limit for one period.
	Budget struct {
		ID         int64
		UserID     int64
		CategoryID int64
		Amount     decimal.Decimal
		Month      int
		Year       int
	}

	FamilyMember struct {
		ID           int64
		UserID       int64
		Name         string
		Relationship string
	}

	// Notification is a persisted budget alert produced by the worker.
	Notification struct {
		ID         int64
		UserID     int64
		CategoryID int64
		Level      string
		Message    string
		Spent      decimal.Decimal
		Limit      decimal.Decimal
		Month      int
		Year       int
		Read       bool
		CreatedAt  time.Time
	}
)

var (
	ErrInvalidAmount     = errors.New("invalid amount")
	ErrInvalidType       = errors.New("invalid transaction type")
	ErrInvalidDate       = errors.New("invalid date")
	ErrInvalidPeriod     = errors.New("invalid period")
	ErrEmptyName         = errors.New("empty name")
	ErrEmptyAccount      = errors.New("empty account")
	ErrInvalidEntityType = errors.New("invalid linked entity type")
	ErrMissingEntityID   = errors.New("missing linked entity id")
	ErrMissingCategory   = errors.New("missing category")
)

func (t TransactionType) Valid() bool {
	return t == Income || t == Expense
}

func (e LinkedEntityType) Valid() bool {
	switch e {
	case EntityGoal, EntityTask, EntityProject, EntityNote, EntityHabit:
		return true
	default:
		return false
	}
}

// PeriodOf returns the period containing t.
func PeriodOf(t time.Time) Period {
	return Period{Month: int(t.Month()), Year: t.Year()}
}

func (p Period) Validate() error {
	if p.Month < 1 || p.Month > 12 {
		return ErrInvalidPeriod
	}
	if p.Year < 1970 || p.Year > 9999 {
		return ErrInvalidPeriod
	}
	return nil
}

// Start returns the first instant of the period in UTC.
func (p Period) Start() time.Time {
	return time.Date(p.Year, time.Month(p.Month), 1, 0, 0, 0, 0, time.UTC)
}

// End returns the first instant of the following period.
func (p Period) End() time.Time {
	return p.Start().AddDate(0, 1, 0)
}

// Contains reports whether t falls inside the period.
func (p Period) Contains(t time.Time) bool {
	return t.Year() == p.Year && int(t.Month()) == p.Month
}

func (t Transaction) Validate() error {
	if t.Amount.LessThanOrEqual(decimal.Zero) {
		return ErrInvalidAmount
	}
	if !t.Type.Valid() {
		return ErrInvalidType
	}
	if t.Date.IsZero() {
		return ErrInvalidDate
	}
	if strings.TrimSpace(t.Account) == "" {
		return ErrEmptyAccount
	}
	if t.LinkedType != "" {
		if !t.LinkedType.Valid() {
			return ErrInvalidEntityType
		}
		if t.LinkedID == 0 {
			return ErrMissingEntityID
		}
	}
	return nil
}

func (c Category) Validate() error {
	if strings.TrimSpace(c.Name) == "" {
		return ErrEmptyName
	}
	if len(c.Name) > 100 {
		return errors.New("name too long (max 100 characters)")
	}
	return nil
}

func (b Budget) Validate() error {
	if b.CategoryID == 0 {
		return ErrMissingCategory
	}
	if b.Amount.LessThanOrEqual(decimal.Zero) {
		return ErrInvalidAmount
	}
	return (Period{Month: b.Month, Year: b.Year}).Validate()
}

func (m FamilyMember) Validate() error {
	if strings.TrimSpace(m.Name) == "" {
		return ErrEmptyName
	}
	return nil
}
