package http

import (
	"bilancio/internal/core"
	"bilancio/internal/engine"
	"bilancio/internal/services"
)

// View types shape the JSON surface. Amounts render as fixed
// two-decimal strings; nothing upstream ever rounds.

type transactionView struct {
	ID             int64  `json:"id"`
	Amount         string `json:"amount"`
	Type           string `json:"type"`
	CategoryID     int64  `json:"category_id,omitempty"`
	FamilyMemberID int64  `json:"family_member_id,omitempty"`
	Merchant       string `json:"merchant,omitempty"`
	Account        string `json:"account"`
	Date           string `json:"date"`
	LinkedType     string `json:"linked_type,omitempty"`
	LinkedID       int64  `json:"linked_id,omitempty"`
}

func toTransactionView(tx core.Transaction) transactionView {
	return transactionView{
		ID:             tx.ID,
		Amount:         tx.Amount.StringFixed(2),
		Type:           string(tx.Type),
		CategoryID:     tx.CategoryID,
		FamilyMemberID: tx.FamilyMemberID,
		Merchant:       tx.Merchant,
		Account:        tx.Account,
		Date:           tx.Date.Format("2006-01-02"),
		LinkedType:     string(tx.LinkedType),
		LinkedID:       tx.LinkedID,
	}
}

func toTransactionViews(txs []core.Transaction) []transactionView {
	out := make([]transactionView, 0, len(txs))
	for _, tx := range txs {
		out = append(out, toTransactionView(tx))
	}
	return out
}

type categoryView struct {
	ID       int64  `json:"id"`
	Name     string `json:"name"`
	IsIncome bool   `json:"is_income"`
	Color    string `json:"color,omitempty"`
	Icon     string `json:"icon,omitempty"`
}

func toCategoryView(c core.Category) categoryView {
	return categoryView{ID: c.ID, Name: c.Name, IsIncome: c.IsIncome, Color: c.Color, Icon: c.Icon}
}

type budgetView struct {
	ID         int64  `json:"id"`
	CategoryID int64  `json:"category_id"`
	Amount     string `json:"amount"`
	Month      int    `json:"month"`
	Year       int    `json:"year"`
}

func toBudgetView(b core.Budget) budgetView {
	return budgetView{ID: b.ID, CategoryID: b.CategoryID, Amount: b.Amount.StringFixed(2), Month: b.Month, Year: b.Year}
}

type familyMemberView struct {
	ID           int64  `json:"id"`
	Name         string `json:"name"`
	Relationship string `json:"relationship,omitempty"`
}

type alertView struct {
	CategoryID   int64  `json:"category_id"`
	CategoryName string `json:"category_name"`
	Level        string `json:"level"`
	Spent        string `json:"spent"`
	Limit        string `json:"limit"`
}

func toAlertView(a services.InlineAlert) alertView {
	return alertView{
		CategoryID:   a.CategoryID,
		CategoryName: a.CategoryName,
		Level:        a.Level,
		Spent:        a.Spent.StringFixed(2),
		Limit:        a.Limit.StringFixed(2),
	}
}

type progressView struct {
	CategoryID int64  `json:"category_id"`
	Name       string `json:"name"`
	Color      string `json:"color,omitempty"`
	Icon       string `json:"icon,omitempty"`
	Spent      string `json:"spent"`
	Limit      string `json:"limit"`
	Percentage string `json:"percentage"`
	Level      string `json:"level,omitempty"`
}

func toProgressViews(progress []engine.CategoryProgress) []progressView {
	out := make([]progressView, 0, len(progress))
	for _, p := range progress {
		out = append(out, progressView{
			CategoryID: p.CategoryID,
			Name:       p.Name,
			Color:      p.Color,
			Icon:       p.Icon,
			Spent:      p.Spent.StringFixed(2),
			Limit:      p.Limit.StringFixed(2),
			Percentage: p.Percentage.StringFixed(1),
			Level:      p.Alert.Level(),
		})
	}
	return out
}

type trendView struct {
	Label   string `json:"label"`
	Month   int    `json:"month"`
	Year    int    `json:"year"`
	Income  string `json:"income"`
	Expense string `json:"expense"`
	Balance string `json:"balance"`
}

func toTrendViews(trend []engine.TrendPoint) []trendView {
	out := make([]trendView, 0, len(trend))
	for _, p := range trend {
		out = append(out, trendView{
			Label:   p.Label,
			Month:   p.Month,
			Year:    p.Year,
			Income:  p.Income.StringFixed(2),
			Expense: p.Expense.StringFixed(2),
			Balance: p.Balance.StringFixed(2),
		})
	}
	return out
}

type breakdownView struct {
	Name  string `json:"name"`
	Value string `json:"value"`
	Color string `json:"color,omitempty"`
}

func toBreakdownViews(slices []engine.BreakdownSlice) []breakdownView {
	out := make([]breakdownView, 0, len(slices))
	for _, s := range slices {
		out = append(out, breakdownView{Name: s.Name, Value: s.Value.StringFixed(2), Color: s.Color})
	}
	return out
}

type entityRollupView struct {
	Type  string `json:"type"`
	Count int    `json:"count"`
	Total string `json:"total"`
}

type memberRollupView struct {
	MemberID int64  `json:"member_id"`
	Name     string `json:"name"`
	Count    int    `json:"count"`
	Total    string `json:"total"`
}

func toEntityRollupViews(rollups []engine.EntityRollup) []entityRollupView {
	out := make([]entityRollupView, 0, len(rollups))
	for _, r := range rollups {
		out = append(out, entityRollupView{Type: string(r.Type), Count: r.Count, Total: r.Total.StringFixed(2)})
	}
	return out
}

func toMemberRollupViews(rollups []engine.MemberRollup) []memberRollupView {
	out := make([]memberRollupView, 0, len(rollups))
	for _, r := range rollups {
		out = append(out, memberRollupView{MemberID: r.MemberID, Name: r.Name, Count: r.Count, Total: r.Total.StringFixed(2)})
	}
	return out
}

type notificationView struct {
	ID         int64  `json:"id"`
	CategoryID int64  `json:"category_id,omitempty"`
	Level      string `json:"level"`
	Message    string `json:"message"`
	Spent      string `json:"spent"`
	Limit      string `json:"limit"`
	Month      int    `json:"month"`
	Year       int    `json:"year"`
	Read       bool   `json:"read"`
	CreatedAt  string `json:"created_at"`
}

func toNotificationViews(ns []core.Notification) []notificationView {
	out := make([]notificationView, 0, len(ns))
	for _, n := range ns {
		out = append(out, notificationView{
			ID:         n.ID,
			CategoryID: n.CategoryID,
			Level:      n.Level,
			Message:    n.Message,
			Spent:      n.Spent.StringFixed(2),
			Limit:      n.Limit.StringFixed(2),
			Month:      n.Month,
			Year:       n.Year,
			Read:       n.Read,
			CreatedAt:  n.CreatedAt.UTC().Format("2006-01-02T15:04:05Z07:00"),
		})
	}
	return out
}

type overviewView struct {
	Month     int                `json:"month"`
	Year      int                `json:"year"`
	Progress  []progressView     `json:"progress"`
	Trend     []trendView        `json:"trend"`
	Breakdown []breakdownView    `json:"breakdown"`
	Entities  []entityRollupView `json:"entities"`
	Family    []memberRollupView `json:"family"`
}

func toOverviewView(ov services.Overview) overviewView {
	return overviewView{
		Month:     ov.Period.Month,
		Year:      ov.Period.Year,
		Progress:  toProgressViews(ov.Progress),
		Trend:     toTrendViews(ov.Trend),
		Breakdown: toBreakdownViews(ov.Breakdown),
		Entities:  toEntityRollupViews(ov.Entities),
		Family:    toMemberRollupViews(ov.Family),
	}
}
