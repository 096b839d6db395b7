package amqp

import (
	"encoding/json"
	"time"
)

// BudgetAlertEvent is published when an expense pushes a category
// across a budget threshold. Amounts travel as decimal strings so the
// consumer never re-does float arithmetic.
type BudgetAlertEvent struct {
	UserID       int64     `json:"user_id"`
	CategoryID   int64     `json:"category_id"`
	CategoryName string    `json:"category_name"`
	Level        string    `json:"level"` // near_limit or over_budget
	Spent        string    `json:"spent"`
	Limit        string    `json:"limit"`
	Month        int       `json:"month"`
	Year         int       `json:"year"`
	Timestamp    time.Time `json:"timestamp"`
}

// NewBudgetAlertEvent stamps the event with the current time.
func NewBudgetAlertEvent(userID, categoryID int64, categoryName, level, spent, limit string, month, year int) *BudgetAlertEvent {
	return &BudgetAlertEvent{
		UserID:       userID,
		CategoryID:   categoryID,
		CategoryName: categoryName,
		Level:        level,
		Spent:        spent,
		Limit:        limit,
		Month:        month,
		Year:         year,
		Timestamp:    time.Now(),
	}
}

// ToJSON converts the event to JSON bytes
func (e *BudgetAlertEvent) ToJSON() ([]byte, error) {
	return json.Marshal(e)
}

// BudgetAlertEventFromJSON creates an event from JSON bytes
func BudgetAlertEventFromJSON(data []byte) (*BudgetAlertEvent, error) {
	var ev BudgetAlertEvent
	if err := json.Unmarshal(data, &ev); err != nil {
		return nil, err
	}
	return &ev, nil
}
