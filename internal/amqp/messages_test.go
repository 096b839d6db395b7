package amqp

import (
	"testing"
	"time"
)

func TestBudgetAlertEventJSON(t *testing.T) {
	ev := NewBudgetAlertEvent(1, 3, "Groceries", "over_budget", "5200", "5000", 6, 2025)
	if ev.Timestamp.IsZero() {
		t.Fatalf("expected timestamp to be set")
	}

	body, err := ev.ToJSON()
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}

	got, err := BudgetAlertEventFromJSON(body)
	if err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if got.CategoryName != "Groceries" || got.Level != "over_budget" || got.Spent != "5200" {
		t.Fatalf("round trip mismatch: %+v", got)
	}
	if got.Month != 6 || got.Year != 2025 {
		t.Fatalf("period mismatch: %+v", got)
	}
	if !got.Timestamp.Truncate(time.Second).Equal(ev.Timestamp.Truncate(time.Second)) {
		t.Fatalf("timestamp mismatch: %v vs %v", got.Timestamp, ev.Timestamp)
	}
}

func TestBudgetAlertEventFromJSONInvalid(t *testing.T) {
	if _, err := BudgetAlertEventFromJSON([]byte("not json")); err == nil {
		t.Fatalf("expected error for malformed payload")
	}
}
