package amqp

import (
	"encoding/json"
	"time"
)

type EventType string

const (
	EventExpenseCreated   EventType = "expense.created"
	EventExpenseUpdated   EventType = "expense.updated"
	EventExpenseDeleted   EventType = "expense.deleted"
	EventExpensesImported EventType = "expenses.imported"
	EventExpensesCleared  EventType = "expenses.cleared"
)

// ExpenseEvent announces a change to the stored expense collection.
// Consumers re-read the store; the event carries no record body.
type ExpenseEvent struct {
	Type      EventType `json:"type"`
	ExpenseID string    `json:"expenseId,omitempty"`
	Count     int       `json:"count,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

func NewExpenseEvent(typ EventType, expenseID string, count int) *ExpenseEvent {
	return &ExpenseEvent{
		Type:      typ,
		ExpenseID: expenseID,
		Count:     count,
		Timestamp: time.Now().UTC(),
	}
}

func (e *ExpenseEvent) ToJSON() ([]byte, error) {
	return json.Marshal(e)
}

func ExpenseEventFromJSON(data []byte) (*ExpenseEvent, error) {
	var ev ExpenseEvent
	if err := json.Unmarshal(data, &ev); err != nil {
		return nil, err
	}
	return &ev, nil
}
