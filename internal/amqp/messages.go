package amqp

import (
	"encoding/json"
	"time"
)

const (
	ActionCreated = "created"
	ActionUpdated = "updated"
	ActionDeleted = "deleted"
)

// ExpenseEvent notifies external consumers that an expense row changed.
// It carries ids only; consumers fetch the row if they need the details.
type ExpenseEvent struct {
	Action    string    `json:"action"`
	ExpenseID int64     `json:"expense_id"`
	UserID    int64     `json:"user_id"`
	Timestamp time.Time `json:"timestamp"`
}

func NewExpenseEvent(action string, expenseID, userID int64) *ExpenseEvent {
	return &ExpenseEvent{
		Action:    action,
		ExpenseID: expenseID,
		UserID:    userID,
		Timestamp: time.Now(),
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
