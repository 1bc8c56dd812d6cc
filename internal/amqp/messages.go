package amqp

import (
	"encoding/json"
	"time"
)

const (
	EventExpenseCreated = "expense.created"
	EventSyncCompleted  = "gmail.synced"
)

// Event is a ledger event published to the feed. ExpenseID, Source and
// Amount are set for expense.created; Added and WindowDays for
// gmail.synced. Consumers fetch nothing back from the database, the
// event carries everything an audit tail needs.
type Event struct {
	Kind       string    `json:"kind"`
	ExpenseID  int64     `json:"expense_id,omitempty"`
	Source     string    `json:"source,omitempty"`
	Amount     float64   `json:"amount,omitempty"`
	Added      int       `json:"added,omitempty"`
	WindowDays int       `json:"window_days,omitempty"`
	Timestamp  time.Time `json:"timestamp"`
}

// NewExpenseCreatedEvent builds the event for a single ledger append.
func NewExpenseCreatedEvent(id int64, source string, amount float64) *Event {
	return &Event{
		Kind:      EventExpenseCreated,
		ExpenseID: id,
		Source:    source,
		Amount:    amount,
		Timestamp: time.Now(),
	}
}

// NewSyncCompletedEvent builds the event for a finished mail sync run.
func NewSyncCompletedEvent(added, windowDays int) *Event {
	return &Event{
		Kind:       EventSyncCompleted,
		Added:      added,
		WindowDays: windowDays,
		Timestamp:  time.Now(),
	}
}

// ToJSON converts the event to JSON bytes
func (e *Event) ToJSON() ([]byte, error) {
	return json.Marshal(e)
}

// EventFromJSON creates an event from JSON bytes
func EventFromJSON(data []byte) (*Event, error) {
	var ev Event
	if err := json.Unmarshal(data, &ev); err != nil {
		return nil, err
	}
	return &ev, nil
}
