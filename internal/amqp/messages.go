package amqp

import (
	"encoding/json"
	"fmt"
	"time"

	"finanzy/internal/core"
)

// Action says what happened to a transaction.
type Action string

const (
	ActionCreated Action = "created"
	ActionUpdated Action = "updated"
	ActionDeleted Action = "deleted"
)

// TransactionEvent is published after every successful write to the
// collection. Deleted events carry only the id.
type TransactionEvent struct {
	Action      Action            `json:"action"`
	ID          string            `json:"id"`
	Transaction *core.Transaction `json:"transaction,omitempty"`
	Timestamp   time.Time         `json:"timestamp"`
}

// NewChangeEvent builds a created or updated event for tx.
func NewChangeEvent(action Action, tx core.Transaction) TransactionEvent {
	return TransactionEvent{Action: action, ID: tx.ID, Transaction: &tx, Timestamp: time.Now().UTC()}
}

func NewDeleteEvent(id string) TransactionEvent {
	return TransactionEvent{Action: ActionDeleted, ID: id, Timestamp: time.Now().UTC()}
}

// ToJSON converts the event to JSON bytes
func (e TransactionEvent) ToJSON() ([]byte, error) {
	return json.Marshal(e)
}

// TransactionEventFromJSON decodes and sanity-checks an event.
func TransactionEventFromJSON(data []byte) (TransactionEvent, error) {
	var ev TransactionEvent
	if err := json.Unmarshal(data, &ev); err != nil {
		return TransactionEvent{}, err
	}
	if ev.ID == "" {
		return TransactionEvent{}, fmt.Errorf("event without id")
	}
	switch ev.Action {
	case ActionCreated, ActionUpdated:
		if ev.Transaction == nil {
			return TransactionEvent{}, fmt.Errorf("%s event %s without transaction", ev.Action, ev.ID)
		}
	case ActionDeleted:
	default:
		return TransactionEvent{}, fmt.Errorf("unknown action %q", ev.Action)
	}
	return ev, nil
}
