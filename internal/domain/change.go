package domain

import (
	"encoding/json"
	"time"
)

type ChangeAction string

const (
	ActionCreate ChangeAction = "create"
	ActionUpdate ChangeAction = "update"
	ActionStatus ChangeAction = "status"
	ActionDelete ChangeAction = "delete"
)

// Change announces a successful write to a collection.
type Change struct {
	Collection string          `json:"collection"`
	Action     ChangeAction    `json:"action"`
	ID         ID              `json:"id"`
	Record     json.RawMessage `json:"record,omitempty"`
	Timestamp  time.Time       `json:"timestamp"`
}

// NewChange builds a change event carrying rec, if any.
func NewChange(collection string, action ChangeAction, id ID, rec any) (Change, error) {
	ch := Change{
		Collection: collection,
		Action:     action,
		ID:         id,
		Timestamp:  time.Now().UTC(),
	}
	if rec != nil {
		raw, err := json.Marshal(rec)
		if err != nil {
			return ch, err
		}
		ch.Record = raw
	}
	return ch, nil
}
