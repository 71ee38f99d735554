package event

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/EnnubaBPMN2/marten-bank-sample/model"
)

// ErrUnknownEventType ...
var ErrUnknownEventType = errors.New("unknown event type")

// Marshal encodes a domain event into its journal tag and JSON payload.
func Marshal(e Event) (model.EventType, []byte, error) {
	data, err := json.Marshal(e)
	if err != nil {
		return 0, nil, err
	}
	return e.EventType(), data, nil
}

// Unmarshal decodes a JSON payload back into the domain event for the tag.
func Unmarshal(eventType model.EventType, data []byte) (Event, error) {
	switch eventType {
	case model.EventTypeAccountCreated:
		var e AccountCreated
		err := json.Unmarshal(data, &e)
		return e, err

	case model.EventTypeAccountCredited:
		var e AccountCredited
		err := json.Unmarshal(data, &e)
		return e, err

	case model.EventTypeAccountDebited:
		var e AccountDebited
		err := json.Unmarshal(data, &e)
		return e, err

	case model.EventTypeAccountClosed:
		var e AccountClosed
		err := json.Unmarshal(data, &e)
		return e, err

	case model.EventTypeInvalidOperationAttempted:
		var e InvalidOperationAttempted
		err := json.Unmarshal(data, &e)
		return e, err

	default:
		return nil, fmt.Errorf("%w: %d", ErrUnknownEventType, eventType)
	}
}

// Decode decodes a journal row into its domain event.
func Decode(row model.Event) (Event, error) {
	return Unmarshal(row.Type, row.Data)
}

// MonthKey computes the calendar-month grouping key used by the monthly
// summary projection, e.g. "2022-05".
func MonthKey(t time.Time) string {
	return fmt.Sprintf("%04d-%02d", t.Year(), int(t.Month()))
}
