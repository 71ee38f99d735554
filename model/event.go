package model

import "time"

// Event is one persisted row of the append-only event journal.
// ID is the global commit order, Seq the 1-based position inside the stream.
type Event struct {
	ID       uint64    `db:"id"`
	StreamID string    `db:"stream_id"`
	Seq      uint64    `db:"seq"`
	Type     EventType `db:"type"`
	Data     []byte    `db:"data"`

	CreatedAt time.Time `db:"created_at"`
}

// EventType ...
type EventType int

const (
	// EventTypeAccountCreated ...
	EventTypeAccountCreated EventType = 1

	// EventTypeAccountCredited ...
	EventTypeAccountCredited EventType = 2

	// EventTypeAccountDebited ...
	EventTypeAccountDebited EventType = 3

	// EventTypeAccountClosed ...
	EventTypeAccountClosed EventType = 4

	// EventTypeInvalidOperationAttempted ...
	EventTypeInvalidOperationAttempted EventType = 5
)
