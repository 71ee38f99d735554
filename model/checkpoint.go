package model

import "time"

// ProjectorCheckpoint tracks the last globally-processed event for one projector.
type ProjectorCheckpoint struct {
	Name        string    `db:"name"`
	LastEventID uint64    `db:"last_event_id"`
	UpdatedAt   time.Time `db:"updated_at"`
}
