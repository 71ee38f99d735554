package model

import "time"

// Stream ...
type Stream struct {
	ID        string    `db:"id"`
	Version   uint64    `db:"version"`
	UpdatedAt time.Time `db:"updated_at"`
}
