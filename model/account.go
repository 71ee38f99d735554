package model

import (
	"database/sql"
	"time"

	"github.com/shopspring/decimal"
)

// Account is the per-stream snapshot document, rebuilt inline on every append.
type Account struct {
	ID      string          `db:"id"`
	Owner   string          `db:"owner"`
	Balance decimal.Decimal `db:"balance"`

	CreatedAt time.Time `db:"created_at"`
	UpdatedAt time.Time `db:"updated_at"`

	Closed      bool           `db:"closed"`
	ClosedAt    sql.NullTime   `db:"closed_at"`
	CloseReason sql.NullString `db:"close_reason"`
}

// NullAccount ...
type NullAccount struct {
	Valid   bool
	Account Account
}
