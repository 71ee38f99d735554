package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// MonthlySummary is the cross-stream read model keyed by calendar month.
type MonthlySummary struct {
	MonthKey string `db:"month_key"`
	Year     int    `db:"year"`
	Month    int    `db:"month"`

	AccountsCreated   int64           `db:"accounts_created"`
	AccountsClosed    int64           `db:"accounts_closed"`
	TotalTransactions int64           `db:"total_transactions"`
	TotalDebited      decimal.Decimal `db:"total_debited"`
	TotalCredited     decimal.Decimal `db:"total_credited"`
	InvalidAttempts   int64           `db:"invalid_attempts"`

	LastUpdated time.Time `db:"last_updated"`
}

// NullMonthlySummary ...
type NullMonthlySummary struct {
	Valid   bool
	Summary MonthlySummary
}
