package event

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/EnnubaBPMN2/marten-bank-sample/model"
)

// Event is an immutable fact recorded in an account stream.
// Concrete types carry the business fields of the fact; the journal row
// (model.Event) carries the storage metadata (seq, commit time, type tag).
type Event interface {
	// EventType returns the tag the journal stores for this event.
	EventType() model.EventType
	// OccurredAt returns the business time the fact refers to.
	OccurredAt() time.Time
}

// AccountCreated opens a new account stream. Always the first event of a
// valid stream.
type AccountCreated struct {
	AccountID       uuid.UUID       `json:"accountId"`
	Owner           string          `json:"owner"`
	StartingBalance decimal.Decimal `json:"startingBalance"`
	CreatedAt       time.Time       `json:"createdAt"`
}

// EventType ...
func (e AccountCreated) EventType() model.EventType { return model.EventTypeAccountCreated }

// OccurredAt ...
func (e AccountCreated) OccurredAt() time.Time { return e.CreatedAt }

// AccountCredited increases the balance of the destination account.
type AccountCredited struct {
	From        uuid.UUID       `json:"from"`
	To          uuid.UUID       `json:"to"`
	Amount      decimal.Decimal `json:"amount"`
	Description string          `json:"description"`
	Time        time.Time       `json:"time"`
}

// EventType ...
func (e AccountCredited) EventType() model.EventType { return model.EventTypeAccountCredited }

// OccurredAt ...
func (e AccountCredited) OccurredAt() time.Time { return e.Time }

// AccountDebited decreases the balance of the source account.
type AccountDebited struct {
	From        uuid.UUID       `json:"from"`
	To          uuid.UUID       `json:"to"`
	Amount      decimal.Decimal `json:"amount"`
	Description string          `json:"description"`
	Time        time.Time       `json:"time"`
}

// EventType ...
func (e AccountDebited) EventType() model.EventType { return model.EventTypeAccountDebited }

// OccurredAt ...
func (e AccountDebited) OccurredAt() time.Time { return e.Time }

// ToCredit derives the credit to append to the destination stream of a
// transfer, mirroring this debit.
func (e AccountDebited) ToCredit() AccountCredited {
	return AccountCredited{
		From:        e.From,
		To:          e.To,
		Amount:      e.Amount,
		Description: e.Description,
		Time:        e.Time,
	}
}

// AccountClosed marks the end of an account's life. The stream stays
// readable; callers are expected to stop appending balance changes.
type AccountClosed struct {
	AccountID    uuid.UUID       `json:"accountId"`
	Reason       string          `json:"reason"`
	FinalBalance decimal.Decimal `json:"finalBalance"`
	ClosedAt     time.Time       `json:"closedAt"`
}

// EventType ...
func (e AccountClosed) EventType() model.EventType { return model.EventTypeAccountClosed }

// OccurredAt ...
func (e AccountClosed) OccurredAt() time.Time { return e.ClosedAt }

// InvalidOperationAttempted records a rejected business operation (e.g. an
// overdraft attempt) without changing account state, so the attempt itself
// stays auditable.
type InvalidOperationAttempted struct {
	AccountID   uuid.UUID `json:"accountId"`
	Description string    `json:"description"`
	Time        time.Time `json:"time"`
}

// EventType ...
func (e InvalidOperationAttempted) EventType() model.EventType {
	return model.EventTypeInvalidOperationAttempted
}

// OccurredAt ...
func (e InvalidOperationAttempted) OccurredAt() time.Time { return e.Time }
