package ledger

import (
	"database/sql"
	"time"

	"github.com/EnnubaBPMN2/marten-bank-sample/event"
	"github.com/EnnubaBPMN2/marten-bank-sample/model"
)

// Aggregate folds an ordered slice of journal rows into the current account
// state. Deterministic and side-effect free: the same rows always produce
// the same state. Returns absent when no creating event is in range.
func Aggregate(rows []model.Event) (model.NullAccount, error) {
	state := model.NullAccount{}
	for _, row := range rows {
		e, err := event.Decode(row)
		if err != nil {
			return model.NullAccount{}, err
		}
		state = apply(state, e)
	}
	return state, nil
}

// AggregateAtVersion folds only the first version events, inclusive.
func AggregateAtVersion(rows []model.Event, version uint64) (model.NullAccount, error) {
	cut := rows
	for i, row := range rows {
		if row.Seq > version {
			cut = rows[:i]
			break
		}
	}
	return Aggregate(cut)
}

// AggregateAtTime folds only events committed at or before t, inclusive.
// Filters rather than cuts a prefix: commit timestamps come from the
// appending process's clock, so two writers on one stream may interleave
// non-monotonic timestamps.
func AggregateAtTime(rows []model.Event, t time.Time) (model.NullAccount, error) {
	cut := make([]model.Event, 0, len(rows))
	for _, row := range rows {
		if row.CreatedAt.After(t) {
			continue
		}
		cut = append(cut, row)
	}
	return Aggregate(cut)
}

// apply is the transition function of the fold. Events arriving before the
// creating event leave the state absent; invalid-operation events are
// audit-only and change nothing.
func apply(state model.NullAccount, e event.Event) model.NullAccount {
	switch ev := e.(type) {
	case event.AccountCreated:
		return model.NullAccount{
			Valid: true,
			Account: model.Account{
				ID:        ev.AccountID.String(),
				Owner:     ev.Owner,
				Balance:   ev.StartingBalance,
				CreatedAt: ev.CreatedAt,
				UpdatedAt: ev.CreatedAt,
			},
		}

	case event.AccountCredited:
		if !state.Valid {
			return state
		}
		state.Account.Balance = state.Account.Balance.Add(ev.Amount)
		state.Account.UpdatedAt = ev.Time
		return state

	case event.AccountDebited:
		if !state.Valid {
			return state
		}
		state.Account.Balance = state.Account.Balance.Sub(ev.Amount)
		state.Account.UpdatedAt = ev.Time
		return state

	case event.AccountClosed:
		if !state.Valid {
			return state
		}
		state.Account.Closed = true
		state.Account.ClosedAt = sql.NullTime{Valid: true, Time: ev.ClosedAt}
		state.Account.CloseReason = sql.NullString{Valid: true, String: ev.Reason}
		state.Account.UpdatedAt = ev.ClosedAt
		return state

	default:
		return state
	}
}
