package ledger

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/EnnubaBPMN2/marten-bank-sample/event"
	"github.com/EnnubaBPMN2/marten-bank-sample/model"
)

// BalancePoint marks where in a stream's history a balance was observed.
type BalancePoint struct {
	Balance decimal.Decimal
	Version uint64
	At      time.Time
}

// StateAtVersion reconstructs the account as of the given version. Absent
// when the stream had not been created by that version, or when version
// exceeds the stream's length.
func (s *Service) StateAtVersion(
	ctx context.Context, streamID uuid.UUID, version uint64,
) (model.NullAccount, error) {
	rows, err := s.FetchStream(ctx, streamID)
	if err != nil {
		return model.NullAccount{}, err
	}
	if len(rows) == 0 || version > rows[len(rows)-1].Seq {
		return model.NullAccount{}, nil
	}
	return AggregateAtVersion(rows, version)
}

// StateAtTime reconstructs the account as of the given commit time,
// inclusive.
func (s *Service) StateAtTime(
	ctx context.Context, streamID uuid.UUID, t time.Time,
) (model.NullAccount, error) {
	rows, err := s.FetchStream(ctx, streamID)
	if err != nil {
		return model.NullAccount{}, err
	}
	return AggregateAtTime(rows, t)
}

// MaxBalance finds the highest balance the account ever reached and the
// version and commit time where that maximum was first achieved. The stream
// is applied incrementally in a single forward pass. ok is false when the
// stream has no creating event.
func (s *Service) MaxBalance(
	ctx context.Context, streamID uuid.UUID,
) (point BalancePoint, ok bool, err error) {
	rows, err := s.FetchStream(ctx, streamID)
	if err != nil {
		return BalancePoint{}, false, err
	}

	state := model.NullAccount{}
	for _, row := range rows {
		e, err := event.Decode(row)
		if err != nil {
			return BalancePoint{}, false, err
		}
		state = apply(state, e)
		if !state.Valid {
			continue
		}
		if !ok || state.Account.Balance.GreaterThan(point.Balance) {
			ok = true
			point = BalancePoint{
				Balance: state.Account.Balance,
				Version: row.Seq,
				At:      row.CreatedAt,
			}
		}
	}
	return point, ok, nil
}
