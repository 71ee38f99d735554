package ledger

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/EnnubaBPMN2/marten-bank-sample/event"
	"github.com/EnnubaBPMN2/marten-bank-sample/model"
	"github.com/EnnubaBPMN2/marten-bank-sample/repository"
)

// ErrNoEvents ...
var ErrNoEvents = errors.New("append requires at least one event")

// ConflictError reports an optimistic concurrency failure: the stream moved
// past the version the caller read. Re-fetch the current state, re-evaluate
// the business decision against it, then retry with the new version.
type ConflictError struct {
	StreamID string
	Expected uint64
	Actual   uint64
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf(
		"concurrency conflict on stream %s: expected version %d, actual %d",
		e.StreamID, e.Expected, e.Actual,
	)
}

// ExpectedVersion is the optional optimistic concurrency token for Append.
type ExpectedVersion struct {
	Valid   bool
	Version uint64
}

// Expect ...
func Expect(version uint64) ExpectedVersion {
	return ExpectedVersion{Valid: true, Version: version}
}

// AnyVersion appends unconditionally (last writer wins).
var AnyVersion = ExpectedVersion{}

// Service is the write and replay path of the ledger: append with the
// optimistic guard, inline snapshot refresh, stream replay and lookups.
type Service struct {
	provider    repository.Provider
	eventStore  repository.EventStore
	accountRepo repository.Account

	logger *zap.Logger
	tracer trace.Tracer
	now    func() time.Time
}

// NewService ...
func NewService(provider repository.Provider, logger *zap.Logger) *Service {
	return &Service{
		provider:    provider,
		eventStore:  repository.NewEventStore(),
		accountRepo: repository.NewAccount(),

		logger: logger,
		tracer: otel.GetTracerProvider().Tracer("ledger"),
		now:    time.Now,
	}
}

// Append commits the events atomically to the stream. When expected is set,
// the commit fails with *ConflictError unless the stream is still at that
// version; nothing is written in that case. On success the stream version
// advances by len(events), the events get consecutive sequence numbers and
// the account snapshot is re-aggregated and upserted in the same
// transaction, so readers never observe events without the matching
// snapshot. Appends across all streams serialize on the journal head row,
// making the global id order equal to commit order.
func (s *Service) Append(
	ctx context.Context, streamID uuid.UUID, expected ExpectedVersion, events ...event.Event,
) (uint64, error) {
	if len(events) == 0 {
		return 0, ErrNoEvents
	}

	ctx, span := s.tracer.Start(ctx, "ledger::append")
	defer span.End()

	var newVersion uint64
	err := s.provider.Transact(ctx, func(ctx context.Context) error {
		// taken before the stream lock in every append, so two writers can
		// never deadlock and the loser of a creation race observes the
		// winner's committed version
		if err := s.eventStore.LockJournal(ctx); err != nil {
			return err
		}

		stream, err := s.eventStore.GetStreamForUpdate(ctx, streamID.String())
		if err != nil {
			return err
		}

		if expected.Valid && stream.Version != expected.Version {
			return &ConflictError{
				StreamID: stream.ID,
				Expected: expected.Version,
				Actual:   stream.Version,
			}
		}

		commitTime := s.now()

		rows := make([]model.Event, 0, len(events))
		for i, e := range events {
			eventType, data, err := event.Marshal(e)
			if err != nil {
				return err
			}
			rows = append(rows, model.Event{
				StreamID:  stream.ID,
				Seq:       stream.Version + uint64(i) + 1,
				Type:      eventType,
				Data:      data,
				CreatedAt: commitTime,
			})
		}

		if err := s.eventStore.InsertEvents(ctx, rows); err != nil {
			return err
		}

		stream.Version += uint64(len(events))
		stream.UpdatedAt = commitTime
		if err := s.eventStore.UpsertStream(ctx, stream); err != nil {
			return err
		}

		all, err := s.eventStore.ListStreamEvents(ctx, stream.ID)
		if err != nil {
			return err
		}
		snapshot, err := Aggregate(all)
		if err != nil {
			return err
		}
		if snapshot.Valid {
			if err := s.accountRepo.UpsertAccount(ctx, snapshot.Account); err != nil {
				return err
			}
		}

		newVersion = stream.Version
		return nil
	})
	if err != nil {
		return 0, err
	}

	s.logger.Info("events appended",
		zap.String("stream", streamID.String()),
		zap.Uint64("version", newVersion),
		zap.Int("count", len(events)),
	)
	return newVersion, nil
}

// FetchStream replays the full stream in commit order.
func (s *Service) FetchStream(ctx context.Context, streamID uuid.UUID) ([]model.Event, error) {
	ctx = s.provider.Readonly(ctx)
	return s.eventStore.ListStreamEvents(ctx, streamID.String())
}

// CurrentVersion returns the stream's committed version, 0 when the stream
// does not exist yet.
func (s *Service) CurrentVersion(ctx context.Context, streamID uuid.UUID) (uint64, error) {
	ctx = s.provider.Readonly(ctx)
	stream, err := s.eventStore.GetStream(ctx, streamID.String())
	if err != nil {
		return 0, err
	}
	return stream.Version, nil
}

// Account returns the live snapshot for the stream.
func (s *Service) Account(ctx context.Context, streamID uuid.UUID) (model.NullAccount, error) {
	ctx = s.provider.Readonly(ctx)
	return s.accountRepo.GetAccount(ctx, streamID.String())
}

// Accounts returns the live snapshots for multiple streams, ordered by
// creation time. Missing streams are simply absent from the result.
func (s *Service) Accounts(ctx context.Context, streamIDs ...uuid.UUID) ([]model.Account, error) {
	ctx = s.provider.Readonly(ctx)
	ids := make([]string, 0, len(streamIDs))
	for _, id := range streamIDs {
		ids = append(ids, id.String())
	}
	return s.accountRepo.GetAccounts(ctx, ids)
}
