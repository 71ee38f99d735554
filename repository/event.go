package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/EnnubaBPMN2/marten-bank-sample/model"
)

// EventStore is the append-only event journal plus the per-stream version
// counters. All mutating methods must run inside Provider.Transact.
type EventStore interface {
	// LockJournal locks the single journal head row for the rest of the
	// transaction. Appends take this lock before inserting, which serializes
	// them globally: event ids are assigned and become visible in commit
	// order, so a reader paging `id > checkpoint` can never have a committed
	// row appear behind its position.
	LockJournal(ctx context.Context) error

	// GetStreamForUpdate locks the stream row for the rest of the
	// transaction and returns it. A stream with no committed events yet is
	// returned with Version 0.
	GetStreamForUpdate(ctx context.Context, streamID string) (model.Stream, error)
	UpsertStream(ctx context.Context, stream model.Stream) error
	InsertEvents(ctx context.Context, events []model.Event) error

	GetStream(ctx context.Context, streamID string) (model.Stream, error)
	ListStreamEvents(ctx context.Context, streamID string) ([]model.Event, error)

	// ListEventsAfter returns up to limit events of the global journal with
	// id > afterID, in commit order.
	ListEventsAfter(ctx context.Context, afterID uint64, limit int) ([]model.Event, error)
}

type eventStoreImpl struct {
}

// NewEventStore ...
func NewEventStore() EventStore {
	return &eventStoreImpl{}
}

// LockJournal ...
func (s *eventStoreImpl) LockJournal(ctx context.Context) error {
	query := `SELECT id FROM journal_head WHERE id = 1 FOR UPDATE`
	var id int
	return GetTx(ctx).GetContext(ctx, &id, query)
}

// GetStreamForUpdate ...
func (s *eventStoreImpl) GetStreamForUpdate(
	ctx context.Context, streamID string,
) (model.Stream, error) {
	query := `SELECT id, version, updated_at FROM stream WHERE id = ? FOR UPDATE`
	var result model.Stream
	err := GetTx(ctx).GetContext(ctx, &result, query, streamID)
	if errors.Is(err, sql.ErrNoRows) {
		return model.Stream{ID: streamID}, nil
	}
	return result, err
}

// UpsertStream ...
func (s *eventStoreImpl) UpsertStream(ctx context.Context, stream model.Stream) error {
	query := `
INSERT INTO stream (id, version, updated_at)
VALUES (:id, :version, :updated_at) AS NEW
ON DUPLICATE KEY UPDATE
	version = NEW.version,
	updated_at = NEW.updated_at
`
	_, err := GetTx(ctx).NamedExecContext(ctx, query, stream)
	return err
}

// InsertEvents ...
func (s *eventStoreImpl) InsertEvents(ctx context.Context, events []model.Event) error {
	query := `
INSERT INTO event (stream_id, seq, type, data, created_at)
VALUES (:stream_id, :seq, :type, :data, :created_at)
`
	_, err := GetTx(ctx).NamedExecContext(ctx, query, events)
	return err
}

// GetStream ...
func (s *eventStoreImpl) GetStream(ctx context.Context, streamID string) (model.Stream, error) {
	query := `SELECT id, version, updated_at FROM stream WHERE id = ?`
	var result model.Stream
	err := getQueryer(ctx).GetContext(ctx, &result, query, streamID)
	if errors.Is(err, sql.ErrNoRows) {
		return model.Stream{ID: streamID}, nil
	}
	return result, err
}

// ListStreamEvents ...
func (s *eventStoreImpl) ListStreamEvents(
	ctx context.Context, streamID string,
) ([]model.Event, error) {
	query := `
SELECT id, stream_id, seq, type, data, created_at
FROM event
WHERE stream_id = ?
ORDER BY seq
`
	var result []model.Event
	err := getQueryer(ctx).SelectContext(ctx, &result, query, streamID)
	return result, err
}

// ListEventsAfter ...
func (s *eventStoreImpl) ListEventsAfter(
	ctx context.Context, afterID uint64, limit int,
) ([]model.Event, error) {
	query := `
SELECT id, stream_id, seq, type, data, created_at
FROM event
WHERE id > ?
ORDER BY id
LIMIT ?
`
	var result []model.Event
	err := getQueryer(ctx).SelectContext(ctx, &result, query, afterID, limit)
	return result, err
}
