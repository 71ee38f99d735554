package repository

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/EnnubaBPMN2/marten-bank-sample/model"
	"github.com/EnnubaBPMN2/marten-bank-sample/pkg/integration"
)

func newContext() context.Context {
	return context.Background()
}

type repoTest struct {
	tc       *integration.TestCase
	provider Provider
}

func newRepoTest(tables ...string) *repoTest {
	tc := integration.NewTestCase()
	for _, table := range tables {
		tc.Truncate(table)
	}
	return &repoTest{
		tc:       tc,
		provider: NewProvider(tc.DB),
	}
}

func newTime(s string) time.Time {
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		panic(err)
	}
	return t.UTC()
}

func newEvent(streamID string, seq uint64, commitAt time.Time) model.Event {
	return model.Event{
		StreamID:  streamID,
		Seq:       seq,
		Type:      model.EventTypeAccountCredited,
		Data:      []byte(`{}`),
		CreatedAt: commitAt,
	}
}

func TestEventStore(t *testing.T) {
	tc := newRepoTest("stream", "event")

	repo := NewEventStore()

	const streamA = "11111111-1111-1111-1111-111111111111"
	const streamB = "22222222-2222-2222-2222-222222222222"

	//---------------------------------------
	// Get Absent Stream
	//---------------------------------------
	readCtx := tc.provider.Readonly(newContext())
	stream, err := repo.GetStream(readCtx, streamA)
	assert.Equal(t, nil, err)
	assert.Equal(t, model.Stream{ID: streamA}, stream)

	//---------------------------------------
	// Insert Interleaved Events of Two Streams
	//---------------------------------------
	err = tc.provider.Transact(newContext(), func(ctx context.Context) error {
		err := repo.LockJournal(ctx)
		assert.Equal(t, nil, err)

		locked, err := repo.GetStreamForUpdate(ctx, streamA)
		assert.Equal(t, nil, err)
		assert.Equal(t, model.Stream{ID: streamA}, locked)

		err = repo.InsertEvents(ctx, []model.Event{
			newEvent(streamA, 1, newTime("2022-05-07T10:00:00Z")),
			newEvent(streamB, 1, newTime("2022-05-07T10:01:00Z")),
			newEvent(streamA, 2, newTime("2022-05-07T10:02:00Z")),
		})
		assert.Equal(t, nil, err)

		err = repo.UpsertStream(ctx, model.Stream{
			ID:        streamA,
			Version:   2,
			UpdatedAt: newTime("2022-05-07T10:02:00Z"),
		})
		assert.Equal(t, nil, err)

		return repo.UpsertStream(ctx, model.Stream{
			ID:        streamB,
			Version:   1,
			UpdatedAt: newTime("2022-05-07T10:01:00Z"),
		})
	})
	assert.Equal(t, nil, err)

	//---------------------------------------
	// Get Stream
	//---------------------------------------
	stream, err = repo.GetStream(readCtx, streamA)
	assert.Equal(t, nil, err)
	assert.Equal(t, model.Stream{
		ID:        streamA,
		Version:   2,
		UpdatedAt: newTime("2022-05-07T10:02:00Z"),
	}, stream)

	//---------------------------------------
	// List Stream Events
	//---------------------------------------
	events, err := repo.ListStreamEvents(readCtx, streamA)
	assert.Equal(t, nil, err)
	assert.Equal(t, 2, len(events))
	assert.Equal(t, uint64(1), events[0].Seq)
	assert.Equal(t, uint64(2), events[1].Seq)
	assert.Equal(t, streamA, events[0].StreamID)
	assert.Equal(t, streamA, events[1].StreamID)

	//---------------------------------------
	// List Events After, Global Order
	//---------------------------------------
	all, err := repo.ListEventsAfter(readCtx, 0, 100)
	assert.Equal(t, nil, err)
	assert.Equal(t, 3, len(all))
	assert.Equal(t, streamA, all[0].StreamID)
	assert.Equal(t, streamB, all[1].StreamID)
	assert.Equal(t, streamA, all[2].StreamID)
	assert.Equal(t, true, all[0].ID < all[1].ID)
	assert.Equal(t, true, all[1].ID < all[2].ID)

	//---------------------------------------
	// List Events After with Limit
	//---------------------------------------
	page, err := repo.ListEventsAfter(readCtx, all[0].ID, 1)
	assert.Equal(t, nil, err)
	assert.Equal(t, 1, len(page))
	assert.Equal(t, all[1].ID, page[0].ID)

	page, err = repo.ListEventsAfter(readCtx, all[2].ID, 100)
	assert.Equal(t, nil, err)
	assert.Equal(t, 0, len(page))
}

func TestEventStore_Upsert_Stream_Increment(t *testing.T) {
	tc := newRepoTest("stream", "event")

	repo := NewEventStore()

	const streamID = "33333333-3333-3333-3333-333333333333"

	err := tc.provider.Transact(newContext(), func(ctx context.Context) error {
		return repo.UpsertStream(ctx, model.Stream{
			ID:        streamID,
			Version:   1,
			UpdatedAt: newTime("2022-05-07T10:00:00Z"),
		})
	})
	assert.Equal(t, nil, err)

	err = tc.provider.Transact(newContext(), func(ctx context.Context) error {
		stream, err := repo.GetStreamForUpdate(ctx, streamID)
		assert.Equal(t, nil, err)
		assert.Equal(t, uint64(1), stream.Version)

		return repo.UpsertStream(ctx, model.Stream{
			ID:        streamID,
			Version:   stream.Version + 1,
			UpdatedAt: newTime("2022-05-07T11:00:00Z"),
		})
	})
	assert.Equal(t, nil, err)

	readCtx := tc.provider.Readonly(newContext())
	stream, err := repo.GetStream(readCtx, streamID)
	assert.Equal(t, nil, err)
	assert.Equal(t, uint64(2), stream.Version)
	assert.Equal(t, newTime("2022-05-07T11:00:00Z"), stream.UpdatedAt)
}
