package store

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"

	"github.com/QuangTung97/eventstore/handler"
	"github.com/QuangTung97/eventstore/model"
)

type progressCall struct {
	count           int64
	lastXactID      int64
	lastAggregateID uuid.UUID
}

func TestStore_Replay_From_Cursor(t *testing.T) {
	s := newStoreTest()
	aggregateID := newAggregateID()

	// S3: 5 events, block size 2
	s.mustCommitEvents(t, aggregateID,
		newMyEvent(aggregateID, 1, "a"),
		newMyEvent(aggregateID, 2, "b"),
		newMyEvent(aggregateID, 3, "c"),
		newMyEvent(aggregateID, 4, "d"),
		newMyEvent(aggregateID, 5, "e"),
	)

	var seen []string
	s.settings.handlers = []handler.MessageHandler{
		handler.NewBuilder("projector").
			On(func(ctx context.Context, event model.Event) error {
				seen = append(seen, event.Data.(*myEvent).Data)
				return nil
			}, &myEvent{}).
			Build(),
	}

	var progress []progressCall

	ctx := s.provider.Readonly(newContext())
	err := s.store.ReplayEventsFromCursor(ctx, 2,
		s.store.XactEventsCursor(0),
		func(count int64, lastXactID int64, lastAggregateID uuid.UUID) {
			progress = append(progress, progressCall{
				count:           count,
				lastXactID:      lastXactID,
				lastAggregateID: lastAggregateID,
			})
		})
	assert.Equal(t, nil, err)

	assert.Equal(t, []string{"a", "b", "c", "d", "e"}, seen)

	assert.Equal(t, 3, len(progress))
	assert.Equal(t, int64(2), progress[0].count)
	assert.Equal(t, int64(4), progress[1].count)
	assert.Equal(t, int64(5), progress[2].count)
	for _, p := range progress {
		assert.Equal(t, aggregateID, p.lastAggregateID)
		assert.Equal(t, true, p.lastXactID > 0)
	}
}

func TestStore_Replay_Bypasses_Publisher(t *testing.T) {
	s := newStoreTest()
	aggregateID := newAggregateID()

	s.mustCommitEvents(t, aggregateID, newMyEvent(aggregateID, 1, "a"))

	// disabled handlers suppress publication, not replay
	s.settings.disabled = true

	var count int
	s.settings.handlers = []handler.MessageHandler{
		handler.NewBuilder("projector").
			On(func(ctx context.Context, event model.Event) error {
				count++
				return nil
			}, &myEvent{}).
			Build(),
	}

	ctx := s.provider.Readonly(newContext())
	err := s.store.ReplayEventsFromCursor(ctx, 10, s.store.XactEventsCursor(0), nil)
	assert.Equal(t, nil, err)
	assert.Equal(t, 1, count)
}

func TestStore_Replay_Resumes_After_Xact_Cursor(t *testing.T) {
	s := newStoreTest()
	aggregateID := newAggregateID()

	s.mustCommitEvents(t, aggregateID, newMyEvent(aggregateID, 1, "a"))
	s.mustCommitEvents(t, aggregateID, newMyEvent(aggregateID, 2, "b"))

	var firstXact int64
	err := s.tc.DB.Get(&firstXact, `
SELECT xact_id FROM event_records
WHERE aggregate_id = $1 AND sequence_number = 1`, aggregateID)
	assert.Equal(t, nil, err)

	var seen []string
	s.settings.handlers = []handler.MessageHandler{
		handler.NewBuilder("projector").
			On(func(ctx context.Context, event model.Event) error {
				seen = append(seen, event.Data.(*myEvent).Data)
				return nil
			}, &myEvent{}).
			Build(),
	}

	ctx := s.provider.Readonly(newContext())
	err = s.store.ReplayEventsFromCursor(ctx, 10, s.store.XactEventsCursor(firstXact), nil)
	assert.Equal(t, nil, err)
	assert.Equal(t, []string{"b"}, seen)
}

func TestStore_Replay_Handler_Error(t *testing.T) {
	s := newStoreTest()
	aggregateID := newAggregateID()

	s.mustCommitEvents(t, aggregateID,
		newMyEvent(aggregateID, 1, "a"),
		newMyEvent(aggregateID, 2, "b"),
	)

	cause := errors.New("projection failed")
	s.settings.handlers = []handler.MessageHandler{
		&handler.MessageHandlerMock{
			NameFunc: func() string { return "broken" },
			HandleMessageFunc: func(ctx context.Context, event model.Event) error {
				return cause
			},
			HandlesMessageFunc: func(msg model.Message) bool { return true },
		},
	}

	var progressCalls int
	ctx := s.provider.Readonly(newContext())
	err := s.store.ReplayEventsFromCursor(ctx, 10, s.store.XactEventsCursor(0),
		func(count int64, lastXactID int64, lastAggregateID uuid.UUID) {
			progressCalls++
		})
	assert.Equal(t, true, errors.Is(err, cause))
	assert.Equal(t, 0, progressCalls)
}

func TestStore_Replay_Invalid_Block_Size(t *testing.T) {
	s := newStoreTest()

	ctx := s.provider.Readonly(newContext())
	err := s.store.ReplayEventsFromCursor(ctx, 0, s.store.XactEventsCursor(0), nil)
	assert.NotEqual(t, nil, err)
}
