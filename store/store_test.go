package store

import (
	"context"
	"database/sql"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"

	"github.com/QuangTung97/eventstore/handler"
	"github.com/QuangTung97/eventstore/model"
	"github.com/QuangTung97/eventstore/pkg/integration"
	"github.com/QuangTung97/eventstore/publisher"
	"github.com/QuangTung97/eventstore/repository"
)

type myEvent struct {
	Data string `json:"data"`
}

type otherEvent struct {
	Value int64 `json:"value"`
}

type myCommand struct {
	Reason string `json:"reason"`
}

type testSettings struct {
	mu       sync.Mutex
	handlers []handler.MessageHandler
	disabled bool
	cache    bool
}

func (s *testSettings) EventHandlers() []handler.MessageHandler {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.handlers
}

func (s *testSettings) EventHandlersDisabled() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.disabled
}

func (s *testSettings) CacheEventTypes() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cache
}

type storeTest struct {
	tc       *integration.TestCase
	provider repository.Provider
	settings *testSettings
	store    *Store
}

func newStoreTest(options ...Option) *storeTest {
	tc := integration.NewTestCase()
	tc.Truncate("stream_records", "command_records", "saved_event_records")

	registry := NewRegistry()
	registry.Register("MyEvent", func() model.Message { return &myEvent{} })
	registry.Register("OtherEvent", func() model.Message { return &otherEvent{} })

	settings := &testSettings{cache: true}

	return &storeTest{
		tc:       tc,
		provider: repository.NewProvider(tc.DB),
		settings: settings,
		store:    New(registry, settings, options...),
	}
}

func newContext() context.Context {
	return context.Background()
}

func newTime(s string) time.Time {
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		panic(err)
	}
	return t
}

func newAggregateID() uuid.UUID {
	return uuid.New()
}

func newCommand(aggregateID uuid.UUID) model.Command {
	return model.Command{
		UserID:      newNullString("user01"),
		AggregateID: uuid.NullUUID{UUID: aggregateID, Valid: true},
		CommandType: "MyCommand",
		Data:        &myCommand{Reason: "test"},
	}
}

func newNullString(s string) sql.NullString {
	return sql.NullString{Valid: true, String: s}
}

func (s *storeTest) commitEvents(aggregateID uuid.UUID, events ...model.Event) error {
	return s.provider.Transact(newContext(), func(ctx context.Context) error {
		return s.store.CommitEvents(ctx, newCommand(aggregateID), model.StreamEvents{
			Stream: model.EventStream{
				AggregateType: "Account",
				AggregateID:   aggregateID,
			},
			Events: events,
		})
	})
}

func (s *storeTest) mustCommitEvents(t *testing.T, aggregateID uuid.UUID, events ...model.Event) {
	t.Helper()
	err := s.commitEvents(aggregateID, events...)
	assert.Equal(t, nil, err)
}

func newMyEvent(aggregateID uuid.UUID, seq int64, data string) model.Event {
	return model.Event{
		AggregateID:    aggregateID,
		SequenceNumber: seq,
		CreatedAt:      time.Now(),
		EventType:      "MyEvent",
		Data:           &myEvent{Data: data},
	}
}

func TestStore_Commit_Load_RoundTrip(t *testing.T) {
	s := newStoreTest()
	aggregateID := newAggregateID()

	// S1: data with unsafe SQL characters survives byte for byte
	const unsafe = "with ' unsafe SQL characters;\n"
	s.mustCommitEvents(t, aggregateID, newMyEvent(aggregateID, 1, unsafe))

	ctx := s.provider.Readonly(newContext())

	stream, events, err := s.store.LoadEvents(ctx, aggregateID)
	assert.Equal(t, nil, err)
	assert.NotNil(t, stream)
	assert.Equal(t, "Account", stream.AggregateType)
	assert.Equal(t, aggregateID, stream.AggregateID)

	assert.Equal(t, 1, len(events))
	assert.Equal(t, int64(1), events[0].SequenceNumber)
	assert.Equal(t, "MyEvent", events[0].EventType)
	assert.Equal(t, &myEvent{Data: unsafe}, events[0].Data)

	// the stored column is a json object, not a double-encoded string
	var data string
	err = s.tc.DB.Get(&data,
		"SELECT event_json->>'data' FROM event_records WHERE aggregate_id = $1", aggregateID)
	assert.Equal(t, nil, err)
	assert.Equal(t, unsafe, data)
}

func TestStore_Load_Unknown_Aggregate(t *testing.T) {
	s := newStoreTest()

	ctx := s.provider.Readonly(newContext())

	stream, events, err := s.store.LoadEvents(ctx, newAggregateID())
	assert.Equal(t, nil, err)
	assert.Nil(t, stream)
	assert.Nil(t, events)
}

func TestStore_Contiguous_Sequence(t *testing.T) {
	s := newStoreTest()
	aggregateID := newAggregateID()

	s.mustCommitEvents(t, aggregateID,
		newMyEvent(aggregateID, 1, "a"),
		newMyEvent(aggregateID, 2, "b"),
		newMyEvent(aggregateID, 3, "c"),
	)

	ctx := s.provider.Readonly(newContext())
	_, events, err := s.store.LoadEvents(ctx, aggregateID)
	assert.Equal(t, nil, err)

	var seqs []int64
	for _, e := range events {
		seqs = append(seqs, e.SequenceNumber)
	}
	assert.Equal(t, []int64{1, 2, 3}, seqs)
}

func TestStore_Optimistic_Locking_Across_Calls(t *testing.T) {
	s := newStoreTest()
	aggregateID := newAggregateID()

	s.mustCommitEvents(t, aggregateID, newMyEvent(aggregateID, 1, "a"))

	err := s.commitEvents(aggregateID, newMyEvent(aggregateID, 1, "conflict"))

	var lockErr *OptimisticLockingError
	assert.Equal(t, true, errors.As(err, &lockErr))

	var pqErr *pq.Error
	assert.Equal(t, true, errors.As(lockErr.Cause, &pqErr))

	// no partial state: only the first event exists
	ctx := s.provider.Readonly(newContext())
	_, events, err := s.store.LoadEvents(ctx, aggregateID)
	assert.Equal(t, nil, err)
	assert.Equal(t, 1, len(events))
	assert.Equal(t, &myEvent{Data: "a"}, events[0].Data)
}

func TestStore_Optimistic_Locking_Single_Call(t *testing.T) {
	s := newStoreTest()
	aggregateID := newAggregateID()

	// S2: duplicate sequence number inside one commit
	s.mustCommitEvents(t, aggregateID, newMyEvent(aggregateID, 1, "a"))

	err := s.commitEvents(aggregateID,
		newMyEvent(aggregateID, 2, "b"),
		newMyEvent(aggregateID, 2, "c"),
	)

	var lockErr *OptimisticLockingError
	assert.Equal(t, true, errors.As(err, &lockErr))

	// the whole commit rolled back, including the command record
	var count int
	err = s.tc.DB.Get(&count,
		"SELECT COUNT(*) FROM event_records WHERE aggregate_id = $1", aggregateID)
	assert.Equal(t, nil, err)
	assert.Equal(t, 1, count)
}

func TestStore_LoadEvent(t *testing.T) {
	s := newStoreTest()
	aggregateID := newAggregateID()

	s.mustCommitEvents(t, aggregateID,
		newMyEvent(aggregateID, 1, "a"),
		newMyEvent(aggregateID, 2, "b"),
	)

	ctx := s.provider.Readonly(newContext())

	event, err := s.store.LoadEvent(ctx, aggregateID, 2)
	assert.Equal(t, nil, err)
	assert.NotNil(t, event)
	assert.Equal(t, &myEvent{Data: "b"}, event.Data)

	event, err = s.store.LoadEvent(ctx, aggregateID, 3)
	assert.Equal(t, nil, err)
	assert.Nil(t, event)
}

func TestStore_LoadEventsForAggregates(t *testing.T) {
	s := newStoreTest()
	agg1 := newAggregateID()
	agg2 := newAggregateID()

	s.mustCommitEvents(t, agg1, newMyEvent(agg1, 1, "a1"))
	s.mustCommitEvents(t, agg2,
		newMyEvent(agg2, 1, "b1"),
		newMyEvent(agg2, 2, "b2"),
	)

	ctx := s.provider.Readonly(newContext())

	result, err := s.store.LoadEventsForAggregates(ctx, []uuid.UUID{agg1, agg2, newAggregateID()})
	assert.Equal(t, nil, err)
	assert.Equal(t, 2, len(result))

	byID := map[uuid.UUID]StreamWithEvents{}
	for _, r := range result {
		byID[r.Stream.AggregateID] = r
	}
	assert.Equal(t, 1, len(byID[agg1].Events))
	assert.Equal(t, 2, len(byID[agg2].Events))
}

func TestStore_Commit_Publishes_To_Handlers(t *testing.T) {
	s := newStoreTest()
	aggregateID := newAggregateID()

	var seen []string
	s.settings.handlers = []handler.MessageHandler{
		handler.NewBuilder("projector").
			On(func(ctx context.Context, event model.Event) error {
				seen = append(seen, event.Data.(*myEvent).Data)
				return nil
			}, &myEvent{}).
			Build(),
	}

	s.mustCommitEvents(t, aggregateID,
		newMyEvent(aggregateID, 1, "a"),
		newMyEvent(aggregateID, 2, "b"),
	)

	assert.Equal(t, []string{"a", "b"}, seen)
}

func TestStore_Commit_Disabled_Handlers(t *testing.T) {
	s := newStoreTest()
	aggregateID := newAggregateID()

	var seen []string
	s.settings.handlers = []handler.MessageHandler{
		handler.NewBuilder("projector").
			On(func(ctx context.Context, event model.Event) error {
				seen = append(seen, event.Data.(*myEvent).Data)
				return nil
			}, &myEvent{}).
			Build(),
	}
	s.settings.disabled = true

	s.mustCommitEvents(t, aggregateID, newMyEvent(aggregateID, 1, "a"))
	assert.Equal(t, 0, len(seen))
}

func TestStore_Commit_Handler_Failure_Rolls_Back(t *testing.T) {
	s := newStoreTest()
	aggregateID := newAggregateID()

	// S6
	cause := errors.New("Handler error")
	s.settings.handlers = []handler.MessageHandler{
		&handler.MessageHandlerMock{
			NameFunc: func() string { return "FailingHandler" },
			HandleMessageFunc: func(ctx context.Context, event model.Event) error {
				return cause
			},
			HandlesMessageFunc: func(msg model.Message) bool { return true },
		},
	}

	submitted := newMyEvent(aggregateID, 1, "a")
	err := s.commitEvents(aggregateID, submitted)

	var publishErr *publisher.PublishEventError
	assert.Equal(t, true, errors.As(err, &publishErr))
	assert.Equal(t, "FailingHandler", publishErr.EventHandlerName)
	assert.Equal(t, submitted, publishErr.Event)
	assert.Equal(t, "Handler error", publishErr.Cause.Error())

	// the enclosing transaction rolled back
	ctx := s.provider.Readonly(newContext())
	exists, err := s.store.EventsExists(ctx, aggregateID)
	assert.Equal(t, nil, err)
	assert.Equal(t, false, exists)
}

func TestStore_Partition_Key_Flips_While_Reading(t *testing.T) {
	s := newStoreTest()
	aggregateID := newAggregateID()

	s.mustCommitEvents(t, aggregateID, newMyEvent(aggregateID, 1, "a"))

	const numFlips = 1000

	stop := make(chan struct{})
	var wg sync.WaitGroup
	wg.Add(1)

	var readerErr error
	var nilLoads int

	go func() {
		defer wg.Done()

		ctx := s.provider.Readonly(newContext())
		for {
			select {
			case <-stop:
				return
			default:
			}

			stream, events, err := s.store.LoadEvents(ctx, aggregateID)
			if err != nil {
				readerErr = err
				return
			}
			if stream == nil || len(events) == 0 {
				nilLoads++
				return
			}
		}
	}()

	for i := 0; i < numFlips; i++ {
		key := "partition-" + string(rune('a'+i%8))
		err := s.provider.Transact(newContext(), func(ctx context.Context) error {
			return s.store.CommitEvents(ctx, newCommand(aggregateID), model.StreamEvents{
				Stream: model.EventStream{
					AggregateType:      "Account",
					AggregateID:        aggregateID,
					EventsPartitionKey: newNullString(key),
				},
			})
		})
		assert.Equal(t, nil, err)
	}
	close(stop)

	wg.Wait()
	assert.Equal(t, nil, readerErr)
	assert.Equal(t, 0, nilLoads)

	ctx := s.provider.Readonly(newContext())
	stream, _, err := s.store.LoadEvents(ctx, aggregateID)
	assert.Equal(t, nil, err)
	assert.Equal(t, true, stream.EventsPartitionKey.Valid)
}
