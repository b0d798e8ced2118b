package store

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/QuangTung97/eventstore/handler"
	"github.com/QuangTung97/eventstore/model"
	"github.com/QuangTung97/eventstore/pkg/memtable"
	"github.com/QuangTung97/eventstore/publisher"
	"github.com/QuangTung97/eventstore/repository"
)

// Settings is the runtime configuration consulted on every operation
type Settings interface {
	publisher.Settings

	CacheEventTypes() bool
}

// TableConfig makes the backing table names injectable
type TableConfig struct {
	StreamRecords     string
	CommandRecords    string
	EventRecords      string
	SnapshotRecords   string
	SavedEventRecords string
}

// DefaultTableConfig ...
func DefaultTableConfig() TableConfig {
	return TableConfig{
		StreamRecords:     "stream_records",
		CommandRecords:    "command_records",
		EventRecords:      "event_records",
		SnapshotRecords:   "snapshot_records",
		SavedEventRecords: "saved_event_records",
	}
}

// Store is the Postgres event store. All operations expect the context to
// carry an sqlx handle from repository.Provider: write operations need a
// transaction, read operations run on either.
type Store struct {
	tables    TableConfig
	registry  *Registry
	types     *typeCache
	settings  Settings
	publisher *publisher.Publisher
	logger    *zap.Logger
	tracer    trace.Tracer

	snapshotCache *memtable.MemTable
}

// Option ...
type Option func(s *Store)

// WithTableConfig ...
func WithTableConfig(tables TableConfig) Option {
	return func(s *Store) {
		s.tables = tables
	}
}

// WithLogger ...
func WithLogger(logger *zap.Logger) Option {
	return func(s *Store) {
		s.logger = logger
	}
}

// WithSnapshotCache keeps the latest snapshot of each aggregate in an
// in-process cache
func WithSnapshotCache(cache *memtable.MemTable) Option {
	return func(s *Store) {
		s.snapshotCache = cache
	}
}

// New ...
func New(registry *Registry, settings Settings, options ...Option) *Store {
	s := &Store{
		tables:    DefaultTableConfig(),
		registry:  registry,
		types:     newTypeCache(registry),
		settings:  settings,
		publisher: publisher.New(settings),
		logger:    zap.NewNop(),
		tracer:    otel.Tracer("eventstore"),
	}
	for _, o := range options {
		o(s)
	}
	return s
}

// Registry ...
func (s *Store) Registry() *Registry {
	return s.registry
}

// CommitEvents writes the command record, upserts the stream records and
// inserts all event records in the surrounding transaction, then publishes
// the committed events on the calling context.
//
// A duplicate (aggregate_id, sequence_number) insert returns
// *OptimisticLockingError; the transaction owner rolls back, so no partial
// state persists. A handler failure during publication propagates for the
// same reason.
func (s *Store) CommitEvents(ctx context.Context, command model.Command, streams ...model.StreamEvents) error {
	ctx, span := s.tracer.Start(ctx, "store::commit_events")
	defer span.End()

	tx := repository.GetTx(ctx)

	commandRecordID, err := s.insertCommandRecord(ctx, tx, command)
	if err != nil {
		return err
	}

	var committed []model.Event
	for _, se := range streams {
		if err := s.upsertStreamRecord(ctx, tx, se.Stream); err != nil {
			return err
		}
		for _, event := range se.Events {
			if err := s.insertEventRecord(ctx, tx, event, commandRecordID); err != nil {
				return err
			}
			committed = append(committed, event)
		}
	}

	commitCounter.Inc()
	committedEventsCounter.Add(float64(len(committed)))

	return s.publisher.PublishEvents(ctx, committed)
}

func (s *Store) insertCommandRecord(
	ctx context.Context, tx repository.Transaction, command model.Command,
) (int64, error) {
	data, err := json.Marshal(command.Data)
	if err != nil {
		return 0, fmt.Errorf("marshal command: %w", err)
	}

	createdAt := command.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now()
	}

	query := fmt.Sprintf(`
INSERT INTO %s (user_id, aggregate_id, command_type,
	event_aggregate_id, event_sequence_number, command_json, created_at)
VALUES ($1, $2, $3, $4, $5, $6, $7)
RETURNING id`, s.tables.CommandRecords)

	var id int64
	err = tx.QueryRowxContext(ctx, query,
		command.UserID,
		command.AggregateID,
		command.CommandType,
		command.EventAggregateID,
		command.EventSequenceNumber,
		string(data),
		createdAt,
	).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("insert command record: %w", err)
	}
	return id, nil
}

func (s *Store) upsertStreamRecord(
	ctx context.Context, tx repository.Transaction, stream model.EventStream,
) error {
	query := fmt.Sprintf(`
INSERT INTO %s (aggregate_id, created_at, aggregate_type,
	snapshot_threshold, events_partition_key, snapshot_outdated_at)
VALUES ($1, $2, $3, $4, COALESCE($5, ''), $6)
ON CONFLICT (aggregate_id) DO UPDATE SET
	snapshot_threshold = COALESCE($4, %s.snapshot_threshold),
	events_partition_key = COALESCE($5, %s.events_partition_key),
	snapshot_outdated_at = COALESCE($6, %s.snapshot_outdated_at)`,
		s.tables.StreamRecords,
		s.tables.StreamRecords, s.tables.StreamRecords, s.tables.StreamRecords)

	_, err := tx.ExecContext(ctx, query,
		stream.AggregateID,
		time.Now(),
		stream.AggregateType,
		stream.SnapshotThreshold,
		stream.EventsPartitionKey,
		stream.SnapshotOutdatedAt,
	)
	if err != nil {
		return fmt.Errorf("upsert stream record: %w", err)
	}
	return nil
}

func (s *Store) insertEventRecord(
	ctx context.Context, tx repository.Transaction, event model.Event, commandRecordID int64,
) error {
	data, err := json.Marshal(event.Data)
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}

	query := fmt.Sprintf(`
INSERT INTO %s (aggregate_id, sequence_number, created_at,
	event_type, event_json, command_record_id)
VALUES ($1, $2, $3, $4, $5, $6)`, s.tables.EventRecords)

	_, err = tx.ExecContext(ctx, query,
		event.AggregateID,
		event.SequenceNumber,
		event.CreatedAt,
		event.EventType,
		string(data),
		commandRecordID,
	)
	if err != nil {
		if isUniqueViolation(err) {
			commitConflictCounter.Inc()
			return &OptimisticLockingError{Cause: err}
		}
		return fmt.Errorf("insert event record: %w", err)
	}
	return nil
}

func (s *Store) resolveEventType(eventType string) (Factory, bool) {
	return s.types.resolve(eventType, s.settings.CacheEventTypes())
}

func (s *Store) deserializeEvent(record model.EventRecord) (model.Event, error) {
	factory, ok := s.resolveEventType(record.EventType)
	if !ok {
		return model.Event{}, fmt.Errorf("unknown event type: %s", record.EventType)
	}

	data := factory()
	if err := json.Unmarshal(record.EventJSON, data); err != nil {
		return model.Event{}, fmt.Errorf("unmarshal event %s: %w", record.EventType, err)
	}

	return model.Event{
		AggregateID:    record.AggregateID,
		SequenceNumber: record.SequenceNumber,
		CreatedAt:      record.CreatedAt,
		EventType:      record.EventType,
		Data:           data,
	}, nil
}

func (s *Store) eventHandlers() []handler.MessageHandler {
	return s.settings.EventHandlers()
}

func (s *Store) invalidateSnapshotCache(aggregateIDs ...uuid.UUID) {
	if s.snapshotCache == nil {
		return
	}
	for _, id := range aggregateIDs {
		s.snapshotCache.Delete(snapshotCacheKey(id))
	}
}

func snapshotCacheKey(aggregateID uuid.UUID) string {
	return "snapshot:" + aggregateID.String()
}
