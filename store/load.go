package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/QuangTung97/eventstore/model"
	"github.com/QuangTung97/eventstore/repository"
)

// StreamWithEvents pairs a stream record with its loaded events
type StreamWithEvents struct {
	Stream model.StreamRecord
	Events []model.Event
}

// LoadEvents returns the stream record and the events after the latest
// snapshot, or (nil, nil) when the aggregate does not exist.
//
// The stream row and the event rows are read on the same context-carried
// handle, and the event query keys on aggregate_id alone. A concurrent
// update of events_partition_key can therefore never make an existing
// stream load empty.
func (s *Store) LoadEvents(ctx context.Context, aggregateID uuid.UUID) (*model.StreamRecord, []model.Event, error) {
	ctx, span := s.tracer.Start(ctx, "store::load_events")
	defer span.End()

	db := repository.GetReadonly(ctx)

	stream, err := s.getStreamRecord(ctx, db, aggregateID)
	if err != nil {
		return nil, nil, err
	}
	if stream == nil {
		return nil, nil, nil
	}

	query := fmt.Sprintf(`
SELECT aggregate_id, sequence_number, created_at, event_type, event_json, command_record_id, xact_id
FROM %s
WHERE aggregate_id = $1
  AND sequence_number > COALESCE(
	(SELECT MAX(sequence_number) FROM %s WHERE aggregate_id = $1), 0)
ORDER BY sequence_number`, s.tables.EventRecords, s.tables.SnapshotRecords)

	var records []model.EventRecord
	if err := db.SelectContext(ctx, &records, query, aggregateID); err != nil {
		return nil, nil, fmt.Errorf("select event records: %w", err)
	}

	events, err := s.deserializeAll(records)
	if err != nil {
		return nil, nil, err
	}
	return stream, events, nil
}

// LoadEventsForAggregates is the batched form of LoadEvents. Aggregates
// without a stream record are absent from the result.
func (s *Store) LoadEventsForAggregates(
	ctx context.Context, aggregateIDs []uuid.UUID,
) ([]StreamWithEvents, error) {
	if len(aggregateIDs) == 0 {
		return nil, nil
	}

	db := repository.GetReadonly(ctx)

	ids := make([]interface{}, 0, len(aggregateIDs))
	for _, id := range aggregateIDs {
		ids = append(ids, id)
	}

	streamQuery, args, err := sqlx.In(fmt.Sprintf(`
SELECT aggregate_id, created_at, aggregate_type, snapshot_threshold,
	events_partition_key, snapshot_outdated_at
FROM %s WHERE aggregate_id IN (?)
ORDER BY aggregate_id`, s.tables.StreamRecords), ids)
	if err != nil {
		return nil, err
	}
	streamQuery = sqlx.Rebind(sqlx.DOLLAR, streamQuery)

	var streams []model.StreamRecord
	if err := db.SelectContext(ctx, &streams, streamQuery, args...); err != nil {
		return nil, fmt.Errorf("select stream records: %w", err)
	}
	if len(streams) == 0 {
		return nil, nil
	}

	eventQuery, args, err := sqlx.In(fmt.Sprintf(`
SELECT e.aggregate_id, e.sequence_number, e.created_at, e.event_type,
	e.event_json, e.command_record_id, e.xact_id
FROM %s e
WHERE e.aggregate_id IN (?)
  AND e.sequence_number > COALESCE(
	(SELECT MAX(s.sequence_number) FROM %s s WHERE s.aggregate_id = e.aggregate_id), 0)
ORDER BY e.aggregate_id, e.sequence_number`,
		s.tables.EventRecords, s.tables.SnapshotRecords), ids)
	if err != nil {
		return nil, err
	}
	eventQuery = sqlx.Rebind(sqlx.DOLLAR, eventQuery)

	var records []model.EventRecord
	if err := db.SelectContext(ctx, &records, eventQuery, args...); err != nil {
		return nil, fmt.Errorf("select event records: %w", err)
	}

	eventsByAggregate := map[uuid.UUID][]model.Event{}
	for _, record := range records {
		event, err := s.deserializeEvent(record)
		if err != nil {
			return nil, err
		}
		eventsByAggregate[record.AggregateID] = append(eventsByAggregate[record.AggregateID], event)
	}

	result := make([]StreamWithEvents, 0, len(streams))
	for _, stream := range streams {
		result = append(result, StreamWithEvents{
			Stream: stream,
			Events: eventsByAggregate[stream.AggregateID],
		})
	}
	return result, nil
}

// LoadEvent returns a single event, or nil when it does not exist
func (s *Store) LoadEvent(ctx context.Context, aggregateID uuid.UUID, sequenceNumber int64) (*model.Event, error) {
	db := repository.GetReadonly(ctx)

	query := fmt.Sprintf(`
SELECT aggregate_id, sequence_number, created_at, event_type, event_json, command_record_id, xact_id
FROM %s WHERE aggregate_id = $1 AND sequence_number = $2`, s.tables.EventRecords)

	var record model.EventRecord
	err := db.GetContext(ctx, &record, query, aggregateID, sequenceNumber)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("select event record: %w", err)
	}

	event, err := s.deserializeEvent(record)
	if err != nil {
		return nil, err
	}
	return &event, nil
}

// StreamEventsForAggregate yields (stream, event) pairs in increasing
// sequence number order, skipping snapshot events. With loadUntil set, only
// events created strictly before it are yielded. Returns ErrNoEventsFound
// when nothing would be yielded.
func (s *Store) StreamEventsForAggregate(
	ctx context.Context,
	aggregateID uuid.UUID,
	loadUntil *time.Time,
	fn func(stream model.StreamRecord, event model.Event) error,
) error {
	db := repository.GetReadonly(ctx)

	stream, err := s.getStreamRecord(ctx, db, aggregateID)
	if err != nil {
		return err
	}
	if stream == nil {
		return ErrNoEventsFound
	}

	query := fmt.Sprintf(`
SELECT aggregate_id, sequence_number, created_at, event_type, event_json, command_record_id, xact_id
FROM %s
WHERE aggregate_id = $1 AND event_type <> $2`, s.tables.EventRecords)

	args := []interface{}{aggregateID, model.SnapshotEventType}
	if loadUntil != nil {
		query += " AND created_at < $3"
		args = append(args, *loadUntil)
	}
	query += " ORDER BY sequence_number"

	rows, err := db.QueryxContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("select event records: %w", err)
	}
	defer func() {
		_ = rows.Close()
	}()

	yielded := false
	for rows.Next() {
		var record model.EventRecord
		if err := rows.StructScan(&record); err != nil {
			return fmt.Errorf("scan event record: %w", err)
		}

		event, err := s.deserializeEvent(record)
		if err != nil {
			return err
		}
		if err := fn(*stream, event); err != nil {
			return err
		}
		yielded = true
	}
	if err := rows.Err(); err != nil {
		return err
	}

	if !yielded {
		return ErrNoEventsFound
	}
	return nil
}

// EventsExists ...
func (s *Store) EventsExists(ctx context.Context, aggregateID uuid.UUID) (bool, error) {
	db := repository.GetReadonly(ctx)

	query := fmt.Sprintf(
		"SELECT EXISTS (SELECT 1 FROM %s WHERE aggregate_id = $1)", s.tables.EventRecords)

	var exists bool
	if err := db.GetContext(ctx, &exists, query, aggregateID); err != nil {
		return false, err
	}
	return exists, nil
}

// StreamExists ...
func (s *Store) StreamExists(ctx context.Context, aggregateID uuid.UUID) (bool, error) {
	db := repository.GetReadonly(ctx)

	query := fmt.Sprintf(
		"SELECT EXISTS (SELECT 1 FROM %s WHERE aggregate_id = $1)", s.tables.StreamRecords)

	var exists bool
	if err := db.GetContext(ctx, &exists, query, aggregateID); err != nil {
		return false, err
	}
	return exists, nil
}

func (s *Store) getStreamRecord(
	ctx context.Context, db repository.Readonly, aggregateID uuid.UUID,
) (*model.StreamRecord, error) {
	query := fmt.Sprintf(`
SELECT aggregate_id, created_at, aggregate_type, snapshot_threshold,
	events_partition_key, snapshot_outdated_at
FROM %s WHERE aggregate_id = $1`, s.tables.StreamRecords)

	var stream model.StreamRecord
	err := db.GetContext(ctx, &stream, query, aggregateID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("select stream record: %w", err)
	}
	return &stream, nil
}

func (s *Store) deserializeAll(records []model.EventRecord) ([]model.Event, error) {
	var events []model.Event
	for _, record := range records {
		event, err := s.deserializeEvent(record)
		if err != nil {
			return nil, err
		}
		events = append(events, event)
	}
	return events, nil
}
