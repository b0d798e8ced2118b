package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/QuangTung97/eventstore/model"
	"github.com/QuangTung97/eventstore/repository"
)

// StoreSnapshots inserts the snapshots and clears snapshot_outdated_at for
// each affected stream
func (s *Store) StoreSnapshots(ctx context.Context, snapshots []model.Snapshot) error {
	tx := repository.GetTx(ctx)

	insertQuery := fmt.Sprintf(`
INSERT INTO %s (aggregate_id, sequence_number, created_at, snapshot_type, snapshot_json)
VALUES ($1, $2, $3, $4, $5)`, s.tables.SnapshotRecords)

	clearQuery := fmt.Sprintf(`
UPDATE %s SET snapshot_outdated_at = NULL WHERE aggregate_id = $1`, s.tables.StreamRecords)

	for _, snapshot := range snapshots {
		createdAt := snapshot.CreatedAt
		if createdAt.IsZero() {
			createdAt = time.Now()
		}

		_, err := tx.ExecContext(ctx, insertQuery,
			snapshot.AggregateID,
			snapshot.SequenceNumber,
			createdAt,
			snapshot.SnapshotType,
			string(snapshot.Data),
		)
		if err != nil {
			return fmt.Errorf("insert snapshot record: %w", err)
		}

		if _, err := tx.ExecContext(ctx, clearQuery, snapshot.AggregateID); err != nil {
			return fmt.Errorf("clear snapshot outdated: %w", err)
		}

		s.cacheSnapshot(snapshot, createdAt)
	}
	return nil
}

// LoadLatestSnapshot returns the most recent snapshot, or nil when the
// aggregate has none
func (s *Store) LoadLatestSnapshot(ctx context.Context, aggregateID uuid.UUID) (*model.Snapshot, error) {
	if cached, ok := s.cachedSnapshot(aggregateID); ok {
		return cached, nil
	}

	db := repository.GetReadonly(ctx)

	query := fmt.Sprintf(`
SELECT aggregate_id, sequence_number, created_at, snapshot_type, snapshot_json
FROM %s WHERE aggregate_id = $1
ORDER BY sequence_number DESC
LIMIT 1`, s.tables.SnapshotRecords)

	var record model.SnapshotRecord
	err := db.GetContext(ctx, &record, query, aggregateID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("select snapshot record: %w", err)
	}

	snapshot := model.Snapshot{
		AggregateID:    record.AggregateID,
		SequenceNumber: record.SequenceNumber,
		CreatedAt:      record.CreatedAt,
		SnapshotType:   record.SnapshotType,
		Data:           record.SnapshotJSON,
	}
	s.cacheSnapshot(snapshot, snapshot.CreatedAt)
	return &snapshot, nil
}

// MarkAggregateForSnapshotting ...
func (s *Store) MarkAggregateForSnapshotting(ctx context.Context, aggregateID uuid.UUID) error {
	tx := repository.GetTx(ctx)

	query := fmt.Sprintf(`
UPDATE %s SET snapshot_outdated_at = $2 WHERE aggregate_id = $1`, s.tables.StreamRecords)

	_, err := tx.ExecContext(ctx, query, aggregateID, time.Now())
	return err
}

// ClearAggregateForSnapshotting removes the aggregate's snapshots and takes
// it out of the needs-snapshot set
func (s *Store) ClearAggregateForSnapshotting(ctx context.Context, aggregateID uuid.UUID) error {
	tx := repository.GetTx(ctx)

	deleteQuery := fmt.Sprintf(
		"DELETE FROM %s WHERE aggregate_id = $1", s.tables.SnapshotRecords)
	if _, err := tx.ExecContext(ctx, deleteQuery, aggregateID); err != nil {
		return fmt.Errorf("delete snapshot records: %w", err)
	}

	clearQuery := fmt.Sprintf(`
UPDATE %s SET snapshot_outdated_at = NULL WHERE aggregate_id = $1`, s.tables.StreamRecords)
	if _, err := tx.ExecContext(ctx, clearQuery, aggregateID); err != nil {
		return err
	}

	s.invalidateSnapshotCache(aggregateID)
	return nil
}

// ClearAggregatesForSnapshottingWithLastEventBefore takes every aggregate
// whose last event is older than the given time out of the needs-snapshot
// set. Snapshots already stored stay in place.
func (s *Store) ClearAggregatesForSnapshottingWithLastEventBefore(ctx context.Context, t time.Time) error {
	tx := repository.GetTx(ctx)

	query := fmt.Sprintf(`
UPDATE %s SET snapshot_outdated_at = NULL
WHERE aggregate_id IN (
	SELECT aggregate_id FROM %s
	GROUP BY aggregate_id
	HAVING MAX(created_at) < $1
)`, s.tables.StreamRecords, s.tables.EventRecords)

	_, err := tx.ExecContext(ctx, query, t)
	return err
}

const defaultSnapshotScanLimit = 10

// AggregatesThatNeedSnapshots returns aggregate ids with a non-null
// snapshot_outdated_at, in id order, after lastAggregateID
func (s *Store) AggregatesThatNeedSnapshots(
	ctx context.Context, lastAggregateID uuid.NullUUID, limit int,
) ([]uuid.UUID, error) {
	if limit <= 0 {
		limit = defaultSnapshotScanLimit
	}

	db := repository.GetReadonly(ctx)

	query := fmt.Sprintf(`
SELECT aggregate_id FROM %s
WHERE snapshot_outdated_at IS NOT NULL
  AND ($1::uuid IS NULL OR aggregate_id > $1)
ORDER BY aggregate_id
LIMIT $2`, s.tables.StreamRecords)

	var ids []uuid.UUID
	if err := db.SelectContext(ctx, &ids, query, lastAggregateID, limit); err != nil {
		return nil, err
	}
	return ids, nil
}

// AggregatesThatNeedSnapshotsOrderedByPriority returns the same set ordered
// by oldest snapshot_outdated_at first
func (s *Store) AggregatesThatNeedSnapshotsOrderedByPriority(
	ctx context.Context, limit int,
) ([]uuid.UUID, error) {
	if limit <= 0 {
		limit = defaultSnapshotScanLimit
	}

	db := repository.GetReadonly(ctx)

	query := fmt.Sprintf(`
SELECT aggregate_id FROM %s
WHERE snapshot_outdated_at IS NOT NULL
ORDER BY snapshot_outdated_at, aggregate_id
LIMIT $1`, s.tables.StreamRecords)

	var ids []uuid.UUID
	if err := db.SelectContext(ctx, &ids, query, limit); err != nil {
		return nil, err
	}
	return ids, nil
}

// DeleteSnapshotsBefore deletes snapshots strictly below the sequence
// number. An aggregate losing its last snapshot while it still has events
// re-enters the needs-snapshot set.
func (s *Store) DeleteSnapshotsBefore(ctx context.Context, aggregateID uuid.UUID, sequenceNumber int64) error {
	tx := repository.GetTx(ctx)

	deleteQuery := fmt.Sprintf(`
DELETE FROM %s WHERE aggregate_id = $1 AND sequence_number < $2`, s.tables.SnapshotRecords)
	if _, err := tx.ExecContext(ctx, deleteQuery, aggregateID, sequenceNumber); err != nil {
		return fmt.Errorf("delete snapshot records: %w", err)
	}

	markQuery := fmt.Sprintf(`
UPDATE %s SET snapshot_outdated_at = $2
WHERE aggregate_id = $1
  AND NOT EXISTS (SELECT 1 FROM %s WHERE aggregate_id = $1)
  AND EXISTS (SELECT 1 FROM %s WHERE aggregate_id = $1)`,
		s.tables.StreamRecords, s.tables.SnapshotRecords, s.tables.EventRecords)
	if _, err := tx.ExecContext(ctx, markQuery, aggregateID, time.Now()); err != nil {
		return err
	}

	s.invalidateSnapshotCache(aggregateID)
	return nil
}

// DeleteAllSnapshots removes every snapshot and re-marks every aggregate
// that still has events
func (s *Store) DeleteAllSnapshots(ctx context.Context) error {
	tx := repository.GetTx(ctx)

	deleteQuery := fmt.Sprintf("DELETE FROM %s", s.tables.SnapshotRecords)
	if _, err := tx.ExecContext(ctx, deleteQuery); err != nil {
		return fmt.Errorf("delete snapshot records: %w", err)
	}

	markQuery := fmt.Sprintf(`
UPDATE %s SET snapshot_outdated_at = $1
WHERE EXISTS (SELECT 1 FROM %s e WHERE e.aggregate_id = %s.aggregate_id)`,
		s.tables.StreamRecords, s.tables.EventRecords, s.tables.StreamRecords)
	if _, err := tx.ExecContext(ctx, markQuery, time.Now()); err != nil {
		return err
	}

	if s.snapshotCache != nil {
		s.snapshotCache.Clear()
	}
	return nil
}

func (s *Store) cacheSnapshot(snapshot model.Snapshot, createdAt time.Time) {
	if s.snapshotCache == nil {
		return
	}

	record := model.SnapshotRecord{
		AggregateID:    snapshot.AggregateID,
		SequenceNumber: snapshot.SequenceNumber,
		CreatedAt:      createdAt,
		SnapshotType:   snapshot.SnapshotType,
		SnapshotJSON:   snapshot.Data,
	}
	data, err := json.Marshal(record)
	if err != nil {
		return
	}

	key := snapshotCacheKey(snapshot.AggregateID)
	if cached, ok := s.snapshotCache.Get(key); ok {
		var prev model.SnapshotRecord
		if json.Unmarshal(cached, &prev) == nil && prev.SequenceNumber > snapshot.SequenceNumber {
			return
		}
	}
	s.snapshotCache.Set(key, data)
}

func (s *Store) cachedSnapshot(aggregateID uuid.UUID) (*model.Snapshot, bool) {
	if s.snapshotCache == nil {
		return nil, false
	}

	data, ok := s.snapshotCache.Get(snapshotCacheKey(aggregateID))
	if !ok {
		return nil, false
	}

	var record model.SnapshotRecord
	if err := json.Unmarshal(data, &record); err != nil {
		return nil, false
	}
	return &model.Snapshot{
		AggregateID:    record.AggregateID,
		SequenceNumber: record.SequenceNumber,
		CreatedAt:      record.CreatedAt,
		SnapshotType:   record.SnapshotType,
		Data:           record.SnapshotJSON,
	}, true
}
