package store

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx/types"
	"go.uber.org/zap"

	"github.com/QuangTung97/eventstore/model"
	"github.com/QuangTung97/eventstore/repository"
)

// PermanentlyDeleteEventStream removes the stream, its snapshots and its
// events. The pre-deletion event rows are preserved in saved_event_records
// with operation 'D'.
func (s *Store) PermanentlyDeleteEventStream(ctx context.Context, aggregateID uuid.UUID) error {
	tx := repository.GetTx(ctx)

	if err := s.saveEventRecords(ctx, tx, aggregateID, model.SavedEventOperationDelete); err != nil {
		return err
	}

	for _, table := range []string{
		s.tables.SnapshotRecords,
		s.tables.EventRecords,
		s.tables.StreamRecords,
	} {
		query := fmt.Sprintf("DELETE FROM %s WHERE aggregate_id = $1", table)
		if _, err := tx.ExecContext(ctx, query, aggregateID); err != nil {
			return fmt.Errorf("delete from %s: %w", table, err)
		}
	}

	s.invalidateSnapshotCache(aggregateID)
	deletedStreamsCounter.Inc()
	s.logger.Info("permanently deleted event stream",
		zap.String("aggregate_id", aggregateID.String()))
	return nil
}

// PermanentlyDeleteCommandsWithoutEvents removes command records whose
// events have all been deleted. Commands with live events are kept; the
// foreign key from event_records enforces the same.
func (s *Store) PermanentlyDeleteCommandsWithoutEvents(ctx context.Context, aggregateID uuid.NullUUID) error {
	tx := repository.GetTx(ctx)

	query := fmt.Sprintf(`
DELETE FROM %s
WHERE ($1::uuid IS NULL OR aggregate_id = $1)
  AND NOT EXISTS (
	SELECT 1 FROM %s e WHERE e.command_record_id = %s.id
)`, s.tables.CommandRecords, s.tables.EventRecords, s.tables.CommandRecords)

	_, err := tx.ExecContext(ctx, query, aggregateID)
	return err
}

// UpdateEventJSON is the audited repair path: the prior row is copied to
// saved_event_records with operation 'U' before the update.
func (s *Store) UpdateEventJSON(
	ctx context.Context, aggregateID uuid.UUID, sequenceNumber int64, eventJSON types.JSONText,
) error {
	tx := repository.GetTx(ctx)

	saveQuery := fmt.Sprintf(`
INSERT INTO %s (operation, aggregate_id, sequence_number, created_at,
	event_type, event_json, command_record_id, xact_id)
SELECT $3, aggregate_id, sequence_number, created_at,
	event_type, event_json, command_record_id, xact_id
FROM %s WHERE aggregate_id = $1 AND sequence_number = $2`,
		s.tables.SavedEventRecords, s.tables.EventRecords)

	_, err := tx.ExecContext(ctx, saveQuery,
		aggregateID, sequenceNumber, string(model.SavedEventOperationUpdate))
	if err != nil {
		return fmt.Errorf("save event record: %w", err)
	}

	updateQuery := fmt.Sprintf(`
UPDATE %s SET event_json = $3
WHERE aggregate_id = $1 AND sequence_number = $2`, s.tables.EventRecords)

	_, err = tx.ExecContext(ctx, updateQuery, aggregateID, sequenceNumber, string(eventJSON))
	return err
}

func (s *Store) saveEventRecords(
	ctx context.Context, tx repository.Transaction,
	aggregateID uuid.UUID, operation model.SavedEventOperation,
) error {
	query := fmt.Sprintf(`
INSERT INTO %s (operation, aggregate_id, sequence_number, created_at,
	event_type, event_json, command_record_id, xact_id)
SELECT $2, aggregate_id, sequence_number, created_at,
	event_type, event_json, command_record_id, xact_id
FROM %s WHERE aggregate_id = $1`,
		s.tables.SavedEventRecords, s.tables.EventRecords)

	if _, err := tx.ExecContext(ctx, query, aggregateID, string(operation)); err != nil {
		return fmt.Errorf("save event records: %w", err)
	}
	return nil
}
