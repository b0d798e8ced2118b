package store

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"

	"github.com/QuangTung97/eventstore/model"
	"github.com/QuangTung97/eventstore/repository"
)

// GetEventsFunc produces the cursor of event rows to replay, ordered by
// (aggregate_id, sequence_number)
type GetEventsFunc func(ctx context.Context) (*sqlx.Rows, error)

// OnProgressFunc is called once per block with the cumulative count and the
// position of the last replayed row
type OnProgressFunc func(count int64, lastXactID int64, lastAggregateID uuid.UUID)

// XactEventsCursor returns the canonical replay producer: every event row
// with xact_id above the given cursor
func (s *Store) XactEventsCursor(afterXactID int64) GetEventsFunc {
	return func(ctx context.Context) (*sqlx.Rows, error) {
		db := repository.GetReadonly(ctx)

		query := fmt.Sprintf(`
SELECT aggregate_id, sequence_number, created_at, event_type, event_json, command_record_id, xact_id
FROM %s
WHERE xact_id > $1
ORDER BY aggregate_id, sequence_number`, s.tables.EventRecords)

		return db.QueryxContext(ctx, query, afterXactID)
	}
}

// ReplayEventsFromCursor streams persisted events through the registered
// handlers in blocks of blockSize, bypassing the publisher queue. Replay is
// restart safe: onProgress reports the last xact id of each block so a
// crashed replay can resume from there.
func (s *Store) ReplayEventsFromCursor(
	ctx context.Context,
	blockSize int,
	getEvents GetEventsFunc,
	onProgress OnProgressFunc,
) error {
	ctx, span := s.tracer.Start(ctx, "store::replay_events_from_cursor")
	defer span.End()

	if blockSize <= 0 {
		return fmt.Errorf("block size must be positive, got %d", blockSize)
	}

	rows, err := getEvents(ctx)
	if err != nil {
		return fmt.Errorf("open replay cursor: %w", err)
	}
	defer func() {
		_ = rows.Close()
	}()

	var count int64
	block := make([]model.EventRecord, 0, blockSize)

	flush := func() error {
		if len(block) == 0 {
			return nil
		}
		if err := s.replayBlock(ctx, block); err != nil {
			return err
		}

		count += int64(len(block))
		last := block[len(block)-1]
		if onProgress != nil {
			onProgress(count, last.XactID, last.AggregateID)
		}
		s.logger.Debug("replayed block",
			zap.Int64("count", count),
			zap.Int64("last_xact_id", last.XactID))

		block = block[:0]
		return nil
	}

	for rows.Next() {
		var record model.EventRecord
		if err := rows.StructScan(&record); err != nil {
			return fmt.Errorf("scan event record: %w", err)
		}

		block = append(block, record)
		if len(block) == blockSize {
			if err := flush(); err != nil {
				return err
			}
		}
	}
	if err := rows.Err(); err != nil {
		return err
	}

	if err := flush(); err != nil {
		return err
	}

	s.logger.Info("replay finished", zap.Int64("count", count))
	return nil
}

func (s *Store) replayBlock(ctx context.Context, block []model.EventRecord) error {
	for _, record := range block {
		event, err := s.deserializeEvent(record)
		if err != nil {
			return err
		}

		for _, h := range s.eventHandlers() {
			if err := h.HandleMessage(ctx, event); err != nil {
				return fmt.Errorf("replay event %s/%d to handler %q: %w",
					record.AggregateID, record.SequenceNumber, h.Name(), err)
			}
		}
		replayedEventsCounter.Inc()
	}
	return nil
}
