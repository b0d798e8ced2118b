package model

import (
	"database/sql"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx/types"
)

// StreamRecord ...
type StreamRecord struct {
	AggregateID        uuid.UUID      `db:"aggregate_id"`
	CreatedAt          time.Time      `db:"created_at"`
	AggregateType      string         `db:"aggregate_type"`
	SnapshotThreshold  sql.NullInt64  `db:"snapshot_threshold"`
	EventsPartitionKey sql.NullString `db:"events_partition_key"`
	SnapshotOutdatedAt sql.NullTime   `db:"snapshot_outdated_at"`
}

// CommandRecord ...
type CommandRecord struct {
	ID                  int64          `db:"id"`
	UserID              sql.NullString `db:"user_id"`
	AggregateID         uuid.NullUUID  `db:"aggregate_id"`
	CommandType         string         `db:"command_type"`
	EventAggregateID    uuid.NullUUID  `db:"event_aggregate_id"`
	EventSequenceNumber sql.NullInt64  `db:"event_sequence_number"`
	CommandJSON         types.JSONText `db:"command_json"`
	CreatedAt           time.Time      `db:"created_at"`
}

// EventRecord ...
type EventRecord struct {
	AggregateID     uuid.UUID      `db:"aggregate_id"`
	SequenceNumber  int64          `db:"sequence_number"`
	CreatedAt       time.Time      `db:"created_at"`
	EventType       string         `db:"event_type"`
	EventJSON       types.JSONText `db:"event_json"`
	CommandRecordID int64          `db:"command_record_id"`
	XactID          int64          `db:"xact_id"`
}

// SnapshotRecord ...
type SnapshotRecord struct {
	AggregateID    uuid.UUID      `db:"aggregate_id"`
	SequenceNumber int64          `db:"sequence_number"`
	CreatedAt      time.Time      `db:"created_at"`
	SnapshotType   string         `db:"snapshot_type"`
	SnapshotJSON   types.JSONText `db:"snapshot_json"`
}

// SavedEventOperation marks why a row landed in saved_event_records
type SavedEventOperation string

const (
	// SavedEventOperationUpdate ...
	SavedEventOperationUpdate SavedEventOperation = "U"

	// SavedEventOperationDelete ...
	SavedEventOperationDelete SavedEventOperation = "D"
)

// SavedEventRecord is the shadow copy of an event row taken before an
// audited update or delete
type SavedEventRecord struct {
	Operation       SavedEventOperation `db:"operation"`
	AggregateID     uuid.UUID           `db:"aggregate_id"`
	SequenceNumber  int64               `db:"sequence_number"`
	CreatedAt       time.Time           `db:"created_at"`
	EventType       string              `db:"event_type"`
	EventJSON       types.JSONText      `db:"event_json"`
	CommandRecordID int64               `db:"command_record_id"`
	XactID          int64               `db:"xact_id"`
}
