package model

import (
	"database/sql"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx/types"
)

// Message is any registered event or command payload
type Message interface{}

// SnapshotEventType is excluded when streaming events for an aggregate
const SnapshotEventType = "SnapshotEvent"

// Event is one domain event of an aggregate stream. Data holds the typed
// payload; it is what gets serialized into event_json.
type Event struct {
	AggregateID    uuid.UUID
	SequenceNumber int64
	CreatedAt      time.Time
	EventType      string
	Data           Message
}

// EventStream describes the stream a batch of events is committed into.
// EventsPartitionKey and SnapshotOutdatedAt only take effect when valid:
// commit then updates the corresponding stream_records columns.
type EventStream struct {
	AggregateType      string
	AggregateID        uuid.UUID
	SnapshotThreshold  sql.NullInt64
	EventsPartitionKey sql.NullString
	SnapshotOutdatedAt sql.NullTime
}

// StreamEvents pairs a stream descriptor with the events to commit into it
type StreamEvents struct {
	Stream EventStream
	Events []Event
}

// Command is the intent that produced a batch of events
type Command struct {
	UserID              sql.NullString
	AggregateID         uuid.NullUUID
	CommandType         string
	EventAggregateID    uuid.NullUUID
	EventSequenceNumber sql.NullInt64
	CreatedAt           time.Time
	Data                Message
}

// Snapshot is a materialized aggregate state at a sequence number
type Snapshot struct {
	AggregateID    uuid.UUID
	SequenceNumber int64
	CreatedAt      time.Time
	SnapshotType   string
	Data           types.JSONText
}
