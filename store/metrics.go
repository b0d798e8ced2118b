package store

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	commitCounter = promauto.NewCounter(prometheus.CounterOpts{
		Name: "eventstore_commits_total",
		Help: "Number of successful commit_events calls",
	})

	commitConflictCounter = promauto.NewCounter(prometheus.CounterOpts{
		Name: "eventstore_commit_conflicts_total",
		Help: "Number of commits rejected by optimistic locking",
	})

	committedEventsCounter = promauto.NewCounter(prometheus.CounterOpts{
		Name: "eventstore_committed_events_total",
		Help: "Number of event records written",
	})

	replayedEventsCounter = promauto.NewCounter(prometheus.CounterOpts{
		Name: "eventstore_replayed_events_total",
		Help: "Number of events dispatched by replay",
	})

	deletedStreamsCounter = promauto.NewCounter(prometheus.CounterOpts{
		Name: "eventstore_deleted_streams_total",
		Help: "Number of event streams permanently deleted",
	})
)
