package snapshotter

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/QuangTung97/eventstore/model"
	"github.com/QuangTung97/eventstore/repository"
)

//go:generate moq -rm -out service_mocks.go . EventStore

// EventStore is the part of the store the snapshotter depends on
type EventStore interface {
	AggregatesThatNeedSnapshotsOrderedByPriority(ctx context.Context, limit int) ([]uuid.UUID, error)
	StoreSnapshots(ctx context.Context, snapshots []model.Snapshot) error
	ClearAggregatesForSnapshottingWithLastEventBefore(ctx context.Context, t time.Time) error
}

// SnapshotTaker materializes the snapshot of one aggregate. Returning nil
// skips the aggregate for this round.
type SnapshotTaker func(ctx context.Context, aggregateID uuid.UUID) (*model.Snapshot, error)

// Service periodically snapshots the aggregates that need it, oldest marks
// first
type Service struct {
	provider  repository.Provider
	store     EventStore
	taker     SnapshotTaker
	batchSize int
	logger    *zap.Logger
}

// Option ...
type Option func(s *Service)

// WithBatchSize ...
func WithBatchSize(size int) Option {
	return func(s *Service) {
		s.batchSize = size
	}
}

// WithLogger ...
func WithLogger(logger *zap.Logger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

// New ...
func New(provider repository.Provider, store EventStore, taker SnapshotTaker, options ...Option) *Service {
	s := &Service{
		provider:  provider,
		store:     store,
		taker:     taker,
		batchSize: 10,
		logger:    zap.NewNop(),
	}
	for _, o := range options {
		o(s)
	}
	return s
}

// RunOnce snapshots one batch, returns the number of snapshots stored
func (s *Service) RunOnce(ctx context.Context) (int, error) {
	roCtx := s.provider.Readonly(ctx)

	ids, err := s.store.AggregatesThatNeedSnapshotsOrderedByPriority(roCtx, s.batchSize)
	if err != nil {
		return 0, err
	}
	if len(ids) == 0 {
		return 0, nil
	}

	var snapshots []model.Snapshot
	for _, id := range ids {
		snapshot, err := s.taker(roCtx, id)
		if err != nil {
			return 0, err
		}
		if snapshot == nil {
			continue
		}
		snapshots = append(snapshots, *snapshot)
	}
	if len(snapshots) == 0 {
		return 0, nil
	}

	err = s.provider.Transact(ctx, func(ctx context.Context) error {
		return s.store.StoreSnapshots(ctx, snapshots)
	})
	if err != nil {
		return 0, err
	}

	s.logger.Info("stored snapshots", zap.Int("count", len(snapshots)))
	return len(snapshots), nil
}

// Run keeps snapshotting every interval until the context is done
func (s *Service) Run(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if _, err := s.RunOnce(ctx); err != nil {
				s.logger.Error("snapshot round failed", zap.Error(err))
			}
		}
	}
}

// ClearInactiveBefore takes aggregates whose last event predates t out of
// the needs-snapshot set
func (s *Service) ClearInactiveBefore(ctx context.Context, t time.Time) error {
	return s.provider.Transact(ctx, func(ctx context.Context) error {
		return s.store.ClearAggregatesForSnapshottingWithLastEventBefore(ctx, t)
	})
}
