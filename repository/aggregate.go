package repository

import (
	"sync"

	"github.com/google/uuid"
)

// Aggregate is any loaded aggregate instance cached per unit of work
type Aggregate interface {
	AggregateID() uuid.UUID
}

// AggregateRepository caches loaded aggregates for one unit of work, so
// repeated loads of the same aggregate return the same instance. It is
// cleared between transactions.
type AggregateRepository struct {
	mu         sync.Mutex
	aggregates map[uuid.UUID]Aggregate
}

// NewAggregateRepository ...
func NewAggregateRepository() *AggregateRepository {
	return &AggregateRepository{
		aggregates: map[uuid.UUID]Aggregate{},
	}
}

// SetAggregate ...
func (r *AggregateRepository) SetAggregate(agg Aggregate) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.aggregates[agg.AggregateID()] = agg
}

// GetAggregate ...
func (r *AggregateRepository) GetAggregate(id uuid.UUID) (Aggregate, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	agg, ok := r.aggregates[id]
	return agg, ok
}

// Clear ...
func (r *AggregateRepository) Clear() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.aggregates = map[uuid.UUID]Aggregate{}
}

// Size ...
func (r *AggregateRepository) Size() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.aggregates)
}
