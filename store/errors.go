package store

import (
	"errors"
	"fmt"

	"github.com/lib/pq"
)

// ErrNoEventsFound is returned by StreamEventsForAggregate when no events
// match the aggregate and window
var ErrNoEventsFound = errors.New("no events for this aggregate")

// OptimisticLockingError signals a duplicate (aggregate_id, sequence_number)
// insert. The caller recovers by reloading the aggregate and retrying the
// command.
type OptimisticLockingError struct {
	Cause error
}

func (e *OptimisticLockingError) Error() string {
	return fmt.Sprintf("optimistic locking failed: %v", e.Cause)
}

// Unwrap ...
func (e *OptimisticLockingError) Unwrap() error {
	return e.Cause
}

const pqUniqueViolation = "23505"

func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return pqErr.Code == pqUniqueViolation
	}
	return false
}
