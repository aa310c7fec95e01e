package engine

import (
	"errors"
	"fmt"
)

var (
	// ErrAllocation indicates no valid position could be computed. Under
	// correct invariants this cannot happen; it is treated as a bug, the
	// operation aborts without partial writes.
	ErrAllocation = errors.New("position allocation failed")

	// ErrStaleTarget rejects an operation whose target entry is still
	// optimistic: its remote identifier does not exist yet. Callers should
	// retry shortly, once the entry confirms.
	ErrStaleTarget = errors.New("entry not yet confirmed, retry shortly")

	// ErrNotFound reports an entry or shot unknown to the coordinator.
	ErrNotFound = errors.New("entry not found")

	// ErrNotFoundAfterRetry reports a remote read that returned zero rows
	// twice. The single retry absorbs replication lag; a second empty result
	// is a hard failure, never retried again.
	ErrNotFoundAfterRetry = errors.New("no entries found after retry")
)

// PersistenceError wraps a rejected or timed-out remote write. Local state has
// already been rolled back when a caller sees this.
type PersistenceError struct {
	Op  string
	Err error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("persist %s: %v", e.Op, e.Err)
}

func (e *PersistenceError) Unwrap() error { return e.Err }
