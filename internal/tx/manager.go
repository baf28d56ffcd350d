// Package tx runs logical operations inside serializable storage transactions
// and replays them from scratch when the store reports a serialization conflict.
package tx

import (
	"context"
	"errors"
)

var (
	// ErrConflict is returned by a Manager when the store aborted the transaction
	// to preserve serializability. The attempt left no effects and may be replayed.
	ErrConflict = errors.New("serialization conflict")

	// ErrRetriesExhausted is returned by Controller.Do when every attempt conflicted.
	ErrRetriesExhausted = errors.New("transaction retries exhausted")
)

// Manager opens one transaction per call.
//
// RunInTransaction begins a serializable transaction, runs fn with a context
// carrying it, and commits when fn returns nil. Any error from fn rolls the
// transaction back. Implementations must never return with the transaction
// still open, and must report aborts caused by concurrent transactions as
// errors wrapping ErrConflict.
type Manager interface {
	RunInTransaction(ctx context.Context, fn func(ctx context.Context) error) error
}

// State is the lifecycle of a single transaction attempt.
type State int

const (
	StateIdle State = iota
	StateActive
	StateCommitted
	StateRolledBack
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateActive:
		return "active"
	case StateCommitted:
		return "committed"
	case StateRolledBack:
		return "rolled_back"
	default:
		return "unknown"
	}
}

// IsConflict reports whether err is a retryable serialization conflict.
func IsConflict(err error) bool {
	return errors.Is(err, ErrConflict)
}
