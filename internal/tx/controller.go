package tx

import (
	"context"
	"fmt"
	"math/rand/v2"
	"time"

	"github.com/Domenick1991/flightbooking/internal/monitoring"
	"github.com/Domenick1991/flightbooking/pkg/logger"
)

// Policy bounds how often a conflicting operation is replayed.
type Policy struct {
	MaxAttempts int
	BaseDelay   time.Duration
	MaxDelay    time.Duration
}

func DefaultPolicy() Policy {
	return Policy{
		MaxAttempts: 5,
		BaseDelay:   10 * time.Millisecond,
		MaxDelay:    500 * time.Millisecond,
	}
}

func (p Policy) withDefaults() Policy {
	d := DefaultPolicy()
	if p.MaxAttempts <= 0 {
		p.MaxAttempts = d.MaxAttempts
	}
	if p.BaseDelay <= 0 {
		p.BaseDelay = d.BaseDelay
	}
	if p.MaxDelay < p.BaseDelay {
		p.MaxDelay = p.BaseDelay
	}
	return p
}

// Controller wraps every read-then-write operation in a transaction and
// replays the whole operation on conflict.
type Controller struct {
	mgr    Manager
	policy Policy
	log    *logger.Logger
	sleep  func(ctx context.Context, d time.Duration) error
}

type ControllerOption func(*Controller)

func WithLogger(l *logger.Logger) ControllerOption {
	return func(c *Controller) {
		c.log = l
	}
}

// WithSleep replaces the backoff wait. Tests use it to avoid real delays.
func WithSleep(sleep func(ctx context.Context, d time.Duration) error) ControllerOption {
	return func(c *Controller) {
		c.sleep = sleep
	}
}

func NewController(mgr Manager, policy Policy, opts ...ControllerOption) *Controller {
	c := &Controller{
		mgr:    mgr,
		policy: policy.withDefaults(),
		log:    logger.Default(),
		sleep:  sleepContext,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Do runs fn inside a transaction. fn must be safe to run more than once:
// all of its reads and writes go through the context it receives, and any
// in-memory result it produces must be overwritten on each run.
//
// A conflict rolls the attempt back and reruns fn from the beginning after a
// backoff. Other errors end the operation and are returned unchanged.
func (c *Controller) Do(ctx context.Context, op string, fn func(ctx context.Context) error) error {
	log := c.log.With("op", op)

	var lastErr error
	for attempt := 1; attempt <= c.policy.MaxAttempts; attempt++ {
		start := time.Now()
		log.Debugw("transaction state", "attempt", attempt, "state", StateActive)

		err := c.mgr.RunInTransaction(ctx, fn)
		elapsed := time.Since(start)

		if err == nil {
			monitoring.TrackTxAttempt(op, monitoring.OutcomeCommitted, elapsed)
			log.Debugw("transaction state", "attempt", attempt, "state", StateCommitted)
			return nil
		}

		if !IsConflict(err) {
			monitoring.TrackTxAttempt(op, monitoring.OutcomeAborted, elapsed)
			log.Debugw("transaction state", "attempt", attempt, "state", StateRolledBack, "error", err)
			return err
		}

		monitoring.TrackTxAttempt(op, monitoring.OutcomeConflict, elapsed)
		log.Warnw("serialization conflict, retrying", "attempt", attempt, "state", StateRolledBack, "error", err)
		lastErr = err

		if attempt == c.policy.MaxAttempts {
			break
		}
		if err := c.sleep(ctx, c.backoff(attempt)); err != nil {
			return err
		}
	}

	monitoring.TrackTxExhausted(op)
	log.Errorw("giving up after repeated conflicts", "attempts", c.policy.MaxAttempts, "error", lastErr)
	return fmt.Errorf("%w: %s after %d attempts: %v", ErrRetriesExhausted, op, c.policy.MaxAttempts, lastErr)
}

// backoff doubles the delay per attempt up to MaxDelay, with full jitter in
// the upper half so competing sessions spread out.
func (c *Controller) backoff(attempt int) time.Duration {
	d := c.policy.BaseDelay << (attempt - 1)
	if d <= 0 || d > c.policy.MaxDelay {
		d = c.policy.MaxDelay
	}
	half := d / 2
	return half + rand.N(half+1)
}

func sleepContext(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
