package protocol

import (
	"context"
	"sync"
	"time"

	derrors "github.com/grace-umanah/bit-holdings/pkg/domain-errors"
)

// StoreTx provides the transactional boundary around store access.
// Implementations may wrap a database transaction or, in-memory, a coarse
// lock. The state machine executes one transition at a time, to completion,
// before the next begins; RunInTx is what enforces that serialization.
// RunInReadTx gives queries the same isolation: a read never overlaps an
// in-flight transition, so conservation holds at every observable point.
type StoreTx interface {
	RunInTx(ctx context.Context, fn func(txCtx context.Context) error) error
	RunInReadTx(ctx context.Context, fn func(txCtx context.Context) error) error
}

// defaultTxTimeout is the maximum duration for one state transition.
const defaultTxTimeout = 5 * time.Second

// inMemoryStoreTx serializes transitions with a single write lock.
// Transitions touch several stores and two counters at once, so per-key
// sharding would break the one-transition-at-a-time model; the critical
// section is bounded synchronous map work, so a global lock is not a
// contention concern. Readers share the lock so they see either all of a
// transition's mutations or none of them.
type inMemoryStoreTx struct {
	mu      sync.RWMutex
	timeout time.Duration
}

func newInMemoryStoreTx() *inMemoryStoreTx {
	return &inMemoryStoreTx{}
}

func (t *inMemoryStoreTx) RunInTx(ctx context.Context, fn func(txCtx context.Context) error) error {
	if err := ctx.Err(); err != nil {
		return derrors.Wrap(err, derrors.CodeTimeout, "transition aborted: context cancelled")
	}

	timeout := t.timeout
	if timeout == 0 {
		timeout = defaultTxTimeout
	}
	if _, hasDeadline := ctx.Deadline(); !hasDeadline {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return derrors.Wrap(err, derrors.CodeTimeout, "transition aborted: context cancelled")
	}

	return fn(ctx)
}

func (t *inMemoryStoreTx) RunInReadTx(ctx context.Context, fn func(txCtx context.Context) error) error {
	if err := ctx.Err(); err != nil {
		return derrors.Wrap(err, derrors.CodeTimeout, "query aborted: context cancelled")
	}

	t.mu.RLock()
	defer t.mu.RUnlock()

	return fn(ctx)
}
