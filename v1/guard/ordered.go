package guard

import (
	"context"
	"sync/atomic"

	"github.com/finalguard/go-finalguard/v1/shadow"
)

// Ordered avoids locking entirely. Each operation's exit step performs an
// atomic increment of a per-guard counter, Go's replacement for a lazy
// ordered store: the increment cannot be observed before the operation body
// that precedes it in program order. Cleanup snapshots the counter and
// publishes it to process-wide shadow state, so the cleanup-observed value
// always equals the number of operations that completed before cleanup ran.
// Operations are not serialized against each other.
type Ordered struct {
	counter atomic.Int64
}

// NewOrdered returns an ordered-write guard.
func NewOrdered() *Ordered {
	return &Ordered{}
}

// Enter records nothing on entry; the ordering step happens entirely in the
// exit function, which callers must run on every exit path.
func (g *Ordered) Enter(ctx context.Context) (func(), error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return func() { g.counter.Add(1) }, nil
}

// Completed returns the number of operations that have finished.
func (g *Ordered) Completed() int64 {
	return g.counter.Load()
}

// CleanupTask returns a task that publishes the final counter value to the
// shared shadow state and then runs release.
func (g *Ordered) CleanupTask(release func()) func() {
	c := &g.counter
	return func() {
		shadow.Publish(c.Load())
		release()
	}
}

// Inline reports that the task may run on the reclamation goroutine; it never
// blocks.
func (g *Ordered) Inline() bool { return true }
