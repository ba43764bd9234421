package guard

import (
	"context"
	"sync"
)

// RW allows arbitrarily many concurrent long-running operations on an object
// shared between callers. Each operation holds the read lock for its whole
// duration; cleanup takes the write lock, which cannot succeed until every
// in-flight operation has released its read lock. A separate mutex is held
// momentarily around the read-lock acquisition only, so the acquisition
// happens before any write lock taken later by cleanup.
type RW struct {
	enter sync.Mutex
	rw    sync.RWMutex
}

// NewRW returns a read/write-lock guard.
func NewRW() *RW {
	return &RW{}
}

// Enter takes the read lock inside the exclusive bracket. The bracket covers
// acquisition only, never the operation body, so it does not serialize
// operations against each other.
func (g *RW) Enter(ctx context.Context) (func(), error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	g.enter.Lock()
	g.rw.RLock()
	g.enter.Unlock()
	return g.rw.RUnlock, nil
}

// CleanupTask returns a task that blocks on the write lock until all readers
// have drained, then runs release.
func (g *RW) CleanupTask(release func()) func() {
	rw := &g.rw
	return func() {
		rw.Lock()
		defer rw.Unlock()
		release()
	}
}

// Inline reports false: the task can block for as long as the slowest
// in-flight operation and must be handed to a reaper worker instead of
// running on the reclamation goroutine.
func (g *RW) Inline() bool { return false }
