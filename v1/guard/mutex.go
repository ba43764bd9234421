package guard

import (
	"context"
	"sync"
)

// Mutex serializes operations and cleanup under a single lock. Cleanup cannot
// begin while an operation holds the lock, and once the lock is free there is
// nothing left for the cleanup task to block on, so it may run inline. The
// drawback is full serialization: only one operation runs at a time.
type Mutex struct {
	mu sync.Mutex
}

// NewMutex returns a mutual-exclusion guard.
func NewMutex() *Mutex {
	return &Mutex{}
}

// Enter acquires the guard's lock for the duration of the operation. The
// acquisition itself is not cancellable, matching monitor semantics; ctx is
// only consulted before blocking.
func (g *Mutex) Enter(ctx context.Context) (func(), error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	g.mu.Lock()
	return g.mu.Unlock, nil
}

// CleanupTask returns a task that acquires the same lock the operations hold
// before running release.
func (g *Mutex) CleanupTask(release func()) func() {
	mu := &g.mu
	return func() {
		mu.Lock()
		defer mu.Unlock()
		release()
	}
}

// Inline reports that the task may run on the reclamation goroutine.
func (g *Mutex) Inline() bool { return true }
