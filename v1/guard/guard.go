package guard

import "context"

// Strategy brackets operations on a guarded object and builds the cleanup
// task that runs once the object is unreachable.
type Strategy interface {
	// Enter begins one operation. The returned exit function must run on
	// every exit path, including failure, so callers defer it immediately.
	Enter(ctx context.Context) (exit func(), err error)

	// CleanupTask wraps release into a self-contained closure that performs
	// the strategy's ordering step before releasing. The closure captures
	// only the strategy's synchronization primitives and release itself.
	CleanupTask(release func()) func()

	// Inline reports whether the cleanup task may run directly on the
	// runtime's reclamation goroutine. Strategies whose task can block on
	// in-flight operations return false and require a reaper hand-off.
	Inline() bool
}
