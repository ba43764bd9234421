// Package guard provides synchronization strategies that keep an object's
// garbage-collector-triggered cleanup from observing it while an operation on
// it is still in flight.
//
// The hazard is inherited from runtimes with non-deterministic finalization: a
// reference that is dead by use-analysis permits reclamation mid-method, so a
// cleanup routine can start before the method body finishes. Go has the same
// rule for runtime.AddCleanup and runtime.SetFinalizer, which is why
// runtime.KeepAlive exists. Each Strategy encodes one classic avoidance
// technique: full mutual exclusion (Mutex), a non-blocking ordered counter
// write at operation exit (Ordered), or a read/write lock pair for objects
// shared across many callers (RW).
//
// A Strategy holds only synchronization primitives. It must never hold a
// reference to the guarded object itself, since strategies travel with the
// deferred cleanup task and any such reference would re-extend the object's
// reachability.
package guard
