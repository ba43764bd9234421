// Package shadow holds process-wide state that cleanup routines publish their
// final counter values to. In the environments this library's patterns come
// from, the publish step existed to stop an optimizer from proving a guarded
// object's counter field dead and eliding its writes. The Go compiler performs
// no such elimination, so the value is kept purely as the observable record of
// how many operations completed before each cleanup ran.
package shadow

import "sync/atomic"

var counter atomic.Int64

// Publish records the final counter value observed by a cleanup routine.
func Publish(v int64) {
	counter.Store(v)
}

// Add accumulates a completed-operation count into the shared counter.
func Add(v int64) int64 {
	return counter.Add(v)
}

// Load returns the last published value.
func Load() int64 {
	return counter.Load()
}

// Reset clears the shared counter. Intended for tests.
func Reset() {
	counter.Store(0)
}
