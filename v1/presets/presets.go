// Package presets provides canned constructors for the common guard
// configurations so callers do not have to assemble strategy, reaper and
// handle by hand.
package presets

import (
	"github.com/finalguard/go-finalguard/v1/guard"
	"github.com/finalguard/go-finalguard/v1/lifecycle"
	"github.com/finalguard/go-finalguard/v1/reaper"
)

// Serialized wraps value with the mutual-exclusion guard. Operations are
// fully serialized; cleanup runs inline on the collector's goroutine. This is
// the simplest configuration and suits values used by one caller at a time.
func Serialized[T any](value *T, release func(), opts ...lifecycle.Option) (*lifecycle.Guarded[T], error) {
	return lifecycle.Attach(value, guard.NewMutex(), release, opts...)
}

// Barrier wraps value with the ordered-write guard. Operations never block
// each other; the completed-operation count is published to shadow state at
// cleanup. Suits hot paths where lock traffic is unacceptable.
func Barrier[T any](value *T, release func(), opts ...lifecycle.Option) (*lifecycle.Guarded[T], error) {
	return lifecycle.Attach(value, guard.NewOrdered(), release, opts...)
}

// Shared wraps value with the read/write-lock guard and routes cleanup
// through the process-wide reaper. Suits values shared between goroutines
// with long-running or blocking operations.
func Shared[T any](value *T, release func(), opts ...lifecycle.Option) (*lifecycle.Guarded[T], error) {
	opts = append([]lifecycle.Option{lifecycle.WithReaper(reaper.Default())}, opts...)
	return lifecycle.Attach(value, guard.NewRW(), release, opts...)
}
