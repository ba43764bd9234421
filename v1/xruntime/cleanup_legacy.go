//go:build !go1.24

package xruntime

import (
	"runtime"
	"sync/atomic"
)

// AddCleanup registers cleanup to run with arg once ptr is unreachable, using
// runtime.SetFinalizer on toolchains that predate runtime.AddCleanup. The
// returned handle carries only a stop flag, never ptr itself, so stopping a
// cleanup does not extend the object's reachability.
func AddCleanup[T, S any](ptr *T, cleanup func(S), arg S) Cleanup {
	var stopped atomic.Bool
	runtime.SetFinalizer(ptr, func(*T) {
		if stopped.Load() {
			return
		}
		cleanup(arg)
	})
	return Cleanup{stop: func() { stopped.Store(true) }}
}
