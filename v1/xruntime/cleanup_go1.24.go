//go:build go1.24

package xruntime

import "runtime"

// AddCleanup registers cleanup to run with arg once ptr is unreachable.
// arg must not reference ptr; runtime.AddCleanup panics if arg points to the
// same allocation, which keeps the registration from pinning the object alive.
func AddCleanup[T, S any](ptr *T, cleanup func(S), arg S) Cleanup {
	c := runtime.AddCleanup(ptr, cleanup, arg)
	return Cleanup{stop: c.Stop}
}
