// Package xruntime abstracts over the runtime's cleanup registration API so the
// rest of the library works on toolchains both with and without
// runtime.AddCleanup.
package xruntime

// Cleanup is a stoppable handle to a registered cleanup function.
type Cleanup struct {
	stop func()
}

// Stop cancels the registered cleanup if it has not started running yet.
func (c Cleanup) Stop() {
	if c.stop != nil {
		c.stop()
	}
}
