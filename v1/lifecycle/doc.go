// Package lifecycle ties a value to a guard strategy and a release function,
// and arranges for the release to run once the value becomes unreachable. The
// collector-triggered path never observes the value mid-operation: every
// operation runs through Do, which pins the handle with runtime.KeepAlive and
// brackets the body with the strategy's enter/exit steps. Close offers the
// deterministic alternative for callers that own the value's lifetime
// explicitly; with deterministic ownership the reachability hazard does not
// arise and the guards reduce to ordinary scoped locking.
package lifecycle
