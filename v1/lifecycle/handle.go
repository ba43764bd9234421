package lifecycle

import (
	"context"
	"errors"
	"log/slog"
	"runtime"
	"sync/atomic"

	uuid "github.com/hashicorp/go-uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/finalguard/go-finalguard/v1/guard"
	"github.com/finalguard/go-finalguard/v1/metrics"
	"github.com/finalguard/go-finalguard/v1/reaper"
	"github.com/finalguard/go-finalguard/v1/xruntime"
)

var tracer = otel.Tracer("github.com/finalguard/go-finalguard/v1/lifecycle")

// ErrClosed is returned when a handle is used after Close.
var ErrClosed = errors.New("finalguard: handle already closed")

// Status reports where a guarded value is in its cleanup lifecycle.
//
// Transitions:
//
//	StatusActive → StatusPending     collector only
//	StatusPending → StatusCleaning   cleanup callback, via CAS
//	StatusActive → StatusCleaning    Close, via CAS
//	StatusCleaning → StatusDone      cleanup task completion
//
// The two CAS edges into StatusCleaning guarantee the cleanup task runs at
// most once even when Close races the collector.
type Status int32

const (
	// StatusActive means operations may run.
	StatusActive Status = iota
	// StatusPending means the value became unreachable but cleanup has not
	// started. Entered only by the collector's cleanup callback.
	StatusPending
	// StatusCleaning means the cleanup task is running or queued.
	StatusCleaning
	// StatusDone means cleanup finished. Terminal.
	StatusDone
)

func (s Status) String() string {
	switch s {
	case StatusActive:
		return "active"
	case StatusPending:
		return "pending"
	case StatusCleaning:
		return "cleaning"
	case StatusDone:
		return "done"
	}
	return "unknown"
}

// cleanupState is everything the deferred cleanup path needs. It holds no
// reference to the guarded value: reaching the value from here would keep it
// alive and the cleanup would never fire. runtime.AddCleanup enforces the
// same rule by panicking if its argument points into the value's allocation.
type cleanupState struct {
	id       string
	strategy guard.Strategy
	release  func()
	status   atomic.Int32

	rp           *reaper.Reaper
	logger       *slog.Logger
	traceEnabled bool
}

// Guarded ties a value to a guard strategy and a release function. The value
// is only reachable through the handle, so operations go through Do and the
// release runs once the handle itself is dropped.
type Guarded[T any] struct {
	value *T
	st    *cleanupState
	reg   xruntime.Cleanup
}

// Option configures a handle.
type Option func(*cleanupState)

// WithReaper routes non-inline cleanup tasks to r instead of the process-wide
// default reaper.
func WithReaper(r *reaper.Reaper) Option {
	return func(st *cleanupState) {
		st.rp = r
	}
}

// WithLogger sets the logger used for handle-level debug logging.
func WithLogger(l *slog.Logger) Option {
	return func(st *cleanupState) {
		if l != nil {
			st.logger = l
		}
	}
}

// WithTracing enables OpenTelemetry spans around Do.
func WithTracing() Option {
	return func(st *cleanupState) {
		st.traceEnabled = true
	}
}

// Attach wraps value with the given strategy and registers release to run
// after value becomes unreachable. A nil strategy defaults to the
// mutual-exclusion guard; a nil release is replaced with a no-op.
func Attach[T any](value *T, s guard.Strategy, release func(), opts ...Option) (*Guarded[T], error) {
	if value == nil {
		return nil, errors.New("finalguard: nil value")
	}
	if s == nil {
		s = guard.NewMutex()
	}
	if release == nil {
		release = func() {}
	}
	id, err := uuid.GenerateUUID()
	if err != nil {
		return nil, err
	}
	st := &cleanupState{
		id:       id,
		strategy: s,
		release:  release,
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(st)
	}
	g := &Guarded[T]{value: value, st: st}
	g.reg = xruntime.AddCleanup(value, onReclaim, st)
	return g, nil
}

// onReclaim runs on the runtime's reclamation goroutine once the guarded
// value is unreachable. It must return promptly: strategies whose cleanup can
// block are handed to the reaper.
func onReclaim(st *cleanupState) {
	st.status.CompareAndSwap(int32(StatusActive), int32(StatusPending))
	if !st.status.CompareAndSwap(int32(StatusPending), int32(StatusCleaning)) {
		// Close won the race; cleanup already ran or is running.
		return
	}
	st.logger.Debug("finalguard: value reclaimed, scheduling cleanup", "handle", st.id)
	task := st.task()
	if st.strategy.Inline() {
		task()
		return
	}
	rp := st.rp
	if rp == nil {
		rp = reaper.Default()
	}
	metrics.ReaperTaskCounter.Inc()
	if err := rp.Submit(context.Background(), task); err != nil {
		// A stopped reaper must not swallow the release.
		st.logger.Warn("finalguard: reaper rejected cleanup, running inline",
			"handle", st.id, "error", err)
		task()
	}
}

// task builds the strategy's cleanup closure, extended with the Done
// transition and bookkeeping. The closure captures only fields of st.
func (st *cleanupState) task() reaper.Task {
	base := st.strategy.CleanupTask(st.release)
	status := &st.status
	logger, id := st.logger, st.id
	return func() {
		base()
		status.Store(int32(StatusDone))
		metrics.CleanupCounter.Inc()
		logger.Debug("finalguard: cleanup complete", "handle", id)
	}
}

// Do runs one operation against the guarded value. The strategy's exit step
// and the KeepAlive pin together guarantee the value stays reachable until op
// returns, on every exit path.
func (g *Guarded[T]) Do(ctx context.Context, op func(context.Context, *T) error) error {
	if Status(g.st.status.Load()) != StatusActive {
		return ErrClosed
	}
	var span trace.Span
	if g.st.traceEnabled {
		ctx, span = tracer.Start(ctx, "Guarded.Do")
		defer span.End()
		span.SetAttributes(attribute.String("finalguard.handle", g.st.id))
	}
	metrics.OperationCounter.Inc()
	exit, err := g.st.strategy.Enter(ctx)
	if err != nil {
		return err
	}
	defer exit()
	err = op(ctx, g.value)
	runtime.KeepAlive(g)
	return err
}

// Close releases the value deterministically: it cancels the collector-driven
// cleanup and runs the cleanup task on the calling goroutine, waiting for
// in-flight operations to finish first. Close must not be called from inside
// an operation. A second Close returns ErrClosed.
func (g *Guarded[T]) Close() error {
	if !g.st.status.CompareAndSwap(int32(StatusActive), int32(StatusCleaning)) {
		return ErrClosed
	}
	g.reg.Stop()
	g.st.logger.Debug("finalguard: closing handle", "handle", g.st.id)
	g.st.task()()
	runtime.KeepAlive(g)
	return nil
}

// Status reports the handle's current lifecycle state.
func (g *Guarded[T]) Status() Status {
	return Status(g.st.status.Load())
}

// ID returns the handle's unique identifier, as used in log output.
func (g *Guarded[T]) ID() string {
	return g.st.id
}
