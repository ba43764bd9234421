// Package reaper runs deferred cleanup tasks on a fixed pool of workers so
// that a slow or blocking cleanup body never stalls the runtime's reclamation
// goroutine. Tasks must be self-contained: a task that references the object
// it cleans up would re-extend that object's reachability.
package reaper

import (
	"context"
	"errors"
	"log/slog"
	"sync"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"golang.org/x/sync/errgroup"
)

// ErrClosed is returned when a task is submitted after shutdown.
var ErrClosed = errors.New("finalguard: reaper is shut down")

// Task is a self-contained unit of cleanup work.
type Task func()

type queued struct {
	id  string
	run Task
}

// Reaper dispatches cleanup tasks to a fixed number of workers. The queue is
// unbounded so Submit never blocks the caller.
type Reaper struct {
	mu     sync.Mutex
	cond   *sync.Cond
	queue  []queued
	closed bool

	g      errgroup.Group
	logger *slog.Logger

	queueGauge  prometheus.Gauge
	taskCounter prometheus.Counter
}

// Option configures a Reaper.
type Option func(*Reaper)

// WithLogger sets the logger used for task-level debug logging.
func WithLogger(l *slog.Logger) Option {
	return func(r *Reaper) {
		if l != nil {
			r.logger = l
		}
	}
}

// WithMetrics enables Prometheus metrics collection using the provided
// registerer.
func WithMetrics(reg prometheus.Registerer) Option {
	return func(r *Reaper) {
		r.queueGauge = prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "finalguard_reaper_queue_depth",
			Help: "Current number of cleanup tasks queued in the reaper",
		})
		r.taskCounter = prometheus.NewCounter(prometheus.CounterOpts{
			Name: "finalguard_reaper_tasks_completed_total",
			Help: "Total number of cleanup tasks run by the reaper",
		})
		reg.MustRegister(r.queueGauge, r.taskCounter)
	}
}

// defaultWorkers matches the pool size the pattern was originally described
// with; cleanup bodies are short-lived so two workers rarely back up.
const defaultWorkers = 2

// New starts a reaper with the given number of workers. A non-positive count
// uses the default.
func New(workers int, opts ...Option) *Reaper {
	if workers <= 0 {
		workers = defaultWorkers
	}
	r := &Reaper{logger: slog.Default()}
	r.cond = sync.NewCond(&r.mu)
	for _, opt := range opts {
		opt(r)
	}
	for i := 0; i < workers; i++ {
		r.g.Go(func() error {
			r.worker()
			return nil
		})
	}
	return r
}

func (r *Reaper) worker() {
	for {
		r.mu.Lock()
		for len(r.queue) == 0 && !r.closed {
			r.cond.Wait()
		}
		if len(r.queue) == 0 {
			r.mu.Unlock()
			return
		}
		q := r.queue[0]
		r.queue = r.queue[1:]
		if r.queueGauge != nil {
			r.queueGauge.Set(float64(len(r.queue)))
		}
		r.mu.Unlock()

		q.run()
		if r.taskCounter != nil {
			r.taskCounter.Inc()
		}
		r.logger.Debug("finalguard: cleanup task done", "task", q.id)
	}
}

// Submit enqueues a cleanup task and returns immediately.
func (r *Reaper) Submit(ctx context.Context, t Task) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	id := uuid.NewString()
	r.mu.Lock()
	if r.closed {
		r.mu.Unlock()
		return ErrClosed
	}
	r.queue = append(r.queue, queued{id: id, run: t})
	if r.queueGauge != nil {
		r.queueGauge.Set(float64(len(r.queue)))
	}
	r.mu.Unlock()
	r.cond.Signal()
	r.logger.Debug("finalguard: cleanup task queued", "task", id)
	return nil
}

// Shutdown stops intake and waits until queued tasks drain and the workers
// exit, or until ctx expires.
func (r *Reaper) Shutdown(ctx context.Context) error {
	r.mu.Lock()
	if r.closed {
		r.mu.Unlock()
		return nil
	}
	r.closed = true
	r.mu.Unlock()
	r.cond.Broadcast()

	done := make(chan struct{})
	go func() {
		_ = r.g.Wait()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

var (
	defaultOnce   sync.Once
	defaultReaper *Reaper
)

// Default returns the process-wide reaper shared by handles that do not
// configure their own. It is never shut down.
func Default() *Reaper {
	defaultOnce.Do(func() {
		defaultReaper = New(defaultWorkers)
	})
	return defaultReaper
}
