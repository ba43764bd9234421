package reaper

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

func TestSubmitRunsTask(t *testing.T) {
	r := New(1)
	ctx := context.Background()
	done := make(chan struct{})
	if err := r.Submit(ctx, func() { close(done) }); err != nil {
		t.Fatalf("submit: %v", err)
	}
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("task did not run")
	}
	if err := r.Shutdown(ctx); err != nil {
		t.Fatalf("shutdown: %v", err)
	}
}

func TestWorkerCountBoundsConcurrency(t *testing.T) {
	r := New(2)
	ctx := context.Background()

	var inFlight, maxInFlight int64
	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		err := r.Submit(ctx, func() {
			defer wg.Done()
			n := atomic.AddInt64(&inFlight, 1)
			for {
				m := atomic.LoadInt64(&maxInFlight)
				if n <= m || atomic.CompareAndSwapInt64(&maxInFlight, m, n) {
					break
				}
			}
			time.Sleep(5 * time.Millisecond)
			atomic.AddInt64(&inFlight, -1)
		})
		if err != nil {
			t.Fatalf("submit: %v", err)
		}
	}
	wg.Wait()
	if max := atomic.LoadInt64(&maxInFlight); max > 2 {
		t.Fatalf("more tasks in flight than workers: %d", max)
	}
	_ = r.Shutdown(ctx)
}

func TestSubmitNeverBlocks(t *testing.T) {
	r := New(1)
	ctx := context.Background()

	hold := make(chan struct{})
	if err := r.Submit(ctx, func() { <-hold }); err != nil {
		t.Fatalf("submit: %v", err)
	}
	// The single worker is busy; further submissions must still return
	// immediately.
	start := time.Now()
	for i := 0; i < 100; i++ {
		if err := r.Submit(ctx, func() {}); err != nil {
			t.Fatalf("submit: %v", err)
		}
	}
	if elapsed := time.Since(start); elapsed > 500*time.Millisecond {
		t.Fatalf("submit blocked for %v", elapsed)
	}
	close(hold)
	_ = r.Shutdown(ctx)
}

func TestShutdownDrainsQueue(t *testing.T) {
	r := New(1)
	ctx := context.Background()

	var ran atomic.Int64
	for i := 0; i < 20; i++ {
		if err := r.Submit(ctx, func() { ran.Add(1) }); err != nil {
			t.Fatalf("submit: %v", err)
		}
	}
	if err := r.Shutdown(ctx); err != nil {
		t.Fatalf("shutdown: %v", err)
	}
	if got := ran.Load(); got != 20 {
		t.Fatalf("drained %d tasks, want 20", got)
	}
	if err := r.Submit(ctx, func() {}); err != ErrClosed {
		t.Fatalf("submit after shutdown: got %v want ErrClosed", err)
	}
}

func TestShutdownRespectsContext(t *testing.T) {
	r := New(1)
	hold := make(chan struct{})
	_ = r.Submit(context.Background(), func() { <-hold })

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	if err := r.Shutdown(ctx); err == nil {
		t.Fatal("expected context error while a task is stuck")
	}
	close(hold)
}

func TestWithMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	r := New(1, WithMetrics(reg))
	ctx := context.Background()
	done := make(chan struct{})
	_ = r.Submit(ctx, func() { close(done) })
	<-done
	_ = r.Shutdown(ctx)
	mfs, err := reg.Gather()
	if err != nil {
		t.Fatalf("gather: %v", err)
	}
	if len(mfs) == 0 {
		t.Fatal("expected reaper metrics registered")
	}
}

func TestDefaultIsShared(t *testing.T) {
	if Default() != Default() {
		t.Fatal("Default returned distinct reapers")
	}
}
