// finalguard-demo runs one guarded-object scenario end to end: it builds a
// handle with the chosen variant, fires concurrent operations at it from
// throwaway goroutines, requests collections the whole time and reports when
// the release ran relative to the operations.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"runtime"
	"sync"
	"sync/atomic"
	"time"

	"github.com/finalguard/go-finalguard/v1/guard"
	"github.com/finalguard/go-finalguard/v1/lifecycle"
	"github.com/finalguard/go-finalguard/v1/reaper"
	"github.com/finalguard/go-finalguard/v1/shadow"
)

var (
	variant = flag.String("variant", "rwlock", "Guard variant: mutex, ordered, rwlock")
	runs    = flag.Int("runs", 2, "Iterations")
	workers = flag.Int("workers", 2, "Concurrent operations per iteration")
	work    = flag.Duration("work", 500*time.Millisecond, "Simulated operation duration")
	verbose = flag.Bool("v", false, "Debug logging")
)

type payload struct {
	hits int64
	buf  []byte
}

func newStrategy(name string) (guard.Strategy, error) {
	switch name {
	case "mutex":
		return guard.NewMutex(), nil
	case "ordered":
		return guard.NewOrdered(), nil
	case "rwlock":
		return guard.NewRW(), nil
	}
	return nil, fmt.Errorf("unknown variant %q", name)
}

func main() {
	flag.Parse()
	level := slog.LevelInfo
	if *verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)

	rp := reaper.New(2, reaper.WithLogger(logger))
	released := make(chan time.Time, *runs)

	for i := 0; i < *runs; i++ {
		logger.Info("run starting", "run", i+1, "variant", *variant)
		if err := runOnce(logger, rp, released); err != nil {
			logger.Error("run failed", "error", err)
			os.Exit(1)
		}
		runtime.GC()
		time.Sleep(200 * time.Millisecond)
	}

	// Give straggling collector-driven cleanups a chance before shutdown.
	deadline := time.After(2 * time.Second)
	for got := 0; got < *runs; {
		runtime.GC()
		select {
		case <-released:
			got++
		case <-deadline:
			logger.Warn("not all releases observed before exit", "observed", got)
			got = *runs
		case <-time.After(10 * time.Millisecond):
		}
	}
	if err := rp.Shutdown(context.Background()); err != nil {
		logger.Error("reaper shutdown", "error", err)
	}
	if *variant == "ordered" {
		logger.Info("shadow state", "operations", shadow.Load())
	}
}

func runOnce(logger *slog.Logger, rp *reaper.Reaper, released chan<- time.Time) error {
	s, err := newStrategy(*variant)
	if err != nil {
		return err
	}
	var opsDone atomic.Int64
	opsWanted := int64(*workers)
	g, err := lifecycle.Attach(&payload{buf: make([]byte, 256)}, s, func() {
		if opsDone.Load() != opsWanted {
			logger.Error("release observed in-flight operations",
				"done", opsDone.Load(), "wanted", opsWanted)
		}
		logger.Info("released")
		released <- time.Now()
	}, lifecycle.WithReaper(rp), lifecycle.WithLogger(logger))
	if err != nil {
		return err
	}

	var wg sync.WaitGroup
	for w := 0; w < *workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			err := g.Do(context.Background(), func(_ context.Context, p *payload) error {
				runtime.GC()
				time.Sleep(*work)
				atomic.AddInt64(&p.hits, 1)
				opsDone.Add(1)
				return nil
			})
			if err != nil {
				logger.Error("operation failed", "error", err)
			}
			runtime.GC()
		}()
	}
	wg.Wait()
	return nil
}
