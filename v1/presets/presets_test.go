package presets

import (
	"context"
	"runtime"
	"sync"
	"testing"
	"time"
)

type conn struct {
	open bool
	buf  []byte
}

func TestSerialized(t *testing.T) {
	c := &conn{open: true, buf: make([]byte, 16)}
	g, err := Serialized(c, func() { c.open = false })
	if err != nil {
		t.Fatalf("serialized: %v", err)
	}
	if err := g.Do(context.Background(), func(_ context.Context, c *conn) error {
		if !c.open {
			t.Error("conn closed during operation")
		}
		return nil
	}); err != nil {
		t.Fatalf("do: %v", err)
	}
	if err := g.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}
	if c.open {
		t.Fatal("release did not run")
	}
}

func TestBarrier(t *testing.T) {
	g, err := Barrier(&conn{buf: make([]byte, 16)}, nil)
	if err != nil {
		t.Fatalf("barrier: %v", err)
	}
	var wg sync.WaitGroup
	for i := 0; i < 4; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = g.Do(context.Background(), func(context.Context, *conn) error { return nil })
		}()
	}
	wg.Wait()
	if err := g.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}
}

func TestSharedReleasesAfterCollection(t *testing.T) {
	released := make(chan struct{})
	done := make(chan struct{})
	go func() {
		defer close(done)
		g, err := Shared(&conn{buf: make([]byte, 16)}, func() { close(released) })
		if err != nil {
			t.Errorf("shared: %v", err)
			return
		}
		_ = g.Do(context.Background(), func(context.Context, *conn) error { return nil })
	}()
	<-done

	deadline := time.After(5 * time.Second)
	for {
		runtime.GC()
		select {
		case <-released:
			return
		case <-deadline:
			t.Fatal("release did not run after collection")
		case <-time.After(10 * time.Millisecond):
		}
	}
}
