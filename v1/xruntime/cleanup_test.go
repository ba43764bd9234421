package xruntime

import (
	"runtime"
	"testing"
	"time"
)

// Allocation happens in a separate goroutine so the pointer is provably dead
// before the collection request.
func TestAddCleanupRunsAfterCollection(t *testing.T) {
	ch := make(chan int, 1)
	done := make(chan struct{})
	go func() {
		type obj struct {
			v int
			p *int
		}
		o := &obj{v: 42}
		AddCleanup(o, func(v int) { ch <- v }, o.v)
		o = nil
		_ = o
		close(done)
	}()
	<-done

	deadline := time.After(5 * time.Second)
	for {
		runtime.GC()
		select {
		case v := <-ch:
			if v != 42 {
				t.Fatalf("cleanup arg: got %d want 42", v)
			}
			return
		case <-deadline:
			t.Fatal("cleanup did not run after collection")
		case <-time.After(10 * time.Millisecond):
		}
	}
}

func TestStopPreventsCleanup(t *testing.T) {
	ch := make(chan struct{}, 1)
	done := make(chan struct{})
	go func() {
		o := &struct{ v int }{v: 1}
		c := AddCleanup(o, func(struct{}) { close(ch) }, struct{}{})
		c.Stop()
		o = nil
		_ = o
		close(done)
	}()
	<-done

	for i := 0; i < 5; i++ {
		runtime.GC()
		time.Sleep(10 * time.Millisecond)
	}
	select {
	case <-ch:
		t.Fatal("cleanup ran after Stop")
	default:
	}
}

func TestStopOnZeroHandleIsNoop(t *testing.T) {
	var c Cleanup
	c.Stop()
}
