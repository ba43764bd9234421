package shadow

import "testing"

func TestPublishLoad(t *testing.T) {
	Reset()
	Publish(7)
	if got := Load(); got != 7 {
		t.Fatalf("load: got %d want 7", got)
	}
	if got := Add(3); got != 10 {
		t.Fatalf("add: got %d want 10", got)
	}
	Reset()
	if got := Load(); got != 0 {
		t.Fatalf("reset: got %d want 0", got)
	}
}
