package promise

import (
	"sync"
	"testing"
	"time"
)

func TestFillThenWaitReturnsValue(t *testing.T) {
	p, f := New[int]()
	p.Fill(42)
	if got := f.Wait(); got != 42 {
		t.Errorf("Wait() = %d, want 42", got)
	}
}

func TestWaitBeforeFillBlocksUntilFill(t *testing.T) {
	p, f := New[string]()
	done := make(chan string, 1)
	go func() { done <- f.Wait() }()

	// Give the waiter a chance to actually block.
	time.Sleep(20 * time.Millisecond)
	select {
	case v := <-done:
		t.Fatalf("Wait returned early with %q before Fill", v)
	default:
	}

	p.Fill("ready")
	select {
	case v := <-done:
		if v != "ready" {
			t.Errorf("got %q, want %q", v, "ready")
		}
	case <-time.After(time.Second):
		t.Fatal("Wait did not unblock after Fill")
	}
}

func TestDoubleFillPanics(t *testing.T) {
	p, _ := New[int]()
	p.Fill(1)
	defer func() {
		if recover() == nil {
			t.Fatal("expected panic on double fill")
		}
	}()
	p.Fill(2)
}

func TestIsReadyAndTryGet(t *testing.T) {
	p, f := New[int]()
	if f.IsReady() {
		t.Fatal("should not be ready before Fill")
	}
	if _, ok := f.TryGet(); ok {
		t.Fatal("TryGet should fail before Fill")
	}
	p.Fill(7)
	if !f.IsReady() {
		t.Fatal("should be ready after Fill")
	}
	v, ok := f.TryGet()
	if !ok || v != 7 {
		t.Fatalf("TryGet() = (%d, %v), want (7, true)", v, ok)
	}
}

func TestIsAwaitedTracksBlockedWaiter(t *testing.T) {
	p, f := New[int]()
	var wg sync.WaitGroup
	wg.Add(1)
	started := make(chan struct{})
	go func() {
		defer wg.Done()
		close(started)
		f.Wait()
	}()
	<-started
	// Poll briefly for the waiter to register itself.
	deadline := time.Now().Add(time.Second)
	for !f.IsAwaited() && time.Now().Before(deadline) {
		time.Sleep(time.Millisecond)
	}
	if !f.IsAwaited() {
		t.Fatal("expected IsAwaited to become true")
	}
	p.Fill(1)
	wg.Wait()
}

func TestCancelDoesNotBreakFill(t *testing.T) {
	p, f := New[int]()
	f.Cancel()
	// Producer's Fill must remain safe after Cancel.
	p.Fill(9)
}

func TestOnFillRunsAfterLockReleased(t *testing.T) {
	p, _ := New[int]()
	n := NewNotifier()
	p.OnFill(func(v int) { n.Notify(Token(v)) })
	go p.Fill(5)

	tok := n.Await()
	if tok != Token(5) {
		t.Errorf("token = %d, want 5", tok)
	}
}
