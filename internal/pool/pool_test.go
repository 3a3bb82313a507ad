package pool

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/memgraph/mgconsole/internal/query"
	"github.com/memgraph/mgconsole/internal/wire"
)

type fakeSession struct {
	id      int
	healthy int32
	closed  int32
}

func (s *fakeSession) Run(ctx context.Context, queries []query.Query) error {
	return nil
}

func (s *fakeSession) RunEach(ctx context.Context, queries []query.Query) error {
	return nil
}

func (s *fakeSession) Healthy() bool {
	return atomic.LoadInt32(&s.healthy) != 0
}

func (s *fakeSession) Close(ctx context.Context) error {
	atomic.StoreInt32(&s.closed, 1)
	return nil
}

type fakeFactory struct {
	mu      sync.Mutex
	opened  int
	failNth int // if > 0, the failNth Open call fails
	err     error
}

func (f *fakeFactory) Open(ctx context.Context) (wire.Session, error) {
	f.mu.Lock()
	f.opened++
	n := f.opened
	f.mu.Unlock()
	if f.failNth > 0 && n == f.failNth {
		return nil, f.err
	}
	return &fakeSession{id: n, healthy: 1}, nil
}

func TestNewOpensWSessions(t *testing.T) {
	f := &fakeFactory{}
	p, err := New(context.Background(), f, 4)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer p.Close(context.Background())

	if p.Workers() != 4 {
		t.Fatalf("Workers() = %d, want 4", p.Workers())
	}
	for i := 0; i < 4; i++ {
		if p.Session(i) == nil {
			t.Fatalf("slot %d has nil session", i)
		}
	}
}

func TestNewFailsWhenOneDialFails(t *testing.T) {
	f := &fakeFactory{failNth: 2, err: errors.New("dial refused")}
	_, err := New(context.Background(), f, 4)
	if err == nil {
		t.Fatal("expected error when one dial fails")
	}
}

func TestSubmitRunsAllTasks(t *testing.T) {
	f := &fakeFactory{}
	p, err := New(context.Background(), f, 2)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer p.Close(context.Background())

	var count int32
	var wg sync.WaitGroup
	wg.Add(10)
	for i := 0; i < 10; i++ {
		p.Submit(func(_ wire.Session) {
			atomic.AddInt32(&count, 1)
			wg.Done()
		})
	}

	done := make(chan struct{})
	go func() { wg.Wait(); close(done) }()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("tasks did not complete in time")
	}
	if atomic.LoadInt32(&count) != 10 {
		t.Fatalf("count = %d, want 10", count)
	}
}

func TestReplaceSessionSwapsAndCloses(t *testing.T) {
	f := &fakeFactory{}
	p, err := New(context.Background(), f, 2)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer p.Close(context.Background())

	old := p.Session(0).(*fakeSession)
	if err := p.ReplaceSession(context.Background(), 0); err != nil {
		t.Fatalf("ReplaceSession: %v", err)
	}
	fresh := p.Session(0).(*fakeSession)
	if fresh == old {
		t.Fatal("expected a distinct session after replace")
	}
	if atomic.LoadInt32(&old.closed) == 0 {
		t.Fatal("expected old session to be closed")
	}
}

func TestCloseWaitsForQueueDrainAndClosesSessions(t *testing.T) {
	f := &fakeFactory{}
	p, err := New(context.Background(), f, 2)
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	var ran int32
	for i := 0; i < 5; i++ {
		p.Submit(func(_ wire.Session) { atomic.AddInt32(&ran, 1) })
	}
	if err := p.Close(context.Background()); err != nil {
		t.Fatalf("Close: %v", err)
	}
	if atomic.LoadInt32(&ran) != 5 {
		t.Fatalf("ran = %d, want 5 (queue must drain before terminate)", ran)
	}
	for i := 0; i < 2; i++ {
		s := p.Session(i).(*fakeSession)
		if atomic.LoadInt32(&s.closed) == 0 {
			t.Fatalf("slot %d session not closed", i)
		}
	}
}
