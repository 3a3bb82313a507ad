package executor

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/memgraph/mgconsole/internal/batch"
	"github.com/memgraph/mgconsole/internal/pool"
	"github.com/memgraph/mgconsole/internal/query"
	"github.com/memgraph/mgconsole/internal/wire"
)

// countingSession fails its first failLeft calls to Run, then succeeds.
// It tracks concurrent in-flight Run calls so tests can assert P6 (at most
// W tasks in flight at any instant).
type countingSession struct {
	mu          sync.Mutex
	failLeft    int
	healthy     int32
	inFlight    *int32
	maxInFlight *int32
}

func (s *countingSession) Run(ctx context.Context, queries []query.Query) error {
	if s.inFlight != nil {
		n := atomic.AddInt32(s.inFlight, 1)
		defer atomic.AddInt32(s.inFlight, -1)
		for {
			cur := atomic.LoadInt32(s.maxInFlight)
			if n <= cur || atomic.CompareAndSwapInt32(s.maxInFlight, cur, n) {
				break
			}
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failLeft > 0 {
		s.failLeft--
		return errors.New("transient failure")
	}
	return nil
}

func (s *countingSession) RunEach(ctx context.Context, queries []query.Query) error {
	for _, q := range queries {
		if err := s.Run(ctx, []query.Query{q}); err != nil {
			return err
		}
	}
	return nil
}

func (s *countingSession) Healthy() bool     { return atomic.LoadInt32(&s.healthy) != 0 }
func (s *countingSession) Close(context.Context) error { return nil }

type sessionFactory struct {
	mu          sync.Mutex
	failLeftFor int // each opened session starts with this many forced failures
	inFlight    int32
	maxInFlight int32
}

func (f *sessionFactory) Open(ctx context.Context) (wire.Session, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return &countingSession{
		failLeft:    f.failLeftFor,
		healthy:     1,
		inFlight:    &f.inFlight,
		maxInFlight: &f.maxInFlight,
	}, nil
}

func batchesOf(n, capacity int) []*batch.Batch {
	out := make([]*batch.Batch, n)
	for i := range out {
		out[i] = batch.NewBatch(i, capacity)
		out[i].Add(query.Query{Text: "STATEMENT", Line: i + 1, Index: uint64(i)})
	}
	return out
}

// TestConcurrencyCap is property P6: at most W tasks are in flight at once.
func TestConcurrencyCap(t *testing.T) {
	f := &sessionFactory{}
	const w = 4
	p, err := pool.New(context.Background(), f, w)
	if err != nil {
		t.Fatalf("pool.New: %v", err)
	}
	defer p.Close(context.Background())

	batches := batchesOf(20, 1)
	executed, err := Run(context.Background(), p, batches, DefaultMaxAttempts)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if executed != 20 {
		t.Fatalf("executed = %d, want 20", executed)
	}
	if got := atomic.LoadInt32(&f.maxInFlight); got > w {
		t.Fatalf("observed %d concurrent tasks, want <= %d", got, w)
	}
	for _, b := range batches {
		if !b.IsExecuted {
			t.Fatalf("batch %d never executed", b.Index)
		}
	}
}

// TestScenario4BackoffThroughExecutor exercises the backoff trajectory end to end: a batch
// that fails 7 times in a row before succeeding sees backoff wrap once.
func TestScenario4BackoffThroughExecutor(t *testing.T) {
	f := &sessionFactory{failLeftFor: 7}
	p, err := pool.New(context.Background(), f, 1)
	if err != nil {
		t.Fatalf("pool.New: %v", err)
	}
	defer p.Close(context.Background())

	b := batch.NewBatch(0, 1)
	b.Add(query.Query{Text: "STATEMENT", Line: 1})

	start := time.Now()
	executed, err := Run(context.Background(), p, []*batch.Batch{b}, DefaultMaxAttempts+3)
	elapsed := time.Since(start)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if executed != 1 || !b.IsExecuted {
		t.Fatalf("batch did not eventually execute: executed=%d", executed)
	}
	if b.Attempts != 7 {
		t.Fatalf("Attempts = %d, want 7", b.Attempts)
	}
	// Backoff after 7 failures should have wrapped back to 1.
	if b.Backoff != 1 {
		t.Fatalf("Backoff = %d, want 1 (wrapped after 7 failures)", b.Backoff)
	}
	// Sanity: the retries actually slept (2+4+8+16+32+64 = 126ms minimum;
	// a backoff of 1 does not sleep).
	if elapsed < 100*time.Millisecond {
		t.Fatalf("elapsed = %v, expected backoff sleeps to accumulate", elapsed)
	}
}

// TestRetriesExhaustedIsFatal verifies a batch that never succeeds returns
// an error once maxAttempts is reached rather than retrying forever.
func TestRetriesExhaustedIsFatal(t *testing.T) {
	f := &sessionFactory{failLeftFor: 1000}
	p, err := pool.New(context.Background(), f, 2)
	if err != nil {
		t.Fatalf("pool.New: %v", err)
	}
	defer p.Close(context.Background())

	b := batch.NewBatch(0, 1)
	b.Add(query.Query{Text: "STATEMENT", Line: 1})

	_, err = Run(context.Background(), p, []*batch.Batch{b}, 3)
	if err == nil {
		t.Fatal("expected fatal error after exhausting max attempts")
	}
	if b.Attempts != 3 {
		t.Fatalf("Attempts = %d, want 3", b.Attempts)
	}
}

// TestScenario5SessionReplacement verifies a slot whose session goes BAD
// after a failure gets a fresh session before the batch is retried.
func TestScenario5SessionReplacement(t *testing.T) {
	f := &sessionFactory{}
	p, err := pool.New(context.Background(), f, 1)
	if err != nil {
		t.Fatalf("pool.New: %v", err)
	}
	defer p.Close(context.Background())

	bad := p.Session(0).(*countingSession)
	bad.mu.Lock()
	bad.failLeft = 1
	bad.mu.Unlock()
	atomic.StoreInt32(&bad.healthy, 0)

	b := batch.NewBatch(0, 1)
	b.Add(query.Query{Text: "STATEMENT", Line: 1})

	executed, err := Run(context.Background(), p, []*batch.Batch{b}, DefaultMaxAttempts)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if executed != 1 {
		t.Fatalf("executed = %d, want 1", executed)
	}
	fresh := p.Session(0).(*countingSession)
	if fresh == bad {
		t.Fatal("expected session to be replaced after going unhealthy")
	}
}
