// Package pool implements the fixed-size worker pool the parallel batch
// executor and phase driver dispatch work onto: W session slots and W
// worker goroutines draining one shared FIFO task queue guarded by a mutex
// and condition variable. A task reaches a slot's session through
// SubmitTo, whichever goroutine happens to run it.
package pool

import (
	"context"
	"fmt"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/memgraph/mgconsole/internal/wire"
)

// Task is a unit of work submitted to a worker. A task passed to Submit
// receives nil; SubmitTo wraps its task so it receives the chosen slot's
// current session.
type Task func(session wire.Session)

// Pool is a fixed-size worker pool. Each of the W slots owns exactly one
// wire.Session for its lifetime, replaced in place when observed unhealthy.
type Pool struct {
	factory wire.Factory

	mu        sync.Mutex
	cond      sync.Cond
	queue     []Task
	terminate bool

	sessions []wire.Session
	sessMu   []sync.Mutex

	wg sync.WaitGroup
}

// New opens W sessions concurrently via factory (bounded warm-up, so
// startup latency tracks the slowest single dial rather than W sequential
// ones) and starts W worker goroutines that drain the shared task queue.
func New(ctx context.Context, factory wire.Factory, w int) (*Pool, error) {
	if w <= 0 {
		return nil, fmt.Errorf("pool: workers_number must be positive, got %d", w)
	}

	sessions := make([]wire.Session, w)
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(w)
	for i := range sessions {
		i := i
		g.Go(func() error {
			s, err := factory.Open(gctx)
			if err != nil {
				return fmt.Errorf("pool: opening session %d: %w", i, err)
			}
			sessions[i] = s
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		for _, s := range sessions {
			if s != nil {
				_ = s.Close(ctx)
			}
		}
		return nil, err
	}

	p := &Pool{
		factory:  factory,
		sessions: sessions,
		sessMu:   make([]sync.Mutex, w),
	}
	p.cond.L = &p.mu

	p.wg.Add(w)
	for i := 0; i < w; i++ {
		go p.worker(i)
	}
	return p, nil
}

// Workers returns the pool's fixed worker count W.
func (p *Pool) Workers() int {
	return len(p.sessions)
}

// Session returns the session currently pinned to slot i. Callers must not
// use it concurrently with a task running on the same slot; the executor
// enforces this by only ever handing slot i's session to slot i's task.
func (p *Pool) Session(i int) wire.Session {
	p.sessMu[i].Lock()
	defer p.sessMu[i].Unlock()
	return p.sessions[i]
}

// ReplaceSession swaps slot i's session for a freshly opened one, closing
// the old one. Called by the executor after observing a slot's session go
// BAD following a failed batch.
func (p *Pool) ReplaceSession(ctx context.Context, i int) error {
	p.sessMu[i].Lock()
	defer p.sessMu[i].Unlock()

	old := p.sessions[i]
	fresh, err := p.factory.Open(ctx)
	if err != nil {
		return fmt.Errorf("pool: replacing session %d: %w", i, err)
	}
	p.sessions[i] = fresh
	if old != nil {
		_ = old.Close(ctx)
	}
	return nil
}

// Submit enqueues a task for slot-agnostic dispatch. The caller is
// responsible for pinning: submit tasks that close over the intended slot
// index and fetch p.Session(slot) themselves, or use SubmitTo.
func (p *Pool) Submit(task Task) {
	p.mu.Lock()
	p.queue = append(p.queue, task)
	p.mu.Unlock()
	p.cond.Signal()
}

// SubmitTo enqueues a task bound to run against slot i's current session.
func (p *Pool) SubmitTo(slot int, task func(session wire.Session)) {
	p.Submit(func(_ wire.Session) {
		task(p.Session(slot))
	})
}

func (p *Pool) worker(_ int) {
	defer p.wg.Done()
	for {
		p.mu.Lock()
		for len(p.queue) == 0 && !p.terminate {
			p.cond.Wait()
		}
		if p.terminate && len(p.queue) == 0 {
			p.mu.Unlock()
			return
		}
		task := p.queue[0]
		p.queue = p.queue[1:]
		p.mu.Unlock()

		task(nil)
	}
}

// Close signals every worker to terminate once the queue drains, waits for
// them to exit, then closes every pinned session.
func (p *Pool) Close(ctx context.Context) error {
	p.mu.Lock()
	p.terminate = true
	p.mu.Unlock()
	p.cond.Broadcast()
	p.wg.Wait()

	var firstErr error
	for i := range p.sessions {
		p.sessMu[i].Lock()
		if p.sessions[i] != nil {
			if err := p.sessions[i].Close(ctx); err != nil && firstErr == nil {
				firstErr = err
			}
		}
		p.sessMu[i].Unlock()
	}
	return firstErr
}
