// Package executor implements the bounded-concurrency dispatch loop that
// drives a lane's batches to completion against a worker pool: each round
// picks up to W not-yet-executed batches in index order, pins them to
// worker slots in the order encountered, and waits for the round to
// finish before deciding whether another round is needed.
package executor

import (
	"context"
	"fmt"

	"github.com/memgraph/mgconsole/internal/batch"
	"github.com/memgraph/mgconsole/internal/pool"
	"github.com/memgraph/mgconsole/internal/promise"
	"github.com/memgraph/mgconsole/internal/wire"
)

// DefaultMaxAttempts bounds how many times a single batch is retried before the
// executor gives up and reports a fatal error. Resolves the source
// material's open question on a max_attempts bound: an implementation MAY
// retry forever, this one treats exhaustion as fatal so a systematically
// broken batch (malformed statement, permanently bad auth) cannot spin an
// import indefinitely.
const DefaultMaxAttempts = 5

// Run drives every batch in batches to is_executed == true, or returns an
// error the first time a batch exhausts maxAttempts. Batches are dispatched
// in rounds of up to p.Workers() at a time.
func Run(ctx context.Context, p *pool.Pool, batches []*batch.Batch, maxAttempts int) (int, error) {
	if maxAttempts <= 0 {
		maxAttempts = DefaultMaxAttempts
	}
	w := p.Workers()
	notifier := promise.NewNotifier()
	executed := 0

	for {
		pending := pendingIndices(batches)
		if len(pending) == 0 {
			return executed, nil
		}

		dispatch := pending
		if len(dispatch) > w {
			dispatch = dispatch[:w]
		}

		for slot, idx := range dispatch {
			b := batches[idx]
			slot, idx, b := slot, idx, b

			prom, _ := promise.New[bool]()
			token := promise.Token(idx)
			prom.OnFill(func(bool) { notifier.Notify(token) })

			p.SubmitTo(slot, func(session wire.Session) {
				runOne(ctx, p, slot, session, b, prom)
			})
		}

		for range dispatch {
			notifier.Await()
		}

		for _, idx := range dispatch {
			if batches[idx].IsExecuted {
				executed++
			}
		}

		for _, idx := range dispatch {
			b := batches[idx]
			if !b.IsExecuted && b.Attempts >= maxAttempts {
				return executed, fmt.Errorf(
					"executor: batch %d exhausted %d attempts, last error: %w",
					b.Index, b.Attempts, b.LastErr,
				)
			}
		}
	}
}

// pendingIndices returns the indices of not-yet-executed batches, in index
// order — ties among candidate dispatch sets always break toward the lower
// index first.
func pendingIndices(batches []*batch.Batch) []int {
	var out []int
	for i, b := range batches {
		if !b.IsExecuted {
			out = append(out, i)
		}
	}
	return out
}

func runOne(ctx context.Context, p *pool.Pool, slot int, session wire.Session, b *batch.Batch, prom *promise.Promise[bool]) {
	if b.Backoff > 1 {
		sleepMillis(ctx, b.Backoff)
	}

	err := session.Run(ctx, b.Queries)
	if err == nil {
		b.IsExecuted = true
		prom.Fill(true)
		return
	}

	b.RecordFailure()
	b.LastErr = err
	prom.Fill(false)

	if !session.Healthy() {
		_ = p.ReplaceSession(ctx, slot)
	}
}
