// Package phase implements the outer driver loop: pull a window from the
// statement source, run its pre sequence serially, its vertex and edge
// lanes in parallel via the executor, then its post sequence serially, and
// repeat until the source is exhausted.
package phase

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/memgraph/mgconsole/internal/batch"
	"github.com/memgraph/mgconsole/internal/executor"
	"github.com/memgraph/mgconsole/internal/pool"
	"github.com/memgraph/mgconsole/internal/query"
	"github.com/memgraph/mgconsole/internal/source"
	"github.com/memgraph/mgconsole/internal/wire"
)

// Counters accumulates per-lane executed statement counts across every
// window of one run, for progress reporting.
type Counters struct {
	Pre    int
	Vertex int
	Edge   int
	Post   int
}

// ProgressFunc is invoked after each lane of each window completes. It must
// not block the driver; implementations that publish externally should do
// so asynchronously (e.g. a non-blocking channel send).
type ProgressFunc func(lane string, executedThisLane int, elapsed time.Duration, totals Counters)

// Driver owns the resources a run needs: a statement source, a batch
// builder, and a worker pool sized to serve as both the serial pre/post
// executor (worker 0) and the parallel executor's backing pool.
type Driver struct {
	Source      source.StatementSource
	Builder     *batch.Builder
	Pool        *pool.Pool
	MaxAttempts int
	OnProgress  ProgressFunc
}

// Run drives windows to completion until the source is exhausted, or stops
// at the first fatal error from a pre/post sequence or an exhausted-retry
// lane failure.
func (d *Driver) Run(ctx context.Context) (Counters, error) {
	var totals Counters

	for {
		w, err := d.pullWindow(ctx)
		if err != nil {
			return totals, err
		}
		if w.Empty() {
			return totals, nil
		}

		if len(w.Pre) > 0 {
			start := time.Now()
			if err := d.runSerial(ctx, w.Pre); err != nil {
				return totals, fmt.Errorf("phase: pre sequence: %w", err)
			}
			totals.Pre += len(w.Pre)
			d.report("pre", len(w.Pre), time.Since(start), totals)
		}

		if len(w.Vertex) > 0 {
			start := time.Now()
			_, err := executor.Run(ctx, d.Pool, w.Vertex, d.MaxAttempts)
			n := executedQueries(w.Vertex)
			totals.Vertex += n
			d.report("vertex", n, time.Since(start), totals)
			if err != nil {
				return totals, fmt.Errorf("phase: vertex lane: %w", err)
			}
		}

		if len(w.Edge) > 0 {
			start := time.Now()
			_, err := executor.Run(ctx, d.Pool, w.Edge, d.MaxAttempts)
			n := executedQueries(w.Edge)
			totals.Edge += n
			d.report("edge", n, time.Since(start), totals)
			if err != nil {
				return totals, fmt.Errorf("phase: edge lane: %w", err)
			}
		}

		if len(w.Post) > 0 {
			start := time.Now()
			if err := d.runSerial(ctx, w.Post); err != nil {
				return totals, fmt.Errorf("phase: post sequence: %w", err)
			}
			totals.Post += len(w.Post)
			d.report("post", len(w.Post), time.Since(start), totals)
		}
	}
}

// executedQueries counts the statements carried by the executed batches.
func executedQueries(batches []*batch.Batch) int {
	n := 0
	for _, b := range batches {
		if b.IsExecuted {
			n += b.Len()
		}
	}
	return n
}

func (d *Driver) report(lane string, n int, elapsed time.Duration, totals Counters) {
	if d.OnProgress != nil {
		d.OnProgress(lane, n, elapsed, totals)
	}
}

// pullWindow consumes up to batch_size*max_batches queries from the source
// and finalizes a window, stopping early (without error) at end of stream.
func (d *Driver) pullWindow(ctx context.Context) (*batch.Window, error) {
	for !d.Builder.Full() {
		q, err := d.Source.Next(ctx)
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("phase: reading source: %w", err)
		}
		d.Builder.Add(*q)
	}
	return d.Builder.Finalize(), nil
}

// runSerial executes queries one at a time, in order, on worker 0's
// session — used for the pre and post lanes, which must never interleave
// with parallel dispatch or with each other. Each statement runs as its
// own autocommit operation rather than one shared transaction: the pre
// lane can carry index DDL, which the server rejects inside an explicit
// multi-statement transaction.
func (d *Driver) runSerial(ctx context.Context, queries []query.Query) error {
	done := make(chan error, 1)
	d.Pool.SubmitTo(0, func(session wire.Session) {
		done <- session.RunEach(ctx, queries)
	})
	select {
	case err := <-done:
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}
