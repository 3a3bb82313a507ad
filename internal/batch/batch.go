// Package batch implements the Batch and Window data model and the batch
// builder that routes classified queries into the pre/vertex/edge/post
// lanes described for the import engine.
package batch

import "github.com/memgraph/mgconsole/internal/query"

const maxBackoffMillis = 100

// Batch is an ordered sequence of queries of length at most Capacity.
//
// Batch fields (IsExecuted, Attempts, Backoff) are written by exactly one
// worker task at a time and read by the caller only between dispatch
// rounds, once every task for the round has been observed through the
// notifier. That happens-before edge is what makes the unsynchronized
// fields here safe: there is never a genuinely concurrent reader and
// writer, only a sequence of exclusive owners handed off through the
// promise/notifier pair.
type Batch struct {
	Index      int
	Capacity   int
	Queries    []query.Query
	IsExecuted bool
	Attempts   int
	Backoff    int
	LastErr    error
}

// NewBatch returns an empty batch with the invariant backoff value of 1.
func NewBatch(index, capacity int) *Batch {
	return &Batch{Index: index, Capacity: capacity, Backoff: 1}
}

// Add appends q to the batch. It reports false if the batch is already at
// capacity and the query was not added.
func (b *Batch) Add(q query.Query) bool {
	if len(b.Queries) >= b.Capacity {
		return false
	}
	b.Queries = append(b.Queries, q)
	return true
}

// Full reports whether the batch has reached its capacity.
func (b *Batch) Full() bool {
	return len(b.Queries) >= b.Capacity
}

// Len returns the number of queries currently in the batch.
func (b *Batch) Len() int {
	return len(b.Queries)
}

// RecordFailure increments Attempts and doubles Backoff, wrapping to 1 if
// doubling would exceed 100. Called by exactly the one worker task that
// owns this batch for the current round.
func (b *Batch) RecordFailure() {
	b.Attempts++
	next := b.Backoff * 2
	if next > maxBackoffMillis {
		next = 1
	}
	b.Backoff = next
}
