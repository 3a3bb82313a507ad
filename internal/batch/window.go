package batch

import "github.com/memgraph/mgconsole/internal/query"

// Window is one bounded round of statements read and batched before the
// phase driver executes it. Once returned by Builder.Finalize it is
// immutable.
type Window struct {
	Pre    []query.Query
	Post   []query.Query
	Vertex []*Batch
	Edge   []*Batch
}

// Empty reports whether the window contains no work at all.
func (w *Window) Empty() bool {
	return len(w.Pre) == 0 && len(w.Post) == 0 && len(w.Vertex) == 0 && len(w.Edge) == 0
}

// Total returns the number of queries carried by the window across every
// lane, used to check the window's capacity invariant in tests.
func (w *Window) Total() int {
	n := len(w.Pre) + len(w.Post)
	for _, b := range w.Vertex {
		n += b.Len()
	}
	for _, b := range w.Edge {
		n += b.Len()
	}
	return n
}
