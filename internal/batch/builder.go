package batch

import "github.com/memgraph/mgconsole/internal/query"

// Builder accumulates queries into a Window. It holds exactly one open
// batch per parallel lane (vertex, edge) at a time; pre and post lanes are
// flat, unbatched sequences.
type Builder struct {
	batchSize  int
	maxBatches int

	consumed int
	window   *Window

	openVertex      *Batch
	openEdge        *Batch
	nextVertexIndex int
	nextEdgeIndex   int
}

// NewBuilder returns a Builder that stops accepting queries once it has
// consumed batchSize*maxBatches of them, per the window capacity invariant.
func NewBuilder(batchSize, maxBatches int) *Builder {
	bd := &Builder{batchSize: batchSize, maxBatches: maxBatches}
	bd.reset()
	return bd
}

func (bd *Builder) reset() {
	bd.consumed = 0
	bd.window = &Window{}
	bd.openVertex = NewBatch(0, bd.batchSize)
	bd.openEdge = NewBatch(0, bd.batchSize)
	bd.nextVertexIndex = 1
	bd.nextEdgeIndex = 1
}

// Full reports whether the builder has consumed its full window capacity.
func (bd *Builder) Full() bool {
	return bd.consumed >= bd.batchSize*bd.maxBatches
}

// Add classifies q and routes it into the appropriate lane, sealing the
// open vertex/edge batch and starting a fresh one whenever it fills.
func (bd *Builder) Add(q query.Query) {
	switch query.Classify(q.Info) {
	case query.LanePre:
		bd.window.Pre = append(bd.window.Pre, q)
	case query.LanePost:
		bd.window.Post = append(bd.window.Post, q)
	case query.LaneVertex:
		bd.openVertex.Add(q)
		if bd.openVertex.Full() {
			bd.window.Vertex = append(bd.window.Vertex, bd.openVertex)
			bd.openVertex = NewBatch(bd.nextVertexIndex, bd.batchSize)
			bd.nextVertexIndex++
		}
	case query.LaneEdge:
		bd.openEdge.Add(q)
		if bd.openEdge.Full() {
			bd.window.Edge = append(bd.window.Edge, bd.openEdge)
			bd.openEdge = NewBatch(bd.nextEdgeIndex, bd.batchSize)
			bd.nextEdgeIndex++
		}
	}
	bd.consumed++
}

// Finalize seals any partial open batch, returns the completed window, and
// resets the builder for the next window.
func (bd *Builder) Finalize() *Window {
	if bd.openVertex.Len() > 0 {
		bd.window.Vertex = append(bd.window.Vertex, bd.openVertex)
	}
	if bd.openEdge.Len() > 0 {
		bd.window.Edge = append(bd.window.Edge, bd.openEdge)
	}
	w := bd.window
	bd.reset()
	return w
}
