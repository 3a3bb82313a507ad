// Package wire defines the minimal contract the parallel batch executor,
// serial phase driver, and worker pool need from the underlying
// wire-protocol client library: a session that can run a batch of
// statements as one transaction, or a flat sequence as independent
// autocommit statements, and report its own health, plus a factory that
// opens such sessions.
package wire

import (
	"context"

	"github.com/memgraph/mgconsole/internal/query"
)

// Session is one authenticated connection to the server. A session is
// exclusively owned by a single worker slot at any time.
type Session interface {
	// Run executes every statement in queries as one all-or-nothing
	// transaction: commit at the end, and any per-statement or commit
	// error leaves no partial side effects (the server rolls back). Used
	// for the vertex/edge lane's atomic Batch unit.
	Run(ctx context.Context, queries []query.Query) error
	// RunEach executes each statement in queries as its own autocommit
	// operation, stopping at the first error. There is no shared
	// transaction across statements: a mid-sequence failure leaves
	// earlier statements committed. Used for the pre/post lanes, which
	// are flat unbatched sequences and may contain DDL (index
	// create/drop) that a server refuses to run inside an explicit
	// multi-statement transaction.
	RunEach(ctx context.Context, queries []query.Query) error
	// Healthy reports the session's last-observed health: true is GOOD,
	// false is BAD.
	Healthy() bool
	// Close releases the session's resources.
	Close(ctx context.Context) error
}

// Factory opens authenticated sessions against the server.
type Factory interface {
	Open(ctx context.Context) (Session, error)
}
