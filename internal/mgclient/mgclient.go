// Package mgclient adapts the neo4j-go-driver Bolt client into the
// wire.Session/wire.Factory contract the worker pool, executor, and phase
// driver depend on: one driver shared across all sessions, one session
// per worker slot, each Batch executed as a single managed write
// transaction, and each pre/post statement executed as its own
// autocommit operation.
package mgclient

import (
	"context"
	"fmt"
	"sync/atomic"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"

	"github.com/memgraph/mgconsole/internal/query"
	"github.com/memgraph/mgconsole/internal/wire"
)

// Config carries everything needed to dial the target server. Exactly one
// of (User, Password) or TokenSource should be set; TokenSource takes
// precedence when both are present.
type Config struct {
	Host        string
	Port        int
	User        string
	Password    string
	UseSSL      bool
	TokenSource TokenSource
}

// TokenSource produces a bearer token for neo4j.BearerAuth, refreshed on
// each call. Satisfied by internal/oidcauth.Client.
type TokenSource interface {
	Token(ctx context.Context) (string, error)
}

func (c Config) uri() string {
	scheme := "bolt"
	if c.UseSSL {
		scheme = "bolt+s"
	}
	return fmt.Sprintf("%s://%s:%d", scheme, c.Host, c.Port)
}

func (c Config) authToken(ctx context.Context) (neo4j.AuthToken, error) {
	if c.TokenSource != nil {
		tok, err := c.TokenSource.Token(ctx)
		if err != nil {
			return neo4j.AuthToken{}, fmt.Errorf("mgclient: acquiring bearer token: %w", err)
		}
		return neo4j.BearerAuth(tok), nil
	}
	return neo4j.BasicAuth(c.User, c.Password, ""), nil
}

// Factory opens Bolt sessions against one shared driver.
type Factory struct {
	cfg    Config
	driver neo4j.DriverWithContext
}

// NewFactory dials the driver (a lightweight, poolable handle — no network
// round trip happens until a session runs a query) and verifies
// connectivity once up front so a bad host/port/credential fails fast
// during pool warm-up rather than on the first batch.
func NewFactory(ctx context.Context, cfg Config) (*Factory, error) {
	auth, err := cfg.authToken(ctx)
	if err != nil {
		return nil, err
	}
	driver, err := neo4j.NewDriverWithContext(cfg.uri(), auth)
	if err != nil {
		return nil, fmt.Errorf("mgclient: creating driver: %w", err)
	}
	if err := driver.VerifyConnectivity(ctx); err != nil {
		_ = driver.Close(ctx)
		return nil, fmt.Errorf("mgclient: connecting to %s: %w", cfg.uri(), err)
	}
	return &Factory{cfg: cfg, driver: driver}, nil
}

// Open satisfies wire.Factory.
func (f *Factory) Open(ctx context.Context) (wire.Session, error) {
	session := f.driver.NewSession(ctx, neo4j.SessionConfig{AccessMode: neo4j.AccessModeWrite})
	return newSession(session), nil
}

// Close releases the shared driver once every session opened from it has
// been closed.
func (f *Factory) Close(ctx context.Context) error {
	return f.driver.Close(ctx)
}

// Session wraps one Bolt session. healthy latches to false on the first
// observed transaction failure and never recovers — matching the pool's
// replace-on-BAD contract, which always opens a brand new session rather
// than attempting to resuscitate one in place.
type Session struct {
	session neo4j.SessionWithContext
	healthy int32
}

func newSession(s neo4j.SessionWithContext) *Session {
	return &Session{session: s, healthy: 1}
}

// Run executes every query's text in one managed write transaction. Any
// per-statement or commit error rolls back the whole transaction (the
// driver's ExecuteWrite semantics) and marks the session BAD.
func (s *Session) Run(ctx context.Context, queries []query.Query) error {
	_, err := neo4j.ExecuteWrite(ctx, s.session, func(tx neo4j.ManagedTransaction) (any, error) {
		for _, q := range queries {
			if _, err := tx.Run(ctx, q.Text, nil); err != nil {
				return nil, fmt.Errorf("mgclient: statement at line %d: %w", q.Line, err)
			}
		}
		return nil, nil
	})
	if err != nil {
		atomic.StoreInt32(&s.healthy, 0)
	}
	return err
}

// RunEach executes each query as its own autocommit statement, stopping
// at the first error. Neo4j and Memgraph both refuse to run index DDL
// (CREATE INDEX / DROP INDEX) inside an explicit multi-statement
// transaction, which rules out wrapping the pre/post lanes in
// neo4j.ExecuteWrite the way Run does for a Batch.
func (s *Session) RunEach(ctx context.Context, queries []query.Query) error {
	for _, q := range queries {
		result, err := s.session.Run(ctx, q.Text, nil)
		if err == nil {
			_, err = result.Consume(ctx)
		}
		if err != nil {
			atomic.StoreInt32(&s.healthy, 0)
			return fmt.Errorf("mgclient: statement at line %d: %w", q.Line, err)
		}
	}
	return nil
}

// Healthy satisfies wire.Session.
func (s *Session) Healthy() bool {
	return atomic.LoadInt32(&s.healthy) != 0
}

// Close satisfies wire.Session.
func (s *Session) Close(ctx context.Context) error {
	return s.session.Close(ctx)
}
