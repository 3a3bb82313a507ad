package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/memgraph/mgconsole/internal/batch"
	"github.com/memgraph/mgconsole/internal/config"
	"github.com/memgraph/mgconsole/internal/mgclient"
	"github.com/memgraph/mgconsole/internal/oidcauth"
	"github.com/memgraph/mgconsole/internal/phase"
	"github.com/memgraph/mgconsole/internal/pool"
	"github.com/memgraph/mgconsole/internal/runlock"
	"github.com/memgraph/mgconsole/internal/sink"
	"github.com/memgraph/mgconsole/internal/status"
	"github.com/memgraph/mgconsole/pkg/importerr"
)

// runImport wires every ambient and domain component together and drives
// one import to completion: it is shared by the "run" and "serial"
// commands, which differ only in the batch_size/workers_number they pass.
func runImport(ctx context.Context, cfg config.Config, logger *slog.Logger) error {
	src, err := openSource(ctx, cfg.Source)
	if err != nil {
		return importerr.Wrap(importerr.CodeMalformedInput, "opening statement source", err)
	}

	var tokenSource mgclient.TokenSource
	if cfg.OIDCIssuer != "" {
		oidcClient, err := oidcauth.New(ctx, oidcauth.Config{
			IssuerURL:    cfg.OIDCIssuer,
			ClientID:     cfg.OIDCClientID,
			ClientSecret: cfg.OIDCClientSecret,
		})
		if err != nil {
			return importerr.Wrap(importerr.CodeConnectFailure, "setting up OIDC client-credentials auth", err)
		}
		tokenSource = oidcClient
	}

	factory, err := mgclient.NewFactory(ctx, mgclient.Config{
		Host:        cfg.Host,
		Port:        cfg.Port,
		User:        cfg.Username,
		Password:    cfg.Password,
		UseSSL:      cfg.UseSSL,
		TokenSource: tokenSource,
	})
	if err != nil {
		return importerr.ConnectFailure(err)
	}
	defer factory.Close(ctx)

	p, err := pool.New(ctx, factory, cfg.WorkersNumber)
	if err != nil {
		return importerr.ConnectFailure(err)
	}
	defer p.Close(ctx)

	runID := uuid.New()
	if cfg.Lock {
		target := fmt.Sprintf("%s:%d", cfg.Host, cfg.Port)
		if cfg.LockAddr == "" {
			return importerr.LockUnavailable(target, fmt.Errorf("--lock requires --lock-addr or --publish-valkey"))
		}
		lock, err := runlock.Acquire(ctx, cfg.LockAddr, target, runID.String(), 10*time.Minute)
		if err != nil {
			return importerr.LockUnavailable(target, err)
		}
		defer lock.Release(ctx)
	}

	sinks := []sink.ResultSink{sink.NewStdout(os.Stdout)}
	if cfg.PublishValkey != "" {
		vs, err := sink.NewValkey(cfg.PublishValkey, 256)
		if err != nil {
			return importerr.Wrap(importerr.CodeConnectFailure, "connecting to valkey progress stream", err)
		}
		sinks = append(sinks, vs)
	}
	if cfg.StatusAddr != "" {
		statusSrv := status.New(logger)
		sinks = append(sinks, statusSrv)
		httpServer := &http.Server{Addr: cfg.StatusAddr, Handler: statusSrv.Handler()}
		go func() {
			if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				logger.Error("status server stopped", "error", err)
			}
		}()
		defer httpServer.Shutdown(ctx)
	}
	multi := sink.NewMulti(sinks...)
	defer multi.Close(ctx)

	driver := &phase.Driver{
		Source:      src,
		Builder:     batch.NewBuilder(cfg.BatchSize, cfg.WorkersNumber),
		Pool:        p,
		MaxAttempts: cfg.MaxAttempts,
		OnProgress: func(lane string, executed int, elapsed time.Duration, totals phase.Counters) {
			var ev sink.Progress
			ev.RunID = runID
			ev.Lane = lane
			ev.Executed = executed
			ev.ElapsedMS = elapsed.Milliseconds()
			ev.Totals.Pre = totals.Pre
			ev.Totals.Vertex = totals.Vertex
			ev.Totals.Edge = totals.Edge
			ev.Totals.Post = totals.Post
			multi.Publish(ctx, ev)
		},
	}

	totals, err := driver.Run(ctx)
	logger.Info("import finished",
		"run_id", runID, "pre", totals.Pre, "vertex", totals.Vertex, "edge", totals.Edge, "post", totals.Post)
	if err != nil {
		return classifyDriverErr(err)
	}
	return nil
}

// classifyDriverErr maps the phase driver's plain wrapped errors onto the
// error taxonomy at the CLI boundary, where enough context (which lane
// failed) is available from the error text alone.
func classifyDriverErr(err error) error {
	msg := err.Error()
	switch {
	case strings.Contains(msg, "pre sequence") || strings.Contains(msg, "post sequence"):
		return importerr.Wrap(importerr.CodeStatementError, "serial lane statement failed", err)
	case strings.Contains(msg, "vertex lane") || strings.Contains(msg, "edge lane"):
		return importerr.Wrap(importerr.CodeRetriesExhausted, "parallel lane batch retries exhausted", err)
	case strings.Contains(msg, "reading source"):
		return importerr.Wrap(importerr.CodeMalformedInput, "reading statement source", err)
	default:
		return importerr.Wrap(importerr.CodeInvariantViolation, "unclassified import failure", err)
	}
}
