// Package status serves a small HTTP + WebSocket surface exposing an
// import run's live progress: a health check, a JSON snapshot of the
// latest counters, and a WebSocket stream that broadcasts every progress
// event as it happens.
package status

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"sync"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/gorilla/websocket"

	"github.com/memgraph/mgconsole/internal/sink"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

// Server broadcasts progress events to WebSocket subscribers and serves a
// point-in-time JSON snapshot of the latest event at /progress. It
// implements sink.ResultSink so the phase driver can publish to it exactly
// like any other sink.
type Server struct {
	logger *slog.Logger
	router *chi.Mux

	mu       sync.Mutex
	latest   sink.Progress
	haveLast bool
	subs     map[*websocket.Conn]chan sink.Progress
}

// New builds the router. Serve it by passing Handler to an http.Server,
// or to httptest in tests.
func New(logger *slog.Logger) *Server {
	s := &Server{
		logger: logger,
		subs:   make(map[*websocket.Conn]chan sink.Progress),
	}

	r := chi.NewRouter()
	r.Use(chimw.Recoverer)
	r.Get("/healthz", s.handleHealthz)
	r.Get("/progress", s.handleProgress)
	r.Get("/ws", s.handleWS)
	s.router = r
	return s
}

// Handler returns the underlying http.Handler, useful for tests and for
// wrapping with additional middleware at the call site.
func (s *Server) Handler() http.Handler { return s.router }

func (s *Server) handleHealthz(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("ok"))
}

func (s *Server) handleProgress(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	p, ok := s.latest, s.haveLast
	s.mu.Unlock()

	w.Header().Set("Content-Type", "application/json")
	if !ok {
		w.WriteHeader(http.StatusNoContent)
		return
	}
	json.NewEncoder(w).Encode(p)
}

func (s *Server) handleWS(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Warn("status: websocket upgrade failed", "error", err)
		return
	}

	ch := make(chan sink.Progress, 16)
	s.mu.Lock()
	s.subs[conn] = ch
	s.mu.Unlock()

	defer func() {
		s.mu.Lock()
		delete(s.subs, conn)
		s.mu.Unlock()
		conn.Close()
	}()

	for p := range ch {
		if err := conn.WriteJSON(p); err != nil {
			return
		}
	}
}

// Publish satisfies sink.ResultSink: it records the latest snapshot and
// broadcasts to every connected WebSocket subscriber without blocking on a
// slow reader — a full per-connection buffer drops the event for that
// connection only.
func (s *Server) Publish(_ context.Context, p sink.Progress) {
	s.mu.Lock()
	s.latest = p
	s.haveLast = true
	subs := make([]chan sink.Progress, 0, len(s.subs))
	for _, ch := range s.subs {
		subs = append(subs, ch)
	}
	s.mu.Unlock()

	for _, ch := range subs {
		select {
		case ch <- p:
		default:
		}
	}
}

// Close satisfies sink.ResultSink; the HTTP server's own lifecycle is
// managed by the caller via ListenAndServe/http.Server.Shutdown.
func (s *Server) Close(context.Context) error {
	return nil
}
