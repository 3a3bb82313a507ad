// Package sink implements the run's progress reporting: a stdout summary
// printer (the core requirement) and an optional Valkey stream publisher so
// external tooling can tail an import's progress in real time.
package sink

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/google/uuid"
	"github.com/valkey-io/valkey-go"
)

// ProgressStream is the Valkey stream progress events are published to.
const ProgressStream = "mgimport:progress"

// Progress is one lane-completion event.
type Progress struct {
	RunID    uuid.UUID `json:"run_id"`
	Lane     string    `json:"lane"`
	Executed int       `json:"executed"`
	ElapsedMS int64    `json:"elapsed_ms"`
	Totals   struct {
		Pre    int `json:"pre"`
		Vertex int `json:"vertex"`
		Edge   int `json:"edge"`
		Post   int `json:"post"`
	} `json:"totals"`
}

// ResultSink consumes progress events. Publish must never block the phase
// driver for longer than it takes to enqueue the event.
type ResultSink interface {
	Publish(ctx context.Context, p Progress)
	Close(ctx context.Context) error
}

// Stdout writes a one-line human-readable summary per event.
type Stdout struct {
	w io.Writer
}

// NewStdout returns the default sink, the only one every run has.
func NewStdout(w io.Writer) *Stdout {
	return &Stdout{w: w}
}

func (s *Stdout) Publish(_ context.Context, p Progress) {
	fmt.Fprintf(s.w, "run=%s lane=%-6s executed=%-6d elapsed_ms=%-6d totals(pre=%d vertex=%d edge=%d post=%d)\n",
		p.RunID, p.Lane, p.Executed, p.ElapsedMS,
		p.Totals.Pre, p.Totals.Vertex, p.Totals.Edge, p.Totals.Post)
}

func (s *Stdout) Close(context.Context) error { return nil }

// Valkey publishes every event as an XADD entry on ProgressStream. It never
// backpressures the caller: publishing runs through a bounded buffered
// channel drained by one background goroutine, and a full buffer drops the
// oldest pending event rather than blocking the driver.
type Valkey struct {
	client valkey.Client
	events chan Progress
	done   chan struct{}
}

// NewValkey dials addr and starts the background publisher goroutine.
func NewValkey(addr string, bufferSize int) (*Valkey, error) {
	client, err := valkey.NewClient(valkey.ClientOption{InitAddress: []string{addr}})
	if err != nil {
		return nil, fmt.Errorf("sink: connecting to valkey at %s: %w", addr, err)
	}
	v := &Valkey{
		client: client,
		events: make(chan Progress, bufferSize),
		done:   make(chan struct{}),
	}
	go v.run()
	return v, nil
}

func (v *Valkey) run() {
	defer close(v.done)
	ctx := context.Background()
	for p := range v.events {
		data, err := json.Marshal(p)
		if err != nil {
			continue
		}
		v.client.Do(ctx, v.client.B().Xadd().
			Key(ProgressStream).Id("*").
			FieldValue().FieldValue("data", string(data)).
			Build())
	}
}

// Publish enqueues p, dropping the oldest pending event if the buffer is
// full rather than blocking the phase driver.
func (v *Valkey) Publish(_ context.Context, p Progress) {
	select {
	case v.events <- p:
	default:
		select {
		case <-v.events:
		default:
		}
		select {
		case v.events <- p:
		default:
		}
	}
}

// Close drains the channel and disconnects.
func (v *Valkey) Close(ctx context.Context) error {
	close(v.events)
	select {
	case <-v.done:
	case <-ctx.Done():
	case <-time.After(5 * time.Second):
	}
	v.client.Close()
	return nil
}

// Multi fans a single Progress event out to every sink in order.
type Multi struct {
	sinks []ResultSink
}

// NewMulti combines sinks into one ResultSink.
func NewMulti(sinks ...ResultSink) *Multi {
	return &Multi{sinks: sinks}
}

func (m *Multi) Publish(ctx context.Context, p Progress) {
	for _, s := range m.sinks {
		s.Publish(ctx, p)
	}
}

func (m *Multi) Close(ctx context.Context) error {
	var firstErr error
	for _, s := range m.sinks {
		if err := s.Close(ctx); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}
