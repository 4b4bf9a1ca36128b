package genai

import (
	"context"
	"sync"

	"github.com/google/uuid"

	"github.com/promptstack/promptstack/pkg/errors"
	"github.com/promptstack/promptstack/pkg/graph"
)

// Generator produces a graph from a free-text request.
type Generator interface {
	Generate(ctx context.Context, request string) (*graph.Graph, error)
}

// Dispatcher serializes generation requests and discards stale responses.
// Generation is the one asynchronous operation in the editing flow; when
// a user issues a new request (or dismisses the dialog) while an older
// one is in flight, the older response must not clobber newer state.
// Each request gets an identity, and only the most recent identity may
// deliver a result.
type Dispatcher struct {
	gen Generator

	mu     sync.Mutex
	active string
}

// NewDispatcher wraps a generator with stale-response protection.
func NewDispatcher(gen Generator) *Dispatcher {
	return &Dispatcher{gen: gen}
}

// Generate issues a request. If a newer request is issued or [Dispatcher.Cancel]
// is called before this one completes, its result is discarded and an
// error with code STALE_RESPONSE is returned instead.
func (d *Dispatcher) Generate(ctx context.Context, request string) (*graph.Graph, error) {
	id := uuid.NewString()

	d.mu.Lock()
	d.active = id
	d.mu.Unlock()

	g, err := d.gen.Generate(ctx, request)

	d.mu.Lock()
	stale := d.active != id
	d.mu.Unlock()

	if stale {
		return nil, errors.New(errors.ErrCodeStaleResponse,
			"generation result discarded: a newer request superseded it")
	}
	return g, err
}

// Cancel marks any in-flight request as stale without issuing a new one.
func (d *Dispatcher) Cancel() {
	d.mu.Lock()
	d.active = ""
	d.mu.Unlock()
}
