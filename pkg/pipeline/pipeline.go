// Package pipeline runs the import → validate → layout → sequence flow.
//
// The same pipeline backs the CLI and the API server so both entry points
// share defaults, caching, and logging. Each stage can also be run on its
// own: import produces a candidate graph, validate gates it, layout
// assigns positions, and sequence compiles the transcript.
package pipeline

import (
	"time"

	"github.com/promptstack/promptstack/pkg/errors"
	"github.com/promptstack/promptstack/pkg/graph"
	"github.com/promptstack/promptstack/pkg/layout"
	"github.com/promptstack/promptstack/pkg/sequence"
)

// DefaultLayout is the layout mode used when none is requested.
const DefaultLayout = "vertical"

// Options configures a pipeline run. Exactly one of Text or Graph supplies
// the input: Text goes through the importer, Graph skips straight to
// validation. The struct serializes to JSON for API requests.
type Options struct {
	// Text is free-form import text (JSON, bracket blocks, numbered
	// outline, or role-tagged lines).
	Text string `json:"text,omitempty"`

	// Graph is a pre-built graph, used instead of Text.
	Graph *graph.Graph `json:"graph,omitempty"`

	// Layout selects the position policy: vertical, horizontal, or grid.
	Layout string `json:"layout,omitempty"`

	// Relayout forces a fresh layout of a supplied graph. Without it, a
	// graph that already carries canvas positions keeps them, so the
	// transcript honors the stored arrangement. Text input and graphs
	// with no positions are always laid out.
	Relayout bool `json:"relayout,omitempty"`

	// Refresh bypasses cached layouts and transcripts.
	Refresh bool `json:"refresh,omitempty"`
}

// ValidateAndSetDefaults checks the options and fills in defaults.
func (o *Options) ValidateAndSetDefaults() error {
	if o.Text == "" && o.Graph == nil {
		return errors.New(errors.ErrCodeInvalidInput, "either text or graph must be provided")
	}
	if o.Layout == "" {
		o.Layout = DefaultLayout
	}
	if _, err := layout.ParseMode(o.Layout); err != nil {
		return err
	}
	return nil
}

// Stats records per-stage timings and graph size.
type Stats struct {
	ImportTime   time.Duration `json:"import_time"`
	ValidateTime time.Duration `json:"validate_time"`
	LayoutTime   time.Duration `json:"layout_time"`
	SequenceTime time.Duration `json:"sequence_time"`
	NodeCount    int           `json:"node_count"`
	EdgeCount    int           `json:"edge_count"`
}

// CacheInfo reports which stages were served from cache.
type CacheInfo struct {
	LayoutHit   bool `json:"layout_hit"`
	SequenceHit bool `json:"sequence_hit"`
}

// Result is the output of a full pipeline run.
type Result struct {
	// Graph is the validated graph with positions assigned.
	Graph *graph.Graph `json:"graph"`

	// Output holds the compiled sequence, transcript, and canonical graph.
	Output *sequence.Output `json:"output"`

	// GraphHash identifies the canonical graph, computed before layout
	// so it is stable across layout modes.
	GraphHash string `json:"graph_hash"`

	Stats     Stats     `json:"stats"`
	CacheInfo CacheInfo `json:"cache_info"`
}
