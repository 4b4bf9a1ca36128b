package pipeline

import (
	"context"
	"encoding/json"
	"time"

	"github.com/charmbracelet/log"

	"github.com/promptstack/promptstack/pkg/cache"
	"github.com/promptstack/promptstack/pkg/graph"
	"github.com/promptstack/promptstack/pkg/importer"
	"github.com/promptstack/promptstack/pkg/layout"
	"github.com/promptstack/promptstack/pkg/observability"
	"github.com/promptstack/promptstack/pkg/sequence"
)

// Runner executes the pipeline with caching. It is stateless apart from
// the cache and logger; multiple goroutines can share one Runner.
type Runner struct {
	Cache  cache.Cache
	Keyer  cache.Keyer
	Logger *log.Logger
}

// NewRunner creates a runner. Nil arguments get safe defaults: a null
// cache (caching disabled), the default keyer, and the default logger.
func NewRunner(c cache.Cache, keyer cache.Keyer, logger *log.Logger) *Runner {
	if c == nil {
		c = cache.NewNullCache()
	}
	if keyer == nil {
		keyer = cache.NewDefaultKeyer()
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Runner{Cache: c, Keyer: keyer, Logger: logger}
}

// Execute runs import → validate → layout → sequence.
func (r *Runner) Execute(ctx context.Context, opts Options) (*Result, error) {
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, err
	}

	result := &Result{}

	// Stage 1: import (or adopt the supplied graph).
	importStart := time.Now()
	observability.Pipeline().OnImportStart(ctx, len(opts.Text))
	g := opts.Graph
	if g == nil {
		parsed, err := importer.Parse(opts.Text)
		if err != nil {
			observability.Pipeline().OnImportComplete(ctx, 0, time.Since(importStart), err)
			return nil, err
		}
		g = parsed
	}
	result.Stats.ImportTime = time.Since(importStart)
	observability.Pipeline().OnImportComplete(ctx, len(g.Nodes), result.Stats.ImportTime, nil)
	result.Stats.NodeCount = len(g.Nodes)
	result.Stats.EdgeCount = len(g.Edges)

	// Stage 2: validate. A rejected candidate never advances.
	validateStart := time.Now()
	if err := graph.Validate(g); err != nil {
		return nil, err
	}
	result.Stats.ValidateTime = time.Since(validateStart)

	// Hash the canonical form before layout so the hash is stable
	// across layout modes.
	if data, err := graph.Marshal(g.Canonical()); err == nil {
		result.GraphHash = cache.Hash(data)
	}

	r.Logger.Info("imported graph",
		"nodes", result.Stats.NodeCount,
		"edges", result.Stats.EdgeCount,
		"duration", result.Stats.ImportTime)

	// Stage 3: layout. A supplied graph that already carries positions
	// keeps them unless a relayout was requested; the stored arrangement
	// drives the sequence order.
	layoutStart := time.Now()
	observability.Pipeline().OnLayoutStart(ctx, opts.Layout, len(g.Nodes))
	var positioned *graph.Graph
	var layoutHit bool
	keepPositions := opts.Graph != nil && !opts.Relayout && hasPositions(g)
	if keepPositions {
		positioned = g.Clone()
	} else {
		positioned, layoutHit = r.place(ctx, g, opts, result.GraphHash)
	}
	result.Graph = positioned
	result.Stats.LayoutTime = time.Since(layoutStart)
	result.CacheInfo.LayoutHit = layoutHit
	observability.Pipeline().OnLayoutComplete(ctx, opts.Layout, result.Stats.LayoutTime, nil)

	r.Logger.Info("computed layout",
		"mode", opts.Layout,
		"cached", layoutHit,
		"duration", result.Stats.LayoutTime)

	// Stage 4: sequence. The cache key carries a placement discriminator
	// because the transcript order depends on positions: a layout mode
	// for freshly placed graphs, a position hash for kept arrangements.
	placement := opts.Layout
	if keepPositions {
		placement = positionFingerprint(positioned)
	}
	sequenceStart := time.Now()
	observability.Pipeline().OnCompileStart(ctx, len(positioned.Nodes))
	output, sequenceHit := r.compile(ctx, positioned, opts, result.GraphHash, placement)
	result.Output = output
	result.Stats.SequenceTime = time.Since(sequenceStart)
	result.CacheInfo.SequenceHit = sequenceHit
	observability.Pipeline().OnCompileComplete(ctx, len(output.Sequence), result.Stats.SequenceTime, nil)

	r.Logger.Info("compiled sequence",
		"steps", len(output.Sequence),
		"cached", sequenceHit,
		"duration", result.Stats.SequenceTime)

	return result, nil
}

// place assigns positions, serving from cache when the same canonical
// graph was laid out with the same mode before.
func (r *Runner) place(ctx context.Context, g *graph.Graph, opts Options, graphHash string) (*graph.Graph, bool) {
	mode, _ := layout.ParseMode(opts.Layout)
	key := r.Keyer.LayoutKey(graphHash, cache.LayoutKeyOpts{Mode: opts.Layout})

	positioned := g.Clone()
	if !opts.Refresh && graphHash != "" {
		if data, hit, _ := r.Cache.Get(ctx, key); hit {
			var positions map[string]graph.Position
			if err := json.Unmarshal(data, &positions); err == nil {
				for i := range positioned.Nodes {
					if p, ok := positions[positioned.Nodes[i].ID]; ok {
						positioned.Nodes[i].Position = p
					}
				}
				observability.Cache().OnCacheHit(ctx, "layout")
				return positioned, true
			}
		}
		observability.Cache().OnCacheMiss(ctx, "layout")
	}

	layout.Place(positioned, mode)

	if graphHash != "" {
		positions := make(map[string]graph.Position, len(positioned.Nodes))
		for _, n := range positioned.Nodes {
			positions[n.ID] = n.Position
		}
		if data, err := json.Marshal(positions); err == nil {
			_ = r.Cache.Set(ctx, key, data, 0)
			observability.Cache().OnCacheSet(ctx, "layout", len(data))
		}
	}
	return positioned, false
}

// compile builds the transcript, serving from cache when possible. The
// sequence depends on positions, so the cache key combines the graph
// hash with the placement discriminator.
func (r *Runner) compile(ctx context.Context, g *graph.Graph, opts Options, graphHash, placement string) (*sequence.Output, bool) {
	key := r.Keyer.SequenceKey(graphHash + ":" + placement)

	if !opts.Refresh && graphHash != "" {
		if data, hit, _ := r.Cache.Get(ctx, key); hit {
			var out sequence.Output
			if err := json.Unmarshal(data, &out); err == nil {
				observability.Cache().OnCacheHit(ctx, "sequence")
				return &out, true
			}
		}
		observability.Cache().OnCacheMiss(ctx, "sequence")
	}

	out := sequence.Build(g)
	if graphHash != "" {
		if data, err := json.Marshal(out); err == nil {
			_ = r.Cache.Set(ctx, key, data, 0)
			observability.Cache().OnCacheSet(ctx, "sequence", len(data))
		}
	}
	return &out, false
}

// hasPositions reports whether any node carries a canvas position. A graph
// parked entirely at the origin has never been laid out.
func hasPositions(g *graph.Graph) bool {
	for _, n := range g.Nodes {
		if n.Position.X != 0 || n.Position.Y != 0 {
			return true
		}
	}
	return false
}

// positionFingerprint hashes the node positions so two arrangements of the
// same canonical graph never share a sequence cache entry. Map keys are
// sorted by the encoder, so the fingerprint is deterministic.
func positionFingerprint(g *graph.Graph) string {
	positions := make(map[string]graph.Position, len(g.Nodes))
	for _, n := range g.Nodes {
		positions[n.ID] = n.Position
	}
	data, err := json.Marshal(positions)
	if err != nil {
		return "pos"
	}
	return "pos:" + cache.Hash(data)
}
