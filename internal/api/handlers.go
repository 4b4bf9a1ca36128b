package api

import (
	"net/http"

	"github.com/promptstack/promptstack/pkg/errors"
	"github.com/promptstack/promptstack/pkg/graph"
	"github.com/promptstack/promptstack/pkg/layout"
	"github.com/promptstack/promptstack/pkg/pipeline"
	"github.com/promptstack/promptstack/pkg/store"
)

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// importRequest carries free-form text plus optional layout mode.
type importRequest struct {
	Text    string `json:"text"`
	Layout  string `json:"layout,omitempty"`
	Refresh bool   `json:"refresh,omitempty"`
}

// handleImport parses text into a graph, validates it, lays it out, and
// compiles it in one pass.
func (s *Server) handleImport(w http.ResponseWriter, r *http.Request) {
	var req importRequest
	if err := decodeJSON(r, &req); err != nil {
		s.writeError(w, err)
		return
	}

	res, err := s.runner.Execute(r.Context(), pipeline.Options{
		Text:    req.Text,
		Layout:  req.Layout,
		Refresh: req.Refresh,
	})
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

// graphRequest carries a raw graph payload.
type graphRequest struct {
	Graph graphPayload `json:"graph"`
}

// graphPayload defers graph parsing so loose payloads can be coerced.
type graphPayload []byte

func (p *graphPayload) UnmarshalJSON(data []byte) error {
	*p = append((*p)[:0], data...)
	return nil
}

func (p graphPayload) graph() (*graph.Graph, error) {
	if len(p) == 0 {
		return nil, errors.New(errors.ErrCodeInvalidSchema, "request is missing a graph")
	}
	g, ok := graph.Coerce(p)
	if !ok {
		return nil, errors.New(errors.ErrCodeInvalidSchema, "graph must have nodes and edges arrays")
	}
	return g, nil
}

// handleValidate runs the validator and returns 204 on success.
func (s *Server) handleValidate(w http.ResponseWriter, r *http.Request) {
	var req graphRequest
	if err := decodeJSON(r, &req); err != nil {
		s.writeError(w, err)
		return
	}
	g, err := req.Graph.graph()
	if err != nil {
		s.writeError(w, err)
		return
	}
	if err := graph.Validate(g); err != nil {
		s.writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// layoutRequest positions an existing graph.
type layoutRequest struct {
	Graph graphPayload `json:"graph"`
	Mode  string       `json:"mode,omitempty"`

	// Rearrange preserves the canvas ordering of already-positioned
	// nodes instead of input order.
	Rearrange bool `json:"rearrange,omitempty"`

	// Relayout discards stored positions when compiling; by default a
	// positioned graph keeps its arrangement.
	Relayout bool `json:"relayout,omitempty"`
}

func (s *Server) handleLayout(w http.ResponseWriter, r *http.Request) {
	var req layoutRequest
	if err := decodeJSON(r, &req); err != nil {
		s.writeError(w, err)
		return
	}
	g, err := req.Graph.graph()
	if err != nil {
		s.writeError(w, err)
		return
	}

	if req.Mode == "" {
		req.Mode = pipeline.DefaultLayout
	}
	mode, err := layout.ParseMode(req.Mode)
	if err != nil {
		s.writeError(w, err)
		return
	}

	if req.Rearrange {
		layout.Rearrange(g, mode)
	} else {
		layout.Place(g, mode)
	}
	writeJSON(w, http.StatusOK, map[string]any{"graph": g})
}

// handleCompile validates, lays out, and sequences a supplied graph. When
// the body is empty, the persisted working state is compiled instead.
func (s *Server) handleCompile(w http.ResponseWriter, r *http.Request) {
	opts := pipeline.Options{}

	if r.ContentLength != 0 {
		var req layoutRequest
		if err := decodeJSON(r, &req); err != nil {
			s.writeError(w, err)
			return
		}
		g, err := req.Graph.graph()
		if err != nil {
			s.writeError(w, err)
			return
		}
		opts.Graph = g
		opts.Layout = req.Mode
		opts.Relayout = req.Relayout
	} else {
		state, err := s.store.Load(r.Context())
		if err != nil {
			s.writeError(w, err)
			return
		}
		opts.Graph = state.Graph()
	}

	res, err := s.runner.Execute(r.Context(), opts)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

// generateRequest asks the model for a graph.
type generateRequest struct {
	Request string `json:"request"`
	Layout  string `json:"layout,omitempty"`
}

// handleGenerate calls the generation collaborator and runs the result
// through the full pipeline. Invalid model output never reaches the
// client as a graph.
func (s *Server) handleGenerate(w http.ResponseWriter, r *http.Request) {
	if s.gen == nil {
		s.writeError(w, errors.New(errors.ErrCodeUnsupported, "generation is not configured"))
		return
	}

	var req generateRequest
	if err := decodeJSON(r, &req); err != nil {
		s.writeError(w, err)
		return
	}
	if req.Request == "" {
		s.writeError(w, errors.New(errors.ErrCodeEmptyInput, "Prompt text is empty."))
		return
	}

	g, err := s.gen.Generate(r.Context(), req.Request)
	if err != nil {
		s.writeError(w, err)
		return
	}

	res, err := s.runner.Execute(r.Context(), pipeline.Options{Graph: g, Layout: req.Layout, Relayout: true})
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (s *Server) handleStateGet(w http.ResponseWriter, r *http.Request) {
	state, err := s.store.Load(r.Context())
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, state)
}

func (s *Server) handleStatePut(w http.ResponseWriter, r *http.Request) {
	var state store.State
	if err := decodeJSON(r, &state); err != nil {
		s.writeError(w, err)
		return
	}
	if err := s.store.Save(r.Context(), &state); err != nil {
		s.writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleStateDelete(w http.ResponseWriter, r *http.Request) {
	if err := s.store.Reset(r.Context()); err != nil {
		s.writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
