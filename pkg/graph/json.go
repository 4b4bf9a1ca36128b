package graph

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/promptstack/promptstack/pkg/errors"
)

// exportNode is the canonical wire form of a node. List items and canvas
// positions are presentation state and never cross the export boundary.
type exportNode struct {
	ID      string `json:"id"`
	Role    Role   `json:"role"`
	Label   string `json:"label"`
	Content string `json:"content"`
}

type exportGraph struct {
	Nodes []exportNode `json:"nodes"`
	Edges []Edge       `json:"edges"`
}

// Marshal serializes the graph into canonical export JSON.
// Nodes and edges keep their input order for deterministic output.
func Marshal(g *Graph) ([]byte, error) {
	var buf bytes.Buffer
	if err := Write(g, &buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Write encodes the graph as canonical export JSON to w.
func Write(g *Graph, w io.Writer) error {
	out := exportGraph{
		Nodes: make([]exportNode, len(g.Nodes)),
		Edges: make([]Edge, len(g.Edges)),
	}
	for i, n := range g.Nodes {
		out.Nodes[i] = exportNode{ID: n.ID, Role: n.Role, Label: n.Label, Content: n.Content}
	}
	copy(out.Edges, g.Edges)

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(out); err != nil {
		return fmt.Errorf("encode: %w", err)
	}
	return nil
}

// WriteFile writes the canonical export JSON to a file.
func WriteFile(g *Graph, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer f.Close()
	return Write(g, f)
}

// Decode parses canonical export JSON into a typed graph.
//
// Decode enforces shape only: the root must be an object carrying "nodes"
// and "edges" arrays with correctly typed fields. Structural invariants
// (unique ids, valid roles, acyclicity, ...) are checked separately by
// [Validate], so schema failures are always reported before structural ones.
func Decode(data []byte) (*Graph, error) {
	var raw struct {
		Nodes *[]Node `json:"nodes"`
		Edges *[]Edge `json:"edges"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidSchema, err, "graph is not valid JSON")
	}
	if raw.Nodes == nil || raw.Edges == nil {
		return nil, errors.New(errors.ErrCodeInvalidSchema, "graph must have nodes and edges arrays")
	}
	return &Graph{Nodes: *raw.Nodes, Edges: *raw.Edges}, nil
}

// Read decodes canonical export JSON from r.
func Read(r io.Reader) (*Graph, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read: %w", err)
	}
	return Decode(data)
}

// ReadFile reads a canonical export JSON file.
func ReadFile(path string) (*Graph, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()
	return Read(f)
}

// Coerce attempts to interpret arbitrary JSON as a graph, tolerating loosely
// typed fields. It reports false unless the value is an object with
// array-typed "nodes" and "edges" fields; beyond that shape requirement
// every element is coerced rather than rejected (numbers become strings,
// missing fields become zero values, non-object elements become zero-valued
// nodes/edges). Validation of the coerced graph is the caller's concern:
// a payload of array-typed garbage still coerces, so the validator can
// report the schema problem instead of a fallback parser swallowing it.
//
// Coerce is the boundary normalizer for untrusted graph payloads: free-text
// import (dialect 1) and generation-collaborator responses both pass
// through it before the validator gate.
func Coerce(data []byte) (*Graph, bool) {
	var root map[string]json.RawMessage
	if err := json.Unmarshal(data, &root); err != nil {
		return nil, false
	}

	var rawNodes, rawEdges []any
	nodesRaw, ok := root["nodes"]
	if !ok || json.Unmarshal(nodesRaw, &rawNodes) != nil {
		return nil, false
	}
	edgesRaw, ok := root["edges"]
	if !ok || json.Unmarshal(edgesRaw, &rawEdges) != nil {
		return nil, false
	}

	g := &Graph{
		Nodes: make([]Node, 0, len(rawNodes)),
		Edges: make([]Edge, 0, len(rawEdges)),
	}
	for _, entry := range rawNodes {
		rn, _ := entry.(map[string]any)
		n := Node{
			ID:      coerceString(rn["id"]),
			Role:    Role(coerceString(rn["role"])),
			Label:   coerceString(rn["label"]),
			Content: coerceString(rn["content"]),
		}
		if pos, ok := rn["position"].(map[string]any); ok {
			n.Position = Position{X: coerceFloat(pos["x"]), Y: coerceFloat(pos["y"])}
		}
		g.Nodes = append(g.Nodes, n)
	}
	for _, entry := range rawEdges {
		re, _ := entry.(map[string]any)
		from := re["from"]
		if from == nil {
			from = re["source"]
		}
		to := re["to"]
		if to == nil {
			to = re["target"]
		}
		g.Edges = append(g.Edges, Edge{From: coerceString(from), To: coerceString(to)})
	}
	return g, true
}

func coerceString(v any) string {
	switch s := v.(type) {
	case string:
		return s
	case float64:
		return strconv.FormatFloat(s, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(s)
	case nil:
		return ""
	}
	return ""
}

func coerceFloat(v any) float64 {
	switch f := v.(type) {
	case float64:
		return f
	case string:
		out, _ := strconv.ParseFloat(f, 64)
		return out
	}
	return 0
}
