// Package store persists the working graph between editing sessions.
//
// The working state is the presentation form of the graph: nodes with
// positions and list items, edges, and the currently selected node. The
// [Store] interface abstracts the backend:
//   - file: JSON file under the user config directory, for CLI usage
//   - memory: for tests and ephemeral servers
//   - redis: shared state for multi-instance deployments
//   - mongo: durable storage
//
// Load never fails on a malformed payload; it falls back to the default
// starter graph so the editor always has something to show.
package store

import (
	"context"
	"encoding/json"

	"github.com/promptstack/promptstack/pkg/graph"
	"github.com/promptstack/promptstack/pkg/list"
)

// State is the persisted working graph.
type State struct {
	Nodes          []graph.Node `json:"nodes" bson:"nodes"`
	Edges          []graph.Edge `json:"edges" bson:"edges"`
	SelectedNodeID string       `json:"selectedNodeId,omitempty" bson:"selectedNodeId,omitempty"`
}

// Graph returns the state's nodes and edges as a graph value.
func (s *State) Graph() *graph.Graph {
	return &graph.Graph{Nodes: s.Nodes, Edges: s.Edges}
}

// Store is the interface for working-state backends.
type Store interface {
	// Load retrieves the current state. Backends return the default
	// starter state when nothing has been saved yet or the stored
	// payload is not a usable graph.
	Load(ctx context.Context) (*State, error)

	// Save persists the state, replacing whatever was stored before.
	Save(ctx context.Context, state *State) error

	// Reset discards the stored state so the next Load returns the
	// default starter state.
	Reset(ctx context.Context) error

	// Close releases backend resources.
	Close() error
}

// DefaultState returns the starter graph shown to first-time users:
// a system node chained to a user node.
func DefaultState() *State {
	return &State{
		Nodes: []graph.Node{
			{
				ID:       "node-1",
				Role:     graph.RoleSystem,
				Label:    "System",
				Content:  "You are a helpful assistant.",
				Items:    []list.Item{list.NewItem("You are a helpful assistant.", 1)},
				Position: graph.Position{X: 100, Y: 100},
			},
			{
				ID:       "node-2",
				Role:     graph.RoleUser,
				Label:    "User",
				Content:  "1 Say hello.",
				Items:    []list.Item{list.NewItem("Say hello.", 1)},
				Position: graph.Position{X: 100, Y: 320},
			},
		},
		Edges: []graph.Edge{{From: "node-1", To: "node-2"}},
	}
}

// decodeState parses a stored payload, falling back to the default state
// when the payload is not a graph-shaped document.
func decodeState(data []byte) *State {
	var s State
	if err := json.Unmarshal(data, &s); err != nil || s.Nodes == nil || s.Edges == nil {
		return DefaultState()
	}
	return &s
}

// encodeState serializes a state for storage.
func encodeState(s *State) ([]byte, error) {
	return json.MarshalIndent(s, "", "  ")
}
