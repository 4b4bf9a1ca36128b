// Package graph defines the canonical prompt-graph model shared by the
// importer, validator, layout engine, sequencer, and generation gateway.
//
// A Graph is a small directed acyclic graph of typed prompt nodes. Each node
// carries a role (system, user, or assistant), a display label, the canonical
// numbered-list content, and - in presentation form only - the node's list
// items and canvas position. The canonical export JSON shape
// ({nodes:[{id,role,label,content}], edges:[{from,to}]}) deliberately omits
// items and positions; see json.go.
package graph

import (
	"github.com/promptstack/promptstack/pkg/list"
)

// Role identifies the conversational role of a prompt node. The canonical
// graph restricts roles to system, user, and assistant; palette-only template
// roles (such as "condition") are rejected at the validation boundary.
type Role string

const (
	RoleSystem    Role = "system"
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// ParseRole maps a string onto a canonical role.
// The second return value is false for any non-canonical role.
func ParseRole(s string) (Role, bool) {
	switch Role(s) {
	case RoleSystem, RoleUser, RoleAssistant:
		return Role(s), true
	}
	return "", false
}

// Title returns the capitalized display form of the role ("System").
func (r Role) Title() string {
	switch r {
	case RoleSystem:
		return "System"
	case RoleUser:
		return "User"
	case RoleAssistant:
		return "Assistant"
	}
	return string(r)
}

// Position is a presentation-only canvas coordinate. It participates in
// layout and sequencing order but never appears in the canonical export.
type Position struct {
	X float64 `json:"x" bson:"x"`
	Y float64 `json:"y" bson:"y"`
}

// Node is a prompt step. Content is always the canonical numbered-list
// rendering of Items; use SetItems to keep the two in sync.
type Node struct {
	ID       string      `json:"id" bson:"id"`
	Role     Role        `json:"role" bson:"role"`
	Label    string      `json:"label" bson:"label"`
	Content  string      `json:"content" bson:"content"`
	Items    []list.Item `json:"listItems,omitempty" bson:"list_items,omitempty"`
	Position Position    `json:"position,omitzero" bson:"position,omitempty"`
}

// SetItems replaces the node's list items and regenerates Content from them.
// Every mutation of a node's list must go through here so the content
// invariant (Content == FormatNumbered(Items)) holds.
func (n *Node) SetItems(items []list.Item) {
	n.Items = items
	n.Content = list.FormatNumbered(items)
}

// Edge is a directed connection between two nodes. Self-loops are invalid.
type Edge struct {
	From string `json:"from" bson:"from"`
	To   string `json:"to" bson:"to"`
}

// Graph is a set of nodes and the directed edges between them.
// Node order is significant: importers emit nodes in encounter order and
// several deterministic tie-breaks fall back to input order.
type Graph struct {
	Nodes []Node `json:"nodes" bson:"nodes"`
	Edges []Edge `json:"edges" bson:"edges"`
}

// NodeByID returns a pointer to the node with the given id, or nil.
func (g *Graph) NodeByID(id string) *Node {
	for i := range g.Nodes {
		if g.Nodes[i].ID == id {
			return &g.Nodes[i]
		}
	}
	return nil
}

// InDegrees returns the incoming-edge count per node id.
// Every node appears in the map, including nodes with no incoming edges.
func (g *Graph) InDegrees() map[string]int {
	deg := make(map[string]int, len(g.Nodes))
	for _, n := range g.Nodes {
		deg[n.ID] = 0
	}
	for _, e := range g.Edges {
		if _, ok := deg[e.To]; ok {
			deg[e.To]++
		}
	}
	return deg
}

// Outgoing returns the adjacency list in edge insertion order.
func (g *Graph) Outgoing() map[string][]string {
	adj := make(map[string][]string, len(g.Nodes))
	for _, e := range g.Edges {
		adj[e.From] = append(adj[e.From], e.To)
	}
	return adj
}

// Canonical returns a copy of the graph reduced to the canonical export
// shape: presentation-only fields (list items, canvas positions) stripped,
// node and edge order preserved.
func (g *Graph) Canonical() *Graph {
	out := &Graph{
		Nodes: make([]Node, len(g.Nodes)),
		Edges: make([]Edge, len(g.Edges)),
	}
	copy(out.Edges, g.Edges)
	for i, n := range g.Nodes {
		out.Nodes[i] = Node{ID: n.ID, Role: n.Role, Label: n.Label, Content: n.Content}
	}
	return out
}

// Clone returns a deep copy of the graph.
func (g *Graph) Clone() *Graph {
	out := &Graph{
		Nodes: make([]Node, len(g.Nodes)),
		Edges: make([]Edge, len(g.Edges)),
	}
	copy(out.Edges, g.Edges)
	for i, n := range g.Nodes {
		items := make([]list.Item, len(n.Items))
		copy(items, n.Items)
		n.Items = items
		out.Nodes[i] = n
	}
	return out
}
