package graph

import (
	"strings"

	"github.com/promptstack/promptstack/pkg/errors"
)

// Validate checks a candidate graph against the structural invariants a
// graph must satisfy before it is accepted into the working set. It is pure
// and total: it never panics on malformed input and never mutates g.
//
// Checks run in a fixed priority order and short-circuit at the first
// failure:
//
//  1. At least one node exists.
//  2. Every node has a non-empty id, unique among all nodes.
//  3. Every node's role is system, user, or assistant.
//  4. Every node's content, trimmed, is non-empty.
//  5. Every edge references existing node ids and is not a self-loop.
//  6. With more than one node, every node appears in at least one edge.
//  7. The edge relation is acyclic (Kahn's algorithm).
//
// Shape-level failures (missing arrays, wrongly typed fields) are reported
// earlier, by [Decode] or [Coerce] at the boundary, so schema errors always
// take priority over the structural errors produced here.
//
// A nil return means the graph is valid.
func Validate(g *Graph) error {
	if g == nil || len(g.Nodes) == 0 {
		return errors.New(errors.ErrCodeEmptyGraph, "graph must contain at least one node")
	}

	seen := make(map[string]bool, len(g.Nodes))
	for i, n := range g.Nodes {
		if n.ID == "" {
			return errors.New(errors.ErrCodeInvalidNodeID, "node %d is missing an id", i)
		}
		if seen[n.ID] {
			return errors.New(errors.ErrCodeDuplicateNodeID, "duplicate node id %q", n.ID)
		}
		seen[n.ID] = true
	}

	for _, n := range g.Nodes {
		if _, ok := ParseRole(string(n.Role)); !ok {
			return errors.New(errors.ErrCodeInvalidRole,
				"node %q has invalid role %q (expected system, user, or assistant)", n.ID, n.Role)
		}
	}

	for _, n := range g.Nodes {
		if strings.TrimSpace(n.Content) == "" {
			return errors.New(errors.ErrCodeEmptyContent, "node %q has empty content", n.ID)
		}
	}

	for _, e := range g.Edges {
		if !seen[e.From] {
			return errors.New(errors.ErrCodeInvalidEdge, "edge references unknown node %q", e.From)
		}
		if !seen[e.To] {
			return errors.New(errors.ErrCodeInvalidEdge, "edge references unknown node %q", e.To)
		}
		if e.From == e.To {
			return errors.New(errors.ErrCodeInvalidEdge, "edge %q -> %q is a self-loop", e.From, e.To)
		}
	}

	if len(g.Nodes) > 1 {
		connected := make(map[string]bool, len(g.Nodes))
		for _, e := range g.Edges {
			connected[e.From] = true
			connected[e.To] = true
		}
		for _, n := range g.Nodes {
			if !connected[n.ID] {
				return errors.New(errors.ErrCodeOrphanNode,
					"orphan node %q is not connected to any edge", n.ID)
			}
		}
	}

	if hasCycle(g) {
		return errors.New(errors.ErrCodeGraphCycle, "graph must be directed and acyclic")
	}

	return nil
}

// hasCycle runs Kahn's algorithm: repeatedly remove zero-in-degree nodes
// and report a cycle when fewer than all nodes could be processed. The
// cycle is deliberately not localized.
func hasCycle(g *Graph) bool {
	inDegree := g.InDegrees()
	outgoing := g.Outgoing()

	queue := make([]string, 0, len(g.Nodes))
	for _, n := range g.Nodes {
		if inDegree[n.ID] == 0 {
			queue = append(queue, n.ID)
		}
	}

	processed := 0
	for len(queue) > 0 {
		curr := queue[0]
		queue = queue[1:]
		processed++

		for _, next := range outgoing[curr] {
			inDegree[next]--
			if inDegree[next] == 0 {
				queue = append(queue, next)
			}
		}
	}

	return processed < len(g.Nodes)
}
