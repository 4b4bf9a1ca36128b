// Package sequence linearizes a prompt graph into the numbered transcript
// and canonical JSON the editor recomputes after every edit.
//
// The walk is a deterministic depth-first traversal: it starts from all
// zero-in-degree nodes ordered by canvas position, visits outgoing
// neighbors ordered by their canvas position (not edge insertion order),
// and finally sweeps any still-unvisited nodes in input order. The sweep
// makes the sequencer a total function: it produces full coverage even for
// disconnected or cyclic node sets that never passed the validator, which
// happens routinely for live editor state.
package sequence

import (
	"fmt"
	"sort"
	"strings"

	"github.com/promptstack/promptstack/pkg/graph"
)

// Step is one entry of the linearized prompt, 1-based.
type Step struct {
	Step    int        `json:"step"`
	ID      string     `json:"id"`
	Role    graph.Role `json:"role"`
	Label   string     `json:"label"`
	Content string     `json:"content"`
}

// Output bundles the three derived artifacts of a compile pass.
type Output struct {
	Sequence         []Step       `json:"sequence"`
	StructuredPrompt string       `json:"structuredPrompt"`
	Graph            *graph.Graph `json:"graph"`
}

// Build linearizes the graph. It accepts arbitrary node/edge sets and
// guarantees every node appears in the sequence exactly once.
func Build(g *graph.Graph) Output {
	if g == nil || len(g.Nodes) == 0 {
		return Output{
			Sequence:         []Step{},
			StructuredPrompt: "",
			Graph:            &graph.Graph{Nodes: []graph.Node{}, Edges: []graph.Edge{}},
		}
	}

	index := make(map[string]int, len(g.Nodes))
	for i, n := range g.Nodes {
		index[n.ID] = i
	}

	inDegree := g.InDegrees()
	outgoing := g.Outgoing()

	starts := make([]string, 0, len(g.Nodes))
	for _, n := range g.Nodes {
		if inDegree[n.ID] == 0 {
			starts = append(starts, n.ID)
		}
	}
	sortByPosition(g, index, starts)

	visited := make(map[string]bool, len(g.Nodes))
	order := make([]int, 0, len(g.Nodes))

	var visit func(id string)
	visit = func(id string) {
		if visited[id] {
			return
		}
		visited[id] = true
		order = append(order, index[id])

		next := make([]string, len(outgoing[id]))
		copy(next, outgoing[id])
		sortByPosition(g, index, next)
		for _, n := range next {
			if _, ok := index[n]; ok {
				visit(n)
			}
		}
	}

	for _, id := range starts {
		visit(id)
	}
	// Residual sweep for nodes unreachable from the start set.
	for _, n := range g.Nodes {
		visit(n.ID)
	}

	steps := make([]Step, len(order))
	rendered := make([]string, len(order))
	for i, idx := range order {
		n := g.Nodes[idx]
		steps[i] = Step{Step: i + 1, ID: n.ID, Role: n.Role, Label: n.Label, Content: n.Content}

		content := n.Content
		if content == "" {
			content = "(empty)"
		}
		rendered[i] = fmt.Sprintf("[%d] %s\n%s", i+1, strings.ToUpper(string(n.Role)), content)
	}

	return Output{
		Sequence:         steps,
		StructuredPrompt: strings.Join(rendered, "\n\n"),
		Graph:            g.Canonical(),
	}
}

// Markdown wraps the transcript as a standalone document.
func Markdown(out Output) string {
	return "# Generated Prompt\n\n" + out.StructuredPrompt + "\n"
}

// sortByPosition orders node ids by canvas position (y, then x), with input
// order as the final tie-break so the result is deterministic for
// overlapping nodes.
func sortByPosition(g *graph.Graph, index map[string]int, ids []string) {
	sort.SliceStable(ids, func(a, b int) bool {
		na, okA := index[ids[a]]
		nb, okB := index[ids[b]]
		if !okA || !okB {
			return okA
		}
		pa, pb := g.Nodes[na].Position, g.Nodes[nb].Position
		if pa.Y != pb.Y {
			return pa.Y < pb.Y
		}
		if pa.X != pb.X {
			return pa.X < pb.X
		}
		return na < nb
	})
}
