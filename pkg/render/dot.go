// Package render draws prompt graphs as Graphviz diagrams.
//
// Nodes are colored by role so a glance shows where system framing ends
// and the conversation begins. The DOT output is deterministic for a
// given graph, which keeps rendered artifacts diffable.
package render

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	"github.com/goccy/go-graphviz"

	"github.com/promptstack/promptstack/pkg/graph"
)

// Options configures diagram rendering.
type Options struct {
	// Detailed includes node content in labels. When false, only the
	// label and role are shown.
	Detailed bool
}

// roleFill maps each role to a fill color.
var roleFill = map[graph.Role]string{
	graph.RoleSystem:    "lightyellow",
	graph.RoleUser:      "lightblue",
	graph.RoleAssistant: "lightgrey",
}

// ToDOT converts a prompt graph to Graphviz DOT format.
// The resulting DOT string can be rendered with [RenderSVG].
func ToDOT(g *graph.Graph, opts Options) string {
	var buf bytes.Buffer
	buf.WriteString("digraph prompt {\n")
	buf.WriteString("  rankdir=TB;\n")
	buf.WriteString("  bgcolor=\"transparent\";\n")
	buf.WriteString("  node [shape=box, style=\"rounded,filled\", fontsize=14, margin=\"0.2,0.1\"];\n")
	buf.WriteString("  ranksep=0.5;\n")
	buf.WriteString("  nodesep=0.3;\n")
	buf.WriteString("\n")

	for _, n := range g.Nodes {
		fmt.Fprintf(&buf, "  %q [label=%q, fillcolor=%s];\n",
			n.ID, fmtLabel(n, opts.Detailed), roleFill[n.Role])
	}

	buf.WriteString("\n")
	for _, e := range g.Edges {
		fmt.Fprintf(&buf, "  %q -> %q;\n", e.From, e.To)
	}

	buf.WriteString("}\n")
	return buf.String()
}

func fmtLabel(n graph.Node, detailed bool) string {
	label := n.Label
	if label == "" {
		label = n.ID
	}
	header := fmt.Sprintf("%s (%s)", label, n.Role)
	if !detailed {
		return header
	}

	content := n.Content
	if content == "" {
		content = "(empty)"
	}
	return header + "\n" + strings.ReplaceAll(content, "\n", "\\l")
}

// RenderSVG renders a DOT graph to SVG using Graphviz.
func RenderSVG(dot string) ([]byte, error) {
	ctx := context.Background()
	gv, err := graphviz.New(ctx)
	if err != nil {
		return nil, fmt.Errorf("init graphviz: %w", err)
	}
	defer gv.Close()

	g, err := graphviz.ParseBytes([]byte(dot))
	if err != nil {
		return nil, fmt.Errorf("parse DOT: %w", err)
	}
	defer g.Close()

	var buf bytes.Buffer
	if err := gv.Render(ctx, g, graphviz.SVG, &buf); err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	return buf.Bytes(), nil
}
