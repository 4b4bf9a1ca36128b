// Package importer parses free text into a candidate prompt graph.
//
// Four input dialects are recognized and tried in order, falling back
// progressively until one of them claims the text:
//
//  1. A JSON graph, either verbatim, inside a ```json fence, or embedded
//     somewhere in surrounding prose.
//  2. Parent/child bracket blocks: "[1] SYSTEM" headers followed by
//     "1.1 <text>" child lines.
//  3. A numbered outline with plain section headings.
//  4. Role-prefixed blocks or "role: text" lines.
//
// Any non-empty input yields some graph - the last resort is a single
// user-role node carrying the whole text. Empty input is the only error.
// Each dialect parser is pure and total; none of them validates the result,
// which stays the job of the validator at the draw boundary.
package importer

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/promptstack/promptstack/pkg/errors"
	"github.com/promptstack/promptstack/pkg/graph"
)

// Parse converts free text into a candidate graph via the dialect cascade.
// The only rejection is blank input; its message is stable and user-facing.
func Parse(text string) (*graph.Graph, error) {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return nil, errors.New(errors.ErrCodeEmptyInput, "Prompt text is empty.")
	}

	parsers := []func(string) (*graph.Graph, bool){
		parseJSONGraph,
		parseBracketBlocks,
		parseNumberedOutline,
		parseRoleBlocks,
		parseRoleLines,
	}
	for _, p := range parsers {
		if g, ok := p(trimmed); ok {
			return g, nil
		}
	}
	return rawFallback(trimmed), nil
}

// importID returns the stable id for the i-th imported node (1-based).
func importID(i int) string {
	return fmt.Sprintf("import-%d", i)
}

// chainEdges synthesizes the default sequential edge set node[i] -> node[i+1]
// for dialects that only infer node order, not explicit connectivity.
func chainEdges(g *graph.Graph) {
	for i := 0; i+1 < len(g.Nodes); i++ {
		g.Edges = append(g.Edges, graph.Edge{From: g.Nodes[i].ID, To: g.Nodes[i+1].ID})
	}
}

// parseJSONGraph accepts the text when it contains a JSON value with
// array-typed nodes and edges fields. The graph is taken as-is; structural
// validation happens later at the draw step.
func parseJSONGraph(text string) (*graph.Graph, bool) {
	data, ok := ExtractJSON(text)
	if !ok {
		return nil, false
	}
	return graph.Coerce(data)
}

var (
	bracketHeader = regexp.MustCompile(`(?i)^\[(\d+)\]\s+(system|user|assistant)\s*$`)
	bracketChild  = regexp.MustCompile(`^(\d+)\.(\d+)\s+(.*)$`)
)

// bracketParent accumulates one "[n] ROLE" scope during the line scan.
type bracketParent struct {
	key      string
	role     graph.Role
	children []string
}

// parseBracketBlocks handles the "[1] SYSTEM" / "1.1 text" dialect.
// It activates only when at least one bracket header line is present.
func parseBracketBlocks(text string) (*graph.Graph, bool) {
	var parents []*bracketParent
	var current *bracketParent

	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}

		if m := bracketHeader.FindStringSubmatch(line); m != nil {
			role, _ := graph.ParseRole(strings.ToLower(m[2]))
			current = &bracketParent{key: m[1], role: role}
			parents = append(parents, current)
			continue
		}
		if current == nil {
			continue
		}

		if m := bracketChild.FindStringSubmatch(line); m != nil && m[1] == current.key {
			current.children = append(current.children, m[3])
			continue
		}
		// Continuation of the previous child.
		if len(current.children) == 0 {
			current.children = append(current.children, line)
		} else {
			last := len(current.children) - 1
			current.children[last] += " " + line
		}
	}

	if len(parents) == 0 {
		return nil, false
	}

	g := &graph.Graph{}
	for i, p := range parents {
		content := "No content"
		if len(p.children) > 0 {
			lines := make([]string, len(p.children))
			for j, c := range p.children {
				lines[j] = fmt.Sprintf("%d. %s", j+1, c)
			}
			content = strings.Join(lines, "\n")
		}
		g.Nodes = append(g.Nodes, graph.Node{
			ID:      importID(i + 1),
			Role:    p.role,
			Label:   p.role.Title(),
			Content: content,
		})
	}
	chainEdges(g)
	return g, true
}

var outlineLine = regexp.MustCompile(`^(\d+(?:\.\d+)*)[.)]?\s+(.*)$`)

// parseNumberedOutline handles freeform numbered outlines. Non-numbered
// lines set the current section heading (replacing, not accumulating); each
// numbered line becomes a user-role node. Activates only when at least one
// numbered line is present.
func parseNumberedOutline(text string) (*graph.Graph, bool) {
	g := &graph.Graph{}
	section := ""

	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}

		m := outlineLine.FindStringSubmatch(line)
		if m == nil {
			section = line
			continue
		}

		num, body := m[1], m[2]
		label := fmt.Sprintf("Step %s", num)
		content := body
		if section != "" {
			label = fmt.Sprintf("%s (%s)", section, num)
			content = section + ": " + body
		}
		g.Nodes = append(g.Nodes, graph.Node{
			ID:      importID(len(g.Nodes) + 1),
			Role:    graph.RoleUser,
			Label:   label,
			Content: content,
		})
	}

	if len(g.Nodes) == 0 {
		return nil, false
	}
	chainEdges(g)
	return g, true
}

var roleBlockHeader = regexp.MustCompile(`(?im)^\[(\d+)\]\s+(system|user|assistant)\s*$`)

// parseRoleBlocks handles repeated "[n] ROLE" headers with free bodies
// running until the next header or end of input.
func parseRoleBlocks(text string) (*graph.Graph, bool) {
	locs := roleBlockHeader.FindAllStringSubmatchIndex(text, -1)
	if len(locs) == 0 {
		return nil, false
	}

	g := &graph.Graph{}
	for i, loc := range locs {
		role, _ := graph.ParseRole(strings.ToLower(text[loc[4]:loc[5]]))

		end := len(text)
		if i+1 < len(locs) {
			end = locs[i+1][0]
		}
		body := strings.TrimSpace(text[loc[1]:end])
		if body == "" {
			body = "No content"
		}

		g.Nodes = append(g.Nodes, graph.Node{
			ID:      importID(i + 1),
			Role:    role,
			Label:   role.Title(),
			Content: body,
		})
	}
	chainEdges(g)
	return g, true
}

var roleLine = regexp.MustCompile(`(?i)^(system|user|assistant)\s*:\s*(.*)$`)

// parseRoleLines handles "role: text" lines, one node per line.
func parseRoleLines(text string) (*graph.Graph, bool) {
	g := &graph.Graph{}
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		m := roleLine.FindStringSubmatch(line)
		if m == nil {
			continue
		}
		role, _ := graph.ParseRole(strings.ToLower(m[1]))
		g.Nodes = append(g.Nodes, graph.Node{
			ID:      importID(len(g.Nodes) + 1),
			Role:    role,
			Label:   role.Title(),
			Content: m[2],
		})
	}
	if len(g.Nodes) == 0 {
		return nil, false
	}
	chainEdges(g)
	return g, true
}

// rawFallback wraps the entire input in a single user-role node.
func rawFallback(text string) *graph.Graph {
	return &graph.Graph{
		Nodes: []graph.Node{{
			ID:      importID(1),
			Role:    graph.RoleUser,
			Label:   graph.RoleUser.Title(),
			Content: text,
		}},
	}
}
