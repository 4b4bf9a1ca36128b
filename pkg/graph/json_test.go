package graph

import (
	"bytes"
	"strings"
	"testing"

	"github.com/promptstack/promptstack/pkg/errors"
	"github.com/promptstack/promptstack/pkg/list"
)

func TestMarshalCanonicalShape(t *testing.T) {
	g := &Graph{
		Nodes: []Node{
			{
				ID: "a", Role: RoleSystem, Label: "System", Content: "1 be nice",
				Items:    []list.Item{{ID: "i1", Text: "be nice", Level: 1}},
				Position: Position{X: 100, Y: 100},
			},
		},
		Edges: []Edge{},
	}

	data, err := Marshal(g)
	if err != nil {
		t.Fatalf("Marshal() error = %v", err)
	}

	out := string(data)
	if strings.Contains(out, "position") || strings.Contains(out, "listItems") {
		t.Errorf("canonical export leaked presentation fields:\n%s", out)
	}
	for _, want := range []string{`"id": "a"`, `"role": "system"`, `"label": "System"`, `"content": "1 be nice"`} {
		if !strings.Contains(out, want) {
			t.Errorf("canonical export missing %s:\n%s", want, out)
		}
	}
}

func TestDecodeRoundTrip(t *testing.T) {
	g := &Graph{
		Nodes: []Node{node("a", RoleSystem), node("b", RoleUser)},
		Edges: []Edge{{From: "a", To: "b"}},
	}

	var buf bytes.Buffer
	if err := Write(g, &buf); err != nil {
		t.Fatalf("Write() error = %v", err)
	}

	got, err := Read(&buf)
	if err != nil {
		t.Fatalf("Read() error = %v", err)
	}
	if len(got.Nodes) != 2 || len(got.Edges) != 1 {
		t.Fatalf("round trip = %d nodes / %d edges, want 2/1", len(got.Nodes), len(got.Edges))
	}
	if got.Nodes[0].ID != "a" || got.Edges[0].To != "b" {
		t.Errorf("round trip lost data: %+v", got)
	}
}

func TestDecodeShapeErrors(t *testing.T) {
	tests := []struct {
		name string
		in   string
	}{
		{"NotJSON", "not json at all"},
		{"MissingNodes", `{"edges":[]}`},
		{"MissingEdges", `{"nodes":[]}`},
		{"NodesNotArray", `{"nodes":{},"edges":[]}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Decode([]byte(tt.in))
			if err == nil {
				t.Fatal("Decode() = nil error, want schema error")
			}
			if code := errors.GetCode(err); code != errors.ErrCodeInvalidSchema {
				t.Errorf("code = %s, want %s", code, errors.ErrCodeInvalidSchema)
			}
		})
	}
}

func TestCoerce(t *testing.T) {
	tests := []struct {
		name   string
		in     string
		wantOK bool
		check  func(t *testing.T, g *Graph)
	}{
		{
			name:   "Canonical",
			in:     `{"nodes":[{"id":"a","role":"user","label":"A","content":"x"}],"edges":[]}`,
			wantOK: true,
			check: func(t *testing.T, g *Graph) {
				if g.Nodes[0].Role != RoleUser {
					t.Errorf("role = %q", g.Nodes[0].Role)
				}
			},
		},
		{
			name:   "LooseTypesCoerced",
			in:     `{"nodes":[{"id":42,"role":"user","content":"x"}],"edges":[]}`,
			wantOK: true,
			check: func(t *testing.T, g *Graph) {
				if g.Nodes[0].ID != "42" {
					t.Errorf("id = %q, want 42", g.Nodes[0].ID)
				}
			},
		},
		{
			name:   "SourceTargetEdgeAliases",
			in:     `{"nodes":[{"id":"a"},{"id":"b"}],"edges":[{"source":"a","target":"b"}]}`,
			wantOK: true,
			check: func(t *testing.T, g *Graph) {
				if g.Edges[0].From != "a" || g.Edges[0].To != "b" {
					t.Errorf("edge = %+v", g.Edges[0])
				}
			},
		},
		{
			name:   "PositionPreserved",
			in:     `{"nodes":[{"id":"a","position":{"x":10,"y":20}}],"edges":[]}`,
			wantOK: true,
			check: func(t *testing.T, g *Graph) {
				if g.Nodes[0].Position.X != 10 || g.Nodes[0].Position.Y != 20 {
					t.Errorf("position = %+v", g.Nodes[0].Position)
				}
			},
		},
		{
			name:   "NonObjectElementsBecomeZeroValues",
			in:     `{"nodes":["a","b"],"edges":[42]}`,
			wantOK: true,
			check: func(t *testing.T, g *Graph) {
				if len(g.Nodes) != 2 || len(g.Edges) != 1 {
					t.Fatalf("got %d nodes, %d edges", len(g.Nodes), len(g.Edges))
				}
				if g.Nodes[0].ID != "" || g.Nodes[0].Role != "" || g.Nodes[0].Content != "" {
					t.Errorf("node = %+v, want zero value", g.Nodes[0])
				}
				if g.Edges[0] != (Edge{}) {
					t.Errorf("edge = %+v, want zero value", g.Edges[0])
				}
				if err := Validate(g); err == nil {
					t.Error("coerced garbage should be rejected by the validator")
				}
			},
		},
		{name: "NodesNotArray", in: `{"nodes":"nope","edges":[]}`},
		{name: "NotAnObject", in: `[1,2,3]`},
		{name: "MissingEdges", in: `{"nodes":[]}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g, ok := Coerce([]byte(tt.in))
			if ok != tt.wantOK {
				t.Fatalf("Coerce() ok = %v, want %v", ok, tt.wantOK)
			}
			if tt.check != nil {
				tt.check(t, g)
			}
		})
	}
}

func TestSetItemsKeepsContentInSync(t *testing.T) {
	var n Node
	n.SetItems([]list.Item{
		{ID: "1", Text: "alpha", Level: 1},
		{ID: "2", Text: "beta", Level: 2},
	})
	if n.Content != "1 alpha\n1.1 beta" {
		t.Errorf("Content = %q", n.Content)
	}

	n.SetItems(nil)
	if n.Content != "" {
		t.Errorf("Content after clearing = %q, want empty", n.Content)
	}
}
