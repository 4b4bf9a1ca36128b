package layout

import (
	"reflect"
	"testing"

	"github.com/promptstack/promptstack/pkg/graph"
)

func node(id string, x, y float64) graph.Node {
	return graph.Node{
		ID: id, Role: graph.RoleUser, Label: "User", Content: "x",
		Position: graph.Position{X: x, Y: y},
	}
}

func diamond() *graph.Graph {
	return &graph.Graph{
		Nodes: []graph.Node{node("a", 0, 0), node("b", 0, 0), node("c", 0, 0), node("d", 0, 0)},
		Edges: []graph.Edge{
			{From: "a", To: "b"}, {From: "a", To: "c"},
			{From: "b", To: "d"}, {From: "c", To: "d"},
		},
	}
}

func TestLevels(t *testing.T) {
	tests := []struct {
		name  string
		graph *graph.Graph
		want  map[string]int
	}{
		{
			name: "Chain",
			graph: &graph.Graph{
				Nodes: []graph.Node{node("a", 0, 0), node("b", 0, 0), node("c", 0, 0)},
				Edges: []graph.Edge{{From: "a", To: "b"}, {From: "b", To: "c"}},
			},
			want: map[string]int{"a": 0, "b": 1, "c": 2},
		},
		{
			name:  "Diamond",
			graph: diamond(),
			want:  map[string]int{"a": 0, "b": 1, "c": 1, "d": 2},
		},
		{
			name: "LongestPathWins",
			graph: &graph.Graph{
				Nodes: []graph.Node{node("a", 0, 0), node("b", 0, 0), node("c", 0, 0)},
				Edges: []graph.Edge{{From: "a", To: "c"}, {From: "a", To: "b"}, {From: "b", To: "c"}},
			},
			want: map[string]int{"a": 0, "b": 1, "c": 2},
		},
		{
			name: "TwoRoots",
			graph: &graph.Graph{
				Nodes: []graph.Node{node("r1", 0, 0), node("r2", 0, 0), node("x", 0, 0)},
				Edges: []graph.Edge{{From: "r1", To: "x"}, {From: "r2", To: "x"}},
			},
			want: map[string]int{"r1": 0, "r2": 0, "x": 1},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Levels(tt.graph)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("Levels() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestLevelsDeterministic(t *testing.T) {
	g := diamond()
	first := Levels(g)
	for range 10 {
		if again := Levels(g); !reflect.DeepEqual(first, again) {
			t.Fatalf("Levels() not deterministic: %v vs %v", first, again)
		}
	}
}

func TestLevelsEdgeMonotonicity(t *testing.T) {
	g := diamond()
	levels := Levels(g)
	for _, e := range g.Edges {
		if levels[e.To] < levels[e.From]+1 {
			t.Errorf("level(%s)=%d < level(%s)+1=%d", e.To, levels[e.To], e.From, levels[e.From]+1)
		}
	}
}

// Cycle participants never reach zero in-degree; they are parked on fresh
// levels past the last observed one, ordered by canvas position.
func TestLevelsStrandedNodes(t *testing.T) {
	g := &graph.Graph{
		Nodes: []graph.Node{
			node("root", 0, 0),
			node("c1", 50, 400), // below c2, so parked after it
			node("c2", 50, 300),
		},
		Edges: []graph.Edge{
			{From: "root", To: "c1"},
			{From: "c1", To: "c2"}, {From: "c2", To: "c1"},
		},
	}

	levels := Levels(g)
	if levels["root"] != 0 {
		t.Errorf("root level = %d, want 0", levels["root"])
	}
	if levels["c2"] != 1 || levels["c1"] != 2 {
		t.Errorf("stranded levels = c2:%d c1:%d, want c2:1 c1:2", levels["c2"], levels["c1"])
	}
}

func TestPlaceVertical(t *testing.T) {
	g := diamond()
	Place(g, ModeVertical)

	wantPos := map[string]graph.Position{
		"a": {X: BaseX, Y: BaseY},
		"b": {X: BaseX, Y: BaseY + GapY},
		"c": {X: BaseX + GapX, Y: BaseY + GapY},
		"d": {X: BaseX, Y: BaseY + 2*GapY},
	}
	for _, n := range g.Nodes {
		if n.Position != wantPos[n.ID] {
			t.Errorf("node %s position = %+v, want %+v", n.ID, n.Position, wantPos[n.ID])
		}
	}
}

func TestPlaceHorizontal(t *testing.T) {
	g := diamond()
	Place(g, ModeHorizontal)

	wantPos := map[string]graph.Position{
		"a": {X: BaseX, Y: BaseY},
		"b": {X: BaseX + GapX, Y: BaseY},
		"c": {X: BaseX + GapX, Y: BaseY + GapY},
		"d": {X: BaseX + 2*GapX, Y: BaseY},
	}
	for _, n := range g.Nodes {
		if n.Position != wantPos[n.ID] {
			t.Errorf("node %s position = %+v, want %+v", n.ID, n.Position, wantPos[n.ID])
		}
	}
}

func TestPlaceGrid(t *testing.T) {
	g := diamond()
	Place(g, ModeGrid)

	// Four nodes tile into ceil(sqrt(4)) = 2 columns, ordered by level.
	wantPos := map[string]graph.Position{
		"a": {X: BaseX, Y: BaseY},
		"b": {X: BaseX + GapX, Y: BaseY},
		"c": {X: BaseX, Y: BaseY + GapY},
		"d": {X: BaseX + GapX, Y: BaseY + GapY},
	}
	for _, n := range g.Nodes {
		if n.Position != wantPos[n.ID] {
			t.Errorf("node %s position = %+v, want %+v", n.ID, n.Position, wantPos[n.ID])
		}
	}
}

// Re-layout orders lanes by current canvas position, not input order.
func TestRearrangeUsesCanvasOrder(t *testing.T) {
	g := &graph.Graph{
		Nodes: []graph.Node{
			node("root", 100, 100),
			node("low", 40, 900),  // further down the canvas
			node("high", 40, 200), // higher up, should take the first lane
		},
		Edges: []graph.Edge{{From: "root", To: "low"}, {From: "root", To: "high"}},
	}

	Rearrange(g, ModeVertical)

	high, low := g.NodeByID("high"), g.NodeByID("low")
	if high.Position.X != BaseX || low.Position.X != BaseX+GapX {
		t.Errorf("lanes = high:%v low:%v, want high first", high.Position, low.Position)
	}
}

func TestRearrangePreservesIdentity(t *testing.T) {
	g := diamond()
	before := g.Clone()

	Rearrange(g, ModeGrid)

	for i := range g.Nodes {
		if g.Nodes[i].ID != before.Nodes[i].ID ||
			g.Nodes[i].Role != before.Nodes[i].Role ||
			g.Nodes[i].Content != before.Nodes[i].Content {
			t.Errorf("node %d changed beyond position: %+v", i, g.Nodes[i])
		}
	}
	if !reflect.DeepEqual(g.Edges, before.Edges) {
		t.Error("edges changed during re-layout")
	}
}

func TestRearrangeStable(t *testing.T) {
	g := diamond()
	Place(g, ModeVertical)
	snapshot := g.Clone()

	Rearrange(g, ModeVertical)

	for i := range g.Nodes {
		if g.Nodes[i].Position != snapshot.Nodes[i].Position {
			t.Errorf("node %s moved on idempotent re-layout: %+v -> %+v",
				g.Nodes[i].ID, snapshot.Nodes[i].Position, g.Nodes[i].Position)
		}
	}
}

func TestParseMode(t *testing.T) {
	for _, ok := range []string{"vertical", "horizontal", "grid"} {
		if _, err := ParseMode(ok); err != nil {
			t.Errorf("ParseMode(%q) error = %v", ok, err)
		}
	}
	if _, err := ParseMode("diagonal"); err == nil {
		t.Error("ParseMode(diagonal) = nil error, want rejection")
	}
}
