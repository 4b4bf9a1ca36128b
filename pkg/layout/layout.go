// Package layout computes 2-D canvas coordinates for prompt graphs.
//
// Both entry points - initial placement after import and interactive
// re-layout of an existing canvas - are driven by the same generic
// longest-path leveling over the DAG: a node's level is the longest path
// length from any source node, computed with Kahn's algorithm. Nodes sharing
// a level form lanes along the secondary axis.
//
// Layout never changes node or edge identity, content, or role - only the
// presentation-only position field.
package layout

import (
	"math"
	"sort"

	"github.com/promptstack/promptstack/pkg/errors"
	"github.com/promptstack/promptstack/pkg/graph"
)

// Base offsets and gaps for coordinate assignment, in canvas units.
const (
	BaseX = 100.0
	BaseY = 100.0
	GapX  = 320.0
	GapY  = 220.0
)

// Mode selects how levels and lanes map onto canvas axes.
type Mode string

const (
	// ModeVertical maps levels to rows and lanes to columns.
	ModeVertical Mode = "vertical"
	// ModeHorizontal maps levels to columns and lanes to rows.
	ModeHorizontal Mode = "horizontal"
	// ModeGrid ignores the level/lane split and tiles all nodes into a
	// near-square grid, ordered by level with prior position as tie-break.
	ModeGrid Mode = "grid"
)

// ParseMode validates a layout mode string.
func ParseMode(s string) (Mode, error) {
	switch Mode(s) {
	case ModeVertical, ModeHorizontal, ModeGrid:
		return Mode(s), nil
	}
	return "", errors.New(errors.ErrCodeInvalidLayout,
		"invalid layout mode %q (expected vertical, horizontal, or grid)", s)
}

// Levels assigns each node its longest path length from any source node.
//
// Zero-in-degree nodes seed the queue at level 0; each edge pushes its
// target to at least one below its source, so level(to) >= level(from)+1
// holds for every edge of an acyclic graph. Nodes that never reach zero
// remaining in-degree (possible only on graphs the validator would reject,
// such as cycle participants) are assigned fresh levels past the maximum
// observed one, ordered by current canvas position (top-to-bottom then
// left-to-right) as a deterministic tie-break.
func Levels(g *graph.Graph) map[string]int {
	inDegree := g.InDegrees()
	outgoing := g.Outgoing()
	levels := make(map[string]int, len(g.Nodes))

	queue := make([]string, 0, len(g.Nodes))
	for _, n := range g.Nodes {
		if inDegree[n.ID] == 0 {
			queue = append(queue, n.ID)
			levels[n.ID] = 0
		}
	}

	for len(queue) > 0 {
		curr := queue[0]
		queue = queue[1:]

		for _, next := range outgoing[curr] {
			if lvl := levels[curr] + 1; lvl > levels[next] {
				levels[next] = lvl
			}
			inDegree[next]--
			if inDegree[next] == 0 {
				queue = append(queue, next)
			}
		}
	}

	// Leftovers can only be nodes stuck behind a cycle.
	var stranded []graph.Node
	for _, n := range g.Nodes {
		if inDegree[n.ID] > 0 {
			stranded = append(stranded, n)
		}
	}
	if len(stranded) > 0 {
		maxLevel := 0
		for id, lvl := range levels {
			if inDegree[id] <= 0 && lvl > maxLevel {
				maxLevel = lvl
			}
		}
		sort.SliceStable(stranded, func(i, j int) bool {
			if stranded[i].Position.Y != stranded[j].Position.Y {
				return stranded[i].Position.Y < stranded[j].Position.Y
			}
			return stranded[i].Position.X < stranded[j].Position.X
		})
		for i, n := range stranded {
			levels[n.ID] = maxLevel + 1 + i
		}
	}

	return levels
}

// Place lays out a freshly imported graph. Lane order within a level
// follows node input order, matching the order the importer emitted.
func Place(g *graph.Graph, mode Mode) {
	arrange(g, mode, inputOrder(g))
}

// Rearrange re-lays out an existing canvas. Lane order within a level
// follows current canvas position (top-to-bottom, then left-to-right), so
// repeated re-layouts of an unchanged graph are stable.
func Rearrange(g *graph.Graph, mode Mode) {
	arrange(g, mode, positionOrder(g))
}

// inputOrder returns node indices in input order.
func inputOrder(g *graph.Graph) []int {
	order := make([]int, len(g.Nodes))
	for i := range order {
		order[i] = i
	}
	return order
}

// positionOrder returns node indices sorted by (y, x), stable on input order.
func positionOrder(g *graph.Graph) []int {
	order := inputOrder(g)
	sort.SliceStable(order, func(a, b int) bool {
		pa, pb := g.Nodes[order[a]].Position, g.Nodes[order[b]].Position
		if pa.Y != pb.Y {
			return pa.Y < pb.Y
		}
		return pa.X < pb.X
	})
	return order
}

func arrange(g *graph.Graph, mode Mode, order []int) {
	if len(g.Nodes) == 0 {
		return
	}
	levels := Levels(g)

	if mode == ModeGrid {
		arrangeGrid(g, levels, order)
		return
	}

	// Lane assignment: position within the level group, in traversal order.
	laneOf := make(map[string]int, len(g.Nodes))
	laneCount := make(map[int]int)
	for _, idx := range order {
		id := g.Nodes[idx].ID
		lvl := levels[id]
		laneOf[id] = laneCount[lvl]
		laneCount[lvl]++
	}

	for i := range g.Nodes {
		id := g.Nodes[i].ID
		lvl, lane := float64(levels[id]), float64(laneOf[id])
		switch mode {
		case ModeHorizontal:
			g.Nodes[i].Position = graph.Position{X: BaseX + lvl*GapX, Y: BaseY + lane*GapY}
		default:
			g.Nodes[i].Position = graph.Position{X: BaseX + lane*GapX, Y: BaseY + lvl*GapY}
		}
	}
}

// arrangeGrid flattens all nodes sorted by (level, traversal order) and
// tiles them into ceil(sqrt(n)) columns.
func arrangeGrid(g *graph.Graph, levels map[string]int, order []int) {
	sorted := make([]int, len(order))
	copy(sorted, order)
	sort.SliceStable(sorted, func(a, b int) bool {
		return levels[g.Nodes[sorted[a]].ID] < levels[g.Nodes[sorted[b]].ID]
	})

	cols := int(math.Ceil(math.Sqrt(float64(len(sorted)))))
	for seq, idx := range sorted {
		g.Nodes[idx].Position = graph.Position{
			X: BaseX + float64(seq%cols)*GapX,
			Y: BaseY + float64(seq/cols)*GapY,
		}
	}
}
