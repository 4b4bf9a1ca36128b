package cli

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/promptstack/promptstack/pkg/graph"
	"github.com/promptstack/promptstack/pkg/layout"
)

// layoutCommand creates the layout command for assigning canvas positions.
func (c *CLI) layoutCommand() *cobra.Command {
	var (
		output    string
		modeName  string
		rearrange bool
	)

	cmd := &cobra.Command{
		Use:   "layout <graph.json>",
		Short: "Assign canvas positions to a prompt graph",
		Long: `Assign canvas positions to a prompt graph.

Nodes are leveled by longest path from the roots and placed on a fixed
grid. Three modes are supported: vertical (levels top to bottom),
horizontal (levels left to right), and grid (row-major square).

With --rearrange, nodes keep their relative canvas ordering instead of
input order, which preserves manual arrangements when switching modes.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runLayout(args[0], modeName, output, rearrange)
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (default: <input>.layout.json)")
	cmd.Flags().StringVarP(&modeName, "mode", "m", "vertical", "layout mode: vertical, horizontal, grid")
	cmd.Flags().BoolVar(&rearrange, "rearrange", false, "order lanes by current canvas position")

	return cmd
}

// positionedGraph serializes nodes with their assigned positions.
type positionedGraph struct {
	Nodes []graph.Node `json:"nodes"`
	Edges []graph.Edge `json:"edges"`
}

func (c *CLI) runLayout(input, modeName, output string, rearrange bool) error {
	mode, err := layout.ParseMode(modeName)
	if err != nil {
		return err
	}

	g, err := graph.ReadFile(input)
	if err != nil {
		return fmt.Errorf("load graph %s: %w", input, err)
	}

	p := newProgress(c.Logger)
	if rearrange {
		layout.Rearrange(g, mode)
	} else {
		layout.Place(g, mode)
	}
	p.done(fmt.Sprintf("Placed %d nodes (%s)", len(g.Nodes), mode))

	outputPath := output
	if outputPath == "" {
		base := strings.TrimSuffix(input, filepath.Ext(input))
		outputPath = base + ".layout.json"
	}

	data, err := json.MarshalIndent(positionedGraph{Nodes: g.Nodes, Edges: g.Edges}, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal layout: %w", err)
	}
	if err := os.WriteFile(outputPath, append(data, '\n'), 0644); err != nil {
		return fmt.Errorf("write output %s: %w", outputPath, err)
	}

	printSuccess("Layout complete")
	printFile(outputPath)
	printStats(len(g.Nodes), len(g.Edges), false)
	printNewline()
	printNextStep("Render", appName+" render "+outputPath)

	return nil
}
