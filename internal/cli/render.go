package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/promptstack/promptstack/pkg/errors"
	"github.com/promptstack/promptstack/pkg/render"
)

// renderCommand creates the render command for drawing graph diagrams.
func (c *CLI) renderCommand() *cobra.Command {
	var (
		output   string
		format   string
		detailed bool
	)

	cmd := &cobra.Command{
		Use:   "render [graph.json]",
		Short: "Draw a prompt graph as a Graphviz diagram",
		Long: `Draw a prompt graph as a Graphviz diagram.

Without an argument, the persisted working graph is rendered. Nodes are
colored by role. Formats: svg (default) and dot.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			input := ""
			if len(args) == 1 {
				input = args[0]
			}
			return c.runRender(cmd.Context(), input, format, output, detailed)
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (default: <input>.<format> or prompt.<format>)")
	cmd.Flags().StringVarP(&format, "format", "f", "svg", "output format: svg, dot")
	cmd.Flags().BoolVar(&detailed, "detailed", false, "include node content in labels")

	return cmd
}

func (c *CLI) runRender(ctx context.Context, input, format, output string, detailed bool) error {
	g, err := c.loadGraph(ctx, input)
	if err != nil {
		return err
	}

	dot := render.ToDOT(g, render.Options{Detailed: detailed})

	var data []byte
	switch format {
	case "dot":
		data = []byte(dot)
	case "svg":
		data, err = render.RenderSVG(dot)
		if err != nil {
			return fmt.Errorf("render svg: %w", err)
		}
	default:
		return errors.New(errors.ErrCodeInvalidFormat, "unknown format %q (expected svg or dot)", format)
	}

	outputPath := output
	if outputPath == "" {
		base := "prompt"
		if input != "" {
			base = strings.TrimSuffix(input, filepath.Ext(input))
		}
		outputPath = base + "." + format
	}

	if err := os.WriteFile(outputPath, data, 0644); err != nil {
		return fmt.Errorf("write output %s: %w", outputPath, err)
	}

	printSuccess("Render complete")
	printFile(outputPath)
	printStats(len(g.Nodes), len(g.Edges), false)
	return nil
}
