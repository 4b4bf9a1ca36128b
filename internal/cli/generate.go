package cli

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/promptstack/promptstack/pkg/pipeline"
	"github.com/promptstack/promptstack/pkg/store"
)

// generateCommand creates the generate command for model-assisted graphs.
func (c *CLI) generateCommand() *cobra.Command {
	var (
		layoutMode string
		noCache    bool
		assumeYes  bool
		draw       bool
	)

	cmd := &cobra.Command{
		Use:   "generate <request...>",
		Short: "Generate a prompt graph from a natural-language request",
		Long: `Generate a prompt graph from a natural-language request.

The request is sent to the configured model endpoint together with the
graph schema and construction rules. The response is treated as untrusted
text: embedded JSON is extracted and must pass validation before the
graph is shown or drawn. With --draw, the generated graph replaces the
working graph after confirmation.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			request := strings.Join(args, " ")
			return c.runGenerate(cmd.Context(), request, layoutMode, noCache, assumeYes, draw)
		},
	}

	cmd.Flags().StringVarP(&layoutMode, "layout", "l", pipeline.DefaultLayout, "layout mode: vertical, horizontal, grid")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "disable response caching")
	cmd.Flags().BoolVarP(&assumeYes, "yes", "y", false, "draw without asking")
	cmd.Flags().BoolVar(&draw, "draw", false, "replace the working graph with the result")

	return cmd
}

func (c *CLI) runGenerate(ctx context.Context, request, layoutMode string, noCache, assumeYes, draw bool) error {
	cfg, err := c.loadConfig()
	if err != nil {
		return err
	}
	gen, err := c.newGenerator(cfg, noCache)
	if err != nil {
		return err
	}

	spinner := newSpinnerWithContext(ctx, fmt.Sprintf("Generating graph with %s...", cfg.Generation.Model))
	spinner.Start()

	g, err := gen.Generate(ctx, request)
	if err != nil {
		spinner.StopWithError("Generation failed")
		return err
	}
	spinner.Stop()

	if ctx.Err() != nil {
		return ctx.Err()
	}

	runner, err := c.newRunner(noCache)
	if err != nil {
		return fmt.Errorf("initialize runner: %w", err)
	}
	res, err := runner.Execute(ctx, pipeline.Options{Graph: g, Layout: layoutMode, Relayout: true})
	if err != nil {
		return err
	}

	printSuccess("Generated graph")
	printStats(res.Stats.NodeCount, res.Stats.EdgeCount, false)
	printNewline()
	fmt.Println(res.Output.StructuredPrompt)

	if !draw {
		printNewline()
		printNextStep("Draw it", appName+" generate --draw "+request)
		return nil
	}

	ok, err := confirm("Replace the current working graph?", assumeYes)
	if err != nil {
		return err
	}
	if !ok {
		printWarning("Draw cancelled, working graph unchanged")
		return nil
	}

	st, err := c.newStore(ctx, cfg)
	if err != nil {
		return err
	}
	defer st.Close()

	if err := st.Save(ctx, &store.State{
		Nodes: res.Graph.Nodes,
		Edges: res.Graph.Edges,
	}); err != nil {
		return fmt.Errorf("save working graph: %w", err)
	}
	printSuccess("Working graph updated")
	return nil
}
