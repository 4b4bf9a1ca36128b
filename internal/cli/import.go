package cli

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/promptstack/promptstack/pkg/pipeline"
	"github.com/promptstack/promptstack/pkg/store"
)

// importCommand creates the import command for parsing free-form text.
func (c *CLI) importCommand() *cobra.Command {
	var (
		layoutMode string
		noCache    bool
		assumeYes  bool
		dryRun     bool
	)

	cmd := &cobra.Command{
		Use:   "import [file]",
		Short: "Parse free-form text into a prompt graph",
		Long: `Parse free-form text into a prompt graph and make it the working graph.

The importer accepts four dialects, tried in order: canonical graph JSON
(optionally fenced or embedded in prose), numbered role blocks
("[1] SYSTEM" followed by "1.1 ..." items), a plain numbered outline, and
role-tagged lines ("user: ..."). Anything else becomes a single user node.

Reads from the given file, or from stdin when the file is "-" or omitted.
Importing replaces the current working graph after confirmation.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			text, err := readInput(args)
			if err != nil {
				return err
			}
			return c.runImport(cmd.Context(), text, layoutMode, noCache, assumeYes, dryRun)
		},
	}

	cmd.Flags().StringVarP(&layoutMode, "layout", "l", pipeline.DefaultLayout, "layout mode: vertical, horizontal, grid")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "disable caching")
	cmd.Flags().BoolVarP(&assumeYes, "yes", "y", false, "overwrite the working graph without asking")
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "parse and print without touching the working graph")

	return cmd
}

// readInput returns the text to import from the file argument or stdin.
func readInput(args []string) (string, error) {
	if len(args) == 0 || args[0] == "-" {
		data, err := io.ReadAll(os.Stdin)
		if err != nil {
			return "", fmt.Errorf("read stdin: %w", err)
		}
		return string(data), nil
	}
	data, err := os.ReadFile(args[0])
	if err != nil {
		return "", fmt.Errorf("read %s: %w", args[0], err)
	}
	return string(data), nil
}

func (c *CLI) runImport(ctx context.Context, text, layoutMode string, noCache, assumeYes, dryRun bool) error {
	runner, err := c.newRunner(noCache)
	if err != nil {
		return fmt.Errorf("initialize runner: %w", err)
	}

	res, err := runner.Execute(ctx, pipeline.Options{Text: text, Layout: layoutMode})
	if err != nil {
		return err
	}

	printSuccess("Imported graph")
	printStats(res.Stats.NodeCount, res.Stats.EdgeCount, res.CacheInfo.LayoutHit)

	if dryRun {
		printNewline()
		fmt.Println(res.Output.StructuredPrompt)
		return nil
	}

	ok, err := confirm("Replace the current working graph?", assumeYes)
	if err != nil {
		return err
	}
	if !ok {
		printWarning("Import cancelled, working graph unchanged")
		return nil
	}

	cfg, err := c.loadConfig()
	if err != nil {
		return err
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

	printNewline()
	printNextStep("Compile", appName+" compile")
	return nil
}
