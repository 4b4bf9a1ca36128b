package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/promptstack/promptstack/pkg/errors"
	"github.com/promptstack/promptstack/pkg/graph"
	"github.com/promptstack/promptstack/pkg/pipeline"
	"github.com/promptstack/promptstack/pkg/sequence"
)

// Output formats for the compile command.
const (
	formatText     = "text"
	formatJSON     = "json"
	formatMarkdown = "markdown"
)

// compileCommand creates the compile command for linearizing graphs.
func (c *CLI) compileCommand() *cobra.Command {
	var (
		output   string
		format   string
		noCache  bool
		relayout bool
	)

	cmd := &cobra.Command{
		Use:   "compile [graph.json]",
		Short: "Compile a prompt graph into a transcript",
		Long: `Compile a prompt graph into an ordered prompt transcript.

Without an argument, the persisted working graph is compiled. With a
file argument, that graph is validated and compiled instead. Stored
canvas positions drive the transcript order; --relayout discards them
and lays the graph out fresh.

Formats:
  text      the structured prompt transcript (default)
  json      sequence, transcript, and canonical graph as JSON
  markdown  the transcript under a "# Generated Prompt" heading`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			input := ""
			if len(args) == 1 {
				input = args[0]
			}
			return c.runCompile(cmd.Context(), input, format, output, noCache, relayout)
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (default: stdout)")
	cmd.Flags().StringVarP(&format, "format", "f", formatText, "output format: text, json, markdown")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "disable caching")
	cmd.Flags().BoolVar(&relayout, "relayout", false, "discard stored positions and lay out fresh")

	return cmd
}

func (c *CLI) runCompile(ctx context.Context, input, format, output string, noCache, relayout bool) error {
	g, err := c.loadGraph(ctx, input)
	if err != nil {
		return err
	}

	runner, err := c.newRunner(noCache)
	if err != nil {
		return fmt.Errorf("initialize runner: %w", err)
	}

	p := newProgress(c.Logger)
	res, err := runner.Execute(ctx, pipeline.Options{Graph: g, Relayout: relayout})
	if err != nil {
		return err
	}
	p.done(fmt.Sprintf("Compiled %d steps", len(res.Output.Sequence)))

	rendered, err := renderOutput(res.Output, format)
	if err != nil {
		return err
	}

	if output == "" {
		fmt.Print(rendered)
		return nil
	}
	if err := os.WriteFile(output, []byte(rendered), 0644); err != nil {
		return fmt.Errorf("write output %s: %w", output, err)
	}
	printSuccess("Compile complete")
	printFile(output)
	return nil
}

// loadGraph reads a graph file, or the working state when input is empty.
func (c *CLI) loadGraph(ctx context.Context, input string) (*graph.Graph, error) {
	if input != "" {
		return graph.ReadFile(input)
	}

	cfg, err := c.loadConfig()
	if err != nil {
		return nil, err
	}
	st, err := c.newStore(ctx, cfg)
	if err != nil {
		return nil, err
	}
	defer st.Close()

	state, err := st.Load(ctx)
	if err != nil {
		return nil, err
	}
	return state.Graph(), nil
}

func renderOutput(out *sequence.Output, format string) (string, error) {
	switch format {
	case formatText:
		return out.StructuredPrompt + "\n", nil
	case formatMarkdown:
		return sequence.Markdown(*out), nil
	case formatJSON:
		data, err := json.MarshalIndent(out, "", "  ")
		if err != nil {
			return "", err
		}
		return string(data) + "\n", nil
	default:
		return "", errors.New(errors.ErrCodeInvalidFormat,
			"unknown format %q (expected text, json, or markdown)", format)
	}
}
