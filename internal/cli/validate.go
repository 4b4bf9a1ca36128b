package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/promptstack/promptstack/pkg/errors"
	"github.com/promptstack/promptstack/pkg/graph"
)

// validateCommand creates the validate command for checking graph files.
func (c *CLI) validateCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "validate <graph.json>",
		Short: "Check a graph against the structural invariants",
		Long: `Check a graph file against the structural invariants.

A graph passes when every node id is unique, every role is one of system,
user, or assistant, no content is empty, every edge references existing
nodes without self-loops, no node is orphaned, and the edges form a DAG.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runValidate(args[0])
		},
	}
	return cmd
}

func (c *CLI) runValidate(path string) error {
	g, err := graph.ReadFile(path)
	if err != nil {
		return err
	}

	if err := graph.Validate(g); err != nil {
		printError("%s", errors.UserMessage(err))
		printKeyValue("code", string(errors.GetCode(err)))
		return fmt.Errorf("graph %s is invalid", path)
	}

	printSuccess("Graph is valid")
	printStats(len(g.Nodes), len(g.Edges), false)
	return nil
}
