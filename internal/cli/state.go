package cli

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
)

// stateCommand creates the state command group for the working graph.
func (c *CLI) stateCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "state",
		Short: "Manage the persisted working graph",
	}
	cmd.AddCommand(c.stateShowCommand())
	cmd.AddCommand(c.stateResetCommand())
	return cmd
}

func (c *CLI) stateShowCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Print the working graph as JSON",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runStateShow(cmd.Context())
		},
	}
}

func (c *CLI) stateResetCommand() *cobra.Command {
	var assumeYes bool

	cmd := &cobra.Command{
		Use:   "reset",
		Short: "Discard the working graph and restore the default",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runStateReset(cmd.Context(), assumeYes)
		},
	}
	cmd.Flags().BoolVarP(&assumeYes, "yes", "y", false, "reset without asking")
	return cmd
}

func (c *CLI) runStateShow(ctx context.Context) error {
	cfg, err := c.loadConfig()
	if err != nil {
		return err
	}
	st, err := c.newStore(ctx, cfg)
	if err != nil {
		return err
	}
	defer st.Close()

	state, err := st.Load(ctx)
	if err != nil {
		return err
	}

	data, err := json.MarshalIndent(state, "", "  ")
	if err != nil {
		return err
	}
	fmt.Println(string(data))
	return nil
}

func (c *CLI) runStateReset(ctx context.Context, assumeYes bool) error {
	ok, err := confirm("Discard the working graph?", assumeYes)
	if err != nil {
		return err
	}
	if !ok {
		printWarning("Reset cancelled, working graph unchanged")
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

	if err := st.Reset(ctx); err != nil {
		return err
	}
	printSuccess("Working graph reset")
	return nil
}
