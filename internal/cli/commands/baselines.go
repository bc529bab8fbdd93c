package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ashureev/restwell/internal/cli/ui"
)

var baselinesCmd = &cobra.Command{
	Use:   "baselines",
	Short: "show typical sleep and caffeine values by age and gender",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		out := cmd.OutOrStdout()
		c, err := newClient()
		if err != nil {
			ui.PrintError(out, "failed to create client: %v", err)
			return err
		}
		rows, err := c.Baselines(cmd.Context())
		if err != nil {
			ui.PrintError(out, "failed to load baselines: %v", err)
			return err
		}
		fmt.Fprintln(out, ui.RenderBaselines(rows))
		return nil
	},
}
