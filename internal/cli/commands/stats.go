package commands

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/spf13/cobra"

	"github.com/ashureev/restwell/internal/cli/client"
	"github.com/ashureev/restwell/internal/cli/ui"
)

var statsRecent int

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "show chat usage over the last 24 hours",
	Example: `  $ restwell stats
  $ restwell stats --recent 10`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		out := cmd.OutOrStdout()
		c, err := newClient()
		if err != nil {
			ui.PrintError(out, "failed to create client: %v", err)
			return err
		}
		stats, err := c.Stats(cmd.Context(), statsRecent)
		if err != nil {
			var apiErr *client.APIError
			if errors.As(err, &apiErr) && apiErr.StatusCode == http.StatusNotFound {
				ui.PrintWarning(out, "chat audit is disabled on %s", c.Server())
				return nil
			}
			ui.PrintError(out, "failed to load stats: %v", err)
			return err
		}
		fmt.Fprintln(out, ui.RenderStats(stats))
		return nil
	},
}

func init() {
	statsCmd.Flags().IntVar(&statsRecent, "recent", 0, "also list the newest N chat requests")
}
