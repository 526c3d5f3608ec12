package cmd

import (
	"github.com/spf13/cobra"

	"github.com/runger/rpick/internal/listctl"
	"github.com/runger/rpick/internal/rpapi"
)

var widgetFlags pickFlags

var widgetsSource = source{
	name:      "widgets",
	title:     "Shared widgets",
	noResults: "No shared widgets found",
	fetcher: func(c *rpapi.Client) listctl.Fetcher {
		return rpapi.WidgetSource{Client: c}
	},
}

var widgetsCmd = &cobra.Command{
	Use:   "widgets",
	Short: "Pick a shared widget",
	Long: `Pick one of the project's shared widgets.

Type to search by name; scrolling near the end loads the next page.
With --dashboard, widgets already on that dashboard are dimmed and
cannot be picked. Add --add to place the pick on the dashboard.

Exit codes: 0 picked, 1 cancelled, 2 could not run.

Examples:
  rpick widgets                          # Print the picked widget id
  rpick widgets --dashboard 12 --add     # Add the pick to dashboard 12
  rpick widgets --plain -t launch        # List matches without the picker`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runPick(cmd, widgetsSource, &widgetFlags)
	},
}

func init() {
	widgetFlags.register(widgetsCmd)
	widgetsCmd.Flags().Int64Var(&widgetFlags.dashboard, "dashboard", 0, "dashboard whose widgets are shown as already added")
	widgetsCmd.Flags().BoolVar(&widgetFlags.add, "add", false, "add the picked widget to --dashboard")
	rootCmd.AddCommand(widgetsCmd)
}
