package cmd

import (
	"github.com/spf13/cobra"

	"github.com/runger/rpick/internal/listctl"
	"github.com/runger/rpick/internal/rpapi"
)

var filterFlags pickFlags

var filtersSource = source{
	name:      "filters",
	title:     "Filters",
	noResults: "No filters found",
	fetcher: func(c *rpapi.Client) listctl.Fetcher {
		return rpapi.FilterSource{Client: c}
	},
}

var filtersCmd = &cobra.Command{
	Use:   "filters",
	Short: "Pick a filter",
	Long: `Pick one of the project's filters, sorted by name.

With --widget, filters already applied to that widget are dimmed and
cannot be picked.

Exit codes: 0 picked, 1 cancelled, 2 could not run.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runPick(cmd, filtersSource, &filterFlags)
	},
}

func init() {
	filterFlags.register(filtersCmd)
	filtersCmd.Flags().Int64Var(&filterFlags.widget, "widget", 0, "widget whose filters are shown as already added")
	rootCmd.AddCommand(filtersCmd)
}
