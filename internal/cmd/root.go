package cmd

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// Persistent flags shared by every subcommand.
var (
	cfgFile      string
	debugFlag    bool
	endpointFlag string
	projectFlag  string
)

var rootCmd = &cobra.Command{
	Use:   "rpick",
	Short: "pick widgets and filters from a report server",
	Long: `rpick - a searchable, paginated picker for report-server objects
  - type to search, scroll to load more
  - picks are printed, added to a dashboard, or handed to a command`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		applyColorMode(cmd.OutOrStdout())
	},
}

// Execute runs the root command and returns the process exit code.
func Execute() int {
	err := rootCmd.Execute()
	if err == nil {
		return exitSuccess
	}
	var ee *ExitError
	if errors.As(err, &ee) {
		if ee.Err != nil {
			fmt.Fprintf(os.Stderr, "%sError:%s %v\n", colorRed, colorReset, ee.Err)
		}
		return ee.Code
	}
	fmt.Fprintf(os.Stderr, "%sError:%s %v\n", colorRed, colorReset, err)
	return exitFallback
}

func init() {
	pf := rootCmd.PersistentFlags()
	pf.StringVar(&cfgFile, "config", "", "config file (default is $XDG_CONFIG_HOME/rpick/config.yaml)")
	pf.BoolVar(&debugFlag, "debug", false, "enable debug logging")
	pf.StringVar(&endpointFlag, "endpoint", "", "report server URL (overrides server.endpoint)")
	pf.StringVar(&projectFlag, "project", "", "project name (overrides server.project)")
	pf.StringVar(&colorMode, "color", "auto", "color output: auto, always, or never")

	rootCmd.AddCommand(versionCmd)
}
