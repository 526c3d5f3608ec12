package cmd

import (
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/runger/rpick/internal/config"
	"github.com/runger/rpick/internal/storage"
)

var (
	recentSource string
	recentLimit  int
	recentAll    bool
)

var recentCmd = &cobra.Command{
	Use:   "recent",
	Short: "Show recent picks",
	Long: `Show picks recorded on this machine, newest first.

By default only picks for the configured project are shown.

Examples:
  rpick recent
  rpick recent --source filters --limit 5
  rpick recent --all`,
	Args: cobra.NoArgs,
	RunE: runRecent,
}

func init() {
	recentCmd.Flags().StringVar(&recentSource, "source", "", "only show picks from widgets or filters")
	recentCmd.Flags().IntVarP(&recentLimit, "limit", "n", storage.DefaultRecentLimit, "max picks to show")
	recentCmd.Flags().BoolVar(&recentAll, "all", false, "show picks from every project")
	rootCmd.AddCommand(recentCmd)
}

func runRecent(cmd *cobra.Command, args []string) error {
	if recentSource != "" && recentSource != widgetsSource.name && recentSource != filtersSource.name {
		return fmt.Errorf("unknown source %q (want widgets or filters)", recentSource)
	}

	cfg, err := config.LoadFromFile(configPath())
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	project := cfg.Server.Project
	if projectFlag != "" {
		project = projectFlag
	}
	if recentAll {
		project = ""
	}

	dbPath := config.DefaultPaths().DatabaseFile()
	if _, err := os.Stat(dbPath); errors.Is(err, os.ErrNotExist) {
		fmt.Fprintln(cmd.OutOrStdout(), "No picks recorded yet.")
		return nil
	}

	store, err := storage.NewSQLiteStore(dbPath)
	if err != nil {
		return err
	}
	defer store.Close()

	picks, err := store.RecentPicks(cmd.Context(), storage.PickQuery{
		Source:  recentSource,
		Project: project,
		Limit:   recentLimit,
	})
	if err != nil {
		return err
	}
	printPicks(cmd.OutOrStdout(), picks)
	return nil
}

func printPicks(out io.Writer, picks []storage.Pick) {
	if len(picks) == 0 {
		fmt.Fprintln(out, "No picks recorded yet.")
		return
	}
	for _, p := range picks {
		when := time.UnixMilli(p.PickedAtUnixMs).Format("2006-01-02 15:04")
		action := p.Action
		if p.TargetID != nil {
			action = fmt.Sprintf("%s→%d", p.Action, *p.TargetID)
		}
		fmt.Fprintf(out, "%s%s%s  %-7s %6d  %s  %s[%s/%s]%s\n",
			colorDim, when, colorReset,
			p.Source, p.ItemID, p.ItemName,
			colorDim, p.Project, action, colorReset)
	}
}
