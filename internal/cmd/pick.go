package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/google/uuid"
	"github.com/muesli/termenv"
	"github.com/spf13/cobra"

	"github.com/runger/rpick/internal/listctl"
	rlog "github.com/runger/rpick/internal/log"
	"github.com/runger/rpick/internal/picker"
	"github.com/runger/rpick/internal/rpapi"
	"github.com/runger/rpick/internal/storage"
)

// source describes one pickable object list.
type source struct {
	name      string // "widgets" or "filters", used in logs and history
	title     string
	noResults string
	fetcher   func(*rpapi.Client) listctl.Fetcher
}

// pickFlags holds the flags shared by the picker subcommands.
type pickFlags struct {
	dashboard int64   // widgets: dashboard whose widgets count as selected
	widget    int64   // filters: widget whose filters count as selected
	selected  []int64 // extra ids that count as selected
	add       bool    // widgets: add the pick to --dashboard
	exec      string  // command run with the pick, overrides picker.on_select
	plain     bool
	json      bool
	term      string // search term for --plain and --json
	limit     int    // max rows for --plain and --json
	noHistory bool
}

func (f *pickFlags) register(cmd *cobra.Command) {
	fl := cmd.Flags()
	fl.Int64SliceVar(&f.selected, "selected", nil, "ids to show as already added (repeatable or comma-separated)")
	fl.StringVar(&f.exec, "exec", "", "run a command with the pick; {id}, {name}, {project} and {source} are replaced")
	fl.BoolVar(&f.plain, "plain", false, "print matching rows instead of opening the picker")
	fl.BoolVar(&f.json, "json", false, "print matching rows as JSON instead of opening the picker")
	fl.StringVarP(&f.term, "term", "t", "", "search term for --plain and --json")
	fl.IntVar(&f.limit, "limit", 0, "max rows for --plain and --json (0 = all)")
	fl.BoolVar(&f.noHistory, "no-history", false, "do not record this pick")
}

func (f *pickFlags) validate() error {
	if f.plain && f.json {
		return errors.New("--plain and --json are mutually exclusive")
	}
	if f.add && f.dashboard <= 0 {
		return errors.New("--add requires --dashboard")
	}
	if f.add && f.exec != "" {
		return errors.New("--add and --exec are mutually exclusive")
	}
	if f.limit < 0 {
		return errors.New("--limit must be non-negative")
	}
	return nil
}

func runPick(cmd *cobra.Command, src source, flags *pickFlags) error {
	if err := flags.validate(); err != nil {
		return fallback(err)
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	s, err := openSession(src.name)
	if err != nil {
		return fallback(err)
	}
	defer s.Close()

	selected, err := resolveSelected(ctx, s.client, flags)
	if err != nil {
		return fallback(err)
	}
	fetcher := src.fetcher(s.client)
	opts := listctl.Options{PageSize: s.cfg.Picker.PageSize, Dedupe: s.cfg.Picker.Dedupe}

	if flags.plain || flags.json {
		st, err := listAll(ctx, fetcher, opts, flags.term, selected, flags.limit)
		if err != nil {
			return fallback(fmt.Errorf("list %s: %w", src.name, err))
		}
		if flags.json {
			return writeJSON(cmd.OutOrStdout(), st.Items)
		}
		writePlain(cmd.OutOrStdout(), st.Items, terminalWidth(cmd.OutOrStdout()))
		return nil
	}

	final, err := runInteractive(ctx, s, src, fetcher, selected)
	if err != nil {
		return fallback(err)
	}
	if final.IsCancelled() {
		return &ExitError{Code: exitCancelled}
	}
	item, ok := final.Result()
	if !ok {
		return &ExitError{Code: exitCancelled}
	}
	rlog.LogPick(s.logger, src.name, item, final.SearchTerm())

	p := storage.Pick{
		SessionID: uuid.NewString(),
		Source:    src.name,
		Endpoint:  s.cfg.Server.Endpoint,
		Project:   s.cfg.Server.Project,
		ItemID:    item.ID,
		ItemName:  item.Name,
		Term:      final.SearchTerm(),
	}
	applyErr := applyPick(ctx, cmd, s, src, flags, item, &p)
	if applyErr == nil && s.cfg.Storage.History && !flags.noHistory {
		recordPick(ctx, s, &p)
	}
	if applyErr != nil {
		return fallback(applyErr)
	}
	return nil
}

// resolveSelected builds the already-added set from --dashboard, --widget
// and --selected.
func resolveSelected(ctx context.Context, c *rpapi.Client, flags *pickFlags) (listctl.Selected, error) {
	ids := append([]int64(nil), flags.selected...)
	if flags.dashboard > 0 {
		d, err := c.Dashboard(ctx, flags.dashboard)
		if err != nil {
			return nil, err
		}
		ids = append(ids, d.WidgetIDs()...)
	}
	if flags.widget > 0 {
		w, err := c.Widget(ctx, flags.widget)
		if err != nil {
			return nil, err
		}
		ids = append(ids, w.FilterIDs()...)
	}
	return listctl.NewSelected(ids...), nil
}

// runInteractive draws the picker on the controlling terminal and returns the
// final model.
func runInteractive(ctx context.Context, s *session, src source, fetcher listctl.Fetcher, selected listctl.Selected) (picker.Model, error) {
	if err := checkTERM(); err != nil {
		return picker.Model{}, err
	}
	tty, err := openTTY()
	if err != nil {
		return picker.Model{}, err
	}
	defer tty.Close()
	if err := checkTermWidth(tty); err != nil {
		return picker.Model{}, err
	}

	if err := s.paths.EnsureDirectories(); err != nil {
		return picker.Model{}, err
	}
	fd, err := acquireLock(s.paths.LockFile())
	if err != nil {
		return picker.Model{}, err
	}
	defer releaseLock(fd)

	model := picker.NewModel(fetcher, picker.Options{
		Source:            src.name,
		Title:             src.title,
		PageSize:          s.cfg.Picker.PageSize,
		Dedupe:            s.cfg.Picker.Dedupe,
		Debounce:          s.cfg.Picker.Debounce(),
		LazyLoadThreshold: s.cfg.Picker.LazyLoadThreshold,
		Selected:          selected,
		NoResults:         src.noResults,
		Logger:            s.logger,
	})

	// The default renderer inspects stdout, which is usually a pipe here.
	lipgloss.SetColorProfile(termenv.NewOutput(tty).ColorProfile())

	p := tea.NewProgram(model,
		tea.WithContext(ctx),
		tea.WithAltScreen(),
		tea.WithInput(tty),
		tea.WithOutput(tty),
	)
	finalModel, err := p.Run()
	if err != nil {
		if errors.Is(err, tea.ErrProgramKilled) && ctx.Err() != nil {
			return picker.Model{}, ctx.Err()
		}
		return picker.Model{}, fmt.Errorf("picker: %w", err)
	}
	m, ok := finalModel.(picker.Model)
	if !ok {
		return picker.Model{}, fmt.Errorf("picker: unexpected model type %T", finalModel)
	}
	return m, nil
}

// applyPick does what the flags ask with item and records the action on p.
func applyPick(ctx context.Context, cmd *cobra.Command, s *session, src source, flags *pickFlags, item listctl.Item, p *storage.Pick) error {
	out := cmd.OutOrStdout()

	if flags.add {
		err := s.client.AddWidget(ctx, flags.dashboard, rpapi.SharedWidget{
			ID:          item.ID,
			Name:        item.Name,
			Owner:       item.Owner,
			Description: item.Description,
			WidgetType:  item.Kind,
			Share:       item.Shared,
		})
		if err != nil {
			return err
		}
		target := flags.dashboard
		p.Action = storage.ActionAdd
		p.TargetID = &target
		fmt.Fprintf(cmd.ErrOrStderr(), "%sAdded%s %s to dashboard %d\n", colorGreen, colorReset, item.Name, flags.dashboard)
		fmt.Fprintln(out, item.ID)
		return nil
	}

	template := flags.exec
	if template == "" {
		template = s.cfg.Picker.OnSelect
	}
	if template != "" {
		argv, err := buildOnSelect(template, item, s.cfg.Server.Project, src.name)
		if err != nil {
			return err
		}
		p.Action = storage.ActionExec
		return runOnSelect(ctx, argv, out, cmd.ErrOrStderr())
	}

	p.Action = storage.ActionPrint
	fmt.Fprintln(out, item.ID)
	return nil
}

// recordPick stores p and prunes expired history. Storage errors are logged
// and never fail the run.
func recordPick(ctx context.Context, s *session, p *storage.Pick) {
	store, err := storage.NewSQLiteStore(s.paths.DatabaseFile())
	if err != nil {
		rlog.LogStorageError(s.logger, "open", err)
		return
	}
	defer store.Close()

	if err := store.RecordPick(ctx, p); err != nil {
		rlog.LogStorageError(s.logger, "record_pick", err)
		return
	}
	if days := s.cfg.Storage.RetentionDays; days > 0 {
		cutoff := time.Now().AddDate(0, 0, -days)
		if _, err := store.PruneOlderThan(ctx, cutoff); err != nil {
			rlog.LogStorageError(s.logger, "prune", err)
		}
	}
}
