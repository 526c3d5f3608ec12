package picker

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/cursor"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/runger/rpick/internal/listctl"
	rlog "github.com/runger/rpick/internal/log"
)

// DefaultLazyLoadThreshold is how close to the end of the loaded rows the
// cursor must come before the next page is requested.
const DefaultLazyLoadThreshold = 3

// fetchDoneMsg is sent when an async Fetcher.Fetch completes.
type fetchDoneMsg struct {
	req  listctl.FetchRequest
	resp listctl.FetchResponse
	err  error
}

// debounceMsg fires after the search quiet period. Only the token handed out
// by the most recent Arm is accepted.
type debounceMsg struct {
	id   uint64
	term string
}

// initMsg is sent by Init so the mount fetch is issued through Update, where
// state mutations are visible to the Bubble Tea runtime.
type initMsg struct{}

// Options configures a picker Model.
type Options struct {
	// Source names the list in logs, e.g. "widgets".
	Source string
	Title  string

	PageSize          int
	Dedupe            bool
	Debounce          time.Duration
	LazyLoadThreshold int

	// Selected holds ids already present on the target. Matching rows are
	// shown dimmed and cannot be picked.
	Selected listctl.Selected

	// NoResults is shown when a settled list is empty.
	NoResults string

	Logger *slog.Logger
}

// Model is the Bubble Tea model for a paginated, searchable item picker.
type Model struct {
	list     listctl.State
	fetcher  listctl.Fetcher
	selected listctl.Selected
	debounce listctl.Debouncer

	input   textinput.Model
	spinner spinner.Model
	keys    keyMap

	source    string
	title     string
	noResults string
	threshold int

	cursor int // Index into list.Items; -1 when empty
	offset int // First visible row

	width  int
	height int

	// cancelFetch cancels the in-flight Fetch context.
	cancelFetch context.CancelFunc

	logger *slog.Logger

	result    listctl.Item
	picked    bool
	cancelled bool
}

// NewModel creates a picker over fetcher.
func NewModel(fetcher listctl.Fetcher, opts Options) Model {
	in := textinput.New()
	in.Prompt = "> "
	in.Placeholder = "Search by name"
	in.CharLimit = 128
	in.PromptStyle = promptStyle
	in.PlaceholderStyle = dimStyle
	// A static cursor keeps the input from scheduling blink ticks.
	_ = in.Cursor.SetMode(cursor.CursorStatic)
	in.Focus()

	sp := spinner.New(spinner.WithSpinner(spinner.Dot), spinner.WithStyle(spinnerStyle))

	threshold := opts.LazyLoadThreshold
	if threshold <= 0 {
		threshold = DefaultLazyLoadThreshold
	}
	noResults := opts.NoResults
	if noResults == "" {
		noResults = "No results found"
	}
	logger := opts.Logger
	if logger == nil {
		logger = rlog.Discard()
	}

	return Model{
		list:      listctl.New(listctl.Options{PageSize: opts.PageSize, Dedupe: opts.Dedupe}),
		fetcher:   fetcher,
		selected:  opts.Selected,
		debounce:  listctl.NewDebouncer(opts.Debounce),
		input:     in,
		spinner:   sp,
		keys:      defaultKeyMap(),
		source:    opts.Source,
		title:     opts.Title,
		noResults: noResults,
		threshold: threshold,
		cursor:    -1,
		logger:    logger,
	}
}

// Result returns the picked item. ok is false when nothing was picked.
func (m Model) Result() (item listctl.Item, ok bool) {
	return m.result, m.picked
}

// IsCancelled reports whether the user dismissed the picker.
func (m Model) IsCancelled() bool {
	return m.cancelled
}

// Items returns the rows currently loaded.
func (m Model) Items() []listctl.Item {
	return m.list.Items
}

// SearchTerm returns the term the current list was requested with.
func (m Model) SearchTerm() string {
	return m.list.SearchTerm
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	return func() tea.Msg { return initMsg{} }
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.input.Width = max(msg.Width-len(m.input.Prompt)-1, 1)
		m.scrollToCursor()
		return m, nil

	case initMsg:
		next, req := m.list.Mount()
		m.list = next
		return m, m.startFetch(req)

	case debounceMsg:
		return m.handleDebounce(msg)

	case fetchDoneMsg:
		return m.handleFetchDone(msg)

	case spinner.TickMsg:
		// Dropping the tick while idle ends the chain; startFetch restarts it.
		if !m.list.Loading {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}

	return m, nil
}

// handleKey processes keyboard input. Keys the picker does not bind go to
// the search input.
func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Cancel):
		m.cancelled = true
		m.debounce.Cancel()
		m.cancelInflight()
		return m, tea.Quit

	case key.Matches(msg, m.keys.Pick):
		if m.cursor < 0 || m.cursor >= len(m.list.Items) {
			return m, nil
		}
		item := m.list.Items[m.cursor]
		if item.AlreadyAdded {
			return m, nil
		}
		m.result = item
		m.picked = true
		m.debounce.Cancel()
		m.cancelInflight()
		return m, tea.Quit

	case key.Matches(msg, m.keys.Up):
		return m.moveCursor(-1)

	case key.Matches(msg, m.keys.Down):
		return m.moveCursor(1)

	case key.Matches(msg, m.keys.PageUp):
		return m.moveCursor(-m.listHeight())

	case key.Matches(msg, m.keys.PageDown):
		return m.moveCursor(m.listHeight())

	case key.Matches(msg, m.keys.Bottom):
		return m.moveCursor(len(m.list.Items))
	}

	before := m.input.Value()
	var inputCmd tea.Cmd
	m.input, inputCmd = m.input.Update(msg)
	if m.input.Value() == before {
		return m, inputCmd
	}
	return m, tea.Batch(inputCmd, m.startDebounce(m.input.Value()))
}

// moveCursor shifts the cursor by delta rows and requests the next page when
// the cursor gets close to the end of the loaded rows.
func (m Model) moveCursor(delta int) (tea.Model, tea.Cmd) {
	if len(m.list.Items) == 0 {
		return m, nil
	}
	m.cursor = min(max(m.cursor+delta, 0), len(m.list.Items)-1)
	m.scrollToCursor()
	return m, m.maybeLoadMore()
}

// maybeLoadMore issues the next page request when the cursor is within the
// lazy-load threshold of the last row. The list itself refuses while a fetch
// is in flight or every page is loaded.
func (m *Model) maybeLoadMore() tea.Cmd {
	if len(m.list.Items)-1-m.cursor >= m.threshold {
		return nil
	}
	next, req, ok := m.list.LoadMore()
	if !ok {
		return nil
	}
	m.list = next
	return m.startFetch(req)
}

// handleDebounce runs the search if the timer is still the latest one.
func (m Model) handleDebounce(msg debounceMsg) (tea.Model, tea.Cmd) {
	if !m.debounce.Accept(msg.id) {
		return m, nil
	}
	next, req := m.list.Search(msg.term)
	m.list = next
	return m, m.startFetch(req)
}

// handleFetchDone applies a settled fetch. Responses to superseded requests
// are dropped; failures are logged and otherwise only end the loading state.
func (m Model) handleFetchDone(msg fetchDoneMsg) (tea.Model, tea.Cmd) {
	if msg.err != nil {
		next, applied := m.list.Fail(msg.req)
		if !applied {
			rlog.LogFetchDiscarded(m.logger, m.source, msg.req, m.list.Seq())
			return m, nil
		}
		m.list = next
		m.cancelInflight()
		if !errors.Is(msg.err, context.Canceled) {
			rlog.LogFetchFailed(m.logger, m.source, msg.req, msg.err)
		}
		return m, nil
	}

	next, applied := m.list.Succeed(msg.req, msg.resp, m.selected)
	if !applied {
		rlog.LogFetchDiscarded(m.logger, m.source, msg.req, m.list.Seq())
		return m, nil
	}
	m.list = next
	m.cancelInflight()
	rlog.LogFetchSettled(m.logger, m.source, msg.req, len(m.list.Items), m.list.Pagination.TotalElements)

	if !msg.req.Concat {
		m.cursor = 0
		m.offset = 0
	}
	m.clampCursor()
	return m, nil
}

// startDebounce re-arms the search timer and returns a tea.Tick that fires
// with the armed token.
func (m *Model) startDebounce(term string) tea.Cmd {
	id := m.debounce.Arm()
	return tea.Tick(m.debounce.Interval, func(time.Time) tea.Msg {
		return debounceMsg{id: id, term: term}
	})
}

// startFetch cancels any in-flight fetch and returns a tea.Cmd that runs req
// against the fetcher alongside a spinner tick.
func (m *Model) startFetch(req listctl.FetchRequest) tea.Cmd {
	m.cancelInflight()

	ctx, cancel := context.WithCancel(context.Background())
	m.cancelFetch = cancel
	rlog.LogFetchIssued(m.logger, m.source, req)

	f := m.fetcher
	fetch := func() tea.Msg {
		resp, err := f.Fetch(ctx, req)
		return fetchDoneMsg{req: req, resp: resp, err: err}
	}
	return tea.Batch(fetch, m.spinner.Tick)
}

// cancelInflight cancels any in-progress fetch context.
func (m *Model) cancelInflight() {
	if m.cancelFetch != nil {
		m.cancelFetch()
		m.cancelFetch = nil
	}
}

// clampCursor keeps the cursor within the loaded rows.
func (m *Model) clampCursor() {
	if len(m.list.Items) == 0 {
		m.cursor = -1
		m.offset = 0
		return
	}
	m.cursor = min(max(m.cursor, 0), len(m.list.Items)-1)
	m.scrollToCursor()
}

// scrollToCursor moves the viewport so the cursor row is visible.
func (m *Model) scrollToCursor() {
	h := m.listHeight()
	if m.cursor < m.offset {
		m.offset = max(m.cursor, 0)
	}
	if m.cursor >= m.offset+h {
		m.offset = m.cursor - h + 1
	}
}

// listHeight returns the number of visible list rows: the terminal height
// minus the title, the search line and the footer.
func (m Model) listHeight() int {
	const chrome = 3
	h := m.height - chrome
	if h < 1 {
		h = 10 // Sensible default before first WindowSizeMsg
	}
	return h
}

// --- View rendering ---

// View implements tea.Model.
func (m Model) View() string {
	var b strings.Builder

	if m.title != "" {
		b.WriteString(titleStyle.Render(m.title))
		b.WriteRune('\n')
	}
	b.WriteString(m.input.View())
	b.WriteRune('\n')
	b.WriteString(m.viewContent())
	b.WriteRune('\n')
	b.WriteString(m.viewFooter())

	return b.String()
}

// viewContent renders the rows, the preloader or the empty message.
func (m Model) viewContent() string {
	if len(m.list.Items) == 0 {
		if m.list.Loading {
			return m.spinner.View() + dimStyle.Render(" Loading...")
		}
		return dimStyle.Render(m.noResults)
	}
	return m.viewList()
}

// viewList renders the visible window of rows with the cursor marker.
func (m Model) viewList() string {
	end := min(m.offset+m.listHeight(), len(m.list.Items))
	rows := make([]string, 0, end-m.offset)
	for i := m.offset; i < end; i++ {
		rows = append(rows, m.viewRow(m.list.Items[i], i == m.cursor))
	}
	return strings.Join(rows, "\n")
}

// viewRow renders one item as "marker name  owner".
func (m Model) viewRow(item listctl.Item, active bool) string {
	marker := "  "
	if active {
		marker = "> "
	}

	name := Clean(item.Name)
	owner := Clean(item.Owner)
	suffix := ""
	if item.AlreadyAdded {
		suffix = " (added)"
	}

	if m.width > 0 {
		room := m.width - len(marker) - len(suffix)
		if owner != "" {
			ownerRoom := min(len(owner)+2, room/3)
			owner = Truncate(owner, max(ownerRoom-2, 0))
			room -= ownerRoom
		}
		name = MiddleTruncate(name, max(room, 1))
	}

	switch {
	case item.AlreadyAdded:
		return addedStyle.Render(marker+name) + dimStyle.Render(suffix)
	case active:
		return activeStyle.Render(marker+name) + ownerPart(owner)
	default:
		return normalStyle.Render(marker+name) + ownerPart(owner)
	}
}

func ownerPart(owner string) string {
	if owner == "" {
		return ""
	}
	return "  " + ownerStyle.Render(owner)
}

// viewFooter renders the loaded/total count, with the spinner while a page
// is in flight.
func (m Model) viewFooter() string {
	status := fmt.Sprintf("%d of %d", len(m.list.Items), m.list.Pagination.TotalElements)
	if m.list.Loading && len(m.list.Items) > 0 {
		status = m.spinner.View() + " " + status
	}
	return footerStyle.Render(status + "  ↑/↓ move · enter pick · esc cancel")
}
