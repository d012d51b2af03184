package ui

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"

	"github.com/five82/collfilter/internal/controller"
	"github.com/five82/collfilter/internal/filter"
	"github.com/five82/collfilter/internal/logtail"
	"github.com/five82/collfilter/internal/prefs"
	"github.com/five82/collfilter/internal/render"
	"github.com/five82/collfilter/internal/state"
	"github.com/five82/collfilter/internal/view"
)

// Submitter runs one filter request.
type Submitter interface {
	Submit(ctx context.Context, criteria filter.Criteria) (controller.Result, error)
}

// Options configures the UI.
type Options struct {
	Context   context.Context
	Submitter Submitter
	Status    *state.Store
	Buffer    *render.Buffer
	Tags      []string
	// TagUpdates delivers refreshed tag lists while the program runs.
	TagUpdates <-chan []string
	PartyA     string
	PartyB     string
	LogPath    string
	Prefs      prefs.Prefs
	PrefsPath  string
	PollTick   time.Duration
	// CopyText writes to the system clipboard; nil uses clipboard.WriteAll.
	CopyText func(string) error
	Logger   *zap.Logger
}

type focus int

const (
	focusTag focus = iota
	focusSparesA
	focusSparesB
	focusResults
	focusCount
)

const (
	defaultPollTick = 100 * time.Millisecond
	logTailLines    = 200
)

// Model is the root application state for Bubble Tea.
type Model struct {
	ctx       context.Context
	submitter Submitter
	status    *state.Store
	buffer    *render.Buffer
	logger    *zap.Logger
	prefs     prefs.Prefs
	prefsPath string
	logPath   string
	pollTick  time.Duration
	partyA    string
	partyB    string
	knownTags int
	tagUpdate <-chan []string
	copyText  func(string) error

	theme  Theme
	keys   keyMap
	help   help.Model
	width  int
	height int
	ready  bool
	focus  focus

	tagInput textinput.Model
	sparesA  bool
	sparesB  bool

	// pending is set from submit until the request returns, so a second
	// submit is refused even before the next status snapshot arrives.
	pending   bool
	spinner   spinner.Model
	snapshot  state.Snapshot
	lastErr   error
	notice    string
	rows      []view.Descriptor
	cursor    int
	version   uint64
	results   viewport.Model
	showLogs  bool
	logs      viewport.Model
	logLines  []logtail.Entry
	showHelp  bool
	updatedAt time.Time
}

// New creates a new Bubble Tea model.
func New(opts Options) Model {
	ctx := opts.Context
	if ctx == nil {
		ctx = context.Background()
	}
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	pollTick := opts.PollTick
	if pollTick <= 0 {
		pollTick = defaultPollTick
	}
	copyText := opts.CopyText
	if copyText == nil {
		copyText = clipboard.WriteAll
	}
	prefsPath := opts.PrefsPath
	if prefsPath == "" {
		prefsPath = prefs.DefaultPath()
	}

	keys := defaultKeyMap()
	last := opts.Prefs.Last.Criteria()

	ti := textinput.New()
	ti.Prompt = "Tag: "
	ti.Placeholder = "any tag"
	ti.CharLimit = 120
	ti.ShowSuggestions = true
	ti.SetSuggestions(opts.Tags)
	ti.KeyMap.AcceptSuggestion = keys.Accept
	ti.SetValue(last.Tag)
	ti.Focus()

	sp := spinner.New(spinner.WithSpinner(spinner.Dot))

	return Model{
		ctx:       ctx,
		submitter: opts.Submitter,
		status:    opts.Status,
		buffer:    opts.Buffer,
		logger:    logger,
		prefs:     opts.Prefs,
		prefsPath: prefsPath,
		logPath:   opts.LogPath,
		pollTick:  pollTick,
		partyA:    opts.PartyA,
		partyB:    opts.PartyB,
		knownTags: len(opts.Tags),
		tagUpdate: opts.TagUpdates,
		copyText:  copyText,
		theme:     GetTheme(opts.Prefs.Theme),
		keys:      keys,
		help:      help.New(),
		tagInput:  ti,
		sparesA:   last.OnlySparesA,
		sparesB:   last.OnlySparesB,
		spinner:   sp,
	}
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	cmds := []tea.Cmd{
		textinput.Blink,
		tickCmd(m.pollTick),
	}
	if m.status != nil || m.buffer != nil {
		cmds = append(cmds, fetchSnapshotCmd(m.status, m.buffer, 0))
	}
	if m.tagUpdate != nil {
		cmds = append(cmds, waitForTagsCmd(m.tagUpdate))
	}
	return tea.Batch(cmds...)
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width
		m.ready = true
		m.layout()
		return m, nil

	case tickMsg:
		return m.handleTick()

	case snapshotMsg:
		m.applySnapshot(msg)
		return m, nil

	case submitDoneMsg:
		m.pending = false
		m.lastErr = msg.err
		if msg.err == nil {
			m.notice = ""
		}
		return m, fetchSnapshotCmd(m.status, m.buffer, m.version)

	case tagsMsg:
		m.tagInput.SetSuggestions(msg)
		m.knownTags = len(msg)
		return m, waitForTagsCmd(m.tagUpdate)

	case logLinesMsg:
		m.logLines = msg.entries
		m.updateLogViewport()
		return m, nil

	case spinner.TickMsg:
		if !m.busy() {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}

	if m.focus == focusTag {
		var cmd tea.Cmd
		m.tagInput, cmd = m.tagInput.Update(msg)
		return m, cmd
	}
	return m, nil
}

// View implements tea.Model.
func (m Model) View() string {
	if !m.ready {
		return "Loading..."
	}
	if m.showHelp {
		return m.renderHelp()
	}
	return m.renderMain()
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.Type == tea.KeyCtrlC {
		return m, tea.Quit
	}
	if m.showHelp {
		m.showHelp = false
		return m, nil
	}

	switch {
	case key.Matches(msg, m.keys.Submit):
		return m.submit()
	case key.Matches(msg, m.keys.Next):
		m.setFocus((m.focus + 1) % focusCount)
		return m, nil
	case key.Matches(msg, m.keys.Prev):
		m.setFocus((m.focus + focusCount - 1) % focusCount)
		return m, nil
	case key.Matches(msg, m.keys.SparesA):
		m.sparesA = !m.sparesA
		return m, nil
	case key.Matches(msg, m.keys.SparesB):
		m.sparesB = !m.sparesB
		return m, nil
	}

	if m.focus == focusTag {
		var cmd tea.Cmd
		m.tagInput, cmd = m.tagInput.Update(msg)
		return m, cmd
	}

	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.Help):
		m.showHelp = true
		return m, nil
	case key.Matches(msg, m.keys.CycleTheme):
		m.theme = GetTheme(NextTheme(m.theme.Name))
		m.prefs.Theme = m.theme.Name
		m.savePrefs()
		m.updateResultsViewport()
		return m, nil
	case key.Matches(msg, m.keys.Logs):
		m.showLogs = !m.showLogs
		m.layout()
		if m.showLogs {
			return m, readLogsCmd(m.logPath)
		}
		return m, nil
	case key.Matches(msg, m.keys.Toggle):
		switch m.focus {
		case focusSparesA:
			m.sparesA = !m.sparesA
		case focusSparesB:
			m.sparesB = !m.sparesB
		}
		return m, nil
	}

	if m.focus == focusResults {
		return m.handleResultsKey(msg)
	}
	return m, nil
}

func (m *Model) setFocus(f focus) {
	m.focus = f
	if f == focusTag {
		m.tagInput.Focus()
	} else {
		m.tagInput.Blur()
	}
}

// Criteria returns what the form would submit.
func (m Model) Criteria() filter.Criteria {
	return filter.Criteria{
		Tag:         m.tagInput.Value(),
		OnlySparesA: m.sparesA,
		OnlySparesB: m.sparesB,
	}.Normalized()
}

func (m Model) busy() bool {
	return m.pending || m.snapshot.Busy
}

// submit starts a request unless one is already running; the form is
// disabled while busy.
func (m Model) submit() (tea.Model, tea.Cmd) {
	if m.busy() {
		m.notice = "A request is already running"
		return m, nil
	}
	if m.submitter == nil {
		return m, nil
	}
	criteria := m.Criteria()
	m.tagInput.SetValue(criteria.Tag)
	m.pending = true
	m.notice = ""
	m.prefs.Last = prefs.FromCriteria(criteria)
	m.savePrefs()
	return m, tea.Batch(submitCmd(m.ctx, m.submitter, criteria), m.spinner.Tick)
}

func (m *Model) savePrefs() {
	if m.prefsPath == "" {
		return
	}
	if err := prefs.Save(m.prefsPath, m.prefs); err != nil {
		m.logger.Warn("save prefs", zap.String("path", m.prefsPath), zap.Error(err))
	}
}

func (m Model) handleTick() (tea.Model, tea.Cmd) {
	cmds := []tea.Cmd{fetchSnapshotCmd(m.status, m.buffer, m.version)}
	if m.showLogs {
		cmds = append(cmds, readLogsCmd(m.logPath))
	}
	cmds = append(cmds, tickCmd(m.pollTick))
	return m, tea.Batch(cmds...)
}

func (m *Model) applySnapshot(msg snapshotMsg) {
	m.snapshot = msg.status
	m.updatedAt = time.Now()
	if msg.rows != nil {
		m.rows = msg.rows
		m.version = msg.version
		if m.cursor >= len(m.rows) {
			m.cursor = max(len(m.rows)-1, 0)
		}
		m.updateResultsViewport()
	}
}

// errorText is the status line text for a failed request.
func errorText(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, controller.ErrBusy):
		return "A request is already running"
	default:
		return strings.TrimSpace(err.Error())
	}
}

// Messages

type tickMsg time.Time

type snapshotMsg struct {
	status  state.Snapshot
	rows    []view.Descriptor
	version uint64
}

type submitDoneMsg struct {
	result controller.Result
	err    error
}

type tagsMsg []string

type logLinesMsg struct {
	entries []logtail.Entry
}

// Commands

func tickCmd(d time.Duration) tea.Cmd {
	return tea.Tick(d, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

// fetchSnapshotCmd reads the status and, when the buffer changed since seen,
// its rows.
func fetchSnapshotCmd(status *state.Store, buffer *render.Buffer, seen uint64) tea.Cmd {
	return func() tea.Msg {
		var msg snapshotMsg
		if status != nil {
			msg.status = status.Snapshot()
		}
		if buffer != nil && (seen == 0 || buffer.Version() != seen) {
			msg.rows, msg.version = buffer.Snapshot()
		}
		return msg
	}
}

func submitCmd(ctx context.Context, s Submitter, criteria filter.Criteria) tea.Cmd {
	return func() tea.Msg {
		res, err := s.Submit(ctx, criteria)
		return submitDoneMsg{result: res, err: err}
	}
}

// waitForTagsCmd blocks until the next tag list arrives. A closed channel
// ends the subscription.
func waitForTagsCmd(ch <-chan []string) tea.Cmd {
	if ch == nil {
		return nil
	}
	return func() tea.Msg {
		tags, ok := <-ch
		if !ok {
			return nil
		}
		return tagsMsg(tags)
	}
}

func readLogsCmd(path string) tea.Cmd {
	if path == "" {
		return nil
	}
	return func() tea.Msg {
		entries, err := logtail.Read(path, logTailLines)
		if err != nil {
			entries = []logtail.Entry{{Raw: err.Error()}}
		}
		return logLinesMsg{entries: entries}
	}
}

// Run starts the Bubble Tea program and blocks until the user quits or ctx
// is cancelled.
func Run(opts Options) error {
	m := New(opts)
	progOpts := []tea.ProgramOption{tea.WithAltScreen()}
	if opts.Context != nil {
		progOpts = append(progOpts, tea.WithContext(opts.Context))
	}
	p := tea.NewProgram(m, progOpts...)
	_, err := p.Run()
	if errors.Is(err, tea.ErrProgramKilled) && opts.Context != nil && opts.Context.Err() != nil {
		return nil
	}
	return err
}
