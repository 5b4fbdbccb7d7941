package ui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/glamour"
	"github.com/desertthunder/schemax/internal/models"
	"github.com/desertthunder/schemax/internal/tasks"
)

// Tab selects the result section shown in the viewport.
type Tab int

const (
	DictionaryTab Tab = iota
	DiagramTab
	SchemaTab
)

var tabNames = []string{"Data Dictionary", "ER Diagram", "Schema JSON"}

func (t Tab) String() string { return tabNames[t] }

// Options configures a [Model].
type Options struct {
	// Request is submitted on start and on every resubmit. Ignored when TaskID is set.
	Request models.AnalysisRequest
	// TaskID attaches to an existing task instead of submitting.
	TaskID string
	// OnSettled is called on the UI goroutine after each run ends.
	OnSettled func(state *tasks.State, err error)
}

// Model represents the TUI application state.
type Model struct {
	ctx     context.Context
	cancel  context.CancelFunc
	engine  tasks.Engine
	opts    Options
	width   int
	height  int
	state   tasks.State
	err     error
	running bool
	updates chan tasks.State
	results chan runResult
	tab     Tab
	bar     progress.Model
	spin    spinner.Model
	vp      viewport.Model
	md      *glamour.TermRenderer
	help    help.Model
	keys    keyMap
}

// NewModel creates a new TUI model that tracks one analysis at a time.
func NewModel(ctx context.Context, engine tasks.Engine, opts Options) *Model {
	spin := spinner.New()
	spin.Spinner = spinner.Dot
	spin.Style = styles.title.UnsetMarginBottom()

	return &Model{
		ctx:    ctx,
		engine: engine,
		opts:   opts,
		state:  tasks.State{Phase: tasks.Idle, SubmitEnabled: true},
		bar:    progress.New(progress.WithDefaultGradient(), progress.WithWidth(40)),
		spin:   spin,
		vp:     viewport.New(80, 20),
		help:   help.New(),
		keys:   newKeyMap(),
	}
}

// State returns the latest tracked state.
func (m *Model) State() tasks.State { return m.state }

// Err returns the error of the last finished run.
func (m *Model) Err() error { return m.err }

// Init starts the first run.
func (m *Model) Init() tea.Cmd {
	return tea.Batch(m.spin.Tick, m.start())
}

// Update handles incoming messages and updates the model state.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.resize(msg.Width, msg.Height)
		return m, nil

	case tea.KeyMsg:
		return m.handleKeys(msg)

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spin, cmd = m.spin.Update(msg)
		return m, cmd

	case Msg:
		switch msg.kind {
		case MsgStateUpdate:
			m.apply(msg.data.(tasks.State))
			return m, m.waitForState()
		case MsgRunComplete:
			res := msg.data.(runResult)
			m.running = false
			m.err = res.err
			if res.state != nil {
				m.apply(*res.state)
			}
			if m.cancel != nil {
				m.cancel()
			}
			if m.opts.OnSettled != nil {
				m.opts.OnSettled(res.state, res.err)
			}
			return m, nil
		}
	}

	var cmd tea.Cmd
	m.vp, cmd = m.vp.Update(msg)
	return m, cmd
}

// View renders the progress section, then the result or error section.
func (m *Model) View() string {
	var b strings.Builder

	title := "schemax"
	if m.state.TaskID != "" {
		title = fmt.Sprintf("schemax · task %s", m.state.TaskID)
	}
	b.WriteString(styles.title.Render(title))
	b.WriteString("\n")

	if m.state.ProgressVisible {
		b.WriteString(m.renderProgress())
		b.WriteString("\n")
	}

	if m.state.Err != "" {
		b.WriteString(styles.failed.Render("Error: " + m.state.Err))
		b.WriteString("\n")
	}

	if m.state.ResultVisible && m.state.Result != nil {
		b.WriteString(m.renderResult())
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(m.help.ShortHelpView(m.helpKeys()))
	return b.String()
}

func (m *Model) handleKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.quit):
		if m.cancel != nil {
			m.cancel()
		}
		return m, tea.Quit
	case key.Matches(msg, m.keys.resubmit):
		if m.canResubmit() {
			return m, m.start()
		}
		return m, nil
	case key.Matches(msg, m.keys.nextTab):
		m.selectTab((m.tab + 1) % Tab(len(tabNames)))
		return m, nil
	case key.Matches(msg, m.keys.prevTab):
		m.selectTab((m.tab + Tab(len(tabNames)) - 1) % Tab(len(tabNames)))
		return m, nil
	}

	var cmd tea.Cmd
	m.vp, cmd = m.vp.Update(msg)
	return m, cmd
}

func (m *Model) canResubmit() bool {
	return !m.running && m.state.SubmitEnabled && m.opts.TaskID == ""
}

// start launches a run in the background and returns the command that waits for its first update.
func (m *Model) start() tea.Cmd {
	ctx, cancel := context.WithCancel(m.ctx)
	m.cancel = cancel
	m.running = true
	m.err = nil
	m.state.SubmitEnabled = false

	updates := make(chan tasks.State, 32)
	results := make(chan runResult, 1)
	m.updates, m.results = updates, results

	go func() {
		var (
			state *tasks.State
			err   error
		)
		if m.opts.TaskID != "" {
			state, err = m.engine.Watch(ctx, m.opts.TaskID, updates)
		} else {
			state, err = m.engine.Analyze(ctx, m.opts.Request, updates)
		}
		results <- runResult{state: state, err: err}
		close(updates)
	}()

	return m.waitForState()
}

func (m *Model) waitForState() tea.Cmd {
	updates, results := m.updates, m.results
	return func() tea.Msg {
		state, ok := <-updates
		if !ok {
			res := <-results
			return runCompleteMsg(res.state, res.err)
		}
		return stateUpdateMsg(state)
	}
}

func (m *Model) apply(state tasks.State) {
	hadResult := m.state.Result
	m.state = state
	if state.Result != nil && state.Result != hadResult {
		m.tab = DictionaryTab
		m.refreshContent()
	}
}

func (m *Model) selectTab(t Tab) {
	if m.state.Result == nil {
		return
	}
	m.tab = t
	m.refreshContent()
}

func (m *Model) resize(width, height int) {
	m.width, m.height = width, height
	m.bar.Width = max(width-20, 10)
	m.vp.Width = max(width-2, 20)
	m.vp.Height = max(height-12, 5)
	m.md = nil
	m.refreshContent()
}

func (m *Model) refreshContent() {
	if m.state.Result == nil {
		m.vp.SetContent("")
		return
	}

	view := m.state.Result
	switch m.tab {
	case DictionaryTab:
		m.vp.SetContent(m.renderMarkdown(view.DictMarkdown))
	case DiagramTab:
		m.vp.SetContent(view.ERMermaid)
	case SchemaTab:
		m.vp.SetContent(view.SchemaJSON)
	}
	m.vp.GotoTop()
}

// renderMarkdown renders dictionary markup for the terminal, falling back to the raw text.
func (m *Model) renderMarkdown(md string) string {
	if m.md == nil {
		r, err := glamour.NewTermRenderer(
			glamour.WithStylePath("dark"),
			glamour.WithWordWrap(max(m.vp.Width-4, 20)),
		)
		if err != nil {
			return md
		}
		m.md = r
	}

	out, err := m.md.Render(md)
	if err != nil {
		return md
	}
	return out
}

func (m *Model) renderProgress() string {
	percent := float64(m.state.Percent) / 100
	percent = min(max(percent, 0), 1)

	status := m.state.Message
	if m.state.Channel != "" {
		status = fmt.Sprintf("%s %s", status, styles.channelStyle(m.state.Channel).Render("("+string(m.state.Channel)+")"))
	}

	spin := ""
	if m.running {
		spin = m.spin.View() + " "
	}
	return fmt.Sprintf("%s%s\n%s", spin, m.bar.ViewAs(percent), status)
}

func (m *Model) renderResult() string {
	s := m.state.Result.Stats
	stats := styles.completed.Render(fmt.Sprintf("✓ Tables: %d  Relations: %d  Enum tables: %d", s.Tables, s.Relations, s.EnumTables))

	tabs := make([]string, len(tabNames))
	for i, name := range tabNames {
		if Tab(i) == m.tab {
			tabs[i] = styles.activeTab.Render(name)
		} else {
			tabs[i] = styles.tab.Render(name)
		}
	}

	return fmt.Sprintf("%s\n\n%s\n%s", stats, strings.Join(tabs, " "), m.vp.View())
}

func (m *Model) helpKeys() []key.Binding {
	keys := []key.Binding{}
	if m.state.ResultVisible {
		keys = append(keys, m.keys.nextTab, m.keys.up, m.keys.down)
	}
	if m.canResubmit() {
		keys = append(keys, m.keys.resubmit)
	}
	return append(keys, m.keys.quit)
}
