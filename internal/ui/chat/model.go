package chat

import (
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// BusyNotice is shown when input arrives while a run is active.
const BusyNotice = "A task is still running. Press esc to stop it first."

// Options configures the chat UI model.
type Options struct {
	Title   string
	NoColor bool
	// Interactive shows an input line; Enter submits a new instruction.
	Interactive bool
	// Submit starts a run for text and reports it through ctrl. It is
	// called off the UI goroutine.
	Submit func(text string, ctrl *Controller)
	// Abort stops the current run. It is called off the UI goroutine.
	Abort        func()
	TickInterval time.Duration
}

// Model renders the chat transcript using Bubble Tea.
type Model struct {
	state    State
	events   <-chan Event
	opts     Options
	ctrl     *Controller
	input    textinput.Model
	viewport viewport.Model
	spinner  spinner.Model
	now      time.Time
	width    int
	height   int
}

// NewModel constructs a chat UI model for an event stream.
func NewModel(events <-chan Event, opts Options) Model {
	if opts.TickInterval <= 0 {
		opts.TickInterval = 200 * time.Millisecond
	}
	if strings.TrimSpace(opts.Title) == "" {
		opts.Title = "PhoneClaw"
	}
	input := textinput.New()
	input.Placeholder = "Tell the phone what to do"
	input.Prompt = "> "
	input.CharLimit = 4000
	if opts.Interactive {
		input.Focus()
	}
	spin := spinner.New(spinner.WithSpinner(spinner.Dot))
	if !opts.NoColor {
		spin.Style = lipgloss.NewStyle().Foreground(colorHeader)
	}
	return Model{
		state:    NewState(),
		events:   events,
		opts:     opts,
		input:    input,
		viewport: viewport.New(80, 20),
		spinner:  spin,
		now:      time.Now(),
	}
}

// State returns the current transcript state.
func (m Model) State() State {
	return m.state
}

// Init starts ticking and waits for the first event.
func (m Model) Init() tea.Cmd {
	cmds := []tea.Cmd{waitForEvent(m.events), tick(m.opts.TickInterval), m.spinner.Tick}
	if m.opts.Interactive {
		cmds = append(cmds, textinput.Blink)
	}
	return tea.Batch(cmds...)
}

// Update consumes UI events, key presses and timer ticks.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch typed := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = typed.Width
		m.height = typed.Height
		m.input.Width = max(typed.Width-4, 10)
		m.viewport.Width = typed.Width
		m.viewport.Height = max(typed.Height-m.chromeHeight(), 1)
		m.refresh()
		return m, nil
	case tea.KeyMsg:
		return m.handleKey(typed)
	case EventMsg:
		m.state = Reduce(m.state, typed.Event)
		m.refresh()
		return m, waitForEvent(m.events)
	case tickMsg:
		m.now = time.Time(typed)
		return m, tick(m.opts.TickInterval)
	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(typed)
		return m, cmd
	}
	if m.opts.Interactive {
		var cmd tea.Cmd
		m.input, cmd = m.input.Update(msg)
		return m, cmd
	}
	return m, nil
}

func (m Model) handleKey(key tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch key.String() {
	case "ctrl+c":
		if m.state.Running {
			return m, m.abortCmd()
		}
		return m, tea.Quit
	case "esc":
		if m.state.Running {
			return m, m.abortCmd()
		}
		return m, nil
	case "pgup", "pgdown":
		var cmd tea.Cmd
		m.viewport, cmd = m.viewport.Update(key)
		return m, cmd
	case "enter":
		if !m.opts.Interactive {
			return m, nil
		}
		return m.submit()
	}
	if !m.opts.Interactive {
		return m, nil
	}
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(key)
	return m, cmd
}

// submit starts a run for the input line. The user line is recorded here so
// it precedes any event the run produces.
func (m Model) submit() (tea.Model, tea.Cmd) {
	text := strings.TrimSpace(m.input.Value())
	if text == "" {
		return m, nil
	}
	m.input.Reset()
	switch text {
	case "/quit", "/exit":
		return m, tea.Quit
	case "/stop", "/abort":
		return m, m.abortCmd()
	}
	if m.state.Running {
		m.state = Reduce(m.state, Event{Kind: EventNotice, Text: BusyNotice})
		m.refresh()
		return m, nil
	}
	m.state = Reduce(m.state, Event{Kind: EventRunStart, Text: text, At: time.Now()})
	m.refresh()
	submit, ctrl := m.opts.Submit, m.ctrl
	if submit == nil {
		return m, nil
	}
	return m, func() tea.Msg {
		submit(text, ctrl)
		return nil
	}
}

func (m Model) abortCmd() tea.Cmd {
	abort := m.opts.Abort
	if abort == nil {
		return nil
	}
	return func() tea.Msg {
		abort()
		return nil
	}
}

// View renders the chat UI.
func (m Model) View() string {
	parts := []string{
		renderHeader(m.opts.Title, m.state, m.now, m.opts.NoColor),
		m.viewport.View(),
	}
	if footer := renderFooter(m.state, m.spinner.View(), m.opts.Interactive, m.opts.NoColor); footer != "" {
		parts = append(parts, footer)
	}
	if m.opts.Interactive {
		parts = append(parts, m.input.View())
	}
	return lipgloss.JoinVertical(lipgloss.Left, parts...)
}

// chromeHeight is the number of lines around the viewport.
func (m Model) chromeHeight() int {
	if m.opts.Interactive {
		return 3
	}
	return 2
}

// refresh re-renders the transcript and follows the tail.
func (m *Model) refresh() {
	m.viewport.SetContent(renderTranscript(m.state, m.viewport.Width, m.opts.NoColor))
	m.viewport.GotoBottom()
}

// EventMsg wraps a UI event for Bubble Tea.
type EventMsg struct {
	Event Event
}

// tickMsg carries a clock tick for updates.
type tickMsg time.Time

// waitForEvent blocks until a UI event is available.
func waitForEvent(events <-chan Event) tea.Cmd {
	return func() tea.Msg {
		if events == nil {
			return nil
		}
		event, ok := <-events
		if !ok {
			return tea.Quit()
		}
		return EventMsg{Event: event}
	}
}

// tick emits a periodic tick message.
func tick(interval time.Duration) tea.Cmd {
	return tea.Tick(interval, func(t time.Time) tea.Msg { return tickMsg(t) })
}
