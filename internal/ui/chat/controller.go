// Package chat is the terminal adapter for agent runs: a Bubble Tea
// transcript fed by the run observer, with an optional input line for
// interactive sessions.
package chat

import (
	"io"
	"os"
	"sync"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"phoneclaw/internal/agent/call"
)

// Controller runs the chat UI and implements call.Observer.
type Controller struct {
	events  chan Event
	program *tea.Program
	done    chan struct{}
	err     error

	mu     sync.Mutex
	closed bool
}

var (
	_ call.Observer       = (*Controller)(nil)
	_ call.StreamObserver = (*Controller)(nil)
)

// Start launches a chat UI controller that writes to stdout.
func Start(stdout io.Writer, opts Options) *Controller {
	if stdout == nil {
		stdout = os.Stdout
	}
	events := make(chan Event, 1024)
	controller := &Controller{
		events: events,
		done:   make(chan struct{}),
	}
	model := NewModel(events, opts)
	model.ctrl = controller
	program := tea.NewProgram(model, tea.WithOutput(stdout), tea.WithAltScreen())
	controller.program = program
	go func() {
		_, controller.err = program.Run()
		close(controller.done)
	}()
	return controller
}

// Close signals the UI to stop once queued events are drawn.
func (c *Controller) Close() {
	if c == nil {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.closed {
		c.closed = true
		close(c.events)
	}
}

// Wait blocks until the UI has exited and returns the program error.
func (c *Controller) Wait() error {
	if c == nil {
		return nil
	}
	<-c.done
	return c.err
}

// Done is closed when the UI has exited.
func (c *Controller) Done() <-chan struct{} {
	return c.done
}

// RunStarted records the instruction of a run started outside the input line.
func (c *Controller) RunStarted(runID, text string) {
	c.send(Event{Kind: EventRunStart, RunID: runID, Text: text})
}

// RunFinished records the outcome of a run.
func (c *Controller) RunFinished(runID string, result call.CallResult) {
	c.send(Event{Kind: EventRunEnd, RunID: runID, Status: result.Status, Metrics: result.Metrics})
}

// Notice shows a line outside any run.
func (c *Controller) Notice(text string) {
	c.send(Event{Kind: EventNotice, Text: text})
}

func (c *Controller) OnThinking() {
	c.send(Event{Kind: EventThinking})
}

func (c *Controller) OnToolCall(name string, args map[string]any) {
	c.send(Event{Kind: EventToolCall, Name: name, Args: args})
}

func (c *Controller) OnToolResult(name, result string) {
	c.send(Event{Kind: EventToolResult, Name: name, Text: result})
}

func (c *Controller) OnStreamChunk(fragment string) {
	c.send(Event{Kind: EventStreamChunk, Text: fragment})
}

func (c *Controller) OnResponse(text string) {
	c.send(Event{Kind: EventResponse, Text: text})
}

func (c *Controller) OnError(message string) {
	c.send(Event{Kind: EventError, Text: message})
}

// send enqueues an event. It only blocks while the UI is alive and behind.
func (c *Controller) send(event Event) {
	if c == nil {
		return
	}
	if event.At.IsZero() {
		event.At = time.Now()
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	select {
	case c.events <- event:
	case <-c.done:
	}
}
