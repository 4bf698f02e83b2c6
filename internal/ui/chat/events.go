package chat

import (
	"time"

	"phoneclaw/internal/agent/call"
)

// EventKind identifies the type of chat UI event.
type EventKind int

const (
	// EventRunStart records the instruction a run was started with.
	EventRunStart EventKind = iota
	// EventThinking signals a model call for the next step.
	EventThinking
	// EventToolCall signals a tool invocation.
	EventToolCall
	// EventToolResult delivers a tool's output.
	EventToolResult
	// EventStreamChunk delivers a content delta.
	EventStreamChunk
	// EventResponse delivers the final answer or the stop notice.
	EventResponse
	// EventError delivers an error or the step-limit notice.
	EventError
	// EventRunEnd signals run completion.
	EventRunEnd
	// EventNotice shows a line that is not part of a run.
	EventNotice
)

// Event carries a UI update payload.
type Event struct {
	Kind    EventKind
	RunID   string
	Name    string
	Args    map[string]any
	Text    string
	Status  call.Status
	Metrics call.RunMetrics
	At      time.Time
}
