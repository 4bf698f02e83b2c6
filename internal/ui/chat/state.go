package chat

import (
	"time"

	"phoneclaw/internal/agent/call"
)

// EntryKind identifies a transcript line.
type EntryKind int

const (
	EntryUser EntryKind = iota
	EntryAssistant
	EntryTool
	EntryError
	EntryNotice
)

// Entry is one block of the on-screen transcript.
type Entry struct {
	Kind       EntryKind
	Text       string
	Tool       string
	Args       string
	Result     string
	Done       bool
	StartedAt  time.Time
	FinishedAt time.Time
}

// State captures the chat UI state.
type State struct {
	RunID      string
	Running    bool
	Step       int
	StartedAt  time.Time
	ToolCalls  int
	LastStatus call.Status
	Entries    []Entry

	// streaming indexes the assistant entry receiving deltas, or -1.
	streaming int
}

// NewState returns an empty transcript.
func NewState() State {
	return State{streaming: -1}
}
