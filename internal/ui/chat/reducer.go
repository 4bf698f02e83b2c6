package chat

import (
	"fmt"
	"time"

	"phoneclaw/internal/agent/call"
)

// Reduce applies an event to the UI state.
func Reduce(state State, event Event) State {
	switch event.Kind {
	case EventRunStart:
		state.Running = true
		state.RunID = event.RunID
		state.Step = 0
		state.ToolCalls = 0
		state.StartedAt = event.At
		state.streaming = -1
		state.Entries = append(state.Entries, Entry{Kind: EntryUser, Text: event.Text})
	case EventThinking:
		state.Step++
		state.streaming = -1
	case EventStreamChunk:
		if state.streaming < 0 {
			state.Entries = append(state.Entries, Entry{Kind: EntryAssistant})
			state.streaming = len(state.Entries) - 1
		}
		state.Entries[state.streaming].Text += event.Text
	case EventToolCall:
		state.streaming = -1
		state.ToolCalls++
		state.Entries = append(state.Entries, Entry{
			Kind:      EntryTool,
			Tool:      event.Name,
			Args:      formatArgs(event.Args),
			StartedAt: event.At,
		})
	case EventToolResult:
		if index := pendingTool(state.Entries, event.Name); index >= 0 {
			entry := state.Entries[index]
			entry.Result = event.Text
			entry.Done = true
			entry.FinishedAt = event.At
			state.Entries[index] = entry
		}
	case EventResponse:
		if state.streaming >= 0 && state.Entries[state.streaming].Text == event.Text {
			break
		}
		kind := EntryAssistant
		if event.Text == call.StoppedMessage {
			kind = EntryNotice
		}
		state.Entries = append(state.Entries, Entry{Kind: kind, Text: event.Text})
		state.streaming = -1
	case EventError:
		state.streaming = -1
		state.Entries = append(state.Entries, Entry{Kind: EntryError, Text: event.Text})
	case EventRunEnd:
		state.Running = false
		state.streaming = -1
		state.LastStatus = event.Status
		if event.RunID != "" {
			state.RunID = event.RunID
		}
		if summary := formatRunEnd(event); summary != "" {
			state.Entries = append(state.Entries, Entry{Kind: EntryNotice, Text: summary})
		}
	case EventNotice:
		state.Entries = append(state.Entries, Entry{Kind: EntryNotice, Text: event.Text})
	}
	return state
}

// pendingTool finds the latest unfinished call to name.
func pendingTool(entries []Entry, name string) int {
	for i := len(entries) - 1; i >= 0; i-- {
		entry := entries[i]
		if entry.Kind == EntryTool && !entry.Done && (name == "" || entry.Tool == name) {
			return i
		}
	}
	return -1
}

// formatRunEnd creates the footer line for a finished run.
func formatRunEnd(event Event) string {
	if event.Status == "" {
		return ""
	}
	return fmt.Sprintf("%s · %d steps · %d tool calls · %s",
		event.Status,
		event.Metrics.Steps,
		totalCalls(event.Metrics),
		formatDuration(event.Metrics.WallTime),
	)
}

func totalCalls(metrics call.RunMetrics) int {
	total := 0
	for _, count := range metrics.ToolCalls {
		total += count
	}
	return total
}

// formatDuration renders a rounded duration for display.
func formatDuration(duration time.Duration) string {
	if duration <= 0 {
		return "0s"
	}
	return duration.Round(100 * time.Millisecond).String()
}
