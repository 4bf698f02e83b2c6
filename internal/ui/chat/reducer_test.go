package chat

import (
	"strings"
	"testing"
	"time"

	"phoneclaw/internal/agent/call"
	"phoneclaw/internal/testutil"
)

// TestReduceRunLifecycle verifies a run with a tool call and a streamed answer.
func TestReduceRunLifecycle(t *testing.T) {
	runWithTimeout(t, time.Second, func() {
		start := time.Now()
		state := NewState()
		state = Reduce(state, Event{Kind: EventRunStart, Text: "open settings", At: start})
		state = Reduce(state, Event{Kind: EventThinking})
		state = Reduce(state, Event{Kind: EventToolCall, Name: "launchApp", Args: map[string]any{"packageName": "com.android.settings"}, At: start})
		state = Reduce(state, Event{Kind: EventToolResult, Name: "launchApp", Text: "true", At: start.Add(300 * time.Millisecond)})
		state = Reduce(state, Event{Kind: EventThinking})
		state = Reduce(state, Event{Kind: EventStreamChunk, Text: "Settings "})
		state = Reduce(state, Event{Kind: EventStreamChunk, Text: "opened"})
		state = Reduce(state, Event{Kind: EventResponse, Text: "Settings opened"})
		state = Reduce(state, Event{Kind: EventRunEnd, RunID: "r1", Status: call.StatusCompleted, Metrics: call.RunMetrics{Steps: 2, ToolCalls: map[string]int{"launchApp": 1}}})

		if state.Running || state.Step != 2 || state.ToolCalls != 1 || state.RunID != "r1" {
			t.Fatalf("unexpected state %+v", state)
		}
		kinds := []EntryKind{EntryUser, EntryTool, EntryAssistant, EntryNotice}
		if len(state.Entries) != len(kinds) {
			t.Fatalf("expected %d entries, got %+v", len(kinds), state.Entries)
		}
		for i, kind := range kinds {
			if state.Entries[i].Kind != kind {
				t.Fatalf("entry %d: expected kind %d, got %d", i, kind, state.Entries[i].Kind)
			}
		}
		tool := state.Entries[1]
		if !tool.Done || tool.Result != "true" || tool.Args != `packageName="com.android.settings"` {
			t.Fatalf("unexpected tool entry %+v", tool)
		}
		if state.Entries[2].Text != "Settings opened" {
			t.Fatalf("expected streamed text once, got %q", state.Entries[2].Text)
		}
		if !strings.HasPrefix(state.Entries[3].Text, "completed · 2 steps · 1 tool calls") {
			t.Fatalf("unexpected summary %q", state.Entries[3].Text)
		}
	})
}

// TestReduceBlockingResponse verifies non-streamed answers are appended.
func TestReduceBlockingResponse(t *testing.T) {
	runWithTimeout(t, time.Second, func() {
		state := NewState()
		state = Reduce(state, Event{Kind: EventRunStart, Text: "hi"})
		state = Reduce(state, Event{Kind: EventThinking})
		state = Reduce(state, Event{Kind: EventResponse, Text: "Done."})
		last := state.Entries[len(state.Entries)-1]
		if last.Kind != EntryAssistant || last.Text != "Done." {
			t.Fatalf("unexpected entry %+v", last)
		}
	})
}

// TestReduceStopAndErrors verifies stop notices and errors get their own entries.
func TestReduceStopAndErrors(t *testing.T) {
	runWithTimeout(t, time.Second, func() {
		state := NewState()
		state = Reduce(state, Event{Kind: EventRunStart, Text: "hi"})
		state = Reduce(state, Event{Kind: EventThinking})
		state = Reduce(state, Event{Kind: EventStreamChunk, Text: "partial"})
		state = Reduce(state, Event{Kind: EventResponse, Text: call.StoppedMessage})
		state = Reduce(state, Event{Kind: EventError, Text: "API error 500: boom"})
		n := len(state.Entries)
		if state.Entries[n-2].Kind != EntryNotice || state.Entries[n-2].Text != call.StoppedMessage {
			t.Fatalf("expected stop notice, got %+v", state.Entries[n-2])
		}
		if state.Entries[n-1].Kind != EntryError {
			t.Fatalf("expected error entry, got %+v", state.Entries[n-1])
		}
	})
}

// TestReduceToolResultMatchesLatestPending verifies results attach to the open call.
func TestReduceToolResultMatchesLatestPending(t *testing.T) {
	runWithTimeout(t, time.Second, func() {
		state := NewState()
		state = Reduce(state, Event{Kind: EventToolCall, Name: "tap"})
		state = Reduce(state, Event{Kind: EventToolResult, Name: "tap", Text: "true"})
		state = Reduce(state, Event{Kind: EventToolCall, Name: "tap"})
		state = Reduce(state, Event{Kind: EventToolResult, Name: "tap", Text: "false"})
		if state.Entries[0].Result != "true" || state.Entries[1].Result != "false" {
			t.Fatalf("unexpected results %+v", state.Entries)
		}
	})
}

func TestFormatResultKeepsHead(t *testing.T) {
	got := formatResult("a\nb\nc\nd\ne\nf")
	if got != "a\nb\nc\nd\n… 2 more lines" {
		t.Fatalf("unexpected result %q", got)
	}
}

// runWithTimeout executes a test body with a timeout.
func runWithTimeout(t *testing.T, timeout time.Duration, fn func()) {
	t.Helper()
	ctx := testutil.Context(t, timeout)
	done := make(chan struct{})
	go func() {
		defer close(done)
		fn()
	}()
	select {
	case <-done:
	case <-ctx.Done():
		t.Fatalf("test timed out")
	}
}
