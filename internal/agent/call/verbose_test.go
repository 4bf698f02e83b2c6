package call

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"phoneclaw/internal/agent"
	"phoneclaw/internal/agent/agenttest"
	"phoneclaw/internal/testutil"
)

// fakeTTY simulates a terminal writer for styling tests.
type fakeTTY struct {
	bytes.Buffer
}

func (t *fakeTTY) Fd() uintptr {
	return uintptr(1)
}

// TestVerboseNoColorDisablesStyling verifies no-color disables ANSI styling.
func TestVerboseNoColorDisablesStyling(t *testing.T) {
	t.Setenv("TERM", "xterm-256color")
	t.Setenv("NO_COLOR", "")
	t.Setenv("CLICOLOR", "1")

	origTerminal := isTerminal
	isTerminal = func(_ int) bool { return true }
	t.Cleanup(func() { isTerminal = origTerminal })

	tty := &fakeTTY{}
	logVerbose(RunOptions{Verbose: true, VerboseWriter: tty, NoColor: true}, styleHeadingPrompt, "hello")
	if strings.Contains(tty.String(), "\x1b[") {
		t.Fatalf("expected no ANSI codes when no-color is set, got %q", tty.String())
	}

	tty.Reset()
	logVerbose(RunOptions{Verbose: true, VerboseWriter: tty}, styleHeadingPrompt, "hello")
	if !strings.Contains(tty.String(), "\x1b[") {
		t.Fatalf("expected ANSI codes when styling is enabled, got %q", tty.String())
	}
}

// TestVerboseNoColorEnv verifies the NO_COLOR environment variable wins.
func TestVerboseNoColorEnv(t *testing.T) {
	t.Setenv("NO_COLOR", "1")
	origTerminal := isTerminal
	isTerminal = func(_ int) bool { return true }
	t.Cleanup(func() { isTerminal = origTerminal })

	tty := &fakeTTY{}
	logVerbose(RunOptions{Verbose: true, VerboseWriter: tty}, styleHeadingError, "x")
	if strings.Contains(tty.String(), "\x1b[") {
		t.Fatalf("expected plain output, got %q", tty.String())
	}
}

func TestLimitOutputLines(t *testing.T) {
	got := limitOutputLines("a\nb\nc\nd", 2)
	if got != "a\nb "+verboseInlineTruncationMarker {
		t.Fatalf("unexpected limited output %q", got)
	}
	if limitOutputLines("a\nb", 5) != "a\nb" {
		t.Fatalf("expected short output untouched")
	}
}

// TestRunCallVerboseTrace verifies the trace hides image bytes and the system prompt.
func TestRunCallVerboseTrace(t *testing.T) {
	h := newHarness(t, agent.Settings{ImageCapability: true},
		agenttest.Step{ToolCalls: []agent.ToolCall{agenttest.Call("c1", "capture_screen", `{}`)}},
		agenttest.Step{Text: "Looks fine."},
	)
	h.fake.Screenshot = strings.Repeat("A", 4096)
	var console, log bytes.Buffer
	opts := RunOptions{Verbose: true, VerboseWriter: &console, VerboseLogWriter: &log, NoColor: true}
	if _, err := RunCall(testutil.Context(t, 2*time.Second), h.session, h.provider, h.registry, "look", opts, nil); err != nil {
		t.Fatalf("run: %v", err)
	}
	trace := console.String()
	for _, want := range []string{
		"[verbose] LLM prompt (step 1)",
		"<system prompt ",
		"Tool call id=c1 name=capture_screen args={}",
		"<image 4096 bytes>",
		"[verbose] LLM output",
		"Run status=completed steps=2",
	} {
		if !strings.Contains(trace, want) {
			t.Fatalf("expected %q in trace:\n%s", want, trace)
		}
	}
	if strings.Contains(trace, strings.Repeat("A", 100)) {
		t.Fatalf("trace must not include raw image data")
	}
	if log.Len() == 0 {
		t.Fatalf("expected log sink to receive the trace")
	}
}
