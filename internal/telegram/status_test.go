package telegram

import (
	"context"
	"io"
	"log/slog"
	"strings"
	"sync"
	"testing"
	"time"

	"phoneclaw/internal/testutil"
)

type recordingEditor struct {
	mu    sync.Mutex
	edits []string
	modes []string
	fail  error
}

func (e *recordingEditor) EditMessageText(ctx context.Context, chatID, messageID int64, text, parseMode string) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.fail != nil && parseMode != "" {
		return e.fail
	}
	e.edits = append(e.edits, text)
	e.modes = append(e.modes, parseMode)
	return nil
}

func (e *recordingEditor) snapshot() []string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return append([]string(nil), e.edits...)
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestStatusMessageThrottlesEdits(t *testing.T) {
	editor := &recordingEditor{}
	status := newStatusMessage(context.Background(), editor, 1, 2, time.Hour, discardLogger())
	status.Append("a", false)
	status.Append("b", false)
	status.Append("c", false)
	if got := editor.snapshot(); len(got) != 1 || got[0] != "a" {
		t.Fatalf("expected a single throttled edit, got %v", got)
	}
	status.Append("!", true)
	if got := editor.snapshot(); len(got) != 2 || got[1] != "abc!" {
		t.Fatalf("expected immediate edit, got %v", got)
	}
	status.Close(context.Background())
	status.Append("late", true)
	if got := editor.snapshot(); len(got) != 2 {
		t.Fatalf("expected no edit for unchanged or closed status, got %v", got)
	}
}

func TestStatusMessageFlushesPendingAfterInterval(t *testing.T) {
	editor := &recordingEditor{}
	status := newStatusMessage(context.Background(), editor, 1, 2, 30*time.Millisecond, discardLogger())
	status.Append("first", false)
	status.Append(" second", false)
	testutil.Eventually(t, time.Second, 5*time.Millisecond, func() bool {
		edits := editor.snapshot()
		return len(edits) == 2 && edits[1] == "first second"
	}, "pending text to be flushed")
	status.Close(context.Background())
}

func TestStatusMessageFallsBackToPlainText(t *testing.T) {
	editor := &recordingEditor{fail: &APIError{Method: "editMessageText", Code: 400, Description: "Bad Request: can't parse entities"}}
	status := newStatusMessage(context.Background(), editor, 1, 2, time.Hour, discardLogger())
	status.Append("**x", true)
	editor.mu.Lock()
	defer editor.mu.Unlock()
	if len(editor.edits) != 1 || editor.modes[0] != "" || editor.edits[0] != "**x" {
		t.Fatalf("expected plain retry, got %v %v", editor.edits, editor.modes)
	}
}

func TestDisplayText(t *testing.T) {
	if displayText("  ") != "..." {
		t.Fatalf("expected placeholder for empty text")
	}
	long := strings.Repeat("é", maxStatusRunes+10)
	got := displayText(long)
	if !strings.HasPrefix(got, "...") || len([]rune(got)) != maxStatusRunes+3 {
		t.Fatalf("unexpected truncation length %d", len([]rune(got)))
	}
}
