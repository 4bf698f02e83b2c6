package agent

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"sync/atomic"

	"phoneclaw/internal/tools"
)

// Session holds the state of one agent run. It is owned by that run; only
// Abort may be called from other goroutines.
type Session struct {
	ID       string
	Settings Settings
	Tools    []ToolDefinition
	History  []HistoryItem

	aborted atomic.Bool
	mu      sync.Mutex
	cancel  context.CancelFunc
}

// StartSession seeds a session with the system prompt derived from the catalog.
func StartSession(id string, settings Settings, descs []tools.Descriptor) (*Session, error) {
	settings = settings.Normalized()
	if strings.TrimSpace(id) == "" {
		return nil, fmt.Errorf("session id is required")
	}
	return &Session{
		ID:       id,
		Settings: settings,
		Tools:    BuildToolSchemas(descs),
		History: []HistoryItem{{
			Role:    RoleSystem,
			Content: HistoryText{Text: BuildSystemPrompt(descs, settings.ImageCapability)},
		}},
	}, nil
}

// Abort requests cooperative cancellation and cancels any in-flight request.
func (s *Session) Abort() {
	s.aborted.Store(true)
	s.mu.Lock()
	cancel := s.cancel
	s.mu.Unlock()
	if cancel != nil {
		cancel()
	}
}

// Aborted reports whether Abort was called since the run began.
func (s *Session) Aborted() bool {
	return s.aborted.Load()
}

// Begin resets the abort flag and derives the run context that Abort cancels.
func (s *Session) Begin(ctx context.Context) (context.Context, context.CancelFunc) {
	s.aborted.Store(false)
	runCtx, cancel := context.WithCancel(ctx)
	s.mu.Lock()
	s.cancel = cancel
	s.mu.Unlock()
	return runCtx, func() {
		s.mu.Lock()
		s.cancel = nil
		s.mu.Unlock()
		cancel()
	}
}

// Append adds items to the conversation.
func (s *Session) Append(items ...HistoryItem) {
	s.History = append(s.History, items...)
}

// BuildPrompt assembles the provider request for the current history.
func (s *Session) BuildPrompt() Prompt {
	return Prompt{
		Messages: append([]HistoryItem(nil), s.History...),
		Tools:    s.Tools,
	}
}
