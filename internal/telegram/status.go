package telegram

import (
	"context"
	"log/slog"
	"strings"
	"sync"
	"time"
	"unicode/utf8"

	"golang.org/x/time/rate"
)

// maxStatusRunes keeps edits under Telegram's 4096 character limit.
const maxStatusRunes = 4000

type messageEditor interface {
	EditMessageText(ctx context.Context, chatID, messageID int64, text, parseMode string) error
}

// statusMessage accumulates run progress into one chat message and edits it
// at most once per interval. Immediate updates bypass the throttle.
type statusMessage struct {
	api       messageEditor
	chatID    int64
	messageID int64
	interval  time.Duration
	limiter   *rate.Limiter
	logger    *slog.Logger
	ctx       context.Context

	mu       sync.Mutex
	text     strings.Builder
	pending  bool
	timer    *time.Timer
	lastSent string
	closed   bool
}

func newStatusMessage(ctx context.Context, api messageEditor, chatID, messageID int64, interval time.Duration, logger *slog.Logger) *statusMessage {
	if interval <= 0 {
		interval = 2 * time.Second
	}
	return &statusMessage{
		api:       api,
		chatID:    chatID,
		messageID: messageID,
		interval:  interval,
		limiter:   rate.NewLimiter(rate.Every(interval), 1),
		logger:    logger,
		ctx:       ctx,
	}
}

// Append adds text and schedules an edit.
func (s *statusMessage) Append(fragment string, immediate bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	s.text.WriteString(fragment)
	s.pending = true
	if immediate {
		s.limiter.Allow()
		s.sendLocked(s.ctx)
		return
	}
	if s.limiter.Allow() {
		s.sendLocked(s.ctx)
		return
	}
	s.scheduleLocked()
}

// Text returns everything appended so far.
func (s *statusMessage) Text() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.text.String()
}

// Close sends the final state and stops further edits.
func (s *statusMessage) Close(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}
	s.pending = true
	s.sendLocked(ctx)
	s.closed = true
}

func (s *statusMessage) scheduleLocked() {
	if s.timer != nil {
		return
	}
	s.timer = time.AfterFunc(s.interval, s.flushPending)
}

func (s *statusMessage) flushPending() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.timer = nil
	if s.closed || !s.pending {
		return
	}
	if !s.limiter.Allow() {
		s.scheduleLocked()
		return
	}
	s.sendLocked(s.ctx)
}

func (s *statusMessage) sendLocked(ctx context.Context) {
	s.pending = false
	display := displayText(s.text.String())
	if display == s.lastSent {
		return
	}
	err := s.api.EditMessageText(ctx, s.chatID, s.messageID, MarkdownToHTML(display), ParseModeHTML)
	if isEntityError(err) {
		err = s.api.EditMessageText(ctx, s.chatID, s.messageID, display, "")
	}
	if err != nil && !IsNotModified(err) {
		s.logger.Warn("status edit failed", "chat_id", s.chatID, "error", err)
		return
	}
	s.lastSent = display
}

// displayText keeps the tail of long transcripts.
func displayText(text string) string {
	if strings.TrimSpace(text) == "" {
		return "..."
	}
	if utf8.RuneCountInString(text) <= maxStatusRunes {
		return text
	}
	runes := []rune(text)
	return "..." + string(runes[len(runes)-maxStatusRunes:])
}
