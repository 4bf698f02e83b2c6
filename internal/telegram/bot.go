// Package telegram connects chats to agent runs over the Bot API: each chat is
// a session key, progress is streamed into a single edited status message,
// and /abort stops the chat's run.
package telegram

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/sourcegraph/conc"

	"phoneclaw/internal/agent"
	"phoneclaw/internal/agent/call"
	"phoneclaw/internal/runs"
)

const (
	DefaultPollTimeout  = 30 * time.Second
	DefaultEditInterval = 2 * time.Second
	DefaultErrorBackoff = 5 * time.Second

	ThinkingText      = "Thinking..."
	StoppingText      = "⚠️ Stopping previous task."
	NotConfiguredText = "❌ Agent not configured. Please set the API key."
	AbortedText       = "ABORTED."
	NothingToAbort    = "Nothing to abort."
)

// Runner is the part of runs.Manager the bot drives.
type Runner interface {
	Start(ctx context.Context, key, text string, observer call.Observer) (*runs.Handle, error)
	Ready() error
	Running(key string) bool
	Abort(key string) bool
}

var _ Runner = (*runs.Manager)(nil)

// Config wires a Bot.
type Config struct {
	API          *API
	Runner       Runner
	PollTimeout  time.Duration
	EditInterval time.Duration
	ErrorBackoff time.Duration
	// AllowedChats restricts the bot to these chat ids when non-empty.
	AllowedChats []int64
	Logger       *slog.Logger
}

// Bot long-polls for messages and dispatches them to agent runs.
type Bot struct {
	api          *API
	runner       Runner
	pollTimeout  time.Duration
	editInterval time.Duration
	errorBackoff time.Duration
	allowed      []int64
	logger       *slog.Logger

	offset int64
	tasks  conc.WaitGroup
}

// NewBot validates cfg and returns a Bot.
func NewBot(cfg Config) (*Bot, error) {
	if cfg.API == nil {
		return nil, errors.New("telegram api client is required")
	}
	if cfg.Runner == nil {
		return nil, errors.New("run manager is required")
	}
	if cfg.PollTimeout <= 0 {
		cfg.PollTimeout = DefaultPollTimeout
	}
	if cfg.EditInterval <= 0 {
		cfg.EditInterval = DefaultEditInterval
	}
	if cfg.ErrorBackoff <= 0 {
		cfg.ErrorBackoff = DefaultErrorBackoff
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Bot{
		api:          cfg.API,
		runner:       cfg.Runner,
		pollTimeout:  cfg.PollTimeout,
		editInterval: cfg.EditInterval,
		errorBackoff: cfg.ErrorBackoff,
		allowed:      slices.Clone(cfg.AllowedChats),
		logger:       cfg.Logger,
	}, nil
}

// Run polls until ctx is done, then waits for status finalizers.
func (b *Bot) Run(ctx context.Context) error {
	b.logger.Info("telegram bot polling", "poll_timeout", b.pollTimeout)
	defer b.tasks.Wait()
	for {
		if ctx.Err() != nil {
			return nil
		}
		updates, err := b.api.GetUpdates(ctx, b.offset, b.pollTimeout)
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			b.logger.Warn("telegram poll failed", "error", err, "backoff", b.errorBackoff)
			select {
			case <-ctx.Done():
				return nil
			case <-time.After(b.errorBackoff):
			}
			continue
		}
		for _, update := range updates {
			if update.UpdateID >= b.offset {
				b.offset = update.UpdateID + 1
			}
			b.HandleUpdate(ctx, update)
		}
	}
}

// HandleUpdate processes one update. Runs continue in the background.
func (b *Bot) HandleUpdate(ctx context.Context, update Update) {
	msg := update.Message
	if msg == nil || strings.TrimSpace(msg.Text) == "" {
		return
	}
	chatID := msg.Chat.ID
	if len(b.allowed) > 0 && !slices.Contains(b.allowed, chatID) {
		b.logger.Warn("telegram chat not allowed", "chat_id", chatID)
		return
	}
	text := strings.TrimSpace(msg.Text)
	b.logger.Info("telegram message", "chat_id", chatID, "user", msg.From.DisplayName(), "text", text)

	switch command(text) {
	case "/start":
		b.reply(ctx, chatID, fmt.Sprintf("Hello %s! I am PhoneClaw. Send me a task.", msg.From.DisplayName()))
	case "/abort", "/stop":
		if b.runner.Abort(sessionKey(chatID)) {
			b.reply(ctx, chatID, AbortedText)
		} else {
			b.reply(ctx, chatID, NothingToAbort)
		}
	default:
		b.startRun(ctx, chatID, text)
	}
}

func (b *Bot) startRun(ctx context.Context, chatID int64, text string) {
	key := sessionKey(chatID)
	if b.runner.Running(key) {
		b.reply(ctx, chatID, StoppingText)
		b.runner.Abort(key)
	}
	if err := b.runner.Ready(); err != nil {
		if errors.Is(err, agent.ErrMissingAPIKey) {
			b.reply(ctx, chatID, NotConfiguredText)
			return
		}
		b.reply(ctx, chatID, "💥 System Error: "+err.Error())
		return
	}

	placeholder, err := b.api.SendMessage(ctx, chatID, ThinkingText, "")
	if err != nil {
		b.logger.Error("telegram status message failed", "chat_id", chatID, "error", err)
		return
	}
	status := newStatusMessage(ctx, b.api, chatID, placeholder.MessageID, b.editInterval, b.logger)
	handle, err := b.runner.Start(ctx, key, text, newChatObserver(status))
	if err != nil {
		status.Append("\n💥 System Error: "+err.Error(), true)
		status.Close(context.WithoutCancel(ctx))
		return
	}

	b.tasks.Go(func() {
		<-handle.Done()
		finalCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 10*time.Second)
		defer cancel()
		result, err := handle.Wait(finalCtx)
		if err != nil && result.FailureReason == "panic" {
			status.Append("\n💥 System Error: "+err.Error(), true)
		}
		status.Close(finalCtx)
		b.logger.Info("telegram run finished", "chat_id", chatID, "run_id", handle.ID, "status", result.Status)
	})
}

func (b *Bot) reply(ctx context.Context, chatID int64, text string) {
	if _, err := b.api.SendMessage(ctx, chatID, text, ""); err != nil {
		b.logger.Warn("telegram reply failed", "chat_id", chatID, "error", err)
	}
}

// command returns the leading /command without any @botname suffix.
func command(text string) string {
	if !strings.HasPrefix(text, "/") {
		return ""
	}
	word, _, _ := strings.Cut(text, " ")
	word, _, _ = strings.Cut(word, "@")
	return strings.ToLower(word)
}

func sessionKey(chatID int64) string {
	return strconv.FormatInt(chatID, 10)
}
