package history

import (
	"context"
	"io"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"phoneclaw/internal/agent/call"
)

// Hook records every finished run in a Store.
type Hook struct {
	store  *Store
	logger *slog.Logger
	now    func() time.Time
}

// NewHook returns a call hook writing to store.
func NewHook(store *Store, logger *slog.Logger) *Hook {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Hook{store: store, logger: logger, now: time.Now}
}

func (h *Hook) BeforeCall(context.Context, call.CallInput) error {
	return nil
}

// AfterCall stores the run. Failures are logged and returned; the loop
// ignores them.
func (h *Hook) AfterCall(ctx context.Context, input call.CallInput, result call.CallResult) error {
	run := RunFromResult(input, result, h.now())
	messages, err := EncodeTranscript(result.Transcript)
	if err != nil {
		h.logger.Warn("encode transcript failed", "run_id", run.ID, "err", err)
		return err
	}
	if err := h.store.RecordRun(ctx, run, messages); err != nil {
		h.logger.Warn("record run failed", "run_id", run.ID, "err", err)
		return err
	}
	h.logger.Debug("run recorded", "run_id", run.ID, "messages", len(messages))
	return nil
}

// RunFromResult builds the stored row for a finished run.
func RunFromResult(input call.CallInput, result call.CallResult, finished time.Time) Run {
	id := input.RunID
	if id == "" {
		id = uuid.NewString()
	}
	started := input.StartedAt
	if started.IsZero() {
		started = finished.Add(-result.Metrics.WallTime)
	}
	toolCalls, toolFailures := 0, 0
	for _, count := range result.Metrics.ToolCalls {
		toolCalls += count
	}
	for _, count := range result.Metrics.ToolFailures {
		toolFailures += count
	}
	return Run{
		ID:            id,
		SessionKey:    input.SessionID,
		Instruction:   input.UserText,
		Status:        string(result.Status),
		Output:        result.Output,
		FailureReason: result.FailureReason,
		Model:         input.Settings.Model,
		Steps:         result.Metrics.Steps,
		ToolCalls:     toolCalls,
		ToolFailures:  toolFailures,
		Tokens:        result.Metrics.Tokens,
		StartedAt:     started,
		FinishedAt:    finished,
		WallTime:      result.Metrics.WallTime,
	}
}
