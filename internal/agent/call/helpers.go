package call

import (
	"context"
	"errors"
	"fmt"
	"time"

	"phoneclaw/internal/agent"
	"phoneclaw/internal/tools"
)

// callBeforeHooks executes CallHook.BeforeCall in order.
func callBeforeHooks(ctx context.Context, hooks []CallHook, input CallInput) error {
	for _, hook := range hooks {
		if err := hook.BeforeCall(ctx, input); err != nil {
			return err
		}
	}
	return nil
}

// callAfterHooks executes CallHook.AfterCall in order and ignores errors.
func callAfterHooks(ctx context.Context, hooks []CallHook, input CallInput, result CallResult) {
	for _, hook := range hooks {
		_ = hook.AfterCall(ctx, input, result)
	}
}

// finalizeMetrics populates wall time and tokens for a finished run.
func finalizeMetrics(start time.Time, opts RunOptions, history []agent.HistoryItem, metrics *RunMetrics) {
	metrics.WallTime = time.Since(start)
	if opts.TokenCounter != nil {
		metrics.Tokens = opts.TokenCounter(history)
	}
}

// failureReasonForError maps a run error to a CallResult failure reason.
func failureReasonForError(err error) string {
	if err == nil {
		return ""
	}
	var apiErr *agent.APIError
	switch {
	case errors.Is(err, agent.ErrMissingAPIKey):
		return "missing_api_key"
	case errors.Is(err, agent.ErrEmptyResponse):
		return "empty_response"
	case errors.As(err, &apiErr):
		return "api_error"
	case errors.Is(err, context.DeadlineExceeded):
		return "timeout"
	}
	return "runtime_error"
}

// stepLimitMessage is reported when a run exhausts its step budget.
func stepLimitMessage(maxSteps int) string {
	return fmt.Sprintf(stepLimitFormat, maxSteps)
}

// aborted reports whether the run should stop before its next action.
func aborted(ctx context.Context, session *agent.Session) bool {
	return session.Aborted() || ctx.Err() != nil
}

// recordToolMetrics tallies a finished tool call.
func recordToolMetrics(metrics *RunMetrics, name string, result tools.CallResult) {
	metrics.ToolCalls[name]++
	if result.Error != "" {
		metrics.ToolFailures[name]++
	}
}
