package call

import (
	"context"
	"fmt"
	"time"

	"phoneclaw/internal/agent"
	"phoneclaw/internal/tools"
)

// ToolExecutor dispatches a tool call by name. *tools.Registry implements it.
type ToolExecutor interface {
	Execute(ctx context.Context, name string, args tools.Args) tools.CallResult
}

// RunCall executes one user request, including any follow-up tool calls,
// until the model answers without tools, the step budget runs out, the run is
// aborted, or the model transport fails. The returned error is non-nil only
// for failed runs.
func RunCall(ctx context.Context, session *agent.Session, provider agent.Provider, executor ToolExecutor, userText string, opts RunOptions, hooks []CallHook) (CallResult, error) {
	start := time.Now()
	metrics := newRunMetrics()
	observer := observerOrNop(opts.Observer)

	runCtx, done := session.Begin(ctx)
	defer done()

	session.Append(agent.HistoryItem{Role: agent.RoleUser, Content: agent.HistoryText{Text: userText}})
	input := CallInput{
		RunID:     opts.RunID,
		SessionID: session.ID,
		UserText:  userText,
		Settings:  session.Settings,
		ToolDefs:  session.Tools,
		StartedAt: start,
	}
	if err := callBeforeHooks(runCtx, hooks, input); err != nil {
		finalizeMetrics(start, opts, session.History, &metrics)
		return CallResult{
			Output:        failurePrefix + err.Error(),
			Status:        StatusFailed,
			Metrics:       metrics,
			FailureReason: failureReasonForError(err),
		}, err
	}

	status, output, runErr := runLoop(runCtx, session, provider, executor, observer, opts, &metrics)

	finalizeMetrics(start, opts, session.History, &metrics)
	logVerbose(opts, styleHeadingMetrics, fmt.Sprintf("Run status=%s steps=%d tool_calls=%d wall_time=%s tokens=%d", status, metrics.Steps, totalToolCalls(metrics), metrics.WallTime.Round(time.Millisecond), metrics.Tokens))
	result := CallResult{
		Output:        output,
		Status:        status,
		Metrics:       metrics,
		FailureReason: failureReasonForError(runErr),
		Transcript:    append([]agent.HistoryItem(nil), session.History...),
	}
	// The run context may already be cancelled by an abort; hooks still need to record the outcome.
	callAfterHooks(context.WithoutCancel(ctx), hooks, input, result)
	return result, runErr
}

func runLoop(ctx context.Context, session *agent.Session, provider agent.Provider, executor ToolExecutor, observer Observer, opts RunOptions, metrics *RunMetrics) (Status, string, error) {
	maxSteps := session.Settings.MaxSteps
	onChunk := chunkHandlerFor(observer)

	for metrics.Steps < maxSteps {
		if aborted(ctx, session) {
			return stopRun(observer)
		}
		metrics.Steps++
		observer.OnThinking()

		prompt := session.BuildPrompt()
		logVerbosePrompt(opts, prompt, metrics.Steps)
		modelStart := time.Now()
		resp, err := provider.Complete(ctx, prompt, onChunk)
		metrics.ModelTime += time.Since(modelStart)
		if err != nil {
			if aborted(ctx, session) {
				return stopRun(observer)
			}
			message := err.Error()
			logVerbose(opts, styleHeadingError, "LLM error: "+message)
			observer.OnError(message)
			return StatusFailed, failurePrefix + message, err
		}

		session.Append(agent.HistoryItem{Role: agent.RoleAssistant, Content: agent.AssistantTurn{Text: resp.Text, ToolCalls: resp.ToolCalls}})
		if resp.Text != "" {
			logVerboseBlock(opts, "LLM output", resp.Text, styleHeadingOutput, styleDefault)
		}
		if len(resp.ToolCalls) == 0 {
			text := resp.Text
			if text == "" {
				text = DefaultFinalText
			}
			observer.OnResponse(text)
			return StatusCompleted, text, nil
		}

		for _, toolCall := range resp.ToolCalls {
			if aborted(ctx, session) {
				return stopRun(observer)
			}
			dispatchTool(ctx, session, executor, observer, opts, metrics, toolCall)
		}
	}

	message := stepLimitMessage(maxSteps)
	logVerbose(opts, styleHeadingError, message)
	observer.OnError(message)
	return StatusStepLimitExceeded, message, nil
}

// dispatchTool runs one tool call and appends exactly one tool message for it.
func dispatchTool(ctx context.Context, session *agent.Session, executor ToolExecutor, observer Observer, opts RunOptions, metrics *RunMetrics, toolCall agent.ToolCall) {
	args, ok := tools.ParseArgs(toolCall.Arguments)
	if !ok {
		logVerbose(opts, styleHeadingError, fmt.Sprintf("Malformed arguments for %s, using {}: %s", toolCall.Name, truncateVerboseInline(toolCall.Arguments)))
	}
	logVerbose(opts, styleHeadingToolCall, fmt.Sprintf("Tool call id=%s name=%s args=%s", toolCall.ID, toolCall.Name, formatArgs(args)))
	observer.OnToolCall(toolCall.Name, args.Values())

	result := executor.Execute(ctx, toolCall.Name, args)
	recordToolMetrics(metrics, toolCall.Name, result)

	if !result.IsImage {
		logVerboseToolOutput(opts, toolResultHeader(toolCall, result), result.Output)
		observer.OnToolResult(toolCall.Name, result.Output)
		session.Append(agent.HistoryItem{Role: agent.RoleTool, Content: agent.ToolOutput{ToolCallID: toolCall.ID, Name: toolCall.Name, Result: result}})
		return
	}

	image := result.Output
	result.Output = ScreenshotAck
	result.OutputBytes = len(ScreenshotAck)
	result.Truncated = false
	logVerboseToolOutput(opts, toolResultHeader(toolCall, result), fmt.Sprintf("<image %d bytes>", len(image)))
	observer.OnToolResult(toolCall.Name, ScreenshotAck)
	session.Append(agent.HistoryItem{Role: agent.RoleTool, Content: agent.ToolOutput{ToolCallID: toolCall.ID, Name: toolCall.Name, Result: result}})

	if session.Settings.ImageCapability {
		session.Append(agent.HistoryItem{Role: agent.RoleUser, Content: agent.HistoryParts{Parts: []agent.ContentPart{
			{Kind: agent.PartText, Value: ScreenshotCaption},
			{Kind: agent.PartImage, Value: agent.ImageDataURL(image)},
		}}})
		return
	}
	session.Append(agent.HistoryItem{Role: agent.RoleUser, Content: agent.HistoryText{Text: ScreenshotWithoutImage}})
}

func stopRun(observer Observer) (Status, string, error) {
	observer.OnResponse(StoppedMessage)
	return StatusAborted, StoppedMessage, nil
}

func toolResultHeader(toolCall agent.ToolCall, result tools.CallResult) string {
	return fmt.Sprintf("Tool result id=%s name=%s duration=%s bytes=%d truncated=%t error=%s", toolCall.ID, toolCall.Name, result.Duration, result.OutputBytes, result.Truncated, result.Error)
}

func totalToolCalls(metrics RunMetrics) int {
	total := 0
	for _, count := range metrics.ToolCalls {
		total += count
	}
	return total
}
