package call

import (
	"time"

	"phoneclaw/internal/agent"
)

// Status is the terminal state of a run.
type Status string

const (
	StatusCompleted         Status = "completed"
	StatusAborted           Status = "aborted"
	StatusStepLimitExceeded Status = "step_limit_exceeded"
	StatusFailed            Status = "failed"
)

// User-facing terminal messages.
const (
	StoppedMessage         = "⏹ Agent stopped by user."
	DefaultFinalText       = "Done."
	ScreenshotAck          = "Screenshot captured successfully."
	ScreenshotCaption      = "Here is the screen you captured:"
	ScreenshotWithoutImage = "A screenshot was captured, but image input is disabled for this model. Use getUITree() or getScreenText() to inspect the screen instead."
	stepLimitFormat        = "⚠️ Reached maximum steps (%d). Stopping."
	failurePrefix          = "❌ Error: "
)

// CallInput describes one agent run.
type CallInput struct {
	RunID     string
	SessionID string
	UserText  string
	Settings  agent.Settings
	ToolDefs  []agent.ToolDefinition
	StartedAt time.Time
}

// CallResult captures the terminal output and metrics.
type CallResult struct {
	Output        string
	Status        Status
	Metrics       RunMetrics
	FailureReason string
	Transcript    []agent.HistoryItem
}
