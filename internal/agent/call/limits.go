package call

import (
	"io"
	"time"

	"phoneclaw/internal/agent"
)

// RunOptions configures per-run behavior and logging.
type RunOptions struct {
	RunID            string
	Observer         Observer
	TokenCounter     agent.TokenCounter
	Verbose          bool
	VerboseWriter    io.Writer
	VerboseLogWriter io.Writer
	NoColor          bool
}

// RunMetrics captures execution effort for a run.
type RunMetrics struct {
	ToolCalls    map[string]int
	ToolFailures map[string]int
	WallTime     time.Duration
	ModelTime    time.Duration
	Tokens       int
	Steps        int
}

func newRunMetrics() RunMetrics {
	return RunMetrics{ToolCalls: map[string]int{}, ToolFailures: map[string]int{}}
}
