package runs

import (
	"context"

	"phoneclaw/internal/agent"
	"phoneclaw/internal/agent/call"
)

// Handle is one started run.
type Handle struct {
	ID  string
	Key string
	// Preempted is set when starting this run aborted an earlier one.
	Preempted bool

	session *agent.Session
	cancel  context.CancelFunc
	done    chan struct{}
	result  call.CallResult
	err     error
}

// Abort requests cooperative cancellation and cancels in-flight requests.
// The run context is cancelled too so an abort issued before the loop starts
// is not lost.
func (h *Handle) Abort() {
	h.session.Abort()
	h.cancel()
}

// Done is closed when the run has finished.
func (h *Handle) Done() <-chan struct{} {
	return h.done
}

// Wait blocks until the run finishes or ctx is done.
func (h *Handle) Wait(ctx context.Context) (call.CallResult, error) {
	select {
	case <-h.done:
		return h.result, h.err
	case <-ctx.Done():
		return call.CallResult{}, ctx.Err()
	}
}

func (h *Handle) finished() bool {
	select {
	case <-h.done:
		return true
	default:
		return false
	}
}
