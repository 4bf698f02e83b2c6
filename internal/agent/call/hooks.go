package call

import "context"

// CallHook allows injecting behaviors around an agent run.
type CallHook interface {
	BeforeCall(ctx context.Context, input CallInput) error
	AfterCall(ctx context.Context, input CallInput, result CallResult) error
}
