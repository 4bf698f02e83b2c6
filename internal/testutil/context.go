package testutil

import (
	"context"
	"testing"
	"time"
)

// DefaultTimeout bounds a test context when the caller passes zero.
const DefaultTimeout = 5 * time.Second

// Context returns a context cancelled at cleanup. Its deadline is the
// smaller of timeout and one second before the test binary's own deadline,
// so a hung run fails with a message rather than a panic dump.
func Context(t testing.TB, timeout time.Duration) context.Context {
	t.Helper()
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	deadline := time.Now().Add(timeout)
	if dt, ok := t.(interface{ Deadline() (time.Time, bool) }); ok {
		if testDeadline, ok := dt.Deadline(); ok && testDeadline.Add(-time.Second).Before(deadline) {
			deadline = testDeadline.Add(-time.Second)
		}
	}
	ctx, cancel := context.WithDeadline(context.Background(), deadline)
	t.Cleanup(cancel)
	return ctx
}
