package testutil

import (
	"testing"
	"time"
)

// Eventually polls cond every interval until it holds. After timeout it
// checks once more, then fails with the formatted message.
func Eventually(t testing.TB, timeout, interval time.Duration, cond func() bool, format string, args ...any) {
	t.Helper()
	timer := time.NewTimer(timeout)
	defer timer.Stop()
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for !cond() {
		select {
		case <-timer.C:
			if cond() {
				return
			}
			if format == "" {
				format = "condition not met"
			}
			t.Fatalf("timed out after %s waiting for "+format, append([]any{timeout}, args...)...)
		case <-ticker.C:
		}
	}
}
