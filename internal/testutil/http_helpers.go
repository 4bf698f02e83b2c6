package testutil

import (
	"context"
	"io"
	"net/http"
	"testing"
	"time"
)

// HTTPGetText sends a GET request and returns the status code and body.
func HTTPGetText(t testing.TB, url string) (int, string) {
	t.Helper()
	status, body := doRequest(t, Context(t, 2*time.Second), http.MethodGet, url)
	return status, string(body)
}

func doRequest(t testing.TB, ctx context.Context, method, url string) (int, []byte) {
	t.Helper()
	req, err := http.NewRequestWithContext(ctx, method, url, nil)
	if err != nil {
		t.Fatalf("build request: %v", err)
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("http request: %v", err)
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("read response: %v", err)
	}
	return resp.StatusCode, body
}
