package call

import (
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"phoneclaw/internal/agent"
	"phoneclaw/internal/testutil"
)

func TestRunCallIDLessToolCallsGetDistinctIDsAcrossSteps(t *testing.T) {
	answers := []string{
		`{"choices":[{"message":{"content":null,"tool_calls":[{"type":"function","function":{"name":"pressBack","arguments":"{}"}}]}}]}`,
		`{"choices":[{"message":{"content":null,"tool_calls":[{"type":"function","function":{"name":"pressHome","arguments":"{}"}}]}}]}`,
		`{"choices":[{"message":{"content":"Home reached."}}]}`,
	}
	var hits atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		index := int(hits.Add(1)) - 1
		if index >= len(answers) {
			index = len(answers) - 1
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(answers[index]))
	}))
	t.Cleanup(server.Close)

	h := newHarness(t, agent.Settings{BaseURL: server.URL})
	provider := agent.NewOpenRouterProvider(h.session.Settings, server.Client())
	result, err := RunCall(testutil.Context(t, 2*time.Second), h.session, provider, h.registry, "go home", RunOptions{Observer: h.events}, nil)
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if result.Status != StatusCompleted || result.Output != "Home reached." {
		t.Fatalf("unexpected result %+v", result)
	}

	requested := map[string]int{}
	for _, item := range h.session.History {
		turn, ok := item.Content.(agent.AssistantTurn)
		if !ok {
			continue
		}
		for _, call := range turn.ToolCalls {
			requested[call.ID]++
		}
	}
	if len(requested) != 2 {
		t.Fatalf("expected two distinct ids, got %v", requested)
	}
	for id, count := range requested {
		if id == "" || count != 1 {
			t.Fatalf("id %q requested %d times", id, count)
		}
	}
	answered := 0
	for _, item := range h.session.History {
		output, ok := item.Content.(agent.ToolOutput)
		if !ok {
			continue
		}
		if requested[output.ToolCallID] != 1 {
			t.Fatalf("tool output %q does not match one request", output.ToolCallID)
		}
		answered++
	}
	if answered != 2 {
		t.Fatalf("expected two tool outputs, got %d", answered)
	}
}
