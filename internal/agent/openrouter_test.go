package agent

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"phoneclaw/internal/testutil"
)

func testSettings(baseURL string, stream bool) Settings {
	return Settings{APIKey: "key", BaseURL: baseURL + "/", Model: "model", MaxSteps: 5, Stream: stream}
}

func userPrompt(text string) Prompt {
	return Prompt{Messages: []HistoryItem{{Role: RoleUser, Content: HistoryText{Text: text}}}}
}

func TestCompleteMissingAPIKeyMakesNoRequest(t *testing.T) {
	var hits atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
	}))
	t.Cleanup(server.Close)

	settings := testSettings(server.URL, false)
	settings.APIKey = "  "
	provider := NewOpenRouterProvider(settings, server.Client())
	_, err := provider.Complete(context.Background(), userPrompt("hi"), nil)
	if !errors.Is(err, ErrMissingAPIKey) {
		t.Fatalf("expected ErrMissingAPIKey, got %v", err)
	}
	if hits.Load() != 0 {
		t.Fatalf("expected no request, got %d", hits.Load())
	}
}

func TestCompleteBlockingSendsHeadersAndParsesToolCalls(t *testing.T) {
	var captured openRouterRequest
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/chat/completions" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer key" {
			t.Errorf("unexpected auth header %q", got)
		}
		if r.Header.Get("HTTP-Referer") == "" || r.Header.Get("X-Title") == "" {
			t.Errorf("expected attribution headers")
		}
		body, _ := io.ReadAll(r.Body)
		if err := json.Unmarshal(body, &captured); err != nil {
			t.Errorf("decode request: %v", err)
		}
		fmt.Fprint(w, `{"choices":[{"message":{"content":null,"tool_calls":[{"id":"call_1","type":"function","function":{"name":"tap","arguments":"{\"x\":1,\"y\":2}"}}]}}]}`)
	}))
	t.Cleanup(server.Close)

	provider := NewOpenRouterProvider(testSettings(server.URL, false), server.Client())
	prompt := userPrompt("tap")
	prompt.Tools = []ToolDefinition{{Name: "tap", Description: "tap", Parameters: ObjectSchema(map[string]ToolSchema{"x": {Type: "number"}}, []string{"x"})}}
	resp, err := provider.Complete(context.Background(), prompt, nil)
	if err != nil {
		t.Fatalf("complete: %v", err)
	}
	if captured.Stream || captured.ToolChoice != "auto" || len(captured.Tools) != 1 {
		t.Fatalf("unexpected request %+v", captured)
	}
	if resp.Text != "" || len(resp.ToolCalls) != 1 {
		t.Fatalf("unexpected response %+v", resp)
	}
	call := resp.ToolCalls[0]
	if call.ID != "call_1" || call.Name != "tap" || call.Arguments != `{"x":1,"y":2}` {
		t.Fatalf("unexpected call %+v", call)
	}
}

func TestCompleteBlockingEmptyChoices(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"choices":[]}`)
	}))
	t.Cleanup(server.Close)

	provider := NewOpenRouterProvider(testSettings(server.URL, false), server.Client())
	_, err := provider.Complete(context.Background(), userPrompt("hi"), nil)
	if !errors.Is(err, ErrEmptyResponse) {
		t.Fatalf("expected ErrEmptyResponse, got %v", err)
	}
}

func TestCompleteNon2xxIsAPIError(t *testing.T) {
	long := strings.Repeat("e", 500)
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
		fmt.Fprint(w, long)
	}))
	t.Cleanup(server.Close)

	provider := NewOpenRouterProvider(testSettings(server.URL, true), server.Client())
	_, err := provider.Complete(context.Background(), userPrompt("hi"), nil)
	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("expected APIError, got %v", err)
	}
	if apiErr.StatusCode != http.StatusTooManyRequests || len(apiErr.Body) != 200 {
		t.Fatalf("unexpected api error %d len=%d", apiErr.StatusCode, len(apiErr.Body))
	}
	if !strings.HasPrefix(err.Error(), "API error 429: ") {
		t.Fatalf("unexpected message %q", err.Error())
	}
}

func TestCompleteStreamAccumulatesAndForwardsChunks(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/event-stream")
		fmt.Fprint(w, ": OPENROUTER PROCESSING\n\n")
		fmt.Fprint(w, "data: {\"choices\":[{\"delta\":{\"content\":\"hello \"}}]}\n\n")
		fmt.Fprint(w, "data: {not json}\n\n")
		fmt.Fprint(w, "data: {\"choices\":[{\"delta\":{\"content\":\"world\"}}]}\n\n")
		fmt.Fprint(w, "data: [DONE]\n\n")
	}))
	t.Cleanup(server.Close)

	provider := NewOpenRouterProvider(testSettings(server.URL, true), server.Client())
	var chunks []string
	resp, err := provider.Complete(context.Background(), userPrompt("hi"), func(fragment string) {
		chunks = append(chunks, fragment)
	})
	if err != nil {
		t.Fatalf("complete: %v", err)
	}
	if resp.Text != "hello world" || len(resp.ToolCalls) != 0 {
		t.Fatalf("unexpected response %+v", resp)
	}
	if strings.Join(chunks, "|") != "hello |world" {
		t.Fatalf("unexpected chunks %v", chunks)
	}
}

func TestStreamAccumulatorAppendsNameAndArguments(t *testing.T) {
	acc := newStreamAccumulator(nil)
	acc.add(`{"choices":[{"delta":{"tool_calls":[{"index":0,"function":{"name":"ta"}}]}}]}`)
	acc.add(`{"choices":[{"delta":{"tool_calls":[{"index":0,"function":{"name":"p","arguments":"{\"x\""}}]}}]}`)
	acc.add(`{"choices":[{"delta":{"tool_calls":[{"index":0,"function":{"arguments":":1}"}}]}}]}`)
	resp := acc.response()
	if len(resp.ToolCalls) != 1 {
		t.Fatalf("expected one call, got %+v", resp.ToolCalls)
	}
	call := resp.ToolCalls[0]
	if call.Name != "tap" || call.Arguments != `{"x":1}` {
		t.Fatalf("unexpected call %+v", call)
	}
	if !strings.HasPrefix(call.ID, "call_") {
		t.Fatalf("expected synthesized id, got %q", call.ID)
	}
}

func TestStreamAccumulatorOrdersByIndex(t *testing.T) {
	acc := newStreamAccumulator(nil)
	acc.add(`{"choices":[{"delta":{"tool_calls":[{"index":2,"id":"c2","function":{"name":"pressBack","arguments":"{}"}}]}}]}`)
	acc.add(`{"choices":[{"delta":{"tool_calls":[{"index":0,"id":"c0","function":{"name":"getUITree","arguments":"{}"}}]}}]}`)
	acc.add(`garbage`)
	resp := acc.response()
	if len(resp.ToolCalls) != 2 || resp.ToolCalls[0].ID != "c0" || resp.ToolCalls[1].ID != "c2" {
		t.Fatalf("unexpected order %+v", resp.ToolCalls)
	}
	if acc.skipped != 1 {
		t.Fatalf("expected one skipped chunk, got %d", acc.skipped)
	}
}

func TestCompleteStreamProviderErrorChunk(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, "data: {\"error\":{\"code\":502,\"message\":\"upstream down\"}}\n\n")
	}))
	t.Cleanup(server.Close)

	provider := NewOpenRouterProvider(testSettings(server.URL, true), server.Client())
	_, err := provider.Complete(context.Background(), userPrompt("hi"), nil)
	if err == nil || !strings.Contains(err.Error(), "upstream down") {
		t.Fatalf("expected provider error, got %v", err)
	}
}

func TestCompleteCancellationAbortsRequest(t *testing.T) {
	release := make(chan struct{})
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-release:
		}
	}))
	t.Cleanup(func() {
		close(release)
		server.Close()
	})

	ctx, cancel := context.WithCancel(testutil.Context(t, 2*time.Second))
	provider := NewOpenRouterProvider(testSettings(server.URL, false), server.Client())
	done := make(chan error, 1)
	go func() {
		_, err := provider.Complete(ctx, userPrompt("hi"), nil)
		done <- err
	}()
	time.Sleep(20 * time.Millisecond)
	cancel()
	select {
	case err := <-done:
		if !errors.Is(err, context.Canceled) {
			t.Fatalf("expected context.Canceled, got %v", err)
		}
	case <-time.After(time.Second):
		t.Fatalf("request did not abort")
	}
}

func TestBuildMessagesShapes(t *testing.T) {
	messages, err := buildOpenRouterMessages(Prompt{Messages: []HistoryItem{
		{Role: RoleSystem, Content: HistoryText{Text: "sys"}},
		{Role: RoleAssistant, Content: AssistantTurn{ToolCalls: []ToolCall{{ID: "c1", Name: "capture_screen", Arguments: "{}"}}}},
		{Role: RoleTool, Content: ToolOutput{ToolCallID: "c1", Name: "capture_screen"}},
		{Role: RoleUser, Content: HistoryParts{Parts: []ContentPart{
			{Kind: PartText, Value: "Here is the screen you captured:"},
			{Kind: PartImage, Value: ImageDataURL("AAAA")},
		}}},
	}})
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	data, err := json.Marshal(messages)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	encoded := string(data)
	for _, want := range []string{
		`{"role":"assistant","content":null,"tool_calls":[{"id":"c1","type":"function","function":{"name":"capture_screen","arguments":"{}"}}]}`,
		`"tool_call_id":"c1"`,
		`{"type":"image_url","image_url":{"url":"data:image/png;base64,AAAA"}}`,
	} {
		if !strings.Contains(encoded, want) {
			t.Fatalf("expected %s in %s", want, encoded)
		}
	}
}

func TestBuildMessagesRejectsToolCallWithoutID(t *testing.T) {
	_, err := buildOpenRouterMessages(Prompt{Messages: []HistoryItem{
		{Role: RoleAssistant, Content: AssistantTurn{ToolCalls: []ToolCall{{Name: "tap"}}}},
	}})
	if err == nil || !strings.Contains(err.Error(), "tool call id") {
		t.Fatalf("expected tool call id error, got %v", err)
	}
}
