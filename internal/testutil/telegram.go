package testutil

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"
)

// TelegramCall is one Bot API request received by TelegramServer.
type TelegramCall struct {
	Method string
	Body   map[string]any
}

// Text returns the request's text field.
func (c TelegramCall) Text() string {
	text, _ := c.Body["text"].(string)
	return text
}

// TelegramServer is an in-memory Bot API endpoint.
type TelegramServer struct {
	BaseURL string
	Token   string
	Close   func()

	mu       sync.Mutex
	calls    []TelegramCall
	nextID   int64
	failures map[string]string
	updates  []any
}

// StartTelegramServer launches a fake Bot API for token.
func StartTelegramServer(t *testing.T, token string) *TelegramServer {
	t.Helper()
	fake := &TelegramServer{Token: token, nextID: 100, failures: map[string]string{}}
	server := httptest.NewServer(http.HandlerFunc(fake.serve))
	fake.BaseURL = server.URL
	fake.Close = server.Close
	t.Cleanup(server.Close)
	return fake
}

// Fail makes every later call to method return ok=false with description.
func (s *TelegramServer) Fail(method, description string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failures[method] = description
}

// QueueUpdate makes the next getUpdates return update.
func (s *TelegramServer) QueueUpdate(update any) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.updates = append(s.updates, update)
}

// Calls returns the recorded calls for method, or all calls when empty.
func (s *TelegramServer) Calls(method string) []TelegramCall {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []TelegramCall
	for _, call := range s.calls {
		if method == "" || call.Method == method {
			out = append(out, call)
		}
	}
	return out
}

// LastText returns the text of the latest call to method.
func (s *TelegramServer) LastText(method string) string {
	calls := s.Calls(method)
	if len(calls) == 0 {
		return ""
	}
	return calls[len(calls)-1].Text()
}

func (s *TelegramServer) serve(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	prefix := "/bot" + s.Token + "/"
	if !strings.HasPrefix(r.URL.Path, prefix) {
		w.WriteHeader(http.StatusNotFound)
		fmt.Fprint(w, `{"ok":false,"error_code":404,"description":"Not Found"}`)
		return
	}
	method := strings.TrimPrefix(r.URL.Path, prefix)
	body := map[string]any{}
	_ = json.NewDecoder(r.Body).Decode(&body)

	s.mu.Lock()
	s.calls = append(s.calls, TelegramCall{Method: method, Body: body})
	failure, failing := s.failures[method]
	s.mu.Unlock()

	if failing {
		w.WriteHeader(http.StatusBadRequest)
		_ = json.NewEncoder(w).Encode(map[string]any{"ok": false, "error_code": 400, "description": failure})
		return
	}

	var result any = true
	switch method {
	case "sendMessage":
		s.mu.Lock()
		s.nextID++
		id := s.nextID
		s.mu.Unlock()
		result = map[string]any{"message_id": id, "chat": map[string]any{"id": body["chat_id"]}, "text": body["text"]}
	case "getUpdates":
		result = s.takeUpdates(r)
	}
	_ = json.NewEncoder(w).Encode(map[string]any{"ok": true, "result": result})
}

// takeUpdates drains queued updates, waiting briefly when there are none.
func (s *TelegramServer) takeUpdates(r *http.Request) []any {
	deadline := time.Now().Add(50 * time.Millisecond)
	for {
		s.mu.Lock()
		updates := s.updates
		s.updates = nil
		s.mu.Unlock()
		if len(updates) > 0 || time.Now().After(deadline) || r.Context().Err() != nil {
			if updates == nil {
				updates = []any{}
			}
			return updates
		}
		time.Sleep(5 * time.Millisecond)
	}
}
