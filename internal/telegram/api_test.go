package telegram

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"phoneclaw/internal/testutil"
)

func TestSendMessagePostsToBotPath(t *testing.T) {
	server := testutil.StartTelegramServer(t, "123:abc")
	api := NewAPI("123:abc", server.BaseURL, nil)
	msg, err := api.SendMessage(testutil.Context(t, time.Second), 42, "hello", ParseModeHTML)
	if err != nil {
		t.Fatalf("send: %v", err)
	}
	if msg.MessageID == 0 {
		t.Fatalf("expected message id")
	}
	calls := server.Calls("sendMessage")
	if len(calls) != 1 || calls[0].Text() != "hello" || calls[0].Body["parse_mode"] != "HTML" {
		t.Fatalf("unexpected calls %+v", calls)
	}
	if calls[0].Body["chat_id"] != float64(42) {
		t.Fatalf("unexpected chat id %v", calls[0].Body["chat_id"])
	}
}

func TestAPIErrorDecoded(t *testing.T) {
	server := testutil.StartTelegramServer(t, "tok")
	server.Fail("editMessageText", "Bad Request: message is not modified")
	api := NewAPI("tok", server.BaseURL, nil)
	err := api.EditMessageText(testutil.Context(t, time.Second), 1, 2, "x", "")
	var apiErr *APIError
	if !errors.As(err, &apiErr) || apiErr.Code != 400 || apiErr.Method != "editMessageText" {
		t.Fatalf("expected APIError, got %v", err)
	}
	if !IsNotModified(err) {
		t.Fatalf("expected not-modified detection")
	}
}

func TestTransportErrorRedactsToken(t *testing.T) {
	server := testutil.StartTelegramServer(t, "secret-token")
	server.Close()
	api := NewAPI("secret-token", server.BaseURL, nil)
	_, err := api.SendMessage(testutil.Context(t, time.Second), 1, "x", "")
	if err == nil {
		t.Fatalf("expected transport error")
	}
	if strings.Contains(err.Error(), "secret-token") {
		t.Fatalf("token leaked into %q", err.Error())
	}
}

func TestTransportErrorKeepsCauseAndHidesToken(t *testing.T) {
	server := testutil.StartTelegramServer(t, "secret-token")
	api := NewAPI("secret-token", server.BaseURL, nil)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := api.SendMessage(ctx, 1, "x", "")
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled in chain, got %v", err)
	}
	if strings.Contains(err.Error(), "secret-token") {
		t.Fatalf("token leaked into %q", err.Error())
	}
}

func TestGetUpdatesReturnsQueued(t *testing.T) {
	server := testutil.StartTelegramServer(t, "tok")
	server.QueueUpdate(map[string]any{"update_id": 7, "message": map[string]any{"message_id": 1, "chat": map[string]any{"id": 9}, "text": "hi"}})
	api := NewAPI("tok", server.BaseURL, nil)
	updates, err := api.GetUpdates(testutil.Context(t, 2*time.Second), 0, 0)
	if err != nil {
		t.Fatalf("get updates: %v", err)
	}
	if len(updates) != 1 || updates[0].UpdateID != 7 || updates[0].Message.Text != "hi" || updates[0].Message.Chat.ID != 9 {
		t.Fatalf("unexpected updates %+v", updates)
	}
}

func TestDisplayName(t *testing.T) {
	var nobody *User
	if nobody.DisplayName() != "User" {
		t.Fatalf("expected fallback name")
	}
	if (&User{Username: "ann", FirstName: "Ann"}).DisplayName() != "ann" || (&User{FirstName: "Ann"}).DisplayName() != "Ann" {
		t.Fatalf("unexpected display names")
	}
}
