package agent

import (
	"context"
	"testing"
)

func TestStartSessionSeedsSystemPrompt(t *testing.T) {
	session, err := StartSession("chat-1", Settings{APIKey: "k"}, sampleDescriptors())
	if err != nil {
		t.Fatalf("start session: %v", err)
	}
	if len(session.History) != 1 || session.History[0].Role != RoleSystem {
		t.Fatalf("expected single system message, got %+v", session.History)
	}
	if session.Settings.MaxSteps != DefaultMaxSteps || session.Settings.BaseURL != DefaultBaseURL {
		t.Fatalf("expected normalized settings, got %+v", session.Settings)
	}
	if len(session.Tools) != 3 {
		t.Fatalf("expected tool schemas, got %d", len(session.Tools))
	}
}

func TestStartSessionRequiresID(t *testing.T) {
	if _, err := StartSession(" ", Settings{}, nil); err == nil {
		t.Fatalf("expected error")
	}
}

func TestSessionAbortCancelsRunContext(t *testing.T) {
	session, err := StartSession("s", Settings{}, nil)
	if err != nil {
		t.Fatalf("start session: %v", err)
	}
	ctx, done := session.Begin(context.Background())
	defer done()
	if session.Aborted() {
		t.Fatalf("expected fresh run")
	}
	session.Abort()
	if !session.Aborted() {
		t.Fatalf("expected aborted flag")
	}
	select {
	case <-ctx.Done():
	default:
		t.Fatalf("expected run context to be cancelled")
	}
}

func TestSessionBeginResetsAbort(t *testing.T) {
	session, err := StartSession("s", Settings{}, nil)
	if err != nil {
		t.Fatalf("start session: %v", err)
	}
	session.Abort()
	_, done := session.Begin(context.Background())
	defer done()
	if session.Aborted() {
		t.Fatalf("expected Begin to reset the abort flag")
	}
}

func TestSettingsNormalized(t *testing.T) {
	got := Settings{BaseURL: " https://example.com/v1// ", MaxSteps: -3, Model: " "}.Normalized()
	if got.BaseURL != "https://example.com/v1" || got.MaxSteps != DefaultMaxSteps || got.Model != DefaultModel {
		t.Fatalf("unexpected normalized settings %+v", got)
	}
}

func TestApproxTokenCountCountsImagesFlat(t *testing.T) {
	history := []HistoryItem{
		{Role: RoleUser, Content: HistoryText{Text: "12345678"}},
		{Role: RoleUser, Content: HistoryParts{Parts: []ContentPart{{Kind: PartImage, Value: ImageDataURL("xxxxxxxxxxxxxxxxxxxxxxxxxxxxxxxx")}}}},
	}
	if got := ApproxTokenCount(history); got != 2+imageTokenEstimate {
		t.Fatalf("unexpected token count %d", got)
	}
}
