package history

import (
	"encoding/json"
	"fmt"
	"strings"

	"phoneclaw/internal/agent"
)

// ImageMarker replaces image payloads in stored transcripts.
const ImageMarker = "<image omitted>"

// Message kinds.
const (
	KindText      = "text"
	KindParts     = "parts"
	KindAssistant = "assistant"
	KindTool      = "tool"
)

// Message is one stored transcript entry. Content is JSON whose shape
// depends on Kind.
type Message struct {
	Seq     int
	Role    string
	Kind    string
	Content string
}

type textContent struct {
	Text string `json:"text"`
}

type partContent struct {
	Kind  string `json:"kind"`
	Value string `json:"value"`
}

type partsContent struct {
	Parts []partContent `json:"parts"`
}

type toolCallContent struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Arguments string `json:"arguments"`
}

type assistantContent struct {
	Text      string            `json:"text,omitempty"`
	ToolCalls []toolCallContent `json:"tool_calls,omitempty"`
}

type toolContent struct {
	ToolCallID string `json:"tool_call_id"`
	Name       string `json:"name"`
	Output     string `json:"output"`
	Error      string `json:"error,omitempty"`
	Truncated  bool   `json:"truncated,omitempty"`
	DurationMS int64  `json:"duration_ms"`
}

// EncodeTranscript converts a conversation into storable messages.
func EncodeTranscript(items []agent.HistoryItem) ([]Message, error) {
	out := make([]Message, 0, len(items))
	for i, item := range items {
		kind, payload := encodeContent(item.Content)
		data, err := json.Marshal(payload)
		if err != nil {
			return nil, fmt.Errorf("encode message %d: %w", i, err)
		}
		out = append(out, Message{Seq: i, Role: item.Role, Kind: kind, Content: string(data)})
	}
	return out, nil
}

func encodeContent(content agent.HistoryContent) (string, any) {
	switch value := content.(type) {
	case agent.HistoryText:
		return KindText, textContent{Text: value.Text}
	case agent.HistoryParts:
		parts := make([]partContent, 0, len(value.Parts))
		for _, part := range value.Parts {
			stored := part.Value
			if part.Kind == agent.PartImage {
				stored = ImageMarker
			}
			parts = append(parts, partContent{Kind: string(part.Kind), Value: stored})
		}
		return KindParts, partsContent{Parts: parts}
	case agent.AssistantTurn:
		calls := make([]toolCallContent, 0, len(value.ToolCalls))
		for _, call := range value.ToolCalls {
			calls = append(calls, toolCallContent{ID: call.ID, Name: call.Name, Arguments: call.Arguments})
		}
		return KindAssistant, assistantContent{Text: value.Text, ToolCalls: calls}
	case agent.ToolOutput:
		return KindTool, toolContent{
			ToolCallID: value.ToolCallID,
			Name:       value.Name,
			Output:     value.Result.Output,
			Error:      value.Result.Error,
			Truncated:  value.Result.Truncated,
			DurationMS: value.Result.Duration.Milliseconds(),
		}
	default:
		return KindText, textContent{Text: fmt.Sprintf("%v", value)}
	}
}

// Render formats the message for terminal display.
func (m Message) Render() string {
	switch m.Kind {
	case KindText:
		var content textContent
		if err := json.Unmarshal([]byte(m.Content), &content); err != nil {
			return fmt.Sprintf("%s: <unreadable: %v>", m.Role, err)
		}
		if m.Role == agent.RoleSystem {
			return fmt.Sprintf("%s: <system prompt %d bytes>", m.Role, len(content.Text))
		}
		return fmt.Sprintf("%s: %s", m.Role, content.Text)
	case KindParts:
		var content partsContent
		if err := json.Unmarshal([]byte(m.Content), &content); err != nil {
			return fmt.Sprintf("%s: <unreadable: %v>", m.Role, err)
		}
		values := make([]string, 0, len(content.Parts))
		for _, part := range content.Parts {
			values = append(values, part.Value)
		}
		return fmt.Sprintf("%s: %s", m.Role, strings.Join(values, " "))
	case KindAssistant:
		var content assistantContent
		if err := json.Unmarshal([]byte(m.Content), &content); err != nil {
			return fmt.Sprintf("%s: <unreadable: %v>", m.Role, err)
		}
		lines := []string{}
		if content.Text != "" {
			lines = append(lines, fmt.Sprintf("%s: %s", m.Role, content.Text))
		}
		for _, call := range content.ToolCalls {
			lines = append(lines, fmt.Sprintf("%s: -> %s %s", m.Role, call.Name, call.Arguments))
		}
		return strings.Join(lines, "\n")
	case KindTool:
		var content toolContent
		if err := json.Unmarshal([]byte(m.Content), &content); err != nil {
			return fmt.Sprintf("%s: <unreadable: %v>", m.Role, err)
		}
		return fmt.Sprintf("%s: <- %s (%dms) %s", m.Role, content.Name, content.DurationMS, content.Output)
	}
	return fmt.Sprintf("%s: %s", m.Role, m.Content)
}
