package agent

import "phoneclaw/internal/tools"

// Conversation roles.
const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
	RoleTool      = "tool"
)

// HistoryItem captures a single conversation message with a role and typed content.
type HistoryItem struct {
	Role    string
	Content HistoryContent
}

// HistoryContent represents a single typed content item in a turn.
type HistoryContent interface {
	historyContent()
}

// HistoryText holds plain text content for a history item.
type HistoryText struct {
	Text string
}

// PartKind distinguishes multimodal content parts.
type PartKind string

const (
	PartText  PartKind = "text"
	PartImage PartKind = "image"
)

// ContentPart is one element of a multimodal message. For images, Value is a
// data URL.
type ContentPart struct {
	Kind  PartKind
	Value string
}

// HistoryParts holds ordered multimodal content.
type HistoryParts struct {
	Parts []ContentPart
}

// AssistantTurn is a model response: optional text plus the tool calls it requested.
type AssistantTurn struct {
	Text      string
	ToolCalls []ToolCall
}

// ToolCall describes a tool invocation emitted by the model. Arguments is the
// raw JSON text as streamed.
type ToolCall struct {
	ID        string
	Name      string
	Arguments string
}

// ToolOutput is the result of exactly one earlier ToolCall.
type ToolOutput struct {
	ToolCallID string
	Name       string
	Result     tools.CallResult
}

func (HistoryText) historyContent()   {}
func (HistoryParts) historyContent()  {}
func (AssistantTurn) historyContent() {}
func (ToolOutput) historyContent()    {}

// ImageDataURL wraps a base64 PNG payload as a data URL.
func ImageDataURL(base64PNG string) string {
	return "data:image/png;base64," + base64PNG
}
