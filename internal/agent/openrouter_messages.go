package agent

import (
	"fmt"
)

// openRouterRequest is the JSON payload sent to the completions endpoint.
type openRouterRequest struct {
	Model      string              `json:"model"`
	Stream     bool                `json:"stream,omitempty"`
	Messages   []openRouterMessage `json:"messages"`
	Tools      []openRouterTool    `json:"tools,omitempty"`
	ToolChoice string              `json:"tool_choice,omitempty"`
}

// openRouterMessage represents a single chat message. Content is a string,
// a list of parts, or null for tool-only assistant turns.
type openRouterMessage struct {
	Role       string               `json:"role"`
	Content    any                  `json:"content"`
	ToolCalls  []openRouterToolCall `json:"tool_calls,omitempty"`
	ToolCallID string               `json:"tool_call_id,omitempty"`
	Name       string               `json:"name,omitempty"`
}

// openRouterPart is one multimodal content part.
type openRouterPart struct {
	Type     string              `json:"type"`
	Text     string              `json:"text,omitempty"`
	ImageURL *openRouterImageURL `json:"image_url,omitempty"`
}

type openRouterImageURL struct {
	URL string `json:"url"`
}

// openRouterTool describes a function tool.
type openRouterTool struct {
	Type     string                       `json:"type"`
	Function openRouterFunctionDefinition `json:"function"`
}

// openRouterFunctionDefinition describes a tool's function signature.
type openRouterFunctionDefinition struct {
	Name        string     `json:"name"`
	Description string     `json:"description,omitempty"`
	Parameters  ToolSchema `json:"parameters"`
}

// openRouterToolCall represents a tool call emitted by the model.
type openRouterToolCall struct {
	ID       string                 `json:"id"`
	Type     string                 `json:"type"`
	Function openRouterFunctionCall `json:"function"`
}

// openRouterFunctionCall describes the name and arguments of a tool call.
type openRouterFunctionCall struct {
	Name      string `json:"name"`
	Arguments string `json:"arguments"`
}

// openRouterResponse is a blocking completion body.
type openRouterResponse struct {
	Choices []struct {
		Message struct {
			Content   *string              `json:"content"`
			ToolCalls []openRouterToolCall `json:"tool_calls"`
		} `json:"message"`
	} `json:"choices"`
	Error *openRouterErrorBody `json:"error"`
}

// openRouterErrorBody is the error object some providers return with a 200
// status or inside a stream.
type openRouterErrorBody struct {
	Code    any    `json:"code"`
	Message string `json:"message"`
}

func (e *openRouterErrorBody) asError() error {
	if e.Code != nil {
		return fmt.Errorf("provider error %v: %s", e.Code, e.Message)
	}
	return fmt.Errorf("provider error: %s", e.Message)
}

// buildOpenRouterMessages converts a prompt into message payloads.
func buildOpenRouterMessages(prompt Prompt) ([]openRouterMessage, error) {
	messages := make([]openRouterMessage, 0, len(prompt.Messages))
	for _, item := range prompt.Messages {
		msg, err := toOpenRouterMessage(item)
		if err != nil {
			return nil, err
		}
		messages = append(messages, msg)
	}
	return messages, nil
}

// toOpenRouterMessage converts a history item into a message payload.
func toOpenRouterMessage(item HistoryItem) (openRouterMessage, error) {
	switch content := item.Content.(type) {
	case HistoryText:
		return openRouterMessage{Role: item.Role, Content: content.Text}, nil
	case HistoryParts:
		parts := make([]openRouterPart, 0, len(content.Parts))
		for _, part := range content.Parts {
			switch part.Kind {
			case PartText:
				parts = append(parts, openRouterPart{Type: "text", Text: part.Value})
			case PartImage:
				parts = append(parts, openRouterPart{Type: "image_url", ImageURL: &openRouterImageURL{URL: part.Value}})
			default:
				return openRouterMessage{}, fmt.Errorf("unsupported content part %q", part.Kind)
			}
		}
		return openRouterMessage{Role: item.Role, Content: parts}, nil
	case AssistantTurn:
		msg := openRouterMessage{Role: RoleAssistant}
		if content.Text != "" {
			msg.Content = content.Text
		}
		for _, call := range content.ToolCalls {
			if call.ID == "" {
				return openRouterMessage{}, fmt.Errorf("tool call id is required")
			}
			msg.ToolCalls = append(msg.ToolCalls, openRouterToolCall{
				ID:   call.ID,
				Type: "function",
				Function: openRouterFunctionCall{
					Name:      call.Name,
					Arguments: call.Arguments,
				},
			})
		}
		return msg, nil
	case ToolOutput:
		if content.ToolCallID == "" {
			return openRouterMessage{}, fmt.Errorf("tool output for %s has no call id", content.Name)
		}
		return openRouterMessage{
			Role:       RoleTool,
			Content:    content.Result.Output,
			ToolCallID: content.ToolCallID,
			Name:       content.Name,
		}, nil
	default:
		return openRouterMessage{}, fmt.Errorf("unsupported history content type %T", item.Content)
	}
}

// buildOpenRouterTools converts tool definitions into tool payloads.
func buildOpenRouterTools(defs []ToolDefinition) []openRouterTool {
	out := make([]openRouterTool, 0, len(defs))
	for _, def := range defs {
		params := def.Parameters
		if params.Type == "" {
			params.Type = "object"
		}
		out = append(out, openRouterTool{
			Type: "function",
			Function: openRouterFunctionDefinition{
				Name:        def.Name,
				Description: def.Description,
				Parameters:  params,
			},
		})
	}
	return out
}
