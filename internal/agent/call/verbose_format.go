package call

import (
	"encoding/json"
	"fmt"
	"strings"

	"phoneclaw/internal/agent"
	"phoneclaw/internal/tools"
)

// formatPrompt renders the conversation for verbose logging. The system
// prompt is summarized since it is identical on every step.
func formatPrompt(prompt agent.Prompt, toolOutputMaxLines int) string {
	var builder strings.Builder
	if len(prompt.Tools) > 0 {
		names := make([]string, 0, len(prompt.Tools))
		for _, tool := range prompt.Tools {
			names = append(names, tool.Name)
		}
		builder.WriteString("tools: ")
		builder.WriteString(strings.Join(names, ", "))
		builder.WriteString("\n")
	}
	if len(prompt.Messages) > 0 {
		builder.WriteString("messages:\n")
		for _, item := range prompt.Messages {
			builder.WriteString(formatHistoryItem(item, toolOutputMaxLines))
		}
	}
	return strings.TrimRight(builder.String(), "\n")
}

func formatHistoryItem(item agent.HistoryItem, toolOutputMaxLines int) string {
	switch content := item.Content.(type) {
	case agent.HistoryText:
		if item.Role == agent.RoleSystem {
			return fmt.Sprintf("- %s: <system prompt %d bytes>\n", item.Role, len(content.Text))
		}
		return fmt.Sprintf("- %s: %s\n", item.Role, content.Text)
	case agent.HistoryParts:
		parts := make([]string, 0, len(content.Parts))
		for _, part := range content.Parts {
			if part.Kind == agent.PartImage {
				parts = append(parts, fmt.Sprintf("<image %d bytes>", len(part.Value)))
				continue
			}
			parts = append(parts, part.Value)
		}
		return fmt.Sprintf("- %s: %s\n", item.Role, strings.Join(parts, " "))
	case agent.AssistantTurn:
		var builder strings.Builder
		if content.Text != "" {
			fmt.Fprintf(&builder, "- %s: %s\n", item.Role, content.Text)
		}
		for _, call := range content.ToolCalls {
			fmt.Fprintf(&builder, "- %s: tool_call id=%s name=%s args=%s\n", item.Role, call.ID, call.Name, call.Arguments)
		}
		return builder.String()
	case agent.ToolOutput:
		header := fmt.Sprintf("- %s: tool_output call_id=%s tool=%s bytes=%d truncated=%t error=%s\n", item.Role, content.ToolCallID, content.Name, content.Result.OutputBytes, content.Result.Truncated, content.Result.Error)
		output := strings.TrimRight(content.Result.Output, "\n")
		if output == "" {
			return header
		}
		output = truncateVerboseInline(limitOutputLines(output, toolOutputMaxLines))
		return header + indentLines(output, "  ") + "\n"
	default:
		return fmt.Sprintf("- %s: %v\n", item.Role, content)
	}
}

// formatArgs renders tool call arguments for verbose logging.
func formatArgs(args tools.Args) string {
	if len(args) == 0 {
		return "{}"
	}
	payload, err := json.Marshal(args)
	if err != nil {
		return "<invalid args>"
	}
	return string(payload)
}

func indentLines(value, prefix string) string {
	lines := strings.Split(value, "\n")
	for i, line := range lines {
		lines[i] = prefix + line
	}
	return strings.Join(lines, "\n")
}
