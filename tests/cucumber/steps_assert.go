//go:build cucumber

package cucumber

import (
	"fmt"
	"slices"
	"strings"

	"phoneclaw/internal/agent"
)

func (s *featureState) theRunEndsAs(status string) error {
	if string(s.result.Status) != status {
		return fmt.Errorf("expected status %s, got %s (output %q)", status, s.result.Status, s.result.Output)
	}
	return nil
}

func (s *featureState) theRunOutputIs(output string) error {
	if s.result.Output != output {
		return fmt.Errorf("expected output %q, got %q", output, s.result.Output)
	}
	return nil
}

func (s *featureState) theModelWasCalled(times int) error {
	if got := s.provider.Calls(); got != times {
		return fmt.Errorf("expected %d model calls, got %d", times, got)
	}
	return nil
}

func (s *featureState) theDeviceReceived(op string) error {
	if !slices.Contains(s.fake.Calls(), op) {
		return fmt.Errorf("expected device call %q, got %v", op, s.fake.Calls())
	}
	return nil
}

func (s *featureState) aToolMessageContains(name, text string) error {
	for _, item := range s.session.History {
		output, ok := item.Content.(agent.ToolOutput)
		if !ok || output.Name != name {
			continue
		}
		if strings.Contains(output.Result.Output, text) {
			return nil
		}
		return fmt.Errorf("tool message for %s is %q", name, output.Result.Output)
	}
	return fmt.Errorf("no tool message for %s", name)
}

// everyToolMessageAnswersOneRequest walks the conversation and pairs each
// tool message with the oldest unanswered request.
func (s *featureState) everyToolMessageAnswersOneRequest() error {
	var pending []string
	answered := map[string]bool{}
	for _, item := range s.session.History {
		switch content := item.Content.(type) {
		case agent.AssistantTurn:
			if len(pending) > 0 {
				return fmt.Errorf("requests %v unanswered before the next model turn", pending)
			}
			for _, toolCall := range content.ToolCalls {
				pending = append(pending, toolCall.ID)
			}
		case agent.ToolOutput:
			if item.Role != agent.RoleTool {
				return fmt.Errorf("tool output with role %s", item.Role)
			}
			if answered[content.ToolCallID] {
				return fmt.Errorf("request %s answered twice", content.ToolCallID)
			}
			if len(pending) == 0 || pending[0] != content.ToolCallID {
				return fmt.Errorf("tool message %s out of order, pending %v", content.ToolCallID, pending)
			}
			answered[content.ToolCallID] = true
			pending = pending[1:]
		}
	}
	if len(pending) > 0 {
		return fmt.Errorf("requests %v never answered", pending)
	}
	if len(answered) == 0 {
		return fmt.Errorf("expected at least one tool message")
	}
	return nil
}

func (s *featureState) theConversationHoldsNoAssistantMessage() error {
	for _, item := range s.session.History {
		if item.Role == agent.RoleAssistant {
			return fmt.Errorf("unexpected assistant message %+v", item.Content)
		}
	}
	return nil
}

func (s *featureState) countImages() int {
	count := 0
	for _, item := range s.session.History {
		parts, ok := item.Content.(agent.HistoryParts)
		if !ok {
			continue
		}
		for _, part := range parts.Parts {
			if part.Kind == agent.PartImage {
				count++
			}
		}
	}
	return count
}

func (s *featureState) theConversationHoldsNoImage() error {
	if n := s.countImages(); n != 0 {
		return fmt.Errorf("expected no image parts, got %d", n)
	}
	return nil
}

func (s *featureState) theConversationHoldsAnImage() error {
	if n := s.countImages(); n != 1 {
		return fmt.Errorf("expected one image part, got %d", n)
	}
	return nil
}
