package agent

// imageTokenEstimate is a flat per-image allowance.
const imageTokenEstimate = 1000

// ApproxTokenCount estimates token usage by dividing character count by four.
func ApproxTokenCount(history []HistoryItem) int {
	total := 0
	images := 0
	for _, item := range history {
		switch value := item.Content.(type) {
		case HistoryText:
			total += len(value.Text)
		case HistoryParts:
			for _, part := range value.Parts {
				if part.Kind == PartImage {
					images++
					continue
				}
				total += len(part.Value)
			}
		case AssistantTurn:
			total += len(value.Text)
			for _, call := range value.ToolCalls {
				total += len(call.Name) + len(call.Arguments)
			}
		case ToolOutput:
			total += len(value.Result.Output)
		}
	}
	return total/4 + images*imageTokenEstimate
}
