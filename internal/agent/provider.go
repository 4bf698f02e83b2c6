package agent

import "context"

// Prompt is the fully assembled request sent to a provider.
type Prompt struct {
	Messages []HistoryItem
	Tools    []ToolDefinition
}

// Response is the normalized model answer, identical for blocking and
// streaming transports.
type Response struct {
	Text      string
	ToolCalls []ToolCall
}

// ChunkHandler receives content deltas as they arrive.
type ChunkHandler func(fragment string)

// Provider completes a prompt. onChunk may be nil; providers that do not
// stream never call it.
type Provider interface {
	Complete(ctx context.Context, prompt Prompt, onChunk ChunkHandler) (Response, error)
}

// ProviderFunc adapts a function to Provider.
type ProviderFunc func(ctx context.Context, prompt Prompt, onChunk ChunkHandler) (Response, error)

// Complete calls f.
func (f ProviderFunc) Complete(ctx context.Context, prompt Prompt, onChunk ChunkHandler) (Response, error) {
	return f(ctx, prompt, onChunk)
}

// TokenCounter estimates the prompt size of a history.
type TokenCounter func(history []HistoryItem) int
