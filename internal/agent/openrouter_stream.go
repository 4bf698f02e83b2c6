package agent

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"strings"
)

// openRouterStreamChunk is a partial SSE payload.
type openRouterStreamChunk struct {
	Choices []openRouterStreamChoice `json:"choices"`
	Error   *openRouterErrorBody     `json:"error"`
}

// openRouterStreamChoice contains a delta event.
type openRouterStreamChoice struct {
	Delta        openRouterStreamDelta `json:"delta"`
	FinishReason string                `json:"finish_reason"`
}

// openRouterStreamDelta contains incremental content or tool calls.
type openRouterStreamDelta struct {
	Content   string                     `json:"content"`
	ToolCalls []openRouterStreamToolCall `json:"tool_calls"`
}

// openRouterStreamToolCall represents a streaming tool call delta.
type openRouterStreamToolCall struct {
	Index    int                    `json:"index"`
	ID       string                 `json:"id"`
	Type     string                 `json:"type"`
	Function openRouterFunctionCall `json:"function"`
}

// toolCallAccumulator gathers streaming tool call fragments. Providers split
// names as well as arguments across chunks, so both are appended.
type toolCallAccumulator struct {
	ID        string
	Name      strings.Builder
	Arguments strings.Builder
}

// streamAccumulator folds deltas into a Response.
type streamAccumulator struct {
	content   strings.Builder
	calls     map[int]*toolCallAccumulator
	sawChoice bool
	onChunk   ChunkHandler
	skipped   int
	streamErr error
}

func newStreamAccumulator(onChunk ChunkHandler) *streamAccumulator {
	return &streamAccumulator{calls: make(map[int]*toolCallAccumulator), onChunk: onChunk}
}

// add applies one SSE data payload. Malformed payloads are counted and skipped.
func (a *streamAccumulator) add(data string) {
	var chunk openRouterStreamChunk
	if err := json.Unmarshal([]byte(data), &chunk); err != nil {
		a.skipped++
		return
	}
	if chunk.Error != nil {
		a.streamErr = chunk.Error.asError()
		return
	}
	for _, choice := range chunk.Choices {
		a.sawChoice = true
		if choice.Delta.Content != "" {
			a.content.WriteString(choice.Delta.Content)
			if a.onChunk != nil {
				a.onChunk(choice.Delta.Content)
			}
		}
		for _, call := range choice.Delta.ToolCalls {
			acc := a.calls[call.Index]
			if acc == nil {
				acc = &toolCallAccumulator{}
				a.calls[call.Index] = acc
			}
			if call.ID != "" {
				acc.ID = call.ID
			}
			acc.Name.WriteString(call.Function.Name)
			acc.Arguments.WriteString(call.Function.Arguments)
		}
	}
}

// response emits accumulated tool calls in ascending index order.
func (a *streamAccumulator) response() Response {
	response := Response{Text: a.content.String()}
	if len(a.calls) == 0 {
		return response
	}
	indices := make([]int, 0, len(a.calls))
	for index := range a.calls {
		indices = append(indices, index)
	}
	sort.Ints(indices)
	for _, index := range indices {
		acc := a.calls[index]
		callID := acc.ID
		if callID == "" {
			callID = syntheticCallID()
		}
		response.ToolCalls = append(response.ToolCalls, ToolCall{
			ID:        callID,
			Name:      acc.Name.String(),
			Arguments: acc.Arguments.String(),
		})
	}
	return response
}

// parseOpenRouterStream reads SSE output until [DONE] or EOF.
func parseOpenRouterStream(ctx context.Context, reader io.Reader, onChunk ChunkHandler) (Response, error) {
	scanner := bufio.NewScanner(reader)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	acc := newStreamAccumulator(onChunk)

	for scanner.Scan() {
		if err := ctx.Err(); err != nil {
			return Response{}, err
		}
		line := strings.TrimSpace(scanner.Text())
		if line == "" || !strings.HasPrefix(line, "data:") {
			continue
		}
		data := strings.TrimSpace(strings.TrimPrefix(line, "data:"))
		if data == "[DONE]" {
			break
		}
		acc.add(data)
		if acc.streamErr != nil {
			return Response{}, acc.streamErr
		}
	}
	if err := scanner.Err(); err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return Response{}, ctxErr
		}
		return Response{}, fmt.Errorf("read stream: %w", err)
	}
	if !acc.sawChoice {
		return Response{}, ErrEmptyResponse
	}
	return acc.response(), nil
}
