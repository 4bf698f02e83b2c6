// Package agenttest provides a scripted model provider for loop tests.
package agenttest

import (
	"context"
	"fmt"
	"sync"

	"phoneclaw/internal/agent"
)

// Step is one scripted model answer.
type Step struct {
	Text      string
	Chunks    []string
	ToolCalls []agent.ToolCall
	Err       error
	// Block makes the call wait until its context is cancelled.
	Block bool
	// Before runs when the call starts, before any answer is produced.
	Before func()
}

// ScriptedProvider answers Complete calls from a fixed script.
type ScriptedProvider struct {
	mu      sync.Mutex
	steps   []Step
	prompts []agent.Prompt
	started chan struct{}
}

// NewScriptedProvider returns a provider that plays steps in order.
func NewScriptedProvider(steps ...Step) *ScriptedProvider {
	return &ScriptedProvider{steps: steps, started: make(chan struct{}, 64)}
}

// Call builds a tool call.
func Call(id, name, arguments string) agent.ToolCall {
	return agent.ToolCall{ID: id, Name: name, Arguments: arguments}
}

// Complete plays the next step.
func (p *ScriptedProvider) Complete(ctx context.Context, prompt agent.Prompt, onChunk agent.ChunkHandler) (agent.Response, error) {
	p.mu.Lock()
	index := len(p.prompts)
	p.prompts = append(p.prompts, prompt)
	var step Step
	exhausted := index >= len(p.steps)
	if !exhausted {
		step = p.steps[index]
	}
	p.mu.Unlock()

	select {
	case p.started <- struct{}{}:
	default:
	}
	if exhausted {
		return agent.Response{}, fmt.Errorf("script exhausted after %d calls", len(p.steps))
	}
	if step.Before != nil {
		step.Before()
	}
	if step.Block {
		<-ctx.Done()
		return agent.Response{}, ctx.Err()
	}
	if step.Err != nil {
		return agent.Response{}, step.Err
	}
	text := step.Text
	if len(step.Chunks) > 0 {
		text = ""
		for _, chunk := range step.Chunks {
			if onChunk != nil {
				onChunk(chunk)
			}
			text += chunk
		}
	}
	return agent.Response{Text: text, ToolCalls: append([]agent.ToolCall(nil), step.ToolCalls...)}, nil
}

// Calls reports how many times Complete was invoked.
func (p *ScriptedProvider) Calls() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.prompts)
}

// Prompts returns every prompt received.
func (p *ScriptedProvider) Prompts() []agent.Prompt {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]agent.Prompt(nil), p.prompts...)
}

// Started signals each time a call begins.
func (p *ScriptedProvider) Started() <-chan struct{} {
	return p.started
}
