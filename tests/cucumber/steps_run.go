//go:build cucumber

package cucumber

import (
	"context"
	"fmt"
	"time"

	"phoneclaw/internal/agent"
	"phoneclaw/internal/agent/agenttest"
	"phoneclaw/internal/agent/call"
)

func (s *featureState) theModelRequests(name, arguments string) error {
	s.script = append(s.script, agenttest.Step{ToolCalls: []agent.ToolCall{
		agenttest.Call(fmt.Sprintf("call-%d", len(s.script)+1), name, arguments),
	}})
	return nil
}

func (s *featureState) theModelRequestsTwo(first, second string) error {
	step := len(s.script) + 1
	s.script = append(s.script, agenttest.Step{ToolCalls: []agent.ToolCall{
		agenttest.Call(fmt.Sprintf("call-%d-a", step), first, "{}"),
		agenttest.Call(fmt.Sprintf("call-%d-b", step), second, "{}"),
	}})
	return nil
}

func (s *featureState) theModelAnswers(text string) error {
	s.script = append(s.script, agenttest.Step{Text: text})
	return nil
}

func (s *featureState) theModelNeverAnswers() error {
	s.script = append(s.script, agenttest.Step{Block: true})
	return nil
}

// startSession prepares a session and provider from the scenario script.
func (s *featureState) startSession() error {
	if s.registry == nil {
		return fmt.Errorf("no device configured")
	}
	session, err := agent.StartSession("scenario", s.settings, s.registry.Describe())
	if err != nil {
		return err
	}
	s.session = session
	s.provider = agenttest.NewScriptedProvider(s.script...)
	return nil
}

func (s *featureState) iSend(text string) error {
	if err := s.startSession(); err != nil {
		return err
	}
	ctx, cancel := context.WithTimeout(context.Background(), scenarioTimeout)
	defer cancel()
	result, _ := call.RunCall(ctx, s.session, s.provider, s.registry, text, call.RunOptions{}, nil)
	s.result = result
	return nil
}

func (s *featureState) iSendAndAbort(text string) error {
	if err := s.startSession(); err != nil {
		return err
	}
	ctx, cancel := context.WithTimeout(context.Background(), scenarioTimeout)
	defer cancel()
	done := make(chan call.CallResult, 1)
	go func() {
		result, _ := call.RunCall(ctx, s.session, s.provider, s.registry, text, call.RunOptions{}, nil)
		done <- result
	}()
	select {
	case <-s.provider.Started():
	case <-time.After(scenarioTimeout):
		return fmt.Errorf("model was never called")
	}
	s.session.Abort()
	select {
	case s.result = <-done:
		return nil
	case <-time.After(scenarioTimeout):
		return fmt.Errorf("run did not stop after abort")
	}
}
