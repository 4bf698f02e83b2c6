//go:build cucumber

package cli

import (
	"context"
	"fmt"
	"io"
	"path/filepath"
	"testing"
	"time"

	"github.com/cucumber/godog"

	"phoneclaw/internal/ui/chat"
)

// TestLiveUIScenarios runs the live UI feature scenarios.
func TestLiveUIScenarios(t *testing.T) {
	featurePath := filepath.Join("..", "..", "tests", "cucumber", "features", "live_ui.feature")
	suite := godog.TestSuite{
		Name:                "live-ui",
		ScenarioInitializer: InitializeLiveUIScenario,
		Options: &godog.Options{
			Format:    "pretty",
			Paths:     []string{featurePath},
			Strict:    true,
			TestingT:  t,
			Randomize: 0,
		},
	}
	if suite.Run() != 0 {
		t.Fatalf("non-zero godog status")
	}
}

// InitializeLiveUIScenario wires steps for live UI scenarios.
func InitializeLiveUIScenario(ctx *godog.ScenarioContext) {
	state := &liveUIScenarioState{}
	orig := isTerminal
	ctx.Before(func(ctx context.Context, _ *godog.Scenario) (context.Context, error) {
		state.reset()
		isTerminal = func(io.Writer) bool { return state.isTTY }
		return ctx, nil
	})
	ctx.After(func(ctx context.Context, _ *godog.Scenario, _ error) (context.Context, error) {
		isTerminal = orig
		return ctx, nil
	})

	ctx.Step(`^a TTY stdout$`, state.givenTTY)
	ctx.Step(`^stdout is not a TTY$`, state.givenNonTTY)
	ctx.Step(`^a run that calls the tool "([^"]+)"$`, state.givenRunWithTool)
	ctx.Step(`^I run "([^"]+)"$`, state.whenIRun)
	ctx.Step(`^a live UI is shown$`, state.thenLiveUIShown)
	ctx.Step(`^the transcript shows the instruction$`, state.thenInstructionShown)
	ctx.Step(`^the transcript shows a finished call to "([^"]+)"$`, state.thenToolShown)
	ctx.Step(`^the output uses plain text$`, state.thenPlainOutput)
}

type liveUIScenarioState struct {
	isTTY    bool
	decision runOutput
	uiState  chat.State
}

// reset clears scenario state.
func (s *liveUIScenarioState) reset() {
	s.isTTY = false
	s.decision = runOutput{}
	s.uiState = chat.NewState()
}

func (s *liveUIScenarioState) givenTTY() error {
	s.isTTY = true
	return nil
}

func (s *liveUIScenarioState) givenNonTTY() error {
	s.isTTY = false
	return nil
}

// givenRunWithTool feeds one tool round trip through the reducer.
func (s *liveUIScenarioState) givenRunWithTool(name string) error {
	now := time.Now()
	for _, event := range []chat.Event{
		{Kind: chat.EventRunStart, RunID: "run-1", Text: "open settings", At: now},
		{Kind: chat.EventThinking, At: now},
		{Kind: chat.EventToolCall, Name: name, Args: map[string]any{"packageName": "com.android.settings"}, At: now},
		{Kind: chat.EventToolResult, Name: name, Text: "Launched com.android.settings", At: now},
	} {
		s.uiState = chat.Reduce(s.uiState, event)
	}
	return nil
}

// whenIRun evaluates the UI mode decision for the command.
func (s *liveUIScenarioState) whenIRun(_ string) error {
	decision, err := resolveRunOutput("auto", false, nil)
	if err != nil {
		return err
	}
	s.decision = decision
	return nil
}

func (s *liveUIScenarioState) thenLiveUIShown() error {
	if !s.decision.live {
		return fmt.Errorf("expected live UI to be enabled")
	}
	return nil
}

func (s *liveUIScenarioState) thenInstructionShown() error {
	if len(s.uiState.Entries) == 0 || s.uiState.Entries[0].Kind != chat.EntryUser {
		return fmt.Errorf("expected the instruction as the first entry")
	}
	return nil
}

func (s *liveUIScenarioState) thenToolShown(name string) error {
	for _, entry := range s.uiState.Entries {
		if entry.Kind == chat.EntryTool && entry.Tool == name && entry.Done {
			return nil
		}
	}
	return fmt.Errorf("expected a finished %s entry, got %+v", name, s.uiState.Entries)
}

func (s *liveUIScenarioState) thenPlainOutput() error {
	if s.decision.live {
		return fmt.Errorf("expected plain output")
	}
	return nil
}
