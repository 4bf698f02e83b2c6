//go:build cucumber

package cucumber

import (
	"context"
	"fmt"
	"time"

	"github.com/cucumber/godog"

	"phoneclaw/internal/agent"
	"phoneclaw/internal/agent/agenttest"
	"phoneclaw/internal/agent/call"
	"phoneclaw/internal/device"
	"phoneclaw/internal/device/devicetest"
	"phoneclaw/internal/tools"
)

// scenarioTimeout bounds every run a scenario starts.
const scenarioTimeout = 5 * time.Second

// featureState holds one scenario's device, registry, script and outcome.
type featureState struct {
	fake     *devicetest.Fake
	registry *tools.Registry
	settings agent.Settings
	script   []agenttest.Step
	provider *agenttest.ScriptedProvider
	session  *agent.Session
	result   call.CallResult

	prompts   []string
	schemas   []agent.ToolDefinition
	streamed  agent.Response
	streamErr error
}

// InitializeScenario wires cucumber steps to the feature state.
func InitializeScenario(ctx *godog.ScenarioContext) {
	state := &featureState{}

	ctx.Before(func(ctx context.Context, sc *godog.Scenario) (context.Context, error) {
		return ctx, state.reset()
	})

	ctx.Step(`^a device with the standard tool catalog$`, state.aDeviceWithTheStandardCatalog)
	ctx.Step(`^the step budget is (\d+)$`, state.theStepBudgetIs)
	ctx.Step(`^image input is (enabled|disabled)$`, state.imageInputIs)
	ctx.Step(`^the model requests "([^"]+)" with arguments '([^']*)'$`, state.theModelRequests)
	ctx.Step(`^the model requests "([^"]+)" and "([^"]+)" in one answer$`, state.theModelRequestsTwo)
	ctx.Step(`^the model answers "([^"]*)"$`, state.theModelAnswers)
	ctx.Step(`^the model never answers$`, state.theModelNeverAnswers)

	ctx.Step(`^I send "([^"]+)"$`, state.iSend)
	ctx.Step(`^I send "([^"]+)" and stop the run before the model answers$`, state.iSendAndAbort)
	ctx.Step(`^I build the system prompt twice$`, state.iBuildTheSystemPromptTwice)
	ctx.Step(`^I build schemas for a tool with required "([^"]+)" and optional "([^"]+)"$`, state.iBuildSchemasForATool)
	ctx.Step(`^I build schemas for the catalog$`, state.iBuildSchemasForTheCatalog)
	ctx.Step(`^the model streams these tool call deltas:$`, state.theModelStreamsDeltas)

	ctx.Step(`^the run ends as "([^"]+)"$`, state.theRunEndsAs)
	ctx.Step(`^the run output is "([^"]+)"$`, state.theRunOutputIs)
	ctx.Step(`^the model was called (\d+) times?$`, state.theModelWasCalled)
	ctx.Step(`^the device received "([^"]+)"$`, state.theDeviceReceived)
	ctx.Step(`^a tool message for "([^"]+)" contains "([^"]+)"$`, state.aToolMessageContains)
	ctx.Step(`^every tool message answers exactly one earlier request in order$`, state.everyToolMessageAnswersOneRequest)
	ctx.Step(`^the conversation holds no assistant message$`, state.theConversationHoldsNoAssistantMessage)
	ctx.Step(`^the conversation holds no image$`, state.theConversationHoldsNoImage)
	ctx.Step(`^the conversation holds an image$`, state.theConversationHoldsAnImage)
	ctx.Step(`^both prompts are identical$`, state.bothPromptsAreIdentical)
	ctx.Step(`^the schema requires only "([^"]+)"$`, state.theSchemaRequiresOnly)
	ctx.Step(`^the schema declares "([^"]+)"$`, state.theSchemaDeclares)
	ctx.Step(`^every tool resolves by name with required names declared$`, state.everyToolResolves)
	ctx.Step(`^the assembled call is "([^"]+)" with arguments '([^']*)'$`, state.theAssembledCallIs)
}

// reset clears state before each scenario.
func (s *featureState) reset() error {
	*s = featureState{settings: agent.Settings{APIKey: "test-key", Model: "test-model"}}
	return nil
}

func (s *featureState) aDeviceWithTheStandardCatalog() error {
	s.fake = devicetest.New()
	s.fake.Screenshot = "aGVsbG8="
	registry, err := tools.NewDeviceRegistry(device.NewClient(s.fake, nil), tools.CatalogOptions{LaunchSettle: -1})
	if err != nil {
		return fmt.Errorf("build registry: %w", err)
	}
	s.registry = registry
	return nil
}

func (s *featureState) theStepBudgetIs(steps int) error {
	s.settings.MaxSteps = steps
	return nil
}

func (s *featureState) imageInputIs(mode string) error {
	s.settings.ImageCapability = mode == "enabled"
	return nil
}
