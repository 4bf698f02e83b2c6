//go:build cucumber

package cucumber

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"slices"

	"github.com/cucumber/godog"

	"phoneclaw/internal/agent"
	"phoneclaw/internal/tools"
)

func (s *featureState) iBuildTheSystemPromptTwice() error {
	for range 2 {
		s.prompts = append(s.prompts, agent.BuildSystemPrompt(s.registry.Describe(), s.settings.ImageCapability))
	}
	return nil
}

func (s *featureState) bothPromptsAreIdentical() error {
	if len(s.prompts) != 2 || s.prompts[0] == "" {
		return fmt.Errorf("expected two prompts, got %d", len(s.prompts))
	}
	if s.prompts[0] != s.prompts[1] {
		return fmt.Errorf("prompts differ")
	}
	return nil
}

func (s *featureState) iBuildSchemasForATool(required, optional string) error {
	s.schemas = agent.BuildToolSchemas([]tools.Descriptor{{
		Name: "probe",
		Parameters: []tools.Parameter{
			{Name: required, Type: tools.ParamNumber, Required: true},
			{Name: optional, Type: tools.ParamNumber},
		},
	}})
	return nil
}

func (s *featureState) iBuildSchemasForTheCatalog() error {
	s.schemas = agent.BuildToolSchemas(s.registry.Describe())
	return agent.ValidateToolSchemas(s.schemas)
}

func (s *featureState) theSchemaRequiresOnly(name string) error {
	if len(s.schemas) != 1 {
		return fmt.Errorf("expected one schema, got %d", len(s.schemas))
	}
	required := s.schemas[0].Parameters.Required
	if len(required) != 1 || required[0] != name {
		return fmt.Errorf("expected required [%s], got %v", name, required)
	}
	return nil
}

func (s *featureState) theSchemaDeclares(name string) error {
	if _, ok := s.schemas[0].Parameters.Properties[name]; !ok {
		return fmt.Errorf("expected %s to be declared", name)
	}
	return nil
}

func (s *featureState) everyToolResolves() error {
	byName := map[string]agent.ToolDefinition{}
	for _, def := range s.schemas {
		byName[def.Name] = def
	}
	for _, desc := range s.registry.Describe() {
		if _, err := s.registry.Lookup(desc.Name); err != nil {
			return fmt.Errorf("lookup %s: %w", desc.Name, err)
		}
		def, ok := byName[desc.Name]
		if !ok {
			return fmt.Errorf("no schema for %s", desc.Name)
		}
		names := make([]string, 0, len(desc.Parameters))
		for _, param := range desc.Parameters {
			names = append(names, param.Name)
		}
		for _, required := range def.Parameters.Required {
			if !slices.Contains(names, required) {
				return fmt.Errorf("%s requires undeclared %s", desc.Name, required)
			}
		}
	}
	return nil
}

// theModelStreamsDeltas serves the table rows as tool call deltas and reads
// them back through the streaming transport.
func (s *featureState) theModelStreamsDeltas(table *godog.Table) error {
	var deltas []map[string]any
	for i, row := range table.Rows {
		if i == 0 {
			continue
		}
		if len(row.Cells) != 3 {
			return fmt.Errorf("expected index, name and arguments columns")
		}
		function := map[string]any{}
		if name := row.Cells[1].Value; name != "" {
			function["name"] = name
		}
		if arguments := row.Cells[2].Value; arguments != "" {
			function["arguments"] = arguments
		}
		var index int
		if _, err := fmt.Sscan(row.Cells[0].Value, &index); err != nil {
			return fmt.Errorf("index: %w", err)
		}
		deltas = append(deltas, map[string]any{"index": index, "function": function})
	}

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/event-stream")
		for _, delta := range deltas {
			payload, _ := json.Marshal(map[string]any{"choices": []any{map[string]any{
				"delta": map[string]any{"tool_calls": []any{delta}},
			}}})
			fmt.Fprintf(w, "data: %s\n\n", payload)
		}
		fmt.Fprint(w, "data: [DONE]\n\n")
	}))
	defer server.Close()

	provider := agent.NewOpenRouterProvider(agent.Settings{APIKey: "k", BaseURL: server.URL, Stream: true}, nil)
	ctx, cancel := context.WithTimeout(context.Background(), scenarioTimeout)
	defer cancel()
	s.streamed, s.streamErr = provider.Complete(ctx, agent.Prompt{}, nil)
	return s.streamErr
}

func (s *featureState) theAssembledCallIs(name, arguments string) error {
	if len(s.streamed.ToolCalls) != 1 {
		return fmt.Errorf("expected one tool call, got %+v", s.streamed.ToolCalls)
	}
	got := s.streamed.ToolCalls[0]
	if got.Name != name || got.Arguments != arguments {
		return fmt.Errorf("expected %s %s, got %s %s", name, arguments, got.Name, got.Arguments)
	}
	return nil
}
