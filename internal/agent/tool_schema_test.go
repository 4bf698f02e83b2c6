package agent

import (
	"encoding/json"
	"testing"

	"phoneclaw/internal/tools"
)

func TestBuildToolSchemasRequiredSubset(t *testing.T) {
	defs := BuildToolSchemas(sampleDescriptors())
	if len(defs) != 3 {
		t.Fatalf("expected 3 defs, got %d", len(defs))
	}
	for _, def := range defs {
		for _, name := range def.Parameters.Required {
			if _, ok := def.Parameters.Properties[name]; !ok {
				t.Fatalf("%s: required %s missing from properties", def.Name, name)
			}
		}
	}
	swipe := defs[1]
	if len(swipe.Parameters.Required) != 1 || swipe.Parameters.Required[0] != "x1" {
		t.Fatalf("expected only x1 required, got %v", swipe.Parameters.Required)
	}
	if _, ok := swipe.Parameters.Properties["duration"]; !ok {
		t.Fatalf("expected optional property to be declared")
	}
	if defs[2].Parameters.Type != "object" || len(defs[2].Parameters.Required) != 0 {
		t.Fatalf("unexpected empty schema %+v", defs[2].Parameters)
	}
}

func TestBuildToolSchemasPreservesRequiredOrder(t *testing.T) {
	defs := BuildToolSchemas([]tools.Descriptor{{
		Name: "swipe",
		Parameters: []tools.Parameter{
			{Name: "y2", Type: tools.ParamNumber, Required: true},
			{Name: "x1", Type: tools.ParamNumber, Required: true},
			{Name: "duration", Type: tools.ParamNumber},
			{Name: "a", Type: tools.ParamNumber, Required: true},
		},
	}})
	got := defs[0].Parameters.Required
	if len(got) != 3 || got[0] != "y2" || got[1] != "x1" || got[2] != "a" {
		t.Fatalf("unexpected required order %v", got)
	}
}

func TestValidateToolSchemas(t *testing.T) {
	defs := BuildToolSchemas(sampleDescriptors())
	if err := ValidateToolSchemas(defs); err != nil {
		t.Fatalf("validate: %v", err)
	}
	broken := ToolDefinition{Name: "bad", Parameters: ObjectSchema(nil, []string{"ghost"})}
	if err := ValidateToolSchemas([]ToolDefinition{broken}); err == nil {
		t.Fatalf("expected error for undeclared required name")
	}
}

func TestValidateArguments(t *testing.T) {
	tap := BuildToolSchemas(sampleDescriptors())[0]
	if err := ValidateArguments(tap, `{"x": 10, "y": 20}`); err != nil {
		t.Fatalf("expected valid args: %v", err)
	}
	if err := ValidateArguments(tap, `{"x": 10}`); err == nil {
		t.Fatalf("expected missing y to fail")
	}
	if err := ValidateArguments(tap, `{"x": "ten", "y": 1}`); err == nil {
		t.Fatalf("expected type mismatch to fail")
	}
	if err := ValidateArguments(tap, `{"x":`); err == nil {
		t.Fatalf("expected malformed JSON to fail")
	}
}

func TestObjectSchemaAlwaysWritesPropertiesAndRequired(t *testing.T) {
	defs := BuildToolSchemas(sampleDescriptors())
	raw, err := json.Marshal(defs[2].Parameters)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if string(raw) != `{"type":"object","properties":{},"required":[]}` {
		t.Fatalf("unexpected parameterless schema %s", raw)
	}

	raw, err = json.Marshal(defs[0].Parameters)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	var decoded map[string]json.RawMessage
	if err := json.Unmarshal(raw, &decoded); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	var properties map[string]map[string]any
	if err := json.Unmarshal(decoded["properties"], &properties); err != nil {
		t.Fatalf("properties: %v", err)
	}
	if _, nested := properties["x"]["required"]; nested {
		t.Fatalf("expected property schemas without required, got %s", decoded["properties"])
	}
	if err := ValidateToolSchemas(defs); err != nil {
		t.Fatalf("validate: %v", err)
	}
}
