package agent

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/xeipuuv/gojsonschema"

	"phoneclaw/internal/tools"
)

// ToolSchema describes the JSON schema for tool parameters.
type ToolSchema struct {
	Type                 string                `json:"type,omitempty"`
	Description          string                `json:"description,omitempty"`
	Properties           map[string]ToolSchema `json:"properties,omitempty"`
	Required             []string              `json:"required,omitempty"`
	AdditionalProperties *bool                 `json:"additionalProperties,omitempty"`
}

// MarshalJSON always writes properties and required for object schemas, so
// parameterless tools still send an empty property map.
func (s ToolSchema) MarshalJSON() ([]byte, error) {
	type plain ToolSchema
	if s.Type != "object" {
		return json.Marshal(plain(s))
	}
	properties := s.Properties
	if properties == nil {
		properties = map[string]ToolSchema{}
	}
	required := s.Required
	if required == nil {
		required = []string{}
	}
	return json.Marshal(struct {
		plain
		Properties map[string]ToolSchema `json:"properties"`
		Required   []string              `json:"required"`
	}{plain(s), properties, required})
}

// ToolDefinition is the model-facing function descriptor of a tool.
type ToolDefinition struct {
	Name        string
	Description string
	Parameters  ToolSchema
}

// ObjectSchema builds a schema for a JSON object.
func ObjectSchema(properties map[string]ToolSchema, required []string) ToolSchema {
	return ToolSchema{
		Type:       "object",
		Properties: properties,
		Required:   required,
	}
}

// BuildToolSchemas maps tool descriptors to function descriptors, keeping
// registry order. Required names follow parameter declaration order.
func BuildToolSchemas(descs []tools.Descriptor) []ToolDefinition {
	defs := make([]ToolDefinition, 0, len(descs))
	for _, desc := range descs {
		properties := make(map[string]ToolSchema, len(desc.Parameters))
		var required []string
		for _, param := range desc.Parameters {
			properties[param.Name] = ToolSchema{
				Type:        string(param.Type),
				Description: param.Description,
			}
			if param.Required {
				required = append(required, param.Name)
			}
		}
		defs = append(defs, ToolDefinition{
			Name:        desc.Name,
			Description: desc.Description,
			Parameters:  ObjectSchema(properties, required),
		})
	}
	return defs
}

// ValidateToolSchemas checks that every parameter schema is a loadable JSON
// schema whose required names are declared properties.
func ValidateToolSchemas(defs []ToolDefinition) error {
	var problems []string
	for _, def := range defs {
		for _, name := range def.Parameters.Required {
			if _, ok := def.Parameters.Properties[name]; !ok {
				problems = append(problems, fmt.Sprintf("%s: required %q is not a property", def.Name, name))
			}
		}
		if _, err := gojsonschema.NewSchema(gojsonschema.NewGoLoader(def.Parameters)); err != nil {
			problems = append(problems, fmt.Sprintf("%s: %v", def.Name, err))
		}
	}
	if len(problems) > 0 {
		return fmt.Errorf("invalid tool schemas: %s", strings.Join(problems, "; "))
	}
	return nil
}

// ValidateArguments checks raw tool-call arguments against the tool schema.
// The loop itself stays lenient; this is for diagnostics and tests.
func ValidateArguments(def ToolDefinition, raw string) error {
	if strings.TrimSpace(raw) == "" {
		raw = "{}"
	}
	if !json.Valid([]byte(raw)) {
		return fmt.Errorf("%s: arguments are not valid JSON", def.Name)
	}
	result, err := gojsonschema.Validate(
		gojsonschema.NewGoLoader(def.Parameters),
		gojsonschema.NewStringLoader(raw),
	)
	if err != nil {
		return fmt.Errorf("%s: schema validation failed: %w", def.Name, err)
	}
	if !result.Valid() {
		messages := make([]string, 0, len(result.Errors()))
		for _, issue := range result.Errors() {
			messages = append(messages, issue.String())
		}
		return fmt.Errorf("%s: %s", def.Name, strings.Join(messages, "; "))
	}
	return nil
}
