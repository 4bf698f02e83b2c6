package tools

import (
	"context"
	"time"
)

// truncationMarker marks truncated output.
const truncationMarker = "\n... [truncated]"

// DefaultMaxOutputBytes caps a single tool result fed back to the model.
const DefaultMaxOutputBytes = 64 * 1024

// ParamType is the JSON type of a tool parameter.
type ParamType string

const (
	ParamString  ParamType = "string"
	ParamNumber  ParamType = "number"
	ParamBoolean ParamType = "boolean"
)

// Parameter declares one named tool argument.
type Parameter struct {
	Name        string    `json:"name"`
	Type        ParamType `json:"type"`
	Description string    `json:"description"`
	Required    bool      `json:"required"`
}

// Executor performs a tool action. Strings are returned to the model as-is;
// any other value is rendered as JSON.
type Executor func(ctx context.Context, args Args) (any, error)

// Definition is a registered tool.
type Definition struct {
	Name        string
	Description string
	Parameters  []Parameter
	Execute     Executor
	// ProducesImage marks tools whose successful result is a base64 PNG.
	ProducesImage bool
}

// Descriptor is the serializable view of a Definition.
type Descriptor struct {
	Name        string      `json:"name"`
	Description string      `json:"description"`
	Parameters  []Parameter `json:"parameters"`
}

// Limits configure output size caps for tool execution.
type Limits struct {
	MaxOutputBytes int
}

// CallResult captures a tool execution outcome.
type CallResult struct {
	Tool        string
	Output      string
	OutputBytes int
	Truncated   bool
	IsImage     bool
	StartedAt   time.Time
	FinishedAt  time.Time
	Duration    time.Duration
	Error       string
}
