package tools

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
)

// ErrUnknownTool matches lookups for names that were never registered.
var ErrUnknownTool = errors.New("unknown tool")

// ErrDuplicateTool is returned when a name is registered twice.
var ErrDuplicateTool = errors.New("duplicate tool")

// UnknownToolError names the tool that was not found.
type UnknownToolError struct {
	Name string
}

func (e *UnknownToolError) Error() string {
	return "Unknown tool: " + e.Name
}

func (e *UnknownToolError) Unwrap() error {
	return ErrUnknownTool
}

// Registry is an ordered catalog of tools. It is built once at startup and
// only read afterwards, so concurrent runs may share it.
type Registry struct {
	Limits Limits
	order  []string
	byName map[string]Definition
	clock  func() time.Time
}

// NewRegistry registers defs in order.
func NewRegistry(defs ...Definition) (*Registry, error) {
	registry := &Registry{
		Limits: Limits{MaxOutputBytes: DefaultMaxOutputBytes},
		byName: make(map[string]Definition, len(defs)),
		clock:  time.Now,
	}
	for _, def := range defs {
		if err := registry.Register(def); err != nil {
			return nil, err
		}
	}
	return registry, nil
}

// Register adds a tool at the end of the catalog.
func (r *Registry) Register(def Definition) error {
	name := strings.TrimSpace(def.Name)
	if name == "" {
		return fmt.Errorf("register tool: name is required")
	}
	if def.Execute == nil {
		return fmt.Errorf("register tool %s: executor is required", name)
	}
	if _, exists := r.byName[name]; exists {
		return fmt.Errorf("register tool %s: %w", name, ErrDuplicateTool)
	}
	seen := make(map[string]struct{}, len(def.Parameters))
	for _, param := range def.Parameters {
		switch param.Type {
		case ParamString, ParamNumber, ParamBoolean:
		default:
			return fmt.Errorf("register tool %s: parameter %s has unsupported type %q", name, param.Name, param.Type)
		}
		if _, dup := seen[param.Name]; dup {
			return fmt.Errorf("register tool %s: parameter %s declared twice", name, param.Name)
		}
		seen[param.Name] = struct{}{}
	}
	def.Name = name
	def.Parameters = append([]Parameter(nil), def.Parameters...)
	r.byName[name] = def
	r.order = append(r.order, name)
	return nil
}

// Lookup returns the named tool or an *UnknownToolError.
func (r *Registry) Lookup(name string) (Definition, error) {
	def, ok := r.byName[name]
	if !ok {
		return Definition{}, &UnknownToolError{Name: name}
	}
	return def, nil
}

// List returns every tool in registration order.
func (r *Registry) List() []Definition {
	out := make([]Definition, 0, len(r.order))
	for _, name := range r.order {
		out = append(out, r.byName[name])
	}
	return out
}

// Describe returns the executor-free view of every tool, in registration order.
func (r *Registry) Describe() []Descriptor {
	out := make([]Descriptor, 0, len(r.order))
	for _, name := range r.order {
		def := r.byName[name]
		out = append(out, Descriptor{
			Name:        def.Name,
			Description: def.Description,
			Parameters:  append([]Parameter(nil), def.Parameters...),
		})
	}
	return out
}

// Execute runs the named tool. It never returns an error: unknown tools,
// executor errors and panics become error results the model can read.
func (r *Registry) Execute(ctx context.Context, name string, args Args) CallResult {
	start := r.clock()
	def, err := r.Lookup(name)
	if err != nil {
		return r.finalize(name, start, r.clock(), "", false, err)
	}
	if args == nil {
		args = Args{}
	}
	value, err := invoke(ctx, def, args)
	end := r.clock()
	if err != nil {
		return r.finalize(name, start, end, "", false, err)
	}
	output, err := renderResult(value)
	if err != nil {
		return r.finalize(name, start, end, "", false, err)
	}
	return r.finalize(name, start, end, output, def.ProducesImage, nil)
}

func invoke(ctx context.Context, def Definition, args Args) (value any, err error) {
	defer func() {
		if recovered := recover(); recovered != nil {
			err = fmt.Errorf("tool %s panicked: %v", def.Name, recovered)
		}
	}()
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return def.Execute(ctx, args)
}
