package mcp

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

// Handler executes one tool call. Arguments have already passed the
// tool's input schema when a handler runs.
type Handler func(ctx context.Context, args map[string]any) (any, error)

// Tool is one remote-callable operation: its wire descriptor plus the
// handler bound to it.
type Tool struct {
	Name        string
	Description string
	InputSchema map[string]any
	Handler     Handler
}

// Descriptor is the tools/list wire form of a Tool.
type Descriptor struct {
	Name        string         `json:"name"`
	Description string         `json:"description,omitempty"`
	InputSchema map[string]any `json:"inputSchema"`
}

type registration struct {
	tool   Tool
	schema *jsonschema.Schema
}

// Registry maps tool names to handlers. It is populated once at
// startup and read-only afterwards, so lookups need no locking.
type Registry struct {
	names []string
	tools map[string]*registration
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{tools: make(map[string]*registration)}
}

// Register adds a tool. It fails on a duplicate name or an input
// schema that does not compile.
func (r *Registry) Register(t Tool) error {
	if t.Name == "" {
		return fmt.Errorf("tool has no name")
	}
	if t.Handler == nil {
		return fmt.Errorf("tool %q has no handler", t.Name)
	}
	if _, exists := r.tools[t.Name]; exists {
		return fmt.Errorf("tool %q registered twice", t.Name)
	}

	schemaJSON, err := json.Marshal(t.InputSchema)
	if err != nil {
		return fmt.Errorf("tool %q: encode input schema: %w", t.Name, err)
	}
	compiler := jsonschema.NewCompiler()
	resource := t.Name + ".schema.json"
	if err := compiler.AddResource(resource, bytes.NewReader(schemaJSON)); err != nil {
		return fmt.Errorf("tool %q: invalid input schema: %w", t.Name, err)
	}
	schema, err := compiler.Compile(resource)
	if err != nil {
		return fmt.Errorf("tool %q: invalid input schema: %w", t.Name, err)
	}

	r.names = append(r.names, t.Name)
	r.tools[t.Name] = &registration{tool: t, schema: schema}
	return nil
}

// Lookup returns the tool bound to name.
func (r *Registry) Lookup(name string) (*Tool, bool) {
	reg, ok := r.tools[name]
	if !ok {
		return nil, false
	}
	return &reg.tool, true
}

// Validate checks args against the named tool's input schema.
func (r *Registry) Validate(name string, args map[string]any) error {
	reg, ok := r.tools[name]
	if !ok {
		return fmt.Errorf("unknown tool %q", name)
	}
	var instance any = map[string]any{}
	if args != nil {
		instance = args
	}
	if err := reg.schema.Validate(instance); err != nil {
		return fmt.Errorf("invalid arguments: %v", err)
	}
	return nil
}

// List returns descriptors in registration order.
func (r *Registry) List() []Descriptor {
	out := make([]Descriptor, 0, len(r.names))
	for _, name := range r.names {
		t := r.tools[name].tool
		out = append(out, Descriptor{
			Name:        t.Name,
			Description: t.Description,
			InputSchema: t.InputSchema,
		})
	}
	return out
}

// Len reports how many tools are registered.
func (r *Registry) Len() int {
	return len(r.names)
}
