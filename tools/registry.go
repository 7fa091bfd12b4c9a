// Package tools provides the tool registry and the batch executor that
// dispatches model-requested tool invocations to registered handlers.
//
// Specs are registered once at process start and never mutated afterwards,
// so catalog reads are safe from any number of concurrent turns.
package tools

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/valuegraph/analyst/core/protocol"
)

// Kind separates deterministic in-process tools from network-dependent ones.
// The executor runs Local tools inline and Remote tools concurrently.
type Kind string

const (
	KindLocal  Kind = "local"
	KindRemote Kind = "remote"
)

// Param describes one entry of a tool's parameter schema. Params keep
// registration order so the catalog presented to the model is stable.
type Param struct {
	Name        string
	Type        string // "string", "number", "integer", or "boolean"
	Description string
	Required    bool
	Default     any // applied when the argument is absent; nil means none
	Enum        []string
}

// Spec declares a tool: its name, parameter schema, and kind.
// Strict specs reject unknown arguments instead of ignoring them.
type Spec struct {
	Name        string
	Description string
	Params      []Param
	Kind        Kind
	Strict      bool
}

// Tool renders the spec as the JSON Schema catalog entry providers expect.
func (s Spec) Tool() protocol.Tool {
	properties := make(map[string]any, len(s.Params))
	var required []string

	for _, p := range s.Params {
		prop := map[string]any{
			"type":        p.Type,
			"description": p.Description,
		}
		if len(p.Enum) > 0 {
			prop["enum"] = p.Enum
		}
		properties[p.Name] = prop

		if p.Required {
			required = append(required, p.Name)
		}
	}

	parameters := map[string]any{
		"type":       "object",
		"properties": properties,
	}
	if len(required) > 0 {
		parameters["required"] = required
	}

	return protocol.Tool{
		Name:        s.Name,
		Description: s.Description,
		Parameters:  parameters,
	}
}

// Handler is the function signature for tool implementations.
// Handlers receive the request context and validated, JSON-encoded arguments.
type Handler func(ctx context.Context, args json.RawMessage) (Result, error)

// Result is a successful tool execution output that feeds back into the
// next model turn.
type Result struct {
	Content string
}

type entry struct {
	spec    Spec
	handler Handler
}

// Registry is the fixed catalog mapping tool names to specs and handlers.
// Registration happens once at startup; afterwards the registry is
// effectively immutable and safe for concurrent reads.
type Registry struct {
	mu      sync.RWMutex
	order   []string
	entries map[string]entry
}

// NewRegistry creates an empty Registry.
func NewRegistry() *Registry {
	return &Registry{
		entries: make(map[string]entry),
	}
}

// Register adds a tool to the registry.
// Returns ErrDuplicateTool if a tool with the same name is already present.
func (r *Registry) Register(spec Spec, handler Handler) error {
	if spec.Name == "" {
		return ErrEmptyName
	}
	if handler == nil {
		return fmt.Errorf("tool %s: nil handler", spec.Name)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.entries[spec.Name]; exists {
		return fmt.Errorf("%w: %s", ErrDuplicateTool, spec.Name)
	}

	r.entries[spec.Name] = entry{spec: spec, handler: handler}
	r.order = append(r.order, spec.Name)
	return nil
}

// Lookup retrieves a tool's spec and handler by name.
// Returns ErrUnknownTool when the name is not registered.
func (r *Registry) Lookup(name string) (Spec, Handler, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	e, exists := r.entries[name]
	if !exists {
		return Spec{}, nil, fmt.Errorf("%w: %s", ErrUnknownTool, name)
	}
	return e.spec, e.handler, nil
}

// Catalog returns the catalog entries for all registered tools, in
// registration order. This is what the model sees on every invocation.
func (r *Registry) Catalog() []protocol.Tool {
	r.mu.RLock()
	defer r.mu.RUnlock()

	catalog := make([]protocol.Tool, 0, len(r.order))
	for _, name := range r.order {
		catalog = append(catalog, r.entries[name].spec.Tool())
	}
	return catalog
}
