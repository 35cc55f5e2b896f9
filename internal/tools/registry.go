// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package tools

import (
	"context"
	"fmt"
	"sync"

	"github.com/jeranaias/scout/internal/agent"
)

// =============================================================================
// TOOL DEFINITION
// =============================================================================

// MaxOutputSize caps tool output sent back to the model, in bytes.
const MaxOutputSize = 30000

// Param describes one tool parameter for the model-facing schema.
type Param struct {
	// Name is the parameter key in the argument mapping.
	Name string

	// Type is the JSON Schema type: "string", "array", ...
	Type string

	// Description explains the parameter to the model.
	Description string

	// Required marks parameters the tool cannot run without.
	Required bool
}

// Tool is one invocable capability backed by a function.
type Tool struct {
	name        string
	Description string
	Params      []Param
	run         func(ctx context.Context, args map[string]interface{}) (string, error)
}

// Name returns the static tool name.
func (t *Tool) Name() string { return t.name }

// Invoke executes the tool. Output beyond MaxOutputSize is truncated
// with a note, so a runaway listing cannot blow up the model context.
func (t *Tool) Invoke(ctx context.Context, args map[string]interface{}) (string, error) {
	out, err := t.run(ctx, args)
	if err != nil {
		return "", err
	}
	if len(out) > MaxOutputSize {
		out = out[:MaxOutputSize] + "\n(output was truncated)"
	}
	return out, nil
}

// =============================================================================
// REGISTRY
// =============================================================================

// Registry is the capability-set exposed to the orchestrator: a mapping
// from tool name to tool, enumerable at startup.
type Registry struct {
	mu    sync.RWMutex
	tools map[string]*Tool
	order []string
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{tools: make(map[string]*Tool)}
}

// Register adds a tool. Registering a duplicate name replaces the old
// tool but keeps its position in the enumeration order.
func (r *Registry) Register(t *Tool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.tools[t.name]; !exists {
		r.order = append(r.order, t.name)
	}
	r.tools[t.name] = t
}

// Lookup resolves a tool by name as an agent capability.
func (r *Registry) Lookup(name string) (agent.Capability, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	t, ok := r.tools[name]
	if !ok {
		return nil, false
	}
	return t, true
}

// Tool returns the concrete tool definition, for schema export.
func (r *Registry) Tool(name string) (*Tool, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	t, ok := r.tools[name]
	return t, ok
}

// Names returns the registered tool names in registration order.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, len(r.order))
	copy(names, r.order)
	return names
}

// =============================================================================
// ARGUMENT HELPERS
// =============================================================================

// stringArg extracts a required string argument.
func stringArg(args map[string]interface{}, key string) (string, error) {
	val, ok := args[key]
	if !ok {
		return "", fmt.Errorf("missing required argument %q", key)
	}
	s, ok := val.(string)
	if !ok {
		return "", fmt.Errorf("argument %q must be a string, got %T", key, val)
	}
	return s, nil
}

// stringSliceArg extracts a required array-of-strings argument. JSON
// decoding hands us []interface{}, so each element is checked.
func stringSliceArg(args map[string]interface{}, key string) ([]string, error) {
	val, ok := args[key]
	if !ok {
		return nil, fmt.Errorf("missing required argument %q", key)
	}
	raw, ok := val.([]interface{})
	if !ok {
		if direct, ok := val.([]string); ok {
			return direct, nil
		}
		return nil, fmt.Errorf("argument %q must be an array of strings, got %T", key, val)
	}
	out := make([]string, 0, len(raw))
	for i, elem := range raw {
		s, ok := elem.(string)
		if !ok {
			return nil, fmt.Errorf("argument %q element %d must be a string, got %T", key, i, elem)
		}
		out = append(out, s)
	}
	return out, nil
}

