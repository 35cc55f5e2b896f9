// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package agent

import (
	"context"
	"fmt"

	"github.com/google/uuid"
)

// =============================================================================
// TOOL CAPABILITY
// =============================================================================

// Capability is one invocable tool exposed to the orchestrator.
type Capability interface {
	// Name returns the static tool name.
	Name() string

	// Invoke executes the tool with the given argument mapping and
	// returns its output coerced to text.
	Invoke(ctx context.Context, args map[string]interface{}) (string, error)
}

// CapabilitySet is the registry of tools, keyed by name and enumerable
// at startup.
type CapabilitySet interface {
	Lookup(name string) (Capability, bool)
	Names() []string
}

// =============================================================================
// TOOL INVOKER
// =============================================================================

// Invoker is the tools node: it executes each requested tool call in
// order and converts every possible failure into an ordinary tool result
// so that nothing propagates past this boundary.
type Invoker struct {
	caps CapabilitySet
}

// NewInvoker creates a tool invoker over a capability set.
func NewInvoker(caps CapabilitySet) *Invoker {
	return &Invoker{caps: caps}
}

// InvokeAll executes the tool calls of an ai message sequentially and
// returns one tool result per request, in request order. An ai message
// without tool calls yields nil.
func (inv *Invoker) InvokeAll(ctx context.Context, ai Message) []Message {
	if !ai.HasToolCalls() {
		return nil
	}

	results := make([]Message, 0, len(ai.ToolCalls))
	for _, call := range ai.ToolCalls {
		results = append(results, inv.invokeOne(ctx, call))
	}
	return results
}

// invokeOne runs a single tool call. Resolution failures, invocation
// errors, and panics all become Error:-prefixed results; the error text
// flows back into the conversation so the model can see and react to it.
func (inv *Invoker) invokeOne(ctx context.Context, call ToolCallRequest) (result Message) {
	if call.ID == "" {
		call.ID = "call_" + uuid.NewString()
	}

	capability, ok := inv.caps.Lookup(call.Name)
	if !ok {
		return NewToolResultMessage(call.ID, call.Name,
			fmt.Sprintf("%s tool not found: %s", ErrorPrefix, call.Name))
	}

	defer func() {
		if r := recover(); r != nil {
			result = NewToolResultMessage(call.ID, call.Name,
				fmt.Sprintf("%s tool %s panicked: %v", ErrorPrefix, call.Name, r))
		}
	}()

	args := NormalizeArgs(call.Name, call.Args)
	out, err := capability.Invoke(ctx, args)
	if err != nil {
		return NewToolResultMessage(call.ID, call.Name, ErrorPrefix+" "+err.Error())
	}
	return NewToolResultMessage(call.ID, call.Name, out)
}
