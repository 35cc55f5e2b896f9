// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package agent

import "strings"

// =============================================================================
// ROLES
// =============================================================================

// Role identifies who authored a conversation message.
type Role string

const (
	// RoleHuman is a message typed by the user.
	RoleHuman Role = "human"

	// RoleAI is a model response, possibly carrying tool calls.
	RoleAI Role = "ai"

	// RoleTool is the result of executing one tool call.
	RoleTool Role = "tool"
)

// ErrorPrefix is the literal marker a failed tool result begins with.
// It is the only success/failure signal the orchestrator has, so it must
// be preserved byte-for-byte for compatibility with existing tool outputs.
const ErrorPrefix = "Error:"

// =============================================================================
// MESSAGE TYPES
// =============================================================================

// ToolCallRequest is one tool invocation requested by the model.
// Order within an ai message is significant: it defines execution order
// and correlation order for the results.
type ToolCallRequest struct {
	// ID is an opaque correlation token linking the request to its result.
	ID string `json:"id"`

	// Name is the tool to invoke.
	Name string `json:"name"`

	// Args is the argument mapping as the model produced it.
	Args map[string]interface{} `json:"args"`
}

// Message is a single turn in the conversation. Messages are immutable
// once appended; history is an append-only ordered sequence.
type Message struct {
	// Role is the message author: human, ai, or tool.
	Role Role `json:"role"`

	// Content is the text payload.
	Content string `json:"content"`

	// ToolCalls are the tool invocations an ai message requested.
	ToolCalls []ToolCallRequest `json:"tool_calls,omitempty"`

	// ToolCallID correlates a tool result back to its request.
	ToolCallID string `json:"tool_call_id,omitempty"`

	// Name is the tool name, set on tool results.
	Name string `json:"name,omitempty"`
}

// NewHumanMessage creates a new human message.
func NewHumanMessage(content string) Message {
	return Message{Role: RoleHuman, Content: content}
}

// NewAIMessage creates a new assistant message.
func NewAIMessage(content string) Message {
	return Message{Role: RoleAI, Content: content}
}

// NewAIMessageWithToolCalls creates an assistant message carrying tool calls.
func NewAIMessageWithToolCalls(content string, calls []ToolCallRequest) Message {
	return Message{Role: RoleAI, Content: content, ToolCalls: calls}
}

// NewToolResultMessage creates a tool result message.
func NewToolResultMessage(toolCallID, name, content string) Message {
	return Message{Role: RoleTool, Content: content, ToolCallID: toolCallID, Name: name}
}

// HasToolCalls reports whether the message requests any tool invocations.
func (m Message) HasToolCalls() bool {
	return len(m.ToolCalls) > 0
}

// IsError reports whether a tool result carries the failure marker.
// The marker is checked once here; downstream logic reads this bit
// instead of re-parsing content.
func (m Message) IsError() bool {
	return m.Role == RoleTool && strings.HasPrefix(m.Content, ErrorPrefix)
}

// =============================================================================
// CONVERSATION STATE
// =============================================================================

// State is the per-thread conversation state. The orchestrator is its
// sole writer; callers only append human input and read rendered output.
//
// Invariant: ErrorCount is the number of consecutive tool failures counted
// backward from the most recent message to the ai message that opened the
// current tool-use burst, reset to 0 whenever a human message is most
// recent.
type State struct {
	Messages   []Message `json:"messages"`
	ErrorCount int       `json:"error_count"`
}

// LastMessage returns the most recent message, if any.
func (s State) LastMessage() (Message, bool) {
	if len(s.Messages) == 0 {
		return Message{}, false
	}
	return s.Messages[len(s.Messages)-1], true
}

// Clone returns a deep-enough copy for snapshotting: the message slice is
// copied, the immutable messages themselves are shared.
func (s State) Clone() State {
	msgs := make([]Message, len(s.Messages))
	copy(msgs, s.Messages)
	return State{Messages: msgs, ErrorCount: s.ErrorCount}
}
