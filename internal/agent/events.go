// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package agent

import "context"

// =============================================================================
// GRAPH NODES
// =============================================================================

// Node names the state-machine node an event originated from. The
// presenter suppresses tools-node events because they duplicate the tool
// results already in the conversation.
type Node string

const (
	// NodeAgent is the model-invocation node.
	NodeAgent Node = "agent"

	// NodeTools is the tool-execution node.
	NodeTools Node = "tools"
)

// =============================================================================
// FINISH REASONS
// =============================================================================

const (
	// FinishToolCalls means the model stopped to request tool calls.
	FinishToolCalls = "tool_calls"

	// FinishStop means the model produced a final answer.
	FinishStop = "stop"
)

// =============================================================================
// TURN EVENTS
// =============================================================================

// EventKind classifies one increment of a turn's output stream.
type EventKind int

const (
	// EventText is a fragment of assistant text.
	EventText EventKind = iota

	// EventToolCallName announces a tool call; Name and Index are set.
	EventToolCallName

	// EventToolCallArgs is a fragment of a tool call's serialized
	// arguments; Index identifies the call it belongs to.
	EventToolCallArgs

	// EventFinish ends one model response; Text carries the finish reason.
	EventFinish

	// EventToolResult reports one executed tool call from the tools node.
	EventToolResult
)

// Event is one element of the ordered stream a turn produces.
type Event struct {
	Node  Node
	Kind  EventKind
	Index int    // tool-call index for name/args events
	Name  string // tool name for name and result events
	Text  string // text fragment, args fragment, finish reason, or result content
	OK    bool   // result events: whether the tool succeeded
}

// EventSink receives turn events in order. A nil sink disables streaming.
type EventSink func(Event)

// =============================================================================
// MODEL CAPABILITY
// =============================================================================

// Chunk is one increment of a streaming model response. Tool-call chunks
// carry the call index, the name exactly once per call, and argument
// fragments; the final chunk sets Done with a finish reason that
// distinguishes a tool-call stop from a final answer.
type Chunk struct {
	Text       string
	ToolIndex  int
	ToolName   string
	ToolArgs   string
	Done       bool
	DoneReason string
}

// ModelClient is the consumed language-model capability. Implementations
// own prompt assembly and transport; the orchestrator only sequences
// calls and never inspects partial output beyond the Chunk contract.
type ModelClient interface {
	// Invoke sends the conversation and returns the complete ai message.
	Invoke(ctx context.Context, messages []Message) (Message, error)

	// Stream is Invoke with incremental delivery. The returned message is
	// the assembled final response; fn observes every chunk in order.
	Stream(ctx context.Context, messages []Message, fn func(Chunk)) (Message, error)
}
