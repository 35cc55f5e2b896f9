// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// bridge.go adapts the Ollama client to the orchestration loop's model
// interface.
package ollama

import (
	"context"
	"encoding/json"

	"github.com/google/uuid"

	"github.com/jeranaias/scout/internal/agent"
)

// =============================================================================
// AGENT CLIENT
// =============================================================================

// AgentClient binds a Client to a model, a system prompt and a tool
// catalog, presenting the agent.ModelClient interface.
type AgentClient struct {
	client *Client
	model  string
	system string
	tools  []Tool
}

// NewAgentClient creates the model adapter used by the orchestrator.
func NewAgentClient(client *Client, model, system string, tools []Tool) *AgentClient {
	return &AgentClient{
		client: client,
		model:  model,
		system: system,
		tools:  tools,
	}
}

// Invoke consults the model without streaming.
func (a *AgentClient) Invoke(ctx context.Context, messages []agent.Message) (agent.Message, error) {
	resp, err := a.client.ChatWithTools(ctx, a.model, a.wire(messages), a.tools)
	if err != nil {
		return agent.Message{}, err
	}
	return fromWire(resp.Message), nil
}

// Stream consults the model and forwards chunks as they arrive. The
// returned message is the fully assembled response.
func (a *AgentClient) Stream(ctx context.Context, messages []agent.Message, fn func(agent.Chunk)) (agent.Message, error) {
	var (
		content   string
		toolCalls []agent.ToolCallRequest
	)

	err := a.client.ChatStreamWithTools(ctx, a.model, a.wire(messages), a.tools, func(chunk StreamChunk) {
		for _, call := range chunk.ToolCalls {
			index := len(toolCalls)
			toolCalls = append(toolCalls, agent.ToolCallRequest{
				ID:   "call_" + uuid.NewString(),
				Name: call.Function.Name,
				Args: call.Function.Arguments,
			})
			fn(agent.Chunk{
				ToolIndex: index,
				ToolName:  call.Function.Name,
				ToolArgs:  marshalArgs(call.Function.Arguments),
			})
		}
		if chunk.Content != "" {
			content += chunk.Content
			fn(agent.Chunk{Text: chunk.Content})
		}
		if chunk.Done {
			reason := agent.FinishStop
			if len(toolCalls) > 0 {
				reason = agent.FinishToolCalls
			}
			fn(agent.Chunk{Done: true, DoneReason: reason})
		}
	})
	if err != nil {
		return agent.Message{}, err
	}

	if len(toolCalls) > 0 {
		return agent.NewAIMessageWithToolCalls(content, toolCalls), nil
	}
	return agent.NewAIMessage(content), nil
}

// =============================================================================
// WIRE CONVERSION
// =============================================================================

// wire converts conversation history to the Ollama representation,
// prepending the system prompt.
func (a *AgentClient) wire(messages []agent.Message) []Message {
	out := make([]Message, 0, len(messages)+1)
	if a.system != "" {
		out = append(out, NewSystemMessage(a.system))
	}
	for _, msg := range messages {
		out = append(out, toWire(msg))
	}
	return out
}

func toWire(msg agent.Message) Message {
	switch msg.Role {
	case agent.RoleHuman:
		return Message{Role: "user", Content: msg.Content}
	case agent.RoleTool:
		return Message{Role: "tool", Content: msg.Content, ToolName: msg.Name}
	default:
		wire := Message{Role: "assistant", Content: msg.Content}
		for _, call := range msg.ToolCalls {
			wire.ToolCalls = append(wire.ToolCalls, ToolCall{
				Function: ToolFunction{Name: call.Name, Arguments: call.Args},
			})
		}
		return wire
	}
}

// fromWire converts a model response, synthesizing call IDs since the
// wire format does not carry them.
func fromWire(msg Message) agent.Message {
	if !msg.HasToolCalls() {
		return agent.NewAIMessage(msg.Content)
	}
	calls := make([]agent.ToolCallRequest, 0, len(msg.ToolCalls))
	for _, call := range msg.ToolCalls {
		calls = append(calls, agent.ToolCallRequest{
			ID:   "call_" + uuid.NewString(),
			Name: call.Function.Name,
			Args: call.Function.Arguments,
		})
	}
	return agent.NewAIMessageWithToolCalls(msg.Content, calls)
}

func marshalArgs(args map[string]interface{}) string {
	if len(args) == 0 {
		return "{}"
	}
	data, err := json.Marshal(args)
	if err != nil {
		return "{}"
	}
	return string(data)
}
