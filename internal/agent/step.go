// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package agent

import "context"

// =============================================================================
// AGENT STEP
// =============================================================================

// BreakerMessage is the fixed terminal reply emitted when the failure
// breaker trips. The conversation stays usable: the next human message
// resets the counter.
const BreakerMessage = "Multiple consecutive tool calls have failed. " +
	"I am stopping here so we don't loop on the same error - please review " +
	"the failures above and tell me how you would like to proceed."

// Stepper is the agent node: it decides whether to consult the model or
// short-circuit to the terminal breaker message. It has no side effects
// beyond the model call itself, so it is testable headlessly.
type Stepper struct {
	model ModelClient
}

// NewStepper creates an agent step around a model capability.
func NewStepper(model ModelClient) *Stepper {
	return &Stepper{model: model}
}

// Step runs the agent node once against the current state and returns the
// new ai message plus the updated failure count.
//
// A fresh human turn (most recent message has role human) forces the
// count to 0 and always earns a model call, bypassing failure accounting.
// A continuation turn first tallies failures; at the breaker threshold it
// returns the fixed terminal message without calling the model, with the
// count preserved.
func (s *Stepper) Step(ctx context.Context, st State, sink EventSink) (Message, int, error) {
	if last, ok := st.LastMessage(); ok && last.Role == RoleHuman {
		msg, err := s.call(ctx, st.Messages, sink)
		return msg, 0, err
	}

	count := TallyFailures(st.Messages, st.ErrorCount)
	if BreakerTripped(count) {
		if sink != nil {
			sink(Event{Node: NodeAgent, Kind: EventText, Text: BreakerMessage})
			sink(Event{Node: NodeAgent, Kind: EventFinish, Text: FinishStop})
		}
		return NewAIMessage(BreakerMessage), count, nil
	}

	msg, err := s.call(ctx, st.Messages, sink)
	return msg, count, err
}

// call invokes the model, streaming chunks into the sink when one is set.
func (s *Stepper) call(ctx context.Context, messages []Message, sink EventSink) (Message, error) {
	if sink == nil {
		return s.model.Invoke(ctx, messages)
	}
	return s.model.Stream(ctx, messages, func(c Chunk) {
		if c.ToolName != "" {
			sink(Event{Node: NodeAgent, Kind: EventToolCallName, Index: c.ToolIndex, Name: c.ToolName})
		}
		if c.ToolArgs != "" {
			sink(Event{Node: NodeAgent, Kind: EventToolCallArgs, Index: c.ToolIndex, Text: c.ToolArgs})
		}
		if c.Text != "" {
			sink(Event{Node: NodeAgent, Kind: EventText, Text: c.Text})
		}
		if c.Done {
			sink(Event{Node: NodeAgent, Kind: EventFinish, Text: c.DoneReason})
		}
	})
}
