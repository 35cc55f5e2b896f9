// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package agent

import (
	"context"
	"errors"
	"fmt"
)

// =============================================================================
// CHECKPOINTING
// =============================================================================

// ErrThreadNotFound is returned by a CheckpointStore when no state exists
// for the requested thread.
var ErrThreadNotFound = errors.New("thread not found")

// CheckpointStore persists per-thread state so a process restart resumes
// the conversation with history and failure count intact.
type CheckpointStore interface {
	// Load retrieves the state for a thread, or ErrThreadNotFound.
	Load(ctx context.Context, threadID string) (State, error)

	// Save persists the state for a thread, replacing any prior state.
	Save(ctx context.Context, threadID string, st State) error
}

// =============================================================================
// ORCHESTRATOR
// =============================================================================

// DefaultStepBudget bounds the total node transitions in one human turn.
// It is the outer safety net complementing the failure breaker: the
// breaker handles tool-error loops, the budget handles any other runaway,
// such as repeated tool calls that each individually succeed.
const DefaultStepBudget = 300

// ErrStepBudgetExceeded is returned when a turn exhausts its step budget.
var ErrStepBudgetExceeded = errors.New("step budget exceeded")

// Orchestrator is the two-state machine that routes a turn between the
// agent node and the tools node. The machine itself is stateless and
// reentrant; the only mutable state is the per-thread State it owns.
type Orchestrator struct {
	stepper *Stepper
	invoker *Invoker
	store   CheckpointStore
	budget  int
}

// NewOrchestrator wires the two nodes together. A nil store disables
// checkpointing; a non-positive budget selects DefaultStepBudget.
func NewOrchestrator(stepper *Stepper, invoker *Invoker, store CheckpointStore, budget int) *Orchestrator {
	if budget <= 0 {
		budget = DefaultStepBudget
	}
	return &Orchestrator{stepper: stepper, invoker: invoker, store: store, budget: budget}
}

// Turn processes one human message for a thread: it appends the message,
// runs the agent/tools loop to completion, streams events to the sink,
// and checkpoints the resulting state.
//
// The loop starts in the agent state. It transitions to the tools state
// iff the latest ai message carries tool calls, and back to the agent
// state unconditionally after the invoker returns - even when every
// result failed, since routing to the breaker happens on the next agent
// entry. A turn runs start to finish; no concurrent mutation of the
// thread state is permitted.
func (o *Orchestrator) Turn(ctx context.Context, threadID, input string, sink EventSink) (State, error) {
	st, err := o.loadState(ctx, threadID)
	if err != nil {
		return State{}, err
	}

	st.Messages = append(st.Messages, NewHumanMessage(input))

	var turnErr error
	steps := 0
	for {
		// agent node
		if steps++; steps > o.budget {
			turnErr = fmt.Errorf("%w: %d transitions", ErrStepBudgetExceeded, o.budget)
			break
		}
		msg, count, err := o.stepper.Step(ctx, st, sink)
		if err != nil {
			turnErr = err
			break
		}
		st.Messages = append(st.Messages, msg)
		st.ErrorCount = count

		// End of turn: final answer or breaker message.
		if !msg.HasToolCalls() {
			break
		}

		// tools node
		if steps++; steps > o.budget {
			turnErr = fmt.Errorf("%w: %d transitions", ErrStepBudgetExceeded, o.budget)
			break
		}
		for _, res := range o.invoker.InvokeAll(ctx, msg) {
			st.Messages = append(st.Messages, res)
			if sink != nil {
				sink(Event{Node: NodeTools, Kind: EventToolResult, Name: res.Name, Text: res.Content, OK: !res.IsError()})
			}
		}
	}

	// Checkpoint whatever we have, even on a failed turn, so a restart
	// resumes with the failure-count invariant intact.
	if o.store != nil {
		if err := o.store.Save(ctx, threadID, st); err != nil && turnErr == nil {
			turnErr = fmt.Errorf("checkpoint failed: %w", err)
		}
	}

	return st, turnErr
}

// loadState fetches the thread state, treating a missing thread as a
// fresh conversation.
func (o *Orchestrator) loadState(ctx context.Context, threadID string) (State, error) {
	if o.store == nil {
		return State{}, nil
	}
	st, err := o.store.Load(ctx, threadID)
	if err != nil {
		if errors.Is(err, ErrThreadNotFound) {
			return State{}, nil
		}
		return State{}, fmt.Errorf("load thread %s: %w", threadID, err)
	}
	return st, nil
}
