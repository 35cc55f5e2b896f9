// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package agent

import (
	"context"
	"errors"
	"testing"
)

// scriptedModel returns canned responses in order and counts invocations.
type scriptedModel struct {
	responses []Message
	calls     int
	err       error
}

func (m *scriptedModel) next() (Message, error) {
	if m.err != nil {
		return Message{}, m.err
	}
	if m.calls > len(m.responses) {
		return NewAIMessage("done"), nil
	}
	return m.responses[m.calls-1], nil
}

func (m *scriptedModel) Invoke(ctx context.Context, messages []Message) (Message, error) {
	m.calls++
	return m.next()
}

func (m *scriptedModel) Stream(ctx context.Context, messages []Message, fn func(Chunk)) (Message, error) {
	m.calls++
	msg, err := m.next()
	if err != nil {
		return Message{}, err
	}
	for i, call := range msg.ToolCalls {
		fn(Chunk{ToolIndex: i, ToolName: call.Name, ToolArgs: "{}"})
	}
	if msg.Content != "" {
		fn(Chunk{Text: msg.Content})
	}
	reason := FinishStop
	if msg.HasToolCalls() {
		reason = FinishToolCalls
	}
	fn(Chunk{Done: true, DoneReason: reason})
	return msg, nil
}

func TestStepFreshHumanTurnResetsAndCallsModel(t *testing.T) {
	model := &scriptedModel{responses: []Message{NewAIMessage("hello")}}
	stepper := NewStepper(model)

	st := State{
		Messages:   []Message{NewHumanMessage("hi")},
		ErrorCount: 4, // stale count from a previous burst
	}

	msg, count, err := stepper.Step(context.Background(), st, nil)
	if err != nil {
		t.Fatalf("Step() error = %v", err)
	}
	if count != 0 {
		t.Errorf("fresh human turn: count = %d, want 0", count)
	}
	if model.calls != 1 {
		t.Errorf("model calls = %d, want 1", model.calls)
	}
	if msg.Content != "hello" {
		t.Errorf("unexpected response %q", msg.Content)
	}
}

func TestStepBreakerShortCircuitsModel(t *testing.T) {
	model := &scriptedModel{responses: []Message{NewAIMessage("should not be called")}}
	stepper := NewStepper(model)

	failed := ErrorPrefix + " denied"
	st := State{
		Messages:   append([]Message{NewHumanMessage("go")}, burst(failed)...),
		ErrorCount: 4, // one more failure reaches the threshold
	}

	var events []Event
	msg, count, err := stepper.Step(context.Background(), st, func(ev Event) {
		events = append(events, ev)
	})
	if err != nil {
		t.Fatalf("Step() error = %v", err)
	}
	if model.calls != 0 {
		t.Errorf("model must not be called once the breaker trips, got %d calls", model.calls)
	}
	if msg.Content != BreakerMessage {
		t.Errorf("expected the fixed breaker message, got %q", msg.Content)
	}
	if msg.HasToolCalls() {
		t.Error("breaker message must not carry tool calls")
	}
	if count != BreakerThreshold {
		t.Errorf("count = %d, want %d (preserved, not reset)", count, BreakerThreshold)
	}

	// The terminal message still flows through the event stream.
	if len(events) != 2 || events[0].Kind != EventText || events[0].Text != BreakerMessage {
		t.Errorf("unexpected breaker events: %+v", events)
	}
	if events[1].Kind != EventFinish || events[1].Text != FinishStop {
		t.Errorf("breaker must finish with %q, got %+v", FinishStop, events[1])
	}
}

func TestStepContinuationBelowThresholdCallsModel(t *testing.T) {
	model := &scriptedModel{responses: []Message{NewAIMessage("retrying")}}
	stepper := NewStepper(model)

	failed := ErrorPrefix + " denied"
	st := State{
		Messages:   append([]Message{NewHumanMessage("go")}, burst(failed)...),
		ErrorCount: 0,
	}

	msg, count, err := stepper.Step(context.Background(), st, nil)
	if err != nil {
		t.Fatalf("Step() error = %v", err)
	}
	if model.calls != 1 {
		t.Errorf("model calls = %d, want 1", model.calls)
	}
	if count != 1 {
		t.Errorf("count = %d, want 1", count)
	}
	if msg.Content != "retrying" {
		t.Errorf("unexpected response %q", msg.Content)
	}
}

func TestStepPropagatesModelError(t *testing.T) {
	wantErr := errors.New("connection refused")
	stepper := NewStepper(&scriptedModel{err: wantErr})

	st := State{Messages: []Message{NewHumanMessage("hi")}}
	_, _, err := stepper.Step(context.Background(), st, nil)
	if !errors.Is(err, wantErr) {
		t.Errorf("Step() error = %v, want %v", err, wantErr)
	}
}
