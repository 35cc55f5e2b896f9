// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package agent

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"
)

// fakeCapability executes a canned function.
type fakeCapability struct {
	name string
	run  func(args map[string]interface{}) (string, error)
}

func (f *fakeCapability) Name() string { return f.name }

func (f *fakeCapability) Invoke(ctx context.Context, args map[string]interface{}) (string, error) {
	return f.run(args)
}

// fakeCapabilitySet is an in-memory capability registry.
type fakeCapabilitySet map[string]*fakeCapability

func (s fakeCapabilitySet) Lookup(name string) (Capability, bool) {
	c, ok := s[name]
	return c, ok
}

func (s fakeCapabilitySet) Names() []string {
	names := make([]string, 0, len(s))
	for name := range s {
		names = append(names, name)
	}
	return names
}

func TestInvokeAllPreservesRequestOrder(t *testing.T) {
	caps := fakeCapabilitySet{
		"slow": &fakeCapability{name: "slow", run: func(map[string]interface{}) (string, error) {
			time.Sleep(10 * time.Millisecond)
			return "slow done", nil
		}},
		"fast": &fakeCapability{name: "fast", run: func(map[string]interface{}) (string, error) {
			return "fast done", nil
		}},
		"broken": &fakeCapability{name: "broken", run: func(map[string]interface{}) (string, error) {
			return "", errors.New("boom")
		}},
	}
	inv := NewInvoker(caps)

	ai := NewAIMessageWithToolCalls("", []ToolCallRequest{
		{ID: "a", Name: "slow"},
		{ID: "b", Name: "broken"},
		{ID: "c", Name: "fast"},
	})

	results := inv.InvokeAll(context.Background(), ai)
	if len(results) != 3 {
		t.Fatalf("got %d results, want 3", len(results))
	}

	wantIDs := []string{"a", "b", "c"}
	for i, res := range results {
		if res.ToolCallID != wantIDs[i] {
			t.Errorf("result %d correlates to %q, want %q", i, res.ToolCallID, wantIDs[i])
		}
		if res.Role != RoleTool {
			t.Errorf("result %d role = %q, want %q", i, res.Role, RoleTool)
		}
	}
	if results[0].Content != "slow done" || results[2].Content != "fast done" {
		t.Errorf("unexpected contents: %q / %q", results[0].Content, results[2].Content)
	}
	if !results[1].IsError() {
		t.Error("broken tool must yield an error result")
	}
}

func TestInvokeAllUnknownTool(t *testing.T) {
	inv := NewInvoker(fakeCapabilitySet{})

	ai := NewAIMessageWithToolCalls("", []ToolCallRequest{{ID: "x", Name: "teleport"}})
	results := inv.InvokeAll(context.Background(), ai)

	if len(results) != 1 {
		t.Fatalf("got %d results, want 1", len(results))
	}
	res := results[0]
	if !res.IsError() {
		t.Error("unknown tool must produce an error result")
	}
	if !strings.Contains(res.Content, "teleport") {
		t.Errorf("diagnostic should name the tool, got %q", res.Content)
	}
	if res.Name != "teleport" || res.ToolCallID != "x" {
		t.Errorf("result not correlated: name=%q id=%q", res.Name, res.ToolCallID)
	}
}

func TestInvokeAllAbsorbsPanics(t *testing.T) {
	caps := fakeCapabilitySet{
		"panicky": &fakeCapability{name: "panicky", run: func(map[string]interface{}) (string, error) {
			panic("index out of range")
		}},
	}
	inv := NewInvoker(caps)

	ai := NewAIMessageWithToolCalls("", []ToolCallRequest{{ID: "p", Name: "panicky"}})
	results := inv.InvokeAll(context.Background(), ai)

	if len(results) != 1 || !results[0].IsError() {
		t.Fatalf("panic must become an error result, got %+v", results)
	}
	if !strings.Contains(results[0].Content, "index out of range") {
		t.Errorf("diagnostic should carry the panic value, got %q", results[0].Content)
	}
}

func TestInvokeAllNormalizesArgs(t *testing.T) {
	var seen map[string]interface{}
	caps := fakeCapabilitySet{
		"read_file": &fakeCapability{name: "read_file", run: func(args map[string]interface{}) (string, error) {
			seen = args
			return "contents", nil
		}},
	}
	inv := NewInvoker(caps)

	ai := NewAIMessageWithToolCalls("", []ToolCallRequest{
		{ID: "r", Name: "read_file", Args: map[string]interface{}{"file_path": "a.txt"}},
	})
	inv.InvokeAll(context.Background(), ai)

	if seen["path"] != "a.txt" {
		t.Errorf("invoker must normalize args before invoking, got %v", seen)
	}
}

func TestInvokeAllSynthesizesMissingIDs(t *testing.T) {
	caps := fakeCapabilitySet{
		"fast": &fakeCapability{name: "fast", run: func(map[string]interface{}) (string, error) {
			return "ok", nil
		}},
	}
	inv := NewInvoker(caps)

	ai := NewAIMessageWithToolCalls("", []ToolCallRequest{{Name: "fast"}})
	results := inv.InvokeAll(context.Background(), ai)
	if results[0].ToolCallID == "" {
		t.Error("missing call ID should be synthesized")
	}
}

func TestInvokeAllNoToolCalls(t *testing.T) {
	inv := NewInvoker(fakeCapabilitySet{})
	if results := inv.InvokeAll(context.Background(), NewAIMessage("plain answer")); len(results) != 0 {
		t.Errorf("expected no results, got %d", len(results))
	}
}
