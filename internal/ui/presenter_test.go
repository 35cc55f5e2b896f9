// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package ui

import (
	"bytes"
	"strings"
	"testing"

	"github.com/jeranaias/scout/internal/agent"
)

func newTestPresenter() (*Presenter, *bytes.Buffer) {
	var buf bytes.Buffer
	p := NewPresenter(&buf, WithColor(false))
	return p, &buf
}

func TestPresenterRendersTextWithHeader(t *testing.T) {
	p, buf := newTestPresenter()

	p.Handle(agent.Event{Node: agent.NodeAgent, Kind: agent.EventText, Text: "Hello"})
	p.Handle(agent.Event{Node: agent.NodeAgent, Kind: agent.EventText, Text: ", world"})
	p.Handle(agent.Event{Node: agent.NodeAgent, Kind: agent.EventFinish, Text: agent.FinishStop})

	out := buf.String()
	if !strings.Contains(out, "[AI]: Hello, world") {
		t.Errorf("output = %q", out)
	}
	if strings.Count(out, "[AI]:") != 1 {
		t.Errorf("header must print once per response, output = %q", out)
	}
}

func TestPresenterAnnouncesToolOncePerIndex(t *testing.T) {
	p, buf := newTestPresenter()

	p.Handle(agent.Event{Node: agent.NodeAgent, Kind: agent.EventToolCallName, Index: 0, Name: "list_directory"})
	p.Handle(agent.Event{Node: agent.NodeAgent, Kind: agent.EventToolCallName, Index: 0, Name: "list_directory"})
	p.Handle(agent.Event{Node: agent.NodeAgent, Kind: agent.EventToolCallArgs, Index: 0, Text: `{"path":"."}`})

	out := buf.String()
	if strings.Count(out, "Executing Tool: list_directory") != 1 {
		t.Errorf("marker must print once per call index, output = %q", out)
	}
	if !strings.Contains(out, `{"path":"."}`) {
		t.Errorf("args not echoed: %q", out)
	}
}

func TestPresenterReannouncesAfterToolCallsFinish(t *testing.T) {
	p, buf := newTestPresenter()

	p.Handle(agent.Event{Node: agent.NodeAgent, Kind: agent.EventToolCallName, Index: 0, Name: "read_file"})
	p.Handle(agent.Event{Node: agent.NodeAgent, Kind: agent.EventFinish, Text: agent.FinishToolCalls})
	// Next model response requests index 0 again.
	p.Handle(agent.Event{Node: agent.NodeAgent, Kind: agent.EventToolCallName, Index: 0, Name: "read_file"})

	if got := strings.Count(buf.String(), "Executing Tool: read_file"); got != 2 {
		t.Errorf("marker count = %d, want 2", got)
	}
}

func TestPresenterSuppressesToolsNode(t *testing.T) {
	p, buf := newTestPresenter()

	p.Handle(agent.Event{Node: agent.NodeTools, Kind: agent.EventToolResult, Name: "read_file", Text: "secret contents", OK: true})

	if buf.Len() != 0 {
		t.Errorf("tools-node events must not render, got %q", buf.String())
	}
}

func TestPresenterHidesArgsWhenDisabled(t *testing.T) {
	var buf bytes.Buffer
	p := NewPresenter(&buf, WithColor(false), WithToolArgs(false))

	p.Handle(agent.Event{Node: agent.NodeAgent, Kind: agent.EventToolCallName, Index: 0, Name: "write_file"})
	p.Handle(agent.Event{Node: agent.NodeAgent, Kind: agent.EventToolCallArgs, Index: 0, Text: `{"path":"a"}`})

	if strings.Contains(buf.String(), `{"path":"a"}`) {
		t.Errorf("args rendered despite being disabled: %q", buf.String())
	}
}

func TestPresenterResetStartsFreshTurn(t *testing.T) {
	p, buf := newTestPresenter()

	p.Handle(agent.Event{Node: agent.NodeAgent, Kind: agent.EventText, Text: "first turn"})
	p.Handle(agent.Event{Node: agent.NodeAgent, Kind: agent.EventFinish, Text: agent.FinishStop})
	p.Reset()
	p.Handle(agent.Event{Node: agent.NodeAgent, Kind: agent.EventText, Text: "second turn"})

	if got := strings.Count(buf.String(), "[AI]:"); got != 2 {
		t.Errorf("header count = %d, want 2", got)
	}
}
