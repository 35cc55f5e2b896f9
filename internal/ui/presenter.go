// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package ui renders the agent's streaming output to the terminal.
package ui

import (
	"fmt"
	"io"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"
	"github.com/muesli/termenv"

	"github.com/jeranaias/scout/internal/agent"
)

// =============================================================================
// PRESENTER
// =============================================================================

// toolMarker prefixes each announced tool call.
const toolMarker = "🛠  Executing Tool: "

// Presenter consumes turn events and renders a readable transcript:
// one marker per tool call, dimmed argument echo, and an "[AI]:" header
// before the first fragment of each spoken response. Events from the
// tool-execution node are suppressed because their content reaches the
// model as conversation messages, not the user.
//
// Presenter is stateful across one turn; call Reset before each turn.
type Presenter struct {
	out io.Writer

	showArgs bool

	headerStyle lipgloss.Style
	toolStyle   lipgloss.Style
	argsStyle   lipgloss.Style
	ruleStyle   lipgloss.Style

	// lastIndex is the tool-call index most recently announced, -1 when
	// no call is pending. A finish with reason "tool_calls" resets it so
	// the next burst announces its calls again.
	lastIndex int

	// headerPrinted tracks whether "[AI]:" was emitted for the current
	// response.
	headerPrinted bool
}

// Option configures a Presenter.
type Option func(*Presenter)

// WithColor forces color on or off regardless of terminal detection.
func WithColor(enabled bool) Option {
	return func(p *Presenter) {
		profile := termenv.Ascii
		if enabled {
			profile = termenv.ANSI256
		}
		p.applyProfile(profile)
	}
}

// WithToolArgs controls whether tool call arguments are echoed.
func WithToolArgs(enabled bool) Option {
	return func(p *Presenter) {
		p.showArgs = enabled
	}
}

// NewPresenter creates a presenter writing to out.
func NewPresenter(out io.Writer, opts ...Option) *Presenter {
	p := &Presenter{
		out:       out,
		showArgs:  true,
		lastIndex: -1,
	}
	p.applyProfile(termenv.ColorProfile())
	for _, opt := range opts {
		opt(p)
	}
	return p
}

func (p *Presenter) applyProfile(profile termenv.Profile) {
	renderer := lipgloss.NewRenderer(p.out, termenv.WithProfile(profile))
	p.headerStyle = renderer.NewStyle().Foreground(lipgloss.Color("10")).Bold(true)
	p.toolStyle = renderer.NewStyle().Foreground(lipgloss.Color("12")).Bold(true)
	p.argsStyle = renderer.NewStyle().Faint(true)
	p.ruleStyle = renderer.NewStyle().Faint(true)
}

// Reset clears per-turn state. Call before rendering a new turn.
func (p *Presenter) Reset() {
	p.lastIndex = -1
	p.headerPrinted = false
}

// Handle renders one event. It is an agent.EventSink.
func (p *Presenter) Handle(ev agent.Event) {
	if ev.Node == agent.NodeTools {
		return
	}

	switch ev.Kind {
	case agent.EventToolCallName:
		if ev.Index != p.lastIndex {
			p.lastIndex = ev.Index
			line := toolMarker + ev.Name
			fmt.Fprintf(p.out, "\n%s\n", p.toolStyle.Render(line))
			fmt.Fprintln(p.out, p.ruleStyle.Render(rule(runewidth.StringWidth(line))))
		}

	case agent.EventToolCallArgs:
		if p.showArgs && ev.Text != "" {
			fmt.Fprint(p.out, p.argsStyle.Render(ev.Text))
		}

	case agent.EventText:
		if ev.Text == "" {
			return
		}
		if !p.headerPrinted {
			p.headerPrinted = true
			fmt.Fprintf(p.out, "\n%s ", p.headerStyle.Render("[AI]:"))
		}
		fmt.Fprint(p.out, ev.Text)

	case agent.EventFinish:
		fmt.Fprintln(p.out)
		if ev.Text == agent.FinishToolCalls {
			// The next model response re-announces its tool calls.
			p.lastIndex = -1
		}
		p.headerPrinted = false
	}
}

// rule builds a horizontal separator sized to the text above it.
func rule(width int) string {
	if width <= 0 {
		width = 1
	}
	line := make([]rune, width)
	for i := range line {
		line[i] = '─'
	}
	return string(line)
}
