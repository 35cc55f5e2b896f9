// scout - a filesystem-scoped data science agent for local LLMs.
//
// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"sync"
	"syscall"

	"github.com/charmbracelet/lipgloss"
	"github.com/peterh/liner"

	"github.com/jeranaias/scout/internal/agent"
	"github.com/jeranaias/scout/internal/config"
	"github.com/jeranaias/scout/internal/ollama"
	"github.com/jeranaias/scout/internal/prompt"
	"github.com/jeranaias/scout/internal/storage"
	"github.com/jeranaias/scout/internal/tools"
	"github.com/jeranaias/scout/internal/ui"
)

// Version information (set at build time)
var (
	Version   = "0.1.0"
	GitCommit = "unknown"
)

var (
	errorStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("9")).Bold(true)
	warningStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("11"))
	promptStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("14")).Bold(true)
	infoStyle    = lipgloss.NewStyle().Faint(true)
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "%s %v\n", errorStyle.Render("[Error]"), err)
		os.Exit(1)
	}
}

func run() error {
	var (
		threadID  = flag.String("thread", "default", "conversation thread to resume")
		modelName = flag.String("model", "", "Ollama model (overrides config)")
		workspace = flag.String("workspace", "", "workspace directory (overrides config)")
		showVer   = flag.Bool("version", false, "print version and exit")
	)
	flag.Parse()

	if *showVer {
		fmt.Printf("scout %s (%s)\n", Version, GitCommit)
		return nil
	}

	cfg, err := config.Load()
	if err != nil {
		return err
	}
	if *modelName != "" {
		cfg.Ollama.Model = *modelName
	}
	if *workspace != "" {
		cfg.Agent.Workspace = *workspace
	}

	// Workspace directory: create it if missing, then confine tools to it.
	workspaceAbs, err := filepath.Abs(cfg.Agent.Workspace)
	if err != nil {
		return fmt.Errorf("resolving workspace: %w", err)
	}
	if err := os.MkdirAll(workspaceAbs, 0o755); err != nil {
		return fmt.Errorf("creating workspace: %w", err)
	}
	registry, err := tools.NewFilesystemRegistry(workspaceAbs)
	if err != nil {
		return err
	}

	// Ollama must be up before the REPL starts.
	client := ollama.NewClientWithConfig(&ollama.ClientConfig{
		BaseURL:      cfg.Ollama.URL,
		DefaultModel: cfg.Ollama.Model,
	})
	if err := client.CheckRunning(context.Background()); err != nil {
		fmt.Fprintln(os.Stderr, errorStyle.Render("Cannot reach Ollama at "+cfg.Ollama.URL))
		fmt.Fprintln(os.Stderr, "Start it with: ollama serve")
		return err
	}

	toolNames := registry.Names()
	fmt.Printf("✅ Loaded %d tools.\n", len(toolNames))

	system := prompt.Build(workspaceAbs, toolNames)
	model := ollama.NewAgentClient(client, cfg.Ollama.Model, system, wireTools(registry))

	dbPath, err := config.ThreadDBPath()
	if err != nil {
		return err
	}
	store, err := storage.Open(dbPath)
	if err != nil {
		return err
	}
	defer store.Close()

	orch := agent.NewOrchestrator(
		agent.NewStepper(model),
		agent.NewInvoker(registry),
		store,
		cfg.Agent.StepBudget,
	)

	presenter := ui.NewPresenter(os.Stdout,
		ui.WithColor(cfg.UI.Color),
		ui.WithToolArgs(cfg.UI.ShowToolArgs),
	)

	fmt.Println(infoStyle.Render(fmt.Sprintf("model %s | workspace %s | thread %s",
		cfg.Ollama.Model, workspaceAbs, *threadID)))
	fmt.Println(infoStyle.Render(`Type "exit" or "quit" to leave.`))

	return repl(cfg, orch, presenter, *threadID)
}

// =============================================================================
// REPL
// =============================================================================

// repl runs the interactive loop: read a line, run one turn, render the
// stream, repeat. Turn errors are reported but do not end the session.
func repl(cfg *config.Config, orch *agent.Orchestrator, presenter *ui.Presenter, threadID string) error {
	line := liner.NewLiner()
	line.SetCtrlCAborts(true)
	defer line.Close()

	historyPath, err := cfg.HistoryPath()
	if err == nil {
		if f, err := os.Open(historyPath); err == nil {
			line.ReadHistory(f)
			f.Close()
		}
		defer saveHistory(line, historyPath)
	}

	// First Ctrl+C during a turn cancels that turn, not the session.
	var cancelMu sync.Mutex
	var cancelTurn context.CancelFunc
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigChan)
	go func() {
		for range sigChan {
			cancelMu.Lock()
			if cancelTurn != nil {
				cancelTurn()
				cancelTurn = nil
				fmt.Fprintln(os.Stderr, "\n"+warningStyle.Render("[Cancelled]"))
			}
			cancelMu.Unlock()
		}
	}()

	for {
		input, err := line.Prompt(promptStyle.Render("scout> "))
		if err != nil {
			// Ctrl+C at the prompt or EOF ends the session.
			fmt.Println()
			return nil
		}

		input = strings.TrimSpace(input)
		if input == "" {
			continue
		}
		if strings.EqualFold(input, "exit") || strings.EqualFold(input, "quit") {
			return nil
		}
		line.AppendHistory(input)

		ctx, cancel := context.WithCancel(context.Background())
		cancelMu.Lock()
		cancelTurn = cancel
		cancelMu.Unlock()

		presenter.Reset()
		_, err = orch.Turn(ctx, threadID, input, presenter.Handle)

		cancelMu.Lock()
		cancelTurn = nil
		cancelMu.Unlock()
		cancel()

		if err != nil && ctx.Err() == nil {
			fmt.Fprintf(os.Stderr, "%s %v\n", errorStyle.Render("[Error]"), err)
		}
		fmt.Println()
	}
}

func saveHistory(line *liner.State, path string) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0600)
	if err != nil {
		return
	}
	defer f.Close()
	line.WriteHistory(f)
}

// =============================================================================
// TOOL SCHEMA EXPORT
// =============================================================================

// wireTools converts the registry's tool definitions into the JSON
// Schema form the chat API expects.
func wireTools(registry *tools.Registry) []ollama.Tool {
	var out []ollama.Tool
	for _, name := range registry.Names() {
		tool, ok := registry.Tool(name)
		if !ok {
			continue
		}

		props := make(map[string]ollama.ToolProperty, len(tool.Params))
		var required []string
		for _, param := range tool.Params {
			props[param.Name] = ollama.ToolProperty{
				Type:        param.Type,
				Description: param.Description,
			}
			if param.Required {
				required = append(required, param.Name)
			}
		}

		out = append(out, ollama.Tool{
			Type: "function",
			Function: ollama.ToolSchema{
				Name:        name,
				Description: tool.Description,
				Parameters: ollama.ToolParameters{
					Type:       "object",
					Properties: props,
					Required:   required,
				},
			},
		})
	}
	return out
}
