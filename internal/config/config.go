// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package config provides configuration loading and management for scout.
//
// Supports both TOML and JSON configuration formats, with sensible
// defaults, environment variable overrides, and validation.
//
// Configuration file locations (in order of precedence):
//   - ~/.scout/config.toml
//   - ~/.scout/config.json
//   - Built-in defaults
package config

import (
	"encoding/json"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/BurntSushi/toml"
)

// =============================================================================
// CONFIG STRUCTURES
// =============================================================================

// Config represents the complete scout configuration.
type Config struct {
	// Version of the config schema.
	Version string `toml:"version" json:"version"`

	// Ollama (local model) configuration.
	Ollama OllamaConfig `toml:"ollama" json:"ollama"`

	// Agent loop configuration.
	Agent AgentConfig `toml:"agent" json:"agent"`

	// UI configuration.
	UI UIConfig `toml:"ui" json:"ui"`
}

// OllamaConfig contains local Ollama configuration.
type OllamaConfig struct {
	// URL is the Ollama server address.
	URL string `toml:"url" json:"url"`
	// Model is the chat model to drive the agent.
	Model string `toml:"model" json:"model"`
	// TimeoutSecs bounds non-streaming requests.
	TimeoutSecs int `toml:"timeout_secs" json:"timeout_secs"`
	// NumCtx is the context window size to request (0 = model default).
	NumCtx int `toml:"num_ctx" json:"num_ctx"`
}

// AgentConfig contains agent loop configuration.
type AgentConfig struct {
	// Workspace is the directory the filesystem tools operate in.
	Workspace string `toml:"workspace" json:"workspace"`
	// StepBudget caps node transitions per turn (0 = default).
	StepBudget int `toml:"step_budget" json:"step_budget"`
	// HistoryFile is where REPL input history is kept.
	HistoryFile string `toml:"history_file" json:"history_file"`
}

// UIConfig contains terminal output configuration.
type UIConfig struct {
	// Color enables ANSI styling of the chat output.
	Color bool `toml:"color" json:"color"`
	// ShowToolArgs echoes tool call arguments as they stream.
	ShowToolArgs bool `toml:"show_tool_args" json:"show_tool_args"`
}

// =============================================================================
// DEFAULTS
// =============================================================================

// Default returns the built-in default configuration.
func Default() *Config {
	return &Config{
		Version: "1",
		Ollama: OllamaConfig{
			URL:         "http://127.0.0.1:11434",
			Model:       "qwen3:8b",
			TimeoutSecs: 120,
		},
		Agent: AgentConfig{
			Workspace:   "./workspace",
			StepBudget:  300,
			HistoryFile: "", // resolved against ConfigDir when empty
		},
		UI: UIConfig{
			Color:        true,
			ShowToolArgs: true,
		},
	}
}

// =============================================================================
// PATHS
// =============================================================================

// ConfigDir returns the scout configuration directory path.
func ConfigDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("could not determine home directory: %w", err)
	}
	return filepath.Join(home, ".scout"), nil
}

// ConfigPathTOML returns the path to the TOML config file.
func ConfigPathTOML() (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.toml"), nil
}

// ConfigPathJSON returns the path to the JSON config file.
func ConfigPathJSON() (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.json"), nil
}

// EnsureConfigDir ensures the config directory exists.
func EnsureConfigDir() error {
	dir, err := ConfigDir()
	if err != nil {
		return err
	}
	return os.MkdirAll(dir, 0755)
}

// =============================================================================
// LOAD FUNCTIONS
// =============================================================================

// Load loads configuration from the config file(s).
// Tries TOML first, then JSON, and falls back to defaults.
// Environment overrides are applied last.
func Load() (*Config, error) {
	if tomlPath, err := ConfigPathTOML(); err == nil {
		if _, statErr := os.Stat(tomlPath); statErr == nil {
			return LoadFromPath(tomlPath)
		}
	}
	if jsonPath, err := ConfigPathJSON(); err == nil {
		if _, statErr := os.Stat(jsonPath); statErr == nil {
			return LoadFromPath(jsonPath)
		}
	}

	cfg := Default()
	cfg.ApplyEnvOverrides()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// LoadFromPath loads configuration from a specific file path with full
// validation. JSON is detected by extension, everything else parses as
// TOML.
func LoadFromPath(path string) (*Config, error) {
	cfg := &Config{}

	if strings.HasSuffix(path, ".json") {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read JSON config from %s: %w", path, err)
		}
		if err := json.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to decode JSON config from %s: %w", path, err)
		}
	} else {
		if _, err := toml.DecodeFile(path, cfg); err != nil {
			return nil, fmt.Errorf("failed to decode TOML config from %s: %w", path, err)
		}
	}

	fillDefaults(cfg)
	cfg.ApplyEnvOverrides()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// fillDefaults fills in any missing values with defaults.
func fillDefaults(cfg *Config) {
	defaults := Default()

	if cfg.Version == "" {
		cfg.Version = defaults.Version
	}
	if cfg.Ollama.URL == "" {
		cfg.Ollama.URL = defaults.Ollama.URL
	}
	if cfg.Ollama.Model == "" {
		cfg.Ollama.Model = defaults.Ollama.Model
	}
	if cfg.Ollama.TimeoutSecs == 0 {
		cfg.Ollama.TimeoutSecs = defaults.Ollama.TimeoutSecs
	}
	if cfg.Agent.Workspace == "" {
		cfg.Agent.Workspace = defaults.Agent.Workspace
	}
	if cfg.Agent.StepBudget == 0 {
		cfg.Agent.StepBudget = defaults.Agent.StepBudget
	}
}

// =============================================================================
// ENVIRONMENT OVERRIDES
// =============================================================================

// ApplyEnvOverrides applies SCOUT_* environment variables on top of the
// loaded configuration.
func (c *Config) ApplyEnvOverrides() {
	if model := os.Getenv("SCOUT_MODEL"); model != "" {
		c.Ollama.Model = model
	}
	if url := os.Getenv("SCOUT_OLLAMA_URL"); url != "" {
		c.Ollama.URL = url
	}
	if workspace := os.Getenv("SCOUT_WORKSPACE"); workspace != "" {
		c.Agent.Workspace = workspace
	}
	if budget := os.Getenv("SCOUT_STEP_BUDGET"); budget != "" {
		if n, err := strconv.Atoi(budget); err == nil && n > 0 {
			c.Agent.StepBudget = n
		}
	}
	if color := os.Getenv("SCOUT_NO_COLOR"); color != "" {
		c.UI.Color = false
	}
}

// =============================================================================
// VALIDATION
// =============================================================================

// ValidationError describes a single invalid config field.
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// Validate checks the configuration for consistency.
func (c *Config) Validate() error {
	if c.Ollama.URL != "" {
		parsed, err := url.Parse(c.Ollama.URL)
		if err != nil || parsed.Scheme == "" || parsed.Host == "" {
			return ValidationError{Field: "ollama.url", Message: "must be a valid URL"}
		}
	}
	if c.Ollama.TimeoutSecs < 0 {
		return ValidationError{Field: "ollama.timeout_secs", Message: "must not be negative"}
	}
	if c.Ollama.NumCtx < 0 {
		return ValidationError{Field: "ollama.num_ctx", Message: "must not be negative"}
	}
	if c.Agent.StepBudget < 0 {
		return ValidationError{Field: "agent.step_budget", Message: "must not be negative"}
	}
	return nil
}

// =============================================================================
// SAVE
// =============================================================================

// Save writes the configuration to the default TOML path.
func Save(cfg *Config) error {
	if err := EnsureConfigDir(); err != nil {
		return err
	}
	path, err := ConfigPathTOML()
	if err != nil {
		return err
	}

	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0600)
	if err != nil {
		return fmt.Errorf("failed to open config file: %w", err)
	}
	defer f.Close()

	if err := toml.NewEncoder(f).Encode(cfg); err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}
	return nil
}

// HistoryPath resolves the REPL history file, defaulting to
// ~/.scout/history.
func (c *Config) HistoryPath() (string, error) {
	if c.Agent.HistoryFile != "" {
		return c.Agent.HistoryFile, nil
	}
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "history"), nil
}

// ThreadDBPath resolves the thread checkpoint database, defaulting to
// ~/.scout/threads.db.
func ThreadDBPath() (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "threads.db"), nil
}
