// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package ollama provides the HTTP client for the Ollama chat API.
//
// The client speaks the line-delimited JSON streaming protocol of
// /api/chat, including tool definitions for function calling. The
// AgentClient wrapper adapts a Client plus a model name and system
// prompt to the model interface the orchestration loop consumes.
package ollama
