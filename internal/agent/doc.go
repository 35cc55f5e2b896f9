// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package agent implements the orchestration state machine for Scout.
//
// A conversation advances through a two-node loop: the agent node consults
// the model, and the tools node executes whatever tool calls the model
// requested. The loop repeats until the model answers without tool calls,
// the consecutive-failure breaker trips, or the per-turn step budget runs
// out.
//
// # Key Types
//
//   - Message: one turn of the conversation (human, ai, or tool role)
//   - State: append-only message history plus the running failure count
//   - Stepper: the agent node (model consultation and breaker decision)
//   - Invoker: the tools node (ordered capability dispatch)
//   - Orchestrator: the loop itself, including per-thread checkpointing
//
// The package is headless: it emits Events to a sink and never writes to
// the console directly.
package agent
