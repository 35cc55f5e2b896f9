// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package storage persists conversation threads between sessions.
//
// Each thread's full state (message history plus the running tool
// failure count) is checkpointed as a JSON blob in a local SQLite
// database, keyed by thread ID. Resuming a thread restores exactly the
// state that was saved, so a session can be continued after a restart.
package storage
