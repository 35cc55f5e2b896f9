// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite" // Pure Go SQLite driver

	"github.com/jeranaias/scout/internal/agent"
)

// =============================================================================
// SCHEMA
// =============================================================================

const schema = `
CREATE TABLE IF NOT EXISTS threads (
	id            TEXT PRIMARY KEY,
	state         TEXT NOT NULL,
	message_count INTEGER NOT NULL,
	updated_at    TIMESTAMP NOT NULL
);
`

// =============================================================================
// THREAD STORE
// =============================================================================

// ThreadInfo summarizes one persisted thread.
type ThreadInfo struct {
	ID           string
	MessageCount int
	UpdatedAt    time.Time
}

// ThreadStore checkpoints agent state per thread in SQLite.
type ThreadStore struct {
	db *sql.DB
}

// Open creates or opens the thread database at path, creating parent
// directories as needed.
func Open(path string) (*ThreadStore, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("creating database directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("opening thread database: %w", err)
	}

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA synchronous=NORMAL",
		"PRAGMA foreign_keys=ON",
	}
	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, fmt.Errorf("configuring thread database: %w", err)
		}
	}

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating thread schema: %w", err)
	}

	return &ThreadStore{db: db}, nil
}

// Close releases the underlying database.
func (s *ThreadStore) Close() error {
	return s.db.Close()
}

// Load restores the checkpointed state for a thread. Returns
// agent.ErrThreadNotFound for an unknown thread ID.
func (s *ThreadStore) Load(ctx context.Context, threadID string) (agent.State, error) {
	var raw string
	err := s.db.QueryRowContext(ctx,
		"SELECT state FROM threads WHERE id = ?", threadID,
	).Scan(&raw)
	if errors.Is(err, sql.ErrNoRows) {
		return agent.State{}, agent.ErrThreadNotFound
	}
	if err != nil {
		return agent.State{}, fmt.Errorf("loading thread %s: %w", threadID, err)
	}

	var st agent.State
	if err := json.Unmarshal([]byte(raw), &st); err != nil {
		return agent.State{}, fmt.Errorf("decoding thread %s: %w", threadID, err)
	}
	return st, nil
}

// Save checkpoints the full state for a thread, replacing any previous
// checkpoint.
func (s *ThreadStore) Save(ctx context.Context, threadID string, st agent.State) error {
	raw, err := json.Marshal(st)
	if err != nil {
		return fmt.Errorf("encoding thread %s: %w", threadID, err)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO threads (id, state, message_count, updated_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			state = excluded.state,
			message_count = excluded.message_count,
			updated_at = excluded.updated_at`,
		threadID, string(raw), len(st.Messages), time.Now().UTC(),
	)
	if err != nil {
		return fmt.Errorf("saving thread %s: %w", threadID, err)
	}
	return nil
}

// Delete removes a thread's checkpoint. Deleting an unknown thread is
// not an error.
func (s *ThreadStore) Delete(ctx context.Context, threadID string) error {
	if _, err := s.db.ExecContext(ctx, "DELETE FROM threads WHERE id = ?", threadID); err != nil {
		return fmt.Errorf("deleting thread %s: %w", threadID, err)
	}
	return nil
}

// List returns all persisted threads, most recently updated first.
func (s *ThreadStore) List(ctx context.Context) ([]ThreadInfo, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT id, message_count, updated_at FROM threads ORDER BY updated_at DESC")
	if err != nil {
		return nil, fmt.Errorf("listing threads: %w", err)
	}
	defer rows.Close()

	var infos []ThreadInfo
	for rows.Next() {
		var info ThreadInfo
		if err := rows.Scan(&info.ID, &info.MessageCount, &info.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scanning thread row: %w", err)
		}
		infos = append(infos, info)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("listing threads: %w", err)
	}
	return infos, nil
}
