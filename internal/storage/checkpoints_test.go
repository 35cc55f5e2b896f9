// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package storage

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jeranaias/scout/internal/agent"
)

func openTestStore(t *testing.T) *ThreadStore {
	t.Helper()
	store, err := Open(filepath.Join(t.TempDir(), "threads.db"))
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store
}

func TestSaveAndLoadRoundTrip(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	st := agent.State{
		Messages: []agent.Message{
			agent.NewHumanMessage("list files"),
			agent.NewAIMessageWithToolCalls("", []agent.ToolCallRequest{
				{ID: "c1", Name: "list_directory", Args: map[string]interface{}{"path": "."}},
			}),
			agent.NewToolResultMessage("c1", "list_directory", "Error: permission denied"),
		},
		ErrorCount: 3,
	}

	require.NoError(t, store.Save(ctx, "t1", st))

	got, err := store.Load(ctx, "t1")
	require.NoError(t, err)

	// Resuming must restore exactly what was saved, including the
	// running failure count.
	assert.Equal(t, 3, got.ErrorCount)
	require.Len(t, got.Messages, 3)
	assert.Equal(t, agent.RoleHuman, got.Messages[0].Role)
	assert.Equal(t, "c1", got.Messages[1].ToolCalls[0].ID)
	assert.Equal(t, "list_directory", got.Messages[1].ToolCalls[0].Name)
	assert.True(t, got.Messages[2].IsError())
	assert.Equal(t, "list_directory", got.Messages[2].Name)
}

func TestLoadUnknownThread(t *testing.T) {
	store := openTestStore(t)

	_, err := store.Load(context.Background(), "missing")
	assert.True(t, errors.Is(err, agent.ErrThreadNotFound), "err = %v", err)
}

func TestSaveOverwritesCheckpoint(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	first := agent.State{Messages: []agent.Message{agent.NewHumanMessage("one")}}
	require.NoError(t, store.Save(ctx, "t1", first))

	second := agent.State{Messages: []agent.Message{
		agent.NewHumanMessage("one"),
		agent.NewAIMessage("answer"),
	}}
	require.NoError(t, store.Save(ctx, "t1", second))

	got, err := store.Load(ctx, "t1")
	require.NoError(t, err)
	assert.Len(t, got.Messages, 2)

	infos, err := store.List(ctx)
	require.NoError(t, err)
	require.Len(t, infos, 1)
	assert.Equal(t, 2, infos[0].MessageCount)
}

func TestDeleteThread(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.Save(ctx, "t1", agent.State{}))
	require.NoError(t, store.Delete(ctx, "t1"))

	_, err := store.Load(ctx, "t1")
	assert.True(t, errors.Is(err, agent.ErrThreadNotFound))

	// Deleting again is fine.
	assert.NoError(t, store.Delete(ctx, "t1"))
}

func TestListOrdersByRecency(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.Save(ctx, "old", agent.State{}))
	require.NoError(t, store.Save(ctx, "new", agent.State{}))
	// Touch "old" so it becomes the most recent.
	require.NoError(t, store.Save(ctx, "old", agent.State{
		Messages: []agent.Message{agent.NewHumanMessage("hi")},
	}))

	infos, err := store.List(ctx)
	require.NoError(t, err)
	require.Len(t, infos, 2)
	assert.Equal(t, "old", infos[0].ID)
}
