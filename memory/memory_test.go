package memory_test

import (
	"context"
	"testing"

	"github.com/meikuraledutech/botdag"
	"github.com/meikuraledutech/botdag/memory"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var _ botdag.Store = (*memory.Store)(nil)

func TestStore_Lifecycle(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	s := memory.New()
	require.NoError(t, s.CreateSchema(ctx))

	d := &botdag.DAG{Nodes: []botdag.PayloadNode{{ID: "A", Data: map[string]any{}}}, Edges: []botdag.Edge{}, Sample: map[string]any{"A/x": 1.0}, MainIn: "A/q", MainOut: "A/r"}
	created, err := s.CreateChatBot(ctx, &botdag.ChatBot{Name: "one", Engine: botdag.EngineFury, CreatedBy: "alice", DAG: d})
	require.NoError(t, err)
	require.NotEmpty(t, created.ID)
	assert.False(t, created.CreatedAt.IsZero())

	got, err := s.GetChatBot(ctx, created.ID)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "A/q", got.DAG.MainIn)

	// Mutating a returned value does not reach the store.
	got.DAG.MainIn = "changed"
	again, err := s.GetChatBot(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, "A/q", again.DAG.MainIn)

	updated, err := s.UpdateChatBot(ctx, &botdag.ChatBot{ID: created.ID, Name: "renamed", Description: "ignored"}, []string{botdag.KeyName})
	require.NoError(t, err)
	assert.Equal(t, "renamed", updated.Name)
	assert.Empty(t, updated.Description)
	assert.NotNil(t, updated.DAG)

	_, err = s.UpdateChatBot(ctx, &botdag.ChatBot{ID: created.ID}, []string{"engine"})
	assert.Error(t, err)

	require.NoError(t, s.DeleteChatBot(ctx, created.ID))
	gone, err := s.GetChatBot(ctx, created.ID)
	require.NoError(t, err)
	assert.Nil(t, gone)

	assert.ErrorIs(t, s.DeleteChatBot(ctx, created.ID), botdag.ErrChatBotNotFound)
	_, err = s.UpdateChatBot(ctx, &botdag.ChatBot{ID: created.ID}, []string{botdag.KeyName})
	assert.ErrorIs(t, err, botdag.ErrChatBotNotFound)
}

func TestStore_List(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	s := memory.New()

	for _, name := range []string{"a", "b", "c"} {
		_, err := s.CreateChatBot(ctx, &botdag.ChatBot{ID: name, Name: name, CreatedBy: "alice"})
		require.NoError(t, err)
	}
	_, err := s.CreateChatBot(ctx, &botdag.ChatBot{ID: "z", Name: "z", CreatedBy: "bob"})
	require.NoError(t, err)

	all, err := s.ListChatBots(ctx, "alice", 0, 10)
	require.NoError(t, err)
	assert.Len(t, all, 3)

	page, err := s.ListChatBots(ctx, "alice", 1, 1)
	require.NoError(t, err)
	require.Len(t, page, 1)
	assert.Equal(t, "b", page[0].ID)

	negative, err := s.ListChatBots(ctx, "alice", -1, 10)
	require.NoError(t, err)
	assert.Len(t, negative, 3)

	none, err := s.ListChatBots(ctx, "carol", 0, 10)
	require.NoError(t, err)
	assert.NotNil(t, none)
	assert.Empty(t, none)

	require.NoError(t, s.DropSchema(ctx))
	all, err = s.ListChatBots(ctx, "alice", 0, 10)
	require.NoError(t, err)
	assert.Empty(t, all)
}

func TestStore_Users(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	s := memory.New()

	created, err := s.CreateUser(ctx, &botdag.User{Username: "alice", Email: "a@b.c", Password: "hash"})
	require.NoError(t, err)
	require.NotEmpty(t, created.ID)
	assert.False(t, created.CreatedAt.IsZero())

	got, err := s.GetUserByUsername(ctx, "alice")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "hash", got.Password)

	got, err = s.GetUserByEmail(ctx, "a@b.c")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, created.ID, got.ID)

	_, err = s.CreateUser(ctx, &botdag.User{Username: "alice", Email: "x@y.z"})
	assert.ErrorIs(t, err, botdag.ErrUserExists)
	_, err = s.CreateUser(ctx, &botdag.User{Username: "bob", Email: "a@b.c"})
	assert.ErrorIs(t, err, botdag.ErrUserExists)

	missing, err := s.GetUserByUsername(ctx, "carol")
	require.NoError(t, err)
	assert.Nil(t, missing)

	require.NoError(t, s.DropSchema(ctx))
	got, err = s.GetUserByUsername(ctx, "alice")
	require.NoError(t, err)
	assert.Nil(t, got)
}
