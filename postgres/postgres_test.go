package postgres_test

import (
	"context"
	"os"
	"testing"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/meikuraledutech/botdag"
	"github.com/meikuraledutech/botdag/postgres"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var _ botdag.Store = (*postgres.PGStore)(nil)

func newStore(t *testing.T) *postgres.PGStore {
	t.Helper()
	dbURL := os.Getenv("DATABASE_URL")
	if dbURL == "" {
		t.Skip("DATABASE_URL is not set")
	}
	pool, err := pgxpool.New(context.Background(), dbURL)
	require.NoError(t, err)
	t.Cleanup(pool.Close)

	s := postgres.New(pool)
	require.NoError(t, s.CreateSchema(context.Background()))
	return s
}

func TestPGStore_Lifecycle(t *testing.T) {
	s := newStore(t)
	ctx := context.Background()
	owner := "user-" + uuid.NewString()

	d := &botdag.DAG{
		Nodes:   []botdag.PayloadNode{{ID: "A", CfID: "gpt", Data: map[string]any{}}},
		Edges:   []botdag.Edge{},
		Sample:  map[string]any{"A/temp": 0.5},
		MainIn:  "A/in",
		MainOut: "A/out",
	}
	created, err := s.CreateChatBot(ctx, &botdag.ChatBot{Name: "pg", Engine: botdag.EngineFury, CreatedBy: owner, DAG: d})
	require.NoError(t, err)
	require.NotEmpty(t, created.ID)
	assert.False(t, created.CreatedAt.IsZero())
	assert.Equal(t, d, created.DAG)

	updated, err := s.UpdateChatBot(ctx, &botdag.ChatBot{ID: created.ID, Name: "pg2", Description: "d"}, []string{botdag.KeyName, botdag.KeyDescription})
	require.NoError(t, err)
	assert.Equal(t, "pg2", updated.Name)
	assert.Equal(t, "d", updated.Description)

	list, err := s.ListChatBots(ctx, owner, 0, 10)
	require.NoError(t, err)
	require.Len(t, list, 1)

	list, err = s.ListChatBots(ctx, owner, -1, 10)
	require.NoError(t, err)
	require.Len(t, list, 1)

	require.NoError(t, s.DeleteChatBot(ctx, created.ID))
	got, err := s.GetChatBot(ctx, created.ID)
	require.NoError(t, err)
	assert.Nil(t, got)
	assert.ErrorIs(t, s.DeleteChatBot(ctx, created.ID), botdag.ErrChatBotNotFound)

	_, err = s.UpdateChatBot(ctx, &botdag.ChatBot{ID: created.ID}, []string{botdag.KeyName})
	assert.ErrorIs(t, err, botdag.ErrChatBotNotFound)
}

func TestPGStore_Users(t *testing.T) {
	s := newStore(t)
	ctx := context.Background()
	name := "user-" + uuid.NewString()

	created, err := s.CreateUser(ctx, &botdag.User{Username: name, Email: name + "@example.com", Password: "hash"})
	require.NoError(t, err)
	require.NotEmpty(t, created.ID)

	got, err := s.GetUserByUsername(ctx, name)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "hash", got.Password)

	got, err = s.GetUserByEmail(ctx, name+"@example.com")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, created.ID, got.ID)

	_, err = s.CreateUser(ctx, &botdag.User{Username: name, Email: "other-" + name, Password: "hash"})
	assert.ErrorIs(t, err, botdag.ErrUserExists)

	missing, err := s.GetUserByUsername(ctx, "nobody-"+name)
	require.NoError(t, err)
	assert.Nil(t, missing)
}
