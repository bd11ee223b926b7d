// Package memory is an in-process botdag.Store for tests and database-less runs.
package memory

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/meikuraledutech/botdag"
)

// Store keeps chatbots and users in maps. Stored values are copied in and out.
type Store struct {
	mu    sync.RWMutex
	bots  map[string]*botdag.ChatBot
	users map[string]botdag.User // by username
	now   func() time.Time
}

// New creates an empty Store.
func New() *Store {
	return &Store{
		bots:  map[string]*botdag.ChatBot{},
		users: map[string]botdag.User{},
		now:   time.Now,
	}
}

func (s *Store) CreateSchema(ctx context.Context) error { return nil }

// DropSchema forgets every chatbot and user.
func (s *Store) DropSchema(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.bots = map[string]*botdag.ChatBot{}
	s.users = map[string]botdag.User{}
	return nil
}

func (s *Store) CreateChatBot(ctx context.Context, bot *botdag.ChatBot) (*botdag.ChatBot, error) {
	c, err := copyBot(bot)
	if err != nil {
		return nil, err
	}
	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	c.CreatedAt = s.now().UTC()
	c.DeletedAt = nil

	s.mu.Lock()
	defer s.mu.Unlock()
	s.bots[c.ID] = c
	return copyBot(c)
}

// GetChatBot returns nil, nil for unknown or deleted bots.
func (s *Store) GetChatBot(ctx context.Context, id string) (*botdag.ChatBot, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	b, ok := s.bots[id]
	if !ok || b.DeletedAt != nil {
		return nil, nil
	}
	return copyBot(b)
}

func (s *Store) UpdateChatBot(ctx context.Context, bot *botdag.ChatBot, keys []string) (*botdag.ChatBot, error) {
	in, err := copyBot(bot)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	b, ok := s.bots[bot.ID]
	if !ok || b.DeletedAt != nil {
		return nil, botdag.ErrChatBotNotFound
	}
	for _, k := range keys {
		switch k {
		case botdag.KeyName:
			b.Name = in.Name
		case botdag.KeyDescription:
			b.Description = in.Description
		case botdag.KeyDAG:
			b.DAG = in.DAG
		default:
			return nil, fmt.Errorf("botdag: invalid update key %q", k)
		}
	}
	return copyBot(b)
}

// DeleteChatBot marks the bot deleted.
func (s *Store) DeleteChatBot(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	b, ok := s.bots[id]
	if !ok || b.DeletedAt != nil {
		return botdag.ErrChatBotNotFound
	}
	now := s.now().UTC()
	b.DeletedAt = &now
	return nil
}

// ListChatBots returns live bots of createdBy ordered by creation time.
// A negative skip counts as zero.
func (s *Store) ListChatBots(ctx context.Context, createdBy string, skip, limit int) ([]botdag.ChatBot, error) {
	skip = max(skip, 0)

	s.mu.RLock()
	defer s.mu.RUnlock()

	live := make([]*botdag.ChatBot, 0, len(s.bots))
	for _, b := range s.bots {
		if b.DeletedAt == nil && b.CreatedBy == createdBy {
			live = append(live, b)
		}
	}
	sort.Slice(live, func(i, j int) bool {
		if live[i].CreatedAt.Equal(live[j].CreatedAt) {
			return live[i].ID < live[j].ID
		}
		return live[i].CreatedAt.Before(live[j].CreatedAt)
	})

	out := []botdag.ChatBot{}
	for i := skip; i < len(live) && (limit <= 0 || len(out) < limit); i++ {
		c, err := copyBot(live[i])
		if err != nil {
			return nil, err
		}
		out = append(out, *c)
	}
	return out, nil
}

// copyBot deep-copies through JSON, the same shape the postgres store persists.
func copyBot(b *botdag.ChatBot) (*botdag.ChatBot, error) {
	raw, err := json.Marshal(b)
	if err != nil {
		return nil, fmt.Errorf("botdag: encode chatbot: %w", err)
	}
	var out botdag.ChatBot
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, fmt.Errorf("botdag: decode chatbot: %w", err)
	}
	return &out, nil
}
