package memory

import (
	"context"

	"github.com/google/uuid"
	"github.com/meikuraledutech/botdag"
)

// CreateUser stores a user. Usernames and emails are unique.
func (s *Store) CreateUser(ctx context.Context, user *botdag.User) (*botdag.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.users[user.Username]; ok {
		return nil, botdag.ErrUserExists
	}
	if _, ok := s.userByEmail(user.Email); ok {
		return nil, botdag.ErrUserExists
	}

	u := *user
	if u.ID == "" {
		u.ID = uuid.NewString()
	}
	u.CreatedAt = s.now().UTC()
	s.users[u.Username] = u
	return &u, nil
}

// GetUserByUsername returns nil, nil for unknown users.
func (s *Store) GetUserByUsername(ctx context.Context, username string) (*botdag.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	u, ok := s.users[username]
	if !ok {
		return nil, nil
	}
	return &u, nil
}

// GetUserByEmail returns nil, nil for unknown emails.
func (s *Store) GetUserByEmail(ctx context.Context, email string) (*botdag.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	u, ok := s.userByEmail(email)
	if !ok {
		return nil, nil
	}
	return &u, nil
}

func (s *Store) userByEmail(email string) (botdag.User, bool) {
	for _, u := range s.users {
		if u.Email == email {
			return u, true
		}
	}
	return botdag.User{}, false
}
