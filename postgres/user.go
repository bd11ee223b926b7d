package postgres

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/meikuraledutech/botdag"
)

const userColumns = `id, username, email, password, created_at`

// CreateUser inserts a user. An empty ID gets a generated UUID.
// Returns ErrUserExists if the username or email is taken.
func (s *PGStore) CreateUser(ctx context.Context, user *botdag.User) (*botdag.User, error) {
	id := user.ID
	if id == "" {
		id = uuid.NewString()
	}
	row := s.db.QueryRow(ctx,
		`INSERT INTO users (id, username, email, password)
		 VALUES ($1, $2, $3, $4)
		 RETURNING `+userColumns,
		id, user.Username, user.Email, user.Password,
	)
	out, err := scanUser(row)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, botdag.ErrUserExists
		}
		return nil, fmt.Errorf("botdag: insert user: %w", err)
	}
	return out, nil
}

// GetUserByUsername returns nil, nil if not found.
func (s *PGStore) GetUserByUsername(ctx context.Context, username string) (*botdag.User, error) {
	return s.getUser(ctx, "username", username)
}

// GetUserByEmail returns nil, nil if not found.
func (s *PGStore) GetUserByEmail(ctx context.Context, email string) (*botdag.User, error) {
	return s.getUser(ctx, "email", email)
}

// getUser looks a user up by column, which must be a fixed column name.
func (s *PGStore) getUser(ctx context.Context, column, value string) (*botdag.User, error) {
	row := s.db.QueryRow(ctx,
		`SELECT `+userColumns+` FROM users WHERE `+column+` = $1`, value)
	out, err := scanUser(row)
	if err != nil {
		if isNoRows(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("botdag: get user: %w", err)
	}
	return out, nil
}

func scanUser(row pgx.Row) (*botdag.User, error) {
	var u botdag.User
	if err := row.Scan(&u.ID, &u.Username, &u.Email, &u.Password, &u.CreatedAt); err != nil {
		return nil, err
	}
	return &u, nil
}
