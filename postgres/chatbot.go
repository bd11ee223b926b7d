package postgres

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/meikuraledutech/botdag"
)

const chatbotColumns = `id, name, description, engine, dag, created_by, created_at, deleted_at`

// CreateChatBot inserts a bot. An empty ID gets a generated UUID.
// Returns the stored row.
func (s *PGStore) CreateChatBot(ctx context.Context, bot *botdag.ChatBot) (*botdag.ChatBot, error) {
	if bot.ID == "" {
		bot.ID = uuid.NewString()
	}
	dag, err := encodeDAG(bot.DAG)
	if err != nil {
		return nil, err
	}

	row := s.db.QueryRow(ctx,
		`INSERT INTO chatbots (id, name, description, engine, dag, created_by)
		 VALUES ($1, $2, $3, $4, $5, $6)
		 RETURNING `+chatbotColumns,
		bot.ID, bot.Name, bot.Description, bot.Engine, dag, bot.CreatedBy,
	)
	out, err := scanChatBot(row)
	if err != nil {
		return nil, fmt.Errorf("botdag: insert chatbot: %w", err)
	}
	return out, nil
}

// GetChatBot fetches a live bot by its ID.
// Returns nil, nil if not found or soft-deleted.
func (s *PGStore) GetChatBot(ctx context.Context, id string) (*botdag.ChatBot, error) {
	row := s.db.QueryRow(ctx,
		`SELECT `+chatbotColumns+` FROM chatbots WHERE id = $1 AND deleted_at IS NULL`, id)
	out, err := scanChatBot(row)
	if err != nil {
		if isNoRows(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("botdag: get chatbot: %w", err)
	}
	return out, nil
}

// UpdateChatBot sets the columns named by keys from bot.
// Returns ErrChatBotNotFound if the bot doesn't exist or was deleted.
func (s *PGStore) UpdateChatBot(ctx context.Context, bot *botdag.ChatBot, keys []string) (*botdag.ChatBot, error) {
	sets := make([]string, 0, len(keys))
	args := []any{bot.ID}
	for _, k := range keys {
		switch k {
		case botdag.KeyName:
			args = append(args, bot.Name)
		case botdag.KeyDescription:
			args = append(args, bot.Description)
		case botdag.KeyDAG:
			dag, err := encodeDAG(bot.DAG)
			if err != nil {
				return nil, err
			}
			args = append(args, dag)
		default:
			return nil, fmt.Errorf("botdag: invalid update key %q", k)
		}
		sets = append(sets, fmt.Sprintf("%s = $%d", k, len(args)))
	}
	if len(sets) == 0 {
		return nil, fmt.Errorf("botdag: no keys to update")
	}

	row := s.db.QueryRow(ctx,
		`UPDATE chatbots SET `+strings.Join(sets, ", ")+`
		 WHERE id = $1 AND deleted_at IS NULL
		 RETURNING `+chatbotColumns,
		args...,
	)
	out, err := scanChatBot(row)
	if err != nil {
		if isNoRows(err) {
			return nil, botdag.ErrChatBotNotFound
		}
		return nil, fmt.Errorf("botdag: update chatbot: %w", err)
	}
	return out, nil
}

// DeleteChatBot soft-deletes a bot.
// Returns ErrChatBotNotFound if there is no live bot with that ID.
func (s *PGStore) DeleteChatBot(ctx context.Context, id string) error {
	ct, err := s.db.Exec(ctx,
		`UPDATE chatbots SET deleted_at = NOW() WHERE id = $1 AND deleted_at IS NULL`, id)
	if err != nil {
		return fmt.Errorf("botdag: delete chatbot: %w", err)
	}
	if ct.RowsAffected() == 0 {
		return botdag.ErrChatBotNotFound
	}
	return nil
}

// ListChatBots returns live bots of createdBy, ordered by created_at.
// Returns an empty slice (not nil) if none found. A negative skip counts as zero.
func (s *PGStore) ListChatBots(ctx context.Context, createdBy string, skip, limit int) ([]botdag.ChatBot, error) {
	skip = max(skip, 0)
	if limit <= 0 {
		limit = 10
	}
	rows, err := s.db.Query(ctx,
		`SELECT `+chatbotColumns+` FROM chatbots
		 WHERE created_by = $1 AND deleted_at IS NULL
		 ORDER BY created_at, id
		 OFFSET $2 LIMIT $3`, createdBy, skip, limit)
	if err != nil {
		return nil, fmt.Errorf("botdag: list chatbots: %w", err)
	}
	defer rows.Close()

	bots := []botdag.ChatBot{}
	for rows.Next() {
		b, err := scanChatBot(rows)
		if err != nil {
			return nil, fmt.Errorf("botdag: scan chatbot: %w", err)
		}
		bots = append(bots, *b)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("botdag: rows chatbots: %w", err)
	}

	return bots, nil
}

func scanChatBot(row pgx.Row) (*botdag.ChatBot, error) {
	var (
		b   botdag.ChatBot
		dag []byte
	)
	if err := row.Scan(&b.ID, &b.Name, &b.Description, &b.Engine, &dag, &b.CreatedBy, &b.CreatedAt, &b.DeletedAt); err != nil {
		return nil, err
	}
	if len(dag) > 0 && string(dag) != "null" {
		b.DAG = &botdag.DAG{}
		if err := json.Unmarshal(dag, b.DAG); err != nil {
			return nil, fmt.Errorf("decode dag: %w", err)
		}
	}
	return &b, nil
}

func encodeDAG(d *botdag.DAG) ([]byte, error) {
	if d == nil {
		return nil, nil
	}
	raw, err := json.Marshal(d)
	if err != nil {
		return nil, fmt.Errorf("botdag: encode dag: %w", err)
	}
	return raw, nil
}
