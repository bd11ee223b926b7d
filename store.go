package botdag

import (
	"context"
	"errors"
)

var (
	ErrCycleDetected   = errors.New("botdag: cycle detected, graph is not acyclic")
	ErrChatBotNotFound = errors.New("botdag: chatbot not found")
	ErrDuplicateNode   = errors.New("botdag: duplicate node id")
	ErrMissingMainIn   = errors.New("botdag: main_in is not wired")
	ErrMissingMainOut  = errors.New("botdag: main_out is not wired")
	ErrUnknownAnchor   = errors.New("botdag: anchor references an unknown node or handle")
	ErrDanglingEdge    = errors.New("botdag: edge references an unknown node")
	ErrUserExists      = errors.New("botdag: username or email already registered")
)

// Store defines the contract for persisting and retrieving chatbots.
type Store interface {
	// Schema
	CreateSchema(ctx context.Context) error
	DropSchema(ctx context.Context) error

	// ChatBots
	CreateChatBot(ctx context.Context, bot *ChatBot) (*ChatBot, error)
	GetChatBot(ctx context.Context, id string) (*ChatBot, error)
	UpdateChatBot(ctx context.Context, bot *ChatBot, keys []string) (*ChatBot, error)
	DeleteChatBot(ctx context.Context, id string) error
	ListChatBots(ctx context.Context, createdBy string, skip, limit int) ([]ChatBot, error)

	// Users
	CreateUser(ctx context.Context, user *User) (*User, error)
	GetUserByUsername(ctx context.Context, username string) (*User, error)
	GetUserByEmail(ctx context.Context, email string) (*User, error)
}

// Keys accepted by UpdateChatBot.
const (
	KeyName        = "name"
	KeyDescription = "description"
	KeyDAG         = "dag"
)

// ValidUpdateKey reports whether key names an updatable chatbot field.
func ValidUpdateKey(key string) bool {
	return key == KeyName || key == KeyDescription || key == KeyDAG
}
