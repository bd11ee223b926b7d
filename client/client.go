// Package client talks to the chatbot backend REST API.
// Every call carries its own token; the client holds no credentials.
package client

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	fiberclient "github.com/gofiber/fiber/v3/client"
	"github.com/meikuraledutech/botdag"
	"github.com/rs/zerolog"
)

// TokenHeader carries the caller's JWT on every request.
const TokenHeader = "token"

// Config holds connection settings.
type Config struct {
	BaseURL   string
	Timeout   time.Duration
	UserAgent string
}

// Client is a thin wrapper over the backend endpoints.
type Client struct {
	http *fiberclient.Client
	log  zerolog.Logger
}

// Option configures a Client.
type Option func(*Client)

// WithLogger sets the logger used for request tracing.
func WithLogger(l zerolog.Logger) Option {
	return func(c *Client) { c.log = l }
}

// New creates a client for the API rooted at cfg.BaseURL, e.g. http://host/api/v1.
func New(cfg Config, opts ...Option) (*Client, error) {
	if cfg.BaseURL == "" {
		return nil, errors.New("client: base url is required")
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = 30 * time.Second
	}
	if cfg.UserAgent == "" {
		cfg.UserAgent = "botdag"
	}

	hc := fiberclient.New().
		SetBaseURL(strings.TrimRight(cfg.BaseURL, "/")).
		SetTimeout(cfg.Timeout).
		SetUserAgent(cfg.UserAgent)

	c := &Client{http: hc, log: zerolog.Nop()}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

type call struct {
	method string
	path   string
	token  string
	public bool // sent without a token
	body   any
	query  map[string]string
	out    any
}

func (c *Client) do(ctx context.Context, cl call) error {
	if cl.token == "" && !cl.public {
		return ErrMissingToken
	}

	req := c.http.R().SetContext(ctx)
	if cl.token != "" {
		req.SetHeader(TokenHeader, cl.token)
	}
	if cl.body != nil {
		req.SetJSON(cl.body)
	}
	for k, v := range cl.query {
		req.SetParam(k, v)
	}

	start := time.Now()
	var (
		resp *fiberclient.Response
		err  error
	)
	switch cl.method {
	case http.MethodGet:
		resp, err = req.Get(cl.path)
	case http.MethodPost:
		resp, err = req.Post(cl.path)
	case http.MethodPut:
		resp, err = req.Put(cl.path)
	case http.MethodDelete:
		resp, err = req.Delete(cl.path)
	default:
		return fmt.Errorf("client: unsupported method %s", cl.method)
	}
	if err != nil {
		return fmt.Errorf("client: %s %s: %w", cl.method, cl.path, err)
	}
	defer resp.Close()

	status := resp.StatusCode()
	c.log.Debug().
		Str("method", cl.method).
		Str("path", cl.path).
		Int("status", status).
		Dur("took", time.Since(start)).
		Msg("api call")

	body := resp.Body()
	if status < 200 || status >= 300 {
		return newAPIError(status, append([]byte(nil), body...))
	}
	if cl.out == nil || len(body) == 0 {
		return nil
	}
	if err := json.Unmarshal(body, cl.out); err != nil {
		return fmt.Errorf("client: decode %s %s: %w", cl.method, cl.path, err)
	}
	return nil
}

type credentials struct {
	Username string `json:"username"`
	Email    string `json:"email,omitempty"`
	Password string `json:"password"`
}

type tokenResponse struct {
	Msg   string `json:"msg"`
	Token string `json:"token"`
}

// Login exchanges a username and password for an API token.
func (c *Client) Login(ctx context.Context, username, password string) (string, error) {
	return c.authenticate(ctx, "/login", credentials{Username: username, Password: password})
}

// Signup registers a new account and returns its first token.
func (c *Client) Signup(ctx context.Context, username, email, password string) (string, error) {
	return c.authenticate(ctx, "/signup", credentials{Username: username, Email: email, Password: password})
}

func (c *Client) authenticate(ctx context.Context, path string, body credentials) (string, error) {
	var out tokenResponse
	if err := c.do(ctx, call{method: http.MethodPost, path: path, public: true, body: body, out: &out}); err != nil {
		return "", err
	}
	if out.Token == "" {
		return "", fmt.Errorf("%w: %s", ErrLoginFailed, out.Msg)
	}
	return out.Token, nil
}

// CreateRequest is the body of a chatbot creation.
type CreateRequest struct {
	Name        string      `json:"name"`
	Description string      `json:"description,omitempty"`
	Engine      string      `json:"engine"`
	DAG         *botdag.DAG `json:"dag,omitempty"`
}

// UpdateRequest is the body of a chatbot edit. Only fields named in UpdateKeys change.
type UpdateRequest struct {
	Name        string      `json:"name,omitempty"`
	Description string      `json:"description,omitempty"`
	DAG         *botdag.DAG `json:"dag,omitempty"`
	UpdateKeys  []string    `json:"update_keys"`
}

// CreateChatBot stores a new bot and returns it with its id.
func (c *Client) CreateChatBot(ctx context.Context, token string, req CreateRequest) (*botdag.ChatBot, error) {
	var bot botdag.ChatBot
	if err := c.do(ctx, call{method: http.MethodPost, path: "/chatbot/", token: token, body: req, out: &bot}); err != nil {
		return nil, err
	}
	return &bot, nil
}

// UpdateChatBot edits an existing bot.
func (c *Client) UpdateChatBot(ctx context.Context, token, id string, req UpdateRequest) (*botdag.ChatBot, error) {
	var bot botdag.ChatBot
	if err := c.do(ctx, call{method: http.MethodPut, path: chatbotPath(id), token: token, body: req, out: &bot}); err != nil {
		return nil, err
	}
	return &bot, nil
}

// GetChatBot fetches one bot.
func (c *Client) GetChatBot(ctx context.Context, token, id string) (*botdag.ChatBot, error) {
	var bot botdag.ChatBot
	if err := c.do(ctx, call{method: http.MethodGet, path: chatbotPath(id), token: token, out: &bot}); err != nil {
		return nil, err
	}
	return &bot, nil
}

// DeleteChatBot removes a bot.
func (c *Client) DeleteChatBot(ctx context.Context, token, id string) error {
	return c.do(ctx, call{method: http.MethodDelete, path: chatbotPath(id), token: token})
}

// ListChatBots pages through the caller's bots.
func (c *Client) ListChatBots(ctx context.Context, token string, skip, limit int) ([]botdag.ChatBot, error) {
	var out struct {
		ChatBots []botdag.ChatBot `json:"chatbots"`
	}
	err := c.do(ctx, call{
		method: http.MethodGet,
		path:   "/chatbot/",
		token:  token,
		query:  map[string]string{"skip": strconv.Itoa(skip), "limit": strconv.Itoa(limit)},
		out:    &out,
	})
	if err != nil {
		return nil, err
	}
	return out.ChatBots, nil
}

// SaveRequest is an editor graph to be stored as a bot.
type SaveRequest struct {
	// ID of an existing bot; empty creates a new one.
	ID          string
	Name        string
	Description string
	Engine      string
	Nodes       []botdag.Node
	Edges       []botdag.Edge
	Options     []botdag.TranslateOption
}

// SaveGraph translates the editor graph and creates or updates the bot.
func (c *Client) SaveGraph(ctx context.Context, token string, req SaveRequest) (*botdag.ChatBot, error) {
	d, err := botdag.Translate(req.Nodes, req.Edges, req.Options...)
	if err != nil {
		return nil, err
	}

	if req.ID == "" {
		engine := req.Engine
		if engine == "" {
			engine = botdag.EngineFury
		}
		return c.CreateChatBot(ctx, token, CreateRequest{
			Name:        req.Name,
			Description: req.Description,
			Engine:      engine,
			DAG:         d,
		})
	}

	keys := []string{botdag.KeyDAG}
	if req.Name != "" {
		keys = append(keys, botdag.KeyName)
	}
	if req.Description != "" {
		keys = append(keys, botdag.KeyDescription)
	}
	return c.UpdateChatBot(ctx, token, req.ID, UpdateRequest{
		Name:        req.Name,
		Description: req.Description,
		DAG:         d,
		UpdateKeys:  keys,
	})
}

// ComponentTypes lists the catalog sections.
type ComponentTypes struct {
	Components []string `json:"components"`
	Actions    []string `json:"actions"`
}

// ListComponentTypes returns the catalog sections.
func (c *Client) ListComponentTypes(ctx context.Context, token string) (*ComponentTypes, error) {
	var out ComponentTypes
	if err := c.do(ctx, call{method: http.MethodGet, path: "/fury/", token: token, out: &out}); err != nil {
		return nil, err
	}
	return &out, nil
}

// ListComponents returns the components of one type keyed by id.
func (c *Client) ListComponents(ctx context.Context, token, componentType string) (map[string]botdag.Component, error) {
	out := map[string]botdag.Component{}
	path := "/fury/components/" + url.PathEscape(componentType)
	if err := c.do(ctx, call{method: http.MethodGet, path: path, token: token, out: &out}); err != nil {
		return nil, err
	}
	return out, nil
}

// GetComponent returns one catalog component.
func (c *Client) GetComponent(ctx context.Context, token, componentType, id string) (*botdag.Component, error) {
	var out botdag.Component
	path := "/fury/components/" + url.PathEscape(componentType) + "/" + url.PathEscape(id)
	if err := c.do(ctx, call{method: http.MethodGet, path: path, token: token, out: &out}); err != nil {
		return nil, err
	}
	return &out, nil
}

func chatbotPath(id string) string {
	return "/chatbot/" + url.PathEscape(id)
}
