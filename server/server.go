// Package server is a reference chatbot backend: it stores bot DAGs and serves
// the component catalog over the REST surface the client package speaks.
package server

import (
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v3"
	"github.com/meikuraledutech/botdag"
	"github.com/meikuraledutech/botdag/catalog"
	"github.com/rs/zerolog"
)

// Server wires a Store and a Catalog to HTTP handlers.
type Server struct {
	store     botdag.Store
	catalog   *catalog.Catalog
	validator *validator.Validate
	secret    []byte
	tokenTTL  time.Duration
	log       zerolog.Logger
}

// DefaultTokenTTL is how long tokens issued by login and signup stay valid.
const DefaultTokenTTL = 24 * time.Hour

// Option configures a Server.
type Option func(*Server)

// WithCatalog sets the component catalog; the default is empty.
func WithCatalog(c *catalog.Catalog) Option {
	return func(s *Server) { s.catalog = c }
}

// WithLogger sets the request and error logger.
func WithLogger(l zerolog.Logger) Option {
	return func(s *Server) { s.log = l }
}

// WithTokenTTL sets the lifetime of tokens issued by login and signup.
func WithTokenTTL(ttl time.Duration) Option {
	return func(s *Server) { s.tokenTTL = ttl }
}

// New creates a Server. secret verifies the HS256 tokens callers send.
func New(store botdag.Store, secret []byte, opts ...Option) *Server {
	s := &Server{
		store:     store,
		catalog:   catalog.New(),
		validator: validator.New(validator.WithRequiredStructEnabled()),
		secret:    secret,
		tokenTTL:  DefaultTokenTTL,
		log:       zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// App builds the fiber application with every route mounted under /api/v1.
func (s *Server) App() *fiber.App {
	app := fiber.New()
	app.Use(s.logRequests)

	v1 := app.Group("/api/v1")

	// ── Auth ──────────────────────────────────────────────────────────
	v1.Post("/login", s.login)
	v1.Post("/signup", s.signup)

	// Everything registered on api needs a token.
	api := v1.Group("", s.requireUser)

	// ── Schema ────────────────────────────────────────────────────────
	api.Post("/schema", s.createSchema)
	api.Delete("/schema", s.dropSchema)

	// ── ChatBots ──────────────────────────────────────────────────────
	api.Post("/chatbot", s.createChatBot)
	api.Get("/chatbot", s.listChatBots)
	api.Get("/chatbot/:id", s.getChatBot)
	api.Put("/chatbot/:id", s.updateChatBot)
	api.Delete("/chatbot/:id", s.deleteChatBot)

	// ── Components ────────────────────────────────────────────────────
	api.Get("/fury", s.listComponentTypes)
	api.Get("/fury/components/:type", s.listComponents)
	api.Get("/fury/components/:type/:id", s.getComponent)

	return app
}

func (s *Server) logRequests(c fiber.Ctx) error {
	start := time.Now()
	err := c.Next()
	s.log.Info().
		Str("method", c.Method()).
		Str("path", c.Path()).
		Int("status", c.Response().StatusCode()).
		Dur("took", time.Since(start)).
		Msg("request")
	return err
}

func (s *Server) createSchema(c fiber.Ctx) error {
	if err := s.store.CreateSchema(c.Context()); err != nil {
		return s.internalError(c, err)
	}
	return c.JSON(fiber.Map{"message": "schema created"})
}

func (s *Server) dropSchema(c fiber.Ctx) error {
	if err := s.store.DropSchema(c.Context()); err != nil {
		return s.internalError(c, err)
	}
	return c.JSON(fiber.Map{"message": "schema dropped"})
}
