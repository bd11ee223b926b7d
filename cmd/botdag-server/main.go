package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v3"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/meikuraledutech/botdag"
	"github.com/meikuraledutech/botdag/catalog"
	"github.com/meikuraledutech/botdag/config"
	"github.com/meikuraledutech/botdag/logger"
	"github.com/meikuraledutech/botdag/memory"
	"github.com/meikuraledutech/botdag/postgres"
	"github.com/meikuraledutech/botdag/server"
	"github.com/rs/zerolog"
	cli "github.com/urfave/cli/v3"
)

const shutdownTimeout = 10 * time.Second

func main() {
	cmd := &cli.Command{
		Name:                  "botdag-server",
		Usage:                 "Serve chatbot DAGs and the component catalog",
		EnableShellCompletion: true,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "Path to a YAML config file",
				Sources: cli.EnvVars("BOTDAG_CONFIG"),
			},
			&cli.StringFlag{
				Name:  "env-file",
				Usage: "Path to a .env file",
				Value: ".env",
			},
			&cli.StringFlag{
				Name:  "addr",
				Usage: "Listen address, overrides server.addr",
			},
		},
		Commands: []*cli.Command{
			{
				Name:   "migrate",
				Usage:  "Create the chatbot tables and exit",
				Action: migrate,
			},
		},
		Action: serve,
	}

	if err := cmd.Run(context.Background(), os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func loadConfig(command *cli.Command) (*config.Config, error) {
	cfg, err := config.Load(
		config.WithConfigFile(command.String("config")),
		config.WithEnvFile(command.String("env-file")),
	)
	if err != nil {
		return nil, err
	}
	if addr := command.String("addr"); addr != "" {
		cfg.Server.Addr = addr
	}
	return cfg, nil
}

// openStore returns the postgres store when database.url is set, the memory store otherwise.
func openStore(ctx context.Context, cfg *config.Config, log zerolog.Logger) (botdag.Store, func(), error) {
	if cfg.Database.URL == "" {
		log.Warn().Msg("database.url not set, chatbots are kept in memory")
		return memory.New(), func() {}, nil
	}
	pool, err := pgxpool.New(ctx, cfg.Database.URL)
	if err != nil {
		return nil, nil, fmt.Errorf("connect: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, nil, fmt.Errorf("ping: %w", err)
	}
	return postgres.New(pool), pool.Close, nil
}

func migrate(ctx context.Context, command *cli.Command) error {
	cfg, err := loadConfig(command.Root())
	if err != nil {
		return err
	}
	log := logger.WithComponent(logger.New(cfg.Log), "migrate")

	store, closeStore, err := openStore(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer closeStore()

	if err := store.CreateSchema(ctx); err != nil {
		return err
	}
	log.Info().Msg("schema created")
	return nil
}

func serve(ctx context.Context, command *cli.Command) error {
	cfg, err := loadConfig(command)
	if err != nil {
		return err
	}
	if err := cfg.ValidateServer(); err != nil {
		return err
	}
	log := logger.WithComponent(logger.New(cfg.Log), "server")

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	store, closeStore, err := openStore(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer closeStore()
	if err := store.CreateSchema(ctx); err != nil {
		return err
	}

	cat := catalog.New()
	if cfg.Catalog.File != "" {
		if cat, err = catalog.Load(cfg.Catalog.File); err != nil {
			return err
		}
		log.Info().Strs("types", cat.Types()).Msg("catalog loaded")
	}

	app := server.New(store, []byte(cfg.Auth.JWTSecret),
		server.WithCatalog(cat),
		server.WithLogger(log),
		server.WithTokenTTL(cfg.Auth.TokenTTL),
	).App()

	errc := make(chan error, 1)
	go func() {
		log.Info().Str("addr", cfg.Server.Addr).Msg("listening")
		errc <- app.Listen(cfg.Server.Addr, fiber.ListenConfig{DisableStartupMessage: true})
	}()

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
	}

	log.Info().Msg("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := app.ShutdownWithContext(shutdownCtx); err != nil && !errors.Is(err, context.DeadlineExceeded) {
		return err
	}
	return nil
}
