package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/meikuraledutech/botdag"
	"github.com/meikuraledutech/botdag/client"
	"github.com/meikuraledutech/botdag/config"
	"github.com/meikuraledutech/botdag/logger"
	"github.com/meikuraledutech/botdag/server"
	cli "github.com/urfave/cli/v3"
)

func tokenFlag() cli.Flag {
	return &cli.StringFlag{
		Name:  "token",
		Usage: "API token, overrides api.token",
	}
}

// newClient builds a client for api.url without requiring a token.
func newClient(command *cli.Command) (*client.Client, *config.Config, error) {
	cfg, err := loadConfig(command)
	if err != nil {
		return nil, nil, err
	}
	log := logger.WithComponent(logger.New(cfg.Log), "client")
	c, err := client.New(client.Config{
		BaseURL:   cfg.API.URL,
		Timeout:   cfg.API.Timeout,
		UserAgent: "botdag-cli",
	}, client.WithLogger(log))
	if err != nil {
		return nil, nil, err
	}
	return c, cfg, nil
}

// apiClient builds a client and resolves the token from flags or config.
func apiClient(command *cli.Command) (*client.Client, string, error) {
	c, cfg, err := newClient(command)
	if err != nil {
		return nil, "", err
	}
	if tok := command.String("token"); tok != "" {
		cfg.API.Token = tok
	}
	if err := cfg.ValidateClient(); err != nil {
		return nil, "", err
	}
	return c, cfg.API.Token, nil
}

func NewBotCommand() *cli.Command {
	idArg := func(command *cli.Command) (string, error) {
		if command.NArg() != 1 {
			return "", fmt.Errorf("%s: expected <id>", command.Name)
		}
		return command.Args().First(), nil
	}

	return &cli.Command{
		Name:  "bot",
		Usage: "Manage chatbots",
		Commands: []*cli.Command{
			{
				Name:    "save",
				Aliases: []string{"create"},
				Usage:   "Translate an editor graph and create or update a bot",
				Flags: []cli.Flag{
					inputFlag(),
					tokenFlag(),
					&cli.StringFlag{Name: "id", Usage: "Existing bot id; empty creates a new bot"},
					&cli.StringFlag{Name: "name", Usage: "Bot name"},
					&cli.StringFlag{Name: "description", Usage: "Bot description"},
					&cli.StringFlag{Name: "engine", Usage: "Engine name", Value: botdag.EngineFury},
					&cli.BoolFlag{Name: "first-wins", Usage: "Keep the first node of a duplicated id"},
				},
				Action: func(ctx context.Context, command *cli.Command) error {
					c, token, err := apiClient(command)
					if err != nil {
						return err
					}
					var g graph
					if err := readJSON(command.String("in"), &g); err != nil {
						return err
					}
					req := client.SaveRequest{
						ID:          command.String("id"),
						Name:        command.String("name"),
						Description: command.String("description"),
						Engine:      command.String("engine"),
						Nodes:       g.Nodes,
						Edges:       g.Edges,
					}
					if command.Bool("first-wins") {
						req.Options = append(req.Options, botdag.WithFirstWins())
					}
					bot, err := c.SaveGraph(ctx, token, req)
					if err != nil {
						return err
					}
					return writeJSON("-", bot)
				},
			},
			{
				Name:      "get",
				Usage:     "Show a bot",
				ArgsUsage: "<id>",
				Flags:     []cli.Flag{tokenFlag()},
				Action: func(ctx context.Context, command *cli.Command) error {
					id, err := idArg(command)
					if err != nil {
						return err
					}
					c, token, err := apiClient(command)
					if err != nil {
						return err
					}
					bot, err := c.GetChatBot(ctx, token, id)
					if err != nil {
						return err
					}
					return writeJSON("-", bot)
				},
			},
			{
				Name:  "list",
				Usage: "List your bots",
				Flags: []cli.Flag{
					tokenFlag(),
					&cli.IntFlag{Name: "skip", Value: 0},
					&cli.IntFlag{Name: "limit", Value: 10},
				},
				Action: func(ctx context.Context, command *cli.Command) error {
					c, token, err := apiClient(command)
					if err != nil {
						return err
					}
					bots, err := c.ListChatBots(ctx, token, command.Int("skip"), command.Int("limit"))
					if err != nil {
						return err
					}
					return writeJSON("-", bots)
				},
			},
			{
				Name:      "update",
				Usage:     "Rename or redescribe a bot without touching its graph",
				ArgsUsage: "<id>",
				Flags: []cli.Flag{
					tokenFlag(),
					&cli.StringFlag{Name: "name"},
					&cli.StringFlag{Name: "description"},
				},
				Action: func(ctx context.Context, command *cli.Command) error {
					id, err := idArg(command)
					if err != nil {
						return err
					}
					req := client.UpdateRequest{
						Name:        command.String("name"),
						Description: command.String("description"),
					}
					if command.IsSet("name") {
						req.UpdateKeys = append(req.UpdateKeys, botdag.KeyName)
					}
					if command.IsSet("description") {
						req.UpdateKeys = append(req.UpdateKeys, botdag.KeyDescription)
					}
					if len(req.UpdateKeys) == 0 {
						return fmt.Errorf("update: nothing to change, pass --name or --description")
					}
					c, token, err := apiClient(command)
					if err != nil {
						return err
					}
					bot, err := c.UpdateChatBot(ctx, token, id, req)
					if err != nil {
						return err
					}
					return writeJSON("-", bot)
				},
			},
			{
				Name:      "delete",
				Usage:     "Delete a bot",
				ArgsUsage: "<id>",
				Flags:     []cli.Flag{tokenFlag()},
				Action: func(ctx context.Context, command *cli.Command) error {
					id, err := idArg(command)
					if err != nil {
						return err
					}
					c, token, err := apiClient(command)
					if err != nil {
						return err
					}
					if err := c.DeleteChatBot(ctx, token, id); err != nil {
						return err
					}
					fmt.Fprintf(os.Stderr, "deleted %s\n", id)
					return nil
				},
			},
		},
	}
}

func NewComponentsCommand() *cli.Command {
	return &cli.Command{
		Name:      "components",
		Usage:     "Browse the backend component catalog",
		ArgsUsage: "[type [id]]",
		Flags:     []cli.Flag{tokenFlag()},
		Action: func(ctx context.Context, command *cli.Command) error {
			c, token, err := apiClient(command)
			if err != nil {
				return err
			}
			args := command.Args()
			switch args.Len() {
			case 0:
				types, err := c.ListComponentTypes(ctx, token)
				if err != nil {
					return err
				}
				return writeJSON("-", types)
			case 1:
				comps, err := c.ListComponents(ctx, token, args.Get(0))
				if err != nil {
					return err
				}
				return writeJSON("-", comps)
			default:
				comp, err := c.GetComponent(ctx, token, args.Get(0), args.Get(1))
				if err != nil {
					return err
				}
				return writeJSON("-", comp)
			}
		},
	}
}

func NewLoginCommand() *cli.Command {
	return &cli.Command{
		Name:  "login",
		Usage: "Log in and print an API token for CF_TOKEN",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "user", Aliases: []string{"u"}, Required: true},
			&cli.StringFlag{
				Name:     "password",
				Aliases:  []string{"p"},
				Required: true,
				Sources:  cli.EnvVars("BOTDAG_PASSWORD"),
			},
		},
		Action: func(ctx context.Context, command *cli.Command) error {
			c, _, err := newClient(command)
			if err != nil {
				return err
			}
			tok, err := c.Login(ctx, command.String("user"), command.String("password"))
			if err != nil {
				return err
			}
			fmt.Println(tok)
			return nil
		},
	}
}

func NewSignupCommand() *cli.Command {
	return &cli.Command{
		Name:  "signup",
		Usage: "Register an account and print its API token",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "user", Aliases: []string{"u"}, Required: true},
			&cli.StringFlag{Name: "email", Aliases: []string{"e"}, Required: true},
			&cli.StringFlag{
				Name:     "password",
				Aliases:  []string{"p"},
				Required: true,
				Sources:  cli.EnvVars("BOTDAG_PASSWORD"),
			},
		},
		Action: func(ctx context.Context, command *cli.Command) error {
			c, _, err := newClient(command)
			if err != nil {
				return err
			}
			tok, err := c.Signup(ctx, command.String("user"), command.String("email"), command.String("password"))
			if err != nil {
				return err
			}
			fmt.Println(tok)
			return nil
		},
	}
}

func NewTokenCommand() *cli.Command {
	return &cli.Command{
		Name:  "token",
		Usage: "Mint a token for a local backend sharing auth.jwt_secret",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "user", Aliases: []string{"u"}, Required: true},
			&cli.DurationFlag{Name: "ttl", Value: 24 * time.Hour},
		},
		Action: func(ctx context.Context, command *cli.Command) error {
			cfg, err := loadConfig(command)
			if err != nil {
				return err
			}
			if cfg.Auth.JWTSecret == "" {
				return config.ErrNoJWTSecret
			}
			tok, err := server.IssueToken([]byte(cfg.Auth.JWTSecret), command.String("user"), command.Duration("ttl"))
			if err != nil {
				return err
			}
			fmt.Println(tok)
			return nil
		},
	}
}
