package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/meikuraledutech/botdag"
	"github.com/meikuraledutech/botdag/config"
	cli "github.com/urfave/cli/v3"
)

func main() {
	cmd := &cli.Command{
		Name:                  "botdag",
		Usage:                 "Translate bot graphs and manage chatbots on a ChainFury backend",
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
		},
		Commands: []*cli.Command{
			NewTranslateCommand(),
			NewReloadCommand(),
			NewParamCommand(),
			NewBotCommand(),
			NewComponentsCommand(),
			NewLoginCommand(),
			NewSignupCommand(),
			NewTokenCommand(),
		},
	}

	if err := cmd.Run(context.Background(), os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// graph is the editor state as exported by the visual builder.
type graph struct {
	Nodes []botdag.Node `json:"nodes"`
	Edges []botdag.Edge `json:"edges"`
}

func loadConfig(command *cli.Command) (*config.Config, error) {
	root := command.Root()
	return config.Load(
		config.WithConfigFile(root.String("config")),
		config.WithEnvFile(root.String("env-file")),
	)
}

func inputFlag() cli.Flag {
	return &cli.StringFlag{
		Name:    "in",
		Aliases: []string{"i"},
		Usage:   "Input file, - for stdin",
		Value:   "-",
	}
}

func outputFlag() cli.Flag {
	return &cli.StringFlag{
		Name:    "out",
		Aliases: []string{"o"},
		Usage:   "Output file, - for stdout",
		Value:   "-",
	}
}

func readJSON(path string, v any) error {
	var r io.Reader = os.Stdin
	if path != "-" && path != "" {
		f, err := os.Open(path)
		if err != nil {
			return err
		}
		defer f.Close()
		r = f
	}
	if err := json.NewDecoder(r).Decode(v); err != nil {
		return fmt.Errorf("decode %s: %w", path, err)
	}
	return nil
}

func writeJSON(path string, v any) error {
	out, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	out = append(out, '\n')
	if path == "-" || path == "" {
		_, err = os.Stdout.Write(out)
		return err
	}
	return os.WriteFile(path, out, 0o644)
}
