package main

import (
	"context"
	"fmt"

	"github.com/meikuraledutech/botdag"
	"github.com/meikuraledutech/botdag/form"
	cli "github.com/urfave/cli/v3"
)

func NewTranslateCommand() *cli.Command {
	return &cli.Command{
		Name:  "translate",
		Usage: "Translate an editor graph into the backend DAG payload",
		Flags: []cli.Flag{
			inputFlag(),
			outputFlag(),
			&cli.BoolFlag{
				Name:  "first-wins",
				Usage: "Keep the first node of a duplicated id instead of failing",
			},
			&cli.BoolFlag{
				Name:  "validate",
				Usage: "Also check anchors, edges and acyclicity",
			},
		},
		Action: func(ctx context.Context, command *cli.Command) error {
			var g graph
			if err := readJSON(command.String("in"), &g); err != nil {
				return err
			}

			var opts []botdag.TranslateOption
			if command.Bool("first-wins") {
				opts = append(opts, botdag.WithFirstWins())
			}
			d, err := botdag.Translate(g.Nodes, g.Edges, opts...)
			if err != nil {
				return err
			}
			if command.Bool("validate") {
				if err := botdag.ValidateDAG(d); err != nil {
					return err
				}
			}
			return writeJSON(command.String("out"), d)
		},
	}
}

func NewReloadCommand() *cli.Command {
	return &cli.Command{
		Name:  "reload",
		Usage: "Turn a stored DAG payload back into an editor graph",
		Flags: []cli.Flag{inputFlag(), outputFlag()},
		Action: func(ctx context.Context, command *cli.Command) error {
			var d botdag.DAG
			if err := readJSON(command.String("in"), &d); err != nil {
				return err
			}
			nodes, edges := botdag.Reload(&d)
			return writeJSON(command.String("out"), graph{Nodes: nodes, Edges: edges})
		},
	}
}

func NewParamCommand() *cli.Command {
	return &cli.Command{
		Name:  "param",
		Usage: "Inspect and edit node parameters in an editor graph",
		Commands: []*cli.Command{
			{
				Name:  "list",
				Usage: "Show the form controls of a node",
				Flags: []cli.Flag{inputFlag(), nodeFlag()},
				Action: func(ctx context.Context, command *cli.Command) error {
					var g graph
					if err := readJSON(command.String("in"), &g); err != nil {
						return err
					}
					i, err := findNode(g, command.String("node"))
					if err != nil {
						return err
					}
					return writeJSON("-", form.Controls(g.Nodes[i]))
				},
			},
			{
				Name:      "set",
				Usage:     "Set a parameter value on a node",
				ArgsUsage: "<name> <value>",
				Flags:     []cli.Flag{inputFlag(), outputFlag(), nodeFlag()},
				Action: func(ctx context.Context, command *cli.Command) error {
					if command.NArg() != 2 {
						return fmt.Errorf("param set: expected <name> <value>, got %d args", command.NArg())
					}
					var g graph
					if err := readJSON(command.String("in"), &g); err != nil {
						return err
					}
					i, err := findNode(g, command.String("node"))
					if err != nil {
						return err
					}
					if err := form.Set(&g.Nodes[i], command.Args().Get(0), command.Args().Get(1)); err != nil {
						return err
					}
					return writeJSON(command.String("out"), g)
				},
			},
		},
	}
}

func nodeFlag() cli.Flag {
	return &cli.StringFlag{Name: "node", Aliases: []string{"n"}, Usage: "Node id", Required: true}
}

func findNode(g graph, id string) (int, error) {
	for i, n := range g.Nodes {
		if n.ID == id {
			return i, nil
		}
	}
	return -1, fmt.Errorf("node %q not found", id)
}
