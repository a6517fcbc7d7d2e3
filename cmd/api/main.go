package main

import (
	"fmt"
	"os"

	"github.com/urfave/cli/v2"
)

func main() {
	app := &cli.App{
		Name:  "tableside-api",
		Usage: "restaurant order lifecycle and billing service",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "storage",
				Usage:   "repository backend: postgres or memory (overrides STORAGE_DRIVER)",
				EnvVars: []string{"STORAGE_DRIVER"},
			},
		},
		Commands: []*cli.Command{
			{
				Name:   "serve",
				Usage:  "run the HTTP API, the payment event consumer and the payment sweeper",
				Flags: []cli.Flag{
					&cli.BoolFlag{Name: "migrate", Usage: "migrate and seed the database before serving", EnvVars: []string{"AUTO_MIGRATE"}},
				},
				Action: serve,
			},
			{
				Name:   "migrate",
				Usage:  "create tables and the bill number sequence, then seed the configured outlet",
				Action: migrate,
			},
			{
				Name:  "reconcile",
				Usage: "settle online orders whose payment is still pending",
				Flags: []cli.Flag{
					&cli.DurationFlag{Name: "older-than", Usage: "only orders placed before now minus this", Value: 0},
					&cli.IntFlag{Name: "limit", Usage: "maximum orders to reconcile", Value: 500},
				},
				Action: reconcile,
			},
		},
		DefaultCommand: "serve",
	}

	if err := app.Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
