package main

import (
	"context"
	"log"
	"os"

	"github.com/urfave/cli/v3"
)

var Version = "dev"

func main() {
	cmd := &cli.Command{
		Name:    "fitness-marketplace",
		Usage:   "Fitness marketplace settlement API",
		Version: Version,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "env-file",
				Value: ".env",
				Usage: "dotenv file loaded before the process environment",
			},
		},
		Commands: []*cli.Command{
			{
				Name:   "serve",
				Usage:  "run the HTTP API, websocket hub and job scheduler",
				Action: serve,
			},
			{
				Name:   "migrate",
				Usage:  "migrate the database and seed default system configurations",
				Action: migrate,
			},
			{
				Name:   "distribute-due",
				Usage:  "distribute every profit whose planned date has passed",
				Action: distributeDue,
			},
			{
				Name:  "distribute",
				Usage: "distribute the profit of one order item",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "order-item",
						Usage:    "order item id",
						Required: true,
					},
				},
				Action: distributeOne,
			},
		},
		DefaultCommand: "serve",
	}

	if err := cmd.Run(context.Background(), os.Args); err != nil {
		log.Fatalf("🔥 %v", err)
	}
}
