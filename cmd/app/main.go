package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"

	_ "github.com/joho/godotenv/autoload"
	"github.com/urfave/cli/v3"

	"github.com/starford/mannaz/internal"
	pkgconfig "github.com/starford/mannaz/pkg/config"
)

// loadConfig reads the config file when present, falling back to defaults
// so the mcp and reset commands work without one.
func loadConfig(cmd *cli.Command) (*internal.Config, error) {
	configPath := cmd.String("config")

	cfg := internal.NewDefaultConfig()
	if _, err := os.Stat(configPath); errors.Is(err, os.ErrNotExist) {
		return cfg, nil
	}
	if err := pkgconfig.Load(configPath, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	return cfg, nil
}

func serve(ctx context.Context, cmd *cli.Command) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	if err := internal.Run(ctx, internal.WithConfig(cfg)); err != nil {
		return fmt.Errorf("app run error: %w", err)
	}
	return nil
}

func runMCP(ctx context.Context, cmd *cli.Command) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	return internal.RunMCP(cfg, cmd.String("topic"), cmd.String("type"))
}

func resetAction(fn func(*internal.Config) (string, error)) cli.ActionFunc {
	return func(ctx context.Context, cmd *cli.Command) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		msg, err := fn(cfg)
		if err != nil {
			return err
		}
		fmt.Println(msg)
		return nil
	}
}

func main() {
	cmd := &cli.Command{
		Name:   "mannaz",
		Usage:  "Personal study companion vault: Markdown knowledge tracking with MCP tools and a REST API",
		Action: serve,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:        "config",
				Aliases:     []string{"c"},
				Usage:       "Path to config file",
				DefaultText: "config/config.yaml",
				Value:       "config/config.yaml",
				Sources:     cli.EnvVars("APP_CONFIG_FILE"),
			},
		},
		Commands: []*cli.Command{
			{
				Name:   "mcp",
				Usage:  "Serve the record tools over MCP stdio for one study session",
				Action: runMCP,
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:  "topic",
						Usage: "Session topic slug; tool topic arguments are normalized against it",
					},
					&cli.StringFlag{
						Name:  "type",
						Usage: "Topic type for new notes (concept or project)",
						Value: "concept",
					},
				},
			},
			{
				Name:  "reset",
				Usage: "Reset vault content",
				Commands: []*cli.Command{
					{
						Name:      "topic",
						Usage:     "Blank one topic note back to its template",
						ArgsUsage: "<slug>",
						Action: func(ctx context.Context, cmd *cli.Command) error {
							slug := cmd.Args().First()
							if slug == "" {
								return fmt.Errorf("topic slug is required")
							}
							cfg, err := loadConfig(cmd)
							if err != nil {
								return err
							}
							msg, err := internal.RunResetTopic(cfg, slug)
							if err != nil {
								return err
							}
							fmt.Println(msg)
							return nil
						},
					},
					{
						Name:   "all",
						Usage:  "Delete every topic note",
						Action: resetAction(internal.RunResetAll),
					},
					{
						Name:   "daily",
						Usage:  "Delete every daily log",
						Action: resetAction(internal.RunResetDaily),
					},
					{
						Name:   "profile",
						Usage:  "Restore the blank learner profile",
						Action: resetAction(internal.RunResetProfile),
					},
				},
			},
		},
	}

	if err := cmd.Run(context.Background(), os.Args); err != nil {
		slog.Error("application error", slog.String("error", err.Error()))
		os.Exit(1)
	}
}
