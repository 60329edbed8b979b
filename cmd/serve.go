package cmd

import (
	"context"
	"fmt"

	"github.com/ricardoalejandro/Download-videos-youtube/internal/config"
	"github.com/ricardoalejandro/Download-videos-youtube/internal/controller"
	"github.com/urfave/cli/v3"
)

func serveCmd() *cli.Command {
	return &cli.Command{
		Name:  "serve",
		Usage: "Run the HTTP API server",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "binary",
				Usage:   "Path to the yt-dlp binary",
				Sources: cli.EnvVars("VDL_RESOLVER_BINARY"),
			},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			cfg, err := config.Load(cmd.String("config"))
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}

			if v := cmd.String("binary"); v != "" {
				cfg.Resolver.Binary = v
			}
			if cmd.IsSet("log-level") {
				cfg.Logging.Level = cmd.String("log-level")
			}

			return controller.Run(ctx, cfg)
		},
	}
}
