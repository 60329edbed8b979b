package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/ricardoalejandro/Download-videos-youtube/internal/config"
	"github.com/ricardoalejandro/Download-videos-youtube/internal/core/resolver"
	"github.com/ricardoalejandro/Download-videos-youtube/internal/core/resolver/ytdlp"
	"github.com/urfave/cli/v3"
)

func probeCmd() *cli.Command {
	return &cli.Command{
		Name:      "probe",
		Usage:     "Probe a media page URL and print its format report as JSON",
		ArgsUsage: "<url>",
		Action: func(ctx context.Context, cmd *cli.Command) error {
			url := cmd.Args().First()
			if url == "" {
				return fmt.Errorf("a URL argument is required")
			}

			cfg, err := config.Load(cmd.String("config"))
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}

			client := ytdlp.New(ytdlp.Config{
				Binary:      cfg.Resolver.Binary,
				CookiesFile: cfg.Resolver.CookiesFile,
				UserAgent:   cfg.Resolver.UserAgent,
				ExtraArgs:   cfg.Resolver.ExtraArgs,
			})

			info, err := client.Probe(ctx, url)
			if err != nil {
				return fmt.Errorf("probe: %w", err)
			}

			report, err := resolver.BuildFormatReport(info)
			if err != nil {
				return err
			}

			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			return enc.Encode(report)
		},
	}
}
