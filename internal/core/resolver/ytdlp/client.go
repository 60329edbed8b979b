// Package ytdlp resolves media URLs by shelling out to the yt-dlp binary.
package ytdlp

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"strings"
	"time"

	"github.com/ricardoalejandro/Download-videos-youtube/internal/core/resolver"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/singleflight"
)

// Config holds the yt-dlp invocation settings.
type Config struct {
	Binary      string
	CookiesFile string
	UserAgent   string
	ExtraArgs   []string
}

// Client runs the yt-dlp binary to resolve and probe media pages.
// Concurrent probes of the same URL share a single invocation.
type Client struct {
	cfg   Config
	run   runFunc
	group singleflight.Group
}

type runFunc func(ctx context.Context, binary string, args []string) (stdout, stderr []byte, err error)

// New builds a Client. The binary is not checked here; Health verifies it.
func New(cfg Config) *Client {
	if cfg.Binary == "" {
		cfg.Binary = "yt-dlp"
	}
	return &Client{cfg: cfg, run: runCommand}
}

// Resolve extracts metadata for url with the given format selector.
func (c *Client) Resolve(ctx context.Context, url, selector string) (*resolver.MediaInfo, error) {
	args := c.baseArgs(url)
	if selector != "" {
		args = append(args, "-f", selector)
	}
	args = append(args, url)
	return c.extract(ctx, args)
}

// Probe extracts metadata without format selection. Identical concurrent
// probes collapse into one yt-dlp run.
func (c *Client) Probe(ctx context.Context, url string) (*resolver.MediaInfo, error) {
	v, err, _ := c.group.Do(url, func() (any, error) {
		args := append(c.baseArgs(url), url)
		return c.extract(ctx, args)
	})
	if err != nil {
		return nil, err
	}
	return v.(*resolver.MediaInfo), nil
}

// Health runs the binary with --version and returns the reported version.
func (c *Client) Health(ctx context.Context) (string, error) {
	out, _, err := c.run(ctx, c.cfg.Binary, []string{"--version"})
	if err != nil {
		return "", fmt.Errorf("yt-dlp version: %w", err)
	}
	return strings.TrimSpace(string(out)), nil
}

func (c *Client) baseArgs(url string) []string {
	args := []string{
		"--dump-json",
		"--no-warnings",
		"--retries", "20",
		"--fragment-retries", "50",
		"--file-access-retries", "10",
		"--extractor-args", "youtube:player_client=android,web,ios",
		"--extractor-args", "instagram:comment_count=0",
		"--extractor-args", "tiktok:api_hostname=api.tiktokv.com",
	}
	if c.cfg.UserAgent != "" {
		args = append(args, "--user-agent", c.cfg.UserAgent)
	}
	// Some hosts reject requests whose referer does not match the page.
	args = append(args, "--referer", url)
	if c.cfg.CookiesFile != "" {
		if _, err := os.Stat(c.cfg.CookiesFile); err == nil {
			args = append(args, "--cookies", c.cfg.CookiesFile)
		}
	}
	args = append(args, c.cfg.ExtraArgs...)
	return args
}

func (c *Client) extract(ctx context.Context, args []string) (*resolver.MediaInfo, error) {
	start := time.Now()
	stdout, stderr, err := c.run(ctx, c.cfg.Binary, args)
	if err != nil {
		if msg := lastErrorLine(stderr); msg != "" {
			return nil, errors.New(msg)
		}
		return nil, fmt.Errorf("yt-dlp: %w", err)
	}

	// Playlist URLs make yt-dlp emit one JSON object per entry; the first
	// entry wins.
	var info resolver.MediaInfo
	if err := json.NewDecoder(bytes.NewReader(stdout)).Decode(&info); err != nil {
		return nil, fmt.Errorf("parse info: %w", err)
	}
	log.Debug().Str("title", info.Title).Dur("took", time.Since(start)).Msg("yt-dlp extract done")
	return &info, nil
}

// lastErrorLine returns the message of the last ERROR: line yt-dlp printed.
func lastErrorLine(stderr []byte) string {
	var last string
	for _, line := range strings.Split(string(stderr), "\n") {
		line = strings.TrimSpace(line)
		if strings.HasPrefix(line, "ERROR:") {
			last = strings.TrimSpace(strings.TrimPrefix(line, "ERROR:"))
		}
	}
	return last
}

func runCommand(ctx context.Context, binary string, args []string) (stdout, stderr []byte, err error) {
	cmd := exec.CommandContext(ctx, binary, args...)
	var out, errBuf bytes.Buffer
	cmd.Stdout = &out
	cmd.Stderr = &errBuf
	err = cmd.Run()
	return out.Bytes(), errBuf.Bytes(), err
}
