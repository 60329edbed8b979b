package controller

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/ricardoalejandro/Download-videos-youtube/internal/config"
	"github.com/ricardoalejandro/Download-videos-youtube/internal/controller/api"
	"github.com/ricardoalejandro/Download-videos-youtube/internal/core/allowlist"
	"github.com/ricardoalejandro/Download-videos-youtube/internal/core/event"
	"github.com/ricardoalejandro/Download-videos-youtube/internal/core/job"
	"github.com/ricardoalejandro/Download-videos-youtube/internal/core/resolver/ytdlp"
	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

func Run(ctx context.Context, cfg *config.Config) error {
	level, err := zerolog.ParseLevel(cfg.Logging.Level)
	if err == nil {
		zerolog.SetGlobalLevel(level)
	}
	if cfg.Logging.Format == "json" {
		log.Logger = zerolog.New(os.Stderr).With().Timestamp().Logger()
	}
	log.Debug().Str("level", cfg.Logging.Level).Msg("log level configured")

	ttl, err := time.ParseDuration(cfg.Session.TTL)
	if err != nil || ttl <= 0 {
		ttl = 24 * time.Hour
	}
	sweepEvery, err := time.ParseDuration(cfg.Session.SweepInterval)
	if err != nil || sweepEvery <= 0 {
		sweepEvery = time.Hour
	}

	res := ytdlp.New(ytdlp.Config{
		Binary:      cfg.Resolver.Binary,
		CookiesFile: cfg.Resolver.CookiesFile,
		UserAgent:   cfg.Resolver.UserAgent,
		ExtraArgs:   cfg.Resolver.ExtraArgs,
	})
	if version, err := res.Health(ctx); err != nil {
		log.Warn().Err(err).Str("binary", cfg.Resolver.Binary).Msg("resolver binary not available, jobs will fail until it is installed")
	} else {
		log.Info().Str("version", version).Msg("resolver ready")
	}

	bus := event.NewBus()
	store := job.NewStore()
	sweeper := job.NewSweeper(store, bus, ttl, cfg.Session.MaxSessions)
	manager := job.NewManager(store, res, bus, sweeper, int64(cfg.Resolver.MaxConcurrent))

	setupAuditLog(bus)

	// Job creation already triggers a sweep; the cron covers deployments
	// that sit idle long enough for sessions to expire without traffic.
	sched := cron.New()
	if _, err := sched.AddFunc(fmt.Sprintf("@every %s", sweepEvery), func() {
		if n := sweeper.Sweep(context.Background(), time.Now()); n > 0 {
			log.Info().Int("sessions", n).Msg("retention sweep evicted sessions")
		}
	}); err != nil {
		return fmt.Errorf("schedule retention sweep: %w", err)
	}
	sched.Start()

	e := echo.New()
	e.HideBanner = true

	api.SetupRouter(e, api.RouterConfig{
		Manager:     manager,
		Resolver:    res,
		Allowlist:   allowlist.New(cfg.Allowlist.Domains),
		CORSOrigins: cfg.Server.CORSOrigins,
	})

	printBanner(cfg)

	go func() {
		addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
		if err := e.Start(addr); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("HTTP server failed")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("shutting down...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	sched.Stop()
	if err := e.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("server shutdown error")
	}
	return nil
}

// setupAuditLog mirrors job lifecycle and retention events into the log so
// operators can trace what happened to a session after the fact.
func setupAuditLog(bus event.Bus) {
	jobEvent := func(msg string) event.Handler {
		return func(_ context.Context, ev event.Event) error {
			p, ok := ev.Payload.(event.JobEvent)
			if !ok {
				return nil
			}
			evt := log.Info().Str("job_id", p.JobID).Str("session_id", p.SessionID)
			if p.Error != "" {
				evt = evt.Str("error", p.Error)
			}
			evt.Msg(msg)
			return nil
		}
	}

	bus.Subscribe(event.JobCreated, jobEvent("job created"))
	bus.Subscribe(event.JobReady, jobEvent("job ready"))
	bus.Subscribe(event.JobFailed, jobEvent("job failed"))
	bus.Subscribe(event.JobCancelled, jobEvent("job cancelled"))

	bus.Subscribe(event.SessionEvicted, func(_ context.Context, ev event.Event) error {
		p, ok := ev.Payload.(event.SessionEvent)
		if !ok {
			return nil
		}
		log.Info().Str("session_id", p.SessionID).Int("jobs", p.Jobs).Str("reason", p.Reason).Msg("session evicted")
		return nil
	})
}

func printBanner(cfg *config.Config) {
	fmt.Println()
	fmt.Println("═══════════════════════════════════════════════════════")
	fmt.Println("  Video Downloader started")
	fmt.Println()
	fmt.Println("  Per-session jobs, direct links, no server-side storage")
	fmt.Println()
	fmt.Printf("  HTTP:  http://%s:%d\n", cfg.Server.Host, cfg.Server.Port)
	fmt.Printf("  Docs:  http://%s:%d/docs\n", cfg.Server.Host, cfg.Server.Port)
	fmt.Println("═══════════════════════════════════════════════════════")
	fmt.Println()
}
