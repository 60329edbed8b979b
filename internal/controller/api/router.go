package api

import (
	"net/http"

	"github.com/danielgtaylor/huma/v2"
	"github.com/danielgtaylor/huma/v2/adapters/humaecho"
	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/ricardoalejandro/Download-videos-youtube/internal/controller/api/handlers"
	"github.com/ricardoalejandro/Download-videos-youtube/internal/controller/api/middleware"
	"github.com/ricardoalejandro/Download-videos-youtube/internal/core/allowlist"
	"github.com/ricardoalejandro/Download-videos-youtube/internal/core/job"
	"github.com/ricardoalejandro/Download-videos-youtube/internal/core/resolver"
)

type RouterConfig struct {
	Manager     *job.Manager
	Resolver    resolver.Resolver
	Allowlist   *allowlist.Allowlist
	CORSOrigins []string
}

func SetupRouter(e *echo.Echo, cfg RouterConfig) {
	handlers.InitErrors()

	origins := cfg.CORSOrigins
	if len(origins) == 0 {
		origins = []string{"*"}
	}

	e.Use(echomw.Recover())
	e.Use(echomw.RequestID())
	e.Use(echomw.CORSWithConfig(echomw.CORSConfig{
		AllowOrigins: origins,
		AllowMethods: []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowHeaders: []string{"Content-Type", "X-Session-ID"},
	}))
	e.Use(echomw.RateLimiter(echomw.NewRateLimiterMemoryStore(20)))

	e.GET("/health", func(c echo.Context) error {
		return c.JSON(200, map[string]string{"status": "ok"})
	})

	config := huma.DefaultConfig("Video Downloader API", "3.0.0")
	config.Info.Description = "Session-scoped resolver of direct media download links"

	api := humaecho.New(e, config)

	sessionMw := middleware.Session()

	downloads := handlers.NewDownloadsHandler(cfg.Manager, cfg.Allowlist)
	huma.Register(api, huma.Operation{
		OperationID: "start-download",
		Method:      http.MethodPost,
		Path:        "/start",
		Summary:     "Start resolving a download link",
		Tags:        []string{"Downloads"},
		Middlewares: huma.Middlewares{sessionMw},
	}, downloads.Start)

	huma.Register(api, huma.Operation{
		OperationID: "job-status",
		Method:      http.MethodGet,
		Path:        "/status/{job_id}",
		Summary:     "Get job status",
		Tags:        []string{"Downloads"},
		Middlewares: huma.Middlewares{sessionMw},
	}, downloads.Status)

	huma.Register(api, huma.Operation{
		OperationID: "job-download",
		Method:      http.MethodGet,
		Path:        "/download/{job_id}",
		Summary:     "Get the resolved direct link",
		Tags:        []string{"Downloads"},
		Middlewares: huma.Middlewares{sessionMw},
	}, downloads.Download)

	huma.Register(api, huma.Operation{
		OperationID: "job-cancel",
		Method:      http.MethodDelete,
		Path:        "/cancel/{job_id}",
		Summary:     "Cancel a job",
		Tags:        []string{"Downloads"},
		Middlewares: huma.Middlewares{sessionMw},
	}, downloads.Cancel)

	huma.Register(api, huma.Operation{
		OperationID: "list-jobs",
		Method:      http.MethodGet,
		Path:        "/jobs",
		Summary:     "List this session's jobs",
		Tags:        []string{"Downloads"},
		Middlewares: huma.Middlewares{sessionMw},
	}, downloads.List)

	formats := handlers.NewFormatsHandler(cfg.Resolver, cfg.Allowlist)
	huma.Register(api, huma.Operation{
		OperationID: "list-formats",
		Method:      http.MethodPost,
		Path:        "/formats",
		Summary:     "Probe available formats without creating a job",
		Tags:        []string{"Formats"},
		Middlewares: huma.Middlewares{sessionMw},
	}, formats.List)

	info := handlers.NewInfoHandler()
	huma.Register(api, huma.Operation{
		OperationID: "api-info",
		Method:      http.MethodGet,
		Path:        "/api/info",
		Summary:     "API banner",
		Tags:        []string{"Meta"},
	}, info.Get)
}
