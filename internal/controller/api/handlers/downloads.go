package handlers

import (
	"context"

	"github.com/danielgtaylor/huma/v2"
	"github.com/ricardoalejandro/Download-videos-youtube/internal/controller/api/middleware"
	"github.com/ricardoalejandro/Download-videos-youtube/internal/core/allowlist"
	"github.com/ricardoalejandro/Download-videos-youtube/internal/core/job"
)

const errURLNotAllowed = "URL not allowed. Supported sites: YouTube, Instagram, TikTok, Facebook, Twitter, Vimeo"

type DownloadsHandler struct {
	mgr   *job.Manager
	allow *allowlist.Allowlist
}

func NewDownloadsHandler(mgr *job.Manager, allow *allowlist.Allowlist) *DownloadsHandler {
	return &DownloadsHandler{mgr: mgr, allow: allow}
}

// --- Input types ---

type StartInput struct {
	Body struct {
		URL      string `json:"url,omitempty" doc:"Media page URL to resolve"`
		Quality  string `json:"quality,omitempty" doc:"Quality keyword (best, audio) or a format id"`
		FormatID string `json:"format_id,omitempty" doc:"Explicit format id, overrides quality"`
	}
}

type JobIDInput struct {
	JobID string `path:"job_id" doc:"Job ID"`
}

type ListJobsInput struct{}

// --- Output types ---

type StartBody struct {
	Success   bool   `json:"success"`
	JobID     string `json:"job_id" doc:"ID of the created job"`
	SessionID string `json:"session_id" doc:"Session the job belongs to"`
	Message   string `json:"message"`
	StatusURL string `json:"status_url" doc:"Polling URL for this job"`
}

type StartOutput struct {
	Body StartBody
}

// StatusOutput returns the job record as stored.
type StatusOutput struct {
	Body job.Job
}

type DownloadBody struct {
	DownloadURL string `json:"download_url" doc:"Direct download URL"`
	Filename    string `json:"filename" doc:"Suggested filename"`
	FileSize    int64  `json:"file_size" doc:"File size in bytes, 0 when unknown"`
}

type DownloadOutput struct {
	Body DownloadBody
}

type JobsBody struct {
	SessionID string     `json:"session_id" doc:"Caller's session"`
	Jobs      []*job.Job `json:"jobs" doc:"Jobs in creation order"`
	Total     int        `json:"total" doc:"Number of jobs in the session"`
	Active    int        `json:"active" doc:"Jobs still processing"`
}

type JobsOutput struct {
	Body JobsBody
}

// --- Handlers ---

func (h *DownloadsHandler) Start(ctx context.Context, input *StartInput) (*StartOutput, error) {
	sessionID := middleware.GetSessionID(ctx)

	url := input.Body.URL
	if url == "" {
		return nil, huma.Error400BadRequest("URL is required")
	}
	if !h.allow.Allowed(url) {
		return nil, huma.Error400BadRequest(errURLNotAllowed)
	}

	quality := input.Body.Quality
	if quality == "" {
		quality = "best"
	}

	jobID := h.mgr.Start(ctx, sessionID, url, quality, input.Body.FormatID)

	return &StartOutput{Body: StartBody{
		Success:   true,
		JobID:     jobID,
		SessionID: sessionID,
		Message:   "Processing download link...",
		StatusURL: "/status/" + jobID,
	}}, nil
}

func (h *DownloadsHandler) Status(ctx context.Context, input *JobIDInput) (*StatusOutput, error) {
	sessionID := middleware.GetSessionID(ctx)

	j, ok := h.mgr.Get(sessionID, input.JobID)
	if !ok {
		return nil, huma.Error404NotFound("job not found in this session")
	}

	return &StatusOutput{Body: *j}, nil
}

func (h *DownloadsHandler) Download(ctx context.Context, input *JobIDInput) (*DownloadOutput, error) {
	sessionID := middleware.GetSessionID(ctx)

	j, ok := h.mgr.Get(sessionID, input.JobID)
	if !ok {
		return nil, huma.Error404NotFound("job not found")
	}
	if j.Status != job.StatusReady {
		return nil, huma.Error400BadRequest("download is not ready")
	}
	if j.Result == nil || j.Result.DownloadURL == "" {
		return nil, huma.Error500InternalServerError("download URL not available")
	}

	filename := j.Result.Filename
	if filename == "" {
		filename = "video.mp4"
	}

	return &DownloadOutput{Body: DownloadBody{
		DownloadURL: j.Result.DownloadURL,
		Filename:    filename,
		FileSize:    j.Result.FileSize,
	}}, nil
}

func (h *DownloadsHandler) Cancel(ctx context.Context, input *JobIDInput) (*MsgOutput, error) {
	sessionID := middleware.GetSessionID(ctx)

	if !h.mgr.Cancel(ctx, sessionID, input.JobID) {
		return nil, huma.Error404NotFound("job not found in this session")
	}

	return Msg("Download cancelled"), nil
}

func (h *DownloadsHandler) List(ctx context.Context, _ *ListJobsInput) (*JobsOutput, error) {
	sessionID := middleware.GetSessionID(ctx)

	jobs := h.mgr.List(sessionID)
	active := 0
	for _, j := range jobs {
		if j.Status == job.StatusProcessing {
			active++
		}
	}

	return &JobsOutput{Body: JobsBody{
		SessionID: sessionID,
		Jobs:      jobs,
		Total:     len(jobs),
		Active:    active,
	}}, nil
}
