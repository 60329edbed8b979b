// Package job implements the session-scoped registry of link-resolution
// jobs: the in-memory store, the lifecycle manager, the background
// resolution worker and the retention sweeper.
package job

import "time"

// Status is the lifecycle state of a job. processing is the only
// non-terminal state.
type Status string

const (
	StatusProcessing Status = "processing"
	StatusReady      Status = "ready"
	StatusError      Status = "error"
	StatusCancelled  Status = "cancelled"
)

// Terminal reports whether a job in this status is finished for good.
// Terminal records never transition again.
func (s Status) Terminal() bool {
	return s == StatusReady || s == StatusError || s == StatusCancelled
}

// Result carries the resolved direct download link and its metadata. Only
// ready jobs have one.
type Result struct {
	DownloadURL string  `json:"download_url"`
	Filename    string  `json:"filename"`
	FileSize    int64   `json:"file_size"`
	Title       string  `json:"title"`
	Duration    float64 `json:"duration"`
}

// Job is one link-resolution task. Records handed out by the registry are
// immutable: every transition replaces the stored record wholesale, so a
// reader never observes a half-written update. A terminal job carries a
// Result when ready, an Error message when failed, and neither when
// cancelled.
type Job struct {
	ID             string     `json:"id"`
	SessionID      string     `json:"session_id"`
	URL            string     `json:"url"`
	QualityRequest string     `json:"quality_requested"`
	Status         Status     `json:"status"`
	Progress       int        `json:"progress"`
	CreatedAt      time.Time  `json:"created_at"`
	CompletedAt    *time.Time `json:"completed_at,omitempty"`
	Result         *Result    `json:"result,omitempty"`
	Error          string     `json:"error,omitempty"`
}
