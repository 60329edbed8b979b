package job

import (
	"context"
	"fmt"

	"github.com/ricardoalejandro/Download-videos-youtube/internal/core/event"
	"github.com/ricardoalejandro/Download-videos-youtube/internal/core/util"
	"github.com/rs/zerolog/log"
)

// formatSelector maps the caller's request to a resolver format selector.
// An explicit format id always wins; the "audio" and "best" tokens map to
// the audio-optimized and default selections; anything else is treated as
// a format id already.
func formatSelector(quality, formatID string) string {
	if formatID != "" {
		return formatID
	}
	switch quality {
	case "audio":
		return "bestaudio/best"
	case "best":
		return "best"
	}
	return quality
}

// resolve runs one job to its terminal state. Nothing escapes this
// goroutine: any resolver error or panic becomes the job's error state.
func (m *Manager) resolve(ctx context.Context, jobID, sessionID, url, quality, formatID string) {
	defer func() {
		if r := recover(); r != nil {
			log.Error().Str("session_id", sessionID).Str("job_id", jobID).
				Interface("panic", r).Msg("resolution panicked")
			m.fail(ctx, jobID, sessionID, url, fmt.Sprintf("internal error: %v", r))
		}
	}()

	if err := m.slots.Acquire(ctx, 1); err != nil {
		m.fail(ctx, jobID, sessionID, url, err.Error())
		return
	}
	defer m.slots.Release(1)

	log.Info().Str("session_id", sessionID).Str("job_id", jobID).Msg("resolving download link")

	info, err := m.res.Resolve(ctx, url, formatSelector(quality, formatID))
	if err != nil {
		m.fail(ctx, jobID, sessionID, url, err.Error())
		return
	}

	downloadURL := info.URL
	if downloadURL == "" {
		// Merged selections carry no top-level URL; take the first
		// candidate that has one.
		for i := range info.Formats {
			if info.Formats[i].URL != "" {
				downloadURL = info.Formats[i].URL
				break
			}
		}
	}
	if downloadURL == "" {
		m.fail(ctx, jobID, sessionID, url, "no usable download URL found")
		return
	}

	title := info.Title
	if title == "" {
		title = "video"
	}
	ext := info.Ext
	if ext == "" {
		ext = "mp4"
	}
	res := &Result{
		DownloadURL: downloadURL,
		Filename:    util.SanitizeFilename(title + "." + ext),
		FileSize:    info.SizeBytes(),
		Title:       title,
		Duration:    info.Duration,
	}

	at := m.now()
	if !m.finishJob(sessionID, jobID, func(j Job) Job {
		j.Status = StatusReady
		j.Progress = 100
		j.Result = res
		j.CompletedAt = &at
		return j
	}) {
		// Cancelled or evicted while resolving; the outcome is dropped.
		log.Debug().Str("session_id", sessionID).Str("job_id", jobID).Msg("resolution outcome dropped")
		return
	}

	m.bus.Publish(ctx, event.Event{
		Type:    event.JobReady,
		Payload: event.JobEvent{JobID: jobID, SessionID: sessionID, URL: url, Filename: res.Filename},
	})
	log.Info().Str("session_id", sessionID).Str("job_id", jobID).
		Str("filename", res.Filename).Msg("download link ready")
}

func (m *Manager) fail(ctx context.Context, jobID, sessionID, url, msg string) {
	at := m.now()
	if !m.finishJob(sessionID, jobID, func(j Job) Job {
		j.Status = StatusError
		j.Error = msg
		j.CompletedAt = &at
		return j
	}) {
		return
	}

	m.bus.Publish(ctx, event.Event{
		Type:    event.JobFailed,
		Payload: event.JobEvent{JobID: jobID, SessionID: sessionID, URL: url, Error: msg},
	})
	log.Error().Str("session_id", sessionID).Str("job_id", jobID).
		Str("error", msg).Msg("resolution failed")
}

// finishJob writes a terminal record through the session's guarded swap.
// An evicted session is not resurrected just to park a dead outcome.
func (m *Manager) finishJob(sessionID, jobID string, next func(Job) Job) bool {
	s, ok := m.store.lookup(sessionID)
	if !ok {
		return false
	}
	return s.finish(jobID, next)
}
