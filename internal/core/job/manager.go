package job

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/ricardoalejandro/Download-videos-youtube/internal/core/event"
	"github.com/ricardoalejandro/Download-videos-youtube/internal/core/resolver"
	"golang.org/x/sync/semaphore"
)

// Manager is the session-scoped job registry. Starting a job never blocks
// on resolution; a background worker fills in the terminal state later.
type Manager struct {
	store   *Store
	res     resolver.Resolver
	bus     event.Bus
	sweeper *Sweeper
	slots   *semaphore.Weighted

	now func() time.Time
}

// NewManager wires the registry. maxConcurrent bounds how many resolver
// calls run at once; workers beyond the bound wait for a slot while their
// jobs stay visible as processing.
func NewManager(store *Store, res resolver.Resolver, bus event.Bus, sweeper *Sweeper, maxConcurrent int64) *Manager {
	if maxConcurrent < 1 {
		maxConcurrent = 1
	}
	return &Manager{
		store:   store,
		res:     res,
		bus:     bus,
		sweeper: sweeper,
		slots:   semaphore.NewWeighted(maxConcurrent),
		now:     time.Now,
	}
}

// Start registers a new job for the session and kicks off resolution in
// the background. The returned job id is immediately readable from the
// same session as a processing job.
func (m *Manager) Start(ctx context.Context, sessionID, url, quality, formatID string) string {
	j := &Job{
		ID:             uuid.NewString(),
		SessionID:      sessionID,
		URL:            url,
		QualityRequest: qualityRequest(quality, formatID),
		Status:         StatusProcessing,
		CreatedAt:      m.now(),
	}
	m.store.GetOrCreate(sessionID).put(j)

	m.bus.Publish(ctx, event.Event{
		Type:    event.JobCreated,
		Payload: event.JobEvent{JobID: j.ID, SessionID: sessionID, URL: url},
	})

	// The worker context is detached from the HTTP request so resolution
	// keeps running after the response is sent.
	go m.resolve(context.Background(), j.ID, sessionID, url, quality, formatID)

	if m.sweeper != nil {
		m.sweeper.Sweep(ctx, m.now())
	}
	return j.ID
}

// Get returns the session's view of a job. A job id never resolves
// through another session.
func (m *Manager) Get(sessionID, jobID string) (*Job, bool) {
	return m.store.GetOrCreate(sessionID).get(jobID)
}

// Cancel marks a processing job cancelled. A terminal job is left exactly
// as it is but still counts as found, so repeated cancellations stay
// idempotent.
func (m *Manager) Cancel(ctx context.Context, sessionID, jobID string) bool {
	j, found := m.store.GetOrCreate(sessionID).cancel(jobID, m.now())
	if !found {
		return false
	}
	if j != nil {
		m.bus.Publish(ctx, event.Event{
			Type:    event.JobCancelled,
			Payload: event.JobEvent{JobID: jobID, SessionID: sessionID, URL: j.URL},
		})
	}
	return true
}

// List returns the session's jobs in creation order.
func (m *Manager) List(sessionID string) []*Job {
	return m.store.GetOrCreate(sessionID).list()
}

// qualityRequest is what gets recorded on the job: the explicit format id
// when one was supplied, otherwise the quality token.
func qualityRequest(quality, formatID string) string {
	if formatID != "" {
		return formatID
	}
	return quality
}
