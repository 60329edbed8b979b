package event

import "time"

type Type string

const (
	// Job lifecycle
	JobCreated   Type = "job.created"
	JobReady     Type = "job.ready"
	JobFailed    Type = "job.failed"
	JobCancelled Type = "job.cancelled"

	// Retention
	SessionEvicted Type = "session.evicted"
)

// Event is a bus message. Payload holds a JobEvent or a SessionEvent.
type Event struct {
	Type      Type
	Timestamp time.Time
	Payload   any
}

// JobEvent describes one job lifecycle transition.
type JobEvent struct {
	JobID     string
	SessionID string
	URL       string
	Filename  string
	Error     string
}

// SessionEvent describes a retention decision about a whole session.
type SessionEvent struct {
	SessionID string
	Jobs      int
	Reason    string // "age" or "capacity"
}
