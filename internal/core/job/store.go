package job

import (
	"sync"
	"time"
)

// session is one caller's job collection. Jobs are indexed by id and kept
// in insertion order so listings are stable.
type session struct {
	mu    sync.Mutex
	jobs  map[string]*Job
	order []string
}

func newSession() *session {
	return &session{jobs: make(map[string]*Job)}
}

func (s *session) put(j *Job) {
	s.mu.Lock()
	if _, ok := s.jobs[j.ID]; !ok {
		s.order = append(s.order, j.ID)
	}
	s.jobs[j.ID] = j
	s.mu.Unlock()
}

func (s *session) get(id string) (*Job, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	j, ok := s.jobs[id]
	return j, ok
}

// list returns the session's jobs in creation order.
func (s *session) list() []*Job {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]*Job, 0, len(s.order))
	for _, id := range s.order {
		out = append(out, s.jobs[id])
	}
	return out
}

func (s *session) size() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.jobs)
}

// finish replaces a still-processing job with the record built by next.
// The write is refused when the job is gone or already terminal, which is
// how a late worker outcome loses against an earlier cancellation.
func (s *session) finish(id string, next func(Job) Job) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	cur, ok := s.jobs[id]
	if !ok || cur.Status.Terminal() {
		return false
	}
	j := next(*cur)
	s.jobs[id] = &j
	return true
}

// cancel flips a processing job to cancelled. It returns the new record and
// whether the job exists at all; an already-terminal job is reported found
// but left untouched, with a nil record.
func (s *session) cancel(id string, at time.Time) (*Job, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	cur, ok := s.jobs[id]
	if !ok {
		return nil, false
	}
	if cur.Status.Terminal() {
		return nil, true
	}
	next := *cur
	next.Status = StatusCancelled
	next.CompletedAt = &at
	s.jobs[id] = &next
	return &next, true
}

// Store holds every session's job collection. The store lock only guards
// the session map; each collection carries its own lock.
type Store struct {
	mu       sync.RWMutex
	sessions map[string]*session
}

func NewStore() *Store {
	return &Store{sessions: make(map[string]*session)}
}

// GetOrCreate returns the session's collection, creating an empty one on
// first access. Creation is atomic: concurrent callers with the same id
// always share a single collection.
func (st *Store) GetOrCreate(id string) *session {
	st.mu.RLock()
	s, ok := st.sessions[id]
	st.mu.RUnlock()
	if ok {
		return s
	}

	st.mu.Lock()
	defer st.mu.Unlock()
	// Double-check after acquiring the write lock.
	if s, ok := st.sessions[id]; ok {
		return s
	}
	s = newSession()
	st.sessions[id] = s
	return s
}

func (st *Store) lookup(id string) (*session, bool) {
	st.mu.RLock()
	defer st.mu.RUnlock()
	s, ok := st.sessions[id]
	return s, ok
}

// SessionIDs returns the ids of all live sessions, in no particular order.
func (st *Store) SessionIDs() []string {
	st.mu.RLock()
	defer st.mu.RUnlock()
	ids := make([]string, 0, len(st.sessions))
	for id := range st.sessions {
		ids = append(ids, id)
	}
	return ids
}

func (st *Store) Len() int {
	st.mu.RLock()
	defer st.mu.RUnlock()
	return len(st.sessions)
}

// Evict drops a whole session and its jobs.
func (st *Store) Evict(id string) (*session, bool) {
	st.mu.Lock()
	defer st.mu.Unlock()
	s, ok := st.sessions[id]
	if ok {
		delete(st.sessions, id)
	}
	return s, ok
}
