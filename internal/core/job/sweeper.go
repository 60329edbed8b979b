package job

import (
	"context"
	"sort"
	"time"

	"github.com/ricardoalejandro/Download-videos-youtube/internal/core/event"
	"github.com/rs/zerolog/log"
)

// Sweeper enforces the registry's retention policy: sessions whose jobs
// have all aged out are dropped, and the total session count is capped.
type Sweeper struct {
	store       *Store
	bus         event.Bus
	ttl         time.Duration
	maxSessions int
}

// NewSweeper builds a sweeper over the store. A non-positive ttl disables
// the age bound; a non-positive maxSessions disables the capacity bound.
func NewSweeper(store *Store, bus event.Bus, ttl time.Duration, maxSessions int) *Sweeper {
	return &Sweeper{store: store, bus: bus, ttl: ttl, maxSessions: maxSessions}
}

// Sweep applies both retention bounds and returns how many sessions were
// evicted. It runs after every job insert and on the periodic schedule.
func (sw *Sweeper) Sweep(ctx context.Context, now time.Time) int {
	evicted := sw.sweepAge(ctx, now)
	evicted += sw.sweepCapacity(ctx)
	return evicted
}

// sweepAge drops sessions in which every job is older than the TTL. A
// single recent job keeps the whole session alive. Sessions with no jobs
// at all are left for the capacity bound.
func (sw *Sweeper) sweepAge(ctx context.Context, now time.Time) int {
	if sw.ttl <= 0 {
		return 0
	}
	cutoff := now.Add(-sw.ttl)
	evicted := 0
	for _, id := range sw.store.SessionIDs() {
		s, ok := sw.store.lookup(id)
		if !ok {
			continue
		}
		jobs := s.list()
		if len(jobs) == 0 {
			continue
		}
		allOld := true
		for _, j := range jobs {
			if j.CreatedAt.After(cutoff) {
				allOld = false
				break
			}
		}
		if !allOld {
			continue
		}
		if sw.evict(ctx, id, len(jobs), "age") {
			evicted++
		}
	}
	return evicted
}

// sweepCapacity drops the lowest-sorting session keys until the count is
// back under the cap. Key order is a crude stand-in for age: a fresh
// session with a low-sorting key can be evicted ahead of older ones.
func (sw *Sweeper) sweepCapacity(ctx context.Context) int {
	if sw.maxSessions <= 0 {
		return 0
	}
	ids := sw.store.SessionIDs()
	over := len(ids) - sw.maxSessions
	if over <= 0 {
		return 0
	}
	sort.Strings(ids)
	evicted := 0
	for _, id := range ids[:over] {
		jobs := 0
		if s, ok := sw.store.lookup(id); ok {
			jobs = s.size()
		}
		if sw.evict(ctx, id, jobs, "capacity") {
			evicted++
		}
	}
	return evicted
}

func (sw *Sweeper) evict(ctx context.Context, id string, jobs int, reason string) bool {
	if _, ok := sw.store.Evict(id); !ok {
		return false
	}
	sw.bus.Publish(ctx, event.Event{
		Type:    event.SessionEvicted,
		Payload: event.SessionEvent{SessionID: id, Jobs: jobs, Reason: reason},
	})
	log.Info().Str("session_id", id).Str("reason", reason).Int("jobs", jobs).Msg("session evicted")
	return true
}
