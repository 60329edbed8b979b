package job

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/ricardoalejandro/Download-videos-youtube/internal/core/event"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seedJob(st *Store, sessionID, jobID string, createdAt time.Time) {
	st.GetOrCreate(sessionID).put(&Job{
		ID:        jobID,
		SessionID: sessionID,
		Status:    StatusReady,
		CreatedAt: createdAt,
	})
}

func TestAgeSweepNeedsEveryJobExpired(t *testing.T) {
	st := NewStore()
	sw := NewSweeper(st, event.NewBus(), 24*time.Hour, 0)
	now := time.Now()

	// One fresh job shields the whole session.
	seedJob(st, "mixed", "old", now.Add(-25*time.Hour))
	seedJob(st, "mixed", "new", now.Add(-1*time.Hour))

	seedJob(st, "stale", "a", now.Add(-25*time.Hour))
	seedJob(st, "stale", "b", now.Add(-26*time.Hour))

	evicted := sw.Sweep(context.Background(), now)
	assert.Equal(t, 1, evicted)
	assert.ElementsMatch(t, []string{"mixed"}, st.SessionIDs())
}

func TestAgeSweepSkipsEmptySessions(t *testing.T) {
	st := NewStore()
	sw := NewSweeper(st, event.NewBus(), 24*time.Hour, 0)

	st.GetOrCreate("empty")
	evicted := sw.Sweep(context.Background(), time.Now().Add(48*time.Hour))
	assert.Zero(t, evicted)
	assert.ElementsMatch(t, []string{"empty"}, st.SessionIDs())
}

func TestCapacitySweepEvictsLowestSortingKeys(t *testing.T) {
	st := NewStore()
	sw := NewSweeper(st, event.NewBus(), 0, 2)
	now := time.Now()

	for _, id := range []string{"s-d", "s-b", "s-a", "s-c"} {
		seedJob(st, id, "j", now)
	}

	evicted := sw.Sweep(context.Background(), now)
	assert.Equal(t, 2, evicted)
	assert.ElementsMatch(t, []string{"s-c", "s-d"}, st.SessionIDs())
}

func TestCapacityBoundRestoredAtInsert(t *testing.T) {
	st := NewStore()
	sw := NewSweeper(st, event.NewBus(), 0, 1000)
	now := time.Now()

	for i := 0; i < 1000; i++ {
		seedJob(st, fmt.Sprintf("s%04d", i), "j", now)
	}
	assert.Zero(t, sw.Sweep(context.Background(), now))

	seedJob(st, "s1000", "j", now)
	assert.Equal(t, 1, sw.Sweep(context.Background(), now))
	assert.Equal(t, 1000, st.Len())

	_, ok := st.lookup("s0000")
	assert.False(t, ok, "lowest-sorting session should be the one evicted")
}

func TestStartTriggersCapacitySweep(t *testing.T) {
	st := NewStore()
	bus := event.NewBus()
	sw := NewSweeper(st, bus, 0, 2)
	m := NewManager(st, &fakeResolver{info: readyInfo()}, bus, sw, 2)

	var mu sync.Mutex
	var gone []event.SessionEvent
	bus.Subscribe(event.SessionEvicted, func(_ context.Context, ev event.Event) error {
		mu.Lock()
		gone = append(gone, ev.Payload.(event.SessionEvent))
		mu.Unlock()
		return nil
	})

	m.Start(context.Background(), "s-a", "https://youtu.be/1", "best", "")
	m.Start(context.Background(), "s-b", "https://youtu.be/2", "best", "")
	m.Start(context.Background(), "s-c", "https://youtu.be/3", "best", "")

	assert.Equal(t, 2, st.Len())
	_, ok := st.lookup("s-a")
	assert.False(t, ok)

	require.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return len(gone) == 1
	}, time.Second, 10*time.Millisecond)

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, "s-a", gone[0].SessionID)
	assert.Equal(t, "capacity", gone[0].Reason)
}
