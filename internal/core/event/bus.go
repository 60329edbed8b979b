// Package event carries job lifecycle and retention notifications between
// the registry core and its observers.
package event

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
)

type Handler func(ctx context.Context, ev Event) error

// Bus is an in-process publish/subscribe channel. Publish is synchronous;
// handler errors are logged, never propagated to the publisher.
type Bus interface {
	Publish(ctx context.Context, ev Event)
	Subscribe(t Type, h Handler) (unsubscribe func())
}

// NewBus creates an in-process event bus.
func NewBus() Bus {
	return &memoryBus{subs: make(map[Type][]subscriber)}
}

type subscriber struct {
	id uint64
	fn Handler
}

type memoryBus struct {
	mu     sync.RWMutex
	subs   map[Type][]subscriber
	lastID uint64
}

func (b *memoryBus) Publish(ctx context.Context, ev Event) {
	if ev.Timestamp.IsZero() {
		ev.Timestamp = time.Now()
	}

	b.mu.RLock()
	subs := make([]subscriber, len(b.subs[ev.Type]))
	copy(subs, b.subs[ev.Type])
	b.mu.RUnlock()

	for _, s := range subs {
		if err := s.fn(ctx, ev); err != nil {
			log.Error().Err(err).Str("event", string(ev.Type)).Msg("event handler error")
		}
	}
}

func (b *memoryBus) Subscribe(t Type, h Handler) func() {
	b.mu.Lock()
	b.lastID++
	id := b.lastID
	b.subs[t] = append(b.subs[t], subscriber{id: id, fn: h})
	b.mu.Unlock()

	return func() {
		b.mu.Lock()
		defer b.mu.Unlock()
		subs := b.subs[t]
		for i, s := range subs {
			if s.id == id {
				b.subs[t] = append(subs[:i], subs[i+1:]...)
				break
			}
		}
	}
}
