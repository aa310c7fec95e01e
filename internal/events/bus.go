// Package events carries typed mutation lifecycle signals between the engine
// and external readers (websocket hub, fence mirrors). The bus replaces
// ambient string-keyed broadcasts with a statically-checkable contract.
package events

import (
	"sync"

	"github.com/google/uuid"

	"github.com/shotline/shotline/internal/models"
)

type Phase string

const (
	PhaseStarted Phase = "started"
	PhaseEnded   Phase = "ended"
)

// Mutation describes one lifecycle transition of a shot mutation.
type Mutation struct {
	ShotID   uuid.UUID           `json:"shot_id"`
	Kind     models.MutationKind `json:"kind"`
	EntryIDs []uuid.UUID         `json:"entry_ids"`
	Phase    Phase               `json:"phase"`
}

// Handler receives mutation events. Handlers run synchronously on the
// publisher's goroutine and must not block.
type Handler func(Mutation)

type Bus struct {
	mu       sync.RWMutex
	handlers []Handler
}

func NewBus() *Bus {
	return &Bus{}
}

func (b *Bus) Subscribe(h Handler) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.handlers = append(b.handlers, h)
}

func (b *Bus) Publish(m Mutation) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	for _, h := range b.handlers {
		h(m)
	}
}
