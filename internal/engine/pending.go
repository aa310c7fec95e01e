package engine

import (
	"sync"

	"github.com/google/uuid"
)

// pendingPositions holds positions assigned optimistically but not yet
// observed in a remote read. An entry leaves the map once a read reports the
// same position for it.
type pendingPositions struct {
	mu sync.Mutex
	m  map[uuid.UUID]int
}

func newPendingPositions() *pendingPositions {
	return &pendingPositions{m: make(map[uuid.UUID]int)}
}

func (p *pendingPositions) Set(entryID uuid.UUID, pos int) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.m[entryID] = pos
}

func (p *pendingPositions) Get(entryID uuid.UUID) (int, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	pos, ok := p.m[entryID]
	return pos, ok
}

func (p *pendingPositions) Remove(entryID uuid.UUID) {
	p.mu.Lock()
	defer p.mu.Unlock()
	delete(p.m, entryID)
}

func (p *pendingPositions) Snapshot() map[uuid.UUID]int {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make(map[uuid.UUID]int, len(p.m))
	for id, pos := range p.m {
		out[id] = pos
	}
	return out
}
