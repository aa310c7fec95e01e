package engine

import (
	"sync"

	"github.com/google/uuid"

	"github.com/shotline/shotline/internal/models"
)

type fenceRecord struct {
	shotID uuid.UUID
	kind   models.MutationKind
}

// Fence marks entries covered by an in-flight destructive or reordering
// mutation so that a remote read racing the mutation cannot resurrect them.
// A delete that confirms leaves a tombstone behind until a remote read stops
// reporting the entry — a read issued before the delete may resolve after the
// fence is lifted and still carry the dead row.
type Fence struct {
	mu     sync.Mutex
	active map[uuid.UUID]fenceRecord // entryID → in-flight mutation
	tombs  map[uuid.UUID]uuid.UUID   // entryID → shotID, confirmed deletes awaiting remote catch-up
}

func NewFence() *Fence {
	return &Fence{
		active: make(map[uuid.UUID]fenceRecord),
		tombs:  make(map[uuid.UUID]uuid.UUID),
	}
}

// Begin marks the entries as covered by an in-flight mutation.
func (f *Fence) Begin(shotID uuid.UUID, kind models.MutationKind, entryIDs []uuid.UUID) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, id := range entryIDs {
		f.active[id] = fenceRecord{shotID: shotID, kind: kind}
	}
}

// End lifts the fence. It is called on success and on rollback alike — a
// failed mutation must never leave the shot permanently locked.
func (f *Fence) End(shotID uuid.UUID, kind models.MutationKind, entryIDs []uuid.UUID) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, id := range entryIDs {
		if rec, ok := f.active[id]; ok && rec.shotID == shotID && rec.kind == kind {
			delete(f.active, id)
		}
	}
}

// Bury records confirmed deletions. Buried entries stay suppressed after End
// until Sweep observes a remote read without them.
func (f *Fence) Bury(shotID uuid.UUID, entryIDs []uuid.UUID) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, id := range entryIDs {
		f.tombs[id] = shotID
	}
}

// Sweep clears tombstones for the shot that no longer appear in the most
// recent remote read: the store has caught up with the delete.
func (f *Fence) Sweep(shotID uuid.UUID, present map[uuid.UUID]bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for id, sid := range f.tombs {
		if sid == shotID && !present[id] {
			delete(f.tombs, id)
		}
	}
}

// Suppressed reports whether reconciliation must treat the entry as absent,
// regardless of what a remote read returned.
func (f *Fence) Suppressed(entryID uuid.UUID) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.tombs[entryID]; ok {
		return true
	}
	rec, ok := f.active[entryID]
	return ok && rec.kind.Destructive()
}
