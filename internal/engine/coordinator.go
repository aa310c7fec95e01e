// Package engine keeps a shot's ordered entries consistent across optimistic
// local edits, an eventually-consistent remote store and concurrent in-flight
// mutations. Positions are always computed against the current local occupied
// set, never against a snapshot captured earlier.
package engine

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/shotline/shotline/internal/events"
	"github.com/shotline/shotline/internal/models"
	"github.com/shotline/shotline/internal/timeline"
)

// OnErrorFunc surfaces asynchronous persistence failures after rollback. It
// must not block; the shot stays interactively usable after any failure.
type OnErrorFunc func(shotID uuid.UUID, kind models.MutationKind, err error)

type Options struct {
	Gap        int           // append gap, default timeline.DefaultGap
	Spacing    int           // batch/reorder spacing, default timeline.DefaultGap
	RetryDelay time.Duration // delay before the single empty-read retry
	OnError    OnErrorFunc
}

type shotState struct {
	loaded  bool
	entries []models.Entry
}

// Coordinator orchestrates optimistic mutations: apply locally, persist
// remotely, reconcile on success, roll back on failure. Insert and duplicate
// return before persistence completes; destructive operations and reorders
// block on remote confirmation.
type Coordinator struct {
	store      EntryStore
	fence      *Fence
	bus        *events.Bus
	pending    *pendingPositions
	gap        int
	spacing    int
	retryDelay time.Duration
	onError    OnErrorFunc

	mu    sync.Mutex
	shots map[uuid.UUID]*shotState
	index map[uuid.UUID]uuid.UUID // entryID → shotID

	wg sync.WaitGroup
}

func New(store EntryStore, bus *events.Bus, opts Options) *Coordinator {
	if opts.Gap < 1 {
		opts.Gap = timeline.DefaultGap
	}
	if opts.Spacing < 1 {
		opts.Spacing = timeline.DefaultGap
	}
	if opts.RetryDelay <= 0 {
		opts.RetryDelay = 250 * time.Millisecond
	}
	if bus == nil {
		bus = events.NewBus()
	}
	return &Coordinator{
		store:      store,
		fence:      NewFence(),
		bus:        bus,
		pending:    newPendingPositions(),
		gap:        opts.Gap,
		spacing:    opts.Spacing,
		retryDelay: opts.RetryDelay,
		onError:    opts.OnError,
		shots:      make(map[uuid.UUID]*shotState),
		index:      make(map[uuid.UUID]uuid.UUID),
	}
}

// Flush waits for all in-flight asynchronous persistence to settle.
func (c *Coordinator) Flush() { c.wg.Wait() }

// ──────────────────── Reads ────────────────────

// Entries returns the reconciled view of a shot, loading it on first access.
func (c *Coordinator) Entries(ctx context.Context, shotID uuid.UUID, f ListFilter) ([]models.Entry, error) {
	c.mu.Lock()
	st, ok := c.shots[shotID]
	if ok && st.loaded {
		out := filterEntries(cloneEntries(st.entries), f)
		c.mu.Unlock()
		return out, nil
	}
	c.mu.Unlock()

	all, err := c.Refresh(ctx, shotID)
	if err != nil {
		return nil, err
	}
	return filterEntries(all, f), nil
}

// Refresh reads the remote store and reconciles it with pending local state.
// An empty read while the local view holds confirmed entries is retried once
// after a short delay; a second empty read is a hard failure.
func (c *Coordinator) Refresh(ctx context.Context, shotID uuid.UUID) ([]models.Entry, error) {
	remote, err := c.store.ListEntries(ctx, shotID, ListFilter{})
	if err != nil {
		return nil, &PersistenceError{Op: "list entries", Err: err}
	}
	if len(remote) == 0 && c.expectsEntries(shotID) {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(c.retryDelay):
		}
		remote, err = c.store.ListEntries(ctx, shotID, ListFilter{})
		if err != nil {
			return nil, &PersistenceError{Op: "list entries", Err: err}
		}
		if len(remote) == 0 {
			return nil, ErrNotFoundAfterRetry
		}
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	present := make(map[uuid.UUID]bool, len(remote))
	for _, e := range remote {
		present[e.ID] = true
		if p, ok := c.pending.Get(e.ID); ok && e.Position != nil && *e.Position == p {
			c.pending.Remove(e.ID) // store caught up
		}
	}
	c.fence.Sweep(shotID, present)

	st := c.stateLocked(shotID)
	var local []models.Entry
	for _, e := range st.entries {
		if e.Optimistic {
			local = append(local, e)
		}
	}
	st.entries = Reconcile(remote, local, c.pending.Snapshot(), c.fence.Suppressed)
	st.loaded = true
	c.reindexLocked(shotID, st)
	return cloneEntries(st.entries), nil
}

// expectsEntries reports whether the local view holds confirmed entries, i.e.
// an empty remote read would mean the store has not caught up yet.
func (c *Coordinator) expectsEntries(shotID uuid.UUID) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	st, ok := c.shots[shotID]
	if !ok {
		return false
	}
	for _, e := range st.entries {
		if !e.Optimistic {
			return true
		}
	}
	return false
}

// ──────────────────── Insert ────────────────────

// Insert places a new entry optimistically and returns its ID before the
// remote write completes. Videos join the shot unpositioned; they render in a
// separate gallery and never participate in allocation.
func (c *Coordinator) Insert(ctx context.Context, shotID, assetID uuid.UUID, kind models.EntryKind, preferred *int) (uuid.UUID, error) {
	if err := c.ensure(ctx, shotID); err != nil {
		return uuid.Nil, err
	}

	entry := models.Entry{
		ID:         uuid.New(),
		ShotID:     shotID,
		AssetID:    assetID,
		Kind:       kind,
		Optimistic: true,
		CreatedAt:  time.Now().UTC(),
	}

	c.mu.Lock()
	st := c.stateLocked(shotID)
	if kind == models.EntryKindImage {
		pos := timeline.NextAvailable(c.occupiedLocked(st), preferred, c.gap)
		entry.Position = &pos
		c.pending.Set(entry.ID, pos)
	}
	st.entries = append(st.entries, entry)
	sortEntries(st.entries)
	c.index[entry.ID] = shotID
	c.mu.Unlock()

	c.publish(shotID, models.MutationInsert, []uuid.UUID{entry.ID}, events.PhaseStarted)

	persisted := entry // copy for the write; Optimistic is local-only
	c.wg.Add(1)
	go func() {
		defer c.wg.Done()
		bg := context.WithoutCancel(ctx)
		if err := c.store.CreateEntry(bg, &persisted); err != nil {
			c.rollbackInsert(shotID, entry.ID)
			c.fail(shotID, models.MutationInsert, &PersistenceError{Op: "create entry", Err: err})
		} else {
			c.confirmInsert(shotID, entry.ID)
		}
		c.publish(shotID, models.MutationInsert, []uuid.UUID{entry.ID}, events.PhaseEnded)
	}()

	return entry.ID, nil
}

// BatchItem is one asset joining a shot in a batch insert.
type BatchItem struct {
	AssetID uuid.UUID
	Kind    models.EntryKind
}

// InsertBatch appends a batch of entries, spacing images via the planner so a
// batch insert and a run of single inserts land identically. Videos in the
// batch are created unpositioned.
func (c *Coordinator) InsertBatch(ctx context.Context, shotID uuid.UUID, items []BatchItem, start *int) ([]uuid.UUID, error) {
	if len(items) == 0 {
		return nil, nil
	}
	if err := c.ensure(ctx, shotID); err != nil {
		return nil, err
	}

	imageCount := 0
	for _, it := range items {
		if it.Kind == models.EntryKindImage {
			imageCount++
		}
	}

	c.mu.Lock()
	st := c.stateLocked(shotID)
	occupied := c.occupiedLocked(st)
	startPos := 0
	if imageCount > 0 {
		if start != nil {
			startPos = *start
		} else {
			startPos = timeline.NextAvailable(occupied, nil, c.gap)
		}
	}
	positions := timeline.Plan(imageCount, startPos, occupied, c.spacing)

	now := time.Now().UTC()
	ids := make([]uuid.UUID, 0, len(items))
	created := make([]models.Entry, 0, len(items))
	pi := 0
	for _, it := range items {
		e := models.Entry{
			ID:         uuid.New(),
			ShotID:     shotID,
			AssetID:    it.AssetID,
			Kind:       it.Kind,
			Optimistic: true,
			CreatedAt:  now,
		}
		if it.Kind == models.EntryKindImage {
			pos := positions[pi]
			pi++
			e.Position = &pos
			c.pending.Set(e.ID, pos)
		}
		st.entries = append(st.entries, e)
		c.index[e.ID] = shotID
		ids = append(ids, e.ID)
		created = append(created, e)
	}
	sortEntries(st.entries)
	c.mu.Unlock()

	c.publish(shotID, models.MutationInsert, ids, events.PhaseStarted)

	c.wg.Add(1)
	go func() {
		defer c.wg.Done()
		bg := context.WithoutCancel(ctx)
		for _, e := range created {
			persisted := e
			if err := c.store.CreateEntry(bg, &persisted); err != nil {
				c.rollbackInsert(shotID, e.ID)
				c.fail(shotID, models.MutationInsert, &PersistenceError{Op: "create entry", Err: err})
				continue
			}
			c.confirmInsert(shotID, e.ID)
		}
		c.publish(shotID, models.MutationInsert, ids, events.PhaseEnded)
	}()

	return ids, nil
}

func (c *Coordinator) confirmInsert(shotID, entryID uuid.UUID) {
	c.mu.Lock()
	defer c.mu.Unlock()
	st, ok := c.shots[shotID]
	if !ok {
		return
	}
	for i := range st.entries {
		if st.entries[i].ID == entryID {
			st.entries[i].Optimistic = false
			return
		}
	}
}

func (c *Coordinator) rollbackInsert(shotID, entryID uuid.UUID) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.pending.Remove(entryID)
	delete(c.index, entryID)
	st, ok := c.shots[shotID]
	if !ok {
		return
	}
	for i := range st.entries {
		if st.entries[i].ID == entryID {
			st.entries = append(st.entries[:i], st.entries[i+1:]...)
			return
		}
	}
}

// ──────────────────── Duplicate ────────────────────

// Duplicate inserts a copy of an entry directly after it, halfway to its
// successor. When the two neighbors are adjacent integers the suffix from the
// successor onward is shifted up by one gap first, then the midpoint retried —
// a duplicate position is never produced. Duplicating an entry that is itself
// still optimistic is rejected; its remote identifier does not exist yet.
func (c *Coordinator) Duplicate(ctx context.Context, entryID uuid.UUID) (uuid.UUID, error) {
	c.mu.Lock()
	shotID, st, src, ok := c.findLocked(entryID)
	if !ok {
		c.mu.Unlock()
		return uuid.Nil, ErrNotFound
	}
	if src.Optimistic {
		c.mu.Unlock()
		return uuid.Nil, ErrStaleTarget
	}

	dup := models.Entry{
		ID:         uuid.New(),
		ShotID:     shotID,
		AssetID:    src.AssetID,
		Kind:       src.Kind,
		Optimistic: true,
		CreatedAt:  time.Now().UTC(),
	}

	var moved []posChange
	if src.Kind == models.EntryKindImage && src.Position != nil {
		before := *src.Position
		after := nextImagePosition(st.entries, before)
		mid, ok := timeline.Midpoint(before, after, c.gap)
		if !ok {
			// No integer room between the neighbors: renumber the shifted
			// suffix upward by one gap and retry.
			moved = c.shiftSuffixLocked(st, *after, c.gap)
			widened := *after + c.gap
			mid, ok = timeline.Midpoint(before, &widened, c.gap)
			if !ok {
				c.mu.Unlock()
				return uuid.Nil, ErrAllocation
			}
		}
		dup.Position = &mid
		c.pending.Set(dup.ID, mid)
	}

	st.entries = append(st.entries, dup)
	sortEntries(st.entries)
	c.index[dup.ID] = shotID
	c.fence.Begin(shotID, models.MutationDuplicate, []uuid.UUID{dup.ID})
	c.mu.Unlock()

	c.publish(shotID, models.MutationDuplicate, []uuid.UUID{dup.ID}, events.PhaseStarted)

	persisted := dup
	movedCopy := append([]posChange(nil), moved...)
	c.wg.Add(1)
	go func() {
		defer c.wg.Done()
		bg := context.WithoutCancel(ctx)
		err := c.persistMoves(bg, movedCopy)
		if err == nil {
			err = c.store.CreateEntry(bg, &persisted)
			if err != nil {
				err = &PersistenceError{Op: "create entry", Err: err}
			}
		}
		if err != nil {
			c.rollbackInsert(shotID, dup.ID)
			undone := c.revertMoves(shotID, movedCopy)
			c.compensateMoves(bg, undone)
			c.fail(shotID, models.MutationDuplicate, err)
		} else {
			c.confirmInsert(shotID, dup.ID)
		}
		c.fence.End(shotID, models.MutationDuplicate, []uuid.UUID{dup.ID})
		c.publish(shotID, models.MutationDuplicate, []uuid.UUID{dup.ID}, events.PhaseEnded)
	}()

	return dup.ID, nil
}

// ──────────────────── Delete ────────────────────

// Delete removes an entry and blocks until the remote store confirms. When
// the deleted entry held the unique minimum position, the leading gap is
// closed: every remaining positioned entry shifts down by the original first
// gap. Deleting any other entry moves nothing else.
func (c *Coordinator) Delete(ctx context.Context, entryID uuid.UUID) error {
	c.mu.Lock()
	shotID, _, e, ok := c.findLocked(entryID)
	if !ok {
		c.mu.Unlock()
		return ErrNotFound
	}
	if e.Optimistic {
		c.mu.Unlock()
		return ErrStaleTarget
	}
	c.mu.Unlock()
	return c.deleteEntries(ctx, shotID, models.MutationDelete, []uuid.UUID{entryID})
}

// BatchDelete removes several entries, grouped per shot, each group as one
// fenced mutation.
func (c *Coordinator) BatchDelete(ctx context.Context, entryIDs []uuid.UUID) error {
	byShot := make(map[uuid.UUID][]uuid.UUID)
	c.mu.Lock()
	for _, id := range entryIDs {
		shotID, _, e, ok := c.findLocked(id)
		if !ok {
			c.mu.Unlock()
			return fmt.Errorf("%w: %s", ErrNotFound, id)
		}
		if e.Optimistic {
			c.mu.Unlock()
			return ErrStaleTarget
		}
		byShot[shotID] = append(byShot[shotID], id)
	}
	c.mu.Unlock()

	for shotID, ids := range byShot {
		if err := c.deleteEntries(ctx, shotID, models.MutationBatchDelete, ids); err != nil {
			return err
		}
	}
	return nil
}

func (c *Coordinator) deleteEntries(ctx context.Context, shotID uuid.UUID, kind models.MutationKind, ids []uuid.UUID) error {
	idSet := make(map[uuid.UUID]bool, len(ids))
	for _, id := range ids {
		idSet[id] = true
	}

	c.mu.Lock()
	st := c.stateLocked(shotID)

	var removed []models.Entry
	kept := st.entries[:0:0]
	lowestDeleted := (*int)(nil)
	for _, e := range st.entries {
		if !idSet[e.ID] {
			kept = append(kept, e)
			continue
		}
		removed = append(removed, e)
		if e.Kind == models.EntryKindImage && e.Position != nil {
			if lowestDeleted == nil || *e.Position < *lowestDeleted {
				p := *e.Position
				lowestDeleted = &p
			}
		}
	}
	if len(removed) != len(ids) {
		c.mu.Unlock()
		return ErrNotFound
	}
	st.entries = kept
	for _, e := range removed {
		delete(c.index, e.ID)
		c.pending.Remove(e.ID)
	}

	var moved []posChange
	if lowestDeleted != nil {
		var remaining []int
		for _, e := range st.entries {
			if e.Kind == models.EntryKindImage && e.Position != nil {
				remaining = append(remaining, *e.Position)
			}
		}
		if shift := timeline.LeadingGapShift(*lowestDeleted, remaining); shift > 0 {
			for i := range st.entries {
				e := &st.entries[i]
				if e.Kind != models.EntryKindImage || e.Position == nil {
					continue
				}
				old := *e.Position
				np := old - shift
				moved = append(moved, posChange{id: e.ID, oldPos: &old, newPos: np})
				e.Position = &np
				c.pending.Set(e.ID, np)
			}
		}
	}
	// Fence before releasing the lock so a racing refresh cannot slip in
	// between the local apply and the suppression window.
	c.fence.Begin(shotID, kind, ids)
	c.mu.Unlock()

	c.publish(shotID, kind, ids, events.PhaseStarted)

	var err error
	if len(ids) == 1 {
		err = c.store.DeleteEntry(ctx, ids[0])
	} else {
		err = c.store.DeleteEntries(ctx, ids)
	}
	if err != nil {
		err = &PersistenceError{Op: "delete entries", Err: err}
	} else if mvErr := c.persistMoves(ctx, moved); mvErr != nil {
		err = mvErr
	}

	if err != nil {
		c.mu.Lock()
		st := c.stateLocked(shotID)
		undone := c.revertMovesLocked(st, moved)
		// Re-add the rows the store still holds. A mutation that completed
		// while the delete was in flight may have claimed an old position;
		// such a row comes back at the nearest free one instead.
		occupied := c.occupiedLocked(st)
		var relocated []posChange
		for _, e := range removed {
			if e.Kind == models.EntryKindImage && e.Position != nil && occupied[*e.Position] {
				old := *e.Position
				np := timeline.NextAvailable(occupied, &old, c.gap)
				e.Position = &np
				c.pending.Set(e.ID, np)
				relocated = append(relocated, posChange{id: e.ID, oldPos: &old, newPos: np})
			}
			if e.Position != nil {
				occupied[*e.Position] = true
			}
			st.entries = append(st.entries, e)
			c.index[e.ID] = shotID
		}
		sortEntries(st.entries)
		c.mu.Unlock()

		c.compensateMoves(ctx, undone)
		if perr := c.persistMoves(ctx, relocated); perr != nil {
			log.Printf("[engine] relocating restored entries on shot %s failed: %v", shotID, perr)
		}
		c.fence.End(shotID, kind, ids)
		c.publish(shotID, kind, ids, events.PhaseEnded)
		return err
	}

	c.fence.Bury(shotID, ids)
	c.fence.End(shotID, kind, ids)
	c.publish(shotID, kind, ids, events.PhaseEnded)
	return nil
}

// ──────────────────── Reorder ────────────────────

// Reorder assigns fresh planner positions to the shot's positioned images in
// the given order and blocks until every update persists. The ID list must be
// a permutation of the currently positioned images.
func (c *Coordinator) Reorder(ctx context.Context, shotID uuid.UUID, ordered []uuid.UUID) error {
	if err := c.ensure(ctx, shotID); err != nil {
		return err
	}

	c.mu.Lock()
	st := c.stateLocked(shotID)
	positioned := make(map[uuid.UUID]*models.Entry)
	for i := range st.entries {
		e := &st.entries[i]
		if e.Kind == models.EntryKindImage && e.Position != nil {
			positioned[e.ID] = e
		}
	}
	if len(ordered) != len(positioned) {
		c.mu.Unlock()
		return fmt.Errorf("%w: reorder must cover all %d positioned entries", ErrNotFound, len(positioned))
	}
	seen := make(map[uuid.UUID]bool, len(ordered))
	for _, id := range ordered {
		e, ok := positioned[id]
		if !ok || seen[id] {
			c.mu.Unlock()
			return fmt.Errorf("%w: %s", ErrNotFound, id)
		}
		if e.Optimistic {
			c.mu.Unlock()
			return ErrStaleTarget
		}
		seen[id] = true
	}

	positions := timeline.Plan(len(ordered), 0, nil, c.spacing)
	var moved []posChange
	for i, id := range ordered {
		e := positioned[id]
		old := *e.Position
		np := positions[i]
		if old == np {
			continue
		}
		moved = append(moved, posChange{id: id, oldPos: &old, newPos: np})
		e.Position = &np
		c.pending.Set(id, np)
	}
	sortEntries(st.entries)
	c.mu.Unlock()

	c.publish(shotID, models.MutationReorder, ordered, events.PhaseStarted)

	if err := c.persistMoves(ctx, moved); err != nil {
		undone := c.revertMoves(shotID, moved)
		c.compensateMoves(ctx, undone)
		c.publish(shotID, models.MutationReorder, ordered, events.PhaseEnded)
		return err
	}

	c.publish(shotID, models.MutationReorder, ordered, events.PhaseEnded)
	return nil
}

// ──────────────────── Shared internals ────────────────────

type posChange struct {
	id     uuid.UUID
	oldPos *int
	newPos int
}

func (c *Coordinator) persistMoves(ctx context.Context, moves []posChange) error {
	for _, m := range moves {
		np := m.newPos
		if err := c.store.UpdateEntryPosition(ctx, m.id, &np); err != nil {
			return &PersistenceError{Op: "update position", Err: err}
		}
	}
	return nil
}

func (c *Coordinator) revertMoves(shotID uuid.UUID, moves []posChange) []posChange {
	c.mu.Lock()
	defer c.mu.Unlock()
	st, ok := c.shots[shotID]
	if !ok {
		return nil
	}
	return c.revertMovesLocked(st, moves)
}

// revertMovesLocked undoes recorded moves in local state and returns the moves
// it actually undid. An entry no longer sitting at the move's target has been
// repositioned by a later mutation in the meantime; it is left alone, pending
// override included, so that mutation's confirmed positions survive the
// rollback. Caller holds c.mu.
func (c *Coordinator) revertMovesLocked(st *shotState, moves []posChange) []posChange {
	var undone []posChange
	for _, m := range moves {
		for i := range st.entries {
			e := &st.entries[i]
			if e.ID != m.id {
				continue
			}
			if e.Position != nil && *e.Position == m.newPos {
				e.Position = m.oldPos
				if p, ok := c.pending.Get(m.id); ok && p == m.newPos {
					c.pending.Remove(m.id)
				}
				undone = append(undone, m)
			}
			break
		}
	}
	sortEntries(st.entries)
	return undone
}

// compensateMoves restores remote positions for moves undone locally after a
// partial failure. Best effort: a miss leaves the remote row where the failed
// mutation put it, and the pending overlay keeps the reconciled view correct
// until the store is written again.
func (c *Coordinator) compensateMoves(ctx context.Context, moves []posChange) {
	for _, m := range moves {
		if err := c.store.UpdateEntryPosition(ctx, m.id, m.oldPos); err != nil {
			log.Printf("[engine] compensating move for entry %s failed: %v", m.id, err)
		}
	}
}

// shiftSuffixLocked moves every positioned image at or above from upward by
// delta, recording the moves for persistence and rollback. Caller holds c.mu.
func (c *Coordinator) shiftSuffixLocked(st *shotState, from, delta int) []posChange {
	var moved []posChange
	// Shift highest first so intermediate states never collide.
	for {
		var pick *models.Entry
		for i := range st.entries {
			e := &st.entries[i]
			if e.Kind != models.EntryKindImage || e.Position == nil || *e.Position < from {
				continue
			}
			already := false
			for _, m := range moved {
				if m.id == e.ID {
					already = true
					break
				}
			}
			if already {
				continue
			}
			if pick == nil || *e.Position > *pick.Position {
				pick = e
			}
		}
		if pick == nil {
			break
		}
		old := *pick.Position
		np := old + delta
		moved = append(moved, posChange{id: pick.ID, oldPos: &old, newPos: np})
		pick.Position = &np
		c.pending.Set(pick.ID, np)
	}
	return moved
}

func (c *Coordinator) ensure(ctx context.Context, shotID uuid.UUID) error {
	c.mu.Lock()
	st, ok := c.shots[shotID]
	loaded := ok && st.loaded
	c.mu.Unlock()
	if loaded {
		return nil
	}
	_, err := c.Refresh(ctx, shotID)
	return err
}

func (c *Coordinator) stateLocked(shotID uuid.UUID) *shotState {
	st, ok := c.shots[shotID]
	if !ok {
		st = &shotState{}
		c.shots[shotID] = st
	}
	return st
}

func (c *Coordinator) reindexLocked(shotID uuid.UUID, st *shotState) {
	for id, sid := range c.index {
		if sid == shotID {
			delete(c.index, id)
		}
	}
	for _, e := range st.entries {
		c.index[e.ID] = shotID
	}
}

func (c *Coordinator) findLocked(entryID uuid.UUID) (uuid.UUID, *shotState, *models.Entry, bool) {
	shotID, ok := c.index[entryID]
	if !ok {
		return uuid.Nil, nil, nil, false
	}
	st, ok := c.shots[shotID]
	if !ok {
		return uuid.Nil, nil, nil, false
	}
	for i := range st.entries {
		if st.entries[i].ID == entryID {
			return shotID, st, &st.entries[i], true
		}
	}
	return uuid.Nil, nil, nil, false
}

// occupiedLocked collects the positions of the shot's images. Videos never
// participate in allocation. Caller holds c.mu.
func (c *Coordinator) occupiedLocked(st *shotState) map[int]bool {
	set := make(map[int]bool)
	for _, e := range st.entries {
		if e.Kind == models.EntryKindImage && e.Position != nil {
			set[*e.Position] = true
		}
	}
	return set
}

// nextImagePosition returns the smallest image position strictly greater than
// after, or nil when none exists.
func nextImagePosition(entries []models.Entry, after int) *int {
	var next *int
	for i := range entries {
		e := &entries[i]
		if e.Kind != models.EntryKindImage || e.Position == nil || *e.Position <= after {
			continue
		}
		if next == nil || *e.Position < *next {
			p := *e.Position
			next = &p
		}
	}
	return next
}

func (c *Coordinator) publish(shotID uuid.UUID, kind models.MutationKind, ids []uuid.UUID, phase events.Phase) {
	c.bus.Publish(events.Mutation{ShotID: shotID, Kind: kind, EntryIDs: ids, Phase: phase})
}

func (c *Coordinator) fail(shotID uuid.UUID, kind models.MutationKind, err error) {
	log.Printf("[engine] %s on shot %s rolled back: %v", kind, shotID, err)
	if c.onError != nil {
		c.onError(shotID, kind, err)
	}
}

func cloneEntries(entries []models.Entry) []models.Entry {
	out := make([]models.Entry, len(entries))
	copy(out, entries)
	return out
}

func filterEntries(entries []models.Entry, f ListFilter) []models.Entry {
	if !f.PositionedOnly && f.Kind == nil {
		return entries
	}
	out := entries[:0:0]
	for _, e := range entries {
		if f.PositionedOnly && e.Position == nil {
			continue
		}
		if f.Kind != nil && e.Kind != *f.Kind {
			continue
		}
		out = append(out, e)
	}
	return out
}
