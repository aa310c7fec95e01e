package engine

import (
	"sort"

	"github.com/google/uuid"

	"github.com/shotline/shotline/internal/models"
)

// Reconcile merges the most recent remote read with local state into the
// ordering consumers observe. Pending positions win over remote ones (the
// store has not caught up yet), local optimistic entries absent from the read
// are kept, and suppressed entries are dropped no matter what the read said.
// The result is sorted by position ascending, nil positions last, ties broken
// by creation time then ID so the ordering is stable across cycles.
func Reconcile(remote, local []models.Entry, pending map[uuid.UUID]int, suppressed func(uuid.UUID) bool) []models.Entry {
	out := make([]models.Entry, 0, len(remote)+len(local))
	seen := make(map[uuid.UUID]bool, len(remote))

	for _, e := range remote {
		if suppressed != nil && suppressed(e.ID) {
			continue
		}
		seen[e.ID] = true
		if p, ok := pending[e.ID]; ok && (e.Position == nil || *e.Position != p) {
			pos := p
			e.Position = &pos
		}
		out = append(out, e)
	}

	for _, e := range local {
		if !e.Optimistic || seen[e.ID] {
			continue
		}
		if suppressed != nil && suppressed(e.ID) {
			continue
		}
		if p, ok := pending[e.ID]; ok {
			pos := p
			e.Position = &pos
		}
		out = append(out, e)
	}

	sortEntries(out)
	return out
}

func sortEntries(entries []models.Entry) {
	sort.SliceStable(entries, func(i, j int) bool {
		a, b := entries[i], entries[j]
		switch {
		case a.Position != nil && b.Position != nil:
			if *a.Position != *b.Position {
				return *a.Position < *b.Position
			}
		case a.Position != nil:
			return true
		case b.Position != nil:
			return false
		}
		if !a.CreatedAt.Equal(b.CreatedAt) {
			return a.CreatedAt.Before(b.CreatedAt)
		}
		return a.ID.String() < b.ID.String()
	})
}
