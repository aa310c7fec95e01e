package engine

import (
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/shotline/shotline/internal/models"
)

func intp(v int) *int { return &v }

func entry(id uuid.UUID, pos *int, created time.Time) models.Entry {
	return models.Entry{
		ID:        id,
		ShotID:    uuid.Nil,
		AssetID:   uuid.New(),
		Kind:      models.EntryKindImage,
		Position:  pos,
		CreatedAt: created,
	}
}

func TestReconcile_PendingOverridesRemote(t *testing.T) {
	now := time.Now()
	a, b := uuid.New(), uuid.New()
	remote := []models.Entry{
		entry(a, intp(0), now),
		entry(b, intp(50), now.Add(time.Second)),
	}
	pending := map[uuid.UUID]int{b: 25}

	got := Reconcile(remote, nil, pending, nil)
	if len(got) != 2 {
		t.Fatalf("len = %d, want 2", len(got))
	}
	if got[0].ID != a || got[1].ID != b {
		t.Fatalf("order = [%s %s], want [a b]", got[0].ID, got[1].ID)
	}
	if *got[1].Position != 25 {
		t.Errorf("pending position not applied: got %d, want 25", *got[1].Position)
	}
}

func TestReconcile_KeepsOptimisticLocalEntries(t *testing.T) {
	now := time.Now()
	a, b := uuid.New(), uuid.New()
	remote := []models.Entry{entry(a, intp(0), now)}
	local := []models.Entry{entry(b, intp(50), now.Add(time.Second))}
	local[0].Optimistic = true

	got := Reconcile(remote, local, map[uuid.UUID]int{b: 50}, nil)
	if len(got) != 2 {
		t.Fatalf("len = %d, want 2 (optimistic entry dropped)", len(got))
	}
	if got[1].ID != b || !got[1].Optimistic {
		t.Errorf("optimistic entry not preserved at its pending position")
	}
}

func TestReconcile_SuppressedEntriesDropped(t *testing.T) {
	now := time.Now()
	a, b := uuid.New(), uuid.New()
	remote := []models.Entry{
		entry(a, intp(0), now),
		entry(b, intp(50), now),
	}
	suppressed := func(id uuid.UUID) bool { return id == b }

	got := Reconcile(remote, nil, nil, suppressed)
	if len(got) != 1 || got[0].ID != a {
		t.Fatalf("suppressed entry resurrected: %v", got)
	}
}

func TestReconcile_NullsLastStableByCreation(t *testing.T) {
	now := time.Now()
	a, b, c, d := uuid.New(), uuid.New(), uuid.New(), uuid.New()
	remote := []models.Entry{
		entry(a, nil, now.Add(2*time.Second)),
		entry(b, intp(100), now),
		entry(c, nil, now.Add(time.Second)),
		entry(d, intp(0), now),
	}

	got := Reconcile(remote, nil, nil, nil)
	wantOrder := []uuid.UUID{d, b, c, a}
	for i, id := range wantOrder {
		if got[i].ID != id {
			t.Fatalf("position %d = %s, want %s (full order %v)", i, got[i].ID, id, got)
		}
	}
}
