package engine

import (
	"testing"

	"github.com/google/uuid"

	"github.com/shotline/shotline/internal/models"
)

func TestFence_DestructiveSuppression(t *testing.T) {
	f := NewFence()
	shot := uuid.New()
	id := uuid.New()

	if f.Suppressed(id) {
		t.Fatal("fresh fence suppresses nothing")
	}

	f.Begin(shot, models.MutationDelete, []uuid.UUID{id})
	if !f.Suppressed(id) {
		t.Fatal("active delete fence must suppress the entry")
	}

	f.End(shot, models.MutationDelete, []uuid.UUID{id})
	if f.Suppressed(id) {
		t.Fatal("lifted fence without tombstone must not suppress")
	}
}

func TestFence_DuplicateIsNotSuppressing(t *testing.T) {
	f := NewFence()
	shot := uuid.New()
	id := uuid.New()

	f.Begin(shot, models.MutationDuplicate, []uuid.UUID{id})
	if f.Suppressed(id) {
		t.Fatal("duplicate fence must not hide the entry from reads")
	}
	f.End(shot, models.MutationDuplicate, []uuid.UUID{id})
}

func TestFence_TombstoneUntilSwept(t *testing.T) {
	f := NewFence()
	shot := uuid.New()
	id := uuid.New()

	f.Begin(shot, models.MutationDelete, []uuid.UUID{id})
	f.Bury(shot, []uuid.UUID{id})
	f.End(shot, models.MutationDelete, []uuid.UUID{id})

	// A read issued before the delete can resolve after mutation-end and
	// still carry the dead row; the tombstone keeps it suppressed.
	if !f.Suppressed(id) {
		t.Fatal("buried entry must stay suppressed after End")
	}

	// A read that still reports the row does not clear the tombstone.
	f.Sweep(shot, map[uuid.UUID]bool{id: true})
	if !f.Suppressed(id) {
		t.Fatal("tombstone cleared while remote still reports the row")
	}

	// Once a read omits the row, the store has caught up.
	f.Sweep(shot, map[uuid.UUID]bool{})
	if f.Suppressed(id) {
		t.Fatal("tombstone not cleared after remote caught up")
	}
}

func TestFence_EndOnlyLiftsMatchingKind(t *testing.T) {
	f := NewFence()
	shot := uuid.New()
	id := uuid.New()

	f.Begin(shot, models.MutationDelete, []uuid.UUID{id})
	f.End(shot, models.MutationBatchDelete, []uuid.UUID{id})
	if !f.Suppressed(id) {
		t.Fatal("End with a different kind must not lift the fence")
	}
	f.End(shot, models.MutationDelete, []uuid.UUID{id})
	if f.Suppressed(id) {
		t.Fatal("matching End must lift the fence")
	}
}
