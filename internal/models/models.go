package models

import (
	"time"

	"github.com/google/uuid"
)

// ──────────────────── Enums ────────────────────

type EntryKind string

const (
	EntryKindImage EntryKind = "image"
	EntryKindVideo EntryKind = "video"
)

type MutationKind string

const (
	MutationInsert      MutationKind = "insert"
	MutationDuplicate   MutationKind = "duplicate"
	MutationDelete      MutationKind = "delete"
	MutationBatchDelete MutationKind = "batch_delete"
	MutationReorder     MutationKind = "reorder"
)

// Destructive reports whether a mutation removes entries from a shot.
// Only destructive mutations suppress fenced entries during reconciliation.
func (k MutationKind) Destructive() bool {
	return k == MutationDelete || k == MutationBatchDelete
}

type GenerationMode string

const (
	GenerationBatch    GenerationMode = "batch"
	GenerationPairwise GenerationMode = "pairwise"
)

type GenerationStatus string

const (
	GenerationPending  GenerationStatus = "pending"
	GenerationRunning  GenerationStatus = "running"
	GenerationComplete GenerationStatus = "complete"
	GenerationFailed   GenerationStatus = "failed"
)

// ──────────────────── Shot ────────────────────

// Shot is a named container owning an ordered set of entries.
type Shot struct {
	ID          uuid.UUID `json:"id" db:"id"`
	Name        string    `json:"name" db:"name"`
	AspectRatio *string   `json:"aspect_ratio,omitempty" db:"aspect_ratio"`
	EntryCount  int       `json:"entry_count" db:"-"`
	CreatedAt   time.Time `json:"created_at" db:"created_at"`
	UpdatedAt   time.Time `json:"updated_at" db:"updated_at"`
}

// ──────────────────── Entry ────────────────────

// Entry places one media asset on a shot's timeline. Position is nil for
// entries not yet placed (video outputs, loosely associated assets).
// Non-nil positions are unique within a shot.
type Entry struct {
	ID         uuid.UUID `json:"id" db:"id"`
	ShotID     uuid.UUID `json:"shot_id" db:"shot_id"`
	AssetID    uuid.UUID `json:"asset_id" db:"asset_id"`
	Kind       EntryKind `json:"kind" db:"kind"`
	Position   *int      `json:"position" db:"position"`
	Optimistic bool      `json:"optimistic" db:"-"`
	CreatedAt  time.Time `json:"created_at" db:"created_at"`
}

// Positioned reports whether the entry sits on the timeline.
func (e *Entry) Positioned() bool { return e.Position != nil }

// ──────────────────── Asset ────────────────────

// Asset is the underlying media resource an entry references. One asset may
// back multiple entries after duplication.
type Asset struct {
	ID        uuid.UUID `json:"id" db:"id"`
	Kind      EntryKind `json:"kind" db:"kind"`
	Path      string    `json:"path" db:"path"`
	Width     *int      `json:"width,omitempty" db:"width"`
	Height    *int      `json:"height,omitempty" db:"height"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

// ──────────────────── Generation ────────────────────

// GenerationJob records one generation request derived from a shot's ordering.
// Pairwise jobs carry the adjacent entry pair; batch jobs cover the whole shot.
type GenerationJob struct {
	ID           uuid.UUID        `json:"id" db:"id"`
	ShotID       uuid.UUID        `json:"shot_id" db:"shot_id"`
	Mode         GenerationMode   `json:"mode" db:"mode"`
	StartEntryID *uuid.UUID       `json:"start_entry_id,omitempty" db:"start_entry_id"`
	EndEntryID   *uuid.UUID       `json:"end_entry_id,omitempty" db:"end_entry_id"`
	Status       GenerationStatus `json:"status" db:"status"`
	Error        *string          `json:"error,omitempty" db:"error"`
	CreatedAt    time.Time        `json:"created_at" db:"created_at"`
	UpdatedAt    time.Time        `json:"updated_at" db:"updated_at"`
}
