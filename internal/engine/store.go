package engine

import (
	"context"

	"github.com/google/uuid"

	"github.com/shotline/shotline/internal/models"
)

// ListFilter narrows an entry listing. The engine itself always reads
// unfiltered; the filters exist for external readers (galleries show only
// videos, the timeline only positioned images).
type ListFilter struct {
	PositionedOnly bool
	Kind           *models.EntryKind
}

// EntryStore is the remote source of truth for entries. Writes are keyed by
// entry ID and must be safe to re-issue after a transient failure.
type EntryStore interface {
	ListEntries(ctx context.Context, shotID uuid.UUID, f ListFilter) ([]models.Entry, error)
	CreateEntry(ctx context.Context, e *models.Entry) error
	UpdateEntryPosition(ctx context.Context, entryID uuid.UUID, position *int) error
	DeleteEntry(ctx context.Context, entryID uuid.UUID) error
	DeleteEntries(ctx context.Context, entryIDs []uuid.UUID) error
}
