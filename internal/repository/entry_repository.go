package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"github.com/shotline/shotline/internal/engine"
	"github.com/shotline/shotline/internal/models"
)

// EntryRepository is the remote entry store the engine persists against.
// It implements engine.EntryStore.
type EntryRepository struct {
	db *sql.DB
}

func NewEntryRepository(db *sql.DB) *EntryRepository {
	return &EntryRepository{db: db}
}

func (r *EntryRepository) ListEntries(ctx context.Context, shotID uuid.UUID, f engine.ListFilter) ([]models.Entry, error) {
	query := `
		SELECT id, shot_id, asset_id, kind, position, created_at
		FROM entries WHERE shot_id = $1`
	args := []interface{}{shotID}
	if f.PositionedOnly {
		query += ` AND position IS NOT NULL`
	}
	if f.Kind != nil {
		args = append(args, *f.Kind)
		query += fmt.Sprintf(` AND kind = $%d`, len(args))
	}
	query += ` ORDER BY position NULLS LAST, created_at, id`

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []models.Entry
	for rows.Next() {
		var e models.Entry
		if err := rows.Scan(&e.ID, &e.ShotID, &e.AssetID, &e.Kind,
			&e.Position, &e.CreatedAt); err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

func (r *EntryRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Entry, error) {
	e := &models.Entry{}
	query := `
		SELECT id, shot_id, asset_id, kind, position, created_at
		FROM entries WHERE id = $1`
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&e.ID, &e.ShotID, &e.AssetID, &e.Kind, &e.Position, &e.CreatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("entry not found")
	}
	return e, err
}

// CreateEntry upserts by entry ID so a re-issued write after a transient
// failure stays safe.
func (r *EntryRepository) CreateEntry(ctx context.Context, e *models.Entry) error {
	query := `
		INSERT INTO entries (id, shot_id, asset_id, kind, position, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (id) DO UPDATE SET position = EXCLUDED.position`
	_, err := r.db.ExecContext(ctx, query,
		e.ID, e.ShotID, e.AssetID, e.Kind, e.Position, e.CreatedAt)
	return err
}

func (r *EntryRepository) UpdateEntryPosition(ctx context.Context, entryID uuid.UUID, position *int) error {
	result, err := r.db.ExecContext(ctx,
		`UPDATE entries SET position = $2 WHERE id = $1`, entryID, position)
	if err != nil {
		return err
	}
	n, _ := result.RowsAffected()
	if n == 0 {
		return fmt.Errorf("entry not found")
	}
	return nil
}

func (r *EntryRepository) DeleteEntry(ctx context.Context, entryID uuid.UUID) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM entries WHERE id = $1`, entryID)
	return err
}

func (r *EntryRepository) DeleteEntries(ctx context.Context, entryIDs []uuid.UUID) error {
	ids := make([]string, len(entryIDs))
	for i, id := range entryIDs {
		ids[i] = id.String()
	}
	_, err := r.db.ExecContext(ctx,
		`DELETE FROM entries WHERE id = ANY($1)`, pq.Array(ids))
	return err
}
