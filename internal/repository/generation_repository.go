package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"

	"github.com/shotline/shotline/internal/models"
)

type GenerationRepository struct {
	db *sql.DB
}

func NewGenerationRepository(db *sql.DB) *GenerationRepository {
	return &GenerationRepository{db: db}
}

func (r *GenerationRepository) Create(ctx context.Context, j *models.GenerationJob) error {
	query := `
		INSERT INTO generation_jobs (id, shot_id, mode, start_entry_id, end_entry_id, status)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING created_at, updated_at`
	return r.db.QueryRowContext(ctx, query,
		j.ID, j.ShotID, j.Mode, j.StartEntryID, j.EndEntryID, j.Status).
		Scan(&j.CreatedAt, &j.UpdatedAt)
}

func (r *GenerationRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.GenerationJob, error) {
	j := &models.GenerationJob{}
	query := `
		SELECT id, shot_id, mode, start_entry_id, end_entry_id, status, error,
		       created_at, updated_at
		FROM generation_jobs WHERE id = $1`
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&j.ID, &j.ShotID, &j.Mode, &j.StartEntryID, &j.EndEntryID,
		&j.Status, &j.Error, &j.CreatedAt, &j.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("generation job not found")
	}
	return j, err
}

func (r *GenerationRepository) ListByShot(ctx context.Context, shotID uuid.UUID) ([]*models.GenerationJob, error) {
	query := `
		SELECT id, shot_id, mode, start_entry_id, end_entry_id, status, error,
		       created_at, updated_at
		FROM generation_jobs WHERE shot_id = $1 ORDER BY created_at DESC`
	rows, err := r.db.QueryContext(ctx, query, shotID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var jobs []*models.GenerationJob
	for rows.Next() {
		j := &models.GenerationJob{}
		if err := rows.Scan(&j.ID, &j.ShotID, &j.Mode, &j.StartEntryID,
			&j.EndEntryID, &j.Status, &j.Error, &j.CreatedAt, &j.UpdatedAt); err != nil {
			return nil, err
		}
		jobs = append(jobs, j)
	}
	return jobs, rows.Err()
}

func (r *GenerationRepository) UpdateStatus(ctx context.Context, id uuid.UUID, status models.GenerationStatus, jobErr *string) error {
	result, err := r.db.ExecContext(ctx, `
		UPDATE generation_jobs SET status = $2, error = $3, updated_at = NOW()
		WHERE id = $1`, id, status, jobErr)
	if err != nil {
		return err
	}
	n, _ := result.RowsAffected()
	if n == 0 {
		return fmt.Errorf("generation job not found")
	}
	return nil
}
