package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"

	"github.com/shotline/shotline/internal/models"
)

type ShotRepository struct {
	db *sql.DB
}

func NewShotRepository(db *sql.DB) *ShotRepository {
	return &ShotRepository{db: db}
}

func (r *ShotRepository) Create(ctx context.Context, s *models.Shot) error {
	query := `
		INSERT INTO shots (id, name, aspect_ratio)
		VALUES ($1, $2, $3)
		RETURNING created_at, updated_at`
	return r.db.QueryRowContext(ctx, query, s.ID, s.Name, s.AspectRatio).
		Scan(&s.CreatedAt, &s.UpdatedAt)
}

func (r *ShotRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Shot, error) {
	s := &models.Shot{}
	query := `
		SELECT id, name, aspect_ratio, created_at, updated_at
		FROM shots WHERE id = $1`
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&s.ID, &s.Name, &s.AspectRatio, &s.CreatedAt, &s.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("shot not found")
	}
	return s, err
}

func (r *ShotRepository) List(ctx context.Context) ([]*models.Shot, error) {
	query := `
		SELECT s.id, s.name, s.aspect_ratio, s.created_at, s.updated_at,
		       COUNT(e.id) AS entry_count
		FROM shots s
		LEFT JOIN entries e ON e.shot_id = s.id
		GROUP BY s.id
		ORDER BY s.created_at`
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var shots []*models.Shot
	for rows.Next() {
		s := &models.Shot{}
		if err := rows.Scan(&s.ID, &s.Name, &s.AspectRatio,
			&s.CreatedAt, &s.UpdatedAt, &s.EntryCount); err != nil {
			return nil, err
		}
		shots = append(shots, s)
	}
	return shots, rows.Err()
}

func (r *ShotRepository) Update(ctx context.Context, s *models.Shot) error {
	query := `
		UPDATE shots SET name = $2, aspect_ratio = $3, updated_at = NOW()
		WHERE id = $1
		RETURNING updated_at`
	err := r.db.QueryRowContext(ctx, query, s.ID, s.Name, s.AspectRatio).
		Scan(&s.UpdatedAt)
	if err == sql.ErrNoRows {
		return fmt.Errorf("shot not found")
	}
	return err
}

// Delete removes a shot and its entries. Underlying assets stay untouched;
// entries only hold the positioning association.
func (r *ShotRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM shots WHERE id = $1`, id)
	if err != nil {
		return err
	}
	n, _ := result.RowsAffected()
	if n == 0 {
		return fmt.Errorf("shot not found")
	}
	return nil
}
