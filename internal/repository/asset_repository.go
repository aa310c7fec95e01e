package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"

	"github.com/shotline/shotline/internal/models"
)

type AssetRepository struct {
	db *sql.DB
}

func NewAssetRepository(db *sql.DB) *AssetRepository {
	return &AssetRepository{db: db}
}

func (r *AssetRepository) Create(ctx context.Context, a *models.Asset) error {
	query := `
		INSERT INTO assets (id, kind, path, width, height)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING created_at`
	return r.db.QueryRowContext(ctx, query,
		a.ID, a.Kind, a.Path, a.Width, a.Height).Scan(&a.CreatedAt)
}

func (r *AssetRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Asset, error) {
	a := &models.Asset{}
	query := `
		SELECT id, kind, path, width, height, created_at
		FROM assets WHERE id = $1`
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&a.ID, &a.Kind, &a.Path, &a.Width, &a.Height, &a.CreatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("asset not found")
	}
	return a, err
}

// FindByPath returns nil without error when no asset matches, so the watcher
// can skip files it already registered.
func (r *AssetRepository) FindByPath(ctx context.Context, path string) (*models.Asset, error) {
	a := &models.Asset{}
	query := `
		SELECT id, kind, path, width, height, created_at
		FROM assets WHERE path = $1 LIMIT 1`
	err := r.db.QueryRowContext(ctx, query, path).Scan(
		&a.ID, &a.Kind, &a.Path, &a.Width, &a.Height, &a.CreatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	return a, err
}

func (r *AssetRepository) List(ctx context.Context, kind *models.EntryKind) ([]*models.Asset, error) {
	query := `
		SELECT id, kind, path, width, height, created_at
		FROM assets`
	args := []interface{}{}
	if kind != nil {
		query += ` WHERE kind = $1`
		args = append(args, *kind)
	}
	query += ` ORDER BY created_at DESC`

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var assets []*models.Asset
	for rows.Next() {
		a := &models.Asset{}
		if err := rows.Scan(&a.ID, &a.Kind, &a.Path, &a.Width, &a.Height,
			&a.CreatedAt); err != nil {
			return nil, err
		}
		assets = append(assets, a)
	}
	return assets, rows.Err()
}

func (r *AssetRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM assets WHERE id = $1`, id)
	if err != nil {
		return err
	}
	n, _ := result.RowsAffected()
	if n == 0 {
		return fmt.Errorf("asset not found")
	}
	return nil
}
