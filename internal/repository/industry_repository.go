package repository

import (
	"context"
	"database/sql"
	"errors"

	appErrors "github.com/unclebandit/salesmail-backend/internal/errors"
	"github.com/unclebandit/salesmail-backend/internal/model"
)

// IndustryRepositoryInterface covers industries and their categories.
type IndustryRepositoryInterface interface {
	GetIndustryByName(ctx context.Context, name string) (*model.Industry, error)
	GetOrCreateIndustry(ctx context.Context, name string) (*model.Industry, error)
	GetOrCreateCategory(ctx context.Context, name string, industryID int) (*model.Category, error)
	ListIndustries(ctx context.Context) ([]model.Industry, error)
}

type IndustryRepository struct {
	DB *sql.DB
}

// GetIndustryByName returns nil, nil when no industry has that name.
func (r *IndustryRepository) GetIndustryByName(ctx context.Context, name string) (*model.Industry, error) {
	var ind model.Industry
	err := r.DB.QueryRowContext(ctx,
		`SELECT id, name, created_at FROM industries WHERE name = $1`, name,
	).Scan(&ind.ID, &ind.Name, &ind.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &ind, nil
}

// GetOrCreateIndustry is idempotent on name. The no-op update makes
// RETURNING yield the existing row on conflict.
func (r *IndustryRepository) GetOrCreateIndustry(ctx context.Context, name string) (*model.Industry, error) {
	query := `
        INSERT INTO industries (name, created_at)
        VALUES ($1, NOW())
        ON CONFLICT (name) DO UPDATE SET name = EXCLUDED.name
        RETURNING id, name, created_at
    `
	var ind model.Industry
	if err := r.DB.QueryRowContext(ctx, query, name).Scan(&ind.ID, &ind.Name, &ind.CreatedAt); err != nil {
		return nil, err
	}
	return &ind, nil
}

// GetOrCreateCategory is idempotent on (name, industry).
func (r *IndustryRepository) GetOrCreateCategory(ctx context.Context, name string, industryID int) (*model.Category, error) {
	query := `
        INSERT INTO categories (name, industry_id, created_at)
        VALUES ($1, $2, NOW())
        ON CONFLICT (name, industry_id) DO UPDATE SET name = EXCLUDED.name
        RETURNING id, name, industry_id, created_at
    `
	var cat model.Category
	err := r.DB.QueryRowContext(ctx, query, name, industryID).Scan(&cat.ID, &cat.Name, &cat.IndustryID, &cat.CreatedAt)
	if err != nil {
		if isPQCode(err, pqForeignKeyViolation) {
			return nil, appErrors.NewNotFound("industry", industryID)
		}
		return nil, err
	}
	return &cat, nil
}

// ListIndustries returns every industry with its categories and the number
// of customers referencing it, ordered by name.
func (r *IndustryRepository) ListIndustries(ctx context.Context) ([]model.Industry, error) {
	rows, err := r.DB.QueryContext(ctx, `
        SELECT i.id, i.name, i.created_at, COUNT(c.id)
        FROM industries i
        LEFT JOIN customers c ON c.industry_id = i.id
        GROUP BY i.id, i.name, i.created_at
        ORDER BY i.name ASC
    `)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	industries := []model.Industry{}
	index := map[int]int{}
	for rows.Next() {
		var ind model.Industry
		if err := rows.Scan(&ind.ID, &ind.Name, &ind.CreatedAt, &ind.CustomerCount); err != nil {
			return nil, err
		}
		ind.Categories = []model.Category{}
		index[ind.ID] = len(industries)
		industries = append(industries, ind)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	catRows, err := r.DB.QueryContext(ctx,
		`SELECT id, name, industry_id, created_at FROM categories ORDER BY name ASC`)
	if err != nil {
		return nil, err
	}
	defer catRows.Close()

	for catRows.Next() {
		var cat model.Category
		if err := catRows.Scan(&cat.ID, &cat.Name, &cat.IndustryID, &cat.CreatedAt); err != nil {
			return nil, err
		}
		if i, ok := index[cat.IndustryID]; ok {
			industries[i].Categories = append(industries[i].Categories, cat)
		}
	}
	return industries, catRows.Err()
}

var _ IndustryRepositoryInterface = (*IndustryRepository)(nil)
