package repository

import (
	"context"
	"database/sql"

	"github.com/unclebandit/salesmail-backend/internal/model"
)

type ImportBatchRepositoryInterface interface {
	Create(ctx context.Context, b *model.ImportBatch) error
	List(ctx context.Context, limit int) ([]model.ImportBatch, error)
	Delete(ctx context.Context, id int) error
	DeleteAll(ctx context.Context) (int64, error)
}

type ImportBatchRepository struct {
	DB *sql.DB
}

// Create appends one import record; ID and ImportedAt come back from the store.
func (r *ImportBatchRepository) Create(ctx context.Context, b *model.ImportBatch) error {
	query := `
        INSERT INTO import_batches
        (file_name, total_rows, success_count, error_count, industries_count, categories_count, imported_at)
        VALUES ($1, $2, $3, $4, $5, $6, NOW())
        RETURNING id, imported_at
    `
	return r.DB.QueryRowContext(ctx, query,
		b.FileName, b.TotalRows, b.SuccessCount, b.ErrorCount, b.IndustriesCount, b.CategoriesCount,
	).Scan(&b.ID, &b.ImportedAt)
}

// List returns the newest import records first.
func (r *ImportBatchRepository) List(ctx context.Context, limit int) ([]model.ImportBatch, error) {
	rows, err := r.DB.QueryContext(ctx, `
        SELECT id, file_name, total_rows, success_count, error_count, industries_count, categories_count, imported_at
        FROM import_batches
        ORDER BY imported_at DESC, id DESC
        LIMIT $1
    `, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	batches := []model.ImportBatch{}
	for rows.Next() {
		var b model.ImportBatch
		if err := rows.Scan(&b.ID, &b.FileName, &b.TotalRows, &b.SuccessCount, &b.ErrorCount,
			&b.IndustriesCount, &b.CategoriesCount, &b.ImportedAt); err != nil {
			return nil, err
		}
		batches = append(batches, b)
	}
	return batches, rows.Err()
}

func (r *ImportBatchRepository) Delete(ctx context.Context, id int) error {
	res, err := r.DB.ExecContext(ctx, `DELETE FROM import_batches WHERE id=$1`, id)
	if err != nil {
		return err
	}
	return requireAffected(res, "import batch", id)
}

func (r *ImportBatchRepository) DeleteAll(ctx context.Context) (int64, error) {
	res, err := r.DB.ExecContext(ctx, `DELETE FROM import_batches`)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

var _ ImportBatchRepositoryInterface = (*ImportBatchRepository)(nil)
