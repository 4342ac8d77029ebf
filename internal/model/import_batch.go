// internal/model/import_batch.go
package model

import "time"

type ImportBatch struct {
	ID              int       `db:"id" json:"id"`
	FileName        string    `db:"file_name" json:"file_name"`
	TotalRows       int       `db:"total_rows" json:"total_rows"`
	SuccessCount    int       `db:"success_count" json:"success_count"`
	ErrorCount      int       `db:"error_count" json:"error_count"`
	IndustriesCount int       `db:"industries_count" json:"industries_count"`
	CategoriesCount int       `db:"categories_count" json:"categories_count"`
	ImportedAt      time.Time `db:"imported_at" json:"imported_at"`
}
