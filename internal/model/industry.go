// internal/model/industry.go
package model

import "time"

type Industry struct {
	ID            int        `db:"id" json:"id"`
	Name          string     `db:"name" json:"name"`
	CreatedAt     time.Time  `db:"created_at" json:"created_at"`
	Categories    []Category `json:"categories,omitempty"`
	CustomerCount int        `json:"customer_count"`
}

// Category is the "sector" of a customer; unique per (name, industry).
type Category struct {
	ID         int       `db:"id" json:"id"`
	Name       string    `db:"name" json:"name"`
	IndustryID int       `db:"industry_id" json:"industry_id"`
	CreatedAt  time.Time `db:"created_at" json:"created_at"`
}
