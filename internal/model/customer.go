// internal/model/customer.go
package model

import "time"

type Customer struct {
	ID           int        `db:"id" json:"id"`
	Name         string     `db:"name" json:"name"`
	Email        string     `db:"email" json:"email"`
	Company      *string    `db:"company" json:"company"`
	Position     *string    `db:"position" json:"position"`
	IndustryID   *int       `db:"industry_id" json:"industry_id"`
	CategoryID   *int       `db:"category_id" json:"category_id"`
	IndustryName *string    `db:"industry_name" json:"industry_name,omitempty"`
	CategoryName *string    `db:"category_name" json:"category_name,omitempty"`
	CreatedAt    time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt    *time.Time `db:"updated_at" json:"updated_at,omitempty"`
}

// Recipient is a customer as selected for a send. It carries the optional
// personalized content and the extra placeholder values.
type Recipient struct {
	ID                  int               `json:"id"`
	Name                string            `json:"name"`
	Email               string            `json:"email"`
	Company             string            `json:"company"`
	Position            string            `json:"position,omitempty"`
	CustomFields        map[string]string `json:"customFields,omitempty"`
	PersonalizedSubject string            `json:"personalizedSubject,omitempty"`
	PersonalizedBody    string            `json:"personalizedBody,omitempty"`
}

// CustomerFilter narrows customer listings.
type CustomerFilter struct {
	IndustryID *int
	CategoryID *int
	Search     string
}

func derefString(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

// AsRecipient converts a stored customer into a send recipient.
func (c *Customer) AsRecipient() Recipient {
	return Recipient{
		ID:       c.ID,
		Name:     c.Name,
		Email:    c.Email,
		Company:  derefString(c.Company),
		Position: derefString(c.Position),
	}
}
