// internal/service/customer_service.go
package service

import (
	"context"
	"strings"

	appErrors "github.com/unclebandit/salesmail-backend/internal/errors"
	"github.com/unclebandit/salesmail-backend/internal/model"
	"github.com/unclebandit/salesmail-backend/internal/repository"
)

const (
	DefaultPageSize = 50
	MaxPageSize     = 500
)

type Pagination struct {
	Page       int `json:"page"`
	Limit      int `json:"limit"`
	Total      int `json:"total"`
	TotalPages int `json:"totalPages"`
}

// normalizePage clamps page and limit and returns the row offset.
func normalizePage(page, limit int) (int, int, int) {
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = DefaultPageSize
	}
	if limit > MaxPageSize {
		limit = MaxPageSize
	}
	return page, limit, (page - 1) * limit
}

func newPagination(page, limit, total int) Pagination {
	return Pagination{
		Page:       page,
		Limit:      limit,
		Total:      total,
		TotalPages: (total + limit - 1) / limit,
	}
}

type CustomerService struct {
	CustomerRepo repository.CustomerRepositoryInterface
	IndustryRepo repository.IndustryRepositoryInterface
}

// CustomerUpdate carries the editable fields of a customer.
type CustomerUpdate struct {
	Name       string  `json:"name"`
	Email      string  `json:"email"`
	Company    *string `json:"company"`
	Position   *string `json:"position"`
	IndustryID *int    `json:"industry_id"`
	CategoryID *int    `json:"category_id"`
}

func (s *CustomerService) List(ctx context.Context, filter model.CustomerFilter, page, limit int) ([]model.Customer, Pagination, error) {
	page, limit, offset := normalizePage(page, limit)
	customers, total, err := s.CustomerRepo.List(ctx, filter, offset, limit)
	if err != nil {
		return nil, Pagination{}, err
	}
	return customers, newPagination(page, limit, total), nil
}

func (s *CustomerService) Get(ctx context.Context, id int) (*model.Customer, error) {
	return s.CustomerRepo.GetByID(ctx, id)
}

// Update applies the same email rules as import, and the email must not
// belong to another customer.
func (s *CustomerService) Update(ctx context.Context, id int, in CustomerUpdate) (*model.Customer, error) {
	name := strings.TrimSpace(in.Name)
	email := strings.ToLower(strings.TrimSpace(in.Email))
	if name == "" || email == "" {
		return nil, appErrors.NewValidation("name and email are required")
	}
	if !IsValidEmail(email) {
		return nil, appErrors.NewValidation("invalid email address: %s", in.Email)
	}

	taken, err := s.CustomerRepo.EmailTakenByOther(ctx, email, id)
	if err != nil {
		return nil, err
	}
	if taken {
		return nil, appErrors.NewConflict("email %s is already used by another customer", email)
	}

	c := &model.Customer{
		ID:         id,
		Name:       name,
		Email:      email,
		Company:    trimmedOrNil(in.Company),
		Position:   trimmedOrNil(in.Position),
		IndustryID: in.IndustryID,
		CategoryID: in.CategoryID,
	}
	if err := s.CustomerRepo.Update(ctx, c); err != nil {
		return nil, err
	}
	return s.CustomerRepo.GetByID(ctx, id)
}

func (s *CustomerService) Delete(ctx context.Context, id int) error {
	return s.CustomerRepo.Delete(ctx, id)
}

func (s *CustomerService) DeleteAll(ctx context.Context) (int64, error) {
	return s.CustomerRepo.DeleteAll(ctx)
}

func (s *CustomerService) ListIndustries(ctx context.Context) ([]model.Industry, error) {
	return s.IndustryRepo.ListIndustries(ctx)
}

func trimmedOrNil(s *string) *string {
	if s == nil {
		return nil
	}
	v := strings.TrimSpace(*s)
	if v == "" {
		return nil
	}
	return &v
}
