// internal/service/personalize_service.go
package service

import (
	"context"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/unclebandit/salesmail-backend/internal/content"
	appErrors "github.com/unclebandit/salesmail-backend/internal/errors"
	"github.com/unclebandit/salesmail-backend/internal/model"
)

const DefaultPersonalizeConcurrency = 4

type PersonalizeRequest struct {
	Customers   []model.Recipient `json:"customers"`
	Instruction string            `json:"instruction"`
	Subject     string            `json:"subject"`
}

type PersonalizeResult struct {
	CustomerID int    `json:"customerId"`
	Subject    string `json:"subject"`
	Body       string `json:"body"`
	Success    bool   `json:"success"`
	Error      string `json:"error,omitempty"`
}

type PersonalizeService struct {
	Generator   content.Generator
	Concurrency int
	Logger      *zap.Logger
}

// GenerateBulk writes one subject/body per customer. Customers are processed
// in parallel up to Concurrency; results keep the input order and a failed
// customer only marks its own entry.
func (s *PersonalizeService) GenerateBulk(ctx context.Context, req PersonalizeRequest) ([]PersonalizeResult, error) {
	if len(req.Customers) == 0 {
		return nil, appErrors.NewValidation("customers are required")
	}
	if strings.TrimSpace(req.Instruction) == "" {
		return nil, appErrors.NewValidation("instruction is required")
	}

	limit := s.Concurrency
	if limit <= 0 {
		limit = DefaultPersonalizeConcurrency
	}
	log := s.Logger
	if log == nil {
		log = zap.NewNop()
	}

	results := make([]PersonalizeResult, len(req.Customers))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(limit)

	for i, customer := range req.Customers {
		i, customer := i, customer
		g.Go(func() error {
			out, err := s.Generator.GeneratePersonalized(gctx, content.PersonalizeRequest{
				Instruction: req.Instruction,
				Subject:     req.Subject,
				Customer:    customer,
			})
			if err != nil {
				log.Warn("personalized generation failed", zap.Int("customer_id", customer.ID), zap.Error(err))
				results[i] = PersonalizeResult{CustomerID: customer.ID, Subject: req.Subject, Error: err.Error()}
				return nil
			}
			results[i] = PersonalizeResult{
				CustomerID: customer.ID,
				Subject:    out.Subject,
				Body:       out.Body,
				Success:    true,
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}
