// internal/service/bulk_send_service.go
package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/unclebandit/salesmail-backend/internal/config"
	"github.com/unclebandit/salesmail-backend/internal/content"
	appErrors "github.com/unclebandit/salesmail-backend/internal/errors"
	"github.com/unclebandit/salesmail-backend/internal/logger"
	"github.com/unclebandit/salesmail-backend/internal/mailer"
	"github.com/unclebandit/salesmail-backend/internal/metrics"
	"github.com/unclebandit/salesmail-backend/internal/model"
	"github.com/unclebandit/salesmail-backend/internal/repository"
)

const DefaultSendDelay = 100 * time.Millisecond

type BulkSendRequest struct {
	Customers    []model.Recipient `json:"customers"`
	Subject      string            `json:"subject"`
	BodyTemplate string            `json:"bodyTemplate"`
	PrimaryColor string            `json:"primaryColor"`
	AccentColor  string            `json:"accentColor"`
	Font         string            `json:"font"`
}

// SendResult is the outcome for one recipient.
type SendResult struct {
	CustomerID    int        `json:"customerId"`
	CustomerEmail string     `json:"customerEmail"`
	CustomerName  string     `json:"customerName"`
	Success       bool       `json:"success"`
	Error         string     `json:"error,omitempty"`
	SentAt        *time.Time `json:"sentAt,omitempty"`
}

type BulkSendResult struct {
	Total      int          `json:"total"`
	Success    int          `json:"success"`
	Failed     int          `json:"failed"`
	Results    []SendResult `json:"results"`
	SampleHTML string       `json:"sample_html,omitempty"`
	HistoryID  int          `json:"history_id,omitempty"`
}

// ProgressFunc is called after each recipient with the running totals.
type ProgressFunc func(processed, success, failed int)

type BulkSendService struct {
	Generator    content.Generator
	Mailer       mailer.Mailer
	HistoryRepo  repository.SendHistoryRepositoryInterface
	Delay        time.Duration
	PrimaryColor string
	AccentColor  string
	Font         string
	Logger       *zap.Logger
}

func NewBulkSendService(gen content.Generator, m mailer.Mailer, histories repository.SendHistoryRepositoryInterface, cfg config.BulkSendConfig, log *zap.Logger) *BulkSendService {
	s := &BulkSendService{
		Generator:    gen,
		Mailer:       m,
		HistoryRepo:  histories,
		Delay:        cfg.Delay,
		PrimaryColor: cfg.PrimaryColor,
		AccentColor:  cfg.AccentColor,
		Font:         cfg.Font,
		Logger:       log,
	}
	if s.Delay <= 0 {
		s.Delay = DefaultSendDelay
	}
	return s
}

// Validate rejects requests that cannot be sent at all.
func (r BulkSendRequest) Validate() error {
	if len(r.Customers) == 0 {
		return appErrors.NewValidation("customers are required")
	}
	if strings.TrimSpace(r.Subject) == "" || strings.TrimSpace(r.BodyTemplate) == "" {
		return appErrors.NewValidation("subject and bodyTemplate are required")
	}
	return nil
}

func (s *BulkSendService) style(req BulkSendRequest) content.HTMLRequest {
	pick := func(values ...string) string {
		for _, v := range values {
			if strings.TrimSpace(v) != "" {
				return v
			}
		}
		return ""
	}
	return content.HTMLRequest{
		PrimaryColor: pick(req.PrimaryColor, s.PrimaryColor, content.DefaultPrimaryColor),
		AccentColor:  pick(req.AccentColor, s.AccentColor, content.DefaultAccentColor),
		Font:         pick(req.Font, s.Font, content.DefaultFont),
	}
}

// messageFor returns the recipient's pre-generated subject and body when
// present, otherwise the rendered shared templates.
func messageFor(req BulkSendRequest, r model.Recipient) (subject, body string) {
	subject = r.PersonalizedSubject
	if subject == "" {
		subject = RenderTemplate(req.Subject, r)
	}
	body = r.PersonalizedBody
	if body == "" {
		body = RenderTemplate(req.BodyTemplate, r)
	}
	return subject, body
}

// Send delivers one email per customer, strictly in input order. A failing
// recipient is recorded and the run moves on. The send history is written
// afterwards and its failure never changes the returned result.
func (s *BulkSendService) Send(ctx context.Context, req BulkSendRequest, progress ProgressFunc) (*BulkSendResult, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	// A started run always completes.
	ctx = context.WithoutCancel(ctx)

	log := s.logger()
	style := s.style(req)
	start := time.Now()

	result := &BulkSendResult{
		Total:   len(req.Customers),
		Results: make([]SendResult, 0, len(req.Customers)),
	}
	log.Info("bulk send started", zap.Int("recipients", result.Total), zap.String("subject", req.Subject))

	for i, customer := range req.Customers {
		html, res := s.sendOne(ctx, req, customer, style)
		if i == 0 {
			result.SampleHTML = html
		}
		result.Results = append(result.Results, res)
		if res.Success {
			result.Success++
			metrics.EmailsSent.WithLabelValues("success").Inc()
		} else {
			result.Failed++
			metrics.EmailsSent.WithLabelValues("failed").Inc()
			log.Warn("bulk send recipient failed",
				zap.Int("customer_id", customer.ID),
				zap.String("email", logger.RedactEmail(customer.Email)),
				zap.String("error", res.Error),
			)
		}
		if progress != nil {
			progress(i+1, result.Success, result.Failed)
		}
		time.Sleep(s.Delay)
	}

	if result.SampleHTML == "" {
		result.SampleHTML = s.sampleHTML(ctx, req, style)
	}
	metrics.BulkSendDuration.Observe(time.Since(start).Seconds())
	log.Info("bulk send finished",
		zap.Int("total", result.Total),
		zap.Int("success", result.Success),
		zap.Int("failed", result.Failed),
		zap.Duration("took", time.Since(start)),
	)

	if id, err := s.recordHistory(ctx, req, style, result); err != nil {
		log.Error("failed to save send history", zap.Error(err))
	} else {
		result.HistoryID = id
	}
	return result, nil
}

func (s *BulkSendService) sendOne(ctx context.Context, req BulkSendRequest, customer model.Recipient, style content.HTMLRequest) (string, SendResult) {
	res := SendResult{
		CustomerID:    customer.ID,
		CustomerEmail: customer.Email,
		CustomerName:  customer.Name,
	}
	subject, body := messageFor(req, customer)

	style.Text = body
	html, err := s.Generator.GenerateHTML(ctx, style)
	if err != nil {
		res.Error = fmt.Sprintf("HTML generation failed: %v", err)
		return "", res
	}

	if err := s.Mailer.Send(ctx, mailer.Message{To: customer.Email, Subject: subject, HTML: html}); err != nil {
		res.Error = fmt.Sprintf("delivery failed: %v", err)
		return html, res
	}
	now := time.Now()
	res.Success = true
	res.SentAt = &now
	return html, res
}

// sampleHTML makes one more attempt at the first customer's HTML.
func (s *BulkSendService) sampleHTML(ctx context.Context, req BulkSendRequest, style content.HTMLRequest) string {
	_, style.Text = messageFor(req, req.Customers[0])
	html, err := s.Generator.GenerateHTML(ctx, style)
	if err != nil {
		s.logger().Warn("sample HTML generation failed", zap.Error(err))
		return ""
	}
	return html
}

func (s *BulkSendService) recordHistory(ctx context.Context, req BulkSendRequest, style content.HTMLRequest, result *BulkSendResult) (int, error) {
	if s.HistoryRepo == nil {
		return 0, nil
	}
	h := &model.SendHistory{
		Subject:         req.Subject,
		BodyTemplate:    req.BodyTemplate,
		TotalRecipients: result.Total,
		SuccessCount:    result.Success,
		FailedCount:     result.Failed,
		PrimaryColor:    style.PrimaryColor,
		AccentColor:     style.AccentColor,
		Font:            style.Font,
		Recipients:      req.Customers,
	}
	if result.SampleHTML != "" {
		h.HTMLContent = &result.SampleHTML
	}
	if err := s.HistoryRepo.Create(ctx, h); err != nil {
		return 0, err
	}
	return h.ID, nil
}

func (s *BulkSendService) logger() *zap.Logger {
	if s.Logger == nil {
		return zap.NewNop()
	}
	return s.Logger
}

// SendSingle delivers one ready-made HTML email.
func (s *BulkSendService) SendSingle(ctx context.Context, to, subject, html string) error {
	if !IsValidEmail(strings.TrimSpace(to)) {
		return appErrors.NewValidation("a valid recipient address is required")
	}
	if strings.TrimSpace(subject) == "" || strings.TrimSpace(html) == "" {
		return appErrors.NewValidation("subject and HTML content are required")
	}
	err := s.Mailer.Send(ctx, mailer.Message{To: strings.TrimSpace(to), Subject: subject, HTML: html})
	if err != nil {
		metrics.EmailsSent.WithLabelValues("failed").Inc()
		return err
	}
	metrics.EmailsSent.WithLabelValues("success").Inc()
	return nil
}

// SendTest is SendSingle with the subject marked as a test.
func (s *BulkSendService) SendTest(ctx context.Context, to, subject, html string) error {
	if strings.TrimSpace(subject) == "" {
		return appErrors.NewValidation("subject and HTML content are required")
	}
	return s.SendSingle(ctx, to, mailer.TestSubjectPrefix+subject, html)
}
