package controller_test

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/unclebandit/salesmail-backend/internal/content"
	appErrors "github.com/unclebandit/salesmail-backend/internal/errors"
	"github.com/unclebandit/salesmail-backend/internal/mailer"
	"github.com/unclebandit/salesmail-backend/internal/model"
)

// --- Mock Repositories ---

type MockCustomerRepo struct {
	Customers []model.Customer
	ListErr   error
	LastQuery model.CustomerFilter
}

func (m *MockCustomerRepo) Ping(ctx context.Context) error { return nil }

func (m *MockCustomerRepo) GetByID(ctx context.Context, id int) (*model.Customer, error) {
	for _, c := range m.Customers {
		if c.ID == id {
			return &c, nil
		}
	}
	return nil, appErrors.NewNotFound("customer", id)
}

func (m *MockCustomerRepo) List(ctx context.Context, filter model.CustomerFilter, offset, limit int) ([]model.Customer, int, error) {
	m.LastQuery = filter
	if m.ListErr != nil {
		return nil, 0, m.ListErr
	}
	if offset >= len(m.Customers) {
		return []model.Customer{}, len(m.Customers), nil
	}
	end := min(offset+limit, len(m.Customers))
	return m.Customers[offset:end], len(m.Customers), nil
}

func (m *MockCustomerRepo) UpsertByEmail(ctx context.Context, c *model.Customer) error {
	for i, existing := range m.Customers {
		if existing.Email == c.Email {
			c.ID = existing.ID
			m.Customers[i] = *c
			return nil
		}
	}
	c.ID = len(m.Customers) + 1
	c.CreatedAt = time.Now()
	m.Customers = append(m.Customers, *c)
	return nil
}

func (m *MockCustomerRepo) Update(ctx context.Context, c *model.Customer) error {
	for i, existing := range m.Customers {
		if existing.ID == c.ID {
			m.Customers[i] = *c
			return nil
		}
	}
	return appErrors.NewNotFound("customer", c.ID)
}

func (m *MockCustomerRepo) EmailTakenByOther(ctx context.Context, email string, id int) (bool, error) {
	for _, c := range m.Customers {
		if strings.EqualFold(c.Email, email) && c.ID != id {
			return true, nil
		}
	}
	return false, nil
}

func (m *MockCustomerRepo) Delete(ctx context.Context, id int) error {
	for i, c := range m.Customers {
		if c.ID == id {
			m.Customers = append(m.Customers[:i], m.Customers[i+1:]...)
			return nil
		}
	}
	return appErrors.NewNotFound("customer", id)
}

func (m *MockCustomerRepo) DeleteAll(ctx context.Context) (int64, error) {
	n := int64(len(m.Customers))
	m.Customers = nil
	return n, nil
}

type MockIndustryRepo struct {
	names []string
}

func (m *MockIndustryRepo) GetIndustryByName(ctx context.Context, name string) (*model.Industry, error) {
	return nil, nil
}

func (m *MockIndustryRepo) GetOrCreateIndustry(ctx context.Context, name string) (*model.Industry, error) {
	for i, n := range m.names {
		if n == name {
			return &model.Industry{ID: i + 1, Name: name}, nil
		}
	}
	m.names = append(m.names, name)
	return &model.Industry{ID: len(m.names), Name: name}, nil
}

func (m *MockIndustryRepo) GetOrCreateCategory(ctx context.Context, name string, industryID int) (*model.Category, error) {
	return &model.Category{ID: industryID*100 + len(name), Name: name, IndustryID: industryID}, nil
}

func (m *MockIndustryRepo) ListIndustries(ctx context.Context) ([]model.Industry, error) {
	out := []model.Industry{}
	for i, n := range m.names {
		out = append(out, model.Industry{ID: i + 1, Name: n, Categories: []model.Category{}})
	}
	return out, nil
}

type MockBatchRepo struct {
	Batches []model.ImportBatch
}

func (m *MockBatchRepo) Create(ctx context.Context, b *model.ImportBatch) error {
	b.ID = len(m.Batches) + 1
	m.Batches = append(m.Batches, *b)
	return nil
}

func (m *MockBatchRepo) List(ctx context.Context, limit int) ([]model.ImportBatch, error) {
	return m.Batches, nil
}

func (m *MockBatchRepo) Delete(ctx context.Context, id int) error {
	for i, b := range m.Batches {
		if b.ID == id {
			m.Batches = append(m.Batches[:i], m.Batches[i+1:]...)
			return nil
		}
	}
	return appErrors.NewNotFound("import batch", id)
}

func (m *MockBatchRepo) DeleteAll(ctx context.Context) (int64, error) {
	n := int64(len(m.Batches))
	m.Batches = nil
	return n, nil
}

type MockHistoryRepo struct {
	Histories []model.SendHistory
}

func (m *MockHistoryRepo) Create(ctx context.Context, h *model.SendHistory) error {
	h.ID = len(m.Histories) + 1
	h.SentAt = time.Now()
	m.Histories = append(m.Histories, *h)
	return nil
}

func (m *MockHistoryRepo) List(ctx context.Context, offset, limit int) ([]model.SendHistory, int, error) {
	if offset >= len(m.Histories) {
		return []model.SendHistory{}, len(m.Histories), nil
	}
	end := min(offset+limit, len(m.Histories))
	return m.Histories[offset:end], len(m.Histories), nil
}

func (m *MockHistoryRepo) ListAll(ctx context.Context) ([]model.SendHistory, error) {
	return m.Histories, nil
}

func (m *MockHistoryRepo) GetByID(ctx context.Context, id int) (*model.SendHistory, error) {
	for _, h := range m.Histories {
		if h.ID == id {
			return &h, nil
		}
	}
	return nil, appErrors.NewNotFound("send history", id)
}

func (m *MockHistoryRepo) Delete(ctx context.Context, id int) error {
	for i, h := range m.Histories {
		if h.ID == id {
			m.Histories = append(m.Histories[:i], m.Histories[i+1:]...)
			return nil
		}
	}
	return appErrors.NewNotFound("send history", id)
}

func (m *MockHistoryRepo) DeleteAll(ctx context.Context) (int64, error) {
	n := int64(len(m.Histories))
	m.Histories = nil
	return n, nil
}

// --- Mock collaborators ---

type MockGenerator struct {
	Err error
}

func (m *MockGenerator) GenerateHTML(ctx context.Context, req content.HTMLRequest) (string, error) {
	if m.Err != nil {
		return "", m.Err
	}
	return "<p>" + req.Text + "</p>", nil
}

func (m *MockGenerator) GenerateContent(ctx context.Context, req content.ContentRequest) (*content.GeneratedContent, error) {
	if m.Err != nil {
		return nil, m.Err
	}
	return &content.GeneratedContent{Content: "本文: " + req.Instruction, PrimaryColor: "#112233", AccentColor: "#445566"}, nil
}

func (m *MockGenerator) GeneratePersonalized(ctx context.Context, req content.PersonalizeRequest) (*content.PersonalizedContent, error) {
	if m.Err != nil {
		return nil, m.Err
	}
	return &content.PersonalizedContent{Subject: req.Subject, Body: req.Customer.Name + "様"}, nil
}

type MockMailer struct {
	Sent []mailer.Message
	Err  error
}

func (m *MockMailer) Send(ctx context.Context, msg mailer.Message) error {
	if m.Err != nil {
		return m.Err
	}
	m.Sent = append(m.Sent, msg)
	return nil
}

var errBoom = errors.New("boom")
