package service_test

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/unclebandit/salesmail-backend/internal/content"
	appErrors "github.com/unclebandit/salesmail-backend/internal/errors"
	"github.com/unclebandit/salesmail-backend/internal/mailer"
	"github.com/unclebandit/salesmail-backend/internal/model"
)

// MockCustomerRepo keeps customers in memory keyed by lower-cased email.
type MockCustomerRepo struct {
	PingErr    error
	FailEmails map[string]bool

	byEmail  map[string]*model.Customer
	upserted []string
	nextID   int
}

func NewMockCustomerRepo() *MockCustomerRepo {
	return &MockCustomerRepo{byEmail: map[string]*model.Customer{}, FailEmails: map[string]bool{}}
}

func (m *MockCustomerRepo) Ping(ctx context.Context) error { return m.PingErr }

func (m *MockCustomerRepo) GetByID(ctx context.Context, id int) (*model.Customer, error) {
	for _, c := range m.byEmail {
		if c.ID == id {
			cp := *c
			return &cp, nil
		}
	}
	return nil, appErrors.NewNotFound("customer", id)
}

func (m *MockCustomerRepo) List(ctx context.Context, filter model.CustomerFilter, offset, limit int) ([]model.Customer, int, error) {
	all := make([]model.Customer, 0, len(m.byEmail))
	for i := 1; i <= m.nextID; i++ {
		for _, c := range m.byEmail {
			if c.ID == i {
				all = append(all, *c)
			}
		}
	}
	if offset >= len(all) {
		return []model.Customer{}, len(all), nil
	}
	end := min(offset+limit, len(all))
	return all[offset:end], len(all), nil
}

func (m *MockCustomerRepo) UpsertByEmail(ctx context.Context, c *model.Customer) error {
	c.Email = strings.ToLower(c.Email)
	if m.FailEmails[c.Email] {
		return errors.New("insert failed")
	}
	m.upserted = append(m.upserted, c.Email)
	if existing, ok := m.byEmail[c.Email]; ok {
		c.ID = existing.ID
	} else {
		m.nextID++
		c.ID = m.nextID
	}
	c.CreatedAt = time.Now()
	cp := *c
	m.byEmail[c.Email] = &cp
	return nil
}

func (m *MockCustomerRepo) Update(ctx context.Context, c *model.Customer) error {
	for email, existing := range m.byEmail {
		if existing.ID == c.ID {
			delete(m.byEmail, email)
			cp := *c
			m.byEmail[c.Email] = &cp
			return nil
		}
	}
	return appErrors.NewNotFound("customer", c.ID)
}

func (m *MockCustomerRepo) EmailTakenByOther(ctx context.Context, email string, id int) (bool, error) {
	c, ok := m.byEmail[strings.ToLower(email)]
	return ok && c.ID != id, nil
}

func (m *MockCustomerRepo) Delete(ctx context.Context, id int) error {
	for email, c := range m.byEmail {
		if c.ID == id {
			delete(m.byEmail, email)
			return nil
		}
	}
	return appErrors.NewNotFound("customer", id)
}

func (m *MockCustomerRepo) DeleteAll(ctx context.Context) (int64, error) {
	n := int64(len(m.byEmail))
	m.byEmail = map[string]*model.Customer{}
	return n, nil
}

// MockIndustryRepo hands out sequential ids and counts storage calls.
type MockIndustryRepo struct {
	FailCategory string

	industries    map[string]int
	categories    map[string]int
	IndustryCalls int
	CategoryCalls int
}

func NewMockIndustryRepo() *MockIndustryRepo {
	return &MockIndustryRepo{industries: map[string]int{}, categories: map[string]int{}}
}

func (m *MockIndustryRepo) GetIndustryByName(ctx context.Context, name string) (*model.Industry, error) {
	if id, ok := m.industries[name]; ok {
		return &model.Industry{ID: id, Name: name}, nil
	}
	return nil, nil
}

func (m *MockIndustryRepo) GetOrCreateIndustry(ctx context.Context, name string) (*model.Industry, error) {
	m.IndustryCalls++
	id, ok := m.industries[name]
	if !ok {
		id = len(m.industries) + 1
		m.industries[name] = id
	}
	return &model.Industry{ID: id, Name: name}, nil
}

func (m *MockIndustryRepo) GetOrCreateCategory(ctx context.Context, name string, industryID int) (*model.Category, error) {
	m.CategoryCalls++
	if name == m.FailCategory {
		return nil, errors.New("category insert failed")
	}
	key := fmt.Sprintf("%s/%d", name, industryID)
	id, ok := m.categories[key]
	if !ok {
		id = len(m.categories) + 1
		m.categories[key] = id
	}
	return &model.Category{ID: id, Name: name, IndustryID: industryID}, nil
}

func (m *MockIndustryRepo) ListIndustries(ctx context.Context) ([]model.Industry, error) {
	out := []model.Industry{}
	for name, id := range m.industries {
		out = append(out, model.Industry{ID: id, Name: name})
	}
	return out, nil
}

type MockBatchRepo struct {
	Err     error
	Batches []model.ImportBatch
}

func (m *MockBatchRepo) Create(ctx context.Context, b *model.ImportBatch) error {
	if m.Err != nil {
		return m.Err
	}
	b.ID = len(m.Batches) + 1
	b.ImportedAt = time.Now()
	m.Batches = append(m.Batches, *b)
	return nil
}

func (m *MockBatchRepo) List(ctx context.Context, limit int) ([]model.ImportBatch, error) {
	if limit < len(m.Batches) {
		return m.Batches[:limit], nil
	}
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
	Err       error
	Histories []model.SendHistory
}

func (m *MockHistoryRepo) Create(ctx context.Context, h *model.SendHistory) error {
	if m.Err != nil {
		return m.Err
	}
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

// MockGenerator wraps the text in a <p> unless FailHTML says otherwise.
type MockGenerator struct {
	FailHTML    func(call int, req content.HTMLRequest) error
	Personalize func(req content.PersonalizeRequest) (*content.PersonalizedContent, error)

	mu        sync.Mutex
	HTMLCalls []content.HTMLRequest
}

func (m *MockGenerator) GenerateHTML(ctx context.Context, req content.HTMLRequest) (string, error) {
	m.mu.Lock()
	m.HTMLCalls = append(m.HTMLCalls, req)
	call := len(m.HTMLCalls)
	m.mu.Unlock()
	if m.FailHTML != nil {
		if err := m.FailHTML(call, req); err != nil {
			return "", err
		}
	}
	return "<p>" + req.Text + "</p>", nil
}

func (m *MockGenerator) GenerateContent(ctx context.Context, req content.ContentRequest) (*content.GeneratedContent, error) {
	return &content.GeneratedContent{Content: req.Instruction, PrimaryColor: "#000000", AccentColor: "#ffffff"}, nil
}

func (m *MockGenerator) GeneratePersonalized(ctx context.Context, req content.PersonalizeRequest) (*content.PersonalizedContent, error) {
	if m.Personalize != nil {
		return m.Personalize(req)
	}
	return &content.PersonalizedContent{Subject: req.Subject + " " + req.Customer.Name, Body: "Dear " + req.Customer.Name}, nil
}

// MockMailer records every message and fails for addresses in Fail.
type MockMailer struct {
	Fail map[string]error
	Sent []mailer.Message
}

func (m *MockMailer) Send(ctx context.Context, msg mailer.Message) error {
	if err := m.Fail[msg.To]; err != nil {
		return err
	}
	m.Sent = append(m.Sent, msg)
	return nil
}
