// Package content generates email copy and HTML through a chat-style
// language model.
package content

import (
	"context"
	"errors"

	"github.com/unclebandit/salesmail-backend/internal/model"
)

const (
	DefaultPrimaryColor = "#2C3E50"
	DefaultAccentColor  = "#E74C3C"
	DefaultFont         = "sans-serif"

	// DefaultSubject is used when a personalized reply carries no subject
	// and the request had none either.
	DefaultSubject = "お知らせ"
)

// ErrNotConfigured is returned when no credentials are set for the provider.
var ErrNotConfigured = errors.New("content provider is not configured")

type HTMLRequest struct {
	Text         string `json:"text"`
	PrimaryColor string `json:"primary_color"`
	AccentColor  string `json:"accent_color"`
	Font         string `json:"font"`
}

type ContentRequest struct {
	Instruction string `json:"instruction"`
	Subject     string `json:"subject"`
}

type GeneratedContent struct {
	Content      string `json:"content"`
	PrimaryColor string `json:"primaryColor"`
	AccentColor  string `json:"accentColor"`
}

type PersonalizeRequest struct {
	Instruction string
	Subject     string
	Customer    model.Recipient
}

type PersonalizedContent struct {
	Subject string `json:"subject"`
	Body    string `json:"body"`
}

// Generator is the content-generation collaborator used by the send flows.
type Generator interface {
	GenerateHTML(ctx context.Context, req HTMLRequest) (string, error)
	GenerateContent(ctx context.Context, req ContentRequest) (*GeneratedContent, error)
	GeneratePersonalized(ctx context.Context, req PersonalizeRequest) (*PersonalizedContent, error)
}

// Completion is one prompt sent to a model backend.
type Completion struct {
	System      string
	Prompt      string
	MaxTokens   int
	Temperature float64
}

// Completer sends a single prompt and returns the model's text reply.
type Completer interface {
	Complete(ctx context.Context, c Completion) (string, error)
}

// withDefaults fills unset style parameters.
func (r HTMLRequest) withDefaults() HTMLRequest {
	if r.PrimaryColor == "" {
		r.PrimaryColor = DefaultPrimaryColor
	}
	if r.AccentColor == "" {
		r.AccentColor = DefaultAccentColor
	}
	if r.Font == "" {
		r.Font = DefaultFont
	}
	return r
}
