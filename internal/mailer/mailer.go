// Package mailer delivers rendered HTML emails through SMTP or Amazon SES.
package mailer

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/unclebandit/salesmail-backend/internal/config"
	appErrors "github.com/unclebandit/salesmail-backend/internal/errors"
)

// TestSubjectPrefix marks test sends.
const TestSubjectPrefix = "[テスト] "

// ErrMailerNotConfigured is returned when the selected provider lacks the
// settings it needs to connect.
var ErrMailerNotConfigured = errors.New("mailer is not configured")

type Message struct {
	To      string
	Subject string
	HTML    string
}

func (m Message) validate() error {
	if strings.TrimSpace(m.To) == "" {
		return fmt.Errorf("recipient is required")
	}
	if strings.TrimSpace(m.Subject) == "" {
		return fmt.Errorf("subject is required")
	}
	return nil
}

// Mailer is the delivery collaborator.
type Mailer interface {
	Send(ctx context.Context, msg Message) error
}

func notConfigured(provider string) error {
	return appErrors.NewUnavailable(provider, ErrMailerNotConfigured)
}

// New returns the provider selected by cfg.Provider. A provider with missing
// settings is still returned; its sends fail with ErrMailerNotConfigured.
func New(ctx context.Context, cfg config.MailerConfig, log *zap.Logger) (Mailer, error) {
	if log == nil {
		log = zap.NewNop()
	}
	switch cfg.Provider {
	case "", "smtp":
		return NewSMTPMailer(SMTPConfig{
			Host:     cfg.SMTP.Host,
			Port:     cfg.SMTP.Port,
			Username: cfg.SMTP.Username,
			Password: cfg.SMTP.Password,
			From:     cfg.From,
		}, log), nil
	case "ses":
		return NewSESMailer(ctx, SESConfig{
			Region:    cfg.SES.Region,
			AccessKey: cfg.SES.AccessKey,
			SecretKey: cfg.SES.SecretKey,
			From:      cfg.From,
		}, log)
	default:
		return nil, fmt.Errorf("unknown mailer provider %q", cfg.Provider)
	}
}
