package mailer

import (
	"context"
	"crypto/tls"
	"fmt"
	"mime"
	"net/smtp"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/unclebandit/salesmail-backend/internal/logger"
)

type sendMailFunc func(addr string, auth smtp.Auth, from string, to []string, msg []byte) error

type SMTPConfig struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
}

// SMTPMailer uses implicit TLS on port 465 and smtp.SendMail (STARTTLS when
// offered) on any other port.
type SMTPMailer struct {
	cfg      SMTPConfig
	log      *zap.Logger
	sendMail sendMailFunc
}

func NewSMTPMailer(cfg SMTPConfig, log *zap.Logger) *SMTPMailer {
	if cfg.Port <= 0 {
		cfg.Port = 587
	}
	if cfg.From == "" {
		cfg.From = cfg.Username
	}
	if log == nil {
		log = zap.NewNop()
	}
	m := &SMTPMailer{cfg: cfg, log: log, sendMail: smtp.SendMail}
	if cfg.Port == 465 {
		m.sendMail = m.sendMailWithTLS
	}
	return m
}

func (m *SMTPMailer) Send(ctx context.Context, msg Message) error {
	if m.cfg.Host == "" || m.cfg.From == "" {
		return notConfigured("smtp")
	}
	if err := msg.validate(); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	var auth smtp.Auth
	if m.cfg.Username != "" {
		auth = smtp.PlainAuth("", m.cfg.Username, m.cfg.Password, m.cfg.Host)
	}
	addr := fmt.Sprintf("%s:%d", m.cfg.Host, m.cfg.Port)

	start := time.Now()
	if err := m.sendMail(addr, auth, m.cfg.From, []string{msg.To}, buildMIMEMessage(m.cfg.From, msg)); err != nil {
		return fmt.Errorf("smtp send to %s: %w", logger.RedactEmail(msg.To), err)
	}
	m.log.Debug("smtp message sent",
		zap.String("to", logger.RedactEmail(msg.To)),
		zap.Duration("took", time.Since(start)),
	)
	return nil
}

func (m *SMTPMailer) sendMailWithTLS(addr string, auth smtp.Auth, from string, to []string, raw []byte) error {
	conn, err := tls.Dial("tcp", addr, &tls.Config{ServerName: m.cfg.Host})
	if err != nil {
		return err
	}
	defer conn.Close()

	client, err := smtp.NewClient(conn, m.cfg.Host)
	if err != nil {
		return err
	}
	defer client.Close()

	if auth != nil {
		if err := client.Auth(auth); err != nil {
			return err
		}
	}
	if err := client.Mail(from); err != nil {
		return err
	}
	for _, rcpt := range to {
		if err := client.Rcpt(rcpt); err != nil {
			return err
		}
	}
	w, err := client.Data()
	if err != nil {
		return err
	}
	if _, err := w.Write(raw); err != nil {
		return err
	}
	if err := w.Close(); err != nil {
		return err
	}
	return client.Quit()
}

func buildMIMEMessage(from string, msg Message) []byte {
	var b strings.Builder
	b.WriteString("From: " + from + "\r\n")
	b.WriteString("To: " + msg.To + "\r\n")
	b.WriteString("Subject: " + mime.BEncoding.Encode("UTF-8", msg.Subject) + "\r\n")
	b.WriteString("MIME-Version: 1.0\r\n")
	b.WriteString("Content-Type: text/html; charset=UTF-8\r\n")
	b.WriteString("Content-Transfer-Encoding: 8bit\r\n\r\n")
	b.WriteString(msg.HTML)
	return []byte(b.String())
}
