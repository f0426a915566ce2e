// Package mail sends transactional email over SMTP.
//
//	msg, _ := mail.New("user@example.com").Subject("Reset your password").
//	    Template(resetTmpl, data)
//	err := mail.Default().Send(ctx, msg)
//
// With no MAIL_HOST configured the default sender only logs the message.
package mail

import (
	"bytes"
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"html/template"
	"net"
	"net/smtp"
	"strings"
	"sync"

	"github.com/shashiranjanraj/laundry/config"
	"github.com/shashiranjanraj/laundry/pkg/logger"
)

var ErrNoRecipients = errors.New("mail: no recipients")

// SMTP holds connection settings.
type SMTP struct {
	Host     string
	Port     string
	Username string
	Password string
	From     string
	FromName string
}

func smtpFromConfig() SMTP {
	return SMTP{
		Host:     config.Get("MAIL_HOST", ""),
		Port:     config.Get("MAIL_PORT", "587"),
		Username: config.Get("MAIL_USERNAME", ""),
		Password: config.Get("MAIL_PASSWORD", ""),
		From:     config.Get("MAIL_FROM", "no-reply@laundry.local"),
		FromName: config.Get("MAIL_FROM_NAME", "Laundry Shop"),
	}
}

// Message is one email. Build it with New.
type Message struct {
	To      []string
	Subject string
	Body    string
	HTML    bool
}

func New(to ...string) *Message { return &Message{To: to} }

func (m *Message) WithSubject(s string) *Message {
	m.Subject = s
	return m
}

// Text sets a plain-text body.
func (m *Message) Text(body string) *Message {
	m.Body, m.HTML = body, false
	return m
}

// Template renders an html/template source with data as the HTML body.
func (m *Message) Template(src string, data interface{}) (*Message, error) {
	tmpl, err := template.New("mail").Parse(src)
	if err != nil {
		return m, fmt.Errorf("mail: parse template: %w", err)
	}
	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return m, fmt.Errorf("mail: render template: %w", err)
	}
	m.Body, m.HTML = buf.String(), true
	return m, nil
}

// Sender delivers messages.
type Sender interface {
	Send(ctx context.Context, m *Message) error
}

var (
	mu      sync.RWMutex
	current Sender
)

// Default is the configured sender: SMTP when MAIL_HOST is set, otherwise a
// logging sender.
func Default() Sender {
	mu.RLock()
	s := current
	mu.RUnlock()
	if s != nil {
		return s
	}
	cfg := smtpFromConfig()
	if cfg.Host == "" {
		return LogSender{}
	}
	return &SMTPSender{cfg: cfg}
}

// Use overrides Default, e.g. with a mock in tests. Use(nil) restores it.
func Use(s Sender) {
	mu.Lock()
	current = s
	mu.Unlock()
}

// LogSender writes the envelope to the log and drops the body.
type LogSender struct{}

func (LogSender) Send(ctx context.Context, m *Message) error {
	if len(m.To) == 0 {
		return ErrNoRecipients
	}
	logger.WithCtx(ctx).Info("mail: not sent, no MAIL_HOST", "to", strings.Join(m.To, ","), "subject", m.Subject)
	return nil
}

// SMTPSender sends with net/smtp, implicit TLS on port 465 and STARTTLS
// otherwise.
type SMTPSender struct {
	cfg SMTP
}

func NewSMTPSender(cfg SMTP) *SMTPSender { return &SMTPSender{cfg: cfg} }

func (s *SMTPSender) Send(ctx context.Context, m *Message) error {
	if len(m.To) == 0 {
		return ErrNoRecipients
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	cfg := s.cfg
	raw := m.raw(fmt.Sprintf("%s <%s>", cfg.FromName, cfg.From))
	addr := net.JoinHostPort(cfg.Host, cfg.Port)

	var auth smtp.Auth
	if cfg.Username != "" {
		auth = smtp.PlainAuth("", cfg.Username, cfg.Password, cfg.Host)
	}
	if cfg.Port != "465" {
		if err := smtp.SendMail(addr, auth, cfg.From, m.To, raw); err != nil {
			return fmt.Errorf("mail: send: %w", err)
		}
		return nil
	}

	conn, err := tls.Dial("tcp", addr, &tls.Config{ServerName: cfg.Host})
	if err != nil {
		return fmt.Errorf("mail: TLS dial: %w", err)
	}
	c, err := smtp.NewClient(conn, cfg.Host)
	if err != nil {
		return err
	}
	defer c.Quit()

	if auth != nil {
		if err := c.Auth(auth); err != nil {
			return err
		}
	}
	if err := c.Mail(cfg.From); err != nil {
		return err
	}
	for _, to := range m.To {
		if err := c.Rcpt(to); err != nil {
			return err
		}
	}
	w, err := c.Data()
	if err != nil {
		return err
	}
	if _, err := w.Write(raw); err != nil {
		return err
	}
	return w.Close()
}

func (m *Message) raw(from string) []byte {
	contentType := "text/plain"
	if m.HTML {
		contentType = "text/html"
	}

	var b strings.Builder
	b.WriteString("From: " + from + "\r\n")
	b.WriteString("To: " + strings.Join(m.To, ", ") + "\r\n")
	b.WriteString("Subject: " + m.Subject + "\r\n")
	b.WriteString("MIME-Version: 1.0\r\n")
	b.WriteString("Content-Type: " + contentType + "; charset=\"UTF-8\"\r\n")
	b.WriteString("\r\n")
	b.WriteString(m.Body)
	return []byte(b.String())
}
