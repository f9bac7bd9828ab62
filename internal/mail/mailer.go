package mail

import (
	"fmt"
	"net/smtp"
)

// Sender delivers notification mail. Implementations must be safe for
// concurrent use; callers treat delivery as fire-and-forget.
type Sender interface {
	Send(to, subject, body string) error
}

type Config struct {
	Host string
	Port int
	User string
	Pass string
	From string
}

// SMTPSender sends plain-text mail over SMTP.
type SMTPSender struct {
	cfg Config
}

func NewSMTPSender(cfg Config) *SMTPSender {
	return &SMTPSender{cfg: cfg}
}

func (s *SMTPSender) Send(to, subject, body string) error {
	msg := fmt.Sprintf("From: %s\r\nTo: %s\r\nSubject: %s\r\n\r\n%s\r\n",
		s.cfg.From, to, subject, body)

	addr := fmt.Sprintf("%s:%d", s.cfg.Host, s.cfg.Port)
	var auth smtp.Auth
	if s.cfg.User != "" {
		auth = smtp.PlainAuth("", s.cfg.User, s.cfg.Pass, s.cfg.Host)
	}

	if err := smtp.SendMail(addr, auth, s.cfg.From, []string{to}, []byte(msg)); err != nil {
		return fmt.Errorf("Send: %w", err)
	}
	return nil
}

// NopSender discards mail. Used in tests and local development.
type NopSender struct{}

func (NopSender) Send(to, subject, body string) error { return nil }
