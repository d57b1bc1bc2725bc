package notify

import (
	"gopkg.in/gomail.v2"

	"github.com/spec-kit/civicguard/internal/config"
)

// EmailSender delivers filing messages to authority mailboxes.
type EmailSender interface {
	Send(to, subject, body string) error
}

// SMTPSender sends over authenticated SMTP with STARTTLS.
type SMTPSender struct {
	dialer *gomail.Dialer
	from   string
}

// NewSMTPSender constructs the sender from config.
func NewSMTPSender(cfg config.SMTPConfig) *SMTPSender {
	return &SMTPSender{
		dialer: gomail.NewDialer(cfg.Host, cfg.Port, cfg.User, cfg.Pass),
		from:   cfg.From,
	}
}

// Send composes and delivers one plain-text message.
func (s *SMTPSender) Send(to, subject, body string) error {
	msg := gomail.NewMessage()
	msg.SetHeader("From", s.from)
	msg.SetHeader("To", to)
	msg.SetHeader("Subject", subject)
	msg.SetBody("text/plain", body)
	return s.dialer.DialAndSend(msg)
}
