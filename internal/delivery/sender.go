package delivery

import (
	"fmt"
	"log"
	"net/smtp"

	"legado/internal/common"
	"legado/internal/config"
)

// SMTPSender delivers notifications through a plain SMTP relay.
type SMTPSender struct {
	cfg *config.EmailConfig
}

func NewSMTPSender(cfg *config.EmailConfig) *SMTPSender {
	return &SMTPSender{cfg: cfg}
}

func (s *SMTPSender) SendEmail(to, subject, body string) error {
	addr := fmt.Sprintf("%s:%d", s.cfg.SMTPHost, s.cfg.SMTPPort)
	auth := smtp.PlainAuth("", s.cfg.Username, s.cfg.Password, s.cfg.SMTPHost)

	msg := fmt.Sprintf("From: %s <%s>\r\nTo: %s\r\nSubject: %s\r\nContent-Type: text/plain; charset=utf-8\r\n\r\n%s",
		s.cfg.FromName, s.cfg.FromEmail, to, subject, body)

	if err := smtp.SendMail(addr, auth, s.cfg.FromEmail, []string{to}, []byte(msg)); err != nil {
		return fmt.Errorf("failed to send email: %w", err)
	}
	return nil
}

// LogSender stands in when email is disabled (development, tests).
type LogSender struct{}

func (l *LogSender) SendEmail(to, subject, body string) error {
	log.Printf("Mock Email - To: %s, Subject: %s", to, subject)
	return nil
}

// NewSender picks the configured implementation.
func NewSender(cfg *config.Config) common.Sender {
	if cfg.Email.Enabled {
		return NewSMTPSender(&cfg.Email)
	}
	return &LogSender{}
}
