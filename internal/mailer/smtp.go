package mailer

import (
	"errors"
	"fmt"
	"net/smtp"
	"os"
)

// SMTPConfig holds the connection settings for plain SMTP delivery.
type SMTPConfig struct {
	Host     string
	Port     string
	Username string
	Password string
	From     string
}

// SMTPSender implements Sender over net/smtp with PLAIN auth.
type SMTPSender struct {
	Config SMTPConfig
}

func (s *SMTPSender) SendTemplateEmail(recipient string, tpl Template) error {
	auth := smtp.PlainAuth("", s.Config.Username, s.Config.Password, s.Config.Host)
	msg := []byte(fmt.Sprintf(
		"To: %s\r\nFrom: %s\r\nSubject: %s\r\nContent-Type: text/plain; charset=utf-8\r\n\r\n%s\r\n\r\n%s\r\n",
		recipient, s.Config.From, tpl.Subject, tpl.Body, tpl.Link))
	addr := s.Config.Host + ":" + s.Config.Port
	if err := smtp.SendMail(addr, auth, s.Config.From, []string{recipient}, msg); err != nil {
		return fmt.Errorf("smtp send to %s: %w", recipient, err)
	}
	return nil
}

func validateSMTPConfig(cfg SMTPConfig) error {
	if cfg.Host == "" || cfg.Port == "" || cfg.From == "" {
		return errors.New("incomplete smtp configuration")
	}
	return nil
}

// NewSenderFromEnv builds a Sender from SMTP_* environment variables.
// When SMTP is not configured the log-only sender is returned so the
// flows keep working in development.
func NewSenderFromEnv() Sender {
	cfg := SMTPConfig{
		Host:     os.Getenv("SMTP_HOST"),
		Port:     os.Getenv("SMTP_PORT"),
		Username: os.Getenv("SMTP_USERNAME"),
		Password: os.Getenv("SMTP_PASSWORD"),
		From:     os.Getenv("SMTP_FROM"),
	}
	if err := validateSMTPConfig(cfg); err != nil {
		return LogSender{}
	}
	return &SMTPSender{Config: cfg}
}
