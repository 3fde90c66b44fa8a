// Package mailer abstracts outbound email behind a single-method Sender
// so the credential flows stay testable without network I/O. Two
// implementations exist: an SMTP sender for real deployments and a
// log-only sender used when SMTP is not configured (dev and test).
package mailer

import (
	"log"
	"net/url"
)

// Template is the renderable content of one outbound message. Link is
// the only dynamic part the flows produce: a URL embedding a signed
// token.
type Template struct {
	Subject string `json:"subject"`
	Body    string `json:"body"`
	Link    string `json:"link"`
}

// Sender delivers a templated message to a single recipient.
type Sender interface {
	SendTemplateEmail(recipient string, tpl Template) error
}

// PasswordResetTemplate builds the message for a password-reset link.
func PasswordResetTemplate(baseURL, token string) Template {
	link := baseURL + "/password/reset?token=" + url.QueryEscape(token)
	return Template{
		Subject: "Reset your reading-practice password",
		Body:    "Follow the link below to choose a new password. The link expires; request a new one if it no longer works.",
		Link:    link,
	}
}

// ActivationTemplate builds the message for an account-activation invite.
func ActivationTemplate(baseURL, token string) Template {
	link := baseURL + "/accounts/activate?token=" + url.QueryEscape(token)
	return Template{
		Subject: "Activate your reading-practice account",
		Body:    "You have been invited to the reading-practice platform. Follow the link below to set a password and activate your account.",
		Link:    link,
	}
}

// LogSender writes messages to the process log instead of delivering
// them. Useful in development where the emailed link is read from the
// log output.
type LogSender struct{}

func (LogSender) SendTemplateEmail(recipient string, tpl Template) error {
	log.Printf("mailer: [log-only] to=%s subject=%q link=%s", recipient, tpl.Subject, tpl.Link)
	return nil
}

var _ Sender = LogSender{}
