// Package queue defines message payloads exchanged over the message broker.
package queue

import "github.com/iliyamo/reading-practice/internal/mailer"

// MailQueueName is the durable queue carrying outbound email requests.
const MailQueueName = "mail.requested"

// MailRequestedEvent is published when a flow needs an email delivered
// (password-reset link, account-activation invite). It carries the fully
// rendered template so the consumer never touches token issuance or the
// database.
type MailRequestedEvent struct {
	Recipient   string          `json:"recipient"`
	Template    mailer.Template `json:"template"`
	RequestedAt string          `json:"requested_at"`
}
