// Package service wires the credential flows to outbound email. Dispatch
// is fire-and-forget: a flow that issued a token never waits on, and is
// never rolled back by, mail delivery. An undelivered email is a
// recoverable inconsistency because every flow can simply be re-triggered.
package service

import (
	"context"
	"encoding/json"
	"log"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/iliyamo/reading-practice/internal/mailer"
	"github.com/iliyamo/reading-practice/internal/queue"
)

// MailDispatcher is the capability handlers depend on. Implementations
// must return quickly and never fail the calling request.
type MailDispatcher interface {
	Dispatch(ctx context.Context, recipient string, tpl mailer.Template)
}

// QueueMailDispatcher publishes mail.requested events to RabbitMQ and
// falls back to sending directly (in the background) when the broker is
// unreachable, so email still goes out on broker outages.
type QueueMailDispatcher struct {
	Fallback mailer.Sender
}

func NewQueueMailDispatcher(fallback mailer.Sender) *QueueMailDispatcher {
	return &QueueMailDispatcher{Fallback: fallback}
}

// Dispatch hands the message off in a background goroutine. The request
// context is not reused: the HTTP response must not wait for the broker.
func (d *QueueMailDispatcher) Dispatch(_ context.Context, recipient string, tpl mailer.Template) {
	ev := queue.MailRequestedEvent{
		Recipient:   recipient,
		Template:    tpl,
		RequestedAt: time.Now().UTC().Format(time.RFC3339),
	}
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := publishMailRequested(ctx, ev); err != nil {
			log.Printf("mail-dispatch: publish failed, falling back to direct send: %v", err)
			if err := d.Fallback.SendTemplateEmail(ev.Recipient, ev.Template); err != nil {
				log.Printf("mail-dispatch: direct send failed: %v", err)
			}
		}
	}()
}

// publishMailRequested publishes a MailRequestedEvent to the
// mail.requested queue. The function attempts to be robust and to never
// panic; any error is logged and returned so the caller can fall back.
// Messages are marked as persistent.
func publishMailRequested(ctx context.Context, event queue.MailRequestedEvent) error {
	conn, err := amqp.Dial(queue.BrokerURL())
	if err != nil {
		log.Printf("rabbitmq: dial failed: %v", err)
		return err
	}
	defer func() { _ = conn.Close() }()

	ch, err := conn.Channel()
	if err != nil {
		log.Printf("rabbitmq: channel open failed: %v", err)
		return err
	}
	defer func() { _ = ch.Close() }()

	// Ensure the queue exists (idempotent). Durable so messages survive broker restarts.
	if _, err := ch.QueueDeclare(
		queue.MailQueueName, // name
		true,                // durable
		false,               // autoDelete
		false,               // exclusive
		false,               // noWait
		nil,                 // args
	); err != nil {
		log.Printf("rabbitmq: queue declare failed: %v", err)
		return err
	}

	body, err := json.Marshal(event)
	if err != nil {
		log.Printf("rabbitmq: marshal event failed: %v", err)
		return err
	}

	pub := amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent, // store on disk
		Timestamp:    time.Now().UTC(),
		Body:         body,
	}

	if err := ch.PublishWithContext(ctx,
		"",                  // default exchange
		queue.MailQueueName, // routing key = queue name
		false,               // mandatory
		false,               // immediate
		pub,
	); err != nil {
		log.Printf("rabbitmq: publish failed: %v", err)
		return err
	}

	return nil
}
