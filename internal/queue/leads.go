// Package queue publica eventos de lead para o worker de e-mail.
package queue

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"

	"avaliacar/internal/model"
)

type LeadPublisher struct {
	conn    *amqp.Connection
	channel *amqp.Channel
	queue   string
}

// NewLeadPublisher conecta no RabbitMQ e declara a fila de leads. A fila
// é durável: lead perdido é cliente perdido.
func NewLeadPublisher(url, queue string) (*LeadPublisher, error) {
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to rabbitmq: %w", err)
	}

	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to open channel: %w", err)
	}

	if _, err := ch.QueueDeclare(queue, true, false, false, false, nil); err != nil {
		ch.Close()
		conn.Close()
		return nil, fmt.Errorf("failed to declare queue %s: %w", queue, err)
	}

	return &LeadPublisher{conn: conn, channel: ch, queue: queue}, nil
}

// Publish envia o lead em JSON para a fila.
func (p *LeadPublisher) Publish(ctx context.Context, lead model.Lead) error {
	body, err := json.Marshal(lead)
	if err != nil {
		return fmt.Errorf("failed to marshal lead %s: %w", lead.ID, err)
	}

	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	err = p.channel.PublishWithContext(ctx, "", p.queue, false, false, amqp.Publishing{
		ContentType:  "application/json",
		Body:         body,
		DeliveryMode: amqp.Persistent,
		Timestamp:    time.Now(),
	})
	if err != nil {
		return fmt.Errorf("failed to publish lead %s: %w", lead.ID, err)
	}
	return nil
}

func (p *LeadPublisher) Close() error {
	if p.channel != nil {
		p.channel.Close()
	}
	return p.conn.Close()
}
