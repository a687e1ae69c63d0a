// Package queue публикует события резервирований в RabbitMQ.
// Ошибки публикации логируются и возвращаются, вызывающий код их не пробрасывает.
package queue

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
)

var (
	// ErrPublish возвращается при ошибке публикации события
	ErrPublish = errors.New("queue: failed to publish event")
)

// Logger интерфейс для логирования
type Logger interface {
	Warn(format string, v ...interface{})
}

// Publisher публикует события в topic exchange.
// Соединение открывается на каждую публикацию: события редкие.
type Publisher struct {
	url      string
	exchange string
	logger   Logger
}

// NewPublisher создает издателя
func NewPublisher(url, exchange string, logger Logger) *Publisher {
	return &Publisher{url: url, exchange: exchange, logger: logger}
}

// PublishReservation публикует событие с ключом reservation.<status>
func (p *Publisher) PublishReservation(ctx context.Context, event ReservationEvent) error {
	body, err := json.Marshal(event)
	if err != nil {
		return p.fail("marshal event", err)
	}

	conn, err := amqp.Dial(p.url)
	if err != nil {
		return p.fail("dial", err)
	}
	defer func() { _ = conn.Close() }()

	ch, err := conn.Channel()
	if err != nil {
		return p.fail("open channel", err)
	}
	defer func() { _ = ch.Close() }()

	if err := ch.ExchangeDeclare(
		p.exchange, // name
		"topic",    // kind
		true,       // durable
		false,      // autoDelete
		false,      // internal
		false,      // noWait
		nil,        // args
	); err != nil {
		return p.fail("declare exchange", err)
	}

	msg := amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		Timestamp:    time.Now().UTC(),
		MessageId:    event.ReservationID.String(),
		Body:         body,
	}

	if err := ch.PublishWithContext(ctx, p.exchange, event.RoutingKey(), false, false, msg); err != nil {
		return p.fail("publish", err)
	}

	return nil
}

func (p *Publisher) fail(step string, err error) error {
	if p.logger != nil {
		p.logger.Warn("rabbitmq: %s failed: %v", step, err)
	}
	return fmt.Errorf("%w: %s: %v", ErrPublish, step, err)
}

// NoopPublisher используется, когда брокер отключен
type NoopPublisher struct{}

func (NoopPublisher) PublishReservation(context.Context, ReservationEvent) error { return nil }
