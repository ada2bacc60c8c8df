package queue

import (
	"context"
	"encoding/json"
	"fmt"

	amqp "github.com/rabbitmq/amqp091-go"

	"search-telemetry/internal/domain"
)

// Ключи маршрутизации конвейера обучения.
const (
	routingKeyEvents  = "telemetry.events"
	routingKeyMetrics = "telemetry.metrics"
)

// AMQPPublisher раздаёт принятые конверты в exchange конвейера обучения.
type AMQPPublisher struct {
	conn     *amqp.Connection
	ch       *amqp.Channel
	exchange string
}

var _ domain.BatchPublisher = (*AMQPPublisher)(nil)

// NewAMQPPublisher подключается к брокеру и объявляет topic-exchange.
func NewAMQPPublisher(url, exchange string) (*AMQPPublisher, error) {
	if url == "" {
		return nil, fmt.Errorf("amqp url пуст")
	}
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("подключение к брокеру: %w", err)
	}
	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("открытие канала: %w", err)
	}
	if err := ch.ExchangeDeclare(exchange, "topic", true, false, false, false, nil); err != nil {
		_ = ch.Close()
		_ = conn.Close()
		return nil, fmt.Errorf("объявление exchange: %w", err)
	}
	return &AMQPPublisher{conn: conn, ch: ch, exchange: exchange}, nil
}

// PublishEvents публикует конверт событий.
func (p *AMQPPublisher) PublishEvents(ctx context.Context, batch domain.EventBatch) error {
	return p.publish(ctx, routingKeyEvents, batch)
}

// PublishMetrics публикует конверт метрик.
func (p *AMQPPublisher) PublishMetrics(ctx context.Context, batch domain.MetricBatch) error {
	return p.publish(ctx, routingKeyMetrics, batch)
}

func (p *AMQPPublisher) publish(ctx context.Context, key string, payload any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("сериализация конверта: %w", err)
	}
	err = p.ch.PublishWithContext(ctx, p.exchange, key, false, false, amqp.Publishing{
		ContentType: "application/json",
		Body:        body,
	})
	if err != nil {
		return fmt.Errorf("публикация в %s: %w", key, err)
	}
	return nil
}

// Close освобождает канал и соединение.
func (p *AMQPPublisher) Close() error {
	if err := p.ch.Close(); err != nil {
		_ = p.conn.Close()
		return err
	}
	return p.conn.Close()
}
