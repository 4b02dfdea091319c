/**
 * @description
 * RabbitMQ publisher for membership events. The topic exchange is declared
 * once when the producer is created; publishing failures never affect the
 * storage transaction that triggered the event.
 */
package rabbitmq

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"time"

	"github.com/rabbitmq/amqp091-go"
)

// Publisher is the interface implemented by event publishers.
type Publisher interface {
	Publish(ctx context.Context, exchange, routingKey string, body interface{}) error
	Close()
}

// EventProducer holds the RabbitMQ connection and channel.
type EventProducer struct {
	conn    *amqp091.Connection
	channel *amqp091.Channel
}

// NoopProducer is used when RabbitMQ is not configured; events are logged
// and dropped so the service keeps working without a broker.
type NoopProducer struct{}

func (p *NoopProducer) Publish(ctx context.Context, exchange, routingKey string, body interface{}) error {
	log.Printf("[MQ-NOOP] dropping event exchange=%q routing_key=%q", exchange, routingKey)
	return nil
}

func (p *NoopProducer) Close() {}

// NewEventProducer connects to RabbitMQ and declares the given topic
// exchange so publishes cannot race exchange creation.
func NewEventProducer(amqpURL, exchange string) (*EventProducer, error) {
	conn, err := amqp091.DialConfig(amqpURL, amqp091.Config{Dial: amqp091.DefaultDial(10 * time.Second)})
	if err != nil {
		return nil, err
	}

	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, err
	}

	if err := ch.ExchangeDeclare(exchange, "topic", true, false, false, false, nil); err != nil {
		ch.Close()
		conn.Close()
		return nil, err
	}

	return &EventProducer{conn: conn, channel: ch}, nil
}

// Publish sends a JSON message to an exchange with a routing key.
func (p *EventProducer) Publish(ctx context.Context, exchange, routingKey string, body interface{}) error {
	if p.channel == nil {
		return errors.New("rabbitmq channel not initialized")
	}

	payload, err := json.Marshal(body)
	if err != nil {
		return err
	}

	return p.channel.PublishWithContext(ctx, exchange, routingKey, false, false, amqp091.Publishing{
		ContentType: "application/json",
		Body:        payload,
		Timestamp:   time.Now(),
	})
}

// Close closes the RabbitMQ channel and connection.
func (p *EventProducer) Close() {
	if p.channel != nil {
		_ = p.channel.Close()
	}
	if p.conn != nil {
		_ = p.conn.Close()
	}
}
