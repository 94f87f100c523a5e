package events

import (
	"context"
	"fmt"
	"time"

	"fjacquet/statement-compare/internal/logging"

	"github.com/rabbitmq/amqp091-go"
)

// PublishTimeout bounds a single publish.
const PublishTimeout = 5 * time.Second

// Publisher sends comparison events.
type Publisher interface {
	PublishComparisonCompleted(ctx context.Context, msg *ComparisonCompletedMessage) error
	Close() error
}

// NopPublisher drops every event. It is used when no broker is configured.
type NopPublisher struct{}

func (NopPublisher) PublishComparisonCompleted(context.Context, *ComparisonCompletedMessage) error {
	return nil
}

func (NopPublisher) Close() error { return nil }

type amqpChannel interface {
	PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp091.Publishing) error
	Close() error
}

// AMQPPublisher publishes persistent JSON messages to a durable direct
// exchange. The routing key is the queue name.
type AMQPPublisher struct {
	conn         *amqp091.Connection
	channel      amqpChannel
	exchangeName string
	queueName    string
	logger       logging.Logger
}

// NewAMQPPublisher dials url and declares the exchange, the queue and their binding.
func NewAMQPPublisher(url, exchangeName, queueName string, logger logging.Logger) (*AMQPPublisher, error) {
	conn, err := amqp091.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("dial AMQP: %w", err)
	}

	channel, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("open channel: %w", err)
	}

	if err := declareTopology(channel, exchangeName, queueName); err != nil {
		_ = channel.Close()
		_ = conn.Close()
		return nil, fmt.Errorf("setup exchange and queue: %w", err)
	}

	p := newPublisher(channel, exchangeName, queueName, logger)
	p.conn = conn
	return p, nil
}

func newPublisher(channel amqpChannel, exchangeName, queueName string, logger logging.Logger) *AMQPPublisher {
	return &AMQPPublisher{
		channel:      channel,
		exchangeName: exchangeName,
		queueName:    queueName,
		logger:       logging.OrDefault(logger).WithField(logging.FieldComponent, "events"),
	}
}

func declareTopology(ch *amqp091.Channel, exchangeName, queueName string) error {
	if err := ch.ExchangeDeclare(
		exchangeName, // name
		"direct",     // type
		true,         // durable
		false,        // auto-deleted
		false,        // internal
		false,        // no-wait
		nil,          // arguments
	); err != nil {
		return fmt.Errorf("declare exchange: %w", err)
	}

	if _, err := ch.QueueDeclare(
		queueName, // name
		true,      // durable
		false,     // delete when unused
		false,     // exclusive
		false,     // no-wait
		nil,       // arguments
	); err != nil {
		return fmt.Errorf("declare queue: %w", err)
	}

	if err := ch.QueueBind(queueName, queueName, exchangeName, false, nil); err != nil {
		return fmt.Errorf("bind queue: %w", err)
	}
	return nil
}

// PublishComparisonCompleted publishes msg.
func (p *AMQPPublisher) PublishComparisonCompleted(ctx context.Context, msg *ComparisonCompletedMessage) error {
	if msg == nil {
		return fmt.Errorf("message is required")
	}
	body, err := msg.ToJSON()
	if err != nil {
		return fmt.Errorf("marshal message: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, PublishTimeout)
	defer cancel()

	err = p.channel.PublishWithContext(ctx, p.exchangeName, p.queueName, false, false,
		amqp091.Publishing{
			ContentType:  "application/json",
			DeliveryMode: amqp091.Persistent,
			Timestamp:    msg.Timestamp,
			MessageId:    msg.ComparisonID,
			Body:         body,
		})
	if err != nil {
		return fmt.Errorf("publish message: %w", err)
	}

	p.logger.Info("Published comparison event",
		logging.F(logging.FieldComparisonID, msg.ComparisonID),
		logging.F("exchange", p.exchangeName),
		logging.F("queue", p.queueName))
	return nil
}

// Close closes the channel and the connection.
func (p *AMQPPublisher) Close() error {
	if p.channel != nil {
		_ = p.channel.Close()
	}
	if p.conn != nil {
		return p.conn.Close()
	}
	return nil
}
