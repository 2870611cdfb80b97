package rabbitmq

import (
	"fmt"
	"log/slog"

	amqp "github.com/rabbitmq/amqp091-go"
)

const (
	EventsExchange = "events"
	ExchangeKind   = "topic"
	QueueName      = "reservation-service.events"

	// EventsBindingKey matches event.created, event.updated and any future event.* key.
	EventsBindingKey = "event.*"
)

// Consumer reads event-service messages from a durable queue with manual acks.
type Consumer struct {
	conn    *amqp.Connection
	channel *amqp.Channel
	log     *slog.Logger
	queue   string
}

// NewConsumer dials url and binds QueueName to EventsBindingKey on EventsExchange.
func NewConsumer(url string, log *slog.Logger) (*Consumer, error) {
	if log == nil {
		log = slog.Default()
	}

	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("rabbitmq dial: %w", err)
	}

	c := &Consumer{conn: conn, log: log, queue: QueueName}
	if err := c.setup(); err != nil {
		c.Close()
		return nil, err
	}
	return c, nil
}

func (c *Consumer) setup() error {
	ch, err := c.conn.Channel()
	if err != nil {
		return fmt.Errorf("rabbitmq channel: %w", err)
	}
	c.channel = ch

	// one unacked delivery at a time: upserts apply in publish order
	if err := ch.Qos(1, 0, false); err != nil {
		return fmt.Errorf("rabbitmq qos: %w", err)
	}
	if err := ch.ExchangeDeclare(EventsExchange, ExchangeKind, true, false, false, false, nil); err != nil {
		return fmt.Errorf("rabbitmq declare exchange %s: %w", EventsExchange, err)
	}
	q, err := ch.QueueDeclare(c.queue, true, false, false, false, nil)
	if err != nil {
		return fmt.Errorf("rabbitmq declare queue %s: %w", c.queue, err)
	}
	if err := ch.QueueBind(q.Name, EventsBindingKey, EventsExchange, false, nil); err != nil {
		return fmt.Errorf("rabbitmq bind %s to %s/%s: %w", q.Name, EventsExchange, EventsBindingKey, err)
	}

	c.log.Info("rabbitmq queue bound",
		"queue", q.Name,
		"exchange", EventsExchange,
		"binding_key", EventsBindingKey,
		"pending", q.Messages,
	)
	return nil
}

func (c *Consumer) Consume() (<-chan amqp.Delivery, error) {
	msgs, err := c.channel.Consume(c.queue, "", false, false, false, false, nil)
	if err != nil {
		return nil, fmt.Errorf("rabbitmq consume %s: %w", c.queue, err)
	}
	c.log.Info("rabbitmq consuming", "queue", c.queue)
	return msgs, nil
}

func (c *Consumer) Close() {
	if c.channel != nil {
		if err := c.channel.Close(); err != nil {
			c.log.Debug("rabbitmq channel close", "err", err)
		}
	}
	if c.conn != nil {
		if err := c.conn.Close(); err != nil {
			c.log.Debug("rabbitmq connection close", "err", err)
		}
	}
}
