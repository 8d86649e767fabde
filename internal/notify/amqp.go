package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	log "github.com/sirupsen/logrus"
)

// ExchangeName is the topic exchange notices are published to, routed by
// notice kind.
const ExchangeName = "ticketing.notices"

const (
	dialAttempts   = 30
	dialRetryDelay = 2 * time.Second
	publishTimeout = 10 * time.Second
)

// Connection wraps an AMQP connection with startup retries.
type Connection struct {
	conn *amqp.Connection
}

// Connect dials the broker, retrying while it comes up.
func Connect(url string) (*Connection, error) {
	var err error
	for i := 0; i < dialAttempts; i++ {
		var conn *amqp.Connection
		conn, err = amqp.Dial(url)
		if err == nil {
			return &Connection{conn: conn}, nil
		}
		log.WithError(err).Warn("amqp dial failed, retrying")
		time.Sleep(dialRetryDelay)
	}
	return nil, fmt.Errorf("connect to amqp after %d attempts: %w", dialAttempts, err)
}

// Close closes the underlying connection.
func (c *Connection) Close() error {
	if c.conn != nil {
		return c.conn.Close()
	}
	return nil
}

// AMQPNotifier publishes notices to a durable topic exchange as persistent
// JSON messages.
type AMQPNotifier struct {
	channel *amqp.Channel
}

// NewAMQPNotifier opens a channel and declares the exchange.
func NewAMQPNotifier(conn *Connection) (*AMQPNotifier, error) {
	ch, err := conn.conn.Channel()
	if err != nil {
		return nil, fmt.Errorf("open channel: %w", err)
	}
	if err := ch.ExchangeDeclare(
		ExchangeName,
		"topic",
		true,  // durable
		false, // auto-deleted
		false, // internal
		false, // no-wait
		nil,
	); err != nil {
		return nil, fmt.Errorf("declare exchange: %w", err)
	}
	return &AMQPNotifier{channel: ch}, nil
}

// Publish sends the notice routed by its kind. Delivery runs on its own
// deadline: a cancelled request context cannot abort a broadcast for an
// already-committed operation.
func (n *AMQPNotifier) Publish(_ context.Context, notice Notice) error {
	body, err := json.Marshal(notice)
	if err != nil {
		return fmt.Errorf("marshal notice: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), publishTimeout)
	defer cancel()

	return n.channel.PublishWithContext(
		ctx,
		ExchangeName,
		string(notice.Kind),
		false, // mandatory
		false, // immediate
		amqp.Publishing{
			ContentType:  "application/json",
			MessageId:    notice.ID,
			Timestamp:    notice.Timestamp,
			DeliveryMode: amqp.Persistent,
			Body:         body,
		},
	)
}

// Close closes the publisher channel.
func (n *AMQPNotifier) Close() error {
	if n.channel != nil {
		return n.channel.Close()
	}
	return nil
}
