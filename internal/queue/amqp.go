package queue

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/streadway/amqp"
	"go.uber.org/zap"
)

// Channel is the subset of *amqp.Channel the publisher uses.
type Channel interface {
	QueueDeclare(name string, durable, autoDelete, exclusive, noWait bool, args amqp.Table) (amqp.Queue, error)
	Publish(exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error
	Close() error
}

// AMQPQueue publishes JSON messages to one durable queue on the default
// exchange. The topic travels in the message type.
type AMQPQueue struct {
	Logger     *zap.Logger
	MaxRetries int
	Backoff    time.Duration

	conn  *amqp.Connection
	ch    Channel
	queue string
}

// DialAMQP connects, opens a channel and declares queueName.
func DialAMQP(url, queueName string, logger *zap.Logger) (*AMQPQueue, error) {
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("connect to rabbitmq: %w", err)
	}
	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("open channel: %w", err)
	}

	q, err := NewAMQPQueue(ch, queueName, logger)
	if err != nil {
		ch.Close()
		conn.Close()
		return nil, err
	}
	q.conn = conn
	return q, nil
}

func NewAMQPQueue(ch Channel, queueName string, logger *zap.Logger) (*AMQPQueue, error) {
	_, err := ch.QueueDeclare(
		queueName,
		true,  // durable
		false, // delete when unused
		false, // exclusive
		false, // no-wait
		nil,
	)
	if err != nil {
		return nil, fmt.Errorf("declare queue %s: %w", queueName, err)
	}
	return &AMQPQueue{
		Logger:     logger,
		MaxRetries: 3,
		Backoff:    500 * time.Millisecond,
		ch:         ch,
		queue:      queueName,
	}, nil
}

func (q *AMQPQueue) Publish(topic string, payload any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("encode %s payload: %w", topic, err)
	}
	msg := amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		Type:         topic,
		Timestamp:    time.Now().UTC(),
		Body:         body,
	}

	for attempt := 0; ; attempt++ {
		err = q.ch.Publish("", q.queue, false, false, msg)
		if err == nil {
			q.Logger.Info("event published", zap.String("topic", topic), zap.String("queue", q.queue))
			return nil
		}
		if attempt >= q.MaxRetries {
			return fmt.Errorf("publish %s after %d attempts: %w", topic, attempt+1, err)
		}
		q.Logger.Warn("publish failed, retrying",
			zap.String("topic", topic),
			zap.Int("attempt", attempt+1),
			zap.Error(err))
		time.Sleep(time.Duration(attempt+1) * q.Backoff)
	}
}

func (q *AMQPQueue) Close() error {
	err := q.ch.Close()
	if q.conn != nil {
		if cerr := q.conn.Close(); err == nil {
			err = cerr
		}
	}
	return err
}
