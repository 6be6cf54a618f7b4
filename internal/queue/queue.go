package queue

import (
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"
)

// Publisher is what the campaign pipeline needs from a queue.
type Publisher interface {
	Publish(topic string, payload any) error
}

type Queue interface {
	Publisher
	Subscribe(topic string, handler func(payload any) error) error
}

// InMemoryQueue delivers to in-process subscribers with retry. It stands in
// for the broker when no AMQP URL is configured.
type InMemoryQueue struct {
	Logger     *zap.Logger
	MaxRetries int
	Backoff    time.Duration

	mu       sync.Mutex
	handlers map[string][]func(payload any) error
	inflight sync.WaitGroup
}

func NewInMemoryQueue(logger *zap.Logger) *InMemoryQueue {
	return &InMemoryQueue{
		Logger:     logger,
		MaxRetries: 3,
		Backoff:    500 * time.Millisecond,
		handlers:   make(map[string][]func(payload any) error),
	}
}

// JobPayload wraps a message payload with retry info
type JobPayload struct {
	Topic      string
	Payload    any
	RetryCount int
	MaxRetries int
}

func (q *InMemoryQueue) Publish(topic string, payload any) error {
	q.mu.Lock()
	handlers := q.handlers[topic]
	q.mu.Unlock()

	if len(handlers) == 0 {
		return fmt.Errorf("no subscribers for topic %s", topic)
	}

	job := JobPayload{
		Topic:      topic,
		Payload:    payload,
		MaxRetries: q.MaxRetries,
	}
	for _, handler := range handlers {
		q.inflight.Add(1)
		go func(h func(payload any) error) {
			defer q.inflight.Done()
			q.processJob(h, job)
		}(handler)
	}
	return nil
}

// processJob handles retries and errors
func (q *InMemoryQueue) processJob(handler func(payload any) error, job JobPayload) {
	for job.RetryCount <= job.MaxRetries {
		err := handler(job.Payload)
		if err == nil {
			q.Logger.Debug("job processed", zap.String("topic", job.Topic))
			return
		}

		job.RetryCount++
		q.Logger.Warn("job failed",
			zap.String("topic", job.Topic),
			zap.Int("attempt", job.RetryCount),
			zap.Int("max_retries", job.MaxRetries),
			zap.Error(err))

		if job.RetryCount > job.MaxRetries {
			q.Logger.Error("job permanently failed", zap.String("topic", job.Topic), zap.Int("attempts", job.RetryCount))
			return
		}

		time.Sleep(time.Duration(job.RetryCount) * q.Backoff)
	}
}

func (q *InMemoryQueue) Subscribe(topic string, handler func(payload any) error) error {
	q.mu.Lock()
	defer q.mu.Unlock()

	q.handlers[topic] = append(q.handlers[topic], handler)
	return nil
}

// Close blocks until every published job has been handled or given up on.
func (q *InMemoryQueue) Close() error {
	q.inflight.Wait()
	return nil
}
