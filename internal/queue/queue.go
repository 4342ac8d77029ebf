package queue

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"
)

// Handler processes one message body. A returned error is logged, and
// retried only when the queue allows retries.
type Handler func(ctx context.Context, body []byte) error

// Queue interface
type Queue interface {
	Publish(ctx context.Context, topic string, body []byte) error
	Subscribe(topic string, handler Handler) error
	Close() error
}

// InMemoryQueue delivers messages to in-process subscribers on their own
// goroutine. It is used when no broker is configured.
type InMemoryQueue struct {
	// MaxRetries is the number of extra attempts after a failed handler.
	MaxRetries int
	Backoff    time.Duration

	mu       sync.Mutex
	handlers map[string][]Handler
	wg       sync.WaitGroup
	log      *zap.Logger
}

// NewInMemoryQueue creates a queue that never retries.
func NewInMemoryQueue(log *zap.Logger) *InMemoryQueue {
	if log == nil {
		log = zap.NewNop()
	}
	return &InMemoryQueue{
		Backoff:  500 * time.Millisecond,
		handlers: make(map[string][]Handler),
		log:      log,
	}
}

// Publish sends a message to all subscribers
func (q *InMemoryQueue) Publish(ctx context.Context, topic string, body []byte) error {
	q.mu.Lock()
	handlers := q.handlers[topic]
	q.mu.Unlock()

	if len(handlers) == 0 {
		return fmt.Errorf("no subscribers for topic %s", topic)
	}

	for _, handler := range handlers {
		q.wg.Add(1)
		go q.process(context.WithoutCancel(ctx), topic, handler, body)
	}
	return nil
}

// process runs the handler with linear backoff between attempts.
func (q *InMemoryQueue) process(ctx context.Context, topic string, handler Handler, body []byte) {
	defer q.wg.Done()
	for attempt := 0; ; attempt++ {
		err := handler(ctx, body)
		if err == nil {
			q.log.Debug("message processed", zap.String("topic", topic))
			return
		}
		if attempt >= q.MaxRetries {
			q.log.Error("message failed", zap.String("topic", topic), zap.Int("attempts", attempt+1), zap.Error(err))
			return
		}
		q.log.Warn("message failed, retrying", zap.String("topic", topic), zap.Int("attempt", attempt+1), zap.Error(err))
		time.Sleep(time.Duration(attempt+1) * q.Backoff)
	}
}

// Subscribe adds a handler for a topic
func (q *InMemoryQueue) Subscribe(topic string, handler Handler) error {
	q.mu.Lock()
	defer q.mu.Unlock()

	q.handlers[topic] = append(q.handlers[topic], handler)
	return nil
}

// Wait blocks until every published message has been handled.
func (q *InMemoryQueue) Wait() {
	q.wg.Wait()
}

// Close waits for in-flight messages.
func (q *InMemoryQueue) Close() error {
	q.Wait()
	return nil
}

var _ Queue = (*InMemoryQueue)(nil)
