package queue

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/google/uuid"
	"github.com/streadway/amqp"
	"go.uber.org/zap"
)

// AMQPQueue maps topics to durable RabbitMQ queues on the default exchange.
// Deliveries are acked before the handler runs, so a message is processed
// at most once. Close lets a running handler finish; deliveries that arrive
// after Close starts are requeued for the next consumer.
type AMQPQueue struct {
	conn *amqp.Connection
	ch   *amqp.Channel
	log  *zap.Logger

	mu      sync.Mutex
	cancels []func() error
	closing atomic.Bool
	wg      sync.WaitGroup
}

func NewAMQPQueue(url string, log *zap.Logger) (*AMQPQueue, error) {
	if log == nil {
		log = zap.NewNop()
	}
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("connecting to RabbitMQ: %w", err)
	}
	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("opening channel: %w", err)
	}
	return &AMQPQueue{conn: conn, ch: ch, log: log}, nil
}

func (q *AMQPQueue) declare(topic string) (amqp.Queue, error) {
	return q.ch.QueueDeclare(
		topic, // name
		true,  // durable
		false, // delete when unused
		false, // exclusive
		false, // no-wait
		nil,   // arguments
	)
}

func (q *AMQPQueue) Publish(ctx context.Context, topic string, body []byte) error {
	if _, err := q.declare(topic); err != nil {
		return fmt.Errorf("declaring queue %s: %w", topic, err)
	}
	return q.ch.Publish("", topic, false, false, amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		Body:         body,
	})
}

// Subscribe consumes the topic's queue on a background goroutine until the
// queue is closed.
func (q *AMQPQueue) Subscribe(topic string, handler Handler) error {
	queue, err := q.declare(topic)
	if err != nil {
		return fmt.Errorf("declaring queue %s: %w", topic, err)
	}
	if err := q.ch.Qos(1, 0, false); err != nil {
		return fmt.Errorf("setting prefetch: %w", err)
	}
	tag := topic + "-" + uuid.NewString()
	msgs, err := q.ch.Consume(
		queue.Name,
		tag,
		false, // manual ack
		false,
		false,
		false,
		nil,
	)
	if err != nil {
		return fmt.Errorf("registering consumer: %w", err)
	}

	q.mu.Lock()
	q.cancels = append(q.cancels, func() error { return q.ch.Cancel(tag, false) })
	q.mu.Unlock()

	q.consume(topic, msgs, handler)
	return nil
}

// consume handles deliveries on a tracked goroutine until msgs is closed.
func (q *AMQPQueue) consume(topic string, msgs <-chan amqp.Delivery, handler Handler) {
	q.wg.Add(1)
	go func() {
		defer q.wg.Done()
		for d := range msgs {
			if q.closing.Load() {
				if err := d.Nack(false, true); err != nil {
					q.log.Error("requeue failed", zap.String("topic", topic), zap.Error(err))
				}
				continue
			}
			if err := d.Ack(false); err != nil {
				q.log.Error("ack failed", zap.String("topic", topic), zap.Error(err))
				continue
			}
			if err := handler(context.Background(), d.Body); err != nil {
				q.log.Error("message failed", zap.String("topic", topic), zap.Error(err))
			}
		}
		q.log.Info("consumer stopped", zap.String("topic", topic))
	}()
}

// stopConsumers cancels every consumer and waits for in-flight handlers.
func (q *AMQPQueue) stopConsumers() {
	q.closing.Store(true)

	q.mu.Lock()
	cancels := q.cancels
	q.cancels = nil
	q.mu.Unlock()

	for _, cancel := range cancels {
		if err := cancel(); err != nil {
			q.log.Warn("consumer cancel failed", zap.Error(err))
		}
	}
	q.wg.Wait()
}

func (q *AMQPQueue) Close() error {
	q.stopConsumers()
	if err := q.ch.Close(); err != nil {
		q.conn.Close()
		return err
	}
	return q.conn.Close()
}

var _ Queue = (*AMQPQueue)(nil)
