package queue

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/sony/gobreaker"

	"github.com/shashiranjanraj/laundry/pkg/logger"
)

// AMQPDriver publishes to a durable RabbitMQ queue through a circuit breaker
// and consumes from it with manual acks. A delivery is acked once Pop hands
// it to a worker; retries happen in the worker, not the broker.
type AMQPDriver struct {
	conn  *amqp.Connection
	ch    *amqp.Channel
	queue string
	cb    *gobreaker.CircuitBreaker

	once       sync.Once
	deliveries <-chan amqp.Delivery
	consumeErr error
}

func NewAMQPDriver(url, queue string) (*AMQPDriver, error) {
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("queue/amqp: dial: %w", err)
	}
	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("queue/amqp: channel: %w", err)
	}
	if _, err := ch.QueueDeclare(queue, true, false, false, false, nil); err != nil {
		_ = ch.Close()
		_ = conn.Close()
		return nil, fmt.Errorf("queue/amqp: declare %s: %w", queue, err)
	}
	if err := ch.Qos(1, 0, false); err != nil {
		_ = ch.Close()
		_ = conn.Close()
		return nil, fmt.Errorf("queue/amqp: qos: %w", err)
	}

	return &AMQPDriver{
		conn:  conn,
		ch:    ch,
		queue: queue,
		cb:    newPublishBreaker("RabbitMQ-Publisher"),
	}, nil
}

func newPublishBreaker(name string) *gobreaker.CircuitBreaker {
	return gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        name,
		MaxRequests: 3,
		Interval:    10 * time.Second,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(c gobreaker.Counts) bool {
			return c.Requests >= 3 && float64(c.TotalFailures)/float64(c.Requests) >= 0.6
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Warn("queue/amqp: circuit breaker state change",
				slog.String("breaker", name), slog.String("from", from.String()), slog.String("to", to.String()))
		},
	})
}

func (d *AMQPDriver) Push(ctx context.Context, payload []byte) error {
	_, err := d.cb.Execute(func() (interface{}, error) {
		ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
		defer cancel()
		return nil, d.ch.PublishWithContext(ctx, "", d.queue, false, false, amqp.Publishing{
			ContentType:  "application/json",
			DeliveryMode: amqp.Persistent,
			Timestamp:    time.Now(),
			Body:         payload,
		})
	})
	if err != nil {
		return fmt.Errorf("queue/amqp: publish: %w", err)
	}
	return nil
}

func (d *AMQPDriver) Pop(ctx context.Context) ([]byte, error) {
	d.once.Do(func() {
		d.deliveries, d.consumeErr = d.ch.ConsumeWithContext(ctx, d.queue, "", false, false, false, false, nil)
	})
	if d.consumeErr != nil {
		return nil, fmt.Errorf("queue/amqp: consume: %w", d.consumeErr)
	}

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case msg, ok := <-d.deliveries:
		if !ok {
			return nil, errors.New("queue/amqp: delivery channel closed")
		}
		if err := msg.Ack(false); err != nil {
			return nil, fmt.Errorf("queue/amqp: ack: %w", err)
		}
		return msg.Body, nil
	}
}

func (d *AMQPDriver) Close() error {
	if d.ch != nil {
		if err := d.ch.Close(); err != nil {
			return err
		}
	}
	if d.conn != nil {
		return d.conn.Close()
	}
	return nil
}
