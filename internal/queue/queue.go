package queue

import (
	"context"
	"encoding/json"

	"github.com/streadway/amqp"
	"go.uber.org/zap"
)

// DispatchJob asks the worker to drain pending batches for one owner.
type DispatchJob struct {
	UserID string `json:"user_id"`
}

// Queue is the dispatch trigger. Delivery is at-least-once; duplicate jobs
// are harmless because batch claims are atomic.
type Queue interface {
	PublishDispatch(ctx context.Context, userID string) error
	Close() error
}

// RabbitQueue is the RabbitMQ-backed Queue.
type RabbitQueue struct {
	conn      *amqp.Connection
	ch        *amqp.Channel
	queueName string
	logger    *zap.Logger
}

// NewRabbitQueue connects to the broker and declares the durable dispatch
// queue.
func NewRabbitQueue(url, queueName string, logger *zap.Logger) (*RabbitQueue, error) {
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, err
	}

	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, err
	}

	_, err = ch.QueueDeclare(
		queueName,
		true,  // durable
		false, // delete when unused
		false, // exclusive
		false, // no-wait
		nil,
	)
	if err != nil {
		ch.Close()
		conn.Close()
		return nil, err
	}

	return &RabbitQueue{conn: conn, ch: ch, queueName: queueName, logger: logger}, nil
}

func (q *RabbitQueue) PublishDispatch(_ context.Context, userID string) error {
	body, err := json.Marshal(DispatchJob{UserID: userID})
	if err != nil {
		return err
	}
	return q.ch.Publish(
		"",
		q.queueName,
		false,
		false,
		amqp.Publishing{
			ContentType:  "application/json",
			DeliveryMode: amqp.Persistent,
			Body:         body,
		},
	)
}

// Consume delivers dispatch jobs to handler until the channel closes. A
// handler error is logged and the job acknowledged anyway: the dispatcher
// leaves interrupted work in a state the recovery sweep re-queues, so
// redelivering the same job immediately would only spin.
func (q *RabbitQueue) Consume(handler func(job DispatchJob) error) error {
	deliveries, err := q.ch.Consume(
		q.queueName,
		"",
		false, // manual ack
		false,
		false,
		false,
		nil,
	)
	if err != nil {
		return err
	}

	for d := range deliveries {
		var job DispatchJob
		if err := json.Unmarshal(d.Body, &job); err != nil {
			q.logger.Warn("invalid dispatch job, dropping", zap.Error(err))
			d.Ack(false)
			continue
		}

		if err := handler(job); err != nil {
			q.logger.Error("dispatch job failed",
				zap.String("user_id", job.UserID),
				zap.Error(err),
			)
		}
		d.Ack(false)
	}
	return nil
}

func (q *RabbitQueue) Close() error {
	if err := q.ch.Close(); err != nil {
		q.conn.Close()
		return err
	}
	return q.conn.Close()
}

var _ Queue = (*RabbitQueue)(nil)
