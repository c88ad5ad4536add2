package dispatch

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/servicedesk/backend/internal/metrics"
	"github.com/servicedesk/backend/internal/model"
	"github.com/servicedesk/backend/internal/notify"
)

// DefaultQueue is the durable queue notification jobs are published to.
const DefaultQueue = "submission_notifications"

const publishTimeout = 5 * time.Second

// NotificationJob is the queued snapshot of a submission.
type NotificationJob struct {
	SubmissionID       int64     `json:"submission_id"`
	FullName           string    `json:"full_name"`
	ContactNumber      string    `json:"contact_number"`
	ServiceType        string    `json:"service_type"`
	ProjectDescription string    `json:"project_description"`
	CreatedAt          time.Time `json:"created_at"`
}

func jobFromSubmission(sub *model.Submission) NotificationJob {
	return NotificationJob{
		SubmissionID:       sub.ID,
		FullName:           sub.FullName,
		ContactNumber:      sub.ContactNumber,
		ServiceType:        sub.ServiceType,
		ProjectDescription: sub.ProjectDescription,
		CreatedAt:          sub.CreatedAt,
	}
}

// Submission converts the job back into a model.Submission.
func (j NotificationJob) Submission() *model.Submission {
	return &model.Submission{
		ID:                 j.SubmissionID,
		FullName:           j.FullName,
		ContactNumber:      j.ContactNumber,
		ServiceType:        j.ServiceType,
		ProjectDescription: j.ProjectDescription,
		CreatedAt:          j.CreatedAt,
	}
}

// Publisher is the subset of *amqp.Channel used to enqueue jobs.
type Publisher interface {
	PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error
}

// Consumer is the subset of *amqp.Channel used by Worker.
type Consumer interface {
	Qos(prefetchCount, prefetchSize int, global bool) error
	Consume(queue, consumer string, autoAck, exclusive, noLocal, noWait bool, args amqp.Table) (<-chan amqp.Delivery, error)
}

// Queue publishes notification jobs to RabbitMQ.
type Queue struct {
	ch   Publisher
	name string
}

// NewQueue creates a Queue publishing to the named queue on ch.
func NewQueue(ch Publisher, name string) *Queue {
	return &Queue{ch: ch, name: name}
}

// Publish enqueues one job for sub. It is a Sink.
func (q *Queue) Publish(ctx context.Context, sub *model.Submission) error {
	body, err := json.Marshal(jobFromSubmission(sub))
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(ctx, publishTimeout)
	defer cancel()

	return q.ch.PublishWithContext(ctx,
		"",     // exchange
		q.name, // routing key
		false,
		false,
		amqp.Publishing{
			ContentType:  "application/json",
			DeliveryMode: amqp.Persistent,
			MessageId:    uuid.NewString(),
			Timestamp:    time.Now().UTC(),
			Body:         body,
		},
	)
}

// Broker is one RabbitMQ connection with separate channels for publishing
// and consuming.
type Broker struct {
	conn    *amqp.Connection
	publish *amqp.Channel
	consume *amqp.Channel
}

// Dial connects to RabbitMQ, opens the publish and consume channels and
// declares the durable queue.
func Dial(url, queue string) (*Broker, error) {
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("connect rabbitmq: %w", err)
	}
	b := &Broker{conn: conn}
	if b.publish, err = conn.Channel(); err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("open publish channel: %w", err)
	}
	if b.consume, err = conn.Channel(); err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("open consume channel: %w", err)
	}
	if _, err := b.publish.QueueDeclare(
		queue,
		true,  // durable
		false, // delete when unused
		false, // exclusive
		false, // no-wait
		nil,   // args
	); err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("declare queue: %w", err)
	}
	return b, nil
}

// Publisher returns the channel jobs are published on.
func (b *Broker) Publisher() Publisher { return b.publish }

// Consumer returns the channel Worker consumes from.
func (b *Broker) Consumer() Consumer { return b.consume }

// Lost delivers the first error that closes the connection or either
// channel. A deliberate Close delivers nothing.
func (b *Broker) Lost() <-chan *amqp.Error {
	return watchClose(
		b.conn.NotifyClose(make(chan *amqp.Error, 1)),
		b.publish.NotifyClose(make(chan *amqp.Error, 1)),
		b.consume.NotifyClose(make(chan *amqp.Error, 1)),
	)
}

// Close closes both channels and the connection.
func (b *Broker) Close() error {
	_ = b.publish.Close()
	_ = b.consume.Close()
	return b.conn.Close()
}

func watchClose(sources ...chan *amqp.Error) <-chan *amqp.Error {
	out := make(chan *amqp.Error, 1)
	for _, src := range sources {
		go func(src chan *amqp.Error) {
			if err, ok := <-src; ok && err != nil {
				select {
				case out <- err:
				default:
				}
			}
		}(src)
	}
	return out
}

// workerPrefetch limits unacknowledged deliveries per worker.
const workerPrefetch = 1

// Worker consumes notification jobs and sends one email per job. Each job is
// acknowledged after a single attempt whatever the outcome.
type Worker struct {
	ch       Consumer
	queue    string
	notifier notify.SubmissionNotifier
}

// NewWorker creates a Worker.
func NewWorker(ch Consumer, queue string, notifier notify.SubmissionNotifier) *Worker {
	return &Worker{ch: ch, queue: queue, notifier: notifier}
}

// Run consumes until ctx is cancelled or the delivery channel closes.
func (w *Worker) Run(ctx context.Context) error {
	if err := w.ch.Qos(workerPrefetch, 0, false); err != nil {
		return fmt.Errorf("set prefetch: %w", err)
	}
	msgs, err := w.ch.Consume(
		w.queue,
		"",    // consumer
		false, // auto-ack
		false, // exclusive
		false, // no-local
		false, // no-wait
		nil,
	)
	if err != nil {
		return fmt.Errorf("register consumer: %w", err)
	}

	for {
		select {
		case <-ctx.Done():
			return nil
		case d, ok := <-msgs:
			if !ok {
				return ErrDeliveriesClosed
			}
			w.handle(ctx, d)
		}
	}
}

func (w *Worker) handle(ctx context.Context, d amqp.Delivery) {
	var job NotificationJob
	if err := json.Unmarshal(d.Body, &job); err != nil {
		slog.Error("invalid notification job", "message_id", d.MessageId, "error", fmt.Errorf("%w: %v", ErrMalformedJob, err))
		_ = d.Reject(false)
		return
	}

	err := w.notifier.NotifySubmission(context.WithoutCancel(ctx), job.Submission())
	metrics.RecordNotification("async", err)
	if err != nil {
		slog.Error("async notification failed", "submission_id", job.SubmissionID, "message_id", d.MessageId, "error", err)
	} else {
		slog.Info("async notification finished", "submission_id", job.SubmissionID, "message_id", d.MessageId)
	}
	if err := d.Ack(false); err != nil {
		slog.Warn("ack failed", "message_id", d.MessageId, "error", err)
	}
}
