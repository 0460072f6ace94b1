package mq

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/Harshith014/resumeUploader/config"
	"github.com/google/uuid"
	amqp "github.com/rabbitmq/amqp091-go"
)

// RabbitMQClient routes each channel to a queue of the same name through
// the default exchange. Publishes wait for a broker confirm.
type RabbitMQClient struct {
	conn *amqp.Connection
	ch   *amqp.Channel
	opts config.RabbitMQConfig

	mu       sync.Mutex
	declared map[string]struct{}
}

// NewRabbitMQClient dials the broker and puts the channel in confirm mode.
func NewRabbitMQClient(cfg config.RabbitMQConfig) (*RabbitMQClient, error) {
	if strings.TrimSpace(cfg.URL) == "" {
		return nil, errors.New("rabbitmq url is required")
	}

	conn, err := amqp.Dial(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("dial rabbitmq: %w", err)
	}
	client := &RabbitMQClient{conn: conn, opts: cfg, declared: make(map[string]struct{})}

	if err := client.setup(); err != nil {
		_ = client.Close()
		return nil, err
	}
	return client, nil
}

func (r *RabbitMQClient) setup() error {
	ch, err := r.conn.Channel()
	if err != nil {
		return fmt.Errorf("open rabbitmq channel: %w", err)
	}
	r.ch = ch

	if err := ch.Confirm(false); err != nil {
		return fmt.Errorf("enable publisher confirms: %w", err)
	}
	if r.opts.PrefetchCount > 0 {
		if err := ch.Qos(r.opts.PrefetchCount, 0, false); err != nil {
			return fmt.Errorf("set prefetch: %w", err)
		}
	}
	return nil
}

// Publish sends data to the channel's queue and returns the generated
// message id once the broker has acknowledged it.
func (r *RabbitMQClient) Publish(ctx context.Context, channel string, data []byte, attrs map[string]string) (string, error) {
	if err := r.queue(channel); err != nil {
		return "", err
	}

	msg := amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Transient,
		MessageId:    uuid.NewString(),
		Timestamp:    time.Now().UTC(),
		Headers:      amqp.Table{},
		Body:         data,
	}
	if r.opts.QueueDurable {
		msg.DeliveryMode = amqp.Persistent
	}
	for key, value := range attrs {
		msg.Headers[key] = value
	}

	confirm, err := r.ch.PublishWithDeferredConfirmWithContext(ctx, "", channel, false, false, msg)
	if err != nil {
		return "", fmt.Errorf("publish to %s: %w", channel, err)
	}
	acked, err := confirm.WaitContext(ctx)
	if err != nil {
		return "", fmt.Errorf("wait for confirm on %s: %w", channel, err)
	}
	if !acked {
		return "", fmt.Errorf("broker rejected message on %s", channel)
	}
	return msg.MessageId, nil
}

// Subscribe consumes the channel's queue until ctx is done. Messages whose
// handler fails are requeued.
func (r *RabbitMQClient) Subscribe(ctx context.Context, channel string, handler Handler) error {
	if err := r.queue(channel); err != nil {
		return err
	}

	tag := "resumeuploader-" + uuid.NewString()
	deliveries, err := r.ch.ConsumeWithContext(ctx, channel, tag, false, false, false, false, nil)
	if err != nil {
		return fmt.Errorf("consume %s: %w", channel, err)
	}
	defer func() { _ = r.ch.Cancel(tag, false) }()

	for {
		var delivery amqp.Delivery
		var ok bool
		select {
		case <-ctx.Done():
			return ctx.Err()
		case delivery, ok = <-deliveries:
		}
		if !ok {
			return errors.New("rabbitmq delivery channel closed")
		}

		err := handler(ctx, Message{
			ID:         delivery.MessageId,
			Data:       delivery.Body,
			Attributes: stringHeaders(delivery.Headers),
		})
		if err != nil {
			_ = delivery.Nack(false, true)
		} else {
			_ = delivery.Ack(false)
		}
	}
}

// Close releases the channel and the connection.
func (r *RabbitMQClient) Close() error {
	var errs []error
	if r.ch != nil {
		if err := r.ch.Close(); err != nil && !errors.Is(err, amqp.ErrClosed) {
			errs = append(errs, err)
		}
	}
	if r.conn != nil {
		if err := r.conn.Close(); err != nil && !errors.Is(err, amqp.ErrClosed) {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// queue declares the named queue once per client.
func (r *RabbitMQClient) queue(name string) error {
	if strings.TrimSpace(name) == "" {
		return errors.New("rabbitmq channel is required")
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.declared[name]; ok {
		return nil
	}
	if _, err := r.ch.QueueDeclare(name, r.opts.QueueDurable, r.opts.QueueAutoDelete, false, false, nil); err != nil {
		return fmt.Errorf("declare queue %s: %w", name, err)
	}
	r.declared[name] = struct{}{}
	return nil
}

func stringHeaders(headers amqp.Table) map[string]string {
	if len(headers) == 0 {
		return nil
	}
	attrs := make(map[string]string, len(headers))
	for key, value := range headers {
		if b, ok := value.([]byte); ok {
			attrs[key] = string(b)
			continue
		}
		attrs[key] = fmt.Sprint(value)
	}
	return attrs
}
