package mq

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/dcode-ide/apiserver/config"
	"github.com/google/uuid"
	amqp "github.com/rabbitmq/amqp091-go"
)

const rabbitAppID = "dcode-apiserver"

// RabbitMQClient publishes to and consumes from RabbitMQ queues through the
// default exchange. The channel runs in confirm mode, so Publish returns only
// once the broker has taken the message.
type RabbitMQClient struct {
	conn       *amqp.Connection
	channel    *amqp.Channel
	durable    bool
	autoDelete bool

	// mu serializes use of channel, which is shared by request goroutines.
	mu       sync.Mutex
	declared map[string]bool
}

// NewRabbitMQClient dials RabbitMQ and opens a confirm-mode channel.
func NewRabbitMQClient(cfg config.RabbitMQConfig) (*RabbitMQClient, error) {
	if strings.TrimSpace(cfg.URL) == "" {
		return nil, errors.New("rabbitmq url is required")
	}

	conn, err := amqp.Dial(cfg.URL)
	if err != nil {
		return nil, err
	}
	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return nil, err
	}

	fail := func(err error) (*RabbitMQClient, error) {
		_ = ch.Close()
		_ = conn.Close()
		return nil, err
	}
	if cfg.PrefetchCount > 0 {
		if err := ch.Qos(cfg.PrefetchCount, 0, false); err != nil {
			return fail(err)
		}
	}
	if err := ch.Confirm(false); err != nil {
		return fail(fmt.Errorf("enable confirms: %w", err))
	}

	return &RabbitMQClient{
		conn:       conn,
		channel:    ch,
		durable:    cfg.QueueDurable,
		autoDelete: cfg.QueueAutoDelete,
		declared:   make(map[string]bool),
	}, nil
}

// Publish sends data to the named queue and waits for the broker's confirm.
func (r *RabbitMQClient) Publish(ctx context.Context, queue string, data []byte, attrs map[string]string) (string, error) {
	if strings.TrimSpace(queue) == "" {
		return "", errors.New("rabbitmq channel is required")
	}
	msg := newPublishing(data, attrs, r.durable, time.Now())

	r.mu.Lock()
	confirm, err := r.publishLocked(ctx, queue, msg)
	r.mu.Unlock()
	if err != nil {
		return "", err
	}

	acked, err := confirm.WaitContext(ctx)
	if err != nil {
		return "", fmt.Errorf("await confirm for %s: %w", msg.MessageId, err)
	}
	if !acked {
		return "", fmt.Errorf("broker rejected message %s", msg.MessageId)
	}
	return msg.MessageId, nil
}

func (r *RabbitMQClient) publishLocked(ctx context.Context, queue string, msg amqp.Publishing) (*amqp.DeferredConfirmation, error) {
	if err := r.declareLocked(queue); err != nil {
		return nil, err
	}
	return r.channel.PublishWithDeferredConfirmWithContext(ctx, "", queue, false, false, msg)
}

// Subscribe consumes the named queue until ctx is done. A handler error
// requeues the message once; a second failure drops it.
func (r *RabbitMQClient) Subscribe(ctx context.Context, queue string, handler Handler) error {
	if strings.TrimSpace(queue) == "" {
		return errors.New("rabbitmq channel is required")
	}

	consumerTag := fmt.Sprintf("dcode-%s-%s", queue, uuid.NewString())
	r.mu.Lock()
	deliveries, err := r.consumeLocked(queue, consumerTag)
	r.mu.Unlock()
	if err != nil {
		return err
	}
	defer func() {
		_ = r.channel.Cancel(consumerTag, false)
	}()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case delivery, ok := <-deliveries:
			if !ok {
				return errors.New("rabbitmq delivery channel closed")
			}
			if err := handler(ctx, deliveryMessage(delivery)); err != nil {
				_ = delivery.Nack(false, !delivery.Redelivered)
				continue
			}
			_ = delivery.Ack(false)
		}
	}
}

func (r *RabbitMQClient) consumeLocked(queue, consumerTag string) (<-chan amqp.Delivery, error) {
	if err := r.declareLocked(queue); err != nil {
		return nil, err
	}
	return r.channel.Consume(queue, consumerTag, false, false, false, false, nil)
}

// Close closes the channel, then the connection.
func (r *RabbitMQClient) Close() error {
	var errs []error
	if r.channel != nil {
		errs = append(errs, r.channel.Close())
	}
	if r.conn != nil {
		errs = append(errs, r.conn.Close())
	}
	return errors.Join(errs...)
}

func (r *RabbitMQClient) declareLocked(queue string) error {
	if r.declared[queue] {
		return nil
	}
	if _, err := r.channel.QueueDeclare(queue, r.durable, r.autoDelete, false, false, nil); err != nil {
		return fmt.Errorf("declare queue %s: %w", queue, err)
	}
	r.declared[queue] = true
	return nil
}

func newPublishing(data []byte, attrs map[string]string, durable bool, now time.Time) amqp.Publishing {
	headers := make(amqp.Table, len(attrs))
	for key, value := range attrs {
		headers[key] = value
	}
	mode := amqp.Transient
	if durable {
		mode = amqp.Persistent
	}
	return amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: mode,
		MessageId:    uuid.NewString(),
		Timestamp:    now.UTC(),
		Type:         attrs[AttrEventType],
		AppId:        rabbitAppID,
		Headers:      headers,
		Body:         data,
	}
}

func deliveryMessage(d amqp.Delivery) Message {
	msg := Message{ID: d.MessageId, Data: d.Body}
	if len(d.Headers) == 0 {
		return msg
	}
	msg.Attributes = make(map[string]string, len(d.Headers))
	for key, value := range d.Headers {
		switch typed := value.(type) {
		case string:
			msg.Attributes[key] = typed
		case []byte:
			msg.Attributes[key] = string(typed)
		default:
			msg.Attributes[key] = fmt.Sprint(value)
		}
	}
	return msg
}
