// Package notify contains Notifier implementations. Delivery is best-effort
// by contract: errors are reported to the caller for logging but carry no
// retry obligation.
package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"log"

	amqp "github.com/rabbitmq/amqp091-go"

	"pickup-commit-service/internal/ports"
)

const (
	smsQueueName   = "pickup.notify.sms"
	emailQueueName = "pickup.notify.email"
)

// Payload handed to the downstream delivery workers.
type notifyMessage struct {
	Phone   string `json:"phone,omitempty"`
	Email   string `json:"email,omitempty"`
	Message string `json:"message"`
}

// AMQPNotifier publishes per-stop pickup messages to durable RabbitMQ queues,
// one per channel, for delivery by downstream SMS/email workers. Publishing
// is fire-and-forget: no delivery receipts are consumed.
type AMQPNotifier struct {
	conn *amqp.Connection
	ch   *amqp.Channel
}

func NewAMQPNotifier(url string) (*AMQPNotifier, error) {
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("amqp notifier: dial broker: %w", err)
	}

	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("amqp notifier: open channel: %w", err)
	}

	for _, queue := range []string{smsQueueName, emailQueueName} {
		if _, err := ch.QueueDeclare(queue, true, false, false, false, nil); err != nil {
			ch.Close()
			conn.Close()
			return nil, fmt.Errorf("amqp notifier: declare queue %s: %w", queue, err)
		}
	}

	return &AMQPNotifier{conn: conn, ch: ch}, nil
}

// Send publishes the message to every channel the target has configured.
// A target with neither phone nor email is logged rather than errored, and a
// failure on one channel does not suppress the other.
func (n *AMQPNotifier) Send(ctx context.Context, target ports.NotificationTarget, message string) error {
	if target.Phone == "" && target.Email == "" {
		log.Printf("notify: no contact configured, message logged only: %s", message)
		return nil
	}

	var firstErr error

	if target.Phone != "" {
		if err := n.publish(ctx, smsQueueName, notifyMessage{Phone: target.Phone, Message: message}); err != nil {
			firstErr = fmt.Errorf("amqp notifier: publish sms: %w", err)
		}
	}

	if target.Email != "" {
		if err := n.publish(ctx, emailQueueName, notifyMessage{Email: target.Email, Message: message}); err != nil && firstErr == nil {
			firstErr = fmt.Errorf("amqp notifier: publish email: %w", err)
		}
	}

	return firstErr
}

func (n *AMQPNotifier) publish(ctx context.Context, queue string, msg notifyMessage) error {
	body, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("marshal payload: %w", err)
	}

	return n.ch.PublishWithContext(ctx, "", queue, false, false, amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		Body:         body,
	})
}

func (n *AMQPNotifier) Close() error {
	if n.ch != nil {
		_ = n.ch.Close()
	}
	if n.conn != nil {
		return n.conn.Close()
	}
	return nil
}
