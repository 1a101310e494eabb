package main

import (
	"context"
	"fmt"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
)

const (
	attemptsHeader  = "x-attempts"
	lastErrorHeader = "x-last-error"
)

type publisher interface {
	PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error
}

type declarer interface {
	QueueDeclare(name string, durable, autoDelete, exclusive, noWait bool, args amqp.Table) (amqp.Queue, error)
}

func retryQueue(queue string) string { return queue + ".retry" }
func deadQueue(queue string) string  { return queue + ".dead" }

// declareRetryQueues crea la cola de espera, que devuelve los mensajes a la principal cuando caduca
// su TTL, y la cola de mensajes muertos.
func declareRetryQueues(ch declarer, queue string, delay time.Duration) error {
	_, err := ch.QueueDeclare(retryQueue(queue), true, false, false, false, amqp.Table{
		"x-message-ttl":             delay.Milliseconds(),
		"x-dead-letter-exchange":    "",
		"x-dead-letter-routing-key": queue,
	})
	if err != nil {
		return fmt.Errorf("declarar %s: %w", retryQueue(queue), err)
	}

	if _, err := ch.QueueDeclare(deadQueue(queue), true, false, false, false, nil); err != nil {
		return fmt.Errorf("declarar %s: %w", deadQueue(queue), err)
	}
	return nil
}

// retrier reencola los correos que no se pudieron enviar. Tras maxAttempts intentos el mensaje va a
// la cola de muertos.
type retrier struct {
	ch          publisher
	queue       string
	maxAttempts int
	timeout     time.Duration
}

func attempts(headers amqp.Table) int {
	switch v := headers[attemptsHeader].(type) {
	case int:
		return v
	case int32:
		return int(v)
	case int64:
		return int(v)
	default:
		return 0
	}
}

// failed publica una copia del mensaje en la cola de reintentos o en la de muertos y devuelve a
// cuál ha ido. El original se debe confirmar después.
func (r *retrier) failed(ctx context.Context, d amqp.Delivery, cause error) (string, error) {
	n := attempts(d.Headers) + 1

	target := retryQueue(r.queue)
	if n >= r.maxAttempts {
		target = deadQueue(r.queue)
	}

	headers := amqp.Table{
		attemptsHeader:  int32(n),
		lastErrorHeader: cause.Error(),
	}
	if err := r.publish(ctx, target, d, headers); err != nil {
		return "", err
	}
	return target, nil
}

// discard manda a la cola de muertos un mensaje que no se puede procesar, sin reintentos.
func (r *retrier) discard(ctx context.Context, d amqp.Delivery, cause error) error {
	return r.publish(ctx, deadQueue(r.queue), d, amqp.Table{lastErrorHeader: cause.Error()})
}

func (r *retrier) publish(ctx context.Context, target string, d amqp.Delivery, headers amqp.Table) error {
	if r.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.timeout)
		defer cancel()
	}

	err := r.ch.PublishWithContext(ctx, "", target, false, false, amqp.Publishing{
		Headers:      headers,
		ContentType:  d.ContentType,
		DeliveryMode: amqp.Persistent,
		MessageId:    d.MessageId,
		Type:         d.Type,
		Body:         d.Body,
	})
	if err != nil {
		return fmt.Errorf("publicar en %s: %w", target, err)
	}
	return nil
}
