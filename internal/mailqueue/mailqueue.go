// Package mailqueue publica en RabbitMQ los correos que después envía cmd/mail.
package mailqueue

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/masterinnovation12/idmji-gestor-sub000/internal/calendar"
	"github.com/masterinnovation12/idmji-gestor-sub000/internal/domain"
	amqp "github.com/rabbitmq/amqp091-go"
)

// Channel es el subconjunto de *amqp.Channel que se usa para publicar.
type Channel interface {
	PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error
}

type Publisher struct {
	channel Channel
	queue   string
	timeout time.Duration
}

func NewPublisher(ch Channel, queue string, timeout time.Duration) *Publisher {
	return &Publisher{
		channel: ch,
		queue:   queue,
		timeout: timeout,
	}
}

// Publish encola un correo y devuelve su id.
func (p *Publisher) Publish(ctx context.Context, mailType, to string, data any) (string, error) {
	msg := domain.MailMessage{
		ID:   uuid.NewString(),
		Type: mailType,
		To:   to,
		Data: data,
	}

	body, err := json.Marshal(msg)
	if err != nil {
		return "", err
	}

	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	if err := p.channel.PublishWithContext(
		ctx,
		"",
		p.queue,
		true,
		false,
		amqp.Publishing{
			ContentType:  "application/json",
			DeliveryMode: amqp.Persistent,
			MessageId:    msg.ID,
			Type:         mailType,
			Timestamp:    time.Now(),
			Body:         body,
		},
	); err != nil {
		return "", fmt.Errorf("publicar correo %s: %w", mailType, err)
	}

	return msg.ID, nil
}

var readingRoleNames = map[domain.ReadingRole]string{
	domain.ReadingIntroduction: "lectura de introducción",
	domain.ReadingClosing:      "lectura de cierre",
}

// ReadingRecorded avisa al lector de la lectura que tiene asignada. Los hermanos sin correo no reciben nada.
func (p *Publisher) ReadingRecorded(ctx context.Context, reading *domain.ScriptureReading, svc *domain.Service, reader *domain.User) error {
	if reader.Email == "" {
		return nil
	}

	_, err := p.Publish(ctx, domain.MailTypeReadingAssigned, reader.Email, domain.ReadingAssignedMailData{
		FullName:    reader.FullName,
		ServiceDate: calendar.DateKey(svc.Date),
		StartTime:   svc.StartTime,
		Role:        readingRoleNames[reading.Role],
		Citation:    reading.Citation.String(),
		IsRepeat:    reading.IsRepeat,
	})
	return err
}
