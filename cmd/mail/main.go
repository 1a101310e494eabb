package main

import (
	"context"
	"encoding/json"
	"log/slog"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/masterinnovation12/idmji-gestor-sub000/internal/config"
	"github.com/masterinnovation12/idmji-gestor-sub000/internal/domain"
	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/wneessen/go-mail"
)

func main() {
	/**********************************************
	 * logger
	 **********************************************/
	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	/**********************************************
	 * configuración
	 **********************************************/
	cfg, err := config.LoadConfig()
	if err != nil {
		logger.Error("no se pudo cargar la configuración", slog.String("error", err.Error()))
		return
	}

	/**********************************************
	 * cliente SMTP
	 **********************************************/
	client, err := mail.NewClient(cfg.Email.SMTP.Host,
		mail.WithSMTPAuth(mail.SMTPAuthPlain),
		mail.WithSSL(),
		mail.WithPort(cfg.Email.SMTP.Port),
		mail.WithUsername(cfg.Email.SMTP.Username),
		mail.WithPassword(cfg.Email.SMTP.Password),
	)
	if err != nil {
		logger.Error("no se pudo crear el cliente SMTP", slog.String("error", err.Error()))
		return
	}
	defer client.Close()

	dialCtx, cancel := context.WithTimeout(context.Background(), time.Duration(cfg.Email.SMTP.DialTimeout)*time.Second)
	defer cancel()
	if err := client.DialWithContext(dialCtx); err != nil {
		logger.Error("no se pudo conectar al servidor SMTP", slog.String("error", err.Error()))
		return
	}

	/**********************************************
	 * rabbitmq
	 **********************************************/
	conn, err := amqp.Dial(cfg.RabbitMQ.DSN)
	if err != nil {
		logger.Error("no se pudo conectar a rabbitmq", slog.String("error", err.Error()))
		return
	}
	defer conn.Close()

	ch, err := conn.Channel()
	if err != nil {
		logger.Error("no se pudo abrir el canal", slog.String("error", err.Error()))
		return
	}
	defer ch.Close()

	q, err := ch.QueueDeclare(
		cfg.RabbitMQ.Queue,
		true,  // persistente
		false, // no se borra sin consumidores
		false,
		false,
		nil,
	)
	if err != nil {
		logger.Error("no se pudo declarar la cola", slog.String("error", err.Error()))
		return
	}

	if err := declareRetryQueues(ch, q.Name, time.Duration(cfg.RabbitMQ.RetryDelay)*time.Second); err != nil {
		logger.Error("no se pudieron declarar las colas de reintento", slog.String("error", err.Error()))
		return
	}
	retry := &retrier{
		ch:          ch,
		queue:       q.Name,
		maxAttempts: cfg.RabbitMQ.MaxAttempts,
		timeout:     time.Duration(cfg.RabbitMQ.PublishTimeout) * time.Second,
	}

	// un correo cada vez; el resto espera en la cola
	if err := ch.Qos(1, 0, false); err != nil {
		logger.Error("no se pudo fijar el prefetch", slog.String("error", err.Error()))
		return
	}

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	msgs, err := ch.Consume(
		q.Name,
		"",
		false, // ack manual
		false,
		false,
		false,
		nil,
	)
	if err != nil {
		logger.Error("no se pudo consumir la cola", slog.String("error", err.Error()))
		os.Exit(1)
	}

	ctx, cancel := context.WithCancel(context.Background())
	wg := sync.WaitGroup{}

	wg.Add(1)
	go func() {
		defer wg.Done()
		for {
			select {
			case <-ctx.Done():
				return
			case delivery, ok := <-msgs:
				if !ok {
					logger.Warn("el canal de rabbitmq se ha cerrado")
					return
				}

				m := domain.MailMessage{}
				if err := json.Unmarshal(delivery.Body, &m); err != nil {
					logger.Error("mensaje de correo ilegible", slog.String("error", err.Error()))
					settle(logger, delivery, retry.discard(ctx, delivery, err))
					continue
				}
				log := logger.With(slog.String("id", m.ID), slog.String("type", m.Type))

				msg, err := buildMsg(cfg.Email.SMTP.Username, m)
				if err != nil {
					log.Error("no se pudo montar el correo", slog.String("error", err.Error()))
					settle(log, delivery, retry.discard(ctx, delivery, err))
					continue
				}

				if err := client.DialAndSendWithContext(ctx, msg); err != nil {
					target, perr := retry.failed(ctx, delivery, err)
					log.Error("no se pudo enviar el correo",
						slog.String("error", err.Error()),
						slog.Int("attempt", attempts(delivery.Headers)+1),
						slog.String("queue", target),
					)
					settle(log, delivery, perr)
					continue
				}

				log.Info("correo enviado")
				_ = delivery.Ack(false)
			}
		}
	}()

	logger.Info("esperando mensajes... (CTRL+C para salir)")
	<-sigChan

	logger.Info("cerrando el worker de correo...")
	cancel()
	wg.Wait()
	logger.Info("worker de correo cerrado")
}

// settle confirma el mensaje si su copia quedó en otra cola; si no, lo devuelve a la principal.
func settle(log *slog.Logger, delivery amqp.Delivery, publishErr error) {
	if publishErr != nil {
		log.Error("no se pudo reencolar el correo", slog.String("error", publishErr.Error()))
		_ = delivery.Nack(false, true)
		return
	}
	_ = delivery.Ack(false)
}
