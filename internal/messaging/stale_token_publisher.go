package messaging

import (
	"context"
	"errors"
	"fmt"
	"time"

	"notification-dispatch/internal/service"

	amqp "github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"
)

var _ service.StaleTokenPublisher = (*rabbitStaleTokenPublisher)(nil)

// rabbitStaleTokenPublisher публикует невалидные push-токены для удаления владельцем реестра устройств.
type rabbitStaleTokenPublisher struct {
	conn      *amqp.Connection
	logger    *zap.Logger
	queueName string
}

// NewRabbitStaleTokenPublisher объявляет очередь при создании, чтобы проблема с брокером всплыла сразу.
func NewRabbitStaleTokenPublisher(conn *amqp.Connection, queueName string, logger *zap.Logger) (service.StaleTokenPublisher, error) {
	if conn == nil {
		return nil, errors.New("RabbitMQ connection is nil")
	}

	publisher := &rabbitStaleTokenPublisher{
		conn:      conn,
		logger:    logger.Named("stale_token_publisher").With(zap.String("queue", queueName)),
		queueName: queueName,
	}

	ch, err := conn.Channel()
	if err != nil {
		return nil, fmt.Errorf("failed to open channel: %w", err)
	}
	defer ch.Close()
	if _, err := declareQueue(ch, queueName); err != nil {
		return nil, err
	}

	publisher.logger.Info("StaleTokenPublisher инициализирован")
	return publisher, nil
}

// PublishStaleToken публикует токен в очередь, один канал на сообщение.
func (p *rabbitStaleTokenPublisher) PublishStaleToken(ctx context.Context, token string) error {
	log := p.logger.With(zap.String("tokenPrefix", getTokenPrefix(token)))

	ch, err := p.conn.Channel()
	if err != nil {
		return fmt.Errorf("failed to open channel: %w", err)
	}
	defer ch.Close()

	err = ch.PublishWithContext(ctx,
		"",          // exchange (default)
		p.queueName, // routing key
		false,       // mandatory
		false,       // immediate
		amqp.Publishing{
			ContentType:  "text/plain",
			DeliveryMode: amqp.Persistent,
			Timestamp:    time.Now(),
			Body:         []byte(token),
		},
	)
	if err != nil {
		return fmt.Errorf("failed to publish stale token: %w", err)
	}

	log.Info("Невалидный токен опубликован")
	return nil
}

// getTokenPrefix возвращает начало токена для логирования.
func getTokenPrefix(token string) string {
	prefixLen := 10
	if len(token) < prefixLen {
		return token
	}
	return token[:prefixLen] + "..."
}
