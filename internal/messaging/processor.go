package messaging

import (
	"bytes"
	"context"
	"encoding/json"
	"time"

	"notification-dispatch/internal/models"
	"notification-dispatch/internal/service"

	"github.com/google/uuid"
	amqp "github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"
)

// processTimeout ограничивает обработку одного сообщения вместе с вызовом провайдера.
const processTimeout = 30 * time.Second

// Processor прогоняет каждое сообщение через тот же push-конвейер, что и HTTP-эндпоинт.
// Успех подтверждается Ack, любая ошибка даёт Nack без requeue.
type Processor struct {
	logger *zap.Logger
	push   service.PushDispatcher
}

func NewProcessor(push service.PushDispatcher, logger *zap.Logger) *Processor {
	return &Processor{
		logger: logger.Named("processor"),
		push:   push,
	}
}

func (p *Processor) ProcessMessage(ctx context.Context, d amqp.Delivery) {
	messageID := d.MessageId
	if messageID == "" {
		messageID = uuid.NewString()
	}
	log := p.logger.With(zap.Uint64("delivery_tag", d.DeliveryTag), zap.String("message_id", messageID))

	req, err := decodeRequest(d.Body)
	if err != nil {
		log.Error("Ошибка десериализации JSON", zap.Error(err), zap.Int("body_len", len(d.Body)))
		p.nack(log, d)
		return
	}

	processCtx, cancel := context.WithTimeout(ctx, processTimeout)
	defer cancel()

	fcmID, err := p.push.Dispatch(processCtx, req)
	if err != nil {
		log.Error("Ошибка обработки push-запроса", zap.Error(err))
		p.nack(log, d)
		return
	}

	if ackErr := d.Ack(false); ackErr != nil {
		log.Error("Ошибка Ack сообщения после успешной обработки", zap.Error(ackErr))
		return
	}
	log.Info("Сообщение обработано и подтверждено (Ack)", zap.String("push_message_id", fcmID))
}

// Повторных попыток нет: requeue=false.
func (p *Processor) nack(log *zap.Logger, d amqp.Delivery) {
	if err := d.Nack(false, false); err != nil {
		log.Error("Ошибка Nack сообщения", zap.Error(err))
	}
}

func decodeRequest(body []byte) (models.NotificationRequest, error) {
	var req models.NotificationRequest
	dec := json.NewDecoder(bytes.NewReader(body))
	dec.UseNumber()
	if err := dec.Decode(&req); err != nil {
		return models.NotificationRequest{}, err
	}
	return req, nil
}
