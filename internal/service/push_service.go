package service

import (
	"context"
	"errors"
	"time"

	"notification-dispatch/internal/models"
	"notification-dispatch/internal/push"
	"notification-dispatch/internal/validation"

	"go.uber.org/zap"
)

// PushService runs validate → build canonical → encode → gateway send, once per request.
type PushService struct {
	gateway PushGateway
	stale   StaleTokenPublisher // nil if stale tokens are not reported
	logger  *zap.Logger
}

var _ PushDispatcher = (*PushService)(nil)

func NewPushService(gateway PushGateway, stale StaleTokenPublisher, logger *zap.Logger) *PushService {
	if stale == nil {
		logger.Info("Stale token publisher not configured")
	}
	return &PushService{
		gateway: gateway,
		stale:   stale,
		logger:  logger.Named("push_service"),
	}
}

// Dispatch sends one push. Validation failures return before the gateway is called.
func (s *PushService) Dispatch(ctx context.Context, req models.NotificationRequest) (messageID string, err error) {
	start := time.Now()
	defer func() { observe(channelPush, start, err) }()

	if err := validation.Push(req); err != nil {
		return "", err
	}

	payload := push.Encode(push.BuildCanonical(req))
	log := s.logger.With(
		zap.String("platform", s.gateway.Platform()),
		zap.String("tokenPrefix", tokenPrefix(payload.Token)),
	)
	log.Debug("Payload encoded", zap.Any("payload", payload), zap.Bool("has_image", payload.HasImage()))

	messageID, err = s.gateway.Send(ctx, payload)
	if err != nil {
		var dErr *models.DeliveryError
		if !errors.As(err, &dErr) {
			dErr = models.NewDeliveryError(s.gateway.Platform(), err)
			err = dErr
		}
		log.Error("Push delivery failed", zap.String("provider", dErr.Provider), zap.Error(err))
		if dErr.StaleToken {
			s.reportStaleToken(ctx, payload.Token)
		}
		return "", err
	}

	log.Info("Push sent", zap.String("message_id", messageID))
	return messageID, nil
}

// reportStaleToken never affects the dispatch result.
func (s *PushService) reportStaleToken(ctx context.Context, token string) {
	staleTokensTotal.Inc()
	if s.stale == nil {
		return
	}
	if err := s.stale.PublishStaleToken(ctx, token); err != nil {
		s.logger.Warn("Failed to publish stale token", zap.String("tokenPrefix", tokenPrefix(token)), zap.Error(err))
	}
}

// tokenPrefix returns the head of a token for logs.
func tokenPrefix(token string) string {
	const prefixLen = 10
	if len(token) < prefixLen {
		return token
	}
	return token[:prefixLen] + "..."
}
