package service

import (
	"context"
	"fmt"

	"notification-dispatch/internal/config"
	"notification-dispatch/internal/models"
	"notification-dispatch/internal/push"

	"github.com/sideshow/apns2"
	"github.com/sideshow/apns2/payload"
	"github.com/sideshow/apns2/token"
	"go.uber.org/zap"
)

// apnsImageKey carries the image URL for the notification-service extension.
const apnsImageKey = "image"

type apnsClient interface {
	PushWithContext(ctx apns2.Context, n *apns2.Notification) (*apns2.Response, error)
}

// --- APNs sender ---

type apnsSender struct {
	client apnsClient
	logger *zap.Logger
	topic  string
}

// NewApnsSender builds an APNs sender with token-based auth.
// cfg must carry KeyPath, KeyID, TeamID and Topic.
func NewApnsSender(cfg config.APNSConfig, logger *zap.Logger) (PushGateway, error) {
	authKey, err := token.AuthKeyFromFile(cfg.KeyPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read APNS key from %s: %w", cfg.KeyPath, err)
	}

	client := apns2.NewTokenClient(&token.Token{
		AuthKey: authKey,
		KeyID:   cfg.KeyID,
		TeamID:  cfg.TeamID,
	})
	if cfg.Production {
		client = client.Production()
	} else {
		client = client.Development()
	}

	logger.Info("APNS sender initialized",
		zap.String("key_id", cfg.KeyID),
		zap.String("team_id", cfg.TeamID),
		zap.String("topic", cfg.Topic),
		zap.Bool("production", cfg.Production),
	)
	return newApnsSender(client, cfg.Topic, logger), nil
}

func newApnsSender(client apnsClient, topic string, logger *zap.Logger) *apnsSender {
	return &apnsSender{
		client: client,
		logger: logger.Named("apns_sender"),
		topic:  topic,
	}
}

func (s *apnsSender) Send(ctx context.Context, p push.PlatformPayload) (string, error) {
	n := &apns2.Notification{
		DeviceToken: p.Token,
		Topic:       s.topic,
		Payload:     toAPNSPayload(p),
		Priority:    apns2.PriorityHigh,
	}

	res, err := s.client.PushWithContext(ctx, n)
	if err != nil {
		return "", models.NewDeliveryError(config.PushGatewayAPNS, err)
	}

	if !res.Sent() {
		dErr := models.NewDeliveryError(config.PushGatewayAPNS,
			fmt.Errorf("apns delivery failed: %d %s", res.StatusCode, res.Reason))
		if res.Reason == apns2.ReasonUnregistered || res.Reason == apns2.ReasonBadDeviceToken {
			dErr.StaleToken = true
		}
		s.logger.Warn("APNS rejected notification",
			zap.String("tokenPrefix", tokenPrefix(p.Token)),
			zap.Int("status_code", res.StatusCode),
			zap.String("apns_id", res.ApnsID),
			zap.String("reason", res.Reason),
		)
		return "", dErr
	}

	return res.ApnsID, nil
}

func (s *apnsSender) Platform() string {
	return config.PushGatewayAPNS
}

// toAPNSPayload puts custom data at the top level of the payload, outside aps.
func toAPNSPayload(p push.PlatformPayload) *payload.Payload {
	pl := payload.NewPayload().
		AlertTitle(p.Notification.Title).
		AlertBody(p.Notification.Body).
		Sound(p.IOS.Sound)
	if p.IOS.MutableContent {
		pl = pl.MutableContent()
	}
	for k, v := range p.Data {
		if k == "aps" {
			continue
		}
		pl = pl.Custom(k, v)
	}
	if p.IOS.ImageURL != "" {
		pl = pl.Custom(apnsImageKey, p.IOS.ImageURL)
	}
	return pl
}
