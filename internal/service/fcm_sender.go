package service

import (
	"context"

	"notification-dispatch/internal/config"
	"notification-dispatch/internal/models"
	"notification-dispatch/internal/push"

	fcm "firebase.google.com/go/v4/messaging"
	"go.uber.org/zap"
)

// fcmClient is the part of *messaging.Client the gateway uses.
type fcmClient interface {
	Send(ctx context.Context, message *fcm.Message) (string, error)
}

// --- Stub sender ---

type stubFCMSender struct {
	logger *zap.Logger
}

// NewStubFCMSender logs the payload instead of sending it. Used in local development.
func NewStubFCMSender(logger *zap.Logger) PushGateway {
	return &stubFCMSender{logger: logger.Named("stub_fcm_sender")}
}

func (s *stubFCMSender) Send(_ context.Context, payload push.PlatformPayload) (string, error) {
	s.logger.Info("STUB: FCM send",
		zap.String("tokenPrefix", tokenPrefix(payload.Token)),
		zap.String("title", payload.Notification.Title),
		zap.String("body", payload.Notification.Body),
		zap.Any("data", payload.Data),
	)
	return "stub/" + tokenPrefix(payload.Token), nil
}

func (s *stubFCMSender) Platform() string {
	return config.PushGatewayFCM
}

// --- FCM sender ---

type fcmSender struct {
	client fcmClient
	logger *zap.Logger
}

// NewFCMSender wraps an initialised messaging client. One message per call, no multicast.
func NewFCMSender(client fcmClient, logger *zap.Logger) PushGateway {
	return &fcmSender{
		client: client,
		logger: logger.Named("fcm_sender"),
	}
}

func (s *fcmSender) Send(ctx context.Context, payload push.PlatformPayload) (string, error) {
	id, err := s.client.Send(ctx, toFCMMessage(payload))
	if err != nil {
		dErr := models.NewDeliveryError(config.PushGatewayFCM, err)
		// Unregistered or SenderIDMismatch: the token is dead
		if fcm.IsUnregistered(err) || fcm.IsSenderIDMismatch(err) {
			dErr.StaleToken = true
			s.logger.Warn("FCM token is unregistered or invalid",
				zap.String("tokenPrefix", tokenPrefix(payload.Token)),
				zap.Error(err),
			)
		}
		return "", dErr
	}
	return id, nil
}

func (s *fcmSender) Platform() string {
	return config.PushGatewayFCM
}

// toFCMMessage maps the payload onto the Admin SDK message. Image fields stay empty
// (and are dropped by the SDK) when there is no image; APNS fcm_options only exists with one.
func toFCMMessage(p push.PlatformPayload) *fcm.Message {
	msg := &fcm.Message{
		Token: p.Token,
		Notification: &fcm.Notification{
			Title:    p.Notification.Title,
			Body:     p.Notification.Body,
			ImageURL: p.Notification.ImageURL,
		},
		Data: p.Data,
		Android: &fcm.AndroidConfig{
			Priority: p.Android.Priority,
			Notification: &fcm.AndroidNotification{
				ChannelID: p.Android.ChannelID,
				Sound:     p.Android.Sound,
				ImageURL:  p.Android.ImageURL,
			},
		},
		APNS: &fcm.APNSConfig{
			Payload: &fcm.APNSPayload{
				Aps: &fcm.Aps{
					Sound:          p.IOS.Sound,
					MutableContent: p.IOS.MutableContent,
				},
			},
		},
	}
	if p.IOS.ImageURL != "" {
		msg.APNS.FCMOptions = &fcm.APNSFCMOptions{ImageURL: p.IOS.ImageURL}
	}
	return msg
}
