package mail

import (
	"context"
	"fmt"

	"notification-dispatch/internal/models"

	"github.com/mrz1836/postmark"
	"go.uber.org/zap"
)

// postmarkAPI is the part of *postmark.Client used here.
type postmarkAPI interface {
	SendEmail(ctx context.Context, email postmark.Email) (postmark.EmailResponse, error)
}

// PostmarkSender sends through Postmark's transactional API.
type PostmarkSender struct {
	client postmarkAPI
	logger *zap.Logger
}

var _ Sender = (*PostmarkSender)(nil)

func NewPostmarkSender(serverToken, accountToken string, logger *zap.Logger) (*PostmarkSender, error) {
	if serverToken == "" {
		return nil, &models.ConfigurationError{Key: "POSTMARK_SERVER_TOKEN", Reason: "is required"}
	}
	if accountToken == "" {
		return nil, &models.ConfigurationError{Key: "POSTMARK_ACCOUNT_TOKEN", Reason: "is required"}
	}
	return newPostmarkSender(postmark.NewClient(serverToken, accountToken), logger), nil
}

func newPostmarkSender(client postmarkAPI, logger *zap.Logger) *PostmarkSender {
	return &PostmarkSender{client: client, logger: logger.Named("postmark_sender")}
}

func (s *PostmarkSender) Send(ctx context.Context, msg Message) error {
	if err := msg.Validate(); err != nil {
		return err
	}

	resp, err := s.client.SendEmail(ctx, postmark.Email{
		From:     msg.FromHeader(),
		To:       msg.To,
		Subject:  msg.Subject,
		TextBody: msg.Text,
		HTMLBody: msg.HTML,
	})
	if err != nil {
		s.logger.Error("Postmark request failed", zap.Error(err))
		return models.NewDeliveryError("postmark", err)
	}
	if resp.ErrorCode > 0 {
		err := fmt.Errorf("postmark error %d: %s", resp.ErrorCode, resp.Message)
		s.logger.Error("Postmark rejected message", zap.Error(err))
		return models.NewDeliveryError("postmark", err)
	}
	s.logger.Info("Email accepted by Postmark", zap.String("message_id", resp.MessageID))
	return nil
}
