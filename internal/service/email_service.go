package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"notification-dispatch/internal/mail"
	"notification-dispatch/internal/models"
	"notification-dispatch/internal/validation"

	"go.uber.org/zap"
)

// EmailService composes and relays transactional emails after resolving an identity.
type EmailService struct {
	resolver IdentityResolver
	sender   mail.Sender
	from     mail.Identity
	logger   *zap.Logger
}

var _ EmailDispatcher = (*EmailService)(nil)

func NewEmailService(resolver IdentityResolver, sender mail.Sender, from mail.Identity, logger *zap.Logger) *EmailService {
	return &EmailService{
		resolver: resolver,
		sender:   sender,
		from:     from,
		logger:   logger.Named("email_service"),
	}
}

// SendAuthenticated verifies the caller's credential, then sends the message as given.
// Without an explicit recipient the verified account's own email is used.
func (s *EmailService) SendAuthenticated(ctx context.Context, token string, req models.CredentialEmailRequest) (ident models.ResolvedIdentity, err error) {
	start := time.Now()
	defer func() { observe(channelEmail, start, err) }()

	if err := validation.CredentialEmail(req); err != nil {
		return models.ResolvedIdentity{}, err
	}

	ident, err = s.resolver.Authenticate(ctx, token)
	if err != nil {
		return models.ResolvedIdentity{}, err
	}

	to := strings.TrimSpace(req.To)
	if to == "" {
		to = ident.Email
	}
	if to == "" {
		return models.ResolvedIdentity{}, models.NewMissingFieldsError("to")
	}

	msg := s.from.NewMessage(to, req.Subject, req.Text, req.HTML)
	if err := s.send(ctx, msg); err != nil {
		return models.ResolvedIdentity{}, err
	}

	s.logger.Info("Email sent on behalf of user", zap.String("uid", ident.UID))
	return ident, nil
}

// SendToUser looks up the recipient by uid and sends content as plain text plus its
// line-break HTML rendering.
func (s *EmailService) SendToUser(ctx context.Context, req models.LookupEmailRequest) (ident models.ResolvedIdentity, err error) {
	start := time.Now()
	defer func() { observe(channelEmail, start, err) }()

	if err := validation.LookupEmail(req); err != nil {
		return models.ResolvedIdentity{}, err
	}

	ident, err = s.resolver.Lookup(ctx, strings.TrimSpace(req.UID))
	if err != nil {
		return models.ResolvedIdentity{}, err
	}

	msg := s.from.NewTextMessage(ident.Email, req.Title, req.Content)
	if err := s.send(ctx, msg); err != nil {
		return models.ResolvedIdentity{}, err
	}

	s.logger.Info("Email sent to user", zap.String("uid", ident.UID))
	return ident, nil
}

func (s *EmailService) send(ctx context.Context, msg mail.Message) error {
	err := s.sender.Send(ctx, msg)
	if err == nil {
		return nil
	}

	var (
		dErr *models.DeliveryError
		vErr *models.ValidationError
	)
	switch {
	case errors.As(err, &dErr), errors.As(err, &vErr):
	case errors.Is(err, mail.ErrNoRecipient), errors.Is(err, mail.ErrNoSubject), errors.Is(err, mail.ErrNoContent):
		err = &models.ValidationError{Err: err}
	default:
		err = models.NewDeliveryError("mail", err)
	}
	s.logger.Error("Email delivery failed", zap.Error(err))
	return err
}
