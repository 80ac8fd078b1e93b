package service

import (
	"context"

	"notification-dispatch/internal/models"
	"notification-dispatch/internal/push"
)

// PushGateway delivers one platform payload to one device token and returns the
// provider-assigned message id.
type PushGateway interface {
	Send(ctx context.Context, payload push.PlatformPayload) (string, error)
	Platform() string
}

// StaleTokenPublisher is told about tokens the gateway reported as unregistered or invalid.
type StaleTokenPublisher interface {
	PublishStaleToken(ctx context.Context, token string) error
}

// IdentityResolver gates and addresses the email channel.
type IdentityResolver interface {
	Authenticate(ctx context.Context, token string) (models.ResolvedIdentity, error)
	Lookup(ctx context.Context, uid string) (models.ResolvedIdentity, error)
}

// PushDispatcher is the push pipeline as seen by the HTTP and queue ingress.
type PushDispatcher interface {
	Dispatch(ctx context.Context, req models.NotificationRequest) (string, error)
}

// EmailDispatcher is the email pipeline as seen by the HTTP ingress.
type EmailDispatcher interface {
	SendAuthenticated(ctx context.Context, token string, req models.CredentialEmailRequest) (models.ResolvedIdentity, error)
	SendToUser(ctx context.Context, req models.LookupEmailRequest) (models.ResolvedIdentity, error)
}
