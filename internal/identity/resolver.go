// Package identity resolves who is calling (bearer credential) or who to mail (uid lookup).
package identity

import (
	"context"
	"errors"
	"strings"

	"notification-dispatch/internal/models"

	"go.uber.org/zap"
)

// Claims is what a verified credential tells us about its holder.
type Claims struct {
	UID   string
	Email string
}

// UserRecord is the subset of the identity provider's user record we need.
type UserRecord struct {
	UID   string
	Email string
}

// Directory is the identity provider.
// LookupUser returns an error wrapping models.ErrRecipientNotFound for unknown users.
type Directory interface {
	VerifyToken(ctx context.Context, token string) (Claims, error)
	LookupUser(ctx context.Context, uid string) (UserRecord, error)
}

// Resolver is stateless: every call goes to the Directory, nothing is cached between requests.
type Resolver struct {
	dir    Directory
	logger *zap.Logger
}

func NewResolver(dir Directory, logger *zap.Logger) *Resolver {
	return &Resolver{
		dir:    dir,
		logger: logger.Named("identity_resolver"),
	}
}

// ParseBearer extracts the token from an "Authorization: Bearer <token>" header value.
func ParseBearer(header string) (string, error) {
	scheme, token, ok := strings.Cut(strings.TrimSpace(header), " ")
	token = strings.TrimSpace(token)
	if !ok || !strings.EqualFold(scheme, "bearer") || token == "" {
		return "", &models.AuthError{Err: models.ErrMissingAuthHeader}
	}
	return token, nil
}

// Authenticate verifies a bearer credential. Any verification failure is an AuthError;
// callers must not perform side effects when it fails.
func (r *Resolver) Authenticate(ctx context.Context, token string) (models.ResolvedIdentity, error) {
	if token == "" {
		return models.ResolvedIdentity{}, &models.AuthError{Err: models.ErrMissingAuthHeader}
	}

	claims, err := r.dir.VerifyToken(ctx, token)
	if err != nil {
		r.logger.Warn("Credential verification failed", zap.String("tokenPrefix", tokenPrefix(token)), zap.Error(err))
		return models.ResolvedIdentity{}, &models.AuthError{Reason: "invalid or expired credential", Err: err}
	}
	if claims.UID == "" {
		return models.ResolvedIdentity{}, &models.AuthError{Reason: "credential has no subject"}
	}

	r.logger.Info("Credential verified", zap.String("uid", claims.UID))
	return models.ResolvedIdentity{UID: claims.UID, Email: claims.Email}, nil
}

// Lookup fetches the user's email address. A user without one is a ValidationError.
func (r *Resolver) Lookup(ctx context.Context, uid string) (models.ResolvedIdentity, error) {
	log := r.logger.With(zap.String("uid", uid))

	user, err := r.dir.LookupUser(ctx, uid)
	if err != nil {
		if errors.Is(err, models.ErrRecipientNotFound) {
			log.Warn("Recipient not found")
			return models.ResolvedIdentity{}, &models.ValidationError{Fields: []string{"uid"}, Err: models.ErrRecipientNotFound}
		}
		log.Error("User lookup failed", zap.Error(err))
		return models.ResolvedIdentity{}, models.NewDeliveryError("identity", err)
	}

	email := strings.TrimSpace(user.Email)
	if email == "" {
		log.Warn("Recipient has no email")
		return models.ResolvedIdentity{}, &models.ValidationError{Fields: []string{"uid"}, Err: models.ErrRecipientNoEmail}
	}

	resolvedUID := user.UID
	if resolvedUID == "" {
		resolvedUID = uid
	}
	log.Debug("Recipient resolved")
	return models.ResolvedIdentity{UID: resolvedUID, Email: email}, nil
}

// tokenPrefix returns the head of a token for logs.
func tokenPrefix(token string) string {
	const prefixLen = 10
	if len(token) < prefixLen {
		return token
	}
	return token[:prefixLen] + "..."
}
