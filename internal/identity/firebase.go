package identity

import (
	"context"
	"fmt"

	"notification-dispatch/internal/models"

	"firebase.google.com/go/v4/auth"
)

// firebaseAuthClient is the part of *auth.Client used here.
type firebaseAuthClient interface {
	VerifyIDToken(ctx context.Context, idToken string) (*auth.Token, error)
	GetUser(ctx context.Context, uid string) (*auth.UserRecord, error)
}

// FirebaseDirectory implements Directory over Firebase Authentication.
type FirebaseDirectory struct {
	client firebaseAuthClient
}

var _ Directory = (*FirebaseDirectory)(nil)

func NewFirebaseDirectory(client firebaseAuthClient) *FirebaseDirectory {
	return &FirebaseDirectory{client: client}
}

func (d *FirebaseDirectory) VerifyToken(ctx context.Context, token string) (Claims, error) {
	decoded, err := d.client.VerifyIDToken(ctx, token)
	if err != nil {
		return Claims{}, err
	}
	claims := Claims{UID: decoded.UID}
	if email, ok := decoded.Claims["email"].(string); ok {
		claims.Email = email
	}
	return claims, nil
}

func (d *FirebaseDirectory) LookupUser(ctx context.Context, uid string) (UserRecord, error) {
	user, err := d.client.GetUser(ctx, uid)
	if err != nil {
		if auth.IsUserNotFound(err) {
			return UserRecord{}, fmt.Errorf("%w: %v", models.ErrRecipientNotFound, err)
		}
		return UserRecord{}, err
	}
	if user == nil || user.UserInfo == nil {
		return UserRecord{UID: uid}, nil
	}
	return UserRecord{UID: user.UID, Email: user.Email}, nil
}
