package service_test

import (
	"context"
	"errors"
	"testing"

	"notification-dispatch/internal/mail"
	"notification-dispatch/internal/mocks"
	"notification-dispatch/internal/models"
	"notification-dispatch/internal/service"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

var testSender = mail.Identity{Name: "Hive SMTP", Address: "noreply@example.com"}

func newEmailService() (*service.EmailService, *mocks.MockIdentityResolver, *mocks.MockMailSender) {
	resolver := &mocks.MockIdentityResolver{}
	sender := &mocks.MockMailSender{}
	return service.NewEmailService(resolver, sender, testSender, zap.NewNop()), resolver, sender
}

func TestEmailService_SendAuthenticated(t *testing.T) {
	t.Run("sends to explicit recipient", func(t *testing.T) {
		svc, resolver, sender := newEmailService()
		resolver.On("Authenticate", mock.Anything, "cred").
			Return(models.ResolvedIdentity{UID: "u1", Email: "caller@example.com"}, nil).Once()
		sender.On("Send", mock.Anything, mail.Message{
			FromName: "Hive SMTP",
			From:     "noreply@example.com",
			To:       "friend@example.com",
			Subject:  "Hello",
			Text:     "plain",
			HTML:     "<b>rich</b>",
		}).Return(nil).Once()

		ident, err := svc.SendAuthenticated(context.Background(), "cred", models.CredentialEmailRequest{
			To: "friend@example.com", Subject: "Hello", Text: "plain", HTML: "<b>rich</b>",
		})

		require.NoError(t, err)
		assert.Equal(t, "u1", ident.UID)
		resolver.AssertExpectations(t)
		sender.AssertExpectations(t)
	})

	t.Run("falls back to caller email", func(t *testing.T) {
		svc, resolver, sender := newEmailService()
		resolver.On("Authenticate", mock.Anything, "cred").
			Return(models.ResolvedIdentity{UID: "u1", Email: "caller@example.com"}, nil).Once()
		sender.On("Send", mock.Anything, mock.MatchedBy(func(m mail.Message) bool {
			return m.To == "caller@example.com"
		})).Return(nil).Once()

		_, err := svc.SendAuthenticated(context.Background(), "cred", models.CredentialEmailRequest{Subject: "S", Text: "x"})

		require.NoError(t, err)
		sender.AssertExpectations(t)
	})

	t.Run("no recipient anywhere", func(t *testing.T) {
		svc, resolver, sender := newEmailService()
		resolver.On("Authenticate", mock.Anything, "cred").
			Return(models.ResolvedIdentity{UID: "u1"}, nil).Once()

		_, err := svc.SendAuthenticated(context.Background(), "cred", models.CredentialEmailRequest{Subject: "S", Text: "x"})

		var vErr *models.ValidationError
		require.ErrorAs(t, err, &vErr)
		assert.Equal(t, []string{"to"}, vErr.Fields)
		sender.AssertNotCalled(t, "Send", mock.Anything, mock.Anything)
	})

	t.Run("auth failure sends nothing", func(t *testing.T) {
		svc, resolver, sender := newEmailService()
		resolver.On("Authenticate", mock.Anything, "bad").
			Return(models.ResolvedIdentity{}, &models.AuthError{Reason: "invalid or expired credential"}).Once()

		_, err := svc.SendAuthenticated(context.Background(), "bad", models.CredentialEmailRequest{Subject: "S", Text: "x"})

		var aErr *models.AuthError
		require.ErrorAs(t, err, &aErr)
		sender.AssertNotCalled(t, "Send", mock.Anything, mock.Anything)
	})

	t.Run("validation runs before verification", func(t *testing.T) {
		svc, resolver, sender := newEmailService()

		_, err := svc.SendAuthenticated(context.Background(), "cred", models.CredentialEmailRequest{To: "a@b.c"})

		var vErr *models.ValidationError
		require.ErrorAs(t, err, &vErr)
		resolver.AssertNotCalled(t, "Authenticate", mock.Anything, mock.Anything)
		sender.AssertNotCalled(t, "Send", mock.Anything, mock.Anything)
	})

	t.Run("provider failure is a delivery error", func(t *testing.T) {
		svc, resolver, sender := newEmailService()
		resolver.On("Authenticate", mock.Anything, "cred").
			Return(models.ResolvedIdentity{UID: "u1", Email: "c@example.com"}, nil).Once()
		sender.On("Send", mock.Anything, mock.Anything).Return(errors.New("535 auth failed")).Once()

		_, err := svc.SendAuthenticated(context.Background(), "cred", models.CredentialEmailRequest{Subject: "S", Text: "x"})

		var dErr *models.DeliveryError
		require.ErrorAs(t, err, &dErr)
		assert.Equal(t, "mail", dErr.Provider)
		assert.Equal(t, "535 auth failed", dErr.Error())
	})
}

func TestEmailService_SendToUser(t *testing.T) {
	t.Run("sends text and derived html", func(t *testing.T) {
		svc, resolver, sender := newEmailService()
		resolver.On("Lookup", mock.Anything, "u42").
			Return(models.ResolvedIdentity{UID: "u42", Email: "user@example.com"}, nil).Once()
		sender.On("Send", mock.Anything, mail.Message{
			FromName: "Hive SMTP",
			From:     "noreply@example.com",
			To:       "user@example.com",
			Subject:  "Weekly",
			Text:     "line1\nline2",
			HTML:     "line1<br/>line2",
		}).Return(nil).Once()

		ident, err := svc.SendToUser(context.Background(), models.LookupEmailRequest{UID: " u42 ", Title: "Weekly", Content: "line1\nline2"})

		require.NoError(t, err)
		assert.Equal(t, "user@example.com", ident.Email)
		sender.AssertExpectations(t)
	})

	t.Run("recipient without email", func(t *testing.T) {
		svc, resolver, sender := newEmailService()
		resolver.On("Lookup", mock.Anything, "u42").
			Return(models.ResolvedIdentity{}, &models.ValidationError{Fields: []string{"uid"}, Err: models.ErrRecipientNoEmail}).Once()

		_, err := svc.SendToUser(context.Background(), models.LookupEmailRequest{UID: "u42", Title: "T", Content: "C"})

		assert.ErrorIs(t, err, models.ErrRecipientNoEmail)
		sender.AssertNotCalled(t, "Send", mock.Anything, mock.Anything)
	})

	t.Run("missing parameters", func(t *testing.T) {
		svc, resolver, _ := newEmailService()

		_, err := svc.SendToUser(context.Background(), models.LookupEmailRequest{UID: "u42"})

		var vErr *models.ValidationError
		require.ErrorAs(t, err, &vErr)
		assert.Equal(t, []string{"title", "content"}, vErr.Fields)
		resolver.AssertNotCalled(t, "Lookup", mock.Anything, mock.Anything)
	})
}
