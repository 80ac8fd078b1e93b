package mocks

import (
	"context"

	"notification-dispatch/internal/mail"

	"github.com/stretchr/testify/mock"
)

// MockMailSender is a mock type for the mail.Sender type
type MockMailSender struct {
	mock.Mock
}

// Send provides a mock function with given fields: ctx, msg
func (_m *MockMailSender) Send(ctx context.Context, msg mail.Message) error {
	ret := _m.Called(ctx, msg)
	return ret.Error(0)
}

var _ mail.Sender = (*MockMailSender)(nil)
