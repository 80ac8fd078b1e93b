package mocks

import (
	"context"

	"notification-dispatch/internal/models"
	"notification-dispatch/internal/service"

	"github.com/stretchr/testify/mock"
)

// MockPushDispatcher is a mock type for the PushDispatcher type
type MockPushDispatcher struct {
	mock.Mock
}

func (_m *MockPushDispatcher) Dispatch(ctx context.Context, req models.NotificationRequest) (string, error) {
	ret := _m.Called(ctx, req)
	return ret.String(0), ret.Error(1)
}

var _ service.PushDispatcher = (*MockPushDispatcher)(nil)

// MockEmailDispatcher is a mock type for the EmailDispatcher type
type MockEmailDispatcher struct {
	mock.Mock
}

func (_m *MockEmailDispatcher) SendAuthenticated(ctx context.Context, token string, req models.CredentialEmailRequest) (models.ResolvedIdentity, error) {
	ret := _m.Called(ctx, token, req)
	return ret.Get(0).(models.ResolvedIdentity), ret.Error(1)
}

func (_m *MockEmailDispatcher) SendToUser(ctx context.Context, req models.LookupEmailRequest) (models.ResolvedIdentity, error) {
	ret := _m.Called(ctx, req)
	return ret.Get(0).(models.ResolvedIdentity), ret.Error(1)
}

var _ service.EmailDispatcher = (*MockEmailDispatcher)(nil)
