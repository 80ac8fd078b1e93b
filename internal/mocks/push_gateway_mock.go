package mocks

import (
	"context"

	"notification-dispatch/internal/push"
	"notification-dispatch/internal/service"

	"github.com/stretchr/testify/mock"
)

// MockPushGateway is a mock type for the PushGateway type
type MockPushGateway struct {
	mock.Mock
}

// Send provides a mock function with given fields: ctx, payload
func (_m *MockPushGateway) Send(ctx context.Context, payload push.PlatformPayload) (string, error) {
	ret := _m.Called(ctx, payload)

	var r0 string
	var r1 error
	if rf, ok := ret.Get(0).(func(context.Context, push.PlatformPayload) (string, error)); ok {
		return rf(ctx, payload)
	}
	r0 = ret.String(0)
	r1 = ret.Error(1)

	return r0, r1
}

// Platform provides a mock function with no fields
func (_m *MockPushGateway) Platform() string {
	ret := _m.Called()
	return ret.String(0)
}

// NewMockPushGateway creates a new instance of MockPushGateway. It also registers a testing interface on the mock and a cleanup function to assert the mocks expectations.
func NewMockPushGateway(t interface {
	mock.TestingT
	Cleanup(func())
}) *MockPushGateway {
	m := &MockPushGateway{}
	m.Mock.Test(t)
	t.Cleanup(func() { m.AssertExpectations(t) })
	return m
}

var _ service.PushGateway = (*MockPushGateway)(nil)
