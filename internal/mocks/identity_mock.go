package mocks

import (
	"context"

	"notification-dispatch/internal/identity"
	"notification-dispatch/internal/models"
	"notification-dispatch/internal/service"

	"github.com/stretchr/testify/mock"
)

// MockDirectory is a mock type for the identity.Directory type
type MockDirectory struct {
	mock.Mock
}

// VerifyToken provides a mock function with given fields: ctx, token
func (_m *MockDirectory) VerifyToken(ctx context.Context, token string) (identity.Claims, error) {
	ret := _m.Called(ctx, token)
	return ret.Get(0).(identity.Claims), ret.Error(1)
}

// LookupUser provides a mock function with given fields: ctx, uid
func (_m *MockDirectory) LookupUser(ctx context.Context, uid string) (identity.UserRecord, error) {
	ret := _m.Called(ctx, uid)
	return ret.Get(0).(identity.UserRecord), ret.Error(1)
}

var _ identity.Directory = (*MockDirectory)(nil)

// MockIdentityResolver is a mock type for the IdentityResolver type
type MockIdentityResolver struct {
	mock.Mock
}

// Authenticate provides a mock function with given fields: ctx, token
func (_m *MockIdentityResolver) Authenticate(ctx context.Context, token string) (models.ResolvedIdentity, error) {
	ret := _m.Called(ctx, token)
	return ret.Get(0).(models.ResolvedIdentity), ret.Error(1)
}

// Lookup provides a mock function with given fields: ctx, uid
func (_m *MockIdentityResolver) Lookup(ctx context.Context, uid string) (models.ResolvedIdentity, error) {
	ret := _m.Called(ctx, uid)
	return ret.Get(0).(models.ResolvedIdentity), ret.Error(1)
}

var _ service.IdentityResolver = (*MockIdentityResolver)(nil)
