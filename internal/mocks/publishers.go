package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"
)

// Mock StaleTokenPublisher
type StaleTokenPublisher struct {
	mock.Mock
}

func (m *StaleTokenPublisher) PublishStaleToken(ctx context.Context, token string) error {
	args := m.Called(ctx, token)
	return args.Error(0)
}
