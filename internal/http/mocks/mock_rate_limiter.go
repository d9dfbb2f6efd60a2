package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"
)

// MockRateLimiter is a mock implementation of ratelimit.Service
type MockRateLimiter struct {
	mock.Mock
}

// Allow mocks the Allow method of ratelimit.Service
func (m *MockRateLimiter) Allow(clientID string) bool {
	args := m.Called(clientID)
	return args.Bool(0)
}

// Wait mocks the Wait method of ratelimit.Service
func (m *MockRateLimiter) Wait(ctx context.Context, clientID string) error {
	args := m.Called(ctx, clientID)
	return args.Error(0)
}

// Close mocks the Close method of ratelimit.Service
func (m *MockRateLimiter) Close() error {
	args := m.Called()
	return args.Error(0)
}
