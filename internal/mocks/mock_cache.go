package mocks

import (
	"context"
	"time"

	"Process_Insights/internal/cache"

	"github.com/stretchr/testify/mock"
)

// MockCache is a mock implementation of cache.Service
type MockCache struct {
	mock.Mock
}

// Get mocks the Get method of cache.Service
func (m *MockCache) Get(ctx context.Context, key string) (interface{}, error) {
	args := m.Called(ctx, key)
	return args.Get(0), args.Error(1)
}

// GetEntry mocks the GetEntry method of cache.Service
func (m *MockCache) GetEntry(ctx context.Context, key string) (*cache.Entry, error) {
	args := m.Called(ctx, key)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*cache.Entry), args.Error(1)
}

// Set mocks the Set method of cache.Service
func (m *MockCache) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	args := m.Called(ctx, key, value, ttl)
	return args.Error(0)
}

// Delete mocks the Delete method of cache.Service
func (m *MockCache) Delete(ctx context.Context, key string) error {
	args := m.Called(ctx, key)
	return args.Error(0)
}

// Close mocks the Close method of cache.Service
func (m *MockCache) Close() error {
	args := m.Called()
	return args.Error(0)
}
