package mocks

import (
	"context"

	"Process_Insights/internal/models"

	"github.com/stretchr/testify/mock"
)

// MockDashboardService is a mock implementation of dashboard.Service
type MockDashboardService struct {
	mock.Mock
}

// Processes mocks the Processes method of dashboard.Service
func (m *MockDashboardService) Processes(ctx context.Context, status string) ([]models.Process, error) {
	args := m.Called(ctx, status)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Process), args.Error(1)
}

// Metrics mocks the Metrics method of dashboard.Service
func (m *MockDashboardService) Metrics(ctx context.Context) ([]models.Metric, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Metric), args.Error(1)
}

// History mocks the History method of dashboard.Service
func (m *MockDashboardService) History(ctx context.Context) ([]models.HistoryPoint, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.HistoryPoint), args.Error(1)
}

// Overview mocks the Overview method of dashboard.Service
func (m *MockDashboardService) Overview(ctx context.Context) (*models.Overview, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Overview), args.Error(1)
}

// Invalidate mocks the Invalidate method of dashboard.Service
func (m *MockDashboardService) Invalidate(ctx context.Context, dataset string) error {
	args := m.Called(ctx, dataset)
	return args.Error(0)
}
