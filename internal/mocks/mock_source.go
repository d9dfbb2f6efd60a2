package mocks

import (
	"context"

	"Process_Insights/internal/models"

	"github.com/stretchr/testify/mock"
)

// MockSource is a mock implementation of datasource.Source
type MockSource struct {
	mock.Mock
}

// ListProcesses mocks the ListProcesses method of datasource.Source
func (m *MockSource) ListProcesses(ctx context.Context) ([]models.Process, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Process), args.Error(1)
}

// ListMetrics mocks the ListMetrics method of datasource.Source
func (m *MockSource) ListMetrics(ctx context.Context) ([]models.Metric, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Metric), args.Error(1)
}

// ProcessHistory mocks the ProcessHistory method of datasource.Source
func (m *MockSource) ProcessHistory(ctx context.Context) ([]models.HistoryPoint, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.HistoryPoint), args.Error(1)
}
