package mocks

import (
	"Process_Insights/internal/models"

	"github.com/stretchr/testify/mock"
)

// MockParser is a mock implementation of parser.Service
type MockParser struct {
	mock.Mock
}

// ParseProcesses mocks the ParseProcesses method of parser.Service
func (m *MockParser) ParseProcesses(data []byte) ([]models.Process, error) {
	args := m.Called(data)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Process), args.Error(1)
}

// ParseMetrics mocks the ParseMetrics method of parser.Service
func (m *MockParser) ParseMetrics(data []byte) ([]models.Metric, error) {
	args := m.Called(data)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Metric), args.Error(1)
}

// ParseHistory mocks the ParseHistory method of parser.Service
func (m *MockParser) ParseHistory(data []byte) ([]models.HistoryPoint, error) {
	args := m.Called(data)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.HistoryPoint), args.Error(1)
}
