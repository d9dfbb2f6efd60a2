package parser

import "Process_Insights/internal/models"

// Service defines the interface for decoding upstream dataset payloads
// External packages should use this interface, not the concrete implementations
type Service interface {
	ParseProcesses(data []byte) ([]models.Process, error)
	ParseMetrics(data []byte) ([]models.Metric, error)
	ParseHistory(data []byte) ([]models.HistoryPoint, error)
}
