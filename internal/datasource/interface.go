package datasource

import (
	"context"

	"Process_Insights/internal/models"
)

// Source defines the process API the dashboard reads from
// External packages should use this interface, not the concrete implementations
type Source interface {
	ListProcesses(ctx context.Context) ([]models.Process, error)
	ListMetrics(ctx context.Context) ([]models.Metric, error)
	ProcessHistory(ctx context.Context) ([]models.HistoryPoint, error)
}

// Kinds accepted by DATA_SOURCE
const (
	KindMock     = "mock"
	KindUpstream = "upstream"
)
