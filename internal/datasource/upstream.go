package datasource

import (
	"context"

	"Process_Insights/internal/fetcher"
	"Process_Insights/internal/models"
	"Process_Insights/internal/parser"
)

// Upstream paths, relative to UPSTREAM_URL
const (
	ProcessesPath = "/processes"
	MetricsPath   = "/metrics"
	HistoryPath   = "/history"
)

// Upstream implements Source against a remote process API
type Upstream struct {
	fetcher fetcher.Service
	parser  parser.Service
}

// NewUpstream creates a source that fetches and decodes datasets over HTTP
func NewUpstream(fetcher fetcher.Service, parser parser.Service) Source {
	return newUpstream(fetcher, parser)
}

// newUpstream creates the concrete implementation
func newUpstream(fetcher fetcher.Service, parser parser.Service) *Upstream {
	return &Upstream{
		fetcher: fetcher,
		parser:  parser,
	}
}

// ListProcesses fetches the process list
func (u *Upstream) ListProcesses(ctx context.Context) ([]models.Process, error) {
	data, err := u.fetch(ctx, models.DatasetProcesses, ProcessesPath)
	if err != nil {
		return nil, err
	}

	processes, err := u.parser.ParseProcesses(data)
	if err != nil {
		return nil, models.NewDatasetError(models.DatasetProcesses, "failed to parse payload", err)
	}
	return processes, nil
}

// ListMetrics fetches the KPI cards
func (u *Upstream) ListMetrics(ctx context.Context) ([]models.Metric, error) {
	data, err := u.fetch(ctx, models.DatasetMetrics, MetricsPath)
	if err != nil {
		return nil, err
	}

	metrics, err := u.parser.ParseMetrics(data)
	if err != nil {
		return nil, models.NewDatasetError(models.DatasetMetrics, "failed to parse payload", err)
	}
	return metrics, nil
}

// ProcessHistory fetches the throughput trend
func (u *Upstream) ProcessHistory(ctx context.Context) ([]models.HistoryPoint, error) {
	data, err := u.fetch(ctx, models.DatasetHistory, HistoryPath)
	if err != nil {
		return nil, err
	}

	history, err := u.parser.ParseHistory(data)
	if err != nil {
		return nil, models.NewDatasetError(models.DatasetHistory, "failed to parse payload", err)
	}
	return history, nil
}

func (u *Upstream) fetch(ctx context.Context, dataset, path string) ([]byte, error) {
	data, err := u.fetcher.Fetch(ctx, path)
	if err != nil {
		return nil, models.NewDatasetError(dataset, "failed to fetch", err)
	}
	return data, nil
}
