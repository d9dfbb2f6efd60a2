package dashboard

import (
	"context"

	"Process_Insights/internal/models"
)

// Service defines the dataset operations behind the dashboard API
// External packages should use this interface, not the concrete implementations
type Service interface {
	Processes(ctx context.Context, status string) ([]models.Process, error)
	Metrics(ctx context.Context) ([]models.Metric, error)
	History(ctx context.Context) ([]models.HistoryPoint, error)
	Overview(ctx context.Context) (*models.Overview, error)
	Invalidate(ctx context.Context, dataset string) error
}
