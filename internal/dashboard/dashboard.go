package dashboard

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"Process_Insights/internal/datasource"
	"Process_Insights/internal/logger"
	"Process_Insights/internal/memo"
	"Process_Insights/internal/models"

	"golang.org/x/sync/errgroup"
)

// Datasets lists every cache key the dashboard owns
var Datasets = []string{models.DatasetProcesses, models.DatasetMetrics, models.DatasetHistory}

// Dashboard implements Service on top of a memoized data source
type Dashboard struct {
	source datasource.Source
	memo   *memo.Memo
	logger logger.Service
	ttl    time.Duration
}

// NewService creates a new dashboard service. A zero ttl uses the memo default.
func NewService(source datasource.Source, m *memo.Memo, log logger.Service, ttl time.Duration) Service {
	return newDashboard(source, m, log, ttl)
}

// newDashboard creates the concrete implementation
func newDashboard(source datasource.Source, m *memo.Memo, log logger.Service, ttl time.Duration) *Dashboard {
	return &Dashboard{
		source: source,
		memo:   m,
		logger: log,
		ttl:    ttl,
	}
}

// Processes returns the process list, optionally narrowed to one status (case-insensitive)
func (d *Dashboard) Processes(ctx context.Context, status string) ([]models.Process, error) {
	processes, err := memo.Fetch(ctx, d.memo, models.DatasetProcesses, d.source.ListProcesses, d.ttl)
	if err != nil {
		return nil, err
	}

	// Always build a new slice; the cached one is shared between callers
	status = strings.TrimSpace(status)
	filtered := make([]models.Process, 0, len(processes))
	for _, p := range processes {
		if status == "" || strings.EqualFold(p.Status, status) {
			filtered = append(filtered, p)
		}
	}
	return filtered, nil
}

// Metrics returns the headline KPIs
func (d *Dashboard) Metrics(ctx context.Context) ([]models.Metric, error) {
	return memo.Fetch(ctx, d.memo, models.DatasetMetrics, d.source.ListMetrics, d.ttl)
}

// History returns the throughput trend
func (d *Dashboard) History(ctx context.Context) ([]models.HistoryPoint, error) {
	return memo.Fetch(ctx, d.memo, models.DatasetHistory, d.source.ProcessHistory, d.ttl)
}

// Overview loads all three datasets concurrently. The first failure fails the overview.
func (d *Dashboard) Overview(ctx context.Context) (*models.Overview, error) {
	start := time.Now()

	var (
		processes []models.Process
		metrics   []models.Metric
		history   []models.HistoryPoint
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		processes, err = d.Processes(gctx, "")
		return err
	})
	g.Go(func() error {
		var err error
		metrics, err = d.Metrics(gctx)
		return err
	})
	g.Go(func() error {
		var err error
		history, err = d.History(gctx)
		return err
	})

	if err := g.Wait(); err != nil {
		d.logger.LogError(ctx, logger.OpOverview, "", "Failed to build overview", err, models.LogSeverityMedium, map[string]interface{}{
			"duration_ms": time.Since(start).Milliseconds(),
		})
		return nil, err
	}

	overview := &models.Overview{
		Metrics:         metrics,
		Processes:       processes,
		History:         history,
		StatusBreakdown: StatusBreakdown(processes),
		Timestamp:       time.Now().UTC(),
	}

	d.logger.LogSuccess(ctx, logger.OpOverview, "", "Built overview", map[string]interface{}{
		"processes":   len(processes),
		"duration_ms": time.Since(start).Milliseconds(),
	})

	return overview, nil
}

// Invalidate drops one dataset from the cache
func (d *Dashboard) Invalidate(ctx context.Context, dataset string) error {
	if !IsDataset(dataset) {
		return fmt.Errorf("%w: %q", models.ErrUnknownDataset, dataset)
	}
	return d.memo.Invalidate(ctx, dataset)
}

// IsDataset reports whether key names a dashboard dataset
func IsDataset(key string) bool {
	for _, dataset := range Datasets {
		if dataset == key {
			return true
		}
	}
	return false
}

// StatusBreakdown counts processes per status, most common first
func StatusBreakdown(processes []models.Process) []models.StatusCount {
	counts := make(map[string]int)
	for _, p := range processes {
		counts[p.Status]++
	}

	breakdown := make([]models.StatusCount, 0, len(counts))
	for status, count := range counts {
		breakdown = append(breakdown, models.StatusCount{Status: status, Count: count})
	}

	// Sort by count (descending), then by status (ascending)
	sort.Slice(breakdown, func(i, j int) bool {
		if breakdown[i].Count == breakdown[j].Count {
			return breakdown[i].Status < breakdown[j].Status
		}
		return breakdown[i].Count > breakdown[j].Count
	})

	return breakdown
}
