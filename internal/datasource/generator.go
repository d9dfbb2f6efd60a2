package datasource

import (
	"context"
	"fmt"
	"math"
	"math/rand"
	"sync"
	"time"

	"Process_Insights/internal/models"
)

const (
	processCount = 8
	historyDays  = 30
)

var (
	owners   = []string{"Amelia", "Noah", "Evelyn", "Kai"}
	statuses = []string{"Active", "Monitoring", "Paused"}
)

// Generator implements Source with randomized sample data.
// It stands in for the process API during development and demos.
type Generator struct {
	rng         *rand.Rand
	now         func() time.Time
	failureRate float64
	mutex       sync.Mutex
}

// GeneratorOption configures a Generator
type GeneratorOption func(*Generator)

// WithRand replaces the random source, mostly for deterministic tests
func WithRand(rng *rand.Rand) GeneratorOption {
	return func(g *Generator) {
		if rng != nil {
			g.rng = rng
		}
	}
}

// WithClock replaces the time source
func WithClock(now func() time.Time) GeneratorOption {
	return func(g *Generator) {
		if now != nil {
			g.now = now
		}
	}
}

// WithFailureRate makes a fraction of calls fail with ErrSourceUnavailable.
// Values are clamped to [0, 1].
func WithFailureRate(rate float64) GeneratorOption {
	return func(g *Generator) {
		g.failureRate = math.Max(0, math.Min(1, rate))
	}
}

// NewGenerator creates a new sample data source
func NewGenerator(opts ...GeneratorOption) Source {
	return newGenerator(opts...)
}

// newGenerator creates the concrete implementation
func newGenerator(opts ...GeneratorOption) *Generator {
	g := &Generator{
		rng: rand.New(rand.NewSource(time.Now().UnixNano())),
		now: time.Now,
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// ListProcesses returns eight processes with random owner, status and figures
func (g *Generator) ListProcesses(ctx context.Context) ([]models.Process, error) {
	if err := g.check(ctx, models.DatasetProcesses); err != nil {
		return nil, err
	}

	g.mutex.Lock()
	defer g.mutex.Unlock()

	now := g.now().UTC()
	processes := make([]models.Process, 0, processCount)
	for idx := 1; idx <= processCount; idx++ {
		processes = append(processes, models.Process{
			ID:         fmt.Sprintf("PRC-%03d", idx),
			Name:       fmt.Sprintf("Optimization Stream %d", idx),
			Owner:      owners[g.rng.Intn(len(owners))],
			Status:     statuses[g.rng.Intn(len(statuses))],
			Throughput: round(g.uniform(120, 320), 1),
			Efficiency: round(g.uniform(0.65, 0.98), 2),
			UpdatedAt:  now.Add(-time.Duration(1+g.rng.Intn(72)) * time.Hour),
		})
	}
	return processes, nil
}

// ListMetrics returns the fixed headline KPIs
func (g *Generator) ListMetrics(ctx context.Context) ([]models.Metric, error) {
	if err := g.check(ctx, models.DatasetMetrics); err != nil {
		return nil, err
	}

	return []models.Metric{
		{Label: "Daily Throughput", Value: 286.0, Unit: "units", Trend: 4.2},
		{Label: "Yield", Value: 0.82, Unit: "ratio", Trend: 1.1},
		{Label: "Cycle Time", Value: 6.4, Unit: "hrs", Trend: -0.6},
		{Label: "Cost per Unit", Value: 14.3, Unit: "USD", Trend: -0.9},
	}, nil
}

// ProcessHistory returns one throughput sample per day for the last 30 days, oldest first
func (g *Generator) ProcessHistory(ctx context.Context) ([]models.HistoryPoint, error) {
	if err := g.check(ctx, models.DatasetHistory); err != nil {
		return nil, err
	}

	g.mutex.Lock()
	defer g.mutex.Unlock()

	now := g.now().UTC()
	history := make([]models.HistoryPoint, 0, historyDays)
	for idx := historyDays - 1; idx >= 0; idx-- {
		history = append(history, models.HistoryPoint{
			Timestamp:  now.AddDate(0, 0, -idx),
			Throughput: round(g.uniform(180, 320), 1),
		})
	}
	return history, nil
}

// check honors cancellation and rolls for a simulated outage
func (g *Generator) check(ctx context.Context, dataset string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if g.failureRate == 0 {
		return nil
	}

	g.mutex.Lock()
	roll := g.rng.Float64()
	g.mutex.Unlock()

	if roll < g.failureRate {
		return models.NewDatasetError(dataset, "simulated upstream failure", models.ErrSourceUnavailable)
	}
	return nil
}

// uniform draws from [lo, hi]; callers hold the mutex
func (g *Generator) uniform(lo, hi float64) float64 {
	return lo + (hi-lo)*g.rng.Float64()
}

func round(value float64, places int) float64 {
	scale := math.Pow(10, float64(places))
	return math.Round(value*scale) / scale
}
