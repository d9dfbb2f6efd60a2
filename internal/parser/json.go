package parser

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"Process_Insights/internal/models"

	"github.com/tidwall/gjson"
)

// envelopeField is the key upstreams may wrap their record array in
const envelopeField = "data"

// Parser implements the Service interface
type Parser struct{}

// NewParser creates a new dataset payload parser
func NewParser() Service {
	return newParser()
}

// newParser creates the concrete implementation
func newParser() *Parser {
	return &Parser{}
}

// ParseProcesses decodes a process list
func (p *Parser) ParseProcesses(data []byte) ([]models.Process, error) {
	return parseRecords(data, models.DatasetProcesses, validateProcess)
}

// ParseMetrics decodes the KPI cards
func (p *Parser) ParseMetrics(data []byte) ([]models.Metric, error) {
	return parseRecords(data, models.DatasetMetrics, validateMetric)
}

// ParseHistory decodes the throughput trend, ordered by timestamp ascending
func (p *Parser) ParseHistory(data []byte) ([]models.HistoryPoint, error) {
	points, err := parseRecords(data, models.DatasetHistory, validateHistoryPoint)
	if err != nil {
		return nil, err
	}

	sort.SliceStable(points, func(i, j int) bool {
		return points[i].Timestamp.Before(points[j].Timestamp)
	})
	return points, nil
}

// parseRecords accepts a bare JSON array or an object with the array under "data".
// Records that fail to decode or validate are skipped; a payload with records
// but none usable is rejected.
func parseRecords[T any](data []byte, dataset string, validate func(T) error) ([]T, error) {
	if len(strings.TrimSpace(string(data))) == 0 {
		return nil, fmt.Errorf("%w: empty %s payload", models.ErrInvalidPayload, dataset)
	}
	if !gjson.ValidBytes(data) {
		return nil, fmt.Errorf("%w: %s payload is not valid JSON", models.ErrInvalidPayload, dataset)
	}

	root := gjson.ParseBytes(data)
	if root.IsObject() {
		root = root.Get(envelopeField)
	}
	if !root.IsArray() {
		return nil, fmt.Errorf("%w: %s payload must be an array", models.ErrInvalidPayload, dataset)
	}

	records := make([]T, 0)
	total := 0
	root.ForEach(func(_, item gjson.Result) bool {
		total++

		var record T
		if err := json.Unmarshal([]byte(item.Raw), &record); err != nil {
			return true
		}
		if err := validate(record); err != nil {
			return true
		}

		records = append(records, record)
		return true
	})

	if total > 0 && len(records) == 0 {
		return nil, fmt.Errorf("%w: no valid %s records in %d", models.ErrInvalidPayload, dataset, total)
	}

	return records, nil
}

func validateProcess(p models.Process) error {
	switch {
	case strings.TrimSpace(p.ID) == "":
		return fmt.Errorf("%w: process without id", models.ErrInvalidPayload)
	case strings.TrimSpace(p.Name) == "":
		return fmt.Errorf("%w: process %s without name", models.ErrInvalidPayload, p.ID)
	case strings.TrimSpace(p.Status) == "":
		return fmt.Errorf("%w: process %s without status", models.ErrInvalidPayload, p.ID)
	case p.Throughput < 0:
		return fmt.Errorf("%w: process %s has invalid throughput", models.ErrInvalidPayload, p.ID)
	case p.Efficiency < 0 || p.Efficiency > 1:
		return fmt.Errorf("%w: process %s efficiency out of range", models.ErrInvalidPayload, p.ID)
	}
	return nil
}

func validateMetric(m models.Metric) error {
	if strings.TrimSpace(m.Label) == "" {
		return fmt.Errorf("%w: metric without label", models.ErrInvalidPayload)
	}
	return nil
}

func validateHistoryPoint(h models.HistoryPoint) error {
	if h.Timestamp.IsZero() {
		return fmt.Errorf("%w: history point without timestamp", models.ErrInvalidPayload)
	}
	if h.Throughput < 0 {
		return fmt.Errorf("%w: history point at %s has invalid throughput", models.ErrInvalidPayload, h.Timestamp)
	}
	return nil
}
