package models

import (
	"time"
)

// Dataset keys served by the dashboard
const (
	DatasetProcesses = "processes"
	DatasetMetrics   = "metrics"
	DatasetHistory   = "history"
)

// Process represents a single optimization stream
type Process struct {
	ID         string    `json:"id"`
	Name       string    `json:"name"`
	Owner      string    `json:"owner"`
	Status     string    `json:"status"`
	Throughput float64   `json:"throughput"`
	Efficiency float64   `json:"efficiency"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// Metric represents a headline KPI card
type Metric struct {
	Label string  `json:"label"`
	Value float64 `json:"value"`
	Unit  string  `json:"unit"`
	Trend float64 `json:"trend"`
}

// HistoryPoint is one sample of the throughput trend
type HistoryPoint struct {
	Timestamp  time.Time `json:"timestamp"`
	Throughput float64   `json:"throughput"`
}

// StatusCount is the number of processes in a given status
type StatusCount struct {
	Status string `json:"status"`
	Count  int    `json:"count"`
}

// Overview bundles every dataset the dashboard page renders
type Overview struct {
	Metrics         []Metric       `json:"metrics"`
	Processes       []Process      `json:"processes"`
	History         []HistoryPoint `json:"history"`
	StatusBreakdown []StatusCount  `json:"status_breakdown"`
	Timestamp       time.Time      `json:"timestamp"`
}

// LogSeverity represents the severity level of a log entry
type LogSeverity string

const (
	LogSeverityLow    LogSeverity = "low"
	LogSeverityMedium LogSeverity = "medium"
	LogSeverityHigh   LogSeverity = "high"
)

// ProcessType represents the type of process that created the log
type ProcessType string

const (
	ProcessTypeRequest  ProcessType = "request"
	ProcessTypeInternal ProcessType = "internal"
)

// LogEvent represents a process-specific logging context
type LogEvent struct {
	ProcessID   string      `json:"process_id"`
	ProcessType ProcessType `json:"process_type"`
	StartTime   time.Time   `json:"start_time"`
	ClientIP    string      `json:"client_ip,omitempty"`
}

// LogEntry represents a structured log entry
type LogEntry struct {
	ID          string                 `json:"id"`
	Timestamp   time.Time              `json:"timestamp"`
	Severity    LogSeverity            `json:"severity,omitempty"`
	Message     string                 `json:"message"`
	Operation   string                 `json:"operation"`
	TargetName  string                 `json:"target_name,omitempty"`
	ProcessID   string                 `json:"process_id"`
	ProcessType ProcessType            `json:"process_type"`
	ClientIP    string                 `json:"client_ip,omitempty"`
	Error       string                 `json:"error,omitempty"`
	Metadata    map[string]interface{} `json:"metadata,omitempty"`
}
