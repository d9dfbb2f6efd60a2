package logger

import (
	"context"

	"Process_Insights/internal/models"
)

// Service is the structured logger handed to every component.
// The request or internal process an entry belongs to travels in ctx (see WithLogEvent).
type Service interface {
	// LogInfo records a progress message with no target and no severity
	LogInfo(ctx context.Context, operation, message string, metadata map[string]interface{})
	// LogSuccess records a completed operation on a target such as a dataset key
	LogSuccess(ctx context.Context, operation, targetName, message string, metadata map[string]interface{})
	// LogError records a failure; severity is required
	LogError(ctx context.Context, operation, targetName, message string, err error, severity models.LogSeverity, metadata map[string]interface{})
	Close() error
}

// DatabaseConnection is the log sink behind DatabaseLogger
type DatabaseConnection interface {
	InsertLog(ctx context.Context, entry *models.LogEntry) error
	Ping(ctx context.Context) error
	Close() error
}

var (
	_ Service            = (*DatabaseLogger)(nil)
	_ Service            = (*ConsoleLogger)(nil)
	_ DatabaseConnection = (*PostgresConnection)(nil)
)
