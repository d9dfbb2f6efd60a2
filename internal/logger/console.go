package logger

import (
	"context"
	"encoding/json"
	"io"
	"os"
	"sync"

	"Process_Insights/internal/models"
)

// ConsoleLogger implements Service by writing one JSON object per line.
// Used when no log database is configured.
type ConsoleLogger struct {
	out   io.Writer
	mutex sync.Mutex
}

// NewConsoleLogger creates a logger writing to out, or stdout when out is nil
func NewConsoleLogger(out io.Writer) Service {
	if out == nil {
		out = os.Stdout
	}
	return &ConsoleLogger{out: out}
}

// LogInfo logs an informational message (no severity)
func (l *ConsoleLogger) LogInfo(ctx context.Context, operation, message string, metadata map[string]interface{}) {
	l.write(buildEntry(ctx, "", operation, "", message, nil, metadata))
}

// LogSuccess logs a successful operation (no severity)
func (l *ConsoleLogger) LogSuccess(ctx context.Context, operation, targetName, message string, metadata map[string]interface{}) {
	l.write(buildEntry(ctx, "", operation, targetName, message, nil, metadata))
}

// LogError logs an error with required severity
func (l *ConsoleLogger) LogError(ctx context.Context, operation, targetName, message string, err error, severity models.LogSeverity, metadata map[string]interface{}) {
	l.write(buildEntry(ctx, severity, operation, targetName, message, err, metadata))
}

func (l *ConsoleLogger) write(entry *models.LogEntry) {
	data, err := json.Marshal(entry)
	if err != nil {
		// Metadata that cannot be encoded is dropped rather than losing the line
		entry.Metadata = nil
		data, _ = json.Marshal(entry)
	}

	l.mutex.Lock()
	defer l.mutex.Unlock()
	_, _ = l.out.Write(append(data, '\n'))
}

// Close is a no-op
func (l *ConsoleLogger) Close() error {
	return nil
}
