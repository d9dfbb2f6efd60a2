package logger

import (
	"context"
	"time"

	"Process_Insights/internal/models"

	"github.com/google/uuid"
)

type contextKey string

const logEventKey contextKey = "log_event"

// NewLogEvent creates a new log event with a fresh process id
func NewLogEvent(processType models.ProcessType, clientIP string) *models.LogEvent {
	return newLogEvent(uuid.New(), processType, clientIP)
}

func newLogEvent(id uuid.UUID, processType models.ProcessType, clientIP string) *models.LogEvent {
	return &models.LogEvent{
		ProcessID:   id.String(),
		ProcessType: processType,
		StartTime:   time.Now().UTC(),
		ClientIP:    clientIP,
	}
}

// WithLogEvent adds a log event to the context
func WithLogEvent(ctx context.Context, logEvent *models.LogEvent) context.Context {
	return context.WithValue(ctx, logEventKey, logEvent)
}

// GetLogEvent retrieves the log event from context, or a fresh internal one
func GetLogEvent(ctx context.Context) *models.LogEvent {
	if le, ok := ctx.Value(logEventKey).(*models.LogEvent); ok && le != nil {
		return le
	}
	return NewInternalLogEvent()
}

// NewRequestLogEvent creates a log event for an HTTP request.
// A caller-supplied request id is kept when it is a valid UUID.
func NewRequestLogEvent(clientIP, requestID string) *models.LogEvent {
	if id, err := uuid.Parse(requestID); err == nil {
		return newLogEvent(id, models.ProcessTypeRequest, clientIP)
	}
	return NewLogEvent(models.ProcessTypeRequest, clientIP)
}

// NewInternalLogEvent creates a log event for internal processes
func NewInternalLogEvent() *models.LogEvent {
	return NewLogEvent(models.ProcessTypeInternal, "")
}
