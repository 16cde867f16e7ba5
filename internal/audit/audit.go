package audit

import (
	"context"
	"log/slog"
	"time"
)

// Event represents an audit entry for one tool invocation.
type Event struct {
	// Type describes the event kind.
	Type string
	// Tool is the tool name.
	Tool string
	// Command is the executable that was (or would be) spawned.
	Command string
	// CorrelationID links related events.
	CorrelationID string
	// Duration is set on completion events.
	Duration time.Duration
	// Reason provides additional context, such as an error message.
	Reason string
}

// Logger records audit events.
type Logger interface {
	// Record stores an audit event.
	Record(ctx context.Context, event Event)
}

// StdLogger writes audit events to slog.
type StdLogger struct {
	logger *slog.Logger
}

// New returns a StdLogger.
func New(logger *slog.Logger) *StdLogger {
	return &StdLogger{logger: logger}
}

// Record logs an audit event.
func (l *StdLogger) Record(ctx context.Context, event Event) {
	if l == nil || l.logger == nil {
		return
	}
	attrs := []any{
		"type", event.Type,
		"tool", event.Tool,
		"correlation_id", event.CorrelationID,
	}
	if event.Command != "" {
		attrs = append(attrs, "command", event.Command)
	}
	if event.Duration > 0 {
		attrs = append(attrs, "duration_ms", event.Duration.Milliseconds())
	}
	if event.Reason != "" {
		attrs = append(attrs, "reason", event.Reason)
	}
	l.logger.InfoContext(ctx, "audit", attrs...)
}
