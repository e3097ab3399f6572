package observability

import "go.uber.org/zap"

// AuditLogger records audit events on a distinct named channel, separate
// from operational logging. Events are ordinary structured log entries, not
// wrapped closures.
type AuditLogger struct {
	logger *zap.Logger
}

// NewAuditLogger creates a new audit logger
func NewAuditLogger(logger *zap.Logger) *AuditLogger {
	return &AuditLogger{
		logger: logger.Named("audit"),
	}
}

// Event records one audit event with structured fields
func (a *AuditLogger) Event(name string, fields ...zap.Field) {
	a.logger.Info(name, append(fields, zap.String("log_type", "audit"))...)
}
