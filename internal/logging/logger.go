package logging

import (
	"go.uber.org/zap"
)

// NewLogger builds a structured logger for the given environment. Production
// gets JSON output; everything else gets the human readable console encoder.
func NewLogger(env string) (*zap.Logger, error) {
	cfg := zap.NewDevelopmentConfig()
	if env == "production" {
		cfg = zap.NewProductionConfig()
	}
	cfg.EncoderConfig.TimeKey = "timestamp"
	return cfg.Build()
}

// WithOperation enriches the logger with operation and request identifiers.
func WithOperation(logger *zap.Logger, operation, requestID string) *zap.Logger {
	fields := []zap.Field{zap.String("operation", operation)}
	if requestID != "" {
		fields = append(fields, zap.String("request_id", requestID))
	}
	return logger.With(fields...)
}

// WithSession scopes the logger to a browser session.
func WithSession(logger *zap.Logger, operation, sessionID string) *zap.Logger {
	return WithOperation(logger, operation, "").With(zap.String("session_id", sessionID))
}
