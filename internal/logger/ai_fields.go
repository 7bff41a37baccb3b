package logger

import (
	"strings"

	"go.uber.org/zap"
)

const (
	// FieldProvider is the structured log field key for the AI provider name.
	FieldProvider = "ai_provider"
	// FieldModel is the structured log field key for the AI model identifier.
	FieldModel = "ai_model"
	// FieldOperation names the gateway operation being served.
	FieldOperation = "ai_operation"
	// FieldRequestID carries the X-Request-ID of an HTTP request.
	FieldRequestID = "request_id"
)

// stringFields converts key/value pairs into zap fields, trimming whitespace
// and skipping pairs with an empty key or value. A trailing odd key is ignored.
func stringFields(pairs ...string) []zap.Field {
	result := make([]zap.Field, 0, len(pairs)/2)
	for i := 0; i+1 < len(pairs); i += 2 {
		key := strings.TrimSpace(pairs[i])
		value := strings.TrimSpace(pairs[i+1])
		if key == "" || value == "" {
			continue
		}
		result = append(result, zap.String(key, value))
	}
	return result
}

// OrNop returns l, or a no-op logger when l is nil.
func OrNop(l *zap.Logger) *zap.Logger {
	if l == nil {
		return zap.NewNop()
	}
	return l
}

func with(l *zap.Logger, fields []zap.Field) *zap.Logger {
	l = OrNop(l)
	if len(fields) == 0 {
		return l
	}
	return l.With(fields...)
}

// CommonFields returns standard zap fields that describe the AI provider and model.
// Empty values are ignored to keep log entries compact when information is missing.
func CommonFields(provider, model string) []zap.Field {
	return stringFields(FieldProvider, provider, FieldModel, model)
}

// WithCommonFields attaches the common AI fields to the provided logger.
func WithCommonFields(l *zap.Logger, provider, model string) *zap.Logger {
	return with(l, CommonFields(provider, model))
}

func WithOperation(l *zap.Logger, operation string) *zap.Logger {
	return with(l, stringFields(FieldOperation, operation))
}

func WithRequestID(l *zap.Logger, requestID string) *zap.Logger {
	return with(l, stringFields(FieldRequestID, requestID))
}
