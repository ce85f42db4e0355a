package contextkeys

import (
	"context"

	"github.com/google/uuid"
)

// Тип для ключа контекста. Приватный тип исключает коллизии.
type traceIDKeyType struct{}

var traceIDKey = traceIDKeyType{}

// ContextWithTraceID помещает trace_id в контекст.
func ContextWithTraceID(ctx context.Context, traceID string) context.Context {
	return context.WithValue(ctx, traceIDKey, traceID)
}

// TraceIDFromContext извлекает trace_id из контекста.
// Возвращает пустую строку, если trace_id не найден.
func TraceIDFromContext(ctx context.Context) string {
	if traceID, ok := ctx.Value(traceIDKey).(string); ok {
		return traceID
	}
	return ""
}

// EnsureTraceID возвращает candidate, если это валидный UUID,
// иначе генерирует новый trace_id.
func EnsureTraceID(candidate string) string {
	if _, err := uuid.Parse(candidate); err != nil {
		return uuid.New().String()
	}
	return candidate
}
