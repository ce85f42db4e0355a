package port

import (
	"context"

	"github.com/google/uuid"
)

// NotificationEvent - событие для доставки пользователю.
// Доставка - забота внешнего сервиса уведомлений, ядро только публикует.
type NotificationEvent struct {
	UserID  uuid.UUID              `json:"user_id"`
	Type    string                 `json:"type"`
	Title   string                 `json:"title"`
	Message string                 `json:"message"`
	Data    map[string]interface{} `json:"data,omitempty"`
}

// NotificationPublisherPort - порт отправки уведомлений.
// Fire-and-forget: ошибка публикации логируется и никогда не откатывает
// основную операцию.
type NotificationPublisherPort interface {
	PublishNotification(ctx context.Context, event NotificationEvent) error
}

// AuditEvent - запись аудита изменения сущности.
type AuditEvent struct {
	ActorID   uuid.UUID              `json:"actor_id"`
	Action    string                 `json:"action"`
	Entity    string                 `json:"entity"`
	RecordID  uuid.UUID              `json:"record_id"`
	OldValues map[string]interface{} `json:"old_values,omitempty"`
	NewValues map[string]interface{} `json:"new_values,omitempty"`
}

// AuditSinkPort - порт журнала аудита, той же best-effort природы,
// что и уведомления.
type AuditSinkPort interface {
	RecordAudit(ctx context.Context, event AuditEvent) error
}
