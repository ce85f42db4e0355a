package usecase

import (
	"context"

	"github.com/James-Mirambel/Terratrade-sub001/internal/contextkeys"
	"github.com/James-Mirambel/Terratrade-sub001/internal/core/port"
)

// notify публикует уведомление best-effort: ошибка пишется в лог и глотается,
// основную операцию она не откатывает и не прерывает.
func notify(ctx context.Context, publisher port.NotificationPublisherPort, event port.NotificationEvent) {
	if publisher == nil {
		return
	}
	if err := publisher.PublishNotification(ctx, event); err != nil {
		contextkeys.LoggerFromContext(ctx).Warn("Failed to publish notification", port.Fields{
			"notification_type": event.Type,
			"user_id":           event.UserID.String(),
			"error":             err.Error(),
		})
	}
}

// recordAudit пишет запись аудита с той же best-effort семантикой.
func recordAudit(ctx context.Context, sink port.AuditSinkPort, event port.AuditEvent) {
	if sink == nil {
		return
	}
	if err := sink.RecordAudit(ctx, event); err != nil {
		contextkeys.LoggerFromContext(ctx).Warn("Failed to record audit event", port.Fields{
			"action":    event.Action,
			"entity":    event.Entity,
			"record_id": event.RecordID.String(),
			"error":     err.Error(),
		})
	}
}
