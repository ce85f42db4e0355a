package rabbitmq

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/James-Mirambel/Terratrade-sub001/internal/contextkeys"
	"github.com/James-Mirambel/Terratrade-sub001/internal/core/port"
	"github.com/James-Mirambel/Terratrade-sub001/pkg/rabbitmq/rabbitmq_producer"
)

// NotificationPublisherAdapter публикует пользовательские уведомления
// в очередь сервиса уведомлений.
type NotificationPublisherAdapter struct {
	producer   *rabbitmq_producer.Publisher
	routingKey string
}

func NewNotificationPublisherAdapter(producer *rabbitmq_producer.Publisher, routingKey string) (*NotificationPublisherAdapter, error) {
	if producer == nil {
		return nil, fmt.Errorf("rabbitmq adapter: producer cannot be nil")
	}
	if routingKey == "" {
		return nil, fmt.Errorf("rabbitmq adapter: routingKey cannot be empty")
	}
	return &NotificationPublisherAdapter{
		producer:   producer,
		routingKey: routingKey,
	}, nil
}

func (a *NotificationPublisherAdapter) PublishNotification(ctx context.Context, event port.NotificationEvent) error {
	logger := contextkeys.LoggerFromContext(ctx)
	adapterLogger := logger.WithFields(port.Fields{
		"component":   "NotificationPublisherAdapter",
		"routing_key": a.routingKey,
		"user_id":     event.UserID.String(),
	})

	body, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("rabbitmq adapter: failed to marshal notification: %w", err)
	}

	msg := amqp.Publishing{
		ContentType:  "application/json",
		Body:         body,
		DeliveryMode: amqp.Persistent, // Для сохранения сообщений при перезапуске брокера
		Timestamp:    time.Now(),
		Headers:      make(amqp.Table),
	}

	traceID := contextkeys.TraceIDFromContext(ctx)
	if traceID != "" {
		msg.Headers["x-trace-id"] = traceID
	}

	// Таймаут на публикацию, если контекст его не предоставляет
	publishCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	if err := a.producer.Publish(publishCtx, a.routingKey, msg); err != nil {
		adapterLogger.Error("Failed to publish notification", err, nil)
		return fmt.Errorf("rabbitmq adapter: failed to publish notification: %w", err)
	}

	adapterLogger.Debug("Notification published", nil)
	return nil
}
