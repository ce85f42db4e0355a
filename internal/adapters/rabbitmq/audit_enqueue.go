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

// auditEnvelope - сообщение журнала аудита с меткой времени публикации.
type auditEnvelope struct {
	port.AuditEvent
	TraceID    string    `json:"trace_id,omitempty"`
	RecordedAt time.Time `json:"recorded_at"`
}

// AuditSinkAdapter публикует записи аудита в очередь журнала.
type AuditSinkAdapter struct {
	producer   *rabbitmq_producer.Publisher
	routingKey string
}

func NewAuditSinkAdapter(producer *rabbitmq_producer.Publisher, routingKey string) (*AuditSinkAdapter, error) {
	if producer == nil {
		return nil, fmt.Errorf("rabbitmq adapter: producer cannot be nil")
	}
	if routingKey == "" {
		return nil, fmt.Errorf("rabbitmq adapter: routingKey cannot be empty")
	}
	return &AuditSinkAdapter{
		producer:   producer,
		routingKey: routingKey,
	}, nil
}

func (a *AuditSinkAdapter) RecordAudit(ctx context.Context, event port.AuditEvent) error {
	logger := contextkeys.LoggerFromContext(ctx)
	adapterLogger := logger.WithFields(port.Fields{
		"component":   "AuditSinkAdapter",
		"routing_key": a.routingKey,
		"entity":      event.Entity,
		"record_id":   event.RecordID.String(),
	})

	envelope := auditEnvelope{
		AuditEvent: event,
		TraceID:    contextkeys.TraceIDFromContext(ctx),
		RecordedAt: time.Now().UTC(),
	}

	body, err := json.Marshal(envelope)
	if err != nil {
		return fmt.Errorf("rabbitmq adapter: failed to marshal audit event: %w", err)
	}

	msg := amqp.Publishing{
		ContentType:  "application/json",
		Body:         body,
		DeliveryMode: amqp.Persistent,
		Timestamp:    time.Now(),
		Headers:      make(amqp.Table),
	}
	if envelope.TraceID != "" {
		msg.Headers["x-trace-id"] = envelope.TraceID
	}

	publishCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	if err := a.producer.Publish(publishCtx, a.routingKey, msg); err != nil {
		adapterLogger.Error("Failed to publish audit event", err, nil)
		return fmt.Errorf("rabbitmq adapter: failed to publish audit event: %w", err)
	}

	adapterLogger.Debug("Audit event published", nil)
	return nil
}
