package usecase

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/James-Mirambel/Terratrade-sub001/internal/contextkeys"
	"github.com/James-Mirambel/Terratrade-sub001/internal/core/domain"
	"github.com/James-Mirambel/Terratrade-sub001/internal/core/port"
)

// ModeratePropertyUseCase - решение модератора по pending-объявлению.
// Одобрение переводит объявление в active, отклонение - в rejected.
type ModeratePropertyUseCase struct {
	ledger   port.LedgerStorePort
	notifier port.NotificationPublisherPort
	audit    port.AuditSinkPort

	nowFn func() time.Time
}

// NewModeratePropertyUseCase - конструктор.
func NewModeratePropertyUseCase(ledger port.LedgerStorePort, notifier port.NotificationPublisherPort, audit port.AuditSinkPort) *ModeratePropertyUseCase {
	return &ModeratePropertyUseCase{
		ledger:   ledger,
		notifier: notifier,
		audit:    audit,
		nowFn:    time.Now,
	}
}

// SetNowFunc подменяет источник времени (для детерминированных тестов).
func (uc *ModeratePropertyUseCase) SetNowFunc(now func() time.Time) {
	if now == nil {
		uc.nowFn = time.Now
		return
	}
	uc.nowFn = now
}

func (uc *ModeratePropertyUseCase) Execute(ctx context.Context, propertyID uuid.UUID, admin domain.Actor, action domain.ModerationAction) (*domain.Property, error) {
	logger := contextkeys.LoggerFromContext(ctx)
	ucLogger := logger.WithFields(port.Fields{
		"use_case":    "ModerateProperty",
		"property_id": propertyID.String(),
		"admin_id":    admin.ID.String(),
	})

	ucLogger.Info("Use case started: moderating property", nil)

	if !admin.Admin {
		return nil, domain.ErrUnauthorized
	}
	if !action.Valid() {
		return nil, domain.ErrInvalidState
	}

	var property *domain.Property

	err := uc.ledger.WithinTx(ctx, func(tx port.LedgerTx) error {
		var err error
		property, err = tx.GetPropertyForUpdate(ctx, propertyID)
		if err != nil {
			return err
		}
		if property.Status != domain.PropertyPending {
			return domain.ErrInvalidState
		}

		switch action {
		case domain.ModerationApprove:
			property.Status = domain.PropertyActive
		case domain.ModerationReject:
			property.Status = domain.PropertyRejected
		}
		property.UpdatedAt = uc.nowFn()

		return tx.SetPropertyStatus(ctx, propertyID, property.Status)
	})
	if err != nil {
		ucLogger.Warn("Moderation transaction failed", port.Fields{"error": err.Error()})
		return nil, err
	}

	ucLogger.Info("Use case finished: property moderated", port.Fields{"status": string(property.Status)})

	notify(ctx, uc.notifier, port.NotificationEvent{
		UserID:  property.OwnerID,
		Type:    "property_moderated",
		Title:   "Listing review completed",
		Message: "Your land listing has been reviewed.",
		Data: map[string]interface{}{
			"property_id": propertyID.String(),
			"status":      string(property.Status),
		},
	})
	recordAudit(ctx, uc.audit, port.AuditEvent{
		ActorID:   admin.ID,
		Action:    "moderate",
		Entity:    "properties",
		RecordID:  propertyID,
		NewValues: map[string]interface{}{"status": string(property.Status)},
	})

	return property, nil
}
