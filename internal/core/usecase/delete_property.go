package usecase

import (
	"context"

	"github.com/google/uuid"

	"github.com/James-Mirambel/Terratrade-sub001/internal/contextkeys"
	"github.com/James-Mirambel/Terratrade-sub001/internal/core/domain"
	"github.com/James-Mirambel/Terratrade-sub001/internal/core/port"
)

// DeletePropertyUseCase - мягкое удаление объявления владельцем.
// Пока по объявлению есть живые предложения или действующие контракты,
// удаление отклоняется.
type DeletePropertyUseCase struct {
	ledger port.LedgerStorePort
	audit  port.AuditSinkPort
}

// NewDeletePropertyUseCase - конструктор.
func NewDeletePropertyUseCase(ledger port.LedgerStorePort, audit port.AuditSinkPort) *DeletePropertyUseCase {
	return &DeletePropertyUseCase{ledger: ledger, audit: audit}
}

func (uc *DeletePropertyUseCase) Execute(ctx context.Context, propertyID, ownerID uuid.UUID) error {
	logger := contextkeys.LoggerFromContext(ctx)
	ucLogger := logger.WithFields(port.Fields{
		"use_case":    "DeleteProperty",
		"property_id": propertyID.String(),
		"owner_id":    ownerID.String(),
	})

	ucLogger.Info("Use case started: deleting property", nil)

	err := uc.ledger.WithinTx(ctx, func(tx port.LedgerTx) error {
		property, err := tx.GetPropertyForUpdate(ctx, propertyID)
		if err != nil {
			return err
		}
		if property.OwnerID != ownerID {
			return domain.ErrUnauthorized
		}
		if property.Status == domain.PropertyDeleted {
			return domain.ErrPropertyNotFound
		}

		open, err := tx.CountOpenEngagements(ctx, propertyID)
		if err != nil {
			return err
		}
		if open > 0 {
			return domain.ErrPropertyHasOpenDeals
		}

		return tx.SetPropertyStatus(ctx, propertyID, domain.PropertyDeleted)
	})
	if err != nil {
		ucLogger.Warn("Delete transaction failed", port.Fields{"error": err.Error()})
		return err
	}

	ucLogger.Info("Use case finished: property deleted", nil)

	recordAudit(ctx, uc.audit, port.AuditEvent{
		ActorID:   ownerID,
		Action:    "delete",
		Entity:    "properties",
		RecordID:  propertyID,
		NewValues: map[string]interface{}{"status": string(domain.PropertyDeleted)},
	})

	return nil
}
