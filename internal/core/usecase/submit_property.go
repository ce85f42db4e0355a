package usecase

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/James-Mirambel/Terratrade-sub001/internal/contextkeys"
	"github.com/James-Mirambel/Terratrade-sub001/internal/core/domain"
	"github.com/James-Mirambel/Terratrade-sub001/internal/core/port"
	"github.com/James-Mirambel/Terratrade-sub001/internal/core/port/usecases_port"
)

// SubmitPropertyUseCase - подача объявления о продаже участка.
// Новое объявление попадает в pending и не принимает предложения,
// пока модератор его не одобрит.
type SubmitPropertyUseCase struct {
	ledger port.LedgerStorePort
	audit  port.AuditSinkPort

	nowFn func() time.Time
}

// NewSubmitPropertyUseCase - конструктор.
func NewSubmitPropertyUseCase(ledger port.LedgerStorePort, audit port.AuditSinkPort) *SubmitPropertyUseCase {
	return &SubmitPropertyUseCase{
		ledger: ledger,
		audit:  audit,
		nowFn:  time.Now,
	}
}

// SetNowFunc подменяет источник времени (для детерминированных тестов).
func (uc *SubmitPropertyUseCase) SetNowFunc(now func() time.Time) {
	if now == nil {
		uc.nowFn = time.Now
		return
	}
	uc.nowFn = now
}

func (uc *SubmitPropertyUseCase) Execute(ctx context.Context, input usecases_port.SubmitPropertyInput) (*domain.Property, error) {
	logger := contextkeys.LoggerFromContext(ctx)
	ucLogger := logger.WithFields(port.Fields{
		"use_case": "SubmitProperty",
		"owner_id": input.OwnerID.String(),
	})

	ucLogger.Info("Use case started: submitting property listing", nil)

	now := uc.nowFn()
	property := &domain.Property{
		ID:           uuid.New(),
		OwnerID:      input.OwnerID,
		Title:        input.Title,
		Price:        input.Price,
		AreaSqm:      input.AreaSqm,
		Status:       domain.PropertyPending,
		ListingType:  input.ListingType,
		AuctionStart: input.AuctionStart,
		AuctionEnd:   input.AuctionEnd,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := property.Validate(); err != nil {
		ucLogger.Warn("Property validation failed", port.Fields{"error": err.Error()})
		return nil, err
	}

	err := uc.ledger.WithinTx(ctx, func(tx port.LedgerTx) error {
		return tx.InsertProperty(ctx, property)
	})
	if err != nil {
		ucLogger.Error("Property insert failed", err, nil)
		return nil, err
	}

	ucLogger.Info("Use case finished: property submitted", port.Fields{"property_id": property.ID.String()})

	recordAudit(ctx, uc.audit, port.AuditEvent{
		ActorID:   input.OwnerID,
		Action:    "create",
		Entity:    "properties",
		RecordID:  property.ID,
		NewValues: map[string]interface{}{"title": property.Title, "status": string(property.Status)},
	})

	return property, nil
}
