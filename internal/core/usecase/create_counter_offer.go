package usecase

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/James-Mirambel/Terratrade-sub001/internal/contextkeys"
	"github.com/James-Mirambel/Terratrade-sub001/internal/core/domain"
	"github.com/James-Mirambel/Terratrade-sub001/internal/core/port"
)

// CreateCounterOfferUseCase - встречное предложение продавца.
// Каунтер записывается на ту же строку предложения, а не отдельной
// сущностью; повторный каунтер перезаписывает предыдущий.
type CreateCounterOfferUseCase struct {
	ledger   port.LedgerStorePort
	notifier port.NotificationPublisherPort
	audit    port.AuditSinkPort

	nowFn func() time.Time
}

// NewCreateCounterOfferUseCase - конструктор.
func NewCreateCounterOfferUseCase(ledger port.LedgerStorePort, notifier port.NotificationPublisherPort, audit port.AuditSinkPort) *CreateCounterOfferUseCase {
	return &CreateCounterOfferUseCase{
		ledger:   ledger,
		notifier: notifier,
		audit:    audit,
		nowFn:    time.Now,
	}
}

// SetNowFunc подменяет источник времени (для детерминированных тестов).
func (uc *CreateCounterOfferUseCase) SetNowFunc(now func() time.Time) {
	if now == nil {
		uc.nowFn = time.Now
		return
	}
	uc.nowFn = now
}

func (uc *CreateCounterOfferUseCase) Execute(ctx context.Context, offerID, sellerID uuid.UUID, counterAmount decimal.Decimal, message string) (*domain.Offer, error) {
	logger := contextkeys.LoggerFromContext(ctx)
	ucLogger := logger.WithFields(port.Fields{
		"use_case":  "CreateCounterOffer",
		"offer_id":  offerID.String(),
		"seller_id": sellerID.String(),
	})

	ucLogger.Info("Use case started: seller countering offer", nil)

	if counterAmount.Sign() <= 0 {
		ucLogger.Warn("Counter rejected: non-positive amount", nil)
		return nil, domain.ErrInvalidAmount
	}

	now := uc.nowFn()
	var offer *domain.Offer

	err := uc.ledger.WithinTx(ctx, func(tx port.LedgerTx) error {
		var err error
		offer, err = tx.GetOfferForUpdate(ctx, offerID)
		if err != nil {
			return err
		}
		if offer.SellerID != sellerID {
			return domain.ErrUnauthorized
		}
		// Каунтер допустим из pending и повторно из countered
		if !offer.Live() {
			return domain.ErrInvalidState
		}
		if offer.ExpiredAt(now) {
			return domain.ErrOfferExpired
		}

		offer.Status = domain.OfferCountered
		offer.CounterAmount = &counterAmount
		offer.CounterMessage = &message
		offer.UpdatedAt = now
		return tx.UpdateOffer(ctx, offer)
	})
	if err != nil {
		ucLogger.Warn("Counter offer transaction failed", port.Fields{"error": err.Error()})
		return nil, err
	}

	ucLogger.Info("Use case finished: counter offer recorded", nil)

	notify(ctx, uc.notifier, port.NotificationEvent{
		UserID:  offer.BuyerID,
		Type:    "counter_offer",
		Title:   "Counter offer received",
		Message: fmt.Sprintf("The seller countered your offer with %s.", counterAmount.StringFixed(2)),
		Data:    map[string]interface{}{"offer_id": offer.ID.String()},
	})
	recordAudit(ctx, uc.audit, port.AuditEvent{
		ActorID:   sellerID,
		Action:    "counter",
		Entity:    "offers",
		RecordID:  offer.ID,
		NewValues: map[string]interface{}{"status": string(offer.Status), "counter_amount": counterAmount.String()},
	})

	return offer, nil
}
