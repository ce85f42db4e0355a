package usecase

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/James-Mirambel/Terratrade-sub001/internal/contextkeys"
	"github.com/James-Mirambel/Terratrade-sub001/internal/core/domain"
	"github.com/James-Mirambel/Terratrade-sub001/internal/core/port"
)

// WithdrawOfferUseCase - отзыв предложения покупателем.
// Разрешен только из живых статусов (pending/countered), результат конечный.
type WithdrawOfferUseCase struct {
	ledger   port.LedgerStorePort
	notifier port.NotificationPublisherPort
	audit    port.AuditSinkPort

	nowFn func() time.Time
}

// NewWithdrawOfferUseCase - конструктор.
func NewWithdrawOfferUseCase(ledger port.LedgerStorePort, notifier port.NotificationPublisherPort, audit port.AuditSinkPort) *WithdrawOfferUseCase {
	return &WithdrawOfferUseCase{
		ledger:   ledger,
		notifier: notifier,
		audit:    audit,
		nowFn:    time.Now,
	}
}

// SetNowFunc подменяет источник времени (для детерминированных тестов).
func (uc *WithdrawOfferUseCase) SetNowFunc(now func() time.Time) {
	if now == nil {
		uc.nowFn = time.Now
		return
	}
	uc.nowFn = now
}

func (uc *WithdrawOfferUseCase) Execute(ctx context.Context, offerID, buyerID uuid.UUID) (*domain.Offer, error) {
	logger := contextkeys.LoggerFromContext(ctx)
	ucLogger := logger.WithFields(port.Fields{
		"use_case": "WithdrawOffer",
		"offer_id": offerID.String(),
		"buyer_id": buyerID.String(),
	})

	ucLogger.Info("Use case started: buyer withdrawing offer", nil)

	now := uc.nowFn()
	var offer *domain.Offer

	err := uc.ledger.WithinTx(ctx, func(tx port.LedgerTx) error {
		var err error
		offer, err = tx.GetOfferForUpdate(ctx, offerID)
		if err != nil {
			return err
		}
		if offer.BuyerID != buyerID {
			return domain.ErrUnauthorized
		}
		if !offer.Live() {
			return domain.ErrInvalidState
		}

		offer.Status = domain.OfferWithdrawn
		offer.UpdatedAt = now
		return tx.UpdateOffer(ctx, offer)
	})
	if err != nil {
		ucLogger.Warn("Withdraw offer transaction failed", port.Fields{"error": err.Error()})
		return nil, err
	}

	ucLogger.Info("Use case finished: offer withdrawn", nil)

	notify(ctx, uc.notifier, port.NotificationEvent{
		UserID:  offer.SellerID,
		Type:    "offer_withdrawn",
		Title:   "Offer withdrawn",
		Message: "The buyer withdrew their offer.",
		Data:    map[string]interface{}{"offer_id": offer.ID.String()},
	})
	recordAudit(ctx, uc.audit, port.AuditEvent{
		ActorID:   buyerID,
		Action:    "withdraw",
		Entity:    "offers",
		RecordID:  offer.ID,
		NewValues: map[string]interface{}{"status": string(offer.Status)},
	})

	return offer, nil
}
