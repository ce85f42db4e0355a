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

// CreateOfferUseCase - подача предложения покупателем.
type CreateOfferUseCase struct {
	ledger   port.LedgerStorePort
	notifier port.NotificationPublisherPort
	audit    port.AuditSinkPort

	// Явная конфигурация вместо глобального кэша настроек
	minOfferFraction decimal.Decimal // доля от цены объявления, по умолчанию 0.5
	offerTTL         time.Duration   // срок жизни предложения, по умолчанию 7 суток

	nowFn func() time.Time
}

// NewCreateOfferUseCase - конструктор.
func NewCreateOfferUseCase(ledger port.LedgerStorePort, notifier port.NotificationPublisherPort, audit port.AuditSinkPort, minOfferFraction decimal.Decimal, offerTTL time.Duration) *CreateOfferUseCase {
	return &CreateOfferUseCase{
		ledger:           ledger,
		notifier:         notifier,
		audit:            audit,
		minOfferFraction: minOfferFraction,
		offerTTL:         offerTTL,
		nowFn:            time.Now,
	}
}

// SetNowFunc подменяет источник времени (для детерминированных тестов).
func (uc *CreateOfferUseCase) SetNowFunc(now func() time.Time) {
	if now == nil {
		uc.nowFn = time.Now
		return
	}
	uc.nowFn = now
}

func (uc *CreateOfferUseCase) Execute(ctx context.Context, propertyID, buyerID uuid.UUID, amount decimal.Decimal, terms domain.OfferTerms) (*domain.Offer, error) {
	logger := contextkeys.LoggerFromContext(ctx)
	ucLogger := logger.WithFields(port.Fields{
		"use_case":    "CreateOffer",
		"property_id": propertyID.String(),
		"buyer_id":    buyerID.String(),
	})

	ucLogger.Info("Use case started: attempting to create offer", nil)

	if amount.Sign() <= 0 {
		ucLogger.Warn("Offer rejected: non-positive amount", nil)
		return nil, domain.ErrInvalidAmount
	}
	if err := terms.Validate(); err != nil {
		ucLogger.Warn("Offer rejected: invalid terms", port.Fields{"error": err.Error()})
		return nil, err
	}

	now := uc.nowFn()
	var offer *domain.Offer
	var sellerID uuid.UUID

	err := uc.ledger.WithinTx(ctx, func(tx port.LedgerTx) error {
		property, err := tx.GetProperty(ctx, propertyID)
		if err != nil {
			return err
		}
		// Неактивное объявление для покупателя неотличимо от отсутствующего
		if !property.AcceptsOffers() {
			return domain.ErrPropertyNotFound
		}
		if property.OwnerID == buyerID {
			return domain.ErrSelfOfferForbidden
		}

		minAmount := property.Price.Mul(uc.minOfferFraction)
		if amount.Cmp(minAmount) < 0 {
			return domain.ErrOfferTooLow
		}

		exists, err := tx.HasLiveOffer(ctx, propertyID, buyerID)
		if err != nil {
			return err
		}
		if exists {
			return domain.ErrDuplicatePendingOffer
		}

		sellerID = property.OwnerID
		offer = &domain.Offer{
			ID:         uuid.New(),
			PropertyID: propertyID,
			BuyerID:    buyerID,
			SellerID:   sellerID, // денормализуем владельца на момент создания
			Amount:     amount,
			Status:     domain.OfferPending,
			Terms:      terms,
			ExpiresAt:  now.Add(uc.offerTTL),
			CreatedAt:  now,
			UpdatedAt:  now,
		}
		return tx.InsertOffer(ctx, offer)
	})
	if err != nil {
		ucLogger.Warn("Create offer transaction failed", port.Fields{"error": err.Error()})
		return nil, err
	}

	ucLogger = ucLogger.WithFields(port.Fields{"offer_id": offer.ID.String()})
	ucLogger.Info("Use case finished: offer created", nil)

	// Уведомления и аудит отправляются после коммита и не влияют на результат
	notify(ctx, uc.notifier, port.NotificationEvent{
		UserID:  sellerID,
		Type:    "offer_received",
		Title:   "New offer received",
		Message: fmt.Sprintf("You received an offer of %s on your listing.", amount.StringFixed(2)),
		Data:    map[string]interface{}{"offer_id": offer.ID.String(), "property_id": propertyID.String()},
	})
	notify(ctx, uc.notifier, port.NotificationEvent{
		UserID:  buyerID,
		Type:    "offer_submitted",
		Title:   "Offer submitted",
		Message: fmt.Sprintf("Your offer of %s was submitted and expires at %s.", amount.StringFixed(2), offer.ExpiresAt.Format(time.RFC3339)),
		Data:    map[string]interface{}{"offer_id": offer.ID.String(), "property_id": propertyID.String()},
	})
	recordAudit(ctx, uc.audit, port.AuditEvent{
		ActorID:   buyerID,
		Action:    "create",
		Entity:    "offers",
		RecordID:  offer.ID,
		NewValues: map[string]interface{}{"status": string(offer.Status), "amount": amount.String()},
	})

	return offer, nil
}
