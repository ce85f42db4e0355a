package usecase

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/James-Mirambel/Terratrade-sub001/internal/contextkeys"
	"github.com/James-Mirambel/Terratrade-sub001/internal/core/domain"
	"github.com/James-Mirambel/Terratrade-sub001/internal/core/port"
)

// RespondToCounterOfferUseCase - решение покупателя по встречному
// предложению. Принятие каунтера переиспользует каскад принятия, но суммой
// сделки становится counter_amount; отказ делает предложение rejected.
type RespondToCounterOfferUseCase struct {
	ledger       port.LedgerStorePort
	notifier     port.NotificationPublisherPort
	audit        port.AuditSinkPort
	materializer *ContractMaterializer

	nowFn func() time.Time
}

// NewRespondToCounterOfferUseCase - конструктор.
func NewRespondToCounterOfferUseCase(ledger port.LedgerStorePort, notifier port.NotificationPublisherPort, audit port.AuditSinkPort, materializer *ContractMaterializer) *RespondToCounterOfferUseCase {
	return &RespondToCounterOfferUseCase{
		ledger:       ledger,
		notifier:     notifier,
		audit:        audit,
		materializer: materializer,
		nowFn:        time.Now,
	}
}

// SetNowFunc подменяет источник времени (для детерминированных тестов).
func (uc *RespondToCounterOfferUseCase) SetNowFunc(now func() time.Time) {
	if now == nil {
		uc.nowFn = time.Now
		return
	}
	uc.nowFn = now
}

func (uc *RespondToCounterOfferUseCase) Execute(ctx context.Context, offerID, buyerID uuid.UUID, action domain.RespondAction) (*domain.Offer, error) {
	logger := contextkeys.LoggerFromContext(ctx)
	ucLogger := logger.WithFields(port.Fields{
		"use_case": "RespondToCounterOffer",
		"offer_id": offerID.String(),
		"buyer_id": buyerID.String(),
	})

	if !action.Valid() {
		ucLogger.Warn("Rejecting response with unknown action", nil)
		return nil, domain.ErrInvalidState
	}

	ucLogger.Info("Use case started: buyer responding to counter offer", nil)

	now := uc.nowFn()
	var offer *domain.Offer
	var contract *domain.Contract

	err := uc.ledger.WithinTx(ctx, func(tx port.LedgerTx) error {
		// Тот же порядок блокировок, что и в RespondToOffer: объявление,
		// затем предложение.
		peek, err := tx.GetOffer(ctx, offerID)
		if err != nil {
			return err
		}

		if action == domain.RespondAccept {
			property, err := tx.GetPropertyForUpdate(ctx, peek.PropertyID)
			if err != nil {
				return err
			}
			// Состояние объявления проверяется под блокировкой: принятие
			// по уже проданному или снятому объявлению невозможно.
			if !property.AcceptsOffers() {
				return domain.ErrInvalidState
			}
		}

		offer, err = tx.GetOfferForUpdate(ctx, offerID)
		if err != nil {
			return err
		}

		if offer.BuyerID != buyerID {
			return domain.ErrUnauthorized
		}
		if offer.Status != domain.OfferCountered || offer.CounterAmount == nil {
			return domain.ErrInvalidState
		}
		if offer.ExpiredAt(now) {
			return domain.ErrOfferExpired
		}

		switch action {
		case domain.RespondAccept:
			contract, err = acceptLocked(ctx, tx, offer, *offer.CounterAmount, uc.materializer, now)
			return err
		case domain.RespondReject:
			offer.Status = domain.OfferRejected
			offer.UpdatedAt = now
			return tx.UpdateOffer(ctx, offer)
		default:
			return domain.ErrInvalidState
		}
	})
	if err != nil {
		ucLogger.Warn("Respond to counter offer transaction failed", port.Fields{"error": err.Error()})
		return nil, err
	}

	ucLogger.Info("Use case finished: counter offer resolved", port.Fields{"new_status": string(offer.Status)})

	switch offer.Status {
	case domain.OfferAccepted:
		notify(ctx, uc.notifier, port.NotificationEvent{
			UserID:  offer.SellerID,
			Type:    "counter_accepted",
			Title:   "Counter offer accepted",
			Message: "The buyer accepted your counter offer. A draft contract has been prepared.",
			Data: map[string]interface{}{
				"offer_id":    offer.ID.String(),
				"contract_id": contract.ID.String(),
			},
		})
	case domain.OfferRejected:
		notify(ctx, uc.notifier, port.NotificationEvent{
			UserID:  offer.SellerID,
			Type:    "counter_rejected",
			Title:   "Counter offer declined",
			Message: "The buyer declined your counter offer.",
			Data:    map[string]interface{}{"offer_id": offer.ID.String()},
		})
	}

	recordAudit(ctx, uc.audit, port.AuditEvent{
		ActorID:   buyerID,
		Action:    "respond_counter",
		Entity:    "offers",
		RecordID:  offer.ID,
		OldValues: map[string]interface{}{"status": string(domain.OfferCountered)},
		NewValues: map[string]interface{}{"status": string(offer.Status)},
	})

	return offer, nil
}
