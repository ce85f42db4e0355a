package usecase

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/James-Mirambel/Terratrade-sub001/internal/contextkeys"
	"github.com/James-Mirambel/Terratrade-sub001/internal/core/domain"
	"github.com/James-Mirambel/Terratrade-sub001/internal/core/port"
)

// RespondToOfferUseCase - ответ продавца на pending-предложение.
// Принятие каскадом отклоняет конкурентов, помечает объявление проданным и
// материализует контракт; отклонение меняет только само предложение.
type RespondToOfferUseCase struct {
	ledger       port.LedgerStorePort
	notifier     port.NotificationPublisherPort
	audit        port.AuditSinkPort
	materializer *ContractMaterializer

	nowFn func() time.Time
}

// NewRespondToOfferUseCase - конструктор.
func NewRespondToOfferUseCase(ledger port.LedgerStorePort, notifier port.NotificationPublisherPort, audit port.AuditSinkPort, materializer *ContractMaterializer) *RespondToOfferUseCase {
	return &RespondToOfferUseCase{
		ledger:       ledger,
		notifier:     notifier,
		audit:        audit,
		materializer: materializer,
		nowFn:        time.Now,
	}
}

// SetNowFunc подменяет источник времени (для детерминированных тестов).
func (uc *RespondToOfferUseCase) SetNowFunc(now func() time.Time) {
	if now == nil {
		uc.nowFn = time.Now
		return
	}
	uc.nowFn = now
}

func (uc *RespondToOfferUseCase) Execute(ctx context.Context, offerID, sellerID uuid.UUID, action domain.RespondAction) (*domain.Offer, error) {
	logger := contextkeys.LoggerFromContext(ctx)
	ucLogger := logger.WithFields(port.Fields{
		"use_case":  "RespondToOffer",
		"offer_id":  offerID.String(),
		"seller_id": sellerID.String(),
	})

	if !action.Valid() {
		ucLogger.Warn("Rejecting response with unknown action", nil)
		return nil, domain.ErrInvalidState
	}

	ucLogger.Info("Use case started: seller responding to offer", nil)

	now := uc.nowFn()
	var offer *domain.Offer
	var contract *domain.Contract

	err := uc.ledger.WithinTx(ctx, func(tx port.LedgerTx) error {
		// Сначала узнаем property_id без блокировки, чтобы все пути принятия
		// брали блокировки в одном порядке: объявление, затем предложение.
		// Иначе два конкурирующих accept по одному объявлению могут
		// взаимно заблокироваться.
		peek, err := tx.GetOffer(ctx, offerID)
		if err != nil {
			return err
		}

		if action == domain.RespondAccept {
			property, err := tx.GetPropertyForUpdate(ctx, peek.PropertyID)
			if err != nil {
				return err
			}
			// Объявление могло быть продано или снято между созданием
			// предложения и этим accept; принятие по нему невозможно.
			if !property.AcceptsOffers() {
				return domain.ErrInvalidState
			}
		}

		// Авторитетное состояние читаем уже под блокировкой: проигравший
		// гонку accept увидит здесь rejected и упадет с ErrOfferNotPending.
		offer, err = tx.GetOfferForUpdate(ctx, offerID)
		if err != nil {
			return err
		}

		// Отвечать может только адресат предложения, а не "какой-нибудь"
		// владелец объявления.
		if offer.SellerID != sellerID {
			return domain.ErrUnauthorized
		}
		if offer.Status != domain.OfferPending {
			return domain.ErrOfferNotPending
		}
		if offer.ExpiredAt(now) {
			return domain.ErrOfferExpired
		}

		switch action {
		case domain.RespondAccept:
			contract, err = acceptLocked(ctx, tx, offer, offer.Amount, uc.materializer, now)
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
		ucLogger.Warn("Respond to offer transaction failed", port.Fields{"error": err.Error()})
		return nil, err
	}

	ucLogger.Info("Use case finished: offer responded", port.Fields{"new_status": string(offer.Status)})

	switch offer.Status {
	case domain.OfferAccepted:
		notify(ctx, uc.notifier, port.NotificationEvent{
			UserID:  offer.BuyerID,
			Type:    "offer_accepted",
			Title:   "Offer accepted",
			Message: "The seller accepted your offer. A draft contract has been prepared.",
			Data: map[string]interface{}{
				"offer_id":    offer.ID.String(),
				"contract_id": contract.ID.String(),
			},
		})
	case domain.OfferRejected:
		notify(ctx, uc.notifier, port.NotificationEvent{
			UserID:  offer.BuyerID,
			Type:    "offer_rejected",
			Title:   "Offer rejected",
			Message: "The seller rejected your offer.",
			Data:    map[string]interface{}{"offer_id": offer.ID.String()},
		})
	}

	recordAudit(ctx, uc.audit, port.AuditEvent{
		ActorID:   sellerID,
		Action:    "respond",
		Entity:    "offers",
		RecordID:  offer.ID,
		OldValues: map[string]interface{}{"status": string(domain.OfferPending)},
		NewValues: map[string]interface{}{"status": string(offer.Status)},
	})

	return offer, nil
}
