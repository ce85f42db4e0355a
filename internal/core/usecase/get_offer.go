package usecase

import (
	"context"

	"github.com/google/uuid"

	"github.com/James-Mirambel/Terratrade-sub001/internal/contextkeys"
	"github.com/James-Mirambel/Terratrade-sub001/internal/core/domain"
	"github.com/James-Mirambel/Terratrade-sub001/internal/core/port"
)

// GetOfferUseCase - карточка предложения. Видят ее только участники
// переговоров: покупатель, продавец и администратор.
type GetOfferUseCase struct {
	ledger port.LedgerStorePort
}

// NewGetOfferUseCase - конструктор.
func NewGetOfferUseCase(ledger port.LedgerStorePort) *GetOfferUseCase {
	return &GetOfferUseCase{ledger: ledger}
}

func (uc *GetOfferUseCase) Execute(ctx context.Context, offerID uuid.UUID, caller domain.Actor) (*domain.Offer, error) {
	logger := contextkeys.LoggerFromContext(ctx)
	ucLogger := logger.WithFields(port.Fields{
		"use_case": "GetOffer",
		"offer_id": offerID.String(),
	})

	offer, err := uc.ledger.GetOffer(ctx, offerID)
	if err != nil {
		ucLogger.Warn("Offer lookup failed", port.Fields{"error": err.Error()})
		return nil, err
	}
	if !caller.Admin && offer.BuyerID != caller.ID && offer.SellerID != caller.ID {
		return nil, domain.ErrUnauthorized
	}
	return offer, nil
}
