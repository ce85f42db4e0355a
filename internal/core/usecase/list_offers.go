package usecase

import (
	"context"

	"github.com/google/uuid"

	"github.com/James-Mirambel/Terratrade-sub001/internal/contextkeys"
	"github.com/James-Mirambel/Terratrade-sub001/internal/core/domain"
	"github.com/James-Mirambel/Terratrade-sub001/internal/core/port"
)

// ListPropertyOffersUseCase - предложения по объявлению, доступно владельцу.
type ListPropertyOffersUseCase struct {
	ledger port.LedgerStorePort
}

// NewListPropertyOffersUseCase - конструктор.
func NewListPropertyOffersUseCase(ledger port.LedgerStorePort) *ListPropertyOffersUseCase {
	return &ListPropertyOffersUseCase{ledger: ledger}
}

func (uc *ListPropertyOffersUseCase) Execute(ctx context.Context, propertyID, requesterID uuid.UUID) ([]domain.Offer, error) {
	logger := contextkeys.LoggerFromContext(ctx)
	ucLogger := logger.WithFields(port.Fields{
		"use_case":    "ListPropertyOffers",
		"property_id": propertyID.String(),
	})

	property, err := uc.ledger.GetProperty(ctx, propertyID)
	if err != nil {
		ucLogger.Warn("Property lookup failed", port.Fields{"error": err.Error()})
		return nil, err
	}
	if property.OwnerID != requesterID {
		return nil, domain.ErrUnauthorized
	}
	return uc.ledger.ListOffersByProperty(ctx, propertyID)
}

// ListBuyerOffersUseCase - предложения, поданные конкретным покупателем.
type ListBuyerOffersUseCase struct {
	ledger port.LedgerStorePort
}

// NewListBuyerOffersUseCase - конструктор.
func NewListBuyerOffersUseCase(ledger port.LedgerStorePort) *ListBuyerOffersUseCase {
	return &ListBuyerOffersUseCase{ledger: ledger}
}

func (uc *ListBuyerOffersUseCase) Execute(ctx context.Context, buyerID uuid.UUID) ([]domain.Offer, error) {
	return uc.ledger.ListOffersByBuyer(ctx, buyerID)
}
