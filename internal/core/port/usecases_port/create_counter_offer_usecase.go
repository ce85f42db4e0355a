package usecases_port

import (
	"context"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/James-Mirambel/Terratrade-sub001/internal/core/domain"
)

// CreateCounterOfferUseCasePort - встречное предложение продавца.
// Повторный каунтер по уже countered-предложению разрешен.
type CreateCounterOfferUseCasePort interface {
	Execute(ctx context.Context, offerID, sellerID uuid.UUID, counterAmount decimal.Decimal, message string) (*domain.Offer, error)
}
