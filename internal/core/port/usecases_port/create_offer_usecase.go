package usecases_port

import (
	"context"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/James-Mirambel/Terratrade-sub001/internal/core/domain"
)

// CreateOfferUseCasePort - создание предложения покупателем.
type CreateOfferUseCasePort interface {
	Execute(ctx context.Context, propertyID, buyerID uuid.UUID, amount decimal.Decimal, terms domain.OfferTerms) (*domain.Offer, error)
}
