package usecases_port

import (
	"context"

	"github.com/google/uuid"

	"github.com/James-Mirambel/Terratrade-sub001/internal/core/domain"
)

// ListPropertyOffersUseCasePort - предложения по объявлению (видит продавец).
type ListPropertyOffersUseCasePort interface {
	Execute(ctx context.Context, propertyID, requesterID uuid.UUID) ([]domain.Offer, error)
}

// ListBuyerOffersUseCasePort - предложения, поданные покупателем.
type ListBuyerOffersUseCasePort interface {
	Execute(ctx context.Context, buyerID uuid.UUID) ([]domain.Offer, error)
}
