package usecases_port

import (
	"context"

	"github.com/google/uuid"

	"github.com/James-Mirambel/Terratrade-sub001/internal/core/domain"
)

// WithdrawOfferUseCasePort - отзыв предложения покупателем.
type WithdrawOfferUseCasePort interface {
	Execute(ctx context.Context, offerID, buyerID uuid.UUID) (*domain.Offer, error)
}
