package usecases_port

import (
	"context"

	"github.com/google/uuid"

	"github.com/James-Mirambel/Terratrade-sub001/internal/core/domain"
)

// RespondToOfferUseCasePort - ответ продавца (accept/reject) на pending-предложение.
type RespondToOfferUseCasePort interface {
	Execute(ctx context.Context, offerID, sellerID uuid.UUID, action domain.RespondAction) (*domain.Offer, error)
}
