package usecases_port

import (
	"context"

	"github.com/google/uuid"

	"github.com/James-Mirambel/Terratrade-sub001/internal/core/domain"
)

// RespondToCounterOfferUseCasePort - ответ покупателя на встречное
// предложение. Принятие каунтера запускает тот же каскад, что и принятие
// исходного предложения, но по каунтер-цене.
type RespondToCounterOfferUseCasePort interface {
	Execute(ctx context.Context, offerID, buyerID uuid.UUID, action domain.RespondAction) (*domain.Offer, error)
}
