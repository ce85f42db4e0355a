package usecases_port

import (
	"context"

	"github.com/google/uuid"

	"github.com/James-Mirambel/Terratrade-sub001/internal/core/domain"
)

// GetOfferUseCasePort - карточка предложения для его участников.
type GetOfferUseCasePort interface {
	Execute(ctx context.Context, offerID uuid.UUID, caller domain.Actor) (*domain.Offer, error)
}
