package usecases_port

import (
	"context"

	"github.com/google/uuid"

	"github.com/James-Mirambel/Terratrade-sub001/internal/core/domain"
)

// GetContractUseCasePort - карточка контракта для его сторон.
type GetContractUseCasePort interface {
	Execute(ctx context.Context, contractID uuid.UUID, caller domain.Actor) (*domain.Contract, error)
}
