package usecase

import (
	"context"

	"github.com/google/uuid"

	"github.com/James-Mirambel/Terratrade-sub001/internal/contextkeys"
	"github.com/James-Mirambel/Terratrade-sub001/internal/core/domain"
	"github.com/James-Mirambel/Terratrade-sub001/internal/core/port"
)

// GetContractUseCase - карточка контракта для его сторон.
type GetContractUseCase struct {
	ledger port.LedgerStorePort
}

// NewGetContractUseCase - конструктор.
func NewGetContractUseCase(ledger port.LedgerStorePort) *GetContractUseCase {
	return &GetContractUseCase{ledger: ledger}
}

func (uc *GetContractUseCase) Execute(ctx context.Context, contractID uuid.UUID, caller domain.Actor) (*domain.Contract, error) {
	logger := contextkeys.LoggerFromContext(ctx)
	ucLogger := logger.WithFields(port.Fields{
		"use_case":    "GetContract",
		"contract_id": contractID.String(),
	})

	contract, err := uc.ledger.GetContract(ctx, contractID)
	if err != nil {
		ucLogger.Warn("Contract lookup failed", port.Fields{"error": err.Error()})
		return nil, err
	}
	if !caller.Admin && !contract.Party(caller.ID) {
		return nil, domain.ErrUnauthorized
	}
	return contract, nil
}
