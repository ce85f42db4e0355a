package usecase

import (
	"context"

	"github.com/google/uuid"

	"github.com/James-Mirambel/Terratrade-sub001/internal/contextkeys"
	"github.com/James-Mirambel/Terratrade-sub001/internal/core/domain"
	"github.com/James-Mirambel/Terratrade-sub001/internal/core/port"
)

// GetEscrowStatementUseCase - выписка по счету: текущие суммы и все движения.
type GetEscrowStatementUseCase struct {
	ledger port.LedgerStorePort
}

// NewGetEscrowStatementUseCase - конструктор.
func NewGetEscrowStatementUseCase(ledger port.LedgerStorePort) *GetEscrowStatementUseCase {
	return &GetEscrowStatementUseCase{ledger: ledger}
}

func (uc *GetEscrowStatementUseCase) Execute(ctx context.Context, escrowAccountID uuid.UUID, caller domain.Actor) (*domain.EscrowAccount, []domain.EscrowTransaction, error) {
	logger := contextkeys.LoggerFromContext(ctx)
	ucLogger := logger.WithFields(port.Fields{
		"use_case":          "GetEscrowStatement",
		"escrow_account_id": escrowAccountID.String(),
	})

	account, err := uc.ledger.GetEscrowAccount(ctx, escrowAccountID)
	if err != nil {
		ucLogger.Warn("Escrow account lookup failed", port.Fields{"error": err.Error()})
		return nil, nil, err
	}

	contract, err := uc.ledger.GetContract(ctx, account.ContractID)
	if err != nil {
		return nil, nil, err
	}
	if !caller.Admin && !contract.Party(caller.ID) {
		return nil, nil, domain.ErrUnauthorized
	}

	transactions, err := uc.ledger.ListEscrowTransactions(ctx, escrowAccountID)
	if err != nil {
		ucLogger.Warn("Escrow transactions lookup failed", port.Fields{"error": err.Error()})
		return nil, nil, err
	}

	return account, transactions, nil
}
