package usecase

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/James-Mirambel/Terratrade-sub001/internal/core/domain"
	"github.com/James-Mirambel/Terratrade-sub001/internal/core/port"
)

// ContractMaterializer создает контракт-снимок из принятого предложения и
// сразу открывает под него эскроу-счет. Вызывается только изнутри
// транзакции принятия предложения; отдельного пути отказа у него нет -
// любая ошибка откатывает всю транзакцию принятия целиком.
type ContractMaterializer struct{}

// NewContractMaterializer - конструктор.
func NewContractMaterializer() *ContractMaterializer {
	return &ContractMaterializer{}
}

// Materialize снимает условия с предложения в неизменяемый контракт (draft)
// и открывает эскроу-счет с целевой суммой, равной сумме сделки.
func (m *ContractMaterializer) Materialize(ctx context.Context, tx port.LedgerTx, offer *domain.Offer, amount decimal.Decimal, now time.Time) (*domain.Contract, *domain.EscrowAccount, error) {
	contract := &domain.Contract{
		ID:           uuid.New(),
		PropertyID:   offer.PropertyID,
		BuyerID:      offer.BuyerID,
		SellerID:     offer.SellerID,
		OfferID:      offer.ID,
		Amount:       amount,
		EarnestMoney: offer.Terms.EarnestMoney,
		Terms:        offer.Terms.Snapshot(),
		ClosingDate:  offer.Terms.ClosingDate,
		Status:       domain.ContractDraft,
		CreatedAt:    now,
	}

	if err := tx.InsertContract(ctx, contract); err != nil {
		return nil, nil, fmt.Errorf("failed to materialize contract from offer %s: %w", offer.ID, err)
	}

	account := &domain.EscrowAccount{
		ID:              uuid.New(),
		ContractID:      contract.ID,
		TotalAmount:     amount,
		DepositedAmount: decimal.Zero,
		ReleasedAmount:  decimal.Zero,
		FeeAmount:       decimal.Zero,
		Status:          domain.EscrowPending,
		CreatedAt:       now,
		UpdatedAt:       now,
	}

	if err := tx.InsertEscrowAccount(ctx, account); err != nil {
		return nil, nil, fmt.Errorf("failed to open escrow account for contract %s: %w", contract.ID, err)
	}

	return contract, account, nil
}
