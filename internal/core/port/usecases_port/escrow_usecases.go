package usecases_port

import (
	"context"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/James-Mirambel/Terratrade-sub001/internal/core/domain"
)

// CreateEscrowAccountUseCasePort - открытие эскроу-счета по контракту.
// Обычно счет открывается автоматически при материализации контракта;
// публичная операция существует для контрактов, созданных до этого правила.
type CreateEscrowAccountUseCasePort interface {
	Execute(ctx context.Context, contractID uuid.UUID, caller domain.Actor, totalAmount decimal.Decimal) (*domain.EscrowAccount, error)
}

// DepositFundsUseCasePort - внесение средств на эскроу-счет.
type DepositFundsUseCasePort interface {
	Execute(ctx context.Context, escrowAccountID uuid.UUID, caller domain.Actor, amount decimal.Decimal, description string) (*domain.EscrowAccount, error)
}

// ReleaseFundsUseCasePort - выплата средств со счета (с комиссией платформы).
type ReleaseFundsUseCasePort interface {
	Execute(ctx context.Context, escrowAccountID uuid.UUID, caller domain.Actor, amount decimal.Decimal, description string) (*domain.EscrowAccount, error)
}

// DisputeEscrowUseCasePort - перевод счета в спор стороной контракта.
type DisputeEscrowUseCasePort interface {
	Execute(ctx context.Context, escrowAccountID uuid.UUID, caller domain.Actor, reason string) (*domain.Dispute, error)
}

// GetEscrowStatementUseCasePort - выписка: счет и все его движения.
type GetEscrowStatementUseCasePort interface {
	Execute(ctx context.Context, escrowAccountID uuid.UUID, caller domain.Actor) (*domain.EscrowAccount, []domain.EscrowTransaction, error)
}
