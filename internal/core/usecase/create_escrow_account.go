package usecase

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/James-Mirambel/Terratrade-sub001/internal/contextkeys"
	"github.com/James-Mirambel/Terratrade-sub001/internal/core/domain"
	"github.com/James-Mirambel/Terratrade-sub001/internal/core/port"
)

// CreateEscrowAccountUseCase - открытие эскроу-счета по существующему
// контракту. Инвариант 1:1 держится на уникальности contract_id: вторая
// попытка падает с ErrEscrowExists.
type CreateEscrowAccountUseCase struct {
	ledger port.LedgerStorePort
	audit  port.AuditSinkPort

	nowFn func() time.Time
}

// NewCreateEscrowAccountUseCase - конструктор.
func NewCreateEscrowAccountUseCase(ledger port.LedgerStorePort, audit port.AuditSinkPort) *CreateEscrowAccountUseCase {
	return &CreateEscrowAccountUseCase{
		ledger: ledger,
		audit:  audit,
		nowFn:  time.Now,
	}
}

// SetNowFunc подменяет источник времени (для детерминированных тестов).
func (uc *CreateEscrowAccountUseCase) SetNowFunc(now func() time.Time) {
	if now == nil {
		uc.nowFn = time.Now
		return
	}
	uc.nowFn = now
}

func (uc *CreateEscrowAccountUseCase) Execute(ctx context.Context, contractID uuid.UUID, caller domain.Actor, totalAmount decimal.Decimal) (*domain.EscrowAccount, error) {
	logger := contextkeys.LoggerFromContext(ctx)
	ucLogger := logger.WithFields(port.Fields{
		"use_case":    "CreateEscrowAccount",
		"contract_id": contractID.String(),
		"caller_id":   caller.ID.String(),
	})

	ucLogger.Info("Use case started: opening escrow account", nil)

	if totalAmount.Sign() <= 0 {
		ucLogger.Warn("Escrow account rejected: non-positive total", nil)
		return nil, domain.ErrInvalidAmount
	}

	now := uc.nowFn()
	var account *domain.EscrowAccount

	err := uc.ledger.WithinTx(ctx, func(tx port.LedgerTx) error {
		contract, err := tx.GetContract(ctx, contractID)
		if err != nil {
			return err
		}
		if !caller.Admin && !contract.Party(caller.ID) {
			return domain.ErrUnauthorized
		}

		account = &domain.EscrowAccount{
			ID:              uuid.New(),
			ContractID:      contractID,
			TotalAmount:     totalAmount,
			DepositedAmount: decimal.Zero,
			ReleasedAmount:  decimal.Zero,
			FeeAmount:       decimal.Zero,
			Status:          domain.EscrowPending,
			CreatedAt:       now,
			UpdatedAt:       now,
		}
		return tx.InsertEscrowAccount(ctx, account)
	})
	if err != nil {
		ucLogger.Warn("Create escrow account transaction failed", port.Fields{"error": err.Error()})
		return nil, err
	}

	ucLogger.Info("Use case finished: escrow account opened", port.Fields{"escrow_account_id": account.ID.String()})

	recordAudit(ctx, uc.audit, port.AuditEvent{
		ActorID:   caller.ID,
		Action:    "create",
		Entity:    "escrow_accounts",
		RecordID:  account.ID,
		NewValues: map[string]interface{}{"status": string(account.Status), "total_amount": totalAmount.String()},
	})

	return account, nil
}
