package usecase

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/James-Mirambel/Terratrade-sub001/internal/contextkeys"
	"github.com/James-Mirambel/Terratrade-sub001/internal/core/domain"
	"github.com/James-Mirambel/Terratrade-sub001/internal/core/port"
)

// DepositFundsUseCase - внесение средств на эскроу-счет.
// Переполнение цели отклоняется, а не усекается; статус счета - чистая
// функция сумм после инкремента.
type DepositFundsUseCase struct {
	ledger   port.LedgerStorePort
	notifier port.NotificationPublisherPort
	audit    port.AuditSinkPort

	nowFn func() time.Time
}

// NewDepositFundsUseCase - конструктор.
func NewDepositFundsUseCase(ledger port.LedgerStorePort, notifier port.NotificationPublisherPort, audit port.AuditSinkPort) *DepositFundsUseCase {
	return &DepositFundsUseCase{
		ledger:   ledger,
		notifier: notifier,
		audit:    audit,
		nowFn:    time.Now,
	}
}

// SetNowFunc подменяет источник времени (для детерминированных тестов).
func (uc *DepositFundsUseCase) SetNowFunc(now func() time.Time) {
	if now == nil {
		uc.nowFn = time.Now
		return
	}
	uc.nowFn = now
}

func (uc *DepositFundsUseCase) Execute(ctx context.Context, escrowAccountID uuid.UUID, caller domain.Actor, amount decimal.Decimal, description string) (*domain.EscrowAccount, error) {
	logger := contextkeys.LoggerFromContext(ctx)
	ucLogger := logger.WithFields(port.Fields{
		"use_case":          "DepositFunds",
		"escrow_account_id": escrowAccountID.String(),
		"caller_id":         caller.ID.String(),
	})

	ucLogger.Info("Use case started: depositing escrow funds", nil)

	if amount.Sign() <= 0 {
		ucLogger.Warn("Deposit rejected: non-positive amount", nil)
		return nil, domain.ErrInvalidAmount
	}

	now := uc.nowFn()
	var account *domain.EscrowAccount
	var counterparty uuid.UUID

	err := uc.ledger.WithinTx(ctx, func(tx port.LedgerTx) error {
		var err error
		account, err = tx.GetEscrowAccountForUpdate(ctx, escrowAccountID)
		if err != nil {
			return err
		}

		contract, err := tx.GetContract(ctx, account.ContractID)
		if err != nil {
			return err
		}
		if !caller.Admin && !contract.Party(caller.ID) {
			return domain.ErrUnauthorized
		}
		// Спорный счет заморожен, завершенный закрыт
		if !account.Settleable() {
			return domain.ErrInvalidState
		}
		if account.DepositedAmount.Add(amount).Cmp(account.TotalAmount) > 0 {
			return domain.ErrDepositExceedsTotal
		}

		account.DepositedAmount = account.DepositedAmount.Add(amount)
		account.Status = account.DeriveStatus()
		account.UpdatedAt = now

		// Охраняемый инкремент: условие повторяется в самом UPDATE, ноль
		// затронутых строк означает проигранную гонку, а не тихое усечение.
		ok, err := tx.ApplyEscrowDeposit(ctx, escrowAccountID, amount, account.Status)
		if err != nil {
			return err
		}
		if !ok {
			return domain.ErrDepositExceedsTotal
		}

		txID := uuid.New()
		entry := &domain.EscrowTransaction{
			ID:              txID,
			EscrowAccountID: escrowAccountID,
			Type:            domain.TransactionDeposit,
			Amount:          amount,
			Description:     description,
			AuthorizedBy:    caller.ID,
			Status:          domain.TransactionCompleted,
			Reference:       domain.NewTransactionReference(domain.TransactionDeposit, txID),
			CreatedAt:       now,
		}
		if err := tx.InsertEscrowTransaction(ctx, entry); err != nil {
			return err
		}

		if caller.ID == contract.BuyerID {
			counterparty = contract.SellerID
		} else {
			counterparty = contract.BuyerID
		}
		return nil
	})
	if err != nil {
		ucLogger.Warn("Deposit transaction failed", port.Fields{"error": err.Error()})
		return nil, err
	}

	ucLogger.Info("Use case finished: funds deposited", port.Fields{
		"deposited_amount": account.DepositedAmount.String(),
		"status":           string(account.Status),
	})

	notify(ctx, uc.notifier, port.NotificationEvent{
		UserID:  counterparty,
		Type:    "escrow_deposit",
		Title:   "Escrow deposit received",
		Message: fmt.Sprintf("An escrow deposit of %s was recorded.", amount.StringFixed(2)),
		Data: map[string]interface{}{
			"escrow_account_id": escrowAccountID.String(),
			"status":            string(account.Status),
		},
	})
	recordAudit(ctx, uc.audit, port.AuditEvent{
		ActorID:   caller.ID,
		Action:    "deposit",
		Entity:    "escrow_accounts",
		RecordID:  escrowAccountID,
		NewValues: map[string]interface{}{"deposited_amount": account.DepositedAmount.String(), "status": string(account.Status)},
	})

	return account, nil
}
