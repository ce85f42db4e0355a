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

var hundred = decimal.NewFromInt(100)

// ReleaseFundsUseCase - выплата средств с эскроу-счета продавцу.
// Комиссия платформы рассчитывается в момент выплаты и ведется отдельной
// суммой на счете: она не уменьшает deposited/released и не влияет на статус.
type ReleaseFundsUseCase struct {
	ledger   port.LedgerStorePort
	notifier port.NotificationPublisherPort
	audit    port.AuditSinkPort

	feePercentage decimal.Decimal

	nowFn func() time.Time
}

// NewReleaseFundsUseCase - конструктор. feePercentage - процент комиссии,
// например 2.5 означает 2.5% от суммы выплаты.
func NewReleaseFundsUseCase(ledger port.LedgerStorePort, notifier port.NotificationPublisherPort, audit port.AuditSinkPort, feePercentage decimal.Decimal) *ReleaseFundsUseCase {
	return &ReleaseFundsUseCase{
		ledger:        ledger,
		notifier:      notifier,
		audit:         audit,
		feePercentage: feePercentage,
		nowFn:         time.Now,
	}
}

// SetNowFunc подменяет источник времени (для детерминированных тестов).
func (uc *ReleaseFundsUseCase) SetNowFunc(now func() time.Time) {
	if now == nil {
		uc.nowFn = time.Now
		return
	}
	uc.nowFn = now
}

func (uc *ReleaseFundsUseCase) Execute(ctx context.Context, escrowAccountID uuid.UUID, caller domain.Actor, amount decimal.Decimal, description string) (*domain.EscrowAccount, error) {
	logger := contextkeys.LoggerFromContext(ctx)
	ucLogger := logger.WithFields(port.Fields{
		"use_case":          "ReleaseFunds",
		"escrow_account_id": escrowAccountID.String(),
		"caller_id":         caller.ID.String(),
	})

	ucLogger.Info("Use case started: releasing escrow funds", nil)

	if amount.Sign() <= 0 {
		ucLogger.Warn("Release rejected: non-positive amount", nil)
		return nil, domain.ErrInvalidAmount
	}

	now := uc.nowFn()
	var account *domain.EscrowAccount
	var fee decimal.Decimal
	var seller uuid.UUID

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
		if !account.Settleable() {
			return domain.ErrInvalidState
		}
		if amount.Cmp(account.Unreleased()) > 0 {
			return domain.ErrInsufficientFunds
		}

		fee = amount.Mul(uc.feePercentage).Div(hundred).Round(2)

		account.ReleasedAmount = account.ReleasedAmount.Add(amount)
		account.FeeAmount = account.FeeAmount.Add(fee)
		account.Status = account.DeriveStatus()
		account.UpdatedAt = now

		ok, err := tx.ApplyEscrowRelease(ctx, escrowAccountID, amount, fee, account.Status)
		if err != nil {
			return err
		}
		if !ok {
			return domain.ErrInsufficientFunds
		}

		relID := uuid.New()
		release := &domain.EscrowTransaction{
			ID:              relID,
			EscrowAccountID: escrowAccountID,
			Type:            domain.TransactionRelease,
			Amount:          amount,
			Description:     description,
			AuthorizedBy:    caller.ID,
			Status:          domain.TransactionCompleted,
			Reference:       domain.NewTransactionReference(domain.TransactionRelease, relID),
			CreatedAt:       now,
		}
		if err := tx.InsertEscrowTransaction(ctx, release); err != nil {
			return err
		}

		if fee.Sign() > 0 {
			feeID := uuid.New()
			feeEntry := &domain.EscrowTransaction{
				ID:              feeID,
				EscrowAccountID: escrowAccountID,
				Type:            domain.TransactionFee,
				Amount:          fee,
				Description:     fmt.Sprintf("Platform fee for release %s", release.Reference),
				AuthorizedBy:    caller.ID,
				Status:          domain.TransactionCompleted,
				Reference:       domain.NewTransactionReference(domain.TransactionFee, feeID),
				CreatedAt:       now,
			}
			if err := tx.InsertEscrowTransaction(ctx, feeEntry); err != nil {
				return err
			}
		}

		seller = contract.SellerID
		return nil
	})
	if err != nil {
		ucLogger.Warn("Release transaction failed", port.Fields{"error": err.Error()})
		return nil, err
	}

	ucLogger.Info("Use case finished: funds released", port.Fields{
		"released_amount": account.ReleasedAmount.String(),
		"fee":             fee.String(),
		"status":          string(account.Status),
	})

	notify(ctx, uc.notifier, port.NotificationEvent{
		UserID:  seller,
		Type:    "escrow_release",
		Title:   "Escrow funds released",
		Message: fmt.Sprintf("A release of %s was recorded on your escrow account.", amount.StringFixed(2)),
		Data: map[string]interface{}{
			"escrow_account_id": escrowAccountID.String(),
			"status":            string(account.Status),
		},
	})
	recordAudit(ctx, uc.audit, port.AuditEvent{
		ActorID:  caller.ID,
		Action:   "release",
		Entity:   "escrow_accounts",
		RecordID: escrowAccountID,
		NewValues: map[string]interface{}{
			"released_amount": account.ReleasedAmount.String(),
			"fee_amount":      account.FeeAmount.String(),
			"status":          string(account.Status),
		},
	})

	return account, nil
}
