package usecase

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/James-Mirambel/Terratrade-sub001/internal/contextkeys"
	"github.com/James-Mirambel/Terratrade-sub001/internal/core/domain"
	"github.com/James-Mirambel/Terratrade-sub001/internal/core/port"
)

// DisputeEscrowUseCase - открытие спора по эскроу-счету.
// Спор поднимает только сторона контракта; счет замораживается до
// внешнего разрешения, новые депозиты и выплаты отклоняются.
type DisputeEscrowUseCase struct {
	ledger   port.LedgerStorePort
	notifier port.NotificationPublisherPort
	audit    port.AuditSinkPort

	nowFn func() time.Time
}

// NewDisputeEscrowUseCase - конструктор.
func NewDisputeEscrowUseCase(ledger port.LedgerStorePort, notifier port.NotificationPublisherPort, audit port.AuditSinkPort) *DisputeEscrowUseCase {
	return &DisputeEscrowUseCase{
		ledger:   ledger,
		notifier: notifier,
		audit:    audit,
		nowFn:    time.Now,
	}
}

// SetNowFunc подменяет источник времени (для детерминированных тестов).
func (uc *DisputeEscrowUseCase) SetNowFunc(now func() time.Time) {
	if now == nil {
		uc.nowFn = time.Now
		return
	}
	uc.nowFn = now
}

func (uc *DisputeEscrowUseCase) Execute(ctx context.Context, escrowAccountID uuid.UUID, caller domain.Actor, reason string) (*domain.Dispute, error) {
	logger := contextkeys.LoggerFromContext(ctx)
	ucLogger := logger.WithFields(port.Fields{
		"use_case":          "DisputeEscrow",
		"escrow_account_id": escrowAccountID.String(),
		"caller_id":         caller.ID.String(),
	})

	ucLogger.Info("Use case started: raising escrow dispute", nil)

	now := uc.nowFn()
	var dispute *domain.Dispute
	var buyerID, sellerID uuid.UUID

	err := uc.ledger.WithinTx(ctx, func(tx port.LedgerTx) error {
		account, err := tx.GetEscrowAccountForUpdate(ctx, escrowAccountID)
		if err != nil {
			return err
		}

		contract, err := tx.GetContract(ctx, account.ContractID)
		if err != nil {
			return err
		}
		// Спор поднимает именно сторона сделки, не администратор
		if !contract.Party(caller.ID) {
			return domain.ErrUnauthorized
		}
		if account.Status == domain.EscrowDisputed || account.Status == domain.EscrowCompleted {
			return domain.ErrInvalidState
		}

		if err := tx.SetEscrowStatus(ctx, escrowAccountID, domain.EscrowDisputed); err != nil {
			return err
		}

		dispute = &domain.Dispute{
			ID:              uuid.New(),
			EscrowAccountID: escrowAccountID,
			RaisedBy:        caller.ID,
			Reason:          reason,
			Status:          domain.DisputeOpen,
			CreatedAt:       now,
		}
		if err := tx.InsertDispute(ctx, dispute); err != nil {
			return err
		}

		buyerID, sellerID = contract.BuyerID, contract.SellerID
		return nil
	})
	if err != nil {
		ucLogger.Warn("Dispute transaction failed", port.Fields{"error": err.Error()})
		return nil, err
	}

	ucLogger.Info("Use case finished: escrow disputed", port.Fields{"dispute_id": dispute.ID.String()})

	for _, userID := range []uuid.UUID{buyerID, sellerID} {
		notify(ctx, uc.notifier, port.NotificationEvent{
			UserID:  userID,
			Type:    "escrow_dispute",
			Title:   "Escrow account disputed",
			Message: "The escrow account for your contract has been placed in dispute. All operations are frozen.",
			Data: map[string]interface{}{
				"escrow_account_id": escrowAccountID.String(),
				"dispute_id":        dispute.ID.String(),
			},
		})
	}
	recordAudit(ctx, uc.audit, port.AuditEvent{
		ActorID:   caller.ID,
		Action:    "dispute",
		Entity:    "escrow_accounts",
		RecordID:  escrowAccountID,
		NewValues: map[string]interface{}{"status": string(domain.EscrowDisputed), "reason": reason},
	})

	return dispute, nil
}
