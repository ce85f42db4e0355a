package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ContractStatus - статус контракта. Ядро выставляет только draft,
// дальнейший процесс подписания живет в отдельном воркфлоу.
type ContractStatus string

const (
	ContractDraft             ContractStatus = "draft"
	ContractPendingSignatures ContractStatus = "pending_signatures"
	ContractSigned            ContractStatus = "signed"
	ContractCompleted         ContractStatus = "completed"
	ContractCancelled         ContractStatus = "cancelled"
)

// Contract - неизменяемый снимок сделки, создается ровно один раз
// в момент принятия предложения.
type Contract struct {
	ID         uuid.UUID
	PropertyID uuid.UUID
	BuyerID    uuid.UUID
	SellerID   uuid.UUID
	OfferID    uuid.UUID

	Amount       decimal.Decimal
	EarnestMoney decimal.Decimal
	Terms        ContractTerms
	ClosingDate  *time.Time

	Status    ContractStatus
	CreatedAt time.Time
}

// Party сообщает, является ли пользователь стороной контракта.
func (c *Contract) Party(userID uuid.UUID) bool {
	return c.BuyerID == userID || c.SellerID == userID
}
