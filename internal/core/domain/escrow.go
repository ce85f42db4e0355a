package domain

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// EscrowStatus - статус эскроу-счета
type EscrowStatus string

const (
	EscrowPending        EscrowStatus = "pending"
	EscrowFunded         EscrowStatus = "funded"
	EscrowPartialRelease EscrowStatus = "partial_release"
	EscrowCompleted      EscrowStatus = "completed"
	EscrowDisputed       EscrowStatus = "disputed"
)

// EscrowAccount - бухгалтерский счет-леджер по одному контракту (1:1).
// Инвариант сумм: 0 <= released <= deposited <= total.
// FeeAmount - накопленные комиссии платформы; это отдельная бухгалтерия,
// она не участвует ни в инварианте, ни в выводе статуса.
type EscrowAccount struct {
	ID         uuid.UUID
	ContractID uuid.UUID

	TotalAmount     decimal.Decimal
	DepositedAmount decimal.Decimal
	ReleasedAmount  decimal.Decimal
	FeeAmount       decimal.Decimal

	Status EscrowStatus

	CreatedAt time.Time
	UpdatedAt time.Time
}

// DeriveStatus - чистая функция статуса от текущих сумм.
// Статус disputed здесь не участвует: он выставляется принудительно
// и замораживает счет до внешнего разрешения спора.
func (a *EscrowAccount) DeriveStatus() EscrowStatus {
	switch {
	case a.DepositedAmount.Sign() > 0 && a.ReleasedAmount.Cmp(a.DepositedAmount) >= 0:
		return EscrowCompleted
	case a.ReleasedAmount.Sign() > 0:
		return EscrowPartialRelease
	case a.DepositedAmount.Cmp(a.TotalAmount) >= 0:
		return EscrowFunded
	default:
		return EscrowPending
	}
}

// Settleable - можно ли проводить по счету обычные операции.
// Спорный счет заморожен; завершенный - закрыт для движений.
func (a *EscrowAccount) Settleable() bool {
	return a.Status != EscrowDisputed && a.Status != EscrowCompleted
}

// Unreleased - сколько внесенных средств еще не выплачено.
func (a *EscrowAccount) Unreleased() decimal.Decimal {
	return a.DepositedAmount.Sub(a.ReleasedAmount)
}

// TransactionType - тип движения по эскроу-счету
type TransactionType string

const (
	TransactionDeposit TransactionType = "deposit"
	TransactionRelease TransactionType = "release"
	TransactionFee     TransactionType = "fee"
)

// TransactionCompleted - единственный статус транзакции в ядре:
// многошаговых транзакций здесь нет, запись либо есть, либо ее нет.
const TransactionCompleted = "completed"

// EscrowTransaction - неизменяемая append-only запись одного движения.
// Записи никогда не обновляются и не удаляются; суммы на счете — это
// инкрементально поддерживаемые суммы по этим записям.
type EscrowTransaction struct {
	ID              uuid.UUID
	EscrowAccountID uuid.UUID

	Type        TransactionType
	Amount      decimal.Decimal
	Description string

	AuthorizedBy uuid.UUID
	Status       string
	Reference    string

	CreatedAt time.Time
}

// NewTransactionReference генерирует отображаемый ключ транзакции,
// например "DEP-1B9F0C2A".
func NewTransactionReference(txType TransactionType, id uuid.UUID) string {
	prefix := strings.ToUpper(string(txType))
	if len(prefix) > 3 {
		prefix = prefix[:3]
	}
	short := strings.ToUpper(strings.ReplaceAll(id.String(), "-", ""))[:8]
	return fmt.Sprintf("%s-%s", prefix, short)
}

// DisputeStatus - статус спора; разрешение споров находится вне ядра.
type DisputeStatus string

const (
	DisputeOpen     DisputeStatus = "open"
	DisputeResolved DisputeStatus = "resolved"
)

// Dispute - запись о споре по эскроу-счету, адресованная администраторам.
type Dispute struct {
	ID              uuid.UUID
	EscrowAccountID uuid.UUID
	RaisedBy        uuid.UUID
	Reason          string
	Status          DisputeStatus
	CreatedAt       time.Time
}
