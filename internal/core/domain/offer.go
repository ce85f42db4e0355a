package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// OfferStatus - статус предложения покупателя
type OfferStatus string

const (
	OfferPending   OfferStatus = "pending"
	OfferAccepted  OfferStatus = "accepted"
	OfferRejected  OfferStatus = "rejected"
	OfferCountered OfferStatus = "countered"
	OfferWithdrawn OfferStatus = "withdrawn"
)

// Terminal сообщает, является ли статус конечным.
// Из конечного статуса никакие переходы больше невозможны.
func (s OfferStatus) Terminal() bool {
	switch s {
	case OfferAccepted, OfferRejected, OfferWithdrawn:
		return true
	default:
		return false
	}
}

// Offer - предложение покупателя по конкретному объявлению.
// seller_id денормализован из владельца объявления в момент создания.
type Offer struct {
	ID         uuid.UUID
	PropertyID uuid.UUID
	BuyerID    uuid.UUID
	SellerID   uuid.UUID

	Amount decimal.Decimal
	Status OfferStatus
	Terms  OfferTerms

	ExpiresAt time.Time

	// Поля встречного предложения, заполняются при статусе countered
	CounterAmount  *decimal.Decimal
	CounterMessage *string

	CreatedAt time.Time
	UpdatedAt time.Time
}

// Live - предложение еще в игре (по нему возможны дальнейшие действия).
func (o *Offer) Live() bool {
	return o.Status == OfferPending || o.Status == OfferCountered
}

// ExpiredAt проверяет истечение срока на момент принятия решения.
// Действия возможны только пока expires_at строго в будущем, момент
// дедлайна уже считается истечением. Статус при этом не переписывается:
// истечение - инвариант по времени, он проверяется лениво в момент
// действия, а не фоновой зачисткой.
func (o *Offer) ExpiredAt(now time.Time) bool {
	return !o.ExpiresAt.After(now)
}

// RespondAction - решение стороны по предложению (закрытый набор значений,
// а не сравнение строк).
type RespondAction int

const (
	RespondAccept RespondAction = iota + 1
	RespondReject
)

// Valid сообщает, входит ли значение в закрытый набор действий.
func (a RespondAction) Valid() bool {
	switch a {
	case RespondAccept, RespondReject:
		return true
	default:
		return false
	}
}
