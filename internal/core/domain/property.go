package domain

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// PropertyStatus - статус объявления о продаже участка
type PropertyStatus string

const (
	PropertyPending   PropertyStatus = "pending"
	PropertyActive    PropertyStatus = "active"
	PropertySold      PropertyStatus = "sold"
	PropertyRejected  PropertyStatus = "rejected"
	PropertySuspended PropertyStatus = "suspended"
	PropertyWithdrawn PropertyStatus = "withdrawn"
	PropertyDeleted   PropertyStatus = "deleted"
)

// ListingType - способ продажи: прямая продажа или аукцион
type ListingType string

const (
	ListingSale    ListingType = "sale"
	ListingAuction ListingType = "auction"
)

// Property - объявление о продаже земельного участка
type Property struct {
	ID      uuid.UUID
	OwnerID uuid.UUID

	Title       string
	Price       decimal.Decimal
	AreaSqm     float64
	Status      PropertyStatus
	ListingType ListingType

	// Окно аукциона заполняется только для listing_type = auction
	AuctionStart *time.Time
	AuctionEnd   *time.Time

	CreatedAt time.Time
	UpdatedAt time.Time
}

// Validate проверяет инвариант: условия продажи и аукциона взаимоисключающие.
func (p *Property) Validate() error {
	if p.Title == "" {
		return fmt.Errorf("property title is required")
	}
	if p.Price.Sign() <= 0 {
		return fmt.Errorf("property price must be positive: %w", ErrInvalidAmount)
	}
	if p.AreaSqm <= 0 {
		return fmt.Errorf("property area must be positive: %w", ErrInvalidAmount)
	}

	switch p.ListingType {
	case ListingSale:
		if p.AuctionStart != nil || p.AuctionEnd != nil {
			return fmt.Errorf("sale listing cannot carry an auction window")
		}
	case ListingAuction:
		if p.AuctionStart == nil || p.AuctionEnd == nil {
			return fmt.Errorf("auction listing requires start and end of the auction window")
		}
		if !p.AuctionEnd.After(*p.AuctionStart) {
			return fmt.Errorf("auction window end must be after its start")
		}
	default:
		return fmt.Errorf("unknown listing type: %s", p.ListingType)
	}

	return nil
}

// AcceptsOffers сообщает, можно ли сейчас подавать предложения по объявлению.
func (p *Property) AcceptsOffers() bool {
	return p.Status == PropertyActive
}

// ModerationAction - решение модератора по объявлению в статусе pending
type ModerationAction int

const (
	ModerationApprove ModerationAction = iota + 1
	ModerationReject
)

// Valid сообщает, входит ли значение в закрытый набор решений.
func (a ModerationAction) Valid() bool {
	switch a {
	case ModerationApprove, ModerationReject:
		return true
	default:
		return false
	}
}
