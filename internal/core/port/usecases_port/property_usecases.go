package usecases_port

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/James-Mirambel/Terratrade-sub001/internal/core/domain"
)

// SubmitPropertyInput - данные нового объявления от продавца.
type SubmitPropertyInput struct {
	OwnerID      uuid.UUID
	Title        string
	Price        decimal.Decimal
	AreaSqm      float64
	ListingType  domain.ListingType
	AuctionStart *time.Time
	AuctionEnd   *time.Time
}

// SubmitPropertyUseCasePort - подача объявления (попадает в pending до модерации).
type SubmitPropertyUseCasePort interface {
	Execute(ctx context.Context, input SubmitPropertyInput) (*domain.Property, error)
}

// ModeratePropertyUseCasePort - решение модератора по pending-объявлению.
type ModeratePropertyUseCasePort interface {
	Execute(ctx context.Context, propertyID uuid.UUID, admin domain.Actor, action domain.ModerationAction) (*domain.Property, error)
}

// DeletePropertyUseCasePort - мягкое удаление объявления владельцем.
// Блокируется, пока по объявлению есть живые предложения или контракты.
type DeletePropertyUseCasePort interface {
	Execute(ctx context.Context, propertyID, ownerID uuid.UUID) error
}
