package rest

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/James-Mirambel/Terratrade-sub001/internal/core/domain"
)

// --- Запросы ---

type SubmitPropertyRequest struct {
	Title        string     `json:"title"`
	Price        string     `json:"price"`
	AreaSqm      float64    `json:"area_sqm"`
	ListingType  string     `json:"listing_type"`
	AuctionStart *time.Time `json:"auction_start,omitempty"`
	AuctionEnd   *time.Time `json:"auction_end,omitempty"`
}

type ModeratePropertyRequest struct {
	Action string `json:"action"` // approve | reject
}

type OfferTermsDTO struct {
	Message        string     `json:"message,omitempty"`
	EarnestMoney   string     `json:"earnest_money,omitempty"`
	ClosingDate    *time.Time `json:"closing_date,omitempty"`
	FinancingDays  int        `json:"financing_days,omitempty"`
	InspectionDays int        `json:"inspection_days,omitempty"`
	AppraisalDays  int        `json:"appraisal_days,omitempty"`
	Inclusions     []string   `json:"inclusions,omitempty"`
	Exclusions     []string   `json:"exclusions,omitempty"`
	SpecialTerms   string     `json:"special_terms,omitempty"`
}

type CreateOfferRequest struct {
	PropertyID string        `json:"property_id"`
	Amount     string        `json:"amount"`
	Terms      OfferTermsDTO `json:"terms"`
}

type RespondToOfferRequest struct {
	Action string `json:"action"` // accept | reject
}

type CounterOfferRequest struct {
	CounterAmount string `json:"counter_amount"`
	Message       string `json:"message,omitempty"`
}

type CreateEscrowAccountRequest struct {
	TotalAmount string `json:"total_amount"`
}

type EscrowMovementRequest struct {
	Amount      string `json:"amount"`
	Description string `json:"description,omitempty"`
}

type DisputeRequest struct {
	Reason string `json:"reason"`
}

// --- Ответы ---

type PropertyResponse struct {
	ID           uuid.UUID  `json:"id"`
	OwnerID      uuid.UUID  `json:"owner_id"`
	Title        string     `json:"title"`
	Price        string     `json:"price"`
	AreaSqm      float64    `json:"area_sqm"`
	Status       string     `json:"status"`
	ListingType  string     `json:"listing_type"`
	AuctionStart *time.Time `json:"auction_start,omitempty"`
	AuctionEnd   *time.Time `json:"auction_end,omitempty"`
	CreatedAt    time.Time  `json:"created_at"`
}

type OfferResponse struct {
	ID             uuid.UUID     `json:"id"`
	PropertyID     uuid.UUID     `json:"property_id"`
	BuyerID        uuid.UUID     `json:"buyer_id"`
	SellerID       uuid.UUID     `json:"seller_id"`
	Amount         string        `json:"amount"`
	Status         string        `json:"status"`
	Terms          OfferTermsDTO `json:"terms"`
	ExpiresAt      time.Time     `json:"expires_at"`
	CounterAmount  *string       `json:"counter_amount,omitempty"`
	CounterMessage *string       `json:"counter_message,omitempty"`
	CreatedAt      time.Time     `json:"created_at"`
	UpdatedAt      time.Time     `json:"updated_at"`
}

type ContractResponse struct {
	ID           uuid.UUID  `json:"id"`
	PropertyID   uuid.UUID  `json:"property_id"`
	BuyerID      uuid.UUID  `json:"buyer_id"`
	SellerID     uuid.UUID  `json:"seller_id"`
	OfferID      uuid.UUID  `json:"offer_id"`
	Amount       string     `json:"amount"`
	EarnestMoney string     `json:"earnest_money"`
	ClosingDate  *time.Time `json:"closing_date,omitempty"`
	Status       string     `json:"status"`
	CreatedAt    time.Time  `json:"created_at"`
}

type EscrowAccountResponse struct {
	ID              uuid.UUID `json:"id"`
	ContractID      uuid.UUID `json:"contract_id"`
	TotalAmount     string    `json:"total_amount"`
	DepositedAmount string    `json:"deposited_amount"`
	ReleasedAmount  string    `json:"released_amount"`
	FeeAmount       string    `json:"fee_amount"`
	Status          string    `json:"status"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

type EscrowTransactionResponse struct {
	ID           uuid.UUID `json:"id"`
	Type         string    `json:"type"`
	Amount       string    `json:"amount"`
	Description  string    `json:"description,omitempty"`
	AuthorizedBy uuid.UUID `json:"authorized_by"`
	Status       string    `json:"status"`
	Reference    string    `json:"reference"`
	CreatedAt    time.Time `json:"created_at"`
}

type EscrowStatementResponse struct {
	Account      EscrowAccountResponse       `json:"account"`
	Transactions []EscrowTransactionResponse `json:"transactions"`
}

type DisputeResponse struct {
	ID              uuid.UUID `json:"id"`
	EscrowAccountID uuid.UUID `json:"escrow_account_id"`
	RaisedBy        uuid.UUID `json:"raised_by"`
	Reason          string    `json:"reason"`
	Status          string    `json:"status"`
	CreatedAt       time.Time `json:"created_at"`
}

// --- Преобразования ---

func (d OfferTermsDTO) toDomain() (domain.OfferTerms, error) {
	earnest := decimal.Zero
	if d.EarnestMoney != "" {
		var err error
		earnest, err = decimal.NewFromString(d.EarnestMoney)
		if err != nil {
			return domain.OfferTerms{}, fmt.Errorf("invalid earnest_money: %w", err)
		}
	}
	return domain.OfferTerms{
		Message:        d.Message,
		EarnestMoney:   earnest,
		ClosingDate:    d.ClosingDate,
		FinancingDays:  d.FinancingDays,
		InspectionDays: d.InspectionDays,
		AppraisalDays:  d.AppraisalDays,
		Inclusions:     d.Inclusions,
		Exclusions:     d.Exclusions,
		SpecialTerms:   d.SpecialTerms,
	}, nil
}

func termsToDTO(t domain.OfferTerms) OfferTermsDTO {
	return OfferTermsDTO{
		Message:        t.Message,
		EarnestMoney:   t.EarnestMoney.String(),
		ClosingDate:    t.ClosingDate,
		FinancingDays:  t.FinancingDays,
		InspectionDays: t.InspectionDays,
		AppraisalDays:  t.AppraisalDays,
		Inclusions:     t.Inclusions,
		Exclusions:     t.Exclusions,
		SpecialTerms:   t.SpecialTerms,
	}
}

func propertyToResponse(p *domain.Property) PropertyResponse {
	return PropertyResponse{
		ID:           p.ID,
		OwnerID:      p.OwnerID,
		Title:        p.Title,
		Price:        p.Price.String(),
		AreaSqm:      p.AreaSqm,
		Status:       string(p.Status),
		ListingType:  string(p.ListingType),
		AuctionStart: p.AuctionStart,
		AuctionEnd:   p.AuctionEnd,
		CreatedAt:    p.CreatedAt,
	}
}

func offerToResponse(o *domain.Offer) OfferResponse {
	resp := OfferResponse{
		ID:             o.ID,
		PropertyID:     o.PropertyID,
		BuyerID:        o.BuyerID,
		SellerID:       o.SellerID,
		Amount:         o.Amount.String(),
		Status:         string(o.Status),
		Terms:          termsToDTO(o.Terms),
		ExpiresAt:      o.ExpiresAt,
		CounterMessage: o.CounterMessage,
		CreatedAt:      o.CreatedAt,
		UpdatedAt:      o.UpdatedAt,
	}
	if o.CounterAmount != nil {
		s := o.CounterAmount.String()
		resp.CounterAmount = &s
	}
	return resp
}

func contractToResponse(c *domain.Contract) ContractResponse {
	return ContractResponse{
		ID:           c.ID,
		PropertyID:   c.PropertyID,
		BuyerID:      c.BuyerID,
		SellerID:     c.SellerID,
		OfferID:      c.OfferID,
		Amount:       c.Amount.String(),
		EarnestMoney: c.EarnestMoney.String(),
		ClosingDate:  c.ClosingDate,
		Status:       string(c.Status),
		CreatedAt:    c.CreatedAt,
	}
}

func escrowAccountToResponse(a *domain.EscrowAccount) EscrowAccountResponse {
	return EscrowAccountResponse{
		ID:              a.ID,
		ContractID:      a.ContractID,
		TotalAmount:     a.TotalAmount.String(),
		DepositedAmount: a.DepositedAmount.String(),
		ReleasedAmount:  a.ReleasedAmount.String(),
		FeeAmount:       a.FeeAmount.String(),
		Status:          string(a.Status),
		CreatedAt:       a.CreatedAt,
		UpdatedAt:       a.UpdatedAt,
	}
}

func escrowTransactionToResponse(t domain.EscrowTransaction) EscrowTransactionResponse {
	return EscrowTransactionResponse{
		ID:           t.ID,
		Type:         string(t.Type),
		Amount:       t.Amount.String(),
		Description:  t.Description,
		AuthorizedBy: t.AuthorizedBy,
		Status:       t.Status,
		Reference:    t.Reference,
		CreatedAt:    t.CreatedAt,
	}
}

func disputeToResponse(d *domain.Dispute) DisputeResponse {
	return DisputeResponse{
		ID:              d.ID,
		EscrowAccountID: d.EscrowAccountID,
		RaisedBy:        d.RaisedBy,
		Reason:          d.Reason,
		Status:          string(d.Status),
		CreatedAt:       d.CreatedAt,
	}
}

func parseRespondAction(s string) (domain.RespondAction, error) {
	switch s {
	case "accept":
		return domain.RespondAccept, nil
	case "reject":
		return domain.RespondReject, nil
	default:
		return 0, fmt.Errorf("unknown action %q, expected accept or reject", s)
	}
}

func parseModerationAction(s string) (domain.ModerationAction, error) {
	switch s {
	case "approve":
		return domain.ModerationApprove, nil
	case "reject":
		return domain.ModerationReject, nil
	default:
		return 0, fmt.Errorf("unknown action %q, expected approve or reject", s)
	}
}
