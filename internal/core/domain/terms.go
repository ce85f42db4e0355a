package domain

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// OfferTerms - структурированные условия предложения.
// Раньше такие вещи хранились бы одним JSON-блобом; здесь это явный тип,
// который валидируется на границе и по полям копируется в контракт.
type OfferTerms struct {
	Message      string
	EarnestMoney decimal.Decimal
	ClosingDate  *time.Time

	// Контингенции в днях, 0 - без контингенции
	FinancingDays  int
	InspectionDays int
	AppraisalDays  int

	Inclusions   []string
	Exclusions   []string
	SpecialTerms string
}

// Validate проверяет числовые границы условий.
func (t *OfferTerms) Validate() error {
	if t.EarnestMoney.Sign() < 0 {
		return fmt.Errorf("earnest money cannot be negative: %w", ErrInvalidAmount)
	}
	if t.FinancingDays < 0 || t.InspectionDays < 0 || t.AppraisalDays < 0 {
		return fmt.Errorf("contingency day counts cannot be negative: %w", ErrInvalidAmount)
	}
	return nil
}

// ContractTerms - неизменяемый снимок согласованных условий на момент
// принятия предложения.
type ContractTerms struct {
	FinancingDays  int
	InspectionDays int
	AppraisalDays  int

	Inclusions   []string
	Exclusions   []string
	SpecialTerms string
}

// Snapshot переносит согласованные условия из предложения в контракт.
func (t OfferTerms) Snapshot() ContractTerms {
	return ContractTerms{
		FinancingDays:  t.FinancingDays,
		InspectionDays: t.InspectionDays,
		AppraisalDays:  t.AppraisalDays,
		Inclusions:     append([]string(nil), t.Inclusions...),
		Exclusions:     append([]string(nil), t.Exclusions...),
		SpecialTerms:   t.SpecialTerms,
	}
}
