package postgres_adapter

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/James-Mirambel/Terratrade-sub001/internal/core/domain"
)

const contractColumns = `id, property_id, buyer_id, seller_id, offer_id, amount, earnest_money, terms, closing_date, status, created_at`

// contractTermsDoc - JSONB-снимок согласованных условий.
type contractTermsDoc struct {
	FinancingDays  int      `json:"financing_days,omitempty"`
	InspectionDays int      `json:"inspection_days,omitempty"`
	AppraisalDays  int      `json:"appraisal_days,omitempty"`
	Inclusions     []string `json:"inclusions,omitempty"`
	Exclusions     []string `json:"exclusions,omitempty"`
	SpecialTerms   string   `json:"special_terms,omitempty"`
}

func (t *ledgerTx) InsertContract(ctx context.Context, c *domain.Contract) error {
	terms, err := json.Marshal(contractTermsDoc(c.Terms))
	if err != nil {
		return fmt.Errorf("failed to marshal contract terms: %w", err)
	}

	query := `INSERT INTO contracts (` + contractColumns + `)
	          VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`

	_, err = t.q.Exec(ctx, query,
		c.ID, c.PropertyID, c.BuyerID, c.SellerID, c.OfferID,
		c.Amount, c.EarnestMoney, terms, c.ClosingDate,
		c.Status, c.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert contract: %w", err)
	}
	return nil
}

func (t *ledgerTx) GetContract(ctx context.Context, id uuid.UUID) (*domain.Contract, error) {
	query := `SELECT ` + contractColumns + ` FROM contracts WHERE id = $1`

	var c domain.Contract
	var terms []byte
	err := t.q.QueryRow(ctx, query, id).Scan(
		&c.ID, &c.PropertyID, &c.BuyerID, &c.SellerID, &c.OfferID,
		&c.Amount, &c.EarnestMoney, &terms, &c.ClosingDate,
		&c.Status, &c.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrContractNotFound
		}
		return nil, fmt.Errorf("failed to scan contract: %w", err)
	}

	var doc contractTermsDoc
	if err := json.Unmarshal(terms, &doc); err != nil {
		return nil, fmt.Errorf("failed to unmarshal contract terms: %w", err)
	}
	c.Terms = domain.ContractTerms(doc)
	return &c, nil
}
