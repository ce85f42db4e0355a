package postgres_adapter

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/shopspring/decimal"

	"github.com/James-Mirambel/Terratrade-sub001/internal/core/domain"
)

const offerColumns = `id, property_id, buyer_id, seller_id, amount, status, terms, expires_at, counter_amount, counter_message, created_at, updated_at`

// offerTermsDoc - JSONB-представление условий предложения.
type offerTermsDoc struct {
	Message        string          `json:"message,omitempty"`
	EarnestMoney   decimal.Decimal `json:"earnest_money"`
	ClosingDate    *time.Time      `json:"closing_date,omitempty"`
	FinancingDays  int             `json:"financing_days,omitempty"`
	InspectionDays int             `json:"inspection_days,omitempty"`
	AppraisalDays  int             `json:"appraisal_days,omitempty"`
	Inclusions     []string        `json:"inclusions,omitempty"`
	Exclusions     []string        `json:"exclusions,omitempty"`
	SpecialTerms   string          `json:"special_terms,omitempty"`
}

func marshalOfferTerms(t domain.OfferTerms) ([]byte, error) {
	doc := offerTermsDoc(t)
	raw, err := json.Marshal(doc)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal offer terms: %w", err)
	}
	return raw, nil
}

func unmarshalOfferTerms(raw []byte) (domain.OfferTerms, error) {
	var doc offerTermsDoc
	if err := json.Unmarshal(raw, &doc); err != nil {
		return domain.OfferTerms{}, fmt.Errorf("failed to unmarshal offer terms: %w", err)
	}
	return domain.OfferTerms(doc), nil
}

func scanOffer(row pgx.Row) (*domain.Offer, error) {
	var o domain.Offer
	var terms []byte
	err := row.Scan(
		&o.ID, &o.PropertyID, &o.BuyerID, &o.SellerID,
		&o.Amount, &o.Status, &terms, &o.ExpiresAt,
		&o.CounterAmount, &o.CounterMessage,
		&o.CreatedAt, &o.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrOfferNotFound
		}
		return nil, fmt.Errorf("failed to scan offer: %w", err)
	}
	o.Terms, err = unmarshalOfferTerms(terms)
	if err != nil {
		return nil, err
	}
	return &o, nil
}

// InsertOffer возвращает domain.ErrDuplicatePendingOffer при нарушении
// частичного уникального индекса (property_id, buyer_id) по живым статусам.
func (t *ledgerTx) InsertOffer(ctx context.Context, o *domain.Offer) error {
	terms, err := marshalOfferTerms(o.Terms)
	if err != nil {
		return err
	}

	query := `INSERT INTO offers (` + offerColumns + `)
	          VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`

	_, err = t.q.Exec(ctx, query,
		o.ID, o.PropertyID, o.BuyerID, o.SellerID,
		o.Amount, o.Status, terms, o.ExpiresAt,
		o.CounterAmount, o.CounterMessage,
		o.CreatedAt, o.UpdatedAt,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" { // unique_violation
			return domain.ErrDuplicatePendingOffer
		}
		return fmt.Errorf("failed to insert offer: %w", err)
	}
	return nil
}

func (t *ledgerTx) GetOffer(ctx context.Context, id uuid.UUID) (*domain.Offer, error) {
	query := `SELECT ` + offerColumns + ` FROM offers WHERE id = $1`
	return scanOffer(t.q.QueryRow(ctx, query, id))
}

func (t *ledgerTx) GetOfferForUpdate(ctx context.Context, id uuid.UUID) (*domain.Offer, error) {
	query := `SELECT ` + offerColumns + ` FROM offers WHERE id = $1 FOR UPDATE`
	return scanOffer(t.q.QueryRow(ctx, query, id))
}

func (t *ledgerTx) UpdateOffer(ctx context.Context, o *domain.Offer) error {
	terms, err := marshalOfferTerms(o.Terms)
	if err != nil {
		return err
	}

	query := `UPDATE offers
	          SET amount = $2, status = $3, terms = $4, expires_at = $5,
	              counter_amount = $6, counter_message = $7, updated_at = $8
	          WHERE id = $1`

	cmdTag, err := t.q.Exec(ctx, query,
		o.ID, o.Amount, o.Status, terms, o.ExpiresAt,
		o.CounterAmount, o.CounterMessage, o.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to update offer: %w", err)
	}
	if cmdTag.RowsAffected() == 0 {
		return domain.ErrOfferNotFound
	}
	return nil
}

// RejectLiveSiblings отклоняет и pending-, и countered-предложения:
// выставленное продавцом встречное предложение тоже теряет смысл
// после продажи объявления.
func (t *ledgerTx) RejectLiveSiblings(ctx context.Context, propertyID, acceptedOfferID uuid.UUID) (int64, error) {
	query := `UPDATE offers
	          SET status = 'rejected', updated_at = NOW()
	          WHERE property_id = $1 AND id <> $2 AND status IN ('pending', 'countered')`

	cmdTag, err := t.q.Exec(ctx, query, propertyID, acceptedOfferID)
	if err != nil {
		return 0, fmt.Errorf("failed to reject sibling offers: %w", err)
	}
	return cmdTag.RowsAffected(), nil
}

func (t *ledgerTx) HasLiveOffer(ctx context.Context, propertyID, buyerID uuid.UUID) (bool, error) {
	query := `SELECT EXISTS (
	            SELECT 1 FROM offers
	            WHERE property_id = $1 AND buyer_id = $2 AND status IN ('pending', 'countered'))`

	var exists bool
	if err := t.q.QueryRow(ctx, query, propertyID, buyerID).Scan(&exists); err != nil {
		return false, fmt.Errorf("failed to check live offer: %w", err)
	}
	return exists, nil
}

func (t *ledgerTx) listOffers(ctx context.Context, column string, id uuid.UUID) ([]domain.Offer, error) {
	query := fmt.Sprintf(`SELECT %s FROM offers WHERE %s = $1 ORDER BY created_at DESC`, offerColumns, column)

	rows, err := t.q.Query(ctx, query, id)
	if err != nil {
		return nil, fmt.Errorf("failed to query offers: %w", err)
	}
	defer rows.Close()

	var offers []domain.Offer
	for rows.Next() {
		offer, err := scanOffer(rows)
		if err != nil {
			return nil, err
		}
		offers = append(offers, *offer)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error during offers iteration: %w", err)
	}
	return offers, nil
}
