package postgres_adapter

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/James-Mirambel/Terratrade-sub001/internal/core/domain"
)

const propertyColumns = `id, owner_id, title, price, area_sqm, status, listing_type, auction_start, auction_end, created_at, updated_at`

func scanProperty(row pgx.Row) (*domain.Property, error) {
	var p domain.Property
	err := row.Scan(
		&p.ID, &p.OwnerID, &p.Title, &p.Price, &p.AreaSqm,
		&p.Status, &p.ListingType, &p.AuctionStart, &p.AuctionEnd,
		&p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrPropertyNotFound
		}
		return nil, fmt.Errorf("failed to scan property: %w", err)
	}
	return &p, nil
}

func (t *ledgerTx) InsertProperty(ctx context.Context, p *domain.Property) error {
	query := `INSERT INTO properties (` + propertyColumns + `)
	          VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`

	_, err := t.q.Exec(ctx, query,
		p.ID, p.OwnerID, p.Title, p.Price, p.AreaSqm,
		p.Status, p.ListingType, p.AuctionStart, p.AuctionEnd,
		p.CreatedAt, p.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert property: %w", err)
	}
	return nil
}

func (t *ledgerTx) GetProperty(ctx context.Context, id uuid.UUID) (*domain.Property, error) {
	query := `SELECT ` + propertyColumns + ` FROM properties WHERE id = $1`
	return scanProperty(t.q.QueryRow(ctx, query, id))
}

// GetPropertyForUpdate блокирует строку объявления на время транзакции.
// Порядок блокировок фиксирован: сначала объявление, потом предложение.
func (t *ledgerTx) GetPropertyForUpdate(ctx context.Context, id uuid.UUID) (*domain.Property, error) {
	query := `SELECT ` + propertyColumns + ` FROM properties WHERE id = $1 FOR UPDATE`
	return scanProperty(t.q.QueryRow(ctx, query, id))
}

func (t *ledgerTx) SetPropertyStatus(ctx context.Context, id uuid.UUID, status domain.PropertyStatus) error {
	query := `UPDATE properties SET status = $2, updated_at = NOW() WHERE id = $1`

	cmdTag, err := t.q.Exec(ctx, query, id, status)
	if err != nil {
		return fmt.Errorf("failed to update property status: %w", err)
	}
	if cmdTag.RowsAffected() == 0 {
		return domain.ErrPropertyNotFound
	}
	return nil
}

func (t *ledgerTx) CountOpenEngagements(ctx context.Context, propertyID uuid.UUID) (int64, error) {
	query := `SELECT
	            (SELECT COUNT(*) FROM offers
	              WHERE property_id = $1 AND status IN ('pending', 'countered'))
	          + (SELECT COUNT(*) FROM contracts
	              WHERE property_id = $1 AND status NOT IN ('completed', 'cancelled'))`

	var count int64
	if err := t.q.QueryRow(ctx, query, propertyID).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count open engagements: %w", err)
	}
	return count, nil
}
