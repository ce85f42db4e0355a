package postgres_adapter

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/James-Mirambel/Terratrade-sub001/internal/contextkeys"
	"github.com/James-Mirambel/Terratrade-sub001/internal/core/domain"
	"github.com/James-Mirambel/Terratrade-sub001/internal/core/port"
)

// querier - общий срез pgxpool.Pool и pgx.Tx, чтобы чтения переиспользовали
// один и тот же код сканирования внутри и вне транзакций.
type querier interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

// PostgresLedgerStore - реализация порта леджера для PostgreSQL.
type PostgresLedgerStore struct {
	pool *pgxpool.Pool
}

// NewPostgresLedgerStore - конструктор.
func NewPostgresLedgerStore(pool *pgxpool.Pool) (*PostgresLedgerStore, error) {
	if pool == nil {
		return nil, fmt.Errorf("pgxpool.Pool cannot be nil")
	}
	return &PostgresLedgerStore{pool: pool}, nil
}

// WithinTx выполняет fn в одной транзакции: ошибка откатывает все
// изменения, nil коммитит их разом.
func (s *PostgresLedgerStore) WithinTx(ctx context.Context, fn func(tx port.LedgerTx) error) error {
	logger := contextkeys.LoggerFromContext(ctx)

	pgTx, err := s.pool.Begin(ctx)
	if err != nil {
		logger.Error("Failed to begin ledger transaction", err, nil)
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer pgTx.Rollback(ctx)

	if err := fn(&ledgerTx{q: pgTx}); err != nil {
		return err
	}

	if err := pgTx.Commit(ctx); err != nil {
		logger.Error("Failed to commit ledger transaction", err, nil)
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// Чтения вне транзакций идут через те же методы ledgerTx поверх пула.

func (s *PostgresLedgerStore) GetProperty(ctx context.Context, id uuid.UUID) (*domain.Property, error) {
	return (&ledgerTx{q: s.pool}).GetProperty(ctx, id)
}

func (s *PostgresLedgerStore) GetOffer(ctx context.Context, id uuid.UUID) (*domain.Offer, error) {
	return (&ledgerTx{q: s.pool}).GetOffer(ctx, id)
}

func (s *PostgresLedgerStore) GetContract(ctx context.Context, id uuid.UUID) (*domain.Contract, error) {
	return (&ledgerTx{q: s.pool}).GetContract(ctx, id)
}

func (s *PostgresLedgerStore) GetEscrowAccount(ctx context.Context, id uuid.UUID) (*domain.EscrowAccount, error) {
	return (&ledgerTx{q: s.pool}).getEscrowAccount(ctx, id, "")
}

func (s *PostgresLedgerStore) ListOffersByProperty(ctx context.Context, propertyID uuid.UUID) ([]domain.Offer, error) {
	return (&ledgerTx{q: s.pool}).listOffers(ctx, "property_id", propertyID)
}

func (s *PostgresLedgerStore) ListOffersByBuyer(ctx context.Context, buyerID uuid.UUID) ([]domain.Offer, error) {
	return (&ledgerTx{q: s.pool}).listOffers(ctx, "buyer_id", buyerID)
}

func (s *PostgresLedgerStore) ListEscrowTransactions(ctx context.Context, escrowAccountID uuid.UUID) ([]domain.EscrowTransaction, error) {
	return (&ledgerTx{q: s.pool}).listEscrowTransactions(ctx, escrowAccountID)
}

// ledgerTx - операции одной транзакции леджера.
type ledgerTx struct {
	q querier
}
