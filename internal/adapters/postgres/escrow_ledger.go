package postgres_adapter

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/shopspring/decimal"

	"github.com/James-Mirambel/Terratrade-sub001/internal/core/domain"
)

const escrowAccountColumns = `id, contract_id, total_amount, deposited_amount, released_amount, fee_amount, status, created_at, updated_at`

func scanEscrowAccount(row pgx.Row) (*domain.EscrowAccount, error) {
	var a domain.EscrowAccount
	err := row.Scan(
		&a.ID, &a.ContractID,
		&a.TotalAmount, &a.DepositedAmount, &a.ReleasedAmount, &a.FeeAmount,
		&a.Status, &a.CreatedAt, &a.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrEscrowNotFound
		}
		return nil, fmt.Errorf("failed to scan escrow account: %w", err)
	}
	return &a, nil
}

// InsertEscrowAccount возвращает domain.ErrEscrowExists при нарушении
// уникальности contract_id: счет по контракту ровно один.
func (t *ledgerTx) InsertEscrowAccount(ctx context.Context, a *domain.EscrowAccount) error {
	query := `INSERT INTO escrow_accounts (` + escrowAccountColumns + `)
	          VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`

	_, err := t.q.Exec(ctx, query,
		a.ID, a.ContractID,
		a.TotalAmount, a.DepositedAmount, a.ReleasedAmount, a.FeeAmount,
		a.Status, a.CreatedAt, a.UpdatedAt,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" { // unique_violation
			return domain.ErrEscrowExists
		}
		return fmt.Errorf("failed to insert escrow account: %w", err)
	}
	return nil
}

func (t *ledgerTx) GetEscrowAccountForUpdate(ctx context.Context, id uuid.UUID) (*domain.EscrowAccount, error) {
	return t.getEscrowAccount(ctx, id, " FOR UPDATE")
}

func (t *ledgerTx) getEscrowAccount(ctx context.Context, id uuid.UUID, lock string) (*domain.EscrowAccount, error) {
	query := `SELECT ` + escrowAccountColumns + ` FROM escrow_accounts WHERE id = $1` + lock
	return scanEscrowAccount(t.q.QueryRow(ctx, query, id))
}

// ApplyEscrowDeposit - охраняемый инкремент: условие повторяется в WHERE,
// ноль затронутых строк означает, что депозит превысил бы цель.
func (t *ledgerTx) ApplyEscrowDeposit(ctx context.Context, id uuid.UUID, amount decimal.Decimal, status domain.EscrowStatus) (bool, error) {
	query := `UPDATE escrow_accounts
	          SET deposited_amount = deposited_amount + $2, status = $3, updated_at = NOW()
	          WHERE id = $1 AND deposited_amount + $2 <= total_amount`

	cmdTag, err := t.q.Exec(ctx, query, id, amount, status)
	if err != nil {
		return false, fmt.Errorf("failed to apply escrow deposit: %w", err)
	}
	return cmdTag.RowsAffected() > 0, nil
}

// ApplyEscrowRelease - охраняемый инкремент выплат и комиссий.
func (t *ledgerTx) ApplyEscrowRelease(ctx context.Context, id uuid.UUID, amount, fee decimal.Decimal, status domain.EscrowStatus) (bool, error) {
	query := `UPDATE escrow_accounts
	          SET released_amount = released_amount + $2, fee_amount = fee_amount + $3,
	              status = $4, updated_at = NOW()
	          WHERE id = $1 AND released_amount + $2 <= deposited_amount`

	cmdTag, err := t.q.Exec(ctx, query, id, amount, fee, status)
	if err != nil {
		return false, fmt.Errorf("failed to apply escrow release: %w", err)
	}
	return cmdTag.RowsAffected() > 0, nil
}

func (t *ledgerTx) SetEscrowStatus(ctx context.Context, id uuid.UUID, status domain.EscrowStatus) error {
	query := `UPDATE escrow_accounts SET status = $2, updated_at = NOW() WHERE id = $1`

	cmdTag, err := t.q.Exec(ctx, query, id, status)
	if err != nil {
		return fmt.Errorf("failed to update escrow status: %w", err)
	}
	if cmdTag.RowsAffected() == 0 {
		return domain.ErrEscrowNotFound
	}
	return nil
}

func (t *ledgerTx) InsertEscrowTransaction(ctx context.Context, tr *domain.EscrowTransaction) error {
	query := `INSERT INTO escrow_transactions
	            (id, escrow_account_id, type, amount, description, authorized_by, status, reference, created_at)
	          VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`

	_, err := t.q.Exec(ctx, query,
		tr.ID, tr.EscrowAccountID, tr.Type, tr.Amount, tr.Description,
		tr.AuthorizedBy, tr.Status, tr.Reference, tr.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert escrow transaction: %w", err)
	}
	return nil
}

func (t *ledgerTx) InsertDispute(ctx context.Context, d *domain.Dispute) error {
	query := `INSERT INTO escrow_disputes (id, escrow_account_id, raised_by, reason, status, created_at)
	          VALUES ($1, $2, $3, $4, $5, $6)`

	_, err := t.q.Exec(ctx, query,
		d.ID, d.EscrowAccountID, d.RaisedBy, d.Reason, d.Status, d.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert escrow dispute: %w", err)
	}
	return nil
}

func (t *ledgerTx) listEscrowTransactions(ctx context.Context, escrowAccountID uuid.UUID) ([]domain.EscrowTransaction, error) {
	query := `SELECT id, escrow_account_id, type, amount, description, authorized_by, status, reference, created_at
	          FROM escrow_transactions
	          WHERE escrow_account_id = $1
	          ORDER BY created_at ASC`

	rows, err := t.q.Query(ctx, query, escrowAccountID)
	if err != nil {
		return nil, fmt.Errorf("failed to query escrow transactions: %w", err)
	}
	defer rows.Close()

	var transactions []domain.EscrowTransaction
	for rows.Next() {
		var tr domain.EscrowTransaction
		err := rows.Scan(
			&tr.ID, &tr.EscrowAccountID, &tr.Type, &tr.Amount, &tr.Description,
			&tr.AuthorizedBy, &tr.Status, &tr.Reference, &tr.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan escrow transaction: %w", err)
		}
		transactions = append(transactions, tr)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error during escrow transactions iteration: %w", err)
	}
	return transactions, nil
}
