package domain

import (
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func TestEscrowAccount_DeriveStatus(t *testing.T) {
	cases := []struct {
		name      string
		total     string
		deposited string
		released  string
		want      EscrowStatus
	}{
		{"empty account", "100000", "0", "0", EscrowPending},
		{"partially funded", "100000", "40000", "0", EscrowPending},
		{"fully funded", "100000", "100000", "0", EscrowFunded},
		{"partial release", "100000", "100000", "40000", EscrowPartialRelease},
		{"released before full funding", "100000", "60000", "10000", EscrowPartialRelease},
		{"everything released", "100000", "100000", "100000", EscrowCompleted},
		{"completed at partial funding", "100000", "60000", "60000", EscrowCompleted},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			a := EscrowAccount{
				TotalAmount:     dec(tc.total),
				DepositedAmount: dec(tc.deposited),
				ReleasedAmount:  dec(tc.released),
			}
			assert.Equal(t, tc.want, a.DeriveStatus())
		})
	}
}

func TestEscrowAccount_FeeDoesNotAffectStatus(t *testing.T) {
	a := EscrowAccount{
		TotalAmount:     dec("100000"),
		DepositedAmount: dec("100000"),
		FeeAmount:       dec("2500"),
	}
	assert.Equal(t, EscrowFunded, a.DeriveStatus())
}

func TestEscrowAccount_Settleable(t *testing.T) {
	assert.True(t, (&EscrowAccount{Status: EscrowPending}).Settleable())
	assert.True(t, (&EscrowAccount{Status: EscrowFunded}).Settleable())
	assert.True(t, (&EscrowAccount{Status: EscrowPartialRelease}).Settleable())
	assert.False(t, (&EscrowAccount{Status: EscrowDisputed}).Settleable())
	assert.False(t, (&EscrowAccount{Status: EscrowCompleted}).Settleable())
}

func TestEscrowAccount_Unreleased(t *testing.T) {
	a := EscrowAccount{
		DepositedAmount: dec("70000"),
		ReleasedAmount:  dec("25000"),
	}
	assert.True(t, a.Unreleased().Equal(dec("45000")))
}

func TestNewTransactionReference(t *testing.T) {
	id := uuid.MustParse("1b9f0c2a-0000-4000-8000-000000000000")

	assert.Equal(t, "DEP-1B9F0C2A", NewTransactionReference(TransactionDeposit, id))
	assert.Equal(t, "REL-1B9F0C2A", NewTransactionReference(TransactionRelease, id))
	assert.Equal(t, "FEE-1B9F0C2A", NewTransactionReference(TransactionFee, id))
}
