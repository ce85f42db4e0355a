package usecase

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/James-Mirambel/Terratrade-sub001/internal/core/domain"
)

// escrowFixture - контракт с открытым эскроу-счетом на 100000.
type escrowFixture struct {
	ledger   *fakeLedger
	buyer    uuid.UUID
	seller   uuid.UUID
	contract domain.Contract
	account  domain.EscrowAccount
}

func newEscrowFixture() *escrowFixture {
	f := &escrowFixture{
		ledger: newFakeLedger(),
		buyer:  uuid.New(),
		seller: uuid.New(),
	}
	f.contract = domain.Contract{
		ID:         uuid.New(),
		PropertyID: uuid.New(),
		BuyerID:    f.buyer,
		SellerID:   f.seller,
		OfferID:    uuid.New(),
		Amount:     decimal.RequireFromString("100000"),
		Status:     domain.ContractDraft,
		CreatedAt:  testNow,
	}
	f.ledger.contracts[f.contract.ID] = f.contract

	f.account = domain.EscrowAccount{
		ID:              uuid.New(),
		ContractID:      f.contract.ID,
		TotalAmount:     decimal.RequireFromString("100000"),
		DepositedAmount: decimal.Zero,
		ReleasedAmount:  decimal.Zero,
		FeeAmount:       decimal.Zero,
		Status:          domain.EscrowPending,
		CreatedAt:       testNow,
		UpdatedAt:       testNow,
	}
	f.ledger.escrows[f.account.ID] = f.account
	return f
}

func (f *escrowFixture) buyerActor() domain.Actor  { return domain.Actor{ID: f.buyer} }
func (f *escrowFixture) sellerActor() domain.Actor { return domain.Actor{ID: f.seller} }

func (f *escrowFixture) deposit(t *testing.T, amount string) *domain.EscrowAccount {
	t.Helper()
	uc := NewDepositFundsUseCase(f.ledger, &fakeNotifier{}, &fakeAudit{})
	uc.SetNowFunc(func() time.Time { return testNow })
	account, err := uc.Execute(context.Background(), f.account.ID, f.buyerActor(), decimal.RequireFromString(amount), "wire transfer")
	require.NoError(t, err)
	return account
}

func TestCreateEscrowAccount_PartyOpensAccount(t *testing.T) {
	f := newEscrowFixture()
	delete(f.ledger.escrows, f.account.ID)

	uc := NewCreateEscrowAccountUseCase(f.ledger, &fakeAudit{})
	uc.SetNowFunc(func() time.Time { return testNow })

	account, err := uc.Execute(context.Background(), f.contract.ID, f.buyerActor(), decimal.RequireFromString("100000"))
	require.NoError(t, err)
	assert.Equal(t, domain.EscrowPending, account.Status)
	assert.True(t, account.TotalAmount.Equal(decimal.RequireFromString("100000")))
	assert.True(t, account.DepositedAmount.IsZero())
}

func TestCreateEscrowAccount_Guards(t *testing.T) {
	f := newEscrowFixture()

	uc := NewCreateEscrowAccountUseCase(f.ledger, &fakeAudit{})
	uc.SetNowFunc(func() time.Time { return testNow })

	_, err := uc.Execute(context.Background(), f.contract.ID, f.buyerActor(), decimal.Zero)
	assert.ErrorIs(t, err, domain.ErrInvalidAmount)

	_, err = uc.Execute(context.Background(), f.contract.ID, domain.Actor{ID: uuid.New()}, decimal.RequireFromString("100000"))
	assert.ErrorIs(t, err, domain.ErrUnauthorized)

	_, err = uc.Execute(context.Background(), uuid.New(), f.buyerActor(), decimal.RequireFromString("100000"))
	assert.ErrorIs(t, err, domain.ErrContractNotFound)

	// Счет 1:1 к контракту, второй не открывается
	_, err = uc.Execute(context.Background(), f.contract.ID, f.buyerActor(), decimal.RequireFromString("100000"))
	assert.ErrorIs(t, err, domain.ErrEscrowExists)
}

func TestDepositFunds_AccumulatesTowardsTarget(t *testing.T) {
	f := newEscrowFixture()

	account := f.deposit(t, "40000")
	assert.Equal(t, domain.EscrowPending, account.Status)
	assert.True(t, account.DepositedAmount.Equal(decimal.RequireFromString("40000")))

	account = f.deposit(t, "60000")
	assert.Equal(t, domain.EscrowFunded, account.Status)
	assert.True(t, account.DepositedAmount.Equal(account.TotalAmount))

	txs, err := f.ledger.ListEscrowTransactions(context.Background(), f.account.ID)
	require.NoError(t, err)
	require.Len(t, txs, 2)
	for _, tx := range txs {
		assert.Equal(t, domain.TransactionDeposit, tx.Type)
		assert.Equal(t, domain.TransactionCompleted, tx.Status)
		assert.Equal(t, f.buyer, tx.AuthorizedBy)
		assert.Regexp(t, `^DEP-[0-9A-F]{8}$`, tx.Reference)
	}
}

func TestDepositFunds_OverfundingRejectedNotTruncated(t *testing.T) {
	f := newEscrowFixture()
	f.deposit(t, "90000")

	uc := NewDepositFundsUseCase(f.ledger, &fakeNotifier{}, &fakeAudit{})
	uc.SetNowFunc(func() time.Time { return testNow })

	_, err := uc.Execute(context.Background(), f.account.ID, f.buyerActor(), decimal.RequireFromString("10000.01"), "")
	assert.ErrorIs(t, err, domain.ErrDepositExceedsTotal)

	stored := f.ledger.escrows[f.account.ID]
	assert.True(t, stored.DepositedAmount.Equal(decimal.RequireFromString("90000")))

	txs, _ := f.ledger.ListEscrowTransactions(context.Background(), f.account.ID)
	assert.Len(t, txs, 1)
}

func TestDepositFunds_ConcurrentDepositsNeverOverfund(t *testing.T) {
	f := newEscrowFixture()

	uc := NewDepositFundsUseCase(f.ledger, &fakeNotifier{}, &fakeAudit{})
	uc.SetNowFunc(func() time.Time { return testNow })

	// Каждый вклад проходит, но оба вместе превысили бы цель
	var wg sync.WaitGroup
	errs := make([]error, 2)
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = uc.Execute(context.Background(), f.account.ID, f.buyerActor(), decimal.RequireFromString("60000"), "")
		}(i)
	}
	wg.Wait()

	var won, lost int
	for _, err := range errs {
		if err == nil {
			won++
		} else {
			assert.ErrorIs(t, err, domain.ErrDepositExceedsTotal)
			lost++
		}
	}
	assert.Equal(t, 1, won)
	assert.Equal(t, 1, lost)

	stored := f.ledger.escrows[f.account.ID]
	assert.True(t, stored.DepositedAmount.Equal(decimal.RequireFromString("60000")))
}

func TestDepositFunds_Guards(t *testing.T) {
	f := newEscrowFixture()

	uc := NewDepositFundsUseCase(f.ledger, &fakeNotifier{}, &fakeAudit{})
	uc.SetNowFunc(func() time.Time { return testNow })

	_, err := uc.Execute(context.Background(), f.account.ID, f.buyerActor(), decimal.Zero, "")
	assert.ErrorIs(t, err, domain.ErrInvalidAmount)

	_, err = uc.Execute(context.Background(), f.account.ID, domain.Actor{ID: uuid.New()}, decimal.RequireFromString("1000"), "")
	assert.ErrorIs(t, err, domain.ErrUnauthorized)

	_, err = uc.Execute(context.Background(), uuid.New(), f.buyerActor(), decimal.RequireFromString("1000"), "")
	assert.ErrorIs(t, err, domain.ErrEscrowNotFound)
}

func TestDepositFunds_NotifiesCounterparty(t *testing.T) {
	f := newEscrowFixture()
	notifier := &fakeNotifier{}

	uc := NewDepositFundsUseCase(f.ledger, notifier, &fakeAudit{})
	uc.SetNowFunc(func() time.Time { return testNow })

	_, err := uc.Execute(context.Background(), f.account.ID, f.buyerActor(), decimal.RequireFromString("1000"), "")
	require.NoError(t, err)

	events := notifier.byType("escrow_deposit")
	require.Len(t, events, 1)
	assert.Equal(t, f.seller, events[0].UserID)
}

func TestReleaseFunds_TakesPlatformFeeAndDerivesStatus(t *testing.T) {
	f := newEscrowFixture()
	f.deposit(t, "100000")

	uc := NewReleaseFundsUseCase(f.ledger, &fakeNotifier{}, &fakeAudit{}, decimal.RequireFromString("2.5"))
	uc.SetNowFunc(func() time.Time { return testNow })

	account, err := uc.Execute(context.Background(), f.account.ID, f.sellerActor(), decimal.RequireFromString("40000"), "closing payout")
	require.NoError(t, err)

	assert.Equal(t, domain.EscrowPartialRelease, account.Status)
	assert.True(t, account.ReleasedAmount.Equal(decimal.RequireFromString("40000")))
	// Комиссия ведется отдельно и не уменьшает released
	assert.True(t, account.FeeAmount.Equal(decimal.RequireFromString("1000")))

	txs, _ := f.ledger.ListEscrowTransactions(context.Background(), f.account.ID)
	require.Len(t, txs, 3) // deposit, release, fee

	var release, fee *domain.EscrowTransaction
	for i := range txs {
		switch txs[i].Type {
		case domain.TransactionRelease:
			release = &txs[i]
		case domain.TransactionFee:
			fee = &txs[i]
		}
	}
	require.NotNil(t, release)
	require.NotNil(t, fee)
	assert.True(t, fee.Amount.Equal(decimal.RequireFromString("1000")))
	assert.Contains(t, fee.Description, release.Reference)
	assert.Regexp(t, `^FEE-[0-9A-F]{8}$`, fee.Reference)

	// Выплата остатка закрывает счет
	account, err = uc.Execute(context.Background(), f.account.ID, f.sellerActor(), decimal.RequireFromString("60000"), "final payout")
	require.NoError(t, err)
	assert.Equal(t, domain.EscrowCompleted, account.Status)
}

func TestReleaseFunds_FeeRoundsToCents(t *testing.T) {
	f := newEscrowFixture()
	f.deposit(t, "100000")

	uc := NewReleaseFundsUseCase(f.ledger, &fakeNotifier{}, &fakeAudit{}, decimal.RequireFromString("2.5"))
	uc.SetNowFunc(func() time.Time { return testNow })

	// 2.5% от 333.33 = 8.33325, округляется до 8.33
	account, err := uc.Execute(context.Background(), f.account.ID, f.sellerActor(), decimal.RequireFromString("333.33"), "")
	require.NoError(t, err)
	assert.True(t, account.FeeAmount.Equal(decimal.RequireFromString("8.33")))
}

func TestReleaseFunds_ZeroFeeRecordsNoFeeTransaction(t *testing.T) {
	f := newEscrowFixture()
	f.deposit(t, "100000")

	uc := NewReleaseFundsUseCase(f.ledger, &fakeNotifier{}, &fakeAudit{}, decimal.Zero)
	uc.SetNowFunc(func() time.Time { return testNow })

	account, err := uc.Execute(context.Background(), f.account.ID, f.sellerActor(), decimal.RequireFromString("40000"), "")
	require.NoError(t, err)
	assert.True(t, account.FeeAmount.IsZero())

	txs, _ := f.ledger.ListEscrowTransactions(context.Background(), f.account.ID)
	assert.Len(t, txs, 2) // deposit, release
}

func TestReleaseFunds_CannotExceedUnreleasedDeposits(t *testing.T) {
	f := newEscrowFixture()
	f.deposit(t, "50000")

	uc := NewReleaseFundsUseCase(f.ledger, &fakeNotifier{}, &fakeAudit{}, decimal.RequireFromString("2.5"))
	uc.SetNowFunc(func() time.Time { return testNow })

	_, err := uc.Execute(context.Background(), f.account.ID, f.sellerActor(), decimal.RequireFromString("50000.01"), "")
	assert.ErrorIs(t, err, domain.ErrInsufficientFunds)

	stored := f.ledger.escrows[f.account.ID]
	assert.True(t, stored.ReleasedAmount.IsZero())
	assert.True(t, stored.FeeAmount.IsZero())
}

func TestReleaseFunds_CompletedAccountClosedForMovements(t *testing.T) {
	f := newEscrowFixture()
	f.deposit(t, "100000")

	uc := NewReleaseFundsUseCase(f.ledger, &fakeNotifier{}, &fakeAudit{}, decimal.Zero)
	uc.SetNowFunc(func() time.Time { return testNow })

	_, err := uc.Execute(context.Background(), f.account.ID, f.sellerActor(), decimal.RequireFromString("100000"), "")
	require.NoError(t, err)

	_, err = uc.Execute(context.Background(), f.account.ID, f.sellerActor(), decimal.RequireFromString("1"), "")
	assert.ErrorIs(t, err, domain.ErrInvalidState)

	depositUC := NewDepositFundsUseCase(f.ledger, &fakeNotifier{}, &fakeAudit{})
	depositUC.SetNowFunc(func() time.Time { return testNow })
	_, err = depositUC.Execute(context.Background(), f.account.ID, f.buyerActor(), decimal.RequireFromString("1"), "")
	assert.ErrorIs(t, err, domain.ErrInvalidState)
}

func TestDisputeEscrow_FreezesAccount(t *testing.T) {
	f := newEscrowFixture()
	f.deposit(t, "50000")
	notifier := &fakeNotifier{}

	uc := NewDisputeEscrowUseCase(f.ledger, notifier, &fakeAudit{})
	uc.SetNowFunc(func() time.Time { return testNow })

	dispute, err := uc.Execute(context.Background(), f.account.ID, f.buyerActor(), "seller refuses to hand over survey documents")
	require.NoError(t, err)
	assert.Equal(t, domain.DisputeOpen, dispute.Status)
	assert.Equal(t, f.buyer, dispute.RaisedBy)

	assert.Equal(t, domain.EscrowDisputed, f.ledger.escrows[f.account.ID].Status)
	require.Len(t, f.ledger.disputes, 1)

	// Обе стороны получают уведомление
	assert.Len(t, notifier.byType("escrow_dispute"), 2)

	// Движения по замороженному счету отклоняются
	depositUC := NewDepositFundsUseCase(f.ledger, &fakeNotifier{}, &fakeAudit{})
	depositUC.SetNowFunc(func() time.Time { return testNow })
	_, err = depositUC.Execute(context.Background(), f.account.ID, f.buyerActor(), decimal.RequireFromString("1000"), "")
	assert.ErrorIs(t, err, domain.ErrInvalidState)

	releaseUC := NewReleaseFundsUseCase(f.ledger, &fakeNotifier{}, &fakeAudit{}, decimal.Zero)
	releaseUC.SetNowFunc(func() time.Time { return testNow })
	_, err = releaseUC.Execute(context.Background(), f.account.ID, f.sellerActor(), decimal.RequireFromString("1000"), "")
	assert.ErrorIs(t, err, domain.ErrInvalidState)
}

func TestDisputeEscrow_OnlyContractPartyMayRaise(t *testing.T) {
	f := newEscrowFixture()

	uc := NewDisputeEscrowUseCase(f.ledger, &fakeNotifier{}, &fakeAudit{})
	uc.SetNowFunc(func() time.Time { return testNow })

	_, err := uc.Execute(context.Background(), f.account.ID, domain.Actor{ID: uuid.New()}, "reason")
	assert.ErrorIs(t, err, domain.ErrUnauthorized)

	// Администратор стороной сделки не является
	_, err = uc.Execute(context.Background(), f.account.ID, domain.Actor{ID: uuid.New(), Admin: true}, "reason")
	assert.ErrorIs(t, err, domain.ErrUnauthorized)
}

func TestDisputeEscrow_RepeatDisputeRejected(t *testing.T) {
	f := newEscrowFixture()

	uc := NewDisputeEscrowUseCase(f.ledger, &fakeNotifier{}, &fakeAudit{})
	uc.SetNowFunc(func() time.Time { return testNow })

	_, err := uc.Execute(context.Background(), f.account.ID, f.buyerActor(), "first")
	require.NoError(t, err)

	_, err = uc.Execute(context.Background(), f.account.ID, f.sellerActor(), "second")
	assert.ErrorIs(t, err, domain.ErrInvalidState)
}

func TestGetEscrowStatement_ReturnsAccountWithTransactions(t *testing.T) {
	f := newEscrowFixture()
	f.deposit(t, "40000")
	f.deposit(t, "60000")

	uc := NewGetEscrowStatementUseCase(f.ledger)

	account, txs, err := uc.Execute(context.Background(), f.account.ID, f.sellerActor())
	require.NoError(t, err)
	assert.Equal(t, domain.EscrowFunded, account.Status)
	assert.Len(t, txs, 2)

	// Администратору выписка тоже доступна
	_, _, err = uc.Execute(context.Background(), f.account.ID, domain.Actor{ID: uuid.New(), Admin: true})
	assert.NoError(t, err)
}

func TestGetEscrowStatement_StrangerDenied(t *testing.T) {
	f := newEscrowFixture()

	uc := NewGetEscrowStatementUseCase(f.ledger)

	_, _, err := uc.Execute(context.Background(), f.account.ID, domain.Actor{ID: uuid.New()})
	assert.ErrorIs(t, err, domain.ErrUnauthorized)
}

func TestGetContract_PartiesAndAdminOnly(t *testing.T) {
	f := newEscrowFixture()

	uc := NewGetContractUseCase(f.ledger)

	contract, err := uc.Execute(context.Background(), f.contract.ID, f.buyerActor())
	require.NoError(t, err)
	assert.Equal(t, f.contract.ID, contract.ID)

	_, err = uc.Execute(context.Background(), f.contract.ID, domain.Actor{ID: uuid.New(), Admin: true})
	assert.NoError(t, err)

	_, err = uc.Execute(context.Background(), f.contract.ID, domain.Actor{ID: uuid.New()})
	assert.ErrorIs(t, err, domain.ErrUnauthorized)

	_, err = uc.Execute(context.Background(), uuid.New(), f.buyerActor())
	assert.ErrorIs(t, err, domain.ErrContractNotFound)
}
