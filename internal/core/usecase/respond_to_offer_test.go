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

func seedPendingOffer(l *fakeLedger, property domain.Property, buyerID uuid.UUID, amount string) domain.Offer {
	o := domain.Offer{
		ID:         uuid.New(),
		PropertyID: property.ID,
		BuyerID:    buyerID,
		SellerID:   property.OwnerID,
		Amount:     decimal.RequireFromString(amount),
		Status:     domain.OfferPending,
		Terms: domain.OfferTerms{
			EarnestMoney:   decimal.RequireFromString("5000"),
			InspectionDays: 10,
			Inclusions:     []string{"irrigation pump"},
		},
		ExpiresAt: testNow.Add(testOfferTTL),
		CreatedAt: testNow,
		UpdatedAt: testNow,
	}
	l.offers[o.ID] = o
	return o
}

func newRespondUC(l *fakeLedger, notifier *fakeNotifier, audit *fakeAudit) *RespondToOfferUseCase {
	uc := NewRespondToOfferUseCase(l, notifier, audit, NewContractMaterializer())
	uc.SetNowFunc(func() time.Time { return testNow })
	return uc
}

func TestRespondToOffer_AcceptCascades(t *testing.T) {
	ledger := newFakeLedger()
	notifier := &fakeNotifier{}
	seller := uuid.New()
	property := seedActiveProperty(ledger, seller, "100000")

	accepted := seedPendingOffer(ledger, property, uuid.New(), "80000")
	sibling := seedPendingOffer(ledger, property, uuid.New(), "70000")
	resolved := seedPendingOffer(ledger, property, uuid.New(), "60000")
	r := ledger.offers[resolved.ID]
	r.Status = domain.OfferWithdrawn
	ledger.offers[resolved.ID] = r

	uc := newRespondUC(ledger, notifier, &fakeAudit{})

	offer, err := uc.Execute(context.Background(), accepted.ID, seller, domain.RespondAccept)
	require.NoError(t, err)
	assert.Equal(t, domain.OfferAccepted, offer.Status)

	// Конкурент отклонен, уже завершенное предложение не тронуто
	assert.Equal(t, domain.OfferRejected, ledger.offers[sibling.ID].Status)
	assert.Equal(t, domain.OfferWithdrawn, ledger.offers[resolved.ID].Status)

	assert.Equal(t, domain.PropertySold, ledger.properties[property.ID].Status)

	require.Len(t, ledger.contracts, 1)
	var contract domain.Contract
	for _, c := range ledger.contracts {
		contract = c
	}
	assert.Equal(t, domain.ContractDraft, contract.Status)
	assert.Equal(t, accepted.ID, contract.OfferID)
	assert.Equal(t, accepted.BuyerID, contract.BuyerID)
	assert.Equal(t, seller, contract.SellerID)
	assert.True(t, contract.Amount.Equal(accepted.Amount))
	assert.True(t, contract.EarnestMoney.Equal(accepted.Terms.EarnestMoney))
	assert.Equal(t, accepted.Terms.InspectionDays, contract.Terms.InspectionDays)
	assert.Equal(t, accepted.Terms.Inclusions, contract.Terms.Inclusions)

	require.Len(t, ledger.escrows, 1)
	var account domain.EscrowAccount
	for _, a := range ledger.escrows {
		account = a
	}
	assert.Equal(t, contract.ID, account.ContractID)
	assert.Equal(t, domain.EscrowPending, account.Status)
	assert.True(t, account.TotalAmount.Equal(accepted.Amount))
	assert.True(t, account.DepositedAmount.IsZero())
	assert.True(t, account.ReleasedAmount.IsZero())

	events := notifier.byType("offer_accepted")
	require.Len(t, events, 1)
	assert.Equal(t, accepted.BuyerID, events[0].UserID)
}

func TestRespondToOffer_AcceptRejectsCounteredSiblings(t *testing.T) {
	ledger := newFakeLedger()
	seller := uuid.New()
	property := seedActiveProperty(ledger, seller, "100000")

	accepted := seedPendingOffer(ledger, property, uuid.New(), "80000")
	countered := seedPendingOffer(ledger, property, uuid.New(), "70000")
	c := ledger.offers[countered.ID]
	c.Status = domain.OfferCountered
	counterAmount := decimal.RequireFromString("90000")
	c.CounterAmount = &counterAmount
	ledger.offers[countered.ID] = c

	uc := newRespondUC(ledger, &fakeNotifier{}, &fakeAudit{})

	_, err := uc.Execute(context.Background(), accepted.ID, seller, domain.RespondAccept)
	require.NoError(t, err)

	// Встречное предложение продавца тоже умирает вместе с продажей
	assert.Equal(t, domain.OfferRejected, ledger.offers[countered.ID].Status)
	assert.Equal(t, domain.PropertySold, ledger.properties[property.ID].Status)
}

func TestRespondToOffer_RejectTouchesOnlyTheOffer(t *testing.T) {
	ledger := newFakeLedger()
	notifier := &fakeNotifier{}
	seller := uuid.New()
	property := seedActiveProperty(ledger, seller, "100000")
	offer := seedPendingOffer(ledger, property, uuid.New(), "80000")
	sibling := seedPendingOffer(ledger, property, uuid.New(), "70000")

	uc := newRespondUC(ledger, notifier, &fakeAudit{})

	got, err := uc.Execute(context.Background(), offer.ID, seller, domain.RespondReject)
	require.NoError(t, err)
	assert.Equal(t, domain.OfferRejected, got.Status)

	assert.Equal(t, domain.OfferPending, ledger.offers[sibling.ID].Status)
	assert.Equal(t, domain.PropertyActive, ledger.properties[property.ID].Status)
	assert.Empty(t, ledger.contracts)
	assert.Empty(t, ledger.escrows)
	assert.Len(t, notifier.byType("offer_rejected"), 1)
}

func TestRespondToOffer_OnlyAddresseeMayRespond(t *testing.T) {
	ledger := newFakeLedger()
	property := seedActiveProperty(ledger, uuid.New(), "100000")
	offer := seedPendingOffer(ledger, property, uuid.New(), "80000")

	uc := newRespondUC(ledger, &fakeNotifier{}, &fakeAudit{})

	_, err := uc.Execute(context.Background(), offer.ID, uuid.New(), domain.RespondAccept)
	assert.ErrorIs(t, err, domain.ErrUnauthorized)
	assert.Equal(t, domain.OfferPending, ledger.offers[offer.ID].Status)
}

func TestRespondToOffer_NonPendingOfferRejected(t *testing.T) {
	ledger := newFakeLedger()
	seller := uuid.New()
	property := seedActiveProperty(ledger, seller, "100000")
	offer := seedPendingOffer(ledger, property, uuid.New(), "80000")
	o := ledger.offers[offer.ID]
	o.Status = domain.OfferWithdrawn
	ledger.offers[offer.ID] = o

	uc := newRespondUC(ledger, &fakeNotifier{}, &fakeAudit{})

	_, err := uc.Execute(context.Background(), offer.ID, seller, domain.RespondAccept)
	assert.ErrorIs(t, err, domain.ErrOfferNotPending)
}

func TestRespondToOffer_ExpiredOfferCannotBeAccepted(t *testing.T) {
	ledger := newFakeLedger()
	seller := uuid.New()
	property := seedActiveProperty(ledger, seller, "100000")
	offer := seedPendingOffer(ledger, property, uuid.New(), "80000")

	uc := newRespondUC(ledger, &fakeNotifier{}, &fakeAudit{})
	uc.SetNowFunc(func() time.Time { return testNow.Add(testOfferTTL + time.Second) })

	_, err := uc.Execute(context.Background(), offer.ID, seller, domain.RespondAccept)
	assert.ErrorIs(t, err, domain.ErrOfferExpired)
	assert.Equal(t, domain.PropertyActive, ledger.properties[property.ID].Status)
	assert.Empty(t, ledger.contracts)
}

func TestRespondToOffer_StaleOfferOnSoldPropertyCannotBeAccepted(t *testing.T) {
	ledger := newFakeLedger()
	seller := uuid.New()
	property := seedActiveProperty(ledger, seller, "100000")

	// Объявление уже продано по другому предложению, но это предложение
	// успело создаться до каскада и осталось pending.
	winner := seedPendingOffer(ledger, property, uuid.New(), "90000")
	w := ledger.offers[winner.ID]
	w.Status = domain.OfferAccepted
	ledger.offers[winner.ID] = w

	stale := seedPendingOffer(ledger, property, uuid.New(), "80000")
	p := ledger.properties[property.ID]
	p.Status = domain.PropertySold
	ledger.properties[property.ID] = p

	uc := newRespondUC(ledger, &fakeNotifier{}, &fakeAudit{})

	_, err := uc.Execute(context.Background(), stale.ID, seller, domain.RespondAccept)
	assert.ErrorIs(t, err, domain.ErrInvalidState)

	// Второго принятого предложения и второго контракта не появилось
	assert.Equal(t, domain.OfferPending, ledger.offers[stale.ID].Status)
	assert.Empty(t, ledger.contracts)
	assert.Empty(t, ledger.escrows)
}

func TestRespondToOffer_UnknownActionRejected(t *testing.T) {
	uc := newRespondUC(newFakeLedger(), &fakeNotifier{}, &fakeAudit{})

	_, err := uc.Execute(context.Background(), uuid.New(), uuid.New(), domain.RespondAction(0))
	assert.ErrorIs(t, err, domain.ErrInvalidState)
}

func TestRespondToOffer_ConcurrentAcceptsYieldOneWinner(t *testing.T) {
	ledger := newFakeLedger()
	seller := uuid.New()
	property := seedActiveProperty(ledger, seller, "100000")
	first := seedPendingOffer(ledger, property, uuid.New(), "80000")
	second := seedPendingOffer(ledger, property, uuid.New(), "90000")

	uc := newRespondUC(ledger, &fakeNotifier{}, &fakeAudit{})

	var wg sync.WaitGroup
	errs := make([]error, 2)
	for i, offerID := range []uuid.UUID{first.ID, second.ID} {
		wg.Add(1)
		go func(i int, offerID uuid.UUID) {
			defer wg.Done()
			_, errs[i] = uc.Execute(context.Background(), offerID, seller, domain.RespondAccept)
		}(i, offerID)
	}
	wg.Wait()

	// Ровно один accept проходит; проигравший видит свое предложение
	// уже отклоненным каскадом победителя.
	var won, lost int
	for _, err := range errs {
		if err == nil {
			won++
		} else {
			assert.ErrorIs(t, err, domain.ErrOfferNotPending)
			lost++
		}
	}
	assert.Equal(t, 1, won)
	assert.Equal(t, 1, lost)
	assert.Len(t, ledger.contracts, 1)
	assert.Equal(t, domain.PropertySold, ledger.properties[property.ID].Status)
}
