package usecase

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/James-Mirambel/Terratrade-sub001/internal/core/domain"
)

var testNow = time.Date(2026, time.March, 10, 12, 0, 0, 0, time.UTC)

const testOfferTTL = 7 * 24 * time.Hour

func seedActiveProperty(l *fakeLedger, ownerID uuid.UUID, price string) domain.Property {
	p := domain.Property{
		ID:          uuid.New(),
		OwnerID:     ownerID,
		Title:       "Riverside plot",
		Price:       decimal.RequireFromString(price),
		AreaSqm:     1200,
		Status:      domain.PropertyActive,
		ListingType: domain.ListingSale,
		CreatedAt:   testNow,
		UpdatedAt:   testNow,
	}
	l.properties[p.ID] = p
	return p
}

func newCreateOfferUC(l *fakeLedger, notifier *fakeNotifier, audit *fakeAudit) *CreateOfferUseCase {
	uc := NewCreateOfferUseCase(l, notifier, audit, decimal.RequireFromString("0.5"), testOfferTTL)
	uc.SetNowFunc(func() time.Time { return testNow })
	return uc
}

func TestCreateOffer_Succeeds(t *testing.T) {
	ledger := newFakeLedger()
	notifier := &fakeNotifier{}
	audit := &fakeAudit{}
	seller := uuid.New()
	buyer := uuid.New()
	property := seedActiveProperty(ledger, seller, "100000")

	uc := newCreateOfferUC(ledger, notifier, audit)

	offer, err := uc.Execute(context.Background(), property.ID, buyer, decimal.RequireFromString("80000"), domain.OfferTerms{
		Message:      "Ready to close fast",
		EarnestMoney: decimal.RequireFromString("5000"),
	})
	require.NoError(t, err)

	assert.Equal(t, domain.OfferPending, offer.Status)
	assert.Equal(t, seller, offer.SellerID)
	assert.Equal(t, buyer, offer.BuyerID)
	assert.True(t, offer.ExpiresAt.Equal(testNow.Add(testOfferTTL)))

	stored, err := ledger.GetOffer(context.Background(), offer.ID)
	require.NoError(t, err)
	assert.True(t, stored.Amount.Equal(decimal.RequireFromString("80000")))

	require.Len(t, notifier.byType("offer_received"), 1)
	assert.Equal(t, seller, notifier.byType("offer_received")[0].UserID)
	require.Len(t, notifier.byType("offer_submitted"), 1)
	assert.Equal(t, buyer, notifier.byType("offer_submitted")[0].UserID)

	require.Len(t, audit.events, 1)
	assert.Equal(t, "offers", audit.events[0].Entity)
	assert.Equal(t, buyer, audit.events[0].ActorID)
}

func TestCreateOffer_RejectsNonPositiveAmount(t *testing.T) {
	ledger := newFakeLedger()
	property := seedActiveProperty(ledger, uuid.New(), "100000")
	uc := newCreateOfferUC(ledger, &fakeNotifier{}, &fakeAudit{})

	_, err := uc.Execute(context.Background(), property.ID, uuid.New(), decimal.Zero, domain.OfferTerms{})
	assert.ErrorIs(t, err, domain.ErrInvalidAmount)
}

func TestCreateOffer_RejectsNegativeEarnestMoney(t *testing.T) {
	ledger := newFakeLedger()
	property := seedActiveProperty(ledger, uuid.New(), "100000")
	uc := newCreateOfferUC(ledger, &fakeNotifier{}, &fakeAudit{})

	_, err := uc.Execute(context.Background(), property.ID, uuid.New(), decimal.RequireFromString("80000"), domain.OfferTerms{
		EarnestMoney: decimal.RequireFromString("-1"),
	})
	assert.ErrorIs(t, err, domain.ErrInvalidAmount)
}

func TestCreateOffer_UnknownPropertyReportedAsNotFound(t *testing.T) {
	uc := newCreateOfferUC(newFakeLedger(), &fakeNotifier{}, &fakeAudit{})

	_, err := uc.Execute(context.Background(), uuid.New(), uuid.New(), decimal.RequireFromString("80000"), domain.OfferTerms{})
	assert.ErrorIs(t, err, domain.ErrPropertyNotFound)
}

func TestCreateOffer_InactivePropertyIndistinguishableFromMissing(t *testing.T) {
	ledger := newFakeLedger()
	property := seedActiveProperty(ledger, uuid.New(), "100000")
	property.Status = domain.PropertySold
	ledger.properties[property.ID] = property

	uc := newCreateOfferUC(ledger, &fakeNotifier{}, &fakeAudit{})

	_, err := uc.Execute(context.Background(), property.ID, uuid.New(), decimal.RequireFromString("80000"), domain.OfferTerms{})
	assert.ErrorIs(t, err, domain.ErrPropertyNotFound)
}

func TestCreateOffer_OwnerCannotOfferOnOwnProperty(t *testing.T) {
	ledger := newFakeLedger()
	owner := uuid.New()
	property := seedActiveProperty(ledger, owner, "100000")
	uc := newCreateOfferUC(ledger, &fakeNotifier{}, &fakeAudit{})

	_, err := uc.Execute(context.Background(), property.ID, owner, decimal.RequireFromString("80000"), domain.OfferTerms{})
	assert.ErrorIs(t, err, domain.ErrSelfOfferForbidden)
}

func TestCreateOffer_BelowHalfOfListingPriceRejected(t *testing.T) {
	ledger := newFakeLedger()
	property := seedActiveProperty(ledger, uuid.New(), "100000")
	uc := newCreateOfferUC(ledger, &fakeNotifier{}, &fakeAudit{})

	_, err := uc.Execute(context.Background(), property.ID, uuid.New(), decimal.RequireFromString("49999.99"), domain.OfferTerms{})
	assert.ErrorIs(t, err, domain.ErrOfferTooLow)

	// Ровно половина цены еще проходит
	_, err = uc.Execute(context.Background(), property.ID, uuid.New(), decimal.RequireFromString("50000"), domain.OfferTerms{})
	assert.NoError(t, err)
}

func TestCreateOffer_SecondLiveOfferBySameBuyerRejected(t *testing.T) {
	ledger := newFakeLedger()
	property := seedActiveProperty(ledger, uuid.New(), "100000")
	buyer := uuid.New()
	uc := newCreateOfferUC(ledger, &fakeNotifier{}, &fakeAudit{})

	_, err := uc.Execute(context.Background(), property.ID, buyer, decimal.RequireFromString("60000"), domain.OfferTerms{})
	require.NoError(t, err)

	_, err = uc.Execute(context.Background(), property.ID, buyer, decimal.RequireFromString("70000"), domain.OfferTerms{})
	assert.ErrorIs(t, err, domain.ErrDuplicatePendingOffer)
}

func TestCreateOffer_NewOfferAllowedAfterPreviousResolved(t *testing.T) {
	ledger := newFakeLedger()
	property := seedActiveProperty(ledger, uuid.New(), "100000")
	buyer := uuid.New()
	uc := newCreateOfferUC(ledger, &fakeNotifier{}, &fakeAudit{})

	first, err := uc.Execute(context.Background(), property.ID, buyer, decimal.RequireFromString("60000"), domain.OfferTerms{})
	require.NoError(t, err)

	withdrawn := ledger.offers[first.ID]
	withdrawn.Status = domain.OfferWithdrawn
	ledger.offers[first.ID] = withdrawn

	_, err = uc.Execute(context.Background(), property.ID, buyer, decimal.RequireFromString("70000"), domain.OfferTerms{})
	assert.NoError(t, err)
}
