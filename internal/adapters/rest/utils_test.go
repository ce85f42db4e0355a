package rest

import (
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/James-Mirambel/Terratrade-sub001/internal/core/domain"
)

func TestWriteDomainError_StatusMapping(t *testing.T) {
	cases := []struct {
		err  error
		want int
	}{
		{domain.ErrPropertyNotFound, http.StatusNotFound},
		{domain.ErrOfferNotFound, http.StatusNotFound},
		{domain.ErrContractNotFound, http.StatusNotFound},
		{domain.ErrEscrowNotFound, http.StatusNotFound},
		{domain.ErrUnauthorized, http.StatusForbidden},
		{domain.ErrSelfOfferForbidden, http.StatusForbidden},
		{domain.ErrDuplicatePendingOffer, http.StatusConflict},
		{domain.ErrEscrowExists, http.StatusConflict},
		{domain.ErrOfferNotPending, http.StatusConflict},
		{domain.ErrOfferExpired, http.StatusConflict},
		{domain.ErrInvalidState, http.StatusConflict},
		{domain.ErrPropertyHasOpenDeals, http.StatusConflict},
		{domain.ErrOfferTooLow, http.StatusUnprocessableEntity},
		{domain.ErrInvalidAmount, http.StatusUnprocessableEntity},
		{domain.ErrDepositExceedsTotal, http.StatusUnprocessableEntity},
		{domain.ErrInsufficientFunds, http.StatusUnprocessableEntity},
		{errors.New("database is on fire"), http.StatusInternalServerError},
	}

	for _, tc := range cases {
		t.Run(tc.err.Error(), func(t *testing.T) {
			rec := httptest.NewRecorder()
			WriteDomainError(rec, tc.err)
			assert.Equal(t, tc.want, rec.Code)
			assert.Contains(t, rec.Header().Get("Content-Type"), "application/json")
		})
	}
}

func TestWriteDomainError_WrappedErrorsStillMapped(t *testing.T) {
	rec := httptest.NewRecorder()
	WriteDomainError(rec, fmt.Errorf("earnest money cannot be negative: %w", domain.ErrInvalidAmount))
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
}

func TestWriteDomainError_UnknownErrorDetailsHidden(t *testing.T) {
	rec := httptest.NewRecorder()
	WriteDomainError(rec, errors.New("pq: secret connection string"))
	assert.NotContains(t, rec.Body.String(), "secret")
}

func TestAuthMiddleware_PopulatesActor(t *testing.T) {
	userID := uuid.New()

	var gotActor domain.Actor
	var gotOK bool
	handler := AuthMiddleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotActor, gotOK = ActorFromRequest(r)
	}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("X-User-ID", userID.String())
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	require.True(t, gotOK)
	assert.Equal(t, userID, gotActor.ID)
	assert.False(t, gotActor.Admin)
}

func TestAuthMiddleware_AdminRoleRecognized(t *testing.T) {
	var gotActor domain.Actor
	handler := AuthMiddleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotActor, _ = ActorFromRequest(r)
	}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("X-User-ID", uuid.NewString())
	req.Header.Set("X-User-Role", "admin")
	handler.ServeHTTP(httptest.NewRecorder(), req)

	assert.True(t, gotActor.Admin)
}

func TestAuthMiddleware_RejectsMissingOrMalformedHeader(t *testing.T) {
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("handler must not be reached")
	})

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	AuthMiddleware(next).ServeHTTP(rec, req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	req = httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("X-User-ID", "not-a-uuid")
	rec = httptest.NewRecorder()
	AuthMiddleware(next).ServeHTTP(rec, req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}
