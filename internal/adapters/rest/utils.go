package rest

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/James-Mirambel/Terratrade-sub001/internal/core/domain"
)

// WriteJSONError отправляет JSON-ответ с полем "error" и заданным статусом.
func WriteJSONError(w http.ResponseWriter, statusCode int, message string) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(statusCode)

	json.NewEncoder(w).Encode(map[string]string{
		"error": message,
	})
}

// RespondWithJSON отправляет JSON-ответ.
func RespondWithJSON(w http.ResponseWriter, code int, payload interface{}) {
	response, err := json.Marshal(payload)
	if err != nil {
		http.Error(w, "Failed to marshal JSON response", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	w.Write(response)
}

// WriteDomainError отображает ошибки ядра на HTTP-статусы.
// Ядро про HTTP ничего не знает, все соответствие живет здесь.
func WriteDomainError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, domain.ErrPropertyNotFound),
		errors.Is(err, domain.ErrOfferNotFound),
		errors.Is(err, domain.ErrContractNotFound),
		errors.Is(err, domain.ErrEscrowNotFound):
		WriteJSONError(w, http.StatusNotFound, err.Error())

	case errors.Is(err, domain.ErrUnauthorized),
		errors.Is(err, domain.ErrSelfOfferForbidden):
		WriteJSONError(w, http.StatusForbidden, err.Error())

	case errors.Is(err, domain.ErrDuplicatePendingOffer),
		errors.Is(err, domain.ErrEscrowExists),
		errors.Is(err, domain.ErrOfferNotPending),
		errors.Is(err, domain.ErrOfferExpired),
		errors.Is(err, domain.ErrInvalidState),
		errors.Is(err, domain.ErrPropertyHasOpenDeals):
		WriteJSONError(w, http.StatusConflict, err.Error())

	case errors.Is(err, domain.ErrOfferTooLow),
		errors.Is(err, domain.ErrInvalidAmount),
		errors.Is(err, domain.ErrDepositExceedsTotal),
		errors.Is(err, domain.ErrInsufficientFunds):
		WriteJSONError(w, http.StatusUnprocessableEntity, err.Error())

	default:
		WriteJSONError(w, http.StatusInternalServerError, "Internal server error")
	}
}
