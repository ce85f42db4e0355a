package rest

import (
	"encoding/json"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/James-Mirambel/Terratrade-sub001/internal/contextkeys"
	"github.com/James-Mirambel/Terratrade-sub001/internal/contracts"
	"github.com/James-Mirambel/Terratrade-sub001/internal/core/port"
	"github.com/James-Mirambel/Terratrade-sub001/internal/core/port/usecases_port"
)

// OfferHandler обслуживает жизненный цикл предложения: создание, ответ
// продавца, встречное предложение, ответ покупателя на каунтер, отзыв.
type OfferHandler struct {
	createUC           usecases_port.CreateOfferUseCasePort
	respondUC          usecases_port.RespondToOfferUseCasePort
	counterUC          usecases_port.CreateCounterOfferUseCasePort
	respondToCounterUC usecases_port.RespondToCounterOfferUseCasePort
	withdrawUC         usecases_port.WithdrawOfferUseCasePort
	getUC              usecases_port.GetOfferUseCasePort
	listBuyerUC        usecases_port.ListBuyerOffersUseCasePort
}

// NewOfferHandler - конструктор.
func NewOfferHandler(
	createUC usecases_port.CreateOfferUseCasePort,
	respondUC usecases_port.RespondToOfferUseCasePort,
	counterUC usecases_port.CreateCounterOfferUseCasePort,
	respondToCounterUC usecases_port.RespondToCounterOfferUseCasePort,
	withdrawUC usecases_port.WithdrawOfferUseCasePort,
	getUC usecases_port.GetOfferUseCasePort,
	listBuyerUC usecases_port.ListBuyerOffersUseCasePort,
) *OfferHandler {
	return &OfferHandler{
		createUC:           createUC,
		respondUC:          respondUC,
		counterUC:          counterUC,
		respondToCounterUC: respondToCounterUC,
		withdrawUC:         withdrawUC,
		getUC:              getUC,
		listBuyerUC:        listBuyerUC,
	}
}

// CreateOffer обрабатывает POST /api/v1/offers
func (h *OfferHandler) CreateOffer(w http.ResponseWriter, r *http.Request) {
	logger := contextkeys.LoggerFromContext(r.Context()).WithFields(port.Fields{"handler": "CreateOffer"})

	actor, ok := ActorFromRequest(r)
	if !ok {
		logger.Error("Invalid or missing actor in context", nil, nil)
		WriteJSONError(w, http.StatusUnauthorized, "Invalid user in context")
		return
	}

	body, err := io.ReadAll(r.Body)
	if err != nil {
		WriteJSONError(w, http.StatusBadRequest, "Failed to read request body")
		return
	}

	// Контракт запроса проверяется схемой до разбора в DTO
	if err := contracts.ValidateRequest("create-offer", "v1", body); err != nil {
		logger.Warn("Offer request failed schema validation", port.Fields{"error": err.Error()})
		WriteJSONError(w, http.StatusBadRequest, err.Error())
		return
	}

	var reqDTO CreateOfferRequest
	if err := json.Unmarshal(body, &reqDTO); err != nil {
		WriteJSONError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	propertyID, err := uuid.Parse(reqDTO.PropertyID)
	if err != nil {
		WriteJSONError(w, http.StatusBadRequest, "Invalid property_id format")
		return
	}
	amount, err := decimal.NewFromString(reqDTO.Amount)
	if err != nil {
		WriteJSONError(w, http.StatusBadRequest, "Invalid amount format")
		return
	}
	terms, err := reqDTO.Terms.toDomain()
	if err != nil {
		WriteJSONError(w, http.StatusBadRequest, err.Error())
		return
	}

	offer, err := h.createUC.Execute(r.Context(), propertyID, actor.ID, amount, terms)
	if err != nil {
		logger.Warn("Create offer use case failed", port.Fields{"error": err.Error()})
		WriteDomainError(w, err)
		return
	}

	RespondWithJSON(w, http.StatusCreated, offerToResponse(offer))
}

// RespondToOffer обрабатывает POST /api/v1/offers/{offerID}/response
func (h *OfferHandler) RespondToOffer(w http.ResponseWriter, r *http.Request) {
	logger := contextkeys.LoggerFromContext(r.Context()).WithFields(port.Fields{"handler": "RespondToOffer"})

	actor, ok := ActorFromRequest(r)
	if !ok {
		WriteJSONError(w, http.StatusUnauthorized, "Invalid user in context")
		return
	}

	offerID, err := uuid.Parse(chi.URLParam(r, "offerID"))
	if err != nil {
		WriteJSONError(w, http.StatusBadRequest, "Invalid offerID in URL")
		return
	}

	var reqDTO RespondToOfferRequest
	if err := json.NewDecoder(r.Body).Decode(&reqDTO); err != nil {
		WriteJSONError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	action, err := parseRespondAction(reqDTO.Action)
	if err != nil {
		WriteJSONError(w, http.StatusBadRequest, err.Error())
		return
	}

	offer, err := h.respondUC.Execute(r.Context(), offerID, actor.ID, action)
	if err != nil {
		logger.Warn("Respond to offer use case failed", port.Fields{"error": err.Error()})
		WriteDomainError(w, err)
		return
	}

	RespondWithJSON(w, http.StatusOK, offerToResponse(offer))
}

// CreateCounterOffer обрабатывает POST /api/v1/offers/{offerID}/counter
func (h *OfferHandler) CreateCounterOffer(w http.ResponseWriter, r *http.Request) {
	logger := contextkeys.LoggerFromContext(r.Context()).WithFields(port.Fields{"handler": "CreateCounterOffer"})

	actor, ok := ActorFromRequest(r)
	if !ok {
		WriteJSONError(w, http.StatusUnauthorized, "Invalid user in context")
		return
	}

	offerID, err := uuid.Parse(chi.URLParam(r, "offerID"))
	if err != nil {
		WriteJSONError(w, http.StatusBadRequest, "Invalid offerID in URL")
		return
	}

	var reqDTO CounterOfferRequest
	if err := json.NewDecoder(r.Body).Decode(&reqDTO); err != nil {
		WriteJSONError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	counterAmount, err := decimal.NewFromString(reqDTO.CounterAmount)
	if err != nil {
		WriteJSONError(w, http.StatusBadRequest, "Invalid counter_amount format")
		return
	}

	offer, err := h.counterUC.Execute(r.Context(), offerID, actor.ID, counterAmount, reqDTO.Message)
	if err != nil {
		logger.Warn("Create counter offer use case failed", port.Fields{"error": err.Error()})
		WriteDomainError(w, err)
		return
	}

	RespondWithJSON(w, http.StatusOK, offerToResponse(offer))
}

// RespondToCounterOffer обрабатывает POST /api/v1/offers/{offerID}/counter-response
func (h *OfferHandler) RespondToCounterOffer(w http.ResponseWriter, r *http.Request) {
	logger := contextkeys.LoggerFromContext(r.Context()).WithFields(port.Fields{"handler": "RespondToCounterOffer"})

	actor, ok := ActorFromRequest(r)
	if !ok {
		WriteJSONError(w, http.StatusUnauthorized, "Invalid user in context")
		return
	}

	offerID, err := uuid.Parse(chi.URLParam(r, "offerID"))
	if err != nil {
		WriteJSONError(w, http.StatusBadRequest, "Invalid offerID in URL")
		return
	}

	var reqDTO RespondToOfferRequest
	if err := json.NewDecoder(r.Body).Decode(&reqDTO); err != nil {
		WriteJSONError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	action, err := parseRespondAction(reqDTO.Action)
	if err != nil {
		WriteJSONError(w, http.StatusBadRequest, err.Error())
		return
	}

	offer, err := h.respondToCounterUC.Execute(r.Context(), offerID, actor.ID, action)
	if err != nil {
		logger.Warn("Respond to counter offer use case failed", port.Fields{"error": err.Error()})
		WriteDomainError(w, err)
		return
	}

	RespondWithJSON(w, http.StatusOK, offerToResponse(offer))
}

// WithdrawOffer обрабатывает POST /api/v1/offers/{offerID}/withdrawal
func (h *OfferHandler) WithdrawOffer(w http.ResponseWriter, r *http.Request) {
	logger := contextkeys.LoggerFromContext(r.Context()).WithFields(port.Fields{"handler": "WithdrawOffer"})

	actor, ok := ActorFromRequest(r)
	if !ok {
		WriteJSONError(w, http.StatusUnauthorized, "Invalid user in context")
		return
	}

	offerID, err := uuid.Parse(chi.URLParam(r, "offerID"))
	if err != nil {
		WriteJSONError(w, http.StatusBadRequest, "Invalid offerID in URL")
		return
	}

	offer, err := h.withdrawUC.Execute(r.Context(), offerID, actor.ID)
	if err != nil {
		logger.Warn("Withdraw offer use case failed", port.Fields{"error": err.Error()})
		WriteDomainError(w, err)
		return
	}

	RespondWithJSON(w, http.StatusOK, offerToResponse(offer))
}

// GetOffer обрабатывает GET /api/v1/offers/{offerID}
func (h *OfferHandler) GetOffer(w http.ResponseWriter, r *http.Request) {
	logger := contextkeys.LoggerFromContext(r.Context()).WithFields(port.Fields{"handler": "GetOffer"})

	actor, ok := ActorFromRequest(r)
	if !ok {
		WriteJSONError(w, http.StatusUnauthorized, "Invalid user in context")
		return
	}

	offerID, err := uuid.Parse(chi.URLParam(r, "offerID"))
	if err != nil {
		WriteJSONError(w, http.StatusBadRequest, "Invalid offerID in URL")
		return
	}

	offer, err := h.getUC.Execute(r.Context(), offerID, actor)
	if err != nil {
		logger.Warn("Get offer use case failed", port.Fields{"error": err.Error()})
		WriteDomainError(w, err)
		return
	}

	RespondWithJSON(w, http.StatusOK, offerToResponse(offer))
}

// ListMyOffers обрабатывает GET /api/v1/offers/my
func (h *OfferHandler) ListMyOffers(w http.ResponseWriter, r *http.Request) {
	logger := contextkeys.LoggerFromContext(r.Context()).WithFields(port.Fields{"handler": "ListMyOffers"})

	actor, ok := ActorFromRequest(r)
	if !ok {
		WriteJSONError(w, http.StatusUnauthorized, "Invalid user in context")
		return
	}

	offers, err := h.listBuyerUC.Execute(r.Context(), actor.ID)
	if err != nil {
		logger.Warn("List buyer offers use case failed", port.Fields{"error": err.Error()})
		WriteDomainError(w, err)
		return
	}

	response := make([]OfferResponse, len(offers))
	for i := range offers {
		response[i] = offerToResponse(&offers[i])
	}
	RespondWithJSON(w, http.StatusOK, response)
}
