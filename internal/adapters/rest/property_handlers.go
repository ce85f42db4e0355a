package rest

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/James-Mirambel/Terratrade-sub001/internal/contextkeys"
	"github.com/James-Mirambel/Terratrade-sub001/internal/core/domain"
	"github.com/James-Mirambel/Terratrade-sub001/internal/core/port"
	"github.com/James-Mirambel/Terratrade-sub001/internal/core/port/usecases_port"
)

// PropertyHandler обслуживает объявления: подача, модерация, удаление,
// просмотр предложений по объявлению.
type PropertyHandler struct {
	submitUC     usecases_port.SubmitPropertyUseCasePort
	moderateUC   usecases_port.ModeratePropertyUseCasePort
	deleteUC     usecases_port.DeletePropertyUseCasePort
	listOffersUC usecases_port.ListPropertyOffersUseCasePort
}

// NewPropertyHandler - конструктор.
func NewPropertyHandler(
	submitUC usecases_port.SubmitPropertyUseCasePort,
	moderateUC usecases_port.ModeratePropertyUseCasePort,
	deleteUC usecases_port.DeletePropertyUseCasePort,
	listOffersUC usecases_port.ListPropertyOffersUseCasePort,
) *PropertyHandler {
	return &PropertyHandler{
		submitUC:     submitUC,
		moderateUC:   moderateUC,
		deleteUC:     deleteUC,
		listOffersUC: listOffersUC,
	}
}

// SubmitProperty обрабатывает POST /api/v1/properties
func (h *PropertyHandler) SubmitProperty(w http.ResponseWriter, r *http.Request) {
	logger := contextkeys.LoggerFromContext(r.Context()).WithFields(port.Fields{"handler": "SubmitProperty"})

	actor, ok := ActorFromRequest(r)
	if !ok {
		logger.Error("Invalid or missing actor in context", nil, nil)
		WriteJSONError(w, http.StatusUnauthorized, "Invalid user in context")
		return
	}

	var reqDTO SubmitPropertyRequest
	if err := json.NewDecoder(r.Body).Decode(&reqDTO); err != nil {
		logger.Warn("Failed to decode request body for submit property", port.Fields{"error": err.Error()})
		WriteJSONError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	price, err := decimal.NewFromString(reqDTO.Price)
	if err != nil {
		WriteJSONError(w, http.StatusBadRequest, "Invalid price format")
		return
	}

	property, err := h.submitUC.Execute(r.Context(), usecases_port.SubmitPropertyInput{
		OwnerID:      actor.ID,
		Title:        reqDTO.Title,
		Price:        price,
		AreaSqm:      reqDTO.AreaSqm,
		ListingType:  domain.ListingType(reqDTO.ListingType),
		AuctionStart: reqDTO.AuctionStart,
		AuctionEnd:   reqDTO.AuctionEnd,
	})
	if err != nil {
		logger.Warn("Submit property use case failed", port.Fields{"error": err.Error()})
		WriteDomainError(w, err)
		return
	}

	RespondWithJSON(w, http.StatusCreated, propertyToResponse(property))
}

// ModerateProperty обрабатывает POST /api/v1/properties/{propertyID}/moderation
func (h *PropertyHandler) ModerateProperty(w http.ResponseWriter, r *http.Request) {
	logger := contextkeys.LoggerFromContext(r.Context()).WithFields(port.Fields{"handler": "ModerateProperty"})

	actor, ok := ActorFromRequest(r)
	if !ok {
		WriteJSONError(w, http.StatusUnauthorized, "Invalid user in context")
		return
	}

	propertyID, err := uuid.Parse(chi.URLParam(r, "propertyID"))
	if err != nil {
		WriteJSONError(w, http.StatusBadRequest, "Invalid propertyID in URL")
		return
	}

	var reqDTO ModeratePropertyRequest
	if err := json.NewDecoder(r.Body).Decode(&reqDTO); err != nil {
		WriteJSONError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	action, err := parseModerationAction(reqDTO.Action)
	if err != nil {
		WriteJSONError(w, http.StatusBadRequest, err.Error())
		return
	}

	property, err := h.moderateUC.Execute(r.Context(), propertyID, actor, action)
	if err != nil {
		logger.Warn("Moderate property use case failed", port.Fields{"error": err.Error()})
		WriteDomainError(w, err)
		return
	}

	RespondWithJSON(w, http.StatusOK, propertyToResponse(property))
}

// DeleteProperty обрабатывает DELETE /api/v1/properties/{propertyID}
func (h *PropertyHandler) DeleteProperty(w http.ResponseWriter, r *http.Request) {
	logger := contextkeys.LoggerFromContext(r.Context()).WithFields(port.Fields{"handler": "DeleteProperty"})

	actor, ok := ActorFromRequest(r)
	if !ok {
		WriteJSONError(w, http.StatusUnauthorized, "Invalid user in context")
		return
	}

	propertyID, err := uuid.Parse(chi.URLParam(r, "propertyID"))
	if err != nil {
		WriteJSONError(w, http.StatusBadRequest, "Invalid propertyID in URL")
		return
	}

	if err := h.deleteUC.Execute(r.Context(), propertyID, actor.ID); err != nil {
		logger.Warn("Delete property use case failed", port.Fields{"error": err.Error()})
		WriteDomainError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// ListPropertyOffers обрабатывает GET /api/v1/properties/{propertyID}/offers
func (h *PropertyHandler) ListPropertyOffers(w http.ResponseWriter, r *http.Request) {
	logger := contextkeys.LoggerFromContext(r.Context()).WithFields(port.Fields{"handler": "ListPropertyOffers"})

	actor, ok := ActorFromRequest(r)
	if !ok {
		WriteJSONError(w, http.StatusUnauthorized, "Invalid user in context")
		return
	}

	propertyID, err := uuid.Parse(chi.URLParam(r, "propertyID"))
	if err != nil {
		WriteJSONError(w, http.StatusBadRequest, "Invalid propertyID in URL")
		return
	}

	offers, err := h.listOffersUC.Execute(r.Context(), propertyID, actor.ID)
	if err != nil {
		logger.Warn("List property offers use case failed", port.Fields{"error": err.Error()})
		WriteDomainError(w, err)
		return
	}

	response := make([]OfferResponse, len(offers))
	for i := range offers {
		response[i] = offerToResponse(&offers[i])
	}
	RespondWithJSON(w, http.StatusOK, response)
}
