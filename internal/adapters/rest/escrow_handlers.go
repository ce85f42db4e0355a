package rest

import (
	"context"
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

// EscrowHandler обслуживает эскроу-счета: открытие, депозиты, выплаты,
// споры и выписки. Контракты (только чтение) живут здесь же.
type EscrowHandler struct {
	createAccountUC usecases_port.CreateEscrowAccountUseCasePort
	depositUC       usecases_port.DepositFundsUseCasePort
	releaseUC       usecases_port.ReleaseFundsUseCasePort
	disputeUC       usecases_port.DisputeEscrowUseCasePort
	statementUC     usecases_port.GetEscrowStatementUseCasePort
	getContractUC   usecases_port.GetContractUseCasePort
}

// NewEscrowHandler - конструктор.
func NewEscrowHandler(
	createAccountUC usecases_port.CreateEscrowAccountUseCasePort,
	depositUC usecases_port.DepositFundsUseCasePort,
	releaseUC usecases_port.ReleaseFundsUseCasePort,
	disputeUC usecases_port.DisputeEscrowUseCasePort,
	statementUC usecases_port.GetEscrowStatementUseCasePort,
	getContractUC usecases_port.GetContractUseCasePort,
) *EscrowHandler {
	return &EscrowHandler{
		createAccountUC: createAccountUC,
		depositUC:       depositUC,
		releaseUC:       releaseUC,
		disputeUC:       disputeUC,
		statementUC:     statementUC,
		getContractUC:   getContractUC,
	}
}

// GetContract обрабатывает GET /api/v1/contracts/{contractID}
func (h *EscrowHandler) GetContract(w http.ResponseWriter, r *http.Request) {
	logger := contextkeys.LoggerFromContext(r.Context()).WithFields(port.Fields{"handler": "GetContract"})

	actor, ok := ActorFromRequest(r)
	if !ok {
		WriteJSONError(w, http.StatusUnauthorized, "Invalid user in context")
		return
	}

	contractID, err := uuid.Parse(chi.URLParam(r, "contractID"))
	if err != nil {
		WriteJSONError(w, http.StatusBadRequest, "Invalid contractID in URL")
		return
	}

	contract, err := h.getContractUC.Execute(r.Context(), contractID, actor)
	if err != nil {
		logger.Warn("Get contract use case failed", port.Fields{"error": err.Error()})
		WriteDomainError(w, err)
		return
	}

	RespondWithJSON(w, http.StatusOK, contractToResponse(contract))
}

// CreateEscrowAccount обрабатывает POST /api/v1/contracts/{contractID}/escrow
func (h *EscrowHandler) CreateEscrowAccount(w http.ResponseWriter, r *http.Request) {
	logger := contextkeys.LoggerFromContext(r.Context()).WithFields(port.Fields{"handler": "CreateEscrowAccount"})

	actor, ok := ActorFromRequest(r)
	if !ok {
		WriteJSONError(w, http.StatusUnauthorized, "Invalid user in context")
		return
	}

	contractID, err := uuid.Parse(chi.URLParam(r, "contractID"))
	if err != nil {
		WriteJSONError(w, http.StatusBadRequest, "Invalid contractID in URL")
		return
	}

	var reqDTO CreateEscrowAccountRequest
	if err := json.NewDecoder(r.Body).Decode(&reqDTO); err != nil {
		WriteJSONError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	totalAmount, err := decimal.NewFromString(reqDTO.TotalAmount)
	if err != nil {
		WriteJSONError(w, http.StatusBadRequest, "Invalid total_amount format")
		return
	}

	account, err := h.createAccountUC.Execute(r.Context(), contractID, actor, totalAmount)
	if err != nil {
		logger.Warn("Create escrow account use case failed", port.Fields{"error": err.Error()})
		WriteDomainError(w, err)
		return
	}

	RespondWithJSON(w, http.StatusCreated, escrowAccountToResponse(account))
}

// DepositFunds обрабатывает POST /api/v1/escrow/{escrowID}/deposits
func (h *EscrowHandler) DepositFunds(w http.ResponseWriter, r *http.Request) {
	h.applyMovement(w, r, "DepositFunds", h.depositUC.Execute)
}

// ReleaseFunds обрабатывает POST /api/v1/escrow/{escrowID}/releases
func (h *EscrowHandler) ReleaseFunds(w http.ResponseWriter, r *http.Request) {
	h.applyMovement(w, r, "ReleaseFunds", h.releaseUC.Execute)
}

// applyMovement - общий код депозита и выплаты: оба принимают сумму
// с описанием и возвращают обновленный счет.
func (h *EscrowHandler) applyMovement(
	w http.ResponseWriter,
	r *http.Request,
	handlerName string,
	execute func(ctx context.Context, escrowAccountID uuid.UUID, caller domain.Actor, amount decimal.Decimal, description string) (*domain.EscrowAccount, error),
) {
	logger := contextkeys.LoggerFromContext(r.Context()).WithFields(port.Fields{"handler": handlerName})

	actor, ok := ActorFromRequest(r)
	if !ok {
		WriteJSONError(w, http.StatusUnauthorized, "Invalid user in context")
		return
	}

	escrowID, err := uuid.Parse(chi.URLParam(r, "escrowID"))
	if err != nil {
		WriteJSONError(w, http.StatusBadRequest, "Invalid escrowID in URL")
		return
	}

	var reqDTO EscrowMovementRequest
	if err := json.NewDecoder(r.Body).Decode(&reqDTO); err != nil {
		WriteJSONError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	amount, err := decimal.NewFromString(reqDTO.Amount)
	if err != nil {
		WriteJSONError(w, http.StatusBadRequest, "Invalid amount format")
		return
	}

	account, err := execute(r.Context(), escrowID, actor, amount, reqDTO.Description)
	if err != nil {
		logger.Warn("Escrow movement use case failed", port.Fields{"error": err.Error()})
		WriteDomainError(w, err)
		return
	}

	RespondWithJSON(w, http.StatusOK, escrowAccountToResponse(account))
}

// DisputeEscrow обрабатывает POST /api/v1/escrow/{escrowID}/disputes
func (h *EscrowHandler) DisputeEscrow(w http.ResponseWriter, r *http.Request) {
	logger := contextkeys.LoggerFromContext(r.Context()).WithFields(port.Fields{"handler": "DisputeEscrow"})

	actor, ok := ActorFromRequest(r)
	if !ok {
		WriteJSONError(w, http.StatusUnauthorized, "Invalid user in context")
		return
	}

	escrowID, err := uuid.Parse(chi.URLParam(r, "escrowID"))
	if err != nil {
		WriteJSONError(w, http.StatusBadRequest, "Invalid escrowID in URL")
		return
	}

	var reqDTO DisputeRequest
	if err := json.NewDecoder(r.Body).Decode(&reqDTO); err != nil {
		WriteJSONError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if reqDTO.Reason == "" {
		WriteJSONError(w, http.StatusBadRequest, "Dispute reason is required")
		return
	}

	dispute, err := h.disputeUC.Execute(r.Context(), escrowID, actor, reqDTO.Reason)
	if err != nil {
		logger.Warn("Dispute escrow use case failed", port.Fields{"error": err.Error()})
		WriteDomainError(w, err)
		return
	}

	RespondWithJSON(w, http.StatusCreated, disputeToResponse(dispute))
}

// GetEscrowStatement обрабатывает GET /api/v1/escrow/{escrowID}/statement
func (h *EscrowHandler) GetEscrowStatement(w http.ResponseWriter, r *http.Request) {
	logger := contextkeys.LoggerFromContext(r.Context()).WithFields(port.Fields{"handler": "GetEscrowStatement"})

	actor, ok := ActorFromRequest(r)
	if !ok {
		WriteJSONError(w, http.StatusUnauthorized, "Invalid user in context")
		return
	}

	escrowID, err := uuid.Parse(chi.URLParam(r, "escrowID"))
	if err != nil {
		WriteJSONError(w, http.StatusBadRequest, "Invalid escrowID in URL")
		return
	}

	account, transactions, err := h.statementUC.Execute(r.Context(), escrowID, actor)
	if err != nil {
		logger.Warn("Get escrow statement use case failed", port.Fields{"error": err.Error()})
		WriteDomainError(w, err)
		return
	}

	response := EscrowStatementResponse{
		Account:      escrowAccountToResponse(account),
		Transactions: make([]EscrowTransactionResponse, len(transactions)),
	}
	for i, tr := range transactions {
		response.Transactions[i] = escrowTransactionToResponse(tr)
	}
	RespondWithJSON(w, http.StatusOK, response)
}
