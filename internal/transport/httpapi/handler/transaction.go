package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/nexfin/nexfin/internal/platform/billing"
	"github.com/nexfin/nexfin/internal/platform/transaction"
	apperrors "github.com/nexfin/nexfin/internal/shared/errors"
	"github.com/nexfin/nexfin/internal/transport/httpapi/middleware"
	"github.com/nexfin/nexfin/pkg/money"
)

// dateFormat is the wire format for calendar dates
const dateFormat = "2006-01-02"

// TransactionHandler handles transaction-related HTTP requests
type TransactionHandler struct {
	transactions *transaction.Service
}

// NewTransactionHandler creates a new transaction handler
func NewTransactionHandler(transactions *transaction.Service) *TransactionHandler {
	return &TransactionHandler{transactions: transactions}
}

// CreateTransactionRequest represents the transaction creation request.
// Amount is a decimal string; installments above one expand the draft into a
// card installment group.
type CreateTransactionRequest struct {
	Kind         string  `json:"kind"`
	Amount       string  `json:"amount"`
	Date         string  `json:"date"`
	Description  string  `json:"description"`
	CategoryID   *string `json:"category_id,omitempty"`
	Paid         bool    `json:"paid"`
	CreditCardID *string `json:"credit_card_id,omitempty"`
	Installments int     `json:"installments,omitempty"`
}

// MutateTransactionRequest represents a scoped PATCH/DELETE payload. Nil
// fields are left untouched; scope defaults to single.
type MutateTransactionRequest struct {
	EditScope       string  `json:"edit_scope,omitempty"`
	Amount          *string `json:"amount,omitempty"`
	Description     *string `json:"description,omitempty"`
	CategoryID      *string `json:"category_id,omitempty"`
	Date            *string `json:"date,omitempty"`
	Paid            *bool   `json:"paid,omitempty"`
	ReconcileTotals bool    `json:"reconcile_totals,omitempty"`
}

// TransactionResponse represents a transaction response
type TransactionResponse struct {
	ID                 string  `json:"id"`
	AccountID          string  `json:"account_id"`
	Kind               string  `json:"kind"`
	Amount             string  `json:"amount"`
	Date               string  `json:"date"`
	Description        string  `json:"description"`
	CategoryID         *string `json:"category_id,omitempty"`
	Paid               bool    `json:"paid"`
	CreditCardID       *string `json:"credit_card_id,omitempty"`
	InstallmentsGroup  *string `json:"installments_group_id,omitempty"`
	CurrentInstallment int     `json:"current_installment,omitempty"`
	Installments       int     `json:"installments,omitempty"`
	RecurrenceGroup    *string `json:"recurrence_group_id,omitempty"`
	CreatedAt          string  `json:"created_at"`
	UpdatedAt          string  `json:"updated_at"`
}

func toTransactionResponse(t *transaction.Transaction) TransactionResponse {
	resp := TransactionResponse{
		ID:                 t.ID.String(),
		AccountID:          t.AccountID.String(),
		Kind:               string(t.Kind),
		Amount:             t.Amount.String(),
		Date:               t.Date.Format(dateFormat),
		Description:        t.Description,
		Paid:               t.Paid,
		CurrentInstallment: t.CurrentInstallment,
		Installments:       t.Installments,
		CreatedAt:          t.CreatedAt.Format(timeFormat),
		UpdatedAt:          t.UpdatedAt.Format(timeFormat),
	}
	if t.CategoryID != nil {
		s := t.CategoryID.String()
		resp.CategoryID = &s
	}
	if t.CreditCardID != nil {
		s := t.CreditCardID.String()
		resp.CreditCardID = &s
	}
	if t.InstallmentsGroupID != nil {
		s := t.InstallmentsGroupID.String()
		resp.InstallmentsGroup = &s
	}
	if t.RecurrenceGroupID != nil {
		s := t.RecurrenceGroupID.String()
		resp.RecurrenceGroup = &s
	}
	return resp
}

// CreateTransaction handles POST /accounts/{accountID}/transactions
func (h *TransactionHandler) CreateTransaction(w http.ResponseWriter, r *http.Request) {
	accountID, ok := middleware.GetAccountIDFromContext(r.Context())
	if !ok {
		respondError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	var req CreateTransactionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	amount, err := money.Parse(req.Amount)
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid amount")
		return
	}

	date, err := time.Parse(dateFormat, req.Date)
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid date, expected YYYY-MM-DD")
		return
	}

	draft := &transaction.Transaction{
		AccountID:   accountID,
		Kind:        transaction.Kind(req.Kind),
		Amount:      amount,
		Date:        date,
		Description: req.Description,
		Paid:        req.Paid,
	}

	if req.CategoryID != nil {
		id, err := uuid.Parse(*req.CategoryID)
		if err != nil {
			respondError(w, http.StatusBadRequest, "invalid category ID")
			return
		}
		draft.CategoryID = &id
	}
	if req.CreditCardID != nil {
		id, err := uuid.Parse(*req.CreditCardID)
		if err != nil {
			respondError(w, http.StatusBadRequest, "invalid credit card ID")
			return
		}
		draft.CreditCardID = &id
	}

	installments := req.Installments
	if installments == 0 {
		installments = 1
	}

	created, err := h.transactions.Create(r.Context(), draft, installments)
	if err != nil {
		respondTransactionError(w, err)
		return
	}

	out := make([]TransactionResponse, 0, len(created))
	for _, t := range created {
		out = append(out, toTransactionResponse(t))
	}
	respondJSON(w, http.StatusCreated, map[string]any{"transactions": out})
}

// ListTransactions handles GET /accounts/{accountID}/transactions
func (h *TransactionHandler) ListTransactions(w http.ResponseWriter, r *http.Request) {
	accountID, ok := middleware.GetAccountIDFromContext(r.Context())
	if !ok {
		respondError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	var filter transaction.ListFilter
	if v := r.URL.Query().Get("startDate"); v != "" {
		d, err := time.Parse(dateFormat, v)
		if err != nil {
			respondError(w, http.StatusBadRequest, "invalid startDate, expected YYYY-MM-DD")
			return
		}
		filter.StartDate = &d
	}
	if v := r.URL.Query().Get("endDate"); v != "" {
		d, err := time.Parse(dateFormat, v)
		if err != nil {
			respondError(w, http.StatusBadRequest, "invalid endDate, expected YYYY-MM-DD")
			return
		}
		filter.EndDate = &d
	}
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			respondError(w, http.StatusBadRequest, "invalid limit")
			return
		}
		filter.Limit = n
	}

	txs, err := h.transactions.List(r.Context(), accountID, filter)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "failed to list transactions")
		return
	}

	out := make([]TransactionResponse, 0, len(txs))
	for _, t := range txs {
		out = append(out, toTransactionResponse(t))
	}
	respondJSON(w, http.StatusOK, map[string]any{"transactions": out})
}

// GetTransaction handles GET /transactions/{id}
func (h *TransactionHandler) GetTransaction(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid transaction ID")
		return
	}

	t, err := h.transactions.GetByID(r.Context(), id)
	if err != nil {
		respondTransactionError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, toTransactionResponse(t))
}

// UpdateTransaction handles PATCH /transactions/{id}
func (h *TransactionHandler) UpdateTransaction(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid transaction ID")
		return
	}

	var req MutateTransactionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	scope, err := parseScope(req.EditScope)
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid edit scope")
		return
	}

	change, err := parseFieldChange(req)
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	if err := h.transactions.Update(r.Context(), id, scope, change); err != nil {
		respondTransactionError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// DeleteTransaction handles DELETE /transactions/{id}
func (h *TransactionHandler) DeleteTransaction(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid transaction ID")
		return
	}

	scope := transaction.ScopeSingle
	if v := r.URL.Query().Get("editScope"); v != "" {
		scope, err = parseScope(v)
		if err != nil {
			respondError(w, http.StatusBadRequest, "invalid edit scope")
			return
		}
	}

	if err := h.transactions.Delete(r.Context(), id, scope); err != nil {
		respondTransactionError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func parseScope(s string) (transaction.EditScope, error) {
	if s == "" {
		return transaction.ScopeSingle, nil
	}
	scope := transaction.EditScope(s)
	if !scope.IsValid() {
		return "", transaction.ErrInvalidEditScope
	}
	return scope, nil
}

func parseFieldChange(req MutateTransactionRequest) (transaction.FieldChange, error) {
	change := transaction.FieldChange{
		Description:     req.Description,
		Paid:            req.Paid,
		ReconcileTotals: req.ReconcileTotals,
	}

	if req.Amount != nil {
		amount, err := money.Parse(*req.Amount)
		if err != nil {
			return change, errors.New("invalid amount")
		}
		change.Amount = &amount
	}
	if req.CategoryID != nil {
		id, err := uuid.Parse(*req.CategoryID)
		if err != nil {
			return change, errors.New("invalid category ID")
		}
		change.CategoryID = &id
	}
	if req.Date != nil {
		d, err := time.Parse(dateFormat, *req.Date)
		if err != nil {
			return change, errors.New("invalid date, expected YYYY-MM-DD")
		}
		change.Date = &d
	}
	return change, nil
}

func respondTransactionError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, transaction.ErrTransactionNotFound):
		respondError(w, http.StatusNotFound, "transaction not found")
	case errors.Is(err, transaction.ErrGroupNotFound):
		respondErrorCode(w, http.StatusNotFound, apperrors.ErrCodeGroupNotFound, "transaction group not found")
	case errors.Is(err, transaction.ErrInconsistentGroupState):
		respondErrorCode(w, http.StatusConflict, apperrors.ErrCodeInconsistentGroupState, "edit would leave the group in an inconsistent state")
	case errors.Is(err, transaction.ErrInvalidEditScope):
		respondError(w, http.StatusBadRequest, "invalid edit scope")
	case errors.Is(err, transaction.ErrInvalidInstallmentCount):
		respondErrorCode(w, http.StatusBadRequest, apperrors.ErrCodeInvalidInstallmentCount, "invalid installment count")
	case errors.Is(err, transaction.ErrCardRequired):
		respondError(w, http.StatusBadRequest, "card-linked kinds require a credit card")
	case errors.Is(err, transaction.ErrCardNotAllowed):
		respondError(w, http.StatusBadRequest, "only charge and credit kinds may reference a credit card")
	case errors.Is(err, transaction.ErrInvalidKind):
		respondError(w, http.StatusBadRequest, "invalid transaction kind")
	case errors.Is(err, transaction.ErrMissingDescription):
		respondError(w, http.StatusBadRequest, "description is required")
	case errors.Is(err, billing.ErrInvalidClosingDay):
		respondErrorCode(w, http.StatusUnprocessableEntity, apperrors.ErrCodeInvalidCardConfiguration, "credit card has an invalid closing day")
	default:
		respondError(w, http.StatusInternalServerError, "internal server error")
	}
}
