package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/nexfin/nexfin/internal/platform/fixed"
	"github.com/nexfin/nexfin/internal/platform/transaction"
	apperrors "github.com/nexfin/nexfin/internal/shared/errors"
	"github.com/nexfin/nexfin/internal/transport/httpapi/middleware"
	"github.com/nexfin/nexfin/pkg/money"
	"github.com/nexfin/nexfin/pkg/period"
)

// FixedHandler handles fixed cashflow HTTP requests
type FixedHandler struct {
	fixeds *fixed.Service
}

// NewFixedHandler creates a new fixed cashflow handler
func NewFixedHandler(fixeds *fixed.Service) *FixedHandler {
	return &FixedHandler{fixeds: fixeds}
}

// FixedRequest represents a fixed cashflow create/update request
type FixedRequest struct {
	Description string  `json:"description"`
	Amount      string  `json:"amount"`
	Kind        string  `json:"kind"`
	DueDay      *int    `json:"due_day,omitempty"`
	StartMonth  string  `json:"start_month"`
	EndMonth    *string `json:"end_month,omitempty"`
}

// FixedResponse represents a fixed cashflow response
type FixedResponse struct {
	ID          string  `json:"id"`
	AccountID   string  `json:"account_id"`
	Description string  `json:"description"`
	Amount      string  `json:"amount"`
	Kind        string  `json:"kind"`
	DueDay      *int    `json:"due_day,omitempty"`
	StartMonth  string  `json:"start_month"`
	EndMonth    *string `json:"end_month,omitempty"`
	CreatedAt   string  `json:"created_at"`
	UpdatedAt   string  `json:"updated_at"`
}

// OccurrenceResponse represents one materialized occurrence
type OccurrenceResponse struct {
	Date          string              `json:"date"`
	FromException bool                `json:"from_exception"`
	Transaction   TransactionResponse `json:"transaction"`
}

func toFixedResponse(f *fixed.FixedCashflow) FixedResponse {
	resp := FixedResponse{
		ID:          f.ID.String(),
		AccountID:   f.AccountID.String(),
		Description: f.Description,
		Amount:      f.Amount.String(),
		Kind:        string(f.Kind),
		DueDay:      f.DueDay,
		StartMonth:  f.StartMonth.String(),
		CreatedAt:   f.CreatedAt.Format(timeFormat),
		UpdatedAt:   f.UpdatedAt.Format(timeFormat),
	}
	if f.EndMonth != nil {
		s := f.EndMonth.String()
		resp.EndMonth = &s
	}
	return resp
}

// CreateFixed handles POST /accounts/{accountID}/monthly-fixed
func (h *FixedHandler) CreateFixed(w http.ResponseWriter, r *http.Request) {
	accountID, ok := middleware.GetAccountIDFromContext(r.Context())
	if !ok {
		respondError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	f, err := decodeFixedRequest(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	f.AccountID = accountID

	created, err := h.fixeds.Create(r.Context(), f)
	if err != nil {
		respondFixedError(w, err)
		return
	}

	respondJSON(w, http.StatusCreated, toFixedResponse(created))
}

// ListFixed handles GET /accounts/{accountID}/monthly-fixed
func (h *FixedHandler) ListFixed(w http.ResponseWriter, r *http.Request) {
	accountID, ok := middleware.GetAccountIDFromContext(r.Context())
	if !ok {
		respondError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	defs, err := h.fixeds.List(r.Context(), accountID)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "failed to list fixed cashflows")
		return
	}

	out := make([]FixedResponse, 0, len(defs))
	for _, f := range defs {
		out = append(out, toFixedResponse(f))
	}
	respondJSON(w, http.StatusOK, map[string]any{"fixed_cashflows": out})
}

// GetFixed handles GET /monthly-fixed/{id}
func (h *FixedHandler) GetFixed(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid fixed cashflow ID")
		return
	}

	f, err := h.fixeds.GetByID(r.Context(), id)
	if err != nil {
		respondFixedError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, toFixedResponse(f))
}

// UpdateFixed handles PUT /monthly-fixed/{id}
func (h *FixedHandler) UpdateFixed(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid fixed cashflow ID")
		return
	}

	f, err := decodeFixedRequest(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	f.ID = id

	updated, err := h.fixeds.Update(r.Context(), f)
	if err != nil {
		respondFixedError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, toFixedResponse(updated))
}

// DeleteFixed handles DELETE /monthly-fixed/{id}
func (h *FixedHandler) DeleteFixed(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid fixed cashflow ID")
		return
	}

	if err := h.fixeds.Delete(r.Context(), id); err != nil {
		respondFixedError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// GetMaterialized handles GET /accounts/{accountID}/monthly-fixed/materialized?month=YYYY-MM
func (h *FixedHandler) GetMaterialized(w http.ResponseWriter, r *http.Request) {
	accountID, ok := middleware.GetAccountIDFromContext(r.Context())
	if !ok {
		respondError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	month, err := period.ParseMonthKey(r.URL.Query().Get("month"))
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid month, expected YYYY-MM")
		return
	}

	occurrences, err := h.fixeds.MaterializeMonth(r.Context(), accountID, month)
	if err != nil {
		respondFixedError(w, err)
		return
	}

	out := make([]OccurrenceResponse, 0, len(occurrences))
	for _, occ := range occurrences {
		out = append(out, OccurrenceResponse{
			Date:          occ.Date.Format(dateFormat),
			FromException: occ.FromException,
			Transaction:   toTransactionResponse(occ.Transaction),
		})
	}
	respondJSON(w, http.StatusOK, map[string]any{"occurrences": out})
}

// ProcessMonth handles POST /accounts/{accountID}/monthly-fixed/process?month=YYYY-MM
func (h *FixedHandler) ProcessMonth(w http.ResponseWriter, r *http.Request) {
	accountID, ok := middleware.GetAccountIDFromContext(r.Context())
	if !ok {
		respondError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	month, err := period.ParseMonthKey(r.URL.Query().Get("month"))
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid month, expected YYYY-MM")
		return
	}

	promoted, err := h.fixeds.ProcessMonth(r.Context(), accountID, month)
	if err != nil {
		respondFixedError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]any{"promoted": promoted})
}

func decodeFixedRequest(r *http.Request) (*fixed.FixedCashflow, error) {
	var req FixedRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		return nil, errors.New("invalid request body")
	}

	amount, err := money.Parse(req.Amount)
	if err != nil {
		return nil, errors.New("invalid amount")
	}

	startMonth, err := period.ParseMonthKey(req.StartMonth)
	if err != nil {
		return nil, errors.New("invalid start month, expected YYYY-MM")
	}

	f := &fixed.FixedCashflow{
		Description: req.Description,
		Amount:      amount,
		Kind:        transaction.Kind(req.Kind),
		DueDay:      req.DueDay,
		StartMonth:  startMonth,
	}

	if req.EndMonth != nil {
		end, err := period.ParseMonthKey(*req.EndMonth)
		if err != nil {
			return nil, errors.New("invalid end month, expected YYYY-MM")
		}
		f.EndMonth = &end
	}
	return f, nil
}

func respondFixedError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, fixed.ErrFixedNotFound):
		respondError(w, http.StatusNotFound, "fixed cashflow not found")
	case errors.Is(err, fixed.ErrMissingDescription):
		respondError(w, http.StatusBadRequest, "description is required")
	case errors.Is(err, fixed.ErrInvalidKind):
		respondError(w, http.StatusBadRequest, "kind must be income or expense")
	case errors.Is(err, fixed.ErrInvalidDueDay):
		respondError(w, http.StatusBadRequest, "due day must be between 1 and 31")
	case errors.Is(err, fixed.ErrInvalidActiveRange):
		respondError(w, http.StatusBadRequest, "end month cannot precede start month")
	case errors.Is(err, fixed.ErrAmbiguousOccurrence):
		respondErrorCode(w, http.StatusConflict, apperrors.ErrCodeAmbiguousOccurrence, "multiple exception rows exist for the same occurrence date")
	default:
		respondError(w, http.StatusInternalServerError, "internal server error")
	}
}
