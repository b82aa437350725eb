package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/nexfin/nexfin/internal/platform/debt"
	"github.com/nexfin/nexfin/internal/transport/httpapi/middleware"
	"github.com/nexfin/nexfin/pkg/money"
)

// DebtHandler handles debt-related HTTP requests
type DebtHandler struct {
	debts *debt.Service
}

// NewDebtHandler creates a new debt handler
func NewDebtHandler(debts *debt.Service) *DebtHandler {
	return &DebtHandler{debts: debts}
}

// DebtRequest represents a debt create/update request
type DebtRequest struct {
	Name         string  `json:"name"`
	Balance      string  `json:"balance"`
	InterestRate int     `json:"interest_rate_bps"`
	RatePeriod   string  `json:"rate_period"`
	TargetDate   *string `json:"target_date,omitempty"`
	Notes        string  `json:"notes,omitempty"`
}

// DebtResponse represents a debt response
type DebtResponse struct {
	ID           string  `json:"id"`
	AccountID    string  `json:"account_id"`
	Name         string  `json:"name"`
	Balance      string  `json:"balance"`
	InterestRate int     `json:"interest_rate_bps"`
	RatePeriod   string  `json:"rate_period"`
	TargetDate   *string `json:"target_date,omitempty"`
	Notes        string  `json:"notes,omitempty"`
	CreatedAt    string  `json:"created_at"`
	UpdatedAt    string  `json:"updated_at"`
}

func toDebtResponse(d *debt.Debt) DebtResponse {
	resp := DebtResponse{
		ID:           d.ID.String(),
		AccountID:    d.AccountID.String(),
		Name:         d.Name,
		Balance:      d.Balance.String(),
		InterestRate: d.InterestRate,
		RatePeriod:   string(d.RatePeriod),
		Notes:        d.Notes,
		CreatedAt:    d.CreatedAt.Format(timeFormat),
		UpdatedAt:    d.UpdatedAt.Format(timeFormat),
	}
	if d.TargetDate != nil {
		s := d.TargetDate.Format(dateFormat)
		resp.TargetDate = &s
	}
	return resp
}

// CreateDebt handles POST /accounts/{accountID}/debts
func (h *DebtHandler) CreateDebt(w http.ResponseWriter, r *http.Request) {
	accountID, ok := middleware.GetAccountIDFromContext(r.Context())
	if !ok {
		respondError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	d, err := decodeDebtRequest(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	d.AccountID = accountID

	created, err := h.debts.Create(r.Context(), d)
	if err != nil {
		respondDebtError(w, err)
		return
	}

	respondJSON(w, http.StatusCreated, toDebtResponse(created))
}

// ListDebts handles GET /accounts/{accountID}/debts
func (h *DebtHandler) ListDebts(w http.ResponseWriter, r *http.Request) {
	accountID, ok := middleware.GetAccountIDFromContext(r.Context())
	if !ok {
		respondError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	debts, err := h.debts.List(r.Context(), accountID)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "failed to list debts")
		return
	}

	out := make([]DebtResponse, 0, len(debts))
	for _, d := range debts {
		out = append(out, toDebtResponse(d))
	}
	respondJSON(w, http.StatusOK, map[string]any{"debts": out})
}

// GetDebt handles GET /debts/{id}
func (h *DebtHandler) GetDebt(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid debt ID")
		return
	}

	d, err := h.debts.GetByID(r.Context(), id)
	if err != nil {
		respondDebtError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, toDebtResponse(d))
}

// UpdateDebt handles PUT /debts/{id}
func (h *DebtHandler) UpdateDebt(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid debt ID")
		return
	}

	d, err := decodeDebtRequest(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	d.ID = id

	updated, err := h.debts.Update(r.Context(), d)
	if err != nil {
		respondDebtError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, toDebtResponse(updated))
}

// DeleteDebt handles DELETE /debts/{id}
func (h *DebtHandler) DeleteDebt(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid debt ID")
		return
	}

	if err := h.debts.Delete(r.Context(), id); err != nil {
		respondDebtError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func decodeDebtRequest(r *http.Request) (*debt.Debt, error) {
	var req DebtRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		return nil, errors.New("invalid request body")
	}

	balance, err := money.Parse(req.Balance)
	if err != nil {
		return nil, errors.New("invalid balance")
	}

	d := &debt.Debt{
		Name:         req.Name,
		Balance:      balance,
		InterestRate: req.InterestRate,
		RatePeriod:   debt.RatePeriod(req.RatePeriod),
		Notes:        req.Notes,
	}

	if req.TargetDate != nil {
		t, err := time.Parse(dateFormat, *req.TargetDate)
		if err != nil {
			return nil, errors.New("invalid target date, expected YYYY-MM-DD")
		}
		d.TargetDate = &t
	}
	return d, nil
}

func respondDebtError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, debt.ErrDebtNotFound):
		respondError(w, http.StatusNotFound, "debt not found")
	case errors.Is(err, debt.ErrMissingName):
		respondError(w, http.StatusBadRequest, "debt name is required")
	case errors.Is(err, debt.ErrNegativeBalance):
		respondError(w, http.StatusBadRequest, "debt balance cannot be negative")
	case errors.Is(err, debt.ErrInvalidRate):
		respondError(w, http.StatusBadRequest, "interest rate cannot be negative")
	case errors.Is(err, debt.ErrInvalidRatePeriod):
		respondError(w, http.StatusBadRequest, "rate period must be monthly or yearly")
	default:
		respondError(w, http.StatusInternalServerError, "internal server error")
	}
}
