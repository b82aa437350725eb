package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/nexfin/nexfin/internal/platform/billing"
	"github.com/nexfin/nexfin/internal/platform/card"
	apperrors "github.com/nexfin/nexfin/internal/shared/errors"
	"github.com/nexfin/nexfin/internal/transport/httpapi/middleware"
	"github.com/nexfin/nexfin/pkg/money"
	"github.com/nexfin/nexfin/pkg/period"
)

// CardHandler handles credit card and invoice HTTP requests
type CardHandler struct {
	cards *card.Service
}

// NewCardHandler creates a new card handler
func NewCardHandler(cards *card.Service) *CardHandler {
	return &CardHandler{cards: cards}
}

// CardRequest represents a card create/update request
type CardRequest struct {
	Name       string `json:"name"`
	Brand      string `json:"brand,omitempty"`
	Limit      string `json:"limit"`
	ClosingDay int    `json:"closing_day"`
	DueDay     int    `json:"due_day"`
}

// CardResponse represents a card response
type CardResponse struct {
	ID         string `json:"id"`
	AccountID  string `json:"account_id"`
	Name       string `json:"name"`
	Brand      string `json:"brand,omitempty"`
	Limit      string `json:"limit"`
	ClosingDay int    `json:"closing_day"`
	DueDay     int    `json:"due_day"`
	CreatedAt  string `json:"created_at"`
	UpdatedAt  string `json:"updated_at"`
}

// InvoiceResponse represents a derived invoice response
type InvoiceResponse struct {
	CreditCardID string                `json:"credit_card_id"`
	Month        string                `json:"month"`
	PeriodStart  string                `json:"period_start"`
	PeriodEnd    string                `json:"period_end"`
	DueDate      string                `json:"due_date"`
	Total        string                `json:"total"`
	Status       string                `json:"status"`
	PaidAt       *string               `json:"paid_at,omitempty"`
	Transactions []TransactionResponse `json:"transactions"`
}

// PaymentRequest represents an invoice payment request
type PaymentRequest struct {
	Amount string  `json:"amount"`
	PaidAt *string `json:"paid_at,omitempty"`
}

// PaymentResponse represents an invoice payment response
type PaymentResponse struct {
	ID           string `json:"id"`
	CreditCardID string `json:"credit_card_id"`
	Month        string `json:"month"`
	Amount       string `json:"amount"`
	PaidAt       string `json:"paid_at"`
}

func toCardResponse(c *card.CreditCard) CardResponse {
	return CardResponse{
		ID:         c.ID.String(),
		AccountID:  c.AccountID.String(),
		Name:       c.Name,
		Brand:      c.Brand,
		Limit:      c.Limit.String(),
		ClosingDay: c.ClosingDay,
		DueDay:     c.DueDay,
		CreatedAt:  c.CreatedAt.Format(timeFormat),
		UpdatedAt:  c.UpdatedAt.Format(timeFormat),
	}
}

func toInvoiceResponse(inv *card.Invoice) InvoiceResponse {
	resp := InvoiceResponse{
		CreditCardID: inv.CreditCardID.String(),
		Month:        inv.Month.String(),
		PeriodStart:  inv.PeriodStart.Format(dateFormat),
		PeriodEnd:    inv.PeriodEnd.Format(dateFormat),
		DueDate:      inv.DueDate.Format(dateFormat),
		Total:        inv.Total.String(),
		Status:       string(inv.Status),
		Transactions: make([]TransactionResponse, 0, len(inv.Transactions)),
	}
	if inv.PaidAt != nil {
		s := inv.PaidAt.Format(timeFormat)
		resp.PaidAt = &s
	}
	for _, t := range inv.Transactions {
		resp.Transactions = append(resp.Transactions, toTransactionResponse(t))
	}
	return resp
}

// CreateCard handles POST /accounts/{accountID}/credit-cards
func (h *CardHandler) CreateCard(w http.ResponseWriter, r *http.Request) {
	accountID, ok := middleware.GetAccountIDFromContext(r.Context())
	if !ok {
		respondError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	c, err := decodeCardRequest(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	c.AccountID = accountID

	created, err := h.cards.Create(r.Context(), c)
	if err != nil {
		respondCardError(w, err)
		return
	}

	respondJSON(w, http.StatusCreated, toCardResponse(created))
}

// ListCards handles GET /accounts/{accountID}/credit-cards
func (h *CardHandler) ListCards(w http.ResponseWriter, r *http.Request) {
	accountID, ok := middleware.GetAccountIDFromContext(r.Context())
	if !ok {
		respondError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	cards, err := h.cards.List(r.Context(), accountID)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "failed to list credit cards")
		return
	}

	out := make([]CardResponse, 0, len(cards))
	for _, c := range cards {
		out = append(out, toCardResponse(c))
	}
	respondJSON(w, http.StatusOK, map[string]any{"credit_cards": out})
}

// GetCard handles GET /credit-cards/{id}
func (h *CardHandler) GetCard(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid credit card ID")
		return
	}

	c, err := h.cards.GetByID(r.Context(), id)
	if err != nil {
		respondCardError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, toCardResponse(c))
}

// UpdateCard handles PUT /credit-cards/{id}
func (h *CardHandler) UpdateCard(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid credit card ID")
		return
	}

	c, err := decodeCardRequest(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	c.ID = id

	updated, err := h.cards.Update(r.Context(), c)
	if err != nil {
		respondCardError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, toCardResponse(updated))
}

// DeleteCard handles DELETE /credit-cards/{id}
func (h *CardHandler) DeleteCard(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid credit card ID")
		return
	}

	if err := h.cards.Delete(r.Context(), id); err != nil {
		respondCardError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// GetAccountInvoices handles GET /accounts/{accountID}/credit-card-invoices?month=YYYY-MM
func (h *CardHandler) GetAccountInvoices(w http.ResponseWriter, r *http.Request) {
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

	invoices, err := h.cards.AccountInvoices(r.Context(), accountID, month)
	if err != nil {
		respondCardError(w, err)
		return
	}

	out := make([]InvoiceResponse, 0, len(invoices))
	for _, inv := range invoices {
		out = append(out, toInvoiceResponse(inv))
	}
	respondJSON(w, http.StatusOK, map[string]any{"invoices": out})
}

// PayInvoice handles POST /credit-cards/{id}/invoices/{month}/payment
func (h *CardHandler) PayInvoice(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid credit card ID")
		return
	}

	month, err := period.ParseMonthKey(chi.URLParam(r, "month"))
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid month, expected YYYY-MM")
		return
	}

	var req PaymentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	amount, err := money.Parse(req.Amount)
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid amount")
		return
	}

	paidAt := time.Now().UTC()
	if req.PaidAt != nil {
		paidAt, err = time.Parse(timeFormat, *req.PaidAt)
		if err != nil {
			respondError(w, http.StatusBadRequest, "invalid paid_at timestamp")
			return
		}
	}

	p, err := h.cards.PayInvoice(r.Context(), id, month, amount, paidAt)
	if err != nil {
		respondCardError(w, err)
		return
	}

	respondJSON(w, http.StatusCreated, PaymentResponse{
		ID:           p.ID.String(),
		CreditCardID: p.CreditCardID.String(),
		Month:        p.Month.String(),
		Amount:       p.Amount.String(),
		PaidAt:       p.PaidAt.Format(timeFormat),
	})
}

func decodeCardRequest(r *http.Request) (*card.CreditCard, error) {
	var req CardRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		return nil, errors.New("invalid request body")
	}

	limit := money.Cents(0)
	if req.Limit != "" {
		var err error
		limit, err = money.Parse(req.Limit)
		if err != nil {
			return nil, errors.New("invalid limit")
		}
	}

	return &card.CreditCard{
		Name:       req.Name,
		Brand:      req.Brand,
		Limit:      limit,
		ClosingDay: req.ClosingDay,
		DueDay:     req.DueDay,
	}, nil
}


func respondCardError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, card.ErrCardNotFound):
		respondError(w, http.StatusNotFound, "credit card not found")
	case errors.Is(err, card.ErrDuplicatePayment):
		respondError(w, http.StatusConflict, "invoice already paid for this month")
	case errors.Is(err, card.ErrInvalidPayment):
		respondError(w, http.StatusBadRequest, "payment amount must be positive")
	case errors.Is(err, card.ErrMissingName):
		respondError(w, http.StatusBadRequest, "card name is required")
	case errors.Is(err, card.ErrInvalidLimit):
		respondError(w, http.StatusBadRequest, "card limit cannot be negative")
	case errors.Is(err, card.ErrInvalidRange):
		respondError(w, http.StatusBadRequest, "invalid month range")
	case errors.Is(err, billing.ErrInvalidClosingDay):
		respondErrorCode(w, http.StatusBadRequest, apperrors.ErrCodeInvalidCardConfiguration, "closing day must be between 1 and 31")
	case errors.Is(err, billing.ErrInvalidDueDay):
		respondErrorCode(w, http.StatusBadRequest, apperrors.ErrCodeInvalidCardConfiguration, "due day must be between 1 and 31")
	default:
		respondError(w, http.StatusInternalServerError, "internal server error")
	}
}
