package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/nexfin/nexfin/internal/platform/category"
	"github.com/nexfin/nexfin/internal/platform/transaction"
	"github.com/nexfin/nexfin/internal/transport/httpapi/middleware"
)

// CategoryHandler handles category-related HTTP requests
type CategoryHandler struct {
	categories *category.Service
}

// NewCategoryHandler creates a new category handler
func NewCategoryHandler(categories *category.Service) *CategoryHandler {
	return &CategoryHandler{categories: categories}
}

// CategoryRequest represents a category create/update request
type CategoryRequest struct {
	Name string `json:"name"`
	Kind string `json:"kind"`
}

// CategoryResponse represents a category response
type CategoryResponse struct {
	ID        string `json:"id"`
	AccountID string `json:"account_id"`
	Name      string `json:"name"`
	Kind      string `json:"kind"`
	CreatedAt string `json:"created_at"`
	UpdatedAt string `json:"updated_at"`
}

func toCategoryResponse(c *category.Category) CategoryResponse {
	return CategoryResponse{
		ID:        c.ID.String(),
		AccountID: c.AccountID.String(),
		Name:      c.Name,
		Kind:      string(c.Kind),
		CreatedAt: c.CreatedAt.Format(timeFormat),
		UpdatedAt: c.UpdatedAt.Format(timeFormat),
	}
}

// CreateCategory handles POST /accounts/{accountID}/categories
func (h *CategoryHandler) CreateCategory(w http.ResponseWriter, r *http.Request) {
	accountID, ok := middleware.GetAccountIDFromContext(r.Context())
	if !ok {
		respondError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	var req CategoryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	c, err := h.categories.Create(r.Context(), &category.Category{
		AccountID: accountID,
		Name:      req.Name,
		Kind:      transaction.Kind(req.Kind),
	})
	if err != nil {
		respondCategoryError(w, err)
		return
	}

	respondJSON(w, http.StatusCreated, toCategoryResponse(c))
}

// ListCategories handles GET /accounts/{accountID}/categories
func (h *CategoryHandler) ListCategories(w http.ResponseWriter, r *http.Request) {
	accountID, ok := middleware.GetAccountIDFromContext(r.Context())
	if !ok {
		respondError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	categories, err := h.categories.List(r.Context(), accountID)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "failed to list categories")
		return
	}

	out := make([]CategoryResponse, 0, len(categories))
	for _, c := range categories {
		out = append(out, toCategoryResponse(c))
	}
	respondJSON(w, http.StatusOK, map[string]any{"categories": out})
}

// GetCategory handles GET /categories/{id}
func (h *CategoryHandler) GetCategory(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid category ID")
		return
	}

	c, err := h.categories.GetByID(r.Context(), id)
	if err != nil {
		respondCategoryError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, toCategoryResponse(c))
}

// UpdateCategory handles PUT /categories/{id}
func (h *CategoryHandler) UpdateCategory(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid category ID")
		return
	}

	var req CategoryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	c, err := h.categories.Update(r.Context(), &category.Category{
		ID:   id,
		Name: req.Name,
		Kind: transaction.Kind(req.Kind),
	})
	if err != nil {
		respondCategoryError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, toCategoryResponse(c))
}

// DeleteCategory handles DELETE /categories/{id}
func (h *CategoryHandler) DeleteCategory(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid category ID")
		return
	}

	if err := h.categories.Delete(r.Context(), id); err != nil {
		respondCategoryError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func respondCategoryError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, category.ErrCategoryNotFound):
		respondError(w, http.StatusNotFound, "category not found")
	case errors.Is(err, category.ErrDuplicateName):
		respondError(w, http.StatusConflict, "category name already exists")
	case errors.Is(err, category.ErrMissingName):
		respondError(w, http.StatusBadRequest, "category name is required")
	case errors.Is(err, category.ErrInvalidKind):
		respondError(w, http.StatusBadRequest, "category kind must be income or expense")
	case errors.Is(err, category.ErrInvalidAccountID):
		respondError(w, http.StatusBadRequest, "invalid account ID")
	default:
		respondError(w, http.StatusInternalServerError, "internal server error")
	}
}
