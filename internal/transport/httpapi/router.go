// Package httpapi wires the chi router, handlers, and middleware that make
// up the JSON API surface.
package httpapi

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/nexfin/nexfin/internal/transport/httpapi/handler"
	"github.com/nexfin/nexfin/internal/transport/httpapi/middleware"
	"github.com/nexfin/nexfin/pkg/logger"
)

// Config holds router configuration
type Config struct {
	Logger         *logger.Logger
	AllowedOrigins []string

	AccountHandler     *handler.AccountHandler
	CategoryHandler    *handler.CategoryHandler
	TransactionHandler *handler.TransactionHandler
	CardHandler        *handler.CardHandler
	FixedHandler       *handler.FixedHandler
	DebtHandler        *handler.DebtHandler
	HealthHandler      *handler.HealthHandler

	JWTMiddleware       func(http.Handler) http.Handler
	OwnershipMiddleware func(http.Handler) http.Handler
}

// NewRouter creates a new HTTP router
func NewRouter(cfg Config) *chi.Mux {
	r := chi.NewRouter()

	// Global middleware
	r.Use(chimiddleware.RequestID)
	r.Use(middleware.Recovery(cfg.Logger))
	r.Use(middleware.Logger(cfg.Logger))
	r.Use(middleware.CORS(cfg.AllowedOrigins))
	r.Use(chimiddleware.Compress(5))
	r.Use(middleware.RateLimit()) // Rate limiting: 100 req/s with burst of 20

	// Health check endpoints (no authentication required)
	r.Get("/health", handler.GetHealth)
	r.Get("/health/live", handler.GetLiveness)
	if cfg.HealthHandler != nil {
		r.Get("/health/ready", cfg.HealthHandler.GetReadiness)
		r.Get("/health/detailed", cfg.HealthHandler.GetHealthDetailed)
	}

	// API routes (all JWT-protected)
	r.Route("/api/v1", func(r chi.Router) {
		if cfg.JWTMiddleware == nil {
			return
		}

		r.Group(func(r chi.Router) {
			r.Use(cfg.JWTMiddleware)

			// Account routes
			r.Post("/accounts", cfg.AccountHandler.CreateAccount)
			r.Get("/accounts", cfg.AccountHandler.ListAccounts)
			r.Get("/accounts/{id}", cfg.AccountHandler.GetAccount)
			r.Put("/accounts/{id}", cfg.AccountHandler.UpdateAccount)
			r.Delete("/accounts/{id}", cfg.AccountHandler.DeleteAccount)

			// Account-scoped routes, gated on ownership
			r.Route("/accounts/{accountID}", func(r chi.Router) {
				if cfg.OwnershipMiddleware != nil {
					r.Use(cfg.OwnershipMiddleware)
				}

				r.Post("/categories", cfg.CategoryHandler.CreateCategory)
				r.Get("/categories", cfg.CategoryHandler.ListCategories)

				r.Post("/transactions", cfg.TransactionHandler.CreateTransaction)
				r.Get("/transactions", cfg.TransactionHandler.ListTransactions)

				r.Post("/credit-cards", cfg.CardHandler.CreateCard)
				r.Get("/credit-cards", cfg.CardHandler.ListCards)
				r.Get("/credit-card-invoices", cfg.CardHandler.GetAccountInvoices)

				r.Post("/monthly-fixed", cfg.FixedHandler.CreateFixed)
				r.Get("/monthly-fixed", cfg.FixedHandler.ListFixed)
				r.Get("/monthly-fixed/materialized", cfg.FixedHandler.GetMaterialized)
				r.Post("/monthly-fixed/process", cfg.FixedHandler.ProcessMonth)

				r.Post("/debts", cfg.DebtHandler.CreateDebt)
				r.Get("/debts", cfg.DebtHandler.ListDebts)
			})

			// Entity routes
			r.Get("/categories/{id}", cfg.CategoryHandler.GetCategory)
			r.Put("/categories/{id}", cfg.CategoryHandler.UpdateCategory)
			r.Delete("/categories/{id}", cfg.CategoryHandler.DeleteCategory)

			r.Get("/transactions/{id}", cfg.TransactionHandler.GetTransaction)
			r.Patch("/transactions/{id}", cfg.TransactionHandler.UpdateTransaction)
			r.Delete("/transactions/{id}", cfg.TransactionHandler.DeleteTransaction)

			r.Get("/credit-cards/{id}", cfg.CardHandler.GetCard)
			r.Put("/credit-cards/{id}", cfg.CardHandler.UpdateCard)
			r.Delete("/credit-cards/{id}", cfg.CardHandler.DeleteCard)
			r.Post("/credit-cards/{id}/invoices/{month}/payment", cfg.CardHandler.PayInvoice)

			r.Get("/monthly-fixed/{id}", cfg.FixedHandler.GetFixed)
			r.Put("/monthly-fixed/{id}", cfg.FixedHandler.UpdateFixed)
			r.Delete("/monthly-fixed/{id}", cfg.FixedHandler.DeleteFixed)

			r.Get("/debts/{id}", cfg.DebtHandler.GetDebt)
			r.Put("/debts/{id}", cfg.DebtHandler.UpdateDebt)
			r.Delete("/debts/{id}", cfg.DebtHandler.DeleteDebt)
		})
	})

	return r
}
