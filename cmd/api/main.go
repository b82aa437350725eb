package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/nexfin/nexfin/internal/infra/postgres"
	infraRedis "github.com/nexfin/nexfin/internal/infra/redis"
	"github.com/nexfin/nexfin/internal/platform/account"
	"github.com/nexfin/nexfin/internal/platform/card"
	"github.com/nexfin/nexfin/internal/platform/category"
	"github.com/nexfin/nexfin/internal/platform/debt"
	"github.com/nexfin/nexfin/internal/platform/fixed"
	"github.com/nexfin/nexfin/internal/platform/transaction"
	"github.com/nexfin/nexfin/internal/transport/httpapi"
	"github.com/nexfin/nexfin/internal/transport/httpapi/handler"
	"github.com/nexfin/nexfin/internal/transport/httpapi/middleware"
	"github.com/nexfin/nexfin/pkg/config"
	"github.com/nexfin/nexfin/pkg/logger"

	"github.com/redis/go-redis/v9"
)

func main() {
	// Create context that listens for termination signals
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	// Initialize logger
	log := logger.NewDefault(cfg.Env)
	log.Info("Starting NexFin API server",
		"env", cfg.Env,
		"port", cfg.Port,
	)

	// Initialize database connection pool
	dbCfg := postgres.Config{
		URL: cfg.DatabaseURL,
	}
	db, err := postgres.NewPool(ctx, dbCfg)
	if err != nil {
		log.Error("Failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer db.Close()
	log.Info("Database connection established")

	// Initialize Redis client for invoice caching. The cache is optional:
	// when Redis is unreachable invoices are recomputed on every request.
	var invoiceCache card.InvoiceCache
	redisClient := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisURL,
		Password: cfg.RedisPassword,
		DB:       0,
	})
	defer redisClient.Close()

	if err := redisClient.Ping(ctx).Err(); err != nil {
		log.Warn("Redis unavailable, invoice caching disabled", "error", err)
	} else {
		ttl := time.Duration(cfg.InvoiceCacheTTLSeconds) * time.Second
		invoiceCache = infraRedis.NewInvoiceCacheWithTTL(redisClient, ttl, log)
		log.Info("Redis connection established", "invoice_cache_ttl", ttl)
	}

	// Initialize repositories
	accountRepo := postgres.NewAccountRepository(db.Pool)
	categoryRepo := postgres.NewCategoryRepository(db.Pool)
	transactionRepo := postgres.NewTransactionRepository(db.Pool)
	cardRepo := postgres.NewCardRepository(db.Pool)
	fixedRepo := postgres.NewFixedRepository(db.Pool)
	debtRepo := postgres.NewDebtRepository(db.Pool)

	// Initialize services. The card service doubles as the closing-day
	// resolver the transaction service uses to expand installments.
	accountSvc := account.NewService(accountRepo)
	categorySvc := category.NewService(categoryRepo)
	cardSvc := card.NewService(cardRepo, transactionRepo, invoiceCache)
	transactionSvc := transaction.NewService(transactionRepo, cardSvc)
	fixedSvc := fixed.NewService(fixedRepo, transactionRepo)
	debtSvc := debt.NewService(debtRepo)

	// Initialize HTTP handlers
	accountHandler := handler.NewAccountHandler(accountSvc)
	categoryHandler := handler.NewCategoryHandler(categorySvc)
	transactionHandler := handler.NewTransactionHandler(transactionSvc)
	cardHandler := handler.NewCardHandler(cardSvc)
	fixedHandler := handler.NewFixedHandler(fixedSvc)
	debtHandler := handler.NewDebtHandler(debtSvc)
	healthHandler := handler.NewHealthHandler(db)

	// Create middleware. Tokens are minted by the external identity
	// provider; we only verify them against the shared secret.
	verifier := middleware.NewTokenVerifier(cfg.JWTSecret)
	jwtMiddleware := middleware.JWTMiddleware(verifier)
	ownershipMiddleware := middleware.AccountOwnership(accountSvc)

	// Determine allowed origins for CORS
	allowedOrigins := []string{"http://localhost:5173", "http://localhost:5174"} // Vite ports
	if cfg.IsProduction() {
		// In production, read from environment variable
		if origins := os.Getenv("ALLOWED_ORIGINS"); origins != "" {
			allowedOrigins = []string{origins}
		}
	}

	// Create HTTP router
	routerCfg := httpapi.Config{
		Logger:              log,
		AllowedOrigins:      allowedOrigins,
		AccountHandler:      accountHandler,
		CategoryHandler:     categoryHandler,
		TransactionHandler:  transactionHandler,
		CardHandler:         cardHandler,
		FixedHandler:        fixedHandler,
		DebtHandler:         debtHandler,
		HealthHandler:       healthHandler,
		JWTMiddleware:       jwtMiddleware,
		OwnershipMiddleware: ownershipMiddleware,
	}
	r := httpapi.NewRouter(routerCfg)

	// Create HTTP server
	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in a goroutine
	go func() {
		log.Info("Server listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("Server failed to start", "error", err)
			os.Exit(1)
		}
	}()

	// Wait for termination signal
	<-ctx.Done()
	log.Info("Shutdown signal received")

	// Graceful shutdown with timeout
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("Server shutdown failed", "error", err)
		os.Exit(1)
	}

	log.Info("Server stopped gracefully")
}
