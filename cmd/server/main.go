package main

import (
	"net/http"

	"paylink-be/internal/audit"
	"paylink-be/internal/config"
	"paylink-be/internal/db"
	"paylink-be/internal/invoice"
	"paylink-be/internal/logger"
	"paylink-be/internal/middleware"
	"paylink-be/internal/payment"
	"paylink-be/internal/payment/webhook"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

func main() {
	cfg := config.LoadConfig()

	logger.Init(cfg.AppEnv)
	defer logger.Sync()

	database := db.InitDB(cfg)
	defer database.Close()

	invoiceRepo := invoice.NewRepository(database)
	auditLog := audit.NewLog(database)

	gateway := payment.NewCrossPayGateway(cfg, invoiceRepo)
	verifier := payment.NewVerifier(cfg, invoiceRepo, auditLog)
	handler := webhook.NewHandler(gateway, verifier)

	r := chi.NewRouter()
	r.Use(logger.RequestIDMiddleware)
	r.Use(logger.LoggingMiddleware)
	r.Use(middleware.RateLimitMiddleware)

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})

	r.Post("/pay", handler.CheckoutHandler)

	// The processor may deliver the result as a POST webhook or by
	// redirecting the payer back with query parameters.
	r.Get("/payment/callback", handler.CallbackHandler)
	r.Post("/payment/callback", handler.CallbackHandler)

	logger.L().Info("server listening", zap.String("port", cfg.AppPort))
	if err := http.ListenAndServe(":"+cfg.AppPort, r); err != nil {
		logger.L().Fatal("server stopped", zap.Error(err))
	}
}
