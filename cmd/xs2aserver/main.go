package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/psd2gate/xs2a-payment-engine/internal/application"
	"github.com/psd2gate/xs2a-payment-engine/internal/application/authorisation"
	"github.com/psd2gate/xs2a-payment-engine/internal/application/services"
	"github.com/psd2gate/xs2a-payment-engine/internal/config"
	"github.com/psd2gate/xs2a-payment-engine/internal/domain"
	"github.com/psd2gate/xs2a-payment-engine/internal/infrastructure/connector"
	"github.com/psd2gate/xs2a-payment-engine/internal/infrastructure/persistence"
	"github.com/psd2gate/xs2a-payment-engine/internal/infrastructure/persistence/postgres"
	"github.com/psd2gate/xs2a-payment-engine/internal/interfaces/rest/handlers"
	"github.com/psd2gate/xs2a-payment-engine/internal/interfaces/rest/middleware"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		slog.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	logger := cfg.Logger.NewLogger()
	slog.SetDefault(logger)

	logger.Info("starting payment initiation engine",
		"port", cfg.Server.Port,
		"sca_approach", cfg.Profile.ScaApproach,
		"log_level", cfg.Logger.Level,
	)

	ctx := context.Background()
	db, err := persistence.Connect(ctx, &cfg.Database, logger)
	if err != nil {
		logger.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	registry := postgres.NewRegistry(db.Pool)
	consentData := postgres.NewConsentDataRepository(db.Pool)
	accessChecker := postgres.NewEndpointAccessChecker(db.Pool)

	client := connector.NewClient(cfg.Connector)
	singleConnector := connector.NewSingleConnector(client)
	periodicConnector := connector.NewPeriodicConnector(client)
	bulkConnector := connector.NewBulkConnector(client)
	commonConnector := connector.NewCommonConnector(client)

	profile := application.Profile{
		ScaApproach:                              domain.ScaApproach(cfg.Profile.ScaApproach),
		PaymentCancellationAuthorisationMandated: cfg.Profile.PaymentCancellationAuthorisationMandated,
		AvailableScaMethods:                      cfg.Profile.AvailableScaMethods,
		RawProductPrefixes:                       cfg.Profile.RawProductPrefixes,
	}
	router := application.NewPaymentTypeRouter(profile.RawProductPrefixes)
	tppValidator := application.NewPisTppValidator()

	authCore := authorisation.NewService(
		registry,
		consentData,
		tppValidator,
		accessChecker,
		singleConnector,
		periodicConnector,
		bulkConnector,
		commonConnector,
		profile,
		logger,
	)
	authService := authorisation.NewScaAuthorisationService(authCore, profile)

	paymentService := services.NewPaymentService(
		registry,
		consentData,
		router,
		tppValidator,
		singleConnector,
		periodicConnector,
		bulkConnector,
		commonConnector,
		authService,
		profile,
		logger,
	)

	h := handlers.NewHandlers(paymentService, authService, registry, router, logger)

	mux := http.NewServeMux()
	h.Register(mux)

	handler := middleware.Recovery(logger)(http.Handler(mux))
	handler = middleware.RequestID(logger)(handler)
	handler = middleware.Logging(logger)(handler)
	handler = middleware.Timeout(cfg.Server.ReadTimeout)(handler)

	server := &http.Server{
		Addr:         "0.0.0.0:" + cfg.Server.Port,
		Handler:      handler,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	go func() {
		logger.Info("server starting", "addr", server.Addr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("server forced to shutdown", "error", err)
	}

	logger.Info("server exited")
}
