package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"storefront-api/internal/alert"
	"storefront-api/internal/config"
	"storefront-api/internal/db"
	"storefront-api/internal/httpserver"
	"storefront-api/internal/metrics"
	"storefront-api/internal/processor"
	cartrepo "storefront-api/internal/repository/cart"
	orderrepo "storefront-api/internal/repository/order"
	variantrepo "storefront-api/internal/repository/variant"
	webhookeventrepo "storefront-api/internal/repository/webhookevent"
	cartsvc "storefront-api/internal/service/cart"
	ordersvc "storefront-api/internal/service/order"
	paymentsvc "storefront-api/internal/service/payment"
	"storefront-api/internal/service/pricing"
	websvc "storefront-api/internal/service/webhook"

	"github.com/joho/godotenv"
)

func main() {
	_ = godotenv.Load()
	cfg := config.FromEnv()
	logger := log.New(os.Stdout, "[api] ", log.LstdFlags|log.LUTC|log.Lshortfile)

	ctx := context.Background()
	dbpool, err := db.Connect(ctx, cfg.DBConnString, cfg.DBMaxConns)
	if err != nil {
		logger.Fatalf("connect to db: %v", err)
	}
	defer dbpool.Close()

	cartRepo := cartrepo.NewPostgres(dbpool)
	variantRepo := variantrepo.NewPostgres(dbpool, logger)
	orderRepo := orderrepo.NewPostgres(dbpool, logger)
	eventRepo := webhookeventrepo.NewPostgres(dbpool, logger)

	alerts := alert.NewLogSink(logger)
	recorder := metrics.NewRecorder(logger)

	cartService := cartsvc.New(cartRepo, variantRepo)
	pricingEngine := pricing.New(cartRepo, cfg.TaxFallback, logger)
	validator := paymentsvc.NewValidator(pricingEngine, alerts, logger)
	processorClient := processor.NewHTTPClient(cfg.ProcessorAPIURL, cfg.ProcessorAPIKey, logger)
	intentService := paymentsvc.NewIntentService(pricingEngine, processorClient, logger)
	orderService := ordersvc.New(orderRepo, logger)
	ledger := websvc.NewLedger(eventRepo, logger)
	pipeline := websvc.NewPipeline(ledger, validator, orderService, recorder, logger)

	srv, err := httpserver.New(cfg.HTTPAddr, logger, dbpool, httpserver.Deps{
		CartSvc:          cartService,
		Intents:          intentService,
		Webhooks:         pipeline,
		WebhookSecret:    cfg.WebhookSecret,
		WebhookTolerance: cfg.WebhookTolerance,
		CORSOrigins:      cfg.CORSOrigins,
	})
	if err != nil {
		logger.Fatalf("init server: %v", err)
	}

	serverErr := make(chan error, 1)
	go func() {
		logger.Printf("starting http server on %s", cfg.HTTPAddr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	stopCh := make(chan os.Signal, 1)
	signal.Notify(stopCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-stopCh:
		logger.Printf("received signal %s, shutting down", sig)
	case err := <-serverErr:
		logger.Printf("server error: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Printf("graceful shutdown failed: %v", err)
	} else {
		logger.Printf("server stopped")
	}
}
