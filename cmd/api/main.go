package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"jersey-storefront/internal/catalog"
	"jersey-storefront/internal/client"
	"jersey-storefront/internal/config"
	"jersey-storefront/internal/logger"
	"jersey-storefront/internal/repository"
	"jersey-storefront/internal/server"
	"jersey-storefront/internal/service"
	"jersey-storefront/internal/worker"

	"github.com/caarlos0/env/v10"
	"github.com/joho/godotenv"
)

func main() {
	// load .env into os.Environ
	if err := godotenv.Load(); err != nil {
		fmt.Println("No .env file found (ok in prod)")
	}

	cfg := &config.Config{}
	if err := env.Parse(cfg); err != nil {
		fmt.Printf("Failed to parse config: %v\n", err)
		os.Exit(1)
	}

	log := logger.New(os.Stdout, cfg.Log)
	if err := run(cfg, log); err != nil {
		log.Error("exiting", "error", err)
		os.Exit(1)
	}
}

func run(cfg *config.Config, log *slog.Logger) error {
	db, err := client.OpenDatabase(cfg.Database)
	if err != nil {
		return err
	}
	defer func() {
		if err := client.CloseDatabase(db); err != nil {
			log.Error("close database", "error", err)
		}
	}()

	if err := client.Migrate(db); err != nil {
		return err
	}

	cat := catalog.Default()
	stripeClient := client.NewStripeClient(&cfg.Stripe)
	utmifyClient := client.NewUtmifyClient(&cfg.Utmify)
	if !stripeClient.Configured() {
		log.Warn("STRIPE_SECRET_KEY not set, checkout is disabled")
	}

	orderRepo := repository.NewOrderRepository(db)
	webhookEventRepo := repository.NewWebhookEventRepository(db)
	forwardRepo := repository.NewAttributionForwardRepository(db)

	checkoutService := service.NewCheckoutService(
		db, stripeClient, cat,
		orderRepo,
		cfg.BaseURL, cfg.Stripe.Currency,
		log.With("service", "checkout"),
	)
	reconcileService := service.NewReconcileService(
		db, stripeClient,
		orderRepo,
		webhookEventRepo,
		forwardRepo,
		cfg.Sweeper,
		log.With("service", "reconcile"),
	)
	adminService, err := service.NewAdminService(cfg.Admin, cat, orderRepo, stripeClient, log.With("service", "admin"))
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT)
	defer stop()

	var wg sync.WaitGroup
	if utmifyClient.Configured() {
		poller := worker.NewAttributionPoller(forwardRepo, utmifyClient, cfg.Attribution, log)
		wg.Add(1)
		go func() {
			defer wg.Done()
			poller.Run(ctx)
		}()
	} else {
		log.Warn("UTMIFY_API_TOKEN not set, attribution forwards will queue until configured")
	}

	if stripeClient.Configured() {
		sweeper := worker.NewStaleSweeper(reconcileService, cfg.Sweeper.Interval, log)
		wg.Add(1)
		go func() {
			defer wg.Done()
			sweeper.Run(ctx)
		}()
	}

	serverAddr := cfg.HTTP.Host + ":" + cfg.HTTP.Port
	srv := server.NewServer(cfg, log, cat, checkoutService, reconcileService, adminService)

	serveErr := make(chan error, 1)
	log.Info("starting HTTP server", "addr", serverAddr, "environment", cfg.Environment.Name)
	go func() {
		if err := srv.Start(serverAddr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
	}()

	select {
	case <-ctx.Done():
		log.Info("signal received, starting graceful shutdown")
	case err := <-serveErr:
		stop()
		wg.Wait()
		return fmt.Errorf("http server: %w", err)
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("http server shutdown", "error", err)
	}
	wg.Wait()
	return nil
}
