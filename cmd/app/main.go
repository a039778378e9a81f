// File: cmd/app/main.go
package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"

	"ticket-marketplace/internal/config"
	"ticket-marketplace/internal/domain/ports/adapter"
	"ticket-marketplace/internal/domain/ports/repository"
	fs "ticket-marketplace/internal/infra/db/firestore"
	pg "ticket-marketplace/internal/infra/db/postgres"
	httpapi "ticket-marketplace/internal/infra/http"
	"ticket-marketplace/internal/infra/logging"
	"ticket-marketplace/internal/infra/metrics"
	"ticket-marketplace/internal/infra/notify"
	"ticket-marketplace/internal/infra/payment"
	red "ticket-marketplace/internal/infra/redis"
	"ticket-marketplace/internal/infra/worker"
	"ticket-marketplace/internal/usecase"
)

// Set via -ldflags at build time.
var (
	version = "dev"
	commit  = "none"
)

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// ---- CLI flags ----
	cfgPath := flag.String("config", "config.yaml", "path to YAML config file")
	devMode := flag.Bool("dev", false, "enable developer mode (console logs, development env default)")
	flag.Parse()

	cfg, err := config.LoadConfig(*cfgPath, *devMode)
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	logger := logging.New(cfg.Log, cfg.Runtime.Dev)
	metrics.MustRegister()
	metrics.SetBuildInfo(version, commit, cfg.App.Env)
	logger.Info().Str("env", cfg.App.Env).Str("version", version).Msg("starting fulfillment service")
	if cfg.Runtime.Dev {
		logger.Warn().Msg("[DEV MODE] enabled")
	}

	// ---- Firestore ----
	fsClient, err := fs.NewClient(ctx, cfg.Firestore)
	if err != nil {
		logger.Fatal().Err(err).Msg("firestore")
	}
	defer fsClient.Close()

	orderRepo := fs.NewOrderRepo(fsClient)
	ticketRepo := fs.NewTicketRepo(fsClient)
	userRepo := fs.NewUserRepo(fsClient)
	subRepo := fs.NewSubscriptionRepo(fsClient)
	var catalogRepo repository.CatalogRepository = fs.NewCatalogRepo(fsClient)

	// ---- Redis (optional) ----
	var (
		claims adapter.EventClaims
		locker adapter.Locker
	)
	if cfg.Redis.URL != "" {
		redisClient, err := red.NewClient(ctx, &cfg.Redis)
		if err != nil {
			logger.Fatal().Err(err).Msg("redis")
		}
		defer redisClient.Close()
		claims = red.NewEventClaims(redisClient)
		locker = red.NewLocker(redisClient)
		catalogRepo = fs.NewCatalogRepoCacheDecorator(catalogRepo, redisClient, 0)
		logger.Info().Msg("redis enabled: event claims, payment locks, catalog cache")
	} else {
		logger.Warn().Msg("redis.url not set; duplicate deliveries rely on order idempotency only")
	}

	// ---- Postgres failure ledger (optional) ----
	var ledger repository.FailureLedger
	if cfg.Database.URL != "" {
		pool, err := pg.NewPgxPool(ctx, cfg.Database.URL, cfg.Database.MaxConns)
		if err != nil {
			logger.Fatal().Err(err).Msg("postgres")
		}
		defer pool.Close()
		ledgerRepo := pg.NewFailureLedgerRepo(pool)
		if err := ledgerRepo.EnsureSchema(ctx); err != nil {
			logger.Fatal().Err(err).Msg("failure ledger schema")
		}
		ledger = ledgerRepo
	}

	// ---- Payment provider ----
	provider := payment.NewStripeProvider(cfg.Stripe.SecretKey, nil)
	verifier := payment.NewStripeVerifier(
		cfg.Stripe.WebhookSecret,
		cfg.App.AllowUnverifiedWebhooks && !cfg.IsProduction(),
		logger,
	)

	// ---- Ticket sender ----
	var sender adapter.TicketSender
	if cfg.Mail.SMTPHost != "" {
		sender = notify.NewSMTPSender(cfg.Mail, logger)
	} else {
		logger.Warn().Msg("mail.smtp_host not set; ticket emails are logged, not sent")
		sender = notify.NewLogSender(logger, cfg.Runtime.Dev)
	}

	// ---- Use cases ----
	orderUC := usecase.NewOrderMaterializer(orderRepo, provider, logger)
	ticketUC := usecase.NewTicketIssuer(ticketRepo, orderRepo, cfg.App.BaseURL, logger)
	recipientUC := usecase.NewRecipientResolver(userRepo, provider, logger)
	notifUC := usecase.NewNotificationDispatcher(ticketRepo, catalogRepo, recipientUC, sender, ledger, logger)
	subUC := usecase.NewSubscriptionSynchronizer(subRepo, userRepo, provider, ledger, logger)

	dispatcher := usecase.NewEventDispatcher(usecase.DispatcherDeps{
		Orders:        orderUC,
		Tickets:       ticketUC,
		Notifications: notifUC,
		Subscriptions: subUC,
		OrderRepo:     orderRepo,
		Provider:      provider,
		Claims:        claims,
		ClaimTTL:      cfg.Redis.EventTTL,
		Locker:        locker,
		LockTTL:       cfg.Redis.LockTTL,
	}, logger)

	// ---- Worker pool ----
	workers := worker.NewPool(worker.Options{
		Workers:     cfg.Worker.Workers,
		QueueSize:   cfg.Worker.QueueSize,
		SubmitWait:  cfg.Worker.SubmitWait,
		TaskTimeout: cfg.Worker.TaskTimeout,
	}, logger)
	workers.Start(ctx)

	// ---- HTTP server ----
	server := httpapi.NewServer(httpapi.Options{
		Port:             cfg.HTTP.Port,
		ReadTimeout:      cfg.HTTP.ReadTimeout,
		WriteTimeout:     cfg.HTTP.WriteTimeout,
		MaxBodyBytes:     cfg.HTTP.MaxBodyBytes,
		Production:       cfg.IsProduction(),
		WebhookSecretSet: cfg.Stripe.WebhookSecret != "",
	}, verifier, dispatcher, workers, logger)

	errc := make(chan error, 1)
	go func() { errc <- server.Start() }()

	// ---- Graceful shutdown ----
	sigc := make(chan os.Signal, 1)
	signal.Notify(sigc, syscall.SIGINT, syscall.SIGTERM)
	select {
	case sig := <-sigc:
		logger.Info().Str("signal", sig.String()).Msg("shutdown requested")
	case err := <-errc:
		if err != nil {
			logger.Error().Err(err).Msg("http server stopped")
		}
	}

	shutdownCtx, stop := context.WithTimeout(context.Background(), cfg.HTTP.ShutdownTimeout)
	defer stop()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("http shutdown")
	}
	// Accepted events keep running until the pool drains or the deadline passes.
	if err := workers.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Dur("timeout", cfg.HTTP.ShutdownTimeout).Msg("worker pool did not drain")
	}
	cancel()
	logger.Info().Msg("bye")
}
