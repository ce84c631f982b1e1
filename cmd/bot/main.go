package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"gopkg.in/telebot.v3"

	"moderation_relay_bot/internal/app"
	"moderation_relay_bot/internal/domain/ticket"
	"moderation_relay_bot/internal/infra/config"
	idb "moderation_relay_bot/internal/infra/database"
	"moderation_relay_bot/internal/infra/health"
	"moderation_relay_bot/internal/infra/logger"
	"moderation_relay_bot/internal/infra/memory"
	"moderation_relay_bot/internal/infra/metrics"
	"moderation_relay_bot/internal/infra/scheduler"
	infraTelegram "moderation_relay_bot/internal/infra/telegram"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		logger.Log.Fatalf("FATAL: Could not load application configuration: %v", err)
	}

	logger.Init(cfg)
	mainLogger := logger.Log.WithField("component", "main")
	mainLogger.WithFields(map[string]interface{}{
		"environment":     cfg.Environment,
		"storage_backend": cfg.StorageBackend,
		"destinations":    len(cfg.ModeratorChatIDs),
	}).Info("Configuration loaded")

	// Ticket Store: durable or in-memory, selected by configuration.
	var ticketRepo ticket.Repository
	if cfg.StorageBackend == config.StoragePostgres {
		db, err := idb.NewPostgresConnection(cfg.DatabaseURL)
		if err != nil {
			mainLogger.Fatalf("FATAL: Could not connect to database: %v", err)
		}
		defer db.Close()
		if err := idb.EnsureSchema(db); err != nil {
			mainLogger.Fatalf("FATAL: Could not ensure database schema: %v", err)
		}
		ticketRepo = idb.NewPostgresTicketRepository(db)
		mainLogger.Info("Postgres ticket repository initialized")
	} else {
		ticketRepo = memory.NewTicketRepository()
		mainLogger.Info("In-memory ticket repository initialized")
	}

	categoryStore := memory.NewCategoryStore()
	reasonStore := memory.NewReasonStore()

	metrics.MustRegister(prometheus.DefaultRegisterer)

	// Telegram bot.
	pref := telebot.Settings{
		Token:  cfg.TelegramToken,
		Poller: &telebot.LongPoller{Timeout: 10 * time.Second},
		OnError: func(err error, c telebot.Context) {
			// Handler errors end here; one failing event never stops polling.
			entry := logger.Log.WithError(err)
			if c != nil && c.Sender() != nil {
				entry = entry.WithField("sender_id", c.Sender().ID)
			}
			entry.Error("Unhandled telebot error")
		},
	}
	bot, err := telebot.NewBot(pref)
	if err != nil {
		mainLogger.Fatalf("FATAL: Could not create Telegram bot: %v", err)
	}
	client := infraTelegram.NewTelebotAdapter(bot)

	// Application services.
	intakeService := app.NewIntakeService(
		ticketRepo, categoryStore, ticket.GeneratorFor(cfg.IDStrategy), cfg.PreviewLimit,
		logger.Log.WithField("component", "intake"),
	)
	fanoutService := app.NewFanoutService(
		client, ticketRepo, cfg.ModeratorChatIDs,
		logger.Log.WithField("component", "fanout"),
	)
	decisionService := app.NewDecisionService(
		ticketRepo, reasonStore, client,
		logger.Log.WithField("component", "decision"),
	)
	reasonService := app.NewReasonService(
		ticketRepo, reasonStore, client,
		logger.Log.WithField("component", "reason"),
	)
	mainLogger.Info("Application services initialized")

	// Handlers.
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	infraTelegram.RegisterOperatorHandlers(ctx, bot, cfg, intakeService, fanoutService, reasonService,
		logger.Log.WithField("component", "operator_handlers"))
	infraTelegram.RegisterModeratorHandlers(ctx, bot, decisionService,
		logger.Log.WithField("component", "moderator_handlers"))
	mainLogger.Info("Telegram handlers registered")

	// Liveness endpoint + Prometheus scrape target.
	healthServer := health.NewServer(cfg.HealthPort, logger.Log.WithField("component", "health"))
	go healthServer.Start()

	// Stale-ticket sweep (extension point; disabled unless a timeout is set).
	sweeperLogger := logger.Log.WithField("component", "sweeper")
	sweeper := scheduler.NewStaleTicketSweeper(
		ticketRepo,
		sweeperLogger,
		cfg.CronSpecStaleCheck,
		time.Duration(cfg.ReasonTimeout)*time.Minute,
		scheduler.LogStaleTickets(sweeperLogger),
	)
	sweeper.Start()

	mainLogger.Info("Application setup complete, starting bot")
	go bot.Start()

	// Graceful shutdown.
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	mainLogger.Info("Shutting down application...")
	bot.Stop()
	sweeper.Stop()
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	if err := healthServer.Shutdown(shutdownCtx); err != nil {
		mainLogger.WithError(err).Warn("Health server shutdown failed")
	}
	mainLogger.Info("Application shut down gracefully")
}
