package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	httptransport "github.com/echosuccess/participium-sub000/internal/api/http"
	"github.com/echosuccess/participium-sub000/internal/api/http/handlers"
	"github.com/echosuccess/participium-sub000/internal/auth"
	"github.com/echosuccess/participium-sub000/internal/authz"
	"github.com/echosuccess/participium-sub000/internal/config"
	"github.com/echosuccess/participium-sub000/internal/events"
	"github.com/echosuccess/participium-sub000/internal/geo"
	"github.com/echosuccess/participium-sub000/internal/mail"
	"github.com/echosuccess/participium-sub000/internal/observability"
	"github.com/echosuccess/participium-sub000/internal/persistence"
	"github.com/echosuccess/participium-sub000/internal/repository"
	"github.com/echosuccess/participium-sub000/internal/service"
	"github.com/echosuccess/participium-sub000/internal/storage"
	"github.com/echosuccess/participium-sub000/internal/worker"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logger, err := observability.NewLogger(cfg.Logger)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logger.Sync() //nolint:errcheck

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	pg, err := persistence.NewPostgres(ctx, cfg.Postgres, logger)
	if err != nil {
		logger.Fatal("failed to connect postgres", zap.Error(err))
	}
	defer pg.Close()

	if cfg.Postgres.RunMigrations {
		if err := persistence.RunMigrations(ctx, pg.PoolHandle(), logger); err != nil {
			logger.Fatal("failed to run migrations", zap.Error(err))
		}
	}

	redis := persistence.NewRedis(cfg.Redis, logger)
	defer redis.Close()

	store, err := storage.NewLocalStore(cfg.Storage.RootDir, cfg.Storage.BaseURL)
	if err != nil {
		logger.Fatal("failed to init object store", zap.Error(err))
	}

	pool := pg.PoolHandle()
	userRepo := repository.NewUserRepository(pool)
	reportRepo := repository.NewReportRepository(pool)
	reportPhotoRepo := repository.NewReportPhotoRepository(pool)
	messageRepo := repository.NewReportMessageRepository(pool)
	citizenPhotoRepo := repository.NewCitizenPhotoRepository(pool)
	notificationRepo := repository.NewNotificationRepository(pool)

	policy := authz.NewPolicy()
	geofence := geo.DefaultValidator()
	mailer := mail.NewSMTPSender(cfg.Mail, logger)
	dispatcher := events.NewInMemoryDispatcher()

	tokens := auth.NewTokenManager(cfg.Auth.JWTSecret, cfg.Auth.SessionTTL())
	sessions := auth.NewSessionStore(redis.Client)
	authMiddleware := auth.NewMiddleware(tokens, sessions, userRepo, cfg.Auth.CookieName)

	var bot *tgbotapi.BotAPI
	if cfg.Notification.TelegramToken != "" {
		bot, err = tgbotapi.NewBotAPI(cfg.Notification.TelegramToken)
		if err != nil {
			logger.Warn("telegram bot unavailable; telegram notifications disabled", zap.Error(err))
			bot = nil
		}
	}

	accountService := service.NewAccountService(cfg.Auth, service.AccountDependencies{
		UserRepo:  userRepo,
		PhotoRepo: citizenPhotoRepo,
		Policy:    policy,
		Mailer:    mailer,
		Store:     store,
		Tokens:    tokens,
		Sessions:  sessions,
		Logger:    logger,
	})
	reportService := service.NewReportService(service.ReportDependencies{
		ReportRepo:  reportRepo,
		PhotoRepo:   reportPhotoRepo,
		MessageRepo: messageRepo,
		UserRepo:    userRepo,
		Policy:      policy,
		Geofence:    geofence,
		Store:       store,
		Dispatcher:  dispatcher,
		Logger:      logger,
	})
	messageService := service.NewMessageService(reportRepo, messageRepo, dispatcher)
	notificationService := service.NewNotificationService(notificationRepo, userRepo, dispatcher, mailer, bot, logger)

	worker.StartNotificationWorker(notificationService)

	app := fiber.New()
	metrics := observability.NewMetrics()
	httptransport.RegisterMiddlewares(app, logger, metrics, cfg.App.RequestTimeout())

	httptransport.RegisterRoutes(app, httptransport.RouteConfig{
		Health:         handlers.NewHealthHandler(),
		Session:        handlers.NewSessionHandler(accountService, cfg.Auth),
		Citizen:        handlers.NewCitizenHandler(accountService),
		Reports:        handlers.NewReportsHandler(reportService, messageService),
		Admin:          handlers.NewAdminHandler(accountService),
		Notifications:  handlers.NewNotificationsHandler(notificationService),
		AuthMiddleware: authMiddleware,
		Policy:         policy,
		Geofence:       geofence,
		StaticRoot:     store.Root(),
		StaticPrefix:   cfg.Storage.BaseURL,
	})

	go func() {
		if err := app.Listen(cfg.App.Addr()); err != nil {
			logger.Fatal("fiber listen", zap.Error(err))
		}
	}()

	waitForShutdown(logger)

	_ = app.Shutdown()
}

func waitForShutdown(logger *zap.Logger) {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	sig := <-sigCh
	logger.Info("shutting down", zap.String("signal", sig.String()))
}
