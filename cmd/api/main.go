package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"agencyhub/internal/complexity"
	"agencyhub/internal/config"
	"agencyhub/internal/db"
	"agencyhub/internal/handler"
	"agencyhub/internal/httpserver"
	"agencyhub/internal/leadstore"
	"agencyhub/internal/notification"
	"agencyhub/internal/repository"
	"agencyhub/internal/service/auth"
	"agencyhub/internal/service/intake"
	"agencyhub/internal/service/project"
	"agencyhub/internal/shortid"
	pkgdb "agencyhub/pkg/db"
	"agencyhub/pkg/logger"
	"agencyhub/pkg/mq"
	"agencyhub/pkg/otel"
	"agencyhub/pkg/outbox"
	pkgredis "agencyhub/pkg/redis"
	"agencyhub/pkg/util"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}

	log := logger.NewLogger(cfg.Env)
	defer log.Sync()

	log.Info("Starting agencyhub api...",
		zap.String("env", cfg.Env),
		zap.String("db_host", cfg.DB.Host),
		zap.String("notification_provider", cfg.Notification.Provider),
		zap.String("notification_mode", cfg.Notification.Mode),
	)

	shutdownTracing, err := otel.Init(otel.Config{
		ServiceName: cfg.Otel.ServiceName,
		Environment: cfg.Env,
		Endpoint:    cfg.Otel.Endpoint,
		Enabled:     cfg.Otel.Enabled,
		SampleRatio: cfg.Otel.SampleRatio,
	}, log)
	if err != nil {
		log.Warn("Tracing disabled", zap.Error(err))
		shutdownTracing = func() {}
	}
	defer shutdownTracing()

	ctx, stop := context.WithCancel(context.Background())
	defer stop()

	// DB
	dbConn, err := pkgdb.NewConnection(cfg.DB, log)
	if err != nil {
		log.Fatal("Failed to init DB", zap.Error(err))
	}
	defer dbConn.Close()
	if err := db.Migrate(ctx, dbConn, log); err != nil {
		log.Fatal("Failed to migrate schema", zap.Error(err))
	}

	// Redis
	rdb, err := pkgredis.NewRedisClient(cfg.Redis)
	if err != nil {
		log.Fatal("Failed to init Redis", zap.Error(err))
	}
	defer rdb.Close()

	leadRepo := repository.NewLeadRepository(dbConn, log)
	projectRepo := repository.NewProjectRepository(dbConn, log)
	milestoneRepo := repository.NewMilestoneRepository(dbConn, log)
	attemptRepo := repository.NewNotificationAttemptRepository(dbConn, log)

	allocator := shortid.NewAllocator(
		cfg.ShortID.MaxAttempts,
		util.NewDeduper(rdb, cfg.ReserveTTL(), log),
		log,
		leadRepo, projectRepo,
	)

	var mirror leadstore.Mirror
	if cfg.Leads.MirrorPath != "" {
		mirror = leadstore.NewFileMirror(cfg.Leads.MirrorPath)
	}
	leads := leadstore.NewStore(leadRepo, mirror, allocator, log)

	provider, err := notification.NewProvider(cfg.Notification, log)
	if err != nil {
		log.Fatal("Failed to init notification provider", zap.Error(err))
	}

	checks := map[string]httpserver.ReadinessCheck{
		"db": dbConn.Ping,
		"redis": func(ctx context.Context) error {
			return rdb.Ping(ctx).Err()
		},
	}

	// Queue mode hands delivery to the worker through the outbox.
	var (
		enqueuer     notification.Enqueuer
		adminHandler *handler.AdminHandler
	)
	if cfg.Notification.Mode == notification.ModeQueue {
		publisher, err := mq.NewPublisher(cfg.MQ.URL, "agencyhub-api")
		if err != nil {
			log.Fatal("Failed to init MQ publisher", zap.Error(err))
		}
		defer publisher.Close()
		checks["mq"] = func(context.Context) error {
			if !publisher.IsConnected() {
				return errors.New("broker connection closed")
			}
			return nil
		}

		outboxRepo := outbox.NewRepository(dbConn, log)
		enqueuer = outboxRepo

		dispatcher := outbox.NewDispatcher(outboxRepo, publisher, log).
			WithInterval(cfg.OutboxInterval()).
			WithBatchSize(cfg.Outbox.BatchSize).
			WithMaxRetries(cfg.Outbox.MaxRetries)
		go dispatcher.Start(ctx)

		adminHandler = handler.NewAdminHandler(outbox.NewReplayService(outboxRepo, publisher, log), log)
	}

	notifier := notification.NewNotifier(provider, attemptRepo, enqueuer, notification.Options{
		Mode:           cfg.Notification.Mode,
		BusinessNumber: cfg.Notification.BusinessNumber,
	}, log)

	intakeService := intake.NewService(leads, notifier, log)
	projectService := project.NewService(
		projectRepo,
		milestoneRepo,
		leads,
		notifier,
		util.NewDeduper(rdb, cfg.ConvertLockTTL(), log),
		allocator,
		leadRepo,
		project.Options{ForwardOnly: cfg.Projects.ForwardOnly},
		log,
	)
	authService := auth.NewService(cfg.Admin, cfg.JWT, log)

	router := httpserver.NewRouter(httpserver.Handlers{
		Auth:         handler.NewAuthHandler(authService, log),
		Lead:         handler.NewLeadHandler(intakeService, leads, projectService, attemptRepo, log),
		Project:      handler.NewProjectHandler(projectService, log),
		Analysis:     handler.NewAnalysisHandler(complexity.DefaultRules(), log),
		Notification: handler.NewNotificationHandler(notifier, leads, log),
		Admin:        adminHandler,
	}, cfg.JWT.Secret, checks, log)

	srv := &http.Server{
		Addr:              cfg.Server.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.Info("HTTP server starting", zap.String("addr", cfg.Server.Port))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("HTTP server failed", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("Shutting down agencyhub api gracefully...")
	stop()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("HTTP server shutdown error", zap.Error(err))
	} else {
		log.Info("HTTP server stopped")
	}

	log.Info("agencyhub api shutdown complete")
}
