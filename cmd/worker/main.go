package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	mqcontracts "agencyhub/contracts/mq"
	"agencyhub/internal/config"
	"agencyhub/internal/db"
	"agencyhub/internal/mqhandler"
	"agencyhub/internal/notification"
	"agencyhub/internal/repository"
	pkgconfig "agencyhub/pkg/config"
	pkgdb "agencyhub/pkg/db"
	"agencyhub/pkg/logger"
	"agencyhub/pkg/mq"
	"agencyhub/pkg/otel"
	pkgredis "agencyhub/pkg/redis"
	"agencyhub/pkg/util"
)

const (
	notificationQueue = "notification.requested.q"
	retryCounterTTL   = 24 * time.Hour
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}

	log := logger.NewLogger(cfg.Env)
	defer log.Sync()

	log.Info("Starting agencyhub worker...",
		zap.String("mq_url", cfg.MQ.URL),
		zap.String("queue", notificationQueue),
		zap.String("notification_provider", cfg.Notification.Provider),
	)

	shutdownTracing, err := otel.Init(otel.Config{
		ServiceName: cfg.Otel.ServiceName + "-worker",
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

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	dbConn, err := pkgdb.NewConnection(cfg.DB, log)
	if err != nil {
		log.Fatal("Failed to init DB", zap.Error(err))
	}
	defer dbConn.Close()
	if err := db.Migrate(ctx, dbConn, log); err != nil {
		log.Fatal("Failed to migrate schema", zap.Error(err))
	}

	rdb, err := pkgredis.NewRedisClient(cfg.Redis)
	if err != nil {
		log.Fatal("Failed to init Redis", zap.Error(err))
	}
	defer rdb.Close()

	provider, err := notification.NewProvider(cfg.Notification, log)
	if err != nil {
		log.Fatal("Failed to init notification provider", zap.Error(err))
	}
	// The worker always delivers directly; queueing happens on the api side.
	notifier := notification.NewNotifier(provider, repository.NewNotificationAttemptRepository(dbConn, log), nil, notification.Options{
		Mode:           notification.ModeDirect,
		BusinessNumber: cfg.Notification.BusinessNumber,
	}, log)

	publisher, err := mq.NewPublisher(cfg.MQ.URL, "agencyhub-worker")
	if err != nil {
		log.Fatal("Failed to init MQ publisher", zap.Error(err))
	}
	defer publisher.Close()

	consumer, err := mq.NewConsumer(cfg.MQ.URL, notificationQueue, mqcontracts.RoutingKeyNotificationRequested, log)
	if err != nil {
		log.Fatal("Failed to init consumer", zap.Error(err))
	}
	defer consumer.Close()

	h := mqhandler.NewNotificationRequestedHandler(notifier, util.NewRetryCounter(rdb, retryCounterTTL), publisher, log)
	consumer.SetHandler(h.Handle)

	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		if !consumer.IsConnected() || !publisher.IsConnected() {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		w.WriteHeader(http.StatusOK)
	})
	srv := &http.Server{
		Addr:              pkgconfig.GetEnv("WORKER_METRICS_ADDR", ":9091"),
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		err := consumer.StartConsuming(gctx)
		switch {
		case errors.Is(err, context.Canceled):
			return nil
		case err == nil && gctx.Err() == nil:
			return errors.New("delivery channel closed")
		}
		return err
	})
	g.Go(func() error {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		log.Info("Shutting down agencyhub worker gracefully...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		log.Error("Worker stopped with error", zap.Error(err))
		return
	}
	log.Info("agencyhub worker shutdown complete")
}
