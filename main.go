package main

import (
	"context"
	"database/sql"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
	"go.uber.org/zap"

	alarmapp "healthwatch-cloud/internal/alarms/application"
	alarminterfaces "healthwatch-cloud/internal/alarms/interfaces"
	analyticsapp "healthwatch-cloud/internal/analytics/application"
	apihttp "healthwatch-cloud/internal/api/http"
	"healthwatch-cloud/internal/config"
	"healthwatch-cloud/internal/observability/logging"
	"healthwatch-cloud/internal/observability/metrics"
	remapp "healthwatch-cloud/internal/reminders/application"
	reminders "healthwatch-cloud/internal/reminders/domain"
	remmemory "healthwatch-cloud/internal/reminders/infrastructure/memory"
	rempostgres "healthwatch-cloud/internal/reminders/infrastructure/postgres"
	reminterfaces "healthwatch-cloud/internal/reminders/interfaces"
	"healthwatch-cloud/internal/streaming"
	"healthwatch-cloud/internal/streaming/ws"
	vitalsapp "healthwatch-cloud/internal/vitals/application"
	vitals "healthwatch-cloud/internal/vitals/domain"
	vitalsmemory "healthwatch-cloud/internal/vitals/infrastructure/memory"
	vitalspostgres "healthwatch-cloud/internal/vitals/infrastructure/postgres"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}

	logger, err := logging.New(cfg.LogLevel, cfg.LogFormat, "healthwatch-cloud")
	if err != nil {
		panic(err)
	}
	defer func() { _ = logger.Sync() }()

	metrics.Init()

	readingStore, reminderStore, closeDB := openStores(cfg, logger)
	defer closeDB()

	registry := streaming.NewRegistry(logger)
	notifier, err := alarminterfaces.NewStreamNotifier(registry)
	if err != nil {
		logger.Fatal("stream notifier init failed", zap.Error(err))
	}
	engine := alarmapp.NewEngine(logger, alarmapp.WithNotifier(notifier))

	aggregator := analyticsapp.NewAggregator(readingStore, logger)

	coordinator, err := vitalsapp.NewCoordinator(
		readingStore,
		aggregator,
		engine,
		registry,
		logger,
		vitalsapp.WithRanges(cfg.Ranges),
	)
	if err != nil {
		logger.Fatal("ingestion coordinator init failed", zap.Error(err))
	}

	syncer, err := reminterfaces.NewRegistrySyncer(registry)
	if err != nil {
		logger.Fatal("device syncer init failed", zap.Error(err))
	}
	reminderService, err := remapp.NewService(reminderStore, syncer, logger)
	if err != nil {
		logger.Fatal("reminder service init failed", zap.Error(err))
	}
	scheduler, err := remapp.NewScheduler(reminderStore, engine, logger,
		remapp.WithInterval(cfg.ReminderTick))
	if err != nil {
		logger.Fatal("reminder scheduler init failed", zap.Error(err))
	}

	socket, err := ws.NewHandler(registry, coordinator, logger)
	if err != nil {
		logger.Fatal("websocket handler init failed", zap.Error(err))
	}
	apiHandler, err := apihttp.NewHandler(readingStore, aggregator, engine, reminderService, logger,
		apihttp.WithHistoryLimit(cfg.HistoryLimit))
	if err != nil {
		logger.Fatal("api handler init failed", zap.Error(err))
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go scheduler.Run(ctx)
	go coordinator.RunTicker(ctx, cfg.BucketTick)

	server := &http.Server{
		Addr:    cfg.HTTPAddr,
		Handler: apihttp.NewRouter(apiHandler, socket),
	}
	go func() {
		logger.Info("http server listening", zap.String("addr", cfg.HTTPAddr))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("http server failed", zap.Error(err))
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Warn("http shutdown incomplete", zap.Error(err))
	}
}

// openStores picks Postgres when a DSN is configured and reachable,
// otherwise in-memory stores. The returned close func is a no-op for the
// memory variant.
func openStores(cfg config.Config, logger *zap.Logger) (vitals.ReadingStore, reminders.Store, func()) {
	noop := func() {}
	if cfg.DatabaseURL == "" {
		logger.Info("no database configured, using in-memory stores")
		return vitalsmemory.NewStore(), remmemory.NewRepository(), noop
	}

	db, err := sql.Open("pgx", cfg.DatabaseURL)
	if err != nil {
		logger.Warn("db open failed, falling back to in-memory stores", zap.Error(err))
		return vitalsmemory.NewStore(), remmemory.NewRepository(), noop
	}

	pingCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		_ = db.Close()
		logger.Warn("db ping failed, falling back to in-memory stores", zap.Error(err))
		return vitalsmemory.NewStore(), remmemory.NewRepository(), noop
	}

	readingRepo, err := vitalspostgres.NewReadingRepository(db)
	if err != nil {
		logger.Fatal("reading repository init failed", zap.Error(err))
	}
	reminderRepo, err := rempostgres.NewRepository(db)
	if err != nil {
		logger.Fatal("reminder repository init failed", zap.Error(err))
	}

	schemaCtx, cancelSchema := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancelSchema()
	if err := readingRepo.EnsureSchema(schemaCtx); err != nil {
		logger.Fatal("vital_logs schema setup failed", zap.Error(err))
	}
	if err := reminderRepo.EnsureSchema(schemaCtx); err != nil {
		logger.Fatal("reminders schema setup failed", zap.Error(err))
	}

	logger.Info("postgres stores ready")
	return readingRepo, reminderRepo, func() { _ = db.Close() }
}
