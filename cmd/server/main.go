package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"go-procflow/internal/api/handler"
	"go-procflow/internal/config"
	"go-procflow/internal/coordinator"
	"go-procflow/internal/core/memory"
	"go-procflow/internal/core/ports"
	"go-procflow/internal/core/postgres/repository"
	"go-procflow/internal/infrastructure/camunda"
	procredis "go-procflow/internal/infrastructure/redis"
	"go-procflow/internal/observability"
	"go-procflow/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func main() {
	configPath := flag.String("config", "", "path to a YAML config file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	logger, err := observability.NewLogger(cfg.Log.Level)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	defer func() { _ = logger.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, logger); err != nil {
		logger.Error("server stopped", zap.Error(err))
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *config.Config, logger *zap.Logger) error {
	// 1. Shadow store
	store, err := openStore(cfg, logger)
	if err != nil {
		return err
	}

	// 2. Engine gateway
	engine := camunda.NewClient(cfg.Engine.BaseURL, cfg.Engine.Timeout, camunda.WithLogger(logger.Named("camunda")))

	// 3. Metrics
	metrics := observability.NewMetrics(prometheus.DefaultRegisterer)

	policy, err := service.ParseMatchPolicy(cfg.Tracker.TerminateMatch)
	if err != nil {
		return err
	}
	opts := []service.Option{
		service.WithLogger(logger.Named("service")),
		service.WithMetrics(metrics),
		service.WithMatchPolicy(policy),
	}

	// 4. Event bus and status cache, when redis is configured
	var bus ports.EventBus
	if cfg.Redis.Addr != "" {
		client, err := procredis.NewRedisClient(ctx, cfg.Redis.Addr, cfg.Redis.PoolSize)
		if err != nil {
			return err
		}
		defer client.Close()

		bus = procredis.NewRedisEventBus(client, logger.Named("events"))
		opts = append(opts,
			service.WithEventBus(bus),
			service.WithStatusCache(procredis.NewStatusCache(client), cfg.Redis.StatusTTL))
	} else {
		logger.Warn("redis not configured, events and status cache disabled")
	}

	// 5. Services
	tracker := service.NewLifecycleTracker(engine, store, opts...)
	resolver := service.NewStatusResolver(engine, opts...)
	tasks := service.NewTaskLifecycleTracker(engine, store, opts...)

	// 6. Coordinator
	if bus != nil {
		coord := coordinator.NewCoordinator(tracker, bus, logger.Named("coordinator"))
		go func() {
			if err := coord.Start(ctx); err != nil {
				logger.Error("coordinator stopped", zap.Error(err))
			}
		}()
	}

	// 7. Routes
	gin.SetMode(gin.ReleaseMode)
	router := handler.NewRouter(handler.RouterConfig{
		Processes: handler.NewProcessHandler(tracker, resolver, logger.Named("api")),
		Tasks:     handler.NewTaskHandler(tasks),
		Metrics:   metrics,
	})

	// 8. Serve until the signal context ends
	srv := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Server.Port),
		Handler: router,
	}
	errCh := make(chan error, 1)
	go func() {
		logger.Info("server starting", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	logger.Info("shutting down")
	return srv.Shutdown(shutdownCtx)
}

func openStore(cfg *config.Config, logger *zap.Logger) (ports.ShadowStore, error) {
	if cfg.Store.Driver == config.StoreDriverMemory {
		logger.Warn("using in-memory shadow store, rows are lost on restart")
		return memory.NewStore(), nil
	}

	db, err := gorm.Open(postgres.Open(cfg.Database.DSN), &gorm.Config{})
	if err != nil {
		return nil, fmt.Errorf("connect to database: %w", err)
	}
	if cfg.Database.AutoMigrate {
		if err := repository.AutoMigrate(db); err != nil {
			return nil, err
		}
	}
	return repository.NewShadowStore(db), nil
}
