package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/SscSPs/vet_clinic_backend/internal/adapters/alertstore"
	"github.com/SscSPs/vet_clinic_backend/internal/adapters/notification"
	portssvc "github.com/SscSPs/vet_clinic_backend/internal/core/ports/services"
	"github.com/SscSPs/vet_clinic_backend/internal/core/services"
	"github.com/SscSPs/vet_clinic_backend/internal/handlers"
	"github.com/SscSPs/vet_clinic_backend/internal/middleware"
	"github.com/SscSPs/vet_clinic_backend/internal/platform/config"
	"github.com/SscSPs/vet_clinic_backend/internal/repositories/database/pgsql"
	"github.com/SscSPs/vet_clinic_backend/pkg/database"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/ulule/limiter/v3"
	"github.com/ulule/limiter/v3/drivers/store/memory"
	sredis "github.com/ulule/limiter/v3/drivers/store/redis"
	"golang.org/x/sync/errgroup"
)

// @title Vet Clinic Backend API
// @version 1.0
// @description Ledger, inventory, commission and transaction API for veterinary clinics.

// @host localhost:8080
// @BasePath /api/v1

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and JWT token.

// @security BearerAuth
func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	if err := run(logger); err != nil {
		logger.Error("Server exited with error", slog.String("error", err.Error()))
		os.Exit(1)
	}
}

func run(logger *slog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.LoadConfig()
	if err != nil {
		return err
	}

	dbPool, err := database.NewPgxPool(ctx, cfg.DatabaseURL)
	if err != nil {
		return err
	}
	defer dbPool.Close()
	logger.Info("Database connection pool established.")

	logger.Info("Running database migrations...")
	if err := database.RunMigrations(cfg.DatabaseURL, cfg.MigrationsPath, logger); err != nil {
		return err
	}

	middleware.SetupValidator()

	var redisClient *redis.Client
	if cfg.RedisURL != "" {
		opts, err := redis.ParseURL(cfg.RedisURL)
		if err != nil {
			return err
		}
		redisClient = redis.NewClient(opts)
		defer redisClient.Close()
		if err := redisClient.Ping(ctx).Err(); err != nil {
			return err
		}
		logger.Info("Redis connection established.")
	}

	repos := pgsql.NewRepositoryProvider(dbPool)
	container := services.NewServiceContainer(cfg, repos, notification.NewLogAuditRecorder(logger))

	router, err := newRouter(cfg, container, redisClient, logger)
	if err != nil {
		return err
	}
	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	var (
		deduper portssvc.AlertDeduper = alertstore.NewMemoryAlertDeduper()
		locker  portssvc.SweepLocker
	)
	if redisClient != nil {
		deduper = alertstore.NewRedisAlertDeduper(redisClient, alertstore.DefaultAlertSetKey)
		locker = alertstore.NewRedisSweepLocker(redisClient, cfg.LowStockSweepInterval)
	}
	sweeper := services.NewLowStockSweeper(
		container.Inventory,
		notification.NewLogNotifier(logger),
		deduper,
		locker,
		cfg.LowStockSweepInterval,
		logger,
	)

	workerCfg := services.DefaultReconciliationWorkerConfig()
	workerCfg.PollInterval = cfg.ReconciliationInterval
	workerCfg.MaxAttempts = cfg.ReconciliationMaxAttempts
	workerCfg.BatchSize = cfg.ReconciliationBatchSize
	worker := services.NewReconciliationWorker(repos.ReconciliationRepo, container.Reconciliation, workerCfg, logger)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info("Server starting", slog.String("port", cfg.Port))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		logger.Info("Shutting down server")
		return srv.Shutdown(shutdownCtx)
	})
	g.Go(func() error { return sweeper.Run(gctx) })
	g.Go(func() error { return worker.Run(gctx) })

	return g.Wait()
}

func newRouter(cfg *config.Config, container *portssvc.ServiceContainer, redisClient *redis.Client, logger *slog.Logger) (*gin.Engine, error) {
	if cfg.IsProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	rate, err := limiter.NewRateFromFormatted(cfg.RateLimit)
	if err != nil {
		return nil, err
	}
	var store limiter.Store = memory.NewStore()
	if redisClient != nil {
		store, err = sredis.NewStoreWithOptions(redisClient, limiter.StoreOptions{Prefix: "vet_clinic_rate"})
		if err != nil {
			return nil, err
		}
	}

	corsConfig := cors.DefaultConfig()
	corsConfig.AllowOrigins = cfg.CORSAllowedOrigins
	corsConfig.AddAllowHeaders("Authorization")
	corsConfig.AddExposeHeaders("Content-Length")
	corsConfig.AllowCredentials = true

	r := gin.New()
	r.Use(
		middleware.StructuredLoggingMiddleware(logger),
		gin.Recovery(),
		cors.New(corsConfig),
		middleware.RateLimit(limiter.New(store, rate)),
	)
	if err := r.SetTrustedProxies(nil); err != nil {
		return nil, err
	}

	handlers.RegisterRoutes(r, cfg, container)
	return r, nil
}
