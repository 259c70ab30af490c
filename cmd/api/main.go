package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.uber.org/multierr"
	"golang.org/x/sync/errgroup"

	"github.com/agrogas/agrogas-backend/api/routes"
	"github.com/agrogas/agrogas-backend/internal/auth"
	"github.com/agrogas/agrogas-backend/internal/orders"
	"github.com/agrogas/agrogas-backend/internal/pricing"
	"github.com/agrogas/agrogas-backend/internal/records"
	"github.com/agrogas/agrogas-backend/internal/users"
	"github.com/agrogas/agrogas-backend/pkg/config"
	"github.com/agrogas/agrogas-backend/pkg/db"
	"github.com/agrogas/agrogas-backend/pkg/logger"
	"github.com/agrogas/agrogas-backend/pkg/metrics"
	"github.com/agrogas/agrogas-backend/pkg/migrate"
	"github.com/agrogas/agrogas-backend/pkg/redis"
)

const shutdownTimeout = 15 * time.Second

func main() {
	logg := logger.New(logger.Options{ServiceName: "api"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	logg = logger.New(logger.Options{
		ServiceName: "api",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
	})

	if err := run(cfg, logg); err != nil {
		logg.Error(context.Background(), "api server stopped unexpectedly", err)
		os.Exit(1)
	}
}

func run(cfg *config.Config, logg *logger.Logger) (err error) {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	dbClient, err := db.New(ctx, cfg.DB, logg)
	if err != nil {
		return fmt.Errorf("bootstrap database: %w", err)
	}
	defer func() {
		err = multierr.Append(err, dbClient.Close())
	}()

	if err := migrate.MaybeRunDev(ctx, cfg, logg, dbClient); err != nil {
		return fmt.Errorf("dev migrations: %w", err)
	}

	deps := routes.Dependencies{DB: dbClient}
	var resetCodes *redis.Client
	if cfg.Redis.Enabled() {
		var redisClient *redis.Client
		if redisClient, err = redis.New(ctx, cfg.Redis, logg); err != nil {
			return fmt.Errorf("bootstrap redis: %w", err)
		}
		defer func() {
			err = multierr.Append(err, redisClient.Close())
		}()
		deps.Redis = redisClient
		deps.Idempotency = redisClient
		deps.RateLimiter = redisClient
		resetCodes = redisClient
	} else {
		logg.Warn(ctx, "redis not configured; idempotency, login throttling and password resets are disabled")
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	deps.Metrics = metrics.NewHTTPMetrics(reg)
	deps.Gatherer = reg

	conn := dbClient.DB()
	recordRepo := records.NewRepository(conn)

	if deps.Records, err = records.NewService(recordRepo); err != nil {
		return fmt.Errorf("records service: %w", err)
	}
	if deps.Orders, err = orders.NewService(
		orders.NewRepository(conn),
		records.NewInventory(recordRepo),
		dbClient,
		orders.WithRecorder(metrics.NewOrderMetrics(reg)),
	); err != nil {
		return fmt.Errorf("orders service: %w", err)
	}
	if deps.Pricing, err = pricing.NewService(pricing.NewRepository(conn), cfg.Pricing); err != nil {
		return fmt.Errorf("pricing service: %w", err)
	}

	authParams := auth.ServiceParams{
		UserRepo:       users.NewRepository(conn),
		JWTConfig:      cfg.JWT,
		PasswordConfig: cfg.Password,
		EchoResetCode:  !cfg.App.IsProd(),
	}
	if resetCodes != nil {
		authParams.ResetCodes = resetCodes
	}
	if deps.Auth, err = auth.NewService(authParams); err != nil {
		return fmt.Errorf("auth service: %w", err)
	}

	port := os.Getenv("PORT")
	if port == "" {
		port = cfg.App.Port
	}
	addr := ":" + port
	logCtx := logg.WithFields(ctx, map[string]any{
		"env":    cfg.App.Env,
		"addr":   addr,
		"driver": cfg.DB.Driver,
	})

	server := &http.Server{
		Addr:              addr,
		Handler:           routes.NewRouter(cfg, logg, deps),
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logg.Info(logCtx, "starting api server")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		logg.Info(logCtx, "shutting down api server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	})

	return g.Wait()
}
