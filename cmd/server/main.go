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

	"github.com/joho/godotenv"
	"golang.org/x/sync/errgroup"

	directoryhttp "github.com/ogurasousui/staff-directory/internal/adapters/http"
	"github.com/ogurasousui/staff-directory/internal/adapters/repository/postgres"
	"github.com/ogurasousui/staff-directory/internal/adapters/session/redisstore"
	"github.com/ogurasousui/staff-directory/internal/core/auth"
	"github.com/ogurasousui/staff-directory/internal/core/employee"
	"github.com/ogurasousui/staff-directory/internal/core/user"
	"github.com/ogurasousui/staff-directory/internal/platform/cache"
	"github.com/ogurasousui/staff-directory/internal/platform/config"
	pg "github.com/ogurasousui/staff-directory/internal/platform/db/postgres"
	"github.com/ogurasousui/staff-directory/internal/platform/observability"
	"github.com/ogurasousui/staff-directory/internal/platform/server"
)

const shutdownTimeout = 10 * time.Second

func main() {
	_ = godotenv.Load()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfgPath := os.Getenv("CONFIG_PATH")
	if cfgPath == "" {
		cfgPath = "assets/local.yaml"
	}

	cfg, err := config.Load(cfgPath)
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := observability.NewLogger(os.Stdout, cfg.Log)
	slog.SetDefault(logger)

	if err := run(ctx, cfg, logger); err != nil {
		logger.Error("server stopped with error", "error", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *config.Config, logger *slog.Logger) error {
	dbPool, err := pg.NewPool(ctx, cfg.Database)
	if err != nil {
		return err
	}
	defer dbPool.Close()

	redisClient, err := cache.New(ctx, cfg.Session.RedisAddr)
	if err != nil {
		return err
	}
	defer redisClient.Close()

	txManager := pg.NewTransactionManager(dbPool)
	employeeRepo := postgres.NewEmployeeRepository(dbPool)
	userRepo := postgres.NewUserRepository(dbPool)
	roleRepo := postgres.NewRoleRepository(dbPool)

	svcs := server.Services{
		Employees: employee.NewService(employeeRepo, txManager),
		Users:     user.NewService(userRepo, roleRepo, nil, txManager),
		Auth:      auth.NewService(userRepo, redisstore.NewStore(redisClient, cfg.Session.TTL)),
	}
	metrics := observability.NewMetrics()

	grpcServer := server.New(cfg.Server.ListenAddr, svcs, logger, metrics)
	httpServer := &http.Server{
		Addr: cfg.Server.HTTPListenAddr,
		Handler: directoryhttp.NewRouter(directoryhttp.Deps{
			Employees: svcs.Employees,
			Users:     svcs.Users,
			Auth:      svcs.Auth,
			Logger:    logger,
			Metrics:   metrics,
			Storage:   dbPool,
		}),
		ReadHeaderTimeout: 5 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info("gRPC server listening", "addr", cfg.Server.ListenAddr)
		return grpcServer.Run(gctx)
	})
	g.Go(func() error {
		logger.Info("HTTP server listening", "addr", cfg.Server.HTTPListenAddr)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return httpServer.Shutdown(shutdownCtx)
	})

	return g.Wait()
}
