package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-co-op/gocron/v2"

	docs "github.com/flaviojulio/ir-app/docs"
	"github.com/flaviojulio/ir-app/internal/config"
	"github.com/flaviojulio/ir-app/internal/infra/db"
	applogger "github.com/flaviojulio/ir-app/internal/infra/logger"
	"github.com/flaviojulio/ir-app/internal/infra/repository"
	httptransport "github.com/flaviojulio/ir-app/internal/transport/http"
	"github.com/flaviojulio/ir-app/internal/usecase"
)

// @title Carteira IR API
// @version 1.0
// @description Multi-user stock operation tracking with FIFO matching, portfolio rebuild, and Brazilian capital-gains tax results.
// @BasePath /api/v1
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization

func main() {
	rootCtx := context.Background()

	applogger.Init("info")
	logger := applogger.Logger

	cfg, err := config.Load()
	if err != nil {
		logger.Fatal().Err(err).Msg("load config")
	}

	applogger.Init(cfg.Logging.Level)
	logger = applogger.Logger
	logger.Info().Str("level", cfg.Logging.Level).Msg("logger initialized")

	docs.SwaggerInfo.Title = "Carteira IR API"
	docs.SwaggerInfo.Version = "1.0"
	docs.SwaggerInfo.BasePath = "/api/v1"

	logger.Info().Str("dsn", maskDSN(cfg.Database.DSN)).Msg("connecting to database")
	gormDB, err := db.Connect(rootCtx, cfg.Database.DSN)
	if err != nil {
		logger.Fatal().Err(err).Msg("connect database")
	}
	sqlDB, err := gormDB.DB()
	if err != nil {
		logger.Fatal().Err(err).Msg("underlying sql db")
	}
	defer sqlDB.Close()
	logger.Info().Msg("database connected")

	if err := db.ApplyMigrations(rootCtx, gormDB); err != nil {
		logger.Fatal().Err(err).Msg("apply migrations")
	}
	logger.Info().Msg("migrations applied")

	operationRepo, err := repository.NewGormOperationRepository(gormDB)
	if err != nil {
		logger.Fatal().Err(err).Msg("init operation repository")
	}
	portfolioRepo, err := repository.NewGormPortfolioRepository(gormDB)
	if err != nil {
		logger.Fatal().Err(err).Msg("init portfolio repository")
	}
	monthlyRepo, err := repository.NewGormMonthlyResultRepository(gormDB)
	if err != nil {
		logger.Fatal().Err(err).Msg("init monthly result repository")
	}
	closedRepo, err := repository.NewGormClosedPositionRepository(gormDB)
	if err != nil {
		logger.Fatal().Err(err).Msg("init closed position repository")
	}
	maintenanceRepo, err := repository.NewGormMaintenanceRepository(gormDB)
	if err != nil {
		logger.Fatal().Err(err).Msg("init maintenance repository")
	}
	userRepo, err := repository.NewGormUserRepository(gormDB)
	if err != nil {
		logger.Fatal().Err(err).Msg("init user repository")
	}
	roleRepo, err := repository.NewGormRoleRepository(gormDB)
	if err != nil {
		logger.Fatal().Err(err).Msg("init role repository")
	}
	tokenRepo, err := repository.NewGormTokenRepository(gormDB)
	if err != nil {
		logger.Fatal().Err(err).Msg("init token repository")
	}

	ledgerService, err := usecase.NewLedgerService(operationRepo, portfolioRepo, monthlyRepo, closedRepo, maintenanceRepo)
	if err != nil {
		logger.Fatal().Err(err).Msg("init ledger service")
	}
	authService, err := usecase.NewAuthService(userRepo, roleRepo, tokenRepo, cfg.Auth.JWTSecret, cfg.Auth.TokenTTL)
	if err != nil {
		logger.Fatal().Err(err).Msg("init auth service")
	}

	if err := authService.Bootstrap(rootCtx, cfg.Auth.AdminUsername, cfg.Auth.AdminEmail, cfg.Auth.AdminPassword); err != nil {
		logger.Fatal().Err(err).Msg("bootstrap roles and admin")
	}
	logger.Info().Msg("all services initialized")

	router := httptransport.New(authService, ledgerService)

	logger.Info().Dur("interval", cfg.Maintenance.TokenPurgeInterval).Msg("initializing scheduler")
	scheduler, err := gocron.NewScheduler()
	if err != nil {
		logger.Fatal().Err(err).Msg("init scheduler")
	}
	defer func() {
		if err := scheduler.Shutdown(); err != nil {
			logger.Error().Err(err).Msg("scheduler shutdown error")
		}
	}()

	_, err = scheduler.NewJob(
		gocron.DurationJob(cfg.Maintenance.TokenPurgeInterval),
		gocron.NewTask(func(ctx context.Context) {
			purged, err := authService.PurgeExpiredTokens(ctx)
			if err != nil {
				logger.Error().Err(err).Msg("token purge error")
				return
			}
			if purged > 0 {
				logger.Info().Int64("purged", purged).Msg("expired tokens purged")
			}
		}),
	)
	if err != nil {
		logger.Fatal().Err(err).Msg("schedule token purge")
	}
	scheduler.Start()
	logger.Info().Msg("scheduler started")

	serverErr := make(chan error, 1)
	go func() {
		addr := ":" + cfg.Server.Port
		logger.Info().Str("addr", addr).Msg("server listening")
		serverErr <- router.App().Listen(addr)
	}()

	signalCh := make(chan os.Signal, 1)
	signal.Notify(signalCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-serverErr:
		if err != nil {
			logger.Fatal().Err(err).Msg("fiber server error")
		}
	case sig := <-signalCh:
		logger.Info().Str("signal", sig.String()).Msg("received signal, shutting down")
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := router.App().ShutdownWithContext(ctx); err != nil {
			logger.Error().Err(err).Msg("server shutdown error")
		}
		logger.Info().Msg("server shutdown complete")
	}
}

func maskDSN(dsn string) string {
	if len(dsn) > 20 {
		return dsn[:10] + "***" + dsn[len(dsn)-10:]
	}
	return "***"
}
