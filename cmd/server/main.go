package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"time"

	"go.uber.org/zap"

	"github.com/eggspire/monitor/internal/config"
	"github.com/eggspire/monitor/internal/repository/mysql"
	"github.com/eggspire/monitor/internal/scheduler"
	"github.com/eggspire/monitor/internal/server/handlers"
	"github.com/eggspire/monitor/internal/server/router"
	authsvc "github.com/eggspire/monitor/internal/service/auth"
	reportsvc "github.com/eggspire/monitor/internal/service/report"
	"github.com/eggspire/monitor/pkg/logger"
)

func main() {
	cfg, err := config.Load("")
	if err != nil {
		panic(err)
	}

	baseLogger := logger.Must(logger.New())
	defer func() { _ = baseLogger.Sync() }()

	zap.ReplaceGlobals(baseLogger)

	db, err := mysql.Connect(context.Background(), cfg.Database.DSN())
	if err != nil {
		baseLogger.Fatal("failed to connect to mysql", zap.Error(err))
	}
	defer func() {
		if err := db.Close(); err != nil {
			baseLogger.Error("failed to close mysql pool", zap.Error(err))
		}
	}()

	userRepo := mysql.NewUserRepository(db)
	scanRepo := mysql.NewScanRepository(db)
	reportRepo := mysql.NewReportRepository(db)

	authService := authsvc.NewService(userRepo, cfg.Auth, baseLogger.Named("svc.auth"))
	reportService := reportsvc.NewService(scanRepo, reportRepo,
		cfg.Reports.Dir, cfg.Reports.RetentionDays, baseLogger.Named("svc.report"))

	engine := router.New(router.Handlers{
		Auth:      handlers.NewAuthHandler(authService, userRepo, baseLogger.Named("handlers.auth")),
		Users:     handlers.NewUserHandler(userRepo, baseLogger.Named("handlers.users")),
		Eggs:      handlers.NewEggHandler(scanRepo, baseLogger.Named("handlers.eggs")),
		Dashboard: handlers.NewDashboardHandler(scanRepo, baseLogger.Named("handlers.dashboard")),
		Reports:   handlers.NewReportHandler(reportService, baseLogger.Named("handlers.reports")),
	}, authService, baseLogger.Named("router"))

	sched := scheduler.NewScheduler(cfg.Reports, reportService, baseLogger.Named("scheduler"))
	sched.Start()
	defer sched.Stop()

	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      engine,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	go func() {
		baseLogger.Info("server starting", zap.String("port", cfg.Server.Port))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			baseLogger.Fatal("http server crashed", zap.Error(err))
		}
	}()

	<-ctx.Done()
	baseLogger.Info("shutdown signal received")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		baseLogger.Error("graceful shutdown failed", zap.Error(err))
	}
}
