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

	"go.uber.org/zap"

	"github.com/ren-jimpo/shift-management-app-sub000/config"
	"github.com/ren-jimpo/shift-management-app-sub000/internal/api/handler"
	"github.com/ren-jimpo/shift-management-app-sub000/internal/api/router"
	"github.com/ren-jimpo/shift-management-app-sub000/internal/notify"
	"github.com/ren-jimpo/shift-management-app-sub000/internal/repository"
	"github.com/ren-jimpo/shift-management-app-sub000/internal/service"
	"github.com/ren-jimpo/shift-management-app-sub000/pkg/database"
	"github.com/ren-jimpo/shift-management-app-sub000/pkg/jwt"
	applogger "github.com/ren-jimpo/shift-management-app-sub000/pkg/logger"
	"github.com/ren-jimpo/shift-management-app-sub000/pkg/mail"
	"github.com/ren-jimpo/shift-management-app-sub000/pkg/redis"
)

func main() {
	// 1. config
	cfg, err := config.Load(os.Getenv("SHIFT_CONFIG"))
	if err != nil {
		fmt.Fprintf(os.Stderr, "load config: %v\n", err)
		os.Exit(1)
	}

	// 2. logger
	logger, err := applogger.NewLogger(&cfg.Log)
	if err != nil {
		fmt.Fprintf(os.Stderr, "init logger: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = logger.Sync() }()

	logger.Info("starting server",
		zap.Int("port", cfg.Server.Port),
		zap.String("log_level", cfg.Log.Level),
		zap.String("timezone", cfg.Server.Location().String()),
	)

	// 3. database + migrations
	db, err := database.NewDB(&cfg.Database, cfg.Log.Level, logger)
	if err != nil {
		logger.Fatal("connect database failed", zap.Error(err))
	}

	sqlDB, err := db.DB()
	if err != nil {
		logger.Fatal("get sql.DB failed", zap.Error(err))
	}
	if err := database.RunMigrations(sqlDB, logger); err != nil {
		logger.Fatal("run migrations failed", zap.Error(err))
	}

	// 4. redis is optional; without it logout and rate limiting degrade
	var rdb *redis.Client
	if cfg.Redis.Enabled {
		rdb, err = redis.NewClient(&cfg.Redis, logger)
		if err != nil {
			logger.Warn("redis unavailable, token blacklist and rate limit disabled", zap.Error(err))
			rdb = nil
		}
	}

	// 5. mail + notifications
	sender := mail.NewSender(&cfg.Mail, logger)
	direct := notify.NewDirectNotifier(sender, logger)

	rootCtx, stopConsumer := context.WithCancel(context.Background())
	defer stopConsumer()

	var notifier notify.Notifier = direct
	if cfg.Queue.Enabled {
		notifier = notify.NewQueueNotifier(&cfg.Queue, direct, logger)
		go notify.NewConsumer(&cfg.Queue, sender, logger).Run(rootCtx)
		logger.Info("notification queue enabled", zap.String("queue", cfg.Queue.Name))
	}

	// 6. repository → service → handler
	jwtMgr := jwt.NewManager(&cfg.Auth)
	repo := repository.NewRepository(db)

	deps := service.Deps{
		JWT:      jwtMgr,
		Sender:   sender,
		Notifier: notifier,
	}
	if rdb != nil {
		deps.Revoker = rdb
	}
	svc := service.NewService(cfg, repo, deps, logger)
	h := handler.NewHandler(svc)

	engine := router.Setup(cfg, h, jwtMgr, rdb, db, logger)

	// 7. HTTP server with graceful shutdown
	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      engine,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 60 * time.Second, // the cron job answers after the last batch
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info("http server listening", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("http server failed", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit

	logger.Info("shutting down", zap.String("signal", sig.String()))

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("http server shutdown failed", zap.Error(err))
	}

	stopConsumer()
	if err := notifier.Close(); err != nil {
		logger.Warn("notifier close failed", zap.Error(err))
	}

	_ = sqlDB.Close()
	if rdb != nil {
		_ = rdb.Close()
	}

	logger.Info("server stopped")
}
