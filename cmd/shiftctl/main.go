// Command shiftctl runs maintenance jobs against the shift database:
// migrations, seeding, the daily notification job and roster exports.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/ren-jimpo/shift-management-app-sub000/config"
	"github.com/ren-jimpo/shift-management-app-sub000/internal/notify"
	"github.com/ren-jimpo/shift-management-app-sub000/internal/repository"
	"github.com/ren-jimpo/shift-management-app-sub000/internal/service"
	"github.com/ren-jimpo/shift-management-app-sub000/pkg/database"
	"github.com/ren-jimpo/shift-management-app-sub000/pkg/jwt"
	applogger "github.com/ren-jimpo/shift-management-app-sub000/pkg/logger"
	"github.com/ren-jimpo/shift-management-app-sub000/pkg/mail"
)

// App holds what every subcommand needs.
type App struct {
	cfg      *config.Config
	logger   *zap.Logger
	db       *gorm.DB
	svc      *service.Service
	notifier notify.Notifier
	ctx      context.Context
}

var (
	configPath string
	app        *App
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	rootCmd := &cobra.Command{
		Use:          "shiftctl",
		Short:        "Shift management maintenance tool",
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return initApp(ctx)
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			closeApp()
		},
	}

	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "path to config file (default ./config/config.yaml)")

	rootCmd.AddCommand(migrateCmd())
	rootCmd.AddCommand(seedCmd())
	rootCmd.AddCommand(notifyDailyCmd())
	rootCmd.AddCommand(exportWeekCmd())

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func initApp(ctx context.Context) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	logger, err := applogger.NewLogger(&cfg.Log)
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}

	db, err := database.NewDB(&cfg.Database, cfg.Log.Level, logger)
	if err != nil {
		return fmt.Errorf("connect database: %w", err)
	}

	sender := mail.NewSender(&cfg.Mail, logger)
	notifier := notify.NewDirectNotifier(sender, logger)

	svc := service.NewService(cfg, repository.NewRepository(db), service.Deps{
		JWT:      jwt.NewManager(&cfg.Auth),
		Sender:   sender,
		Notifier: notifier,
	}, logger)

	app = &App{
		cfg:      cfg,
		logger:   logger,
		db:       db,
		svc:      svc,
		notifier: notifier,
		ctx:      ctx,
	}
	return nil
}

func closeApp() {
	if app == nil {
		return
	}
	_ = app.notifier.Close()
	if sqlDB, err := app.db.DB(); err == nil {
		_ = sqlDB.Close()
	}
	_ = app.logger.Sync()
}
