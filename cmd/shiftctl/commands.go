package main

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/ren-jimpo/shift-management-app-sub000/internal/dto"
	"github.com/ren-jimpo/shift-management-app-sub000/pkg/database"
)

func migrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply pending database migrations",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			sqlDB, err := app.db.DB()
			if err != nil {
				return fmt.Errorf("get sql.DB: %w", err)
			}
			return database.RunMigrations(sqlDB, app.logger)
		},
	}
}

func notifyDailyCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "notify-daily",
		Short: "Email everyone with a confirmed shift today",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			result, err := app.svc.Notification.SendDailyShiftNotifications(app.ctx)
			if err != nil {
				return fmt.Errorf("daily notifications: %w", err)
			}

			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(result)
		},
	}
}

func exportWeekCmd() *cobra.Command {
	var req dto.ShiftExportRequest
	var out string

	cmd := &cobra.Command{
		Use:   "export-week",
		Short: "Write the weekly roster of a store as an xlsx workbook",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			buf, filename, err := app.svc.Shift.ExportWeek(app.ctx, &req)
			if err != nil {
				return fmt.Errorf("export week: %w", err)
			}

			path := out
			if path == "" {
				path = filename
			} else if info, err := os.Stat(path); err == nil && info.IsDir() {
				path = filepath.Join(path, filename)
			}

			if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
				return fmt.Errorf("write %s: %w", path, err)
			}

			app.logger.Info("roster exported", zap.String("file", path), zap.Int("bytes", buf.Len()))
			fmt.Fprintln(cmd.OutOrStdout(), path)
			return nil
		},
	}

	cmd.Flags().StringVar(&req.StoreID, "store", "", "store id (required)")
	cmd.Flags().StringVar(&req.WeekStart, "week-start", "", "first day of the week, YYYY-MM-DD (required)")
	cmd.Flags().StringVarP(&out, "out", "o", "", "output file or directory (default: generated name in cwd)")
	_ = cmd.MarkFlagRequired("store")
	_ = cmd.MarkFlagRequired("week-start")

	return cmd
}
