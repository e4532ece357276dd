package main

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/ren-jimpo/shift-management-app-sub000/internal/api/validation"
	"github.com/ren-jimpo/shift-management-app-sub000/internal/dto"
	"github.com/ren-jimpo/shift-management-app-sub000/internal/model"
	"github.com/ren-jimpo/shift-management-app-sub000/internal/service"
)

// SeedFile is the YAML layout accepted by `shiftctl seed`.
type SeedFile struct {
	Stores   []SeedStore   `yaml:"stores"   validate:"dive"`
	Patterns []SeedPattern `yaml:"patterns" validate:"dive"`
	Manager  *SeedManager  `yaml:"manager"  validate:"omitempty"`
}

// SeedStore a store with its time slots.
type SeedStore struct {
	Name          string                    `yaml:"name"           validate:"required,max=100"`
	RequiredStaff map[string]map[string]int `yaml:"required_staff"`
	TimeSlots     []SeedTimeSlot            `yaml:"time_slots"     validate:"dive"`
}

// SeedTimeSlot a slot of the enclosing store.
type SeedTimeSlot struct {
	Name  string `yaml:"name"  validate:"required,max=50"`
	Start string `yaml:"start" validate:"required,hhmm"`
	End   string `yaml:"end"   validate:"required,hhmm"`
	Order int    `yaml:"order" validate:"min=0"`
}

// SeedPattern a shift pattern.
type SeedPattern struct {
	Name      string `yaml:"name"       validate:"required,max=50"`
	Start     string `yaml:"start"      validate:"required,hhmm"`
	End       string `yaml:"end"        validate:"required,hhmm"`
	Color     string `yaml:"color"      validate:"omitempty,hexcolor6"`
	BreakTime int    `yaml:"break_time" validate:"min=0,max=480"`
}

// SeedManager the initial manager account.
type SeedManager struct {
	Name     string `yaml:"name"     validate:"required,max=100"`
	Email    string `yaml:"email"    validate:"required,email"`
	Password string `yaml:"password" validate:"required,min=6,max=72"`
}

type seedReport struct {
	StoresCreated   int
	PatternsCreated int
	SlotsCreated    int
	ManagerLoginID  string
}

func seedCmd() *cobra.Command {
	var file string

	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Create stores, shift patterns, time slots and a manager from YAML",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			seed, err := loadSeedFile(file)
			if err != nil {
				return err
			}

			report, err := applySeed(app.ctx, app.svc, seed, app.logger)
			if err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "stores: %d, patterns: %d, time slots: %d\n",
				report.StoresCreated, report.PatternsCreated, report.SlotsCreated)
			if report.ManagerLoginID != "" {
				fmt.Fprintf(cmd.OutOrStdout(), "manager login id: %s\n", report.ManagerLoginID)
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&file, "file", "f", "seed.yaml", "seed file")
	return cmd
}

// loadSeedFile reads and validates a seed file.
func loadSeedFile(path string) (*SeedFile, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read seed file: %w", err)
	}
	return parseSeed(raw)
}

func parseSeed(raw []byte) (*SeedFile, error) {
	var seed SeedFile
	if err := yaml.Unmarshal(raw, &seed); err != nil {
		return nil, fmt.Errorf("parse seed file: %w", err)
	}

	v := validator.New()
	if err := validation.RegisterOn(v); err != nil {
		return nil, err
	}
	if err := v.Struct(&seed); err != nil {
		return nil, fmt.Errorf("invalid seed file: %w", err)
	}
	return &seed, nil
}

// applySeed creates everything in seed through the services, skipping rows
// that already exist so the command can be rerun.
func applySeed(ctx context.Context, svc *service.Service, seed *SeedFile, logger *zap.Logger) (*seedReport, error) {
	report := &seedReport{}

	existing, err := svc.Store.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list stores: %w", err)
	}
	storeIDs := make(map[string]string, len(existing))
	for _, s := range existing {
		storeIDs[s.Name] = s.ID
	}

	for _, s := range seed.Stores {
		id, ok := storeIDs[s.Name]
		if !ok {
			created, err := svc.Store.Create(ctx, &dto.CreateStoreRequest{
				Name:          s.Name,
				RequiredStaff: s.RequiredStaff,
			})
			if err != nil {
				return nil, fmt.Errorf("create store %q: %w", s.Name, err)
			}
			id = created.ID
			report.StoresCreated++
		}

		for _, ts := range s.TimeSlots {
			_, err := svc.TimeSlot.Create(ctx, &dto.CreateTimeSlotRequest{
				StoreID:      id,
				Name:         ts.Name,
				StartTime:    ts.Start,
				EndTime:      ts.End,
				DisplayOrder: ts.Order,
			})
			if errors.Is(err, service.ErrTimeSlotOverlap) {
				logger.Info("time slot exists, skipped", zap.String("store", s.Name), zap.String("slot", ts.Name))
				continue
			}
			if err != nil {
				return nil, fmt.Errorf("create time slot %q at %q: %w", ts.Name, s.Name, err)
			}
			report.SlotsCreated++
		}
	}

	patterns, err := svc.ShiftPattern.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list shift patterns: %w", err)
	}
	havePattern := make(map[string]bool, len(patterns))
	for _, p := range patterns {
		havePattern[p.Name] = true
	}
	for _, p := range seed.Patterns {
		if havePattern[p.Name] {
			continue
		}
		if _, err := svc.ShiftPattern.Create(ctx, &dto.CreateShiftPatternRequest{
			Name:      p.Name,
			StartTime: p.Start,
			EndTime:   p.End,
			Color:     p.Color,
			BreakTime: p.BreakTime,
		}); err != nil {
			return nil, fmt.Errorf("create shift pattern %q: %w", p.Name, err)
		}
		report.PatternsCreated++
	}

	if m := seed.Manager; m != nil {
		password := m.Password
		created, err := svc.User.Create(ctx, &dto.CreateUserRequest{
			Name:     m.Name,
			Email:    m.Email,
			Role:     model.RoleManager,
			Password: &password,
		})
		switch {
		case errors.Is(err, service.ErrEmailTaken):
			logger.Info("manager exists, skipped", zap.String("email", m.Email))
		case err != nil:
			return nil, fmt.Errorf("create manager: %w", err)
		default:
			report.ManagerLoginID = created.User.LoginID
		}
	}

	return report, nil
}
