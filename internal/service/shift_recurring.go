package service

import (
	"context"
	"errors"

	"github.com/teambition/rrule-go"
	"go.uber.org/zap"

	"github.com/ren-jimpo/shift-management-app-sub000/internal/dto"
	"github.com/ren-jimpo/shift-management-app-sub000/internal/model"
	"github.com/ren-jimpo/shift-management-app-sub000/internal/repository"
	"github.com/ren-jimpo/shift-management-app-sub000/pkg/timeutil"
)

const (
	maxRecurringOccurrences = 62
	maxRecurringSpanDays    = 366
)

// ═══════════════════════════════════════════════════════════
// CreateRecurring — POST /shifts/recurring
// ═══════════════════════════════════════════════════════════
//
// Expands the rule between from and until (both inclusive) and creates one
// draft per occurrence. Each date runs in its own transaction so a conflict
// skips that date instead of failing the batch.

func (s *shiftService) CreateRecurring(ctx context.Context, req *dto.RecurringShiftRequest) (*dto.RecurringShiftResponse, error) {
	from, err := timeutil.ParseDate(req.From)
	if err != nil {
		return nil, invalidFields(err.Error(), "from")
	}
	until, err := timeutil.ParseDate(req.Until)
	if err != nil {
		return nil, invalidFields(err.Error(), "until")
	}
	if until.Before(from) {
		return nil, invalidFields("until must not be before from", "from", "until")
	}
	if until.Sub(from).Hours()/24 > maxRecurringSpanDays {
		return nil, invalidFields("recurrence window is longer than one year", "from", "until")
	}

	rule, err := rrule.StrToRRule(req.RRule)
	if err != nil {
		return nil, invalidFields("invalid rrule: "+err.Error(), "rrule")
	}
	if rule.OrigOptions.Freq > rrule.DAILY {
		return nil, invalidFields("rrule frequency must be daily or coarser", "rrule")
	}
	rule.DTStart(from)

	dates := rule.Between(from, until, true)
	if len(dates) == 0 {
		return nil, invalidFields("rrule yields no dates in the given range", "rrule")
	}
	if len(dates) > maxRecurringOccurrences {
		return nil, invalidFields("rrule yields more than 62 dates", "rrule")
	}

	if err := s.checkRefs(ctx, req.UserID, req.StoreID, req.PatternID); err != nil {
		return nil, err
	}

	resp := &dto.RecurringShiftResponse{
		Created: make([]dto.ShiftResponse, 0, len(dates)),
		Skipped: make([]dto.SkippedDate, 0),
	}
	for _, d := range dates {
		date, _ := timeutil.ParseDate(timeutil.FormatDate(d))
		shift := &model.Shift{
			UserID:    req.UserID,
			StoreID:   req.StoreID,
			Date:      date,
			PatternID: req.PatternID,
			Status:    model.ShiftStatusDraft,
			Notes:     req.Notes,
			Version:   1,
		}

		err := s.repo.Tx.WithinTx(ctx, func(tx *repository.Repository) error {
			return createInTx(ctx, tx, shift)
		})
		if err != nil {
			var ce *ConflictError
			if errors.As(s.mapWriteError(err, shift.Status), &ce) {
				skipped := dto.SkippedDate{Date: timeutil.FormatDate(date), ConflictType: ce.ConflictType}
				if ce.StoreID != "" {
					skipped.Store = &dto.StoreBrief{ID: ce.StoreID, Name: ce.StoreName}
				}
				resp.Skipped = append(resp.Skipped, skipped)
				continue
			}
			return nil, err
		}

		created, err := s.repo.Shift.GetByID(ctx, shift.ID)
		if err != nil {
			return nil, err
		}
		resp.Created = append(resp.Created, toShiftResponse(created))
	}

	s.logger.Info("recurring drafts created",
		zap.String("user_id", req.UserID),
		zap.String("rrule", req.RRule),
		zap.Int("created", len(resp.Created)),
		zap.Int("skipped", len(resp.Skipped)),
	)
	return resp, nil
}
