package service

import (
	"bytes"
	"context"
	"errors"
	"sort"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/ren-jimpo/shift-management-app-sub000/internal/dto"
	"github.com/ren-jimpo/shift-management-app-sub000/internal/model"
	"github.com/ren-jimpo/shift-management-app-sub000/internal/notify"
	"github.com/ren-jimpo/shift-management-app-sub000/internal/repository"
	pkgerrors "github.com/ren-jimpo/shift-management-app-sub000/pkg/errors"
	"github.com/ren-jimpo/shift-management-app-sub000/pkg/timeutil"
)

// ShiftService shift assignment, conflict resolution and publishing.
type ShiftService interface {
	Create(ctx context.Context, req *dto.CreateShiftRequest) (*dto.ShiftResponse, error)
	GetByID(ctx context.Context, id string) (*dto.ShiftResponse, error)
	List(ctx context.Context, req *dto.ShiftListRequest) ([]dto.ShiftResponse, error)
	Update(ctx context.Context, id string, req *dto.UpdateShiftRequest) (*dto.ShiftResponse, error)
	Delete(ctx context.Context, id string) error
	BulkUpdateWeek(ctx context.Context, req *dto.BulkUpdateWeekRequest) (*dto.BulkUpdateResponse, error)
	CreateRecurring(ctx context.Context, req *dto.RecurringShiftRequest) (*dto.RecurringShiftResponse, error)
	ExportWeek(ctx context.Context, req *dto.ShiftExportRequest) (*bytes.Buffer, string, error)
	Calendar(ctx context.Context, userID string) ([]byte, error)
}

type shiftService struct {
	repo     *repository.Repository
	notifier notify.Notifier
	baseURL  string
	loc      *time.Location
	logger   *zap.Logger
}

// NewShiftService creates a ShiftService. loc is the business timezone
// used to place pattern times on calendar dates.
func NewShiftService(repo *repository.Repository, notifier notify.Notifier, baseURL string, loc *time.Location, logger *zap.Logger) ShiftService {
	if loc == nil {
		loc = time.Local
	}
	return &shiftService{
		repo:     repo,
		notifier: notifier,
		baseURL:  baseURL,
		loc:      loc,
		logger:   logger,
	}
}

// ═══════════════════════════════════════════════════════════
// Conflict resolution
// ═══════════════════════════════════════════════════════════
//
// For (user, date), ignoring excludeID:
//   1. an existing confirmed shift always conflicts ("confirmed");
//   2. a confirmed write evicts every draft;
//   3. any other write conflicts with an existing draft ("draft").
// Callers hold the (user, date) advisory lock inside the same transaction.

func resolveConflicts(ctx context.Context, tx *repository.Repository, userID string, date time.Time, status, excludeID string) error {
	existing, err := tx.Shift.ListByUserAndDate(ctx, userID, date)
	if err != nil {
		return err
	}

	var draft *model.Shift
	for i := range existing {
		sh := &existing[i]
		if sh.ID == excludeID {
			continue
		}
		if sh.Status == model.ShiftStatusConfirmed {
			return shiftConflict(model.ShiftStatusConfirmed, sh)
		}
		if sh.Status == model.ShiftStatusDraft && draft == nil {
			draft = sh
		}
	}

	if status == model.ShiftStatusConfirmed {
		_, err := tx.Shift.DeleteDrafts(ctx, userID, date, excludeID)
		return err
	}
	if draft != nil {
		return shiftConflict(model.ShiftStatusDraft, draft)
	}
	return nil
}

func shiftConflict(conflictType string, sh *model.Shift) *ConflictError {
	ce := &ConflictError{Kind: ErrShiftConflict, ConflictType: conflictType, StoreID: sh.StoreID}
	if sh.Store != nil {
		ce.StoreName = sh.Store.Name
	}
	return ce
}

// lockDates takes the advisory locks for every (user, date) pair a write
// touches, in a fixed order so two writers cannot deadlock.
func lockDates(ctx context.Context, tx *repository.Repository, userID string, dates ...time.Time) error {
	sort.Slice(dates, func(i, j int) bool { return dates[i].Before(dates[j]) })
	var last time.Time
	for i, d := range dates {
		if i > 0 && d.Equal(last) {
			continue
		}
		if err := tx.Shift.LockUserDate(ctx, userID, d); err != nil {
			return err
		}
		last = d
	}
	return nil
}

// createInTx runs the full create workflow for shift inside tx.
func createInTx(ctx context.Context, tx *repository.Repository, shift *model.Shift) error {
	if err := lockDates(ctx, tx, shift.UserID, shift.Date); err != nil {
		return err
	}
	if err := resolveConflicts(ctx, tx, shift.UserID, shift.Date, shift.Status, ""); err != nil {
		return err
	}
	return tx.Shift.Create(ctx, shift)
}

// ═══════════════════════════════════════════════════════════
// CRUD
// ═══════════════════════════════════════════════════════════

func (s *shiftService) Create(ctx context.Context, req *dto.CreateShiftRequest) (*dto.ShiftResponse, error) {
	date, err := timeutil.ParseDate(req.Date)
	if err != nil {
		return nil, invalidFields(err.Error(), "date")
	}
	status := req.Status
	if status == "" {
		status = model.ShiftStatusDraft
	}
	if err := s.checkRefs(ctx, req.UserID, req.StoreID, req.PatternID); err != nil {
		return nil, err
	}

	shift := &model.Shift{
		UserID:    req.UserID,
		StoreID:   req.StoreID,
		Date:      date,
		PatternID: req.PatternID,
		Status:    status,
		Notes:     req.Notes,
		Version:   1,
	}

	err = s.repo.Tx.WithinTx(ctx, func(tx *repository.Repository) error {
		return createInTx(ctx, tx, shift)
	})
	if err != nil {
		return nil, s.mapWriteError(err, status)
	}

	created, err := s.repo.Shift.GetByID(ctx, shift.ID)
	if err != nil {
		return nil, err
	}
	if created.Status == model.ShiftStatusConfirmed {
		s.notifyConfirmed(ctx, created)
	}

	resp := toShiftResponse(created)
	return &resp, nil
}

func (s *shiftService) GetByID(ctx context.Context, id string) (*dto.ShiftResponse, error) {
	shift, err := s.repo.Shift.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrShiftNotFound
		}
		return nil, err
	}
	resp := toShiftResponse(shift)
	return &resp, nil
}

func (s *shiftService) List(ctx context.Context, req *dto.ShiftListRequest) ([]dto.ShiftResponse, error) {
	filter := repository.ShiftFilter{
		StoreID: req.StoreID,
		UserID:  req.UserID,
		Status:  req.Status,
	}
	var err error
	if filter.DateFrom, err = optionalDate(req.DateFrom, "date_from"); err != nil {
		return nil, err
	}
	if filter.DateTo, err = optionalDate(req.DateTo, "date_to"); err != nil {
		return nil, err
	}

	shifts, err := s.repo.Shift.List(ctx, filter)
	if err != nil {
		s.logger.Error("list shifts failed", zap.Error(err))
		return nil, err
	}

	result := make([]dto.ShiftResponse, 0, len(shifts))
	for i := range shifts {
		result = append(result, toShiftResponse(&shifts[i]))
	}
	return result, nil
}

func (s *shiftService) Update(ctx context.Context, id string, req *dto.UpdateShiftRequest) (*dto.ShiftResponse, error) {
	shift, err := s.repo.Shift.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrShiftNotFound
		}
		return nil, err
	}
	if req.Version != nil && *req.Version != shift.Version {
		return nil, &ConflictError{Kind: ErrShiftStale, ConflictType: "version"}
	}

	wasConfirmed := shift.Status == model.ShiftStatusConfirmed
	oldDate := shift.Date

	if req.Date != nil {
		if shift.Date, err = timeutil.ParseDate(*req.Date); err != nil {
			return nil, invalidFields(err.Error(), "date")
		}
	}
	if req.StoreID != nil {
		shift.StoreID = *req.StoreID
	}
	if req.PatternID != nil {
		shift.PatternID = *req.PatternID
	}
	if req.Status != nil {
		shift.Status = *req.Status
	}
	if req.Notes != nil {
		shift.Notes = *req.Notes
	}
	if req.StoreID != nil || req.PatternID != nil {
		if err := s.checkRefs(ctx, "", shift.StoreID, shift.PatternID); err != nil {
			return nil, err
		}
	}

	err = s.repo.Tx.WithinTx(ctx, func(tx *repository.Repository) error {
		if err := lockDates(ctx, tx, shift.UserID, oldDate, shift.Date); err != nil {
			return err
		}
		if err := resolveConflicts(ctx, tx, shift.UserID, shift.Date, shift.Status, shift.ID); err != nil {
			return err
		}
		return tx.Shift.Update(ctx, shift)
	})
	if err != nil {
		return nil, s.mapWriteError(err, shift.Status)
	}

	updated, err := s.repo.Shift.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !wasConfirmed && updated.Status == model.ShiftStatusConfirmed {
		s.notifyConfirmed(ctx, updated)
	}

	resp := toShiftResponse(updated)
	return &resp, nil
}

func (s *shiftService) Delete(ctx context.Context, id string) error {
	if err := s.repo.Shift.Delete(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrShiftNotFound
		}
		s.logger.Error("delete shift failed", zap.String("id", id), zap.Error(err))
		return err
	}
	return nil
}

// ═══════════════════════════════════════════════════════════
// BulkUpdateWeek — PATCH /shifts
// ═══════════════════════════════════════════════════════════
//
// Sets the status of every shift of the store inside the week window.
// Per-user invariants are not re-validated here; the partial unique
// indexes still reject a second confirmed or draft row for a user and day.

func (s *shiftService) BulkUpdateWeek(ctx context.Context, req *dto.BulkUpdateWeekRequest) (*dto.BulkUpdateResponse, error) {
	from, to, err := timeutil.WeekWindow(req.WeekStart, req.WeekEnd)
	if err != nil {
		return nil, invalidFields(err.Error(), "week_start", "week_end")
	}

	shifts, err := s.repo.Shift.List(ctx, repository.ShiftFilter{
		StoreID:  req.StoreID,
		DateFrom: &from,
		DateTo:   &to,
	})
	if err != nil {
		s.logger.Error("list week shifts failed", zap.Error(err))
		return nil, err
	}
	if len(shifts) == 0 {
		return nil, ErrNoShiftsInWindow
	}

	ids := make([]string, 0, len(shifts))
	for _, sh := range shifts {
		ids = append(ids, sh.ID)
	}

	n, err := s.repo.Shift.UpdateStatusByIDs(ctx, ids, req.Status)
	if err != nil {
		return nil, s.mapWriteError(err, req.Status)
	}

	s.logger.Info("week status updated",
		zap.String("store_id", req.StoreID),
		zap.String("week_start", timeutil.FormatDate(from)),
		zap.String("week_end", timeutil.FormatDate(to)),
		zap.String("status", req.Status),
		zap.Int64("updated", n),
	)
	return &dto.BulkUpdateResponse{UpdatedCount: n}, nil
}

// ── helpers ──

// checkRefs verifies referenced rows exist; empty ids are skipped.
func (s *shiftService) checkRefs(ctx context.Context, userID, storeID, patternID string) error {
	if userID != "" {
		if _, err := s.repo.User.GetByID(ctx, userID); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrUserNotFound
			}
			return err
		}
	}
	if storeID != "" {
		if _, err := s.repo.Store.GetByID(ctx, storeID); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrStoreNotFound
			}
			return err
		}
	}
	if patternID != "" {
		if _, err := s.repo.ShiftPattern.GetByID(ctx, patternID); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrPatternNotFound
			}
			return err
		}
	}
	return nil
}

// mapWriteError turns storage-level failures of a shift write into
// service errors. A unique-index hit means a concurrent writer won.
func (s *shiftService) mapWriteError(err error, status string) error {
	var ce *ConflictError
	switch {
	case errors.As(err, &ce):
		return ce
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return &ConflictError{Kind: ErrShiftConflict, ConflictType: status}
	case errors.Is(err, pkgerrors.ErrOptimisticLock):
		return &ConflictError{Kind: ErrShiftStale, ConflictType: "version"}
	}
	s.logger.Error("shift write failed", zap.Error(err))
	return err
}

func (s *shiftService) notifyConfirmed(ctx context.Context, shift *model.Shift) {
	if shift.User == nil || shift.Store == nil || shift.Pattern == nil {
		return
	}
	msg, err := renderMail(shift.User.Email, "Shift confirmed: "+timeutil.FormatDate(shift.Date), "shift_confirmed", mailData{
		Name:    shift.User.Name,
		Date:    timeutil.FormatDate(shift.Date),
		Store:   shift.Store.Name,
		Start:   clock(shift.Pattern.StartTime),
		End:     clock(shift.Pattern.EndTime),
		BaseURL: s.baseURL,
	})
	if err != nil {
		s.logger.Warn("render confirmation email failed", zap.Error(err))
		return
	}
	s.notifier.Notify(ctx, msg)
}

func optionalDate(s, field string) (*time.Time, error) {
	if s == "" {
		return nil, nil
	}
	d, err := timeutil.ParseDate(s)
	if err != nil {
		return nil, invalidFields(field+": "+err.Error(), field)
	}
	return &d, nil
}
