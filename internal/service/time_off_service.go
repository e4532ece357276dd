package service

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/ren-jimpo/shift-management-app-sub000/internal/dto"
	"github.com/ren-jimpo/shift-management-app-sub000/internal/model"
	"github.com/ren-jimpo/shift-management-app-sub000/internal/notify"
	"github.com/ren-jimpo/shift-management-app-sub000/internal/repository"
	"github.com/ren-jimpo/shift-management-app-sub000/pkg/timeutil"
)

// TimeOffService time-off requests and their approval.
type TimeOffService interface {
	Create(ctx context.Context, caller Caller, req *dto.CreateTimeOffRequest) (*dto.TimeOffResponse, error)
	List(ctx context.Context, caller Caller, req *dto.TimeOffListRequest) ([]dto.TimeOffResponse, error)
	Respond(ctx context.Context, caller Caller, id string, req *dto.RespondTimeOffRequest) (*dto.TimeOffResponse, error)
	BulkRespond(ctx context.Context, caller Caller, req *dto.BulkRespondTimeOffRequest) (*dto.BulkUpdateResponse, error)
	Delete(ctx context.Context, caller Caller, id string) error
}

type timeOffService struct {
	repo     *repository.Repository
	notifier notify.Notifier
	baseURL  string
	logger   *zap.Logger
}

// NewTimeOffService creates a TimeOffService.
func NewTimeOffService(repo *repository.Repository, notifier notify.Notifier, baseURL string, logger *zap.Logger) TimeOffService {
	return &timeOffService{
		repo:     repo,
		notifier: notifier,
		baseURL:  baseURL,
		logger:   logger,
	}
}

func (s *timeOffService) Create(ctx context.Context, caller Caller, req *dto.CreateTimeOffRequest) (*dto.TimeOffResponse, error) {
	userID := req.UserID
	if userID == "" {
		userID = caller.UserID
	}
	if !caller.canActFor(userID) {
		return nil, ErrForbidden
	}
	date, err := timeutil.ParseDate(req.Date)
	if err != nil {
		return nil, invalidFields(err.Error(), "date")
	}
	if _, err := s.repo.User.GetByID(ctx, userID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}

	row := &model.TimeOffRequest{
		UserID: userID,
		Date:   date,
		Reason: req.Reason,
		Status: model.TimeOffPending,
	}

	// the (user, date) lock is shared with shift writes
	err = s.repo.Tx.WithinTx(ctx, func(tx *repository.Repository) error {
		if err := tx.Shift.LockUserDate(ctx, userID, date); err != nil {
			return err
		}
		active, err := tx.TimeOff.ListActiveByUserAndDate(ctx, userID, date)
		if err != nil {
			return err
		}
		if len(active) > 0 {
			return &ConflictError{Kind: ErrTimeOffDuplicate, ConflictType: "time_off", Fields: []string{"date"}}
		}
		return tx.TimeOff.Create(ctx, row)
	})
	if err != nil {
		var ce *ConflictError
		if !errors.As(err, &ce) {
			s.logger.Error("create time-off request failed", zap.Error(err))
		}
		return nil, err
	}

	created, err := s.repo.TimeOff.GetByID(ctx, row.ID)
	if err != nil {
		return nil, err
	}
	resp := toTimeOffResponse(created)
	return &resp, nil
}

// List returns requests matching req. Staff only ever see their own.
func (s *timeOffService) List(ctx context.Context, caller Caller, req *dto.TimeOffListRequest) ([]dto.TimeOffResponse, error) {
	filter := repository.TimeOffFilter{UserID: req.UserID, Status: req.Status}
	if !caller.IsManager() {
		filter.UserID = caller.UserID
	}
	var err error
	if filter.DateFrom, err = optionalDate(req.DateFrom, "date_from"); err != nil {
		return nil, err
	}
	if filter.DateTo, err = optionalDate(req.DateTo, "date_to"); err != nil {
		return nil, err
	}

	rows, err := s.repo.TimeOff.List(ctx, filter)
	if err != nil {
		s.logger.Error("list time-off requests failed", zap.Error(err))
		return nil, err
	}
	result := make([]dto.TimeOffResponse, 0, len(rows))
	for i := range rows {
		result = append(result, toTimeOffResponse(&rows[i]))
	}
	return result, nil
}

// Respond answers a single pending request and emails the requester.
func (s *timeOffService) Respond(ctx context.Context, caller Caller, id string, req *dto.RespondTimeOffRequest) (*dto.TimeOffResponse, error) {
	current, err := s.repo.TimeOff.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTimeOffNotFound
		}
		return nil, err
	}

	n, err := s.repo.TimeOff.Respond(ctx, []string{id}, req.Status, caller.UserID, time.Now())
	if err != nil {
		s.logger.Error("respond time-off request failed", zap.String("id", id), zap.Error(err))
		return nil, err
	}
	if n == 0 {
		status := current.Status
		if status == model.TimeOffPending {
			// answered between the read and the write
			if latest, err := s.repo.TimeOff.GetByID(ctx, id); err == nil {
				status = latest.Status
			}
		}
		return nil, &ConflictError{Kind: ErrTimeOffNotPending, ConflictType: status}
	}

	updated, err := s.repo.TimeOff.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	s.notifyRequester(ctx, updated)

	resp := toTimeOffResponse(updated)
	return &resp, nil
}

// ═══════════════════════════════════════════════════════════
// BulkRespond — PATCH /time-off-requests
// ═══════════════════════════════════════════════════════════
//
// One conditional UPDATE over at most MaxBulkTimeOff ids; rows that are no
// longer pending are left alone and simply not counted.

func (s *timeOffService) BulkRespond(ctx context.Context, caller Caller, req *dto.BulkRespondTimeOffRequest) (*dto.BulkUpdateResponse, error) {
	if len(req.IDs) == 0 {
		return nil, invalidFields("ids must not be empty", "ids")
	}
	if len(req.IDs) > dto.MaxBulkTimeOff {
		return nil, invalidFields("at most 100 ids may be updated at once", "ids")
	}

	seen := make(map[string]struct{}, len(req.IDs))
	ids := make([]string, 0, len(req.IDs))
	for _, id := range req.IDs {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		ids = append(ids, id)
	}

	n, err := s.repo.TimeOff.Respond(ctx, ids, req.Status, caller.UserID, time.Now())
	if err != nil {
		s.logger.Error("bulk respond time-off failed", zap.Int("ids", len(ids)), zap.Error(err))
		return nil, err
	}

	s.logger.Info("time-off requests answered",
		zap.String("status", req.Status),
		zap.Int("requested", len(ids)),
		zap.Int64("updated", n),
	)
	return &dto.BulkUpdateResponse{UpdatedCount: n}, nil
}

// Delete withdraws a pending request. Staff may only withdraw their own.
func (s *timeOffService) Delete(ctx context.Context, caller Caller, id string) error {
	current, err := s.repo.TimeOff.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrTimeOffNotFound
		}
		return err
	}
	if !caller.canActFor(current.UserID) {
		return ErrForbidden
	}

	n, err := s.repo.TimeOff.DeletePending(ctx, id)
	if err != nil {
		s.logger.Error("delete time-off request failed", zap.String("id", id), zap.Error(err))
		return err
	}
	if n == 0 {
		return &ConflictError{Kind: ErrTimeOffNotPending, ConflictType: current.Status}
	}
	return nil
}

func (s *timeOffService) notifyRequester(ctx context.Context, r *model.TimeOffRequest) {
	if r.User == nil {
		return
	}
	date := timeutil.FormatDate(r.Date)
	msg, err := renderMail(r.User.Email, "Time-off request "+r.Status+": "+date, "time_off_response", mailData{
		Name:    r.User.Name,
		Date:    date,
		Status:  r.Status,
		BaseURL: s.baseURL,
	})
	if err != nil {
		s.logger.Warn("render time-off email failed", zap.Error(err))
		return
	}
	s.notifier.Notify(ctx, msg)
}
