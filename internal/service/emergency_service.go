package service

import (
	"context"
	"errors"
	"sort"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/ren-jimpo/shift-management-app-sub000/internal/dto"
	"github.com/ren-jimpo/shift-management-app-sub000/internal/model"
	"github.com/ren-jimpo/shift-management-app-sub000/internal/notify"
	"github.com/ren-jimpo/shift-management-app-sub000/internal/repository"
	"github.com/ren-jimpo/shift-management-app-sub000/pkg/timeutil"
)

// EmergencyService substitute requests and the volunteers answering them.
type EmergencyService interface {
	Create(ctx context.Context, req *dto.CreateEmergencyRequest) (*dto.EmergencyResponse, error)
	GetByID(ctx context.Context, id string) (*dto.EmergencyResponse, error)
	List(ctx context.Context, req *dto.EmergencyListRequest) ([]dto.EmergencyResponse, error)
	Update(ctx context.Context, id string, req *dto.UpdateEmergencyRequest) (*dto.EmergencyResponse, error)
	Delete(ctx context.Context, id string) error

	Volunteer(ctx context.Context, caller Caller, req *dto.CreateVolunteerRequest) (*dto.VolunteerResponse, error)
	ListVolunteers(ctx context.Context, req *dto.VolunteerListRequest) ([]dto.VolunteerResponse, error)
	DeleteVolunteer(ctx context.Context, caller Caller, id string) error
}

type emergencyService struct {
	repo     *repository.Repository
	notifier notify.Notifier
	baseURL  string
	logger   *zap.Logger
}

// NewEmergencyService creates an EmergencyService.
func NewEmergencyService(repo *repository.Repository, notifier notify.Notifier, baseURL string, logger *zap.Logger) EmergencyService {
	return &emergencyService{
		repo:     repo,
		notifier: notifier,
		baseURL:  baseURL,
		logger:   logger,
	}
}

// ────────────────────── requests ──────────────────────

func (s *emergencyService) Create(ctx context.Context, req *dto.CreateEmergencyRequest) (*dto.EmergencyResponse, error) {
	date, err := timeutil.ParseDate(req.Date)
	if err != nil {
		return nil, invalidFields(err.Error(), "date")
	}
	if _, err := s.repo.User.GetByID(ctx, req.OriginalUserID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	if _, err := s.repo.Store.GetByID(ctx, req.StoreID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrStoreNotFound
		}
		return nil, err
	}
	if _, err := s.repo.ShiftPattern.GetByID(ctx, req.ShiftPatternID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrPatternNotFound
		}
		return nil, err
	}

	er := &model.EmergencyRequest{
		OriginalUserID: req.OriginalUserID,
		StoreID:        req.StoreID,
		Date:           date,
		ShiftPatternID: req.ShiftPatternID,
		Reason:         req.Reason,
		Status:         model.EmergencyOpen,
	}
	if err := s.repo.Emergency.Create(ctx, er); err != nil {
		s.logger.Error("create emergency request failed", zap.Error(err))
		return nil, err
	}

	created, err := s.repo.Emergency.GetByID(ctx, er.ID)
	if err != nil {
		return nil, err
	}
	s.announce(ctx, created)

	resp := toEmergencyResponse(created)
	return &resp, nil
}

func (s *emergencyService) GetByID(ctx context.Context, id string) (*dto.EmergencyResponse, error) {
	er, err := s.repo.Emergency.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrEmergencyNotFound
		}
		return nil, err
	}
	resp := toEmergencyResponse(er)
	return &resp, nil
}

func (s *emergencyService) List(ctx context.Context, req *dto.EmergencyListRequest) ([]dto.EmergencyResponse, error) {
	filter := repository.EmergencyFilter{StoreID: req.StoreID, Status: req.Status}
	var err error
	if filter.DateFrom, err = optionalDate(req.DateFrom, "date_from"); err != nil {
		return nil, err
	}

	rows, err := s.repo.Emergency.List(ctx, filter)
	if err != nil {
		s.logger.Error("list emergency requests failed", zap.Error(err))
		return nil, err
	}
	result := make([]dto.EmergencyResponse, 0, len(rows))
	for i := range rows {
		result = append(result, toEmergencyResponse(&rows[i]))
	}
	return result, nil
}

// Update edits the reason and drives the status machine: open → filled
// (accepting a volunteer) or open → cancelled. Terminal requests reject
// every edit, reason included. All writes share one transaction.
func (s *emergencyService) Update(ctx context.Context, id string, req *dto.UpdateEmergencyRequest) (*dto.EmergencyResponse, error) {
	er, err := s.repo.Emergency.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrEmergencyNotFound
		}
		return nil, err
	}
	if req.VolunteerID != nil && (req.Status == nil || *req.Status != model.EmergencyFilled) {
		return nil, invalidFields("volunteer_id is only accepted together with status filled", "volunteer_id")
	}
	if req.Status != nil && *req.Status == model.EmergencyFilled && req.VolunteerID == nil {
		return nil, invalidFields("volunteer_id is required to fill a request", "volunteer_id")
	}
	if req.Reason == nil && req.Status == nil {
		resp := toEmergencyResponse(er)
		return &resp, nil
	}
	if er.Status != model.EmergencyOpen {
		return nil, &ConflictError{Kind: ErrEmergencyNotOpen, ConflictType: er.Status}
	}

	var accepted *model.EmergencyVolunteer
	if req.VolunteerID != nil {
		if accepted, err = s.volunteerOf(ctx, er, *req.VolunteerID); err != nil {
			return nil, err
		}
	}

	err = s.repo.Tx.WithinTx(ctx, func(tx *repository.Repository) error {
		if req.Reason != nil {
			n, err := tx.Emergency.UpdateReason(ctx, id, *req.Reason)
			if err != nil {
				return err
			}
			if n == 0 {
				return ErrEmergencyNotOpen
			}
		}
		if req.Status == nil {
			return nil
		}
		if *req.Status == model.EmergencyFilled {
			return s.accept(ctx, tx, er, accepted)
		}
		n, err := tx.Emergency.Transition(ctx, id, model.EmergencyCancelled, nil)
		if err != nil {
			return err
		}
		if n == 0 {
			return ErrEmergencyNotOpen
		}
		return nil
	})
	if err != nil {
		var ce *ConflictError
		switch {
		case errors.As(err, &ce):
			return nil, ce
		case errors.Is(err, ErrEmergencyNotOpen):
			return nil, s.notOpen(ctx, id, er.Status)
		case errors.Is(err, gorm.ErrDuplicatedKey):
			return nil, &ConflictError{Kind: ErrShiftConflict, ConflictType: model.ShiftStatusConfirmed}
		}
		s.logger.Error("update emergency request failed", zap.String("id", id), zap.Error(err))
		return nil, err
	}

	updated, err := s.repo.Emergency.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if accepted != nil {
		s.logger.Info("emergency request filled",
			zap.String("request_id", id),
			zap.String("user_id", accepted.UserID),
		)
		s.notifyFilled(ctx, updated, accepted)
	}

	resp := toEmergencyResponse(updated)
	return &resp, nil
}

func (s *emergencyService) Delete(ctx context.Context, id string) error {
	if err := s.repo.Emergency.Delete(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrEmergencyNotFound
		}
		s.logger.Error("delete emergency request failed", zap.String("id", id), zap.Error(err))
		return err
	}
	return nil
}

// ═══════════════════════════════════════════════════════════
// accept — fill a request with one of its volunteers
// ═══════════════════════════════════════════════════════════
//
// Runs inside Update's transaction:
//   1. open → filled with filled_by = volunteer user;
//   2. refuse if the volunteer holds a confirmed shift that day;
//   3. evict the volunteer's drafts that day;
//   4. hand the original user's shift at (store, date) to the volunteer as
//      confirmed, or create a confirmed shift with the request's pattern.
// Other volunteer rows are kept as history.

func (s *emergencyService) volunteerOf(ctx context.Context, er *model.EmergencyRequest, volunteerID string) (*model.EmergencyVolunteer, error) {
	v, err := s.repo.Volunteer.GetByID(ctx, volunteerID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrVolunteerNotFound
		}
		return nil, err
	}
	if v.EmergencyRequestID != er.ID {
		return nil, invalidFields("volunteer does not belong to this request", "volunteer_id")
	}
	return v, nil
}

func (s *emergencyService) accept(ctx context.Context, tx *repository.Repository, er *model.EmergencyRequest, v *model.EmergencyVolunteer) error {
	users := []string{er.OriginalUserID, v.UserID}
	sort.Strings(users)
	for _, u := range users {
		if err := tx.Shift.LockUserDate(ctx, u, er.Date); err != nil {
			return err
		}
	}

	filledBy := v.UserID
	n, err := tx.Emergency.Transition(ctx, er.ID, model.EmergencyFilled, &filledBy)
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrEmergencyNotOpen
	}

	held, err := tx.Shift.ListByUserAndDate(ctx, v.UserID, er.Date)
	if err != nil {
		return err
	}
	for i := range held {
		if held[i].Status == model.ShiftStatusConfirmed {
			return shiftConflict(model.ShiftStatusConfirmed, &held[i])
		}
	}
	if _, err := tx.Shift.DeleteDrafts(ctx, v.UserID, er.Date, ""); err != nil {
		return err
	}

	original, err := tx.Shift.ListByUserAndDate(ctx, er.OriginalUserID, er.Date)
	if err != nil {
		return err
	}
	if sh := pickCoveredShift(original, er.StoreID); sh != nil {
		sh.UserID = v.UserID
		sh.Status = model.ShiftStatusConfirmed
		return tx.Shift.Update(ctx, sh)
	}
	return tx.Shift.Create(ctx, &model.Shift{
		UserID:    v.UserID,
		StoreID:   er.StoreID,
		Date:      er.Date,
		PatternID: er.ShiftPatternID,
		Status:    model.ShiftStatusConfirmed,
		Notes:     "emergency cover",
		Version:   1,
	})
}

// pickCoveredShift finds the original user's shift at storeID, preferring
// the confirmed one.
func pickCoveredShift(shifts []model.Shift, storeID string) *model.Shift {
	var found *model.Shift
	for i := range shifts {
		if shifts[i].StoreID != storeID {
			continue
		}
		if shifts[i].Status == model.ShiftStatusConfirmed {
			return &shifts[i]
		}
		if found == nil {
			found = &shifts[i]
		}
	}
	return found
}

// notOpen builds the conflict for a transition that matched no open row.
func (s *emergencyService) notOpen(ctx context.Context, id, fallback string) error {
	status := fallback
	if latest, err := s.repo.Emergency.GetByID(ctx, id); err == nil {
		status = latest.Status
	}
	return &ConflictError{Kind: ErrEmergencyNotOpen, ConflictType: status}
}

// ────────────────────── volunteers ──────────────────────

// Volunteer applies the submission rules in order: duplicate application,
// request no longer open, then any shift the user holds that day.
func (s *emergencyService) Volunteer(ctx context.Context, caller Caller, req *dto.CreateVolunteerRequest) (*dto.VolunteerResponse, error) {
	userID := req.UserID
	if userID == "" {
		userID = caller.UserID
	}
	if !caller.canActFor(userID) {
		return nil, ErrForbidden
	}

	er, err := s.repo.Emergency.GetByID(ctx, req.EmergencyRequestID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrEmergencyNotFound
		}
		return nil, err
	}
	if _, err := s.repo.User.GetByID(ctx, userID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}

	v := &model.EmergencyVolunteer{EmergencyRequestID: er.ID, UserID: userID}
	err = s.repo.Tx.WithinTx(ctx, func(tx *repository.Repository) error {
		if err := tx.Shift.LockUserDate(ctx, userID, er.Date); err != nil {
			return err
		}

		// 1. duplicate
		_, err := tx.Volunteer.GetByRequestAndUser(ctx, er.ID, userID)
		if err == nil {
			return &ConflictError{Kind: ErrVolunteerDuplicate, ConflictType: "duplicate"}
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}

		// 2. request state
		current, err := tx.Emergency.GetByID(ctx, er.ID)
		if err != nil {
			return err
		}
		if current.Status != model.EmergencyOpen {
			return &ConflictError{Kind: ErrEmergencyNotOpen, ConflictType: current.Status}
		}

		// 3. any shift that day, any store
		held, err := tx.Shift.ListByUserAndDate(ctx, userID, er.Date)
		if err != nil {
			return err
		}
		if len(held) > 0 {
			return shiftConflict(held[0].Status, &held[0])
		}

		return tx.Volunteer.Create(ctx, v)
	})
	if err != nil {
		var ce *ConflictError
		switch {
		case errors.As(err, &ce):
			return nil, ce
		case errors.Is(err, gorm.ErrDuplicatedKey):
			return nil, &ConflictError{Kind: ErrVolunteerDuplicate, ConflictType: "duplicate"}
		}
		s.logger.Error("create volunteer failed", zap.Error(err))
		return nil, err
	}

	created, err := s.repo.Volunteer.GetByID(ctx, v.ID)
	if err != nil {
		return nil, err
	}
	resp := toVolunteerResponse(created)
	return &resp, nil
}

func (s *emergencyService) ListVolunteers(ctx context.Context, req *dto.VolunteerListRequest) ([]dto.VolunteerResponse, error) {
	rows, err := s.repo.Volunteer.List(ctx, repository.VolunteerFilter{
		EmergencyRequestID: req.EmergencyRequestID,
		UserID:             req.UserID,
	})
	if err != nil {
		s.logger.Error("list volunteers failed", zap.Error(err))
		return nil, err
	}
	result := make([]dto.VolunteerResponse, 0, len(rows))
	for i := range rows {
		result = append(result, toVolunteerResponse(&rows[i]))
	}
	return result, nil
}

// DeleteVolunteer rejects (manager) or withdraws (the volunteer) an
// application. The request status is untouched.
func (s *emergencyService) DeleteVolunteer(ctx context.Context, caller Caller, id string) error {
	v, err := s.repo.Volunteer.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrVolunteerNotFound
		}
		return err
	}
	if !caller.canActFor(v.UserID) {
		return ErrForbidden
	}
	if err := s.repo.Volunteer.Delete(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrVolunteerNotFound
		}
		s.logger.Error("delete volunteer failed", zap.String("id", id), zap.Error(err))
		return err
	}
	return nil
}

// ────────────────────── notifications ──────────────────────

// announce emails staff of the store and flexible staff of any store,
// except the person being covered.
func (s *emergencyService) announce(ctx context.Context, er *model.EmergencyRequest) {
	members, err := s.repo.User.List(ctx, repository.UserFilter{StoreID: er.StoreID, Role: model.RoleStaff})
	if err != nil {
		s.logger.Warn("load emergency recipients failed", zap.Error(err))
		return
	}
	recipients := make(map[string]*model.User, len(members))
	for i := range members {
		recipients[members[i].ID] = &members[i]
	}

	flexible, err := s.repo.UserStore.ListFlexible(ctx)
	if err != nil {
		s.logger.Warn("load flexible staff failed", zap.Error(err))
	}
	var extra []string
	for _, link := range flexible {
		if _, ok := recipients[link.UserID]; !ok {
			extra = append(extra, link.UserID)
		}
	}
	if len(extra) > 0 {
		users, err := s.repo.User.ListByIDs(ctx, extra)
		if err != nil {
			s.logger.Warn("load flexible staff failed", zap.Error(err))
		}
		for i := range users {
			recipients[users[i].ID] = &users[i]
		}
	}
	delete(recipients, er.OriginalUserID)

	data := mailData{
		Date:    timeutil.FormatDate(er.Date),
		Reason:  er.Reason,
		BaseURL: s.baseURL,
	}
	if er.Store != nil {
		data.Store = er.Store.Name
	}
	if er.ShiftPattern != nil {
		data.Start = clock(er.ShiftPattern.StartTime)
		data.End = clock(er.ShiftPattern.EndTime)
	}

	ids := make([]string, 0, len(recipients))
	for id := range recipients {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	for _, id := range ids {
		u := recipients[id]
		data.Name = u.Name
		msg, err := renderMail(u.Email, "Substitute needed: "+data.Date, "emergency_request", data)
		if err != nil {
			s.logger.Warn("render emergency email failed", zap.String("user_id", u.ID), zap.Error(err))
			continue
		}
		s.notifier.Notify(ctx, msg)
	}
}

func (s *emergencyService) notifyFilled(ctx context.Context, er *model.EmergencyRequest, v *model.EmergencyVolunteer) {
	if v.User == nil {
		return
	}
	data := mailData{
		Name:    v.User.Name,
		Date:    timeutil.FormatDate(er.Date),
		BaseURL: s.baseURL,
	}
	if er.Store != nil {
		data.Store = er.Store.Name
	}
	if er.ShiftPattern != nil {
		data.Start = clock(er.ShiftPattern.StartTime)
		data.End = clock(er.ShiftPattern.EndTime)
	}
	msg, err := renderMail(v.User.Email, "You are covering "+data.Date, "emergency_filled", data)
	if err != nil {
		s.logger.Warn("render filled email failed", zap.Error(err))
		return
	}
	s.notifier.Notify(ctx, msg)
}
