package repository

import (
	"context"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/ren-jimpo/shift-management-app-sub000/internal/model"
)

// TimeOffFilter list filters for time-off requests.
type TimeOffFilter struct {
	UserID   string
	Status   string
	DateFrom *time.Time
	DateTo   *time.Time
}

// TimeOffRequestRepository time-off data access.
type TimeOffRequestRepository interface {
	Create(ctx context.Context, req *model.TimeOffRequest) error
	GetByID(ctx context.Context, id string) (*model.TimeOffRequest, error)
	List(ctx context.Context, filter TimeOffFilter) ([]model.TimeOffRequest, error)
	// ListActiveByUserAndDate returns the user's non-rejected requests on date.
	ListActiveByUserAndDate(ctx context.Context, userID string, date time.Time) ([]model.TimeOffRequest, error)
	// Respond moves pending rows among ids to status. Rows no longer pending
	// are left untouched; the number actually updated is returned.
	Respond(ctx context.Context, ids []string, status, respondedBy string, at time.Time) (int64, error)
	// DeletePending deletes id only while it is still pending.
	DeletePending(ctx context.Context, id string) (int64, error)
}

type timeOffRequestRepo struct {
	db *gorm.DB
}

// NewTimeOffRequestRepo creates the gorm TimeOffRequestRepository.
func NewTimeOffRequestRepo(db *gorm.DB) TimeOffRequestRepository {
	return &timeOffRequestRepo{db: db}
}

func (r *timeOffRequestRepo) Create(ctx context.Context, req *model.TimeOffRequest) error {
	return r.db.WithContext(ctx).Omit(clause.Associations).Create(req).Error
}

func (r *timeOffRequestRepo) GetByID(ctx context.Context, id string) (*model.TimeOffRequest, error) {
	var req model.TimeOffRequest
	err := r.db.WithContext(ctx).
		Preload("User").
		Where("id = ?", id).
		First(&req).Error
	if err != nil {
		return nil, err
	}
	return &req, nil
}

func (r *timeOffRequestRepo) List(ctx context.Context, filter TimeOffFilter) ([]model.TimeOffRequest, error) {
	var reqs []model.TimeOffRequest
	db := r.db.WithContext(ctx)

	if filter.UserID != "" {
		db = db.Where("user_id = ?", filter.UserID)
	}
	if filter.Status != "" {
		db = db.Where("status = ?", filter.Status)
	}
	if filter.DateFrom != nil {
		db = db.Where("date >= ?", *filter.DateFrom)
	}
	if filter.DateTo != nil {
		db = db.Where("date <= ?", *filter.DateTo)
	}

	err := db.Preload("User").
		Order("date ASC, created_at ASC").
		Find(&reqs).Error
	return reqs, err
}

func (r *timeOffRequestRepo) ListActiveByUserAndDate(ctx context.Context, userID string, date time.Time) ([]model.TimeOffRequest, error) {
	var reqs []model.TimeOffRequest
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND date = ? AND status <> ?", userID, date, model.TimeOffRejected).
		Find(&reqs).Error
	return reqs, err
}

func (r *timeOffRequestRepo) Respond(ctx context.Context, ids []string, status, respondedBy string, at time.Time) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	result := r.db.WithContext(ctx).
		Model(&model.TimeOffRequest{}).
		Where("id IN ? AND status = ?", ids, model.TimeOffPending).
		Updates(map[string]interface{}{
			"status":       status,
			"responded_by": respondedBy,
			"responded_at": at,
			"updated_at":   gorm.Expr("NOW()"),
		})
	return result.RowsAffected, result.Error
}

func (r *timeOffRequestRepo) DeletePending(ctx context.Context, id string) (int64, error) {
	result := r.db.WithContext(ctx).
		Where("id = ? AND status = ?", id, model.TimeOffPending).
		Delete(&model.TimeOffRequest{})
	return result.RowsAffected, result.Error
}
