package repository

import (
	"context"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/ren-jimpo/shift-management-app-sub000/internal/model"
)

// EmergencyFilter list filters for emergency requests.
type EmergencyFilter struct {
	StoreID  string
	Status   string
	DateFrom *time.Time
}

// EmergencyRequestRepository emergency request data access.
type EmergencyRequestRepository interface {
	Create(ctx context.Context, req *model.EmergencyRequest) error
	GetByID(ctx context.Context, id string) (*model.EmergencyRequest, error)
	List(ctx context.Context, filter EmergencyFilter) ([]model.EmergencyRequest, error)
	// UpdateReason rewrites the reason of an open request. Zero rows
	// affected means the request was no longer open.
	UpdateReason(ctx context.Context, id, reason string) (int64, error)
	// Transition moves id from open to status. Zero rows affected means the
	// request was no longer open.
	Transition(ctx context.Context, id, status string, filledBy *string) (int64, error)
	Delete(ctx context.Context, id string) error
}

type emergencyRequestRepo struct {
	db *gorm.DB
}

// NewEmergencyRequestRepo creates the gorm EmergencyRequestRepository.
func NewEmergencyRequestRepo(db *gorm.DB) EmergencyRequestRepository {
	return &emergencyRequestRepo{db: db}
}

func (r *emergencyRequestRepo) Create(ctx context.Context, req *model.EmergencyRequest) error {
	return r.db.WithContext(ctx).Omit(clause.Associations).Create(req).Error
}

func (r *emergencyRequestRepo) GetByID(ctx context.Context, id string) (*model.EmergencyRequest, error) {
	var req model.EmergencyRequest
	err := r.db.WithContext(ctx).
		Preload("OriginalUser").Preload("Store").Preload("ShiftPattern").
		Preload("Volunteers", func(db *gorm.DB) *gorm.DB {
			return db.Order("responded_at ASC")
		}).
		Preload("Volunteers.User").
		Where("id = ?", id).
		First(&req).Error
	if err != nil {
		return nil, err
	}
	return &req, nil
}

func (r *emergencyRequestRepo) List(ctx context.Context, filter EmergencyFilter) ([]model.EmergencyRequest, error) {
	var reqs []model.EmergencyRequest
	db := r.db.WithContext(ctx)

	if filter.StoreID != "" {
		db = db.Where("store_id = ?", filter.StoreID)
	}
	if filter.Status != "" {
		db = db.Where("status = ?", filter.Status)
	}
	if filter.DateFrom != nil {
		db = db.Where("date >= ?", *filter.DateFrom)
	}

	err := db.Preload("OriginalUser").Preload("Store").Preload("ShiftPattern").
		Preload("Volunteers").Preload("Volunteers.User").
		Order("date ASC, created_at ASC").
		Find(&reqs).Error
	return reqs, err
}

func (r *emergencyRequestRepo) UpdateReason(ctx context.Context, id, reason string) (int64, error) {
	result := r.db.WithContext(ctx).
		Model(&model.EmergencyRequest{}).
		Where("id = ? AND status = ?", id, model.EmergencyOpen).
		Updates(map[string]interface{}{
			"reason":     reason,
			"updated_at": gorm.Expr("NOW()"),
		})
	return result.RowsAffected, result.Error
}

func (r *emergencyRequestRepo) Transition(ctx context.Context, id, status string, filledBy *string) (int64, error) {
	result := r.db.WithContext(ctx).
		Model(&model.EmergencyRequest{}).
		Where("id = ? AND status = ?", id, model.EmergencyOpen).
		Updates(map[string]interface{}{
			"status":     status,
			"filled_by":  filledBy,
			"updated_at": gorm.Expr("NOW()"),
		})
	return result.RowsAffected, result.Error
}

func (r *emergencyRequestRepo) Delete(ctx context.Context, id string) error {
	return affected(r.db.WithContext(ctx).Where("id = ?", id).Delete(&model.EmergencyRequest{}))
}

// ── EmergencyVolunteer ──

// VolunteerFilter list filters for volunteers.
type VolunteerFilter struct {
	EmergencyRequestID string
	UserID             string
}

// EmergencyVolunteerRepository volunteer data access.
type EmergencyVolunteerRepository interface {
	Create(ctx context.Context, v *model.EmergencyVolunteer) error
	GetByID(ctx context.Context, id string) (*model.EmergencyVolunteer, error)
	GetByRequestAndUser(ctx context.Context, requestID, userID string) (*model.EmergencyVolunteer, error)
	List(ctx context.Context, filter VolunteerFilter) ([]model.EmergencyVolunteer, error)
	Delete(ctx context.Context, id string) error
}

type emergencyVolunteerRepo struct {
	db *gorm.DB
}

// NewEmergencyVolunteerRepo creates the gorm EmergencyVolunteerRepository.
func NewEmergencyVolunteerRepo(db *gorm.DB) EmergencyVolunteerRepository {
	return &emergencyVolunteerRepo{db: db}
}

func (r *emergencyVolunteerRepo) Create(ctx context.Context, v *model.EmergencyVolunteer) error {
	return r.db.WithContext(ctx).Omit(clause.Associations).Create(v).Error
}

func (r *emergencyVolunteerRepo) GetByID(ctx context.Context, id string) (*model.EmergencyVolunteer, error) {
	var v model.EmergencyVolunteer
	if err := r.db.WithContext(ctx).Preload("User").Where("id = ?", id).First(&v).Error; err != nil {
		return nil, err
	}
	return &v, nil
}

func (r *emergencyVolunteerRepo) GetByRequestAndUser(ctx context.Context, requestID, userID string) (*model.EmergencyVolunteer, error) {
	var v model.EmergencyVolunteer
	err := r.db.WithContext(ctx).
		Where("emergency_request_id = ? AND user_id = ?", requestID, userID).
		First(&v).Error
	if err != nil {
		return nil, err
	}
	return &v, nil
}

func (r *emergencyVolunteerRepo) List(ctx context.Context, filter VolunteerFilter) ([]model.EmergencyVolunteer, error) {
	var vs []model.EmergencyVolunteer
	db := r.db.WithContext(ctx)
	if filter.EmergencyRequestID != "" {
		db = db.Where("emergency_request_id = ?", filter.EmergencyRequestID)
	}
	if filter.UserID != "" {
		db = db.Where("user_id = ?", filter.UserID)
	}
	err := db.Preload("User").Order("responded_at ASC").Find(&vs).Error
	return vs, err
}

func (r *emergencyVolunteerRepo) Delete(ctx context.Context, id string) error {
	return affected(r.db.WithContext(ctx).Where("id = ?", id).Delete(&model.EmergencyVolunteer{}))
}
