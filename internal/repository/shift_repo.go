package repository

import (
	"context"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/ren-jimpo/shift-management-app-sub000/internal/model"
	pkgerrors "github.com/ren-jimpo/shift-management-app-sub000/pkg/errors"
)

// ShiftFilter list filters for shifts. Zero values are ignored.
type ShiftFilter struct {
	StoreID   string
	UserID    string
	Status    string
	PatternID string
	DateFrom  *time.Time
	DateTo    *time.Time
}

// ShiftRepository shift data access.
type ShiftRepository interface {
	Create(ctx context.Context, shift *model.Shift) error
	GetByID(ctx context.Context, id string) (*model.Shift, error)
	List(ctx context.Context, filter ShiftFilter) ([]model.Shift, error)
	// ListByUserAndDate returns every shift the user holds on date, at any store.
	ListByUserAndDate(ctx context.Context, userID string, date time.Time) ([]model.Shift, error)
	// Update writes shift guarded by its version; a stale version yields
	// pkgerrors.ErrOptimisticLock.
	Update(ctx context.Context, shift *model.Shift) error
	Delete(ctx context.Context, id string) error
	// DeleteDrafts removes the user's draft shifts on date except excludeID.
	DeleteDrafts(ctx context.Context, userID string, date time.Time, excludeID string) (int64, error)
	UpdateStatusByIDs(ctx context.Context, ids []string, status string) (int64, error)
	CountByPattern(ctx context.Context, patternID string) (int64, error)
	// LockUserDate takes a transaction-scoped advisory lock on (user, date).
	// Only meaningful inside Transactor.WithinTx.
	LockUserDate(ctx context.Context, userID string, date time.Time) error
}

type shiftRepo struct {
	db *gorm.DB
}

// NewShiftRepo creates the gorm ShiftRepository.
func NewShiftRepo(db *gorm.DB) ShiftRepository {
	return &shiftRepo{db: db}
}

func (r *shiftRepo) Create(ctx context.Context, shift *model.Shift) error {
	return r.db.WithContext(ctx).Omit(clause.Associations).Create(shift).Error
}

func (r *shiftRepo) GetByID(ctx context.Context, id string) (*model.Shift, error) {
	var shift model.Shift
	err := r.db.WithContext(ctx).
		Preload("User").Preload("Store").Preload("Pattern").
		Where("id = ?", id).
		First(&shift).Error
	if err != nil {
		return nil, err
	}
	return &shift, nil
}

func (r *shiftRepo) List(ctx context.Context, filter ShiftFilter) ([]model.Shift, error) {
	var shifts []model.Shift
	db := r.db.WithContext(ctx)

	if filter.StoreID != "" {
		db = db.Where("store_id = ?", filter.StoreID)
	}
	if filter.UserID != "" {
		db = db.Where("user_id = ?", filter.UserID)
	}
	if filter.Status != "" {
		db = db.Where("status = ?", filter.Status)
	}
	if filter.PatternID != "" {
		db = db.Where("pattern_id = ?", filter.PatternID)
	}
	if filter.DateFrom != nil {
		db = db.Where("date >= ?", *filter.DateFrom)
	}
	if filter.DateTo != nil {
		db = db.Where("date <= ?", *filter.DateTo)
	}

	err := db.Preload("User").Preload("Store").Preload("Pattern").
		Order("date ASC, created_at ASC").
		Find(&shifts).Error
	return shifts, err
}

func (r *shiftRepo) ListByUserAndDate(ctx context.Context, userID string, date time.Time) ([]model.Shift, error) {
	var shifts []model.Shift
	err := r.db.WithContext(ctx).
		Preload("Store").
		Where("user_id = ? AND date = ?", userID, date).
		Order("created_at ASC").
		Find(&shifts).Error
	return shifts, err
}

func (r *shiftRepo) Update(ctx context.Context, shift *model.Shift) error {
	oldVersion := shift.Version
	result := r.db.WithContext(ctx).
		Model(&model.Shift{}).
		Where("id = ? AND version = ?", shift.ID, oldVersion).
		Updates(map[string]interface{}{
			"user_id":    shift.UserID,
			"store_id":   shift.StoreID,
			"date":       shift.Date,
			"pattern_id": shift.PatternID,
			"status":     shift.Status,
			"notes":      shift.Notes,
			"version":    oldVersion + 1,
			"updated_at": gorm.Expr("NOW()"),
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return pkgerrors.ErrOptimisticLock
	}
	shift.Version = oldVersion + 1
	return nil
}

func (r *shiftRepo) Delete(ctx context.Context, id string) error {
	return affected(r.db.WithContext(ctx).Where("id = ?", id).Delete(&model.Shift{}))
}

func (r *shiftRepo) DeleteDrafts(ctx context.Context, userID string, date time.Time, excludeID string) (int64, error) {
	db := r.db.WithContext(ctx).
		Where("user_id = ? AND date = ? AND status = ?", userID, date, model.ShiftStatusDraft)
	if excludeID != "" {
		db = db.Where("id <> ?", excludeID)
	}
	result := db.Delete(&model.Shift{})
	return result.RowsAffected, result.Error
}

func (r *shiftRepo) UpdateStatusByIDs(ctx context.Context, ids []string, status string) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	result := r.db.WithContext(ctx).
		Model(&model.Shift{}).
		Where("id IN ?", ids).
		Updates(map[string]interface{}{
			"status":     status,
			"version":    gorm.Expr("version + 1"),
			"updated_at": gorm.Expr("NOW()"),
		})
	return result.RowsAffected, result.Error
}

func (r *shiftRepo) CountByPattern(ctx context.Context, patternID string) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&model.Shift{}).Where("pattern_id = ?", patternID).Count(&n).Error
	return n, err
}

func (r *shiftRepo) LockUserDate(ctx context.Context, userID string, date time.Time) error {
	key := "shift:" + userID + ":" + date.Format("2006-01-02")
	return r.db.WithContext(ctx).Exec("SELECT pg_advisory_xact_lock(hashtext(?))", key).Error
}
