package repository

import (
	"context"

	"gorm.io/gorm"
)

// Repository aggregates every data-access interface.
type Repository struct {
	User         UserRepository
	UserStore    UserStoreRepository
	LoginID      LoginIDSequenceRepository
	Store        StoreRepository
	ShiftPattern ShiftPatternRepository
	TimeSlot     TimeSlotRepository
	Shift        ShiftRepository
	TimeOff      TimeOffRequestRepository
	Emergency    EmergencyRequestRepository
	Volunteer    EmergencyVolunteerRepository
	Tx           Transactor
}

// Transactor runs fn against a Repository bound to a single database
// transaction. fn returning an error rolls everything back.
type Transactor interface {
	WithinTx(ctx context.Context, fn func(tx *Repository) error) error
}

// NewRepository builds the aggregate over db (which may itself be a tx).
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{
		User:         NewUserRepo(db),
		UserStore:    NewUserStoreRepo(db),
		LoginID:      NewLoginIDSequenceRepo(db),
		Store:        NewStoreRepo(db),
		ShiftPattern: NewShiftPatternRepo(db),
		TimeSlot:     NewTimeSlotRepo(db),
		Shift:        NewShiftRepo(db),
		TimeOff:      NewTimeOffRequestRepo(db),
		Emergency:    NewEmergencyRequestRepo(db),
		Volunteer:    NewEmergencyVolunteerRepo(db),
		Tx:           &gormTransactor{db: db},
	}
}

type gormTransactor struct {
	db *gorm.DB
}

func (t *gormTransactor) WithinTx(ctx context.Context, fn func(tx *Repository) error) error {
	return t.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(NewRepository(tx))
	})
}

// affected converts a zero-row write into gorm.ErrRecordNotFound.
func affected(result *gorm.DB) error {
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
