package dbmysql

import (
	"context"
	"fmt"
	"time"

	"gorm.io/gorm"

	"legado/internal/common"
)

type Profile struct {
	ID              string         `gorm:"primaryKey;size:36" json:"id"`
	Handle          string         `gorm:"uniqueIndex;size:50;not null" json:"handle"`
	Email           string         `gorm:"size:255;not null" json:"email"`
	PasswordHash    string         `gorm:"size:255;not null" json:"-"`
	Locale          string         `gorm:"size:5;default:'en'" json:"locale"`
	Plan            string         `gorm:"size:20;default:'free'" json:"plan"`
	BillingCustomer string         `gorm:"size:64;index" json:"-"`
	Admin           bool           `gorm:"default:false" json:"-"`
	CreatedAt       time.Time      `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt       time.Time      `gorm:"autoUpdateTime" json:"updated_at"`
	DeletedAt       gorm.DeletedAt `gorm:"index" json:"-"`
}

type ProfileRepository struct {
	db *gorm.DB
}

func NewProfileRepository(db *gorm.DB) *ProfileRepository {
	return &ProfileRepository{db: db}
}

func (r *ProfileRepository) Create(ctx context.Context, profile *Profile) error {
	if err := r.db.WithContext(ctx).Create(profile).Error; err != nil {
		return fmt.Errorf("failed to create profile: %w", err)
	}
	return nil
}

func (r *ProfileRepository) ByID(ctx context.Context, id string) (*Profile, error) {
	var profile Profile
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&profile).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, fmt.Errorf("%w: profile %s", common.ErrNotFound, id)
		}
		return nil, fmt.Errorf("failed to get profile: %w", err)
	}
	return &profile, nil
}

func (r *ProfileRepository) ByHandle(ctx context.Context, handle string) (*Profile, error) {
	var profile Profile
	err := r.db.WithContext(ctx).Where("handle = ?", handle).First(&profile).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, fmt.Errorf("%w: profile %s", common.ErrNotFound, handle)
		}
		return nil, fmt.Errorf("failed to get profile: %w", err)
	}
	return &profile, nil
}

func (r *ProfileRepository) CheckHandleExists(ctx context.Context, handle string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&Profile{}).Where("handle = ?", handle).Count(&count).Error
	if err != nil {
		return false, fmt.Errorf("failed to check handle: %w", err)
	}
	return count > 0, nil
}

func (r *ProfileRepository) Update(ctx context.Context, profile *Profile) error {
	if err := r.db.WithContext(ctx).Save(profile).Error; err != nil {
		return fmt.Errorf("failed to update profile: %w", err)
	}
	return nil
}

// UpdatePlanByCustomer applies a billing webhook plan change keyed by the
// billing provider's customer reference.
func (r *ProfileRepository) UpdatePlanByCustomer(ctx context.Context, customer string, plan common.PlanTier) error {
	result := r.db.WithContext(ctx).
		Model(&Profile{}).
		Where("billing_customer = ?", customer).
		Update("plan", string(plan))

	if result.Error != nil {
		return fmt.Errorf("failed to update plan: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("%w: billing customer %s", common.ErrNotFound, customer)
	}
	return nil
}
