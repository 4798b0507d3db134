package dbmysql

import (
	"context"
	"fmt"
	"time"

	"gorm.io/gorm"

	"legado/internal/common"
)

// Checkin is the singleton liveness record per profile. NextDueAt drives
// the sweeper; ConfirmTokenHash holds the digest of the one-time link
// from the most recent re-confirmation prompt.
type Checkin struct {
	ID               string     `gorm:"primaryKey;size:36" json:"id"`
	ProfileID        string     `gorm:"uniqueIndex;not null;size:36" json:"profile_id"`
	Status           string     `gorm:"not null;size:20;default:'active';index" json:"status"`
	LastConfirmedAt  time.Time  `json:"last_confirmed_at"`
	NextDueAt        time.Time  `gorm:"index" json:"next_due_at"`
	Attempts         int        `gorm:"default:0" json:"attempts"`
	ConfirmTokenHash *string    `gorm:"size:64" json:"-"`
	PromptSentAt     *time.Time `json:"prompt_sent_at,omitempty"`
	CreatedAt        time.Time  `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt        time.Time  `gorm:"autoUpdateTime" json:"updated_at"`
}

type CheckinRepository struct {
	db *gorm.DB
}

func NewCheckinRepository(db *gorm.DB) *CheckinRepository {
	return &CheckinRepository{db: db}
}

func (r *CheckinRepository) Create(ctx context.Context, checkin *Checkin) error {
	if err := r.db.WithContext(ctx).Create(checkin).Error; err != nil {
		return fmt.Errorf("failed to create checkin: %w", err)
	}
	return nil
}

func (r *CheckinRepository) ByProfile(ctx context.Context, profileID string) (*Checkin, error) {
	var checkin Checkin
	err := r.db.WithContext(ctx).Where("profile_id = ?", profileID).First(&checkin).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, fmt.Errorf("%w: checkin for profile %s", common.ErrNotFound, profileID)
		}
		return nil, fmt.Errorf("failed to get checkin: %w", err)
	}
	return &checkin, nil
}

func (r *CheckinRepository) ByTokenHash(ctx context.Context, hash string) (*Checkin, error) {
	var checkin Checkin
	err := r.db.WithContext(ctx).Where("confirm_token_hash = ?", hash).First(&checkin).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, fmt.Errorf("%w: no checkin for token", common.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get checkin by token: %w", err)
	}
	return &checkin, nil
}

func (r *CheckinRepository) Update(ctx context.Context, checkin *Checkin) error {
	if err := r.db.WithContext(ctx).Save(checkin).Error; err != nil {
		return fmt.Errorf("failed to update checkin: %w", err)
	}
	return nil
}

// Due returns non-terminal checkins whose due date has passed. Terminal
// records stay parked until an explicit reset.
func (r *CheckinRepository) Due(ctx context.Context, now time.Time) ([]*Checkin, error) {
	var checkins []*Checkin
	err := r.db.WithContext(ctx).
		Where("next_due_at <= ? AND status != ?", now, string(common.CheckinConfirmedAbsent)).
		Order("next_due_at ASC").
		Find(&checkins).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list due checkins: %w", err)
	}
	return checkins, nil
}

// Absent returns checkins already in the terminal state; the delivery
// engine re-evaluates these every sweep so messages scheduled after the
// lapse still go out.
func (r *CheckinRepository) Absent(ctx context.Context) ([]*Checkin, error) {
	var checkins []*Checkin
	err := r.db.WithContext(ctx).
		Where("status = ?", string(common.CheckinConfirmedAbsent)).
		Find(&checkins).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list absent checkins: %w", err)
	}
	return checkins, nil
}
