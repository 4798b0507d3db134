package dbmysql

import (
	"context"
	"fmt"
	"time"

	"gorm.io/gorm"

	"legado/internal/common"
)

// TrustedContact is a recipient-of-last-resort bound to a profile, not
// to any particular message.
type TrustedContact struct {
	ID           string    `gorm:"primaryKey;size:36" json:"id"`
	ProfileID    string    `gorm:"not null;index;size:36" json:"profile_id"`
	Name         string    `gorm:"not null;size:100" json:"name"`
	Email        string    `gorm:"not null;size:255" json:"email"`
	Relationship string    `gorm:"size:50" json:"relationship"`
	CreatedAt    time.Time `gorm:"autoCreateTime" json:"created_at"`
}

type TrustedContactRepository struct {
	db *gorm.DB
}

func NewTrustedContactRepository(db *gorm.DB) *TrustedContactRepository {
	return &TrustedContactRepository{db: db}
}

func (r *TrustedContactRepository) Create(ctx context.Context, contact *TrustedContact) error {
	if err := r.db.WithContext(ctx).Create(contact).Error; err != nil {
		return fmt.Errorf("failed to create trusted contact: %w", err)
	}
	return nil
}

func (r *TrustedContactRepository) ByProfile(ctx context.Context, profileID string) ([]*TrustedContact, error) {
	var contacts []*TrustedContact
	err := r.db.WithContext(ctx).
		Where("profile_id = ?", profileID).
		Order("created_at ASC").
		Find(&contacts).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list trusted contacts: %w", err)
	}
	return contacts, nil
}

func (r *TrustedContactRepository) Delete(ctx context.Context, id, profileID string) error {
	result := r.db.WithContext(ctx).
		Where("id = ? AND profile_id = ?", id, profileID).
		Delete(&TrustedContact{})

	if result.Error != nil {
		return fmt.Errorf("failed to delete trusted contact: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("%w: trusted contact %s", common.ErrNotFound, id)
	}
	return nil
}
