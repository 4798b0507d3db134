package dbmysql

import (
	"context"
	"fmt"
	"time"

	"gorm.io/gorm"
)

// Recipient is a per-message addressee, independent of trusted contacts.
type Recipient struct {
	ID        string    `gorm:"primaryKey;size:36" json:"id"`
	MessageID string    `gorm:"not null;index;size:36" json:"message_id"`
	Name      string    `gorm:"size:100" json:"name"`
	Email     string    `gorm:"not null;size:255" json:"email"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
}

type RecipientRepository struct {
	db *gorm.DB
}

func NewRecipientRepository(db *gorm.DB) *RecipientRepository {
	return &RecipientRepository{db: db}
}

func (r *RecipientRepository) ByMessageID(ctx context.Context, messageID string) ([]*Recipient, error) {
	var recipients []*Recipient
	err := r.db.WithContext(ctx).
		Where("message_id = ?", messageID).
		Order("created_at ASC").
		Find(&recipients).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list recipients: %w", err)
	}
	return recipients, nil
}

// Replace swaps the message's recipient set atomically.
func (r *RecipientRepository) Replace(ctx context.Context, messageID string, recipients []*Recipient) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("message_id = ?", messageID).Delete(&Recipient{}).Error; err != nil {
			return fmt.Errorf("failed to clear recipients: %w", err)
		}
		for _, rec := range recipients {
			rec.MessageID = messageID
			if err := tx.Create(rec).Error; err != nil {
				return fmt.Errorf("failed to create recipient: %w", err)
			}
		}
		return nil
	})
}

func (r *RecipientRepository) CountByMessageID(ctx context.Context, messageID string) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&Recipient{}).Where("message_id = ?", messageID).Count(&count).Error
	if err != nil {
		return 0, fmt.Errorf("failed to count recipients: %w", err)
	}
	return count, nil
}
