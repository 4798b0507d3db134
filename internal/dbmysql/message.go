package dbmysql

import (
	"context"
	"fmt"
	"time"

	"gorm.io/gorm"

	"legado/internal/common"
)

type Message struct {
	ID          string     `gorm:"primaryKey;size:36" json:"id"`
	ProfileID   string     `gorm:"not null;index;size:36" json:"profile_id"`
	Type        string     `gorm:"not null;size:10" json:"type"`
	Status      string     `gorm:"not null;size:20;default:'draft';index" json:"status"`
	Subject     string     `gorm:"size:255" json:"subject"`
	Body        string     `gorm:"type:text" json:"body"`
	MediaID     *string    `gorm:"size:36" json:"media_id,omitempty"`
	DeliveredAt *time.Time `json:"delivered_at,omitempty"`
	CreatedAt   time.Time  `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt   time.Time  `gorm:"autoUpdateTime" json:"updated_at"`
}

type MessageRepository struct {
	db *gorm.DB
}

func NewMessageRepository(db *gorm.DB) *MessageRepository {
	return &MessageRepository{db: db}
}

func (r *MessageRepository) Create(ctx context.Context, msg *Message) error {
	if err := r.db.WithContext(ctx).Create(msg).Error; err != nil {
		return fmt.Errorf("failed to create message: %w", err)
	}
	return nil
}

func (r *MessageRepository) ByID(ctx context.Context, id string) (*Message, error) {
	var msg Message
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&msg).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, fmt.Errorf("%w: message %s", common.ErrNotFound, id)
		}
		return nil, fmt.Errorf("failed to get message: %w", err)
	}
	return &msg, nil
}

func (r *MessageRepository) ByProfile(ctx context.Context, profileID string, limit, offset int) ([]*Message, error) {
	var messages []*Message

	query := r.db.WithContext(ctx).
		Where("profile_id = ?", profileID).
		Order("created_at DESC")

	if limit > 0 {
		query = query.Limit(limit)
	}
	if offset > 0 {
		query = query.Offset(offset)
	}

	if err := query.Find(&messages).Error; err != nil {
		return nil, fmt.Errorf("failed to list messages: %w", err)
	}
	return messages, nil
}

func (r *MessageRepository) Update(ctx context.Context, msg *Message) error {
	if err := r.db.WithContext(ctx).Save(msg).Error; err != nil {
		return fmt.Errorf("failed to update message: %w", err)
	}
	return nil
}

// MarkScheduled moves a draft into the scheduled state. The conditional
// update keeps the status machine monotonic.
func (r *MessageRepository) MarkScheduled(ctx context.Context, id, profileID string) error {
	result := r.db.WithContext(ctx).
		Model(&Message{}).
		Where("id = ? AND profile_id = ? AND status = ?", id, profileID, string(common.StatusDraft)).
		Update("status", string(common.StatusScheduled))

	if result.Error != nil {
		return fmt.Errorf("failed to schedule message: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("%w: message %s is not a draft", common.ErrValidation, id)
	}
	return nil
}

// MarkDelivered flips scheduled -> delivered. The WHERE clause on the
// old status is the exactly-once guard: overlapping sweeps cannot both
// win the update, and re-running against a delivered message is a no-op.
func (r *MessageRepository) MarkDelivered(ctx context.Context, id string, now time.Time) (bool, error) {
	result := r.db.WithContext(ctx).
		Model(&Message{}).
		Where("id = ? AND status = ?", id, string(common.StatusScheduled)).
		Updates(map[string]interface{}{
			"status":       string(common.StatusDelivered),
			"delivered_at": now,
		})

	if result.Error != nil {
		return false, fmt.Errorf("failed to mark message delivered: %w", result.Error)
	}
	return result.RowsAffected > 0, nil
}

// ScheduledByProfile returns the messages a check-in lapse would release.
func (r *MessageRepository) ScheduledByProfile(ctx context.Context, profileID string) ([]*Message, error) {
	var messages []*Message
	err := r.db.WithContext(ctx).
		Where("profile_id = ? AND status = ?", profileID, string(common.StatusScheduled)).
		Find(&messages).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list scheduled messages: %w", err)
	}
	return messages, nil
}
