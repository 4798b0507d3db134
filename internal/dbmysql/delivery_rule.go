package dbmysql

import (
	"context"
	"fmt"
	"time"

	"gorm.io/gorm"

	"legado/internal/common"
)

// DeliveryRule is the per-message release configuration. Exactly one of
// DeliverAt (mode date) and IntervalDays (mode checkin) is set; the
// service layer rejects anything else before it reaches this table.
type DeliveryRule struct {
	ID            string     `gorm:"primaryKey;size:36" json:"id"`
	MessageID     string     `gorm:"uniqueIndex;not null;size:36" json:"message_id"`
	ProfileID     string     `gorm:"not null;index;size:36" json:"profile_id"`
	Mode          string     `gorm:"not null;size:10" json:"mode"`
	DeliverAt     *time.Time `json:"deliver_at,omitempty"`
	IntervalDays  *int       `json:"interval_days,omitempty"`
	AttemptsLimit int        `gorm:"default:3" json:"attempts_limit"`
	CreatedAt     time.Time  `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt     time.Time  `gorm:"autoUpdateTime" json:"updated_at"`
}

type DeliveryRuleRepository struct {
	db *gorm.DB
}

func NewDeliveryRuleRepository(db *gorm.DB) *DeliveryRuleRepository {
	return &DeliveryRuleRepository{db: db}
}

// Upsert replaces the message's rule; a message carries at most one.
func (r *DeliveryRuleRepository) Upsert(ctx context.Context, rule *DeliveryRule) error {
	var existing DeliveryRule
	err := r.db.WithContext(ctx).Where("message_id = ?", rule.MessageID).First(&existing).Error
	if err == gorm.ErrRecordNotFound {
		if err := r.db.WithContext(ctx).Create(rule).Error; err != nil {
			return fmt.Errorf("failed to create delivery rule: %w", err)
		}
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to look up delivery rule: %w", err)
	}

	rule.ID = existing.ID
	rule.CreatedAt = existing.CreatedAt
	if err := r.db.WithContext(ctx).Save(rule).Error; err != nil {
		return fmt.Errorf("failed to update delivery rule: %w", err)
	}
	return nil
}

func (r *DeliveryRuleRepository) ByMessageID(ctx context.Context, messageID string) (*DeliveryRule, error) {
	var rule DeliveryRule
	err := r.db.WithContext(ctx).Where("message_id = ?", messageID).First(&rule).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, fmt.Errorf("%w: delivery rule for message %s", common.ErrNotFound, messageID)
		}
		return nil, fmt.Errorf("failed to get delivery rule: %w", err)
	}
	return &rule, nil
}

// DateRulesDue returns date-mode rules whose deliver-at has passed.
func (r *DeliveryRuleRepository) DateRulesDue(ctx context.Context, now time.Time) ([]*DeliveryRule, error) {
	var rules []*DeliveryRule
	err := r.db.WithContext(ctx).
		Where("mode = ? AND deliver_at IS NOT NULL AND deliver_at <= ?", string(common.ModeDate), now).
		Order("deliver_at ASC").
		Find(&rules).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list due date rules: %w", err)
	}
	return rules, nil
}

// CheckinRulesByProfile returns the user's checkin-mode rules; the
// check-in state machine derives its interval and attempts limit from
// the most restrictive of these.
func (r *DeliveryRuleRepository) CheckinRulesByProfile(ctx context.Context, profileID string) ([]*DeliveryRule, error) {
	var rules []*DeliveryRule
	err := r.db.WithContext(ctx).
		Where("profile_id = ? AND mode = ?", profileID, string(common.ModeCheckin)).
		Find(&rules).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list checkin rules: %w", err)
	}
	return rules, nil
}

func (r *DeliveryRuleRepository) DeleteByMessageID(ctx context.Context, messageID string) error {
	if err := r.db.WithContext(ctx).Where("message_id = ?", messageID).Delete(&DeliveryRule{}).Error; err != nil {
		return fmt.Errorf("failed to delete delivery rule: %w", err)
	}
	return nil
}
