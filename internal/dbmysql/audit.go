package dbmysql

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"gorm.io/gorm"
)

type AuditEntry struct {
	ID        uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	ActorID   *string   `gorm:"size:36;index" json:"actor_id,omitempty"`
	Action    string    `gorm:"not null;size:100;index" json:"action"`
	Metadata  string    `gorm:"type:text" json:"metadata"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
}

type AuditRepository struct {
	db *gorm.DB
}

func NewAuditRepository(db *gorm.DB) *AuditRepository {
	return &AuditRepository{db: db}
}

func (r *AuditRepository) Create(ctx context.Context, actorID *string, action string, metadata map[string]interface{}) error {
	encoded := "{}"
	if metadata != nil {
		if raw, err := json.Marshal(metadata); err == nil {
			encoded = string(raw)
		}
	}

	entry := &AuditEntry{
		ActorID:  actorID,
		Action:   action,
		Metadata: encoded,
	}
	if err := r.db.WithContext(ctx).Create(entry).Error; err != nil {
		return fmt.Errorf("failed to create audit entry: %w", err)
	}
	return nil
}

func (r *AuditRepository) List(ctx context.Context, limit, offset int) ([]*AuditEntry, error) {
	var entries []*AuditEntry

	query := r.db.WithContext(ctx).Order("created_at DESC")
	if limit > 0 {
		query = query.Limit(limit)
	}
	if offset > 0 {
		query = query.Offset(offset)
	}

	if err := query.Find(&entries).Error; err != nil {
		return nil, fmt.Errorf("failed to list audit entries: %w", err)
	}
	return entries, nil
}
