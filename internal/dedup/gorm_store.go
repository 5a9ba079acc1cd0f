package dedup

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/kursadbilgin/tcxc-automation/internal/domain"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var _ Store = (*GormStore)(nil)

// SentNotificationModel is the persistence model for the sent_notifications table.
type SentNotificationModel struct {
	Key       string `gorm:"type:varchar(255);primaryKey"`
	CreatedAt time.Time
}

func (SentNotificationModel) TableName() string {
	return "sent_notifications"
}

// GormStore keeps sent keys in a SQL table keyed by the notification key.
type GormStore struct {
	db  *gorm.DB
	now func() time.Time
}

func NewGormStore(db *gorm.DB) (*GormStore, error) {
	if db == nil {
		return nil, fmt.Errorf("database is required")
	}
	return &GormStore{db: db, now: time.Now}, nil
}

func (s *GormStore) Seen(ctx context.Context, key domain.NotificationKey) (bool, error) {
	var model SentNotificationModel
	err := s.db.WithContext(ctx).
		Where("key = ?", key.String()).
		Take(&model).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to check dedup key: %w", err)
	}
	return true, nil
}

func (s *GormStore) Record(ctx context.Context, key domain.NotificationKey) error {
	if _, err := s.Claim(ctx, key); err != nil {
		return err
	}
	return nil
}

// Claim inserts key unless it already exists and reports whether it inserted.
func (s *GormStore) Claim(ctx context.Context, key domain.NotificationKey) (bool, error) {
	model := &SentNotificationModel{Key: key.String(), CreatedAt: s.now().UTC()}
	result := s.db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(model)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrDuplicatedKey) {
			return false, nil
		}
		return false, fmt.Errorf("failed to record dedup key: %w", result.Error)
	}
	return result.RowsAffected > 0, nil
}
