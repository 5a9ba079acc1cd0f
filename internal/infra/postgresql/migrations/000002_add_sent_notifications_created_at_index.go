package migrations

import (
	"github.com/go-gormigrate/gormigrate/v2"
	"gorm.io/gorm"
)

func addSentNotificationsCreatedAtIndex() *gormigrate.Migration {
	return &gormigrate.Migration{
		ID: "000002_add_sent_notifications_created_at_index",
		Migrate: func(tx *gorm.DB) error {
			return tx.Exec(`CREATE INDEX IF NOT EXISTS idx_sent_notifications_created_at ON sent_notifications (created_at)`).Error
		},
		Rollback: func(tx *gorm.DB) error {
			return tx.Exec(`DROP INDEX IF EXISTS idx_sent_notifications_created_at`).Error
		},
	}
}
