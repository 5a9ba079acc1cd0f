package migrations

import (
	"github.com/go-gormigrate/gormigrate/v2"
	"github.com/kursadbilgin/tcxc-automation/internal/dedup"
	"gorm.io/gorm"
)

func createSentNotificationsTable() *gormigrate.Migration {
	return &gormigrate.Migration{
		ID: "000001_create_sent_notifications",
		Migrate: func(tx *gorm.DB) error {
			return tx.AutoMigrate(&dedup.SentNotificationModel{})
		},
		Rollback: func(tx *gorm.DB) error {
			return tx.Migrator().DropTable(&dedup.SentNotificationModel{})
		},
	}
}
