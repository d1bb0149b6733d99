package migrations

import (
	"github.com/go-gormigrate/gormigrate/v2"
	"github.com/kursadbilgin/failedemails-report/internal/repository"
	"gorm.io/gorm"
)

const eventNameIndex = "idx_log_eventname_time"

func createEventNameIndex() *gormigrate.Migration {
	return &gormigrate.Migration{
		ID: "000002_create_eventname_index",
		Migrate: func(tx *gorm.DB) error {
			if tx.Migrator().HasIndex(&repository.LogEntryModel{}, eventNameIndex) {
				return nil
			}
			return tx.Migrator().CreateIndex(&repository.LogEntryModel{}, eventNameIndex)
		},
		Rollback: func(tx *gorm.DB) error {
			if !tx.Migrator().HasIndex(&repository.LogEntryModel{}, eventNameIndex) {
				return nil
			}
			return tx.Migrator().DropIndex(&repository.LogEntryModel{}, eventNameIndex)
		},
	}
}
